package repository // repository holds data access logic for domain entities

import (
	"context"       // context is used to manage deadlines and cancellation
	"database/sql"  // sql provides DB primitives
	"encoding/json" // position names are stored as a JSON array
	"errors"        // errors package allows sentinel error definitions
	"fmt"

	"github.com/iliyamo/exam-seating/internal/model"
)

// ErrRoomNotFound is returned when a room lookup fails.
var ErrRoomNotFound = errors.New("room not found")

// RoomRepo stores exam room layouts.
type RoomRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

const roomColumns = `id, owner_id, room_number, seat_rows, benches_per_row, position_names, created_at, updated_at`

// Create inserts a room and reads it back so timestamps are populated.
// A duplicate room number for the same owner yields ErrConflict.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	names, err := json.Marshal(rm.PositionNames)
	if err != nil {
		return fmt.Errorf("encode position names: %w", err)
	}
	const q = `INSERT INTO rooms (owner_id, room_number, seat_rows, benches_per_row, position_names)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rm.OwnerID, rm.RoomNumber, rm.SeatRows, rm.BenchesPerRow, names)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	fresh, err := r.GetByIDAndOwner(ctx, uint64(id), rm.OwnerID)
	if err != nil {
		return err
	}
	*rm = *fresh
	return nil
}

// GetByIDAndOwner retrieves a room only if it belongs to the owner.
func (r *RoomRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms WHERE id = ? AND owner_id = ?`
	rm, err := scanRoom(r.db.QueryRowContext(ctx, q, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return rm, nil
}

// GetManyByOwner loads the given rooms in the order of ids.  A missing or
// foreign id yields ErrRoomNotFound naming the id.
func (r *RoomRepo) GetManyByOwner(ctx context.Context, ids []uint64, ownerID uint64) ([]*model.Room, error) {
	out := make([]*model.Room, 0, len(ids))
	for _, id := range ids {
		rm, err := r.GetByIDAndOwner(ctx, id, ownerID)
		if err != nil {
			if errors.Is(err, ErrRoomNotFound) {
				return nil, fmt.Errorf("room %d: %w", id, err)
			}
			return nil, err
		}
		out = append(out, rm)
	}
	return out, nil
}

// ListByOwner returns all rooms of an owner ordered by room number.
func (r *RoomRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms WHERE owner_id = ? ORDER BY room_number, id`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByIDAndOwner removes a room.  ErrRoomNotFound when nothing matched.
func (r *RoomRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(s rowScanner) (*model.Room, error) {
	var (
		rm    model.Room
		names []byte
	)
	if err := s.Scan(&rm.ID, &rm.OwnerID, &rm.RoomNumber, &rm.SeatRows, &rm.BenchesPerRow, &names, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(names, &rm.PositionNames); err != nil {
		return nil, fmt.Errorf("decode position names of room %d: %w", rm.ID, err)
	}
	return &rm, nil
}
