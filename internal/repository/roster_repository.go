package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iliyamo/exam-seating/internal/model"
)

// ErrRosterNotFound is returned when no roster matches a lookup.
var ErrRosterNotFound = errors.New("roster not found")

// RosterRepo stores identifier lists per seat position.
type RosterRepo struct {
	db *sql.DB
}

// NewRosterRepo constructs a RosterRepo with the given DB handle.
func NewRosterRepo(db *sql.DB) *RosterRepo {
	return &RosterRepo{db: db}
}

// Create inserts a roster.  On success ID and CreatedAt are populated.
func (r *RosterRepo) Create(ctx context.Context, ro *model.Roster) error {
	ids, err := json.Marshal(ro.Identifiers)
	if err != nil {
		return fmt.Errorf("encode identifiers: %w", err)
	}
	const q = `INSERT INTO rosters (owner_id, name, position, identifier_count, identifiers) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, ro.OwnerID, ro.Name, ro.Position, len(ro.Identifiers), ids)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ro.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT created_at FROM rosters WHERE id = ?`, ro.ID).Scan(&ro.CreatedAt)
}

// GetByIDAndOwner loads a roster with its identifiers.
func (r *RosterRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Roster, error) {
	const q = `SELECT id, owner_id, name, position, identifiers, created_at
	           FROM rosters WHERE id = ? AND owner_id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id, ownerID))
}

// NextForPosition returns the owner's oldest roster for the position whose
// id is greater than afterID.  It is the storage side of replenishment.
func (r *RosterRepo) NextForPosition(ctx context.Context, ownerID uint64, position int, afterID uint64) (*model.Roster, error) {
	const q = `SELECT id, owner_id, name, position, identifiers, created_at
	           FROM rosters
	           WHERE owner_id = ? AND position = ? AND id > ?
	           ORDER BY id
	           LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, ownerID, position, afterID))
}

// ListByOwner returns roster summaries ordered by position then creation.
func (r *RosterRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.RosterSummary, error) {
	const q = `SELECT id, name, position, identifier_count, created_at
	           FROM rosters WHERE owner_id = ?
	           ORDER BY position, id`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RosterSummary
	for rows.Next() {
		var s model.RosterSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Position, &s.Count, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByIDAndOwner removes a roster.
func (r *RosterRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rosters WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRosterNotFound
	}
	return nil
}

func (r *RosterRepo) scanOne(row *sql.Row) (*model.Roster, error) {
	var (
		ro  model.Roster
		ids []byte
	)
	if err := row.Scan(&ro.ID, &ro.OwnerID, &ro.Name, &ro.Position, &ids, &ro.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRosterNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(ids, &ro.Identifiers); err != nil {
		return nil, fmt.Errorf("decode identifiers of roster %d: %w", ro.ID, err)
	}
	return &ro, nil
}
