package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/exam-seating/internal/model"
)

// ErrChartNotFound is returned when a chart lookup fails.
var ErrChartNotFound = errors.New("chart not found")

// ChartRepo stores generated charts.
type ChartRepo struct {
	db *sql.DB
}

// NewChartRepo constructs a ChartRepo with the given DB handle.
func NewChartRepo(db *sql.DB) *ChartRepo {
	return &ChartRepo{db: db}
}

// Create inserts a generated chart.
func (r *ChartRepo) Create(ctx context.Context, c *model.Chart) error {
	const q = `INSERT INTO charts (id, owner_id, room_count, seat_count, blank_seats, body, workbook, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, c.ID, c.OwnerID, c.RoomCount, c.SeatCount, c.BlankSeats, c.Body, c.Workbook, c.CreatedAt)
	if err != nil && isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// GetByIDAndOwner loads a chart including body and workbook.
func (r *ChartRepo) GetByIDAndOwner(ctx context.Context, id string, ownerID uint64) (*model.Chart, error) {
	const q = `SELECT id, owner_id, room_count, seat_count, blank_seats, body, workbook, created_at
	           FROM charts WHERE id = ? AND owner_id = ?`
	var c model.Chart
	err := r.db.QueryRowContext(ctx, q, id, ownerID).
		Scan(&c.ID, &c.OwnerID, &c.RoomCount, &c.SeatCount, &c.BlankSeats, &c.Body, &c.Workbook, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChartNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListByOwner returns chart headers (no body, no workbook), newest first.
func (r *ChartRepo) ListByOwner(ctx context.Context, ownerID uint64, limit int) ([]model.Chart, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const q = `SELECT id, owner_id, room_count, seat_count, blank_seats, created_at
	           FROM charts WHERE owner_id = ?
	           ORDER BY created_at DESC
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Chart
	for rows.Next() {
		var c model.Chart
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.RoomCount, &c.SeatCount, &c.BlankSeats, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
