package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/exam-seating/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var roomCols = []string{"id", "owner_id", "room_number", "seat_rows", "benches_per_row", "position_names", "created_at", "updated_at"}

func TestRoomRepo_CreateReadsBack(t *testing.T) {
	db, mock := newMock(t)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO rooms`).
		WithArgs(uint64(3), "101", uint32(2), uint32(5), []byte(`["Class 9","Class 10"]`)).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(`SELECT .* FROM rooms WHERE id = \? AND owner_id = \?`).
		WithArgs(uint64(11), uint64(3)).
		WillReturnRows(sqlmock.NewRows(roomCols).AddRow(11, 3, "101", 2, 5, `["Class 9","Class 10"]`, now, now))

	rm := &model.Room{OwnerID: 3, RoomNumber: "101", SeatRows: 2, BenchesPerRow: 5, PositionNames: []string{"Class 9", "Class 10"}}
	require.NoError(t, NewRoomRepo(db).Create(context.Background(), rm))
	assert.Equal(t, uint64(11), rm.ID)
	assert.Equal(t, now, rm.CreatedAt)
	assert.Equal(t, []string{"Class 9", "Class 10"}, rm.PositionNames)
}

func TestRoomRepo_CreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO rooms`).WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := NewRoomRepo(db).Create(context.Background(), &model.Room{OwnerID: 1, RoomNumber: "101"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRoomRepo_GetManyByOwnerKeepsOrder(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`FROM rooms WHERE id = \?`).WithArgs(uint64(9), uint64(1)).
		WillReturnRows(sqlmock.NewRows(roomCols).AddRow(9, 1, "B", 1, 1, `["Left"]`, now, now))
	mock.ExpectQuery(`FROM rooms WHERE id = \?`).WithArgs(uint64(4), uint64(1)).
		WillReturnRows(sqlmock.NewRows(roomCols).AddRow(4, 1, "A", 1, 1, `["Left"]`, now, now))
	mock.ExpectQuery(`FROM rooms WHERE id = \?`).WithArgs(uint64(7), uint64(1)).
		WillReturnRows(sqlmock.NewRows(roomCols))

	_, err := NewRoomRepo(db).GetManyByOwner(context.Background(), []uint64{9, 4, 7}, 1)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.ErrorContains(t, err, "room 7")
}

func TestRoomRepo_DeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`DELETE FROM rooms`).WithArgs(uint64(5), uint64(1)).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, NewRoomRepo(db).DeleteByIDAndOwner(context.Background(), 5, 1), ErrRoomNotFound)
}

var rosterCols = []string{"id", "owner_id", "name", "position", "identifiers", "created_at"}

func TestRosterRepo_NextForPosition(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`FROM rosters\s+WHERE owner_id = \? AND position = \? AND id > \?`).
		WithArgs(uint64(2), 1, uint64(10)).
		WillReturnRows(sqlmock.NewRows(rosterCols).AddRow(12, 2, "left-2.xlsx", 1, `["X1","X2"]`, now))
	mock.ExpectQuery(`FROM rosters\s+WHERE owner_id = \? AND position = \? AND id > \?`).
		WithArgs(uint64(2), 1, uint64(12)).
		WillReturnRows(sqlmock.NewRows(rosterCols))

	repo := NewRosterRepo(db)
	ro, err := repo.NextForPosition(context.Background(), 2, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), ro.ID)
	assert.Equal(t, []string{"X1", "X2"}, ro.Identifiers)

	_, err = repo.NextForPosition(context.Background(), 2, 1, 12)
	assert.ErrorIs(t, err, ErrRosterNotFound)
}

func TestRosterRepo_Create(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectExec(`INSERT INTO rosters`).
		WithArgs(uint64(2), "left.xlsx", 1, 2, []byte(`["A","B"]`)).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery(`SELECT created_at FROM rosters WHERE id = \?`).WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	ro := &model.Roster{OwnerID: 2, Name: "left.xlsx", Position: 1, Identifiers: []string{"A", "B"}}
	require.NoError(t, NewRosterRepo(db).Create(context.Background(), ro))
	assert.Equal(t, uint64(5), ro.ID)
	assert.Equal(t, now, ro.CreatedAt)
}

func TestChartRepo_GetMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM charts WHERE id = \? AND owner_id = \?`).WithArgs("abc", uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err := NewChartRepo(db).GetByIDAndOwner(context.Background(), "abc", 1)
	assert.ErrorIs(t, err, ErrChartNotFound)
}

func TestChartRepo_ListClampsLimit(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`FROM charts WHERE owner_id = \?`).WithArgs(uint64(1), 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "room_count", "seat_count", "blank_seats", "created_at"}).
			AddRow("c1", 1, 2, 40, 3, now))

	charts, err := NewChartRepo(db).ListByOwner(context.Background(), 1, 1000)
	require.NoError(t, err)
	require.Len(t, charts, 1)
	assert.Equal(t, 3, charts[0].BlankSeats)
}

func TestTokenRepo_RotateRejectsExpired(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id, expires_at FROM refresh_tokens`).WithArgs("old").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at"}).AddRow(4, time.Now().Add(-time.Hour)))
	mock.ExpectRollback()

	_, err := NewTokenRepo(db).Rotate(context.Background(), "old", "new", time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTokenRepo_Rotate(t *testing.T) {
	db, mock := newMock(t)
	exp := time.Now().Add(24 * time.Hour)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id, expires_at FROM refresh_tokens`).WithArgs("old").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at"}).AddRow(4, time.Now().Add(time.Hour)))
	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at`).WithArgs("old").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).WithArgs(uint64(4), "new", exp).WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectCommit()

	uid, err := NewTokenRepo(db).Rotate(context.Background(), "old", "new", exp)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), uid)
}
