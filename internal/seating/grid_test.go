package seating_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/iliyamo/exam-seating/internal/seating"
)

func cellsByRole(cells []seating.GridCell) map[seating.CellRole][]seating.GridCell {
	out := map[seating.CellRole][]seating.GridCell{}
	for _, c := range cells {
		out[c.Role] = append(out[c.Role], c)
	}
	return out
}

type coord struct{ row, col int }

// assertNoOverlap checks that no two cells, spans included, claim the same coordinate.
func assertNoOverlap(t assert.TestingT, cells []seating.GridCell) {
	taken := map[coord]seating.GridCell{}
	for _, c := range cells {
		rows, cols := 1, 1
		if c.Span != nil {
			rows, cols = c.Span.Rows, c.Span.Cols
		}
		for r := c.Row; r < c.Row+rows; r++ {
			for col := c.Col; col < c.Col+cols; col++ {
				if prev, ok := taken[coord{r, col}]; ok {
					assert.Failf(t, "overlap", "%v and %v share (%d,%d)", prev, c, r, col)
				}
				taken[coord{r, col}] = c
			}
		}
	}
}

func TestBuildGrid_ReferenceLayout(t *testing.T) {
	spec := seating.RoomSpec{RoomID: "101", Rows: 2, Benches: 1, PositionNames: []string{"Left", "Right"}}
	var a seating.Allocator
	alloc, err := a.AllocateRoom(spec, seating.NewQueues([][]string{{"A1", "A2"}, {"B1"}}))
	require.NoError(t, err)

	cells, err := seating.DefaultLayout().BuildGrid(spec, alloc.Assignments)
	require.NoError(t, err)

	assert.Equal(t, []seating.GridCell{
		{Row: 1, Col: 1, Value: "101", Role: seating.RoleRoomTitle, Span: &seating.Span{Rows: 1, Cols: 5}},
		{Row: 3, Col: 1, Value: "Row 1", Role: seating.RoleRowLabel, Span: &seating.Span{Rows: 1, Cols: 2}},
		{Row: 3, Col: 4, Value: "Row 2", Role: seating.RoleRowLabel, Span: &seating.Span{Rows: 1, Cols: 2}},
		{Row: 4, Col: 1, Value: "Left", Role: seating.RoleNameLabel},
		{Row: 4, Col: 2, Value: "Right", Role: seating.RoleNameLabel},
		{Row: 4, Col: 4, Value: "Left", Role: seating.RoleNameLabel},
		{Row: 4, Col: 5, Value: "Right", Role: seating.RoleNameLabel},
		{Row: 5, Col: 1, Value: "A1", Role: seating.RoleSeatValue},
		{Row: 5, Col: 2, Value: "B1", Role: seating.RoleSeatValue},
		{Row: 5, Col: 4, Value: "A2", Role: seating.RoleSeatValue},
		{Row: 5, Col: 5, Value: "", Role: seating.RoleSeatValue},
	}, cells)

	rows, cols, err := seating.DefaultLayout().Dimensions(spec)
	require.NoError(t, err)
	assert.Equal(t, 5, rows)
	assert.Equal(t, 5, cols)
}

func TestBuildGrid_MissingAssignmentsRenderBlank(t *testing.T) {
	spec := seating.RoomSpec{RoomID: "7", Rows: 1, Benches: 2, PositionNames: []string{"Left", "Middle", "Right"}}
	cells, err := seating.DefaultLayout().BuildGrid(spec, []seating.SeatAssignment{
		{RoomID: "7", Row: 1, Bench: 2, Position: 3, Identifier: "X"},
		{RoomID: "other", Row: 1, Bench: 1, Position: 1, Identifier: "ignored"},
	})
	require.NoError(t, err)

	seats := cellsByRole(cells)[seating.RoleSeatValue]
	require.Len(t, seats, 6)
	for _, c := range seats {
		if c.Row == seating.DefaultLayout().SeatRow(2) && c.Col == 3 {
			assert.Equal(t, "X", c.Value)
			continue
		}
		assert.Empty(t, c.Value)
	}
}

func TestBuildGrid_GroupTooNarrow(t *testing.T) {
	spec := seating.RoomSpec{RoomID: "7", Rows: 1, Benches: 1, PositionNames: []string{"Left", "Right"}}
	_, err := seating.Layout{GroupWidth: 1}.BuildGrid(spec, nil)
	assert.ErrorIs(t, err, seating.ErrGroupTooNarrow)
}

func TestBuildGrid_EmptyRoom(t *testing.T) {
	cells, err := seating.DefaultLayout().BuildGrid(seating.RoomSpec{RoomID: "empty"}, nil)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, seating.RoleRoomTitle, cells[0].Role)
	assert.Nil(t, cells[0].Span)
}

func TestGridCell_JSONRole(t *testing.T) {
	b, err := json.Marshal(seating.GridCell{Row: 1, Col: 2, Value: "v", Role: seating.RoleNameLabel})
	require.NoError(t, err)
	assert.JSONEq(t, `{"row":1,"col":2,"value":"v","role":"name-label"}`, string(b))

	var c seating.GridCell
	require.NoError(t, json.Unmarshal(b, &c))
	assert.Equal(t, seating.RoleNameLabel, c.Role)
}

func TestBuildGrid_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := rapid.IntRange(1, 4).Draw(rt, "positions")
		names := make([]string, p)
		lists := make([][]string, p)
		for i := range names {
			names[i] = rapid.StringMatching(`[A-Z][a-z]{2,6}`).Draw(rt, "name")
			lists[i] = rapid.SliceOfN(rapid.StringMatching(`[0-9]{4}`), 0, 30).Draw(rt, "list")
		}
		spec := seating.RoomSpec{
			RoomID:        "R",
			Rows:          rapid.IntRange(1, 5).Draw(rt, "rows"),
			Benches:       rapid.IntRange(0, 5).Draw(rt, "benches"),
			PositionNames: names,
		}
		layout := seating.Layout{
			GroupWidth:   p + 1 + rapid.IntRange(0, 3).Draw(rt, "extra width"),
			TitleSpacing: rapid.IntRange(0, 2).Draw(rt, "spacing"),
		}

		var a seating.Allocator
		alloc, err := a.AllocateRoom(spec, seating.NewQueues(lists))
		require.NoError(rt, err)
		cells, err := layout.BuildGrid(spec, alloc.Assignments)
		require.NoError(rt, err)

		roles := cellsByRole(cells)
		assert.Len(rt, roles[seating.RoleRoomTitle], 1)
		assert.Len(rt, roles[seating.RoleRowLabel], spec.Rows)
		assert.Len(rt, roles[seating.RoleNameLabel], spec.Rows*p)
		assert.Len(rt, roles[seating.RoleSeatValue], spec.Benches*spec.Rows*p)
		assertNoOverlap(rt, cells)

		var want []seating.SeatAssignment
		for _, as := range alloc.Assignments {
			if as.Identifier != "" {
				want = append(want, as)
			}
		}
		got, err := layout.ReadSeatBand(spec, cells)
		require.NoError(rt, err)
		assert.Equal(rt, want, got)
	})
}
