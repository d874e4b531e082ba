package sheet_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/exam-seating/internal/seating"
	"github.com/iliyamo/exam-seating/internal/sheet"
)

// workbook builds an in-memory xlsx whose first sheet holds rows.
func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, row := range rows {
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", ref, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestReadRoster(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Name", " Roll Number "},
		{"a", "R-001"},
		{"b", ""},
		{"c", 1002},
		{"d"},
		{"e", "R-001"},
	})

	ids, err := sheet.ReadRoster(buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"R-001", "1002", "R-001"}, ids)
}

func TestReadRoster_MissingColumn(t *testing.T) {
	_, err := sheet.ReadRoster(workbook(t, [][]any{{"Name"}, {"x"}}))
	assert.ErrorIs(t, err, sheet.ErrMissingColumn)
}

func roomHeader() []any {
	return []any{
		"Room Number", "Number of Rows", "Number of Bench", "Number of Student per Bench",
		"Left Path", "Middle Path", "Right Path", "Left Name", "Middle Name", "Right Name",
	}
}

func TestReadRoomDetails(t *testing.T) {
	buf := workbook(t, [][]any{
		roomHeader(),
		{"101", 2, 3, 2, "left.xlsx", "mid.xlsx", "", "Class 9", "", ""},
		{"102", "1", "4.0", 2, "", "", "", "Class 9", "", "Class 10"},
		{},
	})

	d, err := sheet.ReadRoomDetails(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, d.PerBench)
	assert.Equal(t, []string{"left.xlsx", "mid.xlsx"}, d.RosterPaths())
	assert.Equal(t, []seating.RoomSpec{
		{RoomID: "101", Rows: 2, Benches: 3, PositionNames: []string{"Class 9", "Middle"}},
		{RoomID: "102", Rows: 1, Benches: 4, PositionNames: []string{"Class 9", "Middle"}},
	}, d.Specs())
}

func TestReadRoomDetails_Errors(t *testing.T) {
	_, err := sheet.ReadRoomDetails(workbook(t, [][]any{{"Room Number"}, {"1"}}))
	assert.ErrorIs(t, err, sheet.ErrMissingColumn)

	_, err = sheet.ReadRoomDetails(workbook(t, [][]any{
		roomHeader(),
		{"101", "two", 3, 2, "l", "m", "r", "", "", ""},
	}))
	assert.ErrorIs(t, err, sheet.ErrInvalidRoomRow)

	_, err = sheet.ReadRoomDetails(workbook(t, [][]any{
		roomHeader(),
		{"101", 1, 1, 4, "l", "m", "r", "", "", ""},
	}))
	assert.ErrorIs(t, err, sheet.ErrInvalidRoomRow)

	_, err = sheet.ReadRoomDetails(workbook(t, [][]any{roomHeader()}))
	assert.ErrorIs(t, err, sheet.ErrInvalidRoomRow)
}

func TestWriteWorkbook_PlacesCellsAndMerges(t *testing.T) {
	spec := seating.RoomSpec{RoomID: "101", Rows: 2, Benches: 1, PositionNames: []string{"Left", "Right"}}
	var a seating.Allocator
	alloc, err := a.AllocateRoom(spec, seating.NewQueues([][]string{{"A1", "A2"}, {"B1"}}))
	require.NoError(t, err)
	cells, err := seating.DefaultLayout().BuildGrid(spec, alloc.Assignments)
	require.NoError(t, err)

	data, err := sheet.Bytes([]sheet.RoomSheet{{Spec: spec, Cells: cells}, {Spec: spec, Cells: cells}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Room 1", "Room 2"}, f.GetSheetList())
	for ref, want := range map[string]string{"A1": "101", "A3": "Row 1", "D3": "Row 2", "B4": "Right", "A5": "A1", "B5": "B1", "D5": "A2", "E5": ""} {
		got, err := f.GetCellValue("Room 1", ref)
		require.NoError(t, err)
		assert.Equal(t, want, got, ref)
	}

	merges, err := f.GetMergeCells("Room 1")
	require.NoError(t, err)
	var ranges []string
	for _, m := range merges {
		ranges = append(ranges, m.GetStartAxis()+":"+m.GetEndAxis())
	}
	assert.ElementsMatch(t, []string{"A1:E1", "A3:B3", "D3:E3"}, ranges)

	h, err := f.GetRowHeight("Room 1", 5)
	require.NoError(t, err)
	assert.InDelta(t, 50, h, 0.01)
}

func TestCheckRosterPaths(t *testing.T) {
	d, err := sheet.ReadRoomDetails(workbook(t, [][]any{
		roomHeader(),
		{"101", 1, 1, 2, "left.xlsx", "", "", "", "", ""},
	}))
	require.NoError(t, err)
	assert.ErrorIs(t, d.CheckRosterPaths(), sheet.ErrInvalidRoomRow)
	assert.ErrorContains(t, d.CheckRosterPaths(), "Middle")
}
