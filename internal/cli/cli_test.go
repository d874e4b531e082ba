package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/iliyamo/exam-seating/internal/chart"
	"github.com/iliyamo/exam-seating/internal/seating"
)

// writeBook saves rows into the first sheet of a new workbook at path.
func writeBook(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, row := range rows {
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", ref, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func roster(ids ...string) [][]any {
	rows := [][]any{{"Roll Number"}}
	for _, id := range ids {
		rows = append(rows, []any{id})
	}
	return rows
}

// fixture writes a two-room details workbook seating two per bench.  The
// Left roster runs out in the first room; extra.xlsx can refill it.
func fixture(t *testing.T) string {
	dir := t.TempDir()
	writeBook(t, filepath.Join(dir, "left.xlsx"), roster("L1"))
	writeBook(t, filepath.Join(dir, "right.xlsx"), roster("R1", "R2", "R3", "R4"))
	writeBook(t, filepath.Join(dir, "extra.xlsx"), roster("X1", "X2"))
	details := filepath.Join(dir, "details.xlsx")
	writeBook(t, details, [][]any{
		{"Room Number", "Number of Rows", "Number of Bench", "Number of Student per Bench",
			"Left Path", "Middle Path", "Right Path", "Left Name", "Middle Name", "Right Name"},
		{"101", 2, 1, 2, "left.xlsx", "right.xlsx", "", "Class 9", "Class 10", ""},
		{"102", 2, 1, 2, "", "", "", "Class 9", "Class 10", ""},
	})
	return details
}

func TestGenerate_WritesWorkbookAndPromptsForRefill(t *testing.T) {
	details := fixture(t)
	out := filepath.Join(filepath.Dir(details), "chart.xlsx")

	var stdout bytes.Buffer
	c := &CLI{Logger: zap.NewNop(), In: strings.NewReader("extra.xlsx\n\n"), Out: &stdout}
	root := c.RootCommand()
	root.SetArgs([]string{"generate", "--rooms", details, "--out", out})
	require.NoError(t, root.ExecuteContext(context.Background()))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, []string{"Room 1", "Room 2"}, f.GetSheetList())

	// Room 101 seats L1 R1 | _ R2 with the default layout (title, spacer,
	// row labels, names, bench 1 on grid row 5).
	for ref, want := range map[string]string{"A1": "101", "A4": "Class 9", "B4": "Class 10", "A5": "L1", "B5": "R1", "D5": "", "E5": "R2"} {
		got, err := f.GetCellValue("Room 1", ref)
		require.NoError(t, err)
		assert.Equal(t, want, got, ref)
	}
	// The refill from extra.xlsx takes effect in room 102.
	for ref, want := range map[string]string{"A5": "X1", "B5": "R3", "D5": "X2", "E5": "R4"} {
		got, err := f.GetCellValue("Room 2", ref)
		require.NoError(t, err)
		assert.Equal(t, want, got, ref)
	}
	assert.Contains(t, stdout.String(), "Left roll numbers (Class 9) are exhausted")
	assert.Contains(t, stdout.String(), "Loaded 2 roll numbers for Left.")
}

func TestGenerate_NoPromptAndJSON(t *testing.T) {
	details := fixture(t)
	out := filepath.Join(filepath.Dir(details), "chart.xlsx")

	var stdout bytes.Buffer
	c := &CLI{Logger: zap.NewNop(), In: strings.NewReader(""), Out: &stdout}
	root := c.RootCommand()
	root.SetArgs([]string{"generate", "-r", details, "-o", out, "--no-prompt", "--json"})
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, stdout.String(), `"exhausted_positions": [`)
	assert.Contains(t, stdout.String(), `"role": "seat-value"`)
}

func TestGenerate_MissingRoster(t *testing.T) {
	dir := t.TempDir()
	details := filepath.Join(dir, "details.xlsx")
	writeBook(t, details, [][]any{
		{"Room Number", "Number of Rows", "Number of Bench", "Number of Student per Bench",
			"Left Path", "Middle Path", "Right Path", "Left Name", "Middle Name", "Right Name"},
		{"101", 1, 1, 1, "nope.xlsx", "", "", "", "", ""},
	})
	c := &CLI{Logger: zap.NewNop(), In: strings.NewReader(""), Out: &bytes.Buffer{}}
	root := c.RootCommand()
	root.SetArgs([]string{"generate", "--rooms", details, "--out", filepath.Join(dir, "o.xlsx")})
	root.SetErr(&bytes.Buffer{})
	err := root.ExecuteContext(context.Background())
	assert.ErrorContains(t, err, "Left roll numbers")
}

func TestPromptReplenisher(t *testing.T) {
	dir := t.TempDir()
	writeBook(t, filepath.Join(dir, "more.xlsx"), roster("M1", "M2"))

	var out bytes.Buffer
	p := NewPromptReplenisher(strings.NewReader("missing.xlsx\nmore.xlsx\n\n"), &out, dir)

	ids, err := p.Replenish(context.Background(), 1, "Class 9")
	require.NoError(t, err)
	assert.Equal(t, []string{"M1", "M2"}, ids)
	assert.Contains(t, out.String(), "Left roll numbers (Class 9) are exhausted")
	assert.Contains(t, out.String(), "Cannot use missing.xlsx")

	_, err = p.Replenish(context.Background(), 3, "Class 11")
	assert.ErrorIs(t, err, chart.ErrReplenishDeclined)

	_, err = p.Replenish(context.Background(), 2, "x") // input exhausted
	assert.ErrorIs(t, err, chart.ErrReplenishDeclined)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Replenish(ctx, 1, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPreviewTable(t *testing.T) {
	spec := seating.RoomSpec{RoomID: "7", Rows: 2, Benches: 2, PositionNames: []string{"A", "B"}}
	var a seating.Allocator
	alloc, err := a.AllocateRoom(spec, seating.NewQueues([][]string{{"a1", "a2", "a3"}, {"b1", "b2", "b3", "b4"}}))
	require.NoError(t, err)
	cells, err := seating.DefaultLayout().BuildGrid(spec, alloc.Assignments)
	require.NoError(t, err)

	headers, rows := previewTable(cells)
	assert.Equal(t, []string{"Row 1", "", "", "Row 2", ""}, headers)
	assert.Equal(t, [][]string{
		{"A", "B", "", "A", "B"},
		{"a1", "b1", "", "a3", "b3"},
		{"a2", "b2", "", "", "b4"},
	}, rows)
}

func TestPreview_PrintsRooms(t *testing.T) {
	details := fixture(t)
	var stdout bytes.Buffer
	c := &CLI{Logger: zap.NewNop(), In: strings.NewReader(""), Out: &stdout}
	root := c.RootCommand()
	root.SetArgs([]string{"preview", "--rooms", details})
	require.NoError(t, root.ExecuteContext(context.Background()))
	s := stdout.String()
	assert.Contains(t, s, "101")
	assert.Contains(t, s, "102")
	assert.Contains(t, s, "Class 10")
	assert.Contains(t, s, "exhausted positions: [1]")
}
