// Package sheet reads roster and room-detail workbooks and writes seating
// charts as xlsx workbooks.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/exam-seating/internal/seating"
)

// Column headers understood by the readers.
const (
	ColRollNumber = "Roll Number"
	ColRoomNumber = "Room Number"
	ColRows       = "Number of Rows"
	ColBenches    = "Number of Bench"
	ColPerBench   = "Number of Student per Bench"
)

// Positions are the seat positions a room-details workbook can describe, in
// bench order.  Each has a "<Position> Path" and "<Position> Name" column.
var Positions = []string{"Left", "Middle", "Right"}

var (
	// ErrMissingColumn is returned when a required header is absent.
	ErrMissingColumn = errors.New("missing column")
	// ErrInvalidRoomRow is returned for a room row with unusable values.
	ErrInvalidRoomRow = errors.New("invalid room row")
	// ErrEmptyWorkbook is returned when the first sheet has no header row.
	ErrEmptyWorkbook = errors.New("workbook has no rows")
)

// ReadRoster returns the non-blank values of the "Roll Number" column of the
// first worksheet, in sheet order.
func ReadRoster(r io.Reader) ([]string, error) {
	rows, err := firstSheetRows(r)
	if err != nil {
		return nil, err
	}
	cols := headerIndex(rows[0])
	idx, ok := cols[ColRollNumber]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, ColRollNumber)
	}
	var out []string
	for _, row := range rows[1:] {
		if v := cell(row, idx); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

// RoomRow is one line of the room-details workbook.
type RoomRow struct {
	RoomNumber string
	Rows       int
	Benches    int
	PerBench   int
	Paths      []string // roster file per position, aligned with Positions
	Names      []string // display name per position, aligned with Positions
}

// RoomDetails is the parsed room-details workbook.
type RoomDetails struct {
	// PerBench is taken from the first room and applies to every room,
	// because rosters are shared across the run.
	PerBench int
	Rooms    []RoomRow
}

// PositionNames returns the first PerBench names of a row, falling back to
// the position label when a name cell is blank.
func (d RoomDetails) PositionNames(row RoomRow) []string {
	names := make([]string, d.PerBench)
	for i := range names {
		names[i] = row.Names[i]
		if names[i] == "" {
			names[i] = Positions[i]
		}
	}
	return names
}

// Specs converts every room to a seating.RoomSpec.
func (d RoomDetails) Specs() []seating.RoomSpec {
	out := make([]seating.RoomSpec, len(d.Rooms))
	for i, r := range d.Rooms {
		out[i] = seating.RoomSpec{
			RoomID:        r.RoomNumber,
			Rows:          r.Rows,
			Benches:       r.Benches,
			PositionNames: d.PositionNames(r),
		}
	}
	return out
}

// RosterPaths lists the roster file of each used position, from the first room.
func (d RoomDetails) RosterPaths() []string {
	if len(d.Rooms) == 0 {
		return nil
	}
	return append([]string(nil), d.Rooms[0].Paths[:d.PerBench]...)
}

// ReadRoomDetails parses a room-details workbook.  All columns are required,
// path columns included, even when a position is unused; their values are
// checked separately by CheckRosterPaths.
func ReadRoomDetails(r io.Reader) (RoomDetails, error) {
	rows, err := firstSheetRows(r)
	if err != nil {
		return RoomDetails{}, err
	}
	cols := headerIndex(rows[0])
	var missing []string
	for _, name := range requiredRoomColumns() {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return RoomDetails{}, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	var d RoomDetails
	for i, row := range rows[1:] {
		line := i + 2
		if blankRow(row) {
			continue
		}
		rr := RoomRow{RoomNumber: cell(row, cols[ColRoomNumber])}
		if rr.RoomNumber == "" {
			return RoomDetails{}, fmt.Errorf("%w: line %d: empty %q", ErrInvalidRoomRow, line, ColRoomNumber)
		}
		for _, f := range []struct {
			col string
			dst *int
		}{{ColRows, &rr.Rows}, {ColBenches, &rr.Benches}, {ColPerBench, &rr.PerBench}} {
			n, err := parseCount(cell(row, cols[f.col]))
			if err != nil {
				return RoomDetails{}, fmt.Errorf("%w: line %d: %q: %v", ErrInvalidRoomRow, line, f.col, err)
			}
			*f.dst = n
		}
		for _, p := range Positions {
			rr.Paths = append(rr.Paths, cell(row, cols[p+" Path"]))
			rr.Names = append(rr.Names, cell(row, cols[p+" Name"]))
		}
		d.Rooms = append(d.Rooms, rr)
	}
	if len(d.Rooms) == 0 {
		return RoomDetails{}, fmt.Errorf("%w: no rooms listed", ErrInvalidRoomRow)
	}
	d.PerBench = d.Rooms[0].PerBench
	if d.PerBench < 1 || d.PerBench > len(Positions) {
		return RoomDetails{}, fmt.Errorf("%w: %q must be between 1 and %d, got %d", ErrInvalidRoomRow, ColPerBench, len(Positions), d.PerBench)
	}
	return d, nil
}

// CheckRosterPaths reports a missing roster path for a used position.  Only
// callers that load rosters from the paths need it.
func (d RoomDetails) CheckRosterPaths() error {
	for i, p := range d.RosterPaths() {
		if p == "" {
			return fmt.Errorf("%w: no roster path for %s position", ErrInvalidRoomRow, Positions[i])
		}
	}
	return nil
}

func requiredRoomColumns() []string {
	cols := []string{ColRoomNumber, ColRows, ColBenches, ColPerBench}
	for _, p := range Positions {
		cols = append(cols, p+" Path")
	}
	for _, p := range Positions {
		cols = append(cols, p+" Name")
	}
	return cols
}

func firstSheetRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyWorkbook
	}
	return rows, nil
}

// headerIndex maps trimmed header text to its column index.
func headerIndex(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, h := range header {
		if h = strings.TrimSpace(h); h != "" {
			if _, dup := m[h]; !dup {
				m[h] = i
			}
		}
	}
	return m
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseCount accepts whole numbers, including spreadsheet floats such as "3.0".
func parseCount(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative value %d", n)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < 0 {
		return 0, fmt.Errorf("not a whole number: %q", s)
	}
	return int(f), nil
}
