package seating

import (
	"fmt"
	"sort"
)

// CellRole tells the exporter what a grid cell represents so it can pick a
// style.  The role never changes the cell's position or value.
type CellRole int

const (
	RoleRoomTitle CellRole = iota + 1
	RoleRowLabel
	RoleNameLabel
	RoleSeatValue
)

var roleNames = map[CellRole]string{
	RoleRoomTitle: "room-title",
	RoleRowLabel:  "row-label",
	RoleNameLabel: "name-label",
	RoleSeatValue: "seat-value",
}

func (r CellRole) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// MarshalText encodes the role by name.
func (r CellRole) MarshalText() ([]byte, error) {
	if _, ok := roleNames[r]; !ok {
		return nil, fmt.Errorf("unknown cell role %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a role name produced by MarshalText.
func (r *CellRole) UnmarshalText(b []byte) error {
	for k, v := range roleNames {
		if v == string(b) {
			*r = k
			return nil
		}
	}
	return fmt.Errorf("unknown cell role %q", string(b))
}

// Span is a merge region anchored at its cell.  The cell reserves the whole
// Rows × Cols rectangle.
type Span struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// GridCell is one addressed cell of a rendered room.  Row and Col are 1-based.
type GridCell struct {
	Row   int      `json:"row"`
	Col   int      `json:"col"`
	Value string   `json:"value"`
	Role  CellRole `json:"role"`
	Span  *Span    `json:"span,omitempty"`
}

// DefaultTitleSpacing is the number of blank grid rows between the room
// title and the row labels in the printed chart.
const DefaultTitleSpacing = 1

// Layout controls how a room is laid out on the grid.  Physical rows become
// adjacent column groups of GroupWidth columns; benches become grid rows.
type Layout struct {
	// GroupWidth is the number of grid columns per physical row.  Zero means
	// one column per seat position plus a trailing spacer column.
	GroupWidth int
	// TitleSpacing is the number of blank grid rows under the room title.
	TitleSpacing int
}

// DefaultLayout matches the printed reference chart.
func DefaultLayout() Layout {
	return Layout{TitleSpacing: DefaultTitleSpacing}
}

// groupWidth resolves the effective column-group width for p positions.
func (l Layout) groupWidth(p int) (int, error) {
	w := l.GroupWidth
	if w == 0 {
		w = p + 1
	}
	minW := p
	if minW < 1 {
		minW = 1
	}
	if w < minW {
		return 0, fmt.Errorf("group width %d for %d positions: %w", w, p, ErrGroupTooNarrow)
	}
	return w, nil
}

func (l Layout) spacing() int {
	if l.TitleSpacing < 0 {
		return 0
	}
	return l.TitleSpacing
}

// rowLabelRow is the grid row of the "Row {r}" band.
func (l Layout) rowLabelRow() int { return 2 + l.spacing() }

// nameLabelRow is the grid row of the position-name band.
func (l Layout) nameLabelRow() int { return l.rowLabelRow() + 1 }

// SeatRow returns the grid row that holds the given bench.
func (l Layout) SeatRow(bench int) int { return l.nameLabelRow() + bench }

// Dimensions returns the number of grid rows and columns the room occupies,
// spacer columns between groups included.
func (l Layout) Dimensions(spec RoomSpec) (rows, cols int, err error) {
	w, err := l.groupWidth(spec.Positions())
	if err != nil {
		return 0, 0, err
	}
	return l.SeatRow(max(spec.Benches, 0)), usedColumns(spec, w), nil
}

// usedColumns is the column count from the first group to the last seat
// column of the last group.
func usedColumns(spec RoomSpec, w int) int {
	if spec.Rows <= 0 {
		return 1
	}
	return (spec.Rows-1)*w + max(spec.Positions(), 1)
}

// BuildGrid transposes a room's assignments into addressed grid cells: a room
// title band, a row-label band, a position-name band and one seat-value row
// per bench.  Physical row r occupies columns (r-1)*W+1 .. (r-1)*W+P.  A seat
// with no matching assignment renders as an empty cell.  Assignments that
// belong to another room are ignored.
func (l Layout) BuildGrid(spec RoomSpec, assignments []SeatAssignment) ([]GridCell, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	p := spec.Positions()
	w, err := l.groupWidth(p)
	if err != nil {
		return nil, err
	}

	index := make(map[seatKey]string, len(assignments))
	for _, a := range assignments {
		if a.RoomID != spec.RoomID {
			continue
		}
		index[a.key()] = a.Identifier
	}

	cells := make([]GridCell, 0, 1+spec.Rows*(1+p*(1+spec.Benches)))

	title := GridCell{Row: 1, Col: 1, Value: spec.RoomID, Role: RoleRoomTitle}
	if c := usedColumns(spec, w); c > 1 {
		title.Span = &Span{Rows: 1, Cols: c}
	}
	cells = append(cells, title)

	labelRow := l.rowLabelRow()
	for r := 1; r <= spec.Rows; r++ {
		c := GridCell{Row: labelRow, Col: (r-1)*w + 1, Value: fmt.Sprintf("Row %d", r), Role: RoleRowLabel}
		if p > 1 {
			c.Span = &Span{Rows: 1, Cols: p}
		}
		cells = append(cells, c)
	}

	nameRow := l.nameLabelRow()
	for r := 1; r <= spec.Rows; r++ {
		for pos := 1; pos <= p; pos++ {
			cells = append(cells, GridCell{Row: nameRow, Col: (r-1)*w + pos, Value: spec.PositionNames[pos-1], Role: RoleNameLabel})
		}
	}

	for b := 1; b <= spec.Benches; b++ {
		gridRow := l.SeatRow(b)
		for r := 1; r <= spec.Rows; r++ {
			for pos := 1; pos <= p; pos++ {
				cells = append(cells, GridCell{
					Row:   gridRow,
					Col:   (r-1)*w + pos,
					Value: index[seatKey{row: r, bench: b, position: pos}],
					Role:  RoleSeatValue,
				})
			}
		}
	}
	return cells, nil
}

// ReadSeatBand recovers the non-empty seat assignments from a grid built with
// the same layout and room.  Cells are located by coordinates, so their order
// does not matter.  The result is in allocation order (row, bench, position).
func (l Layout) ReadSeatBand(spec RoomSpec, cells []GridCell) ([]SeatAssignment, error) {
	p := spec.Positions()
	w, err := l.groupWidth(p)
	if err != nil {
		return nil, err
	}
	nameRow := l.nameLabelRow()
	var out []SeatAssignment
	for _, c := range cells {
		if c.Role != RoleSeatValue || c.Value == "" {
			continue
		}
		bench := c.Row - nameRow
		row := (c.Col-1)/w + 1
		pos := (c.Col-1)%w + 1
		if bench < 1 || bench > spec.Benches || row > spec.Rows || pos > p {
			continue
		}
		out = append(out, SeatAssignment{RoomID: spec.RoomID, Row: row, Bench: bench, Position: pos, Identifier: c.Value})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		if a.Bench != b.Bench {
			return a.Bench < b.Bench
		}
		return a.Position < b.Position
	})
	return out, nil
}
