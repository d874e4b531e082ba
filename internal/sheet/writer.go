package sheet

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/exam-seating/internal/seating"
)

// Print metrics of the reference chart.
const (
	fontFamily      = "Times New Roman"
	titleFontSize   = 20
	labelFontSize   = 14
	seatFontSize    = 16
	benchWidth      = 13.57 // column width of a seat column
	benchHeight     = 50    // row height of a seat-value row
	borderMedium    = 2
	defaultSheetTag = "Sheet1"
)

// RoomSheet is one room's grid ready to be written.
type RoomSheet struct {
	Spec  seating.RoomSpec
	Cells []seating.GridCell
}

// SheetName returns the worksheet name of the i-th room (0-based).
func SheetName(i int) string { return fmt.Sprintf("Room %d", i+1) }

// Render builds a workbook with one worksheet per room.  Cells are placed by
// their explicit coordinates; merge spans become merged ranges and the cell
// role selects the style.  The caller must Close the returned file.
func Render(rooms []RoomSheet) (*excelize.File, error) {
	f := excelize.NewFile()
	styles, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	for i, room := range rooms {
		name := SheetName(i)
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("create sheet %q: %w", name, err)
		}
		if err := writeRoom(f, name, room, styles); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("room %q: %w", room.Spec.RoomID, err)
		}
	}
	if len(rooms) > 0 {
		if err := f.DeleteSheet(defaultSheetTag); err != nil {
			_ = f.Close()
			return nil, err
		}
		f.SetActiveSheet(0)
	}
	return f, nil
}

// WriteWorkbook renders the rooms and writes the xlsx to w.
func WriteWorkbook(w io.Writer, rooms []RoomSheet) error {
	f, err := Render(rooms)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return f.Write(w)
}

// Bytes renders the rooms into an in-memory xlsx.
func Bytes(rooms []RoomSheet) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, rooms); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type styleSet map[seating.CellRole]int

func newStyles(f *excelize.File) (styleSet, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: borderMedium},
		{Type: "right", Color: "000000", Style: borderMedium},
		{Type: "top", Color: "000000", Style: borderMedium},
		{Type: "bottom", Color: "000000", Style: borderMedium},
	}
	defs := map[seating.CellRole]*excelize.Style{
		seating.RoleRoomTitle: {
			Font:      &excelize.Font{Family: fontFamily, Size: titleFontSize, Bold: true, Underline: "single"},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		},
		seating.RoleRowLabel: {
			Font:      &excelize.Font{Family: fontFamily, Size: labelFontSize, Bold: true},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		},
		seating.RoleNameLabel: {
			Font:      &excelize.Font{Family: fontFamily, Size: labelFontSize, Bold: true},
			Alignment: &excelize.Alignment{Horizontal: "center", WrapText: true},
			Border:    border,
		},
		seating.RoleSeatValue: {
			Font:      &excelize.Font{Size: seatFontSize},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
			Border:    border,
		},
	}
	out := make(styleSet, len(defs))
	for role, st := range defs {
		id, err := f.NewStyle(st)
		if err != nil {
			return nil, fmt.Errorf("style %s: %w", role, err)
		}
		out[role] = id
	}
	return out, nil
}

func writeRoom(f *excelize.File, name string, room RoomSheet, styles styleSet) error {
	seatRows := map[int]bool{}
	seatCols := map[int]bool{}
	for _, c := range room.Cells {
		ref, err := excelize.CoordinatesToCellName(c.Col, c.Row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, ref, c.Value); err != nil {
			return err
		}
		end := ref
		if c.Span != nil && (c.Span.Rows > 1 || c.Span.Cols > 1) {
			end, err = excelize.CoordinatesToCellName(c.Col+c.Span.Cols-1, c.Row+c.Span.Rows-1)
			if err != nil {
				return err
			}
			if err := f.MergeCell(name, ref, end); err != nil {
				return err
			}
		}
		if id, ok := styles[c.Role]; ok {
			if err := f.SetCellStyle(name, ref, end, id); err != nil {
				return err
			}
		}
		switch c.Role {
		case seating.RoleNameLabel:
			seatCols[c.Col] = true
		case seating.RoleSeatValue:
			seatRows[c.Row] = true
		}
	}
	for col := range seatCols {
		letter, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(name, letter, letter, benchWidth); err != nil {
			return err
		}
	}
	for row := range seatRows {
		if err := f.SetRowHeight(name, row, benchHeight); err != nil {
			return err
		}
	}
	return nil
}
