package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/iliyamo/exam-seating/internal/chart"
	"github.com/iliyamo/exam-seating/internal/seating"
)

var (
	colorCyan = lipgloss.Color("36")
	colorDim  = lipgloss.Color("240")

	styleTitle  = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(colorCyan)
	styleHeader = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	styleCell   = lipgloss.NewStyle().Padding(0, 1)
	styleLabel  = styleCell.Bold(true)
)

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		rooms      string
		groupWidth int
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print each room's seating grid to the terminal",
		Long: `Print each room's seating grid to the terminal without writing a workbook.
Exhausted positions are left blank; nothing is prompted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreview(cmd.Context(), rooms, groupWidth)
		},
	}
	cmd.Flags().StringVarP(&rooms, "rooms", "r", "", "room details workbook (required)")
	cmd.Flags().IntVar(&groupWidth, "group-width", 0, "grid columns per physical row (default: positions + 1)")
	_ = cmd.MarkFlagRequired("rooms")
	return cmd
}

func (c *CLI) runPreview(ctx context.Context, path string, groupWidth int) error {
	details, rosters, err := loadInputs(path)
	if err != nil {
		return err
	}
	gen := chart.NewGenerator(seating.Layout{GroupWidth: groupWidth}, c.Logger)
	ch, err := gen.Generate(ctx, chart.Request{Rooms: details.Specs(), Rosters: rosters})
	if err != nil {
		return err
	}
	for _, r := range ch.Rooms {
		headers, rows := previewTable(r.Cells)
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
			Headers(headers...).
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return styleHeader
				case row == 0:
					return styleLabel // position names
				}
				return styleCell
			})
		fmt.Fprintln(c.Out, styleTitle.Render(r.Spec.RoomID))
		fmt.Fprintln(c.Out, t.String())
		if len(r.Exhausted) > 0 {
			fmt.Fprintf(c.Out, "exhausted positions: %v\n", r.Exhausted)
		}
		fmt.Fprintln(c.Out)
	}
	return nil
}

// previewTable flattens a room grid into table headers (the row-label band)
// and body rows (the name band followed by one row per bench).  Columns not
// covered by any cell, such as the spacer between row groups, stay empty.
func previewTable(cells []seating.GridCell) ([]string, [][]string) {
	width := 0
	labelRow := 0
	for _, c := range cells {
		if c.Role == seating.RoleRoomTitle {
			continue
		}
		end := c.Col
		if c.Span != nil {
			end = c.Col + c.Span.Cols - 1
		}
		width = max(width, end)
		if c.Role == seating.RoleRowLabel {
			labelRow = c.Row
		}
	}
	if width == 0 {
		return nil, nil
	}

	headers := make([]string, width)
	body := map[int][]string{}
	for _, c := range cells {
		switch c.Role {
		case seating.RoleRowLabel:
			headers[c.Col-1] = c.Value
		case seating.RoleNameLabel, seating.RoleSeatValue:
			if c.Row <= labelRow {
				continue
			}
			line, ok := body[c.Row]
			if !ok {
				line = make([]string, width)
				body[c.Row] = line
			}
			line[c.Col-1] = c.Value
		}
	}
	keys := make([]int, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	rows := make([][]string, len(keys))
	for i, k := range keys {
		rows[i] = body[k]
	}
	return headers, rows
}
