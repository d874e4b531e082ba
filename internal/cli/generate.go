package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/exam-seating/internal/chart"
	"github.com/iliyamo/exam-seating/internal/seating"
	"github.com/iliyamo/exam-seating/internal/sheet"
)

// generateOptions are the flags of the generate command.
type generateOptions struct {
	rooms            string
	out              string
	groupWidth       int
	titleSpacing     int
	noPrompt         bool
	replenishDrained bool
	asJSON           bool
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	opts := generateOptions{titleSpacing: seating.DefaultTitleSpacing}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a seating chart workbook",
		Long: `Generate a seating chart workbook from a room details workbook.

The room details workbook lists one room per row and, on its first row, the
roll number file of each seat position (Left Path, Middle Path, Right Path).
Relative paths are resolved against the directory of the room details file.
Rooms are seated in order; when a position runs out, you are asked for a
follow-up roll number file unless --no-prompt is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.rooms, "rooms", "r", "", "room details workbook (required)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "seating_chart.xlsx", "output workbook")
	cmd.Flags().IntVar(&opts.groupWidth, "group-width", 0, "grid columns per physical row (default: positions + 1)")
	cmd.Flags().IntVar(&opts.titleSpacing, "title-spacing", opts.titleSpacing, "blank rows under the room title")
	cmd.Flags().BoolVar(&opts.noPrompt, "no-prompt", false, "leave exhausted positions blank instead of asking for a file")
	cmd.Flags().BoolVar(&opts.replenishDrained, "replenish-drained", false, "also ask when a list was used up exactly")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the chart as JSON")
	_ = cmd.MarkFlagRequired("rooms")

	return cmd
}

// runGenerate loads the inputs, seats every room and writes the workbook.
func (c *CLI) runGenerate(ctx context.Context, opts generateOptions) error {
	details, rosters, err := loadInputs(opts.rooms)
	if err != nil {
		return err
	}

	gen := chart.NewGenerator(seating.Layout{GroupWidth: opts.groupWidth, TitleSpacing: opts.titleSpacing}, c.Logger)
	gen.ReplenishDrained = opts.replenishDrained
	if !opts.noPrompt {
		gen.Replenisher = NewPromptReplenisher(c.In, c.Out, filepath.Dir(opts.rooms))
	}
	gen.Progress = func(roomID string, ratio float64) {
		c.Logger.Debug("progress", zap.String("room", roomID), zap.Float64("ratio", ratio))
	}

	ch, err := gen.Generate(ctx, chart.Request{Rooms: details.Specs(), Rosters: rosters})
	if err != nil {
		return err
	}

	sheets := make([]sheet.RoomSheet, len(ch.Rooms))
	for i, r := range ch.Rooms {
		sheets[i] = sheet.RoomSheet{Spec: r.Spec, Cells: r.Cells}
	}
	if err := writeFile(opts.out, sheets); err != nil {
		return err
	}
	c.Logger.Info("chart written", zap.String("path", opts.out), zap.Int("rooms", len(ch.Rooms)),
		zap.Int("seats", ch.Seats()), zap.Int("blank", ch.Blank()))

	if opts.asJSON {
		enc := json.NewEncoder(c.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(ch)
	}
	return nil
}

// loadInputs reads the room details workbook and the roster of each used position.
func loadInputs(path string) (sheet.RoomDetails, [][]string, error) {
	details, err := readDetails(path)
	if err != nil {
		return sheet.RoomDetails{}, nil, err
	}
	if err := details.CheckRosterPaths(); err != nil {
		return sheet.RoomDetails{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	base := filepath.Dir(path)
	rosters := make([][]string, details.PerBench)
	for i, p := range details.RosterPaths() {
		full := resolve(base, p)
		if rosters[i], err = loadRoster(full); err != nil {
			return sheet.RoomDetails{}, nil, fmt.Errorf("%s roll numbers %s: %w", sheet.Positions[i], full, err)
		}
	}
	return details, rosters, nil
}

func readDetails(path string) (sheet.RoomDetails, error) {
	f, err := os.Open(path)
	if err != nil {
		return sheet.RoomDetails{}, err
	}
	defer f.Close()
	d, err := sheet.ReadRoomDetails(f)
	if err != nil {
		return sheet.RoomDetails{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func writeFile(path string, rooms []sheet.RoomSheet) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return sheet.WriteWorkbook(f, rooms)
}
