package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iliyamo/exam-seating/internal/chart"
	"github.com/iliyamo/exam-seating/internal/sheet"
)

// PromptReplenisher asks on the terminal for a new roll number file when a
// seat position runs out.  A blank answer or end of input declines; a file
// that cannot be read is reported and the question repeated.
type PromptReplenisher struct {
	In      *bufio.Reader
	Out     io.Writer
	BaseDir string // relative answers are resolved against it
}

// NewPromptReplenisher reads answers from in and writes prompts to out.
func NewPromptReplenisher(in io.Reader, out io.Writer, baseDir string) *PromptReplenisher {
	return &PromptReplenisher{In: bufio.NewReader(in), Out: out, BaseDir: baseDir}
}

// Replenish implements chart.ReplenishmentPort.
func (p *PromptReplenisher) Replenish(ctx context.Context, position int, name string) ([]string, error) {
	label := positionLabel(position)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fmt.Fprintf(p.Out, "%s roll numbers (%s) are exhausted. New roll number file (blank to skip): ", label, name)
		line, err := p.In.ReadString('\n')
		answer := strings.TrimSpace(line)
		if answer == "" {
			if err != nil && err != io.EOF {
				return nil, err
			}
			fmt.Fprintln(p.Out)
			return nil, chart.ErrReplenishDeclined
		}
		ids, lerr := loadRoster(resolve(p.BaseDir, answer))
		if lerr == nil {
			fmt.Fprintf(p.Out, "Loaded %d roll numbers for %s.\n", len(ids), label)
			return ids, nil
		}
		fmt.Fprintf(p.Out, "Cannot use %s: %v\n", answer, lerr)
		if err == io.EOF {
			return nil, chart.ErrReplenishDeclined
		}
	}
}

func positionLabel(position int) string {
	if position >= 1 && position <= len(sheet.Positions) {
		return sheet.Positions[position-1]
	}
	return fmt.Sprintf("Position %d", position)
}

// resolve joins a relative path to base.
func resolve(base, path string) string {
	if filepath.IsAbs(path) || base == "" {
		return path
	}
	return filepath.Join(base, path)
}

func loadRoster(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return sheet.ReadRoster(f)
}
