// Package cli implements the seatchart command-line interface.
package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *zap.Logger
	In     io.Reader // answers to replenishment prompts
	Out    io.Writer // prompts, previews and --json output
}

// New creates a CLI reading prompts from stdin and writing to stdout.
func New(logger *zap.Logger) *CLI {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CLI{Logger: logger, In: os.Stdin, Out: os.Stdout}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "seatchart",
		Short: "seatchart builds exam seating charts from room and roll number workbooks",
		Long: `seatchart seats identifiers from per-position roll number lists into exam
rooms, bench by bench, and writes one formatted worksheet per room.`,
		SilenceUsage: true,
	}
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.previewCommand())
	return root
}
