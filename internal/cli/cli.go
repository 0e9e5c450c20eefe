// Package cli implements the formatctl command-line interface.
//
// formatctl runs the same local pipeline as the server against files on
// disk:
//   - format: parse, transform and write the formatted workbook
//   - inspect: print the headers, first rows and a column summary
//
// All commands support --verbose (-v) for debug-level logging. Logs go to
// stderr through the pretty slog handler; results go to stdout.
package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	_ "github.com/JonMunkholm/fileformatter/internal/core/formats" // Register all formats
	"github.com/JonMunkholm/fileformatter/internal/logging"
)

const appName = "formatctl"

// CLI holds shared state for all commands.
type CLI struct {
	Logger *slog.Logger

	out  io.Writer
	errw io.Writer
}

// New creates a CLI printing results to out and logs to errw.
func New(out, errw io.Writer) *CLI {
	return &CLI{
		Logger: logging.New(errw, "info", "pretty"),
		out:    out,
		errw:   errw,
	}
}

// SetVerbose switches the logger between info and debug level.
func (c *CLI) SetVerbose(verbose bool) {
	level := "info"
	if verbose {
		level = "debug"
	}
	c.Logger = logging.New(c.errw, level, "pretty")
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           appName,
		Short:         "formatctl cleans spreadsheets into formatted workbooks",
		Long:          `formatctl reads CSV, Excel, JSON and text files, applies the selected formatting rules and writes a single-sheet .xlsx workbook.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.SetVerbose(verbose)
		},
	}
	root.SetOut(c.out)
	root.SetErr(c.errw)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.formatCommand())
	root.AddCommand(c.inspectCommand())

	return root
}

// Execute runs the command tree with args.
func (c *CLI) Execute(ctx context.Context, args []string) error {
	root := c.RootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
