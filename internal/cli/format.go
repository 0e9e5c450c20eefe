package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/fileformatter/internal/application"
	"github.com/JonMunkholm/fileformatter/internal/core"
)

// formatOpts holds the command-line flags for the format command.
type formatOpts struct {
	output     string // output path, default <dir>/<stem>_formatted.xlsx
	preset     string // TOML file with formatting options
	noDefaults bool   // start from all rules off instead of the form defaults
	dateLayout string // Go layout for rendered dates
	options    core.FormattingOptions
}

func (c *CLI) formatCommand() *cobra.Command {
	var opts formatOpts

	cmd := &cobra.Command{
		Use:   "format [file]",
		Short: "Format a spreadsheet into an .xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := resolveOptions(cmd, &opts)
			if err != nil {
				return err
			}
			return c.runFormat(cmd, args[0], &opts, resolved)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <name>_formatted.xlsx next to the input)")
	cmd.Flags().StringVar(&opts.preset, "preset", "", "TOML file with formatting options")
	cmd.Flags().BoolVar(&opts.noDefaults, "no-defaults", false, "turn every rule off before applying preset and flags")
	cmd.Flags().StringVar(&opts.dateLayout, "date-layout", "", "Go time layout for dates (default: 1/2/2006)")
	cmd.Flags().BoolVar(&opts.options.CleanData, "clean", false, "trim and collapse whitespace in text cells")
	cmd.Flags().BoolVar(&opts.options.StandardizeHeaders, "headers", false, "title-case header names")
	cmd.Flags().BoolVar(&opts.options.RemoveEmpty, "remove-empty", false, "drop rows with no content")
	cmd.Flags().BoolVar(&opts.options.FormatDates, "dates", false, "render date cells with the date layout")
	cmd.Flags().BoolVar(&opts.options.AddSummary, "summary", false, "print a column summary after formatting")

	return cmd
}

// resolveOptions layers the form defaults, the preset file and explicitly
// set flags, in that order.
func resolveOptions(cmd *cobra.Command, opts *formatOpts) (core.FormattingOptions, error) {
	resolved := core.DefaultOptions()
	if opts.noDefaults {
		resolved = core.FormattingOptions{}
	}

	if opts.preset != "" {
		if _, err := toml.DecodeFile(opts.preset, &resolved); err != nil {
			return resolved, fmt.Errorf("read preset %s: %w", opts.preset, err)
		}
	}

	flags := cmd.Flags()
	set := func(name string, dst *bool, v bool) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	set("clean", &resolved.CleanData, opts.options.CleanData)
	set("headers", &resolved.StandardizeHeaders, opts.options.StandardizeHeaders)
	set("remove-empty", &resolved.RemoveEmpty, opts.options.RemoveEmpty)
	set("dates", &resolved.FormatDates, opts.options.FormatDates)
	set("summary", &resolved.AddSummary, opts.options.AddSummary)

	return resolved, nil
}

func (c *CLI) runFormat(cmd *cobra.Command, path string, opts *formatOpts, options core.FormattingOptions) error {
	if err := cmd.Context().Err(); err != nil {
		return err
	}

	src, err := readSource(path)
	if err != nil {
		return err
	}

	state := application.NewMachine()
	if err := state.Start(src.Name); err != nil {
		return err
	}
	c.Logger.Debug("formatting", "file", src.Name, "options", options)

	start := time.Now()
	p := core.Pipeline{Engine: core.Engine{DateLayout: opts.dateLayout}}
	ds, art, err := p.Process(src, options)
	if err != nil {
		msg := core.MapError(err)
		_ = state.Fail(msg.Message)
		status := state.Snapshot()
		c.Logger.Error("format failed", "file", src.Name, "state", status.State.String(), "code", msg.Code, "error", err)
		return fmt.Errorf("%s (%s): %s", msg.Message, msg.Code, msg.Action)
	}

	out := opts.output
	if out == "" {
		out = filepath.Join(filepath.Dir(path), art.Name)
	}
	if err := os.WriteFile(out, art.Data, 0o644); err != nil {
		_ = state.Fail(err.Error())
		c.Logger.Error("write failed", "file", src.Name, "state", state.Snapshot().State.String(), "error", err)
		return fmt.Errorf("write %s: %w", out, err)
	}
	if err := state.Complete(filepath.Base(out)); err != nil {
		return err
	}

	status := state.Snapshot()
	c.Logger.Info("formatted",
		"file", status.FileName,
		"state", status.State.String(),
		"result", status.ResultName,
		"output", out,
		"rows", art.Rows,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	fmt.Fprintln(c.out, out)

	if options.AddSummary {
		printSummary(c.out, core.Summarize(ds))
	}
	return nil
}

// readSource loads path as an upload named after its base name.
func readSource(path string) (core.Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return core.Source{}, err
	}
	if info.IsDir() {
		return core.Source{}, fmt.Errorf("%s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return core.Source{}, err
	}
	return core.Source{
		Name:    filepath.Base(path),
		Data:    data,
		ModTime: info.ModTime(),
	}, nil
}
