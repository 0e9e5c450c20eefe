package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/fileformatter/internal/core"
)

func (c *CLI) inspectCommand() *cobra.Command {
	var rows int

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show what the parser reads from a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			src, err := readSource(args[0])
			if err != nil {
				return err
			}

			preview, err := core.PreviewSource(src, rows)
			if err != nil {
				msg := core.MapError(err)
				return fmt.Errorf("%s (%s): %s", msg.Message, msg.Code, msg.Action)
			}
			c.Logger.Debug("parsed", "file", src.Name, "format", preview.Format, "elapsed_ms", preview.ProcessingTimeMs)

			printPreview(c.out, preview)
			return nil
		},
	}

	cmd.Flags().IntVar(&rows, "rows", core.DefaultPreviewRows, "number of rows to show")

	return cmd
}

func printPreview(w io.Writer, p *core.PreviewResponse) {
	fmt.Fprintf(w, "%s (%s): %d rows, %d columns\n\n", p.FileName, p.Format, p.TotalRows, len(p.Headers))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(p.Headers, "\t"))
	for _, row := range p.Rows {
		cells := make([]string, len(p.Headers))
		for i := range cells {
			cells[i] = row.At(i).String()
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()

	fmt.Fprintln(w)
	printSummary(w, p.Columns)
}

func printSummary(w io.Writer, cols []core.ColumnSummary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tFILLED\tBLANK\tNUMERIC\tMIN\tMAX\tMEAN\tMEDIAN")
	for _, col := range cols {
		lo, hi, mean, median := "-", "-", "-", "-"
		if s := col.Stats; s != nil {
			lo, hi, mean, median = num(s.Min), num(s.Max), num(s.Mean), num(s.Median)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%s\t%s\t%s\n",
			col.Name, col.Filled, col.Blanks, col.Numeric, lo, hi, mean, median)
	}
	tw.Flush()
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
