package formats

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/JonMunkholm/fileformatter/internal/core"
)

// parseCSV reads comma-separated text. Header cells are kept verbatim; data
// cells are typed by inference. Empty lines after the header become blank
// rows so row positions match the file.
func parseCSV(src core.Source) ([]string, []core.Row, error) {
	r := csv.NewReader(core.NewTextReader(bytes.NewReader(src.Data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var (
		headers  []string
		rows     []core.Row
		lastLine int
	)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, core.MalformedSource("", err)
		}

		line, _ := r.FieldPos(0)
		if headers == nil {
			headers = rec
		} else {
			// encoding/csv skips empty lines.
			for range line - lastLine - 1 {
				rows = append(rows, core.Row{})
			}
			row := make(core.Row, len(rec))
			for i, v := range rec {
				row[i] = inferCell(v)
			}
			rows = append(rows, row)
		}

		last := len(rec) - 1
		end, _ := r.FieldPos(last)
		lastLine = end + strings.Count(rec[last], "\n")
	}

	if headers == nil {
		return nil, nil, core.EmptySource("")
	}
	return headers, rows, nil
}
