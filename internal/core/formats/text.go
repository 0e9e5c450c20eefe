package formats

import (
	"strings"

	"github.com/JonMunkholm/fileformatter/internal/core"
)

// parseText turns each non-blank line into a [line number, trimmed text]
// row. Numbering counts only the kept lines.
func parseText(src core.Source) ([]string, []core.Row, error) {
	text, err := core.DecodeText(src.Data)
	if err != nil {
		return nil, nil, core.MalformedSource("", err)
	}

	var rows []core.Row
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rows = append(rows, core.Row{core.Num(float64(len(rows) + 1)), core.Str(line)})
	}
	if len(rows) == 0 {
		return nil, nil, core.EmptySource("")
	}

	return []string{"Line Number", "Content"}, rows, nil
}
