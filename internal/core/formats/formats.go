// Package formats registers the input parsers with the core format registry.
// Import it for side effects wherever core.Parse is used.
//
//	import _ "github.com/JonMunkholm/fileformatter/internal/core/formats"
package formats

import "github.com/JonMunkholm/fileformatter/internal/core"

// TextExtensions are read line by line by the plain-text parser.
var TextExtensions = []string{".txt", ".text", ".log", ".md", ".markdown", ".tsv", ".ini", ".cfg", ".conf"}

func init() {
	core.RegisterFormat(core.Format{Name: "workbook", Extensions: []string{".xlsx"}, Parse: parseWorkbook})
	core.RegisterFormat(core.Format{Name: "legacy workbook", Extensions: []string{".xls"}, Parse: parseLegacyWorkbook})
	core.RegisterFormat(core.Format{Name: "csv", Extensions: []string{".csv"}, Parse: parseCSV})
	core.RegisterFormat(core.Format{Name: "json", Extensions: []string{".json"}, Parse: parseJSON})
	core.RegisterFormat(core.Format{Name: "text", Extensions: TextExtensions, Parse: parseText})
}

// splitHeader turns the first table row into header strings and returns the
// remaining rows as data.
func splitHeader(table []core.Row) ([]string, []core.Row) {
	first := table[0]
	headers := make([]string, len(first))
	for i, c := range first {
		headers[i] = c.String()
	}
	return headers, table[1:]
}
