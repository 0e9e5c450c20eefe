package core

import (
	"strings"
	"time"
)

// DefaultDateLayout renders ISO dates as short US dates, e.g. 1/15/2024.
const DefaultDateLayout = "1/2/2006"

// Engine applies formatting rules to datasets. The zero Engine uses
// DefaultDateLayout.
type Engine struct {
	// DateLayout is the time layout used for ISO date strings.
	DateLayout string
}

var defaultEngine Engine

// Transform applies opts with the default engine.
func Transform(ds *Dataset, opts FormattingOptions) *Dataset {
	return defaultEngine.Transform(ds, opts)
}

// Transform returns a new dataset with the enabled rules applied in a fixed
// order: clean data, standardize headers, remove empty rows, format dates.
// ds is not modified and the result shares its original snapshot.
//
// AddSummary and CustomPrompt are accepted but change nothing.
func (e Engine) Transform(ds *Dataset, opts FormattingOptions) *Dataset {
	headers := append([]string(nil), ds.Headers...)
	rows := cloneRows(ds.Rows)

	if opts.CleanData {
		rows = mapCells(rows, cleanCell)
	}
	if opts.StandardizeHeaders {
		for i, h := range headers {
			headers[i] = StandardizeHeader(h)
		}
	}
	if opts.RemoveEmpty {
		rows = dropBlankRows(rows)
	}
	if opts.FormatDates {
		layout := e.dateLayout()
		rows = mapCells(rows, func(c Cell) Cell { return formatDateCell(c, layout) })
	}

	return ds.derive(headers, rows)
}

func (e Engine) dateLayout() string {
	if e.DateLayout == "" {
		return DefaultDateLayout
	}
	return e.DateLayout
}

// mapCells rewrites every cell in place; rows must already be a private copy.
func mapCells(rows []Row, fn func(Cell) Cell) []Row {
	for _, r := range rows {
		for i, c := range r {
			r[i] = fn(c)
		}
	}
	return rows
}

// cleanCell trims a string cell and collapses inner whitespace runs.
func cleanCell(c Cell) Cell {
	s, ok := c.Text()
	if !ok {
		return c
	}
	return Str(CollapseSpace(s))
}

// CollapseSpace trims s and replaces each run of whitespace with one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StandardizeHeader converts a header to space-separated title-cased words
// built from its ASCII letters and digits: " Customer-ID#  " becomes
// "Customer Id". Applying it twice gives the same result as once.
func StandardizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}

	words := strings.FieldsFunc(b.String(), func(r rune) bool { return r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func dropBlankRows(rows []Row) []Row {
	kept := rows[:0]
	for _, r := range rows {
		if !r.IsBlank() {
			kept = append(kept, r)
		}
	}
	return kept
}

// formatDateCell rewrites serial-date numbers and ISO date strings.
func formatDateCell(c Cell, layout string) Cell {
	if n, ok := c.Number(); ok && n > minDateSerial && n < maxDateSerial {
		t := serialToTime(n)
		return Str(formatMDY(t))
	}
	if s, ok := c.Text(); ok {
		if t, ok := parseISODate(s); ok {
			return Str(t.Format(layout))
		}
	}
	return c
}

func formatMDY(t time.Time) string {
	return t.Format("1/2/2006")
}
