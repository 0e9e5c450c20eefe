package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell_Accessors(t *testing.T) {
	tests := []struct {
		name    string
		cell    Cell
		kind    CellKind
		display string
		blank   bool
	}{
		{"zero value", Cell{}, KindEmpty, "", true},
		{"null", Null(), KindNull, "", true},
		{"empty string", Str(""), KindString, "", true},
		{"string", Str("x"), KindString, "x", false},
		{"integer", Num(5), KindNumber, "5", false},
		{"fraction", Num(0.25), KindNumber, "0.25", false},
		{"large", Num(44197), KindNumber, "44197", false},
		{"false", Bool(false), KindBool, "false", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.cell.Kind())
			assert.Equal(t, tt.display, tt.cell.String())
			assert.Equal(t, tt.blank, tt.cell.IsBlank())
		})
	}
}

func TestCell_TypedGetters(t *testing.T) {
	s, ok := Num(3).Text()
	assert.False(t, ok)
	assert.Empty(t, s)

	n, ok := Num(3).Number()
	assert.True(t, ok)
	assert.Equal(t, 3.0, n)

	b, ok := Bool(true).Boolean()
	assert.True(t, ok)
	assert.True(t, b)
}

func TestCell_MarshalJSON(t *testing.T) {
	row := Row{Str("a"), Num(1.5), Bool(true), Null(), Empty()}
	out, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `["a",1.5,true,null,null]`, string(out))
}

func TestRow_At(t *testing.T) {
	r := Row{Str("a")}
	assert.Equal(t, Str("a"), r.At(0))
	assert.Equal(t, Empty(), r.At(5), "reading past a ragged row yields Empty")
	assert.Equal(t, Empty(), r.At(-1))
}

func TestDataset_SnapshotIndependence(t *testing.T) {
	rows := []Row{{Str("a"), Num(1)}}
	ds := NewDataset([]string{"h1", "h2"}, rows)

	rows[0][0] = Str("changed")
	ds.Rows[0][1] = Num(99)

	snap := ds.Original().Rows()
	assert.Equal(t, Row{Str("a"), Num(1)}, snap[0])

	snap[0][0] = Str("scribble")
	assert.Equal(t, Str("a"), ds.Original().Rows()[0][0], "Rows returns a copy")
	assert.Equal(t, 1, ds.Original().Len())
}

func TestDataset_Width(t *testing.T) {
	ds := NewDataset([]string{"a"}, []Row{{Num(1), Num(2), Num(3)}, {}})
	assert.Equal(t, 3, ds.Width())
}

func TestSource_Ext(t *testing.T) {
	tests := map[string]string{
		"report.XLSX":       ".xlsx",
		"archive.tar.gz":    ".gz",
		"README":            "",
		"dir.v2/notes.Txt":  ".txt",
		`C:\Users\a\b.json`: ".json",
	}
	for name, want := range tests {
		assert.Equal(t, want, Source{Name: name}.Ext(), name)
	}
}

func TestFormattedName(t *testing.T) {
	tests := map[string]string{
		"report.csv":         "report_formatted.xlsx",
		"Report.Final.XLSX":  "Report.Final_formatted.xlsx",
		"README":             "README_formatted.xlsx",
		"":                   "_formatted.xlsx",
		"../../etc/data.xls": "data_formatted.xlsx",
		`C:\tmp\sheet.xls`:   "sheet_formatted.xlsx",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormattedName(in), in)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.True(t, opts.CleanData)
	assert.True(t, opts.StandardizeHeaders)
	assert.True(t, opts.RemoveEmpty)
	assert.True(t, opts.FormatDates)
	assert.False(t, opts.AddSummary)
	assert.Empty(t, opts.CustomPrompt)
}
