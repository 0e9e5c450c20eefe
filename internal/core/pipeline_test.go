package core_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/fileformatter/internal/core"
	_ "github.com/JonMunkholm/fileformatter/internal/core/formats"
)

func readSheet(t *testing.T, data []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(core.SheetName)
	require.NoError(t, err)
	return rows
}

func TestRun_CSVWithAllRules(t *testing.T) {
	src := core.Source{
		Name: "Customers.csv",
		Data: []byte(" Customer-ID# ,signup_date,Notes\n7,2024-01-15,  hello   there \n,,\n8,44197,ok\n"),
	}

	art, err := core.Run(src, core.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "Customers_formatted.xlsx", art.Name)
	assert.Equal(t, core.XLSXContentType, art.ContentType)
	assert.Equal(t, 2, art.Rows)

	assert.Equal(t, [][]string{
		{"Customer Id", "Signup Date", "Notes"},
		{"7", "1/15/2024", "hello there"},
		{"8", "1/1/2021", "ok"},
	}, readSheet(t, art.Data))
}

func TestRun_ParseFailureShortCircuits(t *testing.T) {
	tests := []struct {
		name string
		src  core.Source
		kind error
	}{
		{"empty csv", core.Source{Name: "empty.csv"}, core.ErrEmptySource},
		{"bad json", core.Source{Name: "x.json", Data: []byte(`{"not":"array"}`)}, core.ErrMalformedSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			art, err := core.Run(tt.src, core.DefaultOptions())
			assert.Nil(t, art)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestPipeline_ProcessReturnsTransformedDataset(t *testing.T) {
	p := core.Pipeline{Engine: core.Engine{DateLayout: "2006-01-02"}}
	src := core.Source{Name: "dates.json", Data: []byte(`[{"when":44197}]`)}

	ds, art, err := p.Process(src, core.FormattingOptions{FormatDates: true})
	require.NoError(t, err)
	require.NotNil(t, art)

	assert.Equal(t, core.Str("1/1/2021"), ds.Rows[0][0])
	assert.Equal(t, core.Num(44197), ds.Original().Rows()[0][0], "snapshot keeps the parsed value")
}

func TestRun_UnknownTypeProducesMetadataWorkbook(t *testing.T) {
	art, err := core.Run(core.Source{Name: "scan.pdf", Data: []byte("%PDF-1.7")}, core.FormattingOptions{})
	require.NoError(t, err)

	rows := readSheet(t, art.Data)
	require.Len(t, rows, 6)
	assert.Equal(t, []string{"Property", "Value"}, rows[0])
	assert.Equal(t, []string{"File Name", "scan.pdf"}, rows[1])
}
