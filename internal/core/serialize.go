package core

import (
	"fmt"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	// SheetName names the only sheet of every produced workbook.
	SheetName = "Formatted Data"

	// XLSXContentType is the MIME type of produced workbooks.
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	formattedSuffix = "_formatted.xlsx"
)

// Serialize writes ds to a single-sheet workbook: headers on row 1, data
// rows below in order. Empty and Null cells are left blank; other cells keep
// their type.
func Serialize(ds *Dataset, originalName string) (*Artifact, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return nil, fmt.Errorf("open stream writer: %w", err)
	}

	header := make([]interface{}, len(ds.Headers))
	for i, h := range ds.Headers {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, fmt.Errorf("write headers: %w", err)
	}

	for i, row := range ds.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if err := sw.SetRow(cell, cellValues(row)); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("flush sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	return &Artifact{
		Name:        FormattedName(originalName),
		Data:        buf.Bytes(),
		ContentType: XLSXContentType,
		Rows:        len(ds.Rows),
	}, nil
}

func cellValues(row Row) []interface{} {
	values := make([]interface{}, len(row))
	for i, c := range row {
		switch c.Kind() {
		case KindString:
			values[i] = c.str
		case KindNumber:
			values[i] = c.num
		case KindBool:
			values[i] = c.b
		default:
			values[i] = nil
		}
	}
	return values
}

// FormattedName derives the download name: the base name without its last
// extension plus "_formatted.xlsx". "report.csv" becomes
// "report_formatted.xlsx".
func FormattedName(originalName string) string {
	base := path.Base(strings.ReplaceAll(originalName, `\`, "/"))
	if base == "." || base == "/" {
		base = ""
	}
	return strings.TrimSuffix(base, path.Ext(base)) + formattedSuffix
}
