package formats

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/fileformatter/internal/core"
)

// parseWorkbook reads the first sheet of an .xlsx file. Cell types stored in
// the workbook are kept; dates arrive as their serial numbers.
func parseWorkbook(src core.Source) ([]string, []core.Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(src.Data))
	if err != nil {
		return nil, nil, core.MalformedSource("", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, core.EmptySource("")
	}
	sheet := sheets[0]

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, core.MalformedSource("", err)
	}
	if len(raw) == 0 {
		return nil, nil, core.EmptySource("")
	}

	table := make([]core.Row, len(raw))
	for r, cols := range raw {
		row := make(core.Row, len(cols))
		for c, v := range cols {
			if v == "" {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, nil, core.MalformedSource("", err)
			}
			ct, err := f.GetCellType(sheet, name)
			if err != nil {
				return nil, nil, core.MalformedSource("", err)
			}
			row[c] = workbookCell(v, ct)
		}
		table[r] = row
	}

	headers, rows := splitHeader(table)
	return headers, rows, nil
}

// workbookCell converts a raw cell value using its stored type.
func workbookCell(v string, ct excelize.CellType) core.Cell {
	switch ct {
	case excelize.CellTypeBool:
		return core.Bool(v == "1" || strings.EqualFold(v, "true"))
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeError, excelize.CellTypeDate:
		return core.Str(v)
	default:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return core.Num(f)
		}
		return core.Str(v)
	}
}

// parseLegacyWorkbook reads the first sheet of a BIFF .xls file. The decoder
// only exposes display strings, so cells are typed by inference.
func parseLegacyWorkbook(src core.Source) (headers []string, rows []core.Row, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = core.MalformedSource("", fmt.Errorf("xls decoder: %v", r))
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(src.Data), "utf-8")
	if err != nil {
		return nil, nil, core.MalformedSource("", err)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil, core.EmptySource("")
	}

	var table []core.Row
	for i := 0; i <= int(sheet.MaxRow); i++ {
		r := legacyRow(sheet, i)
		if r == nil {
			table = append(table, core.Row{})
			continue
		}
		row := make(core.Row, r.LastCol())
		for c := r.FirstCol(); c < r.LastCol(); c++ {
			row[c] = inferCell(r.Col(c))
		}
		table = append(table, row)
	}

	for len(table) > 0 && len(table[len(table)-1]) == 0 {
		table = table[:len(table)-1]
	}
	if len(table) == 0 {
		return nil, nil, core.EmptySource("")
	}

	headers, rows = splitHeader(table)
	return headers, rows, nil
}

// legacyRow returns row i, or nil when the sheet holds no record for it.
// The decoder dereferences missing rows instead of returning nil.
func legacyRow(sheet *xls.WorkSheet, i int) (r *xls.Row) {
	defer func() {
		if recover() != nil {
			r = nil
		}
	}()
	return sheet.Row(i)
}
