// Package spreadsheet reads Excel workbooks, one table per non-empty sheet.
package spreadsheet

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/iklobato/pdftable/engine"
	"github.com/iklobato/pdftable/format"
	"github.com/iklobato/pdftable/model"
)

// Method is reported on every table read from a workbook.
const Method = "xlsx"

var _ engine.Engine = (*Reader)(nil)

// Reader extracts sheets from .xlsx workbooks. The sheet position is
// reported as the page number.
type Reader struct{}

// New creates a Reader.
func New() *Reader {
	return &Reader{}
}

// Extract reads the workbook at input.Path.
func (r *Reader) Extract(ctx context.Context, input engine.Input, options *engine.Options) ([]model.RawTable, error) {
	if options == nil {
		options = engine.DefaultOptions()
	}

	if !engine.Supports(input, format.XLSX) {
		return nil, engine.ErrUnsupported
	}

	f, err := excelize.OpenFile(input.Path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	return readSheets(ctx, f, options.Pages)
}

// Parse reads a workbook from r.
func Parse(ctx context.Context, r io.Reader) ([]model.RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	return readSheets(ctx, f, nil)
}

func readSheets(ctx context.Context, f *excelize.File, pages []int) ([]model.RawTable, error) {
	wanted := make(map[int]bool, len(pages))
	for _, p := range pages {
		wanted[p] = true
	}

	var tables []model.RawTable
	for i, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := i + 1
		if len(wanted) > 0 && !wanted[page] {
			continue
		}

		grid, err := readSheet(f, sheet)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
		}
		if len(grid) == 0 {
			continue
		}

		raw := model.RawTable{Page: page, Method: Method, Header: grid[0]}
		if len(grid) > 1 {
			raw.Rows = grid[1:]
		}
		tables = append(tables, raw)
	}

	return tables, nil
}

// readSheet returns the used range of a sheet with ragged rows padded with
// nulls. Numeric cells keep their stored literal.
func readSheet(f *excelize.File, sheet string) ([][]model.Value, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	for len(rows) > 0 && isBlank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	grid := make([][]model.Value, len(rows))
	for r, row := range rows {
		values := make([]model.Value, width)
		for c := range values {
			if c >= len(row) || row[c] == "" {
				values[c] = model.Null
				continue
			}

			v, err := cellValue(f, sheet, c+1, r+1, row[c])
			if err != nil {
				return nil, err
			}
			values[c] = v
		}
		grid[r] = values
	}

	return grid, nil
}

func cellValue(f *excelize.File, sheet string, col, row int, raw string) (model.Value, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return model.Null, err
	}

	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return model.Null, err
	}

	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if v, ok := model.NumberLiteral(raw); ok {
			return v, nil
		}
	case excelize.CellTypeBool:
		if raw == "1" || strings.EqualFold(raw, "true") {
			return model.String("TRUE"), nil
		}
		return model.String("FALSE"), nil
	}

	return model.String(raw), nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
