// Package workbook writes tables into Excel workbooks.
//
// [Write] produces the single-sheet download of one table. [Merge] places
// several tables on consecutive sheets named "Table 1", "Table 2" and so on,
// sizing every column to its content.
package workbook

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/iklobato/pdftable/model"
)

// DefaultSheet is the sheet of a single-table workbook.
const DefaultSheet = "Sheet1"

// MaxColumnWidth is the widest column a worksheet accepts, in characters.
const MaxColumnWidth = 255

// widthPadding is added to the longest value of a column.
const widthPadding = 2

// ErrEmptyMerge is returned by Merge when there is nothing to merge.
var ErrEmptyMerge = errors.New("no tables to merge")

// SheetName returns the merge sheet name for the table at the 0-based index.
func SheetName(index int) string {
	return "Table " + strconv.Itoa(index+1)
}

// Write encodes t as a workbook with a single sheet and a bold header row.
func Write(t model.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := boldStyle(f)
	if err != nil {
		return nil, err
	}

	if err := writeSheet(f, DefaultSheet, t, bold, nil); err != nil {
		return nil, err
	}

	return save(f)
}

// Merge encodes tables as one workbook, one sheet per table in input order.
// Any failure aborts the merge.
func Merge(tables []model.Table) ([]byte, error) {
	if len(tables) == 0 {
		return nil, ErrEmptyMerge
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := boldStyle(f)
	if err != nil {
		return nil, err
	}

	for i, t := range tables {
		name := SheetName(i)

		if i == 0 {
			err = f.SetSheetName(DefaultSheet, name)
		} else {
			_, err = f.NewSheet(name)
		}
		if err != nil {
			return nil, fmt.Errorf("creating sheet %q: %w", name, err)
		}

		if err := writeSheet(f, name, t, bold, Widths(t)); err != nil {
			return nil, fmt.Errorf("writing sheet %q: %w", name, err)
		}
	}

	f.SetActiveSheet(0)

	return save(f)
}

// Widths returns the width of every column of t: the length in characters
// of its longest value or name plus padding, capped at MaxColumnWidth.
func Widths(t model.Table) []float64 {
	widths := make([]float64, len(t.Columns))

	for c, name := range t.Columns {
		longest := utf8.RuneCountInString(name)
		for _, row := range t.Rows {
			if c < len(row) {
				longest = max(longest, utf8.RuneCountInString(row[c].Clean().String()))
			}
		}
		widths[c] = min(float64(longest+widthPadding), MaxColumnWidth)
	}

	return widths
}

func boldStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
}

func writeSheet(f *excelize.File, sheet string, t model.Table, headerStyle int, widths []float64) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}

	for i, w := range widths {
		if err := sw.SetColWidth(i+1, i+1, w); err != nil {
			return err
		}
	}

	if len(t.Columns) > 0 {
		header := make([]any, len(t.Columns))
		for i, name := range t.Columns {
			header[i] = excelize.Cell{StyleID: headerStyle, Value: name}
		}
		if err := sw.SetRow("A1", header); err != nil {
			return err
		}
	}

	for r, row := range t.Rows {
		cells := make([]any, len(row))
		for c, v := range row {
			cells[c] = cellValue(v)
		}

		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return err
		}
	}

	return sw.Flush()
}

// cellValue maps a table value to the value stored in the sheet. Empty
// values leave the cell blank.
func cellValue(v model.Value) any {
	v = v.Clean()

	if v.Kind() == model.KindNumber {
		if i, ok := v.Int(); ok {
			return i
		}
		if f, ok := v.Float(); ok {
			return f
		}
	}

	if v.String() == "" {
		return nil
	}
	return v.String()
}

func save(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
