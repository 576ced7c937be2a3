package model

import "strconv"

// RawTable is one tabular region as reported by an extraction engine, before
// missing-value cleansing and identifier assignment. Header holds the first
// row of the region; Rows holds the rest. Cells may be Null.
type RawTable struct {
	// Page is the 1-based page the region was found on, or 0 when the
	// engine has no notion of pages.
	Page int

	// Method names the detection strategy the engine used, if any.
	Method string

	Header []Value
	Rows   [][]Value
}

// NewRawTable builds a RawTable from text cells, treating the first row as
// the header. Empty cells become Null, as a dataframe reader would report
// them.
func NewRawTable(cells [][]string) RawTable {
	var raw RawTable
	for i, row := range cells {
		values := make([]Value, len(row))
		for j, text := range row {
			if text == "" {
				values[j] = Null
			} else {
				values[j] = String(text)
			}
		}
		if i == 0 {
			raw.Header = values
			continue
		}
		raw.Rows = append(raw.Rows, values)
	}
	return raw
}

// Width returns the widest of the header and every row.
func (r *RawTable) Width() int {
	width := len(r.Header)
	for _, row := range r.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// unnamed returns the placeholder name for a header cell with no text.
func unnamed(position int) string {
	return "Unnamed: " + strconv.Itoa(position)
}
