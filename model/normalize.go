package model

// Normalize converts a raw engine result into a canonical Table.
//
// The table identifier is derived from the 0-based detection index. Null
// cells become the empty-string sentinel. Header cells without text are
// named "Unnamed: <position>". Rows shorter than the header are padded with
// the sentinel and rows longer than the header widen it, so Normalize never
// fails.
func Normalize(raw RawTable, index int) Table {
	width := raw.Width()

	t := Table{
		ID:      TableID(index),
		Columns: make([]string, width),
		Rows:    make([][]Value, len(raw.Rows)),
	}

	for j := 0; j < width; j++ {
		var name string
		if j < len(raw.Header) {
			name = raw.Header[j].String()
		}
		if name == "" {
			name = unnamed(j)
		}
		t.Columns[j] = name
	}

	for i, row := range raw.Rows {
		values := make([]Value, width)
		for j := range values {
			if j < len(row) {
				values[j] = row[j].Clean()
			} else {
				values[j] = Empty
			}
		}
		t.Rows[i] = values
	}

	return t
}

// NormalizeAll normalizes every raw result in detection order, assigning
// identifiers table-1 through table-n.
func NormalizeAll(raws []RawTable) []Table {
	tables := make([]Table, len(raws))
	for i, raw := range raws {
		tables[i] = Normalize(raw, i)
	}
	return tables
}
