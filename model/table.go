package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// IDPrefix is the prefix of every table identifier.
const IDPrefix = "table-"

// Table is the canonical tabular representation: an identifier, an ordered
// list of column names and row-major values addressed by column position.
// Column names need not be unique.
type Table struct {
	ID      string
	Columns []string
	Rows    [][]Value
}

// TableID returns the identifier for the table at the given 0-based
// detection index.
func TableID(index int) string {
	return IDPrefix + strconv.Itoa(index+1)
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
	return len(t.Columns)
}

// Cell returns the value at the given row and column (0-indexed).
func (t *Table) Cell(row, col int) (Value, bool) {
	if row < 0 || row >= len(t.Rows) {
		return Value{}, false
	}
	if col < 0 || col >= len(t.Rows[row]) {
		return Value{}, false
	}
	return t.Rows[row][col], true
}

// Validate checks the shape invariants: every row has one value per column
// and no value is Null.
func (t *Table) Validate() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d values, want %d", i, len(row), len(t.Columns))
		}
		for j, v := range row {
			if v.IsNull() {
				return fmt.Errorf("row %d column %d holds a null value", i, j)
			}
		}
	}
	return nil
}

// Records returns the rows as ordered records keyed by column name.
func (t *Table) Records() []Record {
	records := make([]Record, len(t.Rows))
	for i, row := range t.Rows {
		rec := make(Record, len(t.Columns))
		for j, name := range t.Columns {
			var v Value
			if j < len(row) {
				v = row[j]
			}
			rec[j] = Field{Name: name, Value: v}
		}
		records[i] = rec
	}
	return records
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() Table {
	c := Table{
		ID:      t.ID,
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]Value, len(t.Rows)),
	}
	for i, row := range t.Rows {
		c.Rows[i] = append([]Value(nil), row...)
	}
	return c
}

// Field is a named value inside a Record.
type Field struct {
	Name  string
	Value Value
}

// Record is one table row as an ordered list of fields. Order and duplicate
// names are preserved, which a Go map cannot do.
type Record []Field

// Get returns the value of the first field with the given name.
func (r Record) Get(name string) (Value, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// MarshalJSON encodes the record as a JSON object with fields in order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
