package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/iklobato/pdftable/model"
)

// ErrMalformedEdit is returned when an edit cannot be reconciled with a
// table shape.
var ErrMalformedEdit = errors.New("malformed edit")

// Edit is a client's edited table: the echoed identifier, the optional
// column order and the rows as JSON objects.
type Edit struct {
	ID      string          `json:"id"`
	Columns []string        `json:"columns,omitempty"`
	Data    json.RawMessage `json:"data"`
}

// Table reconstructs the canonical table from the edit.
func (e Edit) Table() (model.Table, error) {
	records, err := DecodeRecords(e.Data)
	if err != nil {
		return model.Table{}, err
	}
	return FromEdit(e.ID, e.Columns, records)
}

// FromEdit rebuilds a table from records. When columns is nil the column
// order is taken from the first record. Every record must carry exactly the
// column names, counting duplicates; the k-th field with a repeated name
// fills the k-th column of that name. Null values become the sentinel.
func FromEdit(id string, columns []string, records []model.Record) (model.Table, error) {
	if id == "" {
		return model.Table{}, fmt.Errorf("%w: missing table id", ErrMalformedEdit)
	}

	if columns == nil && len(records) > 0 {
		columns = make([]string, len(records[0]))
		for i, f := range records[0] {
			columns[i] = f.Name
		}
	}

	positions := make(map[string][]int, len(columns))
	for i, name := range columns {
		positions[name] = append(positions[name], i)
	}

	t := model.Table{
		ID:      id,
		Columns: append([]string(nil), columns...),
		Rows:    make([][]model.Value, len(records)),
	}

	for r, rec := range records {
		if len(rec) != len(columns) {
			return model.Table{}, fmt.Errorf("%w: record %d has %d fields, want %d", ErrMalformedEdit, r, len(rec), len(columns))
		}

		row := make([]model.Value, len(columns))
		seen := make(map[string]int, len(columns))

		for _, f := range rec {
			k := seen[f.Name]
			cols := positions[f.Name]
			if k >= len(cols) {
				return model.Table{}, fmt.Errorf("%w: record %d has unexpected field %q", ErrMalformedEdit, r, f.Name)
			}
			seen[f.Name] = k + 1
			row[cols[k]] = f.Value.Clean()
		}

		t.Rows[r] = row
	}

	return t, nil
}

// DecodeRecords decodes a JSON array of flat objects keeping field order
// and repeated keys. A missing or null array decodes to no records.
func DecodeRecords(data []byte) ([]model.Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEdit, err)
	}

	var records []model.Record
	for dec.More() {
		rec, err := decodeRecord(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrMalformedEdit, len(records), err)
		}
		records = append(records, rec)
	}

	if err := expectDelim(dec, ']'); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEdit, err)
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after records", ErrMalformedEdit)
	}

	return records, nil
}

func decodeRecord(dec *json.Decoder) (model.Record, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	rec := model.Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", tok)
		}

		tok, err = dec.Token()
		if err != nil {
			return nil, err
		}
		if _, nested := tok.(json.Delim); nested {
			return nil, fmt.Errorf("field %q: %w", name, model.ErrNotScalar)
		}

		v, err := model.FromToken(tok)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		rec = append(rec, model.Field{Name: name, Value: v})
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}

	return rec, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", rune(want), tok)
	}
	return nil
}
