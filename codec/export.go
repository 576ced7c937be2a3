package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iklobato/pdftable/model"
	"github.com/iklobato/pdftable/workbook"
)

// Format is a download format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// Formats lists the download formats.
var Formats = []Format{FormatCSV, FormatJSON, FormatXLSX}

// ParseFormat resolves a format name. "excel" is accepted for xlsx.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// ContentType returns the media type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

// Binary reports whether the encoding is not valid text.
func (f Format) Binary() bool {
	return f == FormatXLSX
}

// Encode serializes t in format f.
func Encode(t model.Table, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return EncodeCSV(t)
	case FormatJSON:
		return EncodeJSON(t)
	case FormatXLSX:
		return workbook.Write(t)
	}
	return nil, fmt.Errorf("unknown export format %q", string(f))
}

// EncodeString serializes t for a text envelope. Binary formats are base64
// encoded with the standard alphabet.
func EncodeString(t model.Table, f Format) (string, error) {
	data, err := Encode(t, f)
	if err != nil {
		return "", err
	}

	if f.Binary() {
		return base64.StdEncoding.EncodeToString(data), nil
	}
	return string(data), nil
}

// EncodeCSV writes a header row followed by one line per row, comma
// separated with \n line endings and no index column. A record made of a
// single empty field is written as "" so readers do not skip it as a blank
// line.
func EncodeCSV(t model.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := writeCSVRecord(w, &buf, t.Columns); err != nil {
		return nil, err
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		record = record[:0]
		for _, v := range row {
			record = append(record, v.Clean().String())
		}
		if err := writeCSVRecord(w, &buf, record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// writeCSVRecord writes record through w, or directly to buf when the
// writer would emit a blank line.
func writeCSVRecord(w *csv.Writer, buf *bytes.Buffer, record []string) error {
	if len(record) != 1 || record[0] != "" {
		return w.Write(record)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	buf.WriteString("\"\"\n")
	return nil
}

// EncodeJSON writes the rows as an array of objects with fields in column
// order.
func EncodeJSON(t model.Table) ([]byte, error) {
	records := t.Records()
	if records == nil {
		records = []model.Record{}
	}
	for _, rec := range records {
		for i := range rec {
			rec[i].Value = rec[i].Value.Clean()
		}
	}

	return json.Marshal(records)
}
