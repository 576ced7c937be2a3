package tabulajava

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iklobato/pdftable/model"
)

// Region is one table in tabula's JSON output.
type Region struct {
	ExtractionMethod string  `json:"extraction_method"`
	PageNumber       int     `json:"page_number"`
	Top              float64 `json:"top"`
	Left             float64 `json:"left"`
	Width            float64 `json:"width"`
	Height           float64 `json:"height"`

	Data [][]Cell `json:"data"`
}

// Cell is one cell of a Region.
type Cell struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Text string `json:"text"`
}

// Decode reads tabula's JSON output (an array of regions) and converts each
// region to a raw table. Blank cells are reported as nulls.
func Decode(r io.Reader) ([]model.RawTable, error) {
	var regions []Region
	if err := json.NewDecoder(r).Decode(&regions); err != nil {
		return nil, fmt.Errorf("decoding tabula output: %w", err)
	}

	tables := make([]model.RawTable, 0, len(regions))
	for _, region := range regions {
		tables = append(tables, region.RawTable())
	}
	return tables, nil
}

// RawTable converts the region, using its first row as header.
func (r Region) RawTable() model.RawTable {
	raw := model.RawTable{
		Page:   r.PageNumber,
		Method: r.ExtractionMethod,
	}

	for i, row := range r.Data {
		values := make([]model.Value, len(row))
		for j, cell := range row {
			text := strings.TrimSpace(cell.Text)
			if text == "" {
				values[j] = model.Null
				continue
			}
			values[j] = model.String(text)
		}

		if i == 0 {
			raw.Header = values
			continue
		}
		raw.Rows = append(raw.Rows, values)
	}

	return raw
}
