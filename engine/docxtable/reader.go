// Package docxtable reads the tables of Word (.docx) documents.
package docxtable

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iklobato/pdftable/engine"
	"github.com/iklobato/pdftable/format"
	"github.com/iklobato/pdftable/model"
)

// Method is reported on every table read from a Word document.
const Method = "docx"

const (
	documentPart = "word/document.xml"

	// maxPartSize bounds the decompressed size of the document part.
	maxPartSize = 256 << 20
)

var errNoDocument = errors.New("missing " + documentPart)

var _ engine.Engine = (*Reader)(nil)

// Reader extracts <w:tbl> elements from Word documents. Cells covered by a
// horizontal or vertical merge are reported as nulls; the merged text stays
// in the first cell.
type Reader struct{}

// New creates a Reader.
func New() *Reader {
	return &Reader{}
}

// Extract reads every top-level table of the document at input.Path, then
// the tables nested inside their cells.
func (r *Reader) Extract(ctx context.Context, input engine.Input, options *engine.Options) ([]model.RawTable, error) {
	if options == nil {
		options = engine.DefaultOptions()
	}

	if !engine.Supports(input, format.DOCX) {
		return nil, engine.ErrUnsupported
	}

	zr, err := zip.OpenReader(input.Path)
	if err != nil {
		return nil, fmt.Errorf("opening docx: %w", err)
	}
	defer zr.Close()

	tables, err := Parse(ctx, &zr.Reader)
	if err != nil {
		return nil, err
	}

	if !options.MultipleTables && len(tables) > 1 {
		tables = tables[:1]
	}

	return tables, nil
}

// Parse reads the tables of an opened docx archive.
func Parse(ctx context.Context, zr *zip.Reader) ([]model.RawTable, error) {
	var part *zip.File
	for _, f := range zr.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return nil, errNoDocument
	}

	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", documentPart, err)
	}
	defer rc.Close()

	var doc documentXML
	if err := xml.NewDecoder(io.LimitReader(rc, maxPartSize)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", documentPart, err)
	}

	var tables []model.RawTable
	pending := doc.Body.Tables

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var nested []tableXML
		for _, tbl := range pending {
			grid := layoutTable(tbl)
			nested = append(nested, nestedTables(tbl)...)

			if len(grid) == 0 {
				continue
			}

			raw := model.RawTable{Page: 1, Method: Method, Header: grid[0]}
			if len(grid) > 1 {
				raw.Rows = grid[1:]
			}
			tables = append(tables, raw)
		}
		pending = nested
	}

	return tables, nil
}

func nestedTables(tbl tableXML) []tableXML {
	var nested []tableXML
	for _, row := range tbl.Rows {
		for _, c := range row.Cells {
			nested = append(nested, c.Tables...)
		}
	}
	return nested
}

// layoutTable places the cells of tbl on its grid. Rows narrower than the
// grid are padded with nulls.
func layoutTable(tbl tableXML) [][]model.Value {
	width := len(tbl.Grid.Cols)
	grid := make([][]model.Value, 0, len(tbl.Rows))

	for _, tr := range tbl.Rows {
		row := make([]model.Value, 0, width)
		row = appendNulls(row, atoi(tr.Properties.GridBefore.Val, 0))

		for _, tc := range tr.Cells {
			span := max(atoi(tc.Properties.GridSpan.Val, 1), 1)

			if continuesMerge(tc) {
				row = appendNulls(row, span)
				continue
			}

			text := cellText(tc)
			if text == "" {
				row = append(row, model.Null)
			} else {
				row = append(row, model.String(text))
			}
			row = appendNulls(row, span-1)
		}

		row = appendNulls(row, atoi(tr.Properties.GridAfter.Val, 0))
		if len(row) < width {
			row = appendNulls(row, width-len(row))
		}

		grid = append(grid, row)
	}

	return grid
}

func continuesMerge(tc tableCellXML) bool {
	return tc.Properties.VMerge != nil && tc.Properties.VMerge.Val != "restart"
}

func appendNulls(row []model.Value, n int) []model.Value {
	for i := 0; i < n; i++ {
		row = append(row, model.Null)
	}
	return row
}

func atoi(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

// cellText joins the paragraphs of a cell with newlines.
func cellText(tc tableCellXML) string {
	var parts []string
	for _, p := range tc.Paragraphs {
		var sb strings.Builder
		writeText(p, &sb)
		if text := strings.TrimSpace(sb.String()); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

func writeText(n nodeXML, sb *strings.Builder) {
	switch n.XMLName.Local {
	case "t":
		sb.WriteString(n.Value)
		return
	case "tab":
		sb.WriteString("\t")
		return
	case "br", "cr":
		sb.WriteString("\n")
		return
	case "delText", "instrText", "rPr", "pPr":
		return
	}

	for _, child := range n.Nodes {
		writeText(child, sb)
	}
}
