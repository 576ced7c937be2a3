// Package htmltable reads the tables of HTML documents.
package htmltable

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"

	"github.com/iklobato/pdftable/engine"
	"github.com/iklobato/pdftable/format"
	"github.com/iklobato/pdftable/model"
)

// Method is reported on every table read from HTML.
const Method = "html"

// Limits from the HTML table model.
const (
	maxColSpan = 1000
	maxRowSpan = 65534
)

// MaxCells bounds the number of grid cells laid out for one document,
// counted after span expansion.
const MaxCells = 200_000

// ErrTooManyCells is returned when span expansion exceeds MaxCells.
var ErrTooManyCells = errors.New("html tables exceed the cell limit")

var _ engine.Engine = (*Reader)(nil)

// Reader extracts <table> elements from HTML files.
type Reader struct{}

// New creates a Reader.
func New() *Reader {
	return &Reader{}
}

// Extract reads every table of the document at input.Path.
func (r *Reader) Extract(ctx context.Context, input engine.Input, options *engine.Options) ([]model.RawTable, error) {
	if options == nil {
		options = engine.DefaultOptions()
	}

	if !engine.Supports(input, format.HTML) {
		return nil, engine.ErrUnsupported
	}

	f, err := os.Open(input.Path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	tables, err := Parse(ctx, f)
	if err != nil {
		return nil, err
	}

	if !options.MultipleTables && len(tables) > 1 {
		tables = tables[:1]
	}

	return tables, nil
}

// Parse reads the tables of an HTML document in document order. The
// character set is taken from a BOM or <meta> declaration and defaults to
// UTF-8.
func Parse(ctx context.Context, r io.Reader) ([]model.RawTable, error) {
	utf8, err := charset.NewReader(r, "text/html")
	if err != nil {
		return nil, fmt.Errorf("detecting charset: %w", err)
	}

	doc, err := html.Parse(utf8)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	var tables []model.RawTable
	budget := MaxCells
	for _, node := range findAll(doc, "table") {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := parseTable(node, &budget)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			continue
		}

		raw := model.RawTable{
			Page:   1,
			Method: Method,
			Header: rows[0],
		}
		if len(rows) > 1 {
			raw.Rows = rows[1:]
		}
		tables = append(tables, raw)
	}

	return tables, nil
}

// cell is one <td> or <th> before span expansion.
type cell struct {
	text    string
	rowSpan int
	colSpan int
}

// parseTable lays the rows of a table onto a grid. Spanned cells repeat
// their text in every grid position they cover. budget is the number of
// cells still allowed and is reduced by the cells laid out.
func parseTable(table *html.Node, budget *int) ([][]model.Value, error) {
	var grid [][]model.Value
	var carry []*span

	for _, tr := range tableRows(table) {
		row, next, err := layoutRow(parseRow(tr), carry, *budget)
		if err != nil {
			return nil, err
		}
		*budget -= len(row)
		carry = next
		if len(row) > 0 {
			grid = append(grid, row)
		}
	}

	return grid, nil
}

// span is a cell continuing into the rows below.
type span struct {
	value     model.Value
	remaining int
}

// layoutRow places one row's cells around the spans carried from the rows
// above. It fails before the row grows past limit cells.
func layoutRow(cells []cell, carry []*span, limit int) ([]model.Value, []*span, error) {
	if len(carry) > limit {
		return nil, nil, ErrTooManyCells
	}

	var row []model.Value
	next := make([]*span, len(carry))

	col := 0
	fillCarried := func() {
		for col < len(carry) && carry[col] != nil {
			row = append(row, carry[col].value)
			if carry[col].remaining > 1 {
				next[col] = &span{value: carry[col].value, remaining: carry[col].remaining - 1}
			}
			col++
		}
	}

	for _, c := range cells {
		fillCarried()

		if len(row)+c.colSpan > limit {
			return nil, nil, ErrTooManyCells
		}

		value := model.Null
		if c.text != "" {
			value = model.String(c.text)
		}

		for i := 0; i < c.colSpan; i++ {
			row = append(row, value)
			if c.rowSpan > 1 {
				for len(next) <= col {
					next = append(next, nil)
				}
				next[col] = &span{value: value, remaining: c.rowSpan - 1}
			}
			col++
		}
	}

	last := len(carry) - 1
	for last >= 0 && carry[last] == nil {
		last--
	}
	for col <= last {
		if carry[col] == nil {
			row = append(row, model.Null)
			col++
			continue
		}
		fillCarried()
	}

	return row, next, nil
}

// tableRows returns the rows of a table in order, looking through thead,
// tbody and tfoot but not into nested tables.
func tableRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "thead", "tbody", "tfoot":
			for r := c.FirstChild; r != nil; r = r.NextSibling {
				if r.Type == html.ElementNode && r.Data == "tr" {
					rows = append(rows, r)
				}
			}
		case "tr":
			rows = append(rows, c)
		}
	}
	return rows
}

func parseRow(tr *html.Node) []cell {
	var cells []cell

	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}

		cells = append(cells, cell{
			text:    cellText(c),
			rowSpan: spanAttr(c, "rowspan", maxRowSpan),
			colSpan: spanAttr(c, "colspan", maxColSpan),
		})
	}

	return cells
}

func spanAttr(n *html.Node, key string, limit int) int {
	for _, attr := range n.Attr {
		if attr.Key != key {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSpace(attr.Val))
		if err != nil || v < 1 {
			return 1
		}
		return min(v, limit)
	}
	return 1
}

// cellText returns the visible text of a cell with runs of whitespace
// collapsed and the result in NFC form.
func cellText(n *html.Node) string {
	var sb strings.Builder
	collectText(n, &sb)
	return norm.NFC.String(strings.Join(strings.Fields(sb.String()), " "))
}

func collectText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "template", "table":
			return
		case "br", "p", "div", "li":
			sb.WriteString(" ")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

// findAll returns every element named tag in document order, including
// nested ones.
func findAll(n *html.Node, tag string) []*html.Node {
	var found []*html.Node
	if n.Type == html.ElementNode && n.Data == tag {
		found = append(found, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		found = append(found, findAll(c, tag)...)
	}
	return found
}
