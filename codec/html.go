package codec

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/iklobato/pdftable/model"
)

// TableClass is the class attribute of every rendered table. Clients style
// and bind their editors to it.
const TableClass = "dataframe table table-striped table-bordered table-hover editable-table"

// RenderHTML renders t as a <table> with a header row and one body row per
// table row. No index column is emitted.
func RenderHTML(t model.Table) string {
	table := element(atom.Table,
		html.Attribute{Key: "border", Val: "1"},
		html.Attribute{Key: "class", Val: TableClass},
	)

	thead := element(atom.Thead)
	header := element(atom.Tr)
	for _, name := range t.Columns {
		header.AppendChild(cell(atom.Th, name))
	}
	thead.AppendChild(header)
	table.AppendChild(thead)

	tbody := element(atom.Tbody)
	for _, row := range t.Rows {
		tr := element(atom.Tr)
		for _, v := range row {
			tr.AppendChild(cell(atom.Td, v.Clean().String()))
		}
		tbody.AppendChild(tr)
	}
	table.AppendChild(tbody)

	var sb strings.Builder
	// Rendering to a strings.Builder cannot fail.
	_ = html.Render(&sb, table)
	return sb.String()
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func cell(a atom.Atom, text string) *html.Node {
	n := element(a)
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	return n
}
