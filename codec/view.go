// Package codec converts canonical tables to and from their external
// representations: the view bundle sent to clients, the record arrays
// clients send back after editing, and the download formats.
package codec

import (
	"github.com/iklobato/pdftable/model"
)

// View bundles a table with its rendered markup and shape metadata. Every
// field is always present in the JSON encoding.
type View struct {
	ID         string         `json:"id"`
	HTML       string         `json:"html"`
	Data       []model.Record `json:"data"`
	Columns    []string       `json:"columns"`
	Rows       int            `json:"rows"`
	NumColumns int            `json:"num_columns"`
}

// ToView builds the view of t.
func ToView(t model.Table) View {
	data := t.Records()
	if data == nil {
		data = []model.Record{}
	}

	columns := append([]string{}, t.Columns...)

	return View{
		ID:         t.ID,
		HTML:       RenderHTML(t),
		Data:       data,
		Columns:    columns,
		Rows:       t.RowCount(),
		NumColumns: t.ColumnCount(),
	}
}

// ToViews builds the views of tables in order.
func ToViews(tables []model.Table) []View {
	views := make([]View, len(tables))
	for i, t := range tables {
		views[i] = ToView(t)
	}
	return views
}
