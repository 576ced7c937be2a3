package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iklobato/pdftable/model"
)

func number(t *testing.T, lit string) model.Value {
	t.Helper()
	v, ok := model.NumberLiteral(lit)
	require.True(t, ok)
	return v
}

func sample(t *testing.T) model.Table {
	return model.Table{
		ID:      "table-2",
		Columns: []string{"Item", "Qty", "Note"},
		Rows: [][]model.Value{
			{model.String("bolt"), number(t, "3"), model.String("a, b")},
			{model.String("nut"), number(t, "10.50"), model.Empty},
			{model.String("<washer>"), number(t, "-1"), model.String("x")},
		},
	}
}

// ============================================================================
// View
// ============================================================================

func TestToView(t *testing.T) {
	view := ToView(sample(t))

	assert.Equal(t, "table-2", view.ID)
	assert.Equal(t, 3, view.Rows)
	assert.Equal(t, 3, view.NumColumns)
	assert.Equal(t, []string{"Item", "Qty", "Note"}, view.Columns)
	require.Len(t, view.Data, 3)

	assert.Contains(t, view.HTML, `class="`+TableClass+`"`)
	assert.Contains(t, view.HTML, "<th>Item</th>")
	assert.Contains(t, view.HTML, "&lt;washer&gt;")
	assert.Equal(t, 1, strings.Count(view.HTML, "<thead>"))
	assert.Equal(t, 3, strings.Count(view.HTML, "<tr><td>"))
}

func TestToView_JSON(t *testing.T) {
	data, err := json.Marshal(ToView(sample(t)))
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, key := range []string{"id", "html", "data", "columns", "rows", "num_columns"} {
		assert.Contains(t, fields, key)
	}

	assert.JSONEq(t,
		`[{"Item":"bolt","Qty":3,"Note":"a, b"},{"Item":"nut","Qty":10.50,"Note":""},{"Item":"<washer>","Qty":-1,"Note":"x"}]`,
		string(fields["data"]))
}

func TestToView_EmptyTable(t *testing.T) {
	data, err := json.Marshal(ToView(model.Table{ID: "table-1"}))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"data":[]`)
	assert.Contains(t, string(data), `"columns":[]`)
}

// ============================================================================
// Edit
// ============================================================================

func TestRoundTrip(t *testing.T) {
	tables := []model.Table{
		sample(t),
		{
			ID:      "table-7",
			Columns: []string{"A", "A", "B"},
			Rows: [][]model.Value{
				{model.String("1"), model.String("2"), model.String("3")},
				{model.Empty, number(t, "5"), model.String("six")},
			},
		},
	}

	for _, table := range tables {
		t.Run(table.ID, func(t *testing.T) {
			view := ToView(table)

			data, err := json.Marshal(view.Data)
			require.NoError(t, err)

			records, err := DecodeRecords(data)
			require.NoError(t, err)

			got, err := FromEdit(view.ID, nil, records)
			require.NoError(t, err)
			assert.Equal(t, table, got)
		})
	}
}

func TestDecodeRecords(t *testing.T) {
	records, err := DecodeRecords([]byte(`[{"b":1,"a":"x","b":null,"c":true}]`))
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	require.Len(t, rec, 4)
	assert.Equal(t, "b", rec[0].Name)
	assert.Equal(t, model.KindNumber, rec[0].Value.Kind())
	assert.Equal(t, "a", rec[1].Name)
	assert.Equal(t, "b", rec[2].Name)
	assert.True(t, rec[2].Value.IsNull())
	assert.Equal(t, "true", rec[3].Value.String())
}

func TestDecodeRecords_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not an array", `{"a":1}`},
		{"record not an object", `[1]`},
		{"nested object", `[{"a":{"b":1}}]`},
		{"nested array", `[{"a":[1]}]`},
		{"truncated", `[{"a":1}`},
		{"trailing data", `[] []`},
		{"invalid json", `[{a:1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecords([]byte(tt.data))
			assert.ErrorIs(t, err, ErrMalformedEdit)
		})
	}
}

func TestDecodeRecords_Empty(t *testing.T) {
	for _, data := range []string{"", "null", "[]"} {
		records, err := DecodeRecords([]byte(data))
		require.NoError(t, err, data)
		assert.Empty(t, records)
	}
}

func TestFromEdit(t *testing.T) {
	records, err := DecodeRecords([]byte(`[{"B":"2","A":"1"},{"A":null,"B":"4"}]`))
	require.NoError(t, err)

	got, err := FromEdit("table-1", []string{"A", "B"}, records)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, got.Columns)
	assert.Equal(t, [][]model.Value{
		{model.String("1"), model.String("2")},
		{model.Empty, model.String("4")},
	}, got.Rows)
	assert.NoError(t, got.Validate())
}

func TestFromEdit_Duplicates(t *testing.T) {
	records, err := DecodeRecords([]byte(`[{"A":"first","B":"b","A":"second"}]`))
	require.NoError(t, err)

	got, err := FromEdit("table-1", []string{"A", "A", "B"}, records)
	require.NoError(t, err)
	assert.Equal(t, []model.Value{model.String("first"), model.String("second"), model.String("b")}, got.Rows[0])
}

func TestFromEdit_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		columns []string
		data    string
	}{
		{"missing id", "", nil, `[{"A":"1"}]`},
		{"missing field", "table-1", []string{"A", "B"}, `[{"A":"1"}]`},
		{"extra field", "table-1", []string{"A"}, `[{"A":"1","B":"2"}]`},
		{"unknown field", "table-1", []string{"A", "B"}, `[{"A":"1","C":"2"}]`},
		{"too many duplicates", "table-1", []string{"A", "B"}, `[{"A":"1","A":"2"}]`},
		{"ragged against first record", "table-1", nil, `[{"A":"1","B":"2"},{"A":"3"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := DecodeRecords([]byte(tt.data))
			require.NoError(t, err)

			_, err = FromEdit(tt.id, tt.columns, records)
			assert.ErrorIs(t, err, ErrMalformedEdit)
		})
	}
}

func TestEdit_Table(t *testing.T) {
	var edit Edit
	require.NoError(t, json.Unmarshal([]byte(`{"id":"table-3","data":[{"x":1},{"x":2}]}`), &edit))

	table, err := edit.Table()
	require.NoError(t, err)
	assert.Equal(t, "table-3", table.ID)
	assert.Equal(t, 2, table.RowCount())

	edit.Data = json.RawMessage(`[{"x":[1]}]`)
	_, err = edit.Table()
	assert.ErrorIs(t, err, ErrMalformedEdit)
}

// ============================================================================
// Export
// ============================================================================

func TestEncodeCSV(t *testing.T) {
	data, err := EncodeCSV(sample(t))
	require.NoError(t, err)

	assert.Equal(t, "Item,Qty,Note\nbolt,3,\"a, b\"\nnut,10.50,\n<washer>,-1,x\n", string(data))
}

func TestEncodeCSV_SingleEmptyField(t *testing.T) {
	tests := []struct {
		name  string
		table model.Table
		want  string
	}{
		{
			name: "empty rows",
			table: model.Table{
				ID:      "table-1",
				Columns: []string{"Note"},
				Rows:    [][]model.Value{{model.Empty}, {model.String("x")}, {model.Null}},
			},
			want: "Note\n\"\"\nx\n\"\"\n",
		},
		{
			name: "empty header",
			table: model.Table{
				ID:      "table-1",
				Columns: []string{""},
				Rows:    [][]model.Value{{model.String("x")}},
			},
			want: "\"\"\nx\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeCSV(tt.table)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))

			records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
			require.NoError(t, err)
			assert.Len(t, records, tt.table.RowCount()+1)
		})
	}
}

func TestEncodeCSV_RowRemoval(t *testing.T) {
	table := sample(t)
	full, err := EncodeCSV(table)
	require.NoError(t, err)

	table.Rows = table.Rows[:len(table.Rows)-1]
	trimmed, err := EncodeCSV(table)
	require.NoError(t, err)

	assert.Equal(t, strings.Count(string(full), "\n")-1, strings.Count(string(trimmed), "\n"))
}

func TestEncodeJSON(t *testing.T) {
	table := model.Table{
		ID:      "table-1",
		Columns: []string{"b", "a"},
		Rows:    [][]model.Value{{model.String("x"), model.Null}},
	}

	data, err := EncodeJSON(table)
	require.NoError(t, err)
	assert.Equal(t, `[{"b":"x","a":""}]`, string(data))

	data, err = EncodeJSON(model.Table{ID: "table-1"})
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestEncodeString(t *testing.T) {
	table := sample(t)

	csvText, err := EncodeString(table, FormatCSV)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(csvText, "Item,Qty,Note\n"))

	encoded, err := EncodeString(table, FormatXLSX)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	_, err = EncodeString(table, Format("pdf"))
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"csv", FormatCSV},
		{" JSON ", FormatJSON},
		{"xlsx", FormatXLSX},
		{"excel", FormatXLSX},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}
