// Package model defines the canonical table representation shared by every
// stage of the extraction pipeline.
//
// # Tables
//
// A [Table] holds an identifier, an ordered list of column names and
// row-major values addressed by column position:
//
//	t := model.Table{
//	    ID:      "table-1",
//	    Columns: []string{"Name", "Qty"},
//	    Rows: [][]model.Value{
//	        {model.String("bolt"), model.Number(12)},
//	    },
//	}
//
// Column names may repeat. Keying values by position instead of by name keeps
// duplicate columns legal while every row keeps a fixed arity, checked by
// [Table.Validate].
//
// # Values
//
// A [Value] is a string, a number or a raw null. Numbers keep their literal
// text so they are exported exactly as they were read. The empty string is
// the sentinel for missing cells; [Null] exists only on engine output.
//
// # Raw results
//
// Extraction engines report [RawTable] values: a header row plus data rows
// that may contain [Null]. [Normalize] turns each into a Table, replacing
// nulls with the sentinel and assigning identifiers table-1, table-2, ... in
// detection order.
//
// # Records
//
// [Table.Records] exposes rows as ordered [Record] values whose JSON form is
// an object with fields in column order, duplicates included.
package model
