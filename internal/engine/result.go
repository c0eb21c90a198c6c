package engine

import "github.com/tuannm99/miniscylla/internal/catalog"

// Result is the uniform statement outcome: named columns and ordered rows.
// Column order is significant and matches the projection order.
type Result struct {
	Columns []string
	Rows    [][]any
}

func emptyResult() *Result { return &Result{} }

// appliedResult builds the single-row outcome of a conditional write.
func appliedResult(applied bool) *Result {
	return &Result{Columns: []string{"[applied]"}, Rows: [][]any{{applied}}}
}

// conflictResult reports a failed conditional write together with the
// conflicting row's current column values, in schema order.
func conflictResult(table *catalog.Table, row *catalog.Row) *Result {
	cols := make([]string, 0, len(table.Columns)+1)
	vals := make([]any, 0, len(table.Columns)+1)
	cols = append(cols, "[applied]")
	vals = append(vals, false)
	for _, c := range table.Columns {
		cols = append(cols, c.Name)
		vals = append(vals, row.Values[c.Name])
	}
	return &Result{Columns: cols, Rows: [][]any{vals}}
}
