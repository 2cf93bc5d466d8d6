// Package table holds the in-memory tabular model shared by the loader, the
// aggregation engine, the translator and the exporters.
//
// A Table is built once and never mutated afterwards: Select, Rename, Filter
// and MapColumn all return new tables. Column order is preserved everywhere
// and is the order used for output.
package table

import (
	"fmt"

	"github.com/samber/lo"

	apperrors "pivotcli/internal/errors"
)

// Table is an ordered set of named columns and rows of Values.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// New creates an empty table with the given column names.
func New(columns []string) (*Table, error) {
	if dups := lo.FindDuplicates(columns); len(dups) > 0 {
		return nil, apperrors.NewSchemaError("duplicate column names", dups...)
	}
	cols := append([]string(nil), columns...)
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[c] = i
	}
	return &Table{columns: cols, index: index}, nil
}

// MustNew is like New but panics on duplicate columns. Intended for tests
// and fixed literal schemas.
func MustNew(columns []string) *Table {
	t, err := New(columns)
	if err != nil {
		panic(err)
	}
	return t
}

// Append adds a row. The row length must match the column count.
func (t *Table) Append(row []Value) error {
	if len(row) != len(t.columns) {
		return apperrors.NewSchemaError(fmt.Sprintf("row has %d values, table has %d columns", len(row), len(t.columns)))
	}
	t.rows = append(t.rows, append([]Value(nil), row...))
	return nil
}

// MustAppend is like Append but panics on length mismatch.
func (t *Table) MustAppend(row ...Value) *Table {
	if err := t.Append(row); err != nil {
		panic(err)
	}
	return t
}

// Columns returns a copy of the column names.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// ColumnIndex returns the position of a column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Has reports whether the table has a column.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Require fails with a SchemaError naming every column that is missing.
func (t *Table) Require(names ...string) error {
	missing := lo.Uniq(lo.Filter(names, func(n string, _ int) bool { return !t.Has(n) }))
	if len(missing) > 0 {
		return apperrors.NewSchemaError("columns not found", missing...)
	}
	return nil
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []Value {
	return append([]Value(nil), t.rows[i]...)
}

// Value returns the cell at row i of the named column.
func (t *Table) Value(i int, column string) Value {
	c, ok := t.index[column]
	if !ok {
		return Null()
	}
	return t.rows[i][c]
}

// At returns the cell at row i, column position c.
func (t *Table) At(i, c int) Value { return t.rows[i][c] }

// Column returns all values of a column in row order.
func (t *Table) Column(name string) ([]Value, error) {
	c, ok := t.index[name]
	if !ok {
		return nil, apperrors.NewSchemaError("columns not found", name)
	}
	out := make([]Value, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[c]
	}
	return out, nil
}

// ColumnKind returns the kind shared by all non-null cells of a column:
// KindInt, KindFloat (ints and floats mixed), KindText (anything with text)
// or KindNull for an all-null column.
func (t *Table) ColumnKind(name string) Kind {
	c, ok := t.index[name]
	if !ok {
		return KindNull
	}
	kind := KindNull
	for _, row := range t.rows {
		switch k := row[c].Kind(); {
		case k == KindNull:
		case k == KindText:
			return KindText
		case kind == KindNull:
			kind = k
		case kind != k:
			kind = KindFloat
		}
	}
	return kind
}

// Records returns the rows formatted as strings, without the header.
func (t *Table) Records() [][]string {
	out := make([][]string, len(t.rows))
	for i, row := range t.rows {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = v.String()
		}
		out[i] = rec
	}
	return out
}

// Select returns a table with only the named columns, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	if err := t.Require(names...); err != nil {
		return nil, err
	}
	out, err := New(names)
	if err != nil {
		return nil, err
	}
	positions := make([]int, len(names))
	for i, n := range names {
		positions[i] = t.index[n]
	}
	out.rows = make([][]Value, len(t.rows))
	for i, row := range t.rows {
		rec := make([]Value, len(positions))
		for j, p := range positions {
			rec[j] = row[p]
		}
		out.rows[i] = rec
	}
	return out, nil
}

// Rename returns a table whose columns are renamed through mapping. Columns
// absent from mapping keep their names. Renaming onto an existing name fails.
func (t *Table) Rename(mapping map[string]string) (*Table, error) {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		if to, ok := mapping[c]; ok && to != "" {
			names[i] = to
		} else {
			names[i] = c
		}
	}
	out, err := New(names)
	if err != nil {
		return nil, err
	}
	out.rows = t.rows
	return out, nil
}

// MapColumn returns a table where fn has been applied to every cell of one
// column. Other columns share storage with t.
func (t *Table) MapColumn(name string, fn func(Value) Value) (*Table, error) {
	c, ok := t.index[name]
	if !ok {
		return nil, apperrors.NewSchemaError("columns not found", name)
	}
	out := &Table{columns: t.columns, index: t.index, rows: make([][]Value, len(t.rows))}
	for i, row := range t.rows {
		rec := append([]Value(nil), row...)
		rec[c] = fn(rec[c])
		out.rows[i] = rec
	}
	return out, nil
}

// Head returns the first n rows.
func (t *Table) Head(n int) *Table {
	if n > len(t.rows) {
		n = len(t.rows)
	}
	if n < 0 {
		n = 0
	}
	return &Table{columns: t.columns, index: t.index, rows: t.rows[:n]}
}
