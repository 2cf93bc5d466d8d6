// Package aggregate implements grouped aggregation with optional margins and
// the two-dimensional pivot built on it.
//
// Every result is a new table.Table whose leading columns are the grouping
// keys. Margins are always recomputed from the raw input rows, never by
// combining group results, so a mean margin is the true mean of all values.
package aggregate

import (
	"fmt"
	"log/slog"

	apperrors "pivotcli/internal/errors"
	"pivotcli/internal/table"
)

// Aggregate groups t by groupKeys and applies every aggregation to each
// group, producing one row per distinct key tuple and one column per
// aggregation. With WithMargins(true) a final row labelled "All" reduces the
// entire input.
func Aggregate(t *table.Table, groupKeys []string, aggs []Aggregation, opts ...Option) (*table.Table, error) {
	cfg := applyOptions(opts)
	keyCols, valueCols, err := prepare(t, groupKeys, aggs)
	if err != nil {
		return nil, err
	}

	names := append([]string(nil), groupKeys...)
	for _, a := range aggs {
		names = append(names, a.Name(cfg.separator))
	}
	out, err := table.New(names)
	if err != nil {
		return nil, err
	}

	if t.Len() == 0 && !cfg.allowEmpty {
		return nil, apperrors.NewEmptyInputError("cannot aggregate a table with no rows")
	}

	groups, _ := partition(t, allRows(t.Len()), keyCols, cfg.keyOrder)
	for _, g := range groups {
		row := append([]table.Value(nil), g.keys...)
		for i, a := range aggs {
			row = append(row, reduce(t, g.rows, valueCols[i], a.Reducer, cfg))
		}
		if err := out.Append(row); err != nil {
			return nil, err
		}
	}

	if cfg.margins {
		row := marginKeys(len(groupKeys), cfg.marginLabel)
		all := allRows(t.Len())
		for i, a := range aggs {
			row = append(row, reduce(t, all, valueCols[i], a.Reducer, cfg))
		}
		if err := out.Append(row); err != nil {
			return nil, err
		}
	}

	cfg.logger.Debug("Aggregation complete",
		slog.Any("group_keys", groupKeys),
		slog.Int("input_rows", t.Len()),
		slog.Int("groups", len(groups)),
		slog.Bool("margins", cfg.margins))

	return out, nil
}

// Levels holds the three results of MultiLevel.
type Levels struct {
	Level1   *table.Table
	Level2   *table.Table
	Combined *table.Table
}

// MultiLevel aggregates by level1, by level2, and by level1+level2.
func MultiLevel(t *table.Table, level1, level2 []string, aggs []Aggregation, opts ...Option) (*Levels, error) {
	l1, err := Aggregate(t, level1, aggs, opts...)
	if err != nil {
		return nil, fmt.Errorf("level1 aggregation: %w", err)
	}
	l2, err := Aggregate(t, level2, aggs, opts...)
	if err != nil {
		return nil, fmt.Errorf("level2 aggregation: %w", err)
	}
	combined := append(append([]string(nil), level1...), level2...)
	c, err := Aggregate(t, combined, aggs, opts...)
	if err != nil {
		return nil, fmt.Errorf("combined aggregation: %w", err)
	}
	return &Levels{Level1: l1, Level2: l2, Combined: c}, nil
}

// prepare validates the request and resolves column positions. Every numeric
// aggregation column is checked up front so a type mismatch is reported for
// the first offending row regardless of grouping.
func prepare(t *table.Table, keys []string, aggs []Aggregation) ([]int, []int, error) {
	if len(keys) == 0 {
		return nil, nil, apperrors.NewSchemaError("at least one grouping column is required")
	}
	if len(aggs) == 0 {
		return nil, nil, apperrors.NewSchemaError("at least one aggregation is required")
	}

	referenced := append([]string(nil), keys...)
	for _, a := range aggs {
		referenced = append(referenced, a.Column)
	}
	if err := t.Require(referenced...); err != nil {
		return nil, nil, err
	}

	keyCols := make([]int, len(keys))
	for i, k := range keys {
		keyCols[i], _ = t.ColumnIndex(k)
	}

	valueCols := make([]int, len(aggs))
	for i, a := range aggs {
		if !a.Reducer.valid() {
			return nil, nil, apperrors.NewSchemaError(fmt.Sprintf("unknown reducer %q for column %q", a.Reducer, a.Column))
		}
		valueCols[i], _ = t.ColumnIndex(a.Column)
		if !a.Reducer.Numeric() {
			continue
		}
		for row := 0; row < t.Len(); row++ {
			v := t.At(row, valueCols[i])
			if !v.IsNull() && !v.IsNumeric() {
				return nil, nil, apperrors.NewTypeMismatchError(a.Column, row, v.String(), string(a.Reducer))
			}
		}
	}
	return keyCols, valueCols, nil
}

// marginKeys is the key part of a margin row: the label in the first key
// column, nulls in the rest.
func marginKeys(n int, label string) []table.Value {
	row := make([]table.Value, n)
	row[0] = table.Text(label)
	for i := 1; i < n; i++ {
		row[i] = table.Null()
	}
	return row
}
