package aggregate

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	apperrors "pivotcli/internal/errors"
	"pivotcli/internal/table"
)

// Pivot cross-tabulates t: rowKeys become the leading columns and every
// distinct tuple of colKeys is spread across columns.
//
// Output columns are ordered aggregation first (declared order), then column
// key (sorted, or first-seen with WithKeyOrder(FirstSeen)), then the margin
// column of that aggregation. A column is named
// <aggregation name><sep><column key label>, e.g. total_sum_Yangon. A
// label joins the values of a multi-column key with the separator, so keys
// must stay distinct once joined: ("a_b", "c") and ("a", "b_c") collide
// under "_" and are reported as a SchemaError naming both tuples.
//
// The result is dense: a (row key, column key) pair with no input rows holds
// the fill value. With margins, each aggregation gets an "All" column
// reducing every raw row of the row key, and a final "All" row reduces every
// raw row of each column key; the corner reduces the whole input.
func Pivot(t *table.Table, rowKeys, colKeys []string, aggs []Aggregation, opts ...Option) (*table.Table, error) {
	cfg := applyOptions(opts)
	if len(colKeys) == 0 {
		return nil, apperrors.NewSchemaError("at least one pivot column is required")
	}
	rowCols, valueCols, err := prepare(t, rowKeys, aggs)
	if err != nil {
		return nil, err
	}
	if err := t.Require(colKeys...); err != nil {
		return nil, err
	}
	colCols := make([]int, len(colKeys))
	for i, k := range colKeys {
		colCols[i], _ = t.ColumnIndex(k)
	}

	if t.Len() == 0 && !cfg.allowEmpty {
		return nil, apperrors.NewEmptyInputError("cannot pivot a table with no rows")
	}

	all := allRows(t.Len())
	rowGroups, _ := partition(t, all, rowCols, cfg.keyOrder)
	colGroups, _ := partition(t, all, colCols, cfg.keyOrder)

	if err := checkColumnLabels(colGroups, cfg); err != nil {
		return nil, err
	}

	names := append([]string(nil), rowKeys...)
	for _, a := range aggs {
		base := a.Name(cfg.separator)
		for _, cg := range colGroups {
			names = append(names, base+cfg.separator+cg.label(cfg.separator))
		}
		if cfg.margins {
			names = append(names, base+cfg.separator+cfg.marginLabel)
		}
	}
	out, err := table.New(names)
	if err != nil {
		return nil, err
	}

	cellRows := func(rg *group) map[string][]int {
		cells := make(map[string][]int)
		keys := make([]table.Value, len(colCols))
		for _, i := range rg.rows {
			for j, c := range colCols {
				keys[j] = t.At(i, c)
			}
			id := groupID(keys)
			cells[id] = append(cells[id], i)
		}
		return cells
	}

	for _, rg := range rowGroups {
		cells := cellRows(rg)
		row := append([]table.Value(nil), rg.keys...)
		for i, a := range aggs {
			for _, cg := range colGroups {
				rows, ok := cells[cg.id]
				if !ok {
					row = append(row, cfg.fill)
					continue
				}
				row = append(row, reduce(t, rows, valueCols[i], a.Reducer, cfg))
			}
			if cfg.margins {
				row = append(row, reduce(t, rg.rows, valueCols[i], a.Reducer, cfg))
			}
		}
		if err := out.Append(row); err != nil {
			return nil, err
		}
	}

	if cfg.margins {
		row := marginKeys(len(rowKeys), cfg.marginLabel)
		for i, a := range aggs {
			for _, cg := range colGroups {
				row = append(row, reduce(t, cg.rows, valueCols[i], a.Reducer, cfg))
			}
			row = append(row, reduce(t, all, valueCols[i], a.Reducer, cfg))
		}
		if err := out.Append(row); err != nil {
			return nil, err
		}
	}

	cfg.logger.Debug("Pivot complete",
		slog.Any("row_keys", rowKeys),
		slog.Any("column_keys", colKeys),
		slog.Int("input_rows", t.Len()),
		slog.Int("row_groups", len(rowGroups)),
		slog.Int("column_groups", len(colGroups)),
		slog.Bool("margins", cfg.margins))

	return out, nil
}

// checkColumnLabels rejects column keys whose labels coincide, either with
// each other or with the margin label.
func checkColumnLabels(groups []*group, cfg *config) error {
	seen := make(map[string]*group, len(groups))
	for _, g := range groups {
		label := g.label(cfg.separator)
		if other, ok := seen[label]; ok {
			return apperrors.NewSchemaError(fmt.Sprintf("pivot column keys %s and %s both label %q with separator %q",
				keyTuple(other), keyTuple(g), label, cfg.separator))
		}
		if cfg.margins && label == cfg.marginLabel {
			return apperrors.NewSchemaError(fmt.Sprintf("pivot column key %s collides with the margin label %q",
				keyTuple(g), cfg.marginLabel))
		}
		seen[label] = g
	}
	return nil
}

func keyTuple(g *group) string {
	parts := make([]string, len(g.keys))
	for i, v := range g.keys {
		parts[i] = strconv.Quote(v.String())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
