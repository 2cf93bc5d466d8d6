package operations

import (
	"fmt"

	"pivotcli/internal/aggregate"
	"pivotcli/internal/chart"
	"pivotcli/internal/config"
	apperrors "pivotcli/internal/errors"
	"pivotcli/internal/table"
)

// BuildAggregations expands job aggregation specs, one Aggregation per
// reducer, keeping the listed order.
func BuildAggregations(specs []config.AggregationSpec) ([]aggregate.Aggregation, error) {
	var aggs []aggregate.Aggregation
	for _, s := range specs {
		for _, name := range s.Reducers {
			r, err := aggregate.ParseReducer(name)
			if err != nil {
				return nil, err
			}
			aggs = append(aggs, aggregate.Aggregation{Column: s.Column, Reducer: r, As: s.As})
		}
	}
	return aggs, nil
}

// aggregateOptions turns report defaults plus per-job overrides into
// engine options. An empty keyOrder falls back to the report default.
func (e *Env) aggregateOptions(margins bool, fill, keyOrder string) ([]aggregate.Option, error) {
	if keyOrder == "" {
		keyOrder = e.Report.KeyOrder
	}
	order, ok := aggregate.ParseKeyOrder(keyOrder)
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown key order %q", keyOrder))
	}
	opts := []aggregate.Option{
		aggregate.WithMargins(margins),
		aggregate.WithMarginLabel(e.Report.MarginLabel),
		aggregate.WithPrecision(e.Report.Precision),
		aggregate.WithSeparator(e.Report.Separator),
		aggregate.WithKeyOrder(order),
		aggregate.WithLogger(e.Logger),
	}
	if fill != "" {
		opts = append(opts, aggregate.WithFillValue(table.Parse(fill)))
	}
	return opts, nil
}

// ParseTypes maps column kind names from an input spec to table kinds.
func ParseTypes(types map[string]string) (map[string]table.Kind, error) {
	if len(types) == 0 {
		return nil, nil
	}
	kinds := make(map[string]table.Kind, len(types))
	for column, name := range types {
		k, ok := table.ParseKind(name)
		if !ok {
			return nil, apperrors.NewValidationError(fmt.Sprintf("unknown kind %q for column %q", name, column)).
				WithContext("column", column)
		}
		kinds[column] = k
	}
	return kinds, nil
}

// BuildDashboard resolves a chart spec: the built-in sales dashboard, with
// title and label overrides, or the listed panels.
func BuildDashboard(spec config.ChartSpec) chart.Dashboard {
	var d chart.Dashboard
	if spec.Builtin == "sales" {
		d = chart.SalesDashboard()
	} else {
		for _, p := range spec.Panels {
			d.Panels = append(d.Panels, chart.Panel{
				Kind:    chart.Kind(p.Kind),
				Columns: p.Columns,
				Title:   p.Title,
				YLabel:  p.YLabel,
			})
		}
	}
	if spec.Title != "" {
		d.Title = spec.Title
	}
	if spec.LabelColumn != "" {
		d.LabelColumn = spec.LabelColumn
	}
	return d
}
