package aggregate

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "pivotcli/internal/errors"
	"pivotcli/internal/table"
)

// Reducer names a function collapsing a column's values within a group.
type Reducer string

const (
	Sum   Reducer = "sum"
	Mean  Reducer = "mean"
	Count Reducer = "count"
	Min   Reducer = "min"
	Max   Reducer = "max"
)

// Reducers lists every supported reducer.
var Reducers = []Reducer{Sum, Mean, Count, Min, Max}

// ParseReducer accepts a reducer name; "avg" and "average" map to mean.
func ParseReducer(name string) (Reducer, error) {
	switch r := Reducer(strings.ToLower(strings.TrimSpace(name))); r {
	case Sum, Mean, Count, Min, Max:
		return r, nil
	case "avg", "average":
		return Mean, nil
	}
	return "", apperrors.NewSchemaError(fmt.Sprintf("unknown reducer %q", name))
}

func (r Reducer) valid() bool {
	switch r {
	case Sum, Mean, Count, Min, Max:
		return true
	}
	return false
}

// Numeric reports whether the reducer needs numeric input.
func (r Reducer) Numeric() bool { return r != Count }

// Aggregation is one output column: Reducer applied to Column. As overrides
// the generated column name.
type Aggregation struct {
	Column  string
	Reducer Reducer
	As      string
}

// Measures expands one value column into an Aggregation per reducer, in the
// given order.
func Measures(column string, reducers ...Reducer) []Aggregation {
	out := make([]Aggregation, len(reducers))
	for i, r := range reducers {
		out[i] = Aggregation{Column: column, Reducer: r}
	}
	return out
}

// Name returns the output column name: the alias, or column+sep+reducer.
func (a Aggregation) Name(sep string) string {
	if a.As != "" {
		return a.As
	}
	return a.Column + sep + string(a.Reducer)
}

// accumulator folds the non-null values of one column.
type accumulator struct {
	count  int
	sumF   float64
	sumI   int64
	allInt bool
	min    table.Value
	max    table.Value
}

func newAccumulator() *accumulator {
	return &accumulator{allInt: true}
}

func (a *accumulator) add(v table.Value) {
	if v.IsNull() {
		return
	}
	if a.count == 0 {
		a.min, a.max = v, v
	} else {
		if table.Compare(v, a.min) < 0 {
			a.min = v
		}
		if table.Compare(v, a.max) > 0 {
			a.max = v
		}
	}
	a.count++
	if i, ok := v.Int64(); ok {
		if sum := a.sumI + i; (i > 0 && sum < a.sumI) || (i < 0 && sum > a.sumI) {
			// int64 overflow: the sum continues as a float.
			a.allInt = false
		} else {
			a.sumI = sum
		}
		a.sumF += float64(i)
		return
	}
	if f, ok := v.Float64(); ok {
		a.allInt = false
		a.sumF += f
	}
}

func (a *accumulator) result(r Reducer, cfg *config) table.Value {
	switch r {
	case Count:
		return table.Int(int64(a.count))
	case Sum:
		if a.allInt {
			return table.Int(a.sumI)
		}
		return table.Float(round(a.sumF, cfg.precision))
	case Mean:
		if a.count == 0 {
			return cfg.fill
		}
		return table.Float(round(a.sumF/float64(a.count), cfg.precision))
	case Min:
		if a.count == 0 {
			return cfg.fill
		}
		return a.min
	case Max:
		if a.count == 0 {
			return cfg.fill
		}
		return a.max
	}
	return cfg.fill
}

// reduce folds the given rows of column col.
func reduce(t *table.Table, rows []int, col int, r Reducer, cfg *config) table.Value {
	acc := newAccumulator()
	for _, i := range rows {
		acc.add(t.At(i, col))
	}
	return acc.result(r, cfg)
}

// round uses banker's rounding on the shortest decimal representation of v,
// so 0.125 becomes 0.12 and 0.135 becomes 0.14.
func round(v float64, places int) float64 {
	if places < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).RoundBank(int32(places)).Float64()
	return f
}
