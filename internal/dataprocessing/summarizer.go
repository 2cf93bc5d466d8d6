package dataprocessing

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"unsafe"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	apperrors "pivotcli/internal/errors"
	"pivotcli/internal/table"
)

// TableSummary is the shape and null profile of a table.
type TableSummary struct {
	Rows        int               `json:"rows" yaml:"rows"`
	Columns     int               `json:"columns" yaml:"columns"`
	ColumnNames []string          `json:"column_names" yaml:"column_names"`
	Kinds       map[string]string `json:"kinds" yaml:"kinds"`
	Missing     map[string]int    `json:"missing" yaml:"missing"`
	// MemoryBytes estimates the in-memory size of the cells.
	MemoryBytes int64 `json:"memory_bytes" yaml:"memory_bytes"`
}

// Summarize profiles every column of t.
func Summarize(t *table.Table) TableSummary {
	s := TableSummary{
		Rows:        t.Len(),
		Columns:     t.Width(),
		ColumnNames: t.Columns(),
		Kinds:       make(map[string]string, t.Width()),
		Missing:     make(map[string]int, t.Width()),
	}
	cell := int64(unsafe.Sizeof(table.Value{}))
	for c, name := range s.ColumnNames {
		s.Kinds[name] = t.ColumnKind(name).String()
		missing := 0
		for i := 0; i < t.Len(); i++ {
			v := t.At(i, c)
			s.MemoryBytes += cell
			switch v.Kind() {
			case table.KindNull:
				missing++
			case table.KindText:
				s.MemoryBytes += int64(len(v.String()))
			}
		}
		s.Missing[name] = missing
	}
	return s
}

// ValueCount is one distinct value of a column and how often it occurs.
type ValueCount struct {
	Value table.Value
	Count int
}

// ValueCounts tallies the non-null values of column, most frequent first.
// Ties are broken by value order.
func ValueCounts(t *table.Table, column string) ([]ValueCount, error) {
	values, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int)
	var counts []ValueCount
	for _, v := range values {
		if v.IsNull() {
			continue
		}
		k := v.Key()
		if i, ok := index[k]; ok {
			counts[i].Count++
			continue
		}
		index[k] = len(counts)
		counts = append(counts, ValueCount{Value: v, Count: 1})
	}
	sort.SliceStable(counts, func(a, b int) bool {
		if counts[a].Count != counts[b].Count {
			return counts[a].Count > counts[b].Count
		}
		return table.Compare(counts[a].Value, counts[b].Value) < 0
	})
	return counts, nil
}

// Description holds the summary statistics of a numeric column. Std is the
// sample standard deviation; it is NaN for a single value.
type Description struct {
	Count int     `json:"count" yaml:"count"`
	Mean  float64 `json:"mean" yaml:"mean"`
	Std   float64 `json:"std" yaml:"std"`
	Min   float64 `json:"min" yaml:"min"`
	Q25   float64 `json:"25%" yaml:"25%"`
	Q50   float64 `json:"50%" yaml:"50%"`
	Q75   float64 `json:"75%" yaml:"75%"`
	Max   float64 `json:"max" yaml:"max"`
}

// Describe computes count, mean, std, min, quartiles and max over the
// non-null values of a numeric column. Quartiles interpolate linearly
// between closest ranks.
func Describe(t *table.Table, column string) (Description, error) {
	values, err := t.Column(column)
	if err != nil {
		return Description{}, err
	}
	xs := make([]float64, 0, len(values))
	for row, v := range values {
		if v.IsNull() {
			continue
		}
		f, ok := v.Float64()
		if !ok {
			return Description{}, apperrors.NewTypeMismatchError(column, row, v.String(), "describe")
		}
		xs = append(xs, f)
	}
	if len(xs) == 0 {
		return Description{}, apperrors.NewEmptyInputError(fmt.Sprintf("column %q has no numeric values", column))
	}
	sort.Float64s(xs)

	mean, std := stat.MeanStdDev(xs, nil)
	if len(xs) == 1 {
		std = math.NaN()
	}
	return Description{
		Count: len(xs),
		Mean:  mean,
		Std:   std,
		Min:   floats.Min(xs),
		Q25:   quantile(xs, 0.25),
		Q50:   quantile(xs, 0.5),
		Q75:   quantile(xs, 0.75),
		Max:   floats.Max(xs),
	}, nil
}

// quantile interpolates between the closest ranks of sorted xs at
// position p*(n-1).
func quantile(xs []float64, p float64) float64 {
	pos := p * float64(len(xs)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return xs[lo]
	}
	return xs[lo] + (xs[hi]-xs[lo])*(pos-float64(lo))
}

// ColumnProfile is the value counts of a text column or the description of
// a numeric one.
type ColumnProfile struct {
	Name     string       `json:"name" yaml:"name"`
	Kind     string       `json:"kind" yaml:"kind"`
	Counts   []CountEntry `json:"value_counts,omitempty" yaml:"value_counts,omitempty"`
	Describe *Description `json:"describe,omitempty" yaml:"describe,omitempty"`
}

// CountEntry is a ValueCount with the value rendered as text.
type CountEntry struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// TableProfile combines the table summary with per-column profiles.
type TableProfile struct {
	Summary TableSummary    `json:"summary" yaml:"summary"`
	Columns []ColumnProfile `json:"columns,omitempty" yaml:"columns,omitempty"`
}

// Profile summarizes t and profiles each named column: value counts for
// text columns, Describe for numeric ones. Columns without values get
// neither.
func Profile(t *table.Table, columns ...string) (*TableProfile, error) {
	if err := t.Require(columns...); err != nil {
		return nil, err
	}
	p := &TableProfile{Summary: Summarize(t), Columns: make([]ColumnProfile, len(columns))}
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range columns {
		g.Go(func() error {
			cp, err := profileColumn(t, name)
			if err != nil {
				return err
			}
			p.Columns[i] = cp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return p, nil
}

func profileColumn(t *table.Table, name string) (ColumnProfile, error) {
	kind := t.ColumnKind(name)
	cp := ColumnProfile{Name: name, Kind: kind.String()}
	switch kind {
	case table.KindInt, table.KindFloat:
		d, err := Describe(t, name)
		if err != nil {
			return cp, err
		}
		cp.Describe = &d
	case table.KindText:
		counts, err := ValueCounts(t, name)
		if err != nil {
			return cp, err
		}
		for _, c := range counts {
			cp.Counts = append(cp.Counts, CountEntry{Value: c.Value.String(), Count: c.Count})
		}
	}
	return cp, nil
}
