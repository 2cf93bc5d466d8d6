package aggregate

import (
	"sort"
	"strings"

	"pivotcli/internal/table"
)

// group is one partition: its key tuple and the input rows it holds.
type group struct {
	id   string
	keys []table.Value
	rows []int
}

// label joins the formatted key values with sep.
func (g *group) label(sep string) string {
	parts := make([]string, len(g.keys))
	for i, k := range g.keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, sep)
}

func groupID(row []table.Value) string {
	var b strings.Builder
	for i, v := range row {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		b.WriteString(v.Key())
	}
	return b.String()
}

// partition splits rows by the values at cols. Groups come back in
// first-seen order unless order is Sorted.
func partition(t *table.Table, rows []int, cols []int, order KeyOrder) ([]*group, map[string]*group) {
	byID := make(map[string]*group)
	var groups []*group
	keys := make([]table.Value, len(cols))
	for _, i := range rows {
		for j, c := range cols {
			keys[j] = t.At(i, c)
		}
		id := groupID(keys)
		g, ok := byID[id]
		if !ok {
			g = &group{id: id, keys: append([]table.Value(nil), keys...)}
			byID[id] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, i)
	}
	if order == Sorted {
		sort.SliceStable(groups, func(a, b int) bool {
			return compareKeys(groups[a].keys, groups[b].keys) < 0
		})
	}
	return groups, byID
}

func compareKeys(a, b []table.Value) int {
	for i := range a {
		if c := table.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

func allRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}
