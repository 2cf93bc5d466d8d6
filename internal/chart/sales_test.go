package chart

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pivotcli/internal/aggregate"
	apperrors "pivotcli/internal/errors"
	"pivotcli/internal/table"
)

func TestSalesDashboard(t *testing.T) {
	d := SalesDashboard()
	assert.Equal(t, "产品线", d.LabelColumn)
	require.Len(t, d.Panels, 4)
	assert.Equal(t, []string{"总计_mean"}, d.Panels[0].Columns)
	assert.Equal(t, Line, d.Panels[0].Kind)
	assert.Equal(t, []string{"总计_sum"}, d.Panels[1].Columns)
	assert.Equal(t, []string{"总计_count"}, d.Panels[2].Columns)
	assert.Equal(t, []string{"总计_max", "总计_min"}, d.Panels[3].Columns)
	assert.Equal(t, GroupedBar, d.Panels[3].Kind)
}

func TestSalesDashboard_MatchesAggregateOutput(t *testing.T) {
	sales := table.MustNew([]string{"产品线", "总计"}).
		MustAppend(table.Text("食品和饮料"), table.Float(548.97)).
		MustAppend(table.Text("健康和美容"), table.Float(80.22)).
		MustAppend(table.Text("食品和饮料"), table.Float(340.53))

	summary, err := aggregate.Aggregate(sales, []string{"产品线"},
		aggregate.Measures("总计", aggregate.Mean, aggregate.Sum, aggregate.Count, aggregate.Max, aggregate.Min),
		aggregate.WithMargins(true))
	require.NoError(t, err)

	for _, p := range SalesDashboard().Panels {
		assert.NoError(t, summary.Require(p.Columns...))
	}
}

func TestLeaders(t *testing.T) {
	leaders, err := Leaders(summaryTable(), "line", "All", "total_mean", "total_count", "total_min")
	require.NoError(t, err)
	require.Len(t, leaders, 3)

	assert.Equal(t, "Sports", leaders[0].Label)
	assert.Equal(t, "60.42", leaders[0].Value.String())
	assert.Equal(t, "Food", leaders[1].Label, "margin row ignored")
	assert.Equal(t, "4", leaders[1].Value.String())
	assert.Equal(t, "Sports", leaders[2].Label)
}

func TestLeaders_Errors(t *testing.T) {
	_, err := Leaders(summaryTable(), "line", "All", "profit")
	assert.True(t, errors.Is(err, apperrors.ErrSchema))

	nulls := table.MustNew([]string{"line", "v"}).MustAppend(table.Text("a"), table.Null())
	_, err = Leaders(nulls, "line", "", "v")
	assert.True(t, errors.Is(err, apperrors.ErrEmptyInput))
}
