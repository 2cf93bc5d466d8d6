package dataprocessing

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pivotcli/internal/errors"
	"pivotcli/internal/table"
)

func femaleSales() *table.Table {
	return table.MustNew([]string{"产品线", "总计", "支付方式", "毛利率百分比"}).
		MustAppend(table.Text("健康美容"), table.Float(548.97), table.Text("电子钱包"), table.Float(4.76)).
		MustAppend(table.Text("电子配件"), table.Float(80.22), table.Text("现金"), table.Float(4.76)).
		MustAppend(table.Text("健康美容"), table.Float(340.53), table.Text("现金"), table.Null()).
		MustAppend(table.Text("食品饮料"), table.Float(489.05), table.Null(), table.Float(4.76)).
		MustAppend(table.Text("健康美容"), table.Float(634.38), table.Text("信用卡"), table.Float(4.76))
}

func TestSummarize(t *testing.T) {
	s := Summarize(femaleSales())

	assert.Equal(t, 5, s.Rows)
	assert.Equal(t, 4, s.Columns)
	assert.Equal(t, []string{"产品线", "总计", "支付方式", "毛利率百分比"}, s.ColumnNames)
	assert.Equal(t, map[string]string{"产品线": "text", "总计": "float", "支付方式": "text", "毛利率百分比": "float"}, s.Kinds)
	assert.Equal(t, map[string]int{"产品线": 0, "总计": 0, "支付方式": 1, "毛利率百分比": 1}, s.Missing)
	assert.Greater(t, s.MemoryBytes, int64(0))
}

func TestValueCounts(t *testing.T) {
	counts, err := ValueCounts(femaleSales(), "支付方式")
	require.NoError(t, err)

	got := make([]string, len(counts))
	for i, c := range counts {
		got[i] = c.Value.String()
	}
	assert.Equal(t, []string{"现金", "信用卡", "电子钱包"}, got)
	assert.Equal(t, 2, counts[0].Count)

	_, err = ValueCounts(femaleSales(), "城市")
	assert.True(t, errors.Is(err, apperrors.ErrSchema))
}

func TestDescribe(t *testing.T) {
	tbl := table.MustNew([]string{"v"})
	for _, v := range []int64{1, 2, 3, 4, 10} {
		tbl.MustAppend(table.Int(v))
	}
	tbl.MustAppend(table.Null())

	d, err := Describe(tbl, "v")
	require.NoError(t, err)

	assert.Equal(t, 5, d.Count)
	assert.InDelta(t, 4.0, d.Mean, 1e-9)
	assert.InDelta(t, 3.5355339, d.Std, 1e-6)
	assert.Equal(t, 1.0, d.Min)
	assert.Equal(t, 2.0, d.Q25)
	assert.Equal(t, 3.0, d.Q50)
	assert.Equal(t, 4.0, d.Q75)
	assert.Equal(t, 10.0, d.Max)
}

func TestDescribe_InterpolatesQuartiles(t *testing.T) {
	tbl := table.MustNew([]string{"v"}).
		MustAppend(table.Float(4)).
		MustAppend(table.Float(1)).
		MustAppend(table.Float(3)).
		MustAppend(table.Float(2))

	d, err := Describe(tbl, "v")
	require.NoError(t, err)
	assert.InDelta(t, 1.75, d.Q25, 1e-9)
	assert.InDelta(t, 2.5, d.Q50, 1e-9)
	assert.InDelta(t, 3.25, d.Q75, 1e-9)
}

func TestDescribe_Errors(t *testing.T) {
	_, err := Describe(femaleSales(), "支付方式")
	assert.True(t, errors.Is(err, apperrors.ErrTypeMismatch))

	empty := table.MustNew([]string{"v"}).MustAppend(table.Null())
	_, err = Describe(empty, "v")
	assert.True(t, errors.Is(err, apperrors.ErrEmptyInput))

	single := table.MustNew([]string{"v"}).MustAppend(table.Int(3))
	d, err := Describe(single, "v")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(d.Std))
}

func TestProfile(t *testing.T) {
	p, err := Profile(femaleSales(), "支付方式", "总计")
	require.NoError(t, err)

	assert.Equal(t, 5, p.Summary.Rows)
	require.Len(t, p.Columns, 2)

	payment := p.Columns[0]
	assert.Equal(t, "text", payment.Kind)
	assert.Nil(t, payment.Describe)
	assert.Equal(t, []CountEntry{{"现金", 2}, {"信用卡", 1}, {"电子钱包", 1}}, payment.Counts)

	total := p.Columns[1]
	assert.Equal(t, "float", total.Kind)
	require.NotNil(t, total.Describe)
	assert.Equal(t, 5, total.Describe.Count)
	assert.InDelta(t, 634.38, total.Describe.Max, 1e-9)

	_, err = Profile(femaleSales(), "城市")
	assert.True(t, errors.Is(err, apperrors.ErrSchema))
}

func TestProfile_KeepsColumnOrder(t *testing.T) {
	columns := femaleSales().Columns()
	p, err := Profile(femaleSales(), columns...)
	require.NoError(t, err)
	require.Len(t, p.Columns, len(columns))
	for i, c := range p.Columns {
		assert.Equal(t, columns[i], c.Name)
	}

	p, err = Profile(femaleSales())
	require.NoError(t, err)
	assert.Empty(t, p.Columns)
}
