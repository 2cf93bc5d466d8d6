package chart

import (
	"pivotcli/internal/aggregate"
	apperrors "pivotcli/internal/errors"
	"pivotcli/internal/table"
)

// Column names of the translated product line summary.
const (
	SalesLabelColumn = "产品线"
	salesValueColumn = "总计"
)

// SalesColumn names the aggregate of the sales total under reducer r, as
// produced by aggregate.Aggregate with the default separator.
func SalesColumn(r aggregate.Reducer) string {
	return aggregate.Aggregation{Column: salesValueColumn, Reducer: r}.Name(aggregate.DefaultSeparator)
}

// SalesDashboard is the four-panel product line overview: mean order value,
// total revenue, order count and the order value range.
func SalesDashboard() Dashboard {
	return Dashboard{
		Title:       "销售数据可视化分析",
		LabelColumn: SalesLabelColumn,
		Panels: []Panel{
			{Kind: Line, Columns: []string{SalesColumn(aggregate.Mean)}, Title: "各产品线平均订单额", YLabel: "平均订单额 (元)"},
			{Kind: Bar, Columns: []string{SalesColumn(aggregate.Sum)}, Title: "各产品线总销售额", YLabel: "总销售额 (元)"},
			{Kind: Bar, Columns: []string{SalesColumn(aggregate.Count)}, Title: "各产品线订单数量", YLabel: "订单数量"},
			{Kind: GroupedBar, Columns: []string{SalesColumn(aggregate.Max), SalesColumn(aggregate.Min)}, Title: "各产品线订单金额范围", YLabel: "订单金额 (元)"},
		},
	}
}

// Leader is the row holding the largest value of a column.
type Leader struct {
	Column string
	Label  string
	Value  table.Value
}

// Leaders finds, for each column, the label of the row with the largest
// value. Margin rows and nulls are ignored; the first row wins a tie.
func Leaders(t *table.Table, labelColumn, marginLabel string, columns ...string) ([]Leader, error) {
	if err := t.Require(append([]string{labelColumn}, columns...)...); err != nil {
		return nil, err
	}
	labels, rows := dataRows(t, labelColumn, marginLabel)
	leaders := make([]Leader, 0, len(columns))
	for _, column := range columns {
		best := -1
		for i, r := range rows {
			v := t.Value(r, column)
			if v.IsNull() {
				continue
			}
			if !v.IsNumeric() {
				return nil, apperrors.NewTypeMismatchError(column, r, v.String(), "max")
			}
			if best < 0 || table.Compare(v, t.Value(rows[best], column)) > 0 {
				best = i
			}
		}
		if best < 0 {
			return nil, apperrors.NewEmptyInputError("no values in column " + column)
		}
		leaders = append(leaders, Leader{Column: column, Label: labels[best], Value: t.Value(rows[best], column)})
	}
	return leaders, nil
}
