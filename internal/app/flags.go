package app

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"pivotcli/internal/config"
	apperrors "pivotcli/internal/errors"
	"pivotcli/internal/table"
)

// StringList is a repeatable string flag.
type StringList []string

// String implements flag.Value
func (l *StringList) String() string { return strings.Join(*l, " ") }

// Set implements flag.Value
func (l *StringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// SplitList splits a comma separated flag value, dropping blanks.
func SplitList(s string) []string {
	parts := lo.Map(strings.Split(s, ","), func(p string, _ int) string { return strings.TrimSpace(p) })
	return lo.Compact(parts)
}

// ParseCondition parses column=v1|v2 into a row filter.
func ParseCondition(s string, exclude bool) (table.Condition, error) {
	column, values, ok := strings.Cut(s, "=")
	column = strings.TrimSpace(column)
	if !ok || column == "" || values == "" {
		return table.Condition{}, apperrors.NewValidationError(fmt.Sprintf("condition %q must look like column=value[|value...]", s))
	}
	return table.Condition{Column: column, Values: strings.Split(values, "|"), Exclude: exclude}, nil
}

// ParseAggregation parses column:reducer[,reducer...][:alias].
func ParseAggregation(s string) (config.AggregationSpec, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 || strings.TrimSpace(parts[0]) == "" {
		return config.AggregationSpec{}, apperrors.NewValidationError(
			fmt.Sprintf("aggregation %q must look like column:reducer[,reducer...][:alias]", s))
	}
	spec := config.AggregationSpec{
		Column:   strings.TrimSpace(parts[0]),
		Reducers: SplitList(parts[1]),
	}
	if len(spec.Reducers) == 0 {
		return config.AggregationSpec{}, apperrors.NewValidationError(fmt.Sprintf("aggregation %q names no reducer", s))
	}
	if len(parts) == 3 {
		spec.As = strings.TrimSpace(parts[2])
	}
	return spec, nil
}

// ParsePanel parses kind:column[,column...][:title] into a chart panel.
func ParsePanel(s string) (config.PanelSpec, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 {
		return config.PanelSpec{}, apperrors.NewValidationError(
			fmt.Sprintf("panel %q must look like kind:column[,column...][:title]", s))
	}
	spec := config.PanelSpec{Kind: strings.TrimSpace(parts[0]), Columns: SplitList(parts[1])}
	if len(parts) == 3 {
		spec.Title = strings.TrimSpace(parts[2])
	}
	if spec.Kind == "" || len(spec.Columns) == 0 {
		return config.PanelSpec{}, apperrors.NewValidationError(fmt.Sprintf("panel %q needs a kind and a column", s))
	}
	return spec, nil
}
