package table

// Condition keeps rows whose column value equals one of Values. With Exclude
// the rows matching Values are dropped instead. Values are parsed like CSV
// cells, so "3" matches both an int 3 and a float 3.0.
type Condition struct {
	Column  string   `yaml:"column" validate:"required"`
	Values  []string `yaml:"values" validate:"required,min=1"`
	Exclude bool     `yaml:"exclude"`
}

// Equals is a shorthand for a single-value inclusion condition.
func Equals(column, value string) Condition {
	return Condition{Column: column, Values: []string{value}}
}

// NotEquals is a shorthand for a single-value exclusion condition.
func NotEquals(column, value string) Condition {
	return Condition{Column: column, Values: []string{value}, Exclude: true}
}

type compiledCondition struct {
	col     int
	keys    map[string]struct{}
	exclude bool
}

func (c compiledCondition) keep(row []Value) bool {
	_, hit := c.keys[row[c.col].Key()]
	return hit != c.exclude
}

// Filter returns the rows that satisfy every condition, in their original
// order. Conditions are combined with AND; values within one are OR.
func (t *Table) Filter(conds ...Condition) (*Table, error) {
	cols := make([]string, 0, len(conds))
	for _, c := range conds {
		cols = append(cols, c.Column)
	}
	if err := t.Require(cols...); err != nil {
		return nil, err
	}

	compiled := make([]compiledCondition, len(conds))
	for i, c := range conds {
		keys := make(map[string]struct{}, len(c.Values))
		for _, v := range c.Values {
			keys[Parse(v).Key()] = struct{}{}
			// Text columns keep numeric-looking cells as text.
			keys[Text(v).Key()] = struct{}{}
		}
		compiled[i] = compiledCondition{col: t.index[c.Column], keys: keys, exclude: c.Exclude}
	}

	out := &Table{columns: t.columns, index: t.index}
	for _, row := range t.rows {
		keep := true
		for _, c := range compiled {
			if !c.keep(row) {
				keep = false
				break
			}
		}
		if keep {
			out.rows = append(out.rows, row)
		}
	}
	return out, nil
}
