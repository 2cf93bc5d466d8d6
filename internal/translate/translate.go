// Package translate renames table columns and rewrites categorical values
// through a Dictionary. Anything the dictionary does not mention passes
// through unchanged.
package translate

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/samber/lo"
	"gopkg.in/yaml.v2"

	apperrors "pivotcli/internal/errors"
	"pivotcli/internal/table"
)

// Dictionary maps column names and cell values from one vocabulary to
// another. Values is keyed by the source column name; only text cells are
// looked up.
type Dictionary struct {
	Columns map[string]string            `yaml:"columns"`
	Values  map[string]map[string]string `yaml:"values"`
}

// Option configures Translate.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger receiving the translation summary.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Translate applies d to t and returns a new table. Value maps are applied
// before columns are renamed, so they are keyed by the source names.
func Translate(t *table.Table, d Dictionary, opts ...Option) (*table.Table, error) {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	out := t
	translated := 0
	for _, column := range sortedKeys(d.Values) {
		if !out.Has(column) {
			continue
		}
		mapping := d.Values[column]
		var err error
		out, err = out.MapColumn(column, func(v table.Value) table.Value {
			if v.Kind() != table.KindText {
				return v
			}
			if to, ok := mapping[v.String()]; ok {
				translated++
				return table.Text(to)
			}
			return v
		})
		if err != nil {
			return nil, err
		}
	}

	out, err := out.Rename(d.Columns)
	if err != nil {
		return nil, fmt.Errorf("rename columns: %w", err)
	}

	o.logger.Debug("Translated table",
		slog.Int("rows", t.Len()),
		slog.Int("renamed_columns", len(lo.Filter(t.Columns(), func(c string, _ int) bool { return d.Columns[c] != "" }))),
		slog.Int("translated_cells", translated))
	return out, nil
}

// Inverse returns the dictionary that undoes d. Value maps are re-keyed by
// the translated column name. It fails when two sources share a target,
// because the reverse mapping would be ambiguous.
func (d Dictionary) Inverse() (Dictionary, error) {
	inv := Dictionary{
		Columns: lo.Invert(d.Columns),
		Values:  make(map[string]map[string]string, len(d.Values)),
	}
	if len(inv.Columns) != len(d.Columns) {
		return Dictionary{}, apperrors.NewValidationError(
			fmt.Sprintf("column mapping is not one-to-one: %v", duplicateTargets(d.Columns)))
	}
	for column, mapping := range d.Values {
		reversed := lo.Invert(mapping)
		if len(reversed) != len(mapping) {
			return Dictionary{}, apperrors.NewValidationError(
				fmt.Sprintf("value mapping for column %q is not one-to-one: %v", column, duplicateTargets(mapping))).
				WithContext("column", column)
		}
		target := column
		if renamed, ok := d.Columns[column]; ok && renamed != "" {
			target = renamed
		}
		inv.Values[target] = reversed
	}
	return inv, nil
}

// LoadDictionary reads a YAML dictionary with top-level "columns" and
// "values" keys.
func LoadDictionary(path string) (Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Dictionary{}, apperrors.NewFileNotFoundError(path)
		}
		return Dictionary{}, apperrors.NewStorageError("failed to read dictionary", err)
	}
	var d Dictionary
	if err := yaml.UnmarshalStrict(data, &d); err != nil {
		return Dictionary{}, apperrors.NewParsingError(fmt.Sprintf("invalid dictionary %s", path), err)
	}
	return d, nil
}

func duplicateTargets(m map[string]string) []string {
	dups := lo.FindDuplicates(lo.Values(m))
	sort.Strings(dups)
	return dups
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
