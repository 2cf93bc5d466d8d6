package exporter

import (
	"fmt"
	"path/filepath"
	"strings"

	apperrors "pivotcli/internal/errors"
	"pivotcli/internal/table"
	"pivotcli/internal/validation"
)

// cellValue converts a table value to the type excelize stores natively.
// Nulls become empty cells.
func cellValue(v table.Value) interface{} {
	switch v.Kind() {
	case table.KindInt:
		i, _ := v.Int64()
		return i
	case table.KindFloat:
		f, _ := v.Float64()
		return f
	case table.KindText:
		return v.String()
	}
	return nil
}

// Write stores t at path in the given format ("csv" or "xlsx"); an empty
// format is taken from the extension.
func Write(t *table.Table, path, format string, options WriteOptions) error {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch strings.ToLower(format) {
	case validation.FormatXLSX:
		return WriteXLSX(t, path, options)
	case validation.FormatCSV, "":
		return WriteCSV(t, path, options)
	}
	return apperrors.NewValidationError(fmt.Sprintf("unsupported output format %q", format)).
		WithContext("path", path)
}
