package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	apperrors "pivotcli/internal/errors"
	"pivotcli/internal/table"
)

// DefaultSheet is the worksheet name used when none is given.
const DefaultSheet = "Sheet1"

// WriteXLSX writes t to a new workbook with a single worksheet named by
// options.Sheet. Numbers are stored as numeric cells and the header row is
// bold and frozen.
func WriteXLSX(t *table.Table, path string, options WriteOptions) error {
	sheet := options.Sheet
	if sheet == "" {
		sheet = DefaultSheet
	}
	options.logger().Info("Writing workbook",
		slog.String("file_path", path),
		slog.String("sheet", sheet),
		slog.Int("record_count", t.Len()))

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("invalid sheet name %q", sheet), err)
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return apperrors.NewStorageError("failed to create header style", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return apperrors.NewStorageError("failed to open sheet writer", err)
	}
	if err := sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return apperrors.NewStorageError("failed to freeze header", err)
	}

	row := make([]interface{}, t.Width())
	for i, name := range t.Columns() {
		row[i] = excelize.Cell{StyleID: header, Value: name}
	}
	if err := sw.SetRow("A1", row); err != nil {
		return apperrors.NewStorageError("failed to write headers", err)
	}

	for i := 0; i < t.Len(); i++ {
		for c := 0; c < t.Width(); c++ {
			row[c] = cellValue(t.At(i, c))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperrors.NewStorageError("failed to address row", err)
		}
		if err := sw.SetRow(cell, row); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to write record %d", i), err)
		}
	}
	if err := sw.Flush(); err != nil {
		return apperrors.NewStorageError("failed to flush sheet", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err).WithContext("path", path)
	}
	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError("failed to save workbook", err).WithContext("path", path)
	}
	return nil
}
