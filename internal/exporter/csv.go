package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "pivotcli/internal/errors"
	"pivotcli/internal/table"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
	Comma     rune
	Sheet     string // worksheet name when writing xlsx
	Logger    *slog.Logger
}

func (o WriteOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// DefaultWriteOptions writes comma separated UTF-8 with a BOM.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{BOMPrefix: true}
}

// WriteCSV writes the header and every row of t to path, replacing any
// existing file. Null cells are written empty and floats keep a decimal
// point.
func WriteCSV(t *table.Table, path string, options WriteOptions) error {
	options.logger().Info("Writing CSV file",
		slog.String("file_path", path),
		slog.Int("record_count", t.Len()),
		slog.Bool("bom", options.BOMPrefix))

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err).WithContext("path", path)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return apperrors.NewStorageError("failed to open file", err).WithContext("path", path)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write(utf8BOM); err != nil {
			return apperrors.NewStorageError("failed to write BOM", err).WithContext("path", path)
		}
	}

	writer := csv.NewWriter(file)
	if options.Comma != 0 {
		writer.Comma = options.Comma
	}

	if err := writer.Write(t.Columns()); err != nil {
		return apperrors.NewStorageError("failed to write headers", err).WithContext("path", path)
	}
	for i, record := range t.Records() {
		if err := writer.Write(record); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to write record %d", i), err).WithContext("path", path)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewStorageError("failed to flush CSV", err).WithContext("path", path)
	}
	return file.Close()
}
