package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	apperrors "pivotcli/internal/errors"
	"pivotcli/internal/table"
	"pivotcli/internal/validation"
)

// LoadOptions controls how a file is turned into a table.
type LoadOptions struct {
	// Format is "csv" or "xlsx"; empty means detect from the extension.
	Format string
	// Sheet selects the worksheet of an xlsx file. Empty picks the first
	// sheet holding data.
	Sheet string
	// Encoding is a WHATWG encoding label such as "gbk" or "gb18030".
	// Empty means UTF-8. A byte order mark always wins.
	Encoding string
	// Comma is the CSV field delimiter; zero means ','.
	Comma rune
	// Types forces the kind of individual columns instead of inferring it.
	Types  map[string]table.Kind
	Logger *slog.Logger
}

func (o LoadOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Load reads a CSV or xlsx file into a table.
func Load(path string, opts LoadOptions) (*table.Table, error) {
	format, err := validation.NewFileValidator(opts.logger()).ValidateInputFile(path, opts.Format)
	if err != nil {
		return nil, err
	}
	if format == validation.FormatXLSX {
		return LoadXLSX(path, opts.Sheet, opts)
	}
	return LoadCSV(path, opts)
}

// LoadCSV reads a delimited text file whose first record is the header.
// Every data record must have as many fields as the header.
func LoadCSV(path string, opts LoadOptions) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewFileNotFoundError(path)
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()

	dec, err := decoder(opts.Encoding)
	if err != nil {
		return nil, err
	}
	r := csv.NewReader(transform.NewReader(f, unicode.BOMOverride(dec.NewDecoder())))
	if opts.Comma != 0 {
		r.Comma = opts.Comma
	}
	r.FieldsPerRecord = 0

	header, err := r.Read()
	if err == io.EOF {
		return nil, apperrors.NewParsingError(fmt.Sprintf("%s has no header row", path), nil).
			WithContext("path", path)
	}
	if err != nil {
		return nil, csvError(path, err)
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvError(path, err)
		}
		records = append(records, rec)
	}

	t, err := build(path, header, records, opts.Types)
	if err != nil {
		return nil, err
	}
	opts.logger().Info("Loaded CSV table",
		slog.String("path", path),
		slog.Int("rows", t.Len()),
		slog.Int("columns", t.Width()))
	return t, nil
}

// LoadXLSX reads one worksheet whose first row is the header. Short rows are
// padded with empty cells and blank rows are skipped.
func LoadXLSX(path, sheet string, opts LoadOptions) (*table.Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, apperrors.NewFileNotFoundError(path)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to open workbook %s", path), err).
			WithContext("path", path)
	}
	defer f.Close()

	var rows [][]string
	if sheet != "" {
		rows, err = f.GetRows(sheet)
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("sheet %q not readable in %s", sheet, path), err).
				WithContext("sheet", sheet)
		}
	} else {
		// First sheet that holds anything
		for _, name := range f.GetSheetList() {
			if candidate, err := f.GetRows(name); err == nil && len(candidate) > 0 {
				rows, sheet = candidate, name
				break
			}
		}
	}
	if len(rows) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("%s has no header row", path), nil).
			WithContext("path", path)
	}

	header := rows[0]
	var records [][]string
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		if len(row) > len(header) {
			return nil, apperrors.NewRowParsingError(path, i+2,
				fmt.Errorf("row has %d cells, header has %d", len(row), len(header)))
		}
		padded := make([]string, len(header))
		copy(padded, row)
		records = append(records, padded)
	}

	t, err := build(path, header, records, opts.Types)
	if err != nil {
		return nil, err
	}
	opts.logger().Info("Loaded worksheet",
		slog.String("path", path),
		slog.String("sheet", sheet),
		slog.Int("rows", t.Len()),
		slog.Int("columns", t.Width()))
	return t, nil
}

// build infers a kind per column (all integers, else all numbers, else text)
// unless types forces one, and assembles the table.
func build(path string, header []string, records [][]string, types map[string]table.Kind) (*table.Table, error) {
	t, err := table.New(header)
	if err != nil {
		return nil, err
	}

	kinds := make([]table.Kind, len(header))
	for c, name := range header {
		if k, ok := types[name]; ok {
			kinds[c] = k
			continue
		}
		kinds[c] = inferKind(records, c)
	}

	for i, rec := range records {
		row := make([]table.Value, len(header))
		for c, raw := range rec {
			v, ok := table.ParseAs(raw, kinds[c])
			if !ok {
				return nil, apperrors.NewRowParsingError(path, i+2,
					fmt.Errorf("column %q: %q is not %s", header[c], raw, kinds[c])).
					WithContext("column", header[c])
			}
			row[c] = v
		}
		if err := t.Append(row); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func inferKind(records [][]string, c int) table.Kind {
	kind := table.KindNull
	for _, rec := range records {
		switch v := table.Parse(rec[c]); v.Kind() {
		case table.KindNull:
			// A NaN marker makes the column float, as in a dataframe export.
			if table.IsNaN(rec[c]) {
				kind = table.KindFloat
			}
		case table.KindText:
			return table.KindText
		case table.KindFloat:
			kind = table.KindFloat
		case table.KindInt:
			if kind == table.KindNull {
				kind = table.KindInt
			}
		}
	}
	if kind == table.KindNull {
		// All-empty columns stay text so they round-trip as empty cells.
		return table.KindText
	}
	return kind
}

func decoder(label string) (encoding.Encoding, error) {
	if label == "" || strings.EqualFold(label, "utf-8") || strings.EqualFold(label, "utf8") || strings.EqualFold(label, "utf-8-sig") {
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("unknown input encoding %q", label), err)
	}
	return enc, nil
}

func csvError(path string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return apperrors.NewRowParsingError(path, pe.Line, pe.Err)
	}
	return apperrors.NewStorageError(fmt.Sprintf("failed to read %s", path), err)
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
