package dataprocessing

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"

	apperrors "pivotcli/internal/errors"
	"pivotcli/internal/table"
)

const salesCSV = "Invoice ID,Branch,Gender,Product line,Unit price,Quantity,Total\n" +
	"750-67-8428,A,Female,Health and beauty,74.69,7,548.9715\n" +
	"226-31-3081,C,Female,Electronic accessories,15.28,5,80.22\n" +
	"631-41-3108,A,Male,Home and lifestyle,46.33,7,340.5255\n"

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestLoadCSV_InfersKinds(t *testing.T) {
	path := writeFile(t, "s1.csv", []byte(salesCSV))

	tbl, err := LoadCSV(path, LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Invoice ID", "Branch", "Gender", "Product line", "Unit price", "Quantity", "Total"}, tbl.Columns())
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, table.KindText, tbl.ColumnKind("Invoice ID"))
	assert.Equal(t, table.KindFloat, tbl.ColumnKind("Unit price"))
	assert.Equal(t, table.KindInt, tbl.ColumnKind("Quantity"))
	assert.Equal(t, "548.9715", tbl.Value(0, "Total").String())
}

func TestLoadCSV_MixedNumbersBecomeFloat(t *testing.T) {
	path := writeFile(t, "mixed.csv", []byte("k,v\na,1\nb,2.5\nc,\n"))

	tbl, err := LoadCSV(path, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "1.0"}, {"b", "2.5"}, {"c", ""}}, tbl.Records())
}

func TestLoadCSV_NaNMarksMissingFloat(t *testing.T) {
	path := writeFile(t, "nan.csv", []byte("k,v\na,1\nb,NaN\nc,3\n"))

	tbl, err := LoadCSV(path, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, table.KindFloat, tbl.ColumnKind("v"))
	assert.Equal(t, [][]string{{"a", "1.0"}, {"b", ""}, {"c", "3.0"}}, tbl.Records())

	forced, err := LoadCSV(path, LoadOptions{Types: map[string]table.Kind{"v": table.KindInt}})
	require.NoError(t, err)
	assert.True(t, forced.Value(1, "v").IsNull())
	assert.Equal(t, "3", forced.Value(2, "v").String())
}

func TestLoadCSV_StripsBOM(t *testing.T) {
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("性别,数量\n女,3\n")...)
	path := writeFile(t, "s2.csv", content)

	tbl, err := LoadCSV(path, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"性别", "数量"}, tbl.Columns())
	assert.Equal(t, "女", tbl.Value(0, "性别").String())
}

func TestLoadCSV_GBK(t *testing.T) {
	encoded, err := simplifiedchinese.GBK.NewEncoder().String("产品线,总计\n食品饮料,12.5\n")
	require.NoError(t, err)
	path := writeFile(t, "gbk.csv", []byte(encoded))

	tbl, err := LoadCSV(path, LoadOptions{Encoding: "gbk"})
	require.NoError(t, err)
	assert.Equal(t, []string{"产品线", "总计"}, tbl.Columns())
	assert.Equal(t, "食品饮料", tbl.Value(0, "产品线").String())

	_, err = LoadCSV(path, LoadOptions{Encoding: "klingon"})
	assert.True(t, errors.Is(err, apperrors.ErrConfig))
}

func TestLoadCSV_TypeOverrides(t *testing.T) {
	path := writeFile(t, "codes.csv", []byte("Branch,Quantity\n001,7\n002,5\n"))

	tbl, err := LoadCSV(path, LoadOptions{Types: map[string]table.Kind{
		"Branch":   table.KindText,
		"Quantity": table.KindFloat,
	}})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"001", "7.0"}, {"002", "5.0"}}, tbl.Records())

	_, err = LoadCSV(path, LoadOptions{Types: map[string]table.Kind{"Branch": table.KindInt, "Quantity": table.KindInt}})
	require.NoError(t, err)

	bad := writeFile(t, "bad.csv", []byte("Quantity\n7\nseven\n"))
	_, err = LoadCSV(bad, LoadOptions{Types: map[string]table.Kind{"Quantity": table.KindInt}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrParse))
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 3, appErr.Context["line"])
}

func TestLoadCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr error
		line    int
	}{
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.csv") },
			wantErr: apperrors.ErrNotFound,
		},
		{
			name:    "wrong field count",
			path:    func(t *testing.T) string { return writeFile(t, "short.csv", []byte("a,b\n1,2\n3\n")) },
			wantErr: apperrors.ErrParse,
			line:    3,
		},
		{
			name:    "bad quoting",
			path:    func(t *testing.T) string { return writeFile(t, "quote.csv", []byte("a,b\n1,\"2\n")) },
			wantErr: apperrors.ErrParse,
		},
		{
			name:    "empty file",
			path:    func(t *testing.T) string { return writeFile(t, "empty.csv", nil) },
			wantErr: apperrors.ErrParse,
		},
		{
			name:    "duplicate header",
			path:    func(t *testing.T) string { return writeFile(t, "dup.csv", []byte("a,a\n1,2\n")) },
			wantErr: apperrors.ErrSchema,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCSV(tt.path(t), LoadOptions{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			if tt.line > 0 {
				var appErr *apperrors.AppError
				require.True(t, errors.As(err, &appErr))
				assert.Equal(t, tt.line, appErr.Context["line"])
			}
		})
	}
}

func TestLoadCSV_HeaderOnly(t *testing.T) {
	path := writeFile(t, "header.csv", []byte("a,b\n"))
	tbl, err := LoadCSV(path, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, []string{"a", "b"}, tbl.Columns())
}

func TestLoadXLSX(t *testing.T) {
	dir := t.TempDir()
	f := excelize.NewFile()
	sheetName := "Sales"
	f.SetSheetName(f.GetSheetName(0), sheetName)

	rows := [][]interface{}{
		{"City", "Quantity", "Rating"},
		{"Yangon", 7, 9.1},
		{},
		{"Mandalay", 5},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheetName, cell, &row))
	}
	path := filepath.Join(dir, "sales.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	t.Run("named sheet", func(t *testing.T) {
		tbl, err := LoadXLSX(path, sheetName, LoadOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"City", "Quantity", "Rating"}, tbl.Columns())
		assert.Equal(t, [][]string{{"Yangon", "7", "9.1"}, {"Mandalay", "5", ""}}, tbl.Records())
	})

	t.Run("first sheet with data", func(t *testing.T) {
		tbl, err := Load(path, LoadOptions{})
		require.NoError(t, err)
		assert.Equal(t, 2, tbl.Len())
	})

	t.Run("unknown sheet", func(t *testing.T) {
		_, err := LoadXLSX(path, "Nope", LoadOptions{})
		assert.True(t, errors.Is(err, apperrors.ErrParse))
	})

	t.Run("missing workbook", func(t *testing.T) {
		_, err := LoadXLSX(filepath.Join(dir, "absent.xlsx"), "", LoadOptions{})
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})
}

func TestLoad_DispatchesOnExtension(t *testing.T) {
	path := writeFile(t, "s1.csv", []byte(salesCSV))
	tbl, err := Load(path, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	_, err = Load(filepath.Join(t.TempDir(), "absent.csv"), LoadOptions{})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
