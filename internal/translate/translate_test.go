package translate

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pivotcli/internal/errors"
	"pivotcli/internal/shared/testutil"
	"pivotcli/internal/table"
)

func salesRows() *table.Table {
	return table.MustNew([]string{"Invoice ID", "Customer type", "Gender", "Product line", "Quantity", "Payment", "Notes"}).
		MustAppend(table.Text("750-67-8428"), table.Text("Member"), table.Text("Female"), table.Text("Health and beauty"), table.Int(7), table.Text("Ewallet"), table.Text("Female")).
		MustAppend(table.Text("226-31-3081"), table.Text("Normal"), table.Text("Male"), table.Text("Electronic accessories"), table.Int(5), table.Text("Cash"), table.Null()).
		MustAppend(table.Text("631-41-3108"), table.Text("Normal"), table.Text("Other"), table.Text("Home and lifestyle"), table.Int(7), table.Text("Bitcoin"), table.Text("x"))
}

func TestTranslate_SalesDictionary(t *testing.T) {
	out, err := Translate(salesRows(), SalesDictionary())
	require.NoError(t, err)

	assert.Equal(t, []string{"发票编号", "客户类型", "性别", "产品线", "数量", "支付方式", "Notes"}, out.Columns())
	assert.Equal(t, [][]string{
		{"750-67-8428", "会员", "女", "健康美容", "7", "电子钱包", "Female"},
		{"226-31-3081", "普通客户", "男", "电子配件", "5", "现金", ""},
		{"631-41-3108", "普通客户", "Other", "家居生活", "7", "Bitcoin", "x"},
	}, out.Records())
}

func TestTranslate_LogsSummary(t *testing.T) {
	logger, logs := testutil.NewTestLogger(nil)

	_, err := Translate(salesRows(), SalesDictionary(), WithLogger(logger))
	require.NoError(t, err)
	testutil.AssertLogged(t, logs, slog.LevelDebug, "Translated table",
		"rows", "3", "renamed_columns", "6", "translated_cells", "10")
}

func TestTranslate_PassThrough(t *testing.T) {
	src := salesRows()
	out, err := Translate(src, Dictionary{})
	require.NoError(t, err)

	assert.Equal(t, src.Columns(), out.Columns())
	assert.Equal(t, src.Records(), out.Records())
}

func TestTranslate_OnlyTextCellsAreMapped(t *testing.T) {
	src := table.MustNew([]string{"code"}).
		MustAppend(table.Int(1)).
		MustAppend(table.Text("1"))
	d := Dictionary{Values: map[string]map[string]string{"code": {"1": "one"}}}

	out, err := Translate(src, d)
	require.NoError(t, err)
	assert.Equal(t, table.KindInt, out.Value(0, "code").Kind())
	assert.Equal(t, "one", out.Value(1, "code").String())
}

func TestTranslate_RoundTrip(t *testing.T) {
	d := SalesDictionary()
	inv, err := d.Inverse()
	require.NoError(t, err)

	src := salesRows()
	forward, err := Translate(src, d)
	require.NoError(t, err)
	back, err := Translate(forward, inv)
	require.NoError(t, err)

	assert.Equal(t, src.Columns(), back.Columns())
	assert.Equal(t, src.Records(), back.Records())
}

func TestInverse_RejectsAmbiguousMappings(t *testing.T) {
	tests := []struct {
		name string
		dict Dictionary
	}{
		{
			name: "columns",
			dict: Dictionary{Columns: map[string]string{"a": "x", "b": "x"}},
		},
		{
			name: "values",
			dict: Dictionary{Values: map[string]map[string]string{
				"Gender": {"Male": "M", "Man": "M"},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.dict.Inverse()
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrValidation))
		})
	}
}

func TestLoadDictionary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dict.yaml")
	content := `columns:
  Gender: 性别
values:
  Gender:
    Female: 女
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	d, err := LoadDictionary(path)
	require.NoError(t, err)
	assert.Equal(t, "性别", d.Columns["Gender"])
	assert.Equal(t, "女", d.Values["Gender"]["Female"])

	_, err = LoadDictionary(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("columns: [1, 2\n"), 0644))
	_, err = LoadDictionary(bad)
	assert.True(t, errors.Is(err, apperrors.ErrParse))
}
