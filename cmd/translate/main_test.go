package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pivotcli/internal/infrastructure"
)

const salesCSV = `Invoice ID,City,Gender,Product line,Total,Payment
INV-1,Yangon,Female,Health and beauty,548.97,Ewallet
INV-2,Naypyitaw,Male,Electronic accessories,80.22,Cash
`

func setup(t *testing.T) string {
	t.Helper()
	t.Cleanup(infrastructure.ResetLoggerForTesting)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "s1.csv"), []byte(salesCSV), 0644))
	cfg := filepath.Join(dir, "pivotcli.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("paths:\n  base_dir: "+dir+"\nlogging:\n  level: error\nreport:\n  bom: false\n"), 0644))
	return cfg
}

func TestRun_BuiltinDictionary(t *testing.T) {
	cfg := setup(t)
	base := filepath.Dir(cfg)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfg}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "translated 2 rows, 6 columns")

	data, err := os.ReadFile(filepath.Join(base, "reports", "s2.csv"))
	require.NoError(t, err)
	assert.Equal(t, "发票编号,城市,性别,产品线,总计,支付方式\n"+
		"INV-1,Yangon,女,健康美容,548.97,电子钱包\n"+
		"INV-2,Naypyitaw,男,电子配件,80.22,现金\n", string(data))
}

func TestRun_InverseRoundTrip(t *testing.T) {
	cfg := setup(t)
	base := filepath.Dir(cfg)

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"-config", cfg}, &stdout, &stderr), stderr.String())
	code := run([]string{"-config", cfg, "-in", filepath.Join(base, "reports", "s2.csv"), "-out", "back.csv", "-inverse"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	data, err := os.ReadFile(filepath.Join(base, "reports", "back.csv"))
	require.NoError(t, err)
	assert.Equal(t, salesCSV, string(data))
}

func TestRun_MissingInput(t *testing.T) {
	cfg := setup(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfg, "-in", "nope.csv"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "nope.csv")
}
