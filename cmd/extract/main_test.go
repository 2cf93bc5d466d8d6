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

const translatedCSV = `发票编号,城市,性别,产品线,总计,支付方式,毛利率百分比
INV-1,Yangon,女,健康美容,548.97,电子钱包,4.76
INV-2,Naypyitaw,男,电子配件,80.22,现金,4.76
INV-3,Yangon,女,电子配件,340.53,现金,4.76
INV-4,Mandalay,女,健康美容,489.05,电子钱包,4.76
INV-5,Yangon,女,食品饮料,634.38,现金,4.76
`

func setup(t *testing.T) string {
	t.Helper()
	t.Cleanup(infrastructure.ResetLoggerForTesting)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "reports"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reports", "s2.csv"), []byte(translatedCSV), 0644))
	cfg := filepath.Join(dir, "pivotcli.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("paths:\n  base_dir: "+dir+"\nlogging:\n  level: error\nreport:\n  bom: false\n"), 0644))
	return cfg
}

func TestRun_FemaleCustomers(t *testing.T) {
	cfg := setup(t)
	base := filepath.Dir(cfg)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfg}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	data, err := os.ReadFile(filepath.Join(base, "reports", "s3.csv"))
	require.NoError(t, err)
	assert.Equal(t, "产品线,总计,支付方式,毛利率百分比\n"+
		"健康美容,548.97,电子钱包,4.76\n"+
		"电子配件,340.53,现金,4.76\n"+
		"健康美容,489.05,电子钱包,4.76\n"+
		"食品饮料,634.38,现金,4.76\n", string(data))

	out := stdout.String()
	assert.Contains(t, out, "extracted 4 rows")
	assert.Contains(t, out, "产品线 (text)")
	assert.Contains(t, out, "毛利率百分比 (float)")
	assert.Regexp(t, `健康美容\s+2`, out)
	assert.Regexp(t, `count\s+4`, out)
	assert.Regexp(t, `std\s+0\.000000`, out)
}

func TestRun_CustomConditions(t *testing.T) {
	cfg := setup(t)
	base := filepath.Dir(cfg)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfg,
		"-where", "城市=Yangon",
		"-exclude", "支付方式=现金",
		"-columns", "发票编号,总计",
		"-counts", "", "-describe", "总计",
		"-out", "yangon.csv",
	}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	data, err := os.ReadFile(filepath.Join(base, "reports", "yangon.csv"))
	require.NoError(t, err)
	assert.Equal(t, "发票编号,总计\nINV-1,548.97\n", string(data))
}

func TestRun_BadCondition(t *testing.T) {
	cfg := setup(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfg, "-where", "性别"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "column=value")
}
