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

const salesCSV = `Invoice ID,City,Gender,Product line,Quantity,Total,Payment
INV-1,Yangon,Female,Health and beauty,7,548.97,Ewallet
INV-2,Naypyitaw,Female,Electronic accessories,5,80.22,Cash
INV-3,Yangon,Male,Home and lifestyle,7,340.53,Credit card
INV-4,Yangon,Female,Health and beauty,8,489.05,Ewallet
`

const jobsYAML = `jobs:
  - name: women_by_product_line
    input:
      path: s1.csv
    translate:
      builtin: sales
    filter:
      conditions:
        - column: 性别
          values: [女]
    group:
      keys: [产品线]
      aggregations:
        - column: 总计
          reducers: [sum, count]
      margins: true
    outputs:
      - path: women.csv
  - name: quantity_by_city
    input:
      path: s1.csv
    pivot:
      rows: [City]
      columns: [Gender]
      aggregations:
        - column: Quantity
          reducers: [sum]
      fill_value: "0"
    outputs:
      - path: city_gender.xlsx
`

func setup(t *testing.T) (cfg, jobs string) {
	t.Helper()
	t.Cleanup(infrastructure.ResetLoggerForTesting)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "s1.csv"), []byte(salesCSV), 0644))
	cfg = filepath.Join(dir, "pivotcli.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("paths:\n  base_dir: "+dir+"\nlogging:\n  level: error\nreport:\n  bom: false\n"), 0644))
	jobs = filepath.Join(dir, "jobs.yaml")
	require.NoError(t, os.WriteFile(jobs, []byte(jobsYAML), 0644))
	return cfg, jobs
}

func TestRun_AllJobs(t *testing.T) {
	cfg, jobs := setup(t)
	base := filepath.Dir(cfg)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfg, "-jobs", jobs}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := stdout.String()
	assert.Regexp(t, `women_by_product_line\s+completed`, out)
	assert.Regexp(t, `quantity_by_city\s+completed`, out)
	assert.FileExists(t, filepath.Join(base, "reports", "city_gender.xlsx"))

	data, err := os.ReadFile(filepath.Join(base, "reports", "women.csv"))
	require.NoError(t, err)
	assert.Equal(t, "产品线,总计_sum,总计_count\n"+
		"健康美容,1038.02,2\n"+
		"电子配件,80.22,1\n"+
		"All,1118.24,3\n", string(data))
}

func TestRun_OnlyAndList(t *testing.T) {
	cfg, jobs := setup(t)
	base := filepath.Dir(cfg)

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"-config", cfg, "-jobs", jobs, "-list"}, &stdout, &stderr), stderr.String())
	assert.Equal(t, "women_by_product_line\nquantity_by_city\n", stdout.String())

	stdout.Reset()
	code := run([]string{"-config", cfg, "-jobs", jobs, "-only", "quantity_by_city"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.NotContains(t, stdout.String(), "women_by_product_line")
	assert.NoFileExists(t, filepath.Join(base, "reports", "women.csv"))

	code = run([]string{"-config", cfg, "-jobs", jobs, "-only", "nope"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "unknown jobs [nope]")
}

func TestRun_InvalidJobFile(t *testing.T) {
	cfg, _ := setup(t)
	bad := filepath.Join(filepath.Dir(cfg), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("jobs:\n  - name: x\n    input:\n      path: s1.csv\n    unknown: 1\n"), 0644))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfg, "-jobs", bad}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "bad.yaml")
}
