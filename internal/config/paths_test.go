package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPaths(t *testing.T) {
	base := t.TempDir()
	abs := filepath.Join(t.TempDir(), "elsewhere")

	paths, err := GetPaths(PathsConfig{
		BaseDir:    base,
		DataDir:    "data",
		ReportsDir: abs,
	})
	require.NoError(t, err)

	assert.Equal(t, base, paths.BaseDir)
	assert.Equal(t, filepath.Join(base, "data"), paths.DataDir)
	assert.Equal(t, abs, paths.ReportsDir)
	assert.Equal(t, filepath.Join(base, DefaultChartsDir), paths.ChartsDir)
	assert.Equal(t, filepath.Join(base, DefaultLogsDir), paths.LogsDir)
}

func TestEnsureDirectories(t *testing.T) {
	paths, err := GetPaths(PathsConfig{BaseDir: t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, paths.EnsureDirectories())
	for _, dir := range []string{paths.DataDir, paths.ReportsDir, paths.ChartsDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir(), dir)
	}
}

func TestPathHelperMethods(t *testing.T) {
	base := t.TempDir()
	paths, err := GetPaths(PathsConfig{BaseDir: base})
	require.NoError(t, err)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"data", paths.GetDataPath("s1.csv"), filepath.Join(base, "data", "s1.csv")},
		{"report", paths.GetReportPath("summary.csv"), filepath.Join(base, "reports", "summary.csv")},
		{"chart", paths.GetChartPath("dashboard.png"), filepath.Join(base, "charts", "dashboard.png")},
		{"log", paths.GetLogPath("pivotcli.log"), filepath.Join(base, "logs", "pivotcli.log")},
		{"explicit relative", paths.GetReportPath("./out/s2.csv"), filepath.Join("out", "s2.csv")},
		{"absolute", paths.GetReportPath(filepath.Join(base, "x.csv")), filepath.Join(base, "x.csv")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestFileExists(t *testing.T) {
	file := filepath.Join(t.TempDir(), "a.txt")
	assert.False(t, FileExists(file))
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	assert.True(t, FileExists(file))
}
