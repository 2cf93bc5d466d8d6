package app

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pivotcli/internal/infrastructure"
	"pivotcli/pkg/contracts"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "pivotcli.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestMain_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	called := false
	code := Main(flag.NewFlagSet("aggregate", flag.ContinueOnError), []string{"-version"}, &stdout, &stderr,
		func(ctx context.Context, a *Application) error {
			called = true
			return nil
		})

	assert.Equal(t, ExitOK, code)
	assert.False(t, called)
	assert.Contains(t, stdout.String(), "pivotcli aggregate v"+contracts.Version)
}

func TestMain_UnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Main(flag.NewFlagSet("chart", flag.ContinueOnError), []string{"-bogus"}, &stdout, &stderr,
		func(ctx context.Context, a *Application) error { return nil })

	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, stderr.String(), "bogus")
}

func TestMain_RunsCommand(t *testing.T) {
	t.Cleanup(infrastructure.ResetLoggerForTesting)
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "paths:\n  base_dir: "+dir+"\nlogging:\n  level: error\n")

	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	in := fs.String("in", "", "input")

	var stdout, stderr bytes.Buffer
	var got *Application
	code := Main(fs, []string{"-config", cfg, "-in", "s1.csv"}, &stdout, &stderr,
		func(ctx context.Context, a *Application) error {
			got = a
			assert.NotEmpty(t, infrastructure.GetTraceID(ctx))
			return nil
		})

	require.Equal(t, ExitOK, code, stderr.String())
	require.NotNil(t, got)
	assert.Equal(t, "s1.csv", *in)
	assert.Equal(t, "profile", got.Tool)
	assert.Equal(t, dir, got.Paths.BaseDir)
	assert.DirExists(t, got.Paths.DataDir)
	assert.DirExists(t, got.Paths.ReportsDir)
	assert.Same(t, &stdout, got.Stdout)
}

func TestMain_CommandError(t *testing.T) {
	t.Cleanup(infrastructure.ResetLoggerForTesting)
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "paths:\n  base_dir: "+dir+"\n")

	var stdout, stderr bytes.Buffer
	code := Main(flag.NewFlagSet("report", flag.ContinueOnError), []string{"-config", cfg}, &stdout, &stderr,
		func(ctx context.Context, a *Application) error { return errors.New("job failed") })

	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr.String(), "report: job failed")
}

func TestMain_BadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "report:\n  key_order: random\n")

	var stdout, stderr bytes.Buffer
	code := Main(flag.NewFlagSet("extract", flag.ContinueOnError), []string{"-config", cfg}, &stdout, &stderr,
		func(ctx context.Context, a *Application) error { return nil })

	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr.String(), "failed to load configuration")
}

func TestNewApplication_TelemetryFilesUnderLogs(t *testing.T) {
	t.Cleanup(infrastructure.ResetLoggerForTesting)
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "paths:\n  base_dir: "+dir+"\n"+
		"telemetry:\n  enabled: true\n  metrics_file: pivot.prom\n")

	a, err := NewApplication("report", cfg, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "logs", "pivot.prom"), a.Config.Telemetry.MetricsFile)

	require.NoError(t, a.Run(func(ctx context.Context) error { return nil }))
	assert.FileExists(t, a.Config.Telemetry.MetricsFile)
}
