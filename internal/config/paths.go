package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	BaseDir    string
	DataDir    string
	ReportsDir string
	ChartsDir  string
	LogsDir    string
}

// GetPaths resolves the configured directories against the base directory.
// An empty base directory means the current working directory.
func GetPaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		base = "."
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %v", err)
	}

	resolve := func(dir, fallback string) string {
		if dir == "" {
			dir = fallback
		}
		if filepath.IsAbs(dir) {
			return filepath.Clean(dir)
		}
		return filepath.Join(base, dir)
	}

	return &Paths{
		BaseDir:    base,
		DataDir:    resolve(cfg.DataDir, DefaultDataDir),
		ReportsDir: resolve(cfg.ReportsDir, DefaultReportsDir),
		ChartsDir:  resolve(cfg.ChartsDir, DefaultChartsDir),
		LogsDir:    resolve(cfg.LogsDir, DefaultLogsDir),
	}, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.ReportsDir,
		p.ChartsDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
		logger.Debug("Ensured directory exists",
			slog.String("directory", dir))
	}

	return nil
}

// Resolve places a relative file name under dir. Absolute names and names
// that start with ./ or ../ are returned unchanged.
func (p *Paths) Resolve(dir, name string) string {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "."+string(filepath.Separator)) ||
		strings.HasPrefix(name, "./") || strings.HasPrefix(name, "../") ||
		strings.HasPrefix(name, ".."+string(filepath.Separator)) {
		return filepath.Clean(name)
	}
	return filepath.Join(dir, name)
}

// GetDataPath returns the path of an input file in the data directory
func (p *Paths) GetDataPath(filename string) string {
	return p.Resolve(p.DataDir, filename)
}

// GetReportPath returns the path of a report in the reports directory
func (p *Paths) GetReportPath(filename string) string {
	return p.Resolve(p.ReportsDir, filename)
}

// GetChartPath returns the path of a chart in the charts directory
func (p *Paths) GetChartPath(filename string) string {
	return p.Resolve(p.ChartsDir, filename)
}

// GetLogPath returns the path of a log file in the logs directory
func (p *Paths) GetLogPath(filename string) string {
	return p.Resolve(p.LogsDir, filename)
}

// LogPathResolution logs all resolved paths for debugging
func (p *Paths) LogPathResolution() {
	slog.Default().Debug("Path resolution",
		slog.String("base_dir", p.BaseDir),
		slog.String("data_dir", p.DataDir),
		slog.String("reports_dir", p.ReportsDir),
		slog.String("charts_dir", p.ChartsDir),
		slog.String("logs_dir", p.LogsDir))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
