package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. PIVOT_LOGGING_LEVEL.
const EnvPrefix = "PIVOT"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/pivotcli.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// PathsConfig contains file system paths configuration. Relative
// directories are resolved against BaseDir.
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir" envconfig:"BASE_DIR" default:"."`
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"reports"`
	ChartsDir  string `yaml:"charts_dir" envconfig:"CHARTS_DIR" default:"charts"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// ReportConfig holds the defaults applied to every aggregation and export.
type ReportConfig struct {
	Precision   int    `yaml:"precision" envconfig:"PRECISION" default:"2" validate:"min=-1,max=12"`
	MarginLabel string `yaml:"margin_label" envconfig:"MARGIN_LABEL" default:"All" validate:"required"`
	Separator   string `yaml:"separator" envconfig:"SEPARATOR" default:"_" validate:"required"`
	KeyOrder    string `yaml:"key_order" envconfig:"KEY_ORDER" default:"sorted" validate:"oneof=sorted first_seen"`
	BOM         bool   `yaml:"bom" envconfig:"BOM" default:"true"`
	Encoding    string `yaml:"encoding" envconfig:"ENCODING"`
	FontPath    string `yaml:"font_path" envconfig:"FONT_PATH"`
	ChartWidth  int    `yaml:"chart_width" envconfig:"CHART_WIDTH" default:"1500" validate:"min=200"`
	ChartHeight int    `yaml:"chart_height" envconfig:"CHART_HEIGHT" default:"1000" validate:"min=200"`
}

// TelemetryConfig controls the OpenTelemetry trace and metric files. Empty
// file names disable the corresponding output.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" envconfig:"ENABLED" default:"false"`
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME" default:"pivotcli"`
	TraceFile   string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load loads configuration from defaults, an optional YAML file and
// environment variables, in increasing order of precedence. An empty path
// searches the usual locations.
func Load(path string) (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		fileConfig, err := loadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	// Fields missing from the file keep their defaults
	cfg := Default()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeConfigs merges file config with env config. A set environment
// variable wins over the file, which already carries the defaults.
func mergeConfigs(fileConfig, envConfig Config) Config {
	l, fl := &envConfig.Logging, fileConfig.Logging
	l.Level = pick("LOGGING_LEVEL", l.Level, fl.Level)
	l.Format = pick("LOGGING_FORMAT", l.Format, fl.Format)
	l.Output = pick("LOGGING_OUTPUT", l.Output, fl.Output)
	l.FilePath = pick("LOGGING_FILE_PATH", l.FilePath, fl.FilePath)
	l.Development = pick("LOGGING_DEVELOPMENT", l.Development, fl.Development)

	p, fp := &envConfig.Paths, fileConfig.Paths
	p.BaseDir = pick("PATHS_BASE_DIR", p.BaseDir, fp.BaseDir)
	p.DataDir = pick("PATHS_DATA_DIR", p.DataDir, fp.DataDir)
	p.ReportsDir = pick("PATHS_REPORTS_DIR", p.ReportsDir, fp.ReportsDir)
	p.ChartsDir = pick("PATHS_CHARTS_DIR", p.ChartsDir, fp.ChartsDir)
	p.LogsDir = pick("PATHS_LOGS_DIR", p.LogsDir, fp.LogsDir)

	r, fr := &envConfig.Report, fileConfig.Report
	r.Precision = pick("REPORT_PRECISION", r.Precision, fr.Precision)
	r.MarginLabel = pick("REPORT_MARGIN_LABEL", r.MarginLabel, fr.MarginLabel)
	r.Separator = pick("REPORT_SEPARATOR", r.Separator, fr.Separator)
	r.KeyOrder = pick("REPORT_KEY_ORDER", r.KeyOrder, fr.KeyOrder)
	r.Encoding = pick("REPORT_ENCODING", r.Encoding, fr.Encoding)
	r.FontPath = pick("REPORT_FONT_PATH", r.FontPath, fr.FontPath)
	r.ChartWidth = pick("REPORT_CHART_WIDTH", r.ChartWidth, fr.ChartWidth)
	r.ChartHeight = pick("REPORT_CHART_HEIGHT", r.ChartHeight, fr.ChartHeight)
	r.BOM = pick("REPORT_BOM", r.BOM, fr.BOM)

	tc, ft := &envConfig.Telemetry, fileConfig.Telemetry
	tc.Enabled = pick("TELEMETRY_ENABLED", tc.Enabled, ft.Enabled)
	tc.ServiceName = pick("TELEMETRY_SERVICE_NAME", tc.ServiceName, ft.ServiceName)
	tc.TraceFile = pick("TELEMETRY_TRACE_FILE", tc.TraceFile, ft.TraceFile)
	tc.MetricsFile = pick("TELEMETRY_METRICS_FILE", tc.MetricsFile, ft.MetricsFile)

	return envConfig
}

func pick[T any](key string, env, file T) T {
	if _, set := os.LookupEnv(EnvPrefix + "_" + key); set {
		return env
	}
	return file
}

var validate = validator.New()

// validate validates the configuration
func (c *Config) validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Output = strings.ToLower(c.Logging.Output)
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/pivotcli.log"
	}
	if c.Report.KeyOrder == "first-seen" {
		c.Report.KeyOrder = "first_seen"
	}
	return validate.Struct(c)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"pivotcli.yaml",
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/pivotcli.log",
		},
		Paths: PathsConfig{
			BaseDir:    ".",
			DataDir:    DefaultDataDir,
			ReportsDir: DefaultReportsDir,
			ChartsDir:  DefaultChartsDir,
			LogsDir:    DefaultLogsDir,
		},
		Report: ReportConfig{
			Precision:   DefaultPrecision,
			MarginLabel: DefaultMarginLabel,
			Separator:   DefaultSeparator,
			KeyOrder:    "sorted",
			BOM:         true,
			ChartWidth:  DefaultChartWidth,
			ChartHeight: DefaultChartHeight,
		},
		Telemetry: TelemetryConfig{
			ServiceName: AppName,
		},
	}
}
