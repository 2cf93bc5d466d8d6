package config

// Application constants
const (
	// Application Info
	AppName = "pivotcli"

	// Directories (relative to the base directory)
	DefaultDataDir    = "data"
	DefaultReportsDir = "reports"
	DefaultChartsDir  = "charts"
	DefaultLogsDir    = "logs"

	// Report defaults
	DefaultPrecision   = 2
	DefaultMarginLabel = "All"
	DefaultSeparator   = "_"
	DefaultChartWidth  = 1500
	DefaultChartHeight = 1000

	// Default log level
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Well-known file names
	DefaultJobFile      = "jobs.yaml"
	DefaultMetricsFile  = "pivotcli.prom"
	DefaultTraceFile    = "traces.jsonl"
	TranslatedSalesFile = "s2.csv"
)
