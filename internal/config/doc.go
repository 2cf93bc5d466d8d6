// Package config provides centralized configuration management for pivotcli.
// It loads settings from multiple sources, validates them, and describes the
// report jobs run by the report command.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern PIVOT_<SECTION>_<FIELD>:
//
//	PIVOT_LOGGING_LEVEL=debug
//	PIVOT_PATHS_BASE_DIR=/srv/sales
//	PIVOT_REPORT_PRECISION=3
//	PIVOT_REPORT_BOM=false
//	PIVOT_TELEMETRY_METRICS_FILE=/var/lib/node_exporter/pivotcli.prom
//
// # Paths
//
// Paths resolves the data, reports, charts and logs directories against a
// base directory:
//
//	paths, err := config.GetPaths(cfg.Paths)
//	out := paths.GetReportPath("product_line_summary.csv")
//
// # Report Jobs
//
// LoadJobFile reads a YAML list of jobs. Each job names an input, optional
// translation and filter stages, one or more aggregations and the outputs
// to write; see JobSpec.
package config
