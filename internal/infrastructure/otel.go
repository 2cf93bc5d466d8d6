package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"pivotcli/internal/config"
	"pivotcli/pkg/contracts"
)

// InstrumentationName identifies the tracer and meter of this module.
const InstrumentationName = "pivotcli"

// Telemetry bundles the tracer and meter of one process. With telemetry
// disabled both are no-ops, so callers never check for nil.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *prom.Registry
	Metrics        *PipelineMetrics

	metricsFile string
	traceOut    io.Closer
	logger      *slog.Logger
}

// PipelineMetrics are the instruments recorded by the report pipeline.
type PipelineMetrics struct {
	JobsTotal      metric.Int64Counter
	JobDuration    metric.Float64Histogram
	StepsTotal     metric.Int64Counter
	StepDuration   metric.Float64Histogram
	StepErrors     metric.Int64Counter
	RowsLoaded     metric.Int64Counter
	GroupsProduced metric.Int64Counter
	FilesWritten   metric.Int64Counter
}

// NewNoopTelemetry returns telemetry that records nothing.
func NewNoopTelemetry() *Telemetry {
	meter := metricnoop.NewMeterProvider().Meter(InstrumentationName)
	metrics, _ := CreatePipelineMetrics(meter)
	return &Telemetry{
		Tracer:  tracenoop.NewTracerProvider().Tracer(InstrumentationName),
		Meter:   meter,
		Metrics: metrics,
		logger:  slog.Default(),
	}
}

// InitializeTelemetry sets up tracing and metrics from configuration. Spans
// are written as JSON to TraceFile (discarded when empty); metrics are kept
// in a private Prometheus registry and written to MetricsFile on Shutdown.
func InitializeTelemetry(cfg config.TelemetryConfig, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Enabled {
		t := NewNoopTelemetry()
		t.logger = logger
		return t, nil
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(contracts.Version),
		attribute.String("service.instance.id", generateInstanceID()),
	)

	t := &Telemetry{metricsFile: cfg.MetricsFile, logger: logger}

	var out io.Writer = io.Discard
	if cfg.TraceFile != "" {
		file, err := openLogFile(cfg.TraceFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open trace file: %w", err)
		}
		t.traceOut = file
		out = file
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(out))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	t.TracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	t.Tracer = t.TracerProvider.Tracer(InstrumentationName, trace.WithInstrumentationVersion(contracts.Version))

	t.Registry = prom.NewRegistry()
	reader, err := otelprom.New(otelprom.WithRegisterer(t.Registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	t.MeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	t.Meter = t.MeterProvider.Meter(InstrumentationName, metric.WithInstrumentationVersion(contracts.Version))

	if t.Metrics, err = CreatePipelineMetrics(t.Meter); err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	logger.Info("Telemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("trace_file", cfg.TraceFile),
		slog.String("metrics_file", cfg.MetricsFile))
	return t, nil
}

// CreatePipelineMetrics creates the pipeline instruments on meter.
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	var (
		m   PipelineMetrics
		err error
	)
	if m.JobsTotal, err = meter.Int64Counter("pivot_jobs",
		metric.WithDescription("Report jobs executed")); err != nil {
		return nil, err
	}
	if m.JobDuration, err = meter.Float64Histogram("pivot_job_duration",
		metric.WithDescription("Report job duration"), metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.StepsTotal, err = meter.Int64Counter("pivot_steps",
		metric.WithDescription("Pipeline steps executed")); err != nil {
		return nil, err
	}
	if m.StepDuration, err = meter.Float64Histogram("pivot_step_duration",
		metric.WithDescription("Pipeline step duration"), metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.StepErrors, err = meter.Int64Counter("pivot_step_errors",
		metric.WithDescription("Pipeline steps that failed")); err != nil {
		return nil, err
	}
	if m.RowsLoaded, err = meter.Int64Counter("pivot_rows_loaded",
		metric.WithDescription("Rows read from input files")); err != nil {
		return nil, err
	}
	if m.GroupsProduced, err = meter.Int64Counter("pivot_groups_produced",
		metric.WithDescription("Result rows produced by aggregations")); err != nil {
		return nil, err
	}
	if m.FilesWritten, err = meter.Int64Counter("pivot_files_written",
		metric.WithDescription("Report, chart and profile files written")); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordStep records one finished pipeline step.
func (m *PipelineMetrics) RecordStep(ctx context.Context, job, step string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("job", job),
		attribute.String("step", step),
	)
	m.StepsTotal.Add(ctx, 1, attrs)
	m.StepDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		m.StepErrors.Add(ctx, 1, attrs)
	}
}

// RecordJob records one finished job.
func (m *PipelineMetrics) RecordJob(ctx context.Context, job string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("job", job),
		attribute.String("status", status),
	)
	m.JobsTotal.Add(ctx, 1, attrs)
	m.JobDuration.Record(ctx, duration.Seconds(), attrs)
}

// WriteMetrics writes the registry in the Prometheus text format to the
// configured metrics file. It does nothing without a file or registry.
func (t *Telemetry) WriteMetrics() error {
	if t.metricsFile == "" || t.Registry == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(t.metricsFile), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prom.WriteToTextfile(t.metricsFile, t.Registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}

// Shutdown flushes metrics and spans and releases the trace file.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if err := t.WriteMetrics(); err != nil {
		errs = append(errs, err)
	}
	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if t.MeterProvider != nil {
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	if t.traceOut != nil {
		if err := t.traceOut.Close(); err != nil {
			errs = append(errs, fmt.Errorf("trace file close: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	t.logger.Debug("Telemetry shutdown complete")
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
