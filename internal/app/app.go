package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"pivotcli/internal/config"
	"pivotcli/internal/infrastructure"
	"pivotcli/pkg/contracts"
)

// ShutdownTimeout bounds the final telemetry flush.
const ShutdownTimeout = 10 * time.Second

// Exit codes returned by Main.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Application holds what every command needs once configuration is loaded
type Application struct {
	Tool      string
	Config    *config.Config
	Paths     *config.Paths
	Logger    *slog.Logger
	Telemetry *infrastructure.Telemetry
	Stdout    io.Writer
}

// CommonFlags are registered by every command.
type CommonFlags struct {
	ConfigPath  string
	ShowVersion bool
}

// RegisterFlags adds -config and -version to fs.
func RegisterFlags(fs *flag.FlagSet) *CommonFlags {
	c := &CommonFlags{}
	fs.StringVar(&c.ConfigPath, "config", "", "YAML configuration file (environment variables prefixed PIVOT_ override it)")
	fs.BoolVar(&c.ShowVersion, "version", false, "print version information and exit")
	return c
}

// NewApplication loads configuration, resolves directories and starts
// logging and telemetry for one command.
func NewApplication(tool, configPath string, stdout io.Writer) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	if cfg.Logging.FilePath != "" && !filepath.IsAbs(cfg.Logging.FilePath) {
		cfg.Logging.FilePath = filepath.Join(paths.BaseDir, cfg.Logging.FilePath)
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = infrastructure.WithComponent(logger, tool)

	if cfg.Telemetry.TraceFile != "" {
		cfg.Telemetry.TraceFile = paths.GetLogPath(cfg.Telemetry.TraceFile)
	}
	if cfg.Telemetry.MetricsFile != "" {
		cfg.Telemetry.MetricsFile = paths.GetLogPath(cfg.Telemetry.MetricsFile)
	}
	tel, err := infrastructure.InitializeTelemetry(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	logger.Debug("Application starting",
		slog.String("tool", tool),
		slog.String("version", contracts.Version),
		slog.String("config", configPath))
	paths.LogPathResolution()

	return &Application{
		Tool:      tool,
		Config:    cfg,
		Paths:     paths,
		Logger:    logger,
		Telemetry: tel,
		Stdout:    stdout,
	}, nil
}

// Run calls fn with a context carrying a trace ID that is cancelled on
// SIGINT or SIGTERM, then flushes telemetry and closes the log file.
func (a *Application) Run(fn func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.EnsureTraceID(ctx)

	start := time.Now()
	err := fn(ctx)
	if err != nil {
		a.Logger.ErrorContext(ctx, "Command failed",
			slog.String("tool", a.Tool),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()))
	} else {
		a.Logger.InfoContext(ctx, "Command complete",
			slog.String("tool", a.Tool),
			slog.Duration("duration", time.Since(start)))
	}
	return errors.Join(err, a.Stop())
}

// Stop flushes telemetry and closes the log file.
func (a *Application) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	var errs []error
	if a.Telemetry != nil {
		if err := a.Telemetry.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
		}
	}
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, fmt.Errorf("close log file: %w", err))
	}
	return errors.Join(errs...)
}

// Command is the body of a binary. It runs after flags are parsed and the
// application is initialized.
type Command func(ctx context.Context, a *Application) error

// Main parses args with fs, handles -version, builds the application and
// runs cmd. It returns the process exit code; errors go to stderr.
func Main(fs *flag.FlagSet, args []string, stdout, stderr io.Writer, cmd Command) int {
	fs.SetOutput(stderr)
	common := RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}
	if common.ShowVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString(fs.Name()))
		return ExitOK
	}

	a, err := NewApplication(fs.Name(), common.ConfigPath, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", fs.Name(), err)
		return ExitError
	}
	if err := a.Run(func(ctx context.Context) error { return cmd(ctx, a) }); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", fs.Name(), err)
		return ExitError
	}
	return ExitOK
}
