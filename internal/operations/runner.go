package operations

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pivotcli/internal/config"
	"pivotcli/internal/infrastructure"
)

// Runner executes report jobs one step at a time
type Runner struct {
	env    *Env
	tracer trace.Tracer
}

// NewRunner creates a runner. A nil telemetry records nothing and a nil
// logger uses slog.Default.
func NewRunner(report config.ReportConfig, paths *config.Paths, tel *infrastructure.Telemetry, logger *slog.Logger) *Runner {
	if tel == nil {
		tel = infrastructure.NewNoopTelemetry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		env: &Env{
			Paths:   paths,
			Report:  report,
			Logger:  infrastructure.WithComponent(logger, "operations"),
			Metrics: tel.Metrics,
		},
		tracer: tel.Tracer,
	}
}

// BuildSteps turns a job into its steps: load, translate, filter, profile,
// group, pivot, multi-level, export and chart, leaving out the parts the
// job does not name.
func (r *Runner) BuildSteps(job config.JobSpec) (*Registry, error) {
	reg := NewRegistry()
	steps := []Step{NewLoadStep(r.env, job.Input)}
	if job.Translate != nil {
		steps = append(steps, NewTranslateStep(r.env, *job.Translate))
	}
	if job.Filter != nil {
		steps = append(steps, NewFilterStep(r.env, *job.Filter))
	}
	if job.Profile != nil {
		steps = append(steps, NewProfileStep(r.env, *job.Profile))
	}
	if job.Group != nil {
		steps = append(steps, NewGroupStep(r.env, *job.Group))
	}
	if job.Pivot != nil {
		steps = append(steps, NewPivotStep(r.env, *job.Pivot))
	}
	if job.MultiLevel != nil {
		steps = append(steps, NewMultiLevelStep(r.env, *job.MultiLevel))
	}
	if len(job.Outputs) > 0 {
		steps = append(steps, NewExportStep(r.env, job.Outputs))
	}
	if job.Chart != nil {
		steps = append(steps, NewChartStep(r.env, *job.Chart))
	}
	for _, s := range steps {
		if err := reg.Register(s); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Run executes one job. It stops at the first failing step; the remaining
// steps are marked skipped and the error names the step.
func (r *Runner) Run(ctx context.Context, job config.JobSpec) (*OperationState, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	state := NewOperationState(infrastructure.GenerateTraceID(), job.Name)

	reg, err := r.BuildSteps(job)
	if err != nil {
		state.Fail(err)
		return state, err
	}
	steps := reg.List()
	for _, s := range steps {
		state.SetStep(s.ID(), NewStepState(s.ID(), s.Name()))
	}

	ctx, span := r.tracer.Start(ctx, "job "+job.Name, trace.WithAttributes(
		attribute.String("job", job.Name),
		attribute.String("operation.id", state.ID),
		attribute.Int("steps", len(steps)),
	))
	defer span.End()

	r.env.Logger.InfoContext(ctx, "operation_start",
		slog.String("operation_id", state.ID),
		slog.String("job", job.Name),
		slog.Any("steps", reg.ListIDs()))

	state.Start()
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			opErr := NewCancellationError(job.Name, step.ID(), err)
			r.skipRemaining(state, steps[i:], "operation cancelled")
			state.Cancel(opErr)
			return r.finish(ctx, state, opErr)
		}
		if err := r.executeStep(ctx, state, step); err != nil {
			r.skipRemaining(state, steps[i+1:], "previous step failed")
			state.Fail(err)
			return r.finish(ctx, state, err)
		}
	}
	state.Complete()
	return r.finish(ctx, state, nil)
}

// RunAll runs the jobs of a job file in order and stops at the first
// failure.
func (r *Runner) RunAll(ctx context.Context, jobs *config.JobFile) ([]*OperationState, error) {
	states := make([]*OperationState, 0, len(jobs.Jobs))
	for _, job := range jobs.Jobs {
		state, err := r.Run(ctx, job)
		states = append(states, state)
		if err != nil {
			return states, err
		}
	}
	return states, nil
}

func (r *Runner) executeStep(ctx context.Context, state *OperationState, step Step) error {
	ss := state.GetStep(step.ID())
	ctx, span := r.tracer.Start(ctx, step.ID(), trace.WithAttributes(
		attribute.String("job", state.Job),
		attribute.String("step", step.ID()),
	))
	defer span.End()

	if err := step.Validate(state); err != nil {
		opErr := NewValidationError(state.Job, step.ID(), err)
		ss.Fail(opErr)
		infrastructure.RecordError(ctx, err)
		r.env.Metrics.RecordStep(ctx, state.Job, step.ID(), 0, opErr)
		r.env.Logger.ErrorContext(ctx, "stage_invalid",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.String("error", err.Error()))
		return opErr
	}

	r.env.Logger.DebugContext(ctx, "stage_start",
		slog.String("operation_id", state.ID),
		slog.String("step", step.ID()))
	ss.Start()
	start := time.Now()
	err := step.Execute(ctx, state)
	duration := time.Since(start)

	if err != nil {
		opErr := NewExecutionError(state.Job, step.ID(), err)
		ss.Fail(opErr)
		infrastructure.RecordError(ctx, err)
		r.env.Metrics.RecordStep(ctx, state.Job, step.ID(), duration, opErr)
		r.env.Logger.ErrorContext(ctx, "stage_failed",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return opErr
	}

	ss.Complete()
	r.env.Metrics.RecordStep(ctx, state.Job, step.ID(), duration, nil)
	r.env.Logger.InfoContext(ctx, "stage_complete",
		slog.String("operation_id", state.ID),
		slog.String("step", step.ID()),
		slog.Duration("duration", duration))
	return nil
}

func (r *Runner) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, s := range steps {
		if ss := state.GetStep(s.ID()); ss != nil {
			ss.Skip(reason)
		}
	}
}

func (r *Runner) finish(ctx context.Context, state *OperationState, err error) (*OperationState, error) {
	r.env.Metrics.RecordJob(ctx, state.Job, state.Duration(), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		r.env.Logger.ErrorContext(ctx, "operation_error",
			slog.String("operation_id", state.ID),
			slog.String("job", state.Job),
			slog.String("error", err.Error()))
		return state, err
	}
	r.env.Logger.InfoContext(ctx, "operation_complete",
		slog.String("operation_id", state.ID),
		slog.String("job", state.Job),
		slog.String("status", string(state.Status)),
		slog.Int("artifacts", len(state.Artifacts())),
		slog.Duration("duration", state.Duration()))
	return state, nil
}
