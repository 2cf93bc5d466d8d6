// Package operations runs report jobs as a sequence of steps.
//
// A job (config.JobSpec) becomes a Registry of steps in a fixed order:
//
//	load -> translate -> filter -> profile -> group -> pivot -> multi_level -> export -> chart
//
// Steps the job does not describe are left out. Every step reads and writes
// a shared OperationState: the working table, named results ("group",
// "pivot", "level1", "level2", "combined") and the files written.
//
// Runner executes the steps in order. Each step is validated against the
// state, traced with its own span and timed into the pipeline metrics. The
// first failure stops the job; the returned OperationError names the job
// and step and wraps the cause, so errors.Is works with the application
// error sentinels:
//
//	runner := operations.NewRunner(cfg.Report, paths, telemetry, logger)
//	states, err := runner.RunAll(ctx, jobFile)
//	if errors.Is(err, apperrors.ErrSchema) {
//		// a job named a column the input does not have
//	}
package operations
