// Package shared holds helpers used by more than one package.
//
// The testutil subpackage captures slog output so tests can assert on
// what a job logged:
//
//	logger, logs := testutil.NewTestLogger(t)
//	runner := operations.NewRunner(report, paths, nil, logger)
//	...
//	testutil.AssertLogged(t, logs, slog.LevelInfo, "stage_complete", "step", "group")
package shared
