package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/samber/lo"

	"pivotcli/internal/app"
	"pivotcli/internal/config"
	apperrors "pivotcli/internal/errors"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	jobsPath := fs.String("jobs", config.DefaultJobFile, "YAML job file")
	only := fs.String("only", "", "comma separated job names to run (default: all)")
	list := fs.Bool("list", false, "list the jobs and exit")

	return app.Main(fs, args, stdout, stderr, func(ctx context.Context, a *app.Application) error {
		jobs, err := config.LoadJobFile(*jobsPath)
		if err != nil {
			return err
		}
		if *list {
			for _, j := range jobs.Jobs {
				fmt.Fprintln(a.Stdout, j.Name)
			}
			return nil
		}
		if names := app.SplitList(*only); len(names) > 0 {
			known := lo.Map(jobs.Jobs, func(j config.JobSpec, _ int) string { return j.Name })
			if missing, _ := lo.Difference(names, known); len(missing) > 0 {
				return apperrors.NewValidationError(fmt.Sprintf("unknown jobs %v in %s", missing, *jobsPath))
			}
			jobs.Jobs = lo.Filter(jobs.Jobs, func(j config.JobSpec, _ int) bool { return lo.Contains(names, j.Name) })
		}

		states, err := a.NewRunner().RunAll(ctx, jobs)
		for _, s := range states {
			fmt.Fprintf(a.Stdout, "%s\t%s\t%s\n", s.Job, s.Status, s.Duration().Round(time.Millisecond))
			app.PrintArtifacts(a.Stdout, s)
		}
		return err
	})
}
