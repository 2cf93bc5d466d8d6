package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"pivotcli/internal/app"
	"pivotcli/internal/config"
	apperrors "pivotcli/internal/errors"
	"pivotcli/internal/files"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	in := fs.String("in", "s1.csv", "input table, relative to the data directory, or \"latest\"")
	sheet := fs.String("sheet", "", "worksheet of an xlsx input")
	encoding := fs.String("encoding", "", "input text encoding, e.g. gbk (default: report.encoding)")
	columns := fs.String("columns", "", "comma separated columns to count or describe")
	out := fs.String("out", "", "also write the profile as YAML, relative to the reports directory")
	head := fs.Int("head", 5, "rows to preview (0 disables)")
	list := fs.Bool("list", false, "list the tables in the data and reports directories and exit")

	return app.Main(fs, args, stdout, stderr, func(ctx context.Context, a *app.Application) error {
		discovery := files.NewDiscovery(a.Paths.BaseDir)
		if *list {
			for _, dir := range []string{a.Paths.DataDir, a.Paths.ReportsDir} {
				tables, err := discovery.FindTables(dir)
				if err != nil {
					return err
				}
				for _, f := range tables {
					fmt.Fprintf(a.Stdout, "%s\t%s\t%d\t%s\n", f.Path, f.Format, f.Size, f.ModTime.Format(time.DateTime))
				}
			}
			return nil
		}

		input := *in
		if input == "latest" {
			tables, err := discovery.FindTables(a.Paths.DataDir)
			if err != nil {
				return err
			}
			latest, ok := files.GetLatestFile(tables)
			if !ok {
				return apperrors.NewEmptyInputError("no tables in " + a.Paths.DataDir)
			}
			input = latest.Path
		}

		state, err := a.RunJob(ctx, config.JobSpec{
			Name:    "profile",
			Input:   config.InputSpec{Path: input, Sheet: *sheet, Encoding: *encoding},
			Profile: &config.ProfileSpec{Columns: app.SplitList(*columns), Path: *out},
		})
		if err != nil {
			return err
		}
		if *head > 0 {
			t, _ := state.Result(config.ResultTable)
			if err := app.PrintTable(a.Stdout, t.Head(*head), 0); err != nil {
				return err
			}
			io.WriteString(a.Stdout, "\n")
		}
		if err := app.PrintProfile(a.Stdout, state.Profile()); err != nil {
			return err
		}
		app.PrintArtifacts(a.Stdout, state)
		return nil
	})
}
