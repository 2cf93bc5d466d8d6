package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"pivotcli/internal/app"
	"pivotcli/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	in := fs.String("in", "s1.csv", "input table (.csv or .xlsx), relative to the data directory")
	out := fs.String("out", config.TranslatedSalesFile, "output table, relative to the reports directory")
	dict := fs.String("dict", "", "YAML dictionary, relative to the data directory (default: built-in sales dictionary)")
	inverse := fs.Bool("inverse", false, "apply the dictionary in reverse")
	encoding := fs.String("encoding", "", "input text encoding, e.g. gbk (default: report.encoding)")

	return app.Main(fs, args, stdout, stderr, func(ctx context.Context, a *app.Application) error {
		spec := config.TranslateSpec{Builtin: "sales", Inverse: *inverse}
		if *dict != "" {
			spec = config.TranslateSpec{File: *dict, Inverse: *inverse}
		}
		job := config.JobSpec{
			Name:      "translate",
			Input:     config.InputSpec{Path: *in, Encoding: *encoding},
			Translate: &spec,
			Outputs:   []config.OutputSpec{{Path: *out, Source: config.ResultTable}},
		}
		state, err := a.RunJob(ctx, job)
		if err != nil {
			return err
		}
		t, _ := state.Result(config.ResultTable)
		fmt.Fprintf(a.Stdout, "translated %d rows, %d columns\n", t.Len(), t.Width())
		app.PrintArtifacts(a.Stdout, state)
		return nil
	})
}
