package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/samber/lo"

	"pivotcli/internal/app"
	"pivotcli/internal/config"
	"pivotcli/internal/table"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	in := fs.String("in", "", "input table (default: "+config.TranslatedSalesFile+" in the reports directory)")
	out := fs.String("out", "s3.csv", "output table, relative to the reports directory")
	var where, exclude app.StringList
	fs.Var(&where, "where", "keep rows where column=v1|v2 (repeatable)")
	fs.Var(&exclude, "exclude", "drop rows where column=v1|v2 (repeatable)")
	columns := fs.String("columns", "产品线,总计,支付方式,毛利率百分比", "comma separated columns to keep (empty keeps all)")
	counts := fs.String("counts", "产品线,支付方式", "comma separated columns to print value counts for")
	describe := fs.String("describe", "毛利率百分比", "comma separated numeric columns to describe")
	head := fs.Int("head", 5, "rows to preview")

	return app.Main(fs, args, stdout, stderr, func(ctx context.Context, a *app.Application) error {
		input := *in
		if input == "" {
			input = a.Paths.GetReportPath(config.TranslatedSalesFile)
		}
		if len(where) == 0 && len(exclude) == 0 {
			where = app.StringList{"性别=女"}
		}

		var conds []table.Condition
		for _, s := range where {
			c, err := app.ParseCondition(s, false)
			if err != nil {
				return err
			}
			conds = append(conds, c)
		}
		for _, s := range exclude {
			c, err := app.ParseCondition(s, true)
			if err != nil {
				return err
			}
			conds = append(conds, c)
		}

		profiled := lo.Uniq(append(app.SplitList(*counts), app.SplitList(*describe)...))
		job := config.JobSpec{
			Name:    "extract",
			Input:   config.InputSpec{Path: input},
			Filter:  &config.FilterSpec{Conditions: conds, Columns: app.SplitList(*columns)},
			Profile: &config.ProfileSpec{Columns: profiled},
			Outputs: []config.OutputSpec{{Path: *out, Source: config.ResultTable}},
		}
		state, err := a.RunJob(ctx, job)
		if err != nil {
			return err
		}

		t, _ := state.Result(config.ResultTable)
		fmt.Fprintf(a.Stdout, "extracted %d rows, columns %v\n\n", t.Len(), t.Columns())
		if err := app.PrintTable(a.Stdout, t, *head); err != nil {
			return err
		}
		fmt.Fprintln(a.Stdout)
		if err := app.PrintProfile(a.Stdout, state.Profile()); err != nil {
			return err
		}
		fmt.Fprintln(a.Stdout)
		app.PrintArtifacts(a.Stdout, state)
		return nil
	})
}
