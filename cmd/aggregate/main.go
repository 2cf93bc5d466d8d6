package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"pivotcli/internal/app"
	"pivotcli/internal/config"
	apperrors "pivotcli/internal/errors"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("aggregate", flag.ContinueOnError)
	in := fs.String("in", "", "input table (default: s3.csv in the reports directory)")
	out := fs.String("out", "s4.csv", "output table, relative to the reports directory")
	by := fs.String("by", "产品线", "comma separated group keys")
	var aggs app.StringList
	fs.Var(&aggs, "agg", "column:reducer[,reducer...][:alias] (repeatable; default 总计:mean,sum,count,max,min)")
	margins := fs.Bool("margins", false, "append an All row (and All columns when pivoting)")
	pivotRows := fs.String("pivot-rows", "", "comma separated pivot row keys; enables pivot mode")
	pivotCols := fs.String("pivot-cols", "", "comma separated pivot column keys")
	fill := fs.String("fill", "", "value for empty cells")
	firstSeen := fs.Bool("first-seen", false, "order groups by first appearance instead of sorting")
	format := fs.String("format", "", "csv or xlsx (default: from -out)")
	sheet := fs.String("sheet", "", "worksheet name for xlsx output")
	show := fs.Bool("print", true, "print the result")

	return app.Main(fs, args, stdout, stderr, func(ctx context.Context, a *app.Application) error {
		input := *in
		if input == "" {
			input = a.Paths.GetReportPath("s3.csv")
		}
		if len(aggs) == 0 {
			aggs = app.StringList{"总计:mean,sum,count,max,min"}
		}
		specs := make([]config.AggregationSpec, 0, len(aggs))
		for _, s := range aggs {
			spec, err := app.ParseAggregation(s)
			if err != nil {
				return err
			}
			specs = append(specs, spec)
		}
		keyOrder := ""
		if *firstSeen {
			keyOrder = "first_seen"
		}

		job := config.JobSpec{
			Name:    "aggregate",
			Input:   config.InputSpec{Path: input},
			Outputs: []config.OutputSpec{{Path: *out, Format: *format, Sheet: *sheet}},
		}
		switch {
		case *pivotRows != "":
			if *pivotCols == "" {
				return apperrors.NewValidationError("-pivot-rows needs -pivot-cols")
			}
			job.Pivot = &config.PivotSpec{
				Rows:         app.SplitList(*pivotRows),
				Columns:      app.SplitList(*pivotCols),
				Aggregations: specs,
				Margins:      *margins,
				FillValue:    *fill,
				KeyOrder:     keyOrder,
			}
		case *pivotCols != "":
			return apperrors.NewValidationError("-pivot-cols needs -pivot-rows")
		default:
			job.Group = &config.GroupSpec{
				Keys:         app.SplitList(*by),
				Aggregations: specs,
				Margins:      *margins,
				FillValue:    *fill,
				KeyOrder:     keyOrder,
			}
		}

		state, err := a.RunJob(ctx, job)
		if err != nil {
			return err
		}
		if *show {
			result, _ := state.Result("")
			if err := app.PrintTable(a.Stdout, result, 0); err != nil {
				return err
			}
			fmt.Fprintln(a.Stdout)
		}
		app.PrintArtifacts(a.Stdout, state)
		return nil
	})
}
