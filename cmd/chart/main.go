package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"pivotcli/internal/aggregate"
	"pivotcli/internal/app"
	"pivotcli/internal/chart"
	"pivotcli/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("chart", flag.ContinueOnError)
	in := fs.String("in", "", "aggregation table (default: s4.csv in the reports directory)")
	out := fs.String("out", "销售数据可视化分析.png", "PNG file, relative to the charts directory")
	title := fs.String("title", "", "dashboard title")
	label := fs.String("label", "", "column holding the x axis labels (default: first column)")
	var panels app.StringList
	fs.Var(&panels, "panel", "kind:column[,column...][:title] with kind line, bar or grouped_bar (repeatable; default: the sales dashboard)")
	font := fs.String("font", "", "TTF font file for CJK labels (default: report.font_path)")

	return app.Main(fs, args, stdout, stderr, func(ctx context.Context, a *app.Application) error {
		input := *in
		if input == "" {
			input = a.Paths.GetReportPath("s4.csv")
		}
		if *font != "" {
			a.Config.Report.FontPath = *font
		}

		spec := config.ChartSpec{Path: *out, Title: *title, LabelColumn: *label, Source: config.ResultTable}
		if len(panels) == 0 {
			spec.Builtin = "sales"
		}
		for _, p := range panels {
			ps, err := app.ParsePanel(p)
			if err != nil {
				return err
			}
			spec.Panels = append(spec.Panels, ps)
		}

		state, err := a.RunJob(ctx, config.JobSpec{
			Name:  "chart",
			Input: config.InputSpec{Path: input},
			Chart: &spec,
		})
		if err != nil {
			return err
		}
		app.PrintArtifacts(a.Stdout, state)

		if spec.Builtin != "sales" {
			return nil
		}
		t, _ := state.Result(config.ResultTable)
		labelColumn := spec.LabelColumn
		if labelColumn == "" {
			labelColumn = chart.SalesLabelColumn
		}
		leaders, err := chart.Leaders(t, labelColumn, a.Config.Report.MarginLabel,
			chart.SalesColumn(aggregate.Mean), chart.SalesColumn(aggregate.Sum),
			chart.SalesColumn(aggregate.Count), chart.SalesColumn(aggregate.Max))
		if err != nil {
			return err
		}
		fmt.Fprintln(a.Stdout)
		for _, l := range leaders {
			fmt.Fprintf(a.Stdout, "highest %s: %s (%s)\n", l.Column, l.Label, l.Value)
		}
		return nil
	})
}
