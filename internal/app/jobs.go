package app

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"pivotcli/internal/config"
	"pivotcli/internal/dataprocessing"
	"pivotcli/internal/operations"
	"pivotcli/internal/table"
)

// NewRunner returns an operations runner wired to the application's
// report defaults, directories, telemetry and logger.
func (a *Application) NewRunner() *operations.Runner {
	return operations.NewRunner(a.Config.Report, a.Paths, a.Telemetry, a.Logger)
}

// RunJob validates job and runs it.
func (a *Application) RunJob(ctx context.Context, job config.JobSpec) (*operations.OperationState, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return a.NewRunner().Run(ctx, job)
}

// PrintArtifacts lists the files a run wrote, one per line.
func PrintArtifacts(w io.Writer, state *operations.OperationState) {
	for _, art := range state.Artifacts() {
		fmt.Fprintf(w, "%s\t%s\n", art.Kind, art.Path)
	}
}

// PrintTable writes up to limit rows of t as aligned columns. A limit of
// zero or less prints every row.
func PrintTable(w io.Writer, t *table.Table, limit int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns(), "\t"))
	shown := t
	if limit > 0 && t.Len() > limit {
		shown = t.Head(limit)
	}
	for _, rec := range shown.Records() {
		fmt.Fprintln(tw, strings.Join(rec, "\t"))
	}
	if shown.Len() < t.Len() {
		fmt.Fprintf(tw, "... %d more rows\n", t.Len()-shown.Len())
	}
	return tw.Flush()
}

// PrintProfile writes the table shape followed by the value counts or
// description of each profiled column.
func PrintProfile(w io.Writer, p *dataprocessing.TableProfile) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "rows\t%d\n", p.Summary.Rows)
	fmt.Fprintf(tw, "columns\t%d\n", p.Summary.Columns)
	fmt.Fprintf(tw, "memory\t%d bytes\n", p.Summary.MemoryBytes)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "column\tkind\tmissing")
	for _, name := range p.Summary.ColumnNames {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", name, p.Summary.Kinds[name], p.Summary.Missing[name])
	}

	for _, c := range p.Columns {
		fmt.Fprintf(tw, "\n%s (%s)\n", c.Name, c.Kind)
		switch {
		case c.Describe != nil:
			d := c.Describe
			fmt.Fprintf(tw, "  count\t%d\n", d.Count)
			for _, row := range []struct {
				label string
				value float64
			}{
				{"mean", d.Mean}, {"std", d.Std}, {"min", d.Min},
				{"25%", d.Q25}, {"50%", d.Q50}, {"75%", d.Q75}, {"max", d.Max},
			} {
				fmt.Fprintf(tw, "  %s\t%s\n", row.label, strconv.FormatFloat(row.value, 'f', 6, 64))
			}
		default:
			for _, e := range c.Counts {
				fmt.Fprintf(tw, "  %s\t%d\n", e.Value, e.Count)
			}
		}
	}
	return tw.Flush()
}
