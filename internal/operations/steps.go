package operations

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"gopkg.in/yaml.v2"

	"pivotcli/internal/aggregate"
	"pivotcli/internal/chart"
	"pivotcli/internal/config"
	"pivotcli/internal/dataprocessing"
	"pivotcli/internal/exporter"
	apperrors "pivotcli/internal/errors"
	"pivotcli/internal/infrastructure"
	"pivotcli/internal/translate"
	"pivotcli/internal/validation"
)

// Step IDs
const (
	StepIDLoad       = "load"
	StepIDTranslate  = "translate"
	StepIDFilter     = "filter"
	StepIDGroup      = "group"
	StepIDPivot      = "pivot"
	StepIDMultiLevel = "multi_level"
	StepIDExport     = "export"
	StepIDChart      = "chart"
	StepIDProfile    = "profile"
)

// Env is what every step shares: resolved directories, report defaults,
// the logger and the metric instruments.
type Env struct {
	Paths   *config.Paths
	Report  config.ReportConfig
	Logger  *slog.Logger
	Metrics *infrastructure.PipelineMetrics
}

func (e *Env) jobAttrs(state *OperationState) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("job", state.Job))
}

func requireTable(state *OperationState) error {
	if state.Table() == nil {
		return apperrors.NewValidationError("no table loaded")
	}
	return nil
}

// LoadStep reads the job input into the working table
type LoadStep struct {
	BaseStep
	env  *Env
	spec config.InputSpec
}

// NewLoadStep creates a new load step
func NewLoadStep(env *Env, spec config.InputSpec) *LoadStep {
	return &LoadStep{BaseStep: NewBaseStep(StepIDLoad, "Load input"), env: env, spec: spec}
}

// Validate checks the input description
func (s *LoadStep) Validate(state *OperationState) error {
	if s.spec.Path == "" {
		return apperrors.NewValidationError("input path is required")
	}
	_, err := ParseTypes(s.spec.Types)
	return err
}

// Execute loads the input file
func (s *LoadStep) Execute(ctx context.Context, state *OperationState) error {
	types, err := ParseTypes(s.spec.Types)
	if err != nil {
		return err
	}
	encoding := s.spec.Encoding
	if encoding == "" {
		encoding = s.env.Report.Encoding
	}
	path := s.env.Paths.GetDataPath(s.spec.Path)
	t, err := dataprocessing.Load(path, dataprocessing.LoadOptions{
		Format:   s.spec.Format,
		Sheet:    s.spec.Sheet,
		Encoding: encoding,
		Types:    types,
		Logger:   s.env.Logger,
	})
	if err != nil {
		return err
	}
	state.SetTable(t)
	s.env.Metrics.RowsLoaded.Add(ctx, int64(t.Len()), s.env.jobAttrs(state))
	if ss := state.GetStep(s.ID()); ss != nil {
		ss.SetMetadata("path", path)
		ss.SetMetadata("rows", t.Len())
	}
	return nil
}

// TranslateStep renames columns and category values with a dictionary
type TranslateStep struct {
	BaseStep
	env  *Env
	spec config.TranslateSpec
}

// NewTranslateStep creates a new translate step
func NewTranslateStep(env *Env, spec config.TranslateSpec) *TranslateStep {
	return &TranslateStep{BaseStep: NewBaseStep(StepIDTranslate, "Translate"), env: env, spec: spec}
}

// Validate requires a loaded table
func (s *TranslateStep) Validate(state *OperationState) error {
	return requireTable(state)
}

func (s *TranslateStep) dictionary() (translate.Dictionary, error) {
	var (
		d   translate.Dictionary
		err error
	)
	if s.spec.Builtin == "sales" {
		d = translate.SalesDictionary()
	} else if d, err = translate.LoadDictionary(s.env.Paths.GetDataPath(s.spec.File)); err != nil {
		return translate.Dictionary{}, err
	}
	if s.spec.Inverse {
		return d.Inverse()
	}
	return d, nil
}

// Execute translates the working table
func (s *TranslateStep) Execute(ctx context.Context, state *OperationState) error {
	d, err := s.dictionary()
	if err != nil {
		return err
	}
	t, err := translate.Translate(state.Table(), d, translate.WithLogger(s.env.Logger))
	if err != nil {
		return err
	}
	state.SetTable(t)
	return nil
}

// FilterStep keeps matching rows, then the listed columns
type FilterStep struct {
	BaseStep
	env  *Env
	spec config.FilterSpec
}

// NewFilterStep creates a new filter step
func NewFilterStep(env *Env, spec config.FilterSpec) *FilterStep {
	return &FilterStep{BaseStep: NewBaseStep(StepIDFilter, "Filter rows"), env: env, spec: spec}
}

// Validate requires a loaded table
func (s *FilterStep) Validate(state *OperationState) error {
	return requireTable(state)
}

// Execute filters the working table
func (s *FilterStep) Execute(ctx context.Context, state *OperationState) error {
	before := state.Table().Len()
	t, err := state.Table().Filter(s.spec.Conditions...)
	if err != nil {
		return err
	}
	if len(s.spec.Columns) > 0 {
		if t, err = t.Select(s.spec.Columns...); err != nil {
			return err
		}
	}
	state.SetTable(t)
	s.env.Logger.InfoContext(ctx, "Filtered rows",
		slog.String("job", state.Job),
		slog.Int("before", before),
		slog.Int("after", t.Len()))
	return nil
}

// GroupStep runs a grouped aggregation over the working table
type GroupStep struct {
	BaseStep
	env  *Env
	spec config.GroupSpec
}

// NewGroupStep creates a new group step
func NewGroupStep(env *Env, spec config.GroupSpec) *GroupStep {
	return &GroupStep{BaseStep: NewBaseStep(StepIDGroup, "Group and aggregate"), env: env, spec: spec}
}

// Validate requires a loaded table
func (s *GroupStep) Validate(state *OperationState) error {
	return requireTable(state)
}

// Execute stores the result as "group"
func (s *GroupStep) Execute(ctx context.Context, state *OperationState) error {
	aggs, err := BuildAggregations(s.spec.Aggregations)
	if err != nil {
		return err
	}
	opts, err := s.env.aggregateOptions(s.spec.Margins, s.spec.FillValue, s.spec.KeyOrder)
	if err != nil {
		return err
	}
	result, err := aggregate.Aggregate(state.Table(), s.spec.Keys, aggs, opts...)
	if err != nil {
		return err
	}
	state.SetResult(config.ResultGroup, result)
	s.env.Metrics.GroupsProduced.Add(ctx, int64(result.Len()), s.env.jobAttrs(state))
	return nil
}

// PivotStep runs a pivot over the working table
type PivotStep struct {
	BaseStep
	env  *Env
	spec config.PivotSpec
}

// NewPivotStep creates a new pivot step
func NewPivotStep(env *Env, spec config.PivotSpec) *PivotStep {
	return &PivotStep{BaseStep: NewBaseStep(StepIDPivot, "Pivot"), env: env, spec: spec}
}

// Validate requires a loaded table
func (s *PivotStep) Validate(state *OperationState) error {
	return requireTable(state)
}

// Execute stores the result as "pivot"
func (s *PivotStep) Execute(ctx context.Context, state *OperationState) error {
	aggs, err := BuildAggregations(s.spec.Aggregations)
	if err != nil {
		return err
	}
	opts, err := s.env.aggregateOptions(s.spec.Margins, s.spec.FillValue, s.spec.KeyOrder)
	if err != nil {
		return err
	}
	result, err := aggregate.Pivot(state.Table(), s.spec.Rows, s.spec.Columns, aggs, opts...)
	if err != nil {
		return err
	}
	state.SetResult(config.ResultPivot, result)
	s.env.Metrics.GroupsProduced.Add(ctx, int64(result.Len()), s.env.jobAttrs(state))
	return nil
}

// MultiLevelStep aggregates by two key sets and by both together
type MultiLevelStep struct {
	BaseStep
	env  *Env
	spec config.MultiLevelSpec
}

// NewMultiLevelStep creates a new multi-level step
func NewMultiLevelStep(env *Env, spec config.MultiLevelSpec) *MultiLevelStep {
	return &MultiLevelStep{BaseStep: NewBaseStep(StepIDMultiLevel, "Multi-level aggregation"), env: env, spec: spec}
}

// Validate requires a loaded table
func (s *MultiLevelStep) Validate(state *OperationState) error {
	return requireTable(state)
}

// Execute stores "level1", "level2" and "combined"; "combined" is latest
func (s *MultiLevelStep) Execute(ctx context.Context, state *OperationState) error {
	aggs, err := BuildAggregations(s.spec.Aggregations)
	if err != nil {
		return err
	}
	opts, err := s.env.aggregateOptions(s.spec.Margins, "", "")
	if err != nil {
		return err
	}
	levels, err := aggregate.MultiLevel(state.Table(), s.spec.Level1, s.spec.Level2, aggs, opts...)
	if err != nil {
		return err
	}
	state.SetResult(config.ResultLevel1, levels.Level1)
	state.SetResult(config.ResultLevel2, levels.Level2)
	state.SetResult(config.ResultCombined, levels.Combined)
	s.env.Metrics.GroupsProduced.Add(ctx,
		int64(levels.Level1.Len()+levels.Level2.Len()+levels.Combined.Len()), s.env.jobAttrs(state))
	return nil
}

// ExportStep writes results as CSV or xlsx
type ExportStep struct {
	BaseStep
	env     *Env
	outputs []config.OutputSpec
}

// NewExportStep creates a new export step
func NewExportStep(env *Env, outputs []config.OutputSpec) *ExportStep {
	return &ExportStep{BaseStep: NewBaseStep(StepIDExport, "Export results"), env: env, outputs: outputs}
}

// Validate checks that every source exists and every format is known
func (s *ExportStep) Validate(state *OperationState) error {
	v := validation.NewFileValidator(s.env.Logger)
	for _, o := range s.outputs {
		if _, ok := state.Result(o.Source); !ok {
			return apperrors.NewValidationError(fmt.Sprintf("output %s: no %q result", o.Path, sourceName(o.Source)))
		}
		if _, err := v.DetectFormat(o.Path, o.Format); err != nil {
			return err
		}
	}
	return nil
}

// Execute writes every output under the reports directory
func (s *ExportStep) Execute(ctx context.Context, state *OperationState) error {
	v := validation.NewFileValidator(s.env.Logger)
	for _, o := range s.outputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		t, _ := state.Result(o.Source)
		path := s.env.Paths.GetReportPath(o.Path)
		if err := v.ValidateOutputFile(path); err != nil {
			return err
		}
		opts := exporter.WriteOptions{BOMPrefix: s.env.Report.BOM, Sheet: o.Sheet, Logger: s.env.Logger}
		if err := exporter.Write(t, path, o.Format, opts); err != nil {
			return err
		}
		state.AddArtifact(Artifact{Kind: ArtifactReport, Path: path, Source: sourceName(o.Source)})
		s.env.Metrics.FilesWritten.Add(ctx, 1, s.env.jobAttrs(state))
	}
	return nil
}

// ChartStep renders a dashboard PNG from a result
type ChartStep struct {
	BaseStep
	env  *Env
	spec config.ChartSpec
}

// NewChartStep creates a new chart step
func NewChartStep(env *Env, spec config.ChartSpec) *ChartStep {
	return &ChartStep{BaseStep: NewBaseStep(StepIDChart, "Render chart"), env: env, spec: spec}
}

// Validate checks that the source result exists
func (s *ChartStep) Validate(state *OperationState) error {
	if _, ok := state.Result(s.spec.Source); !ok {
		return apperrors.NewValidationError(fmt.Sprintf("chart %s: no %q result", s.spec.Path, sourceName(s.spec.Source)))
	}
	return nil
}

// Execute renders the chart under the charts directory
func (s *ChartStep) Execute(ctx context.Context, state *OperationState) error {
	t, _ := state.Result(s.spec.Source)
	d := BuildDashboard(s.spec)
	if d.LabelColumn == "" && t.Width() > 0 {
		d.LabelColumn = t.Columns()[0]
	}
	path := s.env.Paths.GetChartPath(s.spec.Path)
	err := chart.Render(t, d, path, chart.Options{
		Width:       s.env.Report.ChartWidth,
		Height:      s.env.Report.ChartHeight,
		FontPath:    s.env.Report.FontPath,
		MarginLabel: s.env.Report.MarginLabel,
		Logger:      s.env.Logger,
	})
	if err != nil {
		return err
	}
	state.AddArtifact(Artifact{Kind: ArtifactChart, Path: path, Source: sourceName(s.spec.Source)})
	s.env.Metrics.FilesWritten.Add(ctx, 1, s.env.jobAttrs(state))
	return nil
}

// ProfileStep profiles the working table and optionally writes it as YAML
type ProfileStep struct {
	BaseStep
	env  *Env
	spec config.ProfileSpec
}

// NewProfileStep creates a new profile step
func NewProfileStep(env *Env, spec config.ProfileSpec) *ProfileStep {
	return &ProfileStep{BaseStep: NewBaseStep(StepIDProfile, "Profile data"), env: env, spec: spec}
}

// Validate requires a loaded table
func (s *ProfileStep) Validate(state *OperationState) error {
	return requireTable(state)
}

// Execute builds the profile and stores it on the state
func (s *ProfileStep) Execute(ctx context.Context, state *OperationState) error {
	profile, err := dataprocessing.Profile(state.Table(), s.spec.Columns...)
	if err != nil {
		return err
	}
	state.SetProfile(profile)
	s.env.Logger.InfoContext(ctx, "Profiled table",
		slog.String("job", state.Job),
		slog.Int("rows", profile.Summary.Rows),
		slog.Int("columns", profile.Summary.Columns))

	if s.spec.Path == "" {
		return nil
	}
	data, err := yaml.Marshal(profile)
	if err != nil {
		return apperrors.NewParsingError("failed to encode profile", err)
	}
	path := s.env.Paths.GetReportPath(s.spec.Path)
	if err := validation.NewFileValidator(s.env.Logger).ValidateOutputFile(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return apperrors.NewStorageError("failed to write profile", err).WithContext("path", path)
	}
	state.AddArtifact(Artifact{Kind: ArtifactProfile, Path: path, Source: config.ResultTable})
	s.env.Metrics.FilesWritten.Add(ctx, 1, s.env.jobAttrs(state))
	return nil
}

// sourceName is the result an empty Source refers to, for messages.
func sourceName(source string) string {
	if source == "" {
		return "latest"
	}
	return source
}
