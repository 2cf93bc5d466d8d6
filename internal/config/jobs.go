package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	apperrors "pivotcli/internal/errors"
	"pivotcli/internal/table"
)

// Result names a job produces. Outputs and charts pick one with Source.
const (
	ResultTable    = "table"
	ResultGroup    = "group"
	ResultPivot    = "pivot"
	ResultLevel1   = "level1"
	ResultLevel2   = "level2"
	ResultCombined = "combined"
)

// JobFile is the top level of a report job file.
type JobFile struct {
	Jobs []JobSpec `yaml:"jobs" validate:"required,min=1,dive"`
}

// JobSpec describes one report: load, optionally translate and filter, then
// aggregate and write the results.
type JobSpec struct {
	Name       string          `yaml:"name" validate:"required"`
	Input      InputSpec       `yaml:"input"`
	Translate  *TranslateSpec  `yaml:"translate,omitempty"`
	Filter     *FilterSpec     `yaml:"filter,omitempty"`
	Group      *GroupSpec      `yaml:"group,omitempty"`
	Pivot      *PivotSpec      `yaml:"pivot,omitempty"`
	MultiLevel *MultiLevelSpec `yaml:"multi_level,omitempty"`
	Outputs    []OutputSpec    `yaml:"outputs" validate:"dive"`
	Chart      *ChartSpec      `yaml:"chart,omitempty"`
	Profile    *ProfileSpec    `yaml:"profile,omitempty"`
}

// InputSpec locates the source table. Types maps column names to
// int, float or text.
type InputSpec struct {
	Path     string            `yaml:"path" validate:"required"`
	Format   string            `yaml:"format" validate:"omitempty,oneof=csv xlsx"`
	Sheet    string            `yaml:"sheet"`
	Encoding string            `yaml:"encoding"`
	Types    map[string]string `yaml:"types" validate:"dive,oneof=int integer float number text string category categorical"`
}

// TranslateSpec selects a dictionary: the built-in one or a YAML file.
type TranslateSpec struct {
	Builtin string `yaml:"builtin" validate:"omitempty,oneof=sales"`
	File    string `yaml:"file" validate:"required_without=Builtin"`
	Inverse bool   `yaml:"inverse"`
}

// FilterSpec keeps the rows matching every condition, then the listed
// columns.
type FilterSpec struct {
	Conditions []table.Condition `yaml:"conditions" validate:"dive"`
	Columns    []string          `yaml:"columns" validate:"dive,required"`
}

// AggregationSpec applies each reducer to Column. As renames the output
// column and is only allowed with a single reducer.
type AggregationSpec struct {
	Column   string   `yaml:"column" validate:"required"`
	Reducers []string `yaml:"reducers" validate:"required,min=1,dive,oneof=sum mean count min max avg average"`
	As       string   `yaml:"as"`
}

// GroupSpec is a grouped aggregation.
type GroupSpec struct {
	Keys         []string          `yaml:"keys" validate:"required,min=1,dive,required"`
	Aggregations []AggregationSpec `yaml:"aggregations" validate:"required,min=1,dive"`
	Margins      bool              `yaml:"margins"`
	FillValue    string            `yaml:"fill_value"`
	KeyOrder     string            `yaml:"key_order" validate:"omitempty,oneof=sorted first_seen"`
}

// PivotSpec is a two-dimensional aggregation.
type PivotSpec struct {
	Rows         []string          `yaml:"rows" validate:"required,min=1,dive,required"`
	Columns      []string          `yaml:"columns" validate:"required,min=1,dive,required"`
	Aggregations []AggregationSpec `yaml:"aggregations" validate:"required,min=1,dive"`
	Margins      bool              `yaml:"margins"`
	FillValue    string            `yaml:"fill_value"`
	KeyOrder     string            `yaml:"key_order" validate:"omitempty,oneof=sorted first_seen"`
}

// MultiLevelSpec aggregates by two key sets and by their concatenation.
type MultiLevelSpec struct {
	Level1       []string          `yaml:"level1" validate:"required,min=1,dive,required"`
	Level2       []string          `yaml:"level2" validate:"required,min=1,dive,required"`
	Aggregations []AggregationSpec `yaml:"aggregations" validate:"required,min=1,dive"`
	Margins      bool              `yaml:"margins"`
}

// OutputSpec writes one result. Source defaults to the last result the job
// produced.
type OutputSpec struct {
	Path   string `yaml:"path" validate:"required"`
	Format string `yaml:"format" validate:"omitempty,oneof=csv xlsx"`
	Source string `yaml:"source" validate:"omitempty,oneof=table group pivot level1 level2 combined"`
	Sheet  string `yaml:"sheet"`
}

// ChartSpec renders a dashboard PNG from a result. Builtin "sales" uses the
// product line dashboard; otherwise Panels must be given.
type ChartSpec struct {
	Path        string      `yaml:"path" validate:"required"`
	Title       string      `yaml:"title"`
	LabelColumn string      `yaml:"label_column"`
	Source      string      `yaml:"source" validate:"omitempty,oneof=table group pivot level1 level2 combined"`
	Builtin     string      `yaml:"builtin" validate:"omitempty,oneof=sales"`
	Panels      []PanelSpec `yaml:"panels" validate:"required_without=Builtin,dive"`
}

// PanelSpec is one chart of a dashboard.
type PanelSpec struct {
	Kind    string   `yaml:"kind" validate:"required,oneof=line bar grouped_bar"`
	Columns []string `yaml:"columns" validate:"required,min=1,dive,required"`
	Title   string   `yaml:"title"`
	YLabel  string   `yaml:"y_label"`
}

// ProfileSpec summarizes the working table. Columns get value counts (text)
// or descriptive statistics (numbers). Path, when set, receives the profile
// as YAML.
type ProfileSpec struct {
	Columns []string `yaml:"columns" validate:"dive,required"`
	Path    string   `yaml:"path"`
}

// LoadJobFile reads and validates a YAML job file.
func LoadJobFile(path string) (*JobFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewFileNotFoundError(path)
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read job file %s", path), err)
	}
	var jf JobFile
	if err := yaml.UnmarshalStrict(data, &jf); err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("invalid job file %s", path), err)
	}
	if err := jf.Validate(); err != nil {
		return nil, err
	}
	return &jf, nil
}

// Validate checks struct constraints and the rules spanning fields.
func (jf *JobFile) Validate() error {
	if err := validate.Struct(jf); err != nil {
		return apperrors.NewValidationError(describeValidation(err)).WithContext("cause", err.Error())
	}
	seen := make(map[string]bool, len(jf.Jobs))
	for i := range jf.Jobs {
		job := &jf.Jobs[i]
		if seen[job.Name] {
			return apperrors.NewValidationError(fmt.Sprintf("duplicate job name %q", job.Name))
		}
		seen[job.Name] = true
		if err := job.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks one job beyond its struct tags.
func (j *JobSpec) Validate() error {
	if err := validate.Struct(j); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("job %q: %s", j.Name, describeValidation(err)))
	}
	var aggs []AggregationSpec
	if j.Group != nil {
		aggs = append(aggs, j.Group.Aggregations...)
	}
	if j.Pivot != nil {
		aggs = append(aggs, j.Pivot.Aggregations...)
	}
	if j.MultiLevel != nil {
		aggs = append(aggs, j.MultiLevel.Aggregations...)
	}
	for _, a := range aggs {
		if a.As != "" && len(a.Reducers) > 1 {
			return apperrors.NewValidationError(
				fmt.Sprintf("job %q: alias %q on column %q needs exactly one reducer", j.Name, a.As, a.Column))
		}
	}
	if len(j.Outputs) == 0 && j.Chart == nil && j.Profile == nil {
		return apperrors.NewValidationError(fmt.Sprintf("job %q produces nothing: add outputs, a chart or a profile", j.Name))
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
