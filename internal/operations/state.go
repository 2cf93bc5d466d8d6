package operations

import (
	"sync"
	"time"

	"pivotcli/internal/config"
	"pivotcli/internal/dataprocessing"
	"pivotcli/internal/table"
)

// OperationStatus represents the overall status of a job run
type OperationStatus string

const (
	OperationStatusPending   OperationStatus = "pending"
	OperationStatusRunning   OperationStatus = "running"
	OperationStatusCompleted OperationStatus = "completed"
	OperationStatusFailed    OperationStatus = "failed"
	OperationStatusCancelled OperationStatus = "cancelled"
)

// Artifact is a file a job wrote.
type Artifact struct {
	Kind   string `json:"kind"`
	Path   string `json:"path"`
	Source string `json:"source,omitempty"`
}

// Artifact kinds.
const (
	ArtifactReport  = "report"
	ArtifactChart   = "chart"
	ArtifactProfile = "profile"
)

// OperationState carries one job run: the working table, the named results
// produced so far, the files written and the state of every step.
type OperationState struct {
	mu sync.RWMutex

	ID        string          `json:"id"`
	Job       string          `json:"job"`
	Status    OperationStatus `json:"status"`
	StartTime time.Time       `json:"start_time"`
	EndTime   *time.Time      `json:"end_time,omitempty"`
	Error     error           `json:"error,omitempty"`

	steps     map[string]*StepState
	order     []string
	table     *table.Table
	results   map[string]*table.Table
	last      string
	artifacts []Artifact
	profile   *dataprocessing.TableProfile
}

// NewOperationState creates a new operation state
func NewOperationState(id, job string) *OperationState {
	return &OperationState{
		ID:        id,
		Job:       job,
		Status:    OperationStatusPending,
		StartTime: time.Now(),
		steps:     make(map[string]*StepState),
		results:   make(map[string]*table.Table),
	}
}

// Start marks the operation as running
func (p *OperationState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
}

// Complete marks the operation as completed
func (p *OperationState) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCompleted
}

// Fail marks the operation as failed
func (p *OperationState) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusFailed
	p.Error = err
}

// Cancel marks the operation as cancelled
func (p *OperationState) Cancel(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCancelled
	p.Error = err
}

// GetStep returns the state of a specific Step
func (p *OperationState) GetStep(stepID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.steps[stepID]
}

// SetStep registers the state of a Step, keeping registration order
func (p *OperationState) SetStep(stepID string, state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.steps[stepID]; !ok {
		p.order = append(p.order, stepID)
	}
	p.steps[stepID] = state
}

// Steps returns the step states in execution order
func (p *OperationState) Steps() []*StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*StepState, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.steps[id])
	}
	return out
}

// HasFailures returns true if any Step has failed
func (p *OperationState) HasFailures() bool {
	for _, s := range p.Steps() {
		if s.GetStatus() == StepStatusFailed {
			return true
		}
	}
	return false
}

// Table returns the working table, nil before the input is loaded.
func (p *OperationState) Table() *table.Table {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.table
}

// SetTable replaces the working table.
func (p *OperationState) SetTable(t *table.Table) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.table = t
}

// SetResult stores an aggregation result under name and makes it the
// latest result.
func (p *OperationState) SetResult(name string, t *table.Table) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results[name] = t
	p.last = name
}

// Result looks up a named result. "table" is the working table and the
// empty name is the latest result, or the working table when there is none.
func (p *OperationState) Result(name string) (*table.Table, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if name == "" {
		name = p.last
	}
	if name == "" || name == config.ResultTable {
		return p.table, p.table != nil
	}
	t, ok := p.results[name]
	return t, ok
}

// AddArtifact records a written file.
func (p *OperationState) AddArtifact(a Artifact) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.artifacts = append(p.artifacts, a)
}

// Artifacts returns the files written so far, in order.
func (p *OperationState) Artifacts() []Artifact {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Artifact(nil), p.artifacts...)
}

// SetProfile stores the data profile of the working table.
func (p *OperationState) SetProfile(profile *dataprocessing.TableProfile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profile = profile
}

// Profile returns the data profile, nil unless a profile step ran.
func (p *OperationState) Profile() *dataprocessing.TableProfile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.profile
}

// Duration returns the duration of the operation execution
func (p *OperationState) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.EndTime != nil {
		return p.EndTime.Sub(p.StartTime)
	}
	return time.Since(p.StartTime)
}
