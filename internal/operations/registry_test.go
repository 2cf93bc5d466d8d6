package operations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStep struct {
	BaseStep
	run func(ctx context.Context, state *OperationState) error
}

func newStubStep(id string) *stubStep {
	return &stubStep{BaseStep: NewBaseStep(id, "stub "+id)}
}

func (s *stubStep) Execute(ctx context.Context, state *OperationState) error {
	if s.run == nil {
		return nil
	}
	return s.run(ctx, state)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newStubStep("load")))
	require.NoError(t, reg.Register(newStubStep("group")))
	require.NoError(t, reg.Register(newStubStep("export")))

	assert.Equal(t, 3, reg.Count())
	assert.Equal(t, []string{"load", "group", "export"}, reg.ListIDs())
	assert.True(t, reg.Has("group"))
	assert.False(t, reg.Has("chart"))

	step, err := reg.Get("export")
	require.NoError(t, err)
	assert.Equal(t, "stub export", step.Name())

	_, err = reg.Get("chart")
	assert.ErrorContains(t, err, "not found")

	var ids []string
	for _, s := range reg.List() {
		ids = append(ids, s.ID())
	}
	assert.Equal(t, reg.ListIDs(), ids)
}

func TestRegistry_RegisterErrors(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newStubStep("load")))

	tests := []struct {
		name string
		step Step
		want string
	}{
		{"nil", nil, "nil step"},
		{"empty id", newStubStep(""), "cannot be empty"},
		{"duplicate", newStubStep("load"), "already registered"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorContains(t, reg.Register(tt.step), tt.want)
		})
	}
	assert.Equal(t, 1, reg.Count())
}
