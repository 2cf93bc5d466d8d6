package operations

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of operation error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeExecution    ErrorType = "execution"
	ErrorTypeCancellation ErrorType = "cancellation"
)

// OperationError names the job and step that failed. The cause keeps its
// own type, so errors.Is against the application sentinels still works.
type OperationError struct {
	Type    ErrorType `json:"type"`
	Job     string    `json:"job,omitempty"`
	Step    string    `json:"step,omitempty"`
	Message string    `json:"message"`
	Cause   error     `json:"cause,omitempty"`
}

// Error implements the error interface
func (e *OperationError) Error() string {
	if e == nil {
		return "unknown operation error"
	}
	where := e.Step
	if e.Job != "" {
		where = e.Job + "/" + e.Step
	}
	msg := fmt.Sprintf("[%s] %s: %s", e.Type, where, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewValidationError reports a step that cannot run on the current state
func NewValidationError(job, step string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeValidation,
		Job:     job,
		Step:    step,
		Message: "step cannot run",
		Cause:   cause,
	}
}

// NewExecutionError reports a step that failed while running
func NewExecutionError(job, step string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeExecution,
		Job:     job,
		Step:    step,
		Message: "step execution failed",
		Cause:   cause,
	}
}

// NewCancellationError reports a run stopped before step
func NewCancellationError(job, step string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeCancellation,
		Job:     job,
		Step:    step,
		Message: "operation was cancelled",
		Cause:   cause,
	}
}

// GetErrorType returns the type of the error
func GetErrorType(err error) ErrorType {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Type
	}
	if err == nil {
		return ""
	}
	return ErrorTypeExecution
}
