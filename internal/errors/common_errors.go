package errors

import (
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeSchema       ErrorType = "SCHEMA"
	ErrTypeEmptyInput   ErrorType = "EMPTY_INPUT"
	ErrTypeTypeMismatch ErrorType = "TYPE_MISMATCH"
	ErrTypeParsing      ErrorType = "PARSING"
	ErrTypeNotFound     ErrorType = "NOT_FOUND"
	ErrTypeStorage      ErrorType = "STORAGE"
	ErrTypeValidation   ErrorType = "VALIDATION"
	ErrTypeConfig       ErrorType = "CONFIG"
)

// Sentinels for errors.Is. Matching is by Type only, so any AppError of the
// same type satisfies errors.Is(err, ErrSchema) and friends.
var (
	ErrSchema       = &AppError{Type: ErrTypeSchema}
	ErrEmptyInput   = &AppError{Type: ErrTypeEmptyInput}
	ErrTypeMismatch = &AppError{Type: ErrTypeTypeMismatch}
	ErrParse        = &AppError{Type: ErrTypeParsing}
	ErrNotFound     = &AppError{Type: ErrTypeNotFound}
	ErrStorage      = &AppError{Type: ErrTypeStorage}
	ErrValidation   = &AppError{Type: ErrTypeValidation}
	ErrConfig       = &AppError{Type: ErrTypeConfig}
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError of the same type.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Helper functions for common error types

// NewSchemaError reports columns referenced but not present in a table.
func NewSchemaError(message string, columns ...string) *AppError {
	err := NewAppError(ErrTypeSchema, message, nil)
	if len(columns) > 0 {
		err.Message = fmt.Sprintf("%s: %s", message, strings.Join(columns, ", "))
		err.WithContext("columns", columns)
	}
	return err
}

// NewEmptyInputError creates an error for a table with zero rows
func NewEmptyInputError(message string) *AppError {
	return NewAppError(ErrTypeEmptyInput, message, nil)
}

// NewTypeMismatchError reports a non-numeric value fed to a numeric reducer.
// row is the zero-based data row index in the input table.
func NewTypeMismatchError(column string, row int, value string, reducer string) *AppError {
	return NewAppError(ErrTypeTypeMismatch,
		fmt.Sprintf("reducer %s needs numeric values, column %q row %d holds %q", reducer, column, row, value), nil).
		WithContext("column", column).
		WithContext("row", row).
		WithContext("reducer", reducer)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewRowParsingError creates a parsing error for a specific line of the input
func NewRowParsingError(path string, line int, cause error) *AppError {
	return NewAppError(ErrTypeParsing, fmt.Sprintf("malformed row at %s line %d", path, line), cause).
		WithContext("path", path).
		WithContext("line", line)
}

// NewFileNotFoundError creates a not found error for an input path
func NewFileNotFoundError(path string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("file %s not found", path), nil).
		WithContext("path", path)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// GetErrorType returns the ErrorType of the first AppError in the chain, or
// an empty string when there is none.
func GetErrorType(err error) ErrorType {
	for err != nil {
		if appErr, ok := err.(*AppError); ok {
			return appErr.Type
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
