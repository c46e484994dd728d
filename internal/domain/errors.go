// Package domain defines the explore data model, filter rules and the errors
// shared by the compiler and filter renderer.
package domain

import (
	"errors"
	"fmt"
)

// NotFoundError indicates a named resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input outside of explore compilation
// (definition files, configuration).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// CompileErrorKind discriminates compile failures.
type CompileErrorKind string

const (
	KindMissingBaseTable    CompileErrorKind = "MISSING_BASE_TABLE"
	KindMissingJoinTable    CompileErrorKind = "MISSING_JOIN_TABLE"
	KindMissingJoinField    CompileErrorKind = "MISSING_JOIN_FIELD"
	KindMissingReference    CompileErrorKind = "MISSING_REFERENCE"
	KindCircularReference   CompileErrorKind = "CIRCULAR_REFERENCE"
	KindInvalidReference    CompileErrorKind = "INVALID_REFERENCE"
	KindDuplicateTable      CompileErrorKind = "DUPLICATE_TABLE"
	KindDuplicateFieldID    CompileErrorKind = "DUPLICATE_FIELD_ID"
	KindInvalidMetricFilter CompileErrorKind = "INVALID_METRIC_FILTER"
	KindInvalidFieldType    CompileErrorKind = "INVALID_FIELD_TYPE"
)

// CompileError is the only error kind returned by explore compilation.
// FieldID is empty for explore-level failures.
type CompileError struct {
	Kind    CompileErrorKind
	FieldID string
	Message string
	Err     error
}

func (e *CompileError) Error() string {
	if e.FieldID == "" {
		return fmt.Sprintf("compile error: %s", e.Message)
	}
	return fmt.Sprintf("compile error in %s: %s", e.FieldID, e.Message)
}

func (e *CompileError) Unwrap() error { return e.Err }

// ErrCompile creates a CompileError with a formatted message.
func ErrCompile(kind CompileErrorKind, fieldID string, format string, args ...interface{}) *CompileError {
	return &CompileError{Kind: kind, FieldID: fieldID, Message: fmt.Sprintf(format, args...)}
}

// IsCompileErrorKind reports whether err is, or wraps, a CompileError of kind.
func IsCompileErrorKind(err error, kind CompileErrorKind) bool {
	var ce *CompileError
	return errors.As(err, &ce) && ce.Kind == kind
}
