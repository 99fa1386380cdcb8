// Package apperr defines the error taxonomy shared by the questionnaire services
// and rendered by the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ValidationError reports malformed or missing input, keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Validation builds a ValidationError for a single field.
func Validation(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

// ConflictError reports a uniqueness violation.
type ConflictError struct {
	Resource string
	Field    string
	Value    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Resource, e.Field, e.Value)
}

// NotFoundError reports a reference to an id that does not exist.
type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

// AuthorizationError reports a missing session (401) or a missing role (403).
type AuthorizationError struct {
	Status int
	Reason string
}

func (e *AuthorizationError) Error() string {
	return e.Reason
}

// Unauthenticated returns the 401 flavour of AuthorizationError.
func Unauthenticated() *AuthorizationError {
	return &AuthorizationError{Status: http.StatusUnauthorized, Reason: "unauthorized"}
}

// Forbidden returns the 403 flavour of AuthorizationError.
func Forbidden() *AuthorizationError {
	return &AuthorizationError{Status: http.StatusForbidden, Reason: "forbidden"}
}

// ItemFailure is one failed entry of a batch operation.
type ItemFailure struct {
	Index      int    `json:"index"`
	QuestionID uint   `json:"questionId"`
	Error      string `json:"error"`
	err        error
}

// Unwrap exposes the underlying per-item error.
func (f ItemFailure) Unwrap() error { return f.err }

// AggregateError wraps the per-item failures of a batch. Entries not listed succeeded.
type AggregateError struct {
	Failures []ItemFailure
}

// Add records a failed batch entry.
func (e *AggregateError) Add(index int, questionID uint, err error) {
	e.Failures = append(e.Failures, ItemFailure{Index: index, QuestionID: questionID, Error: err.Error(), err: err})
}

// Empty reports whether no failure was recorded.
func (e *AggregateError) Empty() bool { return len(e.Failures) == 0 }

func (e *AggregateError) Error() string {
	idx := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		idx = append(idx, fmt.Sprintf("#%d (%s)", f.Index, f.Error))
	}
	return fmt.Sprintf("%d batch entries failed: %s", len(e.Failures), strings.Join(idx, "; "))
}

// Unwrap lets errors.Is/As look into every failed entry.
func (e *AggregateError) Unwrap() []error {
	out := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		if f.err != nil {
			out = append(out, f.err)
		}
	}
	return out
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is, or wraps, a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
