package domain

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports malformed or out-of-range input, field by field.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AuthorizationError is a guard denial. Its message is deliberately generic so
// callers cannot learn whether another user's record exists.
type AuthorizationError struct {
	Reason string // "unauthorized" or "forbidden"; for logs only
}

func (e *AuthorizationError) Error() string { return "access denied" }

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

// DataIntegrityError reports a stored payload that cannot be decoded.
type DataIntegrityError struct {
	Entity string
	ID     string
	Err    error
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("%s %s has malformed data: %v", e.Entity, e.ID, e.Err)
}

func (e *DataIntegrityError) Unwrap() error { return e.Err }

// StoreError wraps a persistence failure. Error() stays opaque; the cause is
// reachable through Unwrap for logging.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return "storage failure" }

func (e *StoreError) Unwrap() error { return e.Err }
