package domain

import (
	"errors"
	"fmt"
)

// ValidationError rejects a single malformed or out-of-range field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a field level validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError reports a uniqueness violation.
type ConflictError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewConflictError creates a uniqueness conflict error
func NewConflictError(field, message string) *ConflictError {
	return &ConflictError{Field: field, Message: message}
}

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id,string"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// NewNotFoundError creates a not found error for the given entity kind
func NewNotFoundError(kind string, id int64) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// IsRejection reports whether err is an input rejection (validation or
// conflict) as opposed to an unexpected failure.
func IsRejection(err error) bool {
	var ve *ValidationError
	var ce *ConflictError
	return errors.As(err, &ve) || errors.As(err, &ce)
}
