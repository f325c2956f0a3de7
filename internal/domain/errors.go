package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
)

// Gateway-specific errors. Each maps to a distinct client-facing error code.
var (
	ErrNotOwner              = errors.New("not the owner")
	ErrSelfInviteNotAllowed  = errors.New("cannot invite yourself")
	ErrSelfMessageNotAllowed = errors.New("cannot message yourself")
	ErrInvalidState          = errors.New("invalid state")
	ErrDuplicateInvite       = errors.New("duplicate pending invitation")
	ErrInvalidCredential     = errors.New("invalid credential")
	ErrUnknownSubject        = errors.New("unknown subject")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// IsStateConflict reports whether err is an expected outcome of concurrent
// actions (a lost compare-and-set or a duplicate pending invitation) rather
// than a failure.
func IsStateConflict(err error) bool {
	return errors.Is(err, ErrInvalidState) || errors.Is(err, ErrDuplicateInvite)
}
