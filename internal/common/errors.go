// Package common defines shared constants and sentinel errors used across
// server and console layers of securelogin. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound          = errors.New("not found")
	ErrorDuplicateUsername = errors.New("username already exists")
	ErrorDuplicateEmail    = errors.New("email already exists")
	ErrorStoreUnavailable  = errors.New("store unavailable")

	// Account state errors.
	ErrorAccountInactive    = errors.New("account disabled")
	ErrorAccountLocked      = errors.New("account locked")
	ErrorAccountExpired     = errors.New("account expired")
	ErrorCredentialsExpired = errors.New("credentials expired")
	ErrorInvalidCredentials = errors.New("invalid credentials")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Validation errors.
	ErrorValidation = errors.New("validation failed")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// FieldError is a single rejected form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports malformed input field by field. It matches
// ErrorValidation with errors.Is.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrorValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrorValidation
}
