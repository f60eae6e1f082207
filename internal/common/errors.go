// Package common defines the error kinds shared across accountd services.
// Callers match sentinel values with errors.Is and typed errors with
// errors.As; the HTTP layer translates them into status codes.
package common

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors.
	ErrInternal = errors.New("internal error")
)

// AuthenticationError reports a failed identity check (bad credentials,
// missing/invalid/expired token, unconfirmed email, inactive account).
// Key is an i18n message key; it never states which specific check failed
// in a way that would aid credential guessing.
type AuthenticationError struct {
	Key string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication error: %s", e.Key)
}

// NewAuthenticationError builds an AuthenticationError with the given message key.
func NewAuthenticationError(key string) *AuthenticationError {
	return &AuthenticationError{Key: key}
}

// AuthorizationError reports a valid identity with insufficient rights:
// wrong token kind, superseded confirmation token, missing role.
type AuthorizationError struct {
	Key string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("authorization error: %s", e.Key)
}

// NewAuthorizationError builds an AuthorizationError with the given message key.
func NewAuthorizationError(key string) *AuthorizationError {
	return &AuthorizationError{Key: key}
}

// FieldError names one violated field together with an i18n message key.
type FieldError struct {
	Field string
	Key   string
}

// ValidationError carries every violated field in one value so the caller
// can report them all in a single response.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Key)
	}
	return "validation error: " + strings.Join(parts, ", ")
}

// Add appends a violation for field. It returns the receiver so checks can
// accumulate errors fluently.
func (e *ValidationError) Add(field, key string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Key: key})
	return e
}

// HasErrors reports whether any violation was recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, key string) *ValidationError {
	return (&ValidationError{}).Add(field, key)
}
