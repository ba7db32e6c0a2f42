package service

import (
	"errors"
	"fmt"
)

var (
	// ErrAuth is returned when an identity token is missing, invalid, or expired.
	ErrAuth = errors.New("authentication failed")
	// ErrAccessDenied is returned when the caller lacks membership in a requested organization.
	ErrAccessDenied = errors.New("access denied")
	// ErrEmbedding is returned when the embedding backend is unreachable or returns an unexpected shape.
	ErrEmbedding = errors.New("embedding backend error")
	// ErrSecurityViolation is returned when post-retrieval ownership verification fails.
	// It is always fatal for the request and must never be recovered locally.
	ErrSecurityViolation = errors.New("security violation")
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError represents a validation error with a field name.
// It unwraps to ErrInvalidInput so callers can classify it with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
