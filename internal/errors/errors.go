// Package errors provides domain-specific error types and sentinel errors
// shared by the storage, assistant and HTTP layers.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrDuplicate indicates an insert collided with an existing key.
	ErrDuplicate = errors.New("resource already exists")

	// ErrStorageUnavailable indicates the backing database could not be queried.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")
)

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsDuplicate reports whether err is or wraps ErrDuplicate.
func IsDuplicate(err error) bool { return errors.Is(err, ErrDuplicate) }

// IsStorageUnavailable reports whether err is or wraps ErrStorageUnavailable.
func IsStorageUnavailable(err error) bool { return errors.Is(err, ErrStorageUnavailable) }

// IsInvalidInput reports whether err is or wraps ErrInvalidInput,
// including any *ValidationError.
func IsInvalidInput(err error) bool {
	if errors.Is(err, ErrInvalidInput) {
		return true
	}
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidationError represents input validation failures.
// Message is safe to show to the end user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// StorageError marks a failed database operation. It matches
// ErrStorageUnavailable and also unwraps to the driver error.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorageUnavailable, e.Err}
}

// NewStorageError wraps err as a storage failure for op. Returns nil if err is nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
