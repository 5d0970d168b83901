// Package errors provides standardized domain errors that express business intent
// rather than infrastructure details. Use cases wrap these sentinels with context and
// handlers map them to HTTP status codes.
package errors

import (
	"errors"
	"fmt"
)

// Standard domain errors that can be used across all domain modules.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data (e.g., duplicate key).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	// Validation errors are raised before any cryptographic work starts.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIntegrity indicates authenticated data failed verification: an AEAD tag
	// mismatch, a checksum mismatch or a malformed encrypted envelope.
	ErrIntegrity = errors.New("integrity check failed")

	// ErrConfiguration indicates required configuration is missing or malformed.
	// Operations abort before touching any data.
	ErrConfiguration = errors.New("configuration error")

	// ErrPersistence indicates the backing store rejected a read or write.
	ErrPersistence = errors.New("persistence error")
)

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Use this to add context at each layer without losing the original error type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is like Wrap but formats the message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Persistence marks a store failure as ErrPersistence while keeping err in the chain,
// so driver errors stay inspectable with As.
func Persistence(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", message, ErrPersistence, err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
