// Package apperr defines the error taxonomy shared by services and
// repositories. Callers classify failures with errors.Is against the three
// sentinels; messages are built with the *f constructors.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input rejected before any state mutation
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks operations referencing an unknown entity id
	ErrNotFound = errors.New("not found")
	// ErrInvariant marks a programming-contract failure that should never
	// surface if the reconciler is correct
	ErrInvariant = errors.New("invariant violation")
)

// Validationf builds a validation error with a formatted message
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf builds a not-found error with a formatted message
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Invariantf builds an invariant-violation error with a formatted message
func Invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}

// IsValidation checks if err is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound checks if err is a not-found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
