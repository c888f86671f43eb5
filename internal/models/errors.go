package models

import (
	"errors"
	"fmt"
)

var (
	// ErrValidationFailed marks input that cannot be persisted.
	ErrValidationFailed = errors.New("validation failed")
	// ErrNotFound is returned both when an entity does not exist and when the
	// caller is not allowed to see it.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied is returned when a visible entity may not be mutated
	// by the caller.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrStore wraps every persistence failure.
	ErrStore = errors.New("store failure")
)

// NewValidationError returns an error matching ErrValidationFailed with a
// caller-facing reason.
func NewValidationError(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, reason)
}
