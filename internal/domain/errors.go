package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a missing session or one owned by another user.
	ErrNotFound = errors.New("not found")

	// ErrMalformedRequest reports missing or invalid request fields.
	ErrMalformedRequest = errors.New("malformed request")
)

// CapabilityError reports a generation or query call that could not complete.
type CapabilityError struct {
	Capability string
	Err        error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("capability %s failed: %v", e.Capability, e.Err)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}

// Malformed wraps ErrMalformedRequest with the offending field.
func Malformed(field string) error {
	return fmt.Errorf("%w: %s is required", ErrMalformedRequest, field)
}
