package domain

import (
	"errors"
	"fmt"
)

// MissingRequiredFieldError reports a construction call that omitted a
// required field. The construction fails entirely; no half-built entity is
// returned.
type MissingRequiredFieldError struct {
	Field string
}

func (e MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// Sentinel errors returned by vehicle actions.
var (
	// ErrNotRunning is returned by Accelerate when the vehicle is off.
	ErrNotRunning = errors.New("vehicle is not running")
	// ErrWrongKind is returned by variant-only actions invoked on another kind.
	ErrWrongKind = errors.New("action not supported for this vehicle kind")
	// ErrInvalidRecord rejects a maintenance record that fails validation.
	ErrInvalidRecord = errors.New("invalid maintenance record")
	// ErrInvalidCargoAmount rejects a non-positive cargo amount.
	ErrInvalidCargoAmount = errors.New("cargo amount must be a positive number")
	// ErrCargoOverCapacity rejects cargo that would exceed the truck's capacity.
	ErrCargoOverCapacity = errors.New("cargo exceeds capacity")
)
