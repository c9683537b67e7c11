package geometry

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedGeometry is returned for internally inconsistent structure:
	// unknown kinds, reserved flag bits, mixed dimensionality, bad nesting.
	ErrMalformedGeometry = errors.New("malformed geometry")
	// ErrTypeMismatch is returned when an operation does not support the kind
	// it was called on.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrStaleView is reported when a view outlives its store generation.
	ErrStaleView = errors.New("stale geometry view")
	// ErrCapacityExceeded is returned by checked appends on a full buffer.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrNullGeometry is reported by Err on the zero Geometry.
	ErrNullGeometry = errors.New("null geometry")
)

// StaleViewError describes a view used after its store was reset.
type StaleViewError struct {
	ViewGeneration  uint32
	StoreGeneration uint32
}

func (e *StaleViewError) Error() string {
	return fmt.Sprintf("stale geometry view: created in generation %d, store is at %d", e.ViewGeneration, e.StoreGeneration)
}

func (e *StaleViewError) Unwrap() error { return ErrStaleView }

func typeMismatch(op string, t Type) error {
	return fmt.Errorf("%w: %s is not supported for %s", ErrTypeMismatch, op, t)
}
