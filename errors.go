package geoblob

import (
	"errors"
	"fmt"

	"github.com/hupe1980/geoblob/factory"
	"github.com/hupe1980/geoblob/internal/arena"
)

var (
	// ErrClosed is returned when using a closed Engine.
	ErrClosed = errors.New("geoblob: engine closed")
	// ErrInvalidOption is returned by New for out-of-range settings.
	ErrInvalidOption = errors.New("geoblob: invalid option")

	// ErrBufferOverrun, ErrMalformedGeometry, ErrTypeMismatch,
	// ErrAllocationExhausted and ErrStaleView are the factory error kinds.
	ErrBufferOverrun       = factory.ErrBufferOverrun
	ErrMalformedGeometry   = factory.ErrMalformedGeometry
	ErrTypeMismatch        = factory.ErrTypeMismatch
	ErrAllocationExhausted = factory.ErrAllocationExhausted
	ErrStaleView           = factory.ErrStaleView
)

// RowError reports a row whose output was replaced by NULL.
//
// The original underlying error can be accessed via errors.Unwrap.
type RowError struct {
	Row   int
	Lane  int
	cause error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (lane %d): %v", e.Row, e.Lane, e.cause)
}

func (e *RowError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// A closed arena means the engine was closed underneath the caller.
	if errors.Is(err, arena.ErrClosed) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}

	return err
}
