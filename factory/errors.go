package factory

import (
	"github.com/hupe1980/geoblob/geometry"
	"github.com/hupe1980/geoblob/internal/arena"
	"github.com/hupe1980/geoblob/internal/cursor"
)

var (
	// ErrBufferOverrun is returned when a blob ends before the data it declares.
	ErrBufferOverrun = cursor.ErrBufferOverrun
	// ErrMalformedGeometry is returned for structurally invalid blobs.
	ErrMalformedGeometry = geometry.ErrMalformedGeometry
	// ErrTypeMismatch is returned when an operation does not support a kind.
	ErrTypeMismatch = geometry.ErrTypeMismatch
	// ErrAllocationExhausted is returned when the arena cannot grow.
	ErrAllocationExhausted = arena.ErrAllocationExhausted
	// ErrStaleView is reported for views used after Reset.
	ErrStaleView = geometry.ErrStaleView
)
