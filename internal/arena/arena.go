package arena

import (
	"errors"
	"fmt"

	"github.com/hupe1980/geoblob/internal/conv"
	"github.com/hupe1980/geoblob/internal/mmap"
)

// MemoryAcquirer reserves memory against an external budget.
type MemoryAcquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

var (
	// ErrAllocationExhausted is returned when the arena cannot obtain more memory,
	// either because the chunk limit is reached or the memory budget refused it.
	ErrAllocationExhausted = errors.New("arena: allocation exhausted")
	// ErrClosed is returned when allocating from a freed arena.
	ErrClosed = errors.New("arena: closed")
)

const (
	// DefaultChunkSize is the default size of a chunk (1MB).
	DefaultChunkSize = 1024 * 1024
	// DefaultAlignment is the default memory alignment (8 bytes, one float64).
	DefaultAlignment = 8
	// DefaultMaxChunks limits the number of chunks held at once.
	DefaultMaxChunks = 4096
)

// Stats tracks arena memory usage.
//
//   - BytesReserved: memory currently mapped for chunks
//   - BytesUsed: bytes requested since the last reset (before alignment)
//   - BytesWasted: alignment padding since the last reset
//   - ActiveChunks: chunks currently held
//   - ChunksAllocated, TotalAllocs, Resets: lifetime counters
type Stats struct {
	ChunksAllocated uint64
	BytesReserved   uint64
	BytesUsed       uint64
	BytesWasted     uint64
	ActiveChunks    uint64
	TotalAllocs     uint64
	Resets          uint64
}

type chunk struct {
	data    []byte
	mapping *mmap.Mapping
	offset  int
}

// Arena is a chunked bump allocator.
type Arena struct {
	chunkSize  int
	alignment  int
	maxChunks  int
	chunks     []*chunk
	current    *chunk
	generation uint32
	stats      Stats
	acquirer   MemoryAcquirer
	closed     bool
}

// Option is a configuration option for Arena.
type Option func(*Arena)

// WithChunkSize sets the chunk size. Values <= 0 select DefaultChunkSize.
func WithChunkSize(size int) Option {
	return func(a *Arena) {
		if size > 0 {
			a.chunkSize = size
		}
	}
}

// WithMaxChunks caps the number of chunks the arena may hold at once.
func WithMaxChunks(n int) Option {
	return func(a *Arena) {
		if n > 0 {
			a.maxChunks = n
		}
	}
}

// WithMemoryAcquirer sets the memory acquirer for the arena.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(a *Arena) {
		a.acquirer = acquirer
	}
}

// New creates a new Arena and maps its first chunk.
func New(opts ...Option) (*Arena, error) {
	a := &Arena{
		chunkSize: DefaultChunkSize,
		alignment: DefaultAlignment,
		maxChunks: DefaultMaxChunks,
	}

	for _, opt := range opts {
		opt(a)
	}

	// Round up so every chunk boundary stays aligned.
	a.chunkSize = alignUp(a.chunkSize, a.alignment)

	// Generation 0 is reserved for "never valid".
	a.generation = 1

	c, err := a.mapChunk(a.chunkSize)
	if err != nil {
		return nil, err
	}
	a.current = c

	return a, nil
}

// Generation returns the current generation. It changes on every Reset and Free.
func (a *Arena) Generation() uint32 {
	return a.generation
}

func (a *Arena) mapChunk(size int) (*chunk, error) {
	if len(a.chunks) >= a.maxChunks {
		return nil, fmt.Errorf("%w: max chunks (%d) exceeded", ErrAllocationExhausted, a.maxChunks)
	}

	if a.acquirer != nil {
		if err := a.acquirer.AcquireMemory(int64(size)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAllocationExhausted, err)
		}
	}

	mapping, err := mmap.MapAnon(size)
	if err != nil {
		if a.acquirer != nil {
			a.acquirer.ReleaseMemory(int64(size))
		}
		return nil, fmt.Errorf("%w: map chunk: %w", ErrAllocationExhausted, err)
	}

	c := &chunk{data: mapping.Bytes(), mapping: mapping}
	a.chunks = append(a.chunks, c)

	sizeU64, _ := conv.IntToUint64(size)
	a.stats.ChunksAllocated++
	a.stats.BytesReserved += sizeU64
	a.stats.ActiveChunks++

	return c, nil
}

func (a *Arena) releaseChunk(c *chunk) {
	size := len(c.data)
	_ = c.mapping.Close()
	if a.acquirer != nil {
		a.acquirer.ReleaseMemory(int64(size))
	}
	sizeU64, _ := conv.IntToUint64(size)
	a.stats.BytesReserved -= sizeU64
	a.stats.ActiveChunks--
}

// AllocBytes returns a slice of exactly size bytes whose capacity is clipped to
// its length. Contents are undefined: memory reused after Reset is not cleared.
func (a *Arena) AllocBytes(size int) ([]byte, error) {
	if a.closed {
		return nil, ErrClosed
	}
	if size <= 0 {
		return nil, nil
	}

	alignedSize := alignUp(size, a.alignment)

	if alignedSize > a.chunkSize {
		// Oversized requests get a dedicated chunk; the current chunk keeps serving
		// small allocations.
		c, err := a.mapChunk(alignedSize)
		if err != nil {
			return nil, err
		}
		c.offset = alignedSize
		a.account(size, alignedSize)
		return c.data[:size:size], nil
	}

	if a.current.offset+alignedSize > len(a.current.data) {
		c, err := a.mapChunk(a.chunkSize)
		if err != nil {
			return nil, err
		}
		a.current = c
	}

	off := a.current.offset
	a.current.offset += alignedSize
	a.account(size, alignedSize)

	return a.current.data[off : off+size : off+size], nil
}

func (a *Arena) account(size, alignedSize int) {
	sizeU64, _ := conv.IntToUint64(size)
	wastedU64, _ := conv.IntToUint64(alignedSize - size)
	a.stats.BytesUsed += sizeU64
	a.stats.BytesWasted += wastedU64
	a.stats.TotalAllocs++
}

// Stats returns the current arena statistics.
func (a *Arena) Stats() Stats {
	return a.stats
}

// Reset rewinds the arena, keeping only the first chunk.
//
// All slices allocated before Reset become invalid, and the generation is
// incremented so views that recorded the old generation can detect it.
// Reset is safe after a failed allocation.
func (a *Arena) Reset() {
	a.generation++
	a.stats.Resets++

	if a.closed || len(a.chunks) == 0 {
		return
	}

	for _, c := range a.chunks[1:] {
		a.releaseChunk(c)
	}
	clear(a.chunks[1:])
	a.chunks = a.chunks[:1]

	a.current = a.chunks[0]
	a.current.offset = 0

	a.stats.BytesUsed = 0
	a.stats.BytesWasted = 0
}

// Free unmaps all chunks. The arena cannot be used afterwards.
func (a *Arena) Free() {
	if a.closed {
		return
	}
	a.generation++
	for _, c := range a.chunks {
		a.releaseChunk(c)
	}
	a.chunks = nil
	a.current = nil
	a.closed = true
	a.stats.BytesUsed = 0
	a.stats.BytesWasted = 0
}

// Usage returns the memory usage percentage.
func (a *Arena) Usage() float64 {
	if a.stats.BytesReserved == 0 {
		return 0
	}
	return float64(a.stats.BytesUsed) / float64(a.stats.BytesReserved) * 100
}

func (a *Arena) String() string {
	return fmt.Sprintf(
		"Arena{gen: %d, chunks: %d, reserved: %.2f MB, used: %.2f MB, wasted: %.2f KB, usage: %.1f%%, allocs: %d}",
		a.generation,
		a.stats.ActiveChunks,
		float64(a.stats.BytesReserved)/(1024*1024),
		float64(a.stats.BytesUsed)/(1024*1024),
		float64(a.stats.BytesWasted)/1024,
		a.Usage(),
		a.stats.TotalAllocs,
	)
}

func alignUp(n, align int) int {
	mask := align - 1
	return (n + mask) &^ mask
}
