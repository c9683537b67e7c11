package factory

import "github.com/hupe1980/geoblob/internal/arena"

// BBoxPolicy decides whether Serialize writes a bounding box.
type BBoxPolicy int

const (
	// BBoxPreserve writes a box when the root geometry has HasBBox set.
	BBoxPreserve BBoxPolicy = iota
	// BBoxAlways writes a box for every non-empty geometry.
	BBoxAlways
	// BBoxNever never writes a box.
	BBoxNever
)

func (p BBoxPolicy) String() string {
	switch p {
	case BBoxPreserve:
		return "preserve"
	case BBoxAlways:
		return "always"
	case BBoxNever:
		return "never"
	default:
		return "unknown"
	}
}

// DefaultMaxDepth bounds the nesting of collections.
const DefaultMaxDepth = 64

type options struct {
	arena      *arena.Arena
	arenaOpts  []arena.Option
	bboxPolicy BBoxPolicy
	maxDepth   int
	strictBBox bool
}

// Option configures a Factory.
type Option func(*options)

// WithArena makes the factory allocate from a borrowed arena. The caller keeps
// ownership and must reset it only through Factory.Reset.
func WithArena(a *arena.Arena) Option {
	return func(o *options) {
		o.arena = a
	}
}

// WithChunkSize sets the chunk size of the factory's own arena.
func WithChunkSize(size int) Option {
	return func(o *options) {
		o.arenaOpts = append(o.arenaOpts, arena.WithChunkSize(size))
	}
}

// WithMaxChunks caps the chunks of the factory's own arena.
func WithMaxChunks(n int) Option {
	return func(o *options) {
		o.arenaOpts = append(o.arenaOpts, arena.WithMaxChunks(n))
	}
}

// WithMemoryAcquirer charges arena chunks against an external memory budget.
func WithMemoryAcquirer(acquirer arena.MemoryAcquirer) Option {
	return func(o *options) {
		o.arenaOpts = append(o.arenaOpts, arena.WithMemoryAcquirer(acquirer))
	}
}

// WithBoundingBoxPolicy sets when Serialize writes a bounding box.
func WithBoundingBoxPolicy(p BBoxPolicy) Option {
	return func(o *options) {
		o.bboxPolicy = p
	}
}

// WithMaxDepth limits collection nesting on decode and encode.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// WithStrictBoundingBox makes Deserialize verify a cached box against the
// decoded vertices.
func WithStrictBoundingBox(strict bool) Option {
	return func(o *options) {
		o.strictBBox = strict
	}
}
