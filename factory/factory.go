package factory

import (
	"github.com/hupe1980/geoblob/geometry"
	"github.com/hupe1980/geoblob/internal/arena"
)

// Factory decodes, builds and encodes geometries for one lane.
type Factory struct {
	arena     *arena.Arena
	ownsArena bool
	store     *geometry.Store
	opts      options
}

// New creates a Factory. Without WithArena it maps its own arena.
func New(optFns ...Option) (*Factory, error) {
	opts := options{
		bboxPolicy: BBoxPreserve,
		maxDepth:   DefaultMaxDepth,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	f := &Factory{
		arena: opts.arena,
		store: geometry.NewStore(),
		opts:  opts,
	}
	if f.arena == nil {
		a, err := arena.New(opts.arenaOpts...)
		if err != nil {
			return nil, err
		}
		f.arena = a
		f.ownsArena = true
	}
	return f, nil
}

// Reset invalidates every view and arena buffer handed out so far and
// rewinds the arena to its first chunk.
func (f *Factory) Reset() {
	f.arena.Reset()
	f.store.Reset()
}

// Generation returns the store generation views are checked against.
func (f *Factory) Generation() uint32 { return f.store.Generation() }

// Nodes returns the number of geometry nodes created since the last Reset.
func (f *Factory) Nodes() int { return f.store.Len() }

// BytesUsed returns the arena bytes allocated since the last Reset.
func (f *Factory) BytesUsed() uint64 { return f.arena.Stats().BytesUsed }

// BoundingBoxPolicy returns the configured box policy.
func (f *Factory) BoundingBoxPolicy() BBoxPolicy { return f.opts.bboxPolicy }

// Close invalidates all views and releases the arena if the factory owns it.
func (f *Factory) Close() error {
	f.store.Reset()
	if f.ownsArena {
		f.arena.Free()
	}
	return nil
}
