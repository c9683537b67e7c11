package geoblob

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/geoblob/blobstore"
	"github.com/hupe1980/geoblob/column"
	"github.com/hupe1980/geoblob/factory"
	"github.com/hupe1980/geoblob/geometry"
	"github.com/hupe1980/geoblob/internal/resource"
	"golang.org/x/sync/errgroup"
)

// RowFunc transforms one decoded row. Geometries it builds must come from f.
// Returning the null geometry yields a NULL output row; returning an error
// yields a NULL output row and a *RowError.
type RowFunc func(f *factory.Factory, g geometry.Geometry) (geometry.Geometry, error)

// Engine runs row functions over geometry columns on a fixed set of lanes.
// Each lane owns one factory and arena and is reset after every batch, so no
// geometry view survives the batch that produced it.
//
// An Engine is safe for concurrent use.
type Engine struct {
	opts  options
	rc    *resource.Controller
	lanes chan *lane

	mu     sync.RWMutex // held shared by operations, exclusively by Close
	closed atomic.Bool
	all    []*lane
}

type lane struct {
	id int
	f  *factory.Factory
}

// New creates an Engine.
func New(optFns ...Option) (*Engine, error) {
	opts, err := applyOptions(optFns)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		opts: opts,
		rc: resource.NewController(resource.Config{
			MemoryLimitBytes:   opts.memoryLimit,
			IOLimitBytesPerSec: opts.ioLimit,
		}),
		lanes: make(chan *lane, opts.lanes),
	}

	for i := range opts.lanes {
		f, err := factory.New(
			factory.WithChunkSize(opts.chunkSize),
			factory.WithMaxChunks(opts.maxChunks),
			factory.WithMemoryAcquirer(e.rc),
			factory.WithBoundingBoxPolicy(opts.bboxPolicy),
			factory.WithMaxDepth(opts.maxDepth),
			factory.WithStrictBoundingBox(opts.strictBBox),
		)
		if err != nil {
			_ = e.closeLanes()
			return nil, err
		}
		l := &lane{id: i, f: f}
		e.all = append(e.all, l)
		e.lanes <- l
	}

	return e, nil
}

// Close releases every lane arena. Close waits for running operations.
func (e *Engine) Close() error {
	if e == nil || !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closeLanes()
}

func (e *Engine) closeLanes() error {
	var errs []error
	for _, l := range e.all {
		errs = append(errs, l.f.Close())
	}
	e.all = nil
	return errors.Join(errs...)
}

// Lanes returns the number of lanes.
func (e *Engine) Lanes() int { return e.opts.lanes }

// MemoryUsage returns the arena bytes currently reserved by all lanes.
func (e *Engine) MemoryUsage() int64 { return e.rc.MemoryUsage() }

// PeakMemoryUsage returns the highest arena reservation seen.
func (e *Engine) PeakMemoryUsage() int64 { return e.rc.PeakMemoryUsage() }

func (e *Engine) enter() error {
	e.mu.RLock()
	if e.closed.Load() {
		e.mu.RUnlock()
		return ErrClosed
	}
	return nil
}

func (e *Engine) leave() { e.mu.RUnlock() }

func (e *Engine) acquire(ctx context.Context) (*lane, error) {
	select {
	case l := <-e.lanes:
		return l, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *Engine) release(ctx context.Context, l *lane) {
	e.reset(ctx, l)
	e.lanes <- l
}

func (e *Engine) reset(ctx context.Context, l *lane) {
	bytesUsed, nodes := l.f.BytesUsed(), l.f.Nodes()
	l.f.Reset()
	e.opts.metricsCollector.RecordReset(bytesUsed)
	e.opts.logger.LogReset(ctx, l.id, bytesUsed, nodes)
}

// batches calls fn for each [lo, hi) batch of n rows, at most one batch per
// lane at a time. fn runs with exclusive use of the lane; the lane is reset
// afterwards.
func (e *Engine) batches(ctx context.Context, n int, fn func(ctx context.Context, l *lane, batch, lo, hi int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.lanes)

	for b, lo := 0, 0; lo < n; b, lo = b+1, lo+e.opts.batchSize {
		hi := min(lo+e.opts.batchSize, n)
		g.Go(func() error {
			l, err := e.acquire(gctx)
			if err != nil {
				return err
			}
			defer e.release(gctx, l)
			return fn(gctx, l, b, lo, hi)
		})
	}
	return g.Wait()
}

// Map applies fn to every row of in and returns the output column in input
// order. NULL input rows stay NULL without calling fn.
//
// A failing row becomes NULL in the output and contributes a *RowError to
// the returned error, which joins all row errors; the output column is
// returned alongside it. Cancellation and engine failures return a nil
// column.
func (e *Engine) Map(ctx context.Context, in *column.Column, fn RowFunc) (*column.Column, error) {
	if err := e.enter(); err != nil {
		return nil, err
	}
	defer e.leave()

	n := in.Len()
	out := make([][]byte, n)
	batchErrs := make([][]error, (n+e.opts.batchSize-1)/e.opts.batchSize)

	err := e.batches(ctx, n, func(ctx context.Context, l *lane, batch, lo, hi int) error {
		start := time.Now()
		var errs []error
		for i := lo; i < hi; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			blob := in.Value(i)
			if blob == nil {
				continue
			}
			res, err := mapRow(l.f, blob, fn)
			if errors.Is(err, ErrAllocationExhausted) && l.f.BytesUsed() > 0 {
				// Earlier rows are already copied out; reclaim their arena
				// space and retry once.
				e.reset(ctx, l)
				res, err = mapRow(l.f, blob, fn)
			}
			e.opts.metricsCollector.RecordRow(err)
			if err != nil {
				re := &RowError{Row: i, Lane: l.id, cause: translateError(err)}
				e.opts.logger.LogRowError(ctx, re)
				errs = append(errs, re)
				continue
			}
			out[i] = res
		}
		batchErrs[batch] = errs
		e.opts.metricsCollector.RecordBatch(hi-lo, len(errs), time.Since(start))
		e.opts.logger.LogBatch(ctx, l.id, hi-lo, len(errs), time.Since(start))
		return nil
	})
	if err != nil {
		err = translateError(err)
		e.opts.logger.LogMap(ctx, "map", n, 0, err)
		return nil, err
	}

	b := column.NewBuilder(n)
	for _, blob := range out {
		if blob == nil {
			err = b.AppendNull()
		} else {
			err = b.AppendBlob(blob)
		}
		if err != nil {
			return nil, err
		}
	}
	var rowErrs []error
	for _, errs := range batchErrs {
		rowErrs = append(rowErrs, errs...)
	}
	e.opts.logger.LogMap(ctx, "map", n, len(rowErrs), nil)
	return b.Build(), errors.Join(rowErrs...)
}

func mapRow(f *factory.Factory, blob []byte, fn RowFunc) ([]byte, error) {
	g, err := f.Deserialize(blob)
	if err != nil {
		return nil, err
	}
	res, err := fn(f, g)
	if err != nil {
		return nil, err
	}
	if res.IsNull() {
		return nil, nil
	}
	return f.Serialize(res)
}

// Extent returns the union of the boxes of all non-NULL rows of in. Rows
// with a cached box are read without decoding.
func (e *Engine) Extent(ctx context.Context, in *column.Column) (geometry.Box, error) {
	if err := e.enter(); err != nil {
		return geometry.EmptyBox(), err
	}
	defer e.leave()

	var mu sync.Mutex
	box := geometry.EmptyBox()

	err := e.batches(ctx, in.Len(), func(_ context.Context, l *lane, _, lo, hi int) error {
		part, err := in.Slice(lo, hi)
		if err != nil {
			return err
		}
		b, err := part.Extent(l.f)
		if err != nil {
			return err
		}
		mu.Lock()
		box = box.Union(b)
		mu.Unlock()
		return nil
	})
	if err != nil {
		err = translateError(err)
		e.opts.logger.LogMap(ctx, "extent", in.Len(), 0, err)
		return geometry.EmptyBox(), err
	}
	return box, nil
}

// Save stores c under name using the engine's compression and IO limit.
func (e *Engine) Save(ctx context.Context, store blobstore.Store, name string, c *column.Column) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()

	return column.Save(ctx, store, name, c,
		column.WithCompression(e.opts.compression),
		column.WithResourceController(e.rc),
	)
}

// Load reads the column stored under name under the engine's IO limit.
func (e *Engine) Load(ctx context.Context, store blobstore.Store, name string) (*column.Column, error) {
	if err := e.enter(); err != nil {
		return nil, err
	}
	defer e.leave()

	return column.Load(ctx, store, name, column.WithResourceController(e.rc))
}
