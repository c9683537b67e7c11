package geoblob

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hupe1980/geoblob/blobstore"
	"github.com/hupe1980/geoblob/column"
	"github.com/hupe1980/geoblob/factory"
	"github.com/hupe1980/geoblob/geometry"
	"github.com/hupe1980/geoblob/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

// pointColumn returns n rows POINT(i i), with every fifth row NULL.
func pointColumn(t *testing.T, n int) *column.Column {
	t.Helper()
	f, err := factory.New()
	require.NoError(t, err)
	defer f.Close()

	b := column.NewBuilder(n)
	for i := range n {
		if i%5 == 4 {
			require.NoError(t, b.AppendNull())
			continue
		}
		p, err := f.CreatePointXY(float64(i), float64(i))
		require.NoError(t, err)
		require.NoError(t, b.AppendGeometry(f, p.Geometry()))
	}
	return b.Build()
}

func shift(dx float64) RowFunc {
	return func(f *factory.Factory, g geometry.Geometry) (geometry.Geometry, error) {
		x, err := g.X()
		if err != nil {
			return geometry.Geometry{}, err
		}
		y, err := g.Y()
		if err != nil {
			return geometry.Geometry{}, err
		}
		p, err := f.CreatePointXY(x+dx, y)
		return p.Geometry(), err
	}
}

func decodeX(t *testing.T, f *factory.Factory, blob []byte) float64 {
	t.Helper()
	g, err := f.Deserialize(blob)
	require.NoError(t, err)
	x, err := g.X()
	require.NoError(t, err)
	return x
}

func TestNew_InvalidOptions(t *testing.T) {
	for name, opt := range map[string]Option{
		"lanes":        WithLanes(0),
		"batch size":   WithBatchSize(-1),
		"memory limit": WithMemoryLimit(-1),
		"io limit":     WithIOLimit(-1),
		"max depth":    WithMaxDepth(0),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := New(opt)
			assert.ErrorIs(t, err, ErrInvalidOption)
		})
	}
}

func TestMap(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	e := newEngine(t, WithLanes(3), WithBatchSize(4), WithChunkSize(4096), WithMetricsCollector(metrics))

	in := pointColumn(t, 23)
	out, err := e.Map(context.Background(), in, shift(100))
	require.NoError(t, err)
	require.Equal(t, in.Len(), out.Len())
	assert.Equal(t, in.NullCount(), out.NullCount())

	f, err := factory.New()
	require.NoError(t, err)
	defer f.Close()

	for i := range in.Len() {
		if in.IsNull(i) {
			assert.True(t, out.IsNull(i), "row %d", i)
			continue
		}
		assert.Equal(t, float64(i)+100, decodeX(t, f, out.Value(i)), "row %d", i)
	}

	stats := metrics.GetStats()
	assert.Equal(t, int64(6), stats.BatchCount)
	assert.Equal(t, int64(23), stats.BatchRows)
	assert.Equal(t, int64(23-in.NullCount()), stats.RowCount)
	assert.Zero(t, stats.RowErrors)
	assert.Equal(t, int64(6), stats.ResetCount)
}

func TestMap_Empty(t *testing.T) {
	e := newEngine(t, WithLanes(1))
	in, err := column.FromBlobs()
	require.NoError(t, err)

	out, err := e.Map(context.Background(), in, shift(1))
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
}

func TestMap_RowErrors(t *testing.T) {
	e := newEngine(t, WithLanes(2), WithBatchSize(2))

	good := pointColumn(t, 1).Value(0)
	truncated := []byte{byte(geometry.TypeLineString), 0, 5, 0, 0, 0}
	in, err := column.FromBlobs(good, truncated, nil, good, good)
	require.NoError(t, err)

	t.Run("decode failure", func(t *testing.T) {
		var mu sync.Mutex
		calls := 0
		identity := func(_ *factory.Factory, g geometry.Geometry) (geometry.Geometry, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			return g, nil
		}

		out, err := e.Map(context.Background(), in, identity)
		require.Error(t, err)
		assert.Equal(t, 3, calls)

		var rowErr *RowError
		require.ErrorAs(t, err, &rowErr)
		assert.Equal(t, 1, rowErr.Row)
		assert.ErrorIs(t, err, ErrBufferOverrun)

		require.NotNil(t, out)
		assert.Equal(t, []bool{false, true, true, false, false}, nulls(out))
		assert.Equal(t, good, out.Value(0))
	})

	t.Run("function failure", func(t *testing.T) {
		boom := errors.New("boom")
		out, err := e.Map(context.Background(), in, func(*factory.Factory, geometry.Geometry) (geometry.Geometry, error) {
			return geometry.Geometry{}, boom
		})
		assert.ErrorIs(t, err, boom)
		require.NotNil(t, out)
		assert.Equal(t, 5, out.NullCount())

		var joined interface{ Unwrap() []error }
		require.ErrorAs(t, err, &joined)
		require.Len(t, joined.Unwrap(), 4)
		for i, want := range []int{0, 1, 3, 4} {
			var re *RowError
			require.ErrorAs(t, joined.Unwrap()[i], &re)
			assert.Equal(t, want, re.Row)
		}
	})
}

func nulls(c *column.Column) []bool {
	out := make([]bool, c.Len())
	for i := range out {
		out[i] = c.IsNull(i)
	}
	return out
}

func TestMap_NullResult(t *testing.T) {
	e := newEngine(t, WithLanes(1))
	in := pointColumn(t, 3)

	out, err := e.Map(context.Background(), in, func(*factory.Factory, geometry.Geometry) (geometry.Geometry, error) {
		return geometry.Geometry{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, out.NullCount())
}

func TestMap_Canceled(t *testing.T) {
	e := newEngine(t, WithLanes(2), WithBatchSize(1))
	in := pointColumn(t, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := e.Map(ctx, in, shift(1))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, out)

	// The engine stays usable after a canceled call.
	out, err = e.Map(context.Background(), in, shift(1))
	require.NoError(t, err)
	assert.Equal(t, 10, out.Len())
}

func TestMap_ResetReclaimsArena(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	e := newEngine(t, WithLanes(1), WithBatchSize(100), WithChunkSize(4096), WithMaxChunks(2), WithMetricsCollector(metrics))
	in := pointColumn(t, 4)

	// Each row needs a dedicated chunk, so every second row exhausts the
	// arena and succeeds after the lane is reset.
	long := func(f *factory.Factory, g geometry.Geometry) (geometry.Geometry, error) {
		ls, err := f.CreateLineString(geometry.XY, 300)
		if err != nil {
			return geometry.Geometry{}, err
		}
		for i := range 300 {
			ls.AppendUnsafe(geometry.Vertex{X: float64(i), Y: 0})
		}
		return ls.Geometry(), nil
	}

	out, err := e.Map(context.Background(), in, long)
	require.NoError(t, err)
	assert.Equal(t, 0, out.NullCount())
	assert.Greater(t, metrics.GetStats().ResetCount, int64(1))
}

func TestMap_AllocationExhausted(t *testing.T) {
	e := newEngine(t, WithLanes(1), WithChunkSize(4096), WithMaxChunks(1))
	in := pointColumn(t, 2)

	huge := func(f *factory.Factory, g geometry.Geometry) (geometry.Geometry, error) {
		ls, err := f.CreateLineString(geometry.XY, 1000)
		return ls.Geometry(), err
	}

	out, err := e.Map(context.Background(), in, huge)
	assert.ErrorIs(t, err, ErrAllocationExhausted)
	require.NotNil(t, out)
	assert.Equal(t, 2, out.NullCount())

	// Small rows still fit.
	out, err = e.Map(context.Background(), in, shift(1))
	require.NoError(t, err)
	assert.Equal(t, 0, out.NullCount())
}

func TestNew_MemoryLimit(t *testing.T) {
	_, err := New(WithLanes(3), WithChunkSize(4096), WithMemoryLimit(8192))
	assert.ErrorIs(t, err, ErrAllocationExhausted)

	e := newEngine(t, WithLanes(2), WithChunkSize(4096), WithMemoryLimit(8192))
	assert.Equal(t, int64(8192), e.MemoryUsage())
	assert.Equal(t, 2, e.Lanes())
}

func TestExtent(t *testing.T) {
	want := geometry.Box{MinX: 0, MinY: 0, MaxX: 22, MaxY: 22}

	for _, policy := range []factory.BBoxPolicy{factory.BBoxNever, factory.BBoxAlways} {
		t.Run(policy.String(), func(t *testing.T) {
			e := newEngine(t, WithLanes(2), WithBatchSize(5), WithBoundingBoxPolicy(policy))

			// Rebuild the column through the engine so rows follow the policy.
			in, err := e.Map(context.Background(), pointColumn(t, 23), shift(0))
			require.NoError(t, err)

			box, err := e.Extent(context.Background(), in)
			require.NoError(t, err)
			assert.Equal(t, want, box)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, WithLanes(1), WithIOLimit(1<<20))
	store := blobstore.NewMemoryStore()
	in := pointColumn(t, 12)

	require.NoError(t, e.Save(ctx, store, "points.gbc", in))
	got, err := e.Load(ctx, store, "points.gbc")
	require.NoError(t, err)

	require.Equal(t, in.Len(), got.Len())
	for i := range in.Len() {
		assert.Equal(t, in.Value(i), got.Value(i))
	}
}

func TestClose(t *testing.T) {
	e, err := New(WithLanes(2))
	require.NoError(t, err)
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())

	_, err = e.Map(context.Background(), pointColumn(t, 1), shift(1))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = e.Extent(context.Background(), pointColumn(t, 1))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, e.Save(context.Background(), blobstore.NewMemoryStore(), "x", pointColumn(t, 1)), ErrClosed)
}

func TestMap_RandomIdentity(t *testing.T) {
	f, err := factory.New()
	require.NoError(t, err)
	defer f.Close()

	in, err := testutil.NewRNG(99).Column(f, 300, 0.2, testutil.GeometryOptions{MaxDepth: 3, EmptyRate: 0.1})
	require.NoError(t, err)

	e := newEngine(t, WithLanes(3), WithBatchSize(16))
	out, err := e.Map(context.Background(), in, func(_ *factory.Factory, g geometry.Geometry) (geometry.Geometry, error) {
		return g, nil
	})
	require.NoError(t, err)

	require.Equal(t, in.Len(), out.Len())
	for i := range in.Len() {
		assert.Equal(t, in.IsNull(i), out.IsNull(i), "row %d", i)
		assert.Equal(t, in.Value(i), out.Value(i), "row %d", i)
	}
}
