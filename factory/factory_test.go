package factory

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/hupe1980/geoblob/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blobBuilder struct {
	b []byte
}

func (w *blobBuilder) header(t geometry.Type, p geometry.Properties) *blobBuilder {
	w.b = append(w.b, byte(t), byte(p))
	return w
}

func (w *blobBuilder) u32(v uint32) *blobBuilder {
	w.b = binary.LittleEndian.AppendUint32(w.b, v)
	return w
}

func (w *blobBuilder) f64(vs ...float64) *blobBuilder {
	for _, v := range vs {
		w.b = binary.LittleEndian.AppendUint64(w.b, math.Float64bits(v))
	}
	return w
}

func newFactory(t *testing.T, opts ...Option) *Factory {
	t.Helper()
	f, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func lineString(t *testing.T, f *Factory, props geometry.Properties, xy ...float64) geometry.LineString {
	t.Helper()
	ls, err := f.CreateLineString(props, len(xy)/2)
	require.NoError(t, err)
	for i := 0; i < len(xy); i += 2 {
		ls.AppendUnsafe(geometry.Vertex{X: xy[i], Y: xy[i+1]})
	}
	return ls
}

func unitSquare(t *testing.T, f *Factory) geometry.Polygon {
	t.Helper()
	p, err := f.CreatePolygon(geometry.XY, 5)
	require.NoError(t, err)
	for _, v := range []geometry.Vertex{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}} {
		p.AppendUnsafe(0, v)
	}
	return p
}

func roundTrip(t *testing.T, f *Factory, g geometry.Geometry) ([]byte, geometry.Geometry) {
	t.Helper()
	blob, err := f.Serialize(g)
	require.NoError(t, err)
	size, err := f.SerializedSize(g)
	require.NoError(t, err)
	require.Len(t, blob, size)

	out, err := f.Deserialize(blob)
	require.NoError(t, err)
	require.True(t, g.Equal(out), "round trip changed %s into %s", g, out)
	return blob, out
}

func TestEmptyPointRoundTrip(t *testing.T) {
	f := newFactory(t)

	p, err := f.CreatePoint(geometry.XY)
	require.NoError(t, err)

	blob, g := roundTrip(t, f, p.Geometry())
	assert.Equal(t, []byte{1, 0}, blob)
	assert.Equal(t, geometry.TypePoint, g.Type())
	assert.True(t, g.IsEmpty())
	assert.False(t, g.IsNull())
}

func TestLineStringCachedBox(t *testing.T) {
	f := newFactory(t)

	ls := lineString(t, f, geometry.XY|geometry.HasBBox, 0, 0, 1, 1, 2, 0)
	blob, err := f.Serialize(ls.Geometry())
	require.NoError(t, err)
	assert.Len(t, blob, 2+32+4+3*16)

	box, ok, err := TryGetCachedBoundingBox(blob)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, geometry.Box{MinX: 0, MinY: 0, MaxX: 2, MaxY: 1}, box)

	g, err := f.Deserialize(blob)
	require.NoError(t, err)
	assert.Equal(t, box, g.Extent())
	assert.True(t, g.Properties().HasBBox())
}

func TestPolygonRoundTrip(t *testing.T) {
	f := newFactory(t)

	blob, g := roundTrip(t, f, unitSquare(t, f).Geometry())
	p, err := g.AsPolygon()
	require.NoError(t, err)

	assert.Equal(t, 0, p.NInteriorRings())
	ring := p.ExteriorRing()
	require.Equal(t, 5, ring.Len())
	want := []geometry.Vertex{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}}
	for i, v := range ring.All() {
		assert.Equal(t, want[i], v)
	}

	again, err := f.Serialize(g)
	require.NoError(t, err)
	assert.Equal(t, blob, again)
}

func TestPolygonWithHoles(t *testing.T) {
	f := newFactory(t)

	p, err := f.CreatePolygon(geometry.XYZ, 5, 4, 4)
	require.NoError(t, err)
	for _, v := range []geometry.Vertex{{X: 0, Y: 0, Z: 1}, {X: 10, Y: 0, Z: 1}, {X: 10, Y: 10, Z: 1}, {X: 0, Y: 10, Z: 1}, {X: 0, Y: 0, Z: 1}} {
		p.AppendUnsafe(0, v)
	}
	for ring, base := range []float64{1, 5} {
		for _, v := range []geometry.Vertex{{X: base, Y: base}, {X: base + 1, Y: base}, {X: base, Y: base + 1}, {X: base, Y: base}} {
			require.NoError(t, p.Append(ring+1, v))
		}
	}

	_, g := roundTrip(t, f, p.Geometry())
	out, err := g.AsPolygon()
	require.NoError(t, err)
	assert.Equal(t, 2, out.NInteriorRings())
	assert.Equal(t, 5.0, out.InteriorRing(1).At(0).X)
	assert.True(t, g.HasZ())
	assert.Equal(t, 13, g.NumVertices())
}

func TestMultiPointAndCollection(t *testing.T) {
	f := newFactory(t)

	mp, err := f.CreateMultiPoint(geometry.XY, 3)
	require.NoError(t, err)
	for i := range 3 {
		p, err := f.CreatePointXY(float64(i), float64(i))
		require.NoError(t, err)
		require.NoError(t, mp.Add(p))
	}
	_, g := roundTrip(t, f, mp.Geometry())
	n, err := g.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	gc, err := f.CreateCollection(geometry.XY, 2)
	require.NoError(t, err)
	p, err := f.CreatePointXY(1, 2)
	require.NoError(t, err)
	require.NoError(t, gc.Add(p.Geometry()))
	require.NoError(t, gc.Add(lineString(t, f, geometry.XY, 0, 0, 3, 3).Geometry()))

	_, g = roundTrip(t, f, gc.Geometry())
	n, err = g.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var seen []string
	for c := range g.Children() {
		name, err := geometry.Match(c, geometry.Cases[string]{
			Point:      func(geometry.Point) (string, error) { return "point", nil },
			LineString: func(geometry.LineString) (string, error) { return "line", nil },
		})
		require.NoError(t, err)
		seen = append(seen, name)
	}
	assert.Equal(t, []string{"point", "line"}, seen)
}

func TestNestedEmptyPoint(t *testing.T) {
	f := newFactory(t)

	mp, err := f.CreateMultiPoint(geometry.XY, 2)
	require.NoError(t, err)
	empty, err := f.CreatePoint(geometry.XY)
	require.NoError(t, err)
	full, err := f.CreatePointXY(1, 2)
	require.NoError(t, err)
	require.NoError(t, mp.Add(empty))
	require.NoError(t, mp.Add(full))

	blob, g := roundTrip(t, f, mp.Geometry())
	assert.Len(t, blob, 2+4+2*(2+16))
	assert.True(t, math.IsNaN(math.Float64frombits(binary.LittleEndian.Uint64(blob[8:]))))

	out, err := g.AsMultiPoint()
	require.NoError(t, err)
	assert.True(t, out.Point(0).IsEmpty())
	assert.False(t, out.Point(1).IsEmpty())
}

func TestNestedNaNPoint(t *testing.T) {
	f := newFactory(t)
	nan := geometry.Vertex{X: math.NaN(), Y: math.NaN()}

	mp, err := f.CreateMultiPoint(geometry.XY, 1)
	require.NoError(t, err)
	p, err := f.CreatePoint(geometry.XY)
	require.NoError(t, err)
	p.AppendUnsafe(nan)
	require.NoError(t, mp.Add(p))

	_, err = f.Serialize(mp.Geometry())
	assert.ErrorIs(t, err, ErrMalformedGeometry)
	_, err = f.SerializedSize(mp.Geometry())
	assert.ErrorIs(t, err, ErrMalformedGeometry)

	// A partial NaN vertex is ordinary data.
	q, err := f.CreatePoint(geometry.XY)
	require.NoError(t, err)
	q.AppendUnsafe(geometry.Vertex{X: math.NaN(), Y: 1})
	mq, err := f.CreateMultiPoint(geometry.XY, 1)
	require.NoError(t, err)
	require.NoError(t, mq.Add(q))
	_, g := roundTrip(t, f, mq.Geometry())
	assert.False(t, g.IsEmpty())

	root, err := f.CreatePoint(geometry.XY)
	require.NoError(t, err)
	root.AppendUnsafe(nan)
	_, g = roundTrip(t, f, root.Geometry())
	assert.False(t, g.IsEmpty())
}

func TestOpenRingRejected(t *testing.T) {
	f := newFactory(t)

	p, err := f.CreatePolygon(geometry.XY, 3)
	require.NoError(t, err)
	for _, v := range []geometry.Vertex{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}} {
		p.AppendUnsafe(0, v)
	}
	_, err = f.Serialize(p.Geometry())
	assert.ErrorIs(t, err, ErrMalformedGeometry)

	var w blobBuilder
	w.header(geometry.TypePolygon, geometry.XY).u32(1).u32(3).f64(0, 0, 1, 0, 1, 1)
	g, err := f.Deserialize(w.b)
	assert.ErrorIs(t, err, ErrMalformedGeometry)
	assert.True(t, g.IsNull())

	w = blobBuilder{}
	w.header(geometry.TypePolygon, geometry.XY).u32(1).u32(4).f64(math.NaN(), 0, 1, 0, 1, 1, math.NaN(), 0)
	g, err = f.Deserialize(w.b)
	require.NoError(t, err)
	poly, err := g.AsPolygon()
	require.NoError(t, err)
	assert.True(t, poly.ExteriorRing().IsClosed())
}

func TestMultiLineStringAndMultiPolygon(t *testing.T) {
	f := newFactory(t)

	ml, err := f.CreateMultiLineString(geometry.XY, 2)
	require.NoError(t, err)
	require.NoError(t, ml.Add(lineString(t, f, geometry.XY, 0, 0, 1, 0, 0, 0)))
	require.NoError(t, ml.Add(lineString(t, f, geometry.XY, 5, 5, 6, 5, 5, 5)))
	_, g := roundTrip(t, f, ml.Geometry())
	closed, err := g.IsClosed()
	require.NoError(t, err)
	assert.True(t, closed)

	mpoly, err := f.CreateMultiPolygon(geometry.XY, 2)
	require.NoError(t, err)
	require.NoError(t, mpoly.Add(unitSquare(t, f)))
	require.NoError(t, mpoly.Add(unitSquare(t, f)))
	_, g = roundTrip(t, f, mpoly.Geometry())
	assert.Equal(t, 2, g.Dimension())
	assert.Equal(t, 10, g.NumVertices())
}

func TestZMRoundTrip(t *testing.T) {
	f := newFactory(t)

	p, err := f.CreatePoint(geometry.XYZM)
	require.NoError(t, err)
	require.NoError(t, p.Append(geometry.Vertex{X: 1, Y: 2, Z: 3, M: 4}))

	blob, g := roundTrip(t, f, p.Geometry())
	assert.Len(t, blob, 2+32)
	z, err := g.Z()
	require.NoError(t, err)
	assert.Equal(t, 3.0, z)
	m, err := g.M()
	require.NoError(t, err)
	assert.Equal(t, 4.0, m)
}

func TestDeserializeAliasesBlob(t *testing.T) {
	f := newFactory(t)

	blob, err := f.Serialize(lineString(t, f, geometry.XY, 1, 2, 3, 4).Geometry())
	require.NoError(t, err)

	g, err := f.Deserialize(blob)
	require.NoError(t, err)
	ls, err := g.AsLineString()
	require.NoError(t, err)
	assert.Same(t, &blob[6], &ls.Vertices().Bytes()[0])
	assert.ErrorIs(t, ls.Append(geometry.Vertex{}), geometry.ErrCapacityExceeded)
}

func TestPolygonRingCountOverrun(t *testing.T) {
	f := newFactory(t)

	var w blobBuilder
	w.header(geometry.TypePolygon, geometry.XY).u32(2).u32(5)
	w.f64(0, 0, 0, 1, 1, 1, 1, 0, 0, 0)

	_, err := f.Deserialize(w.b)
	assert.ErrorIs(t, err, ErrBufferOverrun)
}

func TestDeserializeRejects(t *testing.T) {
	tests := []struct {
		name string
		blob func() []byte
		want error
	}{
		{"empty", func() []byte { return nil }, ErrBufferOverrun},
		{"one byte", func() []byte { return []byte{1} }, ErrBufferOverrun},
		{"zero tag", func() []byte { return []byte{0, 0} }, ErrMalformedGeometry},
		{"unknown tag", func() []byte { return []byte{8, 0} }, ErrMalformedGeometry},
		{"reserved bits", func() []byte { return []byte{1, 0x10} }, ErrMalformedGeometry},
		{"short point", func() []byte { return []byte{1, 0, 1, 2, 3} }, ErrBufferOverrun},
		{"trailing bytes", func() []byte {
			var w blobBuilder
			return append(w.header(geometry.TypeLineString, geometry.XY).u32(1).f64(1, 1).b, 0)
		}, ErrMalformedGeometry},
		{"huge count", func() []byte {
			var w blobBuilder
			return w.header(geometry.TypeLineString, geometry.XY).u32(math.MaxUint32).f64(1, 1).b
		}, ErrBufferOverrun},
		{"huge collection", func() []byte {
			var w blobBuilder
			return w.header(geometry.TypeGeometryCollection, geometry.XY).u32(math.MaxUint32).b
		}, ErrBufferOverrun},
		{"empty ring", func() []byte {
			var w blobBuilder
			return w.header(geometry.TypePolygon, geometry.XY).u32(1).u32(0).f64(0, 0).b
		}, ErrMalformedGeometry},
		{"wrong element kind", func() []byte {
			var w blobBuilder
			return w.header(geometry.TypeMultiPoint, geometry.XY).u32(1).
				header(geometry.TypeLineString, geometry.XY).u32(1).f64(1, 1).b
		}, ErrMalformedGeometry},
		{"mixed layout", func() []byte {
			var w blobBuilder
			return w.header(geometry.TypeGeometryCollection, geometry.XY).u32(1).
				header(geometry.TypePoint, geometry.XYZ).f64(1, 2, 3).b
		}, ErrMalformedGeometry},
		{"nested box", func() []byte {
			var w blobBuilder
			return w.header(geometry.TypeGeometryCollection, geometry.XY).u32(1).
				header(geometry.TypePoint, geometry.HasBBox).f64(1, 1, 1, 1).f64(1, 1).b
		}, ErrMalformedGeometry},
		{"empty point with box", func() []byte {
			var w blobBuilder
			return w.header(geometry.TypePoint, geometry.HasBBox).f64(1, 1, 1, 1).b
		}, ErrMalformedGeometry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFactory(t)
			g, err := f.Deserialize(tt.blob())
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, g.IsNull())
		})
	}
}

func TestMaxDepth(t *testing.T) {
	var w blobBuilder
	for range 3 {
		w.header(geometry.TypeGeometryCollection, geometry.XY).u32(1)
	}
	w.header(geometry.TypeGeometryCollection, geometry.XY).u32(0)

	f := newFactory(t, WithMaxDepth(2))
	_, err := f.Deserialize(w.b)
	assert.ErrorIs(t, err, ErrMalformedGeometry)

	f = newFactory(t, WithMaxDepth(3))
	g, err := f.Deserialize(w.b)
	require.NoError(t, err)

	shallow := newFactory(t, WithMaxDepth(2))
	_, err = shallow.Serialize(g)
	assert.ErrorIs(t, err, ErrMalformedGeometry)
}

func TestStrictBoundingBox(t *testing.T) {
	var w blobBuilder
	w.header(geometry.TypeLineString, geometry.HasBBox).f64(0, 0, 9, 9).u32(2).f64(0, 0, 1, 1)

	f := newFactory(t)
	g, err := f.Deserialize(w.b)
	require.NoError(t, err)

	// Serialize recomputes the box instead of trusting the cached one.
	fixed, err := f.Serialize(g)
	require.NoError(t, err)
	box, ok, err := TryGetCachedBoundingBox(fixed)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, geometry.Box{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}, box)

	strict := newFactory(t, WithStrictBoundingBox(true))
	_, err = strict.Deserialize(w.b)
	assert.ErrorIs(t, err, ErrMalformedGeometry)
	_, err = strict.Deserialize(fixed)
	assert.NoError(t, err)
}

func TestBoundingBoxPolicy(t *testing.T) {
	t.Run("always", func(t *testing.T) {
		f := newFactory(t, WithBoundingBoxPolicy(BBoxAlways))
		p, err := f.CreatePointXY(1, 2)
		require.NoError(t, err)
		blob, err := f.Serialize(p.Geometry())
		require.NoError(t, err)
		assert.Len(t, blob, 2+32+16)
		assert.Equal(t, byte(geometry.HasBBox), blob[1])

		empty, err := f.CreateLineString(geometry.XY, 0)
		require.NoError(t, err)
		blob, err = f.Serialize(empty.Geometry())
		require.NoError(t, err)
		assert.Equal(t, []byte{2, 0, 0, 0, 0, 0}, blob)
	})

	t.Run("never", func(t *testing.T) {
		f := newFactory(t, WithBoundingBoxPolicy(BBoxNever))
		ls := lineString(t, f, geometry.XY|geometry.HasBBox, 0, 0, 1, 1)
		blob, err := f.Serialize(ls.Geometry())
		require.NoError(t, err)
		assert.Len(t, blob, 2+4+32)
		_, ok, err := TryGetCachedBoundingBox(blob)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("preserve skips non-finite", func(t *testing.T) {
		f := newFactory(t)
		assert.Equal(t, BBoxPreserve, f.BoundingBoxPolicy())
		ls := lineString(t, f, geometry.XY|geometry.HasBBox, math.NaN(), 0, 3, math.Inf(1), 2, 2)
		blob, err := f.Serialize(ls.Geometry())
		require.NoError(t, err)
		box, ok, err := TryGetCachedBoundingBox(blob)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, geometry.Box{MinX: 2, MinY: 2, MaxX: 2, MaxY: 2}, box)
	})
}

func TestSerializeInto(t *testing.T) {
	f := newFactory(t)
	g := unitSquare(t, f).Geometry()

	_, err := f.SerializeInto(func(n int) ([]byte, error) { return make([]byte, n+1), nil }, g)
	assert.ErrorIs(t, err, ErrBufferOverrun)

	slotErr := errors.New("no slot")
	_, err = f.SerializeInto(func(int) ([]byte, error) { return nil, slotErr }, g)
	assert.ErrorIs(t, err, slotErr)

	heap, err := f.Serialize(g)
	require.NoError(t, err)
	arenaBlob, err := f.SerializeInto(f.ArenaSlot(), g)
	require.NoError(t, err)
	assert.Equal(t, heap, arenaBlob)

	out, err := f.AppendSerialized([]byte{0xAA}, g)
	require.NoError(t, err)
	assert.Equal(t, byte(0xAA), out[0])
	assert.Equal(t, heap, out[1:])

	_, err = f.Serialize(geometry.Geometry{})
	assert.ErrorIs(t, err, geometry.ErrNullGeometry)

	hollow, err := f.CreatePolygon(geometry.XY, 4)
	require.NoError(t, err)
	_, err = f.Serialize(hollow.Geometry())
	assert.ErrorIs(t, err, ErrMalformedGeometry)
}

func TestResetInvalidatesViews(t *testing.T) {
	f := newFactory(t)

	blob, err := f.Serialize(unitSquare(t, f).Geometry())
	require.NoError(t, err)
	g, err := f.Deserialize(blob)
	require.NoError(t, err)
	gen := f.Generation()
	assert.Positive(t, f.Nodes())

	f.Reset()
	assert.Equal(t, gen+1, f.Generation())
	assert.Zero(t, f.Nodes())
	assert.Zero(t, f.BytesUsed())

	assert.ErrorIs(t, g.Err(), ErrStaleView)
	assert.Panics(t, func() { _ = g.NumVertices() })
	_, err = f.Serialize(g)
	assert.ErrorIs(t, err, ErrStaleView)

	g, err = f.Deserialize(blob)
	require.NoError(t, err)
	assert.NoError(t, g.Err())
}

type denyMemory struct{}

func (denyMemory) AcquireMemory(int64) error { return errors.New("over budget") }
func (denyMemory) ReleaseMemory(int64)       {}

func TestAllocationExhausted(t *testing.T) {
	f := newFactory(t, WithChunkSize(64), WithMaxChunks(1))

	_, err := f.CreateLineString(geometry.XY, 100)
	assert.ErrorIs(t, err, ErrAllocationExhausted)

	p, err := f.CreatePointXY(1, 1)
	require.NoError(t, err)
	assert.False(t, p.IsEmpty())

	f.Reset()
	_, err = f.CreateLineString(geometry.XY, 4)
	assert.NoError(t, err)

	_, err = New(WithMemoryAcquirer(denyMemory{}))
	assert.ErrorIs(t, err, ErrAllocationExhausted)
}

func TestCreateRejectsBadInput(t *testing.T) {
	f := newFactory(t)

	_, err := f.CreatePoint(geometry.Properties(0x80))
	assert.ErrorIs(t, err, ErrMalformedGeometry)
	_, err = f.CreateLineString(geometry.XY, -1)
	assert.ErrorIs(t, err, ErrMalformedGeometry)
	_, err = f.CreateCollection(geometry.XY, -1)
	assert.ErrorIs(t, err, ErrMalformedGeometry)
	_, err = f.Create(geometry.TypeInvalid, geometry.XY, 0)
	assert.ErrorIs(t, err, ErrMalformedGeometry)

	g, err := f.Create(geometry.TypeMultiPolygon, geometry.XYM, 2)
	require.NoError(t, err)
	assert.Equal(t, geometry.TypeMultiPolygon, g.Type())
	assert.True(t, g.HasM())
}

func TestHeaderFastPaths(t *testing.T) {
	f := newFactory(t)
	ls := lineString(t, f, geometry.XYZ|geometry.HasBBox, 0, 0, 4, 2)
	blob, err := f.Serialize(ls.Geometry())
	require.NoError(t, err)

	h, err := GetHeader(blob)
	require.NoError(t, err)
	assert.Equal(t, geometry.TypeLineString, h.Type)
	assert.True(t, h.Props.HasZ())

	d, err := Describe(blob)
	require.NoError(t, err)
	assert.Equal(t, Description{
		Type:    geometry.TypeLineString,
		HasZ:    true,
		HasBBox: true,
		Size:    len(blob),
		Box:     geometry.Box{MinX: 0, MinY: 0, MaxX: 4, MaxY: 2},
	}, d)
	assert.Equal(t, "LINESTRING Z, 86 bytes, BOX(0 0, 4 2)", d.String())

	_, err = GetHeader([]byte{2})
	assert.ErrorIs(t, err, ErrBufferOverrun)
	_, _, err = TryGetCachedBoundingBox([]byte{2, byte(geometry.HasBBox), 0, 0})
	assert.ErrorIs(t, err, ErrBufferOverrun)

	box, err := f.Extent(blob)
	require.NoError(t, err)
	assert.Equal(t, d.Box, box)

	plain, err := newFactory(t, WithBoundingBoxPolicy(BBoxNever)).Serialize(ls.Geometry())
	require.NoError(t, err)
	box, err = f.Extent(plain)
	require.NoError(t, err)
	assert.Equal(t, d.Box, box)
}

func TestTruncatedBlobsFail(t *testing.T) {
	f := newFactory(t)

	var blobs [][]byte
	add := func(g geometry.Geometry) {
		blob, err := f.Serialize(g)
		require.NoError(t, err)
		blobs = append(blobs, blob)
	}

	p, err := f.CreatePointXY(1, 2)
	require.NoError(t, err)
	add(p.Geometry())

	pz, err := f.CreatePoint(geometry.XYZ | geometry.HasBBox)
	require.NoError(t, err)
	pz.AppendUnsafe(geometry.Vertex{X: 1, Y: 2, Z: 3})
	add(pz.Geometry())

	add(lineString(t, f, geometry.XY|geometry.HasBBox, 0, 0, 1, 1, 2, 0).Geometry())
	add(lineString(t, f, geometry.XY).Geometry())
	add(unitSquare(t, f).Geometry())

	mp, err := f.CreateMultiPoint(geometry.XY, 2)
	require.NoError(t, err)
	e, err := f.CreatePoint(geometry.XY)
	require.NoError(t, err)
	q, err := f.CreatePointXY(3, 3)
	require.NoError(t, err)
	require.NoError(t, mp.Add(e))
	require.NoError(t, mp.Add(q))
	add(mp.Geometry())

	gc, err := f.CreateCollection(geometry.XY|geometry.HasBBox, 4)
	require.NoError(t, err)
	inner, err := f.CreateCollection(geometry.XY, 1)
	require.NoError(t, err)
	require.NoError(t, inner.Add(unitSquare(t, f).Geometry()))
	empty, err := f.CreateCollection(geometry.XY, 0)
	require.NoError(t, err)
	r, err := f.CreatePointXY(7, 7)
	require.NoError(t, err)
	require.NoError(t, gc.Add(r.Geometry()))
	require.NoError(t, gc.Add(lineString(t, f, geometry.XY, 0, 0, 5, 5).Geometry()))
	require.NoError(t, gc.Add(inner.Geometry()))
	require.NoError(t, gc.Add(empty.Geometry()))
	add(gc.Geometry())

	for _, blob := range blobs {
		h, err := GetHeader(blob)
		require.NoError(t, err)

		for n := range len(blob) {
			f.Reset()
			_, err := f.Deserialize(blob[:n])
			if n == geometry.HeaderSize && h.Type == geometry.TypePoint && !h.Props.HasBBox() {
				// A bare point header is itself the encoding of POINT EMPTY.
				assert.NoError(t, err)
				continue
			}
			require.Error(t, err, "%s truncated to %d of %d bytes", h.Type, n, len(blob))
			assert.True(t, errors.Is(err, ErrBufferOverrun) || errors.Is(err, ErrMalformedGeometry), "unexpected error %v", err)
		}

		f.Reset()
		_, err = f.Deserialize(blob)
		assert.NoError(t, err)
	}
}
