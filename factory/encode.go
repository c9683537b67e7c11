package factory

import (
	"fmt"
	"math"
	"slices"

	"github.com/hupe1980/geoblob/geometry"
	"github.com/hupe1980/geoblob/internal/conv"
	"github.com/hupe1980/geoblob/internal/cursor"
)

// Slot hands out the output buffer for SerializeInto. It must return exactly
// size bytes.
type Slot func(size int) ([]byte, error)

// HeapSlot allocates the output on the Go heap.
func HeapSlot(size int) ([]byte, error) {
	return make([]byte, size), nil
}

// ArenaSlot allocates the output from the factory's arena, so it shares the
// lifetime of the factory's views.
func (f *Factory) ArenaSlot() Slot {
	return f.arena.AllocBytes
}

// SerializedSize returns the encoded size of g under the factory's box policy.
func (f *Factory) SerializedSize(g geometry.Geometry) (int, error) {
	if err := g.Err(); err != nil {
		return 0, err
	}
	var s sizer
	if err := f.encode(&s, g, 0); err != nil {
		return 0, err
	}
	return s.n, nil
}

// SerializeInto sizes g, asks slot for exactly that many bytes and writes
// the encoding into them.
func (f *Factory) SerializeInto(slot Slot, g geometry.Geometry) ([]byte, error) {
	size, err := f.SerializedSize(g)
	if err != nil {
		return nil, err
	}
	buf, err := slot(size)
	if err != nil {
		return nil, err
	}
	if len(buf) != size {
		return nil, fmt.Errorf("%w: slot returned %d bytes, need %d", ErrBufferOverrun, len(buf), size)
	}
	if err := f.write(buf, g); err != nil {
		return nil, err
	}
	return buf, nil
}

// Serialize encodes g into a new heap buffer.
func (f *Factory) Serialize(g geometry.Geometry) ([]byte, error) {
	return f.SerializeInto(HeapSlot, g)
}

// AppendSerialized appends the encoding of g to dst.
func (f *Factory) AppendSerialized(dst []byte, g geometry.Geometry) ([]byte, error) {
	size, err := f.SerializedSize(g)
	if err != nil {
		return dst, err
	}
	n := len(dst)
	dst = slices.Grow(dst, size)[:n+size]
	if err := f.write(dst[n:], g); err != nil {
		return dst[:n], err
	}
	return dst, nil
}

func (f *Factory) write(buf []byte, g geometry.Geometry) error {
	w := writer{w: cursor.NewWriter(buf)}
	if err := f.encode(&w, g, 0); err != nil {
		return err
	}
	if w.w.Remaining() != 0 {
		return fmt.Errorf("%w: encoder left %d of %d bytes unwritten", ErrMalformedGeometry, w.w.Remaining(), len(buf))
	}
	return nil
}

// emitter receives the encoding of a geometry. The sizer and the writer
// implement it, so both passes share encode and cannot diverge.
type emitter interface {
	header(h geometry.Header) error
	box(b geometry.Box) error
	count(n int) error
	vertices(v geometry.VertexArray) error
	nanVertex(layout geometry.Properties) error
}

func (f *Factory) writeBox(h geometry.Header) bool {
	switch f.opts.bboxPolicy {
	case BBoxAlways:
		return true
	case BBoxNever:
		return false
	default:
		return h.Props.HasBBox()
	}
}

func (f *Factory) encode(e emitter, g geometry.Geometry, depth int) error {
	if depth > f.opts.maxDepth {
		return fmt.Errorf("%w: nesting deeper than %d", ErrMalformedGeometry, f.opts.maxDepth)
	}

	h := g.Header()
	h.Props = h.Props.Layout()

	var box geometry.Box
	if depth == 0 && f.writeBox(g.Header()) {
		// Recomputed on every write so a cached box is never stale.
		if box = g.Extent(); !box.IsEmpty() {
			h.Props |= geometry.HasBBox
		}
	}

	if err := e.header(h); err != nil {
		return err
	}
	if h.Props.HasBBox() {
		if err := e.box(box); err != nil {
			return err
		}
	}

	switch h.Type {
	case geometry.TypePoint:
		p, _ := g.AsPoint()
		if depth > 0 {
			// An all-NaN vertex is how a nested empty point is framed.
			if p.IsEmpty() {
				return e.nanVertex(h.Props)
			}
			if v, _ := p.Vertex(); v.IsNaN(h.Props) {
				return fmt.Errorf("%w: nested point with all-NaN vertex is indistinguishable from an empty point", ErrMalformedGeometry)
			}
		}
		return e.vertices(p.Vertices())
	case geometry.TypeLineString:
		ls, _ := g.AsLineString()
		if err := e.count(ls.NumVertices()); err != nil {
			return err
		}
		return e.vertices(ls.Vertices())
	case geometry.TypePolygon:
		p, _ := g.AsPolygon()
		if err := e.count(p.NumRings()); err != nil {
			return err
		}
		for i := range p.NumRings() {
			ring := p.Ring(i)
			if ring.Len() == 0 {
				return fmt.Errorf("%w: polygon ring %d has no vertices", ErrMalformedGeometry, i)
			}
			if !ring.IsClosed() {
				return fmt.Errorf("%w: polygon ring %d is not closed", ErrMalformedGeometry, i)
			}
			if err := e.count(ring.Len()); err != nil {
				return err
			}
			if err := e.vertices(ring); err != nil {
				return err
			}
		}
		return nil
	default:
		n, err := g.Count()
		if err != nil {
			return err
		}
		if err := e.count(n); err != nil {
			return err
		}
		for c := range g.Children() {
			if err := f.encode(e, c, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
}

type sizer struct {
	n int
}

func (s *sizer) header(geometry.Header) error {
	s.n += geometry.HeaderSize
	return nil
}

func (s *sizer) box(geometry.Box) error {
	s.n += geometry.BoxSize
	return nil
}

func (s *sizer) count(n int) error {
	if _, err := conv.IntToUint32(n); err != nil {
		return fmt.Errorf("%w: count %d does not fit the wire format", ErrMalformedGeometry, n)
	}
	s.n += 4
	return nil
}

func (s *sizer) vertices(v geometry.VertexArray) error {
	s.n += len(v.Bytes())
	return nil
}

func (s *sizer) nanVertex(layout geometry.Properties) error {
	s.n += layout.VertexSize()
	return nil
}

type writer struct {
	w *cursor.Writer
}

func (w *writer) header(h geometry.Header) error {
	if err := w.w.WriteUint8(uint8(h.Type)); err != nil {
		return err
	}
	return w.w.WriteUint8(uint8(h.Props))
}

func (w *writer) box(b geometry.Box) error {
	for _, v := range [4]float64{b.MinX, b.MinY, b.MaxX, b.MaxY} {
		if err := w.w.WriteFloat64(v); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) count(n int) error {
	c, err := conv.IntToUint32(n)
	if err != nil {
		return fmt.Errorf("%w: count %d does not fit the wire format", ErrMalformedGeometry, n)
	}
	return w.w.WriteUint32(c)
}

// vertices copies the run as is: VertexArray already holds the wire layout.
func (w *writer) vertices(v geometry.VertexArray) error {
	return w.w.WriteBytes(v.Bytes())
}

func (w *writer) nanVertex(layout geometry.Properties) error {
	for range layout.Ordinates() {
		if err := w.w.WriteFloat64(math.NaN()); err != nil {
			return err
		}
	}
	return nil
}
