package factory

import (
	"fmt"

	"github.com/hupe1980/geoblob/geometry"
	"github.com/hupe1980/geoblob/internal/conv"
	"github.com/hupe1980/geoblob/internal/cursor"
)

// Deserialize decodes blob. Vertex data of the result aliases blob, which
// must stay unchanged while the result is in use.
//
// Declared counts are checked against the remaining bytes before any
// structure is reserved, so a hostile count fails with ErrBufferOverrun
// instead of allocating.
func (f *Factory) Deserialize(blob []byte) (geometry.Geometry, error) {
	d := decoder{f: f, r: cursor.NewReader(blob)}

	g, err := d.geometry(0, geometry.TypeInvalid, 0)
	if err != nil {
		return geometry.Geometry{}, err
	}
	if rest := d.r.Remaining(); rest != 0 {
		return geometry.Geometry{}, fmt.Errorf("%w: %d trailing bytes", ErrMalformedGeometry, rest)
	}

	if d.box != nil && f.opts.strictBBox {
		if got := g.Extent(); got != *d.box {
			return geometry.Geometry{}, fmt.Errorf("%w: cached %s, vertices span %s", ErrMalformedGeometry, *d.box, got)
		}
	}
	return g, nil
}

type decoder struct {
	f   *Factory
	r   *cursor.Reader
	box *geometry.Box
}

// geometry decodes one node. want is the required kind (TypeInvalid for any)
// and layout the required z/m flags of a nested node.
func (d *decoder) geometry(depth int, want geometry.Type, layout geometry.Properties) (geometry.Geometry, error) {
	if depth > d.f.opts.maxDepth {
		return geometry.Geometry{}, fmt.Errorf("%w: nesting deeper than %d", ErrMalformedGeometry, d.f.opts.maxDepth)
	}

	h, err := d.header()
	if err != nil {
		return geometry.Geometry{}, err
	}

	if depth == 0 {
		if h.Props.HasBBox() {
			b, err := readBox(d.r)
			if err != nil {
				return geometry.Geometry{}, err
			}
			d.box = &b
		}
	} else {
		if want != geometry.TypeInvalid && h.Type != want {
			return geometry.Geometry{}, fmt.Errorf("%w: %s inside %s", ErrMalformedGeometry, h.Type, want+3)
		}
		if h.Props.Layout() != layout {
			return geometry.Geometry{}, fmt.Errorf("%w: %s child in %s parent", ErrMalformedGeometry, h.Props.Layout(), layout)
		}
		if h.Props.HasBBox() {
			return geometry.Geometry{}, fmt.Errorf("%w: nested %s carries a bounding box", ErrMalformedGeometry, h.Type)
		}
	}

	switch h.Type {
	case geometry.TypePoint:
		return d.point(h.Props, depth == 0)
	case geometry.TypeLineString:
		return d.lineString(h.Props)
	case geometry.TypePolygon:
		return d.polygon(h.Props)
	default:
		return d.collection(depth, h)
	}
}

func (d *decoder) header() (geometry.Header, error) {
	if err := d.r.Require(geometry.HeaderSize); err != nil {
		return geometry.Header{}, err
	}
	tag, _ := d.r.ReadUint8()
	props, _ := d.r.ReadUint8()
	return geometry.ParseHeader(tag, props)
}

func (d *decoder) point(props geometry.Properties, root bool) (geometry.Geometry, error) {
	stride := props.VertexSize()

	var raw []byte
	if root && d.r.Remaining() == 0 {
		if d.box != nil {
			return geometry.Geometry{}, fmt.Errorf("%w: empty point with a bounding box", ErrMalformedGeometry)
		}
	} else {
		b, err := d.r.ReadBytes(stride)
		if err != nil {
			return geometry.Geometry{}, err
		}
		raw = b
	}

	verts, err := geometry.WrapVertexArray(raw, props)
	if err != nil {
		return geometry.Geometry{}, err
	}
	if !root && verts.At(0).IsNaN(props) {
		verts, _ = geometry.WrapVertexArray(nil, props)
	}

	p, err := d.f.store.NewPoint(props, verts)
	if err != nil {
		return geometry.Geometry{}, err
	}
	return p.Geometry(), nil
}

func (d *decoder) vertices(props geometry.Properties) (geometry.VertexArray, error) {
	n, err := d.count(props.VertexSize())
	if err != nil {
		return geometry.VertexArray{}, err
	}
	raw, err := d.r.ReadBytes(n * props.VertexSize())
	if err != nil {
		return geometry.VertexArray{}, err
	}
	return geometry.WrapVertexArray(raw, props)
}

// count reads a uint32 element count and checks that n elements of at least
// minSize bytes fit in the rest of the buffer.
func (d *decoder) count(minSize int) (int, error) {
	at := d.r.Offset()
	c, err := d.r.ReadUint32()
	if err != nil {
		return 0, err
	}
	n, err := conv.Uint32ToInt(c)
	if err != nil {
		return 0, fmt.Errorf("%w: count %d at offset %d", ErrBufferOverrun, c, at)
	}
	need, err := conv.MulInt(n, minSize)
	if err != nil || need > d.r.Remaining() {
		return 0, fmt.Errorf("%w: count %d at offset %d needs at least %d bytes, %d remain", ErrBufferOverrun, c, at, uint64(c)*uint64(minSize), d.r.Remaining())
	}
	return n, nil
}

func (d *decoder) lineString(props geometry.Properties) (geometry.Geometry, error) {
	verts, err := d.vertices(props)
	if err != nil {
		return geometry.Geometry{}, err
	}
	ls, err := d.f.store.NewLineString(props, verts)
	if err != nil {
		return geometry.Geometry{}, err
	}
	return ls.Geometry(), nil
}

func (d *decoder) polygon(props geometry.Properties) (geometry.Geometry, error) {
	// A ring holds a count and at least one vertex.
	n, err := d.count(4 + props.VertexSize())
	if err != nil {
		return geometry.Geometry{}, err
	}

	p, err := d.f.store.NewPolygon(props, n)
	if err != nil {
		return geometry.Geometry{}, err
	}
	for i := range n {
		ring, err := d.vertices(props)
		if err != nil {
			return geometry.Geometry{}, err
		}
		if ring.Len() == 0 {
			return geometry.Geometry{}, fmt.Errorf("%w: polygon ring %d has no vertices", ErrMalformedGeometry, i)
		}
		if !ring.IsClosed() {
			return geometry.Geometry{}, fmt.Errorf("%w: polygon ring %d is not closed", ErrMalformedGeometry, i)
		}
		if err := p.AddRing(ring); err != nil {
			return geometry.Geometry{}, err
		}
	}
	return p.Geometry(), nil
}

func (d *decoder) collection(depth int, h geometry.Header) (geometry.Geometry, error) {
	elem := h.Type.Element()
	layout := h.Props.Layout()

	n, err := d.count(minEncodedSize(elem, layout))
	if err != nil {
		return geometry.Geometry{}, err
	}

	g, err := d.f.store.NewCollection(h.Type, h.Props, n)
	if err != nil {
		return geometry.Geometry{}, err
	}
	for range n {
		c, err := d.geometry(depth+1, elem, layout)
		if err != nil {
			return geometry.Geometry{}, err
		}
		if err := d.f.store.AddChild(g, c); err != nil {
			return geometry.Geometry{}, err
		}
	}
	return g, nil
}

// minEncodedSize is the smallest nested encoding of kind t (TypeInvalid for
// any kind).
func minEncodedSize(t geometry.Type, layout geometry.Properties) int {
	switch t {
	case geometry.TypePoint:
		return geometry.HeaderSize + layout.VertexSize()
	default:
		return geometry.HeaderSize + 4
	}
}

func readBox(r *cursor.Reader) (geometry.Box, error) {
	if err := r.Require(geometry.BoxSize); err != nil {
		return geometry.Box{}, err
	}
	var v [4]float64
	for i := range v {
		v[i], _ = r.ReadFloat64()
	}
	return geometry.Box{MinX: v[0], MinY: v[1], MaxX: v[2], MaxY: v[3]}, nil
}
