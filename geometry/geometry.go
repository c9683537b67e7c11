package geometry

import (
	"fmt"
	"iter"
)

// Geometry is a view of one node in a Store. The zero value is NULL, which is
// distinct from every empty geometry.
type Geometry struct {
	s   *Store
	idx int32
	gen uint32
}

// IsNull reports whether g is the zero (NULL) geometry.
func (g Geometry) IsNull() bool { return g.s == nil }

// Err reports why g cannot be read: ErrNullGeometry, a *StaleViewError, or nil.
func (g Geometry) Err() error {
	if g.s == nil {
		return ErrNullGeometry
	}
	if g.gen != g.s.gen {
		return &StaleViewError{ViewGeneration: g.gen, StoreGeneration: g.s.gen}
	}
	return nil
}

func (g Geometry) node() *node {
	if err := g.Err(); err != nil {
		panic(err)
	}
	return &g.s.nodes[g.idx]
}

// Type returns the kind of g, or TypeInvalid for NULL.
func (g Geometry) Type() Type {
	if g.s == nil {
		return TypeInvalid
	}
	return g.node().typ
}

// Properties returns the flag byte g was built or decoded with.
func (g Geometry) Properties() Properties { return g.node().props }

// Header returns the type tag and flags of g.
func (g Geometry) Header() Header {
	n := g.node()
	return Header{Type: n.typ, Props: n.props}
}

// Layout returns the z/m flags of g.
func (g Geometry) Layout() Properties { return g.node().props.Layout() }

// HasZ reports whether vertices carry a z ordinate.
func (g Geometry) HasZ() bool { return g.node().props.HasZ() }

// HasM reports whether vertices carry an m ordinate.
func (g Geometry) HasM() bool { return g.node().props.HasM() }

// Dimension returns the topological dimension: 0 for points, 1 for lines,
// 2 for polygons and the maximum over the children of a collection
// (0 when it has none).
func (g Geometry) Dimension() int {
	n := g.node()
	switch n.typ {
	case TypePoint, TypeMultiPoint:
		return 0
	case TypeLineString, TypeMultiLineString:
		return 1
	case TypePolygon, TypeMultiPolygon:
		return 2
	case TypeGeometryCollection:
		d := 0
		for c := range g.Children() {
			d = max(d, c.Dimension())
		}
		return d
	default:
		panic(fmt.Sprintf("geometry: invalid node type %s", n.typ))
	}
}

// IsEmpty reports whether g contains no vertex at all. A polygon with at
// least one ring is never empty; a collection is empty when every child is.
func (g Geometry) IsEmpty() bool {
	n := g.node()
	switch n.typ {
	case TypePoint, TypeLineString:
		return n.verts.Len() == 0
	case TypePolygon:
		return n.count == 0
	default:
		for c := range g.Children() {
			if !c.IsEmpty() {
				return false
			}
		}
		return true
	}
}

// Count returns the number of direct children of a multi kind or collection.
func (g Geometry) Count() (int, error) {
	n := g.node()
	if !n.typ.IsCollection() {
		return 0, typeMismatch("Count", n.typ)
	}
	return int(n.count), nil
}

// IsClosed reports whether a LineString, or every component of a
// MultiLineString, starts and ends on the same vertex. Empty inputs are not
// closed.
func (g Geometry) IsClosed() (bool, error) {
	switch t := g.Type(); t {
	case TypeLineString:
		return LineString{g}.IsClosed(), nil
	case TypeMultiLineString:
		return MultiLineString{g}.IsClosed(), nil
	default:
		return false, typeMismatch("IsClosed", t)
	}
}

// NumVertices returns the total number of vertices in g.
func (g Geometry) NumVertices() int {
	total := 0
	for v := range g.VertexArrays() {
		total += v.Len()
	}
	return total
}

// Extent returns the box of every finite vertex in g.
func (g Geometry) Extent() Box {
	b := EmptyBox()
	for v := range g.VertexArrays() {
		b = b.Union(v.Extent())
	}
	return b
}

// X returns the x ordinate of a non-empty Point.
func (g Geometry) X() (float64, error) {
	v, err := g.pointVertex("X")
	return v.X, err
}

// Y returns the y ordinate of a non-empty Point.
func (g Geometry) Y() (float64, error) {
	v, err := g.pointVertex("Y")
	return v.Y, err
}

// Z returns the z ordinate of a non-empty Point with a z layout.
func (g Geometry) Z() (float64, error) {
	v, err := g.pointVertex("Z")
	if err == nil && !g.HasZ() {
		return 0, typeMismatch("Z", g.Type())
	}
	return v.Z, err
}

// M returns the m ordinate of a non-empty Point with an m layout.
func (g Geometry) M() (float64, error) {
	v, err := g.pointVertex("M")
	if err == nil && !g.HasM() {
		return 0, typeMismatch("M", g.Type())
	}
	return v.M, err
}

func (g Geometry) pointVertex(op string) (Vertex, error) {
	p, err := g.AsPoint()
	if err != nil {
		return Vertex{}, typeMismatch(op, g.Type())
	}
	v, ok := p.Vertex()
	if !ok {
		return Vertex{}, fmt.Errorf("%w: %s of an empty point", ErrTypeMismatch, op)
	}
	return v, nil
}

// Children iterates over the direct children of a multi kind or collection.
// It yields nothing for other kinds.
func (g Geometry) Children() iter.Seq[Geometry] {
	return func(yield func(Geometry) bool) {
		n := g.node()
		if !n.typ.IsCollection() {
			return
		}
		for i := range n.count {
			if !yield(g.s.child(n, i, g.gen)) {
				return
			}
		}
	}
}

func (s *Store) child(n *node, i int32, gen uint32) Geometry {
	return Geometry{s: s, idx: s.children[n.first+i], gen: gen}
}

// VertexArrays iterates over every vertex run in g in encoding order: a
// point's or line's vertices, each polygon ring, then the children of
// collections depth-first.
func (g Geometry) VertexArrays() iter.Seq[VertexArray] {
	return func(yield func(VertexArray) bool) {
		g.eachArray(yield)
	}
}

func (g Geometry) eachArray(yield func(VertexArray) bool) bool {
	n := g.node()
	switch n.typ {
	case TypePoint, TypeLineString:
		return yield(n.verts)
	case TypePolygon:
		for i := range n.count {
			if !yield(g.s.rings[n.first+i]) {
				return false
			}
		}
		return true
	default:
		for c := range g.Children() {
			if !c.eachArray(yield) {
				return false
			}
		}
		return true
	}
}

// Equal reports whether g and o have the same kinds, nesting, layout and
// bit-identical coordinates. The HasBBox flag is ignored.
func (g Geometry) Equal(o Geometry) bool {
	if g.IsNull() || o.IsNull() {
		return g.IsNull() && o.IsNull()
	}
	gn, on := g.node(), o.node()
	if gn.typ != on.typ || gn.props.Layout() != on.props.Layout() {
		return false
	}
	switch gn.typ {
	case TypePoint, TypeLineString:
		return gn.verts.Equal(on.verts)
	case TypePolygon:
		if gn.count != on.count {
			return false
		}
		for i := range gn.count {
			if !g.s.rings[gn.first+i].Equal(o.s.rings[on.first+i]) {
				return false
			}
		}
		return true
	default:
		if gn.count != on.count {
			return false
		}
		for i := range gn.count {
			if !g.s.child(gn, i, g.gen).Equal(o.s.child(on, i, o.gen)) {
				return false
			}
		}
		return true
	}
}

func (g Geometry) String() string {
	if err := g.Err(); err != nil {
		return err.Error()
	}
	n := g.node()
	layout := ""
	if l := n.props.Layout(); l != XY {
		layout = " " + l.String()
	}
	if g.IsEmpty() {
		return n.typ.String() + layout + " EMPTY"
	}
	return fmt.Sprintf("%s%s (%d vertices)", n.typ, layout, g.NumVertices())
}

// AsPoint returns g as a Point view.
func (g Geometry) AsPoint() (Point, error) {
	if t := g.Type(); t != TypePoint {
		return Point{}, typeMismatch("AsPoint", t)
	}
	return Point{g}, nil
}

// AsLineString returns g as a LineString view.
func (g Geometry) AsLineString() (LineString, error) {
	if t := g.Type(); t != TypeLineString {
		return LineString{}, typeMismatch("AsLineString", t)
	}
	return LineString{g}, nil
}

// AsPolygon returns g as a Polygon view.
func (g Geometry) AsPolygon() (Polygon, error) {
	if t := g.Type(); t != TypePolygon {
		return Polygon{}, typeMismatch("AsPolygon", t)
	}
	return Polygon{g}, nil
}

// AsMultiPoint returns g as a MultiPoint view.
func (g Geometry) AsMultiPoint() (MultiPoint, error) {
	if t := g.Type(); t != TypeMultiPoint {
		return MultiPoint{}, typeMismatch("AsMultiPoint", t)
	}
	return MultiPoint{g}, nil
}

// AsMultiLineString returns g as a MultiLineString view.
func (g Geometry) AsMultiLineString() (MultiLineString, error) {
	if t := g.Type(); t != TypeMultiLineString {
		return MultiLineString{}, typeMismatch("AsMultiLineString", t)
	}
	return MultiLineString{g}, nil
}

// AsMultiPolygon returns g as a MultiPolygon view.
func (g Geometry) AsMultiPolygon() (MultiPolygon, error) {
	if t := g.Type(); t != TypeMultiPolygon {
		return MultiPolygon{}, typeMismatch("AsMultiPolygon", t)
	}
	return MultiPolygon{g}, nil
}

// AsGeometryCollection returns g as a GeometryCollection view.
func (g Geometry) AsGeometryCollection() (GeometryCollection, error) {
	if t := g.Type(); t != TypeGeometryCollection {
		return GeometryCollection{}, typeMismatch("AsGeometryCollection", t)
	}
	return GeometryCollection{g}, nil
}
