package geometry

import "fmt"

// Point is a view of a POINT node.
type Point struct{ g Geometry }

// Geometry returns the untyped view.
func (p Point) Geometry() Geometry { return p.g }

// IsEmpty reports whether the point has no vertex.
func (p Point) IsEmpty() bool { return p.g.node().verts.Len() == 0 }

// Vertex returns the point's vertex, or false when the point is empty.
func (p Point) Vertex() (Vertex, bool) {
	v := p.g.node().verts
	if v.Len() == 0 {
		return Vertex{}, false
	}
	return v.At(0), true
}

// Vertices returns the zero- or one-element vertex array.
func (p Point) Vertices() VertexArray { return p.g.node().verts }

// AppendUnsafe sets the vertex of an empty, builder-owned point.
func (p Point) AppendUnsafe(v Vertex) { p.g.node().verts.AppendUnsafe(v) }

// Append sets the vertex of an empty point, failing when it already has one
// or its storage is read-only.
func (p Point) Append(v Vertex) error {
	n := p.g.node()
	if n.verts.Len() > 0 {
		return fmt.Errorf("%w: point already has a vertex", ErrCapacityExceeded)
	}
	return n.verts.Append(v)
}

// LineString is a view of a LINESTRING node.
type LineString struct{ g Geometry }

// Geometry returns the untyped view.
func (l LineString) Geometry() Geometry { return l.g }

// NumVertices returns the number of vertices.
func (l LineString) NumVertices() int { return l.g.node().verts.Len() }

// Vertex returns vertex i.
func (l LineString) Vertex(i int) Vertex { return l.g.node().verts.At(i) }

// Vertices returns the vertex array.
func (l LineString) Vertices() VertexArray { return l.g.node().verts }

// IsClosed reports whether the line is non-empty and ends where it starts.
func (l LineString) IsClosed() bool { return l.g.node().verts.IsClosed() }

// AppendUnsafe appends a vertex without a capacity check.
func (l LineString) AppendUnsafe(v Vertex) { l.g.node().verts.AppendUnsafe(v) }

// Append appends a vertex, failing when the buffer is full.
func (l LineString) Append(v Vertex) error { return l.g.node().verts.Append(v) }

// Polygon is a view of a POLYGON node. Ring 0 is the exterior shell, the
// remaining rings are holes.
type Polygon struct{ g Geometry }

// Geometry returns the untyped view.
func (p Polygon) Geometry() Geometry { return p.g }

// NumRings returns the number of rings, exterior included.
func (p Polygon) NumRings() int { return int(p.g.node().count) }

// Ring returns ring i.
func (p Polygon) Ring(i int) VertexArray {
	n := p.g.node()
	if i < 0 || i >= int(n.count) {
		panic("geometry: ring index out of range")
	}
	return p.g.s.rings[int(n.first)+i]
}

// ExteriorRing returns ring 0, or an empty array for an empty polygon.
func (p Polygon) ExteriorRing() VertexArray {
	if p.NumRings() == 0 {
		return VertexArray{layout: p.g.Layout()}
	}
	return p.Ring(0)
}

// NInteriorRings returns the number of holes.
func (p Polygon) NInteriorRings() int { return max(p.NumRings()-1, 0) }

// InteriorRing returns hole i (ring i+1).
func (p Polygon) InteriorRing(i int) VertexArray { return p.Ring(i + 1) }

// AddRing appends a ring.
func (p Polygon) AddRing(verts VertexArray) error { return p.g.s.addRing(p.g, verts) }

// AppendUnsafe appends a vertex to ring i without a capacity check.
func (p Polygon) AppendUnsafe(ring int, v Vertex) {
	n := p.g.node()
	if ring < 0 || ring >= int(n.count) {
		panic("geometry: ring index out of range")
	}
	p.g.s.rings[int(n.first)+ring].AppendUnsafe(v)
}

// Append appends a vertex to ring i.
func (p Polygon) Append(ring int, v Vertex) error {
	n := p.g.node()
	if ring < 0 || ring >= int(n.count) {
		return fmt.Errorf("geometry: ring index %d out of range [0,%d)", ring, n.count)
	}
	return p.g.s.rings[int(n.first)+ring].Append(v)
}

func (g Geometry) childAt(i int) Geometry {
	n := g.node()
	if i < 0 || i >= int(n.count) {
		panic("geometry: child index out of range")
	}
	return g.s.child(n, int32(i), g.gen)
}

// MultiPoint is a view of a MULTIPOINT node.
type MultiPoint struct{ g Geometry }

// Geometry returns the untyped view.
func (m MultiPoint) Geometry() Geometry { return m.g }

// Count returns the number of points.
func (m MultiPoint) Count() int { return int(m.g.node().count) }

// Point returns point i.
func (m MultiPoint) Point(i int) Point { return Point{m.g.childAt(i)} }

// Add appends a point.
func (m MultiPoint) Add(p Point) error { return m.g.s.AddChild(m.g, p.g) }

// MultiLineString is a view of a MULTILINESTRING node.
type MultiLineString struct{ g Geometry }

// Geometry returns the untyped view.
func (m MultiLineString) Geometry() Geometry { return m.g }

// Count returns the number of line strings.
func (m MultiLineString) Count() int { return int(m.g.node().count) }

// LineString returns line string i.
func (m MultiLineString) LineString(i int) LineString { return LineString{m.g.childAt(i)} }

// Add appends a line string.
func (m MultiLineString) Add(l LineString) error { return m.g.s.AddChild(m.g, l.g) }

// IsClosed reports whether there is at least one line and every line is closed.
func (m MultiLineString) IsClosed() bool {
	n := m.Count()
	if n == 0 {
		return false
	}
	for i := range n {
		if !m.LineString(i).IsClosed() {
			return false
		}
	}
	return true
}

// MultiPolygon is a view of a MULTIPOLYGON node.
type MultiPolygon struct{ g Geometry }

// Geometry returns the untyped view.
func (m MultiPolygon) Geometry() Geometry { return m.g }

// Count returns the number of polygons.
func (m MultiPolygon) Count() int { return int(m.g.node().count) }

// Polygon returns polygon i.
func (m MultiPolygon) Polygon(i int) Polygon { return Polygon{m.g.childAt(i)} }

// Add appends a polygon.
func (m MultiPolygon) Add(p Polygon) error { return m.g.s.AddChild(m.g, p.g) }

// GeometryCollection is a view of a GEOMETRYCOLLECTION node.
type GeometryCollection struct{ g Geometry }

// Geometry returns the untyped view.
func (c GeometryCollection) Geometry() Geometry { return c.g }

// Count returns the number of members.
func (c GeometryCollection) Count() int { return int(c.g.node().count) }

// Member returns member i.
func (c GeometryCollection) Member(i int) Geometry { return c.g.childAt(i) }

// Add appends a member of any kind.
func (c GeometryCollection) Add(g Geometry) error { return c.g.s.AddChild(c.g, g) }
