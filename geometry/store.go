package geometry

import (
	"fmt"
	"math"
)

const noParent = -1

type node struct {
	verts  VertexArray // Point, LineString
	parent int32
	first  int32 // first slot in rings (Polygon) or children (collections)
	count  int32
	cap    int32
	typ    Type
	props  Properties
}

// Store holds the node tables of one execution lane.
//
// Nodes, polygon rings and child indices live in three flat tables. A parent
// reserves a contiguous slot range in the ring or child table when it is
// created; children are referenced by index. Reset truncates the tables
// (keeping their capacity) and advances the generation.
type Store struct {
	nodes    []node
	rings    []VertexArray
	children []int32
	gen      uint32
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{gen: 1}
}

// Generation returns the current generation.
func (s *Store) Generation() uint32 { return s.gen }

// Len returns the number of nodes created since the last reset.
func (s *Store) Len() int { return len(s.nodes) }

// Reset invalidates every view created so far.
func (s *Store) Reset() {
	s.gen++
	clear(s.nodes)
	s.nodes = s.nodes[:0]
	clear(s.rings)
	s.rings = s.rings[:0]
	s.children = s.children[:0]
}

func (s *Store) add(n node) Geometry {
	if len(s.nodes) >= math.MaxInt32 {
		panic("geometry: store node table full")
	}
	n.parent = noParent
	s.nodes = append(s.nodes, n)
	return Geometry{s: s, idx: int32(len(s.nodes) - 1), gen: s.gen}
}

func reserve[T any](tbl []T, n int) ([]T, int32, error) {
	if n < 0 || n > math.MaxInt32-len(tbl) {
		return tbl, 0, fmt.Errorf("%w: cannot reserve %d slots", ErrMalformedGeometry, n)
	}
	first := int32(len(tbl))
	var zero T
	for range n {
		tbl = append(tbl, zero)
	}
	return tbl, first, nil
}

// NewPoint adds a point. verts must hold zero or one vertex, or have capacity
// for one when the point is built incrementally.
func (s *Store) NewPoint(props Properties, verts VertexArray) (Point, error) {
	if verts.Layout() != props.Layout() {
		return Point{}, fmt.Errorf("%w: point is %s, vertices are %s", ErrMalformedGeometry, props.Layout(), verts.Layout())
	}
	if verts.Len() > 1 {
		return Point{}, fmt.Errorf("%w: point with %d vertices", ErrMalformedGeometry, verts.Len())
	}
	return Point{s.add(node{typ: TypePoint, props: props, verts: verts})}, nil
}

// NewLineString adds a line string over verts.
func (s *Store) NewLineString(props Properties, verts VertexArray) (LineString, error) {
	if verts.Layout() != props.Layout() {
		return LineString{}, fmt.Errorf("%w: line string is %s, vertices are %s", ErrMalformedGeometry, props.Layout(), verts.Layout())
	}
	return LineString{s.add(node{typ: TypeLineString, props: props, verts: verts})}, nil
}

// NewPolygon adds a polygon with room for rings rings, added with AddRing.
func (s *Store) NewPolygon(props Properties, rings int) (Polygon, error) {
	tbl, first, err := reserve(s.rings, rings)
	if err != nil {
		return Polygon{}, err
	}
	s.rings = tbl
	return Polygon{s.add(node{typ: TypePolygon, props: props, first: first, cap: int32(rings)})}, nil
}

// NewCollection adds a multi kind or collection with room for n children.
func (s *Store) NewCollection(t Type, props Properties, n int) (Geometry, error) {
	if !t.IsCollection() {
		return Geometry{}, typeMismatch("NewCollection", t)
	}
	tbl, first, err := reserve(s.children, n)
	if err != nil {
		return Geometry{}, err
	}
	s.children = tbl
	return s.add(node{typ: t, props: props, first: first, cap: int32(n)}), nil
}

func (s *Store) addRing(p Geometry, verts VertexArray) error {
	n := p.node()
	if verts.Layout() != n.props.Layout() {
		return fmt.Errorf("%w: polygon is %s, ring is %s", ErrMalformedGeometry, n.props.Layout(), verts.Layout())
	}
	if n.count >= n.cap {
		return fmt.Errorf("%w: polygon holds %d rings", ErrCapacityExceeded, n.cap)
	}
	s.rings[n.first+n.count] = verts
	n.count++
	return nil
}

// AddChild appends c to the multi kind or collection p. Multi kinds accept
// only their element kind, every child must share p's layout, and a node can
// have a single parent, which rules out cycles.
func (s *Store) AddChild(p, c Geometry) error {
	pn := p.node()
	if err := c.Err(); err != nil {
		return err
	}
	if c.s != s {
		return fmt.Errorf("%w: child belongs to another store", ErrMalformedGeometry)
	}
	cn := c.node()

	if elem := pn.typ.Element(); elem != TypeInvalid && cn.typ != elem {
		return fmt.Errorf("%w: %s cannot hold %s", ErrTypeMismatch, pn.typ, cn.typ)
	}
	if cn.props.Layout() != pn.props.Layout() {
		return fmt.Errorf("%w: %s is %s, child %s is %s", ErrMalformedGeometry, pn.typ, pn.props.Layout(), cn.typ, cn.props.Layout())
	}
	if cn.parent != noParent {
		return fmt.Errorf("%w: child already has a parent", ErrMalformedGeometry)
	}
	for a := p.idx; a != noParent; a = s.nodes[a].parent {
		if a == c.idx {
			return fmt.Errorf("%w: adding a geometry to its own descendant", ErrMalformedGeometry)
		}
	}
	if pn.count >= pn.cap {
		return fmt.Errorf("%w: %s holds %d children", ErrCapacityExceeded, pn.typ, pn.cap)
	}

	s.children[pn.first+pn.count] = c.idx
	pn.count++
	cn.parent = p.idx
	return nil
}
