package factory

import (
	"fmt"

	"github.com/hupe1980/geoblob/geometry"
	"github.com/hupe1980/geoblob/internal/conv"
)

// AllocVertices returns an empty arena-backed vertex array with room for
// capacity vertices.
func (f *Factory) AllocVertices(props geometry.Properties, capacity int) (geometry.VertexArray, error) {
	if err := props.Validate(); err != nil {
		return geometry.VertexArray{}, err
	}
	if capacity < 0 {
		return geometry.VertexArray{}, fmt.Errorf("%w: negative capacity %d", ErrMalformedGeometry, capacity)
	}
	size, err := conv.MulInt(capacity, props.VertexSize())
	if err != nil {
		return geometry.VertexArray{}, fmt.Errorf("%w: %d vertices", ErrAllocationExhausted, capacity)
	}
	buf, err := f.arena.AllocBytes(size)
	if err != nil {
		return geometry.VertexArray{}, err
	}
	return geometry.NewVertexArray(buf, props), nil
}

// CreatePoint returns an empty point with room for its vertex.
func (f *Factory) CreatePoint(props geometry.Properties) (geometry.Point, error) {
	verts, err := f.AllocVertices(props, 1)
	if err != nil {
		return geometry.Point{}, err
	}
	return f.store.NewPoint(props, verts)
}

// CreatePointXY returns a 2D point at (x, y).
func (f *Factory) CreatePointXY(x, y float64) (geometry.Point, error) {
	p, err := f.CreatePoint(geometry.XY)
	if err != nil {
		return geometry.Point{}, err
	}
	p.AppendUnsafe(geometry.Vertex{X: x, Y: y})
	return p, nil
}

// CreateLineString returns an empty line string with room for capacity
// vertices.
func (f *Factory) CreateLineString(props geometry.Properties, capacity int) (geometry.LineString, error) {
	verts, err := f.AllocVertices(props, capacity)
	if err != nil {
		return geometry.LineString{}, err
	}
	return f.store.NewLineString(props, verts)
}

// CreatePolygon returns a polygon with one empty ring per entry of
// ringCapacities, each with room for that many vertices.
func (f *Factory) CreatePolygon(props geometry.Properties, ringCapacities ...int) (geometry.Polygon, error) {
	if err := props.Validate(); err != nil {
		return geometry.Polygon{}, err
	}
	p, err := f.store.NewPolygon(props, len(ringCapacities))
	if err != nil {
		return geometry.Polygon{}, err
	}
	for _, c := range ringCapacities {
		ring, err := f.AllocVertices(props, c)
		if err != nil {
			return geometry.Polygon{}, err
		}
		if err := p.AddRing(ring); err != nil {
			return geometry.Polygon{}, err
		}
	}
	return p, nil
}

func (f *Factory) createCollection(t geometry.Type, props geometry.Properties, n int) (geometry.Geometry, error) {
	if err := props.Validate(); err != nil {
		return geometry.Geometry{}, err
	}
	if n < 0 {
		return geometry.Geometry{}, fmt.Errorf("%w: negative capacity %d", ErrMalformedGeometry, n)
	}
	return f.store.NewCollection(t, props, n)
}

// CreateMultiPoint returns a multi point with room for n points.
func (f *Factory) CreateMultiPoint(props geometry.Properties, n int) (geometry.MultiPoint, error) {
	g, err := f.createCollection(geometry.TypeMultiPoint, props, n)
	if err != nil {
		return geometry.MultiPoint{}, err
	}
	return g.AsMultiPoint()
}

// CreateMultiLineString returns a multi line string with room for n lines.
func (f *Factory) CreateMultiLineString(props geometry.Properties, n int) (geometry.MultiLineString, error) {
	g, err := f.createCollection(geometry.TypeMultiLineString, props, n)
	if err != nil {
		return geometry.MultiLineString{}, err
	}
	return g.AsMultiLineString()
}

// CreateMultiPolygon returns a multi polygon with room for n polygons.
func (f *Factory) CreateMultiPolygon(props geometry.Properties, n int) (geometry.MultiPolygon, error) {
	g, err := f.createCollection(geometry.TypeMultiPolygon, props, n)
	if err != nil {
		return geometry.MultiPolygon{}, err
	}
	return g.AsMultiPolygon()
}

// CreateCollection returns a geometry collection with room for n members.
func (f *Factory) CreateCollection(props geometry.Properties, n int) (geometry.GeometryCollection, error) {
	g, err := f.createCollection(geometry.TypeGeometryCollection, props, n)
	if err != nil {
		return geometry.GeometryCollection{}, err
	}
	return g.AsGeometryCollection()
}

// Create returns an empty geometry of kind t with room for n children, rings
// or vertices, whichever t holds. Polygon rings are added by the caller.
func (f *Factory) Create(t geometry.Type, props geometry.Properties, n int) (geometry.Geometry, error) {
	switch t {
	case geometry.TypePoint:
		p, err := f.CreatePoint(props)
		return p.Geometry(), err
	case geometry.TypeLineString:
		ls, err := f.CreateLineString(props, n)
		return ls.Geometry(), err
	case geometry.TypePolygon:
		if err := props.Validate(); err != nil {
			return geometry.Geometry{}, err
		}
		p, err := f.store.NewPolygon(props, n)
		return p.Geometry(), err
	default:
		if !t.IsCollection() {
			return geometry.Geometry{}, fmt.Errorf("%w: unknown kind %s", ErrMalformedGeometry, t)
		}
		return f.createCollection(t, props, n)
	}
}
