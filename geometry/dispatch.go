package geometry

import "fmt"

// Visitor handles every geometry kind. Implementations must provide all
// methods, so a new kind cannot be added without updating every visitor.
type Visitor[R any] interface {
	VisitPoint(Point) (R, error)
	VisitLineString(LineString) (R, error)
	VisitPolygon(Polygon) (R, error)
	VisitMultiPoint(MultiPoint) (R, error)
	VisitMultiLineString(MultiLineString) (R, error)
	VisitMultiPolygon(MultiPolygon) (R, error)
	VisitGeometryCollection(GeometryCollection) (R, error)
}

// Visit routes g to the method of v that matches its kind.
func Visit[R any](g Geometry, v Visitor[R]) (R, error) {
	if err := g.Err(); err != nil {
		var zero R
		return zero, err
	}
	switch t := g.Type(); t {
	case TypePoint:
		return v.VisitPoint(Point{g})
	case TypeLineString:
		return v.VisitLineString(LineString{g})
	case TypePolygon:
		return v.VisitPolygon(Polygon{g})
	case TypeMultiPoint:
		return v.VisitMultiPoint(MultiPoint{g})
	case TypeMultiLineString:
		return v.VisitMultiLineString(MultiLineString{g})
	case TypeMultiPolygon:
		return v.VisitMultiPolygon(MultiPolygon{g})
	case TypeGeometryCollection:
		return v.VisitGeometryCollection(GeometryCollection{g})
	default:
		var zero R
		return zero, fmt.Errorf("%w: unknown kind %s", ErrMalformedGeometry, t)
	}
}

// Cases is a partial dispatch table. Nil entries fall through to Default;
// without Default they fail with ErrTypeMismatch.
type Cases[R any] struct {
	Point              func(Point) (R, error)
	LineString         func(LineString) (R, error)
	Polygon            func(Polygon) (R, error)
	MultiPoint         func(MultiPoint) (R, error)
	MultiLineString    func(MultiLineString) (R, error)
	MultiPolygon       func(MultiPolygon) (R, error)
	GeometryCollection func(GeometryCollection) (R, error)
	Default            func(Geometry) (R, error)
}

// Match routes g to the matching case of c.
func Match[R any](g Geometry, c Cases[R]) (R, error) {
	return Visit[R](g, cases[R](c))
}

type cases[R any] Cases[R]

func (c cases[R]) fallback(g Geometry) (R, error) {
	if c.Default != nil {
		return c.Default(g)
	}
	var zero R
	return zero, typeMismatch("Match", g.Type())
}

func (c cases[R]) VisitPoint(p Point) (R, error) {
	if c.Point == nil {
		return c.fallback(p.g)
	}
	return c.Point(p)
}

func (c cases[R]) VisitLineString(l LineString) (R, error) {
	if c.LineString == nil {
		return c.fallback(l.g)
	}
	return c.LineString(l)
}

func (c cases[R]) VisitPolygon(p Polygon) (R, error) {
	if c.Polygon == nil {
		return c.fallback(p.g)
	}
	return c.Polygon(p)
}

func (c cases[R]) VisitMultiPoint(m MultiPoint) (R, error) {
	if c.MultiPoint == nil {
		return c.fallback(m.g)
	}
	return c.MultiPoint(m)
}

func (c cases[R]) VisitMultiLineString(m MultiLineString) (R, error) {
	if c.MultiLineString == nil {
		return c.fallback(m.g)
	}
	return c.MultiLineString(m)
}

func (c cases[R]) VisitMultiPolygon(m MultiPolygon) (R, error) {
	if c.MultiPolygon == nil {
		return c.fallback(m.g)
	}
	return c.MultiPolygon(m)
}

func (c cases[R]) VisitGeometryCollection(gc GeometryCollection) (R, error) {
	if c.GeometryCollection == nil {
		return c.fallback(gc.g)
	}
	return c.GeometryCollection(gc)
}
