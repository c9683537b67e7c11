package geomconv

import (
	"errors"
	"fmt"

	"github.com/hupe1980/geoblob/factory"
	"github.com/hupe1980/geoblob/geometry"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// ErrUnsupportedGeometry is returned for go-geom values with no encoded form.
var ErrUnsupportedGeometry = errors.New("geomconv: unsupported geometry")

// ToGeom converts g into a go-geom value.
func ToGeom(g geometry.Geometry) (geom.T, error) {
	return geometry.Visit[geom.T](g, toGeom{})
}

// FromGeom builds t in f.
func FromGeom(f *factory.Factory, t geom.T) (geometry.Geometry, error) {
	if t == nil {
		return geometry.Geometry{}, fmt.Errorf("%w: nil", ErrUnsupportedGeometry)
	}
	props, err := propsOf(t.Layout())
	if err != nil {
		return geometry.Geometry{}, err
	}

	switch t := t.(type) {
	case *geom.Point:
		p, err := fromPoint(f, props, t)
		return p.Geometry(), err
	case *geom.LineString:
		ls, err := fromFlat(f, props, t.Layout(), t.FlatCoords())
		return ls.Geometry(), err
	case *geom.LinearRing:
		ls, err := fromFlat(f, props, t.Layout(), t.FlatCoords())
		return ls.Geometry(), err
	case *geom.Polygon:
		p, err := fromPolygon(f, props, t)
		return p.Geometry(), err
	case *geom.MultiPoint:
		mp, err := f.CreateMultiPoint(props, t.NumPoints())
		if err != nil {
			return geometry.Geometry{}, err
		}
		for i := range t.NumPoints() {
			p, err := fromPoint(f, props, t.Point(i))
			if err != nil {
				return geometry.Geometry{}, err
			}
			if err := mp.Add(p); err != nil {
				return geometry.Geometry{}, err
			}
		}
		return mp.Geometry(), nil
	case *geom.MultiLineString:
		ml, err := f.CreateMultiLineString(props, t.NumLineStrings())
		if err != nil {
			return geometry.Geometry{}, err
		}
		for i := range t.NumLineStrings() {
			ls := t.LineString(i)
			l, err := fromFlat(f, props, ls.Layout(), ls.FlatCoords())
			if err != nil {
				return geometry.Geometry{}, err
			}
			if err := ml.Add(l); err != nil {
				return geometry.Geometry{}, err
			}
		}
		return ml.Geometry(), nil
	case *geom.MultiPolygon:
		mp, err := f.CreateMultiPolygon(props, t.NumPolygons())
		if err != nil {
			return geometry.Geometry{}, err
		}
		for i := range t.NumPolygons() {
			p, err := fromPolygon(f, props, t.Polygon(i))
			if err != nil {
				return geometry.Geometry{}, err
			}
			if err := mp.Add(p); err != nil {
				return geometry.Geometry{}, err
			}
		}
		return mp.Geometry(), nil
	case *geom.GeometryCollection:
		gc, err := f.CreateCollection(props, t.NumGeoms())
		if err != nil {
			return geometry.Geometry{}, err
		}
		for _, member := range t.Geoms() {
			m, err := FromGeom(f, member)
			if err != nil {
				return geometry.Geometry{}, err
			}
			if err := gc.Add(m); err != nil {
				return geometry.Geometry{}, err
			}
		}
		return gc.Geometry(), nil
	default:
		return geometry.Geometry{}, fmt.Errorf("%w: %T", ErrUnsupportedGeometry, t)
	}
}

// ParseWKT parses well-known text into f.
func ParseWKT(f *factory.Factory, s string) (geometry.Geometry, error) {
	t, err := wkt.Unmarshal(s)
	if err != nil {
		return geometry.Geometry{}, fmt.Errorf("geomconv: parse wkt: %w", err)
	}
	return FromGeom(f, t)
}

// FormatWKT renders g as well-known text.
func FormatWKT(g geometry.Geometry) (string, error) {
	t, err := ToGeom(g)
	if err != nil {
		return "", err
	}
	return wkt.Marshal(t)
}

// ParseWKB parses little or big endian well-known binary into f.
func ParseWKB(f *factory.Factory, b []byte) (geometry.Geometry, error) {
	t, err := wkb.Unmarshal(b)
	if err != nil {
		return geometry.Geometry{}, fmt.Errorf("geomconv: parse wkb: %w", err)
	}
	return FromGeom(f, t)
}

// MarshalWKB renders g as little endian well-known binary.
func MarshalWKB(g geometry.Geometry) ([]byte, error) {
	t, err := ToGeom(g)
	if err != nil {
		return nil, err
	}
	return wkb.Marshal(t, wkb.NDR)
}

// Apply decodes blob, runs fn on its go-geom form and builds the result in f.
// A nil result from fn yields the null geometry.
func Apply(f *factory.Factory, blob []byte, fn func(geom.T) (geom.T, error)) (geometry.Geometry, error) {
	g, err := f.Deserialize(blob)
	if err != nil {
		return geometry.Geometry{}, err
	}
	in, err := ToGeom(g)
	if err != nil {
		return geometry.Geometry{}, err
	}
	out, err := fn(in)
	if err != nil {
		return geometry.Geometry{}, err
	}
	if out == nil {
		return geometry.Geometry{}, nil
	}
	return FromGeom(f, out)
}

func propsOf(l geom.Layout) (geometry.Properties, error) {
	switch l {
	case geom.NoLayout, geom.XY:
		return geometry.XY, nil
	case geom.XYZ:
		return geometry.XYZ, nil
	case geom.XYM:
		return geometry.XYM, nil
	case geom.XYZM:
		return geometry.XYZM, nil
	default:
		return 0, fmt.Errorf("%w: layout %d", ErrUnsupportedGeometry, int(l))
	}
}

func layoutOf(p geometry.Properties) geom.Layout {
	switch p.Layout() {
	case geometry.XYZ:
		return geom.XYZ
	case geometry.XYM:
		return geom.XYM
	case geometry.XYZM:
		return geom.XYZM
	default:
		return geom.XY
	}
}

func fromPoint(f *factory.Factory, props geometry.Properties, p *geom.Point) (geometry.Point, error) {
	pt, err := f.CreatePoint(props)
	if err != nil {
		return geometry.Point{}, err
	}
	if p.Empty() {
		return pt, nil
	}
	pt.AppendUnsafe(vertexAt(p.Layout(), p.FlatCoords(), 0))
	return pt, nil
}

func fromFlat(f *factory.Factory, props geometry.Properties, l geom.Layout, flat []float64) (geometry.LineString, error) {
	n := len(flat) / l.Stride()
	ls, err := f.CreateLineString(props, n)
	if err != nil {
		return geometry.LineString{}, err
	}
	for i := range n {
		ls.AppendUnsafe(vertexAt(l, flat, i))
	}
	return ls, nil
}

func fromPolygon(f *factory.Factory, props geometry.Properties, p *geom.Polygon) (geometry.Polygon, error) {
	caps := make([]int, p.NumLinearRings())
	for i := range caps {
		caps[i] = p.LinearRing(i).NumCoords()
	}
	poly, err := f.CreatePolygon(props, caps...)
	if err != nil {
		return geometry.Polygon{}, err
	}
	for i := range caps {
		ring := p.LinearRing(i)
		for j := range caps[i] {
			poly.AppendUnsafe(i, vertexAt(ring.Layout(), ring.FlatCoords(), j))
		}
	}
	return poly, nil
}

func vertexAt(l geom.Layout, flat []float64, i int) geometry.Vertex {
	c := flat[i*l.Stride():]
	v := geometry.Vertex{X: c[0], Y: c[1]}
	if z := l.ZIndex(); z >= 0 {
		v.Z = c[z]
	}
	if m := l.MIndex(); m >= 0 {
		v.M = c[m]
	}
	return v
}

func flatCoords(dst []float64, v geometry.VertexArray) []float64 {
	layout := v.Layout()
	for _, vx := range v.All() {
		dst = append(dst, vx.X, vx.Y)
		if layout.HasZ() {
			dst = append(dst, vx.Z)
		}
		if layout.HasM() {
			dst = append(dst, vx.M)
		}
	}
	return dst
}

type toGeom struct{}

func (toGeom) point(p geometry.Point) *geom.Point {
	l := layoutOf(p.Geometry().Layout())
	if p.IsEmpty() {
		return geom.NewPointEmpty(l)
	}
	return geom.NewPointFlat(l, flatCoords(nil, p.Vertices()))
}

func (toGeom) lineString(ls geometry.LineString) *geom.LineString {
	l := layoutOf(ls.Geometry().Layout())
	return geom.NewLineStringFlat(l, flatCoords(nil, ls.Vertices()))
}

func (toGeom) polygon(p geometry.Polygon) *geom.Polygon {
	l := layoutOf(p.Geometry().Layout())
	var flat []float64
	ends := make([]int, 0, p.NumRings())
	for i := range p.NumRings() {
		flat = flatCoords(flat, p.Ring(i))
		ends = append(ends, len(flat))
	}
	return geom.NewPolygonFlat(l, flat, ends)
}

func (c toGeom) VisitPoint(p geometry.Point) (geom.T, error) {
	return c.point(p), nil
}

func (c toGeom) VisitLineString(ls geometry.LineString) (geom.T, error) {
	return c.lineString(ls), nil
}

func (c toGeom) VisitPolygon(p geometry.Polygon) (geom.T, error) {
	return c.polygon(p), nil
}

func (c toGeom) VisitMultiPoint(mp geometry.MultiPoint) (geom.T, error) {
	out := geom.NewMultiPoint(layoutOf(mp.Geometry().Layout()))
	for i := range mp.Count() {
		if err := out.Push(c.point(mp.Point(i))); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c toGeom) VisitMultiLineString(ml geometry.MultiLineString) (geom.T, error) {
	out := geom.NewMultiLineString(layoutOf(ml.Geometry().Layout()))
	for i := range ml.Count() {
		if err := out.Push(c.lineString(ml.LineString(i))); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c toGeom) VisitMultiPolygon(mp geometry.MultiPolygon) (geom.T, error) {
	out := geom.NewMultiPolygon(layoutOf(mp.Geometry().Layout()))
	for i := range mp.Count() {
		if err := out.Push(c.polygon(mp.Polygon(i))); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c toGeom) VisitGeometryCollection(gc geometry.GeometryCollection) (geom.T, error) {
	out := geom.NewGeometryCollection()
	for i := range gc.Count() {
		m, err := geometry.Visit[geom.T](gc.Member(i), c)
		if err != nil {
			return nil, err
		}
		if err := out.Push(m); err != nil {
			return nil, err
		}
	}
	return out, nil
}
