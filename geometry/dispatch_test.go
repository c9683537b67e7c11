package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countVisitor struct{}

func (countVisitor) VisitPoint(Point) (int, error)                     { return 1, nil }
func (countVisitor) VisitLineString(LineString) (int, error)           { return 2, nil }
func (countVisitor) VisitPolygon(Polygon) (int, error)                 { return 3, nil }
func (countVisitor) VisitMultiPoint(MultiPoint) (int, error)           { return 4, nil }
func (countVisitor) VisitMultiLineString(MultiLineString) (int, error) { return 5, nil }
func (countVisitor) VisitMultiPolygon(MultiPolygon) (int, error)       { return 6, nil }
func (countVisitor) VisitGeometryCollection(GeometryCollection) (int, error) {
	return 7, nil
}

func oneOfEach(t *testing.T, s *Store) []Geometry {
	t.Helper()

	pt, err := s.NewPoint(XY, verts(t, XY))
	require.NoError(t, err)
	ls, err := s.NewLineString(XY, verts(t, XY))
	require.NoError(t, err)
	poly, err := s.NewPolygon(XY, 0)
	require.NoError(t, err)

	out := []Geometry{pt.Geometry(), ls.Geometry(), poly.Geometry()}
	for _, typ := range []Type{TypeMultiPoint, TypeMultiLineString, TypeMultiPolygon, TypeGeometryCollection} {
		g, err := s.NewCollection(typ, XY, 0)
		require.NoError(t, err)
		out = append(out, g)
	}
	return out
}

func TestVisit(t *testing.T) {
	s := NewStore()
	for _, g := range oneOfEach(t, s) {
		n, err := Visit[int](g, countVisitor{})
		require.NoError(t, err)
		assert.Equal(t, int(g.Type()), n)
	}

	_, err := Visit[int](Geometry{}, countVisitor{})
	assert.ErrorIs(t, err, ErrNullGeometry)
}

func TestMatch(t *testing.T) {
	s := NewStore()
	all := oneOfEach(t, s)

	partial := Cases[string]{
		Point:   func(Point) (string, error) { return "point", nil },
		Polygon: func(Polygon) (string, error) { return "polygon", nil },
	}

	got, err := Match(all[0], partial)
	require.NoError(t, err)
	assert.Equal(t, "point", got)

	got, err = Match(all[2], partial)
	require.NoError(t, err)
	assert.Equal(t, "polygon", got)

	_, err = Match(all[1], partial)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	partial.Default = func(g Geometry) (string, error) { return g.Type().String(), nil }
	got, err = Match(all[6], partial)
	require.NoError(t, err)
	assert.Equal(t, "GEOMETRYCOLLECTION", got)
}
