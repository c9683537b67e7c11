// Package geomconv bridges encoded geometries and github.com/twpayne/go-geom.
//
// External algorithms (buffering, hulls, simplification) operate on go-geom
// values. Apply decodes a blob, hands the go-geom form to such an algorithm
// and rebuilds the result in the caller's factory:
//
//	out, err := geomconv.Apply(f, blob, func(t geom.T) (geom.T, error) {
//	    return t.Bounds().Polygon(), nil
//	})
//
// WKT and WKB are supported through go-geom's encoders.
package geomconv
