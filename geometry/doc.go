// Package geometry defines the in-memory model of encoded vector geometries.
//
// # Kinds
//
// The model is a closed set of seven kinds: Point, LineString, Polygon,
// MultiPoint, MultiLineString, MultiPolygon and GeometryCollection. A
// Geometry is a small view (store, index, generation) into a per-lane Store.
// Nested structure is held as index ranges into the Store's tables, never as
// owning pointers, so traversal never copies and reference cycles cannot be
// built.
//
// # Dispatch
//
// Visit calls exactly one method of a Visitor. Because Visitor lists one
// method per kind, adding a kind breaks every implementation at compile time.
// Match offers partial dispatch with an optional Default case:
//
//	n, err := geometry.Match(g, geometry.Cases[int]{
//	    Point:   func(p geometry.Point) (int, error) { return 1, nil },
//	    Default: func(g geometry.Geometry) (int, error) { return g.NumVertices(), nil },
//	})
//
// # Lifetime
//
// Views are valid until the owning Store is reset. Every view records the
// Store generation it was created in; touching a view after Reset panics with
// a *StaleViewError, and Err reports the same condition without panicking.
//
// Vertex data is a VertexArray in the wire layout (little-endian float64
// tuples). Decoded geometries alias the input blob; built geometries own
// arena memory.
package geometry
