// Package testutil provides testing utilities for geoblob.
//
// This package is intended for use in tests and benchmarks only.
// It builds random geometries and columns through a factory from a seeded,
// thread-safe RNG, so property tests are reproducible.
//
//	rng := testutil.NewRNG(seed)
//	g, err := rng.Geometry(f, testutil.GeometryOptions{MaxDepth: 3})
//	col, err := rng.Column(f, 1000, 0.1, testutil.GeometryOptions{})
package testutil
