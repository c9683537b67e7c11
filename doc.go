// Package geoblob provides a compact binary encoding for vector geometries
// and an arena-backed engine that decodes, transforms and re-encodes them at
// per-row volume.
//
// Geometries (points, line strings, polygons, their multi variants and
// heterogeneous collections) are stored as self-describing blobs with an
// optional cached bounding box. Package factory builds and parses blobs,
// package geometry holds the decoded views, package column batches blobs
// into nullable columns and package geomconv bridges to go-geom for WKT, WKB
// and external algorithms.
//
// # Quick Start
//
//	eng, err := geoblob.New(geoblob.WithLanes(4))
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	out, err := eng.Map(ctx, in, func(f *factory.Factory, g geometry.Geometry) (geometry.Geometry, error) {
//	    return geomconv.FromGeom(f, someAlgorithm(g))
//	})
//
// Rows that fail become NULL; the returned error joins one *RowError per
// failed row, so callers can keep the partial result:
//
//	var rowErr *geoblob.RowError
//	if errors.As(err, &rowErr) {
//	    log.Printf("row %d failed: %v", rowErr.Row, errors.Unwrap(rowErr))
//	}
//
// # Lanes
//
// Each lane owns one factory and one mmap-backed arena. Batches of
// WithBatchSize rows run on a lane and the lane is reset afterwards, which
// rewinds the arena in O(1) and invalidates every geometry view created in
// the batch. Using such a view later panics with a *geometry.StaleViewError.
//
// # Storage
//
// Columns are persisted as compressed blocks through a blobstore.Store
// (memory, local files, S3 or MinIO):
//
//	err = eng.Save(ctx, store, "roads.gbc", out)
package geoblob
