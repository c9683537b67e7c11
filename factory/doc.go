// Package factory decodes, builds and encodes geometries.
//
// A Factory owns one arena and one geometry.Store and is used by a single
// goroutine (one execution lane). Typical per-row use:
//
//	g, err := f.Deserialize(blob)        // views alias blob
//	...
//	out, err := f.SerializeInto(f.ArenaSlot(), result)
//	...
//	f.Reset()                            // once per batch
//
// Every view and every arena-backed buffer handed out before Reset is invalid
// afterwards.
//
// # Wire format
//
// All values are little-endian.
//
//	byte 0        type tag (1 POINT .. 7 GEOMETRYCOLLECTION)
//	byte 1        properties: bit0 Z, bit1 M, bit2 BBox, bits 3-7 zero
//	[32 bytes]    minx, miny, maxx, maxy when BBox is set (root only)
//	payload:
//	  POINT               0 or 1 vertex
//	  LINESTRING          uint32 count, vertices
//	  POLYGON             uint32 rings, per ring: uint32 count, vertices
//	  MULTI*, COLLECTION  uint32 count, full child encodings
//
// Children repeat the two header bytes and never carry a box. A root point is
// empty when no bytes follow the header; a nested point has no length framing,
// so an empty nested point is written as one vertex of NaN ordinates.
//
// GetHeader, TryGetCachedBoundingBox and Describe read the fixed prefix only
// and never parse the payload.
package factory
