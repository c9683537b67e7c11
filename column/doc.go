// Package column stores batches of encoded geometries.
//
// A Column holds one encoded geometry blob per row plus a validity bitmap
// that separates NULL rows from empty geometries. Columns are built with a
// Builder, serialized as compressed blocks with Encode/Decode, and persisted
// through a blobstore.Store with Save/Load.
//
// # Block format
//
//	magic "GBC1" | version u8 | compression u8 | rows u32
//	validity: len u32 | roaring bitmap (set bit = non-NULL row)
//	offsets:  block of (rows+1) u32
//	payload:  block of concatenated geometry blobs
//	crc32 (IEEE) of everything before it
//
// Each block is [uncompressed u32][compressed u32][data]; a compressed size
// of 0 marks data stored raw.
package column
