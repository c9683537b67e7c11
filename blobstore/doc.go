// Package blobstore stores immutable blobs such as encoded geometry column
// blocks.
//
// Store is the interface for reading and writing blobs. Implementations must
// be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests and pipelines
//   - LocalStore: local filesystem with mmap reads and atomic renames
//   - CachingStore: block cache in front of any other store
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Blobs that are already in memory may implement Mappable so ReadAll can
// skip the copy through ReadAt.
package blobstore
