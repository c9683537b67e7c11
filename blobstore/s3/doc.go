// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.NewFromConfig(ctx, "my-bucket", "columns/")
//	if err != nil {
//	    return err
//	}
//	err = column.Save(ctx, store, "roads.gbc", col)
//
// # Features
//
//   - Range reads for partial fetches (pair with blobstore.CachingStore)
//   - Multipart uploads for large column blocks
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
