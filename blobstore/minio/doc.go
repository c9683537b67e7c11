// Package minio provides a MinIO (S3-compatible) implementation of blobstore.Store.
//
// # Usage
//
//	store, err := minio.NewFromEndpoint("localhost:9000", "minioadmin", "minioadmin", false, "geo", "columns/")
//	if err != nil {
//	    return err
//	}
//	col, err := column.Load(ctx, store, "roads.gbc")
package minio
