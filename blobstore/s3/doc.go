// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("city/tiles"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
// # Features
//
//   - Range reads for tile payloads
//   - Multipart uploads for large artifacts, with CRC32C checksums
//   - Automatic pagination for listing
//   - Configurable prefix so a tileset and its indexes can share a bucket
package s3
