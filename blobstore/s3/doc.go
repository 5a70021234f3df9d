// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.Open(ctx, "my-bucket", "palettes/", "")
//
// or, with an existing client:
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "palettes/")
//
// # Features
//
//   - Range reads for streaming image decodes
//   - Multipart uploads for large histogram snapshots
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
