// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and any other S3-compatible storage (Ceph, Garage,
// SeaweedFS) and needs no AWS dependencies.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "artwork", "sprites/")
//	h, stats, err := loader.New(store).Load(ctx, names)
package minio
