// Package storage wraps the MinIO client for the run report archive.
//
// The Client interface covers the handful of bucket and object calls the
// archive needs, so tests can substitute the testify mock in storage/mocks.
// Both AWS S3 and self-hosted MinIO endpoints are supported.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Archive.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Archive.Storage.Bucket, "")
package storage
