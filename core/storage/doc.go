// Package storage reads calendar feeds published to S3-compatible object storage.
//
// A feed stored in a bucket is referenced as s3://bucket/key in the driver
// database instead of an HTTP URL. AWS S3 and self-hosted MinIO both work.
//
//	client, err := storage.NewClient(cfg)
//	body, err := storage.ReadURL(ctx, client, "s3://feeds/team.ics", 0)
//
// The Client interface is mocked in core/storage/mocks.
package storage
