package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DefaultMaxObjectSize bounds the feed objects ReadURL loads when no limit is given.
const DefaultMaxObjectSize int64 = 10 << 20

// Client is the subset of the MinIO client used to read feed objects.
type Client interface {
	// StatObject returns object metadata without downloading it.
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	// GetObject streams an object.
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
}

// NewClient creates a MinIO client. No request is made until the first read.
func NewClient(cfg Config) (Client, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "http://"), "https://")

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport, err := minio.DefaultTransport(cfg.UseSSL)
	if err != nil {
		return nil, fmt.Errorf("failed to build storage transport: %w", err)
	}
	transport.TLSHandshakeTimeout = timeout
	transport.ResponseHeaderTimeout = timeout

	mc, err := minio.New(endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &minioReader{Client: mc}, nil
}

// minioReader narrows GetObject to an io.ReadCloser so it can be mocked.
type minioReader struct {
	*minio.Client
}

func (c *minioReader) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	return c.Client.GetObject(ctx, bucketName, objectName, opts)
}

// ParseObjectURL splits an s3://bucket/key URL into bucket and object name.
func ParseObjectURL(raw string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(raw, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 url: %s", raw)
	}
	bucket, object, _ = strings.Cut(rest, "/")
	if bucket == "" || object == "" {
		return "", "", fmt.Errorf("s3 url must name a bucket and an object: %s", raw)
	}
	return bucket, object, nil
}

// ReadURL loads the object behind an s3:// URL. Objects larger than maxSize
// are rejected before download; maxSize <= 0 means DefaultMaxObjectSize.
func ReadURL(ctx context.Context, c Client, rawURL string, maxSize int64) ([]byte, error) {
	bucket, object, err := ParseObjectURL(rawURL)
	if err != nil {
		return nil, err
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxObjectSize
	}

	info, err := c.StatObject(ctx, bucket, object, minio.StatObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to stat object %s/%s: %w", bucket, object, err)
	}
	if info.Size > maxSize {
		return nil, fmt.Errorf("object %s/%s is %d bytes, limit is %d", bucket, object, info.Size, maxSize)
	}

	obj, err := c.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s/%s: %w", bucket, object, err)
	}
	defer obj.Close()

	body, err := io.ReadAll(io.LimitReader(obj, maxSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s/%s: %w", bucket, object, err)
	}
	return body, nil
}
