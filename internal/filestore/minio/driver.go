// Package minio provides a MinIO implementation of filestore.Store.
package minio

import (
	"context"
	"io"
	"time"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/druscope/druscope/internal/errs"
	"github.com/druscope/druscope/internal/filestore"
)

// Driver is a MinIO implementation of filestore.Store.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	client *miniogo.Client
}

// New connects to MinIO using cfg and returns a Driver. It calls Ping to
// validate the connection before returning.
func New(ctx context.Context, cfg *filestore.Config) (*Driver, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to create minio client", err)
	}

	d := &Driver{client: client}
	if err := d.Ping(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// Ping verifies the MinIO server is reachable by listing buckets.
func (d *Driver) Ping(ctx context.Context) error {
	if _, err := d.client.ListBuckets(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close is a no-op for MinIO; the SDK client holds no persistent connections.
func (d *Driver) Close() error {
	return nil
}

// PutObject uploads size bytes from body to key inside bucket.
func (d *Driver) PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	_, err := d.client.PutObject(ctx, bucket, key, body, size, miniogo.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return mapError(err, "failed to put object")
	}
	return nil
}

// StatObject returns metadata for the object at key inside bucket.
func (d *Driver) StatObject(ctx context.Context, bucket, key string) (*filestore.ObjectInfo, error) {
	stat, err := d.client.StatObject(ctx, bucket, key, miniogo.StatObjectOptions{})
	if err != nil {
		return nil, mapError(err, "failed to stat object")
	}

	return &filestore.ObjectInfo{
		Key:          stat.Key,
		Size:         stat.Size,
		ContentType:  stat.ContentType,
		ETag:         stat.ETag,
		LastModified: stat.LastModified,
	}, nil
}

// PresignGetURL returns a time-limited public download URL for the object.
func (d *Driver) PresignGetURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	u, err := d.client.PresignedGetObject(ctx, bucket, key, ttl, nil)
	if err != nil {
		return "", mapError(err, "failed to generate presigned URL")
	}
	return u.String(), nil
}
