package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dailyyield/apiserver/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioClient writes report exports to an S3-compatible bucket.
type MinioClient struct {
	client *minio.Client
	bucket string
}

func NewMinioClient(cfg config.MinioConfig) (*MinioClient, error) {
	var missing []string
	for name, value := range map[string]string{
		"endpoint":   cfg.Endpoint,
		"access key": cfg.AccessKey,
		"secret key": cfg.SecretKey,
		"bucket":     cfg.Bucket,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("minio %s required", joinSorted(missing))
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &MinioClient{client: client, bucket: cfg.Bucket}, nil
}

func (m *MinioClient) EnsureBucket(ctx context.Context) error {
	err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
	if err == nil {
		return nil
	}
	// MakeBucket fails when the bucket is already there; confirm before giving up.
	exists, existsErr := m.client.BucketExists(ctx, m.bucket)
	if existsErr == nil && exists {
		return nil
	}
	return errors.Join(err, existsErr)
}

func (m *MinioClient) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:        contentType,
		ContentDisposition: attachment(key),
		CacheControl:       reportCacheControl,
		UserMetadata:       map[string]string{metaGenerator: generatorName},
	})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", m.bucket, key, err)
	}
	return nil
}

func (m *MinioClient) Bucket() string {
	return m.bucket
}

func (m *MinioClient) Close() error {
	return nil
}
