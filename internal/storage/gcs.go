package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/dailyyield/apiserver/config"
	"google.golang.org/api/option"
)

// GCSClient writes report exports to a Cloud Storage bucket.
type GCSClient struct {
	client    *storage.Client
	handle    *storage.BucketHandle
	bucket    string
	projectID string
}

func NewGCSClient(ctx context.Context, cfg config.GCSConfig) (*GCSClient, error) {
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errors.New("gcs bucket is required")
	}

	var opts []option.ClientOption
	if path := strings.TrimSpace(cfg.CredentialsFile); path != "" {
		opts = append(opts, option.WithCredentialsFile(path))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &GCSClient{
		client:    client,
		handle:    client.Bucket(bucket),
		bucket:    bucket,
		projectID: strings.TrimSpace(cfg.ProjectID),
	}, nil
}

// EnsureBucket creates a missing bucket. Creation needs GCS_PROJECT_ID.
func (g *GCSClient) EnsureBucket(ctx context.Context) error {
	_, err := g.handle.Attrs(ctx)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, storage.ErrBucketNotExist):
		return err
	case g.projectID == "":
		return errors.New("gcs project id is required to create bucket")
	}
	return g.handle.Create(ctx, g.projectID, nil)
}

func (g *GCSClient) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	w := g.handle.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.ContentDisposition = attachment(key)
	w.CacheControl = reportCacheControl
	w.Metadata = map[string]string{metaGenerator: generatorName}
	if size > 0 && size < googleChunkSize {
		// Single request upload.
		w.ChunkSize = 0
	}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("write gs://%s/%s: %w", g.bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("write gs://%s/%s: %w", g.bucket, key, err)
	}
	return nil
}

func (g *GCSClient) Bucket() string {
	return g.bucket
}

func (g *GCSClient) Close() error {
	return g.client.Close()
}
