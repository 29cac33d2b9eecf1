package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/dailyyield/apiserver/config"
)

const (
	BackendNone  = "none"
	BackendMinio = "minio"
	BackendGCS   = "gcs"
)

const (
	reportCacheControl = "private, no-store"
	metaGenerator      = "generator"
	generatorName      = "dailyyield"
	googleChunkSize    = 16 << 20
)

// ObjectStorage is the subset of bucket operations report exports need.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Bucket() string
	Close() error
}

// Storage wraps an ObjectStorage backend with a stable API.
type Storage struct {
	backend ObjectStorage
}

// NewStorage constructs a Storage wrapper for the provided backend.
func NewStorage(backend ObjectStorage) *Storage {
	return &Storage{backend: backend}
}

// Open builds the backend named in cfg and makes sure its bucket exists.
// It returns nil, nil when no backend is configured.
func Open(ctx context.Context, cfg config.StorageConfig) (*Storage, error) {
	var (
		backend ObjectStorage
		err     error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendNone:
		return nil, nil
	case BackendMinio:
		backend, err = NewMinioClient(cfg.Minio)
	case BackendGCS:
		backend, err = NewGCSClient(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s storage: %w", cfg.Backend, err)
	}

	if err := backend.EnsureBucket(ctx); err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("ensure bucket %s: %w", backend.Bucket(), err)
	}
	return NewStorage(backend), nil
}

// Put uploads an object to the configured bucket.
func (s *Storage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return s.backend.Put(ctx, key, r, size, contentType)
}

// Bucket returns the configured bucket name.
func (s *Storage) Bucket() string {
	return s.backend.Bucket()
}

// Close releases the backend client.
func (s *Storage) Close() error {
	return s.backend.Close()
}

func attachment(key string) string {
	return fmt.Sprintf("attachment; filename=%q", path.Base(key))
}

func joinSorted(names []string) string {
	sort.Strings(names)
	if len(names) == 1 {
		return names[0] + " is"
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1] + " are"
}
