package storage

import (
	"context"
	"sync"
	"time"

	"github.com/royale/pos/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Archive is the subset of object storage the report service needs
type Archive interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	PresignGet(ctx context.Context, key string) (string, time.Time, error)
}

var (
	_ Archive = (*S3Archive)(nil)
	_ Archive = DisabledArchive{}
	_ Archive = (*MemoryArchive)(nil)
)

// New returns the archive selected by cfg. Disabled storage yields a
// DisabledArchive so callers never hold a nil Archive.
func New(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (Archive, error) {
	if cfg == nil || !cfg.Enabled {
		return DisabledArchive{}, nil
	}
	archive, err := NewS3Archive(ctx, cfg, WithLogger(logger.Named("storage")))
	if err != nil {
		return nil, err
	}
	if err := archive.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return archive, nil
}

// DisabledArchive fails every call with ErrStorageDisabled
type DisabledArchive struct{}

// Put implements Archive.
func (DisabledArchive) Put(context.Context, string, []byte, string) error {
	return ErrStorageDisabled
}

// PresignGet implements Archive.
func (DisabledArchive) PresignGet(context.Context, string) (string, time.Time, error) {
	return "", time.Time{}, ErrStorageDisabled
}

// MemoryArchive keeps objects in memory. Links use the memory:// scheme.
type MemoryArchive struct {
	Bucket string
	Expiry time.Duration

	mu           sync.RWMutex
	objects      map[string][]byte
	contentTypes map[string]string
}

// NewMemoryArchive creates an empty in-memory archive
func NewMemoryArchive(bucket string) *MemoryArchive {
	return &MemoryArchive{
		Bucket:       bucket,
		Expiry:       15 * time.Minute,
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

// Put implements Archive.
func (m *MemoryArchive) Put(_ context.Context, key string, body []byte, contentType string) error {
	if key == "" {
		return errKeyRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), body...)
	m.contentTypes[key] = contentType
	return nil
}

// PresignGet implements Archive.
func (m *MemoryArchive) PresignGet(_ context.Context, key string) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errKeyRequired
	}
	expiresAt := time.Now().Add(m.Expiry)
	return "memory://" + m.Bucket + "/" + key + "?expires=" + expiresAt.UTC().Format(time.RFC3339), expiresAt, nil
}

// Object returns the stored body and content type for key
func (m *MemoryArchive) Object(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	body, ok := m.objects[key]
	return body, m.contentTypes[key], ok
}
