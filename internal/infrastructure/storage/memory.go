package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/qbic/datamanager/internal/domain/shared"
	infraconfig "github.com/qbic/datamanager/internal/infrastructure/config"
	"go.uber.org/zap"
)

// InMemoryObjectStorage keeps objects in process memory. It is used when
// object storage is disabled and in tests.
type InMemoryObjectStorage struct {
	// BaseURL prefixes the generated download URLs
	BaseURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewInMemoryObjectStorage creates an empty in-memory storage
func NewInMemoryObjectStorage() *InMemoryObjectStorage {
	return &InMemoryObjectStorage{
		BaseURL: "http://localhost:8080/files",
		objects: make(map[string]memoryObject),
	}
}

var _ shared.ObjectStorage = (*InMemoryObjectStorage)(nil)

// Upload stores a copy of data
func (s *InMemoryObjectStorage) Upload(_ context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = memoryObject{data: append([]byte(nil), data...), contentType: contentType}
	return nil
}

// Download returns a copy of the stored data
func (s *InMemoryObjectStorage) Download(_ context.Context, storageKey string) ([]byte, error) {
	if storageKey == "" {
		return nil, errors.New("storage key is required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[storageKey]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", storageKey, shared.ErrNotFound)
	}
	return append([]byte(nil), obj.data...), nil
}

// GenerateDownloadURL builds a URL below BaseURL; nothing serves it
func (s *InMemoryObjectStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/" + url.PathEscape(storageKey) + "?expires=" + url.QueryEscape(expiresAt.Format(time.RFC3339)), expiresAt, nil
}

// DeleteObject removes the object; unknown keys are ignored
func (s *InMemoryObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, storageKey)
	return nil
}

// ObjectExists reports whether the key is stored
func (s *InMemoryObjectStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[storageKey]
	return ok, nil
}

// ContentType returns the content type an object was stored with
func (s *InMemoryObjectStorage) ContentType(storageKey string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects[storageKey].contentType
}

// New creates the configured storage backend. When S3 is enabled the
// bucket is created if missing.
func New(ctx context.Context, cfg *infraconfig.StorageConfig, logger *zap.Logger) (shared.ObjectStorage, error) {
	if cfg == nil || !cfg.Enabled {
		logger.Warn("Object storage disabled, files are kept in memory")
		return NewInMemoryObjectStorage(), nil
	}
	s, err := NewS3ObjectStorage(cfg, WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := s.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	logger.Info("Object storage ready", zap.String("bucket", s.Bucket()))
	return s, nil
}
