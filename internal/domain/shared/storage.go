package shared

import (
	"context"
	"time"
)

// ObjectStorage stores binary content such as quality control files,
// offer documents and exported archives under string keys
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	// Download returns ErrNotFound when the key does not exist
	Download(ctx context.Context, key string) ([]byte, error)
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, key string) error
	ObjectExists(ctx context.Context, key string) (bool, error)
}
