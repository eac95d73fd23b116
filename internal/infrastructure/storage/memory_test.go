package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/qbic/datamanager/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInMemoryObjectStorage(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryObjectStorage()

	data := []byte("sample,qc\n")
	require.NoError(t, s.Upload(ctx, "projects/p1/qc/a.csv", data, "text/csv"))
	data[0] = 'X'

	got, err := s.Download(ctx, "projects/p1/qc/a.csv")
	require.NoError(t, err)
	assert.Equal(t, "sample,qc\n", string(got), "stored content is copied")
	assert.Equal(t, "text/csv", s.ContentType("projects/p1/qc/a.csv"))

	exists, err := s.ObjectExists(ctx, "projects/p1/qc/a.csv")
	require.NoError(t, err)
	assert.True(t, exists)

	url, expiresAt, err := s.GenerateDownloadURL(ctx, "projects/p1/qc/a.csv", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, s.BaseURL))
	assert.True(t, expiresAt.After(time.Now()))

	require.NoError(t, s.DeleteObject(ctx, "projects/p1/qc/a.csv"))
	_, err = s.Download(ctx, "projects/p1/qc/a.csv")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	require.NoError(t, s.DeleteObject(ctx, "unknown"))

	assert.Error(t, s.Upload(ctx, "", nil, ""))
}

func TestNew_DisabledUsesMemory(t *testing.T) {
	s, err := New(context.Background(), &config.StorageConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	_, ok := s.(*InMemoryObjectStorage)
	assert.True(t, ok)
}
