package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/qbic/datamanager/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func testStorageConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Bucket:            "dm-test",
		AccessKey:         "test-key",
		SecretKey:         "test-secret",
		Endpoint:          "http://localhost:9000",
		UsePathStyle:      true,
		PresignExpiration: 15 * time.Minute,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	_, err := NewS3ObjectStorage(nil)
	require.ErrorContains(t, err, "configuration is required")

	tests := []struct {
		name    string
		mutate  func(*config.StorageConfig)
		wantErr string
	}{
		{"missing bucket", func(c *config.StorageConfig) { c.Bucket = "" }, "bucket is required"},
		{"missing access key", func(c *config.StorageConfig) { c.AccessKey = "" }, "access key is required"},
		{"missing secret key", func(c *config.StorageConfig) { c.SecretKey = "" }, "secret key is required"},
		{"endpoint without scheme", func(c *config.StorageConfig) { c.Endpoint = "localhost:9000" }, ""},
		{"endpoint with ssl", func(c *config.StorageConfig) { c.Endpoint = "minio:9000"; c.UseSSL = true }, ""},
		{"default endpoint", func(c *config.StorageConfig) { c.Endpoint = "" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testStorageConfig()
			tt.mutate(cfg)
			s, err := NewS3ObjectStorage(cfg)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "dm-test", s.Bucket())
		})
	}
}

func TestS3ObjectStorageOptions(t *testing.T) {
	s, err := NewS3ObjectStorage(testStorageConfig(), WithLogger(zaptest.NewLogger(t)), WithPresignExpiration(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, s.presignExpiration)

	cfg := testStorageConfig()
	cfg.PresignExpiration = 0
	s, err = NewS3ObjectStorage(cfg)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, s.presignExpiration)
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		useSSL   bool
		want     string
	}{
		{"", false, defaultEndpoint},
		{"minio:9000", false, "http://minio:9000"},
		{"minio:9000", true, "https://minio:9000"},
		{"https://s3.example.org", false, "https://s3.example.org"},
	}
	for _, tt := range tests {
		got, err := normalizeEndpoint(tt.endpoint, tt.useSSL)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&types.NoSuchKey{}))
	assert.True(t, isNotFound(fmt.Errorf("head: %w", &types.NotFound{})))
	assert.True(t, isNotFound(errors.New("api error NotFound: Not Found")))
	assert.False(t, isNotFound(errors.New("connection refused")))
}

func TestS3ObjectStorage_GenerateDownloadURL(t *testing.T) {
	s, err := NewS3ObjectStorage(testStorageConfig())
	require.NoError(t, err)

	_, _, err = s.GenerateDownloadURL(context.Background(), "", time.Minute)
	require.ErrorContains(t, err, "storage key is required")

	url, expiresAt, err := s.GenerateDownloadURL(context.Background(), "projects/p1/qc/report.pdf", 0)
	require.NoError(t, err)
	assert.True(t, strings.Contains(url, "localhost:9000"))
	assert.True(t, strings.Contains(url, "dm-test"))
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Minute)
}

func TestS3ObjectStorage_RejectsEmptyKeys(t *testing.T) {
	s, err := NewS3ObjectStorage(testStorageConfig())
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorContains(t, s.Upload(ctx, "", []byte("x"), "text/plain"), "storage key is required")
	assert.ErrorContains(t, s.DeleteObject(ctx, ""), "storage key is required")
	_, err = s.Download(ctx, "")
	assert.ErrorContains(t, err, "storage key is required")
	_, err = s.ObjectExists(ctx, "")
	assert.ErrorContains(t, err, "storage key is required")
}

// Runs against a real S3 compatible server when DM_S3_TEST_ENDPOINT is set,
// e.g. a local MinIO with the minioadmin credentials.
func TestIntegration_UploadAndDownload(t *testing.T) {
	endpoint := os.Getenv("DM_S3_TEST_ENDPOINT")
	if endpoint == "" {
		t.Skip("DM_S3_TEST_ENDPOINT not set")
	}
	cfg := testStorageConfig()
	cfg.Endpoint = endpoint
	cfg.AccessKey = "minioadmin"
	cfg.SecretKey = "minioadmin"
	s, err := NewS3ObjectStorage(cfg, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.EnsureBucket(ctx))

	key := "integration/upload-download.txt"
	require.NoError(t, s.Upload(ctx, key, []byte("hello"), "text/plain"))

	data, err := s.Download(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.DeleteObject(ctx, key))
	exists, err := s.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}
