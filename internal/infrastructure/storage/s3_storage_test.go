package storage

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/royale/pos/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func testStorageConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Enabled:         true,
		Bucket:          "royale-reports",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:9000",
		UsePathStyle:    true,
		PresignExpiry:   15 * time.Minute,
	}
}

func TestNewS3Archive_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3Archive(ctx, nil)
		assert.ErrorContains(t, err, "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.Bucket = ""
		_, err := NewS3Archive(ctx, cfg)
		assert.ErrorContains(t, err, "bucket is required")
	})

	t.Run("half a key pair returns error", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.SecretAccessKey = ""
		_, err := NewS3Archive(ctx, cfg)
		assert.ErrorContains(t, err, "must be set together")
	})

	t.Run("valid config creates archive", func(t *testing.T) {
		archive, err := NewS3Archive(ctx, testStorageConfig())
		require.NoError(t, err)
		assert.Equal(t, "royale-reports", archive.Bucket())
		assert.Equal(t, 15*time.Minute, archive.presignExpiry)
	})

	t.Run("default presign expiry is 15 minutes", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.PresignExpiry = 0
		archive, err := NewS3Archive(ctx, cfg)
		require.NoError(t, err)
		assert.Equal(t, 15*time.Minute, archive.presignExpiry)
	})

	t.Run("options override defaults", func(t *testing.T) {
		archive, err := NewS3Archive(ctx, testStorageConfig(),
			WithLogger(zaptest.NewLogger(t)),
			WithPresignExpiry(time.Hour),
		)
		require.NoError(t, err)
		assert.Equal(t, time.Hour, archive.presignExpiry)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"localhost:9000", "https://localhost:9000"},
		{"http://minio.local:9000", "http://minio.local:9000"},
		{"https://s3.example.com", "https://s3.example.com"},
	}
	for _, tt := range tests {
		got, err := normalizeEndpoint(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestS3Archive_PresignGet(t *testing.T) {
	archive, err := NewS3Archive(context.Background(), testStorageConfig())
	require.NoError(t, err)

	t.Run("empty key returns error", func(t *testing.T) {
		link, _, err := archive.PresignGet(context.Background(), "")
		assert.ErrorContains(t, err, "storage key is required")
		assert.Empty(t, link)
	})

	t.Run("signs a path-style link", func(t *testing.T) {
		link, expiresAt, err := archive.PresignGet(context.Background(), "reports/Royale_Sales_Report_2026-03-01.csv")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(link, "http://localhost:9000/royale-reports/reports/"))
		assert.Contains(t, link, "X-Amz-Signature=")
		assert.True(t, expiresAt.After(time.Now()))
		assert.True(t, expiresAt.Before(time.Now().Add(16*time.Minute)))
	})
}

func TestS3Archive_KeyValidation(t *testing.T) {
	archive, err := NewS3Archive(context.Background(), testStorageConfig())
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorContains(t, archive.Put(ctx, "", []byte("x"), "text/csv"), "storage key is required")
	assert.ErrorContains(t, archive.Delete(ctx, ""), "storage key is required")
	exists, err := archive.Exists(ctx, "")
	assert.ErrorContains(t, err, "storage key is required")
	assert.False(t, exists)
}

func TestNew_Disabled(t *testing.T) {
	archive, err := New(context.Background(), &config.StorageConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	err = archive.Put(context.Background(), "reports/a.csv", []byte("x"), "text/csv")
	assert.ErrorIs(t, err, ErrStorageDisabled)
	_, _, err = archive.PresignGet(context.Background(), "reports/a.csv")
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func TestMemoryArchive(t *testing.T) {
	archive := NewMemoryArchive("royale-reports")
	ctx := context.Background()

	body := []byte("Sale ID,Date\n")
	require.NoError(t, archive.Put(ctx, "reports/a.csv", body, "text/csv"))
	body[0] = 'X'

	stored, contentType, ok := archive.Object("reports/a.csv")
	require.True(t, ok)
	assert.Equal(t, "Sale ID,Date\n", string(stored))
	assert.Equal(t, "text/csv", contentType)

	link, _, err := archive.PresignGet(ctx, "reports/a.csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "memory://royale-reports/reports/a.csv?expires="))

	_, _, ok = archive.Object("missing")
	assert.False(t, ok)
}

// Set ROYALE_S3_INTEGRATION=1 with MinIO on localhost:9000 to run.
func TestIntegration_PutAndPresign(t *testing.T) {
	if os.Getenv("ROYALE_S3_INTEGRATION") != "1" {
		t.Skip("set ROYALE_S3_INTEGRATION=1 and run MinIO to enable")
	}

	cfg := testStorageConfig()
	cfg.Bucket = "royale-integration"
	cfg.AccessKeyID = "minioadmin"
	cfg.SecretAccessKey = "minioadmin"
	ctx := context.Background()

	archive, err := NewS3Archive(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, archive.EnsureBucket(ctx))
	require.NoError(t, archive.EnsureBucket(ctx))

	key := "reports/integration.csv"
	require.NoError(t, archive.Put(ctx, key, []byte("Sale ID\n"), "text/csv"))

	exists, err := archive.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	link, _, err := archive.PresignGet(ctx, key)
	require.NoError(t, err)
	assert.NotEmpty(t, link)

	require.NoError(t, archive.Delete(ctx, key))
	exists, err = archive.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}
