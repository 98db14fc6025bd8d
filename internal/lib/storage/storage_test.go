package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/storefront/internal/config"
)

func TestNewImageStore_NotConfigured(t *testing.T) {
	store, err := NewImageStore(context.Background(), config.StorageConfig{})
	assert.Nil(t, store)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestProductImageKey(t *testing.T) {
	id := uuid.MustParse("8a4f5a8e-5d0a-4bb5-9a43-6c1d3c6f0e11")

	key, err := ProductImageKey(id, "image/webp")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "products/8a4f5a8e-5d0a-4bb5-9a43-6c1d3c6f0e11/"))
	assert.True(t, strings.HasSuffix(key, ".webp"))

	_, err = ProductImageKey(id, "image/gif")
	assert.ErrorIs(t, err, ErrUnsupportedContentType)
}

func TestImageStore_PresignProductImage(t *testing.T) {
	store, err := NewImageStore(context.Background(), config.StorageConfig{
		Bucket:            "bags",
		Region:            "us-east-1",
		Endpoint:          "http://localhost:9000",
		AccessKey:         "test-key",
		SecretKey:         "test-secret",
		UsePathStyle:      true,
		PublicBaseURL:     "https://cdn.example.com/",
		PresignExpiration: 10 * time.Minute,
	})
	require.NoError(t, err)

	id := uuid.New()
	upload, err := store.PresignProductImage(context.Background(), id, "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "PUT", upload.Method)
	assert.Contains(t, upload.URL, "localhost:9000/bags/products/"+id.String())
	assert.Contains(t, upload.URL, "X-Amz-Signature=")
	assert.Equal(t, "https://cdn.example.com/"+upload.Key, upload.PublicURL)
	assert.True(t, upload.ExpiresAt.Before(time.Now().Add(11*time.Minute)))

	_, err = store.PresignProductImage(context.Background(), id, "text/html")
	assert.ErrorIs(t, err, ErrUnsupportedContentType)
}
