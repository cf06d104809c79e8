package fetchkit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fetchkit-io/fetchkit/pkg/fetchkit"
)

func TestCacheFactory_MemoryCache(t *testing.T) {
	t.Parallel()

	config := &fetchkit.CacheConfig{
		Type: fetchkit.CacheTypeMemory,
		Memory: &fetchkit.MemoryCacheConfig{
			MaxSize: 100,
		},
	}

	cache, err := fetchkit.NewCacheFromConfig(config)
	require.NoError(t, err)
	require.NotNil(t, cache)

	// Test basic operations
	ctx := context.Background()
	entry := &fetchkit.CacheEntry{
		Data:      []byte("test data"),
		ExpiresAt: time.Now().Add(1 * time.Hour),
		ETag:      "test-etag",
	}

	// Set
	err = cache.Set(ctx, "test-key", entry)
	assert.NoError(t, err)

	// Get
	retrieved, err := cache.Get(ctx, "test-key")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)
	assert.Equal(t, entry.ETag, retrieved.ETag)

	// Has
	assert.True(t, cache.Has(ctx, "test-key"))

	// Delete
	err = cache.Delete(ctx, "test-key")
	assert.NoError(t, err)
	assert.False(t, cache.Has(ctx, "test-key"))
}

func TestCacheFactory_NoOpCache(t *testing.T) {
	t.Parallel()

	config := &fetchkit.CacheConfig{
		Type: fetchkit.CacheTypeNone,
	}

	cache, err := fetchkit.NewCacheFromConfig(config)
	require.NoError(t, err)
	require.NotNil(t, cache)

	ctx := context.Background()
	entry := &fetchkit.CacheEntry{
		Data:      []byte("test data"),
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}

	// Set should succeed but do nothing
	err = cache.Set(ctx, "test-key", entry)
	assert.NoError(t, err)

	// Get should always fail
	_, err = cache.Get(ctx, "test-key")
	require.ErrorIs(t, err, fetchkit.ErrCacheDisabled)

	// Has should always return false
	assert.False(t, cache.Has(ctx, "test-key"))

	// Delete should succeed but do nothing
	err = cache.Delete(ctx, "test-key")
	assert.NoError(t, err)

	// Clear should succeed but do nothing
	err = cache.Clear(ctx)
	assert.NoError(t, err)
}

func TestCacheFactory_NATSRequiresConfig(t *testing.T) {
	t.Parallel()

	config := &fetchkit.CacheConfig{
		Type: fetchkit.CacheTypeNATS,
	}

	cache, err := fetchkit.NewCacheFromConfig(config)
	require.ErrorIs(t, err, fetchkit.ErrNATSConfigRequired)
	assert.Nil(t, cache)
}

func TestCacheBuilder(t *testing.T) {
	t.Parallel()

	builder := fetchkit.NewCacheBuilder()
	cache, err := builder.
		WithType(fetchkit.CacheTypeMemory).
		WithMemoryConfig(50).
		WithPolicy(&fetchkit.CachingPolicy{
			CacheGET:   true,
			DefaultTTL: 10 * time.Minute,
		}).
		Build()

	require.NoError(t, err)
	require.NotNil(t, cache)

	// Test that the cache works
	ctx := context.Background()
	entry := &fetchkit.CacheEntry{
		Data:      []byte("builder test"),
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}

	err = cache.Set(ctx, "builder-key", entry)
	assert.NoError(t, err)

	retrieved, err := cache.Get(ctx, "builder-key")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)
}

func TestDefaultCacheConfig(t *testing.T) {
	t.Parallel()

	config := fetchkit.DefaultCacheConfig()
	assert.Equal(t, fetchkit.CacheTypeMemory, config.Type)
	assert.NotNil(t, config.Memory)
	assert.Equal(t, 1000, config.Memory.MaxSize)
	assert.NotNil(t, config.Policy)
	assert.True(t, config.Policy.CacheGET)
}

func TestCacheFactory_InvalidType(t *testing.T) {
	t.Parallel()

	config := &fetchkit.CacheConfig{
		Type: fetchkit.CacheType("invalid"),
	}

	cache, err := fetchkit.NewCacheFromConfig(config)
	require.ErrorIs(t, err, fetchkit.ErrUnsupportedCacheType)
	assert.Nil(t, cache)
}

func TestCacheFactory_NilConfig(t *testing.T) {
	t.Parallel()

	cache, err := fetchkit.NewCacheFromConfig(nil)
	require.NoError(t, err)
	require.NotNil(t, cache)

	// Should use default config (memory cache)
	ctx := context.Background()
	entry := &fetchkit.CacheEntry{
		Data:      []byte("default test"),
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}

	err = cache.Set(ctx, "default-key", entry)
	assert.NoError(t, err)

	retrieved, err := cache.Get(ctx, "default-key")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)
}
