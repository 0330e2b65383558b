package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visorhr/visorhr-ui/internal/ports"
	"github.com/visorhr/visorhr-ui/internal/testutil"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := testutil.SetupTestRedis(t)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestSessionCache_Key(t *testing.T) {
	c := NewSessionCache(SessionCacheOptions{Prefix: "hr:"})
	assert.Equal(t, "hr:view-1:visorhr_user", c.Key("view-1"))

	c = NewSessionCache(SessionCacheOptions{})
	assert.Equal(t, "visorhr:view-1:visorhr_user", c.Key("view-1"))
}

func TestSessionCache_SaveLoadDelete(t *testing.T) {
	client := setupTestRedis(t)
	cache := NewSessionCache(SessionCacheOptions{Client: client, Prefix: "test:", TTL: time.Minute})
	ctx := context.Background()

	payload := []byte(`{"username":"ana"}`)
	require.NoError(t, cache.Save(ctx, "view-1", payload))

	got, err := cache.Load(ctx, "view-1")
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	ttl, err := client.TTL(ctx, cache.Key("view-1")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, cache.Delete(ctx, "view-1"))
	_, err = cache.Load(ctx, "view-1")
	require.ErrorIs(t, err, ports.ErrNotCached)
}

func TestSessionCache_ScopesAreIsolated(t *testing.T) {
	client := setupTestRedis(t)
	cache := NewSessionCache(SessionCacheOptions{Client: client, Prefix: "test:"})
	ctx := context.Background()

	require.NoError(t, cache.Save(ctx, "a", []byte(`{"username":"a"}`)))
	_, err := cache.Load(ctx, "b")
	require.ErrorIs(t, err, ports.ErrNotCached)
}

func TestSessionCache_EmptyScope(t *testing.T) {
	cache := NewSessionCache(SessionCacheOptions{})
	ctx := context.Background()

	_, err := cache.Load(ctx, "")
	require.ErrorIs(t, err, ports.ErrNotCached)
	require.Error(t, cache.Save(ctx, "", []byte("x")))
	require.NoError(t, cache.Delete(ctx, ""))
}
