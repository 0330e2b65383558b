package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visorhr/visorhr-ui/internal/ports"
	"github.com/visorhr/visorhr-ui/internal/testutil"
)

func TestSessionCache_SaveLoadDelete(t *testing.T) {
	cache := NewSessionCache(0, nil)
	ctx := context.Background()

	payload := []byte(`{"username":"ana"}`)
	require.NoError(t, cache.Save(ctx, "v1", payload))

	payload[0] = 'X'
	got, err := cache.Load(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, `{"username":"ana"}`, string(got), "stored bytes are copied")

	require.NoError(t, cache.Delete(ctx, "v1"))
	_, err = cache.Load(ctx, "v1")
	require.ErrorIs(t, err, ports.ErrNotCached)
}

func TestSessionCache_Expiry(t *testing.T) {
	clock := testutil.FixedClock()
	cache := NewSessionCache(time.Hour, clock)
	ctx := context.Background()

	require.NoError(t, cache.Save(ctx, "v1", []byte("x")))
	clock.Advance(59 * time.Minute)
	_, err := cache.Load(ctx, "v1")
	require.NoError(t, err)

	clock.Advance(time.Minute)
	_, err = cache.Load(ctx, "v1")
	require.ErrorIs(t, err, ports.ErrNotCached)
	assert.Equal(t, 0, cache.Len())
}

func TestSessionCache_EmptyScope(t *testing.T) {
	cache := NewSessionCache(0, nil)
	require.Error(t, cache.Save(context.Background(), "", []byte("x")))
}
