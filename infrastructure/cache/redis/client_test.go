package redis

import (
	"context"
	"testing"
	"time"

	"highlights-app-api/core/interfaces"
	"highlights-app-api/pkg/config"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	cache, err := NewRedisCache(config.RedisConfig{Address: mr.Addr(), KeyPrefix: "test:"})
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	return cache, mr
}

func TestNewRedisCache_InvalidAddress(t *testing.T) {
	cache, err := NewRedisCache(config.RedisConfig{Address: ""})

	assert.Error(t, err)
	assert.Nil(t, cache)
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(config.RedisConfig{Address: addr})

	assert.Error(t, err)
}

func TestRedisCache_SetAndGet(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "reader:https://example.com", []byte("view"), time.Hour))

	got, err := cache.Get(ctx, "reader:https://example.com")
	require.NoError(t, err)
	assert.Equal(t, []byte("view"), got)

	assert.True(t, mr.Exists("test:cache:reader:https://example.com"), "keys carry the configured prefix")
}

func TestRedisCache_Get_Miss(t *testing.T) {
	cache, _ := newTestCache(t)

	got, err := cache.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
	assert.Nil(t, got)
}

func TestRedisCache_TTL(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short", []byte("v"), time.Minute))
	require.NoError(t, cache.Set(ctx, "forever", []byte("v"), 0))

	assert.Equal(t, time.Minute, mr.TTL("test:cache:short"))
	assert.Equal(t, time.Duration(0), mr.TTL("test:cache:forever"))

	mr.FastForward(2 * time.Minute)

	_, err := cache.Get(ctx, "short")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
	_, err = cache.Get(ctx, "forever")
	assert.NoError(t, err)
}

func TestRedisCache_Delete(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Hour))
	require.NoError(t, cache.Delete(ctx, "k"))

	_, err := cache.Get(ctx, "k")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)

	assert.NoError(t, cache.Delete(ctx, "never-set"))
}

func TestRedisCache_SharedClientStaysOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := Connect(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	cache := NewRedisCacheWithClient(client, "")
	require.NoError(t, cache.Close())

	assert.NoError(t, client.Ping(context.Background()).Err())
}
