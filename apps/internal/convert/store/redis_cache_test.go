package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilsley/skein/apps/internal/convert/store"
)

// newCache starts a miniredis server and returns a cache backed by it.
// The server is stopped automatically when the test ends.
func newCache(t *testing.T, ttl time.Duration) (*store.RedisArtifactCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return store.NewRedisArtifactCache(rdb, ttl), mr
}

func TestGet_Miss(t *testing.T) {
	c, _ := newCache(t, 0)

	_, ok, err := c.Get(context.Background(), "acme/demo")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetGet_RoundTrip(t *testing.T) {
	c, _ := newCache(t, 0)
	artifact := "// Path: main.go\npackage main\n\n"

	require.NoError(t, c.Set(context.Background(), "acme/demo", artifact))

	got, ok, err := c.Get(context.Background(), "acme/demo")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, artifact, got)
}

func TestSetGet_KeysAreIndependent(t *testing.T) {
	c, _ := newCache(t, 0)

	require.NoError(t, c.Set(context.Background(), "acme/demo", "one"))
	require.NoError(t, c.Set(context.Background(), "acme/demo@main", "two"))

	got, ok, err := c.Get(context.Background(), "acme/demo@main")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "two", got)
}

func TestEntriesExpire(t *testing.T) {
	c, mr := newCache(t, time.Minute)

	require.NoError(t, c.Set(context.Background(), "acme/demo", "artifact"))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(context.Background(), "acme/demo")
	require.NoError(t, err)
	assert.False(t, ok)
}
