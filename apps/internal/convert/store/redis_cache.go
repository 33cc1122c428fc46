// Package store provides the redis-backed artifact cache. A finished
// conversion is stored under its canonical reference so repeat requests for
// the same repository can be served without re-acquisition.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tilsley/skein/apps/internal/convert"
)

const artifactKeyPrefix = "artifact:"

// Compile-time check: *RedisArtifactCache implements convert.ArtifactCache.
var _ convert.ArtifactCache = (*RedisArtifactCache)(nil)

// RedisArtifactCache implements convert.ArtifactCache using go-redis directly.
type RedisArtifactCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisArtifactCache creates a cache with the given entry TTL. A zero ttl
// stores entries without expiry.
func NewRedisArtifactCache(rdb *redis.Client, ttl time.Duration) *RedisArtifactCache {
	return &RedisArtifactCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached artifact for key, with ok=false on a miss.
func (c *RedisArtifactCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, artifactKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get artifact %q: %w", key, err)
	}
	return val, true, nil
}

// Set stores the artifact for key.
func (c *RedisArtifactCache) Set(ctx context.Context, key, artifact string) error {
	if err := c.rdb.Set(ctx, artifactKeyPrefix+key, artifact, c.ttl).Err(); err != nil {
		return fmt.Errorf("save artifact %q: %w", key, err)
	}
	return nil
}
