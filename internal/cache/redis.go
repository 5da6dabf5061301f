package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "coinboard:"

// RedisCache stores entries in Redis with native expiry. When Redis cannot be
// reached it keeps serving from an in-process fallback.
type RedisCache struct {
	rdb *redis.Client
	mem *MemoryCache
}

// NewRedisCache connects to Redis and checks it answers a ping.
func NewRedisCache(ctx context.Context, addr, password string, db int) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return newRedisCache(rdb), nil
}

func newRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{
		rdb: rdb,
		mem: NewMemoryCache(time.Minute),
	}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return r.mem.Get(ctx, key)
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("redis get failed, using memory cache")
		return r.mem.Get(ctx, key)
	}
	return b, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.rdb.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		_ = r.mem.Set(ctx, key, value, ttl)
		return fmt.Errorf("failed to set %s in redis, using memory cache: %w", key, err)
	}
	return nil
}

func (r *RedisCache) Close() error {
	r.mem.Close()
	return r.rdb.Close()
}
