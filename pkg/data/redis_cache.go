package data

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisCacheConfig configures the Redis-backed table cache
type RedisCacheConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// DefaultRedisCacheConfig returns default configuration
func DefaultRedisCacheConfig() RedisCacheConfig {
	return RedisCacheConfig{
		Addr:   "localhost:6379",
		Prefix: "gaopt:table:",
		TTL:    24 * time.Hour,
	}
}

// RedisCache implements DataCache on Redis so several optimizer processes
// can share parsed datasets.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(ctx context.Context, config RedisCacheConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info().Str("redis_addr", config.Addr).Str("prefix", config.Prefix).Msg("Redis data cache initialized")
	return NewRedisCacheWithClient(client, config.Prefix, config.TTL), nil
}

// NewRedisCacheWithClient wraps an existing client
func NewRedisCacheWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = DefaultRedisCacheConfig().Prefix
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) key(name string) string {
	return c.prefix + name
}

// Get retrieves a table; decode or connection faults are misses
func (c *RedisCache) Get(ctx context.Context, key string) (*Table, bool) {
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", key).Msg("⚠️ Redis cache read failed")
		}
		return nil, false
	}

	var table Table
	if err := json.Unmarshal(raw, &table); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("⚠️ Corrupt cache entry ignored")
		return nil, false
	}
	return &table, true
}

// Set stores a table with the configured TTL
func (c *RedisCache) Set(ctx context.Context, key string, table *Table) {
	raw, err := json.Marshal(table)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("⚠️ Failed to encode cache entry")
		return
	}
	if err := c.client.Set(ctx, c.key(key), raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("⚠️ Redis cache write failed")
	}
}

// keys lists every key under the prefix
func (c *RedisCache) keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}

// Clear removes every entry under the prefix
func (c *RedisCache) Clear(ctx context.Context) {
	keys, err := c.keys(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ Redis cache scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Msg("⚠️ Redis cache clear failed")
	}
}

// Size returns the number of entries under the prefix
func (c *RedisCache) Size(ctx context.Context) int {
	keys, err := c.keys(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ Redis cache scan failed")
		return 0
	}
	return len(keys)
}

// Close closes the underlying client
func (c *RedisCache) Close() error {
	return c.client.Close()
}
