package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisTTLCache is the Redis-backed counterpart of TTLCache, suitable for
// deployments where multiple API instances should share cached reads.
// Every value is written twice: a fresh copy that expires after the TTL and
// a stale copy that lives twice as long and is served while reloads fail.
type RedisTTLCache[T any] struct {
	client     *redis.Client
	keyPrefix  string
	ttl        time.Duration
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewRedisTTLCache creates a Redis-backed cache and verifies the connection
func NewRedisTTLCache[T any](cfg RedisConfig, keyPrefix string, opts ...TTLCacheOption) (*RedisTTLCache[T], error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisTTLCacheWithClient[T](client, keyPrefix, opts...), nil
}

// NewRedisTTLCacheWithClient creates a cache with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisTTLCacheWithClient[T any](client *redis.Client, keyPrefix string, opts ...TTLCacheOption) *RedisTTLCache[T] {
	cfg := newTTLCacheConfig(opts...)
	return &RedisTTLCache[T]{
		client:     client,
		keyPrefix:  keyPrefix,
		ttl:        cfg.ttl,
		retryDelay: cfg.retryDelay,
		logger:     cfg.logger,
	}
}

// GetOrLoad returns the cached value for key, invoking loader when the fresh
// copy is missing. Failed reloads serve the stale copy and arm a retry key
// so every instance pauses its reloads, not just the one that saw the error.
func (c *RedisTTLCache[T]) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (T, error)) (T, error) {
	payload, err := c.client.Get(ctx, c.freshKey(key)).Bytes()
	if err == nil {
		var value T
		if unmarshalErr := json.Unmarshal(payload, &value); unmarshalErr == nil {
			return value, nil
		}
		// Corrupt payload, reload below
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("redis cache read failed", zap.String("key", key), zap.Error(err))
	}

	// A recent reload failed somewhere, keep serving the stale copy until
	// the retry window closes
	if armed, err := c.client.Exists(ctx, c.retryKey(key)).Result(); err == nil && armed > 0 {
		if stale, ok := c.staleValue(ctx, key); ok {
			return stale, nil
		}
	}

	value, err := loader(ctx)
	if err != nil {
		if stale, ok := c.staleValue(ctx, key); ok {
			if armErr := c.client.Set(ctx, c.retryKey(key), "1", c.retryDelay).Err(); armErr != nil {
				c.logger.Warn("failed to arm cache retry window",
					zap.String("key", key),
					zap.Error(armErr))
			}
			c.logger.Warn("cache reload failed, serving stale entry",
				zap.String("key", key),
				zap.Error(err))
			return stale, nil
		}
		var zero T
		return zero, err
	}

	c.store(ctx, key, value)
	return value, nil
}

// Invalidate drops both copies so the next read reloads the value
func (c *RedisTTLCache[T]) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.freshKey(key), c.staleKey(key), c.retryKey(key)).Err()
}

// Close closes the Redis client
func (c *RedisTTLCache[T]) Close() error {
	return c.client.Close()
}

func (c *RedisTTLCache[T]) store(ctx context.Context, key string, value T) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("failed to marshal cache entry", zap.String("key", key), zap.Error(err))
		return
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, c.freshKey(key), payload, c.ttl)
	pipe.Set(ctx, c.staleKey(key), payload, 2*c.ttl)
	pipe.Del(ctx, c.retryKey(key))
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("failed to store cache entry", zap.String("key", key), zap.Error(err))
	}
}

func (c *RedisTTLCache[T]) staleValue(ctx context.Context, key string) (T, bool) {
	var value T

	payload, err := c.client.Get(ctx, c.staleKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("redis stale read failed", zap.String("key", key), zap.Error(err))
		}
		return value, false
	}
	if err := json.Unmarshal(payload, &value); err != nil {
		return value, false
	}
	return value, true
}

func (c *RedisTTLCache[T]) freshKey(key string) string {
	return c.keyPrefix + key
}

func (c *RedisTTLCache[T]) staleKey(key string) string {
	return c.keyPrefix + "stale:" + key
}

func (c *RedisTTLCache[T]) retryKey(key string) string {
	return c.keyPrefix + "retry:" + key
}
