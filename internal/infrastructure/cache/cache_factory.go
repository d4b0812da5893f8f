package cache

import (
	"context"
	"fmt"

	"github.com/bettstax/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Cache is a read-through cache with stale fallback, keyed by string
type Cache[T any] interface {
	GetOrLoad(ctx context.Context, key string, loader func(context.Context) (T, error)) (T, error)
}

// cacheFactoryConfig holds the factory tunables so the functional options
// stay free of type parameters
type cacheFactoryConfig struct {
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// CacheFactoryOption is a functional option for configuring the factory
type CacheFactoryOption func(*cacheFactoryConfig)

// WithCacheFactoryLogger sets the logger for the factory and its caches
func WithCacheFactoryLogger(logger *zap.Logger) CacheFactoryOption {
	return func(c *cacheFactoryConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCacheInMemoryFallback controls whether to fall back to an in-memory
// cache when Redis is unavailable. Default is true (allow fallback).
func WithCacheInMemoryFallback(allow bool) CacheFactoryOption {
	return func(c *cacheFactoryConfig) {
		c.allowInMemoryFallback = allow
	}
}

// CacheFactory creates read-through caches based on configuration
type CacheFactory[T any] struct {
	cacheConfig config.CacheConfig
	redisConfig config.RedisConfig
	keyPrefix   string
	factoryCfg  cacheFactoryConfig
}

// NewCacheFactory creates a new factory. The key prefix namespaces this
// cache's keys when several caches share one Redis database.
func NewCacheFactory[T any](cacheCfg config.CacheConfig, redisCfg config.RedisConfig, keyPrefix string, opts ...CacheFactoryOption) *CacheFactory[T] {
	f := &CacheFactory[T]{
		cacheConfig: cacheCfg,
		redisConfig: redisCfg,
		keyPrefix:   keyPrefix,
		factoryCfg: cacheFactoryConfig{
			logger:                zap.NewNop(),
			allowInMemoryFallback: true, // Default to allowing fallback
		},
	}

	for _, opt := range opts {
		opt(&f.factoryCfg)
	}

	return f
}

// CreateRedisCache creates a Redis-backed cache
func (f *CacheFactory[T]) CreateRedisCache() (Cache[T], error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	cache, err := NewRedisTTLCache[T](redisCfg, f.keyPrefix, f.entryOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis cache: %w", err)
	}

	return cache, nil
}

// CreateInMemoryCache creates an in-memory cache.
// This is suitable for single-instance deployments and testing; each
// instance refreshes its own copy of every entry.
func (f *CacheFactory[T]) CreateInMemoryCache() Cache[T] {
	return NewTTLCache[T](f.entryOptions()...)
}

// CreateCache creates a cache based on the configured type. When Redis is
// requested but unavailable, it falls back to in-memory if fallback is
// allowed.
func (f *CacheFactory[T]) CreateCache() (Cache[T], error) {
	if f.cacheConfig.Type != "redis" {
		f.factoryCfg.logger.Info("using in-memory cache", zap.String("prefix", f.keyPrefix))
		return f.CreateInMemoryCache(), nil
	}

	cache, err := f.CreateRedisCache()
	if err == nil {
		f.factoryCfg.logger.Info("using Redis cache", zap.String("prefix", f.keyPrefix))
		return cache, nil
	}

	// Check if fallback is allowed
	if !f.factoryCfg.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for caching but unavailable: %w", err)
	}

	// Fall back to in-memory with warning
	f.factoryCfg.logger.Warn("Redis unavailable, falling back to in-memory cache. "+
		"Each instance will refresh its own entries.",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}

// entryOptions maps the cache configuration onto per-entry options
func (f *CacheFactory[T]) entryOptions() []TTLCacheOption {
	opts := []TTLCacheOption{WithTTLCacheLogger(f.factoryCfg.logger)}
	if f.cacheConfig.TTL > 0 {
		opts = append(opts, WithEntryTTL(f.cacheConfig.TTL))
	}
	if f.cacheConfig.RetryDelay > 0 {
		opts = append(opts, WithRetryDelay(f.cacheConfig.RetryDelay))
	}
	return opts
}
