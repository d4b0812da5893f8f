package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Constants for in-memory cache configuration
const (
	defaultCleanupInterval = 30 * time.Second
	defaultEntryTTL        = 2 * time.Minute
	defaultRetryDelay      = 30 * time.Second
)

// cacheEntry wraps a cached value with its freshness bookkeeping
type cacheEntry[T any] struct {
	value     T
	expiresAt time.Time
	retryAt   time.Time
}

// isExpired checks if the cache entry has expired
func (e *cacheEntry[T]) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// ttlCacheConfig holds the tunables shared by the in-memory and Redis caches
type ttlCacheConfig struct {
	ttl             time.Duration
	retryDelay      time.Duration
	cleanupInterval time.Duration
	logger          *zap.Logger
}

// TTLCacheOption is a functional option for configuring a cache
type TTLCacheOption func(*ttlCacheConfig)

// WithEntryTTL sets how long a cached value counts as fresh
func WithEntryTTL(ttl time.Duration) TTLCacheOption {
	return func(c *ttlCacheConfig) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithRetryDelay sets how long reloads are paused after a failed one
func WithRetryDelay(d time.Duration) TTLCacheOption {
	return func(c *ttlCacheConfig) {
		if d > 0 {
			c.retryDelay = d
		}
	}
}

// WithCleanupInterval sets how often expired entries are swept.
// Only the in-memory cache sweeps; Redis expires keys itself.
func WithCleanupInterval(d time.Duration) TTLCacheOption {
	return func(c *ttlCacheConfig) {
		if d > 0 {
			c.cleanupInterval = d
		}
	}
}

// WithTTLCacheLogger sets the logger for the cache
func WithTTLCacheLogger(logger *zap.Logger) TTLCacheOption {
	return func(c *ttlCacheConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func newTTLCacheConfig(opts ...TTLCacheOption) ttlCacheConfig {
	cfg := ttlCacheConfig{
		ttl:             defaultEntryTTL,
		retryDelay:      defaultRetryDelay,
		cleanupInterval: defaultCleanupInterval,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// TTLCache is an in-memory read-through cache with per-entry expiry.
// Expired entries are kept around for one extra TTL: when a reload fails
// the stale value keeps being served and reloads are paused for the retry
// delay, so a struggling database is not hammered by every sidebar poll.
type TTLCache[T any] struct {
	entries sync.Map // map[string]*cacheEntry[T]
	config  ttlCacheConfig
	stopCh  chan struct{} // Channel to stop the cleanup goroutine
	stopped int32         // Atomic flag to track if cache is stopped

	// Stats for monitoring
	hits   int64
	misses int64
}

// NewTTLCache creates a new in-memory cache and starts its sweep goroutine
func NewTTLCache[T any](opts ...TTLCacheOption) *TTLCache[T] {
	cache := &TTLCache[T]{
		config: newTTLCacheConfig(opts...),
		stopCh: make(chan struct{}),
	}

	// Start background cleanup goroutine
	go cache.cleanupExpired()

	return cache
}

// GetOrLoad returns the cached value for key, invoking loader when the entry
// is missing or expired. When a reload fails and a stale value exists, the
// stale value is served and further reloads are paused for the retry delay;
// the error only surfaces when there is nothing to fall back to.
func (c *TTLCache[T]) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (T, error)) (T, error) {
	var stale *cacheEntry[T]

	if value, ok := c.entries.Load(key); ok {
		entry := value.(*cacheEntry[T])
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			return entry.value, nil
		}
		stale = entry
		// A recent reload failed, keep serving the stale value until
		// the retry window closes
		if time.Now().Before(entry.retryAt) {
			atomic.AddInt64(&c.hits, 1)
			return entry.value, nil
		}
	}

	atomic.AddInt64(&c.misses, 1)

	fresh, err := loader(ctx)
	if err != nil {
		if stale != nil {
			c.entries.Store(key, &cacheEntry[T]{
				value:     stale.value,
				expiresAt: stale.expiresAt,
				retryAt:   time.Now().Add(c.config.retryDelay),
			})
			c.config.logger.Warn("cache reload failed, serving stale entry",
				zap.String("key", key),
				zap.Error(err))
			return stale.value, nil
		}
		var zero T
		return zero, err
	}

	c.entries.Store(key, &cacheEntry[T]{
		value:     fresh,
		expiresAt: time.Now().Add(c.config.ttl),
	})
	return fresh, nil
}

// Invalidate drops the entry for key so the next read reloads it
func (c *TTLCache[T]) Invalidate(key string) {
	c.entries.Delete(key)
}

// Close releases any resources held by the cache
func (c *TTLCache[T]) Close() error {
	// Only close once
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns cache statistics
func (c *TTLCache[T]) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Len returns the number of entries in the cache, stale ones included
func (c *TTLCache[T]) Len() int {
	count := 0
	c.entries.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// cleanupExpired periodically removes entries that are too old to serve
// even as stale fallbacks
func (c *TTLCache[T]) cleanupExpired() {
	ticker := time.NewTicker(c.config.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						c.config.logger.Error("Panic in cache cleanup",
							zap.Any("panic", r))
					}
				}()
				c.doCleanup()
			}()
		}
	}
}

// doCleanup removes entries expired for longer than one TTL, which bounds
// how old a stale fallback can get to roughly twice the TTL
func (c *TTLCache[T]) doCleanup() {
	removed := 0
	staleHorizon := time.Now().Add(-c.config.ttl)

	c.entries.Range(func(key, value any) bool {
		entry := value.(*cacheEntry[T])
		if entry.expiresAt.Before(staleHorizon) {
			c.entries.Delete(key)
			removed++
		}
		return true
	})

	if removed > 0 {
		c.config.logger.Debug("Cleaned up expired cache entries",
			zap.Int("removed", removed))
	}
}
