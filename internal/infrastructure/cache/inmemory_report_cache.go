// Package cache provides report memoization stores backed by process memory
// or Redis.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/taskilo/backend/internal/domain/reporting"
	"go.uber.org/zap"
)

// Constants for in-memory cache configuration
const (
	defaultCleanupInterval = 30 * time.Second
	defaultEntryTTL        = 5 * time.Minute
)

// InMemoryReportCache memoizes computed reports in process memory. It is
// suitable for single-instance deployments and testing.
type InMemoryReportCache struct {
	entries sync.Map // map[string]*cacheEntry
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	// Stats for monitoring
	hits   int64
	misses int64
}

// cacheEntry wraps a cached report with its expiration time
type cacheEntry struct {
	result    *reporting.Result
	expiresAt time.Time
}

// isExpired checks if the cache entry has expired
func (e *cacheEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryReportCacheOption is a functional option for configuring the cache
type InMemoryReportCacheOption func(*InMemoryReportCache)

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryReportCacheOption {
	return func(c *InMemoryReportCache) {
		c.logger = logger
	}
}

// NewInMemoryReportCache creates a new in-memory report cache
func NewInMemoryReportCache(opts ...InMemoryReportCacheOption) *InMemoryReportCache {
	cache := &InMemoryReportCache{
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	go cache.cleanupExpired()

	return cache
}

// Get retrieves a memoized report. A nil result with a nil error is a miss.
func (c *InMemoryReportCache) Get(ctx context.Context, key string) (*reporting.Result, error) {
	if value, ok := c.entries.Load(key); ok {
		entry := value.(*cacheEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			c.logger.Debug("Report cache hit", zap.String("key", key))
			return entry.result, nil
		}
		// Expired, remove from cache
		c.entries.Delete(key)
	}

	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("Report cache miss", zap.String("key", key))
	return nil, nil
}

// Set stores a computed report under the given key.
func (c *InMemoryReportCache) Set(ctx context.Context, key string, result *reporting.Result, ttl time.Duration) error {
	if result == nil {
		return nil
	}

	if ttl == 0 {
		ttl = defaultEntryTTL
	}

	c.entries.Store(key, &cacheEntry{
		result:    result,
		expiresAt: time.Now().Add(ttl),
	})
	c.logger.Debug("Memoized report",
		zap.String("key", key),
		zap.Duration("ttl", ttl))
	return nil
}

// Close stops the cleanup goroutine.
func (c *InMemoryReportCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns cache statistics
func (c *InMemoryReportCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of entries in the cache
func (c *InMemoryReportCache) Count() int {
	var count int
	c.entries.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// cleanupExpired periodically removes expired entries from the cache
func (c *InMemoryReportCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.doCleanup()
		}
	}
}

// doCleanup removes expired entries
func (c *InMemoryReportCache) doCleanup() {
	var removed int
	c.entries.Range(func(key, value any) bool {
		if value.(*cacheEntry).isExpired() {
			c.entries.Delete(key)
			removed++
		}
		return true
	})

	if removed > 0 {
		c.logger.Debug("Cleaned up expired report cache entries",
			zap.Int("removed", removed))
	}
}
