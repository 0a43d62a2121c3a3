package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/taskilo/backend/internal/domain/reporting"
	"go.uber.org/zap"
)

// RedisConfig holds the connection parameters for the Redis-backed cache.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisReportCache memoizes computed reports in Redis so that multiple
// instances share one memoization space.
type RedisReportCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	logger     *zap.Logger
}

// RedisReportCacheOption is a functional option for configuring the cache
type RedisReportCacheOption func(*RedisReportCache)

// WithCacheLogger sets the logger for the cache
func WithCacheLogger(logger *zap.Logger) RedisReportCacheOption {
	return func(c *RedisReportCache) {
		c.logger = logger
	}
}

// NewRedisReportCache creates a new Redis-based report cache
func NewRedisReportCache(cfg RedisConfig, opts ...RedisReportCacheOption) (*RedisReportCache, error) {
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

	cache := &RedisReportCache{
		client:     client,
		ownsClient: true,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache, nil
}

// NewRedisReportCacheWithClient creates a cache with an existing Redis client.
// Note: The caller retains ownership of the client and is responsible for closing it
func NewRedisReportCacheWithClient(client *redis.Client, opts ...RedisReportCacheOption) *RedisReportCache {
	cache := &RedisReportCache{
		client:     client,
		ownsClient: false,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// Get retrieves a memoized report. A nil result with a nil error is a miss.
func (c *RedisReportCache) Get(ctx context.Context, key string) (*reporting.Result, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.logger.Debug("Report cache miss", zap.String("key", key))
		return nil, nil
	}
	if err != nil {
		c.logger.Error("Failed to get report from cache",
			zap.String("key", key),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get report from cache: %w", err)
	}

	var result reporting.Result
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Error("Failed to unmarshal cached report",
			zap.String("key", key),
			zap.Error(err))
		// Delete corrupted cache entry
		_ = c.client.Del(ctx, key)
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	c.logger.Debug("Report cache hit", zap.String("key", key))
	return &result, nil
}

// Set stores a computed report under the given key.
func (c *RedisReportCache) Set(ctx context.Context, key string, result *reporting.Result, ttl time.Duration) error {
	if result == nil {
		return nil
	}

	if ttl == 0 {
		ttl = defaultEntryTTL
	}

	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("Failed to marshal report",
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Error("Failed to set report in cache",
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to set report in cache: %w", err)
	}

	c.logger.Debug("Memoized report",
		zap.String("key", key),
		zap.Duration("ttl", ttl))
	return nil
}

// Close releases the Redis client if this cache owns it.
func (c *RedisReportCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisReportCache) GetClient() *redis.Client {
	return c.client
}
