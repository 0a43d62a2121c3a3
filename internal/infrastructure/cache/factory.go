package cache

import (
	"fmt"

	appreporting "github.com/taskilo/backend/internal/application/reporting"
	"github.com/taskilo/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ReportCacheFactory creates report caches based on configuration
type ReportCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ReportCacheFactoryOption is a functional option for configuring the factory
type ReportCacheFactoryOption func(*ReportCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ReportCacheFactoryOption {
	return func(f *ReportCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true (allow fallback)
func WithInMemoryFallback(allow bool) ReportCacheFactoryOption {
	return func(f *ReportCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewReportCacheFactory creates a new factory
func NewReportCacheFactory(cfg config.RedisConfig, opts ...ReportCacheFactoryOption) *ReportCacheFactory {
	f := &ReportCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-based report cache
func (f *ReportCacheFactory) CreateRedisCache() (appreporting.ReportCache, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	store, err := NewRedisReportCache(redisCfg, WithCacheLogger(f.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis report cache: %w", err)
	}

	return store, nil
}

// CreateInMemoryCache creates an in-memory report cache.
// WARNING: In-memory caches do not share state across process instances;
// each instance memoizes independently.
func (f *ReportCacheFactory) CreateInMemoryCache() appreporting.ReportCache {
	return NewInMemoryReportCache(WithInMemoryLogger(f.logger))
}

// CreateCache creates a report cache based on whether Redis is available.
// It tries Redis first, and falls back to in-memory if Redis is not available
// and AllowInMemoryFallback is true
func (f *ReportCacheFactory) CreateCache() (appreporting.ReportCache, error) {
	store, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis report cache")
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for report cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory report cache.",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}

// Compile-time interface checks.
var (
	_ appreporting.ReportCache = (*InMemoryReportCache)(nil)
	_ appreporting.ReportCache = (*RedisReportCache)(nil)
)
