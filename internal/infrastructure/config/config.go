package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/taskilo/backend/internal/domain/reporting"
)

// Config holds all application configuration
type Config struct {
	App    AppConfig
	Redis  RedisConfig
	Log    LogConfig
	HTTP   HTTPConfig
	Report ReportConfig
	Cache  CacheConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// ReportConfig holds the aggregation engine defaults.
type ReportConfig struct {
	DefaultWindow       string  // 7d, 30d, 90d, 365d
	DefaultVATRate      float64 // percent, e.g. 19
	MinorUnitThreshold  int64   // integer magnitude that flips amounts to cents
	QuoteFallbackAmount float64 // placeholder for accepted quotes without a value
	OrdersUnit          string  // auto, minor, major
	QuotesUnit          string
	InvoicesUnit        string
}

// CacheConfig holds report memoization settings
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	RequireRedis bool // fail startup instead of falling back to in-memory
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with TASKILO_ prefix (e.g., TASKILO_REDIS_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	// Set config file settings
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Enable environment variable override
	v.SetEnvPrefix("TASKILO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Build config struct
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Report: ReportConfig{
			DefaultWindow:       v.GetString("report.default_window"),
			DefaultVATRate:      v.GetFloat64("report.default_vat_rate"),
			MinorUnitThreshold:  v.GetInt64("report.minor_unit_threshold"),
			QuoteFallbackAmount: v.GetFloat64("report.quote_fallback_amount"),
			OrdersUnit:          v.GetString("report.orders_unit"),
			QuotesUnit:          v.GetString("report.quotes_unit"),
			InvoicesUnit:        v.GetString("report.invoices_unit"),
		},
		Cache: CacheConfig{
			Enabled:      v.GetBool("cache.enabled"),
			TTL:          v.GetDuration("cache.ttl"),
			RequireRedis: v.GetBool("cache.require_redis"),
		},
	}

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "taskilo-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	// NOTE: CORS origins are intentionally not given a default fallback to "*".
	// An empty list means no cross-origin requests are allowed until explicitly configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Report.DefaultWindow == "" {
		cfg.Report.DefaultWindow = string(reporting.DefaultWindow)
	}
	if cfg.Report.DefaultVATRate == 0 {
		cfg.Report.DefaultVATRate = 19
	}
	if cfg.Report.MinorUnitThreshold == 0 {
		cfg.Report.MinorUnitThreshold = reporting.DefaultMinorUnitThreshold
	}
	if cfg.Report.QuoteFallbackAmount == 0 {
		cfg.Report.QuoteFallbackAmount = 100
	}
	if cfg.Report.OrdersUnit == "" {
		cfg.Report.OrdersUnit = string(reporting.UnitHintAuto)
	}
	if cfg.Report.QuotesUnit == "" {
		cfg.Report.QuotesUnit = string(reporting.UnitHintAuto)
	}
	if cfg.Report.InvoicesUnit == "" {
		cfg.Report.InvoicesUnit = string(reporting.UnitHintAuto)
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 5 * time.Minute
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if _, err := reporting.ParseWindow(c.Report.DefaultWindow); err != nil {
		return fmt.Errorf("report.default_window: unknown window token %q", c.Report.DefaultWindow)
	}
	if c.Report.DefaultVATRate < 0 || c.Report.DefaultVATRate >= 100 {
		return fmt.Errorf("report.default_vat_rate must be in [0, 100), got %f", c.Report.DefaultVATRate)
	}
	if c.Report.MinorUnitThreshold < 0 {
		return fmt.Errorf("report.minor_unit_threshold cannot be negative")
	}
	if c.Report.QuoteFallbackAmount < 0 {
		return fmt.Errorf("report.quote_fallback_amount cannot be negative")
	}
	for name, unit := range map[string]string{
		"report.orders_unit":   c.Report.OrdersUnit,
		"report.quotes_unit":   c.Report.QuotesUnit,
		"report.invoices_unit": c.Report.InvoicesUnit,
	} {
		if !reporting.UnitHint(unit).IsValid() {
			return fmt.Errorf("%s: unknown unit hint %q", name, unit)
		}
	}

	// Production-specific validations
	if c.App.Env == "production" {
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// EngineOptions translates the report section into aggregation engine options.
func (r *ReportConfig) EngineOptions() []reporting.EngineOption {
	return []reporting.EngineOption{
		reporting.WithUnitThreshold(r.MinorUnitThreshold),
		reporting.WithDefaultVATRate(decimal.NewFromFloat(r.DefaultVATRate)),
		reporting.WithQuoteFallbackAmount(decimal.NewFromFloat(r.QuoteFallbackAmount)),
		reporting.WithUnitHints(reporting.UnitHints{
			Orders:   reporting.UnitHint(r.OrdersUnit),
			Quotes:   reporting.UnitHint(r.QuotesUnit),
			Invoices: reporting.UnitHint(r.InvoicesUnit),
		}),
	}
}
