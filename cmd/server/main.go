package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	appreporting "github.com/taskilo/backend/internal/application/reporting"
	"github.com/taskilo/backend/internal/domain/reporting"
	"github.com/taskilo/backend/internal/infrastructure/cache"
	"github.com/taskilo/backend/internal/infrastructure/config"
	"github.com/taskilo/backend/internal/infrastructure/logger"
	"github.com/taskilo/backend/internal/infrastructure/telemetry"
	"github.com/taskilo/backend/internal/interfaces/http/handler"
	"github.com/taskilo/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.NewFromConfig(cfg.Log, cfg.App.Env)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting reporting backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Report metrics against the global meter provider. Without an SDK
	// installed this is a no-op, so startup never depends on a collector.
	metrics, err := telemetry.NewReportMetrics(telemetry.ReportMetricsConfig{
		Meter:  telemetry.Meter(),
		Logger: log,
	})
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	// Aggregation engine with the configured defaults
	engine := reporting.NewEngine(cfg.Report.EngineOptions()...)

	// Service options assembled incrementally so the cache stays optional
	serviceOpts := []appreporting.ReportServiceOption{
		appreporting.WithEngine(engine),
		appreporting.WithLogger(log),
		appreporting.WithMetrics(metrics),
	}

	if cfg.Cache.Enabled {
		factory := cache.NewReportCacheFactory(cfg.Redis,
			cache.WithLogger(log),
			cache.WithInMemoryFallback(!cfg.Cache.RequireRedis),
		)
		reportCache, err := factory.CreateCache()
		if err != nil {
			log.Fatal("Failed to initialize report cache", zap.Error(err))
		}
		defer func() {
			if err := reportCache.Close(); err != nil {
				log.Error("Error closing report cache", zap.Error(err))
			}
		}()
		serviceOpts = append(serviceOpts,
			appreporting.WithCache(reportCache),
			appreporting.WithCacheTTL(cfg.Cache.TTL),
		)
		log.Info("Report cache enabled", zap.Duration("ttl", cfg.Cache.TTL))
	}

	reportService := appreporting.NewReportService(serviceOpts...)

	// config.Load already validated the window token
	defaultWindow, err := reporting.ParseWindow(cfg.Report.DefaultWindow)
	if err != nil {
		log.Fatal("Invalid default report window", zap.Error(err))
	}
	reportHandler := handler.NewReportHandler(reportService, log,
		handler.WithDefaultWindow(defaultWindow))

	// HTTP engine with the standard middleware stack
	ginEngine := router.NewEngine(router.EngineConfig{
		Config: cfg,
		Logger: log,
		Meter:  telemetry.Meter(),
	})

	r := router.NewRouter(ginEngine, router.WithAPIVersion("v1"))
	r.Register(reportHandler)
	r.Setup()

	// Health endpoint outside the versioned API for probes
	ginEngine.GET("/healthz", reportHandler.Health)

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        ginEngine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
