// Package router assembles the gin engine: middleware stack, versioned API
// groups, and health endpoints.
package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/taskilo/backend/internal/infrastructure/config"
	"github.com/taskilo/backend/internal/infrastructure/logger"
	"github.com/taskilo/backend/internal/infrastructure/telemetry"
	"github.com/taskilo/backend/internal/interfaces/http/middleware"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
		registrars: make([]RouteRegistrar, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)

	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// EngineConfig carries the dependencies for building the HTTP engine.
type EngineConfig struct {
	Config *config.Config
	Logger *zap.Logger
	Meter  metric.Meter
}

// NewEngine builds a gin engine with the standard middleware stack applied:
// request ID, structured logging, panic recovery, CORS, security headers,
// body size limiting, HTTP metrics, and request validation.
func NewEngine(ec EngineConfig) *gin.Engine {
	if ec.Config != nil && ec.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log := ec.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()

	if ec.Config != nil && len(ec.Config.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(ec.Config.HTTP.TrustedProxies)
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORSWithConfig(corsConfig(ec.Config)))
	engine.Use(middleware.Secure())
	if ec.Config != nil && ec.Config.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(ec.Config.HTTP.MaxBodySize))
	}

	meter := ec.Meter
	if meter == nil {
		meter = telemetry.Meter()
	}
	engine.Use(middleware.HTTPMetrics(meter, true))

	middleware.SetupValidator()

	return engine
}

// corsConfig maps the HTTP config onto the CORS middleware configuration,
// keeping the middleware defaults for anything not configured.
func corsConfig(cfg *config.Config) middleware.CORSConfig {
	cc := middleware.DefaultCORSConfig()
	if cfg == nil {
		return cc
	}
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		cc.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cc.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cc.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	return cc
}
