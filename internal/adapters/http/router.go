package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pai-platform/insight-service/internal/adapters/http/handlers"
	"github.com/pai-platform/insight-service/internal/adapters/http/middleware"
	"github.com/pai-platform/insight-service/internal/platform/config"
	"github.com/pai-platform/insight-service/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 30 * time.Second

// AdminRole is the role required for destructive maintenance endpoints.
const AdminRole = "admin"

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// AuthConfig contains authentication header configuration.
	AuthConfig *config.AuthConfig

	// AppConfig contains application configuration.
	AppConfig *config.AppConfig

	// HealthHandler handles health check endpoints.
	HealthHandler *handlers.HealthHandler

	// InsightHandler handles the interest and recommendation endpoints.
	InsightHandler *handlers.InsightHandler

	// Timeout is the default request timeout.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Request ID - generate/extract request ID
//  3. Correlation ID - handle distributed tracing correlation
//  4. OpenTelemetry - tracing and metrics
//  5. Logging - request logging (skips health endpoints)
//  6. Timeout - request deadline on the API group
//
// Route groups:
//   - /-/ (internal): health endpoints, no auth
//   - /api/v1/ (service API): authenticated insight endpoints
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.TracingMiddleware(cfg.AppConfig.Name),
		telemetry.Middleware(cfg.AppConfig.Name),
		middleware.Logging(cfg.Logger),
	)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	apiV1 := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		apiV1.Use(middleware.SimpleTimeout(cfg.Timeout))
	}

	apiV1.Use(middleware.RequireAuth(cfg.AuthConfig))

	if cfg.InsightHandler != nil {
		cfg.InsightHandler.RegisterInsightRoutes(apiV1,
			middleware.RequireRole(cfg.AuthConfig, AdminRole))
	}
}

// NewDefaultRouterConfig creates a RouterConfig with sensible defaults.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	appCfg *config.AppConfig,
	authCfg *config.AuthConfig,
	healthHandler *handlers.HealthHandler,
	insightHandler *handlers.InsightHandler,
) RouterConfig {
	return RouterConfig{
		Logger:         logger,
		AuthConfig:     authCfg,
		AppConfig:      appCfg,
		HealthHandler:  healthHandler,
		InsightHandler: insightHandler,
		Timeout:        DefaultRequestTimeout,
	}
}
