// Package main is the entry point for the insight service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pai-platform/insight-service/internal/adapters/cache"
	"github.com/pai-platform/insight-service/internal/adapters/clients"
	"github.com/pai-platform/insight-service/internal/adapters/clients/acl"
	"github.com/pai-platform/insight-service/internal/adapters/http"
	"github.com/pai-platform/insight-service/internal/adapters/http/handlers"
	"github.com/pai-platform/insight-service/internal/adapters/scheduler"
	"github.com/pai-platform/insight-service/internal/adapters/storage/sqlite"
	"github.com/pai-platform/insight-service/internal/app"
	"github.com/pai-platform/insight-service/internal/platform/config"
	"github.com/pai-platform/insight-service/internal/platform/logging"
	"github.com/pai-platform/insight-service/internal/platform/telemetry"
	"github.com/pai-platform/insight-service/internal/ports"
)

// Build-time variables, injected via ldflags.
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Path:       logFilePath(cfg),
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	slog.SetDefault(logger)
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	healthRegistry := ports.NewHealthRegistry()

	db, err := sqlite.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := healthRegistry.Register(db); err != nil {
		return fmt.Errorf("registering database health check: %w", err)
	}

	interestRepo := sqlite.NewInterestRepository(db)
	analyticsRepo := sqlite.NewAnalyticsRepository(db)

	recCache, err := buildCache(cfg, logger)
	if err != nil {
		return fmt.Errorf("opening recommendation cache: %w", err)
	}
	if recCache != nil {
		defer recCache.Close()
	}

	provider, err := buildProvider(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating content provider: %w", err)
	}

	userClient, err := buildUserClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating user service client: %w", err)
	}

	ingestService := app.NewIngestService(app.IngestServiceConfig{
		Analytics: analyticsRepo,
		Interests: interestRepo,
		Logger:    logger,
	})

	recommendCfg := app.RecommendServiceConfig{
		Interests:   interestRepo,
		Provider:    provider,
		Profiles:    userClient,
		Locations:   userClient,
		Logger:      logger,
		TopKeywords: cfg.Recommend.TopKeywords,
		CacheTTL:    cfg.Cache.TTL,
	}
	if recCache != nil {
		recommendCfg.Cache = recCache
	}
	recommendService := app.NewRecommendService(recommendCfg)

	interestService := app.NewInterestService(interestRepo, logger)
	pruneService := app.NewPruneService(interestRepo, logger)

	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)
	healthHandler := handlers.NewHealthHandler(healthRegistry, buildInfo)
	insightHandler := handlers.NewInsightHandler(handlers.InsightHandlerConfig{
		Ingest:    ingestService,
		Interests: interestService,
		Recommend: recommendService,
		Prune:     pruneService,
	})

	server := http.New(&cfg.Server, logger)

	routerCfg := http.RouterConfig{
		Logger:         logger,
		AuthConfig:     &cfg.Auth,
		AppConfig:      &cfg.App,
		HealthHandler:  healthHandler,
		InsightHandler: insightHandler,
		Timeout:        http.DefaultRequestTimeout,
	}
	http.SetupRouter(server.Engine(), routerCfg)

	prunerCtx, stopPruner := context.WithCancel(ctx)
	defer stopPruner()

	if cfg.Prune.Enabled {
		pruner := scheduler.NewPruner(pruneService, scheduler.PrunerConfig{
			RunAt:    cfg.Prune.RunAt,
			MinDays:  cfg.Prune.MinDays,
			MaxScore: cfg.Prune.MaxScore,
			Logger:   logger,
		})
		go pruner.Run(prunerCtx)
	}

	serverErr := server.Start()

	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

// buildCache opens the badger recommendation cache, or returns nil when
// caching is disabled.
func buildCache(cfg *config.Config, logger *slog.Logger) (*cache.BadgerCache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}

	if cfg.Cache.InMemory {
		return cache.NewInMemoryBadgerCache(logger)
	}

	return cache.NewBadgerCache(cfg.Cache.Path, logger)
}

// buildProvider creates the tourism content provider, falling back to the
// built-in mock catalog when no API key is configured.
func buildProvider(cfg *config.Config, logger *slog.Logger) (ports.ContentProvider, error) {
	if cfg.Services.Tourism.ServiceKey == "" {
		logger.Warn("no tourism service key configured, using mock content provider")
		return acl.NewMockProvider(logger), nil
	}

	httpClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Services.Tourism.BaseURL,
		ServiceName: cfg.Services.Tourism.Name,
		Timeout:     cfg.Client.Timeout,
		Retry: clients.RetryConfig{
			MaxAttempts:     cfg.Client.Retry.MaxAttempts,
			InitialInterval: cfg.Client.Retry.InitialInterval,
			MaxInterval:     cfg.Client.Retry.MaxInterval,
			Multiplier:      cfg.Client.Retry.Multiplier,
		},
		Breaker: clients.BreakerConfig{
			MaxFailures:   cfg.Client.CircuitBreaker.MaxFailures,
			Timeout:       cfg.Client.CircuitBreaker.Timeout,
			HalfOpenLimit: cfg.Client.CircuitBreaker.HalfOpenLimit,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	return acl.NewTourismProvider(acl.TourismProviderConfig{
		Client:     httpClient,
		ServiceKey: cfg.Services.Tourism.ServiceKey,
		Logger:     logger,
	}), nil
}

// buildUserClient creates the user service client used for profile and
// location lookups.
func buildUserClient(cfg *config.Config, logger *slog.Logger) (*acl.UserServiceClient, error) {
	httpClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Services.User.BaseURL,
		ServiceName: cfg.Services.User.Name,
		Timeout:     cfg.Client.Timeout,
		Retry: clients.RetryConfig{
			MaxAttempts:     cfg.Client.Retry.MaxAttempts,
			InitialInterval: cfg.Client.Retry.InitialInterval,
			MaxInterval:     cfg.Client.Retry.MaxInterval,
			Multiplier:      cfg.Client.Retry.Multiplier,
		},
		Breaker: clients.BreakerConfig{
			MaxFailures:   cfg.Client.CircuitBreaker.MaxFailures,
			Timeout:       cfg.Client.CircuitBreaker.Timeout,
			HalfOpenLimit: cfg.Client.CircuitBreaker.HalfOpenLimit,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	return acl.NewUserServiceClient(acl.UserServiceClientConfig{
		Client: httpClient,
		Logger: logger,
	}), nil
}

func logFilePath(cfg *config.Config) string {
	if !cfg.Log.File.Enabled {
		return ""
	}

	return cfg.Log.File.Path
}

// waitForShutdown blocks until a shutdown signal arrives or the server
// fails, then drains in-flight requests.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
	)

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
