package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/lineupsheet/internal/api"
	"github.com/mcoot/lineupsheet/internal/api/middleware"
	"github.com/mcoot/lineupsheet/internal/config"
	"github.com/mcoot/lineupsheet/internal/factory"
	"github.com/mcoot/lineupsheet/internal/services/lineup"
	mongostorage "github.com/mcoot/lineupsheet/internal/storage/mongo"
	pgstorage "github.com/mcoot/lineupsheet/internal/storage/postgres"
	redisstorage "github.com/mcoot/lineupsheet/internal/storage/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create application factory. A backend without a URL fails to open,
	// which falls back to memory when STORAGE_FALLBACK_MEMORY allows it.
	app, err := factory.New(ctx, buildFactoryConfig(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Storage.Close(); err != nil {
			logger.Warn("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	// Stores without native expiry are swept in the background
	if app.Janitor != nil {
		app.Janitor.Start(ctx)
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.RPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.TrustProxy, app.Metrics)
		limiter.StartJanitor(ctx)
	}

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		LineupService:  app.LineupService,
		Storage:        app.Storage,
		StorageType:    app.StorageType,
		MemoryFallback: app.MemoryFallback,
		Metrics:        app.Metrics,
		RateLimiter:    limiter,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", app.StorageType),
		slog.Bool("memory_fallback", app.MemoryFallback),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

// buildFactoryConfig maps runtime configuration onto the factory's backend
// settings. The backend config stays nil when its URL is unset.
func buildFactoryConfig(cfg config.Config, logger *slog.Logger) factory.Config {
	serviceCfg := lineup.DefaultConfig()
	if cfg.MaxAttempts > 0 {
		serviceCfg.MaxAttempts = cfg.MaxAttempts
	}

	fc := factory.Config{
		Logger:         logger,
		StorageType:    cfg.Storage.Type,
		FallbackMemory: cfg.Storage.FallbackMemory,
		EvictionGrace:  cfg.Storage.EvictionGrace,
		SweepInterval:  cfg.Storage.SweepInterval,
		ServiceConfig:  serviceCfg,
	}

	switch cfg.Storage.Type {
	case config.StorageRedis:
		if cfg.Storage.RedisURL != "" {
			redisCfg := redisstorage.DefaultConfig()
			redisCfg.URL = cfg.Storage.RedisURL
			fc.RedisConfig = &redisCfg
		}
	case config.StorageMongo:
		if cfg.Storage.MongoURI != "" {
			mongoCfg := mongostorage.DefaultConfig()
			mongoCfg.URI = cfg.Storage.MongoURI
			mongoCfg.Database = cfg.Storage.MongoDatabase
			fc.MongoConfig = &mongoCfg
		}
	case config.StoragePostgres:
		if cfg.Storage.PostgresURL != "" {
			pgCfg := pgstorage.DefaultConfig()
			pgCfg.URL = cfg.Storage.PostgresURL
			fc.PostgresConfig = &pgCfg
		}
	}

	return fc
}
