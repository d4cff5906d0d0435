package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/lineupsheet/internal/dependencies/clock"
	"github.com/mcoot/lineupsheet/internal/dependencies/random"
	"github.com/mcoot/lineupsheet/internal/metrics"
	"github.com/mcoot/lineupsheet/internal/services/janitor"
	"github.com/mcoot/lineupsheet/internal/services/lineup"
	"github.com/mcoot/lineupsheet/internal/storage"
	"github.com/mcoot/lineupsheet/internal/storage/memory"
	mongostorage "github.com/mcoot/lineupsheet/internal/storage/mongo"
	pgstorage "github.com/mcoot/lineupsheet/internal/storage/postgres"
	redisstorage "github.com/mcoot/lineupsheet/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypeMongo    = "mongo"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage     storage.Storage
	StorageType string
	// MemoryFallback is set when a persistent store was requested but
	// could not be opened, so lineups only live as long as the process
	MemoryFallback bool

	// External dependencies
	Clock   clock.Clock
	Random  random.Random
	Metrics *metrics.Recorder

	// Services
	LineupService *lineup.Service
	// Janitor is nil for stores with native expiry
	Janitor *janitor.Janitor
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// MongoConfig holds MongoDB settings (required if StorageType is "mongo")
	MongoConfig *mongostorage.Config
	// PostgresConfig holds Postgres settings (required if StorageType is "postgres")
	PostgresConfig *pgstorage.Config
	// FallbackMemory switches to in-memory storage when the configured
	// backend cannot be opened instead of failing startup
	FallbackMemory bool
	// EvictionGrace is how long expired lineups are kept before physical removal
	EvictionGrace time.Duration
	// SweepInterval is how often the janitor runs for stores without native expiry
	SweepInterval time.Duration
	// ServiceConfig tunes the lineup service
	ServiceConfig lineup.Config
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	store, err := openStorage(ctx, storageType, cfg)
	fallback := false
	if err != nil {
		if !cfg.FallbackMemory || errors.Is(err, errInvalidStorage) {
			return nil, err
		}
		logger.Warn("storage unavailable, falling back to in-memory storage",
			slog.String("storage_type", storageType),
			slog.String("error", err.Error()),
		)
		store = memory.New()
		storageType = StorageTypeMemory
		fallback = true
	}

	app := newWithDependencies(store, clock.New(), random.New(), metrics.NewRecorder(), cfg, logger)
	app.StorageType = storageType
	app.MemoryFallback = fallback
	return app, nil
}

var errInvalidStorage = errors.New("invalid StorageType: must be 'memory', 'redis', 'mongo' or 'postgres'")

func openStorage(ctx context.Context, storageType string, cfg Config) (storage.Storage, error) {
	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisCfg := *cfg.RedisConfig
		if cfg.EvictionGrace > 0 {
			redisCfg.EvictionGrace = cfg.EvictionGrace
		}
		return redisstorage.New(redisCfg)
	case StorageTypeMongo:
		if cfg.MongoConfig == nil {
			return nil, errors.New("MongoConfig required when StorageType is mongo")
		}
		mongoCfg := *cfg.MongoConfig
		if cfg.EvictionGrace > 0 {
			mongoCfg.EvictionGrace = cfg.EvictionGrace
		}
		return mongostorage.New(ctx, mongoCfg)
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		return pgstorage.New(ctx, *cfg.PostgresConfig)
	default:
		return nil, fmt.Errorf("%w: got %q", errInvalidStorage, storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	recorder *metrics.Recorder,
	cfg Config,
	logger *slog.Logger,
) *App {
	lineupService := lineup.NewService(store, clk, rnd, recorder, logger, cfg.ServiceConfig)

	var jan *janitor.Janitor
	if sweeper, ok := store.(storage.Sweeper); ok {
		jan = janitor.New(sweeper, clk, recorder, logger, cfg.EvictionGrace, cfg.SweepInterval)
	}

	return &App{
		Storage:       store,
		StorageType:   StorageTypeMemory,
		Clock:         clk,
		Random:        rnd,
		Metrics:       recorder,
		LineupService: lineupService,
		Janitor:       jan,
	}
}
