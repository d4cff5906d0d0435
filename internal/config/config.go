package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration for the server
type Config struct {
	Host     string
	Port     int
	LogLevel slog.Level

	Storage     StorageConfig
	RateLimit   RateLimitConfig
	MaxAttempts int
}

// StorageConfig selects and configures the lineup store
type StorageConfig struct {
	Type           string
	RedisURL       string
	MongoURI       string
	MongoDatabase  string
	PostgresURL    string
	FallbackMemory bool
	EvictionGrace  time.Duration
	SweepInterval  time.Duration
}

// RateLimitConfig throttles mutating requests per client. RPS 0 disables it.
type RateLimitConfig struct {
	RPS   float64
	Burst int
	// TrustProxy keys clients by the first X-Forwarded-For entry
	TrustProxy bool
}

// Load reads configuration from the environment, after applying an optional .env file
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	return FromEnv(), nil
}

// FromEnv reads configuration from environment variables with defaults
func FromEnv() Config {
	mongoURI := envOrDefault(envMongoURI, "")

	storageType := StorageMemory
	if mongoURI != "" {
		storageType = StorageMongo
	}
	storageType = strings.ToLower(envOrDefault(envStorageType, storageType))

	return Config{
		Host:     envOrDefault(envHost, ""),
		Port:     intEnvOrDefault(envPort, defaultPort),
		LogLevel: parseLevel(envOrDefault(envLogLevel, defaultLogLevel)),
		Storage: StorageConfig{
			Type:           storageType,
			RedisURL:       envOrDefault(envRedisURL, ""),
			MongoURI:       mongoURI,
			MongoDatabase:  envOrDefault(envMongoDatabase, defaultMongoDatabase),
			PostgresURL:    envOrDefault(envPostgresURL, ""),
			FallbackMemory: boolEnvOrDefault(envStorageFallbackMemory, true),
			EvictionGrace:  durationEnvOrDefault(envEvictionGrace, defaultEvictionGrace),
			SweepInterval:  durationEnvOrDefault(envSweepInterval, defaultSweepInterval),
		},
		RateLimit: RateLimitConfig{
			RPS:        floatEnvOrDefault(envRateLimitRPS, defaultRateLimitRPS),
			Burst:      intEnvOrDefault(envRateLimitBurst, defaultRateLimitBurst),
			TrustProxy: boolEnvOrDefault(envRateLimitTrustProxy, false),
		},
		MaxAttempts: intEnvOrDefault(envClaimMaxAttempts, 0),
	}
}

func parseLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo
	}
	return level
}
