package config

import "time"

const (
	envPort                  = "PORT"
	envHost                  = "HOST"
	envLogLevel              = "LOG_LEVEL"
	envStorageType           = "STORAGE_TYPE"
	envRedisURL              = "REDIS_URL"
	envMongoURI              = "MONGODB_URI"
	envMongoDatabase         = "MONGODB_DATABASE"
	envPostgresURL           = "POSTGRES_URL"
	envStorageFallbackMemory = "STORAGE_FALLBACK_MEMORY"
	envEvictionGrace         = "EVICTION_GRACE"
	envSweepInterval         = "SWEEP_INTERVAL"
	envRateLimitRPS          = "RATE_LIMIT_RPS"
	envRateLimitBurst        = "RATE_LIMIT_BURST"
	envRateLimitTrustProxy   = "RATE_LIMIT_TRUST_PROXY"
	envClaimMaxAttempts      = "CLAIM_MAX_ATTEMPTS"

	defaultPort          = 10000
	defaultLogLevel      = "info"
	defaultMongoDatabase = "lineup"
	// Matches the gap between logical expiry and Mongo TTL deletion
	defaultEvictionGrace  = time.Hour
	defaultSweepInterval  = 5 * time.Minute
	defaultRateLimitRPS   = 5.0
	defaultRateLimitBurst = 10
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"
)
