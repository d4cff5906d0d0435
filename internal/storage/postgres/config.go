package postgres

import "time"

// Config holds Postgres connection configuration
type Config struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns a default Postgres configuration
func DefaultConfig() Config {
	return Config{
		URL:             "postgres://localhost:5432/lineup?sslmode=disable",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	}
}
