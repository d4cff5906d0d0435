package mongo

import "time"

// Config holds MongoDB connection configuration
type Config struct {
	URI           string
	Database      string
	Collection    string
	EvictionGrace time.Duration
}

// DefaultConfig returns a default MongoDB configuration
func DefaultConfig() Config {
	return Config{
		URI:           "mongodb://localhost:27017",
		Database:      "lineup",
		Collection:    "lineups",
		EvictionGrace: time.Hour,
	}
}
