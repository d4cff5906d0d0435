package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/lineupsheet/internal/model"
	"github.com/mcoot/lineupsheet/internal/storage"
)

// minKeyTTL keeps already-expired lineups addressable briefly after creation
const minKeyTTL = time.Minute

// Storage is a Redis-backed implementation of the storage interface.
// Each lineup is a JSON blob whose key TTL ends EvictionGrace after ExpiresAt.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping checks the connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) keyTTL(lineup *model.Lineup) time.Duration {
	ttl := time.Until(lineup.ExpiresAt.Add(s.cfg.EvictionGrace))
	if ttl < minKeyTTL {
		return minKeyTTL
	}
	return ttl
}

func (s *Storage) CreateLineup(ctx context.Context, lineup *model.Lineup) error {
	data, err := json.Marshal(lineup)
	if err != nil {
		return err
	}

	created, err := s.client.SetNX(ctx, lineupKey(lineup.ID), data, s.keyTTL(lineup)).Result()
	if err != nil {
		return err
	}
	if !created {
		return model.ErrLineupExists
	}
	return nil
}

func (s *Storage) GetLineup(ctx context.Context, id model.LineupID) (*model.Lineup, error) {
	data, err := s.client.Get(ctx, lineupKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrLineupNotFound
		}
		return nil, err
	}

	return decodeLineup(data)
}

// ReplaceRoster uses WATCH/MULTI so a concurrent writer between our read
// and our write aborts the transaction instead of being overwritten
func (s *Storage) ReplaceRoster(ctx context.Context, id model.LineupID, expectedVersion int64, roster model.Roster) error {
	key := lineupKey(id)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrLineupNotFound
			}
			return err
		}

		lineup, err := decodeLineup(data)
		if err != nil {
			return err
		}
		if lineup.Version != expectedVersion {
			return model.ErrVersionConflict
		}

		lineup.Roster = roster
		lineup.Version++
		updated, err := json.Marshal(lineup)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, redis.KeepTTL)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return model.ErrVersionConflict
	}
	return err
}

func decodeLineup(data []byte) (*model.Lineup, error) {
	var lineup model.Lineup
	if err := json.Unmarshal(data, &lineup); err != nil {
		return nil, fmt.Errorf("decode lineup: %w", err)
	}
	return &lineup, nil
}
