package storage

import (
	"context"
	"time"

	"github.com/mcoot/lineupsheet/internal/model"
)

// Storage defines the interface for lineup persistence.
//
// Implementations never enforce the logical expiry cutoff; callers check
// Lineup.IsExpired. Physical eviction happens on each backend's own schedule.
type Storage interface {
	// CreateLineup inserts a new lineup, failing with model.ErrLineupExists
	// if the ID is already in use
	CreateLineup(ctx context.Context, lineup *model.Lineup) error

	// GetLineup returns a copy of the stored lineup or model.ErrLineupNotFound
	GetLineup(ctx context.Context, id model.LineupID) (*model.Lineup, error)

	// ReplaceRoster overwrites the roster if the stored version still equals
	// expectedVersion, bumping the version. It returns model.ErrVersionConflict
	// when another writer got there first and model.ErrLineupNotFound when the
	// lineup is gone.
	ReplaceRoster(ctx context.Context, id model.LineupID, expectedVersion int64, roster model.Roster) error

	// Ping verifies the backend is reachable
	Ping(ctx context.Context) error

	// Close releases backend resources
	Close() error
}

// Sweeper is implemented by backends without native expiry eviction
type Sweeper interface {
	// Sweep deletes lineups whose ExpiresAt is before the given time and
	// returns how many were removed
	Sweep(ctx context.Context, before time.Time) (int, error)
}
