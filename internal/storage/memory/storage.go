package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/lineupsheet/internal/model"
	"github.com/mcoot/lineupsheet/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu      sync.RWMutex
	lineups map[model.LineupID]*model.Lineup
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		lineups: make(map[model.LineupID]*model.Lineup),
	}
}

// Ensure Storage implements the interfaces
var (
	_ storage.Storage = (*Storage)(nil)
	_ storage.Sweeper = (*Storage)(nil)
)

func (s *Storage) CreateLineup(ctx context.Context, lineup *model.Lineup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lineups[lineup.ID]; ok {
		return model.ErrLineupExists
	}
	s.lineups[lineup.ID] = lineup.Clone()
	return nil
}

func (s *Storage) GetLineup(ctx context.Context, id model.LineupID) (*model.Lineup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lineup, ok := s.lineups[id]
	if !ok {
		return nil, model.ErrLineupNotFound
	}
	return lineup.Clone(), nil
}

func (s *Storage) ReplaceRoster(ctx context.Context, id model.LineupID, expectedVersion int64, roster model.Roster) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lineup, ok := s.lineups[id]
	if !ok {
		return model.ErrLineupNotFound
	}
	if lineup.Version != expectedVersion {
		return model.ErrVersionConflict
	}
	lineup.Roster = roster.Clone()
	lineup.Version++
	return nil
}

// Sweep removes lineups that expired before the given time
func (s *Storage) Sweep(ctx context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, lineup := range s.lineups {
		if lineup.ExpiresAt.Before(before) {
			delete(s.lineups, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored lineups
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lineups)
}

func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

func (s *Storage) Close() error {
	return nil
}
