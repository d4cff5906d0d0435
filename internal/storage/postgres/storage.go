package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mcoot/lineupsheet/internal/model"
	"github.com/mcoot/lineupsheet/internal/storage"
)

const uniqueViolation = "23505"

// Storage is a Postgres-backed implementation of the storage interface.
// Expired rows are removed by Sweep.
type Storage struct {
	db *sqlx.DB
}

type lineupRow struct {
	ID           string    `db:"id"`
	TeamAName    string    `db:"team_a_name"`
	TeamBName    string    `db:"team_b_name"`
	TeamAColor   string    `db:"team_a_color"`
	TeamBColor   string    `db:"team_b_color"`
	PlayersCount int       `db:"players_count"`
	Positions    string    `db:"positions"`
	Roster       string    `db:"roster"`
	CreatedAt    time.Time `db:"created_at"`
	ExpiresAt    time.Time `db:"expires_at"`
	Version      int64     `db:"version"`
}

// New connects to Postgres and applies migrations
func New(ctx context.Context, cfg Config) (*Storage, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	db, err := sqlx.ConnectContext(connectCtx, "postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB creates a Postgres storage with an existing, migrated database
func NewWithDB(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// Ensure Storage implements the interfaces
var (
	_ storage.Storage = (*Storage)(nil)
	_ storage.Sweeper = (*Storage)(nil)
)

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) CreateLineup(ctx context.Context, lineup *model.Lineup) error {
	row, err := toRow(lineup)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO lineups (id, team_a_name, team_b_name, team_a_color, team_b_color,
			players_count, positions, roster, created_at, expires_at, version)
		VALUES (:id, :team_a_name, :team_b_name, :team_a_color, :team_b_color,
			:players_count, :positions, :roster, :created_at, :expires_at, :version)`

	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return model.ErrLineupExists
		}
		return fmt.Errorf("insert lineup: %w", err)
	}
	return nil
}

func (s *Storage) GetLineup(ctx context.Context, id model.LineupID) (*model.Lineup, error) {
	const query = `
		SELECT id, team_a_name, team_b_name, team_a_color, team_b_color,
			players_count, positions, roster, created_at, expires_at, version
		FROM lineups WHERE id = $1`

	var row lineupRow
	if err := s.db.GetContext(ctx, &row, query, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrLineupNotFound
		}
		return nil, fmt.Errorf("get lineup: %w", err)
	}
	return row.toModel()
}

func (s *Storage) ReplaceRoster(ctx context.Context, id model.LineupID, expectedVersion int64, roster model.Roster) error {
	data, err := json.Marshal(roster)
	if err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE lineups SET roster = $1, version = version + 1 WHERE id = $2 AND version = $3`,
		string(data), string(id), expectedVersion)
	if err != nil {
		return fmt.Errorf("update roster: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update roster: %w", err)
	}
	if n == 1 {
		return nil
	}

	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM lineups WHERE id = $1)`, string(id)); err != nil {
		return fmt.Errorf("check lineup: %w", err)
	}
	if !exists {
		return model.ErrLineupNotFound
	}
	return model.ErrVersionConflict
}

// Sweep deletes lineups that expired before the given time
func (s *Storage) Sweep(ctx context.Context, before time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lineups WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("sweep lineups: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep lineups: %w", err)
	}
	return int(n), nil
}

func toRow(l *model.Lineup) (*lineupRow, error) {
	positions, err := json.Marshal(l.Positions)
	if err != nil {
		return nil, fmt.Errorf("encode positions: %w", err)
	}
	roster, err := json.Marshal(l.Roster)
	if err != nil {
		return nil, fmt.Errorf("encode roster: %w", err)
	}
	return &lineupRow{
		ID:           string(l.ID),
		TeamAName:    l.TeamAName,
		TeamBName:    l.TeamBName,
		TeamAColor:   l.TeamAColor,
		TeamBColor:   l.TeamBColor,
		PlayersCount: l.PlayersCount,
		Positions:    string(positions),
		Roster:       string(roster),
		CreatedAt:    l.CreatedAt,
		ExpiresAt:    l.ExpiresAt,
		Version:      l.Version,
	}, nil
}

func (r *lineupRow) toModel() (*model.Lineup, error) {
	l := &model.Lineup{
		ID:           model.LineupID(r.ID),
		TeamAName:    r.TeamAName,
		TeamBName:    r.TeamBName,
		TeamAColor:   r.TeamAColor,
		TeamBColor:   r.TeamBColor,
		PlayersCount: r.PlayersCount,
		CreatedAt:    r.CreatedAt.UTC(),
		ExpiresAt:    r.ExpiresAt.UTC(),
		Version:      r.Version,
	}
	if err := json.Unmarshal([]byte(r.Positions), &l.Positions); err != nil {
		return nil, fmt.Errorf("decode positions: %w", err)
	}
	if err := json.Unmarshal([]byte(r.Roster), &l.Roster); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	return l, nil
}
