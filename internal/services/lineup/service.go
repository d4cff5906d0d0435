// Package lineup sequences storage access around the claim engine.
package lineup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mcoot/lineupsheet/internal/dependencies/clock"
	"github.com/mcoot/lineupsheet/internal/dependencies/random"
	"github.com/mcoot/lineupsheet/internal/metrics"
	"github.com/mcoot/lineupsheet/internal/model"
	"github.com/mcoot/lineupsheet/internal/services/claim"
	"github.com/mcoot/lineupsheet/internal/storage"
)

const (
	// IDLength is the length of generated lineup IDs
	IDLength = 12

	// DefaultMaxAttempts bounds the read-decide-write loop per request.
	// Every lost race means another write landed, so this covers a full
	// sheet being claimed at once with room for releases in between.
	DefaultMaxAttempts = 4 * model.RosterSize

	DefaultRetryBaseDelay = 2 * time.Millisecond
	DefaultRetryMaxDelay  = 50 * time.Millisecond

	maxIDAttempts = 5
)

const (
	opCreate  = "create"
	opRead    = "read"
	opClaim   = "claim"
	opUnclaim = "unclaim"
)

// Config tunes the service
type Config struct {
	// MaxAttempts is how many times a claim or unclaim re-reads the lineup
	// after losing a concurrent write before giving up with ErrContention
	MaxAttempts int
	// RetryBaseDelay and RetryMaxDelay bound the jittered exponential
	// wait between attempts
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

// DefaultConfig returns the default service configuration
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    DefaultMaxAttempts,
		RetryBaseDelay: DefaultRetryBaseDelay,
		RetryMaxDelay:  DefaultRetryMaxDelay,
	}
}

// Service creates, reads and mutates lineups
type Service struct {
	storage     storage.Storage
	clock       clock.Clock
	random      random.Random
	metrics     *metrics.Recorder
	logger      *slog.Logger
	maxAttempts int
	retryBase   time.Duration
	retryMax    time.Duration
}

// NewService creates a new lineup service
func NewService(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	recorder *metrics.Recorder,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if cfg.RetryMaxDelay < cfg.RetryBaseDelay {
		cfg.RetryMaxDelay = max(DefaultRetryMaxDelay, cfg.RetryBaseDelay)
	}
	return &Service{
		storage:     storage,
		clock:       clock,
		random:      random,
		metrics:     recorder,
		logger:      logger,
		maxAttempts: cfg.MaxAttempts,
		retryBase:   cfg.RetryBaseDelay,
		retryMax:    cfg.RetryMaxDelay,
	}
}

// Create normalizes the input, assigns a fresh ID and persists the lineup
func (s *Service) Create(ctx context.Context, in model.CreateInput) (*model.Lineup, error) {
	lineup := model.NormalizeCreate(in, s.clock.Now())

	for attempt := 1; ; attempt++ {
		lineup.ID = model.LineupID(s.random.String(IDLength, random.IDAlphabet))

		err := s.storage.CreateLineup(ctx, lineup)
		if err == nil {
			break
		}
		if !errors.Is(err, model.ErrLineupExists) || attempt >= maxIDAttempts {
			s.metrics.RecordOperation(opCreate, metrics.OutcomeError)
			return nil, fmt.Errorf("create lineup: %w", err)
		}
		s.logger.Warn("lineup id collision", "lineup_id", lineup.ID, "attempt", attempt)
	}

	s.metrics.RecordOperation(opCreate, metrics.OutcomeOK)
	s.metrics.RecordLineupCreated()
	s.logger.Info("lineup created",
		"lineup_id", lineup.ID,
		"players_count", lineup.PlayersCount,
		"expires_at", lineup.ExpiresAt,
	)
	return lineup, nil
}

// Read returns the lineup unless it is missing or past its expiry
func (s *Service) Read(ctx context.Context, id model.LineupID) (*model.Lineup, error) {
	lineup, err := s.storage.GetLineup(ctx, id)
	if err != nil {
		s.recordFailure(opRead, err)
		return nil, err
	}
	if lineup.IsExpired(s.clock.Now()) {
		s.recordFailure(opRead, model.ErrLinkExpired)
		return nil, model.ErrLinkExpired
	}

	s.metrics.RecordOperation(opRead, metrics.OutcomeOK)
	return lineup, nil
}

// Claim assigns an open slot to the participant and returns the updated roster
func (s *Service) Claim(ctx context.Context, id model.LineupID, req model.ClaimRequest) (model.Roster, error) {
	if err := req.Validate(); err != nil {
		s.recordFailure(opClaim, err)
		return model.Roster{}, err
	}

	roster, err := s.mutate(ctx, opClaim, id, func(l *model.Lineup, now time.Time) claim.Decision {
		return claim.DecideClaim(l, now, req)
	})
	if err != nil {
		return model.Roster{}, err
	}

	req = req.Normalized()
	s.logger.Info("slot claimed",
		"lineup_id", id,
		"participant_id", req.ParticipantID,
		"team", req.Team,
		"index", *req.Index,
	)
	return roster, nil
}

// Unclaim releases a slot held by the participant and returns the updated roster
func (s *Service) Unclaim(ctx context.Context, id model.LineupID, req model.UnclaimRequest) (model.Roster, error) {
	if err := req.Validate(); err != nil {
		s.recordFailure(opUnclaim, err)
		return model.Roster{}, err
	}

	roster, err := s.mutate(ctx, opUnclaim, id, func(l *model.Lineup, now time.Time) claim.Decision {
		return claim.DecideUnclaim(l, now, req)
	})
	if err != nil {
		return model.Roster{}, err
	}

	req = req.Normalized()
	s.logger.Info("slot released",
		"lineup_id", id,
		"participant_id", req.ParticipantID,
		"team", req.Team,
		"index", *req.Index,
	)
	return roster, nil
}

// mutate runs read-decide-write until the write lands on the version it was
// decided against. Each retry re-decides on fresh state, so a lost race
// surfaces as the rejection the newer roster produces. Retries wait a jittered,
// growing delay and stop early when ctx is done.
func (s *Service) mutate(
	ctx context.Context,
	op string,
	id model.LineupID,
	decide func(*model.Lineup, time.Time) claim.Decision,
) (model.Roster, error) {
	var (
		roster  model.Roster
		attempt int
	)

	err := backoff.Retry(func() error {
		attempt++
		lineup, err := s.storage.GetLineup(ctx, id)
		if err != nil {
			return backoff.Permanent(err)
		}

		decision := decide(lineup, s.clock.Now())
		if !decision.Accepted {
			s.logger.Debug("request rejected", "operation", op, "lineup_id", id, "reason", decision.Reason)
			return backoff.Permanent(decision.Err())
		}

		err = s.storage.ReplaceRoster(ctx, id, lineup.Version, decision.Roster)
		switch {
		case err == nil:
			roster = decision.Roster
			return nil
		case errors.Is(err, model.ErrVersionConflict):
			s.metrics.RecordVersionConflict(op)
			s.logger.Debug("version conflict, retrying", "operation", op, "lineup_id", id, "attempt", attempt)
			return err
		default:
			return backoff.Permanent(err)
		}
	}, s.retryPolicy(ctx))

	switch {
	case err == nil:
		s.metrics.RecordOperation(op, metrics.OutcomeOK)
		return roster, nil
	case errors.Is(err, model.ErrVersionConflict):
		s.metrics.RecordOperation(op, metrics.OutcomeError)
		s.logger.Warn("giving up after repeated version conflicts", "operation", op, "lineup_id", id, "attempts", attempt)
		return model.Roster{}, fmt.Errorf("%s lineup %s: %w", op, id, model.ErrContention)
	default:
		s.recordFailure(op, err)
		return model.Roster{}, err
	}
}

// retryPolicy allows maxAttempts tries in total
func (s *Service) retryPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryBase
	b.MaxInterval = s.retryMax
	b.Multiplier = 2
	b.RandomizationFactor = 0.5
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.maxAttempts-1)), ctx)
}

func (s *Service) recordFailure(op string, err error) {
	if reason, ok := model.ReasonOf(err); ok {
		s.metrics.RecordOperation(op, string(reason))
		return
	}
	s.metrics.RecordOperation(op, metrics.OutcomeError)
	s.logger.Error("storage failure", "operation", op, "error", err)
}
