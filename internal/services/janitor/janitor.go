// Package janitor physically removes expired lineups from stores that have no
// native expiry.
package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/lineupsheet/internal/dependencies/clock"
	"github.com/mcoot/lineupsheet/internal/metrics"
	"github.com/mcoot/lineupsheet/internal/storage"
)

// Janitor sweeps lineups whose expiry lies more than Grace in the past
type Janitor struct {
	sweeper  storage.Sweeper
	clock    clock.Clock
	metrics  *metrics.Recorder
	logger   *slog.Logger
	grace    time.Duration
	interval time.Duration
}

// New creates a Janitor
func New(
	sweeper storage.Sweeper,
	clock clock.Clock,
	recorder *metrics.Recorder,
	logger *slog.Logger,
	grace, interval time.Duration,
) *Janitor {
	return &Janitor{
		sweeper:  sweeper,
		clock:    clock,
		metrics:  recorder,
		logger:   logger,
		grace:    grace,
		interval: interval,
	}
}

// SweepOnce removes lineups that expired before now minus the grace period
func (j *Janitor) SweepOnce(ctx context.Context) (int, error) {
	cutoff := j.clock.Now().Add(-j.grace)
	removed, err := j.sweeper.Sweep(ctx, cutoff)
	if err != nil {
		j.logger.Error("sweep failed", "error", err)
		return 0, err
	}
	j.metrics.RecordSwept(removed)
	if removed > 0 {
		j.logger.Info("swept expired lineups", "removed", removed, "cutoff", cutoff)
	}
	return removed, nil
}

// Start sweeps every interval until ctx is cancelled. A non-positive
// interval disables the janitor.
func (j *Janitor) Start(ctx context.Context) {
	if j.interval <= 0 {
		return
	}

	t := time.NewTicker(j.interval)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				_, _ = j.SweepOnce(ctx)
			}
		}
	}()
}
