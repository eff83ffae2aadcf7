// Package sweeper runs the periodic garbage collection of in-process state:
// elapsed rate counters and expired capability tokens. Sweeps are decoupled
// from request handling and share the owning structures' locks.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/maisonhub/sentinel/internal/clock"
)

// Target is a structure that can evict stale entries at a point in time.
type Target struct {
	Name  string
	Sweep func(now time.Time) int
}

// Sweeper drives the targets on a fixed interval.
type Sweeper struct {
	interval time.Duration
	clock    clock.Clock
	targets  []Target
	logger   *slog.Logger
}

// New creates a Sweeper over the given targets.
func New(interval time.Duration, clk clock.Clock, targets []Target, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		interval: interval,
		clock:    clk,
		targets:  targets,
		logger:   logger,
	}
}

// Run sweeps every interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.Info("starting sweeper", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping sweeper")
			return ctx.Err()
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}

// SweepOnce runs every target once.
func (s *Sweeper) SweepOnce() {
	now := s.clock.Now()
	for _, target := range s.targets {
		removed := target.Sweep(now)
		if removed > 0 {
			s.logger.Debug("sweep completed",
				slog.String("target", target.Name),
				slog.Int("removed", removed),
			)
		}
	}
}
