// Package scheduler runs recurring background jobs.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/pai-platform/insight-service/internal/app"
)

// PrunerConfig configures the daily prune job.
type PrunerConfig struct {
	// RunAt is the local time of day the job fires, "HH:MM". Defaults to
	// "03:00".
	RunAt string

	// MinDays and MaxScore are passed to the prune service; zero values
	// take the service defaults.
	MinDays  int
	MaxScore float64

	Logger *slog.Logger
}

// Pruner triggers the stale-interest sweep once a day at a fixed local time.
type Pruner struct {
	service  *app.PruneService
	runAt    string
	minDays  int
	maxScore float64
	logger   *slog.Logger

	now func() time.Time
}

// NewPruner creates the daily pruner.
// Panics if the prune service is missing.
func NewPruner(service *app.PruneService, cfg PrunerConfig) *Pruner {
	if service == nil {
		panic("Pruner: prune service is required")
	}

	runAt := cfg.RunAt
	if runAt == "" {
		runAt = "03:00"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pruner{
		service:  service,
		runAt:    runAt,
		minDays:  cfg.MinDays,
		maxScore: cfg.MaxScore,
		logger:   logger.With(slog.String("component", "scheduler.Pruner")),
		now:      time.Now,
	}
}

// Run blocks until ctx is canceled, firing the prune job at the configured
// time every day. A failed sweep is logged and retried at the next tick.
func (p *Pruner) Run(ctx context.Context) {
	for {
		next := p.nextRun(p.now())
		p.logger.Info("prune scheduled", slog.Time("next_run", next))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			p.logger.Info("pruner stopped")
			return
		case <-timer.C:
		}

		if _, err := p.service.Execute(ctx, p.minDays, p.maxScore); err != nil {
			p.logger.Error("scheduled prune failed", slog.Any("error", err))
		}
	}
}

// nextRun returns the next occurrence of the configured time of day after
// now. A malformed RunAt falls back to 03:00.
func (p *Pruner) nextRun(now time.Time) time.Time {
	at, err := time.Parse("15:04", p.runAt)
	if err != nil {
		at, _ = time.Parse("15:04", "03:00")
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
