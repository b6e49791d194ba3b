package app

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pai-platform/insight-service/internal/domain"
	"github.com/pai-platform/insight-service/internal/platform/logging"
	"github.com/pai-platform/insight-service/internal/ports"
)

const (
	// DefaultPruneMinDays is the minimum staleness, in days since last
	// update, before an interest is eligible for pruning.
	DefaultPruneMinDays = 14

	// DefaultPruneMaxScore is the score below which a stale interest is
	// considered faded out.
	DefaultPruneMaxScore = 1.0
)

// PruneService removes interests that have decayed into noise. With the
// seven-day half-life, anything untouched for two weeks sits at a quarter of
// its last score; sweeping those keeps top-interest queries meaningful.
type PruneService struct {
	interests ports.InterestRepository
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewPruneService creates the prune service.
// Panics if the interest repository is missing.
func NewPruneService(interests ports.InterestRepository, logger *slog.Logger) *PruneService {
	if interests == nil {
		panic("PruneService: Interests repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PruneService{
		interests: interests,
		logger:    logger.With(slog.String("component", "app.PruneService")),
		tracer:    otel.Tracer(instrumentationName),
	}
}

// Execute deletes every interest older than minDays with a score below
// maxScore. Non-positive arguments fall back to the defaults. Rejects a
// negative maxScore beyond the zero fallback so a typo cannot sweep live
// interests.
func (s *PruneService) Execute(ctx context.Context, minDays int, maxScore float64) (*ports.PruneResult, error) {
	ctx, span := s.tracer.Start(ctx, "PruneService.Execute")
	defer span.End()

	logger := logging.FromContext(ctx)

	if minDays <= 0 {
		minDays = DefaultPruneMinDays
	}
	if maxScore == 0 {
		maxScore = DefaultPruneMaxScore
	}
	if maxScore < 0 || maxScore > domain.MaxScore {
		return nil, domain.NewValidationError("maxScore", "must be within the score range")
	}

	span.SetAttributes(
		attribute.Int("min_days", minDays),
		attribute.Float64("max_score", maxScore),
	)

	result, err := s.interests.DeleteStale(ctx, minDays, maxScore)
	if err != nil {
		return nil, fmt.Errorf("pruning stale interests: %w", err)
	}

	prunedInterestsTotal.Add(float64(result.DeletedCount))

	logger.InfoContext(ctx, "stale interests pruned",
		slog.Int("deleted", result.DeletedCount),
		slog.Int("min_days", minDays),
		slog.Float64("max_score", maxScore),
	)

	return result, nil
}
