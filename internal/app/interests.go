package app

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pai-platform/insight-service/internal/domain"
	"github.com/pai-platform/insight-service/internal/ports"
)

const (
	// DefaultTopInterestLimit applies when the caller omits a limit.
	DefaultTopInterestLimit = 10

	// MaxTopInterestLimit caps one top-interests response.
	MaxTopInterestLimit = 100
)

// InterestService answers the read-side interest queries.
type InterestService struct {
	interests ports.InterestQuery
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewInterestService creates the interest query service.
// Panics if the interest query is missing.
func NewInterestService(interests ports.InterestQuery, logger *slog.Logger) *InterestService {
	if interests == nil {
		panic("InterestService: Interests query is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &InterestService{
		interests: interests,
		logger:    logger.With(slog.String("component", "app.InterestService")),
		tracer:    otel.Tracer(instrumentationName),
	}
}

// TopInterests returns up to limit interests for the child, strongest first.
// A child with no history gets an empty slice, not an error.
func (s *InterestService) TopInterests(ctx context.Context, childID string, limit int) ([]*domain.Interest, error) {
	ctx, span := s.tracer.Start(ctx, "InterestService.TopInterests",
		trace.WithAttributes(attribute.String("child_id", childID)))
	defer span.End()

	if childID == "" {
		return nil, domain.NewValidationError("childId", "is required")
	}

	switch {
	case limit < 1:
		limit = DefaultTopInterestLimit
	case limit > MaxTopInterestLimit:
		limit = MaxTopInterestLimit
	}

	interests, err := s.interests.FindTopByChild(ctx, childID, limit)
	if err != nil {
		return nil, fmt.Errorf("loading top interests: %w", err)
	}

	if interests == nil {
		interests = []*domain.Interest{}
	}
	return interests, nil
}
