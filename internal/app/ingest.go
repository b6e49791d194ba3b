// Package app contains application services that orchestrate use cases.
// This is the application layer: it coordinates domain logic and the
// persistence/provider ports, and owns no business rules of its own.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pai-platform/insight-service/internal/domain"
	"github.com/pai-platform/insight-service/internal/platform/logging"
	"github.com/pai-platform/insight-service/internal/ports"
)

const instrumentationName = "github.com/pai-platform/insight-service/app"

// maxSaveAttempts bounds the optimistic-concurrency retry loop for one
// (child, keyword) pair. Concurrent ingestions for the same pair conflict on
// the version check; each retry re-reads and recomputes so neither
// contribution is lost.
const maxSaveAttempts = 3

// IngestService runs the keyword-ingestion use case: record what was
// extracted from a conversation, then create or update one interest per
// unique keyword.
type IngestService struct {
	analytics ports.AnalyticsRepository
	interests ports.InterestRepository
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// IngestServiceConfig contains the ingestion service dependencies.
type IngestServiceConfig struct {
	Analytics ports.AnalyticsRepository
	Interests ports.InterestRepository
	Logger    *slog.Logger

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// NewIngestService creates the ingestion service.
// Panics if a repository is missing.
func NewIngestService(cfg IngestServiceConfig) *IngestService {
	if cfg.Analytics == nil || cfg.Interests == nil {
		panic("IngestService: Analytics and Interests repositories are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &IngestService{
		analytics: cfg.Analytics,
		interests: cfg.Interests,
		logger:    logger.With(slog.String("component", "app.IngestService")),
		tracer:    otel.Tracer(instrumentationName),
		now:       now,
	}
}

// IngestCommand is the input to one ingestion event.
type IngestCommand struct {
	ChildID        string
	ConversationID string
	Keywords       []string
}

// IngestResult partitions the processed keywords into those that created a
// new interest and those that updated an existing one. The two sets never
// overlap.
type IngestResult struct {
	CreatedKeywords []string
	UpdatedKeywords []string
}

// Execute validates the command, appends the analytics record, and applies
// the scoring engine to every unique keyword. An empty keyword list is valid
// and yields no interest mutations.
func (s *IngestService) Execute(ctx context.Context, cmd IngestCommand) (*IngestResult, error) {
	ctx, span := s.tracer.Start(ctx, "IngestService.Execute",
		trace.WithAttributes(attribute.String("child_id", cmd.ChildID)))
	defer span.End()

	logger := logging.FromContext(ctx)

	if cmd.ChildID == "" {
		return nil, domain.NewValidationError("childId", "is required")
	}

	if cmd.ConversationID == "" {
		return nil, domain.NewValidationError("conversationId", "is required")
	}

	counts := domain.CountMentions(cmd.Keywords)

	record, err := domain.NewAnalyticsRecord(cmd.ChildID, cmd.ConversationID,
		domain.NewExtractedKeywords(cmd.Keywords))
	if err != nil {
		return nil, err
	}

	if _, err := s.analytics.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("saving analytics record: %w", err)
	}

	result := &IngestResult{}

	for _, raw := range counts.Keywords() {
		keyword, err := domain.NewKeyword(raw)
		if err != nil {
			return nil, err
		}

		created, err := s.upsertInterest(ctx, cmd.ChildID, keyword, counts.Count(raw))
		if err != nil {
			return nil, err
		}

		if created {
			result.CreatedKeywords = append(result.CreatedKeywords, raw)
			ingestedKeywordsTotal.WithLabelValues("created").Inc()
		} else {
			result.UpdatedKeywords = append(result.UpdatedKeywords, raw)
			ingestedKeywordsTotal.WithLabelValues("updated").Inc()
		}
	}

	logger.InfoContext(ctx, "ingestion complete",
		slog.String("child_id", cmd.ChildID),
		slog.String("conversation_id", cmd.ConversationID),
		slog.Int("created", len(result.CreatedKeywords)),
		slog.Int("updated", len(result.UpdatedKeywords)),
	)

	return result, nil
}

// upsertInterest applies one keyword's mention count to the child's interest
// set: create with calculateScore on first mention, decay-then-add on every
// re-mention. Version conflicts from concurrent ingestions are retried with
// a fresh read so the final score reflects both contributions.
func (s *IngestService) upsertInterest(ctx context.Context, childID string, keyword domain.Keyword, mentionCount int) (created bool, err error) {
	for attempt := 1; ; attempt++ {
		existing, err := s.interests.FindByChildAndKeyword(ctx, childID, keyword)

		switch {
		case err == nil:
			newScore, err := domain.UpdateExistingScore(existing.Score, existing.LastUpdated, mentionCount, s.now())
			if err != nil {
				return false, err
			}

			_, err = s.interests.Save(ctx, existing.WithScore(newScore, s.now()))
			if err == nil {
				return false, nil
			}

			if !domain.IsConflict(err) || attempt >= maxSaveAttempts {
				return false, fmt.Errorf("updating interest %q: %w", keyword.String(), err)
			}

		case domain.IsNotFound(err):
			score, err := domain.CalculateScore(mentionCount)
			if err != nil {
				return false, err
			}

			interest, err := domain.NewInterest(childID, keyword, score, s.now())
			if err != nil {
				return false, err
			}

			_, err = s.interests.Save(ctx, interest)
			if err == nil {
				return true, nil
			}

			// A concurrent request created the pair first; re-read and
			// take the update path.
			if !domain.IsConflict(err) || attempt >= maxSaveAttempts {
				return false, fmt.Errorf("creating interest %q: %w", keyword.String(), err)
			}

		default:
			return false, fmt.Errorf("looking up interest %q: %w", keyword.String(), err)
		}

		s.logger.DebugContext(ctx, "interest save conflict, retrying",
			slog.String("child_id", childID),
			slog.String("keyword", keyword.String()),
			slog.Int("attempt", attempt),
		)
	}
}
