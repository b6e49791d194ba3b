// Package ports defines the interfaces the application layer depends on.
// Adapters implement these contracts; the orchestrators never see concrete
// storage, cache, or HTTP types.
//
// Port conventions:
//   - Context as first parameter for cancellation and deadlines
//   - Domain types in and out, never adapter DTOs
//   - Errors are domain errors (ErrNotFound, ErrConflict, ...)
package ports

import (
	"context"

	"github.com/pai-platform/insight-service/internal/domain"
)

// InterestRepository is the write side of interest persistence.
//
// The scoring invariants (monotonic decay, bounded additive contribution)
// only hold when mutations of one (child, keyword) pair are serialized.
// Implementations must provide an atomic conditional update: Save compares
// the entity's Version against the stored row and returns domain.ErrConflict
// on mismatch so the caller can re-read and retry.
type InterestRepository interface {
	// Save creates the interest when its ID is empty, otherwise performs a
	// version-checked update. Returns the persisted entity with its
	// generated ID, timestamps, and bumped version.
	Save(ctx context.Context, interest *domain.Interest) (*domain.Interest, error)

	// BulkSave persists a batch of interests transactionally: either all
	// succeed or none do.
	BulkSave(ctx context.Context, interests []*domain.Interest) ([]*domain.Interest, error)

	// FindByChildAndKeyword looks up the single interest for a (child,
	// keyword) pair, comparing keywords case-insensitively.
	// Returns domain.ErrNotFound when no such interest exists.
	FindByChildAndKeyword(ctx context.Context, childID string, keyword domain.Keyword) (*domain.Interest, error)

	// DeleteStale removes all interests whose LastUpdated is older than
	// minDays AND whose score is below maxScore.
	DeleteStale(ctx context.Context, minDays int, maxScore float64) (*PruneResult, error)
}

// PruneResult reports the outcome of a stale-interest deletion.
type PruneResult struct {
	DeletedCount    int
	DeletedKeywords []string
}

// InterestQuery is the read side of interest persistence.
type InterestQuery interface {
	// FindTopByChild returns up to limit interests for the child, ordered
	// by score descending. An empty slice (not an error) means the child
	// has no interests yet.
	FindTopByChild(ctx context.Context, childID string, limit int) ([]*domain.Interest, error)
}

// AnalyticsRepository persists the append-only extraction log.
type AnalyticsRepository interface {
	// Create appends a new analytics record and returns it with its
	// generated ID and creation timestamp. Records are never updated.
	Create(ctx context.Context, record *domain.AnalyticsRecord) (*domain.AnalyticsRecord, error)
}
