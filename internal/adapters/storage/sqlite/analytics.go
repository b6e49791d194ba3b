package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/pai-platform/insight-service/internal/domain"
	"github.com/pai-platform/insight-service/internal/ports"
)

// AnalyticsRepository implements ports.AnalyticsRepository on SQLite.
// Keywords are stored as a JSON array in a single column; the log is
// append-only so no richer relational shape is needed.
type AnalyticsRepository struct {
	db *DB
}

// NewAnalyticsRepository creates the SQLite analytics repository.
func NewAnalyticsRepository(db *DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

var _ ports.AnalyticsRepository = (*AnalyticsRepository)(nil)

// Create appends one extraction record.
func (r *AnalyticsRepository) Create(ctx context.Context, record *domain.AnalyticsRecord) (*domain.AnalyticsRecord, error) {
	saved := *record
	saved.ID = uuid.NewString()
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = time.Now().UTC()
	}

	keywords, err := json.Marshal(saved.Keywords.Values())
	if err != nil {
		return nil, fmt.Errorf("marshal keywords: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO analytics (id, child_id, conversation_id, keywords, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		saved.ID, saved.ChildID, saved.ConversationID, string(keywords), saved.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert analytics record: %w", err)
	}
	return &saved, nil
}

// CountByChild reports how many extraction events are recorded for a child.
func (r *AnalyticsRepository) CountByChild(ctx context.Context, childID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM analytics WHERE child_id = ?", childID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count analytics records: %w", err)
	}
	return count, nil
}
