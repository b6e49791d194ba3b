package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pai-platform/insight-service/internal/domain"
	"github.com/pai-platform/insight-service/internal/ports"
)

// InterestRepository implements ports.InterestRepository and
// ports.InterestQuery on SQLite. Timestamps are stored as Unix
// milliseconds and keywords compare case-insensitively via the COLLATE
// NOCASE unique index.
type InterestRepository struct {
	db *DB
}

// NewInterestRepository creates the SQLite interest repository.
func NewInterestRepository(db *DB) *InterestRepository {
	return &InterestRepository{db: db}
}

var _ ports.InterestRepository = (*InterestRepository)(nil)
var _ ports.InterestQuery = (*InterestRepository)(nil)

type interestRow struct {
	ID          string
	ChildID     string
	Keyword     string
	Score       float64
	LastUpdated int64
	CreatedAt   int64
	Version     int64
}

// Save creates the interest when its ID is empty, otherwise performs a
// version-checked update. Returns domain.ErrConflict when the row was
// created or updated concurrently.
func (r *InterestRepository) Save(ctx context.Context, interest *domain.Interest) (*domain.Interest, error) {
	if interest.ID == "" {
		return r.insert(ctx, r.db.DB, interest)
	}
	return r.update(ctx, r.db.DB, interest)
}

// BulkSave persists the batch in one transaction.
func (r *InterestRepository) BulkSave(ctx context.Context, interests []*domain.Interest) ([]*domain.Interest, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin bulk save: %w", err)
	}
	defer tx.Rollback()

	saved := make([]*domain.Interest, 0, len(interests))
	for _, interest := range interests {
		var s *domain.Interest
		if interest.ID == "" {
			s, err = r.insert(ctx, tx, interest)
		} else {
			s, err = r.update(ctx, tx, interest)
		}
		if err != nil {
			return nil, err
		}
		saved = append(saved, s)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit bulk save: %w", err)
	}
	return saved, nil
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *InterestRepository) insert(ctx context.Context, q execQuerier, interest *domain.Interest) (*domain.Interest, error) {
	saved := *interest
	saved.ID = uuid.NewString()
	saved.Version = 1

	_, err := q.ExecContext(ctx, `
		INSERT INTO interests (id, child_id, keyword, score, last_updated, created_at, version)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		saved.ID, saved.ChildID, saved.Keyword.String(), saved.Score.Value(),
		saved.LastUpdated.UnixMilli(), saved.CreatedAt.UnixMilli(), saved.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewConflictError("interest",
				fmt.Sprintf("keyword %q already exists for child %s", saved.Keyword.String(), saved.ChildID))
		}
		return nil, fmt.Errorf("insert interest: %w", err)
	}
	return &saved, nil
}

func (r *InterestRepository) update(ctx context.Context, q execQuerier, interest *domain.Interest) (*domain.Interest, error) {
	saved := *interest
	saved.Version = interest.Version + 1

	result, err := q.ExecContext(ctx, `
		UPDATE interests
		SET score = ?, last_updated = ?, version = ?
		WHERE id = ? AND version = ?`,
		saved.Score.Value(), saved.LastUpdated.UnixMilli(), saved.Version,
		saved.ID, interest.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("update interest: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update interest rows affected: %w", err)
	}
	if affected == 0 {
		return nil, domain.NewConflictError("interest",
			fmt.Sprintf("version %d is stale for interest %s", interest.Version, interest.ID))
	}
	return &saved, nil
}

// FindByChildAndKeyword returns domain.ErrNotFound when no row matches.
func (r *InterestRepository) FindByChildAndKeyword(ctx context.Context, childID string, keyword domain.Keyword) (*domain.Interest, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, child_id, keyword, score, last_updated, created_at, version
		FROM interests
		WHERE child_id = ? AND keyword = ? COLLATE NOCASE`,
		childID, keyword.String(),
	)

	interest, err := scanInterest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("interest", childID+"/"+keyword.String())
	}
	return interest, err
}

// FindTopByChild returns up to limit interests ordered by score descending.
func (r *InterestRepository) FindTopByChild(ctx context.Context, childID string, limit int) ([]*domain.Interest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, child_id, keyword, score, last_updated, created_at, version
		FROM interests
		WHERE child_id = ?
		ORDER BY score DESC, last_updated DESC
		LIMIT ?`,
		childID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query top interests: %w", err)
	}
	defer rows.Close()

	interests := []*domain.Interest{}
	for rows.Next() {
		interest, err := scanInterest(rows)
		if err != nil {
			return nil, err
		}
		interests = append(interests, interest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top interests: %w", err)
	}
	return interests, nil
}

// DeleteStale removes interests whose last update is older than minDays and
// whose score is below maxScore, returning what was removed.
func (r *InterestRepository) DeleteStale(ctx context.Context, minDays int, maxScore float64) (*ports.PruneResult, error) {
	cutoff := time.Now().AddDate(0, 0, -minDays).UnixMilli()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin prune: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT keyword FROM interests
		WHERE last_updated < ? AND score < ?`,
		cutoff, maxScore,
	)
	if err != nil {
		return nil, fmt.Errorf("query stale interests: %w", err)
	}

	keywords := []string{}
	for rows.Next() {
		var keyword string
		if err := rows.Scan(&keyword); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan stale keyword: %w", err)
		}
		keywords = append(keywords, keyword)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate stale interests: %w", err)
	}
	rows.Close()

	result, err := tx.ExecContext(ctx, `
		DELETE FROM interests
		WHERE last_updated < ? AND score < ?`,
		cutoff, maxScore,
	)
	if err != nil {
		return nil, fmt.Errorf("delete stale interests: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("prune rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit prune: %w", err)
	}

	return &ports.PruneResult{
		DeletedCount:    int(deleted),
		DeletedKeywords: keywords,
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInterest(s rowScanner) (*domain.Interest, error) {
	var row interestRow
	if err := s.Scan(&row.ID, &row.ChildID, &row.Keyword, &row.Score,
		&row.LastUpdated, &row.CreatedAt, &row.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan interest: %w", err)
	}

	keyword, err := domain.NewKeyword(row.Keyword)
	if err != nil {
		return nil, fmt.Errorf("stored keyword %q: %w", row.Keyword, err)
	}
	score, err := domain.NewScore(row.Score)
	if err != nil {
		return nil, fmt.Errorf("stored score %v: %w", row.Score, err)
	}

	return &domain.Interest{
		ID:          row.ID,
		ChildID:     row.ChildID,
		Keyword:     keyword,
		Score:       score,
		LastUpdated: time.UnixMilli(row.LastUpdated).UTC(),
		CreatedAt:   time.UnixMilli(row.CreatedAt).UTC(),
		Version:     row.Version,
	}, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
