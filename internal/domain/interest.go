package domain

import "time"

// Interest is one (child, keyword) affinity record. At most one Interest
// exists per child and keyword; the keyword part of the identity compares
// case-insensitively. Instances are never shared between requests: updates
// produce a fresh copy so concurrent readers never observe a half-updated
// entity.
type Interest struct {
	// ID is the generated identifier, empty until persisted.
	ID string

	// ChildID identifies the child profile the interest belongs to.
	ChildID string

	// Keyword is the topic this interest tracks.
	Keyword Keyword

	// Score is the current decayed-and-accumulated strength.
	Score Score

	// LastUpdated is refreshed on every score replacement and drives decay.
	LastUpdated time.Time

	// CreatedAt is set by the persistence layer on first save.
	CreatedAt time.Time

	// Version supports optimistic concurrency in the persistence layer.
	Version int64
}

// NewInterest creates an unpersisted interest for a first-time keyword
// mention. The keyword must already be validated via NewKeyword.
func NewInterest(childID string, keyword Keyword, score Score, now time.Time) (*Interest, error) {
	if childID == "" {
		return nil, NewValidationError("childId", "is required")
	}

	if keyword.IsZero() {
		return nil, NewValidationError("keyword", "is required")
	}

	return &Interest{
		ChildID:     childID,
		Keyword:     keyword,
		Score:       score,
		LastUpdated: now,
	}, nil
}

// WithScore returns a copy of the interest carrying the replacement score and
// a refreshed LastUpdated. The receiver is left untouched.
func (i *Interest) WithScore(score Score, now time.Time) *Interest {
	updated := *i
	updated.Score = score
	updated.LastUpdated = now

	return &updated
}

// HasScoreAbove reports whether the score meets or exceeds the threshold.
func (i *Interest) HasScoreAbove(threshold float64) bool {
	return i.Score.Value() >= threshold
}
