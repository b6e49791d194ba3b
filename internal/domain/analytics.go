package domain

import "time"

// AnalyticsRecord is the append-only log entry of keywords extracted from one
// conversation. It is immutable once created; one record may trigger zero or
// more interest mutations, but the record itself is never revisited.
type AnalyticsRecord struct {
	// ID is the generated identifier, empty until persisted.
	ID string

	// ChildID identifies the child profile the conversation belongs to.
	ChildID string

	// ConversationID identifies the source conversation.
	ConversationID string

	// Keywords is the deduplicated set extracted from the conversation.
	Keywords ExtractedKeywords

	// CreatedAt is set by the persistence layer on save.
	CreatedAt time.Time
}

// NewAnalyticsRecord creates an unpersisted analytics record.
func NewAnalyticsRecord(childID, conversationID string, keywords ExtractedKeywords) (*AnalyticsRecord, error) {
	if childID == "" {
		return nil, NewValidationError("childId", "is required")
	}

	if conversationID == "" {
		return nil, NewValidationError("conversationId", "is required")
	}

	return &AnalyticsRecord{
		ChildID:        childID,
		ConversationID: conversationID,
		Keywords:       keywords,
	}, nil
}

// HasKeywords reports whether the record carries any extracted keywords and
// therefore warrants interest updates.
func (a *AnalyticsRecord) HasKeywords() bool {
	return !a.Keywords.IsEmpty()
}
