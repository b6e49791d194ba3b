package app

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pai-platform/insight-service/internal/domain"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newIngestService(analytics *fakeAnalyticsRepo, interests *fakeInterestRepo) *IngestService {
	return NewIngestService(IngestServiceConfig{
		Analytics: analytics,
		Interests: interests,
		Logger:    slog.New(slog.DiscardHandler),
		Now:       func() time.Time { return fixedNow },
	})
}

func TestIngest_CreatesInterestsFromFreshKeywords(t *testing.T) {
	analytics := &fakeAnalyticsRepo{}
	interests := newFakeInterestRepo()
	svc := newIngestService(analytics, interests)

	result, err := svc.Execute(context.Background(), IngestCommand{
		ChildID:        "child-1",
		ConversationID: "conv-1",
		Keywords:       []string{"우주", "우주", "로봇"},
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"우주", "로봇"}, result.CreatedKeywords)
	assert.Empty(t, result.UpdatedKeywords)

	// 우주 mentioned twice: 3.0 + 2*0.5
	space := interests.get("child-1", "우주")
	require.NotNil(t, space)
	assert.InDelta(t, 4.0, space.Score.Value(), 0.001)

	robot := interests.get("child-1", "로봇")
	require.NotNil(t, robot)
	assert.InDelta(t, 3.5, robot.Score.Value(), 0.001)

	require.Len(t, analytics.records, 1)
	assert.Equal(t, "child-1", analytics.records[0].ChildID)
	assert.Equal(t, "conv-1", analytics.records[0].ConversationID)
}

func TestIngest_UpdatesExistingInterest(t *testing.T) {
	analytics := &fakeAnalyticsRepo{}
	interests := newFakeInterestRepo()
	svc := newIngestService(analytics, interests)

	weekAgo := fixedNow.Add(-7 * 24 * time.Hour)
	seed := mustInterest("child-1", "공룡", 6.0, weekAgo)
	_, err := interests.Save(context.Background(), seed)
	require.NoError(t, err)

	result, err := svc.Execute(context.Background(), IngestCommand{
		ChildID:        "child-1",
		ConversationID: "conv-2",
		Keywords:       []string{"공룡"},
	})
	require.NoError(t, err)

	assert.Empty(t, result.CreatedKeywords)
	assert.Equal(t, []string{"공룡"}, result.UpdatedKeywords)

	// One half-life decays 6.0 to 3.0, then one mention adds 3.5.
	updated := interests.get("child-1", "공룡")
	require.NotNil(t, updated)
	assert.InDelta(t, 6.5, updated.Score.Value(), 0.01)
	assert.Equal(t, fixedNow, updated.LastUpdated)
	assert.Equal(t, int64(2), updated.Version)
}

func TestIngest_EmptyKeywordsIsValidNoOp(t *testing.T) {
	analytics := &fakeAnalyticsRepo{}
	interests := newFakeInterestRepo()
	svc := newIngestService(analytics, interests)

	result, err := svc.Execute(context.Background(), IngestCommand{
		ChildID:        "child-1",
		ConversationID: "conv-3",
		Keywords:       []string{},
	})
	require.NoError(t, err)

	assert.Empty(t, result.CreatedKeywords)
	assert.Empty(t, result.UpdatedKeywords)
	assert.Empty(t, interests.byKey)

	// The extraction event is still recorded.
	assert.Len(t, analytics.records, 1)
}

func TestIngest_ValidatesIdentifiers(t *testing.T) {
	svc := newIngestService(&fakeAnalyticsRepo{}, newFakeInterestRepo())

	tests := []struct {
		name string
		cmd  IngestCommand
	}{
		{"missing child id", IngestCommand{ConversationID: "conv-1", Keywords: []string{"공룡"}}},
		{"missing conversation id", IngestCommand{ChildID: "child-1", Keywords: []string{"공룡"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Execute(context.Background(), tt.cmd)
			assert.True(t, domain.IsValidation(err))
		})
	}
}

func TestIngest_RejectsInvalidKeyword(t *testing.T) {
	analytics := &fakeAnalyticsRepo{}
	interests := newFakeInterestRepo()
	svc := newIngestService(analytics, interests)

	_, err := svc.Execute(context.Background(), IngestCommand{
		ChildID:        "child-1",
		ConversationID: "conv-4",
		Keywords:       []string{"!!!"},
	})
	assert.True(t, domain.IsValidation(err))
}

func TestIngest_RetriesOnVersionConflict(t *testing.T) {
	analytics := &fakeAnalyticsRepo{}
	interests := newFakeInterestRepo()
	interests.conflictsBeforeSave = 1
	svc := newIngestService(analytics, interests)

	result, err := svc.Execute(context.Background(), IngestCommand{
		ChildID:        "child-1",
		ConversationID: "conv-5",
		Keywords:       []string{"피아노"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"피아노"}, result.CreatedKeywords)
	require.NotNil(t, interests.get("child-1", "피아노"))
}

func TestIngest_GivesUpAfterRepeatedConflicts(t *testing.T) {
	analytics := &fakeAnalyticsRepo{}
	interests := newFakeInterestRepo()
	interests.conflictsBeforeSave = maxSaveAttempts
	svc := newIngestService(analytics, interests)

	_, err := svc.Execute(context.Background(), IngestCommand{
		ChildID:        "child-1",
		ConversationID: "conv-6",
		Keywords:       []string{"피아노"},
	})
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestIngest_AnalyticsFailureAbortsScoring(t *testing.T) {
	analytics := &fakeAnalyticsRepo{err: assert.AnError}
	interests := newFakeInterestRepo()
	svc := newIngestService(analytics, interests)

	_, err := svc.Execute(context.Background(), IngestCommand{
		ChildID:        "child-1",
		ConversationID: "conv-7",
		Keywords:       []string{"공룡"},
	})
	require.Error(t, err)
	assert.Empty(t, interests.byKey)
}

func TestIngest_TrimsAndDeduplicatesMentions(t *testing.T) {
	analytics := &fakeAnalyticsRepo{}
	interests := newFakeInterestRepo()
	svc := newIngestService(analytics, interests)

	result, err := svc.Execute(context.Background(), IngestCommand{
		ChildID:        "child-1",
		ConversationID: "conv-8",
		Keywords:       []string{"공룡", " 공룡 ", "공룡"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"공룡"}, result.CreatedKeywords)

	// Three mentions of the same trimmed keyword: 3.0 + 3*0.5.
	saved := interests.get("child-1", "공룡")
	require.NotNil(t, saved)
	assert.InDelta(t, 4.5, saved.Score.Value(), 0.001)
}
