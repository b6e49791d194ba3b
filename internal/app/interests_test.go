package app

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pai-platform/insight-service/internal/domain"
)

func newInterestService(t *testing.T, query *fakeInterestQuery) *InterestService {
	t.Helper()
	return NewInterestService(query, slog.New(slog.DiscardHandler))
}

func TestTopInterests_ReturnsStrongestFirst(t *testing.T) {
	query := &fakeInterestQuery{top: []*domain.Interest{
		mustInterest("child-1", "로봇", 6.0, fixedNow),
		mustInterest("child-1", "공룡", 4.5, fixedNow),
	}}
	svc := newInterestService(t, query)

	interests, err := svc.TopInterests(context.Background(), "child-1", 5)
	require.NoError(t, err)

	require.Len(t, interests, 2)
	assert.Equal(t, "로봇", interests[0].Keyword.Normalized())
	assert.Equal(t, 5, query.limit)
}

func TestTopInterests_LimitBounds(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{name: "zero falls back to default", limit: 0, wantLimit: DefaultTopInterestLimit},
		{name: "negative falls back to default", limit: -3, wantLimit: DefaultTopInterestLimit},
		{name: "excessive limit is capped", limit: 5000, wantLimit: MaxTopInterestLimit},
		{name: "in-range limit passes through", limit: 25, wantLimit: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := &fakeInterestQuery{}
			svc := newInterestService(t, query)

			_, err := svc.TopInterests(context.Background(), "child-1", tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, query.limit)
		})
	}
}

func TestTopInterests_EmptyChildID(t *testing.T) {
	svc := newInterestService(t, &fakeInterestQuery{})

	_, err := svc.TopInterests(context.Background(), "", 10)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestTopInterests_NoHistoryReturnsEmptySlice(t *testing.T) {
	svc := newInterestService(t, &fakeInterestQuery{top: nil})

	interests, err := svc.TopInterests(context.Background(), "child-1", 10)
	require.NoError(t, err)

	assert.NotNil(t, interests)
	assert.Empty(t, interests)
}

func TestTopInterests_QueryError(t *testing.T) {
	query := &fakeInterestQuery{err: errors.New("db gone")}
	svc := newInterestService(t, query)

	_, err := svc.TopInterests(context.Background(), "child-1", 10)
	require.Error(t, err)
	assert.ErrorContains(t, err, "loading top interests")
}

func TestNewInterestService_RequiresQuery(t *testing.T) {
	assert.Panics(t, func() {
		NewInterestService(nil, slog.New(slog.DiscardHandler))
	})
}
