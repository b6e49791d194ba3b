package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateScore(t *testing.T) {
	tests := []struct {
		name         string
		mentionCount int
		expected     float64
	}{
		{name: "zero mentions yields base score", mentionCount: 0, expected: 3.0},
		{name: "single mention", mentionCount: 1, expected: 3.5},
		{name: "two mentions", mentionCount: 2, expected: 4.0},
		{name: "five mentions", mentionCount: 5, expected: 5.5},
		{name: "six mentions saturates bonus", mentionCount: 6, expected: 6.0},
		{name: "bonus stays saturated", mentionCount: 100, expected: 6.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := CalculateScore(tt.mentionCount)

			require.NoError(t, err)
			assert.InDelta(t, tt.expected, score.Value(), 0.001)
		})
	}
}

func TestCalculateScore_NegativeCount(t *testing.T) {
	_, err := CalculateScore(-1)

	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestCalculateScore_BoundedAndMonotonic(t *testing.T) {
	prev := 0.0

	for count := 0; count <= 20; count++ {
		score, err := CalculateScore(count)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, score.Value(), 3.0)
		assert.LessOrEqual(t, score.Value(), 6.0)
		assert.GreaterOrEqual(t, score.Value(), prev, "score must be non-decreasing in mention count")

		prev = score.Value()
	}
}

func TestApplyDecay(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		current     float64
		lastUpdated time.Time
		expected    float64
	}{
		{name: "no elapsed time keeps score", current: 4.5, lastUpdated: now, expected: 4.5},
		{name: "one half-life halves score", current: 10.0, lastUpdated: now.Add(-7 * 24 * time.Hour), expected: 5.0},
		{name: "two half-lives quarter score", current: 10.0, lastUpdated: now.Add(-14 * 24 * time.Hour), expected: 2.5},
		{name: "three half-lives", current: 8.0, lastUpdated: now.Add(-21 * 24 * time.Hour), expected: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, err := NewScore(tt.current)
			require.NoError(t, err)

			decayed, err := ApplyDecay(current, tt.lastUpdated, now)

			require.NoError(t, err)
			assert.InDelta(t, tt.expected, decayed.Value(), 0.01)
		})
	}
}

func TestApplyDecay_FutureLastUpdated(t *testing.T) {
	now := time.Now()
	current, err := NewScore(5.0)
	require.NoError(t, err)

	_, err = ApplyDecay(current, now.Add(time.Hour), now)

	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestUpdateExistingScore(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	t.Run("immediate re-mention keeps prior value", func(t *testing.T) {
		current, err := NewScore(4.0)
		require.NoError(t, err)

		updated, err := UpdateExistingScore(current, now, 1, now)

		require.NoError(t, err)
		// No decay, so 4.0 + calculateScore(1) = 7.5.
		assert.InDelta(t, 7.5, updated.Value(), 0.001)
	})

	t.Run("long gap mostly resets to baseline", func(t *testing.T) {
		current, err := NewScore(10.0)
		require.NoError(t, err)

		updated, err := UpdateExistingScore(current, now.Add(-70*24*time.Hour), 1, now)

		require.NoError(t, err)
		// Ten half-lives leave ~0.01 of the prior score.
		assert.InDelta(t, 3.51, updated.Value(), 0.02)
	})

	t.Run("decay happens before the new contribution", func(t *testing.T) {
		current, err := NewScore(10.0)
		require.NoError(t, err)

		updated, err := UpdateExistingScore(current, now.Add(-7*24*time.Hour), 2, now)

		require.NoError(t, err)
		// 10*0.5 + calculateScore(2) = 5.0 + 4.0.
		assert.InDelta(t, 9.0, updated.Value(), 0.01)
	})

	t.Run("propagates future-dated lastUpdated error", func(t *testing.T) {
		current, err := NewScore(5.0)
		require.NoError(t, err)

		_, err = UpdateExistingScore(current, now.Add(time.Minute), 1, now)

		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})
}

func TestIsSignificant(t *testing.T) {
	score, err := NewScore(3.0)
	require.NoError(t, err)

	assert.True(t, IsSignificant(score, 3.0))
	assert.False(t, IsSignificant(score, 3.01))
	// Threshold <= 0 falls back to BaseScore.
	assert.True(t, IsSignificant(score, 0))

	low, err := NewScore(2.99)
	require.NoError(t, err)
	assert.False(t, IsSignificant(low, 0))
}
