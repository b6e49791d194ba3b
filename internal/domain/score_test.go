package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScore(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		want    float64
		wantErr bool
	}{
		{name: "zero", value: 0, want: 0},
		{name: "max", value: 100, want: 100},
		{name: "rounds to two decimals", value: 3.14159, want: 3.14},
		{name: "rounds half up", value: 2.675, want: 2.68},
		{name: "negative rejected", value: -0.01, wantErr: true},
		{name: "above max rejected", value: 100.01, wantErr: true},
		{name: "NaN rejected", value: math.NaN(), wantErr: true},
		{name: "infinity rejected", value: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := NewScore(tt.value)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
				return
			}

			require.NoError(t, err)
			assert.InDelta(t, tt.want, score.Value(), 0.0001)
		})
	}
}

func TestClampedScore(t *testing.T) {
	assert.InDelta(t, 100.0, ClampedScore(250).Value(), 0.0001)
	assert.InDelta(t, 0.0, ClampedScore(-5).Value(), 0.0001)
	assert.InDelta(t, 42.5, ClampedScore(42.5).Value(), 0.0001)
	assert.True(t, ClampedScore(math.NaN()).IsZero())
}

func TestScore_Arithmetic(t *testing.T) {
	s, err := NewScore(50)
	require.NoError(t, err)

	sum, err := s.Add(25.5)
	require.NoError(t, err)
	assert.InDelta(t, 75.5, sum.Value(), 0.0001)

	// Addition revalidates: exceeding the max is an error, not a clamp.
	_, err = s.Add(60)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	halved, err := s.Mul(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, halved.Value(), 0.0001)

	_, err = s.Mul(3)
	require.Error(t, err)
}

func TestScore_Comparisons(t *testing.T) {
	low, err := NewScore(1.5)
	require.NoError(t, err)
	high, err := NewScore(7.25)
	require.NoError(t, err)

	assert.Equal(t, -1, low.Compare(high))
	assert.Equal(t, 1, high.Compare(low))
	assert.Equal(t, 0, low.Compare(low))

	assert.True(t, high.Above(7.0))
	assert.False(t, high.Above(7.25))
	assert.True(t, low.Below(2))

	assert.True(t, ZeroScore().IsZero())
	assert.Equal(t, "7.25", high.String())
}
