package domain

import (
	"math"
	"strconv"
)

// Score bounds. Construction rejects values outside [MinScore, MaxScore];
// callers that want saturation use ClampedScore.
const (
	MinScore = 0.0
	MaxScore = 100.0
)

const scoreDecimals = 2

// Score is a bounded interest strength, rounded to two decimal places on
// every construction. The zero value is a valid zero score.
type Score struct {
	value float64
}

// NewScore validates and rounds a raw score value.
// Values below MinScore or above MaxScore are an error, not clamped.
func NewScore(value float64) (Score, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Score{}, NewValidationError("score", "must be a finite number")
	}

	if value < MinScore {
		return Score{}, NewValidationError("score", "must not be negative")
	}

	if value > MaxScore {
		return Score{}, NewValidationError("score", "must not exceed 100")
	}

	return Score{value: roundScore(value)}, nil
}

// ClampedScore is the saturating constructor: values outside the valid range
// are clamped instead of rejected. Non-finite input clamps to zero.
func ClampedScore(value float64) Score {
	if math.IsNaN(value) || math.IsInf(value, -1) {
		return Score{}
	}

	if value > MaxScore {
		return Score{value: MaxScore}
	}

	if value < MinScore {
		return Score{}
	}

	return Score{value: roundScore(value)}
}

// ZeroScore returns the zero score.
func ZeroScore() Score {
	return Score{}
}

// Value returns the numeric score.
func (s Score) Value() float64 {
	return s.value
}

// IsZero reports whether the score is exactly zero.
func (s Score) IsZero() bool {
	return s.value == 0
}

// Above reports whether the score is strictly above the threshold.
func (s Score) Above(threshold float64) bool {
	return s.value > threshold
}

// Below reports whether the score is strictly below the threshold.
func (s Score) Below(threshold float64) bool {
	return s.value < threshold
}

// Add returns a new score increased by amount, re-validated through NewScore.
func (s Score) Add(amount float64) (Score, error) {
	return NewScore(s.value + amount)
}

// Mul returns a new score multiplied by factor, re-validated through NewScore.
func (s Score) Mul(factor float64) (Score, error) {
	return NewScore(s.value * factor)
}

// Compare returns -1, 0, or 1 as s is less than, equal to, or greater than other.
func (s Score) Compare(other Score) int {
	switch {
	case s.value < other.value:
		return -1
	case s.value > other.value:
		return 1
	default:
		return 0
	}
}

// Equal reports whether two scores carry the same rounded value.
func (s Score) Equal(other Score) bool {
	return s.value == other.value
}

// String formats the score with two decimal places.
func (s Score) String() string {
	return strconv.FormatFloat(s.value, 'f', scoreDecimals, 64)
}

// roundScore rounds half away from zero to two decimal places.
func roundScore(value float64) float64 {
	const multiplier = 100

	return math.Round(value*multiplier) / multiplier
}
