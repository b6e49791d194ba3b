package domain

import (
	"math"
	"time"
)

// Scoring constants. These are fixed points of the contract: changing them
// changes how quickly interests rise and fade.
const (
	// BaseScore is awarded whenever a keyword appears in a conversation.
	BaseScore = 3.0

	// MentionBonusPerCount is the extra score per mention within one event.
	MentionBonusPerCount = 0.5

	// MentionBonusMax caps the per-event bonus, so a single conversation
	// contributes at most BaseScore + MentionBonusMax.
	MentionBonusMax = 3.0

	// HalfLifeDays is the exponential decay half-life of an interest score.
	HalfLifeDays = 7.0
)

const hoursPerDay = 24

// CalculateScore computes the score contributed by one ingestion event:
// base 3.0 plus min(mentionCount*0.5, 3.0). The result lies in [3.0, 6.0]
// for any non-negative mention count.
func CalculateScore(mentionCount int) (Score, error) {
	if mentionCount < 0 {
		return Score{}, NewValidationError("mentionCount", "must not be negative")
	}

	bonus := math.Min(float64(mentionCount)*MentionBonusPerCount, MentionBonusMax)

	return NewScore(BaseScore + bonus)
}

// ApplyDecay reduces a score by exponential decay over the time elapsed since
// lastUpdated: current * 0.5^(daysElapsed/7). A lastUpdated after now is a
// caller error; clock skew must be resolved upstream.
func ApplyDecay(current Score, lastUpdated, now time.Time) (Score, error) {
	if lastUpdated.After(now) {
		return Score{}, NewValidationError("lastUpdated", "must not be in the future")
	}

	daysElapsed := now.Sub(lastUpdated).Hours() / hoursPerDay
	factor := math.Pow(0.5, daysElapsed/HalfLifeDays)

	return current.Mul(factor)
}

// UpdateExistingScore is the blended operation used on every re-mention:
// decay the prior score, then add the fresh contribution for the new mention
// count. Decay always happens first, so an immediate re-mention keeps the
// full prior value while a long-dormant keyword is mostly reset to the
// new-mention baseline.
func UpdateExistingScore(current Score, lastUpdated time.Time, newMentionCount int, now time.Time) (Score, error) {
	decayed, err := ApplyDecay(current, lastUpdated, now)
	if err != nil {
		return Score{}, err
	}

	fresh, err := CalculateScore(newMentionCount)
	if err != nil {
		return Score{}, err
	}

	return decayed.Add(fresh.Value())
}

// IsSignificant reports whether a score meets the threshold. A threshold of
// zero or less falls back to BaseScore.
func IsSignificant(score Score, threshold float64) bool {
	if threshold <= 0 {
		threshold = BaseScore
	}

	return score.Value() >= threshold
}
