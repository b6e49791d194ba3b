package domain

import "strings"

// MaxKeywordLength is the maximum number of runes a keyword may contain.
const MaxKeywordLength = 100

// Keyword is a validated, trimmed interest keyword.
// Equality is case-insensitive. The zero value is invalid; use NewKeyword.
type Keyword struct {
	value string
}

// NewKeyword validates and normalizes a raw keyword string.
// The input is trimmed; it must be non-empty, at most 100 runes, and contain
// at least one alphanumeric or Hangul character.
func NewKeyword(raw string) (Keyword, error) {
	trimmed := strings.TrimSpace(raw)

	if trimmed == "" {
		return Keyword{}, NewValidationError("keyword", "must not be empty")
	}

	if len([]rune(trimmed)) > MaxKeywordLength {
		return Keyword{}, NewValidationError("keyword", "must not exceed 100 characters")
	}

	if !containsKeywordChar(trimmed) {
		return Keyword{}, NewValidationError("keyword", "must contain at least one letter or digit")
	}

	return Keyword{value: trimmed}, nil
}

// String returns the trimmed keyword as entered.
func (k Keyword) String() string {
	return k.value
}

// Normalized returns the lower-cased form used for comparisons and lookups.
func (k Keyword) Normalized() string {
	return strings.ToLower(k.value)
}

// IsZero reports whether the keyword is the invalid zero value.
func (k Keyword) IsZero() bool {
	return k.value == ""
}

// Equal reports whether two keywords match, ignoring case.
func (k Keyword) Equal(other Keyword) bool {
	return k.Normalized() == other.Normalized()
}

// Matches reports whether the keyword equals the given raw string after
// trimming and lower-casing it.
func (k Keyword) Matches(raw string) bool {
	return k.Normalized() == strings.ToLower(strings.TrimSpace(raw))
}

// containsKeywordChar reports whether s contains at least one ASCII
// alphanumeric or Hangul syllable rune.
func containsKeywordChar(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return true
		case r >= 0xAC00 && r <= 0xD7A3: // Hangul syllables
			return true
		}
	}

	return false
}

// MentionCounts aggregates a raw keyword list into per-keyword mention
// frequencies. Keywords are compared by their trimmed form, blanks are
// dropped, and first-seen order is preserved.
type MentionCounts struct {
	order  []string
	counts map[string]int
}

// CountMentions builds MentionCounts from a raw extracted keyword list.
func CountMentions(raw []string) MentionCounts {
	m := MentionCounts{counts: make(map[string]int, len(raw))}

	for _, k := range raw {
		trimmed := strings.TrimSpace(k)
		if trimmed == "" {
			continue
		}

		if _, seen := m.counts[trimmed]; !seen {
			m.order = append(m.order, trimmed)
		}

		m.counts[trimmed]++
	}

	return m
}

// Keywords returns the unique trimmed keywords in first-seen order.
func (m MentionCounts) Keywords() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)

	return out
}

// Count returns how many times the given trimmed keyword was mentioned.
func (m MentionCounts) Count(keyword string) int {
	return m.counts[keyword]
}

// Len returns the number of unique keywords.
func (m MentionCounts) Len() int {
	return len(m.order)
}

// IsEmpty reports whether no keywords were counted.
func (m MentionCounts) IsEmpty() bool {
	return len(m.order) == 0
}

// ExtractedKeywords is the immutable, deduplicated keyword set recorded on an
// analytics entry. Unlike MentionCounts it retains no frequencies.
type ExtractedKeywords struct {
	keywords []string
}

// NewExtractedKeywords trims, drops blanks, and deduplicates the raw list
// preserving first-seen order.
func NewExtractedKeywords(raw []string) ExtractedKeywords {
	seen := make(map[string]struct{}, len(raw))

	var keywords []string

	for _, k := range raw {
		trimmed := strings.TrimSpace(k)
		if trimmed == "" {
			continue
		}

		if _, dup := seen[trimmed]; dup {
			continue
		}

		seen[trimmed] = struct{}{}
		keywords = append(keywords, trimmed)
	}

	return ExtractedKeywords{keywords: keywords}
}

// Values returns a copy of the keyword list.
func (e ExtractedKeywords) Values() []string {
	out := make([]string, len(e.keywords))
	copy(out, e.keywords)

	return out
}

// Count returns the number of unique keywords.
func (e ExtractedKeywords) Count() int {
	return len(e.keywords)
}

// IsEmpty reports whether the set contains no keywords.
func (e ExtractedKeywords) IsEmpty() bool {
	return len(e.keywords) == 0
}

// Contains reports whether the set includes the given keyword after trimming.
func (e ExtractedKeywords) Contains(keyword string) bool {
	trimmed := strings.TrimSpace(keyword)
	for _, k := range e.keywords {
		if k == trimmed {
			return true
		}
	}

	return false
}
