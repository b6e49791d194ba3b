package domain

import (
	"regexp"
	"strings"
)

// FindRelevantKeywords returns the subset of keywords textually present in
// the candidate's title, description, or category. Matching is
// case-insensitive substring containment. Input order is preserved and no
// keyword appears twice.
func FindRelevantKeywords(item *Candidate, keywords []string) []string {
	if item == nil || len(keywords) == 0 {
		return nil
	}

	searchText := buildSearchText(item)
	seen := make(map[string]struct{}, len(keywords))

	var relevant []string

	for _, keyword := range keywords {
		normalized := strings.ToLower(strings.TrimSpace(keyword))
		if normalized == "" {
			continue
		}

		if _, dup := seen[normalized]; dup {
			continue
		}

		seen[normalized] = struct{}{}

		if strings.Contains(searchText, normalized) {
			relevant = append(relevant, keyword)
		}
	}

	return relevant
}

// MatchScore returns |relevant| / |keywords| in [0, 1], or 0 when the keyword
// list is empty.
func MatchScore(item *Candidate, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}

	return float64(len(FindRelevantKeywords(item, keywords))) / float64(len(keywords))
}

// IsExactMatch is the strict relevance variant: the keyword must appear at a
// word boundary in the text rather than as an arbitrary substring. It is an
// alternative predicate, not the default used by FindRelevantKeywords.
func IsExactMatch(text, keyword string) bool {
	normalized := strings.ToLower(strings.TrimSpace(keyword))
	if normalized == "" {
		return false
	}

	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(normalized) + `\b`)
	if err != nil {
		return false
	}

	return re.MatchString(strings.ToLower(text))
}

// buildSearchText concatenates the item's matchable text fields, lower-cased.
func buildSearchText(item *Candidate) string {
	parts := make([]string, 0, 3)

	if item.Title != "" {
		parts = append(parts, item.Title)
	}

	if item.Description != "" {
		parts = append(parts, item.Description)
	}

	if item.Category != "" {
		parts = append(parts, item.Category)
	}

	return strings.ToLower(strings.Join(parts, " "))
}
