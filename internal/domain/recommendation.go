package domain

// Candidate is an externally-sourced recommendation content item. It is a
// transient DTO, never persisted: providers produce candidates, the ranking
// and matching services annotate them, and the result is returned to the
// caller within the same request.
type Candidate struct {
	ID          string
	Title       string
	Description string
	Category    string
	Location    string

	// StartDate and EndDate bound time-limited content such as festivals,
	// formatted YYYY-MM-DD. Empty when not applicable.
	StartDate string
	EndDate   string

	ImageURL string
	Link     string

	// Longitude and Latitude are the item coordinates. Nil when the
	// provider supplied no location.
	Longitude *float64
	Latitude  *float64

	// Distance is the computed kilometers from the user location, set by
	// RankByDistance. Nil until ranked or when coordinates are missing.
	Distance *float64

	// RelevantKeywords are the interest keywords found in the item's text,
	// set by FindRelevantKeywords.
	RelevantKeywords []string
}

// HasCoordinates reports whether the item carries a usable location.
func (c *Candidate) HasCoordinates() bool {
	return c.Longitude != nil && c.Latitude != nil
}

// SearchResult is a provider response: candidate items plus the total count
// before any application-side ranking or pagination.
type SearchResult struct {
	Items      []Candidate
	TotalCount int
}

// EmptySearchResult is the degraded response used when a provider fails.
func EmptySearchResult() *SearchResult {
	return &SearchResult{Items: []Candidate{}, TotalCount: 0}
}
