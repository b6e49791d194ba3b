package dto

import (
	"time"

	"github.com/pai-platform/insight-service/internal/app"
	"github.com/pai-platform/insight-service/internal/domain"
	"github.com/pai-platform/insight-service/internal/ports"
)

// IngestRequest is the analytics ingestion payload sent by the conversation
// pipeline after each dialogue turn.
type IngestRequest struct {
	ChildID        string   `json:"childId"        validate:"required,notempty"`
	ConversationID string   `json:"conversationId" validate:"required,notempty"`
	Keywords       []string `json:"keywords"       validate:"dive,max=100"`
}

// IngestResponse reports which interests the ingestion touched.
type IngestResponse struct {
	CreatedKeywords []string `json:"createdKeywords"`
	UpdatedKeywords []string `json:"updatedKeywords"`
}

// NewIngestResponse maps an ingestion result to its response.
func NewIngestResponse(result *app.IngestResult) IngestResponse {
	created := result.CreatedKeywords
	if created == nil {
		created = []string{}
	}

	updated := result.UpdatedKeywords
	if updated == nil {
		updated = []string{}
	}

	return IngestResponse{
		CreatedKeywords: created,
		UpdatedKeywords: updated,
	}
}

// InterestResponse is one scored interest in the top-interests listing.
type InterestResponse struct {
	Keyword     string    `json:"keyword"`
	Score       float64   `json:"score"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// TopInterestsResponse lists a child's strongest interests, ordered by score
// descending.
type TopInterestsResponse struct {
	ChildID   string             `json:"childId"`
	Interests []InterestResponse `json:"interests"`
}

// NewTopInterestsResponse maps domain interests to the listing response.
func NewTopInterestsResponse(childID string, interests []*domain.Interest) TopInterestsResponse {
	items := make([]InterestResponse, 0, len(interests))
	for _, interest := range interests {
		items = append(items, InterestResponse{
			Keyword:     interest.Keyword.String(),
			Score:       interest.Score.Value(),
			LastUpdated: interest.LastUpdated,
		})
	}

	return TopInterestsResponse{ChildID: childID, Interests: items}
}

// TopInterestsRequest carries the optional result limit.
type TopInterestsRequest struct {
	Limit int `form:"limit" validate:"gte=0,lte=100"`
}

// RecommendRequest carries the recommendation query parameters.
type RecommendRequest struct {
	PageRequest
	Category string `form:"category"`
}

// RecommendationResponse is one ranked content item.
type RecommendationResponse struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description,omitempty"`
	Category         string   `json:"category,omitempty"`
	Location         string   `json:"location,omitempty"`
	StartDate        string   `json:"startDate,omitempty"`
	EndDate          string   `json:"endDate,omitempty"`
	ImageURL         string   `json:"imageUrl,omitempty"`
	Link             string   `json:"link,omitempty"`
	Distance         *float64 `json:"distanceKm,omitempty"`
	RelevantKeywords []string `json:"relevantKeywords,omitempty"`
}

// RecommendPageResponse is one page of recommendations plus the interest
// keywords that produced it.
type RecommendPageResponse struct {
	PageResponse[RecommendationResponse]

	Keywords []string `json:"keywords"`
}

// NewRecommendPageResponse maps a recommendation page to its response.
func NewRecommendPageResponse(page *app.RecommendPage) RecommendPageResponse {
	items := make([]RecommendationResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, newRecommendationResponse(&page.Items[i]))
	}

	keywords := page.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	return RecommendPageResponse{
		PageResponse: PageResponse[RecommendationResponse]{
			Items:      items,
			TotalCount: page.TotalCount,
			Page:       page.Page,
			PageSize:   page.PageSize,
			HasMore:    page.HasMore,
		},
		Keywords: keywords,
	}
}

func newRecommendationResponse(c *domain.Candidate) RecommendationResponse {
	return RecommendationResponse{
		ID:               c.ID,
		Title:            c.Title,
		Description:      c.Description,
		Category:         c.Category,
		Location:         c.Location,
		StartDate:        c.StartDate,
		EndDate:          c.EndDate,
		ImageURL:         c.ImageURL,
		Link:             c.Link,
		Distance:         c.Distance,
		RelevantKeywords: c.RelevantKeywords,
	}
}

// PruneRequest carries the optional prune thresholds.
type PruneRequest struct {
	MinDays  int     `form:"minDays"  validate:"gte=0"`
	MaxScore float64 `form:"maxScore" validate:"gte=0,lte=100"`
}

// PruneResponse reports what a prune run removed.
type PruneResponse struct {
	DeletedCount    int      `json:"deletedCount"`
	DeletedKeywords []string `json:"deletedKeywords"`
}

// NewPruneResponse maps a prune result to its response.
func NewPruneResponse(result *ports.PruneResult) PruneResponse {
	keywords := result.DeletedKeywords
	if keywords == nil {
		keywords = []string{}
	}

	return PruneResponse{
		DeletedCount:    result.DeletedCount,
		DeletedKeywords: keywords,
	}
}
