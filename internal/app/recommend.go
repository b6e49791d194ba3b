package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pai-platform/insight-service/internal/domain"
	"github.com/pai-platform/insight-service/internal/platform/logging"
	"github.com/pai-platform/insight-service/internal/ports"
)

const (
	// DefaultTopKeywords is how many top interests seed a recommendation
	// query when the caller does not say otherwise.
	DefaultTopKeywords = 1

	// DefaultPageSize applies when the caller omits pagination.
	DefaultPageSize = 10

	// MaxPageSize caps a single recommendation page.
	MaxPageSize = 50
)

// RecommendService assembles content recommendations for a child: top
// interests drive provider searches, the caller's location (when resolvable)
// drives distance ranking, and page-number pagination slices the result.
type RecommendService struct {
	interests ports.InterestQuery
	provider  ports.ContentProvider
	profiles  ports.ProfileQuery
	locations ports.UserLocationQuery
	cache     ports.RecommendationCache
	logger    *slog.Logger
	tracer    trace.Tracer

	topKeywords int
	cacheTTL    time.Duration
}

// RecommendServiceConfig contains the recommendation service dependencies.
// Profiles, Locations, and Cache are optional; when absent the service skips
// location ranking or caching respectively.
type RecommendServiceConfig struct {
	Interests ports.InterestQuery
	Provider  ports.ContentProvider
	Profiles  ports.ProfileQuery
	Locations ports.UserLocationQuery
	Cache     ports.RecommendationCache
	Logger    *slog.Logger

	// TopKeywords is the number of top interests used as search keywords.
	// Defaults to DefaultTopKeywords.
	TopKeywords int

	// CacheTTL is how long provider results stay cached. Defaults to an
	// hour.
	CacheTTL time.Duration
}

// NewRecommendService creates the recommendation service.
// Panics if the interest query or content provider is missing.
func NewRecommendService(cfg RecommendServiceConfig) *RecommendService {
	if cfg.Interests == nil || cfg.Provider == nil {
		panic("RecommendService: Interests query and Provider are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	topKeywords := cfg.TopKeywords
	if topKeywords <= 0 {
		topKeywords = DefaultTopKeywords
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}

	return &RecommendService{
		interests:   cfg.Interests,
		provider:    cfg.Provider,
		profiles:    cfg.Profiles,
		locations:   cfg.Locations,
		cache:       cfg.Cache,
		logger:      logger.With(slog.String("component", "app.RecommendService")),
		tracer:      otel.Tracer(instrumentationName),
		topKeywords: topKeywords,
		cacheTTL:    cacheTTL,
	}
}

// RecommendQuery is the input to a recommendation request.
type RecommendQuery struct {
	ChildID  string
	Category string
	Page     int
	PageSize int
}

// RecommendPage is one page of ranked recommendations.
type RecommendPage struct {
	Items      []domain.Candidate
	Keywords   []string
	TotalCount int
	Page       int
	PageSize   int
	HasMore    bool
}

// Execute resolves the child's top interests, searches the content provider
// per keyword, ranks by distance when the caller's location is known, and
// returns the requested page. A child with no interests yields an empty page
// without touching the provider.
func (s *RecommendService) Execute(ctx context.Context, query RecommendQuery) (*RecommendPage, error) {
	ctx, span := s.tracer.Start(ctx, "RecommendService.Execute",
		trace.WithAttributes(attribute.String("child_id", query.ChildID)))
	defer span.End()

	logger := logging.FromContext(ctx)

	if query.ChildID == "" {
		return nil, domain.NewValidationError("childId", "is required")
	}

	page, pageSize := normalizePagination(query.Page, query.PageSize)

	top, err := s.interests.FindTopByChild(ctx, query.ChildID, s.topKeywords)
	if err != nil {
		return nil, fmt.Errorf("loading top interests: %w", err)
	}

	if len(top) == 0 {
		return &RecommendPage{
			Items:    []domain.Candidate{},
			Keywords: []string{},
			Page:     page,
			PageSize: pageSize,
		}, nil
	}

	keywords := make([]string, 0, len(top))
	for _, interest := range top {
		keywords = append(keywords, interest.Keyword.String())
	}
	span.SetAttributes(attribute.StringSlice("keywords", keywords))

	items := s.collectCandidates(ctx, keywords, query.Category)

	if location := s.resolveLocation(ctx, query.ChildID); location != nil {
		items = domain.RankByDistance(items, location.Point)
	}

	for i := range items {
		items[i].RelevantKeywords = domain.FindRelevantKeywords(&items[i], keywords)
	}

	totalCount := len(items)
	paged, hasMore := paginate(items, page, pageSize)

	logger.InfoContext(ctx, "recommendations assembled",
		slog.String("child_id", query.ChildID),
		slog.Int("total", totalCount),
		slog.Int("page", page),
		slog.Int("returned", len(paged)),
	)

	return &RecommendPage{
		Items:      paged,
		Keywords:   keywords,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
		HasMore:    hasMore,
	}, nil
}

// collectCandidates searches the provider once per keyword, consulting the
// cache around each call, and concatenates the results with duplicate IDs
// removed. A failed provider call contributes nothing rather than failing
// the request.
func (s *RecommendService) collectCandidates(ctx context.Context, keywords []string, category string) []domain.Candidate {
	var items []domain.Candidate
	seen := make(map[string]struct{})

	for _, keyword := range keywords {
		result := s.search(ctx, keyword, category)

		for _, item := range result.Items {
			if item.ID != "" {
				if _, dup := seen[item.ID]; dup {
					continue
				}
				seen[item.ID] = struct{}{}
			}
			items = append(items, item)
		}
	}

	if items == nil {
		items = []domain.Candidate{}
	}
	return items
}

func (s *RecommendService) search(ctx context.Context, keyword, category string) *domain.SearchResult {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, keyword, category); ok {
			recommendationCacheTotal.WithLabelValues("hit").Inc()
			return cached
		}
		recommendationCacheTotal.WithLabelValues("miss").Inc()
	}

	result, err := s.provider.Search(ctx, ports.SearchCriteria{Keyword: keyword, Category: category})
	if err != nil || result == nil {
		if err != nil {
			s.logger.WarnContext(ctx, "content provider search failed",
				slog.String("keyword", keyword),
				slog.Any("error", err),
			)
		}
		return domain.EmptySearchResult()
	}

	if s.cache != nil && result.TotalCount > 0 {
		s.cache.Set(ctx, keyword, category, result, s.cacheTTL)
	}
	return result
}

// resolveLocation maps child profile to parent user to location. Every step
// is best-effort: any miss or upstream failure disables distance ranking for
// this request and nothing more.
func (s *RecommendService) resolveLocation(ctx context.Context, childID string) *ports.UserLocation {
	if s.profiles == nil || s.locations == nil {
		return nil
	}

	profile, err := s.profiles.FindByID(ctx, childID)
	if err != nil {
		s.logger.WarnContext(ctx, "profile lookup failed",
			slog.String("child_id", childID), slog.Any("error", err))
		return nil
	}
	if profile == nil || profile.UserID == "" {
		return nil
	}

	location, err := s.locations.FindByUserID(ctx, profile.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "location lookup failed",
			slog.String("user_id", profile.UserID), slog.Any("error", err))
		return nil
	}
	return location
}

func normalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize < 1:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// paginate slices one page out of the ranked items. hasMore reports whether
// any item exists past the returned window.
func paginate(items []domain.Candidate, page, pageSize int) ([]domain.Candidate, bool) {
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []domain.Candidate{}, false
	}

	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], end < len(items)
}
