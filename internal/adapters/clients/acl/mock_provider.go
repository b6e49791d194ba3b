package acl

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pai-platform/insight-service/internal/domain"
	"github.com/pai-platform/insight-service/internal/ports"
)

// MockProvider is the content provider used when no tourism API key is
// configured. It serves a fixed catalog of child-friendly events so local
// development and demos work offline.
type MockProvider struct {
	logger  *slog.Logger
	catalog []domain.Candidate
}

// NewMockProvider creates the offline content provider.
func NewMockProvider(logger *slog.Logger) *MockProvider {
	if logger == nil {
		logger = slog.Default()
	}

	return &MockProvider{
		logger:  logger.With(slog.String("component", "acl.MockProvider")),
		catalog: mockCatalog(),
	}
}

var _ ports.ContentProvider = (*MockProvider)(nil)

// Search filters the catalog by keyword and category. When nothing matches
// the keyword, the whole catalog is returned so a page is never empty.
func (p *MockProvider) Search(ctx context.Context, criteria ports.SearchCriteria) (*domain.SearchResult, error) {
	keyword := strings.ToLower(strings.TrimSpace(criteria.Keyword))

	matched := make([]domain.Candidate, 0, len(p.catalog))
	for _, item := range p.catalog {
		text := strings.ToLower(item.Title + " " + item.Description + " " + item.Category)
		if keyword == "" || strings.Contains(text, keyword) {
			matched = append(matched, item)
		}
	}

	if len(matched) == 0 {
		matched = append(matched, p.catalog...)
	}

	if criteria.Category != "" {
		filtered := matched[:0:0]
		for _, item := range matched {
			if item.Category == criteria.Category {
				filtered = append(filtered, item)
			}
		}
		matched = filtered
	}

	p.logger.DebugContext(ctx, "mock search complete",
		slog.String("keyword", criteria.Keyword),
		slog.Int("items", len(matched)),
	)

	return &domain.SearchResult{Items: matched, TotalCount: len(matched)}, nil
}

func mockCatalog() []domain.Candidate {
	return []domain.Candidate{
		{
			ID:          "rec-001",
			Title:       "국립과학관 공룡 전시회",
			Description: "중생대 공룡들의 화석과 복원 모형을 볼 수 있는 특별 전시",
			Category:    "전시",
			Location:    "서울 국립과학관",
			StartDate:   "2025-01-01",
			EndDate:     "2025-03-31",
			ImageURL:    "https://example.com/dino.jpg",
			Link:        "https://example.com/dino-exhibition",
		},
		{
			ID:          "rec-002",
			Title:       "어린이 우주 체험 프로그램",
			Description: "천체 관측과 로켓 제작 체험을 할 수 있는 교육 프로그램",
			Category:    "체험",
			Location:    "부산 천문대",
			StartDate:   "2025-02-01",
			EndDate:     "2025-02-28",
			ImageURL:    "https://example.com/space.jpg",
			Link:        "https://example.com/space-program",
		},
		{
			ID:          "rec-003",
			Title:       "어린이 미술 축제",
			Description: "다양한 미술 작품 전시와 그리기 체험",
			Category:    "축제",
			Location:    "대전 예술의전당",
			StartDate:   "2025-03-01",
			EndDate:     "2025-03-15",
			ImageURL:    "https://example.com/art.jpg",
			Link:        "https://example.com/art-festival",
		},
		{
			ID:          "rec-004",
			Title:       "로봇 코딩 캠프",
			Description: "어린이를 위한 로봇 제작 및 코딩 교육",
			Category:    "체험",
			Location:    "서울 로봇과학관",
			StartDate:   "2025-04-01",
			EndDate:     "2025-04-30",
			ImageURL:    "https://example.com/robot.jpg",
			Link:        "https://example.com/robot-camp",
		},
		{
			ID:          "rec-005",
			Title:       "동물의 왕국 특별전",
			Description: "세계 각국의 동물들을 만날 수 있는 전시",
			Category:    "전시",
			Location:    "인천 동물원",
			StartDate:   "2025-05-01",
			EndDate:     "2025-06-30",
			ImageURL:    "https://example.com/animal.jpg",
			Link:        "https://example.com/animal-exhibition",
		},
	}
}
