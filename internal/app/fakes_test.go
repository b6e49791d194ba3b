package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pai-platform/insight-service/internal/domain"
	"github.com/pai-platform/insight-service/internal/ports"
)

// fakeInterestRepo is an in-memory InterestRepository/InterestQuery with
// version-checked saves, so the optimistic-concurrency path is testable
// without a database.
type fakeInterestRepo struct {
	mu     sync.Mutex
	byKey  map[string]*domain.Interest
	nextID int

	// conflictsBeforeSave forces that many ErrConflict responses from Save
	// before it starts succeeding.
	conflictsBeforeSave int

	saveErr error
	findErr error

	pruneResult *ports.PruneResult
	pruneErr    error

	pruneCalls [][2]any
}

func newFakeInterestRepo() *fakeInterestRepo {
	return &fakeInterestRepo{byKey: make(map[string]*domain.Interest)}
}

func (f *fakeInterestRepo) key(childID string, keyword domain.Keyword) string {
	return childID + "|" + keyword.Normalized()
}

func (f *fakeInterestRepo) Save(_ context.Context, interest *domain.Interest) (*domain.Interest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.saveErr != nil {
		return nil, f.saveErr
	}
	if f.conflictsBeforeSave > 0 {
		f.conflictsBeforeSave--
		return nil, domain.ErrConflict
	}

	key := f.key(interest.ChildID, interest.Keyword)
	stored, exists := f.byKey[key]

	saved := *interest
	if saved.ID == "" {
		if exists {
			return nil, domain.ErrConflict
		}
		f.nextID++
		saved.ID = fmt.Sprintf("interest-%d", f.nextID)
		saved.Version = 1
	} else {
		if !exists || stored.Version != saved.Version {
			return nil, domain.ErrConflict
		}
		saved.Version++
	}

	f.byKey[key] = &saved
	out := saved
	return &out, nil
}

func (f *fakeInterestRepo) BulkSave(ctx context.Context, interests []*domain.Interest) ([]*domain.Interest, error) {
	saved := make([]*domain.Interest, 0, len(interests))
	for _, interest := range interests {
		s, err := f.Save(ctx, interest)
		if err != nil {
			return nil, err
		}
		saved = append(saved, s)
	}
	return saved, nil
}

func (f *fakeInterestRepo) FindByChildAndKeyword(_ context.Context, childID string, keyword domain.Keyword) (*domain.Interest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findErr != nil {
		return nil, f.findErr
	}

	stored, ok := f.byKey[f.key(childID, keyword)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *stored
	return &out, nil
}

func (f *fakeInterestRepo) DeleteStale(_ context.Context, minDays int, maxScore float64) (*ports.PruneResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pruneCalls = append(f.pruneCalls, [2]any{minDays, maxScore})
	if f.pruneErr != nil {
		return nil, f.pruneErr
	}
	if f.pruneResult != nil {
		return f.pruneResult, nil
	}
	return &ports.PruneResult{}, nil
}

func (f *fakeInterestRepo) get(childID, keyword string) *domain.Interest {
	f.mu.Lock()
	defer f.mu.Unlock()

	for key, stored := range f.byKey {
		if key == childID+"|"+strings.ToLower(keyword) {
			out := *stored
			return &out
		}
	}
	return nil
}

// fakeInterestQuery serves canned top-interest results.
type fakeInterestQuery struct {
	top   []*domain.Interest
	err   error
	calls int
	limit int
}

func (f *fakeInterestQuery) FindTopByChild(_ context.Context, _ string, limit int) ([]*domain.Interest, error) {
	f.calls++
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.top, nil
}

// fakeAnalyticsRepo records created analytics records.
type fakeAnalyticsRepo struct {
	mu      sync.Mutex
	records []*domain.AnalyticsRecord
	err     error
}

func (f *fakeAnalyticsRepo) Create(_ context.Context, record *domain.AnalyticsRecord) (*domain.AnalyticsRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	saved := *record
	saved.ID = fmt.Sprintf("analytics-%d", len(f.records)+1)
	f.records = append(f.records, &saved)
	out := saved
	return &out, nil
}

// fakeProvider serves canned search results per keyword.
type fakeProvider struct {
	results map[string]*domain.SearchResult
	err     error
	calls   []ports.SearchCriteria
}

func (f *fakeProvider) Search(_ context.Context, criteria ports.SearchCriteria) (*domain.SearchResult, error) {
	f.calls = append(f.calls, criteria)
	if f.err != nil {
		return nil, f.err
	}
	if result, ok := f.results[criteria.Keyword]; ok {
		return result, nil
	}
	return domain.EmptySearchResult(), nil
}

// fakeCache is a map-backed RecommendationCache.
type fakeCache struct {
	entries map[string]*domain.SearchResult
	gets    int
	hits    int
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*domain.SearchResult)}
}

func (f *fakeCache) cacheKey(keyword, category string) string {
	return keyword + "|" + category
}

func (f *fakeCache) Get(_ context.Context, keyword, category string) (*domain.SearchResult, bool) {
	f.gets++
	result, ok := f.entries[f.cacheKey(keyword, category)]
	if ok {
		f.hits++
	}
	return result, ok
}

func (f *fakeCache) Set(_ context.Context, keyword, category string, result *domain.SearchResult, _ time.Duration) {
	f.sets++
	f.entries[f.cacheKey(keyword, category)] = result
}

func (f *fakeCache) Invalidate(_ context.Context, keyword, category string) {
	delete(f.entries, f.cacheKey(keyword, category))
}

// fakeProfileQuery resolves one canned profile.
type fakeProfileQuery struct {
	profile *ports.Profile
	err     error
}

func (f *fakeProfileQuery) FindByID(_ context.Context, _ string) (*ports.Profile, error) {
	return f.profile, f.err
}

// fakeLocationQuery resolves one canned location.
type fakeLocationQuery struct {
	location *ports.UserLocation
	err      error
}

func (f *fakeLocationQuery) FindByUserID(_ context.Context, _ string) (*ports.UserLocation, error) {
	return f.location, f.err
}

func mustInterest(childID, keyword string, score float64, lastUpdated time.Time) *domain.Interest {
	kw, err := domain.NewKeyword(keyword)
	if err != nil {
		panic(err)
	}
	sc, err := domain.NewScore(score)
	if err != nil {
		panic(err)
	}
	interest, err := domain.NewInterest(childID, kw, sc, lastUpdated)
	if err != nil {
		panic(err)
	}
	return interest
}

func candidates(n int) []domain.Candidate {
	items := make([]domain.Candidate, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, domain.Candidate{
			ID:    fmt.Sprintf("content-%d", i+1),
			Title: fmt.Sprintf("전시 %d", i+1),
		})
	}
	return items
}
