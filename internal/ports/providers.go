package ports

import (
	"context"
	"time"

	"github.com/pai-platform/insight-service/internal/domain"
)

// SearchCriteria is the content-provider query: one keyword plus an optional
// category filter.
type SearchCriteria struct {
	Keyword  string
	Category string
}

// ContentProvider queries an external content source for recommendation
// candidates.
//
// Implementations must degrade to an empty result on any upstream failure
// rather than propagate the error: a provider outage reduces the
// recommendation result, it never fails the request.
type ContentProvider interface {
	Search(ctx context.Context, criteria SearchCriteria) (*domain.SearchResult, error)
}

// ProfileType distinguishes parent and child profiles in the user service.
type ProfileType string

const (
	ProfileTypeParent ProfileType = "parent"
	ProfileTypeChild  ProfileType = "child"
)

// Profile is the subset of user-service profile data the engine needs.
type Profile struct {
	ProfileID string
	UserID    string
	Name      string
	Type      ProfileType
}

// ProfileQuery resolves a profile by its identifier.
// Absence is an expected outcome, not an error: implementations return
// (nil, nil) when the profile does not exist, which disables
// location-based ranking downstream.
type ProfileQuery interface {
	FindByID(ctx context.Context, profileID string) (*Profile, error)
}

// UserLocation is a user's resolved geographic position.
type UserLocation struct {
	UserID  string
	Point   domain.LatLng
	Address string
}

// UserLocationQuery resolves a user's location.
// As with ProfileQuery, absence returns (nil, nil) rather than an error.
type UserLocationQuery interface {
	FindByUserID(ctx context.Context, userID string) (*UserLocation, error)
}

// RecommendationCache is an optional accelerator for provider results, keyed
// by normalized keyword plus category. Misses and cache failures are
// transparent: Get simply reports not-ok and Set/Invalidate are best-effort.
type RecommendationCache interface {
	Get(ctx context.Context, keyword, category string) (*domain.SearchResult, bool)
	Set(ctx context.Context, keyword, category string, result *domain.SearchResult, ttl time.Duration)
	Invalidate(ctx context.Context, keyword, category string)
}
