package dto

// DefaultPageSize is the default number of items per page.
const DefaultPageSize = 10

// MaxPageSize is the maximum allowed items per page.
const MaxPageSize = 50

// PageRequest carries page-number pagination parameters from the query
// string. Pages are 1-based.
type PageRequest struct {
	Page     int `form:"page" validate:"omitempty,gte=1"`
	PageSize int `form:"pageSize" validate:"omitempty,gte=1,lte=50"`
}

// GetPage returns the page with the default applied.
func (p *PageRequest) GetPage() int {
	if p.Page < 1 {
		return 1
	}
	return p.Page
}

// GetPageSize returns the page size with defaults and the cap applied.
func (p *PageRequest) GetPageSize() int {
	if p.PageSize < 1 {
		return DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return p.PageSize
}

// PageResponse is a generic page-numbered response.
type PageResponse[T any] struct {
	Items      []T  `json:"items"`
	TotalCount int  `json:"totalCount"`
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	HasMore    bool `json:"hasMore"`
}

// NewPageResponse builds a page response. Items must already be sliced to
// the page window.
func NewPageResponse[T any](items []T, totalCount, page, pageSize int, hasMore bool) *PageResponse[T] {
	if items == nil {
		items = []T{}
	}

	return &PageResponse[T]{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
		HasMore:    hasMore,
	}
}
