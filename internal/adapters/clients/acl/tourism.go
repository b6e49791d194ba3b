// Package acl implements the Anti-Corruption Layer for external services.
// ACL adapters translate between external API models and domain models,
// protecting the domain from external system changes.
package acl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/pai-platform/insight-service/internal/adapters/clients"
	"github.com/pai-platform/insight-service/internal/domain"
	"github.com/pai-platform/insight-service/internal/ports"
)

const (
	// tourismSearchRows is how many rows one keyword search requests.
	tourismSearchRows = 50

	// tourismResultOK is the provider's success result code.
	tourismResultOK = "0000"
)

// contentTypeCategories maps the tourism API's contenttypeid to a
// human-readable category. Unknown types fall back to "관광지".
var contentTypeCategories = map[string]string{
	"12": "관광지",
	"14": "문화시설",
	"15": "축제",
	"25": "여행코스",
	"28": "레포츠",
	"32": "숙박",
	"38": "쇼핑",
	"39": "음식점",
}

const defaultCategory = "관광지"

// TourismProviderConfig contains the tourism provider dependencies.
type TourismProviderConfig struct {
	// Client is the HTTP client pointed at the tourism API base URL.
	Client *clients.Client

	// ServiceKey is the API key sent with every request.
	ServiceKey string

	Logger *slog.Logger
}

// TourismProvider implements ports.ContentProvider against the Korea
// Tourism Organization keyword search API (searchKeyword2).
//
// Any upstream failure degrades to an empty result: a provider outage must
// reduce recommendations, never fail them.
type TourismProvider struct {
	client     *clients.Client
	serviceKey string
	logger     *slog.Logger
}

// NewTourismProvider creates the tourism content provider.
// Panics if Client is nil.
func NewTourismProvider(cfg TourismProviderConfig) *TourismProvider {
	if cfg.Client == nil {
		panic("TourismProvider: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &TourismProvider{
		client:     cfg.Client,
		serviceKey: cfg.ServiceKey,
		logger:     logger.With(slog.String("component", "acl.TourismProvider")),
	}
}

var _ ports.ContentProvider = (*TourismProvider)(nil)

// tourismEnvelope is the external response shape. Internal to the ACL.
type tourismEnvelope struct {
	Response struct {
		Header struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body struct {
			Items struct {
				Item tourismItems `json:"item"`
			} `json:"items"`
			TotalCount int `json:"totalCount"`
		} `json:"body"`
	} `json:"response"`
}

// tourismItems absorbs the API's habit of returning a bare object instead of
// a one-element array when a search matches a single item.
type tourismItems []tourismItem

func (t *tourismItems) UnmarshalJSON(data []byte) error {
	var list []tourismItem
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}

	var single tourismItem
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*t = tourismItems{single}
	return nil
}

type tourismItem struct {
	ContentID     string `json:"contentid"`
	ContentTypeID string `json:"contenttypeid"`
	Title         string `json:"title"`
	Addr1         string `json:"addr1"`
	FirstImage    string `json:"firstimage"`
	FirstImage2   string `json:"firstimage2"`
	MapX          string `json:"mapx"`
	MapY          string `json:"mapy"`
}

// Search queries searchKeyword2 and translates the response to domain
// candidates, filtering by category when the criteria ask for one.
func (p *TourismProvider) Search(ctx context.Context, criteria ports.SearchCriteria) (*domain.SearchResult, error) {
	params := url.Values{
		"serviceKey": {p.serviceKey},
		"numOfRows":  {strconv.Itoa(tourismSearchRows)},
		"pageNo":     {"1"},
		"MobileOS":   {"ETC"},
		"MobileApp":  {"PAI"},
		"_type":      {"json"},
		"arrange":    {"C"},
		"keyword":    {criteria.Keyword},
	}

	resp, err := p.client.Get(ctx, "/searchKeyword2?"+params.Encode())
	if err != nil {
		p.logger.WarnContext(ctx, "tourism search degraded to empty result",
			slog.String("keyword", criteria.Keyword),
			slog.Any("error", err),
		)
		return domain.EmptySearchResult(), nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		p.logger.WarnContext(ctx, "tourism search returned non-OK status",
			slog.String("keyword", criteria.Keyword),
			slog.Int("status", resp.StatusCode),
		)
		return domain.EmptySearchResult(), nil
	}

	envelope, err := decodeEnvelope(resp.Body)
	if err != nil {
		p.logger.WarnContext(ctx, "tourism response could not be decoded",
			slog.String("keyword", criteria.Keyword),
			slog.Any("error", err),
		)
		return domain.EmptySearchResult(), nil
	}

	if envelope.Response.Header.ResultCode != tourismResultOK {
		p.logger.WarnContext(ctx, "tourism search reported failure",
			slog.String("keyword", criteria.Keyword),
			slog.String("result_code", envelope.Response.Header.ResultCode),
			slog.String("result_msg", envelope.Response.Header.ResultMsg),
		)
		return domain.EmptySearchResult(), nil
	}

	items := make([]domain.Candidate, 0, len(envelope.Response.Body.Items.Item))
	for _, item := range envelope.Response.Body.Items.Item {
		candidate := translateItem(item)
		if criteria.Category != "" && candidate.Category != criteria.Category {
			continue
		}
		items = append(items, candidate)
	}

	p.logger.DebugContext(ctx, "tourism search complete",
		slog.String("keyword", criteria.Keyword),
		slog.Int("items", len(items)),
	)

	return &domain.SearchResult{Items: items, TotalCount: len(items)}, nil
}

func decodeEnvelope(r io.Reader) (*tourismEnvelope, error) {
	var envelope tourismEnvelope
	if err := json.NewDecoder(r).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode tourism envelope: %w", err)
	}
	return &envelope, nil
}

func translateItem(item tourismItem) domain.Candidate {
	candidate := domain.Candidate{
		ID:          item.ContentTypeID + "-" + item.ContentID,
		Title:       item.Title,
		Description: item.Addr1,
		Category:    mapContentType(item.ContentTypeID),
		Location:    item.Addr1,
		ImageURL:    firstNonEmpty(item.FirstImage, item.FirstImage2),
		Link:        "https://korean.visitkorea.or.kr/detail/ms_detail.do?cotid=" + item.ContentID,
	}

	if lng, err := strconv.ParseFloat(item.MapX, 64); err == nil && item.MapX != "" {
		candidate.Longitude = &lng
	}
	if lat, err := strconv.ParseFloat(item.MapY, 64); err == nil && item.MapY != "" {
		candidate.Latitude = &lat
	}

	return candidate
}

func mapContentType(contentTypeID string) string {
	if category, ok := contentTypeCategories[contentTypeID]; ok {
		return category
	}
	return defaultCategory
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
