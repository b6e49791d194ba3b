package acl

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"context"

	"github.com/goccy/go-json"

	"github.com/pai-platform/insight-service/internal/adapters/clients"
	"github.com/pai-platform/insight-service/internal/domain"
	"github.com/pai-platform/insight-service/internal/ports"
)

// UserServiceClientConfig contains the user-service client dependencies.
type UserServiceClientConfig struct {
	// Client is the HTTP client pointed at the user service base URL.
	Client *clients.Client

	Logger *slog.Logger
}

// UserServiceClient implements ports.ProfileQuery and
// ports.UserLocationQuery against the user service's internal API.
//
// A missing profile or location is an expected outcome and returns
// (nil, nil); only transport and decoding failures surface as errors.
type UserServiceClient struct {
	client *clients.Client
	logger *slog.Logger
}

// NewUserServiceClient creates the user-service client adapter.
// Panics if Client is nil.
func NewUserServiceClient(cfg UserServiceClientConfig) *UserServiceClient {
	if cfg.Client == nil {
		panic("UserServiceClient: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &UserServiceClient{
		client: cfg.Client,
		logger: logger.With(slog.String("component", "acl.UserServiceClient")),
	}
}

var _ ports.ProfileQuery = (*UserServiceClient)(nil)
var _ ports.UserLocationQuery = (*UserServiceClient)(nil)

// userServiceEnvelope is the user service's standard response wrapper.
type userServiceEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type profilePayload struct {
	ProfileID   string `json:"profileId"`
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	ProfileType string `json:"profileType"`
}

type locationPayload struct {
	UserID    string  `json:"userId"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

// FindByID resolves a profile. Returns (nil, nil) when the profile does not
// exist.
func (c *UserServiceClient) FindByID(ctx context.Context, profileID string) (*ports.Profile, error) {
	data, found, err := c.getInternal(ctx, "/api/internal/profiles/"+profileID)
	if err != nil {
		return nil, domain.NewUnavailableError("user-service", err.Error())
	}
	if !found {
		c.logger.DebugContext(ctx, "profile not found", slog.String("profile_id", profileID))
		return nil, nil
	}

	var payload profilePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, domain.NewUnavailableError("user-service",
			fmt.Sprintf("decode profile: %v", err))
	}

	return &ports.Profile{
		ProfileID: payload.ProfileID,
		UserID:    payload.UserID,
		Name:      payload.Name,
		Type:      ports.ProfileType(payload.ProfileType),
	}, nil
}

// FindByUserID resolves a user's location. Returns (nil, nil) when the user
// or their location is unknown.
func (c *UserServiceClient) FindByUserID(ctx context.Context, userID string) (*ports.UserLocation, error) {
	data, found, err := c.getInternal(ctx, "/api/internal/users/"+userID+"/location")
	if err != nil {
		return nil, domain.NewUnavailableError("user-service", err.Error())
	}
	if !found {
		c.logger.DebugContext(ctx, "user location not found", slog.String("user_id", userID))
		return nil, nil
	}

	var payload locationPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, domain.NewUnavailableError("user-service",
			fmt.Sprintf("decode location: %v", err))
	}

	return &ports.UserLocation{
		UserID: payload.UserID,
		Point: domain.LatLng{
			Latitude:  payload.Latitude,
			Longitude: payload.Longitude,
		},
		Address: payload.Address,
	}, nil
}

// getInternal performs a GET and unwraps the success envelope.
// Returns found=false on 404 or on an unsuccessful envelope.
func (c *UserServiceClient) getInternal(ctx context.Context, path string) (json.RawMessage, bool, error) {
	resp, err := c.client.Get(ctx, path)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("user service returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read response: %w", err)
	}

	var envelope userServiceEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, false, fmt.Errorf("decode envelope: %w", err)
	}
	if !envelope.Success || len(envelope.Data) == 0 {
		c.logger.WarnContext(ctx, "user service envelope not successful",
			slog.String("path", path))
		return nil, false, nil
	}

	return envelope.Data, true, nil
}
