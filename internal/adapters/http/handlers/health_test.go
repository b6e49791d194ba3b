package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pai-platform/insight-service/internal/ports"
)

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Name() string                  { return s.name }
func (s stubChecker) Check(_ context.Context) error { return s.err }

func TestNewBuildInfo(t *testing.T) {
	bi := NewBuildInfo("1.0.0", "abc123", "2025-06-01T10:00:00Z")

	assert.Equal(t, "1.0.0", bi.Version)
	assert.Equal(t, "abc123", bi.Commit)
	assert.Equal(t, "2025-06-01T10:00:00Z", bi.BuildTime)
	assert.Equal(t, runtime.Version(), bi.GoVersion)
}

func TestHealthHandlerLiveness(t *testing.T) {
	handler := NewHealthHandler(ports.NewHealthRegistry(), BuildInfo{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/-/live", nil)

	handler.Liveness(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp livenessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHealthHandlerReadiness(t *testing.T) {
	tests := []struct {
		name           string
		checkers       []ports.HealthChecker
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "all checks healthy",
			checkers: []ports.HealthChecker{
				stubChecker{name: "sqlite"},
				stubChecker{name: "cache"},
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "healthy",
		},
		{
			name: "one check unhealthy",
			checkers: []ports.HealthChecker{
				stubChecker{name: "sqlite"},
				stubChecker{name: "cache", err: errors.New("connection refused")},
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "unhealthy",
		},
		{
			name:           "no checks registered",
			checkers:       nil,
			expectedStatus: http.StatusOK,
			expectedBody:   "healthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := ports.NewHealthRegistry()
			for _, checker := range tt.checkers {
				require.NoError(t, registry.Register(checker))
			}

			handler := NewHealthHandler(registry, BuildInfo{})

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/-/ready", nil)

			handler.Readiness(c)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var resp readinessResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedBody, resp.Status)
		})
	}
}

func TestHealthHandlerBuildInfo(t *testing.T) {
	buildInfo := NewBuildInfo("2.1.0", "deadbeef", "2025-06-01T10:00:00Z")
	handler := NewHealthHandler(ports.NewHealthRegistry(), buildInfo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/-/build", nil)

	handler.BuildInfoHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp BuildInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2.1.0", resp.Version)
	assert.Equal(t, "deadbeef", resp.Commit)
}

func TestRegisterHealthRoutesOnEngine(t *testing.T) {
	engine := gin.New()
	handler := NewHealthHandler(ports.NewHealthRegistry(), BuildInfo{})
	handler.RegisterHealthRoutesOnEngine(engine)

	for _, path := range []string{"/-/live", "/-/ready", "/-/startup", "/-/build", "/-/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
