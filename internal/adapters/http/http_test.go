package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pai-platform/insight-service/internal/adapters/http/dto"
	"github.com/pai-platform/insight-service/internal/domain"
	"github.com/pai-platform/insight-service/internal/platform/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testServerConfig() *config.ServerConfig {
	return &config.ServerConfig{
		Port:            0,
		Host:            "127.0.0.1",
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		IdleTimeout:     30 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		MaxRequestSize:  64,
	}
}

func TestServerLimitsRequestBody(t *testing.T) {
	server := New(testServerConfig(), slog.New(slog.DiscardHandler))

	server.Engine().POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	small := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("ok"))
	rec := httptest.NewRecorder()
	server.Engine().ServeHTTP(rec, small)
	assert.Equal(t, http.StatusOK, rec.Code)

	large := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 1024)))
	rec = httptest.NewRecorder()
	server.Engine().ServeHTTP(rec, large)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestServerAddr(t *testing.T) {
	cfg := testServerConfig()
	cfg.Port = 9090

	server := New(cfg, slog.New(slog.DiscardHandler))

	assert.Equal(t, "127.0.0.1:9090", server.Addr())
}

func TestMapDomainError(t *testing.T) {
	status, resp := MapDomainError(domain.NewConflictError("interest", "stale version"))

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, dto.ErrorCodeConflict, resp.Error.Code)
}

func TestRespondWithError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

	RespondWithError(c, domain.NewValidationError("childId", "is required"))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrorCodeValidation, resp.Error.Code)
	assert.Equal(t, "is required", resp.Error.Details["childId"])
}

func TestRespondWithValidationErrors(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

	RespondWithValidationErrors(c, map[string]string{
		"keywords": "contains an invalid element",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "contains an invalid element", resp.Error.Details["keywords"])
}

func TestAbortWithError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

	AbortWithError(c, domain.NewForbiddenError("prune", "admin role required"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.True(t, c.IsAborted())
}
