// Package handlers provides HTTP request handlers for the service.
package handlers

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pai-platform/insight-service/internal/ports"
)

// BuildInfo contains build-time information, typically injected via ldflags.
type BuildInfo struct {
	// Version is the semantic version of the service.
	Version string `json:"version"`

	// Commit is the git commit SHA.
	Commit string `json:"commit"`

	// BuildTime is the timestamp when the binary was built.
	BuildTime string `json:"buildTime"`

	// GoVersion is the Go version used to build the binary.
	GoVersion string `json:"goVersion"`
}

// NewBuildInfo creates a BuildInfo with the Go version automatically set.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
}

// HealthHandler handles health-related HTTP endpoints.
type HealthHandler struct {
	registry  ports.HealthRegistry
	buildInfo BuildInfo
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(registry ports.HealthRegistry, buildInfo BuildInfo) *HealthHandler {
	return &HealthHandler{
		registry:  registry,
		buildInfo: buildInfo,
	}
}

type livenessResponse struct {
	Status string `json:"status"`
}

// Liveness handles the /-/live endpoint. It returns 200 as long as the
// process runs and checks no dependencies, that is what readiness is for.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, livenessResponse{
		Status: "ok",
	})
}

type readinessResponse struct {
	Status string                        `json:"status"`
	Checks map[string]*ports.CheckResult `json:"checks,omitempty"`
}

// Readiness handles the /-/ready endpoint. Returns 200 when all registered
// health checks pass, 503 otherwise.
func (h *HealthHandler) Readiness(c *gin.Context) {
	result := h.registry.CheckAll(c.Request.Context())

	resp := readinessResponse{
		Status: string(result.Status),
		Checks: result.Checks,
	}

	status := http.StatusOK
	if result.Status == ports.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, resp)
}

// Startup handles the /-/startup endpoint. Startup probes share the
// readiness semantics so a pod only enters rotation once its dependencies
// respond.
func (h *HealthHandler) Startup(c *gin.Context) {
	h.Readiness(c)
}

// BuildInfoHandler handles the /-/build endpoint.
func (h *HealthHandler) BuildInfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.buildInfo)
}

// MetricsHandler returns an http.Handler for Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RegisterHealthRoutes registers the health routes on the given group:
//   - GET /-/live - liveness probe
//   - GET /-/ready - readiness probe
//   - GET /-/startup - startup probe
//   - GET /-/build - build information
//   - GET /-/metrics - Prometheus metrics
func (h *HealthHandler) RegisterHealthRoutes(rg *gin.RouterGroup) {
	rg.GET("/live", h.Liveness)
	rg.GET("/ready", h.Readiness)
	rg.GET("/startup", h.Startup)
	rg.GET("/build", h.BuildInfoHandler)
	rg.GET("/metrics", gin.WrapH(MetricsHandler()))
}

// RegisterHealthRoutesOnEngine registers health routes directly on the
// engine under the /- prefix.
func (h *HealthHandler) RegisterHealthRoutesOnEngine(engine *gin.Engine) {
	health := engine.Group("/-")
	h.RegisterHealthRoutes(health)
}
