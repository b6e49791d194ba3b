package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pai-platform/insight-service/internal/adapters/http/dto"
	"github.com/pai-platform/insight-service/internal/app"
)

// InsightHandler handles interest and recommendation HTTP endpoints.
type InsightHandler struct {
	ingest    *app.IngestService
	interests *app.InterestService
	recommend *app.RecommendService
	prune     *app.PruneService
}

// InsightHandlerConfig contains the handler dependencies.
type InsightHandlerConfig struct {
	Ingest    *app.IngestService
	Interests *app.InterestService
	Recommend *app.RecommendService
	Prune     *app.PruneService
}

// NewInsightHandler creates the insight handler.
// Panics if any service is missing.
func NewInsightHandler(cfg InsightHandlerConfig) *InsightHandler {
	if cfg.Ingest == nil || cfg.Interests == nil || cfg.Recommend == nil || cfg.Prune == nil {
		panic("InsightHandler: all services are required")
	}

	return &InsightHandler{
		ingest:    cfg.Ingest,
		interests: cfg.Interests,
		recommend: cfg.Recommend,
		prune:     cfg.Prune,
	}
}

// IngestAnalytics handles POST /api/v1/insights/analytics
// Records a conversation's keywords and applies interest scoring.
//
// @Summary Ingest conversation analytics
// @Description Records dialogue keywords and updates the child's interest scores
// @Tags insights
// @Accept json
// @Produce json
// @Success 200 {object} dto.IngestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/insights/analytics [post]
func (h *InsightHandler) IngestAnalytics(c *gin.Context) {
	var req dto.IngestRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		handleBindingError(c, err)
		return
	}

	result, err := h.ingest.Execute(c.Request.Context(), app.IngestCommand{
		ChildID:        req.ChildID,
		ConversationID: req.ConversationID,
		Keywords:       req.Keywords,
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewIngestResponse(result))
}

// TopInterests handles GET /api/v1/insights/interests/:childId/top
// Returns the child's strongest interests ordered by score.
//
// @Summary List a child's top interests
// @Tags insights
// @Produce json
// @Param childId path string true "Child profile ID"
// @Param limit query int false "Maximum results"
// @Success 200 {object} dto.TopInterestsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/insights/interests/{childId}/top [get]
func (h *InsightHandler) TopInterests(c *gin.Context) {
	childID := c.Param("childId")

	var req dto.TopInterestsRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		handleBindingError(c, err)
		return
	}

	interests, err := h.interests.TopInterests(c.Request.Context(), childID, req.Limit)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTopInterestsResponse(childID, interests))
}

// Recommendations handles GET /api/v1/insights/recommendations/:childId
// Returns a page of content recommendations driven by the child's top
// interests, distance-ranked when the caller's location is known.
//
// @Summary Get content recommendations for a child
// @Tags insights
// @Produce json
// @Param childId path string true "Child profile ID"
// @Param category query string false "Content category filter"
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Items per page"
// @Success 200 {object} dto.RecommendPageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/insights/recommendations/{childId} [get]
func (h *InsightHandler) Recommendations(c *gin.Context) {
	childID := c.Param("childId")

	var req dto.RecommendRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		handleBindingError(c, err)
		return
	}

	page, err := h.recommend.Execute(c.Request.Context(), app.RecommendQuery{
		ChildID:  childID,
		Category: req.Category,
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewRecommendPageResponse(page))
}

// PruneInterests handles DELETE /api/v1/insights/interests/prune
// Removes stale weak interests across all children.
//
// @Summary Prune stale interests
// @Tags insights
// @Produce json
// @Param minDays query int false "Minimum days since last update"
// @Param maxScore query number false "Maximum score to qualify for deletion"
// @Success 200 {object} dto.PruneResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/insights/interests/prune [delete]
func (h *InsightHandler) PruneInterests(c *gin.Context) {
	var req dto.PruneRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		handleBindingError(c, err)
		return
	}

	result, err := h.prune.Execute(c.Request.Context(), req.MinDays, req.MaxScore)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPruneResponse(result))
}

// RegisterInsightRoutes registers the insight routes on the given group.
// Extra middleware passed as pruneGuards runs before the prune handler only,
// the other routes share the group middleware.
func (h *InsightHandler) RegisterInsightRoutes(rg *gin.RouterGroup, pruneGuards ...gin.HandlerFunc) {
	insights := rg.Group("/insights")
	insights.POST("/analytics", h.IngestAnalytics)
	insights.GET("/interests/:childId/top", h.TopInterests)
	insights.GET("/recommendations/:childId", h.Recommendations)
	insights.DELETE("/interests/prune", append(pruneGuards, h.PruneInterests)...)
}

// handleBindingError writes the appropriate 400 response for a binding or
// validation failure.
func handleBindingError(c *gin.Context, err error) {
	if errors.Is(err, dto.ErrValidation) {
		if fieldErrors := dto.ValidationErrors(err); len(fieldErrors) > 0 {
			errResp := dto.NewErrorResponseWithDetails(
				dto.ErrorCodeValidation,
				"request validation failed",
				fieldErrors,
			).WithTraceID(dto.GetTraceID(c))

			c.JSON(http.StatusBadRequest, errResp)
			return
		}
	}

	errResp := dto.NewErrorResponse(
		dto.ErrorCodeBadRequest,
		"invalid request payload",
	).WithTraceID(dto.GetTraceID(c))

	c.JSON(http.StatusBadRequest, errResp)
}
