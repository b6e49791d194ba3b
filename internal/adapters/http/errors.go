package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pai-platform/insight-service/internal/adapters/http/dto"
)

// MapDomainError maps a domain error to an HTTP status code and error
// response. Unknown errors map to 500 with a generic message.
func MapDomainError(err error) (int, *dto.ErrorResponse) {
	return dto.MapError(err)
}

// RespondWithError maps a domain error to an HTTP response and writes it,
// attaching the trace ID when one is active.
func RespondWithError(c *gin.Context, err error) {
	dto.HandleError(c, err)
}

// RespondWithErrorCode writes an error response with a specific error code.
// Use this for adapter-level errors that do not originate from the domain.
func RespondWithErrorCode(c *gin.Context, code, message string) {
	errResp := dto.NewErrorResponse(code, message)

	if traceID := dto.GetTraceID(c); traceID != "" {
		errResp.TraceID = traceID
	}

	c.JSON(dto.HTTPStatusFromCode(code), errResp)
}

// RespondWithValidationErrors writes a 400 response with field-level
// validation errors.
func RespondWithValidationErrors(c *gin.Context, fieldErrors map[string]string) {
	errResp := dto.NewErrorResponseWithDetails(
		dto.ErrorCodeValidation,
		"request validation failed",
		fieldErrors,
	)

	if traceID := dto.GetTraceID(c); traceID != "" {
		errResp.TraceID = traceID
	}

	c.JSON(http.StatusBadRequest, errResp)
}

// AbortWithError aborts the request chain and writes an error response.
func AbortWithError(c *gin.Context, err error) {
	status, errResp := dto.MapError(err)

	if traceID := dto.GetTraceID(c); traceID != "" {
		errResp.TraceID = traceID
	}

	c.AbortWithStatusJSON(status, errResp)
}
