package dto

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/pai-platform/insight-service/internal/domain"
	"github.com/pai-platform/insight-service/internal/platform/logging"
)

// WithTraceID attaches a trace ID to the error response.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// GetTraceID extracts the active trace ID from the request context. Returns
// empty string when no span is recording.
func GetTraceID(c *gin.Context) string {
	if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}

	return ""
}

// MapError maps a domain error to an HTTP status code and error response.
// Unknown errors map to 500 with a generic message.
func MapError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, err.Error())

	case domain.IsConflict(err):
		return http.StatusConflict, NewErrorResponse(ErrorCodeConflict, err.Error())

	case domain.IsValidation(err):
		resp := NewErrorResponse(ErrorCodeValidation, err.Error())

		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			resp.Error.Details = map[string]string{
				validationErr.Field: validationErr.Message,
			}
		}

		return http.StatusBadRequest, resp

	case domain.IsForbidden(err):
		return http.StatusForbidden, NewErrorResponse(ErrorCodeForbidden, err.Error())

	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, NewErrorResponse(ErrorCodeUnavailable, err.Error())

	default:
		// Unknown errors get a generic message to avoid leaking internals
		return http.StatusInternalServerError, NewErrorResponse(
			ErrorCodeInternal,
			"an internal error occurred",
		)
	}
}

// HandleError writes the mapped error response for err, attaching the trace
// ID when one is active. Internal errors are logged with full details.
func HandleError(c *gin.Context, err error) {
	status, errResp := MapError(err)

	if traceID := GetTraceID(c); traceID != "" {
		errResp.TraceID = traceID
	}

	if status == http.StatusInternalServerError {
		logger := logging.FromContext(c.Request.Context())
		logger.Error("internal error",
			"error", err.Error(),
			"trace_id", errResp.TraceID,
		)
	}

	c.JSON(status, errResp)
}
