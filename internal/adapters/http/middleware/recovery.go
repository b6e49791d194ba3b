package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/pai-platform/insight-service/internal/adapters/http/dto"
	"github.com/pai-platform/insight-service/internal/platform/logging"
)

// Recovery returns middleware that recovers from handler panics, logs the
// stack trace, and responds with a 500 error envelope. Apply it first in the
// chain so it covers everything downstream.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()

				ctxLogger := logging.FromContext(c.Request.Context())

				var traceID string
				if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
					traceID = span.SpanContext().TraceID().String()
				}

				ctxLogger.Error("panic recovered",
					slog.Any("error", r),
					slog.String("stack", string(stack)),
					slog.String("path", c.Request.URL.Path),
					slog.String("method", c.Request.Method),
					slog.String("trace_id", traceID),
				)

				errResp := dto.NewErrorResponse(
					dto.ErrorCodeInternal,
					"an internal error occurred",
				)
				if traceID != "" {
					errResp.TraceID = traceID
				}

				if !c.Writer.Written() {
					c.AbortWithStatusJSON(http.StatusInternalServerError, errResp)
				} else {
					c.Abort()
				}
			}
		}()

		c.Next()
	}
}
