package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/pai-platform/insight-service/internal/platform/logging"
)

const (
	// HeaderCorrelationID is the header name for the correlation ID. Unlike
	// the per-request ID, the correlation ID follows a business transaction
	// across service boundaries.
	HeaderCorrelationID = "X-Correlation-ID"

	// ContextKeyCorrelationID is the gin context key for the correlation ID.
	ContextKeyCorrelationID = "correlation_id"
)

// CorrelationID returns middleware that propagates the X-Correlation-ID
// header, generating one when this service is the transaction origin.
func CorrelationID() gin.HandlerFunc {
	return createIDMiddleware(idMiddlewareConfig{
		headerName: HeaderCorrelationID,
		contextKey: ContextKeyCorrelationID,
		contextEnricher: func(ctx context.Context, id string) context.Context {
			return ContextWithCorrelationID(logging.WithCorrelationID(ctx, id), id)
		},
	})
}

// GetCorrelationID extracts the correlation ID from the gin.Context. Returns
// empty string if not set.
func GetCorrelationID(c *gin.Context) string {
	return getIDFromContext(c, ContextKeyCorrelationID)
}
