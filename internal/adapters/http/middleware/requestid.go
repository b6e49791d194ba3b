// Package middleware provides HTTP middleware for the Gin server.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/pai-platform/insight-service/internal/platform/logging"
)

const (
	// HeaderRequestID is the header name for the per-request ID.
	HeaderRequestID = "X-Request-ID"

	// ContextKeyRequestID is the gin context key for the request ID.
	ContextKeyRequestID = "request_id"
)

// RequestID returns middleware that extracts the X-Request-ID header or
// generates a UUID, echoes it on the response, and adds it to both the
// context logger and the plain context for downstream propagation.
func RequestID() gin.HandlerFunc {
	return createIDMiddleware(idMiddlewareConfig{
		headerName: HeaderRequestID,
		contextKey: ContextKeyRequestID,
		contextEnricher: func(ctx context.Context, id string) context.Context {
			return ContextWithRequestID(logging.WithRequestID(ctx, id), id)
		},
	})
}

// GetRequestID extracts the request ID from the gin.Context. Returns empty
// string if not set.
func GetRequestID(c *gin.Context) string {
	return getIDFromContext(c, ContextKeyRequestID)
}
