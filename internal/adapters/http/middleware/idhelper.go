package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// idMiddlewareConfig configures the shared ID middleware.
type idMiddlewareConfig struct {
	headerName      string
	contextKey      string
	contextEnricher func(ctx context.Context, id string) context.Context
}

// createIDMiddleware creates middleware that extracts an ID from the request
// header or generates one, stores it on the gin context, echoes it on the
// response, and enriches the context logger.
func createIDMiddleware(cfg idMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(cfg.headerName)
		if id == "" {
			id = uuid.New().String()
		}

		c.Set(cfg.contextKey, id)
		c.Header(cfg.headerName, id)

		if cfg.contextEnricher != nil {
			ctx := cfg.contextEnricher(c.Request.Context(), id)
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()
	}
}

func getIDFromContext(c *gin.Context, key string) string {
	if id, exists := c.Get(key); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}

	return ""
}
