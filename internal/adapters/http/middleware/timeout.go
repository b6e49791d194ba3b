package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// SimpleTimeout returns middleware that sets a deadline on the request
// context without attempting to abort the handler. Handlers doing
// context-aware work observe the deadline through their downstream calls.
func SimpleTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
