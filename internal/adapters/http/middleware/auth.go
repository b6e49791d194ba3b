package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/pai-platform/insight-service/internal/adapters/http/dto"
	"github.com/pai-platform/insight-service/internal/platform/config"
)

const (
	// ContextKeyClaims is the gin context key for extracted claims.
	ContextKeyClaims = "claims"

	defaultSubjectHeader = "X-User-ID"
	defaultRolesHeader   = "X-User-Roles"
)

// Claims represents caller identity extracted from gateway headers. The API
// gateway validates the JWT upstream and forwards the claims via headers.
type Claims struct {
	// Subject is the caller's user ID.
	Subject string

	// Roles is the list of roles assigned to the caller.
	Roles []string
}

// HasRole checks if the caller has the specified role.
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// HasAnyRole checks if the caller has any of the specified roles.
func (c *Claims) HasAnyRole(roles ...string) bool {
	return slices.ContainsFunc(roles, c.HasRole)
}

// ExtractClaims extracts caller claims from request headers. Header names
// come from AuthConfig when set.
func ExtractClaims(c *gin.Context, cfg *config.AuthConfig) *Claims {
	subjectHeader := defaultSubjectHeader
	rolesHeader := defaultRolesHeader

	if cfg != nil {
		if cfg.SubjectHeader != "" {
			subjectHeader = cfg.SubjectHeader
		}

		if cfg.RolesHeader != "" {
			rolesHeader = cfg.RolesHeader
		}
	}

	claims := &Claims{
		Subject: c.GetHeader(subjectHeader),
	}

	if rolesStr := c.GetHeader(rolesHeader); rolesStr != "" {
		claims.Roles = parseCommaSeparated(rolesStr)
	}

	return claims
}

// GetClaims retrieves claims from the gin context. Returns nil if claims are
// not present.
func GetClaims(c *gin.Context) *Claims {
	if claims, exists := c.Get(ContextKeyClaims); exists {
		if cl, ok := claims.(*Claims); ok {
			return cl
		}
	}

	return nil
}

// RequireAuth returns middleware that requires an authenticated caller.
func RequireAuth(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ExtractClaims(c, cfg)

		if claims.Subject == "" {
			abortWithForbidden(c, "authentication required")
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// RequireRole returns middleware that requires a specific role.
func RequireRole(cfg *config.AuthConfig, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := getOrExtractClaims(c, cfg)

		if !claims.HasRole(role) {
			abortWithForbidden(c, "insufficient permissions: role "+role+" required")
			return
		}

		c.Next()
	}
}

// RequireAnyRole returns middleware that requires at least one of the roles.
func RequireAnyRole(cfg *config.AuthConfig, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := getOrExtractClaims(c, cfg)

		if !claims.HasAnyRole(roles...) {
			abortWithForbidden(c, "insufficient permissions: one of roles ["+strings.Join(roles, ", ")+"] required")
			return
		}

		c.Next()
	}
}

func getOrExtractClaims(c *gin.Context, cfg *config.AuthConfig) *Claims {
	if claims := GetClaims(c); claims != nil {
		return claims
	}

	claims := ExtractClaims(c, cfg)
	c.Set(ContextKeyClaims, claims)

	return claims
}

func abortWithForbidden(c *gin.Context, message string) {
	errResp := dto.NewErrorResponse(dto.ErrorCodeForbidden, message)

	if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
		errResp.TraceID = span.SpanContext().TraceID().String()
	}

	c.AbortWithStatusJSON(http.StatusForbidden, errResp)
}

func parseCommaSeparated(s string) []string {
	parts := strings.Split(s, ",")

	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
