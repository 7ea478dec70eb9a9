package middleware

import (
	"net/http"
	"strings"

	"carrental/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey    = "user_id"
	userEmailKey = "user_email"
)

// TokenParser verifies a bearer token.
type TokenParser interface {
	Parse(raw string) (domain.RequestContext, error)
}

// RequireAuth rejects requests without a valid bearer token. The 401 body tells the client to
// drop whatever credentials it cached.
func RequireAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		scheme, raw, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			AbortUnauthorized(c, "Authentication required")
			return
		}

		rc, err := tokens.Parse(raw)
		if err != nil {
			AbortUnauthorized(c, "Authentication failed")
			return
		}
		c.Set(userIDKey, int64(rc.UserID))
		c.Set(userEmailKey, rc.Email)
		c.Next()
	}
}

// AbortUnauthorized writes the 401 envelope and stops the chain.
func AbortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success":    false,
		"message":    message,
		"code":       domain.CodeUnauthorized,
		"clearAuth":  true,
		"request_id": GetRequestID(c),
	})
}

// CurrentUserID returns the authenticated user, if any.
func CurrentUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}
