package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/panotour/core/internal/pkg/jwt"
	"github.com/panotour/core/internal/pkg/response"
)

const (
	ContextKeyUserID   = "user_id"
	ContextKeyIdentity = "identity"
)

// Auth rejects requests without a valid bearer token: a missing token is
// 401, a token that fails verification is 403.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "Missing access token")
			return
		}
		claims, err := jwt.Parse(token)
		if err != nil {
			response.Forbidden(c, "Invalid or expired token")
			return
		}
		setIdentity(c, claims.Identity)
		c.Next()
	}
}

// OptionalAuth attaches the caller identity when a valid token is present
// and otherwise lets the request through anonymously.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c); token != "" {
			if claims, err := jwt.Parse(token); err == nil {
				setIdentity(c, claims.Identity)
			}
		}
		c.Next()
	}
}

func setIdentity(c *gin.Context, id jwt.Identity) {
	c.Set(ContextKeyUserID, id.UserID)
	c.Set(ContextKeyIdentity, id)
}

// CurrentUserID returns the authenticated user id, or 0 for anonymous callers.
func CurrentUserID(c *gin.Context) int64 {
	v, _ := c.Get(ContextKeyUserID)
	id, _ := v.(int64)
	return id
}

// CurrentIdentity returns the verified token identity.
func CurrentIdentity(c *gin.Context) (jwt.Identity, bool) {
	v, ok := c.Get(ContextKeyIdentity)
	if !ok {
		return jwt.Identity{}, false
	}
	id, ok := v.(jwt.Identity)
	return id, ok
}

func IsAuthenticated(c *gin.Context) bool {
	return CurrentUserID(c) > 0
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return NormalizeToken(auth)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
