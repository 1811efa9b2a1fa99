package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const userIDKey = "auth_user_id"

// ErrUnknownToken is returned by resolvers for tokens they do not recognize.
var ErrUnknownToken = errors.New("unknown token")

// TokenResolver maps a bearer token to a user id. Identity lookup itself is
// out of scope; a static resolver ships for development.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (int64, error)
}

// StaticTokenResolver resolves tokens from a fixed map.
type StaticTokenResolver map[string]int64

func (r StaticTokenResolver) Resolve(_ context.Context, token string) (int64, error) {
	userID, ok := r[token]
	if !ok {
		return 0, ErrUnknownToken
	}
	return userID, nil
}

// Auth authenticates requests with "Authorization: Bearer <token>" and puts
// the resolved user id on the gin context.
func Auth(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		userID, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// CurrentUserID returns the authenticated user set by Auth.
func CurrentUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	userID, ok := v.(int64)
	return userID, ok
}
