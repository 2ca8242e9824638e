package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxKeyUserID    = "auth.user_id"
	ctxKeyAuthToken = "auth.token"
)

// Middleware resolves the request's auth token (bearer header first,
// auth cookie as fallback) and attaches the owning user to the context.
// Requests without a valid token are rejected with 401.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := s.requestToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		userID, err := s.ValidateToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(ctxKeyUserID, userID)
		c.Set(ctxKeyAuthToken, token)
		c.Next()
	}
}

func (s *Service) requestToken(c *gin.Context) string {
	header := c.GetHeader(s.headerName)
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[len("bearer "):])
	}
	token, err := c.Cookie(s.cookieName)
	if err != nil {
		return ""
	}
	return token
}

// UserIDFromContext returns the authenticated user id set by Middleware.
func UserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	id, ok := c.Get(ctxKeyUserID)
	if !ok {
		return uuid.Nil, false
	}
	userID, ok := id.(uuid.UUID)
	return userID, ok
}

// AuthTokenFromContext returns the token that authenticated the request.
func AuthTokenFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyAuthToken)
	if !ok {
		return "", false
	}
	token, ok := v.(string)
	return token, ok
}
