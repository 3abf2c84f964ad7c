package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gopherchat/internal/auth"
	"gopherchat/internal/transport/http/response"
)

const (
	ContextUserIDKey = "user_id"
	ContextEmailKey  = "email"
)

// AuthRequired extracts the bearer token and resolves it to a user
// identity before any downstream work runs. Every endpoint except the
// credential health check sits behind this gate, so an unauthenticated
// caller can never trigger a paid upstream call.
func AuthRequired(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, "Unauthorized: missing bearer token")
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Error(c, http.StatusUnauthorized, "Unauthorized: invalid authorization scheme")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		identity, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Unauthorized: invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, identity.UserID)
		c.Set(ContextEmailKey, identity.Email)
		c.Next()
	}
}

// UserID returns the verified user identity attached by AuthRequired.
func UserID(c *gin.Context) (string, bool) {
	raw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", false
	}
	userID, ok := raw.(string)
	return userID, ok && userID != ""
}
