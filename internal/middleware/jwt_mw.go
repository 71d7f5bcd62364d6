package middleware

import (
	"net/http"
	"strings"

	"visa_referral/internal/model"

	"github.com/gin-gonic/gin"
)

const AuthUserKey = "authUser"

// Authenticator resolves a bearer token to a user id.
type Authenticator interface {
	Authenticate(token string) (string, error)
}

// JWTAuthMiddleware creates a middleware for bearer token authentication
func JWTAuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.NewErrorResponse("Authorization header required", http.StatusUnauthorized))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.NewErrorResponse("Invalid authorization header format", http.StatusUnauthorized))
			return
		}

		userID, err := auth.Authenticate(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.NewErrorResponse("Invalid or expired token", http.StatusUnauthorized))
			return
		}

		c.Set(AuthUserKey, userID)
		c.Next()
	}
}

// AuthUserID returns the id set by JWTAuthMiddleware.
func AuthUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(AuthUserKey)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
