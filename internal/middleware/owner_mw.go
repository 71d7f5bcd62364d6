package middleware

import (
	"net/http"

	"visa_referral/internal/model"

	"github.com/gin-gonic/gin"
)

// OwnerMiddleware only lets a user reach /users/:param routes for their own id
func OwnerMiddleware(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := AuthUserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, model.NewErrorResponse("User not found in token, ensure JWT middleware runs first", http.StatusForbidden))
			return
		}

		if c.Param(param) != userID {
			c.AbortWithStatusJSON(http.StatusForbidden, model.NewErrorResponse("You do not have permission to access this resource", http.StatusForbidden))
			return
		}

		c.Next()
	}
}
