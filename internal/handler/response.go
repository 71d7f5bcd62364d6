package handler

import (
	"errors"
	"net/http"

	"visa_referral/internal/logger"
	"visa_referral/internal/middleware"
	"visa_referral/internal/model"
	"visa_referral/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errNoAuthUser = errors.New("user ID not found in context")

func respond[T any](c *gin.Context, status int, data T, message string) {
	c.JSON(status, model.NewAPIResponse(data, message, status))
}

// fail writes the error envelope. Unexpected errors are logged and hidden.
func fail(c *gin.Context, log *zap.Logger, err error, fallback string) {
	status := service.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.WithContext(c.Request.Context(), log).Error(fallback, zap.Error(err))
		_ = c.Error(err)
		message = fallback
	}
	c.JSON(status, model.NewErrorResponse(message, status))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, model.NewErrorResponse("Invalid request: "+err.Error(), http.StatusBadRequest))
}

func authUserID(c *gin.Context) (string, bool) {
	id, ok := middleware.AuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, model.NewErrorResponse(errNoAuthUser.Error(), http.StatusUnauthorized))
	}
	return id, ok
}
