package handler

import (
	"net/http"
	"strconv"

	"visa_referral/internal/model"
	"visa_referral/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NotificationHandler handles notification requests
type NotificationHandler struct {
	service service.NotificationService
	log     *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(s service.NotificationService, log *zap.Logger) *NotificationHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &NotificationHandler{service: s, log: log}
}

func (h *NotificationHandler) ListUserNotifications(c *gin.Context) {
	unreadOnly, _ := strconv.ParseBool(c.Query("unreadOnly"))
	items, err := h.service.ListByUser(c.Request.Context(), c.Param("id"), unreadOnly)
	if err != nil {
		fail(c, h.log, err, "Failed to retrieve notifications")
		return
	}
	respond(c, http.StatusOK, items, "Notifications retrieved successfully")
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, ok := authUserID(c)
	if !ok {
		return
	}
	var req model.UpdateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := service.CheckReadUpdate(req); err != nil {
		fail(c, h.log, err, "Failed to update notification")
		return
	}

	ctx := c.Request.Context()
	n, err := h.service.Get(ctx, c.Param("id"))
	if err == nil && n.UserID != userID {
		err = service.ErrNotificationNotFound
	}
	if err == nil {
		n, err = h.service.MarkAsRead(ctx, n.ID)
	}
	if err != nil {
		fail(c, h.log, err, "Failed to update notification")
		return
	}
	respond(c, http.StatusOK, n, "Notification marked as read")
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	affected, err := h.service.MarkAllAsRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.log, err, "Failed to update notifications")
		return
	}
	respond(c, http.StatusOK, gin.H{"updated": affected}, "All notifications marked as read")
}

func (h *NotificationHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.log, err, "Failed to retrieve notification stats")
		return
	}
	respond(c, http.StatusOK, stats, "Notification stats retrieved successfully")
}

func (h *NotificationHandler) CreateNotification(c *gin.Context) {
	userID, ok := authUserID(c)
	if !ok {
		return
	}
	var req model.CreateNotificationRequest
	req.UserID = userID
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	// callers may only notify themselves
	req.UserID = userID

	n, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, h.log, err, "Failed to create notification")
		return
	}
	respond(c, http.StatusCreated, n, "Notification created successfully")
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(protected, users *gin.RouterGroup) {
	protected.POST("/notifications", h.CreateNotification)
	protected.PATCH("/notifications/:id", h.MarkAsRead)
	users.GET("/notifications", h.ListUserNotifications)
	users.PATCH("/notifications/read-all", h.MarkAllAsRead)
	users.GET("/notification-stats", h.Stats)
}
