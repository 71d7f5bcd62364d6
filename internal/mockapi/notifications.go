package mockapi

import (
	"context"
	"net/http"
	"strconv"

	"visa_referral/internal/model"
	"visa_referral/internal/service"
)

// NotificationMock serves the notification endpoints.
type NotificationMock struct {
	notifications service.NotificationService
	router        router
}

func NewNotificationMock(notifications service.NotificationService) *NotificationMock {
	m := &NotificationMock{notifications: notifications}
	m.router.routes = []route{
		{method: http.MethodGet, pattern: "/users/:id/notifications", fn: m.listByUser},
		{method: http.MethodPatch, pattern: "/users/:id/notifications/read-all", fn: m.markAllRead},
		{method: http.MethodPatch, pattern: "/notifications/:id", fn: m.markRead},
		{method: http.MethodGet, pattern: "/users/:id/notification-stats", fn: m.stats},
		{method: http.MethodPost, pattern: "/notifications", status: http.StatusCreated, fn: m.create},
	}
	return m
}

func (m *NotificationMock) HandleRequest(ctx context.Context, req Request) (*model.APIResponse[any], error) {
	return m.router.handle(ctx, req)
}

func (m *NotificationMock) listByUser(ctx context.Context, c *call) (any, string, error) {
	unreadOnly, _ := strconv.ParseBool(c.Query.Get("unreadOnly"))
	items, err := m.notifications.ListByUser(ctx, c.Params["id"], unreadOnly)
	if err != nil {
		return nil, "", err
	}
	return items, "Notifications retrieved successfully", nil
}

func (m *NotificationMock) markRead(ctx context.Context, c *call) (any, string, error) {
	var req model.UpdateNotificationRequest
	if err := c.bind(&req); err != nil {
		return nil, "", err
	}
	if err := service.CheckReadUpdate(req); err != nil {
		return nil, "", err
	}
	n, err := m.notifications.MarkAsRead(ctx, c.Params["id"])
	if err != nil {
		return nil, "", err
	}
	return n, "Notification marked as read", nil
}

func (m *NotificationMock) markAllRead(ctx context.Context, c *call) (any, string, error) {
	affected, err := m.notifications.MarkAllAsRead(ctx, c.Params["id"])
	if err != nil {
		return nil, "", err
	}
	return map[string]int64{"updated": affected}, "All notifications marked as read", nil
}

func (m *NotificationMock) stats(ctx context.Context, c *call) (any, string, error) {
	stats, err := m.notifications.Stats(ctx, c.Params["id"])
	if err != nil {
		return nil, "", err
	}
	return stats, "Notification stats retrieved successfully", nil
}

func (m *NotificationMock) create(ctx context.Context, c *call) (any, string, error) {
	var req model.CreateNotificationRequest
	if err := c.bind(&req); err != nil {
		return nil, "", err
	}
	n, err := m.notifications.Create(ctx, req)
	if err != nil {
		return nil, "", err
	}
	return n, "Notification created successfully", nil
}
