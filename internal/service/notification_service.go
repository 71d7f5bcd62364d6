package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"visa_referral/internal/model"
	"visa_referral/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotificationNotFound = errors.New("Notification not found")
	ErrNotificationInvalid  = errors.New("notification user and title are required")
	ErrNotificationUnread   = errors.New("notifications can only be marked as read")
)

// CheckReadUpdate accepts an empty body or read:true. Nothing marks a notification unread.
func CheckReadUpdate(req model.UpdateNotificationRequest) error {
	if req.Read != nil && !*req.Read {
		return ErrNotificationUnread
	}
	return nil
}

// NotificationService provides inbox operations
type NotificationService interface {
	Create(ctx context.Context, req model.CreateNotificationRequest) (*model.Notification, error)
	Get(ctx context.Context, id string) (*model.Notification, error)
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error)
	MarkAsRead(ctx context.Context, id string) (*model.Notification, error)
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
	Stats(ctx context.Context, userID string) (*model.NotificationStats, error)
}

type notificationService struct {
	repo repository.NotificationRepository
	log  *zap.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo repository.NotificationRepository, log *zap.Logger) NotificationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &notificationService{repo: repo, log: log}
}

func (s *notificationService) Create(ctx context.Context, req model.CreateNotificationRequest) (*model.Notification, error) {
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Title) == "" {
		return nil, ErrNotificationInvalid
	}
	n := model.NewNotification(uuid.NewString(), req)
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	s.log.Debug("notification created",
		zap.String("user_id", n.UserID),
		zap.String("type", string(n.Type)),
	)
	return n, nil
}

// ListByUser returns the user's notifications newest first
func (s *notificationService) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error) {
	items, err := s.repo.FindByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return items, nil
}

func (s *notificationService) Get(ctx context.Context, id string) (*model.Notification, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find notification: %w", err)
	}
	if n == nil {
		return nil, ErrNotificationNotFound
	}
	return n, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, id string) (*model.Notification, error) {
	n, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	n.MarkRead(model.Now())
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to update notification: %w", err)
	}
	return n, nil
}

// MarkAllAsRead returns how many notifications changed; repeating it is a no-op.
func (s *notificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	affected, err := s.repo.MarkAllRead(ctx, userID, model.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return affected, nil
}

func (s *notificationService) Stats(ctx context.Context, userID string) (*model.NotificationStats, error) {
	items, err := s.repo.FindByUser(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	stats := &model.NotificationStats{ByType: map[model.NotificationType]int{}}
	for _, n := range items {
		stats.Total++
		if n.Read {
			stats.Read++
		} else {
			stats.Unread++
		}
		stats.ByType[n.Type]++
	}
	return stats, nil
}
