package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"visa_referral/internal/model"

	"github.com/jackc/pgx/v5"
)

type notificationRepository struct {
	db DBTX
}

// NewNotificationRepository creates a Postgres-backed NotificationRepository
func NewNotificationRepository(db DBTX) NotificationRepository {
	return &notificationRepository{db: db}
}

const notificationColumns = `id, user_id, type, title, message, data, read, read_at, created_at, updated_at`

func scanNotification(row pgx.Row) (*model.Notification, error) {
	n := &model.Notification{}
	var (
		kind string
		data []byte
	)
	err := row.Scan(&n.ID, &n.UserID, &kind, &n.Title, &n.Message, &data, &n.Read, &n.ReadAt, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	n.Type = model.NotificationType(kind)
	n.Data = map[string]any{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			return nil, fmt.Errorf("failed to decode notification data: %w", err)
		}
	}
	return n, nil
}

// Create inserts a new notification into the database
func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	data, err := json.Marshal(n.Data)
	if err != nil {
		return fmt.Errorf("failed to encode notification data: %w", err)
	}
	sql := `INSERT INTO notifications (` + notificationColumns + `)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.db.Exec(ctx, sql, n.ID, n.UserID, string(n.Type), n.Title, n.Message, data, n.Read, n.ReadAt, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// FindByID retrieves a notification by its ID
func (r *notificationRepository) FindByID(ctx context.Context, id string) (*model.Notification, error) {
	sql := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	n, err := scanNotification(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find notification by ID: %w", err)
	}
	return n, nil
}

// FindByUser retrieves a user's notifications, newest first
func (r *notificationRepository) FindByUser(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error) {
	sql := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	if unreadOnly {
		sql += ` AND read = false`
	}
	sql += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications by user: %w", err)
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification row: %w", err)
		}
		notifications = append(notifications, *n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}
	return notifications, nil
}

// Update overwrites the read state of a notification
func (r *notificationRepository) Update(ctx context.Context, n *model.Notification) error {
	sql := `UPDATE notifications SET read = $1, read_at = $2, updated_at = $3 WHERE id = $4`
	tag, err := r.db.Exec(ctx, sql, n.Read, n.ReadAt, n.UpdatedAt, n.ID)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notification not found for update")
	}
	return nil
}

// MarkAllRead flags every unread notification of the user as read
func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	sql := `UPDATE notifications SET read = true, read_at = $1, updated_at = $1 WHERE user_id = $2 AND read = false`
	tag, err := r.db.Exec(ctx, sql, at, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}
