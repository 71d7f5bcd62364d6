package repository

import (
	"context"
	"time"

	"visa_referral/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgxpool.Pool the Postgres repositories need.
// pgxmock pools satisfy it too.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Find* methods return (nil, nil) when nothing matches; callers decide whether that is an error.

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByReferralCode(ctx context.Context, code string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

// ReferralRepository defines operations for referral data
type ReferralRepository interface {
	Create(ctx context.Context, referral *model.Referral) error
	FindByID(ctx context.Context, id string) (*model.Referral, error)
	FindAll(ctx context.Context, filters model.ReferralFilters) ([]model.Referral, error)
	FindByReferrer(ctx context.Context, referrerID string) ([]model.Referral, error)
	FindByEmail(ctx context.Context, email string) (*model.Referral, error)
	Update(ctx context.Context, referral *model.Referral) error
}

// NotificationRepository defines operations for notification data
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	FindByID(ctx context.Context, id string) (*model.Notification, error)
	FindByUser(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error)
	Update(ctx context.Context, n *model.Notification) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
}
