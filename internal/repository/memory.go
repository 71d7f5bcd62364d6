package repository

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"visa_referral/internal/model"
)

// The memory repositories keep records in insertion order and answer every
// lookup with a linear scan. Values are copied in and out so callers never
// share a record with the store.

type memoryUserRepository struct {
	mu    sync.RWMutex
	users []*model.User
}

// NewMemoryUserRepository creates an empty in-memory UserRepository
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{}
}

func (r *memoryUserRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == user.ID {
			return fmt.Errorf("failed to create user: duplicate id %s", user.ID)
		}
	}
	cp := *user
	r.users = append(r.users, &cp)
	return nil
}

func (r *memoryUserRepository) find(match func(*model.User) bool) *model.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (r *memoryUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.ID == id }), nil
}

func (r *memoryUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.find(func(u *model.User) bool { return u.Email == email }), nil
}

func (r *memoryUserRepository) FindByReferralCode(ctx context.Context, code string) (*model.User, error) {
	if code == "" {
		return nil, nil
	}
	return r.find(func(u *model.User) bool { return strings.EqualFold(u.ReferralCode, code) }), nil
}

func (r *memoryUserRepository) Update(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.users {
		if u.ID == user.ID {
			cp := *user
			r.users[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("user not found for update")
}

type memoryReferralRepository struct {
	mu        sync.RWMutex
	referrals []*model.Referral
}

// NewMemoryReferralRepository creates an empty in-memory ReferralRepository
func NewMemoryReferralRepository() ReferralRepository {
	return &memoryReferralRepository{}
}

func (r *memoryReferralRepository) Create(ctx context.Context, referral *model.Referral) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *referral
	r.referrals = append(r.referrals, &cp)
	return nil
}

func (r *memoryReferralRepository) FindByID(ctx context.Context, id string) (*model.Referral, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ref := range r.referrals {
		if ref.ID == id {
			cp := *ref
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryReferralRepository) FindByEmail(ctx context.Context, email string) (*model.Referral, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ref := range r.referrals {
		if ref.ReferredEmail == email {
			cp := *ref
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryReferralRepository) FindAll(ctx context.Context, filters model.ReferralFilters) ([]model.Referral, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.Referral{}
	for _, ref := range r.referrals {
		if filters.ReferrerID != nil && *filters.ReferrerID != "" && ref.ReferrerID != *filters.ReferrerID {
			continue
		}
		if filters.Status != nil && *filters.Status != "" && ref.Status != *filters.Status {
			continue
		}
		out = append(out, *ref)
	}
	newestFirst(out, func(i int) time.Time { return out[i].CreatedAt })
	return out, nil
}

func (r *memoryReferralRepository) FindByReferrer(ctx context.Context, referrerID string) ([]model.Referral, error) {
	return r.FindAll(ctx, model.ReferralFilters{ReferrerID: &referrerID})
}

func (r *memoryReferralRepository) Update(ctx context.Context, referral *model.Referral) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, ref := range r.referrals {
		if ref.ID == referral.ID {
			cp := *referral
			r.referrals[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("referral not found for update")
}

type memoryNotificationRepository struct {
	mu            sync.RWMutex
	notifications []*model.Notification
}

// NewMemoryNotificationRepository creates an empty in-memory NotificationRepository
func NewMemoryNotificationRepository() NotificationRepository {
	return &memoryNotificationRepository{}
}

func cloneNotification(n *model.Notification) *model.Notification {
	cp := *n
	cp.Data = maps.Clone(n.Data)
	return &cp
}

func (r *memoryNotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, cloneNotification(n))
	return nil
}

func (r *memoryNotificationRepository) FindByID(ctx context.Context, id string) (*model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range r.notifications {
		if n.ID == id {
			return cloneNotification(n), nil
		}
	}
	return nil, nil
}

func (r *memoryNotificationRepository) FindByUser(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.Notification{}
	for _, n := range r.notifications {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, *cloneNotification(n))
	}
	newestFirst(out, func(i int) time.Time { return out[i].CreatedAt })
	return out, nil
}

func (r *memoryNotificationRepository) Update(ctx context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.notifications {
		if existing.ID == n.ID {
			r.notifications[i] = cloneNotification(n)
			return nil
		}
	}
	return fmt.Errorf("notification not found for update")
}

func (r *memoryNotificationRepository) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var affected int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.Read {
			n.MarkRead(at)
			affected++
		}
	}
	return affected, nil
}

func newestFirst[T any](items []T, createdAt func(int) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(i).After(createdAt(j))
	})
}
