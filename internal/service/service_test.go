package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"visa_referral/internal/model"
	"visa_referral/internal/repository"
	"visa_referral/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type services struct {
	store         *repository.Store
	auth          AuthService
	referrals     ReferralService
	notifications NotificationService
	dashboard     DashboardService
}

func newServices(t *testing.T) *services {
	t.Helper()
	ctx := context.Background()
	store, err := repository.NewMemoryStore(ctx, true)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	auth := NewAuthService(store.Users, utils.NewMockTokenIssuer(time.Hour), log)
	notifications := NewNotificationService(store.Notifications, log)
	referrals := NewReferralService(store.Referrals, store.Users, notifications, log)
	return &services{
		store:         store,
		auth:          auth,
		referrals:     referrals,
		notifications: notifications,
		dashboard:     NewDashboardService(auth, referrals, notifications),
	}
}

func TestAuthService_Login(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	payload, err := s.auth.Login(ctx, "john@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "1", payload.User.ID)
	assert.True(t, strings.HasPrefix(payload.Token, "mock-jwt-token-1-"))
	assert.True(t, strings.HasPrefix(payload.RefreshToken, "mock-refresh-token-1-"))
	assert.NotNil(t, payload.User.LastLogin)

	stored, err := s.store.Users.FindByID(ctx, "1")
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	_, err := s.auth.Login(ctx, "john@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.EqualError(t, err, "Invalid email or password")

	_, err = s.auth.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_Inactive(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	u, err := s.store.Users.FindByID(ctx, "2")
	require.NoError(t, err)
	u.IsActive = false
	require.NoError(t, s.store.Users.Update(ctx, u))

	_, err = s.auth.Login(ctx, "jane@example.com", "password456")
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestAuthService_Register(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	payload, err := s.auth.Register(ctx, model.RegisterRequest{
		Name:         "Mia Chen",
		Email:        "Mia@Example.com",
		Password:     "secret99",
		ReferralCode: "john2024",
	})
	require.NoError(t, err)
	assert.Equal(t, "mia@example.com", payload.User.Email)
	assert.Equal(t, "1", payload.User.ReferredBy)
	assert.True(t, strings.HasPrefix(payload.User.ReferralCode, "MIAC"))
	assert.Equal(t, model.StageEnquiry, payload.User.CurrentVisaStage)
	assert.NotEmpty(t, payload.Token)

	_, err = s.auth.Login(ctx, "mia@example.com", "secret99")
	assert.NoError(t, err)
}

func TestAuthService_Register_Errors(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  model.RegisterRequest
		want error
	}{
		{"duplicate email", model.RegisterRequest{Name: "John", Email: "john@example.com", Password: "password123"}, ErrUserAlreadyExists},
		{"unknown referral code", model.RegisterRequest{Name: "Kai", Email: "kai@example.com", Password: "password123", ReferralCode: "NOPE"}, ErrInvalidReferralCode},
		{"missing name", model.RegisterRequest{Email: "kai@example.com", Password: "password123"}, ErrMissingFields},
		{"short password", model.RegisterRequest{Name: "Kai", Email: "kai@example.com", Password: "abc"}, ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.auth.Register(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthService_RefreshAndAuthenticate(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	payload, err := s.auth.Login(ctx, "jane@example.com", "password456")
	require.NoError(t, err)

	userID, err := s.auth.Authenticate(payload.Token)
	require.NoError(t, err)
	assert.Equal(t, "2", userID)

	refreshed, err := s.auth.Refresh(ctx, payload.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "2", refreshed.User.ID)

	_, err = s.auth.Refresh(ctx, payload.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = s.auth.Authenticate("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.NoError(t, s.auth.Logout(ctx, payload.Token))
	assert.NoError(t, s.auth.Logout(ctx, ""))
}

func TestAuthService_UpdateProfile(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	name := "Johnny Doe"
	stage := model.StagePayment
	user, err := s.auth.UpdateProfile(ctx, "1", model.ProfileUpdate{Name: &name, CurrentVisaStage: &stage})
	require.NoError(t, err)
	assert.Equal(t, "Johnny Doe", user.Name)
	assert.Equal(t, model.StagePayment, user.Progress.Current)

	bad := model.VisaStage("granted")
	_, err = s.auth.UpdateProfile(ctx, "1", model.ProfileUpdate{CurrentVisaStage: &bad})
	assert.ErrorIs(t, err, ErrInvalidVisaStage)

	_, err = s.auth.UpdateProfile(ctx, "404", model.ProfileUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestReferralService_Create(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	ref, err := s.referrals.Create(ctx, "2", model.CreateReferralRequest{
		ReferredName:  "Dan Green",
		ReferredEmail: "dan@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ReferralPending, ref.Status)
	assert.Equal(t, "JANE2024", ref.ReferralCode)
	assert.Equal(t, model.DefaultReferralSource, ref.Source)

	inbox, err := s.notifications.ListByUser(ctx, "2", false)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, model.NotificationReferralSubmitted, inbox[0].Type)
	assert.Equal(t, ref.ID, inbox[0].Data["referralId"])
}

func TestReferralService_Create_Errors(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	_, err := s.referrals.Create(ctx, "1", model.CreateReferralRequest{ReferredName: "Alice", ReferredEmail: "ALICE@example.com"})
	assert.ErrorIs(t, err, ErrReferralExists)

	_, err = s.referrals.Create(ctx, "404", model.CreateReferralRequest{ReferredName: "Eve", ReferredEmail: "eve@example.com"})
	assert.ErrorIs(t, err, ErrReferrerNotFound)

	_, err = s.referrals.Create(ctx, "1", model.CreateReferralRequest{ReferredName: "Eve"})
	assert.ErrorIs(t, err, ErrReferralInvalid)
}

func TestReferralService_Update(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	converted := model.ReferralConverted
	ref, err := s.referrals.Update(ctx, "3", model.UpdateReferralRequest{Status: &converted})
	require.NoError(t, err)
	assert.Equal(t, model.ReferralConverted, ref.Status)
	require.NotNil(t, ref.ConvertedAt)

	// no transition guard: converted may go back to pending
	pending := model.ReferralPending
	ref, err = s.referrals.Update(ctx, "3", model.UpdateReferralRequest{Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, model.ReferralPending, ref.Status)

	bogus := model.ReferralStatus("approved")
	_, err = s.referrals.Update(ctx, "3", model.UpdateReferralRequest{Status: &bogus})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = s.referrals.Update(ctx, "999", model.UpdateReferralRequest{Status: &pending})
	assert.ErrorIs(t, err, ErrReferralNotFound)

	inbox, err := s.notifications.ListByUser(ctx, "1", false)
	require.NoError(t, err)
	var types []model.NotificationType
	for _, n := range inbox {
		types = append(types, n.Type)
	}
	assert.Contains(t, types, model.NotificationReferralConverted)
	assert.Contains(t, types, model.NotificationReferralStatusUpdate)
}

func TestReferralService_ListAndStats(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	empty, err := s.referrals.ListByUser(ctx, "nonexistent-id")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	status := model.ReferralPending
	pending, err := s.referrals.List(ctx, model.ReferralFilters{Status: &status})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "3", pending[0].ID)

	stats, err := s.referrals.Stats(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Converted)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.ByStatus[model.ReferralContacted])
	assert.Equal(t, PointsPerConversion, stats.Points)
	assert.InDelta(t, 33.33, stats.ConversionRate, 0.01)
	assert.Equal(t, model.TierBronze, stats.Tier)

	_, err = s.referrals.Get(ctx, "999")
	assert.ErrorIs(t, err, ErrReferralNotFound)
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	n, err := s.notifications.MarkAsRead(ctx, "2")
	require.NoError(t, err)
	assert.True(t, n.Read)
	assert.NotNil(t, n.ReadAt)

	_, err = s.notifications.MarkAsRead(ctx, "999")
	assert.ErrorIs(t, err, ErrNotificationNotFound)
	assert.EqualError(t, err, "Notification not found")
}

func TestNotificationService_MarkAllAsRead_Idempotent(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	affected, err := s.notifications.MarkAllAsRead(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	affected, err = s.notifications.MarkAllAsRead(ctx, "1")
	require.NoError(t, err)
	assert.Zero(t, affected)

	stats, err := s.notifications.Stats(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 3, stats.Read)
	assert.Zero(t, stats.Unread)
}

func TestNotificationService_Create(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	n, err := s.notifications.Create(ctx, model.CreateNotificationRequest{UserID: "2", Title: "Welcome"})
	require.NoError(t, err)
	assert.Equal(t, model.NotificationGeneral, n.Type)
	assert.False(t, n.Read)

	_, err = s.notifications.Create(ctx, model.CreateNotificationRequest{UserID: "2"})
	assert.ErrorIs(t, err, ErrNotificationInvalid)

	unread, err := s.notifications.ListByUser(ctx, "2", true)
	require.NoError(t, err)
	assert.Len(t, unread, 1)
}

func TestDashboardService_Get(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	d, err := s.dashboard.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "1", d.User.ID)
	assert.Equal(t, 50, d.VisaProgress)
	assert.Equal(t, 3, d.ReferralStats.Total)
	assert.Equal(t, 2, d.NotificationStats.Unread)
	assert.Len(t, d.RecentReferrals, 3)

	_, err = s.dashboard.Get(ctx, "404")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
