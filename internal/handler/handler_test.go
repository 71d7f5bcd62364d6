package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"visa_referral/internal/model"
	"visa_referral/internal/repository"
	"visa_referral/internal/service"
	"visa_referral/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	jwt    *utils.JWTUtil
}

func newTestServer(t *testing.T, health func(context.Context) error) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := repository.NewMemoryStore(context.Background(), true)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	jwtUtil := utils.NewJWTUtil("test-secret", 1, 24)
	auth := service.NewAuthService(store.Users, jwtUtil, log)
	notifications := service.NewNotificationService(store.Notifications, log)
	referrals := service.NewReferralService(store.Referrals, store.Users, notifications, log)

	router := NewRouter(Services{
		Auth:          auth,
		Referrals:     referrals,
		Notifications: notifications,
		Dashboard:     service.NewDashboardService(auth, referrals, notifications),
	}, RouterOptions{Origins: []string{"*"}, Health: health, Log: log})

	return &testServer{t: t, router: router, jwt: jwtUtil}
}

func (s *testServer) do(method, path, token string, body any) (*httptest.ResponseRecorder, model.APIResponse[json.RawMessage]) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	var env model.APIResponse[json.RawMessage]
	_ = json.Unmarshal(rr.Body.Bytes(), &env)
	return rr, env
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	rr, env := s.do(http.MethodPost, "/api/auth/login", "", model.LoginRequest{Email: email, Password: password})
	require.Equal(s.t, http.StatusOK, rr.Code, rr.Body.String())
	var payload model.AuthPayload
	require.NoError(s.t, json.Unmarshal(env.Data, &payload))
	return payload.Token
}

func TestAuthHandler_Login(t *testing.T) {
	s := newTestServer(t, nil)

	rr, env := s.do(http.MethodPost, "/api/auth/login", "", model.LoginRequest{Email: "john@example.com", Password: "password123"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, env.Success)
	assert.NotContains(t, string(env.Data), "password")

	var payload model.AuthPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	userID, err := s.jwt.ParseAccess(payload.Token)
	require.NoError(t, err)
	assert.Equal(t, "1", userID)

	rr, env = s.do(http.MethodPost, "/api/auth/login", "", model.LoginRequest{Email: "john@example.com", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid email or password", env.Message)

	rr, _ = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAuthHandler_RegisterAndRefresh(t *testing.T) {
	s := newTestServer(t, nil)

	rr, env := s.do(http.MethodPost, "/api/auth/register", "", model.RegisterRequest{Name: "Lee Park", Email: "lee@example.com", Password: "secret12", ReferralCode: "JOHN2024"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var payload model.AuthPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, "1", payload.User.ReferredBy)

	rr, _ = s.do(http.MethodPost, "/api/auth/register", "", model.RegisterRequest{Name: "Lee", Email: "lee@example.com", Password: "secret12"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr, _ = s.do(http.MethodPost, "/api/auth/refresh", "", model.RefreshRequest{RefreshToken: payload.RefreshToken})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, _ = s.do(http.MethodPost, "/api/auth/refresh", "", model.RefreshRequest{RefreshToken: payload.Token})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthHandler_MeProfileDashboard(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login("john@example.com", "password123")

	rr, _ := s.do(http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, env := s.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var me model.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "john@example.com", me.Email)

	rr, env = s.do(http.MethodPatch, "/api/users/1", token, map[string]string{"timezone": "Australia/Sydney"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "Australia/Sydney", me.Timezone)

	rr, _ = s.do(http.MethodPatch, "/api/users/2", token, map[string]string{"name": "x"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, env = s.do(http.MethodGet, "/api/users/1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var d model.Dashboard
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, 3, d.ReferralStats.Total)

	rr, _ = s.do(http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestReferralHandler(t *testing.T) {
	s := newTestServer(t, nil)
	john := s.login("john@example.com", "password123")
	jane := s.login("jane@example.com", "password456")

	rr, env := s.do(http.MethodPost, "/api/referrals", jane, model.CreateReferralRequest{ReferredName: "Sam Lee", ReferredEmail: "sam@example.com"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var ref model.Referral
	require.NoError(t, json.Unmarshal(env.Data, &ref))
	assert.Equal(t, "2", ref.ReferrerID)
	assert.Equal(t, "JANE2024", ref.ReferralCode)

	rr, env = s.do(http.MethodPost, "/api/referrals", jane, model.CreateReferralRequest{ReferredName: "Sam", ReferredEmail: "sam@example.com"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "referral with this email already exists", env.Message)

	rr, _ = s.do(http.MethodGet, "/api/referrals/"+ref.ID, john, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, env = s.do(http.MethodPatch, "/api/referrals/"+ref.ID, jane, map[string]string{"status": "converted"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(env.Data, &ref))
	assert.NotNil(t, ref.ConvertedAt)

	rr, _ = s.do(http.MethodPatch, "/api/referrals/"+ref.ID, jane, map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, env = s.do(http.MethodGet, "/api/referrals?status=pending", john, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var refs []model.Referral
	require.NoError(t, json.Unmarshal(env.Data, &refs))
	assert.Len(t, refs, 1)

	rr, env = s.do(http.MethodGet, "/api/users/2/referral-stats", jane, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var stats model.ReferralStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 1, stats.Converted)
	assert.Equal(t, service.PointsPerConversion, stats.Points)

	rr, _ = s.do(http.MethodGet, "/api/users/1/referrals", jane, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestNotificationHandler(t *testing.T) {
	s := newTestServer(t, nil)
	john := s.login("john@example.com", "password123")
	jane := s.login("jane@example.com", "password456")

	rr, env := s.do(http.MethodGet, "/api/users/1/notifications?unreadOnly=true", john, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var items []model.Notification
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 2)

	rr, env = s.do(http.MethodPatch, "/api/notifications/999", john, map[string]bool{"read": true})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Notification not found", env.Message)

	rr, _ = s.do(http.MethodPatch, "/api/notifications/2", jane, map[string]bool{"read": true})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, env = s.do(http.MethodPatch, "/api/notifications/2", john, map[string]bool{"read": false})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, service.ErrNotificationUnread.Error(), env.Message)

	rr, _ = s.do(http.MethodPatch, "/api/notifications/2", john, map[string]bool{"read": true})
	assert.Equal(t, http.StatusOK, rr.Code)

	for i := 0; i < 2; i++ {
		rr, _ = s.do(http.MethodPatch, "/api/users/1/notifications/read-all", john, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	}

	rr, env = s.do(http.MethodGet, "/api/users/1/notification-stats", john, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var stats model.NotificationStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Zero(t, stats.Unread)

	rr, env = s.do(http.MethodPost, "/api/notifications", jane, map[string]string{"userId": "1", "title": "Hi"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var n model.Notification
	require.NoError(t, json.Unmarshal(env.Data, &n))
	assert.Equal(t, "2", n.UserID)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rr, _ := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	s = newTestServer(t, func(context.Context) error { return errors.New("down") })
	rr, _ = s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
