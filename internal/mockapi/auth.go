package mockapi

import (
	"context"
	"errors"
	"net/http"

	"visa_referral/internal/model"
	"visa_referral/internal/service"
)

var errUnauthorized = errors.New("not authenticated")

// AuthMock serves /auth and the per-user profile endpoints.
type AuthMock struct {
	auth      service.AuthService
	dashboard service.DashboardService
	router    router
}

func NewAuthMock(auth service.AuthService, dashboard service.DashboardService) *AuthMock {
	m := &AuthMock{auth: auth, dashboard: dashboard}
	m.router.routes = []route{
		{method: http.MethodPost, pattern: "/auth/login", reject: true, fn: m.login},
		{method: http.MethodPost, pattern: "/auth/register", status: http.StatusCreated, reject: true, fn: m.register},
		{method: http.MethodGet, pattern: "/auth/me", fn: m.me},
		{method: http.MethodPost, pattern: "/auth/logout", fn: m.logout},
		{method: http.MethodPost, pattern: "/auth/refresh", fn: m.refresh},
		{method: http.MethodPatch, pattern: "/users/:id", fn: m.updateProfile},
		{method: http.MethodGet, pattern: "/users/:id/dashboard", fn: m.getDashboard},
	}
	return m
}

func (m *AuthMock) HandleRequest(ctx context.Context, req Request) (*model.APIResponse[any], error) {
	return m.router.handle(ctx, req)
}

func (m *AuthMock) login(ctx context.Context, c *call) (any, string, error) {
	var req model.LoginRequest
	if err := c.bind(&req); err != nil {
		return nil, "", err
	}
	payload, err := m.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, "", err
	}
	return payload, "Login successful", nil
}

func (m *AuthMock) register(ctx context.Context, c *call) (any, string, error) {
	var req model.RegisterRequest
	if err := c.bind(&req); err != nil {
		return nil, "", err
	}
	payload, err := m.auth.Register(ctx, req)
	if err != nil {
		return nil, "", err
	}
	return payload, "Registration successful", nil
}

func (m *AuthMock) me(ctx context.Context, c *call) (any, string, error) {
	userID, err := m.auth.Authenticate(c.bearer())
	if err != nil {
		return nil, "", errUnauthorized
	}
	user, err := m.auth.Me(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	return user, "User retrieved successfully", nil
}

func (m *AuthMock) logout(ctx context.Context, c *call) (any, string, error) {
	if err := m.auth.Logout(ctx, c.bearer()); err != nil {
		return nil, "", err
	}
	return nil, "Logout successful", nil
}

func (m *AuthMock) refresh(ctx context.Context, c *call) (any, string, error) {
	var req model.RefreshRequest
	if err := c.bind(&req); err != nil {
		return nil, "", err
	}
	payload, err := m.auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, "", err
	}
	return payload, "Token refreshed successfully", nil
}

func (m *AuthMock) updateProfile(ctx context.Context, c *call) (any, string, error) {
	var req model.ProfileUpdate
	if err := c.bind(&req); err != nil {
		return nil, "", err
	}
	user, err := m.auth.UpdateProfile(ctx, c.Params["id"], req)
	if err != nil {
		return nil, "", err
	}
	return user, "Profile updated successfully", nil
}

func (m *AuthMock) getDashboard(ctx context.Context, c *call) (any, string, error) {
	d, err := m.dashboard.Get(ctx, c.Params["id"])
	if err != nil {
		return nil, "", err
	}
	return d, "Dashboard retrieved successfully", nil
}
