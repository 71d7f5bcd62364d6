package mockapi

import (
	"context"
	"net/http"

	"visa_referral/internal/model"
	"visa_referral/internal/service"
)

// ReferralMock serves the referral endpoints.
type ReferralMock struct {
	auth      service.AuthService
	referrals service.ReferralService
	router    router
}

func NewReferralMock(auth service.AuthService, referrals service.ReferralService) *ReferralMock {
	m := &ReferralMock{auth: auth, referrals: referrals}
	m.router.routes = []route{
		{method: http.MethodPost, pattern: "/referrals", status: http.StatusCreated, fn: m.create},
		{method: http.MethodGet, pattern: "/referrals", fn: m.list},
		{method: http.MethodGet, pattern: "/referrals/:id", fn: m.get},
		{method: http.MethodPatch, pattern: "/referrals/:id", fn: m.update},
		{method: http.MethodGet, pattern: "/users/:id/referrals", fn: m.listByUser},
		{method: http.MethodGet, pattern: "/users/:id/referral-stats", fn: m.stats},
	}
	return m
}

func (m *ReferralMock) HandleRequest(ctx context.Context, req Request) (*model.APIResponse[any], error) {
	return m.router.handle(ctx, req)
}

func (m *ReferralMock) create(ctx context.Context, c *call) (any, string, error) {
	var req model.CreateReferralRequest
	if err := c.bind(&req); err != nil {
		return nil, "", err
	}
	// the caller's session wins, the body only serves anonymous calls
	referrerID := req.ReferrerID
	if id, err := m.auth.Authenticate(c.bearer()); err == nil {
		referrerID = id
	}
	ref, err := m.referrals.Create(ctx, referrerID, req)
	if err != nil {
		return nil, "", err
	}
	return ref, "Referral created successfully", nil
}

func (m *ReferralMock) list(ctx context.Context, c *call) (any, string, error) {
	var filters model.ReferralFilters
	if v := c.Query.Get("referrerId"); v != "" {
		filters.ReferrerID = &v
	}
	if v := c.Query.Get("status"); v != "" {
		status := model.ReferralStatus(v)
		filters.Status = &status
	}
	refs, err := m.referrals.List(ctx, filters)
	if err != nil {
		return nil, "", err
	}
	return refs, "Referrals retrieved successfully", nil
}

func (m *ReferralMock) get(ctx context.Context, c *call) (any, string, error) {
	ref, err := m.referrals.Get(ctx, c.Params["id"])
	if err != nil {
		return nil, "", err
	}
	return ref, "Referral retrieved successfully", nil
}

func (m *ReferralMock) update(ctx context.Context, c *call) (any, string, error) {
	var req model.UpdateReferralRequest
	if err := c.bind(&req); err != nil {
		return nil, "", err
	}
	ref, err := m.referrals.Update(ctx, c.Params["id"], req)
	if err != nil {
		return nil, "", err
	}
	return ref, "Referral updated successfully", nil
}

func (m *ReferralMock) listByUser(ctx context.Context, c *call) (any, string, error) {
	refs, err := m.referrals.ListByUser(ctx, c.Params["id"])
	if err != nil {
		return nil, "", err
	}
	return refs, "User referrals retrieved successfully", nil
}

func (m *ReferralMock) stats(ctx context.Context, c *call) (any, string, error) {
	stats, err := m.referrals.Stats(ctx, c.Params["id"])
	if err != nil {
		return nil, "", err
	}
	return stats, "Referral stats retrieved successfully", nil
}
