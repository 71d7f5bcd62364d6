package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"visa_referral/internal/model"
)

// result turns an envelope into typed data, folding success:false into an *APIError.
func result[T any](env *Envelope, err error, path string) (T, error) {
	var out T
	if err != nil {
		return out, err
	}
	if !env.Success {
		apiErr := model.NewAPIError(env.Message, env.StatusCode, path)
		apiErr.Timestamp = env.Timestamp
		return out, apiErr
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, handleError(fmt.Errorf("failed to decode response data: %w", err), path)
	}
	return out, nil
}

// AuthAPI wraps the authentication and profile endpoints.
type AuthAPI struct{ c *Client }

func NewAuthAPI(c *Client) *AuthAPI { return &AuthAPI{c: c} }

func (a *AuthAPI) Login(ctx context.Context, email, password string) (*model.AuthPayload, error) {
	const path = "/auth/login"
	env, err := a.c.Post(ctx, path, model.LoginRequest{Email: email, Password: password})
	return result[*model.AuthPayload](env, err, path)
}

func (a *AuthAPI) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthPayload, error) {
	const path = "/auth/register"
	env, err := a.c.Post(ctx, path, req)
	return result[*model.AuthPayload](env, err, path)
}

func (a *AuthAPI) Me(ctx context.Context) (*model.User, error) {
	const path = "/auth/me"
	env, err := a.c.Get(ctx, path)
	return result[*model.User](env, err, path)
}

func (a *AuthAPI) Logout(ctx context.Context) error {
	const path = "/auth/logout"
	env, err := a.c.Post(ctx, path, nil)
	_, err = result[json.RawMessage](env, err, path)
	return err
}

func (a *AuthAPI) Refresh(ctx context.Context, refreshToken string) (*model.AuthPayload, error) {
	const path = "/auth/refresh"
	env, err := a.c.Post(ctx, path, model.RefreshRequest{RefreshToken: refreshToken})
	return result[*model.AuthPayload](env, err, path)
}

func (a *AuthAPI) UpdateProfile(ctx context.Context, userID string, patch model.ProfileUpdate) (*model.User, error) {
	path := "/users/" + url.PathEscape(userID)
	env, err := a.c.Patch(ctx, path, patch)
	return result[*model.User](env, err, path)
}

// ReferralAPI wraps the referral endpoints.
type ReferralAPI struct{ c *Client }

func NewReferralAPI(c *Client) *ReferralAPI { return &ReferralAPI{c: c} }

func (r *ReferralAPI) Create(ctx context.Context, req model.CreateReferralRequest) (*model.Referral, error) {
	const path = "/referrals"
	env, err := r.c.Post(ctx, path, req)
	return result[*model.Referral](env, err, path)
}

func (r *ReferralAPI) List(ctx context.Context, filters model.ReferralFilters) ([]model.Referral, error) {
	q := url.Values{}
	if filters.ReferrerID != nil {
		q.Set("referrerId", *filters.ReferrerID)
	}
	if filters.Status != nil {
		q.Set("status", string(*filters.Status))
	}
	path := "/referrals"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	env, err := r.c.Get(ctx, path)
	return result[[]model.Referral](env, err, path)
}

func (r *ReferralAPI) Get(ctx context.Context, id string) (*model.Referral, error) {
	path := "/referrals/" + url.PathEscape(id)
	env, err := r.c.Get(ctx, path)
	return result[*model.Referral](env, err, path)
}

func (r *ReferralAPI) Update(ctx context.Context, id string, req model.UpdateReferralRequest) (*model.Referral, error) {
	path := "/referrals/" + url.PathEscape(id)
	env, err := r.c.Patch(ctx, path, req)
	return result[*model.Referral](env, err, path)
}

func (r *ReferralAPI) ListByUser(ctx context.Context, userID string) ([]model.Referral, error) {
	path := "/users/" + url.PathEscape(userID) + "/referrals"
	env, err := r.c.Get(ctx, path)
	return result[[]model.Referral](env, err, path)
}

func (r *ReferralAPI) Stats(ctx context.Context, userID string) (*model.ReferralStats, error) {
	path := "/users/" + url.PathEscape(userID) + "/referral-stats"
	env, err := r.c.Get(ctx, path)
	return result[*model.ReferralStats](env, err, path)
}

// NotificationAPI wraps the notification endpoints.
type NotificationAPI struct{ c *Client }

func NewNotificationAPI(c *Client) *NotificationAPI { return &NotificationAPI{c: c} }

func (n *NotificationAPI) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error) {
	path := "/users/" + url.PathEscape(userID) + "/notifications"
	if unreadOnly {
		path += "?unreadOnly=" + strconv.FormatBool(unreadOnly)
	}
	env, err := n.c.Get(ctx, path)
	return result[[]model.Notification](env, err, path)
}

func (n *NotificationAPI) MarkAsRead(ctx context.Context, id string) (*model.Notification, error) {
	path := "/notifications/" + url.PathEscape(id)
	read := true
	env, err := n.c.Patch(ctx, path, model.UpdateNotificationRequest{Read: &read})
	return result[*model.Notification](env, err, path)
}

func (n *NotificationAPI) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	path := "/users/" + url.PathEscape(userID) + "/notifications/read-all"
	env, err := n.c.Patch(ctx, path, nil)
	out, err := result[struct {
		Updated int64 `json:"updated"`
	}](env, err, path)
	return out.Updated, err
}

func (n *NotificationAPI) Stats(ctx context.Context, userID string) (*model.NotificationStats, error) {
	path := "/users/" + url.PathEscape(userID) + "/notification-stats"
	env, err := n.c.Get(ctx, path)
	return result[*model.NotificationStats](env, err, path)
}

func (n *NotificationAPI) Create(ctx context.Context, req model.CreateNotificationRequest) (*model.Notification, error) {
	const path = "/notifications"
	env, err := n.c.Post(ctx, path, req)
	return result[*model.Notification](env, err, path)
}

// DashboardAPI wraps the dashboard endpoint.
type DashboardAPI struct{ c *Client }

func NewDashboardAPI(c *Client) *DashboardAPI { return &DashboardAPI{c: c} }

func (d *DashboardAPI) Get(ctx context.Context, userID string) (*model.Dashboard, error) {
	path := "/users/" + url.PathEscape(userID) + "/dashboard"
	env, err := d.c.Get(ctx, path)
	return result[*model.Dashboard](env, err, path)
}
