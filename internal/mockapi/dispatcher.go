package mockapi

import (
	"context"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"visa_referral/internal/model"
	"visa_referral/internal/repository"
	"visa_referral/internal/service"

	"go.uber.org/zap"
)

const (
	DefaultMinDelay = 300 * time.Millisecond
	DefaultMaxDelay = 1000 * time.Millisecond
)

// Dispatcher routes a request to the domain mock that owns its URL after a
// simulated network delay.
type Dispatcher struct {
	Auth          Handler
	Referrals     Handler
	Notifications Handler

	MinDelay time.Duration
	MaxDelay time.Duration

	log *zap.Logger
}

// NewDispatcher wires the domain mocks over the given repositories.
func NewDispatcher(store *repository.Store, tokens service.TokenIssuer, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	auth := service.NewAuthService(store.Users, tokens, log)
	notifications := service.NewNotificationService(store.Notifications, log)
	referrals := service.NewReferralService(store.Referrals, store.Users, notifications, log)
	dashboard := service.NewDashboardService(auth, referrals, notifications)

	return &Dispatcher{
		Auth:          NewAuthMock(auth, dashboard),
		Referrals:     NewReferralMock(auth, referrals),
		Notifications: NewNotificationMock(notifications),
		MinDelay:      DefaultMinDelay,
		MaxDelay:      DefaultMaxDelay,
		log:           log,
	}
}

// Dispatch waits out the simulated latency, then hands the request to a domain mock.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*model.APIResponse[any], error) {
	if err := d.wait(ctx); err != nil {
		return nil, err
	}

	h := d.handlerFor(req.URL)
	d.log.Debug("mock request", zap.String("method", req.Method), zap.String("url", req.URL))
	if h == nil {
		return model.NewAPIResponse[any](nil, "", 200), nil
	}
	return h.HandleRequest(ctx, req)
}

func (d *Dispatcher) handlerFor(rawURL string) Handler {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	switch {
	case strings.HasPrefix(path, "/auth"):
		return d.Auth
	case strings.Contains(path, "notification"):
		return d.Notifications
	case strings.Contains(path, "referral"):
		return d.Referrals
	case strings.HasPrefix(path, "/users/"):
		return d.Auth
	default:
		return nil
	}
}

func (d *Dispatcher) wait(ctx context.Context) error {
	delay := d.MinDelay
	if span := d.MaxDelay - d.MinDelay; span > 0 {
		delay += time.Duration(rand.Int63n(int64(span) + 1))
	}
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
