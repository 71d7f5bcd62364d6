package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"visa_referral/internal/logger"
	"visa_referral/internal/model"
	"visa_referral/internal/storage"

	"go.uber.org/zap"
)

// ErrSuperseded is returned when a logout happened while the attempt was in flight.
var ErrSuperseded = errors.New("session changed while request was in flight")

// AuthClient is the remote side of the session.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (*model.AuthPayload, error)
	Register(ctx context.Context, req model.RegisterRequest) (*model.AuthPayload, error)
	Logout(ctx context.Context) error
}

var sessionKeys = []string{storage.KeyAuthToken, storage.KeyUserData, storage.KeyRefreshToken}

// Manager drives the store and mirrors the session into key-value storage.
type Manager struct {
	store *Store
	kv    storage.Store
	api   AuthClient
	log   *zap.Logger
}

func NewManager(store *Store, kv storage.Store, api AuthClient, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{store: store, kv: kv, api: api, log: log}
}

func (m *Manager) Store() *Store { return m.store }

func (m *Manager) State() State { return m.store.State() }

// Init restores a persisted session without calling the network.
func (m *Manager) Init(ctx context.Context) {
	gen := m.store.Begin()

	token, tokenErr := m.kv.Get(ctx, storage.KeyAuthToken)
	userJSON, userErr := m.kv.Get(ctx, storage.KeyUserData)
	if tokenErr != nil || userErr != nil {
		for _, err := range []error{tokenErr, userErr} {
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				m.log.Warn("failed to read persisted session", zap.Error(err))
			}
		}
		m.store.DispatchFor(gen, Action{Type: InitComplete})
		return
	}

	var user model.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		m.log.Warn("discarding unreadable persisted user", zap.Error(err))
		if err := m.kv.Remove(ctx, sessionKeys...); err != nil {
			m.log.Warn("failed to clear persisted session", zap.Error(err))
		}
		m.store.DispatchFor(gen, Action{Type: InitComplete})
		return
	}

	refreshToken, err := m.kv.Get(ctx, storage.KeyRefreshToken)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		m.log.Warn("failed to read refresh token", zap.Error(err))
	}
	m.store.DispatchFor(gen, Action{Type: LoginSuccess, User: &user, Token: token, RefreshToken: refreshToken})
}

func (m *Manager) Login(ctx context.Context, email, password string) error {
	gen := m.store.Begin()
	m.store.DispatchFor(gen, Action{Type: LoginStart})

	payload, err := m.api.Login(ctx, email, password)
	if err == nil {
		err = m.persist(ctx, gen, payload)
	}
	if err != nil {
		if !errors.Is(err, ErrSuperseded) {
			m.store.DispatchFor(gen, Action{Type: LoginError, Error: errorMessage(err, "Login failed")})
		}
		logger.WithContext(ctx, m.log).Info("login failed", zap.String("email", logger.MaskEmail(email)), zap.Error(err))
		return err
	}

	if !m.store.DispatchFor(gen, Action{Type: LoginSuccess, User: payload.User, Token: payload.Token, RefreshToken: payload.RefreshToken}) {
		return ErrSuperseded
	}
	return nil
}

func (m *Manager) Register(ctx context.Context, req model.RegisterRequest) error {
	gen := m.store.Begin()
	m.store.DispatchFor(gen, Action{Type: RegisterStart})

	payload, err := m.api.Register(ctx, req)
	if err == nil {
		err = m.persist(ctx, gen, payload)
	}
	if err != nil {
		if !errors.Is(err, ErrSuperseded) {
			m.store.DispatchFor(gen, Action{Type: RegisterError, Error: errorMessage(err, "Registration failed")})
		}
		return err
	}

	if !m.store.DispatchFor(gen, Action{Type: RegisterSuccess, User: payload.User, Token: payload.Token, RefreshToken: payload.RefreshToken}) {
		return ErrSuperseded
	}
	return nil
}

// Logout always ends the local session, whatever the server or storage say.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.api.Logout(ctx); err != nil {
		m.log.Warn("remote logout failed", zap.Error(err))
	}
	if err := m.kv.Remove(ctx, sessionKeys...); err != nil {
		m.log.Warn("failed to clear persisted session", zap.Error(err))
	}
	m.store.Dispatch(Action{Type: Logout})
	// attempts dropped by the logout never clear their loading flag
	m.store.DispatchFor(m.store.Begin(), Action{Type: InitComplete})
}

// SetUser replaces the cached user, e.g. after a profile edit.
func (m *Manager) SetUser(ctx context.Context, user *model.User) error {
	m.store.Dispatch(Action{Type: SetUser, User: user})
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := m.kv.Set(ctx, storage.KeyUserData, string(raw)); err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}
	return nil
}

func (m *Manager) ClearError() {
	m.store.Dispatch(Action{Type: ClearError})
}

func (m *Manager) persist(ctx context.Context, gen uint64, payload *model.AuthPayload) error {
	if !m.store.Current(gen) {
		return ErrSuperseded
	}
	raw, err := json.Marshal(payload.User)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	values := []struct{ key, value string }{
		{storage.KeyAuthToken, payload.Token},
		{storage.KeyUserData, string(raw)},
		{storage.KeyRefreshToken, payload.RefreshToken},
	}
	for _, entry := range values {
		if err := m.kv.Set(ctx, entry.key, entry.value); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
	}
	return nil
}

// errorMessage is the single string shown to the user.
func errorMessage(err error, fallback string) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err.Error() != "" {
		return err.Error()
	}
	return fallback
}
