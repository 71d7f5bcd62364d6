package storage

import (
	"context"
	"errors"
	"sync"
)

// Keys mirrored by the session manager.
const (
	KeyAuthToken    = "auth_token"
	KeyRefreshToken = "refresh_token"
	KeyUserData     = "user_data"
)

var ErrNotFound = errors.New("storage: key not found")

// Store is an asynchronous string key-value store, the device storage stand-in.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

// Memory keeps values in process memory.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: map[string]string{}}
}

func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Remove(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}
