package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"visa_referral/internal/model"
)

const (
	mockAccessPrefix  = "mock-jwt-token-"
	mockRefreshPrefix = "mock-refresh-token-"
)

var ErrMalformedMockToken = errors.New("malformed mock token")

// MockTokenIssuer emits unsigned tokens of the form mock-jwt-token-<userID>-<unixMillis>.
// It is only meant for the in-process mock API.
type MockTokenIssuer struct {
	ttl time.Duration
	now func() time.Time
}

func NewMockTokenIssuer(ttl time.Duration) *MockTokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MockTokenIssuer{ttl: ttl, now: time.Now}
}

func (m *MockTokenIssuer) IssuePair(userID string) (*model.TokenPair, error) {
	now := m.now()
	stamp := strconv.FormatInt(now.UnixMilli(), 10)
	return &model.TokenPair{
		AccessToken:  mockAccessPrefix + userID + "-" + stamp,
		RefreshToken: mockRefreshPrefix + userID + "-" + stamp,
		ExpiresAt:    now.Add(m.ttl).UTC(),
	}, nil
}

func (m *MockTokenIssuer) ParseAccess(token string) (string, error) {
	return m.parse(token, mockAccessPrefix)
}

func (m *MockTokenIssuer) ParseRefresh(token string) (string, error) {
	return m.parse(token, mockRefreshPrefix)
}

func (m *MockTokenIssuer) parse(token, prefix string) (string, error) {
	rest, ok := strings.CutPrefix(token, prefix)
	if !ok {
		return "", ErrMalformedMockToken
	}
	// user ids may themselves contain dashes, the stamp never does
	idx := strings.LastIndex(rest, "-")
	if idx <= 0 {
		return "", ErrMalformedMockToken
	}
	issued, err := strconv.ParseInt(rest[idx+1:], 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedMockToken, err)
	}
	if m.now().After(time.UnixMilli(issued).Add(m.ttl)) {
		return "", errors.New("mock token expired")
	}
	return rest[:idx], nil
}
