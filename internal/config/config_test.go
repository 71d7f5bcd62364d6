package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentFor(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantMock  bool
		wantKnown bool
	}{
		{"development mocks", "development", true, true},
		{"staging is real", "staging", false, true},
		{"production is real", "PRODUCTION", false, true},
		{"unknown falls back", "qa", true, false},
		{"empty falls back", "", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, known := EnvironmentFor(tt.in)
			assert.Equal(t, tt.wantMock, env.UseMockData)
			assert.Equal(t, tt.wantKnown, known)
			assert.Equal(t, DefaultTimeout, env.Timeout)
			assert.NotEmpty(t, env.BaseURL)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("API_BASE_URL", "http://localhost:9000/api/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Server.StorageDriver)
	assert.Equal(t, 300*time.Millisecond, cfg.Client.MockMinDelay)
	assert.Equal(t, time.Second, cfg.Client.MockMaxDelay)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
	assert.Contains(t, cfg.DSN(), "dbname=visa_referral")

	env, known := cfg.Environment()
	assert.True(t, known)
	assert.False(t, env.UseMockData)
	assert.Equal(t, "http://localhost:9000/api", env.BaseURL)
}

func TestLoad_RejectsInvertedDelays(t *testing.T) {
	t.Setenv("MOCK_MIN_DELAY", "2s")
	t.Setenv("MOCK_MAX_DELAY", "1s")

	_, err := Load()
	assert.Error(t, err)
}
