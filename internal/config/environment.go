package config

import (
	"strings"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

const DefaultTimeout = 10 * time.Second

// Environment selects where the API client sends requests.
type Environment struct {
	Name        string
	BaseURL     string
	UseMockData bool
	Timeout     time.Duration
}

var environments = map[string]Environment{
	EnvDevelopment: {Name: EnvDevelopment, BaseURL: "http://localhost:8080/api", UseMockData: true, Timeout: DefaultTimeout},
	EnvStaging:     {Name: EnvStaging, BaseURL: "https://staging-api.visareferral.com/api", UseMockData: false, Timeout: DefaultTimeout},
	EnvProduction:  {Name: EnvProduction, BaseURL: "https://api.visareferral.com/api", UseMockData: false, Timeout: DefaultTimeout},
}

// EnvironmentFor resolves an APP_ENV value. Unknown values fall back to
// development and report known=false so the caller can warn.
func EnvironmentFor(name string) (env Environment, known bool) {
	env, known = environments[strings.ToLower(strings.TrimSpace(name))]
	if !known {
		return environments[EnvDevelopment], false
	}
	return env, true
}

// Environment resolves the configured APP_ENV, honouring an API_BASE_URL override.
func (c *Config) Environment() (Environment, bool) {
	env, known := EnvironmentFor(c.AppEnv)
	if c.Client.BaseURL != "" {
		env.BaseURL = strings.TrimSuffix(c.Client.BaseURL, "/")
	}
	return env, known
}
