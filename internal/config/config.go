package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config is the process configuration shared by the server and the client CLI.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	Debug  bool   `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
		// memory | postgres
		StorageDriver string `env:"STORAGE_DRIVER" envDefault:"memory"`
		Seed          bool   `env:"SEED_DATA" envDefault:"true"`
	}

	DB struct {
		Host     string `env:"DB_HOST" envDefault:"localhost"`
		Port     int    `env:"DB_PORT" envDefault:"5432"`
		User     string `env:"DB_USER" envDefault:"postgres"`
		Password string `env:"DB_PASSWORD" envDefault:""`
		Name     string `env:"DB_NAME" envDefault:"visa_referral"`
		SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	}

	JWT struct {
		Secret          string `env:"JWT_SECRET_KEY" envDefault:"dev-secret-change-me"`
		ExpirationHours int64  `env:"JWT_EXPIRATION_HOURS" envDefault:"24"`
		RefreshHours    int64  `env:"JWT_REFRESH_HOURS" envDefault:"168"`
	}

	Client struct {
		// memory | file | redis
		StorageDriver string        `env:"CLIENT_STORAGE" envDefault:"file"`
		StoragePath   string        `env:"CLIENT_STORAGE_PATH" envDefault:".visa_referral/session.json"`
		MockMinDelay  time.Duration `env:"MOCK_MIN_DELAY" envDefault:"300ms"`
		MockMaxDelay  time.Duration `env:"MOCK_MAX_DELAY" envDefault:"1s"`
		BaseURL       string        `env:"API_BASE_URL"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
		Prefix   string `env:"REDIS_PREFIX" envDefault:"visa_referral:session:"`
	}
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Client.MockMaxDelay < cfg.Client.MockMinDelay {
		return nil, fmt.Errorf("MOCK_MAX_DELAY (%s) is below MOCK_MIN_DELAY (%s)", cfg.Client.MockMaxDelay, cfg.Client.MockMinDelay)
	}
	return cfg, nil
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
