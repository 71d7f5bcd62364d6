package logger

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	lg   *zap.Logger
	once sync.Once
)

// New returns a process-wide zap.Logger: JSON in production, console elsewhere.
func New(env string, debug bool) (*zap.Logger, error) {
	var err error
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		if env != "production" {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		if !debug {
			cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		}
		cfg.InitialFields = map[string]interface{}{"env": env}

		lg, err = cfg.Build()
	})

	return lg, err
}

// L returns the process logger, or a no-op logger before New was called.
func L() *zap.Logger {
	if lg == nil {
		return zap.NewNop()
	}
	return lg
}

// RequestIDKey is used to store a request identifier on the context.
type RequestIDKey struct{}

// WithContext attaches request scoped fields to the logger.
func WithContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = L()
	}
	if ctx == nil {
		return base
	}
	if id, ok := ctx.Value(RequestIDKey{}).(string); ok && id != "" {
		return base.With(zap.String("request_id", id))
	}
	return base
}

// MaskEmail keeps the first three characters and the domain.
// Example: john.doe@example.com -> joh***@example.com
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return "***"
	}
	if len(local) > 3 {
		local = local[:3]
	}
	return local + "***@" + domain
}
