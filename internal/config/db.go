package config

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// DSN builds the Postgres connection string from the DB_* settings
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name, c.DB.SSLMode)
}

// ConnectDB establishes a connection to the PostgreSQL database
func ConnectDB(ctx context.Context, dsn string, log *zap.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	// Retry connecting to the database a few times
	maxRetries := 5
	retryInterval := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		pool, err = pgxpool.New(ctx, dsn)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				log.Info("connected to PostgreSQL")
				return pool, nil
			}
			pool.Close()
		}
		log.Warn("failed to connect to database",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries),
			zap.Duration("retry_in", retryInterval),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", maxRetries, err)
}

const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		email_verified BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_login TIMESTAMP WITH TIME ZONE,
		preferred_language TEXT NOT NULL DEFAULT 'en',
		timezone TEXT NOT NULL DEFAULT 'UTC',
		visa_application_number TEXT NOT NULL DEFAULT '',
		current_visa_stage TEXT NOT NULL DEFAULT 'enquiry' CHECK (current_visa_stage IN ('enquiry', 'detailed_enquiry', 'assessment', 'application', 'payment', 'completed')),
		visa_type TEXT NOT NULL DEFAULT '',
		referred_by TEXT NOT NULL DEFAULT '',
		referral_code TEXT NOT NULL DEFAULT '',
		points INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS referrals (
		id TEXT PRIMARY KEY,
		referrer_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		referred_name TEXT NOT NULL,
		referred_email TEXT UNIQUE NOT NULL,
		referred_phone TEXT NOT NULL DEFAULT '',
		referred_country TEXT NOT NULL DEFAULT '',
		visa_type TEXT NOT NULL DEFAULT '',
		referral_code TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'contacted', 'qualified', 'converted', 'completed', 'rejected')),
		converted_at TIMESTAMP WITH TIME ZONE,
		source TEXT NOT NULL DEFAULT 'app',
		notes TEXT,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type TEXT NOT NULL DEFAULT 'general',
		title TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		data JSONB NOT NULL DEFAULT '{}'::jsonb,
		read BOOLEAN NOT NULL DEFAULT FALSE,
		read_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_users_referral_code ON users(referral_code) WHERE referral_code <> '';
	CREATE INDEX IF NOT EXISTS idx_referrals_referrer_id ON referrals(referrer_id);
	CREATE INDEX IF NOT EXISTS idx_referrals_status ON referrals(status);
	CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id, read);
`

// AutoMigrate creates tables if they don't exist
func AutoMigrate(ctx context.Context, db *pgxpool.Pool, log *zap.Logger) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}
	log.Info("AutoMigrate applied successfully")
	return nil
}
