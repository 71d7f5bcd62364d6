package repository

import (
	"context"
	"errors"
	"fmt"

	"visa_referral/internal/model"

	"github.com/jackc/pgx/v5"
)

type userRepository struct {
	db DBTX
}

// NewUserRepository creates a Postgres-backed UserRepository
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, name, phone, country, password_hash, is_active, email_verified, created_at, updated_at, last_login, preferred_language, timezone, visa_application_number, current_visa_stage, visa_type, referred_by, referral_code, points`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	var stage string
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Phone, &u.Country, &u.PasswordHash, &u.IsActive, &u.EmailVerified,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLogin, &u.PreferredLanguage, &u.Timezone, &u.VisaApplicationNumber,
		&stage, &u.VisaType, &u.ReferredBy, &u.ReferralCode, &u.Points,
	)
	if err != nil {
		return nil, err
	}
	u.CurrentVisaStage = model.VisaStage(stage)
	u.Tier = model.TierFor(u.Points)
	u.RefreshProgress()
	return u, nil
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	sql := `INSERT INTO users (` + userColumns + `)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.db.Exec(ctx, sql,
		u.ID, u.Email, u.Name, u.Phone, u.Country, u.PasswordHash, u.IsActive, u.EmailVerified,
		u.CreatedAt, u.UpdatedAt, u.LastLogin, u.PreferredLanguage, u.Timezone, u.VisaApplicationNumber,
		string(u.CurrentVisaStage), u.VisaType, u.ReferredBy, u.ReferralCode, u.Points,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, where string, arg any) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	u, err := scanUser(r.db.QueryRow(ctx, sql, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// FindByID retrieves a user by their ID
func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	u, err := r.findOne(ctx, "id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return u, nil
}

// FindByEmail retrieves a user by their email address
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := r.findOne(ctx, "email = lower($1)", email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return u, nil
}

// FindByReferralCode retrieves the owner of a referral code
func (r *userRepository) FindByReferralCode(ctx context.Context, code string) (*model.User, error) {
	if code == "" {
		return nil, nil
	}
	u, err := r.findOne(ctx, "upper(referral_code) = upper($1)", code)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by referral code: %w", err)
	}
	return u, nil
}

// Update overwrites the mutable columns of a user
func (r *userRepository) Update(ctx context.Context, u *model.User) error {
	sql := `UPDATE users
            SET name = $1, phone = $2, country = $3, is_active = $4, email_verified = $5, last_login = $6,
                preferred_language = $7, timezone = $8, current_visa_stage = $9, visa_type = $10,
                points = $11, updated_at = $12
            WHERE id = $13`
	tag, err := r.db.Exec(ctx, sql,
		u.Name, u.Phone, u.Country, u.IsActive, u.EmailVerified, u.LastLogin,
		u.PreferredLanguage, u.Timezone, string(u.CurrentVisaStage), u.VisaType,
		u.Points, u.UpdatedAt, u.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found for update")
	}
	return nil
}
