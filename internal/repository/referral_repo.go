package repository

import (
	"context"
	"errors"
	"fmt"

	"visa_referral/internal/model"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

type referralRepository struct {
	db      DBTX
	builder squirrel.StatementBuilderType
}

// NewReferralRepository creates a Postgres-backed ReferralRepository
func NewReferralRepository(db DBTX) ReferralRepository {
	return &referralRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const referralColumns = `id, referrer_id, referred_name, referred_email, referred_phone, referred_country, visa_type, referral_code, status, converted_at, source, notes, created_at, updated_at`

func scanReferral(row pgx.Row) (*model.Referral, error) {
	ref := &model.Referral{}
	var status string
	err := row.Scan(
		&ref.ID, &ref.ReferrerID, &ref.ReferredName, &ref.ReferredEmail, &ref.ReferredPhone, &ref.ReferredCountry,
		&ref.VisaType, &ref.ReferralCode, &status, &ref.ConvertedAt, &ref.Source, &ref.Notes, &ref.CreatedAt, &ref.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ref.Status = model.ReferralStatus(status)
	return ref, nil
}

// Create inserts a new referral into the database
func (r *referralRepository) Create(ctx context.Context, ref *model.Referral) error {
	sql := `INSERT INTO referrals (` + referralColumns + `)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.db.Exec(ctx, sql,
		ref.ID, ref.ReferrerID, ref.ReferredName, ref.ReferredEmail, ref.ReferredPhone, ref.ReferredCountry,
		ref.VisaType, ref.ReferralCode, string(ref.Status), ref.ConvertedAt, ref.Source, ref.Notes, ref.CreatedAt, ref.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create referral: %w", err)
	}
	return nil
}

func (r *referralRepository) findOne(ctx context.Context, where string, arg any) (*model.Referral, error) {
	sql := `SELECT ` + referralColumns + ` FROM referrals WHERE ` + where + ` LIMIT 1`
	ref, err := scanReferral(r.db.QueryRow(ctx, sql, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return ref, nil
}

// FindByID retrieves a referral by its ID
func (r *referralRepository) FindByID(ctx context.Context, id string) (*model.Referral, error) {
	ref, err := r.findOne(ctx, "id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to find referral by ID: %w", err)
	}
	return ref, nil
}

// FindByEmail retrieves the referral for a referred email address
func (r *referralRepository) FindByEmail(ctx context.Context, email string) (*model.Referral, error) {
	ref, err := r.findOne(ctx, "referred_email = lower($1)", email)
	if err != nil {
		return nil, fmt.Errorf("failed to find referral by email: %w", err)
	}
	return ref, nil
}

// FindAll retrieves referrals with optional filters
func (r *referralRepository) FindAll(ctx context.Context, filters model.ReferralFilters) ([]model.Referral, error) {
	query := r.builder.
		Select(referralColumns).
		From("referrals").
		OrderBy("created_at DESC")

	if filters.ReferrerID != nil && *filters.ReferrerID != "" {
		query = query.Where(squirrel.Eq{"referrer_id": *filters.ReferrerID})
	}
	if filters.Status != nil && *filters.Status != "" {
		query = query.Where(squirrel.Eq{"status": string(*filters.Status)})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build referrals query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query referrals: %w", err)
	}
	defer rows.Close()

	referrals := []model.Referral{}
	for rows.Next() {
		ref, err := scanReferral(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan referral row: %w", err)
		}
		referrals = append(referrals, *ref)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating referral rows: %w", err)
	}
	return referrals, nil
}

// FindByReferrer retrieves every referral submitted by a user
func (r *referralRepository) FindByReferrer(ctx context.Context, referrerID string) ([]model.Referral, error) {
	return r.FindAll(ctx, model.ReferralFilters{ReferrerID: &referrerID})
}

// Update overwrites the mutable columns of a referral
func (r *referralRepository) Update(ctx context.Context, ref *model.Referral) error {
	sql := `UPDATE referrals
            SET referred_name = $1, referred_phone = $2, referred_country = $3, visa_type = $4,
                status = $5, converted_at = $6, notes = $7, updated_at = $8
            WHERE id = $9`
	tag, err := r.db.Exec(ctx, sql,
		ref.ReferredName, ref.ReferredPhone, ref.ReferredCountry, ref.VisaType,
		string(ref.Status), ref.ConvertedAt, ref.Notes, ref.UpdatedAt, ref.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update referral: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("referral not found for update")
	}
	return nil
}
