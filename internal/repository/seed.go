package repository

import (
	"context"
	"fmt"
	"time"

	"visa_referral/internal/model"
	"visa_referral/internal/utils"
)

// SeedUser is a fixture account with its plaintext password.
type SeedUser struct {
	Input    model.UserInput
	Password string
	Points   int
}

// SeedUsers are the demo accounts available in development.
var SeedUsers = []SeedUser{
	{
		Input: model.UserInput{
			ID: "1", Email: "john@example.com", Name: "John Doe", Phone: "+61400000001", Country: "Australia",
			CurrentVisaStage: model.StageAssessment, VisaType: "skilled_independent", ReferralCode: "JOHN2024",
			VisaApplicationNumber: "VA-2024-0001",
		},
		Password: "password123",
		Points:   1250,
	},
	{
		Input: model.UserInput{
			ID: "2", Email: "jane@example.com", Name: "Jane Smith", Country: "India",
			CurrentVisaStage: model.StageEnquiry, VisaType: "student", ReferralCode: "JANE2024", ReferredBy: "1",
		},
		Password: "password456",
	},
}

// Seed loads the demo users, referrals and notifications.
func Seed(ctx context.Context, users UserRepository, referrals ReferralRepository, notifications NotificationRepository) error {
	base := model.Now().Add(-72 * time.Hour)

	for _, su := range SeedUsers {
		u := model.NewUser(su.Input)
		hash, err := utils.HashPassword(su.Password)
		if err != nil {
			return fmt.Errorf("failed to hash seed password: %w", err)
		}
		u.PasswordHash = hash
		u.EmailVerified = true
		u.Points = su.Points
		u.Tier = model.TierFor(su.Points)
		u.CreatedAt, u.UpdatedAt = base, base
		if err := users.Create(ctx, u); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.ID, err)
		}
	}

	seedReferrals := []struct {
		id     string
		req    model.CreateReferralRequest
		status model.ReferralStatus
	}{
		{"1", model.CreateReferralRequest{ReferrerID: "1", ReferredName: "Alice Brown", ReferredEmail: "alice@example.com", ReferredCountry: "Nepal", VisaType: "student"}, model.ReferralConverted},
		{"2", model.CreateReferralRequest{ReferrerID: "1", ReferredName: "Bob Wilson", ReferredEmail: "bob@example.com", ReferredCountry: "Vietnam", VisaType: "work"}, model.ReferralContacted},
		{"3", model.CreateReferralRequest{ReferrerID: "1", ReferredName: "Carol White", ReferredEmail: "carol@example.com", ReferredCountry: "Kenya", VisaType: "partner"}, model.ReferralPending},
	}
	for i, sr := range seedReferrals {
		ref := model.NewReferral(sr.id, "JOHN2024", sr.req)
		ref.Status = sr.status
		ref.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		ref.UpdatedAt = ref.CreatedAt
		if sr.status == model.ReferralConverted {
			at := ref.CreatedAt.Add(30 * time.Minute)
			ref.ConvertedAt = &at
		}
		if err := referrals.Create(ctx, ref); err != nil {
			return fmt.Errorf("failed to seed referral %s: %w", ref.ID, err)
		}
	}

	seedNotifications := []struct {
		id   string
		req  model.CreateNotificationRequest
		read bool
	}{
		{"1", model.CreateNotificationRequest{UserID: "1", Type: model.NotificationVisaProgress, Title: "Assessment started", Message: "Your application moved to assessment.", Data: map[string]any{"stage": "assessment"}}, true},
		{"2", model.CreateNotificationRequest{UserID: "1", Type: model.NotificationReferralConverted, Title: "Referral converted", Message: "Alice Brown became a client.", Data: map[string]any{"referralId": "1"}}, false},
		{"3", model.CreateNotificationRequest{UserID: "1", Type: model.NotificationDocumentRequest, Title: "Documents needed", Message: "Please upload your passport scan."}, false},
	}
	for i, sn := range seedNotifications {
		n := model.NewNotification(sn.id, sn.req)
		n.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		n.UpdatedAt = n.CreatedAt
		if sn.read {
			n.MarkRead(n.CreatedAt.Add(time.Hour))
		}
		if err := notifications.Create(ctx, n); err != nil {
			return fmt.Errorf("failed to seed notification %s: %w", n.ID, err)
		}
	}
	return nil
}

// Store groups the three repositories the services depend on.
type Store struct {
	Users         UserRepository
	Referrals     ReferralRepository
	Notifications NotificationRepository
}

// NewMemoryStore creates fresh in-memory repositories, seeded when asked.
func NewMemoryStore(ctx context.Context, seed bool) (*Store, error) {
	s := &Store{
		Users:         NewMemoryUserRepository(),
		Referrals:     NewMemoryReferralRepository(),
		Notifications: NewMemoryNotificationRepository(),
	}
	if seed {
		if err := Seed(ctx, s.Users, s.Referrals, s.Notifications); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewPostgresStore wires the Postgres repositories over one connection pool.
func NewPostgresStore(db DBTX) *Store {
	return &Store{
		Users:         NewUserRepository(db),
		Referrals:     NewReferralRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}
