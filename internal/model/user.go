package model

import (
	"strings"
	"time"
)

// VisaStage is one phase of the visa application, in order.
type VisaStage string

const (
	StageEnquiry         VisaStage = "enquiry"
	StageDetailedEnquiry VisaStage = "detailed_enquiry"
	StageAssessment      VisaStage = "assessment"
	StageApplication     VisaStage = "application"
	StagePayment         VisaStage = "payment"
	StageCompleted       VisaStage = "completed"
)

// VisaStages lists every stage in application order.
var VisaStages = []VisaStage{
	StageEnquiry,
	StageDetailedEnquiry,
	StageAssessment,
	StageApplication,
	StagePayment,
	StageCompleted,
}

// Index returns the position of the stage, or -1 if it is unknown.
func (s VisaStage) Index() int {
	for i, stage := range VisaStages {
		if stage == s {
			return i
		}
	}
	return -1
}

// Progress returns the completion percentage for the stage.
func (s VisaStage) Progress() int {
	idx := s.Index()
	if idx < 0 {
		return 0
	}
	return (idx + 1) * 100 / len(VisaStages)
}

func (s VisaStage) Valid() bool { return s.Index() >= 0 }

const (
	TierBronze   = "bronze"
	TierSilver   = "silver"
	TierGold     = "gold"
	TierPlatinum = "platinum"
)

// TierFor maps referral points to a loyalty tier.
func TierFor(points int) string {
	switch {
	case points >= 3000:
		return TierPlatinum
	case points >= 1500:
		return TierGold
	case points >= 500:
		return TierSilver
	default:
		return TierBronze
	}
}

// Progress is the denormalised stage view shown on the dashboard.
type Progress struct {
	Current VisaStage   `json:"current"`
	Stages  []VisaStage `json:"stages"`
}

// User represents an account on the platform
type User struct {
	ID                    string     `json:"id"`
	Email                 string     `json:"email"`
	Name                  string     `json:"name"`
	Phone                 string     `json:"phone,omitempty"`
	Country               string     `json:"country,omitempty"`
	PasswordHash          string     `json:"-"` // Never leaves the server
	IsActive              bool       `json:"isActive"`
	EmailVerified         bool       `json:"emailVerified"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
	LastLogin             *time.Time `json:"lastLogin,omitempty"`
	PreferredLanguage     string     `json:"preferredLanguage"`
	Timezone              string     `json:"timezone"`
	VisaApplicationNumber string     `json:"visaApplicationNumber,omitempty"`
	CurrentVisaStage      VisaStage  `json:"currentVisaStage"`
	VisaType              string     `json:"visaType,omitempty"`
	ReferredBy            string     `json:"referredBy,omitempty"`
	ReferralCode          string     `json:"referralCode,omitempty"`
	Points                int        `json:"points"`
	Tier                  string     `json:"tier"`
	Progress              *Progress  `json:"progress,omitempty"`
}

// UserInput carries the caller-supplied fields of a new user.
type UserInput struct {
	ID                    string
	Email                 string
	Name                  string
	Phone                 string
	Country               string
	PreferredLanguage     string
	Timezone              string
	VisaApplicationNumber string
	CurrentVisaStage      VisaStage
	VisaType              string
	ReferredBy            string
	ReferralCode          string
}

// NewUser builds a user with defaults substituted for missing fields.
func NewUser(in UserInput) *User {
	now := Now()
	u := &User{
		ID:                    in.ID,
		Email:                 strings.ToLower(strings.TrimSpace(in.Email)),
		Name:                  in.Name,
		Phone:                 in.Phone,
		Country:               in.Country,
		IsActive:              true,
		CreatedAt:             now,
		UpdatedAt:             now,
		PreferredLanguage:     in.PreferredLanguage,
		Timezone:              in.Timezone,
		VisaApplicationNumber: in.VisaApplicationNumber,
		CurrentVisaStage:      in.CurrentVisaStage,
		VisaType:              in.VisaType,
		ReferredBy:            in.ReferredBy,
		ReferralCode:          in.ReferralCode,
		Tier:                  TierBronze,
	}
	if u.PreferredLanguage == "" {
		u.PreferredLanguage = "en"
	}
	if u.Timezone == "" {
		u.Timezone = "UTC"
	}
	if !u.CurrentVisaStage.Valid() {
		u.CurrentVisaStage = StageEnquiry
	}
	u.RefreshProgress()
	return u
}

// RefreshProgress recomputes the denormalised progress view from the stage.
func (u *User) RefreshProgress() {
	stages := make([]VisaStage, len(VisaStages))
	copy(stages, VisaStages)
	u.Progress = &Progress{Current: u.CurrentVisaStage, Stages: stages}
}

// ProfileUpdate is a partial update of the editable profile fields
type ProfileUpdate struct {
	Name              *string    `json:"name,omitempty"`
	Phone             *string    `json:"phone,omitempty"`
	Country           *string    `json:"country,omitempty"`
	PreferredLanguage *string    `json:"preferredLanguage,omitempty"`
	Timezone          *string    `json:"timezone,omitempty"`
	VisaType          *string    `json:"visaType,omitempty"`
	CurrentVisaStage  *VisaStage `json:"currentVisaStage,omitempty"`
}

// Now returns the current time in the form stored on records.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
