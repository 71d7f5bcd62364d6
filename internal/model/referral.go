package model

import (
	"strings"
	"time"
)

type ReferralStatus string

const (
	ReferralPending   ReferralStatus = "pending"
	ReferralContacted ReferralStatus = "contacted"
	ReferralQualified ReferralStatus = "qualified"
	ReferralConverted ReferralStatus = "converted"
	ReferralCompleted ReferralStatus = "completed"
	ReferralRejected  ReferralStatus = "rejected"
)

var ReferralStatuses = []ReferralStatus{
	ReferralPending,
	ReferralContacted,
	ReferralQualified,
	ReferralConverted,
	ReferralCompleted,
	ReferralRejected,
}

func (s ReferralStatus) Valid() bool {
	for _, st := range ReferralStatuses {
		if st == s {
			return true
		}
	}
	return false
}

const DefaultReferralSource = "app"

// Referral is a prospective client introduced by an existing user
type Referral struct {
	ID              string         `json:"id"`
	ReferrerID      string         `json:"referrerId"`
	ReferredName    string         `json:"referredName"`
	ReferredEmail   string         `json:"referredEmail"`
	ReferredPhone   string         `json:"referredPhone"`
	ReferredCountry string         `json:"referredCountry"`
	VisaType        string         `json:"visaType"`
	ReferralCode    string         `json:"referralCode"`
	Status          ReferralStatus `json:"status"`
	ConvertedAt     *time.Time     `json:"convertedAt,omitempty"`
	Source          string         `json:"source"`
	Notes           *string        `json:"notes,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// CreateReferralRequest is the body of POST /referrals
type CreateReferralRequest struct {
	ReferrerID      string  `json:"referrerId"`
	ReferredName    string  `json:"referredName" binding:"required"`
	ReferredEmail   string  `json:"referredEmail" binding:"required,email"`
	ReferredPhone   string  `json:"referredPhone"`
	ReferredCountry string  `json:"referredCountry"`
	VisaType        string  `json:"visaType"`
	Source          string  `json:"source"`
	Notes           *string `json:"notes"`
}

// UpdateReferralRequest is the body of PATCH /referrals/:id
type UpdateReferralRequest struct {
	Status          *ReferralStatus `json:"status,omitempty"`
	ReferredName    *string         `json:"referredName,omitempty"`
	ReferredPhone   *string         `json:"referredPhone,omitempty"`
	ReferredCountry *string         `json:"referredCountry,omitempty"`
	VisaType        *string         `json:"visaType,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
}

// ReferralFilters narrows GET /referrals
type ReferralFilters struct {
	ReferrerID *string
	Status     *ReferralStatus
}

// ReferralStats summarises a referrer's pipeline
type ReferralStats struct {
	Total          int                    `json:"total"`
	ByStatus       map[ReferralStatus]int `json:"byStatus"`
	Pending        int                    `json:"pending"`
	Converted      int                    `json:"converted"`
	Completed      int                    `json:"completed"`
	Rejected       int                    `json:"rejected"`
	ConversionRate float64                `json:"conversionRate"`
	Points         int                    `json:"points"`
	Tier           string                 `json:"tier"`
}

// NewReferral builds a pending referral with defaults substituted.
func NewReferral(id, referralCode string, req CreateReferralRequest) *Referral {
	now := Now()
	r := &Referral{
		ID:              id,
		ReferrerID:      req.ReferrerID,
		ReferredName:    strings.TrimSpace(req.ReferredName),
		ReferredEmail:   strings.ToLower(strings.TrimSpace(req.ReferredEmail)),
		ReferredPhone:   req.ReferredPhone,
		ReferredCountry: req.ReferredCountry,
		VisaType:        req.VisaType,
		ReferralCode:    referralCode,
		Status:          ReferralPending,
		Source:          req.Source,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if r.Source == "" {
		r.Source = DefaultReferralSource
	}
	return r
}
