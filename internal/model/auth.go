package model

import "time"

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	Phone        string `json:"phone"`
	Country      string `json:"country"`
	VisaType     string `json:"visaType"`
	ReferralCode string `json:"referralCode"`
}

// RefreshRequest is the body of POST /auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// AuthPayload is returned by login, register and refresh
type AuthPayload struct {
	User         *User     `json:"user"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// TokenPair is an access/refresh token couple issued together
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Dashboard aggregates what the home screen shows
type Dashboard struct {
	User              *User             `json:"user"`
	VisaProgress      int               `json:"visaProgress"`
	ReferralStats     ReferralStats     `json:"referralStats"`
	NotificationStats NotificationStats `json:"notificationStats"`
	RecentReferrals   []Referral        `json:"recentReferrals"`
}
