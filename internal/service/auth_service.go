package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"visa_referral/internal/logger"
	"visa_referral/internal/model"
	"visa_referral/internal/repository"
	"visa_referral/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUserAlreadyExists   = errors.New("user with this email already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("Invalid email or password")
	ErrAccountInactive     = errors.New("account is deactivated")
	ErrInvalidReferralCode = errors.New("invalid referral code")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrMissingFields       = errors.New("name, email and password are required")
	ErrWeakPassword        = errors.New("password must be at least 6 characters")
	ErrInvalidVisaStage    = errors.New("invalid visa stage")
)

const minPasswordLength = 6

// TokenIssuer issues and parses the access/refresh pair handed to clients.
type TokenIssuer interface {
	IssuePair(userID string) (*model.TokenPair, error)
	ParseAccess(token string) (string, error)
	ParseRefresh(token string) (string, error)
}

// AuthService provides authentication related services
type AuthService interface {
	Login(ctx context.Context, email, password string) (*model.AuthPayload, error)
	Register(ctx context.Context, req model.RegisterRequest) (*model.AuthPayload, error)
	Me(ctx context.Context, userID string) (*model.User, error)
	Logout(ctx context.Context, token string) error
	Refresh(ctx context.Context, refreshToken string) (*model.AuthPayload, error)
	UpdateProfile(ctx context.Context, userID string, req model.ProfileUpdate) (*model.User, error)
	Authenticate(token string) (string, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	log      *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer, log *zap.Logger) AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		log:      log,
	}
}

// Login authenticates a user and returns a fresh token pair
func (s *authService) Login(ctx context.Context, email, password string) (*model.AuthPayload, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil || !utils.CheckPasswordHash(password, user.PasswordHash) {
		logger.WithContext(ctx, s.log).Info("login rejected", zap.String("email", logger.MaskEmail(email)))
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	now := model.Now()
	user.LastLogin = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		// last login is informational only
		logger.WithContext(ctx, s.log).Warn("failed to record last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	return s.issue(user)
}

// Register creates a new user account
func (s *authService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthPayload, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, ErrMissingFields
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	existingUser, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrUserAlreadyExists
	}

	var referredBy string
	if code := strings.TrimSpace(req.ReferralCode); code != "" {
		referrer, err := s.userRepo.FindByReferralCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to look up referral code: %w", err)
		}
		if referrer == nil {
			return nil, ErrInvalidReferralCode
		}
		referredBy = referrer.ID
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.NewUser(model.UserInput{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         strings.TrimSpace(req.Name),
		Phone:        req.Phone,
		Country:      req.Country,
		VisaType:     req.VisaType,
		ReferredBy:   referredBy,
		ReferralCode: newReferralCode(req.Name),
	})
	user.PasswordHash = hashedPassword

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}
	logger.WithContext(ctx, s.log).Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)),
		zap.Bool("referred", referredBy != ""),
	)

	return s.issue(user)
}

// Me returns the user behind an authenticated request
func (s *authService) Me(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Logout is best-effort: tokens are stateless so there is nothing to revoke.
func (s *authService) Logout(ctx context.Context, token string) error {
	if userID, err := s.tokens.ParseAccess(token); err == nil {
		logger.WithContext(ctx, s.log).Info("user logged out", zap.String("user_id", userID))
	}
	return nil
}

// Refresh exchanges a refresh token for a new pair
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*model.AuthPayload, error) {
	userID, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user for refresh: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidToken
	}
	return s.issue(user)
}

// UpdateProfile applies a partial profile edit
func (s *authService) UpdateProfile(ctx context.Context, userID string, req model.ProfileUpdate) (*model.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Country != nil {
		user.Country = *req.Country
	}
	if req.PreferredLanguage != nil && *req.PreferredLanguage != "" {
		user.PreferredLanguage = *req.PreferredLanguage
	}
	if req.Timezone != nil && *req.Timezone != "" {
		user.Timezone = *req.Timezone
	}
	if req.VisaType != nil {
		user.VisaType = *req.VisaType
	}
	if req.CurrentVisaStage != nil {
		if !req.CurrentVisaStage.Valid() {
			return nil, ErrInvalidVisaStage
		}
		user.CurrentVisaStage = *req.CurrentVisaStage
	}
	user.RefreshProgress()
	user.UpdatedAt = model.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user in repository: %w", err)
	}
	return user, nil
}

// Authenticate resolves an access token to a user id
func (s *authService) Authenticate(token string) (string, error) {
	userID, err := s.tokens.ParseAccess(token)
	if err != nil {
		return "", ErrInvalidToken
	}
	return userID, nil
}

func (s *authService) issue(user *model.User) (*model.AuthPayload, error) {
	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &model.AuthPayload{
		User:         user,
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
	}, nil
}

func newReferralCode(name string) string {
	prefix := strings.ToUpper(strings.Join(strings.Fields(name), ""))
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	if prefix == "" {
		prefix = "REF"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return prefix + suffix
}
