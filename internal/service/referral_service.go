package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"visa_referral/internal/logger"
	"visa_referral/internal/model"
	"visa_referral/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrReferralExists   = errors.New("referral with this email already exists")
	ErrReferralNotFound = errors.New("referral not found")
	ErrInvalidStatus    = errors.New("invalid referral status")
	ErrReferrerNotFound = errors.New("referrer not found")
	ErrReferralInvalid  = errors.New("referred name and email are required")
)

// PointsPerConversion is credited for every converted or completed referral.
const PointsPerConversion = 100

// ReferralService provides referral pipeline operations
type ReferralService interface {
	Create(ctx context.Context, referrerID string, req model.CreateReferralRequest) (*model.Referral, error)
	List(ctx context.Context, filters model.ReferralFilters) ([]model.Referral, error)
	Get(ctx context.Context, id string) (*model.Referral, error)
	Update(ctx context.Context, id string, req model.UpdateReferralRequest) (*model.Referral, error)
	ListByUser(ctx context.Context, userID string) ([]model.Referral, error)
	Stats(ctx context.Context, userID string) (*model.ReferralStats, error)
}

type referralService struct {
	referralRepo repository.ReferralRepository
	userRepo     repository.UserRepository
	notifier     NotificationService
	log          *zap.Logger
}

// NewReferralService creates a new ReferralService. notifier may be nil.
func NewReferralService(referralRepo repository.ReferralRepository, userRepo repository.UserRepository, notifier NotificationService, log *zap.Logger) ReferralService {
	if log == nil {
		log = zap.NewNop()
	}
	return &referralService{
		referralRepo: referralRepo,
		userRepo:     userRepo,
		notifier:     notifier,
		log:          log,
	}
}

func (s *referralService) Create(ctx context.Context, referrerID string, req model.CreateReferralRequest) (*model.Referral, error) {
	if strings.TrimSpace(req.ReferredName) == "" || strings.TrimSpace(req.ReferredEmail) == "" {
		return nil, ErrReferralInvalid
	}
	if referrerID == "" {
		referrerID = req.ReferrerID
	}

	referrer, err := s.userRepo.FindByID(ctx, referrerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find referrer: %w", err)
	}
	if referrer == nil {
		return nil, ErrReferrerNotFound
	}

	existing, err := s.referralRepo.FindByEmail(ctx, req.ReferredEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing referral: %w", err)
	}
	if existing != nil {
		return nil, ErrReferralExists
	}

	req.ReferrerID = referrer.ID
	referral := model.NewReferral(uuid.NewString(), referrer.ReferralCode, req)
	if err := s.referralRepo.Create(ctx, referral); err != nil {
		return nil, fmt.Errorf("failed to create referral: %w", err)
	}

	logger.WithContext(ctx, s.log).Info("referral submitted",
		zap.String("referral_id", referral.ID),
		zap.String("referrer_id", referral.ReferrerID),
		zap.String("email", logger.MaskEmail(referral.ReferredEmail)),
	)
	s.notify(ctx, model.CreateNotificationRequest{
		UserID:  referral.ReferrerID,
		Type:    model.NotificationReferralSubmitted,
		Title:   "Referral Submitted",
		Message: fmt.Sprintf("Your referral for %s has been submitted successfully.", referral.ReferredName),
		Data:    map[string]any{"referralId": referral.ID},
	})
	return referral, nil
}

func (s *referralService) List(ctx context.Context, filters model.ReferralFilters) ([]model.Referral, error) {
	if filters.Status != nil && !filters.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	referrals, err := s.referralRepo.FindAll(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}
	return referrals, nil
}

func (s *referralService) Get(ctx context.Context, id string) (*model.Referral, error) {
	referral, err := s.referralRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find referral: %w", err)
	}
	if referral == nil {
		return nil, ErrReferralNotFound
	}
	return referral, nil
}

// Update applies a partial edit. Any valid status may follow any other.
func (s *referralService) Update(ctx context.Context, id string, req model.UpdateReferralRequest) (*model.Referral, error) {
	referral, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := referral.Status
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		referral.Status = *req.Status
	}
	if req.ReferredName != nil && strings.TrimSpace(*req.ReferredName) != "" {
		referral.ReferredName = strings.TrimSpace(*req.ReferredName)
	}
	if req.ReferredPhone != nil {
		referral.ReferredPhone = *req.ReferredPhone
	}
	if req.ReferredCountry != nil {
		referral.ReferredCountry = *req.ReferredCountry
	}
	if req.VisaType != nil {
		referral.VisaType = *req.VisaType
	}
	if req.Notes != nil {
		notes := *req.Notes
		referral.Notes = &notes
	}

	now := model.Now()
	if referral.Status == model.ReferralConverted && previous != model.ReferralConverted {
		referral.ConvertedAt = &now
	}
	referral.UpdatedAt = now

	if err := s.referralRepo.Update(ctx, referral); err != nil {
		return nil, fmt.Errorf("failed to update referral: %w", err)
	}

	if referral.Status != previous {
		s.notifyStatusChange(ctx, referral)
	}
	return referral, nil
}

// ListByUser returns an empty list for users with no referrals, known or not.
func (s *referralService) ListByUser(ctx context.Context, userID string) ([]model.Referral, error) {
	referrals, err := s.referralRepo.FindByReferrer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user referrals: %w", err)
	}
	if referrals == nil {
		referrals = []model.Referral{}
	}
	return referrals, nil
}

func (s *referralService) Stats(ctx context.Context, userID string) (*model.ReferralStats, error) {
	referrals, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return computeReferralStats(referrals), nil
}

func computeReferralStats(referrals []model.Referral) *model.ReferralStats {
	stats := &model.ReferralStats{ByStatus: map[model.ReferralStatus]int{}}
	for _, status := range model.ReferralStatuses {
		stats.ByStatus[status] = 0
	}
	for _, r := range referrals {
		stats.Total++
		stats.ByStatus[r.Status]++
	}
	stats.Pending = stats.ByStatus[model.ReferralPending]
	stats.Converted = stats.ByStatus[model.ReferralConverted]
	stats.Completed = stats.ByStatus[model.ReferralCompleted]
	stats.Rejected = stats.ByStatus[model.ReferralRejected]

	successful := stats.Converted + stats.Completed
	if stats.Total > 0 {
		stats.ConversionRate = float64(successful) * 100 / float64(stats.Total)
	}
	stats.Points = successful * PointsPerConversion
	stats.Tier = model.TierFor(stats.Points)
	return stats
}

func (s *referralService) notifyStatusChange(ctx context.Context, referral *model.Referral) {
	req := model.CreateNotificationRequest{
		UserID:  referral.ReferrerID,
		Type:    model.NotificationReferralStatusUpdate,
		Title:   "Referral Status Updated",
		Message: fmt.Sprintf("Your referral for %s is now %s.", referral.ReferredName, referral.Status),
		Data: map[string]any{
			"referralId": referral.ID,
			"status":     string(referral.Status),
		},
	}
	if referral.Status == model.ReferralConverted {
		req.Type = model.NotificationReferralConverted
		req.Title = "Referral Converted"
		req.Message = fmt.Sprintf("Congratulations! %s has become a client.", referral.ReferredName)
	}
	s.notify(ctx, req)
}

// notify never fails the referral operation that triggered it.
func (s *referralService) notify(ctx context.Context, req model.CreateNotificationRequest) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Create(ctx, req); err != nil {
		logger.WithContext(ctx, s.log).Warn("failed to emit notification",
			zap.String("user_id", req.UserID),
			zap.String("type", string(req.Type)),
			zap.Error(err),
		)
	}
}
