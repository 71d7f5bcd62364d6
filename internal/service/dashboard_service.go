package service

import (
	"context"
	"fmt"

	"visa_referral/internal/model"
)

const recentReferralLimit = 5

// DashboardService aggregates the home screen view
type DashboardService interface {
	Get(ctx context.Context, userID string) (*model.Dashboard, error)
}

type dashboardService struct {
	auth          AuthService
	referrals     ReferralService
	notifications NotificationService
}

func NewDashboardService(auth AuthService, referrals ReferralService, notifications NotificationService) DashboardService {
	return &dashboardService{
		auth:          auth,
		referrals:     referrals,
		notifications: notifications,
	}
}

func (s *dashboardService) Get(ctx context.Context, userID string) (*model.Dashboard, error) {
	user, err := s.auth.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	referrals, err := s.referrals.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load referrals for dashboard: %w", err)
	}
	notificationStats, err := s.notifications.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification stats for dashboard: %w", err)
	}

	recent := referrals
	if len(recent) > recentReferralLimit {
		recent = recent[:recentReferralLimit]
	}

	return &model.Dashboard{
		User:              user,
		VisaProgress:      user.CurrentVisaStage.Progress(),
		ReferralStats:     *computeReferralStats(referrals),
		NotificationStats: *notificationStats,
		RecentReferrals:   recent,
	}, nil
}
