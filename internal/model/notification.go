package model

import "time"

type NotificationType string

const (
	NotificationVisaProgress         NotificationType = "visa_progress"
	NotificationReferralSubmitted    NotificationType = "referral_submitted"
	NotificationReferralStatusUpdate NotificationType = "referral_status_update"
	NotificationReferralConverted    NotificationType = "referral_converted"
	NotificationSystemUpdate         NotificationType = "system_update"
	NotificationAccountUpdate        NotificationType = "account_update"
	NotificationPaymentUpdate        NotificationType = "payment_update"
	NotificationDocumentRequest      NotificationType = "document_request"
	NotificationAppointment          NotificationType = "appointment_scheduled"
	NotificationGeneral              NotificationType = "general"
)

var NotificationTypes = []NotificationType{
	NotificationVisaProgress,
	NotificationReferralSubmitted,
	NotificationReferralStatusUpdate,
	NotificationReferralConverted,
	NotificationSystemUpdate,
	NotificationAccountUpdate,
	NotificationPaymentUpdate,
	NotificationDocumentRequest,
	NotificationAppointment,
	NotificationGeneral,
}

func (t NotificationType) Valid() bool {
	for _, nt := range NotificationTypes {
		if nt == t {
			return true
		}
	}
	return false
}

// Notification is a message delivered to a single user
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Data      map[string]any   `json:"data"`
	Read      bool             `json:"read"`
	ReadAt    *time.Time       `json:"readAt,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// CreateNotificationRequest is the body of POST /notifications
type CreateNotificationRequest struct {
	UserID  string           `json:"userId" binding:"required"`
	Type    NotificationType `json:"type"`
	Title   string           `json:"title" binding:"required"`
	Message string           `json:"message"`
	Data    map[string]any   `json:"data"`
}

// UpdateNotificationRequest is the body of PATCH /notifications/:id
type UpdateNotificationRequest struct {
	Read *bool `json:"read,omitempty"`
}

// NotificationStats summarises a user's inbox
type NotificationStats struct {
	Total  int                      `json:"total"`
	Unread int                      `json:"unread"`
	Read   int                      `json:"read"`
	ByType map[NotificationType]int `json:"byType"`
}

// NewNotification builds an unread notification with defaults substituted.
func NewNotification(id string, req CreateNotificationRequest) *Notification {
	now := Now()
	n := &Notification{
		ID:        id,
		UserID:    req.UserID,
		Type:      req.Type,
		Title:     req.Title,
		Message:   req.Message,
		Data:      req.Data,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !n.Type.Valid() {
		n.Type = NotificationGeneral
	}
	if n.Data == nil {
		n.Data = map[string]any{}
	}
	return n
}

// MarkRead flags the notification as read, keeping the first read time.
func (n *Notification) MarkRead(at time.Time) {
	if !n.Read || n.ReadAt == nil {
		n.ReadAt = &at
	}
	n.Read = true
	n.UpdatedAt = at
}
