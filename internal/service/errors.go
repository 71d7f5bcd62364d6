package service

import (
	"errors"
	"net/http"
)

// HTTPStatus maps service errors to the status code reported to clients.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAccountInactive):
		return http.StatusForbidden
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrReferralNotFound),
		errors.Is(err, ErrNotificationNotFound), errors.Is(err, ErrReferrerNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUserAlreadyExists), errors.Is(err, ErrReferralExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidReferralCode), errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrWeakPassword), errors.Is(err, ErrInvalidVisaStage),
		errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrReferralInvalid),
		errors.Is(err, ErrNotificationInvalid), errors.Is(err, ErrNotificationUnread):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
