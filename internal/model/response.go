package model

import (
	"fmt"
	"time"
)

// APIResponse is the envelope every endpoint answers with, mocked or real.
type APIResponse[T any] struct {
	Data       T      `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
	Timestamp  string `json:"timestamp"`
	StatusCode int    `json:"statusCode"`
}

// NewAPIResponse wraps data; success is derived from the status code.
func NewAPIResponse[T any](data T, message string, statusCode int) *APIResponse[T] {
	if statusCode == 0 {
		statusCode = 200
	}
	return &APIResponse[T]{
		Data:       data,
		Message:    message,
		Success:    statusCode >= 200 && statusCode < 300,
		Timestamp:  Timestamp(),
		StatusCode: statusCode,
	}
}

// NewErrorResponse is an envelope with no data.
func NewErrorResponse(message string, statusCode int) *APIResponse[any] {
	return NewAPIResponse[any](nil, message, statusCode)
}

const APIErrorKind = "ApiError"

// APIError is the normalised client-side error shape.
type APIError struct {
	Message    string `json:"message"`
	Kind       string `json:"error"`
	StatusCode int    `json:"statusCode"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
	Details    any    `json:"details,omitempty"`
	Cause      error  `json:"-"`
}

// NewAPIError builds an APIError with defaults substituted.
func NewAPIError(message string, statusCode int, path string) *APIError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return &APIError{
		Message:    message,
		Kind:       APIErrorKind,
		StatusCode: statusCode,
		Timestamp:  Timestamp(),
		Path:       path,
	}
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.Cause }

// Timestamp formats the current time as ISO-8601.
func Timestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
