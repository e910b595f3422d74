// internal/common/errors/errors.go

// Package errors provides standardized error handling for the notification engine.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeEventNotFound      ErrorCode = "EVENT_NOT_FOUND"
	ErrCodeEventHasListeners  ErrorCode = "EVENT_HAS_ACTIVE_LISTENERS"
	ErrCodeEventStoreFailed   ErrorCode = "EVENT_STORE_FAILED"
	ErrCodeListenerLoadFailed ErrorCode = "LISTENER_LOAD_FAILED"

	ErrCodeTemplateNotFound         ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeTemplateValidationFailed ErrorCode = "TEMPLATE_VALIDATION_FAILED"
	ErrCodeTemplateVersionNotFound  ErrorCode = "TEMPLATE_VERSION_NOT_FOUND"

	ErrCodeChannelDisabled ErrorCode = "CHANNEL_DISABLED"
	ErrCodeChannelUnknown  ErrorCode = "CHANNEL_UNKNOWN"
	ErrCodeNoRecipient     ErrorCode = "NO_RECIPIENT_RESOLVED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is allows errors.Is matching on the error code.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	return ok && t.Code == e.Code
}

// ==========================
// 2. Error Constructors
// ==========================

// NewEventHasListenersError creates a non-retryable deactivation guard error.
func NewEventHasListenersError(eventName string, count int) *StandardError {
	return &StandardError{
		Code:      ErrCodeEventHasListeners,
		Message:   "Event cannot be deactivated while it has active listeners",
		Details:   fmt.Sprintf("event: %s, activeListeners: %d", eventName, count),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEventStoreError creates a retryable backing-store error.
func NewEventStoreError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEventStoreFailed,
		Message:   "Event store operation failed",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewListenerLoadError creates a retryable listener index reload error.
func NewListenerLoadError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeListenerLoadFailed,
		Message:   "Listener index reload failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateNotFoundError creates a non-retryable template error.
func NewTemplateNotFoundError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateNotFound,
		Message:   "Template not found",
		Details:   fmt.Sprintf("template: %s", name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateVersionNotFoundError creates a non-retryable version lookup error.
func NewTemplateVersionNotFoundError(templateID string, version int) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateVersionNotFound,
		Message:   "Template version not found",
		Details:   fmt.Sprintf("templateId: %s, version: %d", templateID, version),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoRecipientError creates a non-retryable recipient resolution error.
func NewNoRecipientError(channel string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoRecipient,
		Message:   "No recipient could be resolved for channel",
		Details:   fmt.Sprintf("channel: %s", channel),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewChannelUnknownError creates a non-retryable routing error.
func NewChannelUnknownError(channel string) *StandardError {
	return &StandardError{
		Code:      ErrCodeChannelUnknown,
		Message:   "No sink registered for channel",
		Details:   fmt.Sprintf("channel: %s", channel),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
