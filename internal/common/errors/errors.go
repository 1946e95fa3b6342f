// Package errors provides standardized error handling for the credentialing
// application service.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeStepNotReachable   ErrorCode = "STEP_NOT_REACHABLE"
	ErrCodeSubmissionInFlight ErrorCode = "SUBMISSION_IN_FLIGHT"
	ErrCodeDraftTerminal      ErrorCode = "DRAFT_TERMINAL"

	ErrCodeDraftSaveFailed      ErrorCode = "DRAFT_SAVE_FAILED"
	ErrCodeDraftNotFound        ErrorCode = "DRAFT_NOT_FOUND"
	ErrCodeSubmissionFailed     ErrorCode = "SUBMISSION_FAILED"
	ErrCodeDuplicateApplication ErrorCode = "DUPLICATE_APPLICATION"

	ErrCodeUploadInvalidType ErrorCode = "UPLOAD_INVALID_TYPE"
	ErrCodeUploadTooLarge    ErrorCode = "UPLOAD_TOO_LARGE"
	ErrCodeUploadFailed      ErrorCode = "UPLOAD_FAILED"

	ErrCodeReviewTransitionInvalid ErrorCode = "REVIEW_TRANSITION_INVALID"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeSearchIndexFailed        ErrorCode = "SEARCH_INDEX_FAILED"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
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

// NewValidationFailedError wraps a non-empty field-error list; the caller
// keeps the list itself, this carries the count for logs and metrics.
func NewValidationFailedError(step string, errorCount int) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Step validation failed",
		Details:   fmt.Sprintf("step: %s, errors: %d", step, errorCount),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStepNotReachableError marks an attempted jump into an unvalidated step.
func NewStepNotReachableError(step string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStepNotReachable,
		Message:   "Step has not been completed yet",
		Details:   fmt.Sprintf("step: %s", step),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubmissionInFlightError marks a second Submit while one is running.
func NewSubmissionInFlightError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmissionInFlight,
		Message:   "A submission is already in flight",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDraftTerminalError marks any mutation after successful submission.
func NewDraftTerminalError(draftID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDraftTerminal,
		Message:   "Draft has been submitted and is read-only",
		Details:   fmt.Sprintf("draftId: %s", draftID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDraftSaveFailedError creates a retryable persistence error. The user may
// simply retry SaveDraft; unsaved edits are untouched.
func NewDraftSaveFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDraftSaveFailed,
		Message:   "Draft save failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDraftNotFoundError creates a non-retryable lookup error.
func NewDraftNotFoundError(draftID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDraftNotFound,
		Message:   "Draft not found",
		Details:   fmt.Sprintf("draftId: %s", draftID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubmissionFailedError carries the opaque collaborator failure back to
// the caller. Never auto-retried: a blind retry risks duplicate submission.
func NewSubmissionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmissionFailed,
		Message:   "Application submission failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateApplicationError creates a non-retryable duplicate error.
func NewDuplicateApplicationError(applicantID, applicationType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateApplication,
		Message:   "Application already exists",
		Details:   fmt.Sprintf("applicantId: %s, applicationType: %s", applicantID, applicationType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUploadInvalidTypeError rejects a file with a disallowed MIME type.
func NewUploadInvalidTypeError(contentType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUploadInvalidType,
		Message:   "File type not accepted",
		Details:   fmt.Sprintf("contentType: %s", contentType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUploadTooLargeError rejects an oversized file.
func NewUploadTooLargeError(sizeBytes, maxBytes int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeUploadTooLarge,
		Message:   "File exceeds the maximum allowed size",
		Details:   fmt.Sprintf("size: %d, max: %d", sizeBytes, maxBytes),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUploadFailedError creates a retryable transport error for uploads.
func NewUploadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUploadFailed,
		Message:   "Document upload failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewReviewTransitionInvalidError rejects an illegal document status change.
// The document is left exactly as it was.
func NewReviewTransitionInvalidError(from, to string) *StandardError {
	return &StandardError{
		Code:      ErrCodeReviewTransitionInvalid,
		Message:   "Invalid document review transition",
		Details:   fmt.Sprintf("from: %s, to: %s", from, to),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchIndexFailedError creates a retryable Elasticsearch indexing error.
func NewSearchIndexFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchIndexFailed,
		Message:   "Search index update failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
// Notification failures never propagate into the review or wizard flow.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// IsRetryable reports whether err is a StandardError marked retryable.
func IsRetryable(err error) bool {
	if se, ok := err.(*StandardError); ok {
		return se.Retryable
	}
	return false
}

// CodeOf extracts the ErrorCode from err, or "" for foreign errors.
func CodeOf(err error) ErrorCode {
	if se, ok := err.(*StandardError); ok {
		return se.Code
	}
	return ""
}
