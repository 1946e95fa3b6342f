// internal/models/notification.go
package models

import "time"

// RecipientRole identifies which kind of user a notification targets.
type RecipientRole string

const (
	RecipientRoleApplicant  RecipientRole = "applicant"
	RecipientRoleConsultant RecipientRole = "consultant"
	RecipientRoleAdmin      RecipientRole = "admin"
)

// Notification types emitted by this service.
const (
	NotificationDocumentStatusChanged = "document_status_changed"
	NotificationApplicationSubmitted  = "application_submitted"
)

type Notification struct {
	ID            string                 `json:"id"`
	RecipientID   string                 `json:"recipientId"`
	RecipientRole RecipientRole          `json:"recipientRole"`
	Type          string                 `json:"type"`
	Channel       string                 `json:"channel"` // "email" or "sms"
	Status        string                 `json:"status"`  // "sent", "failed", "disabled"
	Payload       map[string]interface{} `json:"payload,omitempty"`
	SentAt        string                 `json:"sentAt"`
}

// DocumentStatusChanged is the event fired on every review transition. It is
// consumed fire-and-forget by the notification component.
type DocumentStatusChanged struct {
	DraftID    string           `json:"draftId"`
	DocumentID string           `json:"documentId"`
	Category   DocumentCategory `json:"category"`
	OldStatus  DocumentStatus   `json:"oldStatus"`
	NewStatus  DocumentStatus   `json:"newStatus"`
	ReviewerID string           `json:"reviewerId,omitempty"`
	OccurredAt time.Time        `json:"occurredAt"`
}
