// internal/models/application.go
package models

import "time"

// ApplicationStatus is the backend lifecycle of a submitted application.
// Drafts never carry one of these; conversion happens at submission.
type ApplicationStatus string

const (
	ApplicationStatusSubmitted ApplicationStatus = "submitted"
	ApplicationStatusInReview  ApplicationStatus = "in_review"
	ApplicationStatusApproved  ApplicationStatus = "approved"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
)

// Application is the immutable aggregate produced when a draft is submitted.
// The payload is the draft snapshot as accepted; it is never edited again.
type Application struct {
	ID              string            `json:"id"`
	ApplicantID     string            `json:"applicantId"`
	ApplicationType ApplicationType   `json:"applicationType"`
	TargetCountry   string            `json:"targetCountry"`
	Urgency         Urgency           `json:"urgency"`
	Status          ApplicationStatus `json:"status"`
	Payload         *Draft            `json:"payload"`
	SubmittedAt     time.Time         `json:"submittedAt"`
}
