// internal/models/review.go
package models

import "time"

// ReviewerRole is the actor role performing a document review.
type ReviewerRole string

const (
	ReviewerRoleConsultant ReviewerRole = "consultant"
	ReviewerRoleAdmin      ReviewerRole = "admin"
)

// ReviewDecision is the outcome recorded by one review pass.
type ReviewDecision string

const (
	ReviewDecisionApproved          ReviewDecision = "approved"
	ReviewDecisionRejected          ReviewDecision = "rejected"
	ReviewDecisionRevisionRequested ReviewDecision = "revision_requested"
)

// IssueSeverity grades a structured review issue.
type IssueSeverity string

const (
	IssueSeverityLow      IssueSeverity = "low"
	IssueSeverityMedium   IssueSeverity = "medium"
	IssueSeverityHigh     IssueSeverity = "high"
	IssueSeverityCritical IssueSeverity = "critical"
)

type ReviewIssue struct {
	Type        string        `json:"type"`
	Severity    IssueSeverity `json:"severity"`
	Description string        `json:"description"`
	Suggestion  string        `json:"suggestion,omitempty"`
}

// Review is one immutable entry in a document's review history. History is
// append-only: entries are never edited or removed.
type Review struct {
	ID              string         `json:"id"`
	ReviewerID      string         `json:"reviewerId"`
	ReviewerRole    ReviewerRole   `json:"reviewerRole"`
	Decision        ReviewDecision `json:"decision"`
	Comments        string         `json:"comments,omitempty"`
	Issues          []ReviewIssue  `json:"issues,omitempty"`
	ResubmissionETA *time.Time     `json:"resubmissionEta,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// Clone deep-copies the review entry.
func (r Review) Clone() Review {
	cp := r
	cp.Issues = append([]ReviewIssue(nil), r.Issues...)
	if r.ResubmissionETA != nil {
		eta := *r.ResubmissionETA
		cp.ResubmissionETA = &eta
	}
	return cp
}
