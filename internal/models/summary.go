// internal/models/summary.go
package models

// DashboardSummary is a closed sum over the three role-specific dashboard
// views. Consumers switch on the concrete type; summaryMarker keeps the set
// closed to this package.
type DashboardSummary interface {
	summaryMarker()
	Role() RecipientRole
}

// ApplicantSummary is the applicant's own progress view. Progress is computed
// from completed steps, never sampled or faked.
type ApplicantSummary struct {
	DraftID           string  `json:"draftId"`
	CurrentStep       Step    `json:"currentStep"`
	StepsCompleted    int     `json:"stepsCompleted"`
	StepsTotal        int     `json:"stepsTotal"`
	Progress          float64 `json:"progress"` // 0.0 .. 1.0
	DocumentsRequired int     `json:"documentsRequired"`
	DocumentsUploaded int     `json:"documentsUploaded"`
	DocumentsApproved int     `json:"documentsApproved"`
}

func (ApplicantSummary) summaryMarker()      {}
func (ApplicantSummary) Role() RecipientRole { return RecipientRoleApplicant }

// ConsultantSummary is the reviewer workload view.
type ConsultantSummary struct {
	ConsultantID       string `json:"consultantId"`
	AssignedDrafts     int    `json:"assignedDrafts"`
	PendingReviews     int    `json:"pendingReviews"`
	RevisionsRequested int    `json:"revisionsRequested"`
	ApprovedThisWeek   int    `json:"approvedThisWeek"`
	RejectedThisWeek   int    `json:"rejectedThisWeek"`
}

func (ConsultantSummary) summaryMarker()      {}
func (ConsultantSummary) Role() RecipientRole { return RecipientRoleConsultant }

// AdminSummary is the operations overview.
type AdminSummary struct {
	TotalApplications int     `json:"totalApplications"`
	SubmittedToday    int     `json:"submittedToday"`
	InReview          int     `json:"inReview"`
	ApprovalRate      float64 `json:"approvalRate"`
	ActiveConsultants int     `json:"activeConsultants"`
}

func (AdminSummary) summaryMarker()      {}
func (AdminSummary) Role() RecipientRole { return RecipientRoleAdmin }
