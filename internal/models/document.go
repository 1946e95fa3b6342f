// internal/models/document.go
package models

import "time"

// DocumentCategory is a required kind of supporting document.
type DocumentCategory string

const (
	DocumentCategoryPassport   DocumentCategory = "passport"
	DocumentCategoryEducation  DocumentCategory = "education"
	DocumentCategoryLicense    DocumentCategory = "license"
	DocumentCategoryExperience DocumentCategory = "experience"
)

// DocumentStatus is the review lifecycle state of one uploaded document.
type DocumentStatus string

const (
	DocumentStatusPendingReview        DocumentStatus = "pending_review"
	DocumentStatusApproved             DocumentStatus = "approved"
	DocumentStatusRejected             DocumentStatus = "rejected"
	DocumentStatusRequiresResubmission DocumentStatus = "requires_resubmission"
)

// DocumentRef points at one uploaded file version. IDs are server-assigned
// at upload time. A re-upload produces a new ref with Version+1 and
// SupersedesID set; the superseded ref stays in the draft for audit.
type DocumentRef struct {
	ID           string           `json:"id"`
	Category     DocumentCategory `json:"category"`
	FileName     string           `json:"fileName"`
	ContentType  string           `json:"contentType"`
	SizeBytes    int64            `json:"sizeBytes"`
	Version      int              `json:"version"`
	SupersedesID string           `json:"supersedesId,omitempty"`
	Status       DocumentStatus   `json:"status"`
	UploadedAt   time.Time        `json:"uploadedAt"`
	Reviews      []Review         `json:"reviews,omitempty"`
}

// Clone deep-copies the ref including its review history.
func (r DocumentRef) Clone() DocumentRef {
	cp := r
	cp.Reviews = make([]Review, len(r.Reviews))
	for i, rev := range r.Reviews {
		cp.Reviews[i] = rev.Clone()
	}
	return cp
}

// Counted reports whether this ref counts toward fulfillment of its
// category: anything uploaded and not rejected or sent back for resubmission.
func (r DocumentRef) Counted() bool {
	return r.Status != DocumentStatusRejected && r.Status != DocumentStatusRequiresResubmission
}
