// internal/application/review/workflow.go
package review

import (
	"context"
	"time"

	stderrors "elab-credentialing/internal/common/errors"
	"elab-credentialing/internal/common/logger"
	"elab-credentialing/internal/common/metrics"
	"elab-credentialing/internal/models"

	"github.com/google/uuid"
)

// Reviewer identifies the actor performing a transition.
type Reviewer struct {
	ID   string
	Role models.ReviewerRole
}

// EventSink receives document-status-changed events. Delivery is
// fire-and-forget; the workflow never waits on or fails from the sink.
type EventSink interface {
	DocumentStatusChanged(ctx context.Context, event models.DocumentStatusChanged)
}

// Workflow drives the per-document review state machine:
//
//	pending_review -> approved | rejected | requires_resubmission
//	rejected, requires_resubmission -> pending_review (re-upload only)
//
// Every transition appends an immutable Review record to the document's
// history. History is never edited or truncated.
type Workflow struct {
	sink   EventSink
	logger logger.Logger
	now    func() time.Time
}

func NewWorkflow(sink EventSink, log logger.Logger) *Workflow {
	return &Workflow{
		sink:   sink,
		logger: log.WithFields(map[string]interface{}{"component": "review"}),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Approve moves a pending document to approved.
func (w *Workflow) Approve(ctx context.Context, draftID string, doc *models.DocumentRef, reviewer Reviewer, comments string) error {
	return w.transition(ctx, draftID, doc, reviewer, models.DocumentStatusApproved, models.ReviewDecisionApproved, comments, nil, nil)
}

// Reject moves a pending document to rejected with a reason and optional
// structured issues.
func (w *Workflow) Reject(ctx context.Context, draftID string, doc *models.DocumentRef, reviewer Reviewer, reason string, issues []models.ReviewIssue) error {
	return w.transition(ctx, draftID, doc, reviewer, models.DocumentStatusRejected, models.ReviewDecisionRejected, reason, issues, nil)
}

// RequestRevision sends a pending document back for resubmission, with a
// reason and an optional expected-resubmission time.
func (w *Workflow) RequestRevision(ctx context.Context, draftID string, doc *models.DocumentRef, reviewer Reviewer, reason string, issues []models.ReviewIssue, eta *time.Time) error {
	return w.transition(ctx, draftID, doc, reviewer, models.DocumentStatusRequiresResubmission, models.ReviewDecisionRevisionRequested, reason, issues, eta)
}

func (w *Workflow) transition(ctx context.Context, draftID string, doc *models.DocumentRef, reviewer Reviewer, to models.DocumentStatus, decision models.ReviewDecision, comments string, issues []models.ReviewIssue, eta *time.Time) error {
	if doc.Status != models.DocumentStatusPendingReview {
		return stderrors.NewReviewTransitionInvalidError(string(doc.Status), string(to))
	}

	from := doc.Status
	doc.Status = to
	doc.Reviews = append(doc.Reviews, models.Review{
		ID:              uuid.New().String(),
		ReviewerID:      reviewer.ID,
		ReviewerRole:    reviewer.Role,
		Decision:        decision,
		Comments:        comments,
		Issues:          append([]models.ReviewIssue(nil), issues...),
		ResubmissionETA: eta,
		CreatedAt:       w.now(),
	})

	metrics.ReviewDecisions.WithLabelValues(string(decision)).Inc()
	w.logger.Info("document reviewed", map[string]interface{}{
		"draftId":    draftID,
		"documentId": doc.ID,
		"decision":   decision,
		"reviewerId": reviewer.ID,
	})

	w.emit(ctx, draftID, doc, from, reviewer.ID)
	return nil
}

// RecordResubmission validates that replacement is a legal re-upload of
// previous (the only path out of rejected or requires_resubmission) and
// emits the corresponding status change. The upload itself happens in the
// documents service; this only checks and announces the transition.
func (w *Workflow) RecordResubmission(ctx context.Context, draftID string, previous models.DocumentRef, replacement *models.DocumentRef) error {
	if previous.Status != models.DocumentStatusRejected &&
		previous.Status != models.DocumentStatusRequiresResubmission {
		return stderrors.NewReviewTransitionInvalidError(string(previous.Status), string(models.DocumentStatusPendingReview))
	}
	if replacement.SupersedesID != previous.ID ||
		replacement.Status != models.DocumentStatusPendingReview {
		return stderrors.NewReviewTransitionInvalidError(string(previous.Status), string(replacement.Status))
	}

	w.logger.Info("document resubmitted", map[string]interface{}{
		"draftId":      draftID,
		"documentId":   replacement.ID,
		"supersedesId": previous.ID,
	})
	w.emit(ctx, draftID, replacement, previous.Status, "")
	return nil
}

func (w *Workflow) emit(ctx context.Context, draftID string, doc *models.DocumentRef, from models.DocumentStatus, reviewerID string) {
	if w.sink == nil {
		return
	}
	w.sink.DocumentStatusChanged(ctx, models.DocumentStatusChanged{
		DraftID:    draftID,
		DocumentID: doc.ID,
		Category:   doc.Category,
		OldStatus:  from,
		NewStatus:  doc.Status,
		ReviewerID: reviewerID,
		OccurredAt: w.now(),
	})
}
