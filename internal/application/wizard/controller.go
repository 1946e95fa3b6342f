// internal/application/wizard/controller.go
package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	"elab-credentialing/internal/application/documents"
	"elab-credentialing/internal/application/validation"
	stderrors "elab-credentialing/internal/common/errors"
	"elab-credentialing/internal/common/logger"
	"elab-credentialing/internal/common/metrics"
	"elab-credentialing/internal/models"
)

var (
	ErrAtFirstStep   = errors.New("STEP_AT_START")
	ErrAtLastStep    = errors.New("STEP_AT_END")
	ErrNotReviewStep = errors.New("NOT_REVIEW_STEP")
	ErrCancelled     = errors.New("DRAFT_CANCELLED")
)

// State is the controller lifecycle phase.
type State string

const (
	StateEditing    State = "editing"
	StateSubmitting State = "submitting"
	StateSubmitted  State = "submitted"
	StateCancelled  State = "cancelled"
)

// Persistence is the draft-save collaborator. It snapshots the draft to
// durable storage and acknowledges or fails.
type Persistence interface {
	SaveDraft(ctx context.Context, d *models.Draft) error
}

// Submitter converts a finished draft into a submitted application and
// returns the externally issued application ID.
type Submitter interface {
	SubmitApplication(ctx context.Context, d *models.Draft) (string, error)
}

// Controller owns one draft for one session and is the only writer to it.
// It is constructed per draft and passed explicitly to every consumer; there
// is no ambient shared instance.
type Controller struct {
	mu sync.Mutex

	draft     *models.Draft
	persist   Persistence
	submitter Submitter
	logger    logger.Logger
	now       func() time.Time

	fieldErrors  map[models.Step][]validation.FieldError
	isSubmitting bool
	submitted    bool
	cancelled    bool
}

func NewController(draft *models.Draft, persist Persistence, submitter Submitter, log logger.Logger) *Controller {
	return &Controller{
		draft:       draft,
		persist:     persist,
		submitter:   submitter,
		logger:      log.WithFields(map[string]interface{}{"draftId": draft.ID}),
		now:         func() time.Time { return time.Now().UTC() },
		fieldErrors: make(map[models.Step][]validation.FieldError),
	}
}

// State reports the lifecycle phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.submitted:
		return StateSubmitted
	case c.isSubmitting:
		return StateSubmitting
	case c.cancelled:
		return StateCancelled
	default:
		return StateEditing
	}
}

// CurrentStep returns the active wizard step.
func (c *Controller) CurrentStep() models.Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.CurrentStep
}

// Draft returns a deep copy for rendering; callers never get the live
// aggregate.
func (c *Controller) Draft() *models.Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.Clone()
}

// StepErrors returns the last recorded validation errors for a step.
func (c *Controller) StepErrors(step models.Step) []validation.FieldError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]validation.FieldError(nil), c.fieldErrors[step]...)
}

// Validate re-runs the step's rules on demand and records the result.
func (c *Controller) Validate(step models.Step) []validation.FieldError {
	c.mu.Lock()
	defer c.mu.Unlock()
	errs := validation.ValidateStep(step, c.draft, c.now())
	c.fieldErrors[step] = errs
	return append([]validation.FieldError(nil), errs...)
}

// GoNext validates the current step; on success it marks the step completed
// and advances. On failure the collected field errors are recorded and an
// error is returned — the pointer never moves past an invalid step.
func (c *Controller) GoNext() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutableState(); err != nil {
		return err
	}

	step := c.draft.CurrentStep
	errs := validation.ValidateStep(step, c.draft, c.now())
	c.fieldErrors[step] = errs
	if len(errs) > 0 {
		metrics.ValidationFailures.WithLabelValues(string(step)).Inc()
		return stderrors.NewValidationFailedError(string(step), len(errs))
	}

	c.draft.CompletedSteps[step] = true
	metrics.StepsCompleted.WithLabelValues(string(step)).Inc()

	if step == lastStep() {
		return ErrAtLastStep
	}
	c.draft.CurrentStep = nextStep(step)
	c.draft.UpdatedAt = c.now()

	c.logger.Debug("advanced to next step", map[string]interface{}{
		"from": step,
		"to":   c.draft.CurrentStep,
	})
	return nil
}

// GoPrevious moves back one step. Completion and recorded errors of the step
// being left are preserved.
func (c *Controller) GoPrevious() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutableState(); err != nil {
		return err
	}
	if c.draft.CurrentStep == firstStep() {
		return ErrAtFirstStep
	}
	c.draft.CurrentStep = prevStep(c.draft.CurrentStep)
	c.draft.UpdatedAt = c.now()
	return nil
}

// JumpTo revisits a completed step (or the current one). Jumping ahead into
// an unvalidated step is rejected.
func (c *Controller) JumpTo(step models.Step) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutableState(); err != nil {
		return err
	}
	if stepIndex(step) < 0 {
		return stderrors.NewStepNotReachableError(string(step))
	}
	if step != c.draft.CurrentStep && !c.draft.StepCompleted(step) {
		return stderrors.NewStepNotReachableError(string(step))
	}
	c.draft.CurrentStep = step
	return nil
}

// UpdateDraft merges a partial patch into the draft and clears recorded
// errors for the touched fields. It does not re-validate; validation happens
// on GoNext or an explicit Validate call.
//
// Changing the application type after later steps were completed resets
// completion beyond step one and prunes documents to the new required set.
func (c *Controller) UpdateDraft(patch DraftPatch) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutableState(); err != nil {
		return err
	}

	typeChanged := patch.ApplicationType != nil &&
		c.draft.ApplicationType != "" &&
		*patch.ApplicationType != c.draft.ApplicationType

	touched := patch.apply(c.draft)
	if len(touched) == 0 {
		return nil
	}
	c.draft.UpdatedAt = c.now()
	c.clearFieldErrors(touched)

	if typeChanged {
		for step := range c.draft.CompletedSteps {
			if step != models.StepApplicationType {
				delete(c.draft.CompletedSteps, step)
			}
		}
		dropped := documents.PruneToRequired(c.draft)
		c.logger.Info("application type changed, downstream progress reset", map[string]interface{}{
			"applicationType":   c.draft.ApplicationType,
			"droppedCategories": dropped,
		})
	}

	return nil
}

// AttachDocument adds an uploaded ref to the draft. The category must be
// required by the current application type.
func (c *Controller) AttachDocument(ref models.DocumentRef) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutableState(); err != nil {
		return err
	}
	if !documents.Requires(c.draft.ApplicationType, ref.Category) {
		return stderrors.NewUploadInvalidTypeError(string(ref.Category))
	}
	c.draft.Documents[ref.Category] = append(c.draft.Documents[ref.Category], ref)
	c.draft.UpdatedAt = c.now()
	c.clearFieldErrors([]string{"documents." + string(ref.Category)})
	return nil
}

// ApplyDocumentUpdate reflects a review transition back into the draft's
// document list, matching by document ID.
func (c *Controller) ApplyDocumentUpdate(ref models.DocumentRef) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutableState(); err != nil {
		return err
	}
	refs := c.draft.Documents[ref.Category]
	for i := range refs {
		if refs[i].ID == ref.ID {
			refs[i] = ref.Clone()
			c.draft.UpdatedAt = c.now()
			return nil
		}
	}
	return stderrors.NewDraftNotFoundError(ref.ID)
}

// SaveDraft snapshots the draft through the persistence collaborator. It is
// idempotent and legal from any non-terminal state; a failure leaves the
// draft, the step pointer and all unsaved edits untouched.
func (c *Controller) SaveDraft(ctx context.Context) error {
	c.mu.Lock()
	if err := c.mutableState(); err != nil {
		c.mu.Unlock()
		return err
	}
	snapshot := c.draft.Clone()
	c.mu.Unlock()

	if err := c.persist.SaveDraft(ctx, snapshot); err != nil {
		metrics.DraftsSaved.WithLabelValues("failed").Inc()
		c.logger.Warn("draft save failed", map[string]interface{}{"error": err.Error()})
		return stderrors.NewDraftSaveFailedError(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.draft.IsDraftSaved = true
	c.draft.LastSavedAt = &now
	metrics.DraftsSaved.WithLabelValues("saved").Inc()
	return nil
}

// Submit hands the finished draft to the submission collaborator. Only legal
// from the review step with every step completed. The in-flight guard is set
// synchronously before the collaborator call so a second Submit observes it
// immediately; exactly one submission can be in flight.
func (c *Controller) Submit(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.submitted {
		c.mu.Unlock()
		return "", stderrors.NewDraftTerminalError(c.draft.ID)
	}
	if c.isSubmitting {
		c.mu.Unlock()
		return "", stderrors.NewSubmissionInFlightError()
	}
	if c.cancelled {
		c.mu.Unlock()
		return "", ErrCancelled
	}
	if c.draft.CurrentStep != models.StepReview {
		c.mu.Unlock()
		return "", ErrNotReviewStep
	}

	// Close out the review step itself the same way GoNext would.
	errs := validation.ValidateStep(models.StepReview, c.draft, c.now())
	c.fieldErrors[models.StepReview] = errs
	if len(errs) > 0 {
		c.mu.Unlock()
		metrics.ValidationFailures.WithLabelValues(string(models.StepReview)).Inc()
		return "", stderrors.NewValidationFailedError(string(models.StepReview), len(errs))
	}
	c.draft.CompletedSteps[models.StepReview] = true

	for _, def := range stepTable {
		if !c.draft.StepCompleted(def.ID) {
			c.mu.Unlock()
			return "", stderrors.NewValidationFailedError(string(def.ID), 1)
		}
	}

	c.isSubmitting = true
	snapshot := c.draft.Clone()
	c.mu.Unlock()

	start := time.Now()
	appID, err := c.submitter.SubmitApplication(ctx, snapshot)
	metrics.SubmissionDuration.Observe(time.Since(start).Seconds())

	c.mu.Lock()
	defer c.mu.Unlock()
	c.isSubmitting = false
	if err != nil {
		// Back to Editing(Review); the cause is opaque here and is handed to
		// the caller verbatim. No automatic retry.
		metrics.Submissions.WithLabelValues("failed").Inc()
		c.logger.Error("submission failed", map[string]interface{}{"error": err.Error()})
		return "", stderrors.NewSubmissionFailedError(err)
	}

	c.submitted = true
	metrics.Submissions.WithLabelValues("submitted").Inc()
	c.logger.Info("application submitted", map[string]interface{}{"applicationId": appID})
	return appID, nil
}

// Cancel discards the session. Whether to confirm destructive loss of an
// unsaved draft is the calling layer's policy; the state machine only
// reports it.
func (c *Controller) Cancel() (unsavedChanges bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitted {
		return false, stderrors.NewDraftTerminalError(c.draft.ID)
	}
	if c.isSubmitting {
		return false, stderrors.NewSubmissionInFlightError()
	}
	c.cancelled = true
	return !c.draft.IsDraftSaved, nil
}

// Summary computes the applicant's real progress; nothing here is sampled.
func (c *Controller) Summary() models.ApplicantSummary {
	c.mu.Lock()
	defer c.mu.Unlock()

	completed := 0
	for _, def := range stepTable {
		if c.draft.StepCompleted(def.ID) {
			completed++
		}
	}

	uploaded, approved := 0, 0
	for _, refs := range c.draft.Documents {
		for _, ref := range refs {
			uploaded++
			if ref.Status == models.DocumentStatusApproved {
				approved++
			}
		}
	}

	return models.ApplicantSummary{
		DraftID:           c.draft.ID,
		CurrentStep:       c.draft.CurrentStep,
		StepsCompleted:    completed,
		StepsTotal:        len(stepTable),
		Progress:          float64(completed) / float64(len(stepTable)),
		DocumentsRequired: len(documents.RequiredCategories(c.draft.ApplicationType)),
		DocumentsUploaded: uploaded,
		DocumentsApproved: approved,
	}
}

// mutableState rejects mutations in terminal or in-flight states. Callers
// hold the lock.
func (c *Controller) mutableState() error {
	if c.submitted {
		return stderrors.NewDraftTerminalError(c.draft.ID)
	}
	if c.isSubmitting {
		return stderrors.NewSubmissionInFlightError()
	}
	if c.cancelled {
		return ErrCancelled
	}
	return nil
}

func (c *Controller) clearFieldErrors(touched []string) {
	for step, errs := range c.fieldErrors {
		kept := errs[:0]
		for _, fe := range errs {
			if !contains(touched, fe.Field) {
				kept = append(kept, fe)
			}
		}
		c.fieldErrors[step] = kept
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
