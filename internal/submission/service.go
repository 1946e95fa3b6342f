// internal/submission/service.go

// Package submission converts finished drafts into applications. The insert
// into Postgres is the commit point; search indexing and notifications hang
// off it as best-effort followups.
package submission

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	stderrors "elab-credentialing/internal/common/errors"
	"elab-credentialing/internal/common/logger"
	"elab-credentialing/internal/common/observability"
	"elab-credentialing/internal/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// Notifier is told about accepted submissions. Implementations must not
// block; failures stay inside the notifier.
type Notifier interface {
	ApplicationSubmitted(ctx context.Context, app *models.Application)
}

type Service struct {
	db       *sql.DB
	indexer  *Indexer
	notifier Notifier
	obs      *observability.Observability
	logger   logger.Logger
}

func NewService(db *sql.DB, indexer *Indexer, notifier Notifier, obs *observability.Observability, log logger.Logger) *Service {
	return &Service{
		db:       db,
		indexer:  indexer,
		notifier: notifier,
		obs:      obs,
		logger:   log.WithFields(map[string]interface{}{"component": "submission"}),
	}
}

// SubmitApplication inserts the application record and returns its ID. One
// live application per applicant and type: a previously rejected one does not
// block a fresh attempt.
func (s *Service) SubmitApplication(ctx context.Context, draft *models.Draft) (string, error) {
	if s.obs != nil {
		var span trace.Span
		ctx, span = s.obs.StartSpan(ctx, "submission.SubmitApplication")
		defer span.End()
	}

	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM applications
			WHERE applicant_id = $1 AND application_type = $2 AND status != 'rejected'
		)`, draft.ApplicantID, string(draft.ApplicationType)).Scan(&exists)
	if err != nil {
		return "", stderrors.NewDatabaseConnectionFailedError(fmt.Errorf("duplicate check failed: %w", err))
	}
	if exists {
		return "", stderrors.NewDuplicateApplicationError(draft.ApplicantID, string(draft.ApplicationType))
	}

	app := &models.Application{
		ID:              uuid.New().String(),
		ApplicantID:     draft.ApplicantID,
		ApplicationType: draft.ApplicationType,
		TargetCountry:   draft.TargetCountry,
		Urgency:         draft.Urgency,
		Status:          models.ApplicationStatusSubmitted,
		Payload:         draft,
		SubmittedAt:     time.Now().UTC(),
	}

	payloadJSON, err := json.Marshal(draft)
	if err != nil {
		return "", stderrors.NewSubmissionFailedError(fmt.Errorf("marshal payload: %w", err))
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO applications (
			id, applicant_id, application_type, target_country,
			urgency, status, payload, submitted_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		app.ID,
		app.ApplicantID,
		string(app.ApplicationType),
		app.TargetCountry,
		string(app.Urgency),
		string(app.Status),
		payloadJSON,
		app.SubmittedAt,
	)
	if err != nil {
		if s.obs != nil {
			s.obs.RecordSubmission(ctx, "failure")
		}
		return "", stderrors.NewSubmissionFailedError(fmt.Errorf("insert failed: %w", err))
	}
	if s.obs != nil {
		s.obs.RecordSubmission(ctx, "success")
	}

	s.writeAuditLog(ctx, app)

	// The applicant already has their ID at this point; indexing and
	// notification failures are logged, not surfaced.
	if s.indexer != nil {
		if err := s.indexer.IndexApplication(ctx, app); err != nil {
			s.logger.Warn("application indexing failed", map[string]interface{}{
				"applicationId": app.ID,
				"error":         err,
			})
		}
	}
	if s.notifier != nil {
		s.notifier.ApplicationSubmitted(ctx, app)
	}

	s.logger.Info("application submitted", map[string]interface{}{
		"applicationId":   app.ID,
		"applicantId":     app.ApplicantID,
		"applicationType": app.ApplicationType,
		"urgency":         app.Urgency,
	})
	return app.ID, nil
}

// writeAuditLog records the submission event. Non-critical: a failed audit
// insert never fails the submission.
func (s *Service) writeAuditLog(ctx context.Context, app *models.Application) {
	detailsJSON, err := json.Marshal(map[string]interface{}{
		"applicantId":     app.ApplicantID,
		"applicationType": app.ApplicationType,
		"targetCountry":   app.TargetCountry,
		"urgency":         app.Urgency,
	})
	if err != nil {
		s.logger.Warn("failed to marshal audit log details", map[string]interface{}{
			"error": err,
		})
		detailsJSON = []byte("{}")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"application_submitted",
		"application",
		app.ID,
		detailsJSON,
		app.SubmittedAt,
	)
	if err != nil {
		s.logger.Warn("audit log insert failed", map[string]interface{}{
			"applicationId": app.ID,
			"error":         err,
		})
	}
}

// GetApplication loads one submitted application by ID.
func (s *Service) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	var (
		app     models.Application
		appType string
		urgency string
		status  string
		payload []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, applicant_id, application_type, target_country,
		       urgency, status, payload, submitted_at
		FROM applications WHERE id = $1`, id).Scan(
		&app.ID,
		&app.ApplicantID,
		&appType,
		&app.TargetCountry,
		&urgency,
		&status,
		&payload,
		&app.SubmittedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("application %s not found", id)
	}
	if err != nil {
		return nil, stderrors.NewDatabaseConnectionFailedError(fmt.Errorf("load application: %w", err))
	}

	app.ApplicationType = models.ApplicationType(appType)
	app.Urgency = models.Urgency(urgency)
	app.Status = models.ApplicationStatus(status)

	var draft models.Draft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return nil, fmt.Errorf("unmarshal application payload %s: %w", id, err)
	}
	app.Payload = &draft
	return &app, nil
}

// UpdateStatus moves a submitted application through its backend lifecycle
// and keeps the search index in step.
func (s *Service) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE applications SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), time.Now().UTC())
	if err != nil {
		return stderrors.NewDatabaseConnectionFailedError(fmt.Errorf("update application status: %w", err))
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("application %s not found", id)
	}

	if s.indexer != nil {
		if err := s.indexer.UpdateStatus(ctx, id, status); err != nil {
			s.logger.Warn("application index status update failed", map[string]interface{}{
				"applicationId": id,
				"error":         err,
			})
		}
	}
	return nil
}
