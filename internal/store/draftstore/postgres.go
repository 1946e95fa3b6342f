// internal/store/draftstore/postgres.go
package draftstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"elab-credentialing/internal/common/errors"
	"elab-credentialing/internal/common/logger"
	"elab-credentialing/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

// PostgresStore persists drafts to the application_drafts table. The full
// draft travels as a JSONB payload; the indexed columns exist only so support
// queries do not have to dig into the blob.
type PostgresStore struct {
	db     *sql.DB
	schema *gojsonschema.Schema
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) (*PostgresStore, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(draftSchema))
	if err != nil {
		return nil, fmt.Errorf("compile draft schema: %w", err)
	}
	return &PostgresStore{
		db:     db,
		schema: schema,
		logger: log.WithFields(map[string]interface{}{"component": "draftstore"}),
	}, nil
}

// SaveDraft upserts the draft. The payload is validated against the draft
// schema before it touches the table.
func (s *PostgresStore) SaveDraft(ctx context.Context, draft *models.Draft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return errors.NewDraftSaveFailedError(fmt.Errorf("marshal draft: %w", err))
	}

	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return errors.NewDraftSaveFailedError(fmt.Errorf("schema validation: %w", err))
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return errors.NewDraftSaveFailedError(fmt.Errorf("draft payload invalid: %s", strings.Join(details, "; ")))
	}

	savedAt := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO application_drafts (
			id, applicant_id, application_type, current_step, payload, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (id) DO UPDATE SET
			application_type = EXCLUDED.application_type,
			current_step = EXCLUDED.current_step,
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at`,
		draft.ID,
		draft.ApplicantID,
		string(draft.ApplicationType),
		string(draft.CurrentStep),
		payload,
		savedAt,
	)
	if err != nil {
		s.logger.Error("draft upsert failed", map[string]interface{}{
			"draftId": draft.ID,
			"error":   err,
		})
		return errors.NewDraftSaveFailedError(fmt.Errorf("upsert failed: %w", err))
	}

	s.logger.Debug("draft saved", map[string]interface{}{
		"draftId":     draft.ID,
		"currentStep": draft.CurrentStep,
	})
	return nil
}

// LoadDraft fetches a draft by ID.
func (s *PostgresStore) LoadDraft(ctx context.Context, draftID string) (*models.Draft, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM application_drafts WHERE id = $1`, draftID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, errors.NewDraftNotFoundError(draftID)
	}
	if err != nil {
		return nil, errors.NewDatabaseConnectionFailedError(fmt.Errorf("load draft: %w", err))
	}

	var draft models.Draft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return nil, errors.NewDraftSaveFailedError(fmt.Errorf("unmarshal draft %s: %w", draftID, err))
	}
	return &draft, nil
}

// DeleteDraft removes a cancelled draft. Missing rows are not an error.
func (s *PostgresStore) DeleteDraft(ctx context.Context, draftID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM application_drafts WHERE id = $1`, draftID)
	if err != nil {
		return errors.NewDatabaseConnectionFailedError(fmt.Errorf("delete draft: %w", err))
	}
	return nil
}
