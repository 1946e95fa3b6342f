// internal/store/documentstore/postgres.go

// Package documentstore holds uploaded document bytes and their metadata in
// Postgres. Each ref is immutable once written; re-uploads insert a new row
// that points at the superseded one.
package documentstore

import (
	"context"
	"database/sql"
	"fmt"

	"elab-credentialing/internal/common/errors"
	"elab-credentialing/internal/common/logger"
	"elab-credentialing/internal/models"
)

type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "documentstore"}),
	}
}

// Put inserts the document row. Rows are never updated: the ref carries the
// version and supersedes linkage, so history stays queryable.
func (s *PostgresStore) Put(ctx context.Context, ref models.DocumentRef, content []byte) error {
	var supersedes sql.NullString
	if ref.SupersedesID != "" {
		supersedes = sql.NullString{String: ref.SupersedesID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (
			id, category, file_name, content_type, size_bytes,
			version, supersedes_id, status, uploaded_at, content
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		ref.ID,
		string(ref.Category),
		ref.FileName,
		ref.ContentType,
		ref.SizeBytes,
		ref.Version,
		supersedes,
		string(ref.Status),
		ref.UploadedAt,
		content,
	)
	if err != nil {
		s.logger.Error("document insert failed", map[string]interface{}{
			"documentId": ref.ID,
			"category":   ref.Category,
			"error":      err,
		})
		return fmt.Errorf("insert document %s: %w", ref.ID, err)
	}
	return nil
}

// Get fetches the metadata and bytes for one document.
func (s *PostgresStore) Get(ctx context.Context, id string) (models.DocumentRef, []byte, error) {
	var (
		ref        models.DocumentRef
		category   string
		status     string
		supersedes sql.NullString
		content    []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, category, file_name, content_type, size_bytes,
		       version, supersedes_id, status, uploaded_at, content
		FROM documents WHERE id = $1`, id).Scan(
		&ref.ID,
		&category,
		&ref.FileName,
		&ref.ContentType,
		&ref.SizeBytes,
		&ref.Version,
		&supersedes,
		&status,
		&ref.UploadedAt,
		&content,
	)
	if err == sql.ErrNoRows {
		return models.DocumentRef{}, nil, fmt.Errorf("document %s not found", id)
	}
	if err != nil {
		return models.DocumentRef{}, nil, errors.NewDatabaseConnectionFailedError(fmt.Errorf("load document: %w", err))
	}

	ref.Category = models.DocumentCategory(category)
	ref.Status = models.DocumentStatus(status)
	if supersedes.Valid {
		ref.SupersedesID = supersedes.String
	}
	return ref, content, nil
}

// UpdateStatus records a review outcome on the stored row so support tooling
// sees the same status the draft does.
func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, status models.DocumentStatus) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE documents SET status = $2 WHERE id = $1`,
		id, string(status))
	if err != nil {
		return errors.NewDatabaseConnectionFailedError(fmt.Errorf("update document status: %w", err))
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("document %s not found", id)
	}
	return nil
}
