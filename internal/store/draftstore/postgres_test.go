// internal/store/draftstore/postgres_test.go
package draftstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	stderrors "elab-credentialing/internal/common/errors"
	"elab-credentialing/internal/common/logger"
	"elab-credentialing/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDraft() *models.Draft {
	d := models.NewDraft("applicant-001")
	d.ApplicationType = models.ApplicationTypeLicenseRenewal
	d.TargetCountry = "SA"
	return d
}

func newTestStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewPostgresStore(db, logger.NewTestLogger(t))
	require.NoError(t, err)
	return store, mock
}

func TestPostgresStore_SaveDraft(t *testing.T) {
	store, mock := newTestStore(t)
	d := testDraft()

	mock.ExpectExec(`INSERT INTO application_drafts`).
		WithArgs(
			d.ID,
			"applicant-001",
			"license_renewal",
			"application_type",
			sqlmock.AnyArg(), // JSONB payload
			sqlmock.AnyArg(), // saved_at
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.SaveDraft(context.Background(), d)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveDraft_UpsertError(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec(`INSERT INTO application_drafts`).
		WillReturnError(errors.New("connection reset"))

	err := store.SaveDraft(context.Background(), testDraft())
	assert.Equal(t, stderrors.ErrCodeDraftSaveFailed, stderrors.CodeOf(err))
	assert.True(t, stderrors.IsRetryable(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveDraft_SchemaRejectsBadStatus(t *testing.T) {
	store, _ := newTestStore(t)

	d := testDraft()
	d.Documents[models.DocumentCategoryPassport] = []models.DocumentRef{
		{ID: "doc-1", Category: models.DocumentCategoryPassport, Status: "lost_in_mail"},
	}

	// No Exec expectation: the payload must be rejected before the table is
	// touched.
	err := store.SaveDraft(context.Background(), d)
	assert.Equal(t, stderrors.ErrCodeDraftSaveFailed, stderrors.CodeOf(err))
}

func TestPostgresStore_LoadDraft(t *testing.T) {
	store, mock := newTestStore(t)
	want := testDraft()
	payload, err := json.Marshal(want)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT payload FROM application_drafts`).
		WithArgs(want.ID).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payload))

	got, err := store.LoadDraft(context.Background(), want.ID)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, models.ApplicationTypeLicenseRenewal, got.ApplicationType)
	assert.Equal(t, models.StepApplicationType, got.CurrentStep)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadDraft_NotFound(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT payload FROM application_drafts`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	_, err := store.LoadDraft(context.Background(), "ghost")
	assert.Equal(t, stderrors.ErrCodeDraftNotFound, stderrors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteDraft(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec(`DELETE FROM application_drafts`).
		WithArgs("draft-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, store.DeleteDraft(context.Background(), "draft-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
