// internal/application/wizard/sessions_test.go
package wizard

import (
	"context"
	"sync"
	"testing"
	"time"

	stderrors "elab-credentialing/internal/common/errors"
	"elab-credentialing/internal/common/logger"
	"elab-credentialing/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDraftStore struct {
	fakePersistence
	mu      sync.Mutex
	drafts  map[string]*models.Draft
	deleted []string
}

func newFakeDraftStore() *fakeDraftStore {
	return &fakeDraftStore{drafts: make(map[string]*models.Draft)}
}

func (f *fakeDraftStore) SaveDraft(ctx context.Context, d *models.Draft) error {
	if err := f.fakePersistence.SaveDraft(ctx, d); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drafts[d.ID] = d
	return nil
}

func (f *fakeDraftStore) LoadDraft(ctx context.Context, draftID string) (*models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drafts[draftID]
	if !ok {
		return nil, stderrors.NewDraftNotFoundError(draftID)
	}
	return d.Clone(), nil
}

func (f *fakeDraftStore) DeleteDraft(ctx context.Context, draftID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.drafts, draftID)
	f.deleted = append(f.deleted, draftID)
	return nil
}

func newTestSessionManager(t *testing.T) (*SessionManager, *fakeDraftStore) {
	store := newFakeDraftStore()
	m := NewSessionManager(store, newFakeSubmitter(), time.Minute, logger.NewTestLogger(t))
	return m, store
}

func TestSessionManager_OpenAndResume(t *testing.T) {
	m, _ := newTestSessionManager(t)

	ctrl := m.Open("applicant-001")
	draftID := ctrl.Draft().ID
	assert.Equal(t, 1, m.Len())

	// Resuming a live session hands back the same controller.
	again, err := m.Resume(context.Background(), draftID)
	require.NoError(t, err)
	assert.Same(t, ctrl, again)
}

func TestSessionManager_ResumeFromStore(t *testing.T) {
	m, store := newTestSessionManager(t)

	ctrl := m.Open("applicant-001")
	draftID := ctrl.Draft().ID
	country := "SA"
	appType := models.ApplicationTypeSheryan
	require.NoError(t, ctrl.UpdateDraft(DraftPatch{ApplicationType: &appType, TargetCountry: &country}))
	require.NoError(t, m.Close(context.Background(), draftID, false))
	assert.Equal(t, 0, m.Len())
	require.Contains(t, store.drafts, draftID)

	resumed, err := m.Resume(context.Background(), draftID)
	require.NoError(t, err)
	assert.NotSame(t, ctrl, resumed)
	assert.Equal(t, "SA", resumed.Draft().TargetCountry)
	assert.Equal(t, 1, m.Len())
}

func TestSessionManager_ResumeUnknownDraft(t *testing.T) {
	m, _ := newTestSessionManager(t)

	_, err := m.Resume(context.Background(), "ghost")
	assert.Equal(t, stderrors.ErrCodeDraftNotFound, stderrors.CodeOf(err))
}

func TestSessionManager_CloseDiscard(t *testing.T) {
	m, store := newTestSessionManager(t)

	ctrl := m.Open("applicant-001")
	draftID := ctrl.Draft().ID
	require.NoError(t, ctrl.SaveDraft(context.Background()))

	require.NoError(t, m.Close(context.Background(), draftID, true))
	assert.Equal(t, StateCancelled, ctrl.State())
	assert.Contains(t, store.deleted, draftID)
	assert.NotContains(t, store.drafts, draftID)
}

func TestSessionManager_SweepIdle(t *testing.T) {
	m, store := newTestSessionManager(t)

	current := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }

	stale := m.Open("applicant-001")
	staleID := stale.Draft().ID

	current = current.Add(2 * time.Minute)
	fresh := m.Open("applicant-002")

	evicted := m.SweepIdle(context.Background())
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, m.Len())
	assert.Contains(t, store.drafts, staleID, "evicted session is saved first")

	_, err := m.Resume(context.Background(), fresh.Draft().ID)
	assert.NoError(t, err)
}

func TestSessionManager_SaveAllSkipsTerminalSessions(t *testing.T) {
	m, store := newTestSessionManager(t)

	editing := m.Open("applicant-001")
	cancelled := m.Open("applicant-002")
	_, err := cancelled.Cancel()
	require.NoError(t, err)

	m.SaveAll(context.Background())
	assert.Contains(t, store.drafts, editing.Draft().ID)
	assert.NotContains(t, store.drafts, cancelled.Draft().ID)
}
