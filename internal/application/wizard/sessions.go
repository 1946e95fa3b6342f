// internal/application/wizard/sessions.go
package wizard

import (
	"context"
	"sync"
	"time"

	stderrors "elab-credentialing/internal/common/errors"
	"elab-credentialing/internal/common/logger"
	"elab-credentialing/internal/models"
)

// DraftStore is the persistence surface the session manager needs beyond the
// controller's own save collaborator.
type DraftStore interface {
	Persistence
	LoadDraft(ctx context.Context, draftID string) (*models.Draft, error)
	DeleteDraft(ctx context.Context, draftID string) error
}

type session struct {
	controller  *Controller
	lastTouched time.Time
}

// SessionManager hands out one controller per active draft. A draft not
// touched within the idle timeout is saved and evicted; resuming it later
// loads the saved snapshot back from the store.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*session

	store       DraftStore
	submitter   Submitter
	logger      logger.Logger
	idleTimeout time.Duration
	now         func() time.Time
}

func NewSessionManager(store DraftStore, submitter Submitter, idleTimeout time.Duration, log logger.Logger) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*session),
		store:       store,
		submitter:   submitter,
		logger:      log.WithFields(map[string]interface{}{"component": "sessions"}),
		idleTimeout: idleTimeout,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Open starts a fresh draft for the applicant and returns its controller.
func (m *SessionManager) Open(applicantID string) *Controller {
	draft := models.NewDraft(applicantID)
	ctrl := NewController(draft, m.store, m.submitter, m.logger)

	m.mu.Lock()
	m.sessions[draft.ID] = &session{controller: ctrl, lastTouched: m.now()}
	m.mu.Unlock()

	m.logger.Info("session opened", map[string]interface{}{
		"draftId":     draft.ID,
		"applicantId": applicantID,
	})
	return ctrl
}

// Resume returns the live controller for a draft, loading the saved snapshot
// if the session was evicted or the process restarted.
func (m *SessionManager) Resume(ctx context.Context, draftID string) (*Controller, error) {
	m.mu.Lock()
	if s, ok := m.sessions[draftID]; ok {
		s.lastTouched = m.now()
		ctrl := s.controller
		m.mu.Unlock()
		return ctrl, nil
	}
	m.mu.Unlock()

	draft, err := m.store.LoadDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	ctrl := NewController(draft, m.store, m.submitter, m.logger)

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another Resume may have raced us here; the first one wins.
	if s, ok := m.sessions[draftID]; ok {
		s.lastTouched = m.now()
		return s.controller, nil
	}
	m.sessions[draftID] = &session{controller: ctrl, lastTouched: m.now()}
	return ctrl, nil
}

// Touch refreshes the idle clock for a draft.
func (m *SessionManager) Touch(draftID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[draftID]; ok {
		s.lastTouched = m.now()
	}
}

// Close ends a session. With discard set the draft is cancelled and its saved
// snapshot deleted; otherwise the draft is saved for later resumption.
func (m *SessionManager) Close(ctx context.Context, draftID string, discard bool) error {
	m.mu.Lock()
	s, ok := m.sessions[draftID]
	if ok {
		delete(m.sessions, draftID)
	}
	m.mu.Unlock()

	if !ok {
		return stderrors.NewDraftNotFoundError(draftID)
	}

	if discard {
		if _, err := s.controller.Cancel(); err != nil {
			return err
		}
		return m.store.DeleteDraft(ctx, draftID)
	}

	// Submitted and cancelled controllers have nothing left to save.
	if state := s.controller.State(); state != StateEditing {
		return nil
	}
	return s.controller.SaveDraft(ctx)
}

// Len reports the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// SweepIdle saves and evicts sessions idle past the timeout. Returns the
// number evicted.
func (m *SessionManager) SweepIdle(ctx context.Context) int {
	cutoff := m.now().Add(-m.idleTimeout)

	m.mu.Lock()
	var idle []*session
	for id, s := range m.sessions {
		if s.lastTouched.Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		if s.controller.State() != StateEditing {
			continue
		}
		if err := s.controller.SaveDraft(ctx); err != nil {
			m.logger.Warn("idle session save failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if len(idle) > 0 {
		m.logger.Info("idle sessions evicted", map[string]interface{}{
			"count": len(idle),
		})
	}
	return len(idle)
}

// SaveAll snapshots every live editing session, used at shutdown.
func (m *SessionManager) SaveAll(ctx context.Context) {
	m.mu.Lock()
	all := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.Unlock()

	for _, s := range all {
		if s.controller.State() != StateEditing {
			continue
		}
		if err := s.controller.SaveDraft(ctx); err != nil {
			m.logger.Warn("shutdown session save failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

// Run sweeps on the given interval until the context is cancelled.
func (m *SessionManager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.SweepIdle(ctx)
		}
	}
}
