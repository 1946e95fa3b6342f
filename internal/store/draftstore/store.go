// internal/store/draftstore/store.go

// Package draftstore persists in-progress application drafts. Postgres holds
// the durable copy; Redis caches the latest snapshot for fast resume.
package draftstore

import (
	"context"
	"time"

	"elab-credentialing/internal/common/logger"
	"elab-credentialing/internal/common/observability"
	"elab-credentialing/internal/models"
)

// Store is the read-through composition of the Postgres store and the Redis
// cache. It satisfies the wizard's persistence collaborator.
type Store struct {
	pg     *PostgresStore
	cache  *Cache
	obs    *observability.Observability
	logger logger.Logger
}

func New(pg *PostgresStore, cache *Cache, log logger.Logger) *Store {
	return &Store{pg: pg, cache: cache, logger: log}
}

// WithObservability attaches the save-duration instrument.
func (s *Store) WithObservability(obs *observability.Observability) *Store {
	s.obs = obs
	return s
}

// SaveDraft writes to Postgres and refreshes the cache. A cache failure is
// logged and swallowed: the durable write already succeeded.
func (s *Store) SaveDraft(ctx context.Context, draft *models.Draft) error {
	start := time.Now()
	if err := s.pg.SaveDraft(ctx, draft); err != nil {
		if s.obs != nil {
			s.obs.RecordSaveDuration(ctx, time.Since(start), "failed")
		}
		return err
	}
	if s.obs != nil {
		s.obs.RecordSaveDuration(ctx, time.Since(start), "saved")
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, draft); err != nil {
			s.logger.Warn("draft cache refresh failed", map[string]interface{}{
				"draftId": draft.ID,
				"error":   err,
			})
		}
	}
	return nil
}

// LoadDraft checks the cache first and backfills it on a Postgres hit.
func (s *Store) LoadDraft(ctx context.Context, draftID string) (*models.Draft, error) {
	if s.cache != nil {
		draft, err := s.cache.Get(ctx, draftID)
		if err != nil {
			s.logger.Warn("draft cache read failed", map[string]interface{}{
				"draftId": draftID,
				"error":   err,
			})
		} else if draft != nil {
			return draft, nil
		}
	}

	draft, err := s.pg.LoadDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, draft); err != nil {
			s.logger.Warn("draft cache backfill failed", map[string]interface{}{
				"draftId": draftID,
				"error":   err,
			})
		}
	}
	return draft, nil
}

// DeleteDraft removes the draft from both Postgres and the cache.
func (s *Store) DeleteDraft(ctx context.Context, draftID string) error {
	if err := s.pg.DeleteDraft(ctx, draftID); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, draftID); err != nil {
			s.logger.Warn("draft cache invalidation failed", map[string]interface{}{
				"draftId": draftID,
				"error":   err,
			})
		}
	}
	return nil
}
