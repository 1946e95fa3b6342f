// internal/store/draftstore/cache.go
package draftstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"elab-credentialing/internal/common/logger"
	"elab-credentialing/internal/models"

	"github.com/redis/go-redis/v9"
)

const draftKeyPrefix = "draft:"

// Cache keeps the latest saved snapshot of each draft in Redis so a returning
// applicant resumes without a Postgres round trip. It is strictly a read-side
// accelerator; Postgres stays the source of truth.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCache(client *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "draftcache"}),
	}
}

// Put stores the draft snapshot under its ID with the configured TTL.
func (c *Cache) Put(ctx context.Context, draft *models.Draft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft for cache: %w", err)
	}
	if err := c.client.Set(ctx, draftKeyPrefix+draft.ID, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Get returns the cached snapshot, or (nil, nil) on a miss.
func (c *Cache) Get(ctx context.Context, draftID string) (*models.Draft, error) {
	payload, err := c.client.Get(ctx, draftKeyPrefix+draftID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var draft models.Draft
	if err := json.Unmarshal(payload, &draft); err != nil {
		// A corrupt entry is treated as a miss; Postgres will backfill it.
		c.logger.Warn("dropping corrupt cache entry", map[string]interface{}{
			"draftId": draftID,
			"error":   err,
		})
		c.client.Del(ctx, draftKeyPrefix+draftID)
		return nil, nil
	}
	return &draft, nil
}

// Invalidate drops the cached snapshot, e.g. after cancellation.
func (c *Cache) Invalidate(ctx context.Context, draftID string) error {
	if err := c.client.Del(ctx, draftKeyPrefix+draftID).Err(); err != nil {
		return fmt.Errorf("cache del: %w", err)
	}
	return nil
}
