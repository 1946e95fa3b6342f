// internal/store/draftstore/cache_test.go
package draftstore

import (
	"context"
	"testing"
	"time"

	"elab-credentialing/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCache(client, 15*time.Minute, logger.NewTestLogger(t)), mr
}

func TestCache_PutGet(t *testing.T) {
	cache, _ := newTestCache(t)
	d := testDraft()

	require.NoError(t, cache.Put(context.Background(), d))

	got, err := cache.Get(context.Background(), d.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, d.ID, got.ID)
	assert.Equal(t, d.ApplicationType, got.ApplicationType)
}

func TestCache_GetMiss(t *testing.T) {
	cache, _ := newTestCache(t)

	got, err := cache.Get(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestCache_TTLExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	d := testDraft()
	require.NoError(t, cache.Put(context.Background(), d))

	mr.FastForward(16 * time.Minute)

	got, err := cache.Get(context.Background(), d.ID)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestCache_CorruptEntryTreatedAsMiss(t *testing.T) {
	cache, mr := newTestCache(t)
	require.NoError(t, mr.Set(draftKeyPrefix+"draft-1", "{not json"))

	got, err := cache.Get(context.Background(), "draft-1")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists(draftKeyPrefix+"draft-1"), "corrupt entry is dropped")
}

func TestCache_Invalidate(t *testing.T) {
	cache, mr := newTestCache(t)
	d := testDraft()
	require.NoError(t, cache.Put(context.Background(), d))

	require.NoError(t, cache.Invalidate(context.Background(), d.ID))
	assert.False(t, mr.Exists(draftKeyPrefix+d.ID))
}
