package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/memodb-io/notespace/internal/modules/model"
	"github.com/memodb-io/notespace/internal/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CacheStore is the key/value contract the cache needs; cache.RedisStore and
// cache.MemoryStore both satisfy it.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// VisibleNotesLoader computes the uncached list, normally NoteRepo.ListVisible.
type VisibleNotesLoader func(ctx context.Context, userID uuid.UUID) ([]model.NoteSummary, error)

type VisibleNotesCache interface {
	Get(ctx context.Context, userID uuid.UUID) ([]model.NoteSummary, error)
	Invalidate(ctx context.Context, userIDs ...uuid.UUID) error
}

const DefaultVisibleNotesTTL = 15 * time.Minute

// VisibleNotesKey is the cache key of a user's sidebar list.
func VisibleNotesKey(userID uuid.UUID) string {
	return fmt.Sprintf("sidebar_notes_user_%s", userID)
}

// visibleNotesLoadTimeout bounds a load that no caller is waiting on any more.
const visibleNotesLoadTimeout = 10 * time.Second

type visibleNotesCache struct {
	store CacheStore
	load  VisibleNotesLoader
	ttl   time.Duration
	group singleflight.Group
	log   *zap.Logger

	mu      sync.Mutex
	loading map[string]*pendingLoad
}

// pendingLoad tracks one in-flight load. Invalidate marks it stale so a list read
// before the write is never stored.
type pendingLoad struct {
	stale bool
}

func NewVisibleNotesCache(store CacheStore, load VisibleNotesLoader, ttl time.Duration, log *zap.Logger) VisibleNotesCache {
	if ttl <= 0 {
		ttl = DefaultVisibleNotesTTL
	}
	return &visibleNotesCache{
		store:   store,
		load:    load,
		ttl:     ttl,
		log:     log,
		loading: make(map[string]*pendingLoad),
	}
}

// Get serves the cached list when present. On a miss the list is computed once per
// process for concurrent callers and written back with the TTL. A failing store is
// logged and bypassed on the read path.
func (c *visibleNotesCache) Get(ctx context.Context, userID uuid.UUID) ([]model.NoteSummary, error) {
	key := VisibleNotesKey(userID)

	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		telemetry.RecordCacheError(ctx, "get")
		c.log.Warn("visible notes cache read failed", zap.String("key", key), zap.Error(err))
	}
	if ok {
		var notes []model.NoteSummary
		if err := sonic.Unmarshal(raw, &notes); err == nil {
			telemetry.RecordCacheHit(ctx)
			return notes, nil
		}
		c.log.Warn("discarding undecodable cache entry", zap.String("key", key))
	}

	// The load outlives the caller that started it; others may have joined.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		return c.fill(loadCtx, key, userID)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]model.NoteSummary), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *visibleNotesCache) fill(ctx context.Context, key string, userID uuid.UUID) ([]model.NoteSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, visibleNotesLoadTimeout)
	defer cancel()

	pending := c.begin(key)
	defer c.end(key, pending)

	start := time.Now()
	notes, err := c.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []model.NoteSummary{}
	}
	telemetry.RecordCacheMiss(ctx, float64(time.Since(start).Microseconds())/1000)

	if c.isStale(pending) {
		return notes, nil
	}
	b, err := sonic.Marshal(notes)
	if err == nil {
		err = c.store.Set(ctx, key, b, c.ttl)
	}
	if err != nil {
		telemetry.RecordCacheError(ctx, "set")
		c.log.Warn("visible notes cache write failed", zap.String("key", key), zap.Error(err))
		return notes, nil
	}
	// an invalidation landed between the check and the write
	if c.isStale(pending) {
		if err := c.store.Delete(ctx, key); err != nil {
			telemetry.RecordCacheError(ctx, "delete")
			c.log.Warn("drop stale visible notes entry", zap.String("key", key), zap.Error(err))
		}
	}
	return notes, nil
}

func (c *visibleNotesCache) begin(key string) *pendingLoad {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := &pendingLoad{}
	c.loading[key] = p
	return p
}

func (c *visibleNotesCache) end(key string, p *pendingLoad) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading[key] == p {
		delete(c.loading, key)
	}
}

func (c *visibleNotesCache) isStale(p *pendingLoad) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return p.stale
}

// Invalidate drops the entries of every given user; the next Get recomputes them.
// Loads already running are detached first so later readers start a fresh one.
func (c *visibleNotesCache) Invalidate(ctx context.Context, userIDs ...uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, VisibleNotesKey(id))
	}

	c.mu.Lock()
	for _, key := range keys {
		if p, ok := c.loading[key]; ok {
			p.stale = true
			delete(c.loading, key)
		}
		c.group.Forget(key)
	}
	c.mu.Unlock()

	if err := c.store.Delete(ctx, keys...); err != nil {
		telemetry.RecordCacheError(ctx, "delete")
		return fmt.Errorf("invalidate visible notes: %w", err)
	}
	telemetry.RecordCacheInvalidation(ctx, len(keys))
	return nil
}
