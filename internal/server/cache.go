package server

import (
	"context"
	"sync"
	"time"

	"github.com/tas33n/DroidWright/internal/model"
	"github.com/tas33n/DroidWright/internal/platform"
)

// SnapshotCache serves a recent snapshot to read-only tools so a burst of
// dump and find calls costs one uiautomator dump. Tools that change the UI
// must call Invalidate.
type SnapshotCache struct {
	src platform.Snapshotter
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	snap  *model.Snapshot
	taken time.Time
}

// NewSnapshotCache creates a cache over src. A ttl of 0 disables caching.
func NewSnapshotCache(src platform.Snapshotter, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{src: src, ttl: ttl, now: time.Now}
}

// Snapshot returns the cached snapshot if within TTL, otherwise takes a
// fresh one. The caller must hold the provider mutex.
func (c *SnapshotCache) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	if c.ttl <= 0 {
		return c.src.Snapshot(ctx)
	}

	c.mu.Lock()
	if c.snap != nil && c.now().Sub(c.taken) < c.ttl {
		snap := c.snap
		c.mu.Unlock()
		return snap, nil
	}
	c.mu.Unlock()

	snap, err := c.src.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.snap, c.taken = snap, c.now()
	c.mu.Unlock()
	return snap, nil
}

// Invalidate drops the cached snapshot.
func (c *SnapshotCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = nil
}
