package timing

import (
	"context"
	"sync"
)

// CachedView is a branch's editing view together with whether it holds edits
// not yet saved.
type CachedView struct {
	View  BranchTimingView
	Dirty bool
}

// Cache holds the editing view of each branch for one editor session.
type Cache interface {
	Get(ctx context.Context, branchId int) (CachedView, bool)
	Put(ctx context.Context, branchId int, entry CachedView) error
	Invalidate(ctx context.Context, branchId int) error
}

type MemoryCache struct {
	mu      sync.RWMutex
	entries map[int]CachedView
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[int]CachedView)}
}

func (c *MemoryCache) Get(ctx context.Context, branchId int) (CachedView, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[branchId]
	if !ok {
		return CachedView{}, false
	}
	entry.View = entry.View.Clone()
	return entry, true
}

func (c *MemoryCache) Put(ctx context.Context, branchId int, entry CachedView) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry.View = entry.View.Clone()
	c.entries[branchId] = entry
	return nil
}

func (c *MemoryCache) Invalidate(ctx context.Context, branchId int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, branchId)
	return nil
}
