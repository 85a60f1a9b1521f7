package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/clipforge/clipforge/internal/domain/entities"
)

// MemoryJobCache is an in-process job status cache with the same
// semantics as the Redis-backed one. Used in development when Redis is
// not reachable; snapshots are lost on restart, which is fine because
// the database stays the source of truth.
type MemoryJobCache struct {
	mu    sync.RWMutex
	items map[string]*memoryItem
}

type memoryItem struct {
	value      string
	expireTime time.Time
}

// NewMemoryJobCache creates the in-memory cache
func NewMemoryJobCache() *MemoryJobCache {
	store := &MemoryJobCache{
		items: make(map[string]*memoryItem),
	}

	// Cleanup goroutine removes expired snapshots
	go store.cleanupExpired()

	return store
}

// Set stores a job snapshot with the standard status TTL
func (ms *MemoryJobCache) Set(ctx context.Context, job *entities.ClipJob) {
	data, err := json.Marshal(job)
	if err != nil {
		return
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.items[statusKey(job.ID.String())] = &memoryItem{
		value:      string(data),
		expireTime: time.Now().Add(statusTTL),
	}
}

// Get returns the cached job snapshot, or nil on miss or expiry
func (ms *MemoryJobCache) Get(ctx context.Context, jobID string) *entities.ClipJob {
	ms.mu.RLock()
	item, exists := ms.items[statusKey(jobID)]
	ms.mu.RUnlock()

	if !exists || time.Now().After(item.expireTime) {
		return nil
	}

	var job entities.ClipJob
	if err := json.Unmarshal([]byte(item.value), &job); err != nil {
		return nil
	}
	return &job
}

// Invalidate removes a snapshot
func (ms *MemoryJobCache) Invalidate(ctx context.Context, jobID string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.items, statusKey(jobID))
}

// cleanupExpired periodically removes expired items
func (ms *MemoryJobCache) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		ms.mu.Lock()
		now := time.Now()
		for key, item := range ms.items {
			if now.After(item.expireTime) {
				delete(ms.items, key)
			}
		}
		ms.mu.Unlock()
	}
}
