package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/diewo77/go-talent/internal/models"
)

// Memory is an in-process TTL cache. Suitable for a single server instance.
type Memory struct {
	cache map[string]*cacheEntry
	// gens counts invalidations per user since the last InvalidateAll; epoch
	// counts InvalidateAll calls. Together they form the stamp.
	gens  map[string]uint64
	epoch uint64
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
}

type cacheEntry struct {
	profile   models.UserProfile
	expiresAt time.Time
}

// NewMemory creates a cache whose entries live for ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		cache: make(map[string]*cacheEntry),
		gens:  make(map[string]uint64),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (m *Memory) stampLocked(userID string) Stamp {
	return Stamp(strconv.FormatUint(m.epoch, 10) + ":" + strconv.FormatUint(m.gens[userID], 10))
}

// Get returns a copy of the cached profile if present and not expired.
func (m *Memory) Get(_ context.Context, userID string) (models.UserProfile, Stamp, bool) {
	m.mu.RLock()
	entry, ok := m.cache[userID]
	stamp := m.stampLocked(userID)
	m.mu.RUnlock()

	if !ok || !m.now().Before(entry.expiresAt) {
		return nil, stamp, false
	}
	return clone(entry.profile), stamp, true
}

func (m *Memory) Set(_ context.Context, userID string, stamp Stamp, profile models.UserProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stamp != m.stampLocked(userID) {
		return
	}
	m.cache[userID] = &cacheEntry{
		profile:   clone(profile),
		expiresAt: m.now().Add(m.ttl),
	}
}

func (m *Memory) Invalidate(_ context.Context, userID string) {
	m.mu.Lock()
	delete(m.cache, userID)
	m.gens[userID]++
	m.mu.Unlock()
}

func (m *Memory) InvalidateAll(context.Context) {
	m.mu.Lock()
	m.cache = make(map[string]*cacheEntry)
	m.gens = make(map[string]uint64)
	m.epoch++
	m.mu.Unlock()
}

func clone(p models.UserProfile) models.UserProfile {
	out := make(models.UserProfile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
