package cart

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// registryPruneInterval bounds how often GetOrCreate scans for idle
// sessions, so the sweep cost stays off the hot path.
const registryPruneInterval = time.Hour

// Registry hands out one Store per session. Stores are created lazily and
// re-hydrated from storage, so a server restart does not lose carts.
// Sessions idle longer than maxIdle are evicted; their state lives in
// storage and comes back on the next request.
type Registry struct {
	mu        sync.Mutex
	stores    map[string]*registryEntry
	lastPrune time.Time
	maxIdle   time.Duration
	storage   Storage
	placer    OrderPlacer
	logger    *slog.Logger
}

type registryEntry struct {
	store    *Store
	lastSeen time.Time
}

// NewRegistry creates a session registry backed by the given storage and
// order collaborator. The idle cutoff matches the cart persistence TTL.
func NewRegistry(storage Storage, placer OrderPlacer, logger *slog.Logger) *Registry {
	return &Registry{
		stores:  make(map[string]*registryEntry),
		maxIdle: defaultCartTTL,
		storage: storage,
		placer:  placer,
		logger:  logger,
	}
}

// GetOrCreate returns the store for a session, constructing and hydrating
// it on first use. Hydration hits storage, so it happens outside the
// registry lock; concurrent first requests for the same session race to
// insert and the loser's store is discarded.
func (r *Registry) GetOrCreate(ctx context.Context, sessionID string) *Store {
	now := time.Now()

	r.mu.Lock()
	r.pruneLocked(now)
	if e, ok := r.stores[sessionID]; ok {
		e.lastSeen = now
		r.mu.Unlock()
		return e.store
	}
	r.mu.Unlock()

	store := NewStore(ctx, sessionID, r.storage, r.placer, r.logger)

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.stores[sessionID]; ok {
		e.lastSeen = now
		return e.store
	}
	r.stores[sessionID] = &registryEntry{store: store, lastSeen: now}
	return store
}

func (r *Registry) pruneLocked(now time.Time) {
	if now.Sub(r.lastPrune) < registryPruneInterval {
		return
	}
	r.lastPrune = now

	evicted := 0
	for id, e := range r.stores {
		if now.Sub(e.lastSeen) > r.maxIdle {
			delete(r.stores, id)
			evicted++
		}
	}
	if evicted > 0 {
		r.logger.Debug("evicted idle cart sessions", "count", evicted)
	}
}
