package threads

import (
	"context"
	"fmt"
	"sync"
	"time"

	"frameworks/pkg/logging"
)

// recentWindow bounds how far back the registry hydrates on startup.
// Threads older than this only resolve through the store.
const recentWindow = 14 * 24 * time.Hour

// Registry resolves inbound thread replies to their tracked threads. It
// keeps a read-through cache in front of the store so the hot path (every
// message in a watched workspace) rarely touches the database.
type Registry struct {
	store  Store
	logger logging.Logger

	mu    sync.RWMutex
	byKey map[string]TrackedThread
	now   func() time.Time
}

func NewRegistry(store Store, logger logging.Logger) *Registry {
	return &Registry{
		store:  store,
		logger: logger,
		byKey:  make(map[string]TrackedThread),
		now:    time.Now,
	}
}

// LoadRecent hydrates the cache with threads created inside the recent
// window. Called once at startup; replies to older threads still resolve
// through Find's store fallback.
func (r *Registry) LoadRecent(ctx context.Context) error {
	since := r.now().Add(-recentWindow)
	recent, err := r.store.ListSince(ctx, since)
	if err != nil {
		return fmt.Errorf("load recent threads: %w", err)
	}

	r.mu.Lock()
	for _, t := range recent {
		r.byKey[t.Key()] = t
	}
	total := len(r.byKey)
	r.mu.Unlock()

	r.logger.WithFields(logging.Fields{
		"loaded": len(recent),
		"cached": total,
	}).Info("Thread registry hydrated")
	return nil
}

// Register validates and persists a new thread, then caches it.
func (r *Registry) Register(ctx context.Context, thread TrackedThread) (TrackedThread, error) {
	if err := thread.Validate(); err != nil {
		return TrackedThread{}, err
	}

	created, err := r.store.Create(ctx, thread)
	if err != nil {
		return TrackedThread{}, err
	}

	r.mu.Lock()
	r.byKey[created.Key()] = created
	r.mu.Unlock()
	return created, nil
}

// Lookup resolves a channel/timestamp pair to its tracked thread. A cache
// miss falls through to the store and caches any hit, so repeated lookups
// for the same thread query storage at most once.
func (r *Registry) Lookup(ctx context.Context, channelID, threadTS string) (TrackedThread, bool, error) {
	key := channelID + ":" + threadTS

	r.mu.RLock()
	cached, ok := r.byKey[key]
	r.mu.RUnlock()
	if ok {
		return cached, true, nil
	}

	thread, found, err := r.store.Find(ctx, channelID, threadTS)
	if err != nil {
		return TrackedThread{}, false, err
	}
	if !found {
		return TrackedThread{}, false, nil
	}

	r.mu.Lock()
	r.byKey[key] = thread
	r.mu.Unlock()
	return thread, true, nil
}

// FindSibling scans the cache for a cycle's thread of the given type,
// optionally pinned to a channel. Used to post followups into a thread
// opened earlier in the same cycle.
func (r *Registry) FindSibling(channelID, cycleID string, threadType Type) (TrackedThread, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.byKey {
		if t.CycleID != cycleID || t.Type != threadType {
			continue
		}
		if channelID != "" && t.ChannelID != channelID {
			continue
		}
		return t, true
	}
	return TrackedThread{}, false
}
