package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SnapshotStore persists cart lines between process restarts.
type SnapshotStore interface {
	Load(ctx context.Context, sessionID string) ([]Line, bool, error)
	Save(ctx context.Context, sessionID string, lines []Line) error
	Delete(ctx context.Context, sessionID string) error
}

// Registry holds one Store per shopper session. Idle stores are evicted by
// Evict; the snapshot store brings them back on the next Open.
type Registry struct {
	mu        sync.Mutex
	stores    map[string]*session
	snapshots SnapshotStore
	storeOpts []Option
	log       zerolog.Logger
	now       func() time.Time
}

type session struct {
	store    *Store
	lastUsed time.Time
}

// NewRegistry builds a registry. snapshots may be nil for memory-only carts.
func NewRegistry(snapshots SnapshotStore, log zerolog.Logger, storeOpts ...Option) *Registry {
	return &Registry{
		stores:    make(map[string]*session),
		snapshots: snapshots,
		storeOpts: append([]Option{WithLogger(log)}, storeOpts...),
		log:       log,
		now:       time.Now,
	}
}

func NewSessionID() string { return uuid.NewString() }

// Open returns the session's store, hydrating it from the snapshot store on first use.
func (r *Registry) Open(ctx context.Context, sessionID string) (*Store, error) {
	r.mu.Lock()
	if sess, ok := r.stores[sessionID]; ok {
		sess.lastUsed = r.now()
		r.mu.Unlock()
		return sess.store, nil
	}
	r.mu.Unlock()

	s := NewStore(r.storeOpts...)
	if r.snapshots != nil {
		lines, ok, err := r.snapshots.Load(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("load cart snapshot: %w", err)
		}
		if ok {
			s.Restore(lines)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.stores[sessionID]; ok {
		existing.lastUsed = r.now()
		return existing.store, nil
	}
	r.stores[sessionID] = &session{store: s, lastUsed: r.now()}
	return s, nil
}

// Save writes the store's current lines to the snapshot store.
func (r *Registry) Save(ctx context.Context, sessionID string, s *Store) error {
	if r.snapshots == nil {
		return nil
	}
	if err := r.snapshots.Save(ctx, sessionID, s.Lines()); err != nil {
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	return nil
}

// Drop forgets a session in memory and in the snapshot store. Subscribers of
// the dropped store are closed.
func (r *Registry) Drop(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	sess, ok := r.stores[sessionID]
	delete(r.stores, sessionID)
	r.mu.Unlock()
	if ok {
		sess.store.closeSubscribers()
	}

	if r.snapshots == nil {
		return nil
	}
	if err := r.snapshots.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete cart snapshot: %w", err)
	}
	return nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Evict removes stores not opened for longer than idle. Stores with live
// subscribers are kept. It returns how many were evicted.
func (r *Registry) Evict(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, sess := range r.stores {
		if sess.lastUsed.After(cutoff) || sess.store.subscribers() > 0 {
			continue
		}
		delete(r.stores, id)
		n++
	}
	return n
}

// CloseSubscribers ends every subscription in every store; used on shutdown.
func (r *Registry) CloseSubscribers() {
	r.mu.Lock()
	stores := make([]*Store, 0, len(r.stores))
	for _, sess := range r.stores {
		stores = append(stores, sess.store)
	}
	r.mu.Unlock()
	for _, s := range stores {
		s.closeSubscribers()
	}
}
