package cart

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry hands out one Store per browsing session. It is injected into the
// HTTP layer and the checkout flow rather than held as package state.
type Registry struct {
	mu     sync.Mutex
	stores map[string]*Store
}

func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]*Store)}
}

// Get returns the store for sessionID, if one exists.
func (r *Registry) Get(sessionID string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[sessionID]
	return s, ok
}

// GetOrCreate returns the store for sessionID, creating an empty one when the
// session is unknown. An empty sessionID allocates a new session.
func (r *Registry) GetOrCreate(sessionID string) (string, *Store) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	s, ok := r.stores[sessionID]
	if !ok {
		s = NewStore()
		r.stores[sessionID] = s
	}
	return sessionID, s
}

// Drop forgets a session.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, sessionID)
}

// Sweep drops sessions idle for longer than maxIdle and returns how many were
// removed. Held stores are skipped.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.stores {
		if !s.held() && s.LastTouched().Before(cutoff) {
			delete(r.stores, id)
			removed++
		}
	}
	return removed
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
