package terminal

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

var ErrSessionNotFound = errors.New("terminal session not found")

// Registry tracks the open sessions.
type Registry struct {
	orders     Placer
	products   ProductSource
	tableCount int
	now        func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty Registry.
func NewRegistry(orders Placer, products ProductSource, tableCount int) *Registry {
	return &Registry{
		orders:     orders,
		products:   products,
		tableCount: tableCount,
		now:        time.Now,
		sessions:   make(map[string]*Session),
	}
}

// Open starts a session for ownerID.
func (r *Registry) Open(ownerID string) *Session {
	s := newSession(ownerID, r.orders, r.products, r.tableCount, r.now)
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the open session with the given id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close tears down the session. Unknown ids are ignored.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
}

// CloseOwner tears down every session of ownerID and returns how many.
func (r *Registry) CloseOwner(ownerID string) int {
	r.mu.Lock()
	var closing []*Session
	for id, s := range r.sessions {
		if s.OwnerID == ownerID {
			closing = append(closing, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range closing {
		s.Close()
	}
	return len(closing)
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Reap closes sessions idle for longer than maxIdle and returns how many.
func (r *Registry) Reap(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.RLock()
	candidates := make(map[string]*Session, len(r.sessions))
	for id, s := range r.sessions {
		candidates[id] = s
	}
	r.mu.RUnlock()

	reaped := 0
	for id, s := range candidates {
		if !s.closeIfIdle(cutoff) {
			continue
		}
		r.mu.Lock()
		if r.sessions[id] == s {
			delete(r.sessions, id)
		}
		r.mu.Unlock()
		reaped++
	}
	return reaped
}

// RunReaper reaps idle sessions every interval until ctx is cancelled.
// This should be called as a goroutine.
func (r *Registry) RunReaper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Reap(maxIdle); n > 0 {
				log.Printf("reaped %d idle terminal sessions", n)
			}
		}
	}
}
