package collection

import (
	"context"
	"sync"
)

// Local is an in-memory ordered collection, newest first.
//
// Add does not check ids. Callers own uniqueness; a duplicate id is stored
// alongside the original and HasDuplicateIDs reports it.
type Local[T Entity] struct {
	mu   sync.RWMutex
	docs []T
}

// NewLocal creates a Local seeded with a copy of initial.
func NewLocal[T Entity](initial []T) *Local[T] {
	docs := make([]T, len(initial))
	copy(docs, initial)
	return &Local[T]{docs: docs}
}

// Documents returns a snapshot of the collection.
func (l *Local[T]) Documents() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]T, len(l.docs))
	copy(out, l.docs)
	return out
}

// Add prepends entity.
func (l *Local[T]) Add(_ context.Context, entity T) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	docs := make([]T, 0, len(l.docs)+1)
	docs = append(docs, entity)
	l.docs = append(docs, l.docs...)
	return entity, nil
}

// Update replaces the first entity with the given id, keeping its position.
func (l *Local[T]) Update(_ context.Context, id string, entity T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, d := range l.docs {
		if d.GetID() == id {
			l.docs[i] = entity
			return nil
		}
	}
	return nil
}

// Remove drops every entity with the given id.
func (l *Local[T]) Remove(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.docs[:0:0]
	for _, d := range l.docs {
		if d.GetID() != id {
			kept = append(kept, d)
		}
	}
	l.docs = kept
	return nil
}

// HasDuplicateIDs reports whether two entities share an id.
func (l *Local[T]) HasDuplicateIDs() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	seen := make(map[string]struct{}, len(l.docs))
	for _, d := range l.docs {
		if _, ok := seen[d.GetID()]; ok {
			return true
		}
		seen[d.GetID()] = struct{}{}
	}
	return false
}
