// Package modal tracks whether an editor is open and which entity it targets.
package modal

import "sync"

// Selection is open/closed state plus an optional target.
// Opened with nil means "create new"; opened with an entity means "edit".
type Selection[T any] struct {
	mu       sync.RWMutex
	open     bool
	selected *T
}

// Open targets entity, or nothing when entity is nil, and opens the editor.
func (s *Selection[T]) Open(entity *T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = entity
	s.open = true
}

// Close clears the target and closes the editor.
func (s *Selection[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
	s.open = false
}

// IsOpen reports whether the editor is open.
func (s *Selection[T]) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open
}

// Selected returns the target while open, nil otherwise.
func (s *Selection[T]) Selected() *T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.open {
		return nil
	}
	return s.selected
}

// IsCreate reports an open editor with no target.
func (s *Selection[T]) IsCreate() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open && s.selected == nil
}
