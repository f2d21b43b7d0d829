package recorder

import "sync"

// InFlightSet tracks paths currently being written by an upload. The sweeper
// consults it before deleting, which makes "a file being written is never
// deleted" an actual invariant instead of a same-day-mtime coincidence.
type InFlightSet struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

// NewInFlightSet returns an empty set.
func NewInFlightSet() *InFlightSet {
	return &InFlightSet{paths: make(map[string]struct{})}
}

// Add marks a path as being written.
func (s *InFlightSet) Add(path string) {
	s.mu.Lock()
	s.paths[path] = struct{}{}
	s.mu.Unlock()
}

// Remove clears a path once its writer is done with it.
func (s *InFlightSet) Remove(path string) {
	s.mu.Lock()
	delete(s.paths, path)
	s.mu.Unlock()
}

// Contains reports whether a path is currently being written.
func (s *InFlightSet) Contains(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.paths[path]
	return ok
}
