package watcher

import "sync"

// ProcessedSet records identifiers already submitted for transcription.
type ProcessedSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewProcessedSet() *ProcessedSet {
	return &ProcessedSet{ids: make(map[string]struct{})}
}

// MarkIfNew adds id and reports whether it was absent. The check and the
// insert are one critical section, so two callers never both get true.
func (s *ProcessedSet) MarkIfNew(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Unmark forgets id so a later scan yields it again.
func (s *ProcessedSet) Unmark(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, id)
}

func (s *ProcessedSet) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

func (s *ProcessedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
