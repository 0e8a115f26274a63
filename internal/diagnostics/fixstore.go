package diagnostics

import (
	"sync"

	"surgehost/internal/diagwire"
)

// FixStore associates raw fix data with diagnostic identities without
// embedding it in the records themselves. Replacing a document's diagnostic
// set invalidates every entry registered for that document, so superseded
// diagnostics can never hand out orphaned fixes.
type FixStore struct {
	mu     sync.Mutex
	byDiag map[string][]diagwire.Fix
	byURI  map[string][]string
}

// NewFixStore returns an empty store.
func NewFixStore() *FixStore {
	return &FixStore{
		byDiag: make(map[string][]diagwire.Fix),
		byURI:  make(map[string][]string),
	}
}

// Replace installs the fixes for a fresh diagnostic set of uri, dropping
// everything registered for the previous set.
func (s *FixStore) Replace(uri string, fixes map[string][]diagwire.Fix) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateLocked(uri)
	if len(fixes) == 0 {
		return
	}
	ids := make([]string, 0, len(fixes))
	for id, list := range fixes {
		s.byDiag[id] = list
		ids = append(ids, id)
	}
	s.byURI[uri] = ids
}

// Invalidate drops all fixes registered for uri.
func (s *FixStore) Invalidate(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateLocked(uri)
}

func (s *FixStore) invalidateLocked(uri string) {
	for _, id := range s.byURI[uri] {
		delete(s.byDiag, id)
	}
	delete(s.byURI, uri)
}

// Clear drops every registered fix across all documents.
func (s *FixStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byDiag = make(map[string][]diagwire.Fix)
	s.byURI = make(map[string][]string)
}

// Get returns the fixes registered for a diagnostic identity, if any.
func (s *FixStore) Get(diagID string) ([]diagwire.Fix, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fixes, ok := s.byDiag[diagID]
	return fixes, ok
}
