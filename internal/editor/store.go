package editor

import (
	"sort"
	"sync"
)

// Store tracks the set of open documents. It is safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	docs map[string]*Document
}

// NewStore returns an empty document store.
func NewStore() *Store {
	return &Store{docs: make(map[string]*Document)}
}

// Open registers a document with the given backing path and initial text.
// Reopening an already open URI replaces its content and bumps the version.
func (s *Store) Open(uri, path, text string) Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[uri]; ok {
		doc.Path = path
		doc.Text = text
		doc.Version++
		doc.Dirty = false
		return *doc
	}
	doc := &Document{URI: uri, Path: path, Version: 1, Text: text}
	s.docs[uri] = doc
	return *doc
}

// Update replaces the document text, bumps the version, and marks it dirty.
func (s *Store) Update(uri, text string) (Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		return Document{}, false
	}
	doc.Text = text
	doc.Version++
	doc.Dirty = true
	return *doc, true
}

// Saved clears the dirty flag after the host wrote the buffer to disk.
func (s *Store) Saved(uri string) (Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		return Document{}, false
	}
	doc.Dirty = false
	return *doc, true
}

// Close removes the document. Later snapshots report it as closed.
func (s *Store) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[uri]; ok {
		doc.Closed = true
		delete(s.docs, uri)
	}
}

// Snapshot returns the current state of the document, if open.
func (s *Store) Snapshot(uri string) (Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		return Document{}, false
	}
	return *doc, true
}

// URIs returns the open document URIs in sorted order.
func (s *Store) URIs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		out = append(out, uri)
	}
	sort.Strings(out)
	return out
}
