// Package memory provides an in-process persister used by tests and the
// ephemeral storage driver.
package memory

import (
	"context"
	"sync"

	"dwellingcore/pkg/domain"
)

var _ domain.Persister = (*Store)(nil)

// Store keeps the last saved document in memory.
type Store struct {
	mu    sync.Mutex
	doc   domain.Document
	saves int
}

// NewStore returns an empty persister. An optional seed document is returned
// by the first Load.
func NewStore(seed ...domain.Document) *Store {
	s := &Store{doc: domain.NewDocument()}
	if len(seed) > 0 && seed[0] != nil {
		s.doc = seed[0].Clone()
	}
	return s
}

// Load returns a copy of the last saved document.
func (s *Store) Load(context.Context) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone(), nil
}

// Save stores a copy of doc.
func (s *Store) Save(_ context.Context, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc.Clone()
	s.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
