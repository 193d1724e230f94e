// Package memstore provides an in-memory envelope store for tests and
// single-process use.
package memstore

import (
	"sync"

	"github.com/ipfs/go-cid"

	"goldenseed.dev/gqs/cidutil"
	"goldenseed.dev/gqs/store"
)

// Store is a map-backed envelope store. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// New constructs an empty store.
func New() *Store {
	return &Store{objects: make(map[string][]byte)}
}

func (s *Store) Put(envelopeBytes []byte) (cid.Cid, error) {
	if err := store.ValidateObject(envelopeBytes); err != nil {
		return cid.Undef, err
	}
	id, err := cidutil.Sum(envelopeBytes)
	if err != nil {
		return cid.Undef, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[id.String()]; !ok {
		s.objects[id.String()] = append([]byte(nil), envelopeBytes...)
	}
	return id, nil
}

func (s *Store) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, store.ErrInvalidCID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.objects[id.String()]
	if !ok {
		return nil, store.ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (s *Store) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[id.String()]
	return ok
}
