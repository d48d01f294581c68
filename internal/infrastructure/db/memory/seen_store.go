// Package memory holds process-local implementations of storage ports.
package memory

import (
	"context"
	"sync"
)

// SeenStore is an in-memory ports.SeenStore. Sets are lost on restart. Only
// one session is tracked at a time, so Reset also forgets every other session.
type SeenStore struct {
	mu   sync.RWMutex
	sets map[string]map[string]struct{}
}

func NewSeenStore() *SeenStore {
	return &SeenStore{sets: make(map[string]map[string]struct{})}
}

func (s *SeenStore) Reset(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets = make(map[string]map[string]struct{})
	return nil
}

func (s *SeenStore) Contains(_ context.Context, sessionID, photoID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sets[sessionID][photoID]
	return ok, nil
}

func (s *SeenStore) Add(_ context.Context, sessionID, photoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[sessionID]
	if !ok {
		set = make(map[string]struct{})
		s.sets[sessionID] = set
	}
	set[photoID] = struct{}{}
	return nil
}
