// Package memory implements an in-process Record Store for tests and
// ephemeral runs.
package memory

import (
	"context"
	"sync"

	"userdesk/internal/store/core"
	"userdesk/pkg/domain"
)

// Store holds the encoded document so callers never share record memory
// with the store between calls.
type Store struct {
	mu  sync.RWMutex
	doc []byte
}

// New returns an empty in-memory store.
func New() *Store { return &Store{} }

func (s *Store) Driver() core.Driver { return core.DriverMemory }

func (s *Store) ReadAll(_ context.Context) (domain.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Decode(s.doc)
}

func (s *Store) WriteAll(_ context.Context, records domain.Collection) error {
	b, err := core.Encode(records)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.doc = b
	s.mu.Unlock()
	return nil
}
