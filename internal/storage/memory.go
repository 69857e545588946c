package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"yesan/internal/core"
)

// MemoryStore keeps the state in process memory. Default backend for local
// runs and the backend used by tests. Load and Save exchange deep copies so
// callers never share storage with the store.
type MemoryStore struct {
	mu    sync.Mutex
	state *core.State
	now   func() time.Time

	// SaveErr, when set, makes the next Save fail. Test hook for the
	// all-or-nothing guarantee on mutating operations.
	SaveErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// NewMemoryStoreAt pins the clock used for the default seed month.
func NewMemoryStoreAt(now func() time.Time) *MemoryStore {
	return &MemoryStore{now: now}
}

func (s *MemoryStore) Load(_ context.Context) (*core.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		s.state = core.DefaultState(s.now())
	}
	return s.state.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, state *core.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		err := s.SaveErr
		s.SaveErr = nil
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	s.state = state.Clone()
	return nil
}

func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = nil
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
