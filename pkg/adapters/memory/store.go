package memory

import (
	"context"
	"sync"

	"github.com/aretw0/stoptime/pkg/domain"
)

// Store implements ports.CheckpointStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[domain.ProblemKey]*domain.State
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[domain.ProblemKey]*domain.State),
	}
}

// Save persists a deep copy of the state in memory.
func (s *Store) Save(ctx context.Context, state *domain.State) error {
	copied := state.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[state.Key] = copied
	return nil
}

// Load retrieves a copy of the state, so callers can't mutate the stored snapshot.
func (s *Store) Load(ctx context.Context, key domain.ProblemKey) (*domain.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.data[key]
	if !ok {
		return nil, domain.ErrCheckpointNotFound
	}
	return state.Clone(), nil
}

// Delete removes the state.
func (s *Store) Delete(ctx context.Context, key domain.ProblemKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns keys holding a snapshot.
func (s *Store) List(ctx context.Context) ([]domain.ProblemKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]domain.ProblemKey, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}
