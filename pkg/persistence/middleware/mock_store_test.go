package middleware_test

import (
	"context"

	"github.com/aretw0/stoptime/pkg/domain"
	"github.com/aretw0/stoptime/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware.
// A non-nil FailSave makes every Save return it.
type MockStore struct {
	data     map[domain.ProblemKey]*domain.State
	FailSave error
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[domain.ProblemKey]*domain.State),
	}
}

func (s *MockStore) Save(ctx context.Context, state *domain.State) error {
	if s.FailSave != nil {
		return s.FailSave
	}
	s.data[state.Key] = state.Clone()
	return nil
}

func (s *MockStore) Load(ctx context.Context, key domain.ProblemKey) (*domain.State, error) {
	state, ok := s.data[key]
	if !ok {
		return nil, domain.ErrCheckpointNotFound
	}
	return state.Clone(), nil
}

func (s *MockStore) Delete(ctx context.Context, key domain.ProblemKey) error {
	delete(s.data, key)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]domain.ProblemKey, error) {
	keys := make([]domain.ProblemKey, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

var _ ports.CheckpointStore = (*MockStore)(nil)
