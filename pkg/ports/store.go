package ports

import (
	"context"

	"github.com/aretw0/stoptime/pkg/domain"
)

// CheckpointStore defines the interface for persisting trajectory state.
// Only the latest snapshot per problem key is kept.
type CheckpointStore interface {
	// Save persists the state under state.Key, replacing any previous snapshot.
	Save(ctx context.Context, state *domain.State) error

	// Load retrieves the latest snapshot for key.
	// Returns domain.ErrCheckpointNotFound if none exists, and an error wrapping
	// domain.ErrCorruptCheckpoint if the stored record cannot be decoded.
	Load(ctx context.Context, key domain.ProblemKey) (*domain.State, error)

	// Delete removes the snapshot for key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key domain.ProblemKey) error

	// List returns the keys that currently hold a snapshot.
	List(ctx context.Context) ([]domain.ProblemKey, error)
}
