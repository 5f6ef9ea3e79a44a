package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/stoptime/pkg/domain"
)

const ext = ".json"

// rename is replaced in tests to observe the directory at the moment of the swap.
var rename = os.Rename

// Store implements ports.CheckpointStore using the local filesystem.
// It stores one JSON record per problem key in a configured directory.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".stoptime/checkpoints".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".stoptime", "checkpoints")
	}
	return &Store{BasePath: basePath}
}

// Path returns the file holding the checkpoint for key.
func (s *Store) Path(key domain.ProblemKey) string {
	return filepath.Join(s.BasePath, key.Name()+ext)
}

// Save persists the checkpoint atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, state *domain.State) error {
	if state.Key == 0 {
		return fmt.Errorf("checkpoint key cannot be zero")
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure checkpoint directory: %w", err)
	}

	data, err := domain.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	// Same directory as the destination, rename is only atomic within a filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+state.Key.Name()+"-*"+ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}

	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Rename replaces an existing checkpoint in one step, so a crash leaves the old or the new one.
	if err := rename(tmpPath, s.Path(state.Key)); err != nil {
		return fmt.Errorf("failed to rename temp file to checkpoint: %w", err)
	}

	return nil
}

// Load retrieves the checkpoint from its JSON file.
func (s *Store) Load(ctx context.Context, key domain.ProblemKey) (*domain.State, error) {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("failed to read checkpoint file: %w", err)
	}

	rec, err := domain.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return rec.State()
}

// Delete removes the checkpoint file.
func (s *Store) Delete(ctx context.Context, key domain.ProblemKey) error {
	err := os.Remove(s.Path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete checkpoint file: %w", err)
	}
	return nil
}

// List returns the keys of all checkpoint files in the directory.
func (s *Store) List(ctx context.Context) ([]domain.ProblemKey, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.ProblemKey{}, nil
		}
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}

	var keys []domain.ProblemKey
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext {
			continue
		}
		key, err := domain.ParseKeyName(strings.TrimSuffix(name, ext))
		if err != nil {
			continue // temp files and foreign JSON
		}
		keys = append(keys, key)
	}

	return keys, nil
}
