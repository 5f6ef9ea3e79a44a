package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/stoptime/pkg/domain"
	_ "modernc.org/sqlite"
)

// DefaultPath is the database location used when none is given.
const DefaultPath = ".stoptime/checkpoints.db"

const schema = `
CREATE TABLE IF NOT EXISTS checkpoints (
	name        TEXT PRIMARY KEY,
	digit_count INTEGER NOT NULL,
	record      BLOB NOT NULL,
	updated_at  INTEGER NOT NULL
);`

// Store implements ports.CheckpointStore on an embedded SQLite database.
// Each problem key is one row, replaced on every save.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates (if needed) and opens the database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to ensure database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// One writer; the engine is single threaded anyway.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=FULL",
		"PRAGMA busy_timeout=5000",
		schema,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize sqlite (%s): %w", stmt, err)
		}
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file.
func (s *Store) Path() string {
	return s.path
}

// Save upserts the checkpoint row for state.Key.
func (s *Store) Save(ctx context.Context, state *domain.State) error {
	data, err := domain.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (name, digit_count, record, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			digit_count = excluded.digit_count,
			record      = excluded.record,
			updated_at  = excluded.updated_at`,
		state.Key.Name(), int64(state.Key), data, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// Load reads the checkpoint row for key.
func (s *Store) Load(ctx context.Context, key domain.ProblemKey) (*domain.State, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT record FROM checkpoints WHERE name = ?`, key.Name()).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	rec, err := domain.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return rec.State()
}

// Delete removes the checkpoint row.
func (s *Store) Delete(ctx context.Context, key domain.ProblemKey) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE name = ?`, key.Name()); err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// List returns all stored keys ordered by digit count.
func (s *Store) List(ctx context.Context) ([]domain.ProblemKey, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT digit_count FROM checkpoints ORDER BY digit_count`)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	defer rows.Close()

	var keys []domain.ProblemKey
	for rows.Next() {
		var n int64
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint: %w", err)
		}
		keys = append(keys, domain.ProblemKey(n))
	}
	return keys, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
