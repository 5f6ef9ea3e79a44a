package scan

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// MemoEntry is one known stop time: Value reaches 1 in Steps steps.
type MemoEntry struct {
	Value uint64
	Steps uint64
}

const memoVersion = 1

// memoFile is the JSON form of a memo. Entries are [value, steps] pairs, oldest first.
type memoFile struct {
	Version int         `json:"version"`
	Entries [][2]uint64 `json:"entries"`
}

const memoSchema = `
CREATE TABLE IF NOT EXISTS memo (
	seq   INTEGER PRIMARY KEY,
	value INTEGER NOT NULL,
	steps INTEGER NOT NULL
);`

// Entries returns the memo contents from least to most recently used.
func (s *Scanner) Entries() []MemoEntry {
	keys := s.cache.Keys()
	entries := make([]MemoEntry, 0, len(keys))
	for _, k := range keys {
		if steps, ok := s.cache.Peek(k); ok {
			entries = append(entries, MemoEntry{Value: k, Steps: steps})
		}
	}
	return entries
}

// Restore adds entries to the memo in order, so the last ones end up most recently used.
// Entries that cannot be stop times are skipped. It returns how many were added.
func (s *Scanner) Restore(entries []MemoEntry) int {
	var added int
	for _, e := range entries {
		if e.Value <= 1 || e.Steps == 0 {
			continue
		}
		s.cache.Add(e.Value, e.Steps)
		added++
	}
	return added
}

// isSQLitePath selects the database format for .db and .sqlite paths, JSON otherwise.
func isSQLitePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// SaveMemo writes the memo to path, replacing what was there.
func (s *Scanner) SaveMemo(ctx context.Context, path string) error {
	entries := s.Entries()
	if isSQLitePath(path) {
		return saveMemoSQLite(ctx, path, entries)
	}
	return saveMemoJSON(path, entries)
}

// LoadMemo restores a memo written by SaveMemo. A missing memo is not an error.
func (s *Scanner) LoadMemo(ctx context.Context, path string) (int, error) {
	var (
		entries []MemoEntry
		err     error
	)
	if isSQLitePath(path) {
		entries, err = loadMemoSQLite(ctx, path)
	} else {
		entries, err = loadMemoJSON(path)
	}
	if err != nil {
		return 0, err
	}
	n := s.Restore(entries)
	s.logger.Debug("memo restored", "path", path, "entries", n)
	return n, nil
}

func saveMemoJSON(path string, entries []MemoEntry) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure memo directory: %w", err)
	}

	mf := memoFile{Version: memoVersion, Entries: make([][2]uint64, len(entries))}
	for i, e := range entries {
		mf.Entries[i] = [2]uint64{e.Value, e.Steps}
	}
	data, err := json.Marshal(mf)
	if err != nil {
		return fmt.Errorf("failed to marshal memo: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "tmp-memo-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write memo: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync memo: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close memo: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename memo into place: %w", err)
	}
	return nil
}

func loadMemoJSON(path string) ([]MemoEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read memo: %w", err)
	}

	var mf memoFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("failed to parse memo %s: %w", path, err)
	}
	if mf.Version != memoVersion {
		return nil, fmt.Errorf("unsupported memo version %d in %s", mf.Version, path)
	}
	entries := make([]MemoEntry, len(mf.Entries))
	for i, p := range mf.Entries {
		entries[i] = MemoEntry{Value: p[0], Steps: p[1]}
	}
	return entries, nil
}

func openMemoDB(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to ensure memo directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	for _, stmt := range []string{"PRAGMA busy_timeout=5000", memoSchema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize memo database (%s): %w", stmt, err)
		}
	}
	return db, nil
}

// SQLite integers are signed; values are stored as their int64 bit pattern.
func saveMemoSQLite(ctx context.Context, path string, entries []MemoEntry) error {
	db, err := openMemoDB(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin memo transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM memo`); err != nil {
		return fmt.Errorf("failed to clear memo: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO memo (seq, value, steps) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare memo insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, i, int64(e.Value), int64(e.Steps)); err != nil {
			return fmt.Errorf("failed to insert memo entry: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit memo: %w", err)
	}
	return nil
}

func loadMemoSQLite(ctx context.Context, path string) ([]MemoEntry, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	db, err := openMemoDB(ctx, path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT value, steps FROM memo ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query memo: %w", err)
	}
	defer rows.Close()

	var entries []MemoEntry
	for rows.Next() {
		var value, steps int64
		if err := rows.Scan(&value, &steps); err != nil {
			return nil, fmt.Errorf("failed to scan memo row: %w", err)
		}
		entries = append(entries, MemoEntry{Value: uint64(value), Steps: uint64(steps)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read memo rows: %w", err)
	}
	return entries, nil
}
