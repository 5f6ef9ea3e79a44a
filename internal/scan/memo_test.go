package scan

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemo_RoundTrip(t *testing.T) {
	for _, name := range []string{"memo.json", "memo.db"} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "nested", name)

			first, err := New(Options{CacheSize: 1 << 16})
			require.NoError(t, err)
			res, err := first.Scan(ctx, 1, 1000)
			require.NoError(t, err)
			require.NoError(t, first.SaveMemo(ctx, path))

			// A fresh scanner, as in a later process.
			second, err := New(Options{CacheSize: 1 << 16})
			require.NoError(t, err)
			n, err := second.LoadMemo(ctx, path)
			require.NoError(t, err)
			assert.Equal(t, len(first.Entries()), n)
			assert.Equal(t, first.Entries(), second.Entries(), "order and contents survive")

			assert.Equal(t, uint64(111), second.StopTime(27))
			assert.Equal(t, uint64(1), second.hits, "27 is served from the restored memo")

			again, err := second.Scan(ctx, 1, 1000)
			require.NoError(t, err)
			assert.Equal(t, res.Number, again.Number)
			assert.Equal(t, res.Steps, again.Steps)
			assert.Greater(t, again.CacheHits, res.CacheHits)
		})
	}
}

func TestMemo_MissingIsEmpty(t *testing.T) {
	s, err := New(Options{CacheSize: 16})
	require.NoError(t, err)
	for _, name := range []string{"absent.json", "absent.db"} {
		n, err := s.LoadMemo(context.Background(), filepath.Join(t.TempDir(), name))
		require.NoError(t, err)
		assert.Zero(t, n)
	}
}

func TestMemo_Corrupt(t *testing.T) {
	dir := t.TempDir()
	s, err := New(Options{CacheSize: 16})
	require.NoError(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"version":`), 0644))
	_, err = s.LoadMemo(context.Background(), bad)
	assert.Error(t, err)

	future := filepath.Join(dir, "future.json")
	require.NoError(t, os.WriteFile(future, []byte(`{"version":99,"entries":[[27,111]]}`), 0644))
	_, err = s.LoadMemo(context.Background(), future)
	assert.ErrorContains(t, err, "unsupported memo version")
	assert.Empty(t, s.Entries())
}

func TestMemo_RestoreSkipsImpossibleEntries(t *testing.T) {
	s, err := New(Options{CacheSize: 16})
	require.NoError(t, err)
	n := s.Restore([]MemoEntry{{Value: 0, Steps: 3}, {Value: 1, Steps: 0}, {Value: 8, Steps: 0}, {Value: 8, Steps: 3}})
	assert.Equal(t, 1, n)
	assert.Equal(t, []MemoEntry{{Value: 8, Steps: 3}}, s.Entries())
}

func TestMemo_SQLiteKeepsFullWidthValues(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "memo.sqlite")

	s, err := New(Options{CacheSize: 16})
	require.NoError(t, err)
	want := []MemoEntry{{Value: math.MaxUint64, Steps: 800}, {Value: 27, Steps: 111}}
	s.Restore(want)
	require.NoError(t, s.SaveMemo(ctx, path))

	// Saving again replaces the previous contents.
	s.cache.Remove(27)
	require.NoError(t, s.SaveMemo(ctx, path))

	loaded, err := New(Options{CacheSize: 16})
	require.NoError(t, err)
	_, err = loaded.LoadMemo(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, want[:1], loaded.Entries())
}
