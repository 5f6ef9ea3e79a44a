package sqlite_test

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/aretw0/stoptime/pkg/adapters/sqlite"
	"github.com/aretw0/stoptime/pkg/domain"
	"github.com/aretw0/stoptime/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, path string) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Contract(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "checkpoints.db"))
	ports.RunCheckpointStoreContract(t, store)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "checkpoints.db")
	ctx := context.Background()

	state, err := domain.NewState(big.NewInt(8675309))
	require.NoError(t, err)
	state.Steps = 40

	first, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, state))
	require.NoError(t, first.Close())

	second := openStore(t, path)
	loaded, err := second.Load(ctx, state.Key)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), loaded.Steps)
	assert.Equal(t, 0, loaded.Original.Cmp(state.Original))

	keys, err := second.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.ProblemKey{7}, keys)
}
