package file

import (
	"context"
	"math/big"
	"os"
	"testing"

	"github.com/aretw0/stoptime/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSave_KeepsPreviousCheckpointUntilRename(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	state, err := domain.NewState(big.NewInt(97))
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, state))

	dest := store.Path(state.Key)
	var renames int
	rename = func(oldPath, newPath string) error {
		renames++
		// The previous record must still be readable right before the swap.
		_, statErr := os.Stat(dest)
		assert.NoError(t, statErr, "checkpoint missing before rename")
		prev, loadErr := store.Load(ctx, state.Key)
		if assert.NoError(t, loadErr) {
			assert.Equal(t, uint64(0), prev.Steps)
		}
		return os.Rename(oldPath, newPath)
	}
	t.Cleanup(func() { rename = os.Rename })

	state.Current.SetInt64(73)
	state.Steps = 5
	require.NoError(t, store.Save(ctx, state))
	assert.Equal(t, 1, renames)

	loaded, err := store.Load(ctx, state.Key)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), loaded.Steps)
}

func TestSave_FailedRenameKeepsPreviousCheckpoint(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	state, err := domain.NewState(big.NewInt(97))
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, state))

	rename = func(string, string) error { return os.ErrPermission }
	t.Cleanup(func() { rename = os.Rename })

	state.Steps = 5
	assert.Error(t, store.Save(ctx, state))

	loaded, err := store.Load(ctx, state.Key)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), loaded.Steps)

	entries, err := os.ReadDir(store.BasePath)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file is cleaned up")
}
