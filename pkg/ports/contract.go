package ports

import (
	"context"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/stoptime/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunCheckpointStoreContract runs a suite of tests to verify that a CheckpointStore
// implementation adheres to the defined interface contract.
func RunCheckpointStoreContract(t *testing.T, store CheckpointStore) {
	ctx := context.Background()

	huge, ok := new(big.Int).SetString("7"+strings.Repeat("31415926535897932384", 60), 10)
	require.True(t, ok)

	t.Run("Save and Load", func(t *testing.T) {
		state, err := domain.NewState(huge)
		require.NoError(t, err)
		state.Current.Mul(state.Current, big.NewInt(3))
		state.Current.Add(state.Current, big.NewInt(1))
		state.Steps = 987654321
		state.MaxDigits++

		require.NoError(t, store.Save(ctx, state), "Save should not return error")

		loaded, err := store.Load(ctx, state.Key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, 0, loaded.Current.Cmp(state.Current), "current value must round-trip exactly")
		assert.Equal(t, 0, loaded.Original.Cmp(state.Original), "original value must round-trip exactly")
		assert.Equal(t, state.Steps, loaded.Steps)
		assert.Equal(t, state.Key, loaded.Key)
		assert.Equal(t, state.MaxDigits, loaded.MaxDigits)
	})

	t.Run("Latest Wins", func(t *testing.T) {
		state, err := domain.NewState(big.NewInt(27))
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, state))

		state.Current.SetInt64(41)
		state.Steps = 2
		require.NoError(t, store.Save(ctx, state))

		loaded, err := store.Load(ctx, state.Key)
		require.NoError(t, err)
		assert.Equal(t, int64(41), loaded.Current.Int64())
		assert.Equal(t, uint64(2), loaded.Steps)
	})

	t.Run("Isolation", func(t *testing.T) {
		state, err := domain.NewState(big.NewInt(123))
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, state))

		// Mutating the caller's copy must not reach the store.
		state.Current.SetInt64(370)
		state.Steps = 99

		loaded, err := store.Load(ctx, state.Key)
		require.NoError(t, err)
		assert.Equal(t, int64(123), loaded.Current.Int64())
		assert.Equal(t, uint64(0), loaded.Steps)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, domain.ProblemKey(987))
		assert.ErrorIs(t, err, domain.ErrCheckpointNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		state, err := domain.NewState(big.NewInt(1234))
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, state))

		require.NoError(t, store.Delete(ctx, state.Key), "Delete should not return error")

		_, err = store.Load(ctx, state.Key)
		assert.ErrorIs(t, err, domain.ErrCheckpointNotFound, "Load after Delete should return ErrCheckpointNotFound")

		assert.NoError(t, store.Delete(ctx, state.Key), "Delete of an absent key should not return error")
	})

	t.Run("List", func(t *testing.T) {
		s1, _ := domain.NewState(big.NewInt(12345))
		s2, _ := domain.NewState(big.NewInt(123456))
		require.NoError(t, store.Save(ctx, s1))
		require.NoError(t, store.Save(ctx, s2))

		defer func() {
			_ = store.Delete(ctx, s1.Key)
			_ = store.Delete(ctx, s2.Key)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, s1.Key)
		assert.Contains(t, keys, s2.Key)
	})
}

// RunLockerContract verifies mutual exclusion and release for a Locker implementation.
func RunLockerContract(t *testing.T, locker Locker) {
	ctx := context.Background()
	key := domain.ProblemKey(42)

	t.Run("Lock and Unlock", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)
		require.NotNil(t, unlock)
		assert.NoError(t, unlock(ctx))
	})

	t.Run("Contention", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)

		waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(waitCtx, key, 5*time.Second)
		assert.ErrorIs(t, err, context.DeadlineExceeded, "second holder must block until the deadline")

		// Other keys are independent.
		other, err := locker.Lock(ctx, key+1, 5*time.Second)
		require.NoError(t, err)
		assert.NoError(t, other(ctx))

		require.NoError(t, unlock(ctx))

		again, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)
		assert.NoError(t, again(ctx))
	})
}
