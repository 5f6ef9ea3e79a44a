package redis_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/stoptime/pkg/adapters/redis"
	"github.com/aretw0/stoptime/pkg/domain"
	"github.com/aretw0/stoptime/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ports.RunCheckpointStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	state, err := domain.NewState(big.NewInt(271828))
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, state))

	keys, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, keys, state.Key)

	// Key expiration in miniredis follows its own clock.
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, state.Key)
	assert.ErrorIs(t, err, domain.ErrCheckpointNotFound)

	// Index pruning compares against time.Now().
	time.Sleep(1200 * time.Millisecond)

	keys, err = store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()
	state, err := domain.NewState(big.NewInt(99))
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, state))

	assert.True(t, mr.Exists("custom:app:checkpoint_random_2digits_latest"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	keys, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []domain.ProblemKey{2}, keys)
}

func TestRedisStore_Corrupt(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)

	require.NoError(t, mr.Set(redis.DefaultPrefix+domain.ProblemKey(4).Name(), "garbage"))

	_, err := store.Load(context.Background(), 4)
	assert.ErrorIs(t, err, domain.ErrCorruptCheckpoint)
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	require.NoError(t, store.Ping(context.Background()))

	mr.Close()

	state, err := domain.NewState(big.NewInt(7))
	require.NoError(t, err)
	err = store.Save(context.Background(), state)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrCheckpointNotFound)
}
