package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/stoptime/pkg/adapters/redis"
	"github.com/aretw0/stoptime/pkg/domain"
	"github.com/aretw0/stoptime/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunLockerContract(t, redis.NewLocker(client, "test:"))
}

func TestRedisLocker_Keys(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()
	key := domain.ProblemKey(10)

	unlock, err := locker.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:checkpoint_random_10digits_latest"), "Lock key should be set in Redis")

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:checkpoint_random_10digits_latest"), "Lock key should be removed after unlock")
}

func TestRedisLocker_ExpiredHolderCannotRelease(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()
	key := domain.ProblemKey(11)

	stale, err := locker.Lock(ctx, key, time.Second)
	require.NoError(t, err)

	// The first holder's TTL lapses and a second run takes over.
	mr.FastForward(2 * time.Second)
	fresh, err := locker.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)

	require.NoError(t, stale(ctx))
	assert.True(t, mr.Exists(locker.LockKey(key)), "stale unlock must not release the new holder's lock")

	require.NoError(t, fresh(ctx))
	assert.False(t, mr.Exists(locker.LockKey(key)))
}
