package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aretw0/stoptime/pkg/domain"
	"github.com/aretw0/stoptime/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// unlockScript deletes the lock only if we still own it.
var unlockScript = backend.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Locker implements ports.Locker using Redis.
type Locker struct {
	client *backend.Client
	prefix string
	poll   time.Duration
}

// NewLocker creates a new Redis locker.
func NewLocker(client *backend.Client, prefix string) *Locker {
	return &Locker{
		client: client,
		prefix: prefix,
		poll:   100 * time.Millisecond,
	}
}

// LockKey returns the redis key guarding a problem key.
func (l *Locker) LockKey(key domain.ProblemKey) string {
	return l.prefix + "lock:" + key.Name()
}

// Lock acquires the lock for key using Redis SET NX PX, polling until the context is done.
func (l *Locker) Lock(ctx context.Context, key domain.ProblemKey, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.LockKey(key)
	val := strconv.FormatInt(time.Now().UnixNano(), 10)

	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, val, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis setnx %s: %w", lockKey, err)
		}
		if ok {
			return func(ctx context.Context) error {
				return unlockScript.Run(ctx, l.client, []string{lockKey}, val).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
