package ports

import (
	"context"
	"time"

	"github.com/aretw0/stoptime/pkg/domain"
)

// UnlockFunc is a function that releases a lock.
type UnlockFunc func(ctx context.Context) error

// Locker defines advisory locking on a problem key.
// Two engines sharing a key is a misuse case; a Locker turns it into an explicit error.
type Locker interface {
	// Lock attempts to acquire the lock for key.
	// It blocks until the lock is acquired or the context is canceled.
	// The TTL bounds how long a crashed holder keeps the lock (implementation specific).
	// Returns an UnlockFunc that MUST be called to release the lock.
	// Errors carry the cause only; callers attach domain.ErrLockAcquire.
	Lock(ctx context.Context, key domain.ProblemKey, ttl time.Duration) (UnlockFunc, error)
}
