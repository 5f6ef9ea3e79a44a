package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/stoptime/pkg/domain"
	"github.com/aretw0/stoptime/pkg/ports"
)

// Locker implements ports.Locker within a single process.
// The TTL is ignored: an in-process holder cannot crash without taking the lock with it.
type Locker struct {
	mu   sync.Mutex
	held map[domain.ProblemKey]chan struct{}
}

// NewLocker creates a new in-process locker.
func NewLocker() *Locker {
	return &Locker{held: make(map[domain.ProblemKey]chan struct{})}
}

// Lock blocks until key is free or ctx is done.
func (l *Locker) Lock(ctx context.Context, key domain.ProblemKey, ttl time.Duration) (ports.UnlockFunc, error) {
	for {
		l.mu.Lock()
		released, busy := l.held[key]
		if !busy {
			ch := make(chan struct{})
			l.held[key] = ch
			l.mu.Unlock()

			var once sync.Once
			return func(context.Context) error {
				once.Do(func() {
					l.mu.Lock()
					delete(l.held, key)
					l.mu.Unlock()
					close(ch)
				})
				return nil
			}, nil
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-released:
		}
	}
}
