package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/stoptime/pkg/domain"
	"github.com/aretw0/stoptime/pkg/ports"
)

type loggingMiddleware struct {
	next   ports.CheckpointStore
	logger *slog.Logger
}

// NewLoggingMiddleware logs every store call at debug level.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.CheckpointStore) ports.CheckpointStore {
		return &loggingMiddleware{next: next, logger: logger}
	}
}

func (m *loggingMiddleware) log(ctx context.Context, op string, key domain.ProblemKey, start time.Time, err error) {
	attrs := []any{"op", op, "checkpoint", key.Name(), "duration", time.Since(start)}
	if err != nil {
		attrs = append(attrs, "err", err)
	}
	m.logger.DebugContext(ctx, "checkpoint store", attrs...)
}

func (m *loggingMiddleware) Save(ctx context.Context, state *domain.State) error {
	start := time.Now()
	err := m.next.Save(ctx, state)
	m.log(ctx, "save", state.Key, start, err)
	return err
}

func (m *loggingMiddleware) Load(ctx context.Context, key domain.ProblemKey) (*domain.State, error) {
	start := time.Now()
	state, err := m.next.Load(ctx, key)
	m.log(ctx, "load", key, start, err)
	return state, err
}

func (m *loggingMiddleware) Delete(ctx context.Context, key domain.ProblemKey) error {
	start := time.Now()
	err := m.next.Delete(ctx, key)
	m.log(ctx, "delete", key, start, err)
	return err
}

func (m *loggingMiddleware) List(ctx context.Context) ([]domain.ProblemKey, error) {
	return m.next.List(ctx)
}
