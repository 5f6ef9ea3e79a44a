package stoptime

import (
	"context"
	"log/slog"
	"math/big"
	"time"

	"github.com/aretw0/stoptime/internal/logging"
	"github.com/aretw0/stoptime/internal/runtime"
	"github.com/aretw0/stoptime/pkg/domain"
	"github.com/aretw0/stoptime/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Version is the library and CLI version.
var Version = "v0.1.0"

// Result is the outcome of a Run.
type Result = runtime.Result

// Engine is the high-level entry point for the stoptime library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime     *runtime.Engine
	store       ports.CheckpointStore
	hooks       domain.Hooks
	progress    func(steps uint64)
	logger      *slog.Logger
	registerer  prometheus.Registerer
	runtimeOpts []runtime.EngineOption
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore sets where checkpoints are kept. The default is an in-memory store.
func WithStore(store ports.CheckpointStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithProgress registers a callback receiving the steps computed by the current run
// after every batch.
func WithProgress(fn func(steps uint64)) Option {
	return func(e *Engine) {
		e.progress = fn
	}
}

// WithHooks registers lifecycle callbacks.
func WithHooks(hooks domain.Hooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithBatchSize sets the number of steps between checkpoints.
func WithBatchSize(n uint64) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithBatchSize(n))
	}
}

// WithPollInterval sets how often a batch checks for cancellation.
func WithPollInterval(n uint64) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithPollInterval(n))
	}
}

// WithRetireOnComplete deletes a checkpoint once its trajectory reaches 1.
func WithRetireOnComplete() Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithRetireOnComplete(true))
	}
}

// WithLocker guards each problem key with an advisory lock held for ttl.
func WithLocker(locker ports.Locker, ttl time.Duration) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithLocker(locker, ttl, 0))
	}
}

// WithMetrics registers engine metrics on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		e.registerer = reg
	}
}

// New initializes a new Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	hooks := eng.hooks
	if eng.progress != nil {
		user, progress := hooks.OnProgress, eng.progress
		hooks.OnProgress = func(steps uint64) {
			if user != nil {
				user(steps)
			}
			progress(steps)
		}
	}

	rtOpts := append([]runtime.EngineOption{
		runtime.WithLogger(eng.logger),
		runtime.WithHooks(hooks),
	}, eng.runtimeOpts...)
	if eng.registerer != nil {
		rtOpts = append(rtOpts, runtime.WithMetrics(runtime.NewMetrics(eng.registerer)))
	}

	eng.runtime = runtime.NewEngine(eng.store, rtOpts...)
	eng.store = eng.runtime.Store()
	return eng
}

// Run computes the stop time of n, resuming from a stored checkpoint when one matches.
// Canceling ctx interrupts the run after saving its progress; the partial Result has
// Interrupted set and the error is nil.
func (e *Engine) Run(ctx context.Context, n *big.Int) (Result, error) {
	return e.runtime.Run(ctx, n)
}

// Store returns the checkpoint store in use.
func (e *Engine) Store() ports.CheckpointStore {
	return e.store
}

// Sequence returns the trajectory of n applying one rule at a time, down to 1.
// A limit > 0 truncates it.
func Sequence(n *big.Int, limit int) ([]*big.Int, bool, error) {
	return runtime.Sequence(n, limit)
}
