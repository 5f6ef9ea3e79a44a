package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/aretw0/stoptime/internal/logging"
	"github.com/aretw0/stoptime/pkg/adapters/memory"
	"github.com/aretw0/stoptime/pkg/domain"
	"github.com/aretw0/stoptime/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed run keeps its problem key locked.
const DefaultLockTTL = 24 * time.Hour

// Outcome labels for Result.
const (
	OutcomeComplete    = "complete"
	OutcomeInterrupted = "interrupted"
)

// Result is the outcome of a Run.
type Result struct {
	Key          domain.ProblemKey
	Steps        uint64 // total stop time so far
	MaxDigits    uint64
	Interrupted  bool // canceled before reaching 1; Steps is partial
	Resumed      bool // started from a stored checkpoint
	StepsThisRun uint64
	Batches      uint64
	Elapsed      time.Duration
}

// Outcome returns the metric label of the result.
func (r Result) Outcome() string {
	if r.Interrupted {
		return OutcomeInterrupted
	}
	return OutcomeComplete
}

// Engine runs Collatz trajectories in checkpointed batches.
type Engine struct {
	store        ports.CheckpointStore
	locker       ports.Locker
	lockTTL      time.Duration
	lockWait     time.Duration
	batchSize    uint64
	pollInterval uint64
	retire       bool
	hooks        domain.Hooks
	logger       *slog.Logger
	metrics      *Metrics
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithBatchSize sets the number of elementary steps between checkpoints.
func WithBatchSize(n uint64) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithPollInterval sets how many steps run between cancellation checks inside a batch.
func WithPollInterval(n uint64) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.pollInterval = n
		}
	}
}

// WithLocker takes an advisory lock on the problem key for the duration of a run.
// wait bounds how long Run waits for a busy key.
func WithLocker(locker ports.Locker, ttl, wait time.Duration) EngineOption {
	return func(e *Engine) {
		e.locker = locker
		if ttl > 0 {
			e.lockTTL = ttl
		}
		if wait > 0 {
			e.lockWait = wait
		}
	}
}

// WithRetireOnComplete deletes the checkpoint once the trajectory reaches 1.
func WithRetireOnComplete(retire bool) EngineOption {
	return func(e *Engine) {
		e.retire = retire
	}
}

// WithHooks registers observer callbacks.
func WithHooks(hooks domain.Hooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics records engine metrics.
func WithMetrics(m *Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine creates an engine persisting to store. A nil store keeps checkpoints in memory.
func NewEngine(store ports.CheckpointStore, opts ...EngineOption) *Engine {
	if store == nil {
		store = memory.NewStore()
	}
	e := &Engine{
		store:        store,
		lockTTL:      DefaultLockTTL,
		lockWait:     5 * time.Second,
		batchSize:    domain.DefaultBatchSize,
		pollInterval: domain.DefaultPollInterval,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the checkpoint store.
func (e *Engine) Store() ports.CheckpointStore {
	return e.store
}

// Run computes the stop time and maximum digit count of n, resuming from a matching
// checkpoint when one exists.
//
// Cancellation of ctx is not an error: Run returns the partial Result with
// Interrupted set, after a best-effort save of the state reached.
// Checkpoint failures are reported through logs and hooks and never abort the run.
func (e *Engine) Run(ctx context.Context, n *big.Int) (Result, error) {
	start := time.Now()
	if n == nil || n.Sign() <= 0 {
		return Result{}, domain.ErrInvalidInput
	}
	key := domain.KeyOf(n)

	if e.locker != nil {
		lockCtx, cancel := context.WithTimeout(ctx, e.lockWait)
		unlock, err := e.locker.Lock(lockCtx, key, e.lockTTL)
		cancel()
		if err != nil {
			// Lockers report the cause; the sentinel is attached here only.
			return Result{Key: key}, fmt.Errorf("%w: %s: %v", domain.ErrLockAcquire, key.Name(), err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				e.logger.Warn("Failed to release checkpoint lock", "checkpoint", key.Name(), "err", err)
			}
		}()
	}

	state, resumed := e.resume(ctx, n, key)
	res := Result{Key: key, Resumed: resumed}

	e.logger.Info("Trajectory started",
		"digits", key,
		"resumed", resumed,
		"steps", state.Steps,
		"max_digits", state.MaxDigits,
	)
	if e.hooks.OnStart != nil {
		e.hooks.OnStart(ctx, state, resumed)
	}

	tracker := NewDigitTracker(state.MaxDigits)
	var st stepper

	for !state.Done() {
		if ctx.Err() != nil {
			return e.interrupt(ctx, state, res, start), nil
		}

		taken, canceled := e.runBatch(ctx, state, tracker, &st)
		state.MaxDigits = tracker.Max()
		res.StepsThisRun += taken
		if e.metrics != nil {
			e.metrics.Steps.Add(float64(taken))
		}

		if canceled {
			return e.interrupt(ctx, state, res, start), nil
		}

		res.Batches++
		if e.metrics != nil {
			e.metrics.Batches.Inc()
			e.metrics.MaxDigits.WithLabelValues(key.String()).Set(float64(state.MaxDigits))
		}
		if e.hooks.OnBatch != nil {
			e.hooks.OnBatch(ctx, &domain.BatchEvent{
				Key:          key,
				Batch:        res.Batches,
				Steps:        state.Steps,
				StepsThisRun: res.StepsThisRun,
				MaxDigits:    state.MaxDigits,
				Elapsed:      time.Since(start),
			})
		}

		e.save(ctx, state)

		if e.hooks.OnProgress != nil {
			e.hooks.OnProgress(res.StepsThisRun)
		}
	}

	if e.retire {
		if err := e.store.Delete(ctx, key); err != nil {
			e.warn(ctx, "delete", key, err)
		}
	}

	if e.hooks.OnComplete != nil {
		e.hooks.OnComplete(ctx, state)
	}
	res.Steps = state.Steps
	res.MaxDigits = state.MaxDigits
	res.Elapsed = time.Since(start)
	e.finish(res)
	return res, nil
}

// resume returns the checkpointed state for n, or a fresh one.
func (e *Engine) resume(ctx context.Context, n *big.Int, key domain.ProblemKey) (*domain.State, bool) {
	loaded, err := e.store.Load(ctx, key)
	switch {
	case err == nil:
		if loaded.Matches(n) && loaded.Key == key {
			return loaded, true
		}
		e.logger.Debug("Ignoring checkpoint of another starting value", "checkpoint", key.Name())
	case errors.Is(err, domain.ErrCheckpointNotFound):
	default:
		e.warn(ctx, "load", key, err)
	}

	fresh, err := domain.NewState(n)
	if err != nil {
		// n was validated by Run.
		panic(fmt.Sprintf("stoptime: fresh state for validated input: %v", err))
	}
	return fresh, false
}

// runBatch advances state by one batch and reports the steps taken and whether ctx was
// canceled before the batch completed.
func (e *Engine) runBatch(ctx context.Context, state *domain.State, tracker *DigitTracker, st *stepper) (uint64, bool) {
	v := state.Current
	var taken, sincePoll uint64

	for taken < e.batchSize && !state.Done() {
		if v.Sign() <= 0 {
			panic("stoptime: trajectory left the positive integers")
		}
		n, grew := st.advance(v, e.batchSize-taken)
		if grew {
			tracker.Observe(v)
		}
		taken += n
		state.Steps += n

		sincePoll += n
		if sincePoll >= e.pollInterval {
			sincePoll = 0
			if ctx.Err() != nil {
				return taken, true
			}
		}
	}
	return taken, false
}

func (e *Engine) save(ctx context.Context, state *domain.State) {
	if err := e.store.Save(ctx, state); err != nil {
		e.warn(ctx, "save", state.Key, err)
	}
}

// interrupt persists the partial state and builds the interrupted result.
func (e *Engine) interrupt(ctx context.Context, state *domain.State, res Result, start time.Time) Result {
	e.save(context.WithoutCancel(ctx), state)

	res.Interrupted = true
	res.Steps = state.Steps
	res.MaxDigits = state.MaxDigits
	res.Elapsed = time.Since(start)
	e.logger.Info("Trajectory interrupted", "digits", res.Key, "steps", res.Steps)
	e.finish(res)
	return res
}

func (e *Engine) warn(ctx context.Context, op string, key domain.ProblemKey, err error) {
	e.logger.Warn("Checkpoint "+op+" failed, continuing", "checkpoint", key.Name(), "err", err)
	if e.metrics != nil {
		e.metrics.PersistWarnings.WithLabelValues(op).Inc()
	}
	if e.hooks.OnPersistWarning != nil {
		e.hooks.OnPersistWarning(ctx, key, fmt.Errorf("checkpoint %s: %w", op, err))
	}
}

func (e *Engine) finish(res Result) {
	if e.metrics != nil {
		e.metrics.Runs.WithLabelValues(res.Outcome()).Inc()
	}
	if !res.Interrupted {
		e.logger.Info("Trajectory complete",
			"digits", res.Key,
			"steps", res.Steps,
			"max_digits", res.MaxDigits,
			"elapsed", res.Elapsed,
		)
	}
}
