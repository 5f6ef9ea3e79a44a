package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"time"

	"github.com/aretw0/stoptime/internal/config"
	"github.com/aretw0/stoptime/internal/presentation/tui"
	"github.com/aretw0/stoptime/internal/runtime"
	httpAdapter "github.com/aretw0/stoptime/pkg/adapters/http"
	"github.com/aretw0/stoptime/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// RunOptions configures a single trajectory run from the command line.
type RunOptions struct {
	Config config.Config
	// Number is the starting value; empty when RandomDigits is used.
	Number       string
	RandomDigits uint64
	// Fresh ignores a stored random-value checkpoint.
	Fresh   bool
	Yes     bool
	Debug   bool
	Quiet   bool
	Version string
	In      io.Reader
	Out     io.Writer
}

// RunTrajectory computes one stop time, printing progress and the final result.
// An interrupted run saves its state and returns nil.
func RunTrajectory(ctx context.Context, opts RunOptions) error {
	cfg := opts.Config
	logger := NewLogger(cfg, opts.Debug)

	reg := prometheus.NewRegistry()
	backend, err := OpenBackend(ctx, cfg, logger, reg)
	if err != nil {
		return err
	}
	defer backend.Close()

	if cfg.MetricsAddr != "" {
		stop := serveBackground(cfg.MetricsAddr, httpAdapter.NewHandler(backend.Store,
			httpAdapter.WithGatherer(reg),
			httpAdapter.WithLogger(logger),
			httpAdapter.WithVersion(opts.Version),
		), logger)
		defer stop()
	}

	n, err := startingValue(ctx, opts, backend)
	if err != nil {
		return err
	}

	if !opts.Quiet {
		tui.PrintBanner(opts.Out, opts.Version)
		printSystemMessage(opts.Out, "Computing stop time of a %d-digit value (store: %s)", domain.DigitLen(n), backend.Name)
	}

	progress := tui.NewProgress(opts.Out, time.Second)
	engineOpts := []runtime.EngineOption{
		runtime.WithBatchSize(cfg.BatchSize),
		runtime.WithPollInterval(cfg.PollInterval),
		runtime.WithRetireOnComplete(cfg.Retire),
		runtime.WithLogger(logger),
		runtime.WithMetrics(runtime.NewMetrics(reg)),
		runtime.WithHooks(runHooks(opts, progress, logger)),
	}
	if cfg.Lock {
		engineOpts = append(engineOpts, runtime.WithLocker(backend.Locker, cfg.LockTTL, 0))
	}

	res, err := runtime.NewEngine(backend.Store, engineOpts...).Run(ctx, n)
	progress.Done()
	if err != nil {
		return handleExecutionError(err)
	}

	printResult(opts, progress, res)
	return nil
}

func runHooks(opts RunOptions, progress *tui.Progress, logger *slog.Logger) domain.Hooks {
	hooks := domain.Hooks{
		OnStart: func(_ context.Context, s *domain.State, resumed bool) {
			if resumed && !opts.Quiet {
				printSystemMessage(opts.Out, "Resuming checkpoint %s at step %s", s.Key.Name(), tui.FormatCount(s.Steps))
			}
		},
		OnPersistWarning: func(_ context.Context, key domain.ProblemKey, err error) {
			if !opts.Quiet {
				progress.Done()
				printSystemMessage(opts.Out, "Warning: %v", err)
			}
		},
	}
	if !opts.Quiet {
		hooks.OnBatch = func(_ context.Context, ev *domain.BatchEvent) {
			progress.Batch(ev)
		}
	}
	if opts.Debug {
		hooks.OnComplete = func(_ context.Context, s *domain.State) {
			logger.Debug("Trajectory reached 1", "checkpoint", s.Key.Name(), "steps", s.Steps)
		}
	}
	return hooks
}

func printResult(opts RunOptions, progress *tui.Progress, res runtime.Result) {
	if res.Interrupted {
		printSystemMessage(opts.Out, "Interrupted at step %s. Progress saved to %s; run again to resume.",
			tui.FormatCount(res.Steps), res.Key.Name())
		return
	}
	if opts.Quiet {
		fmt.Fprintf(opts.Out, "%d %d\n", res.Steps, res.MaxDigits)
		return
	}
	progress.Field("Steps", tui.FormatCount(res.Steps))
	progress.Field("Max digits", tui.FormatCount(res.MaxDigits))
	progress.Field("Elapsed", tui.FormatElapsed(res.Elapsed))
}

// startingValue resolves the number to run. For random values an existing checkpoint of
// the same digit count is resumed unless the user declines or asks for a fresh value.
func startingValue(ctx context.Context, opts RunOptions, backend *Backend) (*big.Int, error) {
	switch {
	case opts.Number != "" && opts.RandomDigits > 0:
		return nil, fmt.Errorf("%w: give a number or --random-digits, not both", domain.ErrInvalidInput)
	case opts.Number != "":
		return ParseNumber(opts.Number)
	case opts.RandomDigits == 0:
		return nil, fmt.Errorf("%w: a number or --random-digits is required", domain.ErrInvalidInput)
	}

	key := domain.ProblemKey(opts.RandomDigits)
	if !opts.Fresh {
		state, err := backend.Store.Load(ctx, key)
		switch {
		case err == nil:
			question := fmt.Sprintf("Found checkpoint %s at step %s. Resume it?", key.Name(), tui.FormatCount(state.Steps))
			if opts.Yes || !tui.IsTerminal(opts.In) || tui.Confirm(opts.In, opts.Out, question) {
				return state.Original, nil
			}
		case errors.Is(err, domain.ErrCheckpointNotFound):
		default:
			// The engine reports unreadable checkpoints itself.
		}
	}
	return RandomDigits(opts.RandomDigits)
}

// serveBackground starts an HTTP server and returns a function that shuts it down.
func serveBackground(addr string, handler http.Handler, logger *slog.Logger) func() {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "addr", addr, "err", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
