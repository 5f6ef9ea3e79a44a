package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aretw0/stoptime/internal/config"
	httpAdapter "github.com/aretw0/stoptime/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ServeOptions configures the read-only checkpoint server.
type ServeOptions struct {
	Config  config.Config
	Addr    string
	Debug   bool
	Version string
	Out     io.Writer
}

// Serve exposes the configured store over HTTP until ctx is done.
func Serve(ctx context.Context, opts ServeOptions) error {
	logger := NewLogger(opts.Config, opts.Debug)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	backend, err := OpenBackend(ctx, opts.Config, logger, reg)
	if err != nil {
		return err
	}
	defer backend.Close()

	srv := &http.Server{
		Addr: opts.Addr,
		Handler: httpAdapter.NewHandler(backend.Store,
			httpAdapter.WithGatherer(reg),
			httpAdapter.WithLogger(logger),
			httpAdapter.WithVersion(opts.Version),
		),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(opts.Out, "Serving %s checkpoints on %s", backend.Name, srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "err", err)
			return srv.Close()
		}
		printSystemMessage(opts.Out, "Server stopped gracefully")
		return nil
	}
}
