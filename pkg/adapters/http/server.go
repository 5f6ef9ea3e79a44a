// Package http exposes checkpoints and metrics over a read-only HTTP API.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/stoptime/pkg/domain"
	"github.com/aretw0/stoptime/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves checkpoint summaries from a store.
type Server struct {
	Store    ports.CheckpointStore
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
	Version  string
}

// Summary is the listing entry for one checkpoint.
type Summary struct {
	DigitCount  uint64 `json:"digit_count"`
	StepCount   uint64 `json:"step_count"`
	MaxDigits   uint64 `json:"max_digits"`
	CurrentBits int    `json:"current_bits"`
}

// Option configures the handler.
type Option func(*Server)

// WithGatherer serves /metrics from g instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.Gatherer = g }
}

// WithLogger sets the request error logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.Logger = l }
}

// WithVersion reports v from /health.
func WithVersion(v string) Option {
	return func(s *Server) { s.Version = v }
}

// NewHandler creates the HTTP handler for a checkpoint store.
func NewHandler(store ports.CheckpointStore, opts ...Option) http.Handler {
	s := &Server{
		Store:    store,
		Gatherer: prometheus.DefaultGatherer,
		Logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", s.GetHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	r.Route("/checkpoints", func(r chi.Router) {
		r.Get("/", s.ListCheckpoints)
		r.Get("/{digits}", s.GetCheckpoint)
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	if s.Version != "" {
		resp["version"] = s.Version
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// ListCheckpoints handles GET /checkpoints.
func (s *Server) ListCheckpoints(w http.ResponseWriter, r *http.Request) {
	keys, err := s.Store.List(r.Context())
	if err != nil {
		s.Logger.Error("ListCheckpoints failed", "err", err)
		http.Error(w, "failed to list checkpoints", http.StatusInternalServerError)
		return
	}

	out := make([]Summary, 0, len(keys))
	for _, key := range keys {
		state, err := s.Store.Load(r.Context(), key)
		if err != nil {
			// Skip records that vanished or no longer decode.
			s.Logger.Warn("ListCheckpoints skipped record", "key", key.Name(), "err", err)
			continue
		}
		out = append(out, Summary{
			DigitCount:  uint64(state.Key),
			StepCount:   state.Steps,
			MaxDigits:   state.MaxDigits,
			CurrentBits: state.Current.BitLen(),
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// GetCheckpoint handles GET /checkpoints/{digits} and returns the full record.
func (s *Server) GetCheckpoint(w http.ResponseWriter, r *http.Request) {
	key, err := domain.ParseKey(chi.URLParam(r, "digits"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	state, err := s.Store.Load(r.Context(), key)
	switch {
	case errors.Is(err, domain.ErrCheckpointNotFound):
		http.Error(w, "checkpoint not found", http.StatusNotFound)
		return
	case errors.Is(err, domain.ErrCorruptCheckpoint):
		http.Error(w, "checkpoint is corrupt", http.StatusUnprocessableEntity)
		return
	case err != nil:
		s.Logger.Error("GetCheckpoint failed", "key", key.Name(), "err", err)
		http.Error(w, "failed to load checkpoint", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, domain.NewCheckpoint(state))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}
