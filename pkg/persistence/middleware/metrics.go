package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/stoptime/pkg/domain"
	"github.com/aretw0/stoptime/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Result label values.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultCorrupt  = "corrupt"
	ResultError    = "error"
)

// StoreMetrics holds the collectors recorded by the metrics middleware.
type StoreMetrics struct {
	Operations *prometheus.CounterVec
	Latency    *prometheus.HistogramVec
}

// NewStoreMetrics creates the collectors and registers them with reg (if not nil).
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stoptime_checkpoint_operations_total",
				Help: "Checkpoint store operations by operation and result",
			},
			[]string{"operation", "result"},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stoptime_checkpoint_duration_seconds",
				Help:    "Duration of checkpoint store operations",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
			},
			[]string{"operation"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Operations, m.Latency)
	}
	return m
}

type metricsMiddleware struct {
	next    ports.CheckpointStore
	metrics *StoreMetrics
}

// NewMetricsMiddleware instruments every store call with a counter and a latency histogram.
func NewMetricsMiddleware(m *StoreMetrics) Middleware {
	return func(next ports.CheckpointStore) ports.CheckpointStore {
		return &metricsMiddleware{next: next, metrics: m}
	}
}

func (m *metricsMiddleware) observe(op string, start time.Time, err error) {
	m.metrics.Latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	m.metrics.Operations.WithLabelValues(op, resultOf(err)).Inc()
}

func (m *metricsMiddleware) Save(ctx context.Context, state *domain.State) error {
	start := time.Now()
	err := m.next.Save(ctx, state)
	m.observe("save", start, err)
	return err
}

func (m *metricsMiddleware) Load(ctx context.Context, key domain.ProblemKey) (*domain.State, error) {
	start := time.Now()
	state, err := m.next.Load(ctx, key)
	m.observe("load", start, err)
	return state, err
}

func (m *metricsMiddleware) Delete(ctx context.Context, key domain.ProblemKey) error {
	start := time.Now()
	err := m.next.Delete(ctx, key)
	m.observe("delete", start, err)
	return err
}

func (m *metricsMiddleware) List(ctx context.Context) ([]domain.ProblemKey, error) {
	start := time.Now()
	keys, err := m.next.List(ctx)
	m.observe("list", start, err)
	return keys, err
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, domain.ErrCheckpointNotFound):
		return ResultNotFound
	case errors.Is(err, domain.ErrCorruptCheckpoint):
		return ResultCorrupt
	default:
		return ResultError
	}
}
