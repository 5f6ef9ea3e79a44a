package middleware_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math/big"
	"testing"

	"github.com/aretw0/stoptime/pkg/domain"
	"github.com/aretw0/stoptime/pkg/persistence/middleware"
	"github.com/aretw0/stoptime/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddleware_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := middleware.NewStoreMetrics(reg)
	underlying := NewMockStore()
	store := middleware.NewMetricsMiddleware(metrics)(underlying)
	ctx := context.Background()

	state, err := domain.NewState(big.NewInt(27))
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, state))
	_, err = store.Load(ctx, state.Key)
	require.NoError(t, err)
	_, err = store.Load(ctx, 77)
	require.ErrorIs(t, err, domain.ErrCheckpointNotFound)

	underlying.FailSave = errors.New("disk full")
	assert.Error(t, store.Save(ctx, state))

	ops := metrics.Operations
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("save", middleware.ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("save", middleware.ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("load", middleware.ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("load", middleware.ResultNotFound)))

	n, err := testutil.GatherAndCount(reg, "stoptime_checkpoint_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one histogram series per observed operation")
}

func TestMiddleware_ContractThroughChain(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	store := middleware.Chain(NewMockStore(),
		middleware.NewMetricsMiddleware(middleware.NewStoreMetrics(nil)),
		middleware.NewLoggingMiddleware(logger),
	)
	ports.RunCheckpointStoreContract(t, store)

	assert.Contains(t, buf.String(), "op=save")
	assert.Contains(t, buf.String(), "checkpoint=checkpoint_random_2digits_latest")
}
