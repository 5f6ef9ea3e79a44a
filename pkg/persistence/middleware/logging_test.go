package middleware_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math/big"
	"testing"

	"github.com/aretw0/stoptime/internal/logging"
	"github.com/aretw0/stoptime/pkg/domain"
	"github.com/aretw0/stoptime/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	mock := NewMockStore()
	store := middleware.Chain(mock, middleware.NewLoggingMiddleware(logging.NewWithWriter(&buf, slog.LevelDebug, false)))
	ctx := context.Background()

	state, err := domain.NewState(big.NewInt(27))
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, state))

	_, err = store.Load(ctx, 9)
	assert.ErrorIs(t, err, domain.ErrCheckpointNotFound)

	mock.FailSave = errors.New("disk full")
	assert.Error(t, store.Save(ctx, state))

	out := buf.String()
	assert.Contains(t, out, "op=save checkpoint=checkpoint_random_2digits_latest")
	assert.Contains(t, out, "op=load checkpoint=checkpoint_random_9digits_latest")
	assert.Contains(t, out, `err="disk full"`)
}
