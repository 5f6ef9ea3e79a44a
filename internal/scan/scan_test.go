package scan

import (
	"context"
	"math"
	"math/big"
	"testing"

	"github.com/aretw0/stoptime/internal/runtime"
	"github.com/aretw0/stoptime/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referenceSteps(n uint64) uint64 {
	v := new(big.Int).SetUint64(n)
	var steps uint64
	for !(v.IsUint64() && v.Uint64() == 1) {
		steps += runtime.Step(v)
	}
	return steps
}

func TestStopTime(t *testing.T) {
	s, err := New(Options{CacheSize: 64})
	require.NoError(t, err)

	cases := map[uint64]uint64{1: 0, 2: 1, 3: 7, 6: 8, 7: 16, 27: 111, 97: 118, 871: 178, 837799: 524, 63728127: 949}
	for n, want := range cases {
		assert.Equal(t, want, s.StopTime(n), "n=%d", n)
	}
	// Second pass is served from the memo.
	assert.Equal(t, uint64(111), s.StopTime(27))
}

func TestStopTime_Overflow(t *testing.T) {
	s, err := New(Options{})
	require.NoError(t, err)

	for n := uint64(math.MaxUint64 - 40); ; n++ {
		assert.Equal(t, referenceSteps(n), s.StopTime(n), "n=%d", n)
		if n == math.MaxUint64 {
			break
		}
	}
}

func TestScan_Small(t *testing.T) {
	res, err := Scan(context.Background(), 1, 30, Options{})
	require.NoError(t, err)
	assert.Equal(t, uint64(27), res.Number)
	assert.Equal(t, uint64(111), res.Steps)
	assert.Equal(t, uint64(30), res.Computed)
	assert.Positive(t, res.CacheHits)
}

func TestScan_TiesPickSmallest(t *testing.T) {
	// 12 and 13 both take 9 steps.
	res, err := Scan(context.Background(), 12, 13, Options{})
	require.NoError(t, err)
	assert.Equal(t, uint64(12), res.Number)
	assert.Equal(t, uint64(9), res.Steps)
}

func TestScan_Million(t *testing.T) {
	if testing.Short() {
		t.Skip("long range")
	}
	res, err := Scan(context.Background(), 1, 999_999, Options{})
	require.NoError(t, err)
	assert.Equal(t, uint64(837799), res.Number)
	assert.Equal(t, uint64(524), res.Steps)
}

func TestScan_Progress(t *testing.T) {
	var calls []uint64
	_, err := Scan(context.Background(), 1, 100, Options{
		ProgressEvery: 25,
		Progress: func(done, total uint64, _ Result) {
			assert.Equal(t, uint64(100), total)
			calls = append(calls, done)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{25, 50, 75, 100}, calls)
}

func TestScan_InvalidRange(t *testing.T) {
	_, err := Scan(context.Background(), 0, 10, Options{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = Scan(context.Background(), 10, 9, Options{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestScan_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Scan(ctx, 1, 1_000_000, Options{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint64(pollEvery), res.Computed)
}
