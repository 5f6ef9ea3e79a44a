// Package scan finds the starting value with the longest stop time in a range.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"math/bits"

	"github.com/aretw0/stoptime/internal/logging"
	"github.com/aretw0/stoptime/internal/runtime"
	"github.com/aretw0/stoptime/pkg/domain"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultCacheSize bounds the memo of known stop times.
	DefaultCacheSize = 1 << 20
	pollEvery        = 1024
)

// Result describes the best starting value found.
type Result struct {
	Number    uint64
	Steps     uint64
	Computed  uint64
	CacheHits uint64
}

// Options tunes a scan. The zero value is usable.
type Options struct {
	CacheSize int
	// ProgressEvery calls Progress after that many numbers. Zero disables it.
	ProgressEvery uint64
	Progress      func(done, total uint64, best Result)
	Logger        *slog.Logger
}

// Scanner walks ranges, sharing one memo across calls.
type Scanner struct {
	cache  *lru.Cache[uint64, uint64]
	opts   Options
	logger *slog.Logger
	hits   uint64
	path   []pathEntry
}

type pathEntry struct {
	value uint64
	steps uint64
}

// New creates a Scanner.
func New(opts Options) (*Scanner, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[uint64, uint64](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create memo cache: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{cache: cache, opts: opts, logger: logger}, nil
}

// Scan is a convenience wrapper around New and (*Scanner).Scan.
func Scan(ctx context.Context, start, end uint64, opts Options) (Result, error) {
	s, err := New(opts)
	if err != nil {
		return Result{}, err
	}
	return s.Scan(ctx, start, end)
}

// Scan returns the number in [start, end] with the longest stop time, the smallest on ties.
// On cancellation it returns the best value so far together with the context error.
func (s *Scanner) Scan(ctx context.Context, start, end uint64) (Result, error) {
	if start < 1 || end < start {
		return Result{}, fmt.Errorf("%w: range [%d, %d]", domain.ErrInvalidInput, start, end)
	}

	total := end - start + 1
	hitsBefore := s.hits
	var best Result
	s.logger.Debug("range scan started", "start", start, "end", end)

	for n := start; ; n++ {
		steps := s.StopTime(n)
		best.Computed++
		if best.Computed == 1 || steps > best.Steps {
			best.Number, best.Steps = n, steps
		}

		if best.Computed%pollEvery == 0 {
			if err := ctx.Err(); err != nil {
				best.CacheHits = s.hits - hitsBefore
				return best, err
			}
		}
		if s.opts.Progress != nil && s.opts.ProgressEvery > 0 && best.Computed%s.opts.ProgressEvery == 0 {
			best.CacheHits = s.hits - hitsBefore
			s.opts.Progress(best.Computed, total, best)
		}
		if n == end {
			break
		}
	}

	best.CacheHits = s.hits - hitsBefore
	s.logger.Debug("range scan finished", "number", best.Number, "steps", best.Steps, "cache_hits", best.CacheHits)
	return best, nil
}

// StopTime returns the number of steps n takes to reach 1, memoizing the values it passes.
func (s *Scanner) StopTime(n uint64) uint64 {
	if n <= 1 {
		return 0
	}

	s.path = s.path[:0]
	var steps, tail uint64
	v := n
	for v != 1 {
		if known, ok := s.cache.Get(v); ok {
			s.hits++
			tail = known
			break
		}
		s.path = append(s.path, pathEntry{value: v, steps: steps})

		if v&1 == 0 {
			tz := uint64(bits.TrailingZeros64(v))
			v >>= tz
			steps += tz
			continue
		}
		next, carry := bits.Add64(v, v>>1+1, 0)
		if carry != 0 {
			tail = bigStopTime(v)
			break
		}
		v = next
		steps += 2
	}

	total := steps + tail
	for _, e := range s.path {
		s.cache.Add(e.value, total-e.steps)
	}
	return total
}

// bigStopTime finishes a trajectory whose next value no longer fits in 64 bits.
func bigStopTime(n uint64) uint64 {
	v := new(big.Int).SetUint64(n)
	var steps uint64
	for !(v.IsUint64() && v.Uint64() == 1) {
		steps += runtime.Step(v)
	}
	return steps
}
