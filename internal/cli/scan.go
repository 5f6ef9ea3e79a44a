package cli

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/aretw0/stoptime/internal/config"
	"github.com/aretw0/stoptime/internal/presentation/tui"
	"github.com/aretw0/stoptime/internal/runtime"
	"github.com/aretw0/stoptime/internal/scan"
)

// RangeOptions configures a range scan.
type RangeOptions struct {
	Config       config.Config
	Start, End   uint64
	CacheSize    int
	ShowSequence bool
	// Output, when set, receives a plain-text report.
	Output string
	// Memo, when set, persists the stop time memo across runs: JSON, or SQLite for .db paths.
	Memo  string
	Debug bool
	Out   io.Writer
}

// RunRange finds the number with the longest stop time in [Start, End].
func RunRange(ctx context.Context, opts RangeOptions) error {
	logger := NewLogger(opts.Config, opts.Debug)
	progress := tui.NewProgress(opts.Out, time.Second)
	began := time.Now()

	total := opts.End - opts.Start + 1
	every := total / 100
	if every == 0 {
		every = total
	}

	scanOpts := scan.Options{CacheSize: opts.CacheSize, Logger: logger}
	tty := tui.IsTerminal(opts.Out)
	if tty {
		scanOpts.ProgressEvery = every
		scanOpts.Progress = func(done, total uint64, best scan.Result) {
			fmt.Fprintf(opts.Out, "\r%3d%% best %s (%d steps)", done*100/total, tui.FormatCount(best.Number), best.Steps)
		}
	}

	scanner, err := scan.New(scanOpts)
	if err != nil {
		return err
	}
	if opts.Memo != "" {
		n, err := scanner.LoadMemo(ctx, opts.Memo)
		if err != nil {
			logger.Warn("Ignoring unreadable memo", "path", opts.Memo, "err", err)
		} else if n > 0 {
			printSystemMessage(opts.Out, "Loaded %s memo entries from %s", tui.FormatCount(uint64(n)), opts.Memo)
		}
	}

	res, err := scanner.Scan(ctx, opts.Start, opts.End)
	if tty {
		fmt.Fprintln(opts.Out)
	}
	if opts.Memo != "" {
		// Saved on interrupt too; work done so far is kept.
		if serr := scanner.SaveMemo(context.WithoutCancel(ctx), opts.Memo); serr != nil {
			logger.Warn("Failed to save memo", "path", opts.Memo, "err", serr)
		} else {
			printSystemMessage(opts.Out, "Memo saved to %s", opts.Memo)
		}
	}
	if err != nil {
		if isInterrupted(err) {
			printSystemMessage(opts.Out, "Interrupted after %s numbers; best so far %d (%d steps)",
				tui.FormatCount(res.Computed), res.Number, res.Steps)
		}
		return handleExecutionError(err)
	}
	elapsed := time.Since(began)

	progress.Field("Number with the maximum steps", tui.FormatCount(res.Number))
	progress.Field("Number of steps", res.Steps)
	progress.Field("Calculation completed in", tui.FormatElapsed(elapsed))
	progress.Field("Numbers computed", tui.FormatCount(res.Computed))
	progress.Field("Cache hits", tui.FormatCount(res.CacheHits))

	var seq string
	if opts.ShowSequence || opts.Output != "" {
		seq, err = formatSequence(new(big.Int).SetUint64(res.Number))
		if err != nil {
			return err
		}
	}
	if opts.ShowSequence {
		fmt.Fprintln(opts.Out, seq)
	}
	if opts.Output != "" {
		var b strings.Builder
		fmt.Fprintf(&b, "Collatz results for range %d to %d\n", opts.Start, opts.End)
		fmt.Fprintf(&b, "Number with the maximum steps: %d\n", res.Number)
		fmt.Fprintf(&b, "Number of steps: %d\n", res.Steps)
		fmt.Fprintf(&b, "Calculation completed in: %s\n", tui.FormatElapsed(elapsed))
		fmt.Fprintf(&b, "Numbers computed: %d\n", res.Computed)
		fmt.Fprintf(&b, "Cache hits: %d\n\n%s\n", res.CacheHits, seq)
		if err := os.WriteFile(opts.Output, []byte(b.String()), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		printSystemMessage(opts.Out, "Results saved to %s", opts.Output)
	}
	return nil
}

// PrintSequence writes the trajectory of n, eliding the middle of long ones.
func PrintSequence(n string, w io.Writer) error {
	v, err := ParseNumber(n)
	if err != nil {
		return err
	}
	seq, err := formatSequence(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, seq)
	return nil
}

const sequenceEdge = 10

// formatSequence keeps only the first and last sequenceEdge values of the trajectory,
// so memory stays flat however long it runs.
func formatSequence(n *big.Int) (string, error) {
	head := make([]string, 0, sequenceEdge)
	tail := make([]string, sequenceEdge)
	var count int
	err := runtime.Walk(n, func(v *big.Int) bool {
		if count < sequenceEdge {
			head = append(head, v.String())
		} else {
			tail[(count-sequenceEdge)%sequenceEdge] = v.String()
		}
		count++
		return true
	})
	if err != nil {
		return "", err
	}

	if count <= sequenceEdge {
		return fmt.Sprintf("Sequence for %s:\n%s", n, strings.Join(head, " → ")), nil
	}
	// Unroll the ring, oldest first.
	kept := count - sequenceEdge
	if kept > sequenceEdge {
		kept = sequenceEdge
	}
	last := make([]string, 0, kept)
	for i := count - kept; i < count; i++ {
		last = append(last, tail[(i-sequenceEdge)%sequenceEdge])
	}
	if count <= 2*sequenceEdge {
		return fmt.Sprintf("Sequence for %s:\n%s → %s", n, strings.Join(head, " → "), strings.Join(last, " → ")), nil
	}
	return fmt.Sprintf("Sequence for %s (first %d and last %d of %d values):\n%s → ... → %s",
		n, sequenceEdge, sequenceEdge, count, strings.Join(head, " → "), strings.Join(last, " → ")), nil
}
