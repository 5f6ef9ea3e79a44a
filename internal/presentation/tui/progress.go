package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/aretw0/stoptime/pkg/domain"
	"github.com/muesli/termenv"
)

// Progress prints batch progress. On a terminal it rewrites a single line, elsewhere it
// prints one line per report, at most once per interval.
type Progress struct {
	out      *termenv.Output
	w        io.Writer
	tty      bool
	interval time.Duration
	last     time.Time
	drawn    bool
}

// NewProgress creates a printer writing to w.
func NewProgress(w io.Writer, interval time.Duration) *Progress {
	return &Progress{
		out:      termenv.NewOutput(w),
		w:        w,
		tty:      IsTerminal(w),
		interval: interval,
	}
}

// Batch reports a completed batch.
func (p *Progress) Batch(ev *domain.BatchEvent) {
	now := time.Now()
	if p.drawn && now.Sub(p.last) < p.interval {
		return
	}
	p.last = now

	line := fmt.Sprintf("%s steps | max %s digits | %s",
		FormatCount(ev.Steps), FormatCount(ev.MaxDigits), ev.Elapsed.Round(time.Second))
	if p.tty {
		p.out.ClearLine()
		fmt.Fprint(p.w, "\r", p.out.String(line).Foreground(p.out.Color("#a78bfa")))
	} else {
		fmt.Fprintln(p.w, line)
	}
	p.drawn = true
}

// Done ends the progress line.
func (p *Progress) Done() {
	if p.tty && p.drawn {
		fmt.Fprintln(p.w)
	}
	p.drawn = false
}

// Field prints a labelled result value.
func (p *Progress) Field(label string, value any) {
	fmt.Fprintf(p.w, "%s %v\n", p.out.String(label+":").Bold(), value)
}
