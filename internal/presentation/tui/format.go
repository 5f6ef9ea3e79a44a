package tui

import (
	"fmt"
	"strconv"
	"time"
)

// FormatElapsed renders a duration the way results are reported:
// seconds with two decimals under a minute, then whole minutes and hours.
func FormatElapsed(d time.Duration) string {
	s := d.Seconds()
	switch {
	case s < 60:
		return fmt.Sprintf("%.2f seconds", s)
	case s < 3600:
		return fmt.Sprintf("%d minutes and %d seconds", int(s)/60, int(s)%60)
	default:
		return fmt.Sprintf("%d hours, %d minutes and %d seconds", int(s)/3600, int(s)%3600/60, int(s)%60)
	}
}

// FormatCount groups the digits of n in thousands.
func FormatCount(n uint64) string {
	s := strconv.FormatUint(n, 10)
	if len(s) <= 3 {
		return s
	}
	head := len(s) % 3
	if head == 0 {
		head = 3
	}
	out := []byte(s[:head])
	for i := head; i < len(s); i += 3 {
		out = append(out, ',')
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
