package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the stoptime banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text, color string
	}{
		{"     _              _   _           ", "#818cf8"},
		{" ___| |_ ___  _ __ | |_(_)_ __ ___  ___", "#a78bfa"},
		{"/ __| __/ _ \\| '_ \\| __| | '_ ` _ \\/ _ \\", "#c084fc"},
		{"\\__ \\ || (_) | |_) | |_| | | | | | |  __/", "#e879f9"},
		{"|___/\\__\\___/| .__/ \\__|_|_| |_| |_|\\___|", "#f472b6"},
		{"             |_|", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  "+version).Faint())
	fmt.Fprintln(w)
}
