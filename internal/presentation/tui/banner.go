package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the colloquy banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{`            _ _                         `, "#38bdf8"},
		{`   ___ ___ | | | ___   __ _ _   _ _   _ `, "#22d3ee"},
		{`  / __/ _ \| | |/ _ \ / _' | | | | | | |`, "#2dd4bf"},
		{` | (_| (_) | | | (_) | (_| | |_| | |_| |`, "#34d399"},
		{`  \___\___/|_|_|\___/ \__, |\__,_|\__, |`, "#4ade80"},
		{`                         |_|      |___/ `, "#a3e635"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
