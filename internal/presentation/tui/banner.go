// Package tui holds terminal presentation helpers for the interactive CLI.
package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Tracery ASCII banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.EnvColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  _____                              ", "#34d399"},
		{" |_   _| __ __ _  ___ ___ _ __ _   _ ", "#2dd4bf"},
		{"   | || '__/ _` |/ __/ _ \\ '__| | | |", "#22d3ee"},
		{"   | || | | (_| | (_|  __/ |  | |_| |", "#38bdf8"},
		{"   |_||_|  \\__,_|\\___\\___|_|   \\__, |", "#60a5fa"},
		{"                               |___/ ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
