package tui

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsInteractive reports whether both in and out are terminals.
func IsInteractive(in io.Reader, out io.Writer) bool {
	return isTerminal(in) && isTerminal(out)
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
