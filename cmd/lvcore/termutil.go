//go:build linux

package main

import (
	"os"

	"golang.org/x/term"
)

// isTerminal reports whether f is attached to an interactive terminal,
// used to decide between the yacspin spinner and colorized output
// versus a plain line-oriented fallback for piped/redirected output.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the current terminal column width, or a
// conservative default when stdout isn't a terminal.
func terminalWidth() int {
	if !isTerminal(os.Stdout) {
		return 80
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
