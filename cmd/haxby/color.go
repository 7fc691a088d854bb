package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiReset = "\x1b[0m"
)

// colorEnabled reports whether w is a terminal that should get ANSI colour.
func colorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

func (s *shell) paint(code, text string) string {
	if !s.color {
		return text
	}
	return code + text + ansiReset
}

func (s *shell) red(text string) string   { return s.paint(ansiRed, text) }
func (s *shell) green(text string) string { return s.paint(ansiGreen, text) }
