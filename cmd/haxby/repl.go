package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

const (
	historyFile = ".haxby_history"
	prompt      = "haxby> "
)

func (s *shell) repl() int {
	fmt.Fprintf(s.out, "haxby %s. Type :quit to exit.\n", s.rt.VM().ID)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(s.complete)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(s.out)
			return 0
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, s.red(err.Error()))
			return 1
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)
		if line == ":quit" {
			return 0
		}

		fields := strings.Fields(line)
		if err := s.exec(fields[0], fields[1:]); err != nil {
			fmt.Fprintln(s.out, s.red(err.Error()))
		}
	}
}

// complete offers command names for the first word and builtin or module
// names afterwards.
func (s *shell) complete(line string) []string {
	words := strings.Fields(line)
	if len(words) == 0 || (len(words) == 1 && !strings.HasSuffix(line, " ")) {
		var out []string
		for _, c := range []string{"attrs", "hasattr", "call", "match", ":quit"} {
			if strings.HasPrefix(c, line) {
				out = append(out, c)
			}
		}
		return out
	}

	prefix := ""
	if !strings.HasSuffix(line, " ") {
		prefix = words[len(words)-1]
	}
	head := strings.TrimSuffix(line, prefix)
	names := append(s.rt.VM().Globals.Builtins().NamedValues(), s.rt.VM().Modules()...)
	var out []string
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			out = append(out, head+n)
		}
	}
	return out
}
