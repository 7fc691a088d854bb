// Command haxby inspects a haxby VM from the shell: it lists and queries
// attributes, calls builtins and extension methods, and runs an
// interactive session.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/funvibe/haxby/internal/config"
	"github.com/funvibe/haxby/internal/vm"
	"github.com/funvibe/haxby/pkg/haxby"
)

const usage = `Usage: haxby [-config file] <command> [args]

Commands:
  attrs <name>             list attributes of a builtin, module or type
  hasattr <name> <attr>    report whether attr resolves on name
  call <name> [args...]    call a function, e.g. call path.Path.new /tmp
  match <pattern> <text>   list regex matches in text
  repl                     start an interactive session
`

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			os.Exit(1)
		}
	}()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("haxby", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := fs.String("config", "", "path to haxby.yaml (default: search upwards from the working directory)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	color := colorEnabled(stderr)
	log, err := haxby.NewLogger(cfg.Log, stderr, color)
	if err != nil {
		fmt.Fprintf(stderr, "Error: log.level: %s\n", err)
		return 1
	}
	rt, err := haxby.New(cfg, log)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}

	sh := &shell{rt: rt, out: stdout, color: colorEnabled(stdout)}
	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if cmd == "repl" {
		return sh.repl()
	}
	if err := sh.exec(cmd, rest); err != nil {
		fmt.Fprintln(stderr, sh.red("Error: "+err.Error()))
		return 1
	}
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		if path, err = config.FindConfig(wd); err != nil {
			return nil, err
		}
		if path == "" {
			return config.Default(), nil
		}
	}
	return config.LoadConfig(path)
}

var errUsage = errors.New("wrong number of arguments")

// shell runs one command against a runtime. The CLI and the REPL share it.
type shell struct {
	rt    *haxby.Runtime
	out   io.Writer
	color bool
}

func (s *shell) exec(cmd string, args []string) error {
	switch cmd {
	case "attrs":
		if len(args) != 1 {
			return fmt.Errorf("%w: attrs <name>", errUsage)
		}
		attrs, err := s.rt.Attributes(args[0])
		if err != nil {
			return err
		}
		for _, a := range attrs {
			fmt.Fprintln(s.out, a)
		}
	case "hasattr":
		if len(args) != 2 {
			return fmt.Errorf("%w: hasattr <name> <attr>", errUsage)
		}
		ok, err := s.rt.HasAttribute(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, s.green(strconv.FormatBool(ok)))
	case "call":
		if len(args) < 1 {
			return fmt.Errorf("%w: call <name> [args...]", errUsage)
		}
		fn, err := s.rt.Lookup(args[0])
		if err != nil {
			return err
		}
		callArgs := make([]any, len(args)-1)
		for i, a := range args[1:] {
			callArgs[i] = parseLiteral(a)
		}
		res, err := s.rt.Invoke(fn, callArgs...)
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, s.green(s.rt.Prettyprint(res)))
	case "match":
		if len(args) != 2 {
			return fmt.Errorf("%w: match <pattern> <text>", errUsage)
		}
		return s.match(args[0], args[1])
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func (s *shell) match(pattern, text string) error {
	newRegex, err := s.rt.Lookup(config.RegexModuleName + ".Regex.new")
	if err != nil {
		return err
	}
	re, err := s.rt.Invoke(newRegex, pattern)
	if err != nil {
		return err
	}
	res, err := s.rt.CallMethod(re, "matches", text)
	if err != nil {
		return err
	}
	list, ok := res.(*vm.List)
	if !ok {
		return fmt.Errorf("%w: matches returned %s", vm.ErrUnexpectedType, res)
	}
	g := s.rt.VM().Globals
	for _, m := range list.Items() {
		start, _ := g.ReadNamed(m, "start")
		value, _ := g.ReadNamed(m, "value")
		fmt.Fprintf(s.out, "%s\t%s\n", start, s.green(vm.Display(value)))
	}
	return nil
}

// parseLiteral reads a command-line argument as an Int, Float or Bool
// when it parses as one and as a String otherwise.
func parseLiteral(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil && strings.ToLower(s) == s {
		return b
	}
	return s
}
