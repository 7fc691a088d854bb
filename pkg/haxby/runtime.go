// Package haxby embeds the haxby VM in Go programs: it assembles a VM from
// a config, loads builtins and native extensions, and converts values
// between Go and the VM.
package haxby

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/rs/zerolog"

	"github.com/funvibe/haxby/internal/builtins"
	"github.com/funvibe/haxby/internal/config"
	"github.com/funvibe/haxby/internal/natives"
	"github.com/funvibe/haxby/internal/symbol"
	"github.com/funvibe/haxby/internal/vm"
)

// ErrNotFound is returned by Lookup for an unknown name.
var ErrNotFound = errors.New("name not found")

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// ExceptionError carries a value raised by VM code out to Go.
type ExceptionError struct {
	Value vm.Value
	Text  string
}

func (e *ExceptionError) Error() string { return "uncaught exception: " + e.Text }

// Runtime wraps a VM with the builtins and configured extensions loaded.
type Runtime struct {
	machine    *vm.VM
	marshaller *Marshaller
	cfg        *config.Config
}

// New creates a runtime. A nil cfg means config.Default().
func New(cfg *config.Config, log zerolog.Logger) (*Runtime, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	in := symbol.NewWithCapacity(cfg.Symbols.Capacity)
	g := vm.NewGlobals(in)
	machine := vm.NewWithGlobals(g)
	machine.SetMaxDepth(cfg.Stack.MaxDepth)
	machine.SetLogger(log)

	if err := builtins.Install(machine); err != nil {
		return nil, fmt.Errorf("installing builtins: %w", err)
	}
	if err := natives.Default().LoadAll(machine, cfg.Extensions); err != nil {
		return nil, err
	}
	return &Runtime{machine: machine, marshaller: NewMarshaller(g), cfg: cfg}, nil
}

// VM exposes the underlying machine.
func (r *Runtime) VM() *vm.VM { return r.machine }

func (r *Runtime) Config() *config.Config { return r.cfg }

func (r *Runtime) Marshaller() *Marshaller { return r.marshaller }

// Lookup resolves a dotted name. The first segment names a builtin
// (Int, typeof) or a loaded module (path); later segments are read as
// attributes, so "path.Path.new" yields the Path constructor.
func (r *Runtime) Lookup(name string) (vm.Value, error) {
	parts := strings.Split(name, ".")
	cur, ok := r.machine.Globals.Builtins().LoadNamedValue(parts[0])
	if !ok {
		mod, found := r.machine.Module(parts[0])
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, parts[0])
		}
		cur = mod
	}
	for _, part := range parts[1:] {
		next, err := r.machine.Globals.ReadNamed(cur, part)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		cur = next
	}
	return cur, nil
}

// Attributes lists the attributes reachable from the named value.
func (r *Runtime) Attributes(name string) ([]string, error) {
	v, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return r.machine.Globals.ListAttributes(v), nil
}

// HasAttribute reports whether attr resolves on the named value.
func (r *Runtime) HasAttribute(name, attr string) (bool, error) {
	v, err := r.Lookup(name)
	if err != nil {
		return false, err
	}
	return r.machine.Globals.HasAttribute(v, attr)
}

// Call looks up a callable by dotted name and invokes it with Go arguments.
// The result is converted back to Go.
func (r *Runtime) Call(name string, args ...any) (any, error) {
	fn, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	res, err := r.Invoke(fn, args...)
	if err != nil {
		return nil, err
	}
	return r.marshaller.FromValue(res, nil)
}

// Invoke calls callee with Go arguments and returns the raw VM result.
func (r *Runtime) Invoke(callee vm.Value, args ...any) (vm.Value, error) {
	vals := make([]vm.Value, len(args))
	for i, arg := range args {
		v, err := r.marshaller.ToValue(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		vals[i] = v
	}
	res, err := r.machine.CallWith(callee, vals...)
	if err != nil {
		return nil, err
	}
	if res.IsException() {
		return nil, &ExceptionError{Value: res.Exception.Value, Text: r.Prettyprint(res.Exception.Value)}
	}
	return res.Value, nil
}

// CallMethod reads name on recv and calls the result.
func (r *Runtime) CallMethod(recv vm.Value, name string, args ...any) (vm.Value, error) {
	fn, err := r.machine.Globals.ReadNamed(recv, name)
	if err != nil {
		return nil, fmt.Errorf("%s on %s: %w", name, recv, err)
	}
	return r.Invoke(fn, args...)
}

// Prettyprint renders v through its prettyprint attribute when it has one.
func (r *Runtime) Prettyprint(v vm.Value) string {
	s, err := r.machine.Prettyprint(nil, v)
	if err != nil {
		return vm.Display(v)
	}
	return s
}

// Bind registers a Go function as a builtin. Arguments are converted with
// the marshaller. A trailing error result is raised as a VM exception.
func (r *Runtime) Bind(name string, fn any) error {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return fmt.Errorf("%w: bind %s: %T is not a function", vm.ErrUnexpectedType, name, fn)
	}
	ft := fv.Type()
	if ft.IsVariadic() {
		return fmt.Errorf("%w: bind %s: variadic functions are not supported", vm.ErrUnexpectedType, name)
	}
	r.machine.Globals.InsertBuiltin(&vm.BuiltinFunc{
		FuncName: name,
		Args:     vm.RequiredArity(ft.NumIn()),
		Fn: func(frame *vm.Frame, m *vm.VM) (vm.CallResult, error) {
			return r.hostCall(fv, frame)
		},
	})
	r.machine.Logger().Debug().Str("name", name).Int("argc", ft.NumIn()).Msg("host function bound")
	return nil
}

func (r *Runtime) hostCall(fn reflect.Value, frame *vm.Frame) (vm.CallResult, error) {
	ft := fn.Type()
	goArgs := make([]reflect.Value, ft.NumIn())
	for i := range goArgs {
		arg, err := vm.ExtractArg(frame, vm.AsValue)
		if err != nil {
			return vm.CallResult{}, err
		}
		val, err := r.marshaller.FromValue(arg, ft.In(i))
		if err != nil {
			return vm.CallResult{}, fmt.Errorf("argument %d: %w", i, err)
		}
		if val == nil {
			goArgs[i] = reflect.Zero(ft.In(i))
		} else {
			goArgs[i] = reflect.ValueOf(val)
		}
	}

	results := fn.Call(goArgs)
	if n := len(results); n > 0 && ft.Out(n-1) == errorType {
		if err, _ := results[n-1].Interface().(error); err != nil {
			return vm.Raise(vm.NewString(err.Error())), nil
		}
		results = results[:n-1]
	}

	switch len(results) {
	case 0:
		return vm.Ok(r.machine.Globals.CreateUnitObject()), nil
	case 1:
		v, err := r.marshaller.ToValue(results[0].Interface())
		if err != nil {
			return vm.CallResult{}, err
		}
		return vm.Ok(v), nil
	}
	items := make([]vm.Value, len(results))
	for i, res := range results {
		v, err := r.marshaller.ToValue(res.Interface())
		if err != nil {
			return vm.CallResult{}, err
		}
		items[i] = v
	}
	return vm.Ok(vm.NewList(items...)), nil
}
