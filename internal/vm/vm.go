package vm

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/funvibe/haxby/internal/config"
	"github.com/funvibe/haxby/internal/symbol"
)

// Runloop executes functions backed by compiled code objects. The VM only
// prepares arguments on the frame stack and delegates.
type Runloop interface {
	Run(fn *Function, argc int, frame *Frame, vm *VM) (CallResult, error)
}

// VM is one interpreter instance. It is not safe for concurrent use.
type VM struct {
	ID      uuid.UUID
	Globals *Globals

	runloop  Runloop
	log      zerolog.Logger
	maxDepth int
	depth    int
	modules  map[string]*Module
	order    []string
}

// New creates a VM with fresh globals.
func New() *VM {
	return NewWithGlobals(NewGlobals(nil))
}

// NewWithGlobals creates a VM over g.
func NewWithGlobals(g *Globals) *VM {
	id := uuid.New()
	return &VM{
		ID:       id,
		Globals:  g,
		log:      zerolog.Nop(),
		maxDepth: config.DefaultMaxDepth,
		modules:  make(map[string]*Module),
	}
}

// SetLogger attaches l, tagged with the VM id.
func (vm *VM) SetLogger(l zerolog.Logger) {
	vm.log = l.With().Str("vm", vm.ID.String()).Logger()
}

// Logger returns the VM logger.
func (vm *VM) Logger() *zerolog.Logger { return &vm.log }

func (vm *VM) SetRunloop(r Runloop) { vm.runloop = r }

// SetMaxDepth bounds nested calls. Values below 1 keep the default.
func (vm *VM) SetMaxDepth(n int) {
	if n < 1 {
		n = config.DefaultMaxDepth
	}
	vm.maxDepth = n
}

// AddModule records a loaded module under its name.
func (vm *VM) AddModule(m *Module) {
	if _, ok := vm.modules[m.Name()]; !ok {
		vm.order = append(vm.order, m.Name())
	}
	vm.modules[m.Name()] = m
}

// Module returns a loaded module by name.
func (vm *VM) Module(name string) (*Module, bool) {
	m, ok := vm.modules[name]
	return m, ok
}

// Modules returns module names in load order.
func (vm *VM) Modules() []string { return append([]string(nil), vm.order...) }

// Call invokes callee with argc arguments already on the frame stack, the
// first argument on top. Functions and bound functions are called
// directly; any other value is called through its call operator.
// On a fatal error the stack is cut back to its height below the arguments.
func (vm *VM) Call(callee Value, argc int, frame *Frame) (CallResult, error) {
	base := frame.Stack.Len() - argc
	res, err := vm.dispatch(callee, argc, frame)
	if err != nil && base >= 0 {
		frame.Stack.truncate(base)
	}
	return res, err
}

func (vm *VM) dispatch(callee Value, argc int, frame *Frame) (CallResult, error) {
	switch f := callee.(type) {
	case *Function:
		return vm.callFunction(f, argc, frame)
	case *BoundFunction:
		frame.Stack.Push(f.receiver)
		return vm.callFunction(f.fn, argc+1, frame)
	}
	op, err := vm.Globals.ReadAttribute(callee, symbol.OpCall)
	if err != nil {
		return CallResult{}, typeErrorf("%s is not callable", callee)
	}
	switch op.(type) {
	case *Function, *BoundFunction:
		return vm.dispatch(op, argc, frame)
	}
	return CallResult{}, typeErrorf("call operator of %s is %s", callee, op)
}

// CallWith pushes args in calling order and invokes callee on a fresh frame.
func (vm *VM) CallWith(callee Value, args ...Value) (CallResult, error) {
	frame := NewFrame()
	for i := len(args) - 1; i >= 0; i-- {
		frame.Stack.Push(args[i])
	}
	return vm.Call(callee, len(args), frame)
}

func (vm *VM) callFunction(fn *Function, argc int, frame *Frame) (res CallResult, err error) {
	base := frame.Stack.Len() - argc
	if base < 0 {
		return CallResult{}, ErrStackUnderflow
	}
	if !fn.arity.Accepts(argc) {
		frame.Stack.truncate(base)
		return CallResult{}, fmt.Errorf("%w: %s expects %s, got %d", ErrMismatchedArgumentCount, fn.name, fn.arity, argc)
	}
	if vm.depth >= vm.maxDepth {
		frame.Stack.truncate(base)
		return CallResult{}, fmt.Errorf("%w: depth %d calling %s", ErrStackOverflow, vm.depth, fn.name)
	}
	vm.depth++
	defer func() {
		vm.depth--
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok || !errors.Is(e, ErrStackUnderflow) {
				panic(r)
			}
			res, err = CallResult{}, fmt.Errorf("%w in %s", ErrStackUnderflow, fn.name)
		}
		frame.Stack.truncate(base)
	}()

	switch {
	case fn.builtin != nil:
		return fn.builtin.Eval(frame, vm)
	case vm.runloop != nil:
		return vm.runloop.Run(fn, argc, frame, vm)
	default:
		return CallResult{}, fmt.Errorf("%w: %s", ErrNoRunloop, fn.name)
	}
}
