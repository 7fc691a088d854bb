package vm

import (
	"fmt"

	"github.com/funvibe/haxby/internal/symbol"
)

// FuncAttrib holds function attribute bits.
type FuncAttrib uint8

const (
	// FuncIsMethod marks a function declared inside a type.
	FuncIsMethod FuncAttrib = 1 << iota
	// MethodAttributeType marks a type-level ("static") method.
	MethodAttributeType
)

// IsMethod reports whether the function was declared as a method.
func (a FuncAttrib) IsMethod() bool { return a&FuncIsMethod != 0 }

// IsTypeMethod reports whether the function is invokable on the type
// itself rather than on an instance.
func (a FuncAttrib) IsTypeMethod() bool { return a&MethodAttributeType != 0 }

// Arity describes accepted argument counts, receiver included.
type Arity struct {
	Required int
	Optional int
	Variadic bool
}

func RequiredArity(n int) Arity { return Arity{Required: n} }

// Accepts reports whether argc arguments satisfy the arity.
func (a Arity) Accepts(argc int) bool {
	if argc < a.Required {
		return false
	}
	return a.Variadic || argc <= a.Required+a.Optional
}

func (a Arity) String() string {
	switch {
	case a.Variadic:
		return fmt.Sprintf("at least %d", a.Required)
	case a.Optional > 0:
		return fmt.Sprintf("%d to %d", a.Required, a.Required+a.Optional)
	default:
		return fmt.Sprintf("%d", a.Required)
	}
}

// BuiltinFunctionImpl is a function implemented in Go. Eval pops its
// arguments from the frame and returns a value or an exception.
type BuiltinFunctionImpl interface {
	Eval(frame *Frame, vm *VM) (CallResult, error)
	Arity() Arity
	Name() string
	Attrib() FuncAttrib
}

// BuiltinFunc adapts a Go closure to BuiltinFunctionImpl.
type BuiltinFunc struct {
	FuncName string
	Args     Arity
	Attribs  FuncAttrib
	Fn       func(frame *Frame, vm *VM) (CallResult, error)
}

func (b *BuiltinFunc) Eval(frame *Frame, vm *VM) (CallResult, error) { return b.Fn(frame, vm) }
func (b *BuiltinFunc) Arity() Arity                                  { return b.Args }
func (b *BuiltinFunc) Name() string                                  { return b.FuncName }
func (b *BuiltinFunc) Attrib() FuncAttrib                            { return b.Attribs }

// Method returns a builtin instance method taking argc arguments
// including the receiver.
func Method(name string, argc int, fn func(*Frame, *VM) (CallResult, error)) *BuiltinFunc {
	return &BuiltinFunc{FuncName: name, Args: RequiredArity(argc), Attribs: FuncIsMethod, Fn: fn}
}

// TypeMethod returns a builtin type-level method taking argc arguments
// including the type receiver.
func TypeMethod(name string, argc int, fn func(*Frame, *VM) (CallResult, error)) *BuiltinFunc {
	return &BuiltinFunc{FuncName: name, Args: RequiredArity(argc), Attribs: FuncIsMethod | MethodAttributeType, Fn: fn}
}

// Function is a first-class function: either a Go builtin or a compiled
// code object run by the Runloop. Handles alias one logical function.
type Function struct {
	name    string
	attrib  FuncAttrib
	arity   Arity
	builtin BuiltinFunctionImpl
	code    *CodeObject
	attrs   attrStore
}

// NewBuiltinFunction wraps a Go implementation.
func NewBuiltinFunction(impl BuiltinFunctionImpl) *Function {
	return &Function{name: impl.Name(), attrib: impl.Attrib(), arity: impl.Arity(), builtin: impl}
}

// NewCodeFunction wraps a compiled code object.
func NewCodeFunction(code *CodeObject, attrib FuncAttrib) *Function {
	return &Function{
		name:   code.Name,
		attrib: attrib,
		arity:  Arity{Required: int(code.RequiredArgc), Optional: int(code.DefaultArgc)},
		code:   code,
	}
}

func (*Function) Kind() Kind { return KindFunction }
func (f *Function) String() string {
	if f.builtin != nil {
		return fmt.Sprintf("<builtin-function %s>", f.name)
	}
	return fmt.Sprintf("<function %s>", f.name)
}
func (*Function) value() {}

func (f *Function) Name() string       { return f.name }
func (f *Function) Attrib() FuncAttrib { return f.attrib }
func (f *Function) Arity() Arity       { return f.arity }

// CodeObject returns the compiled body, or nil for builtins.
func (f *Function) CodeObject() *CodeObject { return f.code }

func (f *Function) Read(sym symbol.Symbol) (Value, bool) { return f.attrs.read(sym) }
func (f *Function) Write(sym symbol.Symbol, v Value)    { f.attrs.write(sym, v) }

// BoundFunction pairs a function with a fixed receiver. It is only
// produced by attribute resolution.
type BoundFunction struct {
	receiver Value
	fn       *Function
}

func bind(receiver Value, fn *Function) *BoundFunction {
	return &BoundFunction{receiver: receiver, fn: fn}
}

func (*BoundFunction) Kind() Kind { return KindBoundFunction }
func (b *BoundFunction) String() string {
	return fmt.Sprintf("<bound-function %s>", b.fn.name)
}
func (*BoundFunction) value() {}

func (b *BoundFunction) Receiver() Value    { return b.receiver }
func (b *BoundFunction) Function() *Function { return b.fn }
