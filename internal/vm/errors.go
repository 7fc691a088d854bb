package vm

import (
	"errors"
	"fmt"
)

// Fatal errors. They abort the current activation and are never catchable
// in-language.
var (
	ErrUnexpectedType          = errors.New("unexpected type")
	ErrUnexpectedVmState       = errors.New("unexpected vm state")
	ErrStackOverflow           = errors.New("stack overflow")
	ErrStackUnderflow          = errors.New("stack underflow")
	ErrMismatchedArgumentCount = errors.New("mismatched argument count")
	ErrNoRunloop               = errors.New("no runloop for bytecode functions")
	ErrDivisionByZero          = errors.New("division by zero")
	ErrIndexOutOfBounds        = errors.New("index out of bounds")
	ErrNegativeShift           = errors.New("negative shift count")
)

// AttributeError is a local attribute-resolution failure. Callers decide
// whether it becomes a fatal error, an exception or a boolean.
type AttributeError uint8

const (
	NoSuchAttribute AttributeError = iota + 1
	InvalidFunctionBinding
	ValueHasNoAttributes
)

func (e AttributeError) Error() string {
	switch e {
	case NoSuchAttribute:
		return "no such attribute"
	case InvalidFunctionBinding:
		return "invalid function binding"
	case ValueHasNoAttributes:
		return "value has no attributes"
	default:
		return fmt.Sprintf("attribute error %d", uint8(e))
	}
}

// Exception is an in-language exception. Its payload is an ordinary value.
type Exception struct {
	Value Value
}

func (e *Exception) String() string {
	return "exception: " + e.Value.String()
}

// CallResult is the non-fatal outcome of a call: either a value or an
// exception.
type CallResult struct {
	Value     Value
	Exception *Exception
}

// Ok returns a successful result.
func Ok(v Value) CallResult { return CallResult{Value: v} }

// Raise returns a result that throws v.
func Raise(v Value) CallResult { return CallResult{Exception: &Exception{Value: v}} }

func (r CallResult) IsException() bool { return r.Exception != nil }

func typeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnexpectedType, fmt.Sprintf(format, args...))
}
