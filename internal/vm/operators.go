package vm

import (
	"github.com/funvibe/haxby/internal/symbol"
)

type attemptKind uint8

const (
	attemptOk attemptKind = iota
	attemptException
	attemptFatal
	// attemptTryOther covers an absent operator, the Unimplemented
	// sentinel, and a non-boolean result where a boolean was required.
	attemptTryOther
)

type attempt struct {
	kind attemptKind
	res  CallResult
	err  error
}

func (a attempt) result() (CallResult, error) { return a.res, a.err }

// tryOperator resolves op on receiver and calls it with args.
func (vm *VM) tryOperator(op symbol.Symbol, receiver Value, args []Value, frame *Frame, wantBool bool) attempt {
	fn, err := vm.Globals.ReadAttribute(receiver, op)
	if err != nil {
		return attempt{kind: attemptTryOther}
	}
	for i := len(args) - 1; i >= 0; i-- {
		frame.Stack.Push(args[i])
	}
	res, err := vm.Call(fn, len(args), frame)
	switch {
	case err != nil:
		return attempt{kind: attemptFatal, err: err}
	case res.IsException():
		if vm.Globals.IsUnimplemented(res.Exception.Value) {
			return attempt{kind: attemptTryOther}
		}
		return attempt{kind: attemptException, res: res}
	case wantBool:
		if _, ok := res.Value.(*Boolean); !ok {
			return attempt{kind: attemptTryOther}
		}
	}
	return attempt{kind: attemptOk, res: res}
}

type binaryOperator struct {
	name       string
	fwd, rev   symbol.Symbol
	relational bool
}

var (
	opAdd    = binaryOperator{name: "+", fwd: symbol.OpAdd, rev: symbol.OpRAdd}
	opSub    = binaryOperator{name: "-", fwd: symbol.OpSub, rev: symbol.OpRSub}
	opMul    = binaryOperator{name: "*", fwd: symbol.OpMul, rev: symbol.OpRMul}
	opDiv    = binaryOperator{name: "/", fwd: symbol.OpDiv, rev: symbol.OpRDiv}
	opRem    = binaryOperator{name: "%", fwd: symbol.OpRem, rev: symbol.OpRRem}
	opShl    = binaryOperator{name: "<<", fwd: symbol.OpLShift, rev: symbol.OpRLShift}
	opShr    = binaryOperator{name: ">>", fwd: symbol.OpRShift, rev: symbol.OpRRShift}
	opBitAnd = binaryOperator{name: "&", fwd: symbol.OpBitAnd, rev: symbol.OpRBitAnd}
	opBitOr  = binaryOperator{name: "|", fwd: symbol.OpBitOr, rev: symbol.OpRBitOr}
	opXor    = binaryOperator{name: "^", fwd: symbol.OpXor, rev: symbol.OpRXor}

	// The reverse of a relational operator is its mirror: a < b iff b > a.
	opLt   = binaryOperator{name: "<", fwd: symbol.OpLt, rev: symbol.OpGt, relational: true}
	opGt   = binaryOperator{name: ">", fwd: symbol.OpGt, rev: symbol.OpLt, relational: true}
	opLtEq = binaryOperator{name: "<=", fwd: symbol.OpLtEq, rev: symbol.OpGtEq, relational: true}
	opGtEq = binaryOperator{name: ">=", fwd: symbol.OpGtEq, rev: symbol.OpLtEq, relational: true}
)

func frameOrNew(frame *Frame) *Frame {
	if frame == nil {
		return NewFrame()
	}
	return frame
}

func (vm *VM) evalBinary(op binaryOperator, frame *Frame, lhs, rhs Value) (CallResult, error) {
	frame = frameOrNew(frame)
	fwd := vm.tryOperator(op.fwd, lhs, []Value{rhs}, frame, op.relational)
	if fwd.kind != attemptTryOther {
		return fwd.result()
	}
	lt, rt := vm.Globals.TypeOf(lhs), vm.Globals.TypeOf(rhs)
	if lt == rt {
		return CallResult{}, typeErrorf("%s %s %s: operator not supported for %s", lhs, op.name, rhs, lt.Name())
	}
	vm.log.Trace().Str("op", op.name).Str("lhs", lt.Name()).Str("rhs", rt.Name()).Msg("forward operator unavailable, trying reverse")
	rev := vm.tryOperator(op.rev, rhs, []Value{lhs}, frame, op.relational)
	if rev.kind != attemptTryOther {
		return rev.result()
	}
	return CallResult{}, typeErrorf("%s %s %s: operator not supported for %s and %s", lhs, op.name, rhs, lt.Name(), rt.Name())
}

func (vm *VM) Add(frame *Frame, lhs, rhs Value) (CallResult, error) { return vm.evalBinary(opAdd, frame, lhs, rhs) }
func (vm *VM) Sub(frame *Frame, lhs, rhs Value) (CallResult, error) { return vm.evalBinary(opSub, frame, lhs, rhs) }
func (vm *VM) Mul(frame *Frame, lhs, rhs Value) (CallResult, error) { return vm.evalBinary(opMul, frame, lhs, rhs) }
func (vm *VM) Div(frame *Frame, lhs, rhs Value) (CallResult, error) { return vm.evalBinary(opDiv, frame, lhs, rhs) }
func (vm *VM) Rem(frame *Frame, lhs, rhs Value) (CallResult, error) { return vm.evalBinary(opRem, frame, lhs, rhs) }

func (vm *VM) LeftShift(frame *Frame, lhs, rhs Value) (CallResult, error) {
	return vm.evalBinary(opShl, frame, lhs, rhs)
}

func (vm *VM) RightShift(frame *Frame, lhs, rhs Value) (CallResult, error) {
	return vm.evalBinary(opShr, frame, lhs, rhs)
}

func (vm *VM) BitwiseAnd(frame *Frame, lhs, rhs Value) (CallResult, error) {
	return vm.evalBinary(opBitAnd, frame, lhs, rhs)
}

func (vm *VM) BitwiseOr(frame *Frame, lhs, rhs Value) (CallResult, error) {
	return vm.evalBinary(opBitOr, frame, lhs, rhs)
}

func (vm *VM) Xor(frame *Frame, lhs, rhs Value) (CallResult, error) {
	return vm.evalBinary(opXor, frame, lhs, rhs)
}

func (vm *VM) LessThan(frame *Frame, lhs, rhs Value) (CallResult, error) {
	return vm.evalBinary(opLt, frame, lhs, rhs)
}

func (vm *VM) GreaterThan(frame *Frame, lhs, rhs Value) (CallResult, error) {
	return vm.evalBinary(opGt, frame, lhs, rhs)
}

func (vm *VM) LessThanEqual(frame *Frame, lhs, rhs Value) (CallResult, error) {
	return vm.evalBinary(opLtEq, frame, lhs, rhs)
}

func (vm *VM) GreaterThanEqual(frame *Frame, lhs, rhs Value) (CallResult, error) {
	return vm.evalBinary(opGtEq, frame, lhs, rhs)
}

// Neg evaluates unary minus. There is no reverse form.
func (vm *VM) Neg(frame *Frame, v Value) (CallResult, error) {
	a := vm.tryOperator(symbol.OpNeg, v, nil, frameOrNew(frame), false)
	if a.kind != attemptTryOther {
		return a.result()
	}
	return CallResult{}, typeErrorf("-%s: operator not supported for %s", v, vm.Globals.TypeOf(v).Name())
}

// ReadIndex evaluates v[indices...].
func (vm *VM) ReadIndex(frame *Frame, v Value, indices ...Value) (CallResult, error) {
	frame = frameOrNew(frame)
	fn, err := vm.Globals.ReadAttribute(v, symbol.OpReadIndex)
	if err != nil {
		return CallResult{}, typeErrorf("%s does not support indexing", v)
	}
	for i := len(indices) - 1; i >= 0; i-- {
		frame.Stack.Push(indices[i])
	}
	return vm.Call(fn, len(indices), frame)
}

// WriteIndex evaluates v[indices...] = val. The callee receives the
// indices in order followed by val.
func (vm *VM) WriteIndex(frame *Frame, v Value, val Value, indices ...Value) (CallResult, error) {
	frame = frameOrNew(frame)
	fn, err := vm.Globals.ReadAttribute(v, symbol.OpWriteIndex)
	if err != nil {
		return CallResult{}, typeErrorf("%s does not support index assignment", v)
	}
	frame.Stack.Push(val)
	for i := len(indices) - 1; i >= 0; i-- {
		frame.Stack.Push(indices[i])
	}
	return vm.Call(fn, len(indices)+1, frame)
}

// Prettyprint renders v through its prettyprint member when that yields a
// string, and through its debug form otherwise.
func (vm *VM) Prettyprint(frame *Frame, v Value) (string, error) {
	a := vm.tryOperator(symbol.Prettyprint, v, nil, frameOrNew(frame), false)
	switch a.kind {
	case attemptFatal:
		return "", a.err
	case attemptOk:
		if s, ok := a.res.Value.(*String); ok {
			return s.Val, nil
		}
	}
	return Display(v), nil
}
