package vm

import (
	"github.com/funvibe/haxby/internal/symbol"
)

// Equals compares lhs and rhs. It never fails: overrides that raise, signal
// Unimplemented, return a non-boolean or hit a fatal error are skipped and
// structural equality decides.
func (vm *VM) Equals(frame *Frame, lhs, rhs Value) bool {
	frame = frameOrNew(frame)
	if a := vm.tryOperator(symbol.OpEquals, lhs, []Value{rhs}, frame, true); a.kind == attemptOk {
		return a.res.Value.(*Boolean).Val
	} else if a.kind == attemptFatal {
		vm.log.Debug().Err(a.err).Msg("equality override failed")
	}
	if vm.Globals.TypeOf(lhs) == vm.Globals.TypeOf(rhs) {
		return vm.BuiltinEquals(lhs, rhs)
	}
	if a := vm.tryOperator(symbol.OpEquals, rhs, []Value{lhs}, frame, true); a.kind == attemptOk {
		return a.res.Value.(*Boolean).Val
	}
	vm.log.Trace().Str("lhs", vm.Globals.TypeOf(lhs).Name()).Str("rhs", vm.Globals.TypeOf(rhs).Name()).Msg("equality falling back to structural comparison")
	return vm.BuiltinEquals(lhs, rhs)
}

// BuiltinEquals is kind-native equality. Integers and floats compare
// numerically across kinds; shared containers compare by identity; other
// mixed-kind pairs are unequal.
func (vm *VM) BuiltinEquals(lhs, rhs Value) bool {
	switch l := lhs.(type) {
	case *Integer:
		switch r := rhs.(type) {
		case *Integer:
			return l.Val == r.Val
		case *Float:
			return float64(l.Val) == r.Val
		}
	case *Float:
		switch r := rhs.(type) {
		case *Integer:
			return l.Val == float64(r.Val)
		case *Float:
			return l.Val == r.Val
		}
	case *Boolean:
		if r, ok := rhs.(*Boolean); ok {
			return l.Val == r.Val
		}
	case *String:
		if r, ok := rhs.(*String); ok {
			return l.Val == r.Val
		}
	case *EnumValue:
		r, ok := rhs.(*EnumValue)
		if !ok || l.enum != r.enum || l.caseIdx != r.caseIdx {
			return false
		}
		if l.payload == nil || r.payload == nil {
			return l.payload == nil && r.payload == nil
		}
		return vm.Equals(nil, l.payload, r.payload)
	case *CodeObject:
		if r, ok := rhs.(*CodeObject); ok {
			return l == r || (l.Body != nil && l.Body == r.Body)
		}
	case *BoundFunction:
		if r, ok := rhs.(*BoundFunction); ok {
			return l.fn == r.fn && vm.BuiltinEquals(l.receiver, r.receiver)
		}
	case *TypeCheck:
		if r, ok := rhs.(*TypeCheck); ok {
			return l.equal(r)
		}
	default:
		// Object, List, Mixin, Module, Function, Opaque and Type values.
		return lhs == rhs
	}
	return false
}
