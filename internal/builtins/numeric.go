package builtins

import (
	"fmt"
	"math"

	"github.com/funvibe/haxby/internal/vm"
)

type intOp func(a, b int64) (vm.Value, error)
type floatOp func(a, b float64) vm.Value

// numeric builds a binary method shared by Int and Float. Mixed operands
// are widened to float; ints is nil for float-only operators and floats is
// nil for integer-only ones. Unsupported operands raise Unimplemented.
func numeric(name string, ints intOp, floats floatOp) *vm.BuiltinFunc {
	return vm.Method(name, 2, func(frame *vm.Frame, m *vm.VM) (vm.CallResult, error) {
		lhs := frame.Stack.Pop()
		rhs := frame.Stack.Pop()
		var a, b float64
		switch l := lhs.(type) {
		case *vm.Integer:
			switch r := rhs.(type) {
			case *vm.Integer:
				if ints == nil {
					return unimplemented(m)
				}
				v, err := ints(l.Val, r.Val)
				if err != nil {
					return vm.CallResult{}, err
				}
				return vm.Ok(v), nil
			case *vm.Float:
				a, b = float64(l.Val), r.Val
			default:
				return unimplemented(m)
			}
		case *vm.Float:
			switch r := rhs.(type) {
			case *vm.Integer:
				a, b = l.Val, float64(r.Val)
			case *vm.Float:
				a, b = l.Val, r.Val
			default:
				return unimplemented(m)
			}
		default:
			return vm.CallResult{}, fmt.Errorf("%w: %s receiver %s", vm.ErrUnexpectedType, name, lhs)
		}
		if floats == nil {
			return unimplemented(m)
		}
		return vm.Ok(floats(a, b)), nil
	})
}

func intResult(v int64) (vm.Value, error) { return vm.NewInteger(v), nil }

func numericOperators() []vm.BuiltinFunctionImpl {
	return []vm.BuiltinFunctionImpl{
		numeric("_op_impl_add",
			func(a, b int64) (vm.Value, error) { return intResult(a + b) },
			func(a, b float64) vm.Value { return vm.NewFloat(a + b) }),
		numeric("_op_impl_sub",
			func(a, b int64) (vm.Value, error) { return intResult(a - b) },
			func(a, b float64) vm.Value { return vm.NewFloat(a - b) }),
		numeric("_op_impl_mul",
			func(a, b int64) (vm.Value, error) { return intResult(a * b) },
			func(a, b float64) vm.Value { return vm.NewFloat(a * b) }),
		numeric("_op_impl_div",
			func(a, b int64) (vm.Value, error) {
				if b == 0 {
					return nil, vm.ErrDivisionByZero
				}
				return intResult(a / b)
			},
			func(a, b float64) vm.Value { return vm.NewFloat(a / b) }),
		numeric("_op_impl_rem",
			func(a, b int64) (vm.Value, error) {
				if b == 0 {
					return nil, vm.ErrDivisionByZero
				}
				return intResult(a % b)
			},
			func(a, b float64) vm.Value { return vm.NewFloat(math.Mod(a, b)) }),
		numeric("_op_impl_lt",
			func(a, b int64) (vm.Value, error) { return vm.NewBoolean(a < b), nil },
			func(a, b float64) vm.Value { return vm.NewBoolean(a < b) }),
		numeric("_op_impl_gt",
			func(a, b int64) (vm.Value, error) { return vm.NewBoolean(a > b), nil },
			func(a, b float64) vm.Value { return vm.NewBoolean(a > b) }),
		numeric("_op_impl_lteq",
			func(a, b int64) (vm.Value, error) { return vm.NewBoolean(a <= b), nil },
			func(a, b float64) vm.Value { return vm.NewBoolean(a <= b) }),
		numeric("_op_impl_gteq",
			func(a, b int64) (vm.Value, error) { return vm.NewBoolean(a >= b), nil },
			func(a, b float64) vm.Value { return vm.NewBoolean(a >= b) }),
	}
}

func shift(a, b int64, left bool) (vm.Value, error) {
	if b < 0 {
		return nil, vm.ErrNegativeShift
	}
	if left {
		return intResult(a << uint64(b))
	}
	return intResult(a >> uint64(b))
}

// IntBuiltins returns the member table of Int.
func IntBuiltins() []vm.BuiltinFunctionImpl {
	return append(numericOperators(),
		numeric("_op_impl_lshift", func(a, b int64) (vm.Value, error) { return shift(a, b, true) }, nil),
		numeric("_op_impl_rshift", func(a, b int64) (vm.Value, error) { return shift(a, b, false) }, nil),
		numeric("_op_impl_bwand", func(a, b int64) (vm.Value, error) { return intResult(a & b) }, nil),
		numeric("_op_impl_bwor", func(a, b int64) (vm.Value, error) { return intResult(a | b) }, nil),
		numeric("_op_impl_xor", func(a, b int64) (vm.Value, error) { return intResult(a ^ b) }, nil),
		vm.Method("_op_impl_neg", 1, func(frame *vm.Frame, _ *vm.VM) (vm.CallResult, error) {
			this, err := receiver[*vm.Integer](frame)
			if err != nil {
				return vm.CallResult{}, err
			}
			return vm.Ok(vm.NewInteger(-this.Val)), nil
		}),
		vm.Method("abs", 1, func(frame *vm.Frame, _ *vm.VM) (vm.CallResult, error) {
			this, err := receiver[*vm.Integer](frame)
			if err != nil {
				return vm.CallResult{}, err
			}
			if this.Val < 0 {
				return vm.Ok(vm.NewInteger(-this.Val)), nil
			}
			return vm.Ok(this), nil
		}),
		vm.Method("float", 1, func(frame *vm.Frame, _ *vm.VM) (vm.CallResult, error) {
			this, err := receiver[*vm.Integer](frame)
			if err != nil {
				return vm.CallResult{}, err
			}
			return vm.Ok(vm.NewFloat(float64(this.Val))), nil
		}),
	)
}

func floatMethod(name string, fn func(float64) vm.Value) *vm.BuiltinFunc {
	return vm.Method(name, 1, func(frame *vm.Frame, _ *vm.VM) (vm.CallResult, error) {
		this, err := receiver[*vm.Float](frame)
		if err != nil {
			return vm.CallResult{}, err
		}
		return vm.Ok(fn(this.Val)), nil
	})
}

// FloatBuiltins returns the member table of Float.
func FloatBuiltins() []vm.BuiltinFunctionImpl {
	return append(numericOperators(),
		floatMethod("_op_impl_neg", func(f float64) vm.Value { return vm.NewFloat(-f) }),
		floatMethod("abs", func(f float64) vm.Value { return vm.NewFloat(math.Abs(f)) }),
		floatMethod("floor", func(f float64) vm.Value { return vm.NewFloat(math.Floor(f)) }),
		floatMethod("ceil", func(f float64) vm.Value { return vm.NewFloat(math.Ceil(f)) }),
		floatMethod("int", func(f float64) vm.Value { return vm.NewInteger(int64(f)) }),
		floatMethod("is_nan", func(f float64) vm.Value { return vm.NewBoolean(math.IsNaN(f)) }),
	)
}

func boolOp(name string, fn func(a, b bool) bool) *vm.BuiltinFunc {
	return vm.Method(name, 2, func(frame *vm.Frame, m *vm.VM) (vm.CallResult, error) {
		this, err := receiver[*vm.Boolean](frame)
		if err != nil {
			return vm.CallResult{}, err
		}
		other, ok := frame.Stack.Pop().(*vm.Boolean)
		if !ok {
			return unimplemented(m)
		}
		return vm.Ok(vm.NewBoolean(fn(this.Val, other.Val))), nil
	})
}

// BoolBuiltins returns the member table of Bool.
func BoolBuiltins() []vm.BuiltinFunctionImpl {
	return []vm.BuiltinFunctionImpl{
		boolOp("_op_impl_bwand", func(a, b bool) bool { return a && b }),
		boolOp("_op_impl_bwor", func(a, b bool) bool { return a || b }),
		boolOp("_op_impl_xor", func(a, b bool) bool { return a != b }),
	}
}
