package builtins

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/funvibe/haxby/internal/vm"
)

// stringOp builds a binary String method; a non-string operand raises
// Unimplemented.
func stringOp(name string, fn func(a, b string) vm.Value) *vm.BuiltinFunc {
	return vm.Method(name, 2, func(frame *vm.Frame, m *vm.VM) (vm.CallResult, error) {
		this, err := receiver[*vm.String](frame)
		if err != nil {
			return vm.CallResult{}, err
		}
		other, ok := frame.Stack.Pop().(*vm.String)
		if !ok {
			return unimplemented(m)
		}
		return vm.Ok(fn(this.Val, other.Val)), nil
	})
}

func stringMethod(name string, fn func(s string) vm.Value) *vm.BuiltinFunc {
	return vm.Method(name, 1, func(frame *vm.Frame, _ *vm.VM) (vm.CallResult, error) {
		this, err := receiver[*vm.String](frame)
		if err != nil {
			return vm.CallResult{}, err
		}
		return vm.Ok(fn(this.Val)), nil
	})
}

func repeat(frame *vm.Frame, m *vm.VM) (vm.CallResult, error) {
	this, err := receiver[*vm.String](frame)
	if err != nil {
		return vm.CallResult{}, err
	}
	n, ok := frame.Stack.Pop().(*vm.Integer)
	if !ok {
		return unimplemented(m)
	}
	if n.Val <= 0 {
		return vm.Ok(vm.NewString("")), nil
	}
	return vm.Ok(vm.NewString(strings.Repeat(this.Val, int(n.Val)))), nil
}

// StringBuiltins returns the member table of String.
func StringBuiltins() []vm.BuiltinFunctionImpl {
	return []vm.BuiltinFunctionImpl{
		stringOp("_op_impl_add", func(a, b string) vm.Value { return vm.NewString(a + b) }),
		stringOp("_op_impl_lt", func(a, b string) vm.Value { return vm.NewBoolean(a < b) }),
		stringOp("_op_impl_gt", func(a, b string) vm.Value { return vm.NewBoolean(a > b) }),
		stringOp("_op_impl_lteq", func(a, b string) vm.Value { return vm.NewBoolean(a <= b) }),
		stringOp("_op_impl_gteq", func(a, b string) vm.Value { return vm.NewBoolean(a >= b) }),
		stringOp("contains", func(a, b string) vm.Value { return vm.NewBoolean(strings.Contains(a, b)) }),
		stringOp("starts_with", func(a, b string) vm.Value { return vm.NewBoolean(strings.HasPrefix(a, b)) }),
		stringOp("ends_with", func(a, b string) vm.Value { return vm.NewBoolean(strings.HasSuffix(a, b)) }),
		stringOp("split", func(a, b string) vm.Value {
			parts := strings.Split(a, b)
			values := make([]vm.Value, len(parts))
			for i, p := range parts {
				values[i] = vm.NewString(p)
			}
			return vm.NewList(values...)
		}),
		vm.Method("_op_impl_mul", 2, repeat),
		vm.Method("_op_impl_rmul", 2, repeat),
		vm.Method("_op_impl_read_index", 2, func(frame *vm.Frame, _ *vm.VM) (vm.CallResult, error) {
			this, err := receiver[*vm.String](frame)
			if err != nil {
				return vm.CallResult{}, err
			}
			idx, err := vm.ExtractArg(frame, vm.AsInteger)
			if err != nil {
				return vm.CallResult{}, err
			}
			runes := []rune(this.Val)
			if idx.Val < 0 || idx.Val >= int64(len(runes)) {
				return vm.CallResult{}, fmt.Errorf("%w: index %d, length %d", vm.ErrIndexOutOfBounds, idx.Val, len(runes))
			}
			return vm.Ok(vm.NewString(string(runes[idx.Val]))), nil
		}),
		stringMethod("len", func(s string) vm.Value { return vm.NewInteger(int64(utf8.RuneCountInString(s))) }),
		stringMethod("upper", func(s string) vm.Value { return vm.NewString(strings.ToUpper(s)) }),
		stringMethod("lower", func(s string) vm.Value { return vm.NewString(strings.ToLower(s)) }),
		stringMethod("trim", func(s string) vm.Value { return vm.NewString(strings.TrimSpace(s)) }),
	}
}
