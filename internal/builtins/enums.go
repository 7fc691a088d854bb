package builtins

import (
	"github.com/funvibe/haxby/internal/vm"
)

func caseIs(name string, idx int) *vm.BuiltinFunc {
	return vm.Method(name, 1, func(frame *vm.Frame, _ *vm.VM) (vm.CallResult, error) {
		this, err := receiver[*vm.EnumValue](frame)
		if err != nil {
			return vm.CallResult{}, err
		}
		return vm.Ok(vm.NewBoolean(this.CaseIndex() == idx)), nil
	})
}

// unwrapOr returns the payload of case idx, or the fallback argument.
func unwrapOr(idx int) *vm.BuiltinFunc {
	return vm.Method("unwrap_or", 2, func(frame *vm.Frame, _ *vm.VM) (vm.CallResult, error) {
		this, err := receiver[*vm.EnumValue](frame)
		if err != nil {
			return vm.CallResult{}, err
		}
		fallback := frame.Stack.Pop()
		if p, ok := this.Payload(); ok && this.CaseIndex() == idx {
			return vm.Ok(p), nil
		}
		return vm.Ok(fallback), nil
	})
}

// MaybeBuiltins returns the member table of Maybe.
func MaybeBuiltins() []vm.BuiltinFunctionImpl {
	return []vm.BuiltinFunctionImpl{
		caseIs("is_some", vm.MaybeSome),
		caseIs("is_none", vm.MaybeNone),
		unwrapOr(vm.MaybeSome),
	}
}

// ResultBuiltins returns the member table of Result.
func ResultBuiltins() []vm.BuiltinFunctionImpl {
	return []vm.BuiltinFunctionImpl{
		caseIs("is_ok", vm.ResultOk),
		caseIs("is_err", vm.ResultErr),
		unwrapOr(vm.ResultOk),
	}
}
