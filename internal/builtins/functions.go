package builtins

import (
	"github.com/funvibe/haxby/internal/config"
	"github.com/funvibe/haxby/internal/vm"
)

// Functions returns the language-level builtins stored in the builtins
// module.
func Functions() []vm.BuiltinFunctionImpl {
	return []vm.BuiltinFunctionImpl{
		&vm.BuiltinFunc{
			FuncName: config.HasAttrFuncName,
			Args:     vm.RequiredArity(2),
			Fn: func(frame *vm.Frame, m *vm.VM) (vm.CallResult, error) {
				v := frame.Stack.Pop()
				name, err := vm.ExtractArg(frame, vm.AsString)
				if err != nil {
					return vm.CallResult{}, err
				}
				ok, err := m.Globals.HasAttribute(v, name.Val)
				if err != nil {
					return vm.CallResult{}, err
				}
				return vm.Ok(vm.NewBoolean(ok)), nil
			},
		},
		&vm.BuiltinFunc{
			FuncName: config.ListAttrsFuncName,
			Args:     vm.RequiredArity(1),
			Fn: func(frame *vm.Frame, m *vm.VM) (vm.CallResult, error) {
				names := m.Globals.ListAttributes(frame.Stack.Pop())
				values := make([]vm.Value, len(names))
				for i, n := range names {
					values[i] = vm.NewString(n)
				}
				return vm.Ok(vm.NewList(values...)), nil
			},
		},
		&vm.BuiltinFunc{
			FuncName: config.TypeOfFuncName,
			Args:     vm.RequiredArity(1),
			Fn: func(frame *vm.Frame, m *vm.VM) (vm.CallResult, error) {
				return vm.Ok(m.Globals.TypeOf(frame.Stack.Pop())), nil
			},
		},
		&vm.BuiltinFunc{
			FuncName: config.PrettyprintFuncName,
			Args:     vm.RequiredArity(1),
			Fn: func(frame *vm.Frame, m *vm.VM) (vm.CallResult, error) {
				s, err := m.Prettyprint(nil, frame.Stack.Pop())
				if err != nil {
					return vm.CallResult{}, err
				}
				return vm.Ok(vm.NewString(s)), nil
			},
		},
		&vm.BuiltinFunc{
			FuncName: "isa",
			Args:     vm.RequiredArity(2),
			Fn: func(frame *vm.Frame, m *vm.VM) (vm.CallResult, error) {
				v := frame.Stack.Pop()
				check, err := vm.ExtractArg(frame, func(v vm.Value) (*vm.TypeCheck, bool) {
					c, ok := v.(*vm.TypeCheck)
					return c, ok
				})
				if err != nil {
					return vm.CallResult{}, err
				}
				return vm.Ok(vm.NewBoolean(check.Check(v, m.Globals))), nil
			},
		},
	}
}
