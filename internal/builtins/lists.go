package builtins

import (
	"fmt"

	"github.com/funvibe/haxby/internal/vm"
)

func listIndex(frame *vm.Frame, l *vm.List) (int, error) {
	idx, err := vm.ExtractArg(frame, vm.AsInteger)
	if err != nil {
		return 0, err
	}
	i := idx.Val
	if i < 0 {
		i += int64(l.Len())
	}
	if i < 0 || i >= int64(l.Len()) {
		return 0, fmt.Errorf("%w: index %d, length %d", vm.ErrIndexOutOfBounds, idx.Val, l.Len())
	}
	return int(i), nil
}

// ListBuiltins returns the member table of List.
func ListBuiltins() []vm.BuiltinFunctionImpl {
	return []vm.BuiltinFunctionImpl{
		vm.Method("len", 1, func(frame *vm.Frame, _ *vm.VM) (vm.CallResult, error) {
			this, err := receiver[*vm.List](frame)
			if err != nil {
				return vm.CallResult{}, err
			}
			return vm.Ok(vm.NewInteger(int64(this.Len()))), nil
		}),
		vm.Method("append", 2, func(frame *vm.Frame, m *vm.VM) (vm.CallResult, error) {
			this, err := receiver[*vm.List](frame)
			if err != nil {
				return vm.CallResult{}, err
			}
			this.Append(frame.Stack.Pop())
			return vm.Ok(m.Globals.CreateUnitObject()), nil
		}),
		vm.Method("contains", 2, func(frame *vm.Frame, m *vm.VM) (vm.CallResult, error) {
			this, err := receiver[*vm.List](frame)
			if err != nil {
				return vm.CallResult{}, err
			}
			needle := frame.Stack.Pop()
			for _, item := range this.Items() {
				if m.Equals(nil, item, needle) {
					return vm.Ok(vm.NewBoolean(true)), nil
				}
			}
			return vm.Ok(vm.NewBoolean(false)), nil
		}),
		vm.Method("_op_impl_add", 2, func(frame *vm.Frame, m *vm.VM) (vm.CallResult, error) {
			this, err := receiver[*vm.List](frame)
			if err != nil {
				return vm.CallResult{}, err
			}
			other, ok := frame.Stack.Pop().(*vm.List)
			if !ok {
				return unimplemented(m)
			}
			return vm.Ok(vm.NewList(append(this.Items(), other.Items()...)...)), nil
		}),
		vm.Method("_op_impl_read_index", 2, func(frame *vm.Frame, _ *vm.VM) (vm.CallResult, error) {
			this, err := receiver[*vm.List](frame)
			if err != nil {
				return vm.CallResult{}, err
			}
			i, err := listIndex(frame, this)
			if err != nil {
				return vm.CallResult{}, err
			}
			v, _ := this.Get(i)
			return vm.Ok(v), nil
		}),
		vm.Method("_op_impl_write_index", 3, func(frame *vm.Frame, m *vm.VM) (vm.CallResult, error) {
			this, err := receiver[*vm.List](frame)
			if err != nil {
				return vm.CallResult{}, err
			}
			i, err := listIndex(frame, this)
			if err != nil {
				return vm.CallResult{}, err
			}
			this.Set(i, frame.Stack.Pop())
			return vm.Ok(m.Globals.CreateUnitObject()), nil
		}),
		vm.Method("iterator", 1, func(frame *vm.Frame, m *vm.VM) (vm.CallResult, error) {
			this, err := receiver[*vm.List](frame)
			if err != nil {
				return vm.CallResult{}, err
			}
			iterType, ok := m.Globals.NestedStruct(m.Globals.BuiltinType(vm.BuiltinList), "Iterator")
			if !ok {
				return vm.CallResult{}, fmt.Errorf("%w: List.Iterator is not installed", vm.ErrUnexpectedVmState)
			}
			it, err := m.Globals.CreateIterator(iterType, vm.SliceIterator(this.Items()))
			if err != nil {
				return vm.CallResult{}, err
			}
			return vm.Ok(it), nil
		}),
	}
}
