// Package builtins installs the shared member tables of the builtin types
// and the language-level builtin functions.
package builtins

import (
	"fmt"

	"github.com/funvibe/haxby/internal/vm"
)

// Install registers every builtin method and function on m.
func Install(m *vm.VM) error {
	g := m.Globals
	tables := []struct {
		id      vm.BuiltinTypeID
		methods []vm.BuiltinFunctionImpl
	}{
		{vm.BuiltinInt, IntBuiltins()},
		{vm.BuiltinFloat, FloatBuiltins()},
		{vm.BuiltinBool, BoolBuiltins()},
		{vm.BuiltinString, StringBuiltins()},
		{vm.BuiltinList, ListBuiltins()},
		{vm.BuiltinMaybe, MaybeBuiltins()},
		{vm.BuiltinResult, ResultBuiltins()},
	}
	count := 0
	for _, table := range tables {
		typ := g.BuiltinType(table.id)
		for _, method := range table.methods {
			if err := g.RegisterMethod(typ, method); err != nil {
				return fmt.Errorf("builtin type %s: %w", table.id, err)
			}
			count++
		}
	}
	if err := g.StoreNamed(g.BuiltinType(vm.BuiltinList), "Iterator", vm.NewStruct("Iterator")); err != nil {
		return err
	}
	for _, fn := range Functions() {
		g.InsertBuiltin(fn)
		count++
	}
	m.Logger().Debug().Int("count", count).Msg("builtins installed")
	return nil
}

func unimplemented(m *vm.VM) (vm.CallResult, error) {
	return vm.Raise(m.Globals.NewUnimplemented()), nil
}

// receiver pops the receiver of a builtin method.
func receiver[T vm.Value](frame *vm.Frame) (T, error) {
	return vm.ExtractArg(frame, func(v vm.Value) (T, bool) {
		t, ok := v.(T)
		return t, ok
	})
}
