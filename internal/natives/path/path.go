// Package path provides the Path native type: a mutable filesystem path
// stored in an opaque payload of a Path object.
package path

import (
	"fmt"

	"github.com/funvibe/haxby/internal/config"
	"github.com/funvibe/haxby/internal/vm"
)

// TypeName is the name of the struct exported by the module.
const TypeName = "Path"

// Extension loads the path module.
type Extension struct{}

func (Extension) Name() string { return config.PathModuleName }

// Load builds the Path struct with its nested Error and Iterator types.
func (Extension) Load(m *vm.VM) (*vm.Module, error) {
	g := m.Globals
	pathType := vm.NewStruct(TypeName)
	for _, nested := range []string{config.ErrorTypeName, config.IteratorTypeName} {
		if err := g.StoreNamed(pathType, nested, vm.NewStruct(nested)); err != nil {
			return nil, err
		}
	}
	for _, fn := range methods() {
		if err := g.RegisterMethod(pathType, fn); err != nil {
			return nil, err
		}
	}
	mod := vm.NewModule(config.PathModuleName)
	mod.StoreNamedValue(TypeName, pathType)
	return mod, nil
}

// buffer is the opaque payload. Append and pop mutate it in place, so
// every alias of a Path object observes the change.
type buffer struct {
	p string
}

func newPath(g *vm.Globals, s *vm.Struct, p string) (*vm.Object, error) {
	obj := vm.NewObject(s)
	if err := g.WriteNamed(obj, config.PathPayloadAttr, vm.NewOpaque(&buffer{p: p})); err != nil {
		return nil, err
	}
	return obj, nil
}

func bufferOf(g *vm.Globals, obj *vm.Object) (*buffer, bool) {
	payload, err := g.ReadNamed(obj, config.PathPayloadAttr)
	if err != nil {
		return nil, false
	}
	return vm.OpaqueAs[*buffer](payload)
}

// receiver pops the Path object a method was called on.
func receiver(frame *vm.Frame, g *vm.Globals) (*vm.Object, *buffer, error) {
	obj, err := vm.ExtractArg(frame, vm.AsObject)
	if err != nil {
		return nil, nil, err
	}
	buf, ok := bufferOf(g, obj)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s is not a path", vm.ErrUnexpectedVmState, obj)
	}
	return obj, buf, nil
}

// resultErr wraps msg in a Path.Error object inside Result.Err.
func resultErr(g *vm.Globals, s *vm.Struct, msg string) (vm.Value, error) {
	errType, ok := g.NestedStruct(s, config.ErrorTypeName)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no %s type", vm.ErrUnexpectedVmState, s.Name(), config.ErrorTypeName)
	}
	e := vm.NewObject(errType)
	if err := g.WriteNamed(e, "msg", vm.NewString(msg)); err != nil {
		return nil, err
	}
	return g.CreateResultErr(e), nil
}

func iterator(g *vm.Globals, s *vm.Struct, values []vm.Value) (*vm.Object, error) {
	iterType, ok := g.NestedStruct(s, config.IteratorTypeName)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no %s type", vm.ErrUnexpectedVmState, s.Name(), config.IteratorTypeName)
	}
	return g.CreateIterator(iterType, vm.SliceIterator(values))
}
