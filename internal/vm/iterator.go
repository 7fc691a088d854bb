package vm

import (
	"github.com/funvibe/haxby/internal/config"
)

// IteratorFunc yields the next element, or false when exhausted.
type IteratorFunc func() (Value, bool)

// SliceIterator yields values in order.
func SliceIterator(values []Value) IteratorFunc {
	i := 0
	return func() (Value, bool) {
		if i >= len(values) {
			return nil, false
		}
		v := values[i]
		i++
		return v, true
	}
}

// CreateIterator returns an instance of iterStruct driven by next. The
// struct gains next and iterator methods on first use: next returns a
// Maybe, iterator returns the receiver.
func (g *Globals) CreateIterator(iterStruct *Struct, next IteratorFunc) (*Object, error) {
	if _, ok := g.LoadNamed(iterStruct, "next"); !ok {
		if err := g.RegisterMethod(iterStruct, Method("next", 1, iteratorNext)); err != nil {
			return nil, err
		}
		if err := g.RegisterMethod(iterStruct, Method("iterator", 1, iteratorSelf)); err != nil {
			return nil, err
		}
	}
	obj := NewObject(iterStruct)
	if err := g.WriteNamed(obj, config.IteratorPayloadAttr, NewOpaque(next)); err != nil {
		return nil, err
	}
	return obj, nil
}

func iteratorNext(frame *Frame, vm *VM) (CallResult, error) {
	this, err := ExtractArg(frame, AsObject)
	if err != nil {
		return CallResult{}, err
	}
	payload, err := vm.Globals.ReadNamed(this, config.IteratorPayloadAttr)
	if err != nil {
		return CallResult{}, typeErrorf("%s is not an iterator", this)
	}
	next, ok := OpaqueAs[IteratorFunc](payload)
	if !ok {
		return CallResult{}, typeErrorf("%s is not an iterator", this)
	}
	if v, ok := next(); ok {
		return Ok(vm.Globals.CreateMaybeSome(v)), nil
	}
	return Ok(vm.Globals.CreateMaybeNone()), nil
}

func iteratorSelf(frame *Frame, _ *VM) (CallResult, error) {
	this, err := ExtractArg(frame, AsObject)
	if err != nil {
		return CallResult{}, err
	}
	return Ok(this), nil
}
