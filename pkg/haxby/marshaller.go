package haxby

import (
	"fmt"
	"math"
	"reflect"

	"github.com/funvibe/haxby/internal/vm"
)

// RecordTypeName is the struct used for Go maps and structs passed into
// the VM.
const RecordTypeName = "Record"

var valueType = reflect.TypeOf((*vm.Value)(nil)).Elem()

// Marshaller converts between Go values and VM values.
type Marshaller struct {
	globals *vm.Globals
	record  *vm.Struct
}

func NewMarshaller(g *vm.Globals) *Marshaller {
	return &Marshaller{globals: g, record: vm.NewStruct(RecordTypeName)}
}

// ToValue converts a Go value. Pointers, functions and other reference
// values become opaque handles.
func (m *Marshaller) ToValue(val any) (vm.Value, error) {
	if val == nil {
		return m.globals.CreateUnitObject(), nil
	}
	if v, ok := val.(vm.Value); ok {
		return v, nil
	}
	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return vm.NewInteger(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v.Uint() > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %d overflows Int", vm.ErrUnexpectedType, v.Uint())
		}
		return vm.NewInteger(int64(v.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return vm.NewFloat(v.Float()), nil
	case reflect.Bool:
		return vm.NewBoolean(v.Bool()), nil
	case reflect.String:
		return vm.NewString(v.String()), nil
	case reflect.Slice, reflect.Array:
		items := make([]vm.Value, v.Len())
		for i := range items {
			item, err := m.ToValue(v.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			items[i] = item
		}
		return vm.NewList(items...), nil
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return vm.NewOpaque(val), nil
		}
		obj := vm.NewObject(m.record)
		iter := v.MapRange()
		for iter.Next() {
			if err := m.setField(obj, iter.Key().String(), iter.Value().Interface()); err != nil {
				return nil, err
			}
		}
		return obj, nil
	case reflect.Struct:
		obj := vm.NewObject(m.record)
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			if err := m.setField(obj, t.Field(i).Name, v.Field(i).Interface()); err != nil {
				return nil, err
			}
		}
		return obj, nil
	default:
		return vm.NewOpaque(val), nil
	}
}

func (m *Marshaller) setField(obj *vm.Object, name string, val any) error {
	fv, err := m.ToValue(val)
	if err != nil {
		return fmt.Errorf("field %s: %w", name, err)
	}
	return m.globals.WriteNamed(obj, name, fv)
}

// FromValue converts a VM value. targetType is optional; when given, the
// result is converted to it.
func (m *Marshaller) FromValue(v vm.Value, targetType reflect.Type) (any, error) {
	if targetType != nil && targetType == valueType {
		return v, nil
	}
	var out any
	switch x := v.(type) {
	case *vm.Integer:
		out = x.Val
	case *vm.Float:
		out = x.Val
	case *vm.Boolean:
		out = x.Val
	case *vm.String:
		out = x.Val
	case *vm.List:
		return m.listToSlice(x, targetType)
	case *vm.Opaque:
		out = x.Payload()
	case *vm.Object:
		if x.Struct() == m.globals.BuiltinType(vm.BuiltinUnit) {
			if targetType != nil {
				return reflect.Zero(targetType).Interface(), nil
			}
			return nil, nil
		}
		if x.Struct() == m.record {
			return m.recordToMap(x)
		}
		out = x
	default:
		out = v
	}
	if targetType == nil {
		return out, nil
	}
	rv := reflect.ValueOf(out)
	switch {
	case !rv.IsValid():
		return reflect.Zero(targetType).Interface(), nil
	case rv.Type().AssignableTo(targetType):
		return out, nil
	case isNumeric(rv.Kind()) && isNumeric(targetType.Kind()):
		if !fits(rv, targetType) {
			return nil, fmt.Errorf("%w: %s does not fit in %s", vm.ErrUnexpectedType, v, targetType)
		}
		return rv.Convert(targetType).Interface(), nil
	}
	return nil, fmt.Errorf("%w: cannot convert %s to %s", vm.ErrUnexpectedType, v, targetType)
}

// fits reports whether the numeric rv converts to t without wrapping or
// losing a fractional part.
func fits(rv reflect.Value, t reflect.Type) bool {
	zero := reflect.Zero(t)
	switch {
	case isInt(t.Kind()):
		switch {
		case isInt(rv.Kind()):
			return !zero.OverflowInt(rv.Int())
		case isUint(rv.Kind()):
			return rv.Uint() <= math.MaxInt64 && !zero.OverflowInt(int64(rv.Uint()))
		}
		f := rv.Float()
		return f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 && !zero.OverflowInt(int64(f))
	case isUint(t.Kind()):
		switch {
		case isInt(rv.Kind()):
			return rv.Int() >= 0 && !zero.OverflowUint(uint64(rv.Int()))
		case isUint(rv.Kind()):
			return !zero.OverflowUint(rv.Uint())
		}
		f := rv.Float()
		return f == math.Trunc(f) && f >= 0 && f < math.MaxUint64 && !zero.OverflowUint(uint64(f))
	}
	switch {
	case isInt(rv.Kind()):
		return !zero.OverflowFloat(float64(rv.Int()))
	case isUint(rv.Kind()):
		return !zero.OverflowFloat(float64(rv.Uint()))
	}
	return !zero.OverflowFloat(rv.Float())
}

func (m *Marshaller) listToSlice(l *vm.List, targetType reflect.Type) (any, error) {
	elemType := reflect.TypeOf((*any)(nil)).Elem()
	if targetType != nil {
		if targetType.Kind() != reflect.Slice {
			return nil, fmt.Errorf("%w: cannot convert list to %s", vm.ErrUnexpectedType, targetType)
		}
		elemType = targetType.Elem()
	}
	out := reflect.MakeSlice(reflect.SliceOf(elemType), 0, l.Len())
	for i, item := range l.Items() {
		goItem, err := m.FromValue(item, elemType)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if goItem == nil {
			out = reflect.Append(out, reflect.Zero(elemType))
			continue
		}
		out = reflect.Append(out, reflect.ValueOf(goItem))
	}
	return out.Interface(), nil
}

func (m *Marshaller) recordToMap(obj *vm.Object) (map[string]any, error) {
	names := m.globals.ListAttributes(obj)
	out := make(map[string]any, len(names))
	for _, name := range names {
		fv, err := m.globals.ReadNamed(obj, name)
		if err != nil {
			continue
		}
		goVal, err := m.FromValue(fv, nil)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		out[name] = goVal
	}
	return out, nil
}

func isNumeric(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || k == reflect.Float32 || k == reflect.Float64
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
