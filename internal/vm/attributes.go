package vm

import (
	"sort"

	"github.com/funvibe/haxby/internal/symbol"
)

// bindInstance applies the binding rule for a member reached through an
// instance: type-level functions cannot be bound.
func bindInstance(receiver, v Value) (Value, error) {
	fn, ok := v.(*Function)
	if !ok {
		return v, nil
	}
	if fn.attrib.IsTypeMethod() {
		return nil, InvalidFunctionBinding
	}
	return bind(receiver, fn), nil
}

// bindType applies the binding rule for a member reached directly off a
// type descriptor: only type-level functions can be bound.
func bindType(t Type, v Value) (Value, error) {
	fn, ok := v.(*Function)
	if !ok {
		return v, nil
	}
	if !fn.attrib.IsTypeMethod() {
		return nil, InvalidFunctionBinding
	}
	return bind(t, fn), nil
}

// primitiveAttrs returns the extension storage of primitive and list
// handles.
func primitiveAttrs(v Value) (*attrStore, bool) {
	switch x := v.(type) {
	case *Integer:
		return &x.attrs, true
	case *Float:
		return &x.attrs, true
	case *Boolean:
		return &x.attrs, true
	case *String:
		return &x.attrs, true
	case *List:
		return &x.attrs, true
	}
	return nil, false
}

// ReadAttribute resolves sym on v. Values held in per-handle storage are
// returned as stored; functions found in a type or builtin member table
// are bound to the receiver.
func (g *Globals) ReadAttribute(v Value, sym symbol.Symbol) (Value, error) {
	switch x := v.(type) {
	case *Object:
		if val, ok := x.attrs.read(sym); ok {
			return val, nil
		}
		if val, ok := x.typ.LoadNamedValue(sym); ok {
			return bindInstance(x, val)
		}
		return nil, NoSuchAttribute
	case *Mixin:
		if val, ok := x.LoadNamedValue(sym); ok {
			return val, nil
		}
		return nil, NoSuchAttribute
	case *EnumValue:
		if val, ok := x.enum.LoadNamedValue(sym); ok {
			return bindInstance(x, val)
		}
		return nil, NoSuchAttribute
	case *Integer, *Float, *Boolean, *String, *List:
		store, _ := primitiveAttrs(x)
		if val, ok := store.read(sym); ok {
			return val, nil
		}
		t, _ := g.builtinMembers(x)
		if val, ok := t.LoadNamedValue(sym); ok {
			return bindInstance(x, val)
		}
		return nil, NoSuchAttribute
	case *Function:
		if val, ok := x.attrs.read(sym); ok {
			return val, nil
		}
		return nil, NoSuchAttribute
	case *Module:
		name, ok := g.ResolveSymbol(sym)
		if !ok {
			return nil, NoSuchAttribute
		}
		if val, ok := x.LoadNamedValue(name); ok {
			return val, nil
		}
		return nil, NoSuchAttribute
	case Type:
		if val, ok := x.LoadNamedValue(sym); ok {
			return bindType(x, val)
		}
		return nil, NoSuchAttribute
	default:
		return nil, ValueHasNoAttributes
	}
}

// WriteAttribute stores val under sym on v. There is no type fallback:
// writing to an Object sets an instance field, writing to a Type appends
// to its member table.
func (g *Globals) WriteAttribute(v Value, sym symbol.Symbol, val Value) error {
	switch x := v.(type) {
	case *Object:
		x.attrs.write(sym, val)
	case *Mixin:
		x.StoreNamedValue(sym, val)
	case *Integer, *Float, *Boolean, *String, *List:
		store, _ := primitiveAttrs(x)
		store.write(sym, val)
	case *Function:
		x.attrs.write(sym, val)
	case *Module:
		name, ok := g.ResolveSymbol(sym)
		if !ok {
			return NoSuchAttribute
		}
		x.StoreNamedValue(name, val)
	case Type:
		x.StoreNamedValue(sym, val)
	default:
		return ValueHasNoAttributes
	}
	return nil
}

// ListAttributes returns the sorted attribute names visible on v: its own
// names plus those of its declaring type or builtin member table.
// Names the interner cannot resolve are skipped.
func (g *Globals) ListAttributes(v Value) []string {
	var syms []symbol.Symbol
	var names []string
	switch x := v.(type) {
	case *Object:
		syms = append(x.attrs.symbols(), x.typ.NamedValues()...)
	case *Mixin:
		syms = x.NamedValues()
	case *EnumValue:
		syms = x.enum.NamedValues()
	case *Integer, *Float, *Boolean, *String, *List:
		store, _ := primitiveAttrs(x)
		t, _ := g.builtinMembers(x)
		syms = append(store.symbols(), t.NamedValues()...)
	case *Function:
		syms = x.attrs.symbols()
	case *Module:
		names = x.NamedValues()
	case Type:
		syms = x.NamedValues()
	}
	seen := make(map[string]struct{}, len(syms)+len(names))
	out := make([]string, 0, len(syms)+len(names))
	add := func(name string) {
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	for _, sym := range syms {
		if name, ok := g.ResolveSymbol(sym); ok {
			add(name)
		}
	}
	for _, name := range names {
		add(name)
	}
	sort.Strings(out)
	return out
}

// HasAttribute reports whether name resolves on v. Attribute errors map to
// false; only interner exhaustion is returned as an error.
func (g *Globals) HasAttribute(v Value, name string) (bool, error) {
	sym, err := g.InternSymbol(name)
	if err != nil {
		return false, err
	}
	_, err = g.ReadAttribute(v, sym)
	return err == nil, nil
}

// ReadNamed is ReadAttribute with a string name.
func (g *Globals) ReadNamed(v Value, name string) (Value, error) {
	sym, err := g.InternSymbol(name)
	if err != nil {
		return nil, err
	}
	return g.ReadAttribute(v, sym)
}

// WriteNamed is WriteAttribute with a string name.
func (g *Globals) WriteNamed(v Value, name string, val Value) error {
	sym, err := g.InternSymbol(name)
	if err != nil {
		return err
	}
	return g.WriteAttribute(v, sym, val)
}
