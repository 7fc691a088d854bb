package vm

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/funvibe/haxby/internal/symbol"
)

// Kind identifies the runtime value category.
type Kind uint8

const (
	KindInteger Kind = iota
	KindFloat
	KindBoolean
	KindString
	KindObject
	KindEnumValue
	KindCodeObject
	KindFunction
	KindBoundFunction
	KindList
	KindMixin
	KindType
	KindModule
	KindOpaque
	KindTypeCheck
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindEnumValue:
		return "enum_value"
	case KindCodeObject:
		return "code_object"
	case KindFunction:
		return "function"
	case KindBoundFunction:
		return "bound_function"
	case KindList:
		return "list"
	case KindMixin:
		return "mixin"
	case KindType:
		return "type"
	case KindModule:
		return "module"
	case KindOpaque:
		return "opaque"
	case KindTypeCheck:
		return "type_check"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is a runtime value. The set of implementations is closed: every
// Value is one of the types declared in this package.
type Value interface {
	Kind() Kind
	// String returns the debug representation.
	String() string
	value()
}

// attrStore is per-handle attribute storage keyed by symbol.
// The map is allocated on first write.
type attrStore struct {
	m map[symbol.Symbol]Value
}

func (s *attrStore) read(sym symbol.Symbol) (Value, bool) {
	v, ok := s.m[sym]
	return v, ok
}

func (s *attrStore) write(sym symbol.Symbol, v Value) {
	if s.m == nil {
		s.m = make(map[symbol.Symbol]Value)
	}
	s.m[sym] = v
}

func (s *attrStore) symbols() []symbol.Symbol {
	out := make([]symbol.Symbol, 0, len(s.m))
	for sym := range s.m {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

//-----------------------------------------------------------------------------
// Primitives
//-----------------------------------------------------------------------------

// Integer is a 64-bit integer. Each handle carries its own extension storage.
type Integer struct {
	Val   int64
	attrs attrStore
}

func NewInteger(v int64) *Integer { return &Integer{Val: v} }

func (*Integer) Kind() Kind        { return KindInteger }
func (i *Integer) String() string { return strconv.FormatInt(i.Val, 10) }
func (*Integer) value()            {}

// Float is a 64-bit float. Each handle carries its own extension storage.
type Float struct {
	Val   float64
	attrs attrStore
}

func NewFloat(v float64) *Float { return &Float{Val: v} }

func (*Float) Kind() Kind        { return KindFloat }
func (f *Float) String() string { return strconv.FormatFloat(f.Val, 'g', -1, 64) }
func (*Float) value()            {}

// Boolean is a truth value. Each handle carries its own extension storage.
type Boolean struct {
	Val   bool
	attrs attrStore
}

func NewBoolean(v bool) *Boolean { return &Boolean{Val: v} }

func (*Boolean) Kind() Kind        { return KindBoolean }
func (b *Boolean) String() string { return strconv.FormatBool(b.Val) }
func (*Boolean) value()            {}

// String is an immutable string. Each handle carries its own extension storage.
type String struct {
	Val   string
	attrs attrStore
}

func NewString(v string) *String { return &String{Val: v} }

func (*String) Kind() Kind        { return KindString }
func (s *String) String() string { return strconv.Quote(s.Val) }
func (*String) value()            {}

//-----------------------------------------------------------------------------
// Shared containers
//-----------------------------------------------------------------------------

// Object is an instance of a user type. Handles alias one logical object.
type Object struct {
	typ   *Struct
	attrs attrStore
}

// NewObject creates an empty instance of s.
func NewObject(s *Struct) *Object { return &Object{typ: s} }

func (*Object) Kind() Kind        { return KindObject }
func (o *Object) String() string { return fmt.Sprintf("<object of type %s>", o.typ.Name()) }
func (*Object) value()            {}

// Struct returns the declaring type.
func (o *Object) Struct() *Struct { return o.typ }

// Read returns the instance field sym, without falling back to the type.
func (o *Object) Read(sym symbol.Symbol) (Value, bool) { return o.attrs.read(sym) }

// Write stores an instance field.
func (o *Object) Write(sym symbol.Symbol, v Value) { o.attrs.write(sym, v) }

// List is a growable sequence. Handles alias one logical list.
type List struct {
	items []Value
	attrs attrStore
}

func NewList(items ...Value) *List {
	return &List{items: append([]Value(nil), items...)}
}

func (*List) Kind() Kind { return KindList }
func (l *List) String() string {
	s := "["
	for i, it := range l.items {
		if i > 0 {
			s += ", "
		}
		s += it.String()
	}
	return s + "]"
}
func (*List) value() {}

func (l *List) Len() int { return len(l.items) }

// Get returns the element at idx and false when idx is out of range.
func (l *List) Get(idx int) (Value, bool) {
	if idx < 0 || idx >= len(l.items) {
		return nil, false
	}
	return l.items[idx], true
}

// Set replaces the element at idx and reports whether idx was in range.
func (l *List) Set(idx int, v Value) bool {
	if idx < 0 || idx >= len(l.items) {
		return false
	}
	l.items[idx] = v
	return true
}

func (l *List) Append(v Value) { l.items = append(l.items, v) }

// Items returns a copy of the elements.
func (l *List) Items() []Value { return append([]Value(nil), l.items...) }

// Mixin is a named bag of values mixed into types. Lookups never bind.
type Mixin struct {
	name    string
	members attrStore
}

func NewMixin(name string) *Mixin { return &Mixin{name: name} }

func (*Mixin) Kind() Kind        { return KindMixin }
func (m *Mixin) String() string { return fmt.Sprintf("<mixin %s>", m.name) }
func (*Mixin) value()            {}

func (m *Mixin) Name() string { return m.name }

func (m *Mixin) LoadNamedValue(sym symbol.Symbol) (Value, bool) { return m.members.read(sym) }
func (m *Mixin) StoreNamedValue(sym symbol.Symbol, v Value)    { m.members.write(sym, v) }
func (m *Mixin) NamedValues() []symbol.Symbol                  { return m.members.symbols() }

// Module is a string-addressed container of named values.
type Module struct {
	name   string
	values map[string]Value
	order  []string
}

func NewModule(name string) *Module {
	return &Module{name: name, values: make(map[string]Value)}
}

func (*Module) Kind() Kind        { return KindModule }
func (m *Module) String() string { return fmt.Sprintf("<module %s>", m.name) }
func (*Module) value()            {}

func (m *Module) Name() string { return m.name }

func (m *Module) LoadNamedValue(name string) (Value, bool) {
	v, ok := m.values[name]
	return v, ok
}

func (m *Module) StoreNamedValue(name string, v Value) {
	if _, ok := m.values[name]; !ok {
		m.order = append(m.order, name)
	}
	m.values[name] = v
}

// NamedValues returns names in insertion order.
func (m *Module) NamedValues() []string { return append([]string(nil), m.order...) }

//-----------------------------------------------------------------------------
// Foreign and code values
//-----------------------------------------------------------------------------

// Opaque carries a foreign payload. It has no attributes or operators.
type Opaque struct {
	payload any
}

func NewOpaque(payload any) *Opaque { return &Opaque{payload: payload} }

func (*Opaque) Kind() Kind      { return KindOpaque }
func (*Opaque) String() string { return "<opaque>" }
func (*Opaque) value()          {}

// Payload returns the foreign payload.
func (o *Opaque) Payload() any { return o.payload }

// OpaqueAs downcasts the payload of an Opaque value to T.
func OpaqueAs[T any](v Value) (T, bool) {
	var zero T
	o, ok := v.(*Opaque)
	if !ok {
		return zero, false
	}
	t, ok := o.payload.(T)
	return t, ok
}

// SourcePointer locates a code object in source.
type SourcePointer struct {
	File string
	Line int
	Col  int
}

func (p SourcePointer) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Bytecode is a compiled body. Code objects sharing a body are equal.
type Bytecode struct {
	Code []byte
}

// CodeObject is a compiled function body produced by the compiler.
type CodeObject struct {
	Name         string
	Body         *Bytecode
	RequiredArgc uint8
	DefaultArgc  uint8
	FrameSize    uint8
	Loc          SourcePointer
}

func (*CodeObject) Kind() Kind { return KindCodeObject }
func (c *CodeObject) String() string {
	return fmt.Sprintf("<code-object %s at %s>", c.Name, c.Loc)
}
func (*CodeObject) value() {}

// Display is the user-facing form: strings print raw, everything else
// prints its debug form.
func Display(v Value) string {
	if s, ok := v.(*String); ok {
		return s.Val
	}
	return v.String()
}
