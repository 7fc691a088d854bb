package vm

import (
	"fmt"

	"github.com/funvibe/haxby/internal/symbol"
)

// Type is a declaring-type descriptor: a user struct, an enumeration or a
// native type. Type values are compared by identity.
type Type interface {
	Value
	Name() string
	LoadNamedValue(sym symbol.Symbol) (Value, bool)
	StoreNamedValue(sym symbol.Symbol, v Value)
	NamedValues() []symbol.Symbol
}

// members is the append-only member table shared by all type descriptors.
type members struct {
	attrStore
}

func (m *members) LoadNamedValue(sym symbol.Symbol) (Value, bool) { return m.read(sym) }
func (m *members) StoreNamedValue(sym symbol.Symbol, v Value)    { m.write(sym, v) }
func (m *members) NamedValues() []symbol.Symbol                  { return m.symbols() }

// Struct is a user-defined type. Its member table holds methods and
// nested named values such as an associated Error or Iterator type.
type Struct struct {
	name string
	members
}

func NewStruct(name string) *Struct { return &Struct{name: name} }

func (*Struct) Kind() Kind        { return KindType }
func (s *Struct) String() string { return fmt.Sprintf("type<struct %s>", s.name) }
func (*Struct) value()            {}
func (s *Struct) Name() string   { return s.name }

// EnumCase describes one case of an enumeration.
type EnumCase struct {
	Name       string
	HasPayload bool
}

// Enum is an enumerated type.
type Enum struct {
	name  string
	cases []EnumCase
	members
}

func NewEnum(name string, cases ...EnumCase) *Enum {
	return &Enum{name: name, cases: append([]EnumCase(nil), cases...)}
}

func (*Enum) Kind() Kind        { return KindType }
func (e *Enum) String() string { return fmt.Sprintf("type<enum %s>", e.name) }
func (*Enum) value()            {}
func (e *Enum) Name() string   { return e.name }

// Cases returns the declared cases.
func (e *Enum) Cases() []EnumCase { return append([]EnumCase(nil), e.cases...) }

// CaseIndex returns the index of the case called name.
func (e *Enum) CaseIndex(name string) (int, bool) {
	for i, c := range e.cases {
		if c.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Make builds a value of case idx. payload must be nil for cases without one.
func (e *Enum) Make(idx int, payload Value) (*EnumValue, error) {
	if idx < 0 || idx >= len(e.cases) {
		return nil, fmt.Errorf("%w: enum %s has no case %d", ErrUnexpectedVmState, e.name, idx)
	}
	if e.cases[idx].HasPayload != (payload != nil) {
		return nil, fmt.Errorf("%w: payload mismatch for %s.%s", ErrUnexpectedVmState, e.name, e.cases[idx].Name)
	}
	return &EnumValue{enum: e, caseIdx: idx, payload: payload}, nil
}

// EnumValue is a value of one case of an Enum. It carries no per-instance
// storage: attribute lookups go to the container enum.
type EnumValue struct {
	enum    *Enum
	caseIdx int
	payload Value
}

func (*EnumValue) Kind() Kind { return KindEnumValue }
func (v *EnumValue) String() string {
	return fmt.Sprintf("<enum-value of type %s>", v.enum.name)
}
func (*EnumValue) value() {}

// Enum returns the container enumeration.
func (v *EnumValue) Enum() *Enum { return v.enum }

func (v *EnumValue) CaseIndex() int { return v.caseIdx }

func (v *EnumValue) CaseName() string { return v.enum.cases[v.caseIdx].Name }

// Payload returns the case payload, if any.
func (v *EnumValue) Payload() (Value, bool) { return v.payload, v.payload != nil }

// NativeType is a type implemented by the host, including the builtin
// Int, Float, Bool, String and List types.
type NativeType struct {
	name string
	members
}

func NewNativeType(name string) *NativeType { return &NativeType{name: name} }

func (*NativeType) Kind() Kind        { return KindType }
func (t *NativeType) String() string { return fmt.Sprintf("type<%s>", t.name) }
func (*NativeType) value()            {}
func (t *NativeType) Name() string   { return t.name }

// TypeCheck is an "is-a" predicate value: any value, a single type, or a
// union of checks.
type TypeCheck struct {
	any   bool
	typ   Type
	union []*TypeCheck
}

// IsaAny accepts every value.
func IsaAny() *TypeCheck { return &TypeCheck{any: true} }

// IsaType accepts values whose runtime type is t.
func IsaType(t Type) *TypeCheck { return &TypeCheck{typ: t} }

// IsaUnion accepts values accepted by any of checks.
func IsaUnion(checks ...*TypeCheck) *TypeCheck {
	return &TypeCheck{union: append([]*TypeCheck(nil), checks...)}
}

func (*TypeCheck) Kind() Kind { return KindTypeCheck }
func (c *TypeCheck) String() string {
	switch {
	case c.any:
		return "type-check(any)"
	case c.typ != nil:
		return fmt.Sprintf("type-check(%s)", c.typ.Name())
	default:
		s := "type-check("
		for i, u := range c.union {
			if i > 0 {
				s += " | "
			}
			s += u.String()
		}
		return s + ")"
	}
}
func (*TypeCheck) value() {}

// Check reports whether v satisfies the predicate.
func (c *TypeCheck) Check(v Value, g *Globals) bool {
	switch {
	case c.any:
		return true
	case c.typ != nil:
		return g.TypeOf(v) == c.typ
	default:
		for _, u := range c.union {
			if u.Check(v, g) {
				return true
			}
		}
		return false
	}
}

func (c *TypeCheck) equal(o *TypeCheck) bool {
	if c.any || o.any {
		return c.any == o.any
	}
	if c.typ != nil || o.typ != nil {
		return c.typ == o.typ
	}
	if len(c.union) != len(o.union) {
		return false
	}
	for _, a := range c.union {
		found := false
		for _, b := range o.union {
			if a.equal(b) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
