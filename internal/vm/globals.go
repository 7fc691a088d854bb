package vm

import (
	"fmt"

	"github.com/funvibe/haxby/internal/config"
	"github.com/funvibe/haxby/internal/symbol"
)

// BuiltinTypeID names a slot in the builtin type registry.
type BuiltinTypeID uint8

const (
	BuiltinAny BuiltinTypeID = iota
	BuiltinInt
	BuiltinFloat
	BuiltinBool
	BuiltinString
	BuiltinList
	BuiltinCodeObject
	BuiltinFunction
	BuiltinBoundFunction
	BuiltinMixin
	BuiltinModule
	BuiltinOpaque
	BuiltinTypeCheck
	BuiltinType
	BuiltinUnimplemented
	BuiltinUnit
	BuiltinResult
	BuiltinMaybe
	numBuiltinTypes
)

var builtinTypeNames = [numBuiltinTypes]string{
	BuiltinAny:           config.AnyTypeName,
	BuiltinInt:           config.IntTypeName,
	BuiltinFloat:         config.FloatTypeName,
	BuiltinBool:          config.BoolTypeName,
	BuiltinString:        config.StringTypeName,
	BuiltinList:          config.ListTypeName,
	BuiltinCodeObject:    config.CodeObjectTypeName,
	BuiltinFunction:      config.FunctionTypeName,
	BuiltinBoundFunction: config.BoundFunctionTypeName,
	BuiltinMixin:         config.MixinTypeName,
	BuiltinModule:        config.ModuleTypeName,
	BuiltinOpaque:        config.OpaqueTypeName,
	BuiltinTypeCheck:     config.TypeCheckTypeName,
	BuiltinType:          config.TypeTypeName,
	BuiltinUnimplemented: config.UnimplementedTypeName,
	BuiltinUnit:          config.UnitTypeName,
	BuiltinResult:        config.ResultTypeName,
	BuiltinMaybe:         config.MaybeTypeName,
}

func (id BuiltinTypeID) String() string {
	if id < numBuiltinTypes {
		return builtinTypeNames[id]
	}
	return fmt.Sprintf("builtin_type_%d", uint8(id))
}

// Enum case indices of the wrapper types.
const (
	ResultOk  = 0
	ResultErr = 1
	MaybeSome = 0
	MaybeNone = 1
)

// Globals is the VM-wide state shared by every activation: the symbol
// interner, the builtin type registry and the builtins module.
type Globals struct {
	interner *symbol.Interner
	types    [numBuiltinTypes]Type
	builtins *Module
}

// NewGlobals populates the builtin type registry. in may be nil, in which
// case a default interner is created.
func NewGlobals(in *symbol.Interner) *Globals {
	if in == nil {
		in = symbol.New()
	}
	g := &Globals{interner: in, builtins: NewModule(config.BuiltinsModuleName)}
	for id := BuiltinTypeID(0); id < numBuiltinTypes; id++ {
		name := builtinTypeNames[id]
		var t Type
		switch id {
		case BuiltinUnimplemented, BuiltinUnit:
			t = NewStruct(name)
		case BuiltinResult:
			t = NewEnum(name,
				EnumCase{Name: config.OkCaseName, HasPayload: true},
				EnumCase{Name: config.ErrCaseName, HasPayload: true})
		case BuiltinMaybe:
			t = NewEnum(name,
				EnumCase{Name: config.SomeCaseName, HasPayload: true},
				EnumCase{Name: config.NoneCaseName})
		default:
			t = NewNativeType(name)
		}
		g.types[id] = t
		g.builtins.StoreNamedValue(name, t)
	}
	return g
}

// InternSymbol interns name in the VM-wide interner.
func (g *Globals) InternSymbol(name string) (symbol.Symbol, error) {
	return g.interner.Intern(name)
}

// ResolveSymbol maps a symbol back to its name.
func (g *Globals) ResolveSymbol(sym symbol.Symbol) (string, bool) {
	return g.interner.Resolve(sym)
}

// Interner exposes the VM-wide interner.
func (g *Globals) Interner() *symbol.Interner { return g.interner }

// BuiltinType returns the shared descriptor for id.
func (g *Globals) BuiltinType(id BuiltinTypeID) Type {
	if id >= numBuiltinTypes {
		return nil
	}
	return g.types[id]
}

// Builtins returns the module of language-level builtins.
func (g *Globals) Builtins() *Module { return g.builtins }

// InsertBuiltin registers a language-level builtin function.
func (g *Globals) InsertBuiltin(impl BuiltinFunctionImpl) {
	g.builtins.StoreNamedValue(impl.Name(), NewBuiltinFunction(impl))
}

// RegisterMethod adds a Go implementation to the member table of t.
func (g *Globals) RegisterMethod(t Type, impl BuiltinFunctionImpl) error {
	sym, err := g.InternSymbol(impl.Name())
	if err != nil {
		return fmt.Errorf("registering %s.%s: %w", t.Name(), impl.Name(), err)
	}
	t.StoreNamedValue(sym, NewBuiltinFunction(impl))
	return nil
}

// StoreNamed writes a named member into t, interning name.
func (g *Globals) StoreNamed(t Type, name string, v Value) error {
	sym, err := g.InternSymbol(name)
	if err != nil {
		return err
	}
	t.StoreNamedValue(sym, v)
	return nil
}

// LoadNamed reads a named member from t without binding.
func (g *Globals) LoadNamed(t Type, name string) (Value, bool) {
	sym, err := g.InternSymbol(name)
	if err != nil {
		return nil, false
	}
	return t.LoadNamedValue(sym)
}

func (g *Globals) makeCase(id BuiltinTypeID, idx int, payload Value) *EnumValue {
	v, err := g.types[id].(*Enum).Make(idx, payload)
	if err != nil {
		// case layout is fixed in NewGlobals
		panic(err)
	}
	return v
}

func (g *Globals) CreateResultOk(v Value) *EnumValue  { return g.makeCase(BuiltinResult, ResultOk, v) }
func (g *Globals) CreateResultErr(v Value) *EnumValue { return g.makeCase(BuiltinResult, ResultErr, v) }
func (g *Globals) CreateMaybeSome(v Value) *EnumValue { return g.makeCase(BuiltinMaybe, MaybeSome, v) }
func (g *Globals) CreateMaybeNone() *EnumValue        { return g.makeCase(BuiltinMaybe, MaybeNone, nil) }

// CreateUnitObject returns a fresh instance of the Unit type.
func (g *Globals) CreateUnitObject() *Object {
	return NewObject(g.types[BuiltinUnit].(*Struct))
}

// NewUnimplemented returns the "operator not implemented" exception payload.
func (g *Globals) NewUnimplemented() *Object {
	return NewObject(g.types[BuiltinUnimplemented].(*Struct))
}

// IsUnimplemented reports whether v is an instance of the registry's
// Unimplemented type. The check is by descriptor identity, never by name.
func (g *Globals) IsUnimplemented(v Value) bool {
	o, ok := v.(*Object)
	return ok && Type(o.typ) == g.types[BuiltinUnimplemented]
}

// TypeOf returns the runtime type of v.
func (g *Globals) TypeOf(v Value) Type {
	switch x := v.(type) {
	case *Object:
		return x.typ
	case *EnumValue:
		return x.enum
	case *Integer:
		return g.types[BuiltinInt]
	case *Float:
		return g.types[BuiltinFloat]
	case *Boolean:
		return g.types[BuiltinBool]
	case *String:
		return g.types[BuiltinString]
	case *List:
		return g.types[BuiltinList]
	case *CodeObject:
		return g.types[BuiltinCodeObject]
	case *Function:
		return g.types[BuiltinFunction]
	case *BoundFunction:
		return g.types[BuiltinBoundFunction]
	case *Mixin:
		return g.types[BuiltinMixin]
	case *Module:
		return g.types[BuiltinModule]
	case *Opaque:
		return g.types[BuiltinOpaque]
	case *TypeCheck:
		return g.types[BuiltinTypeCheck]
	case Type:
		return g.types[BuiltinType]
	default:
		return g.types[BuiltinAny]
	}
}

// builtinMembers returns the shared member table consulted after a
// primitive's extension storage.
func (g *Globals) builtinMembers(v Value) (Type, bool) {
	switch v.(type) {
	case *Integer:
		return g.types[BuiltinInt], true
	case *Float:
		return g.types[BuiltinFloat], true
	case *Boolean:
		return g.types[BuiltinBool], true
	case *String:
		return g.types[BuiltinString], true
	case *List:
		return g.types[BuiltinList], true
	}
	return nil, false
}

// NestedStruct returns the Struct stored under name in t's member table.
func (g *Globals) NestedStruct(t Type, name string) (*Struct, bool) {
	v, ok := g.LoadNamed(t, name)
	if !ok {
		return nil, false
	}
	s, ok := v.(*Struct)
	return s, ok
}
