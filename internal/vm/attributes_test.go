package vm

import (
	"errors"
	"reflect"
	"testing"

	"github.com/funvibe/haxby/internal/symbol"
)

func register(t *testing.T, g *Globals, typ Type, impl BuiltinFunctionImpl) {
	t.Helper()
	if err := g.RegisterMethod(typ, impl); err != nil {
		t.Fatalf("RegisterMethod(%s): %v", impl.Name(), err)
	}
}

func intern(t *testing.T, g *Globals, name string) symbol.Symbol {
	t.Helper()
	sym, err := g.InternSymbol(name)
	if err != nil {
		t.Fatalf("InternSymbol(%q): %v", name, err)
	}
	return sym
}

func returning(v Value) func(*Frame, *VM) (CallResult, error) {
	return func(frame *Frame, _ *VM) (CallResult, error) {
		frame.Stack.Pop()
		return Ok(v), nil
	}
}

func TestReadAttribute_BindingMatrix(t *testing.T) {
	m := New()
	g := m.Globals
	typ := NewStruct("T")
	created := NewObject(typ)
	register(t, g, typ, Method("greet", 1, returning(NewString("hi"))))
	register(t, g, typ, TypeMethod("create", 1, returning(created)))
	o := NewObject(typ)

	greet, err := g.ReadNamed(o, "greet")
	if err != nil {
		t.Fatalf("read greet on instance: %v", err)
	}
	bf, ok := greet.(*BoundFunction)
	if !ok {
		t.Fatalf("greet = %T, want *BoundFunction", greet)
	}
	if bf.Receiver() != Value(o) {
		t.Errorf("greet receiver = %v, want the instance", bf.Receiver())
	}
	res, err := m.CallWith(greet)
	if err != nil {
		t.Fatalf("call greet: %v", err)
	}
	if s, ok := res.Value.(*String); !ok || s.Val != "hi" {
		t.Errorf("greet() = %v, want \"hi\"", res.Value)
	}

	if _, err := g.ReadNamed(o, "create"); !errors.Is(err, InvalidFunctionBinding) {
		t.Errorf("read create on instance: got %v, want InvalidFunctionBinding", err)
	}

	create, err := g.ReadNamed(typ, "create")
	if err != nil {
		t.Fatalf("read create on type: %v", err)
	}
	if create.(*BoundFunction).Receiver() != Value(typ) {
		t.Errorf("create receiver should be the type")
	}
	res, err = m.CallWith(create)
	if err != nil {
		t.Fatalf("call create: %v", err)
	}
	if res.Value != Value(created) {
		t.Errorf("create() = %v, want %v", res.Value, created)
	}

	if _, err := g.ReadNamed(typ, "greet"); !errors.Is(err, InvalidFunctionBinding) {
		t.Errorf("read greet on type: got %v, want InvalidFunctionBinding", err)
	}
}

func TestReadAttribute_Object(t *testing.T) {
	g := NewGlobals(nil)
	typ := NewStruct("Point")
	if err := g.StoreNamed(typ, "dims", NewInteger(2)); err != nil {
		t.Fatal(err)
	}
	o := NewObject(typ)
	alias := o

	v, err := g.ReadNamed(o, "dims")
	if err != nil {
		t.Fatalf("read type constant: %v", err)
	}
	if v.(*Integer).Val != 2 {
		t.Errorf("dims = %v, want 2", v)
	}

	if err := g.WriteNamed(alias, "dims", NewInteger(3)); err != nil {
		t.Fatal(err)
	}
	v, _ = g.ReadNamed(o, "dims")
	if v.(*Integer).Val != 3 {
		t.Errorf("instance field should shadow type member, got %v", v)
	}
	if v, _ := g.LoadNamed(typ, "dims"); v.(*Integer).Val != 2 {
		t.Errorf("write must not reach the type, type member = %v", v)
	}

	if _, err := g.ReadNamed(o, "missing"); !errors.Is(err, NoSuchAttribute) {
		t.Errorf("missing: got %v, want NoSuchAttribute", err)
	}
}

func TestReadAttribute_PrimitiveStorage(t *testing.T) {
	g := NewGlobals(nil)
	register(t, g, g.BuiltinType(BuiltinInt), Method("double", 1, returning(NewInteger(0))))

	a, b := NewInteger(1), NewInteger(1)
	if err := g.WriteNamed(a, "tag", NewString("x")); err != nil {
		t.Fatalf("write on integer: %v", err)
	}
	if _, err := g.ReadNamed(a, "tag"); err != nil {
		t.Errorf("read tag on a: %v", err)
	}
	if _, err := g.ReadNamed(b, "tag"); !errors.Is(err, NoSuchAttribute) {
		t.Errorf("handles must not share storage, got %v", err)
	}
	for _, v := range []Value{a, b} {
		if _, err := g.ReadNamed(v, "double"); err != nil {
			t.Errorf("builtin member on %v: %v", v, err)
		}
	}
	if _, err := g.ReadNamed(NewFloat(1), "double"); !errors.Is(err, NoSuchAttribute) {
		t.Errorf("Int member leaked to Float: %v", err)
	}
}

func TestReadAttribute_EnumValueUsesContainer(t *testing.T) {
	m := New()
	g := m.Globals
	maybe := g.BuiltinType(BuiltinMaybe)
	register(t, g, maybe, Method("is_some", 1, func(frame *Frame, _ *VM) (CallResult, error) {
		v := frame.Stack.Pop().(*EnumValue)
		return Ok(NewBoolean(v.CaseIndex() == MaybeSome)), nil
	}))

	fn, err := g.ReadNamed(g.CreateMaybeSome(NewInteger(1)), "is_some")
	if err != nil {
		t.Fatalf("read is_some: %v", err)
	}
	res, err := m.CallWith(fn)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Value.(*Boolean).Val {
		t.Errorf("Some(1).is_some() = false")
	}
	if err := g.WriteNamed(g.CreateMaybeNone(), "x", NewInteger(1)); !errors.Is(err, ValueHasNoAttributes) {
		t.Errorf("write on enum value: got %v, want ValueHasNoAttributes", err)
	}
}

func TestReadAttribute_MixinDoesNotBind(t *testing.T) {
	g := NewGlobals(nil)
	mx := NewMixin("Show")
	fn := NewBuiltinFunction(Method("show", 1, returning(NewString(""))))
	if err := g.WriteNamed(mx, "show", fn); err != nil {
		t.Fatal(err)
	}
	v, err := g.ReadNamed(mx, "show")
	if err != nil {
		t.Fatal(err)
	}
	if v != Value(fn) {
		t.Errorf("mixin lookup = %v, want the raw function", v)
	}
}

func TestReadAttribute_FunctionInstanceOnly(t *testing.T) {
	g := NewGlobals(nil)
	register(t, g, g.BuiltinType(BuiltinFunction), Method("describe", 1, returning(NewString(""))))
	fn := NewBuiltinFunction(Method("f", 1, returning(NewInteger(0))))

	if _, err := g.ReadNamed(fn, "describe"); !errors.Is(err, NoSuchAttribute) {
		t.Errorf("function lookup must not fall back to a type, got %v", err)
	}
	if err := g.WriteNamed(fn, "doc", NewString("adds")); err != nil {
		t.Fatal(err)
	}
	if v, err := g.ReadNamed(fn, "doc"); err != nil || v.(*String).Val != "adds" {
		t.Errorf("doc = %v, %v", v, err)
	}
}

func TestReadAttribute_Module(t *testing.T) {
	g := NewGlobals(nil)
	mod := NewModule("m")
	mod.StoreNamedValue("answer", NewInteger(42))

	v, err := g.ReadNamed(mod, "answer")
	if err != nil || v.(*Integer).Val != 42 {
		t.Fatalf("answer = %v, %v", v, err)
	}
	if _, err := g.ReadNamed(mod, "question"); !errors.Is(err, NoSuchAttribute) {
		t.Errorf("missing module value: got %v", err)
	}
	if _, err := g.ReadAttribute(mod, symbol.Symbol(1<<30)); !errors.Is(err, NoSuchAttribute) {
		t.Errorf("unresolvable symbol: got %v", err)
	}
	if err := g.WriteNamed(mod, "question", NewString("?")); err != nil {
		t.Fatal(err)
	}
	if _, ok := mod.LoadNamedValue("question"); !ok {
		t.Errorf("write through attribute did not reach the module")
	}
}

func TestAttributes_NoAttributeKinds(t *testing.T) {
	g := NewGlobals(nil)
	code := &CodeObject{Name: "f", Body: &Bytecode{}}
	fn := NewBuiltinFunction(Method("f", 1, returning(NewInteger(0))))
	tests := []struct {
		name string
		v    Value
	}{
		{"opaque", NewOpaque(42)},
		{"code object", code},
		{"type check", IsaAny()},
		{"bound function", bind(NewInteger(1), fn)},
	}
	sym := intern(t, g, "x")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.ReadAttribute(tt.v, sym); err != ValueHasNoAttributes {
				t.Errorf("read: got %v, want ValueHasNoAttributes", err)
			}
			if err := g.WriteAttribute(tt.v, sym, NewInteger(1)); err != ValueHasNoAttributes {
				t.Errorf("write: got %v, want ValueHasNoAttributes", err)
			}
			if got := g.ListAttributes(tt.v); len(got) != 0 {
				t.Errorf("list: got %v, want none", got)
			}
		})
	}
}

func TestWriteAttribute_TypeAppendsMember(t *testing.T) {
	g := NewGlobals(nil)
	typ := NewStruct("T")
	if err := g.WriteNamed(typ, "version", NewInteger(1)); err != nil {
		t.Fatal(err)
	}
	o := NewObject(typ)
	if v, err := g.ReadNamed(o, "version"); err != nil || v.(*Integer).Val != 1 {
		t.Errorf("instance sees new member: %v, %v", v, err)
	}
}

func TestListAttributes_ObjectUnion(t *testing.T) {
	g := NewGlobals(nil)
	typ := NewStruct("T")
	register(t, g, typ, Method("greet", 1, returning(NewString(""))))
	register(t, g, typ, TypeMethod("create", 1, returning(NewString(""))))
	o := NewObject(typ)
	for _, name := range []string{"b", "a", "greet"} {
		if err := g.WriteNamed(o, name, NewInteger(0)); err != nil {
			t.Fatal(err)
		}
	}
	o.Write(symbol.Symbol(1<<30), NewInteger(0))

	got := g.ListAttributes(o)
	want := []string{"a", "b", "create", "greet"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListAttributes = %v, want %v", got, want)
	}
}

func TestListAttributes_Primitive(t *testing.T) {
	g := NewGlobals(nil)
	register(t, g, g.BuiltinType(BuiltinString), Method("len", 1, returning(NewInteger(0))))
	s := NewString("x")
	if err := g.WriteNamed(s, "note", NewBoolean(true)); err != nil {
		t.Fatal(err)
	}
	got := g.ListAttributes(s)
	want := []string{"len", "note"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListAttributes = %v, want %v", got, want)
	}
}

func TestHasAttribute(t *testing.T) {
	g := NewGlobals(nil)
	typ := NewStruct("T")
	register(t, g, typ, Method("greet", 1, returning(NewString(""))))
	register(t, g, typ, TypeMethod("create", 1, returning(NewString(""))))
	o := NewObject(typ)

	tests := []struct {
		v    Value
		name string
		want bool
	}{
		{o, "greet", true},
		{o, "create", false},
		{typ, "create", true},
		{typ, "greet", false},
		{NewOpaque(nil), "greet", false},
		{o, "nothing", false},
	}
	for _, tt := range tests {
		got, err := g.HasAttribute(tt.v, tt.name)
		if err != nil {
			t.Fatalf("HasAttribute(%v, %q): %v", tt.v, tt.name, err)
		}
		if got != tt.want {
			t.Errorf("HasAttribute(%v, %q) = %v, want %v", tt.v, tt.name, got, tt.want)
		}
	}
}

func TestAttributeError_Messages(t *testing.T) {
	for _, e := range []AttributeError{NoSuchAttribute, InvalidFunctionBinding, ValueHasNoAttributes} {
		if e.Error() == "" {
			t.Errorf("empty message for %d", uint8(e))
		}
	}
}

func TestReadAttribute_StoredFunctionsAreUnbound(t *testing.T) {
	m := New()
	g := m.Globals
	typ := NewStruct("Handler")
	callback := NewBuiltinFunction(Method("callback", 1, func(frame *Frame, _ *VM) (CallResult, error) {
		return Ok(frame.Stack.Pop()), nil
	}))
	factory := NewBuiltinFunction(TypeMethod("factory", 1, returning(NewInteger(0))))
	holders := []Value{NewObject(typ), NewInteger(1), NewList(), NewBuiltinFunction(Method("f", 0, nil))}

	for _, h := range holders {
		for name, fn := range map[string]*Function{"on_event": callback, "make": factory} {
			if err := g.WriteNamed(h, name, fn); err != nil {
				t.Fatalf("write %s on %v: %v", name, h, err)
			}
			got, err := g.ReadNamed(h, name)
			if err != nil {
				t.Fatalf("read %s on %v: %v", name, h, err)
			}
			if got != Value(fn) {
				t.Errorf("%v.%s = %v (%T), want the stored function", h, name, got, got)
			}
		}
		got, _ := g.ReadNamed(h, "on_event")
		res, err := m.CallWith(got, NewInteger(7))
		if err != nil {
			t.Fatalf("call stored callback on %v: %v", h, err)
		}
		if n, ok := res.Value.(*Integer); !ok || n.Val != 7 {
			t.Errorf("callback(7) via %v = %v, want 7", h, res.Value)
		}
	}
}
