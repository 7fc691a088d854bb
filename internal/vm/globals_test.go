package vm

import (
	"testing"

	"github.com/funvibe/haxby/internal/symbol"
)

func TestGlobals_Registry(t *testing.T) {
	g := NewGlobals(nil)
	for id := BuiltinTypeID(0); id < numBuiltinTypes; id++ {
		typ := g.BuiltinType(id)
		if typ == nil {
			t.Fatalf("no descriptor for %s", id)
		}
		if typ.Name() != id.String() {
			t.Errorf("descriptor %s named %q", id, typ.Name())
		}
		if v, ok := g.Builtins().LoadNamedValue(id.String()); !ok || v != Value(typ) {
			t.Errorf("builtins module missing %s", id)
		}
	}
	if g.BuiltinType(numBuiltinTypes) != nil {
		t.Errorf("out-of-range id should yield nil")
	}
	if _, ok := g.BuiltinType(BuiltinResult).(*Enum); !ok {
		t.Errorf("Result should be an enum")
	}
	if _, ok := g.BuiltinType(BuiltinUnimplemented).(*Struct); !ok {
		t.Errorf("Unimplemented should be a struct")
	}
}

func TestGlobals_IsUnimplemented(t *testing.T) {
	g := NewGlobals(nil)
	other := NewGlobals(nil)
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"sentinel", g.NewUnimplemented(), true},
		{"other vm", other.NewUnimplemented(), false},
		{"same name", NewObject(NewStruct("Unimplemented")), false},
		{"the type itself", g.BuiltinType(BuiltinUnimplemented), false},
		{"unit", g.CreateUnitObject(), false},
	}
	for _, tt := range tests {
		if got := g.IsUnimplemented(tt.v); got != tt.want {
			t.Errorf("%s: IsUnimplemented = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestGlobals_Wrappers(t *testing.T) {
	g := NewGlobals(nil)
	ok := g.CreateResultOk(NewInteger(1))
	if ok.CaseName() != "Ok" {
		t.Errorf("CreateResultOk case = %s", ok.CaseName())
	}
	if p, has := g.CreateResultErr(NewString("e")).Payload(); !has || p.(*String).Val != "e" {
		t.Errorf("CreateResultErr payload = %v", p)
	}
	if _, has := g.CreateMaybeNone().Payload(); has {
		t.Errorf("None should carry no payload")
	}
	if g.CreateMaybeSome(NewInteger(1)).Enum() != g.BuiltinType(BuiltinMaybe) {
		t.Errorf("Some not of type Maybe")
	}
}

func TestGlobals_SharedInterner(t *testing.T) {
	in := symbol.New()
	g := NewGlobals(in)
	sym, err := g.InternSymbol("field")
	if err != nil {
		t.Fatal(err)
	}
	if again, _ := in.Intern("field"); again != sym {
		t.Errorf("globals and interner disagree: %d vs %d", sym, again)
	}
	if name, ok := g.ResolveSymbol(symbol.OpAdd); !ok || name != "_op_impl_add" {
		t.Errorf("ResolveSymbol(OpAdd) = %q, %v", name, ok)
	}
}

func TestCreateIterator(t *testing.T) {
	m := New()
	g := m.Globals
	iterType := NewStruct("Iterator")
	it, err := g.CreateIterator(iterType, SliceIterator([]Value{NewInteger(1), NewInteger(2)}))
	if err != nil {
		t.Fatal(err)
	}
	next, err := g.ReadNamed(it, "next")
	if err != nil {
		t.Fatalf("read next: %v", err)
	}
	var got []int64
	for i := 0; i < 3; i++ {
		res, err := m.CallWith(next)
		if err != nil {
			t.Fatal(err)
		}
		ev := res.Value.(*EnumValue)
		if ev.CaseIndex() == MaybeNone {
			break
		}
		p, _ := ev.Payload()
		got = append(got, p.(*Integer).Val)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("iterated %v, want [1 2]", got)
	}

	if _, err := g.CreateIterator(iterType, SliceIterator(nil)); err != nil {
		t.Errorf("second iterator over the same struct: %v", err)
	}
	self, _ := g.ReadNamed(it, "iterator")
	if res, err := m.CallWith(self); err != nil || res.Value != Value(it) {
		t.Errorf("iterator() = %v, %v", res.Value, err)
	}
}
