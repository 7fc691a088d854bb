package haxby_test

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/funvibe/haxby/internal/config"
	"github.com/funvibe/haxby/internal/natives"
	"github.com/funvibe/haxby/internal/vm"
	"github.com/funvibe/haxby/pkg/haxby"
)

func newRuntime(t *testing.T) *haxby.Runtime {
	t.Helper()
	rt, err := haxby.New(nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return rt
}

func TestLookup(t *testing.T) {
	rt := newRuntime(t)

	tests := []struct {
		name string
		want vm.Kind
	}{
		{"Int", vm.KindType},
		{"typeof", vm.KindFunction},
		{"path", vm.KindModule},
		{"path.Path", vm.KindType},
		{"path.Path.new", vm.KindBoundFunction},
		{"regex.Regex.Error", vm.KindType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := rt.Lookup(tt.name)
			if err != nil {
				t.Fatalf("Lookup(%q) failed: %v", tt.name, err)
			}
			if v.Kind() != tt.want {
				t.Errorf("Lookup(%q).Kind() = %s, want %s", tt.name, v.Kind(), tt.want)
			}
		})
	}

	if _, err := rt.Lookup("nosuch"); !errors.Is(err, haxby.ErrNotFound) {
		t.Errorf("Lookup(nosuch) error = %v, want ErrNotFound", err)
	}
	if _, err := rt.Lookup("Int.nosuch"); !errors.Is(err, vm.NoSuchAttribute) {
		t.Errorf("Lookup(Int.nosuch) error = %v, want NoSuchAttribute", err)
	}
}

func TestAttributesAndHasAttribute(t *testing.T) {
	rt := newRuntime(t)

	attrs, err := rt.Attributes("Int")
	if err != nil {
		t.Fatalf("Attributes failed: %v", err)
	}
	for _, want := range []string{"_op_impl_add", "abs"} {
		if !slices.Contains(attrs, want) {
			t.Errorf("Attributes(Int) = %v, missing %q", attrs, want)
		}
	}

	ok, err := rt.HasAttribute("path.Path", "glob")
	if err != nil || !ok {
		t.Errorf("HasAttribute(path.Path, glob) = %v, %v; want true", ok, err)
	}
	ok, err = rt.HasAttribute("Int", "glob")
	if err != nil || ok {
		t.Errorf("HasAttribute(Int, glob) = %v, %v; want false", ok, err)
	}
}

func TestConfiguredExtensions(t *testing.T) {
	cfg := config.Default()
	cfg.Extensions = []string{config.RegexModuleName}
	rt, err := haxby.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := rt.Lookup("path"); !errors.Is(err, haxby.ErrNotFound) {
		t.Errorf("path should not be loaded, got %v", err)
	}
	if got := rt.VM().Modules(); !reflect.DeepEqual(got, []string{"regex"}) {
		t.Errorf("Modules() = %v, want [regex]", got)
	}

	cfg.Extensions = []string{"sqlite"}
	if _, err := haxby.New(cfg, zerolog.Nop()); !errors.Is(err, natives.ErrUnknownExtension) {
		t.Errorf("New with unknown extension error = %v, want ErrUnknownExtension", err)
	}
}

func TestBind(t *testing.T) {
	rt := newRuntime(t)

	if err := rt.Bind("double", func(x int) int { return x * 2 }); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	got, err := rt.Call("double", 21)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if got != int64(42) {
		t.Errorf("double(21) = %v (%T), want 42", got, got)
	}

	if err := rt.Bind("fail", func(s string) (string, error) {
		return "", fmt.Errorf("bad input %q", s)
	}); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	_, err = rt.Call("fail", "x")
	var exc *haxby.ExceptionError
	if !errors.As(err, &exc) {
		t.Fatalf("Call(fail) error = %v, want ExceptionError", err)
	}
	if !strings.Contains(exc.Text, "bad input") {
		t.Errorf("exception text = %q", exc.Text)
	}

	if _, err := rt.Call("double"); !errors.Is(err, vm.ErrMismatchedArgumentCount) {
		t.Errorf("double() error = %v, want ErrMismatchedArgumentCount", err)
	}
	if _, err := rt.Call("double", "x"); !errors.Is(err, vm.ErrUnexpectedType) {
		t.Errorf("double(\"x\") error = %v, want ErrUnexpectedType", err)
	}
	if err := rt.Bind("notfn", 3); err == nil {
		t.Error("Bind of non-function should fail")
	}
	if err := rt.Bind("variadic", func(xs ...int) int { return len(xs) }); err == nil {
		t.Error("Bind of variadic function should fail")
	}
}

func TestCallMethod(t *testing.T) {
	rt := newRuntime(t)

	newRegex, err := rt.Lookup("regex.Regex.new")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	re, err := rt.Invoke(newRegex, "a+")
	if err != nil {
		t.Fatalf("Regex.new failed: %v", err)
	}
	got, err := rt.CallMethod(re, "any_match", "caaat")
	if err != nil {
		t.Fatalf("any_match failed: %v", err)
	}
	if b, ok := got.(*vm.Boolean); !ok || !b.Val {
		t.Errorf("any_match = %s, want true", got)
	}

	_, err = rt.Invoke(newRegex, "(")
	var exc *haxby.ExceptionError
	if !errors.As(err, &exc) {
		t.Errorf("Regex.new(\"(\") error = %v, want ExceptionError", err)
	}

	if _, err := rt.CallMethod(re, "nosuch"); !errors.Is(err, vm.NoSuchAttribute) {
		t.Errorf("CallMethod(nosuch) error = %v, want NoSuchAttribute", err)
	}
}

func TestMarshaller(t *testing.T) {
	rt := newRuntime(t)
	m := rt.Marshaller()

	type point struct {
		X, Y   int
		hidden int
	}
	handle := &point{}

	tests := []struct {
		name   string
		in     any
		target reflect.Type
		want   any
	}{
		{"int", 7, nil, int64(7)},
		{"int to int", 7, reflect.TypeOf(0), 7},
		{"uint8", uint8(3), nil, int64(3)},
		{"int to float", 2, reflect.TypeOf(0.0), 2.0},
		{"float", 1.5, nil, 1.5},
		{"bool", true, nil, true},
		{"string", "hi", nil, "hi"},
		{"nil", nil, nil, nil},
		{"slice", []int{1, 2}, reflect.TypeOf([]int{}), []int{1, 2}},
		{"untyped slice", []string{"a"}, nil, []any{"a"}},
		{"map", map[string]int{"a": 1}, nil, map[string]any{"a": int64(1)}},
		{"struct", point{X: 1, Y: 2, hidden: 3}, nil, map[string]any{"X": int64(1), "Y": int64(2)}},
		{"pointer", handle, nil, handle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := m.ToValue(tt.in)
			if err != nil {
				t.Fatalf("ToValue(%v) failed: %v", tt.in, err)
			}
			got, err := m.FromValue(v, tt.target)
			if err != nil {
				t.Fatalf("FromValue(%s) failed: %v", v, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("round trip = %#v, want %#v", got, tt.want)
			}
		})
	}

	if _, err := m.FromValue(vm.NewString("x"), reflect.TypeOf(0)); !errors.Is(err, vm.ErrUnexpectedType) {
		t.Errorf("String to int error = %v, want ErrUnexpectedType", err)
	}
	v := vm.NewInteger(1)
	if got, _ := m.FromValue(v, reflect.TypeOf((*vm.Value)(nil)).Elem()); got != v {
		t.Errorf("FromValue to vm.Value = %v, want the value itself", got)
	}
}

func TestMarshaller_RejectsLossyNumbers(t *testing.T) {
	m := newRuntime(t).Marshaller()

	if _, err := m.ToValue(uint64(math.MaxInt64) + 1); !errors.Is(err, vm.ErrUnexpectedType) {
		t.Errorf("ToValue(MaxInt64+1) error = %v, want ErrUnexpectedType", err)
	}
	if v, err := m.ToValue(uint64(math.MaxInt64)); err != nil || v.(*vm.Integer).Val != math.MaxInt64 {
		t.Errorf("ToValue(MaxInt64) = %v, %v", v, err)
	}

	tests := []struct {
		name   string
		in     vm.Value
		target reflect.Type
		want   any
	}{
		{"int8 in range", vm.NewInteger(-128), reflect.TypeOf(int8(0)), int8(-128)},
		{"uint8 in range", vm.NewInteger(255), reflect.TypeOf(uint8(0)), uint8(255)},
		{"integral float to int", vm.NewFloat(4), reflect.TypeOf(0), 4},
		{"float32 in range", vm.NewFloat(0.5), reflect.TypeOf(float32(0)), float32(0.5)},
		{"int8 overflow", vm.NewInteger(300), reflect.TypeOf(int8(0)), nil},
		{"negative to uint", vm.NewInteger(-1), reflect.TypeOf(uint(0)), nil},
		{"uint16 overflow", vm.NewInteger(1 << 16), reflect.TypeOf(uint16(0)), nil},
		{"fractional float to int", vm.NewFloat(1.5), reflect.TypeOf(0), nil},
		{"float to int overflow", vm.NewFloat(1e19), reflect.TypeOf(int64(0)), nil},
		{"float32 overflow", vm.NewFloat(1e300), reflect.TypeOf(float32(0)), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.FromValue(tt.in, tt.target)
			if tt.want == nil {
				if !errors.Is(err, vm.ErrUnexpectedType) {
					t.Fatalf("FromValue(%s, %s) = %#v, %v, want ErrUnexpectedType", tt.in, tt.target, got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromValue(%s, %s) failed: %v", tt.in, tt.target, err)
			}
			if got != tt.want {
				t.Errorf("FromValue(%s, %s) = %#v, want %#v", tt.in, tt.target, got, tt.want)
			}
		})
	}
}

func TestMarshaller_NilOpaquePayload(t *testing.T) {
	m := newRuntime(t).Marshaller()
	target := reflect.TypeOf((*strings.Builder)(nil))
	got, err := m.FromValue(vm.NewOpaque(nil), target)
	if err != nil {
		t.Fatalf("FromValue(nil opaque) failed: %v", err)
	}
	if b, ok := got.(*strings.Builder); !ok || b != nil {
		t.Errorf("FromValue(nil opaque) = %#v, want a nil *strings.Builder", got)
	}
	if got, err := m.FromValue(vm.NewOpaque(nil), reflect.TypeOf(0)); err != nil || got != 0 {
		t.Errorf("FromValue(nil opaque, int) = %#v, %v, want 0", got, err)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := haxby.NewLogger(config.LogConfig{Level: "debug", Format: "json"}, &buf, false)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	log.Debug().Str("k", "v").Msg("hello")
	if !strings.Contains(buf.String(), `"message":"hello"`) {
		t.Errorf("json log output = %q", buf.String())
	}

	buf.Reset()
	log, err = haxby.NewLogger(config.LogConfig{Level: "warn", Format: "console"}, &buf, false)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	log.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Errorf("info written at warn level: %q", buf.String())
	}

	if _, err := haxby.NewLogger(config.LogConfig{Level: "loud"}, &buf, false); err == nil {
		t.Error("NewLogger with an unknown level should fail")
	}
}
