// Package regex provides the Regex native type backed by the RE2 engine.
package regex

import (
	"fmt"
	"regexp"

	"github.com/funvibe/haxby/internal/config"
	"github.com/funvibe/haxby/internal/vm"
)

// TypeName is the name of the struct exported by the module.
const TypeName = "Regex"

// Extension loads the regex module.
type Extension struct{}

func (Extension) Name() string { return config.RegexModuleName }

// Load builds the Regex struct with its nested Error and Match types.
func (Extension) Load(m *vm.VM) (*vm.Module, error) {
	g := m.Globals
	regexType := vm.NewStruct(TypeName)
	for _, nested := range []string{config.ErrorTypeName, config.MatchTypeName} {
		if err := g.StoreNamed(regexType, nested, vm.NewStruct(nested)); err != nil {
			return nil, err
		}
	}
	for _, fn := range []vm.BuiltinFunctionImpl{
		vm.TypeMethod("new", 2, newRegex),
		vm.Method("any_match", 2, anyMatch),
		vm.Method("matches", 2, matches),
		vm.Method("replace", 3, replace),
	} {
		if err := g.RegisterMethod(regexType, fn); err != nil {
			return nil, err
		}
	}
	mod := vm.NewModule(config.RegexModuleName)
	mod.StoreNamedValue(TypeName, regexType)
	return mod, nil
}

func nested(g *vm.Globals, s *vm.Struct, name string) (*vm.Struct, error) {
	t, ok := g.NestedStruct(s, name)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no %s type", vm.ErrUnexpectedVmState, s.Name(), name)
	}
	return t, nil
}

func newRegex(frame *vm.Frame, m *vm.VM) (vm.CallResult, error) {
	g := m.Globals
	s, err := vm.ExtractArg(frame, vm.AsStruct)
	if err != nil {
		return vm.CallResult{}, err
	}
	pattern, err := vm.ExtractArg(frame, vm.AsString)
	if err != nil {
		return vm.CallResult{}, err
	}
	re, err := regexp.Compile(pattern.Val)
	if err != nil {
		errType, nerr := nested(g, s, config.ErrorTypeName)
		if nerr != nil {
			return vm.CallResult{}, nerr
		}
		e := vm.NewObject(errType)
		if werr := g.WriteNamed(e, "msg", vm.NewString(err.Error())); werr != nil {
			return vm.CallResult{}, werr
		}
		m.Logger().Debug().Str("pattern", pattern.Val).Err(err).Msg("invalid regex")
		return vm.Raise(e), nil
	}
	obj := vm.NewObject(s)
	if err := g.WriteNamed(obj, config.PatternPayloadAttr, vm.NewOpaque(re)); err != nil {
		return vm.CallResult{}, err
	}
	if err := g.WriteNamed(obj, "pattern", pattern); err != nil {
		return vm.CallResult{}, err
	}
	return vm.Ok(obj), nil
}

// compiled pops the receiver and its haystack argument.
func compiled(frame *vm.Frame, g *vm.Globals) (*vm.Object, *regexp.Regexp, string, error) {
	this, err := vm.ExtractArg(frame, vm.AsObject)
	if err != nil {
		return nil, nil, "", err
	}
	haystack, err := vm.ExtractArg(frame, vm.AsString)
	if err != nil {
		return nil, nil, "", err
	}
	payload, err := g.ReadNamed(this, config.PatternPayloadAttr)
	if err != nil {
		return nil, nil, "", fmt.Errorf("%w: %s has no compiled pattern", vm.ErrUnexpectedVmState, this)
	}
	re, ok := vm.OpaqueAs[*regexp.Regexp](payload)
	if !ok {
		return nil, nil, "", fmt.Errorf("%w: %s has no compiled pattern", vm.ErrUnexpectedVmState, this)
	}
	return this, re, haystack.Val, nil
}

func anyMatch(frame *vm.Frame, m *vm.VM) (vm.CallResult, error) {
	_, re, haystack, err := compiled(frame, m.Globals)
	if err != nil {
		return vm.CallResult{}, err
	}
	return vm.Ok(vm.NewBoolean(re.MatchString(haystack))), nil
}

// matches returns a List of Match objects with byte offsets.
func matches(frame *vm.Frame, m *vm.VM) (vm.CallResult, error) {
	g := m.Globals
	this, re, haystack, err := compiled(frame, g)
	if err != nil {
		return vm.CallResult{}, err
	}
	matchType, err := nested(g, this.Struct(), config.MatchTypeName)
	if err != nil {
		return vm.CallResult{}, err
	}
	out := vm.NewList()
	for _, loc := range re.FindAllStringIndex(haystack, -1) {
		mo := vm.NewObject(matchType)
		fields := []struct {
			name string
			v    vm.Value
		}{
			{"start", vm.NewInteger(int64(loc[0]))},
			{"len", vm.NewInteger(int64(loc[1] - loc[0]))},
			{"value", vm.NewString(haystack[loc[0]:loc[1]])},
		}
		for _, f := range fields {
			if err := g.WriteNamed(mo, f.name, f.v); err != nil {
				return vm.CallResult{}, err
			}
		}
		out.Append(mo)
	}
	return vm.Ok(out), nil
}

// replace substitutes every match; $1 and ${name} expand to groups.
func replace(frame *vm.Frame, m *vm.VM) (vm.CallResult, error) {
	_, re, haystack, err := compiled(frame, m.Globals)
	if err != nil {
		return vm.CallResult{}, err
	}
	with, err := vm.ExtractArg(frame, vm.AsString)
	if err != nil {
		return vm.CallResult{}, err
	}
	return vm.Ok(vm.NewString(re.ReplaceAllString(haystack, with.Val))), nil
}
