// Package natives holds the host-implemented extension modules and the
// registry used to load them into a VM.
package natives

import (
	"errors"
	"fmt"
	"sort"

	"github.com/funvibe/haxby/internal/natives/path"
	"github.com/funvibe/haxby/internal/natives/regex"
	"github.com/funvibe/haxby/internal/vm"
)

// ErrUnknownExtension is returned for a name not in the registry.
var ErrUnknownExtension = errors.New("unknown extension")

// Extension builds a module of native types for one VM.
type Extension interface {
	Name() string
	Load(m *vm.VM) (*vm.Module, error)
}

// Registry maps extension names to implementations.
type Registry struct {
	exts map[string]Extension
}

func NewRegistry(exts ...Extension) *Registry {
	r := &Registry{exts: make(map[string]Extension)}
	for _, e := range exts {
		r.Register(e)
	}
	return r
}

// Default returns a registry with every bundled extension.
func Default() *Registry {
	return NewRegistry(path.Extension{}, regex.Extension{})
}

// Register adds or replaces an extension.
func (r *Registry) Register(e Extension) { r.exts[e.Name()] = e }

func (r *Registry) Lookup(name string) (Extension, bool) {
	e, ok := r.exts[name]
	return e, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.exts))
	for name := range r.exts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadAll loads the named extensions into m in order and records each
// module on the VM.
func (r *Registry) LoadAll(m *vm.VM, names []string) error {
	for _, name := range names {
		e, ok := r.exts[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownExtension, name)
		}
		mod, err := e.Load(m)
		if err != nil {
			return fmt.Errorf("loading extension %s: %w", name, err)
		}
		m.AddModule(mod)
		m.Logger().Debug().Str("extension", name).Strs("names", mod.NamedValues()).Msg("extension loaded")
	}
	return nil
}
