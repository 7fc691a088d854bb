package path

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/funvibe/haxby/internal/vm"
)

type pathFn func(frame *vm.Frame, m *vm.VM, this *vm.Object, buf *buffer) (vm.Value, error)

// method adapts fn into an instance method with argc arguments including
// the receiver.
func method(name string, argc int, fn pathFn) *vm.BuiltinFunc {
	return vm.Method(name, argc, func(frame *vm.Frame, m *vm.VM) (vm.CallResult, error) {
		this, buf, err := receiver(frame, m.Globals)
		if err != nil {
			return vm.CallResult{}, err
		}
		v, err := fn(frame, m, this, buf)
		if err != nil {
			return vm.CallResult{}, err
		}
		return vm.Ok(v), nil
	})
}

func predicate(name string, fn func(p string) bool) *vm.BuiltinFunc {
	return method(name, 1, func(_ *vm.Frame, _ *vm.VM, _ *vm.Object, buf *buffer) (vm.Value, error) {
		return vm.NewBoolean(fn(buf.p)), nil
	})
}

func fileTime(name string, fn func(p string) (time.Time, error)) *vm.BuiltinFunc {
	return method(name, 1, func(_ *vm.Frame, m *vm.VM, this *vm.Object, buf *buffer) (vm.Value, error) {
		t, err := fn(buf.p)
		if err != nil {
			return resultErr(m.Globals, this.Struct(), err.Error())
		}
		return m.Globals.CreateResultOk(vm.NewInteger(t.UnixMilli())), nil
	})
}

func otherPath(frame *vm.Frame, g *vm.Globals) (*buffer, error) {
	other, err := vm.ExtractArg(frame, vm.AsObject)
	if err != nil {
		return nil, err
	}
	buf, ok := bufferOf(g, other)
	if !ok {
		return nil, vm.ErrUnexpectedType
	}
	return buf, nil
}

func methods() []vm.BuiltinFunctionImpl {
	return []vm.BuiltinFunctionImpl{
		vm.TypeMethod("new", 2, func(frame *vm.Frame, m *vm.VM) (vm.CallResult, error) {
			s, err := vm.ExtractArg(frame, vm.AsStruct)
			if err != nil {
				return vm.CallResult{}, err
			}
			p, err := vm.ExtractArg(frame, vm.AsString)
			if err != nil {
				return vm.CallResult{}, err
			}
			obj, err := newPath(m.Globals, s, p.Val)
			if err != nil {
				return vm.CallResult{}, err
			}
			return vm.Ok(obj), nil
		}),
		vm.TypeMethod("glob", 2, func(frame *vm.Frame, m *vm.VM) (vm.CallResult, error) {
			s, err := vm.ExtractArg(frame, vm.AsStruct)
			if err != nil {
				return vm.CallResult{}, err
			}
			pattern, err := vm.ExtractArg(frame, vm.AsString)
			if err != nil {
				return vm.CallResult{}, err
			}
			matches, err := filepath.Glob(pattern.Val)
			if err != nil {
				res, rerr := resultErr(m.Globals, s, err.Error())
				if rerr != nil {
					return vm.CallResult{}, rerr
				}
				return vm.Ok(res), nil
			}
			values := make([]vm.Value, 0, len(matches))
			for _, p := range matches {
				obj, err := newPath(m.Globals, s, p)
				if err != nil {
					return vm.CallResult{}, err
				}
				values = append(values, obj)
			}
			it, err := iterator(m.Globals, s, values)
			if err != nil {
				return vm.CallResult{}, err
			}
			return vm.Ok(m.Globals.CreateResultOk(it)), nil
		}),
		vm.TypeMethod("cwd", 1, func(frame *vm.Frame, m *vm.VM) (vm.CallResult, error) {
			s, err := vm.ExtractArg(frame, vm.AsStruct)
			if err != nil {
				return vm.CallResult{}, err
			}
			wd, err := os.Getwd()
			if err != nil {
				return vm.CallResult{}, errors.Join(vm.ErrUnexpectedVmState, err)
			}
			obj, err := newPath(m.Globals, s, wd)
			if err != nil {
				return vm.CallResult{}, err
			}
			return vm.Ok(obj), nil
		}),
		method("prettyprint", 1, func(_ *vm.Frame, _ *vm.VM, _ *vm.Object, buf *buffer) (vm.Value, error) {
			return vm.NewString(buf.p), nil
		}),
		method("append", 2, func(frame *vm.Frame, m *vm.VM, _ *vm.Object, buf *buffer) (vm.Value, error) {
			seg, err := vm.ExtractArg(frame, vm.AsString)
			if err != nil {
				return nil, err
			}
			buf.push(seg.Val)
			return m.Globals.CreateUnitObject(), nil
		}),
		method("pop", 1, func(_ *vm.Frame, _ *vm.VM, this *vm.Object, buf *buffer) (vm.Value, error) {
			buf.pop()
			return this, nil
		}),
		predicate("is_absolute", filepath.IsAbs),
		predicate("exists", func(p string) bool {
			_, err := os.Stat(p)
			return err == nil
		}),
		predicate("is_directory", func(p string) bool {
			fi, err := os.Stat(p)
			return err == nil && fi.IsDir()
		}),
		predicate("is_symlink", func(p string) bool {
			fi, err := os.Lstat(p)
			return err == nil && fi.Mode()&os.ModeSymlink != 0
		}),
		predicate("is_file", func(p string) bool {
			fi, err := os.Stat(p)
			return err == nil && fi.Mode().IsRegular()
		}),
		predicate("mkdir", func(p string) bool { return os.Mkdir(p, 0o755) == nil }),
		predicate("mkdirs", func(p string) bool { return os.MkdirAll(p, 0o755) == nil }),
		predicate("rmdir", func(p string) bool {
			fi, err := os.Lstat(p)
			return err == nil && fi.IsDir() && os.Remove(p) == nil
		}),
		predicate("erase", func(p string) bool {
			fi, err := os.Lstat(p)
			return err == nil && !fi.IsDir() && os.Remove(p) == nil
		}),
		method("new_canonical", 1, func(_ *vm.Frame, m *vm.VM, this *vm.Object, buf *buffer) (vm.Value, error) {
			canonical, err := canonicalize(buf.p)
			if err != nil {
				return resultErr(m.Globals, this.Struct(), err.Error())
			}
			obj, err := newPath(m.Globals, this.Struct(), canonical)
			if err != nil {
				return nil, err
			}
			return m.Globals.CreateResultOk(obj), nil
		}),
		method("size", 1, func(_ *vm.Frame, m *vm.VM, this *vm.Object, buf *buffer) (vm.Value, error) {
			fi, err := os.Stat(buf.p)
			if err != nil {
				return resultErr(m.Globals, this.Struct(), err.Error())
			}
			return m.Globals.CreateResultOk(vm.NewInteger(fi.Size())), nil
		}),
		fileTime("when_created", createdTime),
		fileTime("when_accessed", accessedTime),
		fileTime("when_modified", func(p string) (time.Time, error) {
			fi, err := os.Stat(p)
			if err != nil {
				return time.Time{}, err
			}
			return fi.ModTime(), nil
		}),
		method("get_filename", 1, func(_ *vm.Frame, m *vm.VM, _ *vm.Object, buf *buffer) (vm.Value, error) {
			if name, ok := fileName(buf.p); ok {
				return m.Globals.CreateMaybeSome(vm.NewString(name)), nil
			}
			return m.Globals.CreateMaybeNone(), nil
		}),
		method("get_extension", 1, func(_ *vm.Frame, m *vm.VM, _ *vm.Object, buf *buffer) (vm.Value, error) {
			if ext, ok := extension(buf.p); ok {
				return m.Globals.CreateMaybeSome(vm.NewString(ext)), nil
			}
			return m.Globals.CreateMaybeNone(), nil
		}),
		method("entries", 1, func(_ *vm.Frame, m *vm.VM, this *vm.Object, buf *buffer) (vm.Value, error) {
			// an unreadable directory yields an empty iterator
			dirents, _ := os.ReadDir(buf.p)
			values := make([]vm.Value, 0, len(dirents))
			for _, d := range dirents {
				obj, err := newPath(m.Globals, this.Struct(), filepath.Join(buf.p, d.Name()))
				if err != nil {
					return nil, err
				}
				values = append(values, obj)
			}
			return iterator(m.Globals, this.Struct(), values)
		}),
		method("copy", 2, func(frame *vm.Frame, m *vm.VM, _ *vm.Object, buf *buffer) (vm.Value, error) {
			dst, err := otherPath(frame, m.Globals)
			if err != nil {
				return nil, err
			}
			return vm.NewBoolean(copyFile(buf.p, dst.p) == nil), nil
		}),
		method("common_ancestor", 2, func(frame *vm.Frame, m *vm.VM, this *vm.Object, buf *buffer) (vm.Value, error) {
			other, err := otherPath(frame, m.Globals)
			if err != nil {
				return nil, err
			}
			anc, ok := commonAncestor(buf.p, other.p)
			if !ok {
				return m.Globals.CreateMaybeNone(), nil
			}
			obj, err := newPath(m.Globals, this.Struct(), anc)
			if err != nil {
				return nil, err
			}
			return m.Globals.CreateMaybeSome(obj), nil
		}),
		vm.Method("_op_impl_equals", 2, func(frame *vm.Frame, m *vm.VM) (vm.CallResult, error) {
			_, buf, err := receiver(frame, m.Globals)
			if err != nil {
				return vm.CallResult{}, err
			}
			other, ok := frame.Stack.Pop().(*vm.Object)
			if !ok {
				return vm.Raise(m.Globals.NewUnimplemented()), nil
			}
			otherBuf, ok := bufferOf(m.Globals, other)
			if !ok {
				return vm.Raise(m.Globals.NewUnimplemented()), nil
			}
			return vm.Ok(vm.NewBoolean(filepath.Clean(buf.p) == filepath.Clean(otherBuf.p))), nil
		}),
	}
}

// push appends seg; an absolute seg replaces the whole path.
func (b *buffer) push(seg string) {
	if filepath.IsAbs(seg) || b.p == "" {
		b.p = seg
		return
	}
	b.p = filepath.Join(b.p, seg)
}

// pop drops the last component. The root and the empty path are left alone.
func (b *buffer) pop() {
	clean := filepath.Clean(b.p)
	parent := filepath.Dir(clean)
	switch {
	case b.p == "" || parent == clean:
	case parent == "." && !strings.HasPrefix(clean, "."):
		b.p = ""
	default:
		b.p = parent
	}
}

func canonicalize(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

func fileName(p string) (string, bool) {
	if p == "" {
		return "", false
	}
	base := filepath.Base(p)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", false
	}
	return base, true
}

func extension(p string) (string, bool) {
	name, ok := fileName(p)
	if !ok {
		return "", false
	}
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 {
		return "", false
	}
	return name[idx+1:], true
}

// hasPrefix reports whether prefix is a component-wise prefix of p.
func hasPrefix(p, prefix string) bool {
	if prefix == "." {
		return !filepath.IsAbs(p)
	}
	rel, err := filepath.Rel(prefix, p)
	if err != nil || filepath.IsAbs(prefix) != filepath.IsAbs(p) {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// commonAncestor returns the longest ancestor of a that is also an
// ancestor of b.
func commonAncestor(a, b string) (string, bool) {
	anc := filepath.Clean(a)
	b = filepath.Clean(b)
	for {
		if hasPrefix(b, anc) {
			return anc, true
		}
		parent := filepath.Dir(anc)
		if parent == anc {
			return "", false
		}
		anc = parent
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	fi, err := in.Stat()
	if err != nil {
		return err
	}
	if !fi.Mode().IsRegular() {
		return errors.New("not a regular file")
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
