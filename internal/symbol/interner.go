// Package symbol interns attribute and method names into small dense handles.
package symbol

import (
	"errors"
	"math"
)

// Symbol is an interned name. Two symbols are equal iff they were produced
// from the same string by the same Interner.
type Symbol uint32

// ErrTooManySymbols is returned when the handle space is exhausted.
var ErrTooManySymbols = errors.New("too many symbols")

// Well-known protocol names. New interns them in this exact order, so the
// constants below are valid handles in every Interner built by New.
var wellKnown = [...]string{
	"_op_impl_call",
	"_op_impl_equals",
	"_op_impl_add",
	"_op_impl_radd",
	"_op_impl_sub",
	"_op_impl_rsub",
	"_op_impl_mul",
	"_op_impl_rmul",
	"_op_impl_div",
	"_op_impl_rdiv",
	"_op_impl_rem",
	"_op_impl_rrem",
	"_op_impl_lshift",
	"_op_impl_rlshift",
	"_op_impl_rshift",
	"_op_impl_rrshift",
	"_op_impl_bwand",
	"_op_impl_rbwand",
	"_op_impl_bwor",
	"_op_impl_rbwor",
	"_op_impl_xor",
	"_op_impl_rxor",
	"_op_impl_lt",
	"_op_impl_gt",
	"_op_impl_lteq",
	"_op_impl_gteq",
	"_op_impl_neg",
	"_op_impl_read_index",
	"_op_impl_write_index",
	"prettyprint",
}

const (
	OpCall Symbol = iota
	OpEquals
	OpAdd
	OpRAdd
	OpSub
	OpRSub
	OpMul
	OpRMul
	OpDiv
	OpRDiv
	OpRem
	OpRRem
	OpLShift
	OpRLShift
	OpRShift
	OpRRShift
	OpBitAnd
	OpRBitAnd
	OpBitOr
	OpRBitOr
	OpXor
	OpRXor
	OpLt
	OpGt
	OpLtEq
	OpGtEq
	OpNeg
	OpReadIndex
	OpWriteIndex
	Prettyprint

	numWellKnown
)

// DefaultCapacity is the largest number of symbols an Interner may hold.
const DefaultCapacity = math.MaxUint32

// Interner maps names to symbols and back. It is append-only and not safe
// for concurrent use; a VM owns exactly one.
type Interner struct {
	symbols  map[string]Symbol
	names    []string
	capacity uint64
}

// New returns an Interner with the well-known protocol names pre-interned.
func New() *Interner {
	return NewWithCapacity(DefaultCapacity)
}

// NewWithCapacity is like New but limits the number of symbols. The limit
// is raised to fit the well-known names if it is smaller.
func NewWithCapacity(capacity uint64) *Interner {
	if capacity < uint64(numWellKnown) {
		capacity = uint64(numWellKnown)
	}
	if capacity > DefaultCapacity {
		capacity = DefaultCapacity
	}
	in := &Interner{
		symbols:  make(map[string]Symbol, 256),
		names:    make([]string, 0, 256),
		capacity: capacity,
	}
	for _, name := range wellKnown {
		// capacity is at least numWellKnown here
		_, _ = in.Intern(name)
	}
	return in
}

// Intern returns the symbol for name, allocating the next handle if the
// name has not been seen before.
func (in *Interner) Intern(name string) (Symbol, error) {
	if sym, ok := in.symbols[name]; ok {
		return sym, nil
	}
	if uint64(len(in.names)) >= in.capacity {
		return 0, ErrTooManySymbols
	}
	sym := Symbol(len(in.names))
	in.names = append(in.names, name)
	in.symbols[name] = sym
	return sym, nil
}

// Resolve returns the name behind sym. It reports false for handles this
// Interner never produced.
func (in *Interner) Resolve(sym Symbol) (string, bool) {
	if int(sym) >= len(in.names) {
		return "", false
	}
	return in.names[sym], true
}

// Len returns the number of interned names.
func (in *Interner) Len() int {
	return len(in.names)
}
