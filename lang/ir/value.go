// Package ir defines sif's data model (Value, Table) and its labeled
// register bytecode (Instruction, Op, side tables): the output of the
// lowerer and the input consumed by the CFG/SSA analyzer, the peephole
// optimizer, and the VM (spec.md §3).
package ir

import (
	"fmt"
	"strings"

	"github.com/dolthub/swiss"
)

// Kind discriminates the tagged Value variants of spec.md §3: a 64-bit
// float number, a UTF-8 string, a boolean, null, an array, or a table.
// There is no user-defined type.
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindBool
	KindNull
	KindArray
	KindTable
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindArray:
		return "array"
	case KindTable:
		return "table"
	default:
		return "unknown"
	}
}

// Value is a tagged value manipulated by the lowerer, the optimizer (as
// literal operands), and the VM.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
	Bool bool
	Arr  *Array
	Tbl  *Table
}

// Null is the singleton null value.
var Null = Value{Kind: KindNull}

// Number constructs a Number value.
func Number(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// String constructs a String value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Bool constructs a Bool value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// ArrayVal constructs an Array value.
func ArrayVal(a *Array) Value { return Value{Kind: KindArray, Arr: a} }

// TableVal constructs a Table value.
func TableVal(t *Table) Value { return Value{Kind: KindTable, Tbl: t} }

// Truthy reports the truthiness of v, used by JumpCnd and the logical
// operators: null and false are falsy, zero is falsy, the empty string is
// falsy, an empty array or table is falsy; everything else is truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNull:
		return false
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Num != 0
	case KindString:
		return v.Str != ""
	case KindArray:
		return v.Arr.Len() > 0
	case KindTable:
		return v.Tbl.Len() > 0
	default:
		return false
	}
}

// Equal implements the structural equality required by spec.md §3.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindNumber:
		return v.Num == o.Num
	case KindString:
		return v.Str == o.Str
	case KindBool:
		return v.Bool == o.Bool
	case KindArray:
		return v.Arr.Equal(o.Arr)
	case KindTable:
		return v.Tbl.Equal(o.Tbl)
	default:
		return false
	}
}

// String renders v for the print stdlib call and for --emit-ir/--trace-exec
// diagnostics.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindNumber:
		return fmt.Sprintf("%g", v.Num)
	case KindString:
		return v.Str
	case KindBool:
		return fmt.Sprintf("%v", v.Bool)
	case KindArray:
		return v.Arr.String()
	case KindTable:
		return v.Tbl.String()
	default:
		return "<?>"
	}
}

// Array is a heterogeneous, ordered, mutable sequence of values.
type Array struct {
	elems []Value
}

// NewArray returns an array containing the given elements. The caller
// should not retain elems afterward.
func NewArray(elems []Value) *Array { return &Array{elems: elems} }

func (a *Array) Len() int { return len(a.elems) }

// Get returns the element at index i, which must satisfy 0 <= i < Len().
func (a *Array) Get(i int) Value { return a.elems[i] }

// Set assigns the element at index i, which must satisfy 0 <= i < Len().
func (a *Array) Set(i int, v Value) { a.elems[i] = v }

func (a *Array) Equal(o *Array) bool {
	if a == o {
		return true
	}
	if len(a.elems) != len(o.elems) {
		return false
	}
	for i, e := range a.elems {
		if !e.Equal(o.elems[i]) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of a. The VM uses this when executing a
// StoreC that carries an array literal: the literal's Array value is built
// once at lowering time and baked into the instruction, so every execution
// of that instruction (e.g. once per recursive call, for a locally declared
// array) must start from a fresh copy rather than share one mutable backing
// slice across calls.
func (a *Array) Clone() *Array {
	return &Array{elems: append([]Value(nil), a.elems...)}
}

func (a *Array) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, e := range a.elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// Table is sif's string-keyed mapping type, backed by github.com/dolthub/
// swiss (the same map implementation the teacher uses for its own Map value
// in lang/machine/map.go), chosen because table keys are always field
// identifiers — plain strings — and a swiss table gives O(1) amortized
// access without the bucket-chain overhead of the stdlib map's hash table.
type Table struct {
	m *swiss.Map[string, Value]
}

// NewTable returns a table with initial capacity for at least size items.
func NewTable(size int) *Table {
	if size < 1 {
		size = 1
	}
	return &Table{m: swiss.NewMap[string, Value](uint32(size))}
}

func (t *Table) Len() int { return t.m.Count() }

// Get returns the value stored at key, or Null, false if absent.
func (t *Table) Get(key string) (Value, bool) {
	return t.m.Get(key)
}

// Set stores v at key, inserting or overwriting as needed.
func (t *Table) Set(key string, v Value) {
	t.m.Put(key, v)
}

// Clone returns an independent copy of t, for the same reason Array.Clone
// exists: a table literal's Table value is baked once into a StoreC
// instruction at lowering time, and every execution of that instruction
// must start from a fresh table rather than reuse one shared backing map.
func (t *Table) Clone() *Table {
	nt := NewTable(t.Len())
	t.m.Iter(func(k string, v Value) bool {
		nt.Set(k, v)
		return false
	})
	return nt
}

func (t *Table) Equal(o *Table) bool {
	if t == o {
		return true
	}
	if t.Len() != o.Len() {
		return false
	}
	eq := true
	t.m.Iter(func(k string, v Value) bool {
		ov, ok := o.m.Get(k)
		if !ok || !v.Equal(ov) {
			eq = false
			return true // stop iterating
		}
		return false
	})
	return eq
}

func (t *Table) String() string {
	var sb strings.Builder
	sb.WriteString("[[")
	first := true
	t.m.Iter(func(k string, v Value) bool {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&sb, "%s => %s", k, v.String())
		return false
	})
	sb.WriteString("]]")
	return sb.String()
}
