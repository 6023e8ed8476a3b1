package vm

import (
	"fmt"
	"math"
)

// Kind tags which of the seven runtime shapes a Value holds (§4.5: "Values
// are small and uniform: Nil | Int(i64) | Float(f64) | Bool |
// String(heap-index) | Func(u32) | Bundle(heap-index)").
type Kind uint8

const (
	KindNil Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindFunc
	KindBundle
)

// Value is the VM's stack-allocated tagged union, grounded on funxy's
// Value{Type, Data, Obj} shape but trimmed to the seven kinds this
// statically-typed VM needs: a single uint64 payload for Int/Float/Bool/
// Func, plus a heap index for String/Bundle, with no second field to box a
// pointer.
type Value struct {
	Kind Kind
	Data uint64
}

func NilValue() Value           { return Value{Kind: KindNil} }
func IntValue(v int64) Value    { return Value{Kind: KindInt, Data: uint64(v)} }
func FloatValue(v float64) Value {
	return Value{Kind: KindFloat, Data: math.Float64bits(v)}
}
func BoolValue(v bool) Value {
	if v {
		return Value{Kind: KindBool, Data: 1}
	}
	return Value{Kind: KindBool, Data: 0}
}
func FuncValue(addr uint32) Value      { return Value{Kind: KindFunc, Data: uint64(addr)} }
func StringValue(heapIdx int) Value    { return Value{Kind: KindString, Data: uint64(heapIdx)} }
func BundleValue(heapIdx int) Value    { return Value{Kind: KindBundle, Data: uint64(heapIdx)} }

func (v Value) Int() int64       { return int64(v.Data) }
func (v Value) Float() float64   { return math.Float64frombits(v.Data) }
func (v Value) Bool() bool       { return v.Data != 0 }
func (v Value) FuncAddr() uint32 { return uint32(v.Data) }
func (v Value) HeapIndex() int   { return int(v.Data) }

// Equal implements the VM's only equality primitive, backing jump_eq/
// jump_ne and the checked language's `==`/`!=` operators once lowered.
// Equality on a Bundle compares its heap contents structurally, since two
// distinct heap allocations can represent equal tuples or union payloads.
func (v Value) Equal(other Value, h *Heap) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNil:
		return true
	case KindInt, KindBool, KindFunc:
		return v.Data == other.Data
	case KindFloat:
		return v.Float() == other.Float()
	case KindString:
		return h.String(v.HeapIndex()) == h.String(other.HeapIndex())
	case KindBundle:
		a, b := h.DerefArray(v.HeapIndex()), h.DerefArray(other.HeapIndex())
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equal(b[i], h) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Inspect renders v for diagnostics and the disassembler's constant-pool
// annotations; it is not a language-level formatting facility.
func (v Value) Inspect(h *Heap) string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindInt:
		return fmt.Sprintf("%d", v.Int())
	case KindFloat:
		return fmt.Sprintf("%g", v.Float())
	case KindBool:
		return fmt.Sprintf("%t", v.Bool())
	case KindString:
		return fmt.Sprintf("%q", h.String(v.HeapIndex()))
	case KindFunc:
		return fmt.Sprintf("func@%d", v.FuncAddr())
	case KindBundle:
		elems := h.DerefArray(v.HeapIndex())
		s := "["
		for i, e := range elems {
			if i > 0 {
				s += ", "
			}
			s += e.Inspect(h)
		}
		return s + "]"
	default:
		return "<?>"
	}
}
