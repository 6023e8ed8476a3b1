package bytecode

// Magic is the 8-byte file signature every bytecode image starts with. A
// reader MUST verify it and fail otherwise (§6).
const Magic = "exemarin"

// MaxPoolSize is the shared cap on both the constant pool and the function
// table (§4.4: "capped at 65,535").
const MaxPoolSize = 65535

// ConstKind tags which variant of runtime literal a Const holds.
type ConstKind byte

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstString
	ConstBool
	ConstBundle
)

// Const is one deduplicated entry of the constant pool.
type Const struct {
	Kind   ConstKind
	Int    int64
	Float  float64
	Str    string
	Bool   bool
	Bundle []Const // nested constant bundle (ConstBundle only)
}

// Equal reports whether c and other encode the same literal, used by the
// lowering stage's constant-pool deduplication.
func (c Const) Equal(other Const) bool {
	if c.Kind != other.Kind {
		return false
	}
	switch c.Kind {
	case ConstInt:
		return c.Int == other.Int
	case ConstFloat:
		return c.Float == other.Float
	case ConstString:
		return c.Str == other.Str
	case ConstBool:
		return c.Bool == other.Bool
	case ConstBundle:
		if len(c.Bundle) != len(other.Bundle) {
			return false
		}
		for i := range c.Bundle {
			if !c.Bundle[i].Equal(other.Bundle[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Function is one entry of the function table: the byte offset its code
// starts at, and a name used for disassembly and diagnostics (not for
// dispatch, which is always by offset).
type Function struct {
	Offset uint32
	Name   string
}

// Module is one fully lowered, serializable program: its deduplicated
// constant pool, its function table, and its flat code stream (§4.4).
type Module struct {
	Consts    []Const
	Functions []Function
	Code      []byte
}
