package bytecode

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Disassemble renders m as a plain-text instruction listing: one line per
// instruction, the mnemonic, its operand if any, and the constant or
// function-table entry it references when that's resolvable. Supplements
// original_source/src/binary/dis.rs; this is a read-only debugging view,
// not embedded debug info (§1 Non-goal), so it carries no obligation to
// round-trip.
func Disassemble(m *Module) string {
	var b strings.Builder
	offset := 0
	for offset < len(m.Code) {
		op := Opcode(m.Code[offset])
		width := OperandWidth(op)
		fmt.Fprintf(&b, "%06d  %-14s", offset, op.Name())

		if offset+1+width > len(m.Code) {
			fmt.Fprintf(&b, "  <truncated>\n")
			break
		}

		operand := readOperand(m.Code[offset+1:offset+1+width], width)
		if width > 0 {
			fmt.Fprintf(&b, " %d", operand)
		}

		switch op {
		case OpLoadConst:
			if int(operand) < len(m.Consts) {
				fmt.Fprintf(&b, "  ; %s", constString(m.Consts[operand]))
			}
		case OpLoadFun:
			if name := functionName(m, uint32(operand)); name != "" {
				fmt.Fprintf(&b, "  ; %s", name)
			}
		}

		b.WriteByte('\n')
		offset += 1 + width
	}
	return b.String()
}

func readOperand(bs []byte, width int) uint64 {
	switch width {
	case 0:
		return 0
	case 1:
		return uint64(bs[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(bs))
	case 4:
		return uint64(binary.LittleEndian.Uint32(bs))
	case 8:
		return binary.LittleEndian.Uint64(bs)
	default:
		return 0
	}
}

func functionName(m *Module, offset uint32) string {
	for _, fn := range m.Functions {
		if fn.Offset == offset {
			return fn.Name
		}
	}
	return ""
}

func constString(c Const) string {
	switch c.Kind {
	case ConstInt:
		return fmt.Sprintf("%d", c.Int)
	case ConstFloat:
		return fmt.Sprintf("%g", c.Float)
	case ConstString:
		return fmt.Sprintf("%q", c.Str)
	case ConstBool:
		return fmt.Sprintf("%t", c.Bool)
	case ConstBundle:
		parts := make([]string, len(c.Bundle))
		for i, e := range c.Bundle {
			parts[i] = constString(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "?"
	}
}
