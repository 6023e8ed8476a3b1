package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Encode serializes m into the fixed binary layout (§4.4): magic, constant
// pool, function table, then the code bytes, all integers little-endian.
func Encode(m *Module) ([]byte, error) {
	if len(m.Consts) > MaxPoolSize {
		return nil, fmt.Errorf("bytecode: constant pool exceeds %d entries", MaxPoolSize)
	}
	if len(m.Functions) > MaxPoolSize {
		return nil, fmt.Errorf("bytecode: function table exceeds %d entries", MaxPoolSize)
	}

	var buf bytes.Buffer
	buf.WriteString(Magic)

	binary.Write(&buf, binary.LittleEndian, uint16(len(m.Consts)))
	for _, c := range m.Consts {
		encodeConst(&buf, c)
	}

	binary.Write(&buf, binary.LittleEndian, uint16(len(m.Functions)))
	for _, fn := range m.Functions {
		binary.Write(&buf, binary.LittleEndian, fn.Offset)
		binary.Write(&buf, binary.LittleEndian, uint16(len(fn.Name)))
		buf.WriteString(fn.Name)
	}

	buf.Write(m.Code)

	return buf.Bytes(), nil
}

func encodeConst(buf *bytes.Buffer, c Const) {
	buf.WriteByte(byte(c.Kind))
	switch c.Kind {
	case ConstInt:
		binary.Write(buf, binary.LittleEndian, c.Int)
	case ConstFloat:
		binary.Write(buf, binary.LittleEndian, c.Float)
	case ConstString:
		binary.Write(buf, binary.LittleEndian, uint64(len(c.Str)))
		buf.WriteString(c.Str)
	case ConstBool:
		if c.Bool {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case ConstBundle:
		buf.WriteByte(byte(len(c.Bundle)))
		for _, elem := range c.Bundle {
			encodeConst(buf, elem)
		}
	}
}

// Decode parses data into a Module, verifying the magic header first.
func Decode(data []byte) (*Module, error) {
	r := bytes.NewReader(data)

	magic := make([]byte, len(Magic))
	if _, err := r.Read(magic); err != nil || string(magic) != Magic {
		return nil, fmt.Errorf("bytecode: missing or invalid magic header")
	}

	var numConsts uint16
	if err := binary.Read(r, binary.LittleEndian, &numConsts); err != nil {
		return nil, fmt.Errorf("bytecode: reading constant pool size: %w", err)
	}
	consts := make([]Const, numConsts)
	for i := range consts {
		c, err := decodeConst(r)
		if err != nil {
			return nil, fmt.Errorf("bytecode: decoding constant %d: %w", i, err)
		}
		consts[i] = c
	}

	var numFuncs uint16
	if err := binary.Read(r, binary.LittleEndian, &numFuncs); err != nil {
		return nil, fmt.Errorf("bytecode: reading function table size: %w", err)
	}
	funcs := make([]Function, numFuncs)
	for i := range funcs {
		var fn Function
		if err := binary.Read(r, binary.LittleEndian, &fn.Offset); err != nil {
			return nil, fmt.Errorf("bytecode: reading function %d offset: %w", i, err)
		}
		var nameLen uint16
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return nil, fmt.Errorf("bytecode: reading function %d name length: %w", i, err)
		}
		name := make([]byte, nameLen)
		if _, err := r.Read(name); err != nil {
			return nil, fmt.Errorf("bytecode: reading function %d name: %w", i, err)
		}
		fn.Name = string(name)
		funcs[i] = fn
	}

	code := make([]byte, r.Len())
	if _, err := r.Read(code); err != nil {
		return nil, fmt.Errorf("bytecode: reading code section: %w", err)
	}

	return &Module{Consts: consts, Functions: funcs, Code: code}, nil
}

func decodeConst(r *bytes.Reader) (Const, error) {
	kindByte, err := r.ReadByte()
	if err != nil {
		return Const{}, err
	}
	kind := ConstKind(kindByte)
	switch kind {
	case ConstInt:
		var v int64
		err := binary.Read(r, binary.LittleEndian, &v)
		return Const{Kind: kind, Int: v}, err
	case ConstFloat:
		var v float64
		err := binary.Read(r, binary.LittleEndian, &v)
		return Const{Kind: kind, Float: v}, err
	case ConstString:
		var length uint64
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			return Const{}, err
		}
		s := make([]byte, length)
		if _, err := r.Read(s); err != nil {
			return Const{}, err
		}
		return Const{Kind: kind, Str: string(s)}, nil
	case ConstBool:
		b, err := r.ReadByte()
		return Const{Kind: kind, Bool: b != 0}, err
	case ConstBundle:
		n, err := r.ReadByte()
		if err != nil {
			return Const{}, err
		}
		bundle := make([]Const, n)
		for i := range bundle {
			c, err := decodeConst(r)
			if err != nil {
				return Const{}, err
			}
			bundle[i] = c
		}
		return Const{Kind: kind, Bundle: bundle}, nil
	default:
		return Const{}, fmt.Errorf("bytecode: invalid constant kind byte %d", kindByte)
	}
}
