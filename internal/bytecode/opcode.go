// Package bytecode defines Marin's flat opcode stream, constant pool,
// function table, and binary module format (§4.4), plus a disassembler
// (§12, supplementing original_source/src/binary/dis.rs).
//
// Grounded on funvibe/funxy/internal/vm's `Opcode byte` enum-plus-name-map
// style, trimmed from funxy's ~90 dynamically-typed opcodes (closures,
// traits, maps, extension methods, iterators — none of which this
// language's static type system and union-find checker need at the VM
// layer) down to the exact 21-opcode set §4.4 names.
package bytecode

// Opcode is a single VM instruction's stable byte tag (§4.4: "Opcodes
// (stable bytes)").
type Opcode byte

const (
	OpLoadFun     Opcode = iota // load_fun(u32): push Func(addr)
	OpBundle                    // bundle(u8): pop n, push Bundle of them in order
	OpBundleBig                 // bundle_big(u64): same, wider count
	OpIndex                      // index(u8): push bundle[off], bundle stays
	OpIndexDup                   // index_dup(u8): same as index but duplicates first
	OpIndexBig                   // index(u64): wide-offset form
	OpIndexBigDup                // index_dup(u64): wide-offset duplicating form
	OpSpill                      // spill(u16): replace bundle-on-stack at offset with its contents
	OpLoadConst                  // load_const(u16): push constant pool entry
	OpLoadLocal                  // load_local(u8): push stack[fc+k]
	OpSetLocal                   // set_local(u8): stack[fc+k] = pop()
	OpLoadNil                    // load_nil: push Nil
	OpJump                       // jump(u32): ip = target
	OpJumpIf                     // jump_if(u32): ip = target if pop() truthy
	OpJumpIfNot                  // jump_if_not(u32): ip = target if !pop()
	OpJumpEq                     // jump_eq(u32): ip = target if pop() == pop()
	OpJumpNe                     // jump_ne(u32): ip = target if pop() != pop()
	OpDoFrame                    // do_frame: open a block scope
	OpEndFrame                   // end_frame: close a block scope
	OpCall                       // call(u8): call with n args, function bundle on top
	OpRet                        // ret: return from the current frame
	OpPop                        // pop: discard top of stack
	OpPopOffset                  // pop_offset(u16): discard stack[top-offset]
	OpDup                        // dup: duplicate top of stack
)

// Name returns op's mnemonic, used by Disassemble and diagnostics.
func (op Opcode) Name() string {
	if n, ok := opcodeNames[op]; ok {
		return n
	}
	return "invalid"
}

var opcodeNames = map[Opcode]string{
	OpLoadFun:     "load_fun",
	OpBundle:      "bundle",
	OpBundleBig:   "bundle_big",
	OpIndex:       "index",
	OpIndexDup:    "index_dup",
	OpIndexBig:    "index_big",
	OpIndexBigDup: "index_big_dup",
	OpSpill:       "spill",
	OpLoadConst:   "load_const",
	OpLoadLocal:   "load_local",
	OpSetLocal:    "set_local",
	OpLoadNil:     "load_nil",
	OpJump:        "jump",
	OpJumpIf:      "jump_if",
	OpJumpIfNot:   "jump_if_not",
	OpJumpEq:      "jump_eq",
	OpJumpNe:      "jump_ne",
	OpDoFrame:     "do_frame",
	OpEndFrame:    "end_frame",
	OpCall:        "call",
	OpRet:         "ret",
	OpPop:         "pop",
	OpPopOffset:   "pop_offset",
	OpDup:         "dup",
}

// operandWidth is the number of operand bytes immediately following each
// opcode byte in the stream (0 for opcodes that take no operand).
var operandWidth = map[Opcode]int{
	OpLoadFun:     4,
	OpBundle:      1,
	OpBundleBig:   8,
	OpIndex:       1,
	OpIndexDup:    1,
	OpIndexBig:    8,
	OpIndexBigDup: 8,
	OpSpill:       2,
	OpLoadConst:   2,
	OpLoadLocal:   1,
	OpSetLocal:    1,
	OpLoadNil:     0,
	OpJump:        4,
	OpJumpIf:      4,
	OpJumpIfNot:   4,
	OpJumpEq:      4,
	OpJumpNe:      4,
	OpDoFrame:     0,
	OpEndFrame:    0,
	OpCall:        1,
	OpRet:         0,
	OpPop:         0,
	OpPopOffset:   2,
	OpDup:         0,
}

// OperandWidth returns how many bytes follow op in the code stream.
func OperandWidth(op Opcode) int {
	return operandWidth[op]
}
