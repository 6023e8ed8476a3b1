// Package vm implements Marin's stack virtual machine (§4.5): a flat
// value stack, a call-frame stack, and a heap for strings and bundles,
// interpreting the opcode stream internal/bytecode defines.
//
// Grounded on funvibe/funxy/internal/vm's VM struct and executeOneOp
// dispatch-switch style (a tagged Value, a growable stack, a
// fmt.Errorf-per-failure-mode execution loop), trimmed to the 21 opcodes
// and seven value kinds this statically-typed, closure-by-explicit-bundle
// language needs instead of funxy's ~90-opcode dynamically-typed machine
// with upvalues, traits, and a persistent-map global scope.
package vm

import (
	"fmt"

	"github.com/catapillie/marin/internal/bytecode"
)

// Initial and growth sizing for the value stack, grounded on funxy's
// InitialStackSize/MaxStackSize constants, scaled down: Marin programs
// have no unbounded dynamic recursion primitives beyond ordinary function
// calls, so a much smaller ceiling is still generous.
const (
	initialStackSize = 256
	maxStackSize     = 1 << 20
	maxFrameDepth    = 8192
)

// VM executes one bytecode.Module to completion. Errors returned from Run
// are fatal VM assertions (§4.5: "Errors inside the VM are fatal ... each
// aborts with a diagnostic message"), never a user-visible runtime error
// surface.
type VM struct {
	code   []byte
	consts []Value
	heap   *Heap

	stack      []Value
	fc         int
	ip         int

	frames     []callFrame
	blockMarks []int
}

// New returns a VM ready to run module.
func New(module *bytecode.Module) *VM {
	h := NewHeap()
	consts := make([]Value, len(module.Consts))
	for i, c := range module.Consts {
		consts[i] = materializeConst(h, c)
	}
	return &VM{
		code:   module.Code,
		consts: consts,
		heap:   h,
		stack:  make([]Value, 0, initialStackSize),
	}
}

// materializeConst allocates c (and, recursively, any nested bundle) onto
// the heap once at load time; the constant pool is never re-walked during
// execution.
func materializeConst(h *Heap, c bytecode.Const) Value {
	switch c.Kind {
	case bytecode.ConstInt:
		return IntValue(c.Int)
	case bytecode.ConstFloat:
		return FloatValue(c.Float)
	case bytecode.ConstString:
		return StringValue(h.AllocString(c.Str))
	case bytecode.ConstBool:
		return BoolValue(c.Bool)
	case bytecode.ConstBundle:
		elems := make([]Value, len(c.Bundle))
		for i, e := range c.Bundle {
			elems[i] = materializeConst(h, e)
		}
		return BundleValue(h.AllocArray(elems))
	default:
		return NilValue()
	}
}

// Run executes the module from offset 0 until the instruction pointer
// reaches the end of the code stream, returning the single value left on
// the stack.
func (vm *VM) Run() (Value, error) {
	for vm.ip < len(vm.code) {
		op := bytecode.Opcode(vm.code[vm.ip])
		vm.ip++
		if err := vm.step(op); err != nil {
			return Value{}, err
		}
		if len(vm.stack) > maxStackSize {
			return Value{}, fmt.Errorf("vm: value stack exceeded %d entries", maxStackSize)
		}
	}
	if len(vm.stack) != 1 {
		return Value{}, fmt.Errorf("vm: program ended with %d values on the stack, expected 1", len(vm.stack))
	}
	return vm.stack[0], nil
}

// Heap exposes the VM's heap so a caller can render the final result with
// Value.Inspect.
func (vm *VM) Heap() *Heap { return vm.heap }

func (vm *VM) step(op bytecode.Opcode) error {
	switch op {
	case bytecode.OpLoadFun:
		vm.push(FuncValue(vm.readU32()))

	case bytecode.OpBundle:
		n := int(vm.readU8())
		vm.bundle(n)

	case bytecode.OpBundleBig:
		n := int(vm.readU64())
		vm.bundle(n)

	case bytecode.OpIndex:
		off := int(vm.readU8())
		return vm.index(off, false)

	case bytecode.OpIndexDup:
		off := int(vm.readU8())
		return vm.index(off, true)

	case bytecode.OpIndexBig:
		off := int(vm.readU64())
		return vm.index(off, false)

	case bytecode.OpIndexBigDup:
		off := int(vm.readU64())
		return vm.index(off, true)

	case bytecode.OpSpill:
		off := int(vm.readU16())
		return vm.spill(off)

	case bytecode.OpLoadConst:
		idx := int(vm.readU16())
		if idx < 0 || idx >= len(vm.consts) {
			return fmt.Errorf("vm: invalid constant index %d", idx)
		}
		vm.push(vm.consts[idx])

	case bytecode.OpLoadLocal:
		k := int(vm.readU8())
		idx := vm.fc + k
		if idx < 0 || idx >= len(vm.stack) {
			return fmt.Errorf("vm: load_local(%d) out of range (fc=%d, stack=%d)", k, vm.fc, len(vm.stack))
		}
		vm.push(vm.stack[idx])

	case bytecode.OpSetLocal:
		k := int(vm.readU8())
		idx := vm.fc + k
		if idx < 0 || idx >= len(vm.stack) {
			return fmt.Errorf("vm: set_local(%d) out of range (fc=%d, stack=%d)", k, vm.fc, len(vm.stack))
		}
		vm.stack[idx] = vm.pop()

	case bytecode.OpLoadNil:
		vm.push(NilValue())

	case bytecode.OpJump:
		target := vm.readU32()
		vm.ip = int(target)

	case bytecode.OpJumpIf:
		target := vm.readU32()
		v := vm.pop()
		if v.Kind != KindBool {
			return fmt.Errorf("vm: jump_if expects a bool, got kind %d", v.Kind)
		}
		if v.Bool() {
			vm.ip = int(target)
		}

	case bytecode.OpJumpIfNot:
		target := vm.readU32()
		v := vm.pop()
		if v.Kind != KindBool {
			return fmt.Errorf("vm: jump_if_not expects a bool, got kind %d", v.Kind)
		}
		if !v.Bool() {
			vm.ip = int(target)
		}

	case bytecode.OpJumpEq:
		target := vm.readU32()
		b, a := vm.pop(), vm.pop()
		if a.Equal(b, vm.heap) {
			vm.ip = int(target)
		}

	case bytecode.OpJumpNe:
		target := vm.readU32()
		b, a := vm.pop(), vm.pop()
		if !a.Equal(b, vm.heap) {
			vm.ip = int(target)
		}

	case bytecode.OpDoFrame:
		vm.blockMarks = append(vm.blockMarks, len(vm.stack))

	case bytecode.OpEndFrame:
		if len(vm.blockMarks) == 0 {
			return fmt.Errorf("vm: end_frame with no matching do_frame")
		}
		mark := vm.blockMarks[len(vm.blockMarks)-1]
		vm.blockMarks = vm.blockMarks[:len(vm.blockMarks)-1]
		result := vm.pop()
		vm.stack = vm.stack[:mark]
		vm.push(result)

	case bytecode.OpCall:
		n := int(vm.readU8())
		return vm.call(n)

	case bytecode.OpRet:
		return vm.ret()

	case bytecode.OpPop:
		vm.pop()

	case bytecode.OpPopOffset:
		off := int(vm.readU16())
		idx := len(vm.stack) - 1 - off
		if idx < 0 || idx >= len(vm.stack) {
			return fmt.Errorf("vm: pop_offset(%d) out of range (stack=%d)", off, len(vm.stack))
		}
		copy(vm.stack[idx:], vm.stack[idx+1:])
		vm.stack = vm.stack[:len(vm.stack)-1]

	case bytecode.OpDup:
		vm.push(vm.peek(0))

	default:
		return fmt.Errorf("vm: invalid opcode byte %d at %d", byte(op), vm.ip-1)
	}
	return nil
}

func (vm *VM) bundle(n int) {
	if n == 0 {
		vm.push(BundleValue(vm.heap.AllocArray(nil)))
		return
	}
	elems := make([]Value, n)
	copy(elems, vm.stack[len(vm.stack)-n:])
	vm.stack = vm.stack[:len(vm.stack)-n]
	vm.push(BundleValue(vm.heap.AllocArray(elems)))
}

// index implements index(_dup)(off) (§4.4): the bundle on top of the stack
// is left in place, and the element at off within it is pushed; the _dup
// forms additionally duplicate that pushed element, so a single extracted
// field can both bind a name and feed a further nested extraction.
func (vm *VM) index(off int, dup bool) error {
	top := vm.peek(0)
	if top.Kind != KindBundle {
		return fmt.Errorf("vm: index expects a bundle on top of stack, got kind %d", top.Kind)
	}
	elems := vm.heap.DerefArray(top.HeapIndex())
	if off < 0 || off >= len(elems) {
		return fmt.Errorf("vm: index(%d) out of range (bundle has %d elements)", off, len(elems))
	}
	vm.push(elems[off])
	if dup {
		vm.push(elems[off])
	}
	return nil
}

// spill implements spill(off) (§4.4): the bundle sitting at off slots
// below the current top is replaced in place by its own elements, in
// order, growing the stack by (stride-1) slots.
func (vm *VM) spill(off int) error {
	idx := len(vm.stack) - 1 - off
	if idx < 0 || idx >= len(vm.stack) {
		return fmt.Errorf("vm: spill(%d) out of range (stack=%d)", off, len(vm.stack))
	}
	target := vm.stack[idx]
	if target.Kind != KindBundle {
		return fmt.Errorf("vm: spill expects a bundle at offset %d, got kind %d", off, target.Kind)
	}
	elems := vm.heap.DerefArray(target.HeapIndex())
	rest := append([]Value{}, vm.stack[idx+1:]...)
	vm.stack = vm.stack[:idx]
	vm.stack = append(vm.stack, elems...)
	vm.stack = append(vm.stack, rest...)
	return nil
}

// call implements call(n) (§4.4, §4.5): pops the two-item callable bundle
// [function-address, captured-env-bundle], appends the captured
// environment after the n already-pushed arguments, and transfers control
// to the function's entry offset.
func (vm *VM) call(n int) error {
	if len(vm.frames) >= maxFrameDepth {
		return fmt.Errorf("vm: call stack exceeded %d frames", maxFrameDepth)
	}

	fn := vm.pop()
	if fn.Kind != KindBundle {
		return fmt.Errorf("vm: call expects a callable bundle on top of stack, got kind %d", fn.Kind)
	}
	parts := vm.heap.DerefArray(fn.HeapIndex())
	if len(parts) != 2 {
		return fmt.Errorf("vm: callable bundle must have 2 elements, got %d", len(parts))
	}
	addr, env := parts[0], parts[1]
	if addr.Kind != KindFunc {
		return fmt.Errorf("vm: callable bundle's first element must be a function address, got kind %d", addr.Kind)
	}
	if env.Kind != KindBundle {
		return fmt.Errorf("vm: callable bundle's second element must be a captured-environment bundle, got kind %d", env.Kind)
	}

	if n > len(vm.stack) {
		return fmt.Errorf("vm: call(%d) with only %d values on the stack", n, len(vm.stack))
	}
	argsStart := len(vm.stack) - n

	if isNative(addr.FuncAddr()) {
		args := append([]Value{}, vm.stack[argsStart:]...)
		result, err := callNative(addr.FuncAddr(), args, vm.heap)
		if err != nil {
			return err
		}
		vm.stack = vm.stack[:argsStart]
		vm.push(result)
		return nil
	}

	for _, v := range vm.heap.DerefArray(env.HeapIndex()) {
		vm.push(v)
	}

	vm.frames = append(vm.frames, callFrame{returnIP: vm.ip, callerFC: vm.fc, cursor: argsStart})
	vm.fc = argsStart
	vm.ip = int(addr.FuncAddr())
	return nil
}

// ret implements ret (§4.4): truncates the stack to the call frame's
// recorded cursor, discarding its arguments, captured environment, and any
// locals, then pushes the function's result back and restores the
// caller's frame-local cursor and instruction pointer.
func (vm *VM) ret() error {
	if len(vm.frames) == 0 {
		return fmt.Errorf("vm: ret with no active call frame")
	}
	result := vm.pop()
	frame := vm.frames[len(vm.frames)-1]
	vm.frames = vm.frames[:len(vm.frames)-1]
	vm.stack = vm.stack[:frame.cursor]
	vm.fc = frame.callerFC
	vm.ip = frame.returnIP
	vm.push(result)
	return nil
}

func (vm *VM) push(v Value) {
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek(depth int) Value {
	return vm.stack[len(vm.stack)-1-depth]
}

func (vm *VM) readU8() uint8 {
	b := vm.code[vm.ip]
	vm.ip++
	return b
}

func (vm *VM) readU16() uint16 {
	v := uint16(vm.code[vm.ip]) | uint16(vm.code[vm.ip+1])<<8
	vm.ip += 2
	return v
}

func (vm *VM) readU32() uint32 {
	v := uint32(vm.code[vm.ip]) | uint32(vm.code[vm.ip+1])<<8 |
		uint32(vm.code[vm.ip+2])<<16 | uint32(vm.code[vm.ip+3])<<24
	vm.ip += 4
	return v
}

func (vm *VM) readU64() uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(vm.code[vm.ip+i]) << (8 * i)
	}
	vm.ip += 8
	return v
}
