package lower

import (
	"fmt"

	"github.com/catapillie/marin/internal/bytecode"
	"github.com/catapillie/marin/internal/entity"
	"github.com/catapillie/marin/internal/ir"
	"github.com/catapillie/marin/internal/vm"
)

// lowerExpr compiles e, leaving exactly its one value on top of the
// stack. Every case below holds to that contract; composite forms
// recurse through it freely, trusting callees to leave the stack exactly
// one value taller and nothing else disturbed.
func lowerExpr(mb *moduleBuilder, b *buffer, fn *fnCtx, e ir.Expression) error {
	switch e := e.(type) {
	case *ir.IntLit:
		idx, err := mb.addConst(bytecode.Const{Kind: bytecode.ConstInt, Int: e.Value})
		if err != nil {
			return err
		}
		b.emit(bytecode.OpLoadConst)
		b.emitU16(uint16(idx))
		return nil

	case *ir.FloatLit:
		idx, err := mb.addConst(bytecode.Const{Kind: bytecode.ConstFloat, Float: e.Value})
		if err != nil {
			return err
		}
		b.emit(bytecode.OpLoadConst)
		b.emitU16(uint16(idx))
		return nil

	case *ir.StringLit:
		idx, err := mb.addConst(bytecode.Const{Kind: bytecode.ConstString, Str: e.Value})
		if err != nil {
			return err
		}
		b.emit(bytecode.OpLoadConst)
		b.emitU16(uint16(idx))
		return nil

	case *ir.BoolLit:
		idx, err := mb.addConst(bytecode.Const{Kind: bytecode.ConstBool, Bool: e.Value})
		if err != nil {
			return err
		}
		b.emit(bytecode.OpLoadConst)
		b.emitU16(uint16(idx))
		return nil

	case *ir.TupleExpr:
		for _, item := range e.Items {
			if err := lowerExpr(mb, b, fn, item); err != nil {
				return err
			}
		}
		b.emit(bytecode.OpBundle)
		b.emitU8(uint8(len(e.Items)))
		return nil

	case *ir.ArrayExpr:
		for _, item := range e.Items {
			if err := lowerExpr(mb, b, fn, item); err != nil {
				return err
			}
		}
		b.emit(bytecode.OpBundle)
		b.emitU8(uint8(len(e.Items)))
		return nil

	case *ir.RecordValueExpr:
		for _, field := range e.Fields {
			if err := lowerExpr(mb, b, fn, field); err != nil {
				return err
			}
		}
		b.emit(bytecode.OpBundle)
		b.emitU8(uint8(len(e.Fields)))
		return nil

	case *ir.Ref:
		return lowerRef(mb, b, fn, e)

	case *ir.Call:
		return lowerCall(mb, b, fn, e)

	case *ir.Fun:
		return lowerFunLiteral(mb, b, fn, e)

	case *ir.BinaryExpr:
		return lowerBinary(mb, b, fn, e)

	case *ir.UnaryExpr:
		return lowerUnary(mb, b, fn, e)

	case *ir.Block:
		return lowerBlock(mb, b, fn, e)

	case *ir.Conditional:
		return lowerConditional(mb, b, fn, e)

	case *ir.Break:
		return lowerBreak(mb, b, fn, e)

	case *ir.Skip:
		return lowerSkip(mb, b, fn, e)

	default:
		return fmt.Errorf("lower: unhandled expression %T", e)
	}
}

// lowerRef dispatches on the referenced entity's kind. A Record or Union
// entity is never itself a runtime slot: a bare reference to one
// constructs a value (or a closure over a synthesized constructor
// function) directly, rather than loading anything. Every other
// referenced entity is an ordinary Variable, addressed by its frame-
// relative slot; by the time lowering sees a Ref naming a Variable whose
// VariableData.IsClassItem is still set, checkRef could not resolve its
// class constraint against any in-scope instance (§ resolveClassItem) and
// no dictionary-passing mechanism exists to recover a runtime value, so
// that case is a lowering error rather than a silent miscompile.
func lowerRef(mb *moduleBuilder, b *buffer, fn *fnCtx, ref *ir.Ref) error {
	en := mb.entities.Get(ref.EntityID)
	switch en.Kind {
	case entity.Record:
		return lowerRecordRef(mb, b, fn, en, ref)
	case entity.Union:
		return lowerUnionRef(mb, b, fn, en, ref)
	case entity.Variable:
		if en.Variable != nil && en.Variable.IsClassItem {
			return fmt.Errorf("lower: reference to class item %q at %v has no resolved instance to dispatch through", en.Name, ref.Span())
		}
		slot, ok := fn.locals.lookup(ref.EntityID)
		if !ok {
			return fmt.Errorf("lower: variable %q (entity %d) referenced at %v has no local binding in scope", en.Name, ref.EntityID, ref.Span())
		}
		b.emit(bytecode.OpLoadLocal)
		b.emitU8(uint8(slot))
		return nil
	default:
		return fmt.Errorf("lower: reference to entity kind %v cannot be lowered as a value", en.Kind)
	}
}

// lowerRecordRef constructs the record directly when it is applied
// (handled in lowerCall before ever reaching here); as a bare, standalone
// reference it is a first-class constructor value: zero fields builds the
// value outright, a positive arity synthesizes (and memoizes) a tiny
// constructor function and returns an empty-capture closure over it.
func lowerRecordRef(mb *moduleBuilder, b *buffer, fn *fnCtx, en *entity.Entity, ref *ir.Ref) error {
	arity := len(en.Record.Fields)
	if arity == 0 {
		b.emit(bytecode.OpBundle)
		b.emitU8(0)
		return nil
	}
	target, err := mb.recordConstructor(ref.EntityID, arity)
	if err != nil {
		return err
	}
	return mb.emitClosureValue(b, target, fn, nil)
}

// lowerUnionRef mirrors lowerRecordRef for a specific tagged variant.
func lowerUnionRef(mb *moduleBuilder, b *buffer, fn *fnCtx, en *entity.Entity, ref *ir.Ref) error {
	variant, tagIdx, ok := findVariant(en, ref.Tag)
	if !ok {
		return fmt.Errorf("lower: union %q has no variant tagged %q", en.Name, ref.Tag)
	}
	arity := len(variant.ArgsIDs)
	if arity == 0 {
		return emitNullaryVariant(mb, b, tagIdx)
	}
	target, err := mb.variantConstructor(ref.EntityID, ref.Tag, tagIdx, arity)
	if err != nil {
		return err
	}
	return mb.emitClosureValue(b, target, fn, nil)
}

func findVariant(en *entity.Entity, tag string) (entity.VariantRef, int, bool) {
	for i, v := range en.Union.Variants {
		if v.Tag == tag {
			return v, i, true
		}
	}
	return entity.VariantRef{}, 0, false
}

// emitNullaryVariant pushes [tagOrdinal, Bundle()] directly: a nullary
// variant needs no constructor function since it never takes arguments.
func emitNullaryVariant(mb *moduleBuilder, b *buffer, tagIdx int) error {
	idx, err := mb.addConst(bytecode.Const{Kind: bytecode.ConstInt, Int: int64(tagIdx)})
	if err != nil {
		return err
	}
	b.emit(bytecode.OpLoadConst)
	b.emitU16(uint16(idx))
	b.emit(bytecode.OpBundle)
	b.emitU8(0)
	b.emit(bytecode.OpBundle)
	b.emitU8(2)
	return nil
}

// lowerCall special-cases a callee that directly names a record or union
// variant constructor: applying it compiles straight to construction,
// bypassing the general call convention (no constructor function needed
// for the common case of a constructor applied directly to its
// arguments). Anything else lowers as an ordinary call: args then callee,
// matching call()'s expectation that the callable bundle sits on top.
func lowerCall(mb *moduleBuilder, b *buffer, fn *fnCtx, call *ir.Call) error {
	if ref, ok := call.Callee.(*ir.Ref); ok {
		en := mb.entities.Get(ref.EntityID)
		switch en.Kind {
		case entity.Record:
			for _, arg := range call.Args {
				if err := lowerExpr(mb, b, fn, arg); err != nil {
					return err
				}
			}
			b.emit(bytecode.OpBundle)
			b.emitU8(uint8(len(call.Args)))
			return nil
		case entity.Union:
			_, tagIdx, ok := findVariant(en, ref.Tag)
			if !ok {
				return fmt.Errorf("lower: union %q has no variant tagged %q", en.Name, ref.Tag)
			}
			idx, err := mb.addConst(bytecode.Const{Kind: bytecode.ConstInt, Int: int64(tagIdx)})
			if err != nil {
				return err
			}
			b.emit(bytecode.OpLoadConst)
			b.emitU16(uint16(idx))
			for _, arg := range call.Args {
				if err := lowerExpr(mb, b, fn, arg); err != nil {
					return err
				}
			}
			b.emit(bytecode.OpBundle)
			b.emitU8(uint8(len(call.Args)))
			b.emit(bytecode.OpBundle)
			b.emitU8(2)
			return nil
		}
	}

	for _, arg := range call.Args {
		if err := lowerExpr(mb, b, fn, arg); err != nil {
			return err
		}
	}
	if err := lowerExpr(mb, b, fn, call.Callee); err != nil {
		return err
	}
	b.emit(bytecode.OpCall)
	b.emitU8(uint8(len(call.Args)))
	return nil
}

var binaryNative = map[string]uint32{
	"+": vm.NativeAdd, "-": vm.NativeSub, "*": vm.NativeMul, "/": vm.NativeDiv,
	"<": vm.NativeLt, "<=": vm.NativeLe, ">": vm.NativeGt, ">=": vm.NativeGe,
	"==": vm.NativeEq, "!=": vm.NativeNe,
}

var unaryNative = map[string]uint32{
	"!": vm.NativeNot, "-": vm.NativeNeg,
}

// lowerBinary threads every operator but the short-circuiting `&&`/`||`
// through the ordinary calling convention against one of vm's reserved
// native addresses (§4.5), keeping the opcode set closed. `&&`/`||`
// short-circuit their right operand, which no ordinary call can express,
// so they compile to an explicit jump sequence instead.
func lowerBinary(mb *moduleBuilder, b *buffer, fn *fnCtx, e *ir.BinaryExpr) error {
	switch e.Op {
	case "&&":
		return lowerShortCircuit(mb, b, fn, e, bytecode.OpJumpIfNot)
	case "||":
		return lowerShortCircuit(mb, b, fn, e, bytecode.OpJumpIf)
	}

	addr, ok := binaryNative[e.Op]
	if !ok {
		return fmt.Errorf("lower: unknown binary operator %q", e.Op)
	}
	if err := lowerExpr(mb, b, fn, e.Left); err != nil {
		return err
	}
	if err := lowerExpr(mb, b, fn, e.Right); err != nil {
		return err
	}
	mb.emitLoadNativeFun(b, addr)
	b.emit(bytecode.OpBundle)
	b.emitU8(0)
	b.emit(bytecode.OpBundle)
	b.emitU8(2)
	b.emit(bytecode.OpCall)
	b.emitU8(2)
	return nil
}

func lowerShortCircuit(mb *moduleBuilder, b *buffer, fn *fnCtx, e *ir.BinaryExpr, op bytecode.Opcode) error {
	if err := lowerExpr(mb, b, fn, e.Left); err != nil {
		return err
	}
	b.emit(bytecode.OpDup)
	short := b.newLabel()
	b.emitJump(op, short)
	b.emit(bytecode.OpPop)
	if err := lowerExpr(mb, b, fn, e.Right); err != nil {
		return err
	}
	after := b.newLabel()
	b.emitJump(bytecode.OpJump, after)
	b.place(short)
	b.place(after)
	return nil
}

func lowerUnary(mb *moduleBuilder, b *buffer, fn *fnCtx, e *ir.UnaryExpr) error {
	addr, ok := unaryNative[e.Op]
	if !ok {
		return fmt.Errorf("lower: unknown unary operator %q", e.Op)
	}
	if err := lowerExpr(mb, b, fn, e.Operand); err != nil {
		return err
	}
	mb.emitLoadNativeFun(b, addr)
	b.emit(bytecode.OpBundle)
	b.emitU8(0)
	b.emit(bytecode.OpBundle)
	b.emitU8(2)
	b.emit(bytecode.OpCall)
	b.emitU8(1)
	return nil
}

// lowerLet destructures s.Body against s.Pattern, binding each of s.Bound
// to the physical slot its value ends up at. s.Pattern is always
// irrefutable (enforced at check time, §checkLetStatement), so the fail
// label lowerPatternTest requires is never reached at runtime. It is still
// placed right after the test, because composite patterns always emit
// cleanup stubs that jump to it and every jump target must be placed.
func lowerLet(mb *moduleBuilder, b *buffer, fn *fnCtx, s *ir.LetStatement) error {
	if err := lowerExpr(mb, b, fn, s.Body); err != nil {
		return err
	}
	dead := b.newLabel()
	err := lowerPatternTest(mb, b, fn, s.Pattern, s.Bound, dead)
	b.place(dead)
	return err
}
