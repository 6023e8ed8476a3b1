package lower

import (
	"fmt"

	"github.com/catapillie/marin/internal/bytecode"
	"github.com/catapillie/marin/internal/entity"
	"github.com/catapillie/marin/internal/pattern"
)

// lowerPatternTest compiles one pattern test against a subject already
// sitting on top of the stack. On any path that falls through (the
// pattern matched), it leaves exactly len(bound) values in the subject's
// place, each freshly define'd into fn.locals in the same order bound
// lists them. On any path that instead jumps to fail, the stack is
// restored to exactly what it held before the subject was pushed: every
// composite case below is built out of self-cleaning primitives (a
// jump_eq/jump_ne always consumes both its operands regardless of which
// way it branches) or explicit cleanup stubs, so this invariant composes
// across arbitrary nesting without the caller needing to know how deep a
// failure occurred.
//
// The same function serves both match-case testing (refutable) and
// let/parameter destructuring (irrefutable): Literal and Variant, the
// only nodes that ever reach fail, simply never occur inside a pattern
// the checker already proved irrefutable (§4.3), so no separate
// "irrefutable-only" compiler is needed.
func lowerPatternTest(mb *moduleBuilder, b *buffer, fn *fnCtx, p pattern.Pattern, bound []entity.ID, fail int) error {
	switch p := p.(type) {
	case pattern.Missing, pattern.Discard:
		b.emit(bytecode.OpPop)
		return nil

	case pattern.Binding:
		if len(bound) != 1 {
			return fmt.Errorf("lower: binding pattern %q expected exactly one bound id, got %d", p.Name, len(bound))
		}
		_, err := fn.locals.define(bound[0])
		return err

	case pattern.Literal:
		idx, err := mb.addConst(literalConst(p))
		if err != nil {
			return err
		}
		b.emit(bytecode.OpLoadConst)
		b.emitU16(uint16(idx))
		b.emitJump(bytecode.OpJumpNe, fail)
		return nil

	case pattern.Tuple:
		return lowerComposite(mb, b, fn, p.Items, identityIndex, bound, fail)

	case pattern.Variant:
		return lowerVariantTest(mb, b, fn, p, bound, fail)

	case pattern.Record:
		en := mb.entities.Get(p.RecordID)
		items := make([]pattern.Pattern, len(p.Fields))
		index := make([]int, len(p.Fields))
		for i, f := range p.Fields {
			items[i] = f.Pattern
			declared, ok := fieldIndex(en, f.Name)
			if !ok {
				return fmt.Errorf("lower: record %q has no field %q", en.Name, f.Name)
			}
			index[i] = declared
		}
		return lowerComposite(mb, b, fn, items, func(i int) int { return index[i] }, bound, fail)

	default:
		return fmt.Errorf("lower: unhandled pattern %T", p)
	}
}

func identityIndex(i int) int { return i }

func fieldIndex(en *entity.Entity, name string) (int, bool) {
	for i, f := range en.Record.Fields {
		if f.Name == name {
			return i, true
		}
	}
	return 0, false
}

func literalConst(p pattern.Literal) bytecode.Const {
	switch p.Kind {
	case pattern.LitInt:
		return bytecode.Const{Kind: bytecode.ConstInt, Int: p.Int}
	case pattern.LitFloat:
		return bytecode.Const{Kind: bytecode.ConstFloat, Float: p.Float}
	case pattern.LitString:
		return bytecode.Const{Kind: bytecode.ConstString, Str: p.Str}
	default:
		return bytecode.Const{Kind: bytecode.ConstBool, Bool: p.Bool}
	}
}

// splitBound partitions a flat, left-to-right BoundNames list across
// items's own subpatterns, since each item's share is exactly
// len(pattern.BoundNames(item)) long, in order.
func splitBound(items []pattern.Pattern, bound []entity.ID) [][]entity.ID {
	out := make([][]entity.ID, len(items))
	cursor := 0
	for i, it := range items {
		n := len(pattern.BoundNames(it))
		out[i] = bound[cursor : cursor+n]
		cursor += n
	}
	return out
}

// lowerComposite compiles Tuple.Items, Variant.Args, or Record.Fields: a
// subject bundle persists on top of the stack throughout (index peeks
// never consume it), each component is peeked out in its declared
// position and tested in normal left-to-right order, and the lingering
// bundle is discarded with a single pop_offset once every component has
// matched.
//
// Index is used instead of spill specifically so components can be
// tested in their natural declared order: spill would place the last
// component on top, forcing either a reversed processing order or
// awkward reshuffling to keep each already-bound name addressable while
// its siblings are tested.
func lowerComposite(mb *moduleBuilder, b *buffer, fn *fnCtx, items []pattern.Pattern, declaredIndex func(int) int, bound []entity.ID, fail int) error {
	slices := splitBound(items, bound)

	type stub struct {
		label    int
		priorNet int
	}
	var stubs []stub
	net := 0
	for i, it := range items {
		b.emit(bytecode.OpIndex)
		b.emitU8(uint8(declaredIndex(i)))
		itemFail := b.newLabel()
		if err := lowerPatternTest(mb, b, fn, it, slices[i], itemFail); err != nil {
			return err
		}
		stubs = append(stubs, stub{label: itemFail, priorNet: net})
		net += len(slices[i])
	}

	b.emit(bytecode.OpPopOffset)
	b.emitU16(uint16(net))

	after := b.newLabel()
	b.emitJump(bytecode.OpJump, after)
	for _, st := range stubs {
		b.place(st.label)
		for i := 0; i < st.priorNet; i++ {
			b.emit(bytecode.OpPop)
		}
		b.emit(bytecode.OpPop) // discard the lingering subject bundle too
		b.emitJump(bytecode.OpJump, fail)
	}
	b.place(after)
	return nil
}

// lowerVariantTest tests the subject bundle's tag (laid out at runtime as
// [tagOrdinal, payloadBundle], §4.5) and, once matched, delegates its
// payload to lowerComposite exactly like a Tuple.
func lowerVariantTest(mb *moduleBuilder, b *buffer, fn *fnCtx, p pattern.Variant, bound []entity.ID, fail int) error {
	en := mb.entities.Get(p.UnionID)
	_, tagIdx, ok := findVariant(en, p.Tag)
	if !ok {
		return fmt.Errorf("lower: union %q has no variant tagged %q", en.Name, p.Tag)
	}

	b.emit(bytecode.OpIndex)
	b.emitU8(0) // peek tag, subject bundle persists
	idx, err := mb.addConst(bytecode.Const{Kind: bytecode.ConstInt, Int: int64(tagIdx)})
	if err != nil {
		return err
	}
	b.emit(bytecode.OpLoadConst)
	b.emitU16(uint16(idx))
	tagFail := b.newLabel()
	b.emitJump(bytecode.OpJumpNe, tagFail)

	if len(p.Args) == 0 {
		b.emit(bytecode.OpPop) // discard the nullary subject bundle
	} else {
		b.emit(bytecode.OpIndex)
		b.emitU8(1) // peek payload bundle, subject bundle still persists beneath
		if err := lowerComposite(mb, b, fn, p.Args, identityIndex, bound, tagFail); err != nil {
			return err
		}
		b.emit(bytecode.OpPopOffset)
		b.emitU16(uint16(len(bound))) // discard the lingering subject bundle
	}

	after := b.newLabel()
	b.emitJump(bytecode.OpJump, after)
	b.place(tagFail)
	b.emit(bytecode.OpPop) // the tag test's own peek leaves the subject behind on mismatch
	b.emitJump(bytecode.OpJump, fail)
	b.place(after)
	return nil
}
