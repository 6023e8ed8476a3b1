package lower

import (
	"fmt"

	"github.com/catapillie/marin/internal/bytecode"
	"github.com/catapillie/marin/internal/entity"
	"github.com/catapillie/marin/internal/ir"
	"github.com/catapillie/marin/internal/pattern"
)

// runtimeCaptures filters fun.Captures down to the entities that actually
// need a captured runtime slot: a Record, Union, or Class entity id can
// appear in Captures (the checker's capture-marking is name-resolution-
// kind-agnostic) purely because the body references it structurally
// (constructing a value, or dispatching a resolved class item whose own
// placeholder entity still got marked along the way, §resolveClassItem);
// neither ever needs an actual runtime value threaded through the
// closure's environment bundle.
func runtimeCaptures(entities *entity.Table, fun *ir.Fun) []entity.ID {
	var out []entity.ID
	for _, id := range fun.Captures {
		en := entities.Get(id)
		if en.Kind == entity.Variable && !en.Variable.IsClassItem {
			out = append(out, id)
		}
	}
	return out
}

// lowerFunLiteral queues fun's body as a new function buffer — params at
// local indices 0..P-1, filtered captures appended right after at
// P..P+C-1, matching call()'s convention of appending the captured
// environment bundle's elements after the argument list (§4.5) — then
// builds the closure value at the construction site out of the current
// function's own locals.
func lowerFunLiteral(mb *moduleBuilder, b *buffer, fn *fnCtx, fun *ir.Fun) error {
	captures := runtimeCaptures(mb.entities, fun)
	target := mb.newFunction("")
	if err := lowerFunctionBody(mb, target, fun.Params, captures, fun.Body); err != nil {
		return err
	}
	return mb.emitClosureValue(b, target, fn, captures)
}

// lowerFunctionBody compiles one function body into buf: a fresh fnCtx
// assigns each parameter (or, for a destructuring parameter, an anonymous
// placeholder) a slot in declaration order, then each capture its own
// slot right after, before the body is lowered and a ret appended.
func lowerFunctionBody(mb *moduleBuilder, buf *buffer, params []ir.Param, captures []entity.ID, body ir.Expression) error {
	inner := &fnCtx{locals: newLocalEnv()}

	type destructure struct {
		slot int
		p    ir.Param
	}
	var destructures []destructure

	for _, p := range params {
		if bind, ok := p.Pattern.(pattern.Binding); ok {
			if len(p.Bound) != 1 {
				return fmt.Errorf("lower: binding parameter %q expected exactly one bound id, got %d", bind.Name, len(p.Bound))
			}
			if _, err := inner.locals.define(p.Bound[0]); err != nil {
				return err
			}
			continue
		}
		slot, err := inner.locals.bumpAnonymous()
		if err != nil {
			return err
		}
		destructures = append(destructures, destructure{slot: slot, p: p})
	}

	for _, id := range captures {
		if _, err := inner.locals.define(id); err != nil {
			return err
		}
	}

	for _, d := range destructures {
		buf.emit(bytecode.OpLoadLocal)
		buf.emitU8(uint8(d.slot))
		dead := buf.newLabel()
		if err := lowerPatternTest(mb, buf, inner, d.p.Pattern, d.p.Bound, dead); err != nil {
			return err
		}
		buf.place(dead)
	}

	if err := lowerExpr(mb, buf, inner, body); err != nil {
		return err
	}
	buf.emit(bytecode.OpRet)
	return nil
}

// recordConstructor returns (memoizing across call sites) the buffer of a
// tiny function that builds a record value of recordID from arity
// positional arguments, used whenever the record's constructor is
// referenced as a first-class value rather than applied directly
// (§lowerCall already compiles a direct application to construction
// inline, bypassing this entirely).
func (mb *moduleBuilder) recordConstructor(recordID entity.ID, arity int) (*buffer, error) {
	key := ctorKey{entityID: recordID}
	if idx, ok := mb.ctors[key]; ok {
		return mb.buffers[idx], nil
	}
	buf := mb.newFunction("<" + mb.entities.Get(recordID).Name + ">")
	mb.ctors[key] = buf.idx
	for i := 0; i < arity; i++ {
		buf.emit(bytecode.OpLoadLocal)
		buf.emitU8(uint8(i))
	}
	buf.emit(bytecode.OpBundle)
	buf.emitU8(uint8(arity))
	buf.emit(bytecode.OpRet)
	return buf, nil
}

// variantConstructor mirrors recordConstructor for one tagged union
// variant: the synthesized function builds [tagOrdinal, Bundle(args...)].
func (mb *moduleBuilder) variantConstructor(unionID entity.ID, tag string, tagIdx, arity int) (*buffer, error) {
	key := ctorKey{entityID: unionID, tag: tag}
	if idx, ok := mb.ctors[key]; ok {
		return mb.buffers[idx], nil
	}
	buf := mb.newFunction("<" + mb.entities.Get(unionID).Name + "." + tag + ">")
	mb.ctors[key] = buf.idx

	idx, err := mb.addConst(bytecode.Const{Kind: bytecode.ConstInt, Int: int64(tagIdx)})
	if err != nil {
		return nil, err
	}
	buf.emit(bytecode.OpLoadConst)
	buf.emitU16(uint16(idx))
	for i := 0; i < arity; i++ {
		buf.emit(bytecode.OpLoadLocal)
		buf.emitU8(uint8(i))
	}
	buf.emit(bytecode.OpBundle)
	buf.emitU8(uint8(arity))
	buf.emit(bytecode.OpBundle)
	buf.emitU8(2)
	buf.emit(bytecode.OpRet)
	return buf, nil
}
