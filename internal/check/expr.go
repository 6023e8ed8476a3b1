package check

import (
	"sort"

	"github.com/catapillie/marin/internal/ast"
	"github.com/catapillie/marin/internal/diagnostics"
	"github.com/catapillie/marin/internal/entity"
	"github.com/catapillie/marin/internal/ir"
	"github.com/catapillie/marin/internal/pattern"
	"github.com/catapillie/marin/internal/token"
	"github.com/catapillie/marin/internal/types"
)

// checkExpr checks e, synthesizing its type bottom-up (§4.2.3). expected is
// an optional bidirectional hint, consulted only by the handful of forms
// that benefit from it (record-value literals gain nothing from it since
// they resolve structurally); most forms ignore it and let the caller
// unify the result afterward.
func (fc *fileChecker) checkExpr(e ast.Expression, expected *types.ID) ir.Expression {
	depth := fc.scope.Depth()
	a := fc.c.Arena
	loc := e.Span()

	switch e := e.(type) {
	case *ast.IntLiteral:
		return &ir.IntLit{Base: ir.Base{TypeID: a.New(types.Int{}, depth, loc), Loc: loc}, Value: e.Value}

	case *ast.FloatLiteral:
		return &ir.FloatLit{Base: ir.Base{TypeID: a.New(types.Float{}, depth, loc), Loc: loc}, Value: e.Value}

	case *ast.StringLiteral:
		return &ir.StringLit{Base: ir.Base{TypeID: a.New(types.String{}, depth, loc), Loc: loc}, Value: e.Value}

	case *ast.BoolLiteral:
		return &ir.BoolLit{Base: ir.Base{TypeID: a.New(types.Bool{}, depth, loc), Loc: loc}, Value: e.Value}

	case *ast.TupleExpr:
		if len(e.Items) == 1 {
			return fc.checkExpr(e.Items[0], expected)
		}
		items := make([]ir.Expression, len(e.Items))
		childTypes := make([]types.ID, len(e.Items))
		for i, item := range e.Items {
			items[i] = fc.checkExpr(item, nil)
			childTypes[i] = items[i].Type()
		}
		return &ir.TupleExpr{Base: ir.Base{TypeID: a.New(types.Tuple{Children: childTypes}, depth, loc), Loc: loc}, Items: items}

	case *ast.ArrayExpr:
		elem := a.Fresh(depth, loc)
		items := make([]ir.Expression, len(e.Items))
		for i, item := range e.Items {
			items[i] = fc.checkExpr(item, nil)
			if err := a.Unify(elem, items[i].Type()); err != nil {
				fc.reportMismatch(item.Span(), elem, items[i].Type())
			}
		}
		return &ir.ArrayExpr{Base: ir.Base{TypeID: a.New(types.Array{Child: elem}, depth, loc), Loc: loc}, Items: items, Elem: elem}

	case *ast.Identifier:
		return fc.checkRef(e.Name, loc, depth)

	case *ast.CallExpr:
		return fc.checkCallExpr(e, depth)

	case *ast.FunExpr:
		return fc.checkFunLiteral(e.Params, e.ReturnType, e.Body, depth, loc)

	case *ast.RecordValueExpr:
		return fc.checkRecordValueExpr(e, depth)

	case *ast.BinaryExpr:
		return fc.checkBinaryExpr(e, depth)

	case *ast.UnaryExpr:
		return fc.checkUnaryExpr(e, depth)

	case *ast.BlockExpr:
		return fc.checkBlockExpr(e, depth)

	case *ast.BreakExpr:
		return fc.checkBreakExpr(e, depth)

	case *ast.SkipExpr:
		return fc.checkSkipExpr(e, depth)

	case *ast.ConditionalExpr:
		return fc.checkConditionalExpr(e, depth)

	default:
		return &ir.TupleExpr{Base: ir.Base{TypeID: a.New(types.Tuple{}, depth, loc), Loc: loc}}
	}
}

// checkRef resolves an identifier against scope, instantiating a Variable's
// scheme, synthesizing a Record/Union constructor's function type on the
// fly, or instantiating a class item's signature and recording the fresh
// constraint it places on the enclosing let (§4.2.3, §4.2.4).
func (fc *fileChecker) checkRef(name string, loc token.Span, depth int) ir.Expression {
	a := fc.c.Arena
	id, ok := fc.resolveIdent(name)
	if !ok {
		fc.c.Batch.Add(diagnostics.NewError(diagnostics.UnknownBinding, phase, token.Token{Span: loc, Lexeme: name}, "unknown name '"+name+"'"))
		return &ir.Ref{Base: ir.Base{TypeID: a.Fresh(depth, loc), Loc: loc}, EntityID: id}
	}
	en := fc.c.Entities.Get(id)

	switch en.Kind {
	case entity.Variable:
		scheme := fc.c.Schemes.Get(en.Variable.SchemeID)
		body, constraints := a.Instantiate(scheme, depth, loc)

		if en.Variable.IsClassItem {
			if ref, ok := fc.resolveClassItem(name, body, constraints[0], loc); ok {
				return ref
			}
			// no matching instance is in scope yet: defer, same as any
			// other constraint, in case this reference itself sits inside
			// a body whose own enclosing let will generalize over it.
		}

		resolved := make([]entity.ID, len(constraints))
		for i := range resolved {
			resolved[i] = -1
		}
		for i, c := range constraints {
			fc.addConstraint(c, loc, resolved, i)
		}
		return &ir.Ref{Base: ir.Base{TypeID: body, Loc: loc}, EntityID: id, Constraints: constraints, ResolvedInstances: resolved}

	case entity.Record:
		rec := en.Record
		freshArgs := make([]types.ID, len(rec.TypeArgs))
		sub := make(map[types.ID]types.ID, len(rec.TypeArgs))
		for i, p := range rec.TypeArgs {
			freshArgs[i] = a.Fresh(depth, loc)
			sub[types.ID(p)] = freshArgs[i]
		}
		argTys := make([]types.ID, len(rec.Fields))
		for i, f := range rec.Fields {
			argTys[i] = substituteType(a, types.ID(f.TypeID), sub, depth, loc)
		}
		retTy := a.New(types.Record{EntityID: id, Args: freshArgs}, depth, loc)
		fnTy := a.New(types.Lambda{Args: argTys, Ret: retTy}, depth, loc)
		return &ir.Ref{Base: ir.Base{TypeID: fnTy, Loc: loc}, EntityID: id}

	case entity.Union:
		for i := range en.Union.Variants {
			if en.Union.Variants[i].Tag == name {
				return fc.buildVariantConstructor(id, &en.Union.Variants[i], depth, loc)
			}
		}
		fc.c.Batch.Add(diagnostics.NewError(diagnostics.NotVariable, phase, token.Token{Span: loc, Lexeme: name},
			"'"+name+"' names a union type, not a value"))
		return &ir.Ref{Base: ir.Base{TypeID: a.Fresh(depth, loc), Loc: loc}, EntityID: id}

	default:
		fc.c.Batch.Add(diagnostics.NewError(diagnostics.NotVariable, phase, token.Token{Span: loc, Lexeme: name},
			"'"+name+"' does not name a value"))
		return &ir.Ref{Base: ir.Base{TypeID: a.Fresh(depth, loc), Loc: loc}, EntityID: id}
	}
}

// resolveIdent looks name up through the ordinary (blocking-respecting)
// scope first; if that fails, it falls back to a scan that ignores
// blocking boundaries and, on success, records the crossing as a capture
// against each function literal whose boundary the lookup crossed, not
// just the innermost (§4.2.3: "captured entities ... are recorded on the
// function's IR node"). A reference three lambdas deep into an outer
// binding must be threaded through each intermediate lambda's own
// capture set too, or its closure would have nowhere to read the value
// from at lowering time.
func (fc *fileChecker) resolveIdent(name string) (entity.ID, bool) {
	if id, ok := fc.scope.Lookup(name); ok {
		return id, true
	}
	id, crossed, ok := fc.scope.FindAnyCrossing(name)
	if ok && crossed > 0 {
		for _, set := range fc.captures[len(fc.captures)-crossed:] {
			set[id] = true
		}
	}
	return id, ok
}

// buildVariantConstructor synthesizes the type of a reference to a union's
// tagged variant: a nullary tag is a value of the union type directly; a
// tag with arguments is a function producing one (§4.2.3). A variant tag
// is bound directly to its union's entity id in scope (§3), so the
// resulting Ref's EntityID names the union, not a separate per-tag entity.
func (fc *fileChecker) buildVariantConstructor(unionID entity.ID, variant *entity.VariantRef, depth int, loc token.Span) ir.Expression {
	a := fc.c.Arena
	en := fc.c.Entities.Get(unionID)
	freshArgs := make([]types.ID, len(en.Union.TypeArgs))
	sub := make(map[types.ID]types.ID, len(en.Union.TypeArgs))
	for i, p := range en.Union.TypeArgs {
		freshArgs[i] = a.Fresh(depth, loc)
		sub[types.ID(p)] = freshArgs[i]
	}
	argTys := make([]types.ID, len(variant.ArgsIDs))
	for i, id := range variant.ArgsIDs {
		argTys[i] = substituteType(a, types.ID(id), sub, depth, loc)
	}
	retTy := a.New(types.Union{EntityID: unionID, Args: freshArgs}, depth, loc)
	if len(argTys) == 0 {
		return &ir.Ref{Base: ir.Base{TypeID: retTy, Loc: loc}, EntityID: unionID, Tag: variant.Tag}
	}
	fnTy := a.New(types.Lambda{Args: argTys, Ret: retTy}, depth, loc)
	return &ir.Ref{Base: ir.Base{TypeID: fnTy, Loc: loc}, EntityID: unionID, Tag: variant.Tag}
}

func (fc *fileChecker) checkCallExpr(e *ast.CallExpr, depth int) ir.Expression {
	a := fc.c.Arena
	callee := fc.checkExpr(e.Callee, nil)
	args := make([]ir.Expression, len(e.Args))
	argTys := make([]types.ID, len(e.Args))
	for i, arg := range e.Args {
		args[i] = fc.checkExpr(arg, nil)
		argTys[i] = args[i].Type()
	}
	ret := a.Fresh(depth, e.Span())
	expectedFn := a.New(types.Lambda{Args: argTys, Ret: ret}, depth, e.Span())
	if err := a.Unify(callee.Type(), expectedFn); err != nil {
		fc.reportMismatch(e.Span(), callee.Type(), expectedFn)
	}
	return &ir.Call{Base: ir.Base{TypeID: ret, Loc: e.Span()}, Callee: callee, Args: args}
}

// checkFunLiteral checks a function literal's parameters and body, shared
// by *ast.FunExpr and the `let name(params) => body` shorthand (§4.2.3):
// it opens a blocking scope frame so the body's own lookups stop at this
// boundary, binds each irrefutable parameter pattern, and records which
// outer entities the body ends up capturing across that boundary.
func (fc *fileChecker) checkFunLiteral(params []*ast.Param, retType ast.TypeExpr, bodyExpr ast.Expression, depth int, loc token.Span) *ir.Fun {
	a := fc.c.Arena
	fc.scope.Push(true, depth)
	defer fc.scope.Pop()

	fc.captures = append(fc.captures, make(map[entity.ID]bool))

	irParams := make([]ir.Param, len(params))
	argTys := make([]types.ID, len(params))
	for i, p := range params {
		var ty types.ID
		if p.Type != nil {
			ty = fc.resolveTypeExpr(p.Type, nil, depth)
		} else {
			ty = a.Fresh(depth, p.Pattern.Span())
		}
		pat, bound := fc.checkPattern(p.Pattern, ty, depth)
		if !pattern.Irrefutable(pat) {
			fc.c.Batch.Add(diagnostics.NewError(diagnostics.RefutablePattern, phase,
				token.Token{Span: p.Pattern.Span()}, "function parameters must be irrefutable"))
		}
		irParams[i] = ir.Param{Pattern: pat, TypeID: ty, Bound: bound}
		argTys[i] = ty
	}

	body := fc.checkExpr(bodyExpr, nil)
	if retType != nil {
		expectedRet := fc.resolveTypeExpr(retType, nil, depth)
		if err := a.Unify(expectedRet, body.Type()); err != nil {
			fc.reportMismatch(bodyExpr.Span(), expectedRet, body.Type())
		}
	}

	captureSet := fc.captures[len(fc.captures)-1]
	fc.captures = fc.captures[:len(fc.captures)-1]
	captures := make([]entity.ID, 0, len(captureSet))
	for id := range captureSet {
		captures = append(captures, id)
	}
	sort.Slice(captures, func(i, j int) bool { return captures[i] < captures[j] })

	fnTy := a.New(types.Lambda{Args: argTys, Ret: body.Type()}, depth, loc)
	return &ir.Fun{Base: ir.Base{TypeID: fnTy, Loc: loc}, Params: irParams, Body: body, Captures: captures}
}

// checkRecordValueExpr resolves `{ field = value, ... }` by searching the
// entity table for records whose field set admits every supplied name
// (§4.2.3, §5): zero candidates is no_admissible_records, more than one is
// ambiguous_record (continuing with the first to keep checking the rest
// of the file), and any field the chosen record declares but the literal
// omits is uninitialized_fields.
func (fc *fileChecker) checkRecordValueExpr(e *ast.RecordValueExpr, depth int) ir.Expression {
	a := fc.c.Arena
	loc := e.Span()

	given := make([]string, len(e.Fields))
	values := make(map[string]ir.Expression, len(e.Fields))
	for i, f := range e.Fields {
		given[i] = f.Name
		values[f.Name] = fc.checkExpr(f.Value, nil)
	}

	candidates := fc.admissibleRecords(given)
	if len(candidates) == 0 {
		fc.c.Batch.Add(diagnostics.NewError(diagnostics.NoAdmissibleRecords, phase, e.Tok,
			"no record type has all of these fields"))
		return &ir.RecordValueExpr{Base: ir.Base{TypeID: a.Fresh(depth, loc), Loc: loc}}
	}
	if len(candidates) > 1 {
		fc.c.Batch.Add(diagnostics.NewError(diagnostics.AmbiguousRecord, phase, e.Tok,
			"more than one record type has all of these fields"))
	}
	recordID := candidates[0]
	rec := fc.c.Entities.Get(recordID).Record

	freshArgs := make([]types.ID, len(rec.TypeArgs))
	sub := make(map[types.ID]types.ID, len(rec.TypeArgs))
	for i, p := range rec.TypeArgs {
		freshArgs[i] = a.Fresh(depth, loc)
		sub[types.ID(p)] = freshArgs[i]
	}

	fields := make([]ir.Expression, len(rec.Fields))
	for i, f := range rec.Fields {
		val, ok := values[f.Name]
		if !ok {
			fc.c.Batch.Add(diagnostics.NewError(diagnostics.UninitializedFields, phase, e.Tok,
				"field '"+f.Name+"' is not initialized"))
			fields[i] = &ir.TupleExpr{Base: ir.Base{TypeID: a.Fresh(depth, loc), Loc: loc}}
			continue
		}
		expectedTy := substituteType(a, types.ID(f.TypeID), sub, depth, loc)
		if err := a.Unify(expectedTy, val.Type()); err != nil {
			fc.reportMismatch(e.Tok.Span, expectedTy, val.Type())
		}
		fields[i] = val
	}

	ty := a.New(types.Record{EntityID: recordID, Args: freshArgs}, depth, loc)
	return &ir.RecordValueExpr{Base: ir.Base{TypeID: ty, Loc: loc}, RecordID: recordID, Fields: fields}
}

var numericOps = map[string]bool{"+": true, "-": true, "*": true, "/": true}
var comparisonOps = map[string]bool{"<": true, "<=": true, ">": true, ">=": true}
var equalityOps = map[string]bool{"==": true, "!=": true}
var booleanOps = map[string]bool{"&&": true, "||": true}

func (fc *fileChecker) checkBinaryExpr(e *ast.BinaryExpr, depth int) ir.Expression {
	a := fc.c.Arena
	loc := e.Span()
	left := fc.checkExpr(e.Left, nil)
	right := fc.checkExpr(e.Right, nil)

	var resultTy types.ID
	switch {
	case numericOps[e.Op]:
		if err := a.Unify(left.Type(), right.Type()); err != nil {
			fc.reportMismatch(loc, left.Type(), right.Type())
		}
		resultTy = left.Type()
	case comparisonOps[e.Op]:
		if err := a.Unify(left.Type(), right.Type()); err != nil {
			fc.reportMismatch(loc, left.Type(), right.Type())
		}
		resultTy = a.New(types.Bool{}, depth, loc)
	case equalityOps[e.Op]:
		if err := a.Unify(left.Type(), right.Type()); err != nil {
			fc.reportMismatch(loc, left.Type(), right.Type())
		}
		resultTy = a.New(types.Bool{}, depth, loc)
	case booleanOps[e.Op]:
		boolTy := a.New(types.Bool{}, depth, loc)
		if err := a.Unify(left.Type(), boolTy); err != nil {
			fc.reportMismatch(e.Left.Span(), boolTy, left.Type())
		}
		if err := a.Unify(right.Type(), boolTy); err != nil {
			fc.reportMismatch(e.Right.Span(), boolTy, right.Type())
		}
		resultTy = boolTy
	default:
		resultTy = a.Fresh(depth, loc)
	}

	return &ir.BinaryExpr{Base: ir.Base{TypeID: resultTy, Loc: loc}, Op: e.Op, Left: left, Right: right}
}

func (fc *fileChecker) checkUnaryExpr(e *ast.UnaryExpr, depth int) ir.Expression {
	a := fc.c.Arena
	loc := e.Span()
	operand := fc.checkExpr(e.Operand, nil)

	var resultTy types.ID
	switch e.Op {
	case "!":
		boolTy := a.New(types.Bool{}, depth, loc)
		if err := a.Unify(operand.Type(), boolTy); err != nil {
			fc.reportMismatch(e.Operand.Span(), boolTy, operand.Type())
		}
		resultTy = boolTy
	default: // "-"
		resultTy = operand.Type()
	}

	return &ir.UnaryExpr{Base: ir.Base{TypeID: resultTy, Loc: loc}, Op: e.Op, Operand: operand}
}

// checkBlockExpr checks `do [label:] stmt*; expr end` (§4.2.3): it opens a
// label for `break`/`skip` to target, whose type unifies with both every
// break value reaching it and the value the block produces by falling
// through its last statement.
func (fc *fileChecker) checkBlockExpr(e *ast.BlockExpr, depth int) ir.Expression {
	a := fc.c.Arena
	loc := e.Span()

	labelTy := a.Fresh(depth, loc)
	lbl := fc.labels.Push(e.Label, int(labelTy), false, loc)
	defer fc.labels.Pop()

	fc.scope.Push(false, depth)
	defer fc.scope.Pop()

	items := make([]ir.Statement, 0, len(e.Items))
	var fallthroughTy types.ID
	for i, s := range e.Items {
		switch s := s.(type) {
		case *ast.LetStatement:
			let := fc.checkLetStatement(s, fc.scope.Depth())
			items = append(items, let)
			fallthroughTy = 0
		case *ast.ExpressionStatement:
			expr, cs := fc.checkWithConstraints(func() ir.Expression {
				return fc.checkExpr(s.Expr, nil)
			})
			fc.reportUnresolved(cs, s.Expr.Span())
			items = append(items, &ir.ExpressionStatement{Expr: expr})
			if i == len(e.Items)-1 {
				fallthroughTy = expr.Type()
			}
		}
	}

	if fallthroughTy == 0 {
		fallthroughTy = a.New(types.Tuple{}, depth, loc)
	}
	if err := a.Unify(labelTy, fallthroughTy); err != nil {
		fc.reportMismatch(loc, labelTy, fallthroughTy)
	}

	return &ir.Block{Base: ir.Base{TypeID: labelTy, Loc: loc}, Label: &lbl.ID, Items: items}
}

func (fc *fileChecker) checkBreakExpr(e *ast.BreakExpr, depth int) ir.Expression {
	a := fc.c.Arena
	loc := e.Span()

	lbl, ok := fc.labels.Resolve(e.Label)
	if !ok {
		fc.c.Batch.Add(diagnostics.NewError(diagnostics.InvalidBreak, phase, e.Tok, "'break' outside any block or loop"))
		return &ir.Break{Base: ir.Base{TypeID: a.New(types.Tuple{}, depth, loc), Loc: loc}}
	}

	var value ir.Expression
	if e.Value != nil {
		value = fc.checkExpr(e.Value, nil)
		if err := a.Unify(types.ID(lbl.TypeID), value.Type()); err != nil {
			fc.reportMismatch(e.Value.Span(), types.ID(lbl.TypeID), value.Type())
		}
	} else {
		unit := a.New(types.Tuple{}, depth, loc)
		if err := a.Unify(types.ID(lbl.TypeID), unit); err != nil {
			fc.reportMismatch(loc, types.ID(lbl.TypeID), unit)
		}
	}

	return &ir.Break{Base: ir.Base{TypeID: a.New(types.Tuple{}, depth, loc), Loc: loc}, Label: lbl.ID, Value: value}
}

func (fc *fileChecker) checkSkipExpr(e *ast.SkipExpr, depth int) ir.Expression {
	a := fc.c.Arena
	loc := e.Span()

	lbl, ok := fc.labels.Resolve(e.Label)
	if !ok {
		fc.c.Batch.Add(diagnostics.NewError(diagnostics.InvalidSkip, phase, e.Tok, "'skip' outside any loop"))
		return &ir.Skip{Base: ir.Base{TypeID: a.New(types.Tuple{}, depth, loc), Loc: loc}}
	}
	if !lbl.Skippable {
		fc.c.Batch.Add(diagnostics.NewError(diagnostics.UnskippableBlock, phase, e.Tok, "this block is not a loop and cannot be skipped"))
	}

	return &ir.Skip{Base: ir.Base{TypeID: a.New(types.Tuple{}, depth, loc), Loc: loc}, Label: lbl.ID}
}
