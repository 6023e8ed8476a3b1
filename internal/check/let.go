package check

import (
	"github.com/catapillie/marin/internal/ast"
	"github.com/catapillie/marin/internal/diagnostics"
	"github.com/catapillie/marin/internal/entity"
	"github.com/catapillie/marin/internal/ir"
	"github.com/catapillie/marin/internal/pattern"
	"github.com/catapillie/marin/internal/token"
	"github.com/catapillie/marin/internal/types"
)

// checkLetStatement checks `let pattern [(params)] => body` (§4.2.1-
// §4.2.2). A single bound name (the common `let f = ...` / `let f(x) =>
// ...` shapes) is pre-reserved before its body is checked so it can refer
// to itself, and its final type is generalized into a polymorphic scheme
// at depth once the body is fully checked. A destructuring pattern (tuple,
// record, discard) has no single name to pre-reserve, so it supports no
// self-reference, and each name it binds gets its pattern-matched type
// directly rather than a generalized scheme: polymorphic destructuring
// bindings would need attributing the body's pending constraints to each
// component independently, which this checker does not attempt.
func (fc *fileChecker) checkLetStatement(s *ast.LetStatement, depth int) *ir.LetStatement {
	bodyDepth := depth + 1
	bind, isBinding := s.Pattern.(*ast.BindingPattern)

	var selfID entity.ID
	var selfData *entity.VariableData
	if isBinding {
		selfTy := fc.c.Arena.Fresh(bodyDepth, s.Span())
		selfData = &entity.VariableData{SchemeID: fc.c.Schemes.Add(types.Monomorphic(selfTy))}
		selfID = fc.c.Entities.Add(entity.Entity{
			Kind: entity.Variable, Name: bind.Name, Loc: bind.Span(),
			Variable: selfData,
		})
		fc.scope.Bind(bind.Name, selfID)
	}

	var body ir.Expression
	var constraints []types.Constraint
	if s.Params != nil {
		body, constraints = fc.checkWithConstraints(func() ir.Expression {
			return fc.checkFunLiteral(s.Params, nil, s.Body, bodyDepth, s.Span())
		})
	} else {
		body, constraints = fc.checkWithConstraints(func() ir.Expression {
			return fc.checkExpr(s.Body, nil)
		})
	}

	var pat pattern.Pattern
	var bound []entity.ID
	if isBinding {
		selfScheme := fc.c.Schemes.Get(selfData.SchemeID)
		if err := fc.c.Arena.Unify(selfScheme.Body, body.Type()); err != nil {
			fc.reportMismatch(s.Span(), selfScheme.Body, body.Type())
		}
		scheme := fc.c.Arena.Generalize(depth, body.Type(), constraints)
		selfData.SchemeID = fc.c.Schemes.Add(scheme)
		pat = pattern.Binding{Name: bind.Name}
		bound = []entity.ID{selfID}
	} else {
		fc.reportUnresolved(constraints, s.Span())
		pat, bound = fc.checkPattern(s.Pattern, body.Type(), bodyDepth)
		if !pattern.Irrefutable(pat) {
			fc.c.Batch.Add(diagnostics.NewError(diagnostics.RefutablePattern, phase,
				token.Token{Span: s.Pattern.Span()}, "let bindings must be irrefutable"))
		}
	}

	return &ir.LetStatement{Loc: s.Span(), Pattern: pat, Bound: bound, Body: body}
}
