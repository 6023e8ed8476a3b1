package check

import (
	"github.com/catapillie/marin/internal/ast"
	"github.com/catapillie/marin/internal/diagnostics"
	"github.com/catapillie/marin/internal/entity"
	"github.com/catapillie/marin/internal/ir"
	"github.com/catapillie/marin/internal/pattern"
	"github.com/catapillie/marin/internal/types"
)

// checkConditionalExpr checks a chain of `if`/`while`/`loop`/`match`/`else`
// branches tried in order (§4.2.3). Every branch's body is unified into one
// shared result type; the chain is exhaustive as soon as some prefix
// guarantees a branch is taken (an `else`, a `loop`, or a `match` whose
// cases cover the scrutinee exhaustively), after which any further branch
// is unreachable. If no branch settles it, falling through contributes an
// implicit unit value to the result type.
func (fc *fileChecker) checkConditionalExpr(e *ast.ConditionalExpr, depth int) ir.Expression {
	a := fc.c.Arena
	loc := e.Span()
	resultTy := a.Fresh(depth, loc)

	branches := make([]ir.Branch, len(e.Branches))
	settled := false

	for i, b := range e.Branches {
		if settled {
			fc.c.Batch.Add(diagnostics.New(diagnostics.UnreachableConditionalBranches, diagnostics.Warning, phase, b.Tok.Span,
				"this branch is unreachable: an earlier branch always matches"))
		}

		switch b.Kind {
		case ast.BranchIf:
			branches[i] = fc.checkIfOrWhileBranch(b, ir.BranchIf, resultTy, depth)
		case ast.BranchWhile:
			branches[i] = fc.checkIfOrWhileBranch(b, ir.BranchWhile, resultTy, depth)
		case ast.BranchLoop:
			branches[i] = fc.checkLoopBranch(b, resultTy, depth)
			settled = true
		case ast.BranchElse:
			body := fc.checkExpr(b.Body, nil)
			if err := a.Unify(resultTy, body.Type()); err != nil {
				fc.reportMismatch(b.Body.Span(), resultTy, body.Type())
			}
			branches[i] = ir.Branch{Kind: ir.BranchElse, Body: body}
			settled = true
		case ast.BranchMatch:
			branch, exhaustive := fc.checkMatchBranch(b, resultTy, depth)
			branches[i] = branch
			if exhaustive {
				settled = true
			}
		}
	}

	if !settled {
		unit := a.New(types.Tuple{}, depth, loc)
		if err := a.Unify(resultTy, unit); err != nil {
			fc.reportMismatch(loc, resultTy, unit)
		}
	}

	return &ir.Conditional{Base: ir.Base{TypeID: resultTy, Loc: loc}, Branches: branches, Exhaustive: settled}
}

func (fc *fileChecker) checkIfOrWhileBranch(b ast.Branch, kind ir.BranchKind, resultTy types.ID, depth int) ir.Branch {
	a := fc.c.Arena
	boolTy := a.New(types.Bool{}, depth, b.Tok.Span)
	cond := fc.checkExpr(b.Condition, nil)
	if err := a.Unify(boolTy, cond.Type()); err != nil {
		fc.reportMismatch(b.Condition.Span(), boolTy, cond.Type())
	}

	var body ir.Expression
	var labelID entity.LabelID
	if kind == ir.BranchWhile {
		loopTy := a.Fresh(depth, b.Tok.Span)
		lbl := fc.labels.Push("", int(loopTy), true, b.Tok.Span)
		labelID = lbl.ID
		body = fc.checkExpr(b.Body, nil)
		fc.labels.Pop()
		if err := a.Unify(resultTy, loopTy); err != nil {
			fc.reportMismatch(b.Body.Span(), resultTy, loopTy)
		}
	} else {
		body = fc.checkExpr(b.Body, nil)
		if err := a.Unify(resultTy, body.Type()); err != nil {
			fc.reportMismatch(b.Body.Span(), resultTy, body.Type())
		}
	}

	return ir.Branch{Kind: kind, Condition: cond, Body: body, Label: labelID}
}

func (fc *fileChecker) checkLoopBranch(b ast.Branch, resultTy types.ID, depth int) ir.Branch {
	a := fc.c.Arena
	loopTy := a.Fresh(depth, b.Tok.Span)
	lbl := fc.labels.Push("", int(loopTy), true, b.Tok.Span)
	body := fc.checkExpr(b.Body, nil)
	fc.labels.Pop()
	if err := a.Unify(resultTy, loopTy); err != nil {
		fc.reportMismatch(b.Body.Span(), resultTy, loopTy)
	}
	return ir.Branch{Kind: ir.BranchLoop, Body: body, Label: lbl.ID}
}

// checkMatchBranch checks one `match scrutinee case pat [if guard] => body
// ...` branch and returns whether it alone exhausts every possibility of
// its scrutinee.
func (fc *fileChecker) checkMatchBranch(b ast.Branch, resultTy types.ID, depth int) (ir.Branch, bool) {
	a := fc.c.Arena
	scrutinee := fc.checkExpr(b.Scrutinee, nil)

	cases := make([]ir.MatchCase, len(b.Cases))
	checkedPatterns := make([]pattern.Pattern, len(b.Cases))
	for i, c := range b.Cases {
		fc.scope.Push(false, depth)
		pat, bound := fc.checkPattern(c.Pattern, scrutinee.Type(), depth)
		checkedPatterns[i] = pat

		var guard ir.Expression
		if c.Guard != nil {
			boolTy := a.New(types.Bool{}, depth, c.Guard.Span())
			guard = fc.checkExpr(c.Guard, nil)
			if err := a.Unify(boolTy, guard.Type()); err != nil {
				fc.reportMismatch(c.Guard.Span(), boolTy, guard.Type())
			}
		}

		body := fc.checkExpr(c.Body, nil)
		fc.scope.Pop()

		if err := a.Unify(resultTy, body.Type()); err != nil {
			fc.reportMismatch(c.Body.Span(), resultTy, body.Type())
		}
		cases[i] = ir.MatchCase{Pattern: pat, Bound: bound, Guard: guard, Body: body}
	}

	cov := pattern.Analyze(checkedPatterns, fc.unionTags)
	for _, idx := range cov.Unreachable {
		fc.c.Batch.Add(diagnostics.New(diagnostics.UnreachableConditionalBranches, diagnostics.Warning, phase, b.Cases[idx].Tok.Span,
			"this case is unreachable: an earlier case always matches"))
	}
	if !cov.Exhaustive {
		fc.c.Batch.Add(diagnostics.New(diagnostics.NonExhaustiveConditional, diagnostics.Warning, phase, b.Tok.Span,
			"this match does not cover every case"))
	}

	return ir.Branch{
		Kind:      ir.BranchMatch,
		Scrutinee: scrutinee,
		Cases:     cases,
		Coverage:  &cov,
	}, cov.Exhaustive
}

// unionTags implements pattern.UnionLookup against the entity table.
func (fc *fileChecker) unionTags(id entity.ID) []string {
	en := fc.c.Entities.Get(id)
	if en.Kind != entity.Union {
		return nil
	}
	tags := make([]string, len(en.Union.Variants))
	for i, v := range en.Union.Variants {
		tags[i] = v.Tag
	}
	return tags
}
