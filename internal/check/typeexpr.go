package check

import (
	"github.com/catapillie/marin/internal/ast"
	"github.com/catapillie/marin/internal/diagnostics"
	"github.com/catapillie/marin/internal/entity"
	"github.com/catapillie/marin/internal/token"
	"github.com/catapillie/marin/internal/types"
)

// resolveTypeExpr turns a syntactic type annotation into a types.ID (§4.2).
// typeParams maps a declaration's own type-parameter names to the arena ids
// standing for them, consulted before the entity table so a parameter can
// shadow an outer user type of the same name.
func (fc *fileChecker) resolveTypeExpr(te ast.TypeExpr, typeParams map[string]types.ID, depth int) types.ID {
	a := fc.c.Arena
	switch te := te.(type) {
	case *ast.NamedTypeExpr:
		if v, ok := typeParams[te.Name]; ok {
			return v
		}
		switch te.Name {
		case "Int":
			return a.New(types.Int{}, depth, te.Span())
		case "Float":
			return a.New(types.Float{}, depth, te.Span())
		case "Bool":
			return a.New(types.Bool{}, depth, te.Span())
		case "String":
			return a.New(types.String{}, depth, te.Span())
		}

		id, ok := fc.scope.Lookup(te.Name)
		if !ok {
			fc.c.Batch.Add(diagnostics.NewError(diagnostics.UnknownBinding, phase, te.Tok,
				"unknown type '"+te.Name+"'"))
			return a.Fresh(depth, te.Span())
		}
		en := fc.c.Entities.Get(id)
		switch en.Kind {
		case entity.Record:
			return a.New(types.Record{EntityID: id, Args: fc.resolveTypeArgs(te.Args, en.Record.TypeArgs, typeParams, depth, te.Span())}, depth, te.Span())
		case entity.Union:
			return a.New(types.Union{EntityID: id, Args: fc.resolveTypeArgs(te.Args, en.Union.TypeArgs, typeParams, depth, te.Span())}, depth, te.Span())
		case entity.Alias:
			args := fc.resolveTypeArgs(te.Args, en.Alias.TypeArgs, typeParams, depth, te.Span())
			sub := make(map[types.ID]types.ID, len(en.Alias.TypeArgs))
			for i, p := range en.Alias.TypeArgs {
				sub[types.ID(p)] = args[i]
			}
			return substituteType(a, types.ID(en.Alias.Target), sub, depth, te.Span())
		default:
			fc.c.Batch.Add(diagnostics.NewError(diagnostics.InvalidType, phase, te.Tok,
				"'"+te.Name+"' does not name a type"))
			return a.Fresh(depth, te.Span())
		}

	case *ast.TupleTypeExpr:
		children := make([]types.ID, len(te.Items))
		for i, item := range te.Items {
			children[i] = fc.resolveTypeExpr(item, typeParams, depth)
		}
		return a.New(types.Tuple{Children: children}, depth, te.Span())

	case *ast.ArrayTypeExpr:
		return a.New(types.Array{Child: fc.resolveTypeExpr(te.Elem, typeParams, depth)}, depth, te.Span())

	case *ast.LambdaTypeExpr:
		args := make([]types.ID, len(te.Params))
		for i, p := range te.Params {
			args[i] = fc.resolveTypeExpr(p, typeParams, depth)
		}
		return a.New(types.Lambda{Args: args, Ret: fc.resolveTypeExpr(te.Result, typeParams, depth)}, depth, te.Span())

	default:
		return a.Fresh(depth, te.Span())
	}
}

// resolveTypeArgs resolves the explicit type arguments supplied at a usage
// site against the entity's own declared parameter count, synthesizing
// fresh inference variables for any omitted argument so that e.g. `Box`
// used without explicit arguments still type-checks, to be pinned down by
// later unification.
func (fc *fileChecker) resolveTypeArgs(given []ast.TypeExpr, declared []int, typeParams map[string]types.ID, depth int, loc token.Span) []types.ID {
	if len(given) > 0 {
		out := make([]types.ID, len(given))
		for i, g := range given {
			out[i] = fc.resolveTypeExpr(g, typeParams, depth)
		}
		return out
	}
	out := make([]types.ID, len(declared))
	for i := range declared {
		out[i] = fc.c.Arena.Fresh(depth, loc)
	}
	return out
}

// substituteType rebuilds x's term with every id in sub replaced by its
// mapped id, allocating fresh nodes for every compound term along the way.
// It implements the same structural copy types.Arena's unexported
// Instantiate/copyWith pair performs for scheme instantiation, exposed here
// for alias expansion, which substitutes a caller-supplied mapping rather
// than one derived from a Scheme's Forall list.
func substituteType(a *types.Arena, x types.ID, sub map[types.ID]types.ID, depth int, loc token.Span) types.ID {
	r := a.Find(x)
	if fresh, ok := sub[r]; ok {
		return fresh
	}
	switch t := a.Term(r).(type) {
	case types.Var, types.Int, types.Float, types.Bool, types.String:
		return r
	case types.Tuple:
		children := make([]types.ID, len(t.Children))
		for i, c := range t.Children {
			children[i] = substituteType(a, c, sub, depth, loc)
		}
		return a.New(types.Tuple{Children: children}, depth, loc)
	case types.Array:
		return a.New(types.Array{Child: substituteType(a, t.Child, sub, depth, loc)}, depth, loc)
	case types.Lambda:
		args := make([]types.ID, len(t.Args))
		for i, arg := range t.Args {
			args[i] = substituteType(a, arg, sub, depth, loc)
		}
		return a.New(types.Lambda{Args: args, Ret: substituteType(a, t.Ret, sub, depth, loc)}, depth, loc)
	case types.Record:
		args := make([]types.ID, len(t.Args))
		for i, arg := range t.Args {
			args[i] = substituteType(a, arg, sub, depth, loc)
		}
		return a.New(types.Record{EntityID: t.EntityID, Args: args}, depth, loc)
	case types.Union:
		args := make([]types.ID, len(t.Args))
		for i, arg := range t.Args {
			args[i] = substituteType(a, arg, sub, depth, loc)
		}
		return a.New(types.Union{EntityID: t.EntityID, Args: args}, depth, loc)
	default:
		return r
	}
}
