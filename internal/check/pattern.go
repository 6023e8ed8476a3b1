package check

import (
	"github.com/catapillie/marin/internal/ast"
	"github.com/catapillie/marin/internal/diagnostics"
	"github.com/catapillie/marin/internal/entity"
	"github.com/catapillie/marin/internal/pattern"
	"github.com/catapillie/marin/internal/types"
)

// checkPattern compiles a syntactic pattern against an expected type,
// binding every name it introduces into the current (caller-pushed) scope
// frame, and returns the resolved pattern.Pattern tree together with the
// entity ids it bound, in the same left-to-right order pattern.BoundNames
// would produce (§4.3).
func (fc *fileChecker) checkPattern(p ast.Pattern, expected types.ID, depth int) (pattern.Pattern, []entity.ID) {
	a := fc.c.Arena
	switch p := p.(type) {
	case *ast.MissingPattern:
		return pattern.Missing{}, nil

	case *ast.DiscardPattern:
		return pattern.Discard{}, nil

	case *ast.BindingPattern:
		id := fc.c.Entities.Add(entity.Entity{
			Kind:     entity.Variable,
			Name:     p.Name,
			Loc:      p.Span(),
			Variable: &entity.VariableData{SchemeID: fc.c.Schemes.Add(types.Monomorphic(expected))},
		})
		fc.scope.Bind(p.Name, id)
		return pattern.Binding{Name: p.Name}, []entity.ID{id}

	case *ast.LiteralPattern:
		lit := fc.checkLiteralPattern(p, expected, depth)
		return lit, nil

	case *ast.TuplePattern:
		items := make([]types.ID, len(p.Items))
		for i := range items {
			items[i] = a.Fresh(depth, p.Span())
		}
		tupleTy := a.New(types.Tuple{Children: items}, depth, p.Span())
		if err := a.Unify(expected, tupleTy); err != nil {
			fc.reportMismatch(p.Span(), expected, tupleTy)
		}
		subs := make([]pattern.Pattern, len(p.Items))
		var bound []entity.ID
		for i, item := range p.Items {
			sub, ids := fc.checkPattern(item, items[i], depth)
			subs[i] = sub
			bound = append(bound, ids...)
		}
		return pattern.Tuple{Items: subs}, bound

	case *ast.VariantPattern:
		return fc.checkVariantPattern(p, expected, depth)

	case *ast.RecordPattern:
		return fc.checkRecordPattern(p, expected, depth)

	default:
		return pattern.Missing{}, nil
	}
}

func (fc *fileChecker) checkLiteralPattern(p *ast.LiteralPattern, expected types.ID, depth int) pattern.Literal {
	a := fc.c.Arena
	switch v := p.Value.(type) {
	case int64:
		if err := a.Unify(expected, a.New(types.Int{}, depth, p.Span())); err != nil {
			fc.reportMismatch(p.Span(), expected, a.New(types.Int{}, depth, p.Span()))
		}
		return pattern.Literal{Kind: pattern.LitInt, Int: v}
	case float64:
		if err := a.Unify(expected, a.New(types.Float{}, depth, p.Span())); err != nil {
			fc.reportMismatch(p.Span(), expected, a.New(types.Float{}, depth, p.Span()))
		}
		return pattern.Literal{Kind: pattern.LitFloat, Float: v}
	case string:
		if err := a.Unify(expected, a.New(types.String{}, depth, p.Span())); err != nil {
			fc.reportMismatch(p.Span(), expected, a.New(types.String{}, depth, p.Span()))
		}
		return pattern.Literal{Kind: pattern.LitString, Str: v}
	case bool:
		if err := a.Unify(expected, a.New(types.Bool{}, depth, p.Span())); err != nil {
			fc.reportMismatch(p.Span(), expected, a.New(types.Bool{}, depth, p.Span()))
		}
		return pattern.Literal{Kind: pattern.LitBool, Bool: v}
	default:
		return pattern.Literal{}
	}
}

func (fc *fileChecker) checkVariantPattern(p *ast.VariantPattern, expected types.ID, depth int) (pattern.Pattern, []entity.ID) {
	a := fc.c.Arena
	unionID, ok := fc.scope.Lookup(p.Tag)
	if !ok {
		fc.c.Batch.Add(diagnostics.NewError(diagnostics.UnknownVariant, phase, p.Tok, "unknown variant '"+p.Tag+"'"))
		return pattern.Missing{}, nil
	}
	en := fc.c.Entities.Get(unionID)
	if en.Kind != entity.Union {
		fc.c.Batch.Add(diagnostics.NewError(diagnostics.UnknownVariant, phase, p.Tok, "'"+p.Tag+"' is not a variant"))
		return pattern.Missing{}, nil
	}

	var variant *entity.VariantRef
	for i := range en.Union.Variants {
		if en.Union.Variants[i].Tag == p.Tag {
			variant = &en.Union.Variants[i]
			break
		}
	}
	if variant == nil {
		fc.c.Batch.Add(diagnostics.NewError(diagnostics.UnknownVariant, phase, p.Tok, "'"+p.Tag+"' is not a variant of this union"))
		return pattern.Missing{}, nil
	}

	freshArgs := make([]types.ID, len(en.Union.TypeArgs))
	sub := make(map[types.ID]types.ID, len(en.Union.TypeArgs))
	for i, param := range en.Union.TypeArgs {
		freshArgs[i] = a.Fresh(depth, p.Span())
		sub[types.ID(param)] = freshArgs[i]
	}
	unionTy := a.New(types.Union{EntityID: unionID, Args: freshArgs}, depth, p.Span())
	if err := a.Unify(expected, unionTy); err != nil {
		fc.reportMismatch(p.Span(), expected, unionTy)
	}

	if len(p.Args) != len(variant.ArgsIDs) {
		fc.c.Batch.Add(diagnostics.NewError(diagnostics.IncorrectVariantArgs, phase, p.Tok,
			"variant '"+p.Tag+"' expects a different number of arguments"))
	}

	n := len(p.Args)
	if len(variant.ArgsIDs) < n {
		n = len(variant.ArgsIDs)
	}
	subs := make([]pattern.Pattern, 0, n)
	var bound []entity.ID
	for i := 0; i < n; i++ {
		argTy := substituteType(a, types.ID(variant.ArgsIDs[i]), sub, depth, p.Span())
		sp, ids := fc.checkPattern(p.Args[i], argTy, depth)
		subs = append(subs, sp)
		bound = append(bound, ids...)
	}

	return pattern.Variant{UnionID: unionID, Tag: p.Tag, Args: subs}, bound
}

func (fc *fileChecker) checkRecordPattern(p *ast.RecordPattern, expected types.ID, depth int) (pattern.Pattern, []entity.ID) {
	a := fc.c.Arena
	given := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		given[i] = f.Name
	}

	candidates := fc.admissibleRecords(given)
	if len(candidates) == 0 {
		fc.c.Batch.Add(diagnostics.NewError(diagnostics.NoAdmissibleRecords, phase, p.Tok,
			"no record type has all of these fields"))
		return pattern.Missing{}, nil
	}
	if len(candidates) > 1 {
		fc.c.Batch.Add(diagnostics.NewError(diagnostics.AmbiguousRecord, phase, p.Tok,
			"more than one record type matches this pattern"))
	}
	recordID := candidates[0]
	rec := fc.c.Entities.Get(recordID).Record

	freshArgs := make([]types.ID, len(rec.TypeArgs))
	sub := make(map[types.ID]types.ID, len(rec.TypeArgs))
	for i, param := range rec.TypeArgs {
		freshArgs[i] = a.Fresh(depth, p.Span())
		sub[types.ID(param)] = freshArgs[i]
	}
	recordTy := a.New(types.Record{EntityID: recordID, Args: freshArgs}, depth, p.Span())
	if err := a.Unify(expected, recordTy); err != nil {
		fc.reportMismatch(p.Span(), expected, recordTy)
	}

	fields := make([]pattern.FieldPattern, len(p.Fields))
	var bound []entity.ID
	for i, f := range p.Fields {
		var fieldTy types.ID
		found := false
		for _, fr := range rec.Fields {
			if fr.Name == f.Name {
				fieldTy = substituteType(a, types.ID(fr.TypeID), sub, depth, p.Span())
				found = true
				break
			}
		}
		if !found {
			fieldTy = a.Fresh(depth, p.Span())
		}
		sp, ids := fc.checkPattern(f.Pattern, fieldTy, depth)
		fields[i] = pattern.FieldPattern{Name: f.Name, Pattern: sp}
		bound = append(bound, ids...)
	}

	return pattern.Record{RecordID: recordID, Fields: fields}, bound
}

// admissibleRecords returns the ids of every Record entity whose field set
// includes every name in given (§4.2.3: "search the entity table for
// records whose field set admits the given names"). A record-value
// expression uses this to find candidates it may not fully initialize
// (any field not among given becomes an UninitializedFields error); a
// record pattern uses it to find candidates it may only partially
// destructure. Neither caller requires the field set to match exactly.
func (fc *fileChecker) admissibleRecords(given []string) []entity.ID {
	var out []entity.ID
	for _, en := range fc.c.Entities.All() {
		if en.Kind != entity.Record {
			continue
		}
		covers := true
		for _, name := range given {
			has := false
			for _, f := range en.Record.Fields {
				if f.Name == name {
					has = true
					break
				}
			}
			if !has {
				covers = false
				break
			}
		}
		if covers {
			out = append(out, en.ID)
		}
	}
	return out
}
