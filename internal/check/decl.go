package check

import (
	"github.com/catapillie/marin/internal/ast"
	"github.com/catapillie/marin/internal/diagnostics"
	"github.com/catapillie/marin/internal/entity"
	"github.com/catapillie/marin/internal/ir"
	"github.com/catapillie/marin/internal/pattern"
	"github.com/catapillie/marin/internal/types"
)

// declTypeParams allocates one fresh arena variable per declared type
// parameter, returning both the ordered list (stored on the entity, for
// later substitution at usage sites) and the name lookup table consulted
// while resolving the declaration's own field/variant/item types.
func (fc *fileChecker) declTypeParams(params []ast.TypeParam) ([]int, map[string]types.ID) {
	ids := make([]int, len(params))
	names := make(map[string]types.ID, len(params))
	for i, p := range params {
		v := fc.c.Arena.Fresh(0, p.Tok.Span)
		ids[i] = int(v)
		names[p.Name] = v
	}
	return ids, names
}

func (fc *fileChecker) checkRecordDecl(d *ast.RecordDecl, id entity.ID) {
	typeArgs, params := fc.declTypeParams(d.Args)

	fields := make([]entity.FieldRef, len(d.Fields))
	for i, f := range d.Fields {
		ty := fc.resolveTypeExpr(f.Type, params, 0)
		fields[i] = entity.FieldRef{Name: f.Name, TypeID: int(ty)}
	}

	fc.c.Entities.Overwrite(id, entity.Entity{
		Kind:   entity.Record,
		Name:   d.Name,
		Public: d.Public,
		Loc:    d.Span(),
		Record: &entity.RecordData{TypeArgs: typeArgs, Fields: fields},
	})
}

func (fc *fileChecker) checkUnionDecl(d *ast.UnionDecl, id entity.ID) {
	typeArgs, params := fc.declTypeParams(d.Args)

	variants := make([]entity.VariantRef, len(d.Variants))
	for i, v := range d.Variants {
		argIDs := make([]int, len(v.Args))
		for j, a := range v.Args {
			argIDs[j] = int(fc.resolveTypeExpr(a, params, 0))
		}
		variants[i] = entity.VariantRef{Tag: v.Tag, ArgsIDs: argIDs}
		fc.scope.Bind(v.Tag, id)
	}

	fc.c.Entities.Overwrite(id, entity.Entity{
		Kind:   entity.Union,
		Name:   d.Name,
		Public: d.Public,
		Loc:    d.Span(),
		Union:  &entity.UnionData{TypeArgs: typeArgs, Variants: variants},
	})
}

// checkClassDecl resolves a class declaration's signature and, for each
// item, binds its name directly into scope as an ordinary polymorphic
// Variable: its scheme quantifies over the class's own (and associated)
// type arguments and carries one pending Constraint tying those same
// arguments back to this class. Calling an item by its bare name therefore
// instantiates fresh class/associated argument variables and a fresh
// constraint exactly the way any other polymorphic reference does
// (§4.2.4), so `addConstraint`/`resolveConstraints` need no special case
// for class items: whichever instance resolution later picks is threaded
// back onto that specific call's Ref through ResolvedInstances.
func (fc *fileChecker) checkClassDecl(d *ast.ClassDecl, id entity.ID) {
	classArgs, classParams := fc.declTypeParams(d.ClassArgs)
	assocArgs, assocParams := fc.declTypeParams(d.AssociatedArgs)

	params := make(map[string]types.ID, len(classParams)+len(assocParams))
	for k, v := range classParams {
		params[k] = v
	}
	for k, v := range assocParams {
		params[k] = v
	}

	classArgIDs := make([]types.ID, len(classArgs))
	for i, v := range classArgs {
		classArgIDs[i] = types.ID(v)
	}
	assocArgIDs := make([]types.ID, len(assocArgs))
	for i, v := range assocArgs {
		assocArgIDs[i] = types.ID(v)
	}
	forall := append(append([]types.ID{}, classArgIDs...), assocArgIDs...)
	constraint := types.Constraint{ClassID: id, ClassArgs: classArgIDs, AssociatedArgs: assocArgIDs}

	items := make(map[string]int, len(d.Items))
	for _, item := range d.Items {
		itemTy := fc.resolveTypeExpr(item.Type, params, 0)
		items[item.Name] = int(itemTy)

		itemID := fc.c.Entities.Add(entity.Entity{
			Kind: entity.Variable,
			Name: item.Name,
			Loc:  item.Tok.Span,
			Variable: &entity.VariableData{
				SchemeID:    fc.c.Schemes.Add(types.Scheme{Forall: forall, Body: itemTy, Constraints: []types.Constraint{constraint}}),
				IsClassItem: true,
			},
		})
		fc.scope.Bind(item.Name, itemID)
	}

	fc.c.Entities.Overwrite(id, entity.Entity{
		Kind:   entity.Class,
		Name:   d.Name,
		Public: d.Public,
		Loc:    d.Span(),
		Class: &entity.ClassData{
			ClassArgs:      classArgs,
			AssociatedArgs: assocArgs,
			Items:          items,
		},
	})
}

func (fc *fileChecker) checkAliasDecl(d *ast.AliasDecl, id entity.ID) {
	typeArgs, params := fc.declTypeParams(d.Args)
	target := fc.resolveTypeExpr(d.Target, params, 0)

	fc.c.Entities.Overwrite(id, entity.Entity{
		Kind:   entity.Alias,
		Name:   d.Name,
		Public: d.Public,
		Loc:    d.Span(),
		Alias:  &entity.AliasData{TypeArgs: typeArgs, Target: int(target)},
	})
}

// checkInstanceDecl resolves a `have` declaration (§4.2.4): it looks up the
// named class, resolves the concrete class/associated type arguments the
// instance specializes to, checks each item's implementation against the
// class signature instantiated with those concrete types, and finally
// registers the instance both as an entity (so constraint resolution can
// find it) and in the enclosing frame's visible-instance list. Each item's
// checked body is handed back as a synthetic top-level LetStatement binding
// item.Name's valueID, since that is the only place lowering can recover the
// actual implementation to compile: the entity table alone only records the
// item's monomorphic type, never its body.
func (fc *fileChecker) checkInstanceDecl(d *ast.InstanceDecl) []*ir.LetStatement {
	classID, ok := fc.scope.Lookup(d.ClassName)
	if !ok {
		fc.c.Batch.Add(diagnostics.NewError(diagnostics.UnknownBinding, phase, d.Tok,
			"unknown class '"+d.ClassName+"'"))
		return nil
	}
	class := fc.c.Entities.Get(classID)
	if class.Kind != entity.Class {
		fc.c.Batch.Add(diagnostics.NewError(diagnostics.InvalidSignature, phase, d.Tok,
			"'"+d.ClassName+"' is not a class"))
		return nil
	}

	depth := fc.scope.Depth()
	classArgs := make([]int, len(d.ClassArgs))
	for i, te := range d.ClassArgs {
		classArgs[i] = int(fc.resolveTypeExpr(te, nil, depth))
	}
	assocArgs := make([]int, len(d.AssociatedArgs))
	for i, te := range d.AssociatedArgs {
		assocArgs[i] = int(fc.resolveTypeExpr(te, nil, depth))
	}

	sub := make(map[types.ID]types.ID, len(class.Class.ClassArgs)+len(class.Class.AssociatedArgs))
	for i, p := range class.Class.ClassArgs {
		if i < len(classArgs) {
			sub[types.ID(p)] = types.ID(classArgs[i])
		}
	}
	for i, p := range class.Class.AssociatedArgs {
		if i < len(assocArgs) {
			sub[types.ID(p)] = types.ID(assocArgs[i])
		}
	}

	instanceID := fc.c.Entities.Reserve("", false, d.Span())
	items := make(map[string]entity.ID, len(d.Items))
	var synthetic []*ir.LetStatement

	for _, item := range d.Items {
		sigID, ok := class.Class.Items[item.Name]
		if !ok {
			fc.c.Batch.Add(diagnostics.NewError(diagnostics.UnknownClassItem, phase, item.Tok,
				"'"+item.Name+"' is not a member of class '"+d.ClassName+"'"))
			continue
		}
		expected := substituteType(fc.c.Arena, types.ID(sigID), sub, depth, item.Tok.Span)

		valueID := fc.c.Entities.Reserve(item.Name, false, item.Tok.Span)
		fc.scope.Push(true, depth+1)
		body, constraints := fc.checkWithConstraints(func() ir.Expression {
			return fc.checkExpr(item.Body, nil)
		})
		fc.scope.Pop()
		fc.reportUnresolved(constraints, item.Tok.Span)

		if err := fc.c.Arena.Unify(expected, body.Type()); err != nil {
			fc.reportMismatch(item.Tok.Span, expected, body.Type())
		}

		fc.c.Entities.Overwrite(valueID, entity.Entity{
			Kind:     entity.Variable,
			Name:     item.Name,
			Loc:      item.Tok.Span,
			Variable: &entity.VariableData{SchemeID: fc.c.Schemes.Add(types.Monomorphic(body.Type()))},
		})
		items[item.Name] = valueID

		synthetic = append(synthetic, &ir.LetStatement{
			Loc:     item.Tok.Span,
			Pattern: pattern.Binding{Name: item.Name},
			Bound:   []entity.ID{valueID},
			Body:    body,
		})
	}

	fc.c.Entities.Overwrite(instanceID, entity.Entity{
		Kind: entity.Instance,
		Loc:  d.Span(),
		Instance: &entity.InstanceData{
			ClassID:        classID,
			ClassArgs:      classArgs,
			AssociatedArgs: assocArgs,
			Items:          items,
		},
	})
	fc.scope.AddInstance(instanceID)
	return synthetic
}
