// Package check implements Marin's single-pass type checker (§4.2): for
// every staged file, in the dependency analyzer's evaluation order, it
// walks the untyped AST while maintaining an entity.Table, a types.Arena,
// a per-file entity.Scope and entity.Labels, and a pending class-constraint
// list, producing a typed internal/ir module and a public export table.
//
// Grounded stylistically on funvibe/funxy's internal/analyzer (a single
// walker struct threading a shared symbol table and inference context
// across files, accumulating diagnostics rather than stopping at the
// first one) but restructured around the union-find internal/types arena
// and the dense internal/entity table this toolchain uses instead of
// funxy's substitution-based typesystem and chained symbols.SymbolTable.
package check

import (
	"github.com/catapillie/marin/internal/ast"
	"github.com/catapillie/marin/internal/config"
	"github.com/catapillie/marin/internal/depgraph"
	"github.com/catapillie/marin/internal/diagnostics"
	"github.com/catapillie/marin/internal/entity"
	"github.com/catapillie/marin/internal/ir"
	"github.com/catapillie/marin/internal/source"
	"github.com/catapillie/marin/internal/types"
)

const phase = "check"

// Checker holds the state shared across every file of one compilation run:
// the entity table and type arena live for the whole run (§3: "Entities
// live for the whole compilation run"), while scope and label stacks are
// rebuilt per file.
type Checker struct {
	Set      *source.Set
	Opts     config.Options
	Entities *entity.Table
	Arena    *types.Arena
	Schemes  *types.SchemeTable
	Batch    diagnostics.Batch

	modules map[int]*ir.Module
	exports map[int]map[string]entity.ID // file id -> exported name -> entity id
}

// New returns a Checker ready to check set's files.
func New(set *source.Set, opts config.Options) *Checker {
	return &Checker{
		Set:      set,
		Opts:     opts,
		Entities: entity.NewTable(),
		Arena:    types.NewArena(),
		Schemes:  types.NewSchemeTable(),
		modules:  make(map[int]*ir.Module),
		exports:  make(map[int]map[string]entity.ID),
	}
}

// CheckAll checks every file named in order (the dependency analyzer's
// evaluation order: dependencies before dependents, so an importer never
// checks before what it imports), returning the typed module for each file
// id.
func (c *Checker) CheckAll(order []int) map[int]*ir.Module {
	for _, id := range order {
		f := c.Set.ByID(id)
		fc := &fileChecker{
			c:      c,
			file:   f,
			scope:  entity.NewScope(),
			labels: entity.NewLabels(),
		}
		c.modules[id] = fc.run()
	}
	return c.modules
}

// fileChecker is the per-file walker: one is created per file so its scope
// and label stacks never leak between files, while c (and therefore the
// entity table and type arena) is shared.
type fileChecker struct {
	c      *Checker
	file   *source.File
	scope  *entity.Scope
	labels *entity.Labels

	// pending accumulates class constraints instantiated while checking
	// the body of the let currently generalizing; nil outside any let, in
	// which case addConstraint does not record the constraint at all
	// (§4.2.4).
	pending *[]constraintObligation

	// captures is a stack of in-progress capture sets, one per function
	// literal currently being checked (innermost last); resolveIdent adds
	// to each of the innermost sets whose blocking boundary a lookup crosses.
	captures []map[entity.ID]bool
}

func (fc *fileChecker) run() *ir.Module {
	fc.scope.Push(false, 0)
	defer fc.scope.Pop()

	fc.bindImports()

	exportsOf := make(map[string]entity.ID)
	fc.c.exports[fc.file.ID] = exportsOf

	instanceItems := fc.checkDecls(exportsOf)

	var stmts []ir.Statement
	for _, item := range instanceItems {
		stmts = append(stmts, item)
	}
	for _, s := range fc.file.AST.Statements {
		switch s := s.(type) {
		case *ast.LetStatement:
			let := fc.checkLetStatement(s, fc.scope.Depth())
			stmts = append(stmts, let)
			if s.Params != nil {
				if bind, ok := s.Pattern.(*ast.BindingPattern); ok && len(let.Bound) > 0 {
					exportsOf[bind.Name] = let.Bound[0]
				}
			}
		case *ast.ExpressionStatement:
			expr, cs := fc.checkWithConstraints(func() ir.Expression {
				return fc.checkExpr(s.Expr, nil)
			})
			fc.reportUnresolved(cs, s.Expr.Span())
			stmts = append(stmts, &ir.ExpressionStatement{Expr: expr})
		}
	}

	var exportList []ir.Export
	for name, id := range exportsOf {
		exportList = append(exportList, ir.Export{Name: name, EntityID: id})
	}

	return &ir.Module{FileID: fc.file.ID, Statements: stmts, Exports: exportList}
}

// bindImports introduces every imported name into the file's global frame,
// per §4.1's import forms: a total import brings in every public export of
// the target file, a partial (`from`) import brings in only the listed
// names.
func (fc *fileChecker) bindImports() {
	for _, imp := range fc.file.AST.Imports {
		target, ok := depgraph.TargetFile(fc.c.Set, fc.c.Opts, fc.file, imp)
		if !ok {
			continue // already diagnosed during dependency analysis
		}
		targetExports := fc.c.exports[target.ID]

		if len(imp.Names) == 0 {
			for name, id := range targetExports {
				fc.scope.Bind(name, id)
			}
			continue
		}

		for _, name := range imp.Names {
			id, ok := targetExports[name]
			if !ok {
				fc.c.Batch.Add(diagnostics.NewError(diagnostics.UnknownBinding, phase, imp.Tok,
					"'"+name+"' is not exported by the imported file"))
				continue
			}
			fc.scope.Bind(name, id)
		}
	}
}

// checkDecls resolves every top-level declaration of the file (§4.2.1): it
// first reserves a Dummy entity for every named record/union/class/alias so
// mutually or self-recursive definitions can reference themselves or each
// other regardless of declaration order (§3's Dummy-slot pattern), fills in
// each slot's real data, then resolves `have` (instance) declarations, which
// are never referenced by name and so never need forward reservation.
func (fc *fileChecker) checkDecls(exportsOf map[string]entity.ID) []*ir.LetStatement {
	reserved := make(map[ast.Decl]entity.ID)

	for _, d := range fc.file.AST.Decls {
		switch d := d.(type) {
		case *ast.RecordDecl:
			id := fc.c.Entities.Reserve(d.Name, d.Public, d.Span())
			fc.scope.Bind(d.Name, id)
			reserved[d] = id
		case *ast.UnionDecl:
			id := fc.c.Entities.Reserve(d.Name, d.Public, d.Span())
			fc.scope.Bind(d.Name, id)
			reserved[d] = id
		case *ast.ClassDecl:
			id := fc.c.Entities.Reserve(d.Name, d.Public, d.Span())
			fc.scope.Bind(d.Name, id)
			reserved[d] = id
		case *ast.AliasDecl:
			id := fc.c.Entities.Reserve(d.Name, d.Public, d.Span())
			fc.scope.Bind(d.Name, id)
			reserved[d] = id
		}
	}

	for _, d := range fc.file.AST.Decls {
		switch d := d.(type) {
		case *ast.RecordDecl:
			fc.checkRecordDecl(d, reserved[d])
			if d.Public {
				exportsOf[d.Name] = reserved[d]
			}
		case *ast.UnionDecl:
			fc.checkUnionDecl(d, reserved[d])
			if d.Public {
				exportsOf[d.Name] = reserved[d]
			}
		case *ast.ClassDecl:
			fc.checkClassDecl(d, reserved[d])
			if d.Public {
				exportsOf[d.Name] = reserved[d]
			}
		case *ast.AliasDecl:
			fc.checkAliasDecl(d, reserved[d])
			if d.Public {
				exportsOf[d.Name] = reserved[d]
			}
		}
	}

	var instanceItems []*ir.LetStatement
	for _, d := range fc.file.AST.Decls {
		if d, ok := d.(*ast.InstanceDecl); ok {
			instanceItems = append(instanceItems, fc.checkInstanceDecl(d)...)
		}
	}
	return instanceItems
}
