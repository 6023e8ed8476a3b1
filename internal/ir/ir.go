// Package ir defines the typed intermediate representation the checker
// produces: the AST with every name resolved to an entity.ID, every type
// slot resolved to a types.ID, every label resolved to an entity.LabelID,
// explicit pattern trees (internal/pattern), and explicit capture sets on
// lambdas (§4.2, §2 step 3: "a typed IR module and a public export table
// per file").
package ir

import (
	"github.com/catapillie/marin/internal/entity"
	"github.com/catapillie/marin/internal/pattern"
	"github.com/catapillie/marin/internal/token"
	"github.com/catapillie/marin/internal/types"
)

// Expression is any typed, value-producing IR node.
type Expression interface {
	Type() types.ID
	Span() token.Span
}

// Base carries the two fields every typed expression node has: its
// resolved type and its source span. It is embedded (and exported, unlike
// funxy's analogous unexported node fields) so the checker, in package
// check, can construct IR nodes directly with composite literals.
type Base struct {
	TypeID types.ID
	Loc    token.Span
}

func (b Base) Type() types.ID   { return b.TypeID }
func (b Base) Span() token.Span { return b.Loc }

// IntLit, FloatLit, StringLit, BoolLit are literal expressions (§4.2.3).
type IntLit struct {
	Base
	Value int64
}

type FloatLit struct {
	Base
	Value float64
}

type StringLit struct {
	Base
	Value string
}

type BoolLit struct {
	Base
	Value bool
}

// TupleExpr is a checked tuple literal; a one-element AST tuple never
// reaches here (the checker reduces it to its single item, per §4.2.3).
type TupleExpr struct {
	Base
	Items []Expression
}

// ArrayExpr is a checked array literal; every item was unified with Elem.
type ArrayExpr struct {
	Base
	Items []Expression
	Elem  types.ID
}

// RecordValueExpr constructs a value of the resolved record entity, with
// fields in the record's declared order (not necessarily source order).
type RecordValueExpr struct {
	Base
	RecordID entity.ID
	Fields   []Expression
}

// Ref is a resolved reference to a variable, function, class-item, record
// constructor, or union variant constructor. Constraints holds any class
// constraints instantiated fresh at this use site (§4.2.4), pending later
// resolution. Tag is non-empty only when EntityID names a Union and the
// reference is to one of its tagged variants; a variant tag is bound
// directly to its union's entity id rather than a separate per-tag
// entity (§3), so Tag is the only thing distinguishing which alternative
// this reference constructs.
type Ref struct {
	Base
	EntityID    entity.ID
	Tag         string
	Constraints []types.Constraint
	// ResolvedInstances is filled in index-for-index with Constraints once
	// the checker's obligation pass discharges each one against a single
	// matching in-scope instance; an entry stays -1 if its constraint was
	// instead generalized onto an enclosing scheme and never independently
	// redischarged, which lowering has no instance to dispatch through.
	ResolvedInstances []entity.ID
}

// Call is a function application.
type Call struct {
	Base
	Callee Expression
	Args   []Expression
}

// Param is one checked function parameter: its pattern, already proven
// irrefutable, its type, and the entity ids Pattern binds, in BoundNames
// order (mirroring LetStatement.Bound and MatchCase.Bound).
type Param struct {
	Pattern pattern.Pattern
	TypeID  types.ID
	Bound   []entity.ID
}

// Fun is a checked lambda. Captures lists the entity ids of variables
// referenced from an outer non-blocking scope, computed once the body is
// fully checked (§4.2.3: "captured entities ... are recorded on the
// function's IR node").
type Fun struct {
	Base
	Params   []Param
	Body     Expression
	Captures []entity.ID
}

// BinaryExpr and UnaryExpr are checked operator applications; Op is the
// resolved built-in operator name (e.g. "+", "=="), not a class-item
// reference (arithmetic and comparison on primitives are not class-based
// in Marin's checker, unlike record/instance resolution).
type BinaryExpr struct {
	Base
	Op          string
	Left, Right Expression
}

type UnaryExpr struct {
	Base
	Op      string
	Operand Expression
}
