package types

import (
	"github.com/catapillie/marin/internal/entity"
	"github.com/catapillie/marin/internal/token"
)

// Constraint is a pending class-constraint obligation (§3: "{class_id,
// class_args: [type_id], associated_args: [type_id]}. Constraints
// accumulate in a pending list, are attempted to be discharged when the
// enclosing let generalizes, and unmatched ones are attached to the
// resulting scheme").
type Constraint struct {
	ClassID        entity.ID
	ClassArgs      []ID
	AssociatedArgs []ID
}

// Scheme is a (possibly) polymorphic type: a set of quantified variables,
// a body type, and the class constraints still pending over it (§3).
type Scheme struct {
	Forall      []ID
	Body        ID
	Constraints []Constraint
}

// Monomorphic wraps body with no quantified variables, the scheme every
// variable has "at introduction" before its introducing let generalizes
// (§3: "A variable's scheme is monomorphic at introduction").
func Monomorphic(body ID) Scheme {
	return Scheme{Body: body}
}

// Generalize quantifies every free variable in body (and in pending's
// constraint arguments) whose scope_depth is strictly greater than depth —
// i.e. every variable introduced inside the let being generalized, not
// one that escapes to an enclosing scope — and returns the resulting
// scheme together with the constraints that were generalized over (§4.2.1-
// §4.2.2: "only type vars at or below the enclosing generalization depth
// may be quantified" is the dual phrasing of "deeper than depth are
// quantified here").
func (a *Arena) Generalize(depth int, body ID, pending []Constraint) Scheme {
	seen := make(map[ID]bool)
	var forall []ID
	a.collectVars(body, depth, seen, &forall)
	for _, c := range pending {
		for _, arg := range c.ClassArgs {
			a.collectVars(arg, depth, seen, &forall)
		}
		for _, arg := range c.AssociatedArgs {
			a.collectVars(arg, depth, seen, &forall)
		}
	}
	return Scheme{Forall: forall, Body: body, Constraints: pending}
}

func (a *Arena) collectVars(x ID, depth int, seen map[ID]bool, out *[]ID) {
	r := a.Find(x)
	if seen[r] {
		return
	}
	switch t := a.nodes[r].term.(type) {
	case Var:
		if a.nodes[r].scopeDepth > depth {
			seen[r] = true
			*out = append(*out, r)
		}
	case Tuple:
		for _, c := range t.Children {
			a.collectVars(c, depth, seen, out)
		}
	case Array:
		a.collectVars(t.Child, depth, seen, out)
	case Lambda:
		for _, arg := range t.Args {
			a.collectVars(arg, depth, seen, out)
		}
		a.collectVars(t.Ret, depth, seen, out)
	case Record:
		for _, arg := range t.Args {
			a.collectVars(arg, depth, seen, out)
		}
	case Union:
		for _, arg := range t.Args {
			a.collectVars(arg, depth, seen, out)
		}
	}
}

// Instantiate creates a fresh copy of scheme's body and constraints, with
// every quantified variable replaced by a brand-new Var node at the given
// depth, so that separate uses of a polymorphic binding never share
// inference state (§4.2.1-§4.2.2 round-trip property, §8 Testable
// Property #2).
func (a *Arena) Instantiate(scheme Scheme, depth int, loc token.Span) (ID, []Constraint) {
	sub := make(map[ID]ID, len(scheme.Forall))
	for _, v := range scheme.Forall {
		sub[v] = a.Fresh(depth, loc)
	}
	body := a.copyWith(scheme.Body, sub, depth, loc)
	constraints := make([]Constraint, len(scheme.Constraints))
	for i, c := range scheme.Constraints {
		constraints[i] = Constraint{
			ClassID:        c.ClassID,
			ClassArgs:      a.copyArgs(c.ClassArgs, sub, depth, loc),
			AssociatedArgs: a.copyArgs(c.AssociatedArgs, sub, depth, loc),
		}
	}
	return body, constraints
}

func (a *Arena) copyArgs(ids []ID, sub map[ID]ID, depth int, loc token.Span) []ID {
	out := make([]ID, len(ids))
	for i, id := range ids {
		out[i] = a.copyWith(id, sub, depth, loc)
	}
	return out
}

// SchemeTable is the dense, append-only store of generalized schemes that
// entity.VariableData.SchemeID, entity.RecordData.SchemeID, and
// entity.ClassData.Items index into. Schemes live apart from the entity
// table itself so that `entity` need not import `types` (§3 notes the same
// asymmetry for Record/Union type terms referencing entity ids the other
// way around).
type SchemeTable struct {
	schemes []Scheme
}

// NewSchemeTable returns an empty scheme table.
func NewSchemeTable() *SchemeTable {
	return &SchemeTable{}
}

// Add appends s and returns its id.
func (t *SchemeTable) Add(s Scheme) int {
	id := len(t.schemes)
	t.schemes = append(t.schemes, s)
	return id
}

// Get returns the scheme stored at id.
func (t *SchemeTable) Get(id int) Scheme {
	return t.schemes[id]
}

// copyWith rebuilds x's term with every quantified variable in sub
// replaced by its fresh copy, allocating new nodes for any compound term
// along the way so the instantiated type shares no mutable state with the
// scheme's original body.
func (a *Arena) copyWith(x ID, sub map[ID]ID, depth int, loc token.Span) ID {
	r := a.Find(x)
	if fresh, ok := sub[r]; ok {
		return fresh
	}
	switch t := a.nodes[r].term.(type) {
	case Var:
		return r // free variable outside the scheme's forall: shared, not copied
	case Int, Float, Bool, String:
		return r // ground terms need no copy
	case Tuple:
		children := make([]ID, len(t.Children))
		for i, c := range t.Children {
			children[i] = a.copyWith(c, sub, depth, loc)
		}
		return a.New(Tuple{Children: children}, depth, loc)
	case Array:
		return a.New(Array{Child: a.copyWith(t.Child, sub, depth, loc)}, depth, loc)
	case Lambda:
		args := make([]ID, len(t.Args))
		for i, arg := range t.Args {
			args[i] = a.copyWith(arg, sub, depth, loc)
		}
		return a.New(Lambda{Args: args, Ret: a.copyWith(t.Ret, sub, depth, loc)}, depth, loc)
	case Record:
		args := make([]ID, len(t.Args))
		for i, arg := range t.Args {
			args[i] = a.copyWith(arg, sub, depth, loc)
		}
		return a.New(Record{EntityID: t.EntityID, Args: args}, depth, loc)
	case Union:
		args := make([]ID, len(t.Args))
		for i, arg := range t.Args {
			args[i] = a.copyWith(arg, sub, depth, loc)
		}
		return a.New(Union{EntityID: t.EntityID, Args: args}, depth, loc)
	default:
		return r
	}
}
