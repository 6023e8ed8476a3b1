// Package types implements the union-find type-node arena (§3 "Type
// arena", §4.2.1-4.2.2): append-only nodes identified by an integer
// type_id, unified by mutating a `parent` field, never by rewriting terms
// through a substitution map.
//
// Grounded stylistically on funvibe/funxy's internal/typesystem (the
// `Type` interface and the case-dispatch shape of `Unify`), but
// restructured from funxy's substitution-based unification (`Unify`
// returns a `Subst` that the caller must `Apply` everywhere) to the
// mutable union-find model §3 requires: a type_id's representative is
// found by following `parent` with path compression, and unifying two
// ids only ever repoints one parent at the other.
package types

import "github.com/catapillie/marin/internal/entity"
import "github.com/catapillie/marin/internal/token"

// ID identifies one node in the arena.
type ID int

// Term is the immutable payload a node holds once it has been unified
// down to a concrete shape, or Var if it is still unconstrained.
type Term interface {
	isTerm()
}

type (
	// Var is an unconstrained type variable.
	Var struct{}

	Int    struct{}
	Float  struct{}
	Bool   struct{}
	String struct{}

	// Tuple is a fixed-arity product type.
	Tuple struct{ Children []ID }

	// Array is a homogeneous sequence type.
	Array struct{ Child ID }

	// Lambda is a function type.
	Lambda struct {
		Args []ID
		Ret  ID
	}

	// Record names a record entity, optionally applied to type arguments.
	Record struct {
		EntityID entity.ID
		Args     []ID
	}

	// Union names a union entity, optionally applied to type arguments.
	Union struct {
		EntityID entity.ID
		Args     []ID
	}
)

func (Var) isTerm()    {}
func (Int) isTerm()    {}
func (Float) isTerm()  {}
func (Bool) isTerm()   {}
func (String) isTerm() {}
func (Tuple) isTerm()  {}
func (Array) isTerm()  {}
func (Lambda) isTerm() {}
func (Record) isTerm() {}
func (Union) isTerm()  {}

// node is one row of the arena (§3: "{parent: type_id, term, optional
// location, scope_depth, provenances}").
type node struct {
	parent      ID
	term        Term
	loc         token.Span
	scopeDepth  int
	provenances []token.Span
}

// Arena is the append-only type-node table.
type Arena struct {
	nodes []node
}

// NewArena returns an empty type arena.
func NewArena() *Arena {
	return &Arena{}
}

// Fresh allocates a new unconstrained Var node at the given generalization
// depth and returns its id. A fresh node is its own parent.
func (a *Arena) Fresh(depth int, loc token.Span) ID {
	id := ID(len(a.nodes))
	a.nodes = append(a.nodes, node{parent: id, term: Var{}, loc: loc, scopeDepth: depth})
	return id
}

// New allocates a new node already holding a concrete term (used when a
// literal or declared type is introduced directly, without going through
// unification with a fresh variable first).
func (a *Arena) New(term Term, depth int, loc token.Span) ID {
	id := ID(len(a.nodes))
	a.nodes = append(a.nodes, node{parent: id, term: term, loc: loc, scopeDepth: depth})
	return id
}

// Find returns the representative id of x's union-find set, compressing
// the path as it walks up. Per §3's invariant, only the representative's
// term field is authoritative; callers must always go through Find before
// reading a node's term.
func (a *Arena) Find(x ID) ID {
	root := x
	for a.nodes[root].parent != root {
		root = a.nodes[root].parent
	}
	for a.nodes[x].parent != root {
		next := a.nodes[x].parent
		a.nodes[x].parent = root
		x = next
	}
	return root
}

// Term returns the authoritative term of x's representative.
func (a *Arena) Term(x ID) Term {
	return a.nodes[a.Find(x)].term
}

// Depth returns the representative's scope_depth, used by Generalize to
// decide which variables are eligible for quantification.
func (a *Arena) Depth(x ID) int {
	return a.nodes[a.Find(x)].scopeDepth
}

// Loc returns the representative's recorded source location.
func (a *Arena) Loc(x ID) token.Span {
	return a.nodes[a.Find(x)].loc
}

// AddProvenance records an additional source location that constrained x,
// for richer type_mismatch diagnostics.
func (a *Arena) AddProvenance(x ID, loc token.Span) {
	r := a.Find(x)
	a.nodes[r].provenances = append(a.nodes[r].provenances, loc)
}

// Provenances returns every location recorded against x's representative.
func (a *Arena) Provenances(x ID) []token.Span {
	return a.nodes[a.Find(x)].provenances
}

// setTerm rewrites the representative's term in place; it never creates a
// new node. Nothing in the package calls it: Unify merges nodes through
// union, and instantiation allocates fresh nodes through copyWith.
func (a *Arena) setTerm(x ID, term Term) {
	a.nodes[a.Find(x)].term = term
}

// union repoints b's representative at a's, keeping a's term (or b's, if
// a is an unconstrained Var and b isn't — see Unify), and merges scope
// depth to the shallower of the two (a variable unified with an outer one
// must not outlive the outer scope's generalization boundary).
func (a *Arena) union(keep, other ID) {
	keep, other = a.Find(keep), a.Find(other)
	if keep == other {
		return
	}
	if a.nodes[other].scopeDepth < a.nodes[keep].scopeDepth {
		a.nodes[keep].scopeDepth = a.nodes[other].scopeDepth
	}
	a.nodes[keep].provenances = append(a.nodes[keep].provenances, a.nodes[other].provenances...)
	a.nodes[other].parent = keep
}
