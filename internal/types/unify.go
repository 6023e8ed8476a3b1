package types

import (
	"fmt"

	"github.com/catapillie/marin/internal/entity"
)

// MismatchError is returned by Unify when two terms cannot be made equal.
// The checker wraps this into a type_mismatch diagnostic with both sides'
// rendered strings and provenance spans; this package stays free of the
// diagnostics package so it can be tested in isolation (§8 Testable
// Properties: "unification symmetry").
type MismatchError struct {
	A, B ID
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("cannot unify type %d with type %d", e.A, e.B)
}

// Unify attempts to make x and y equal by mutating parent pointers,
// following the representative terms' shapes. It is symmetric: Unify(x, y)
// and Unify(y, x) succeed or fail identically and leave the arena in
// equivalent states (§8 Testable Property #1).
func (a *Arena) Unify(x, y ID) error {
	x, y = a.Find(x), a.Find(y)
	if x == y {
		return nil
	}

	tx, ty := a.nodes[x].term, a.nodes[y].term
	_, xVar := tx.(Var)
	_, yVar := ty.(Var)

	switch {
	case xVar && yVar:
		a.union(x, y)
		return nil
	case xVar:
		if a.occursIn(x, y) {
			return &MismatchError{A: x, B: y}
		}
		a.union(y, x)
		return nil
	case yVar:
		if a.occursIn(y, x) {
			return &MismatchError{A: x, B: y}
		}
		a.union(x, y)
		return nil
	}

	switch tx := tx.(type) {
	case Int:
		if _, ok := ty.(Int); ok {
			a.union(x, y)
			return nil
		}
	case Float:
		if _, ok := ty.(Float); ok {
			a.union(x, y)
			return nil
		}
	case Bool:
		if _, ok := ty.(Bool); ok {
			a.union(x, y)
			return nil
		}
	case String:
		if _, ok := ty.(String); ok {
			a.union(x, y)
			return nil
		}
	case Tuple:
		ty, ok := ty.(Tuple)
		if !ok || len(tx.Children) != len(ty.Children) {
			break
		}
		for i := range tx.Children {
			if err := a.Unify(tx.Children[i], ty.Children[i]); err != nil {
				return err
			}
		}
		a.union(x, y)
		return nil
	case Array:
		ty, ok := ty.(Array)
		if !ok {
			break
		}
		if err := a.Unify(tx.Child, ty.Child); err != nil {
			return err
		}
		a.union(x, y)
		return nil
	case Lambda:
		ty, ok := ty.(Lambda)
		if !ok || len(tx.Args) != len(ty.Args) {
			break
		}
		for i := range tx.Args {
			if err := a.Unify(tx.Args[i], ty.Args[i]); err != nil {
				return err
			}
		}
		if err := a.Unify(tx.Ret, ty.Ret); err != nil {
			return err
		}
		a.union(x, y)
		return nil
	case Record:
		ty, ok := ty.(Record)
		if !ok || tx.EntityID != ty.EntityID || len(tx.Args) != len(ty.Args) {
			break
		}
		for i := range tx.Args {
			if err := a.Unify(tx.Args[i], ty.Args[i]); err != nil {
				return err
			}
		}
		a.union(x, y)
		return nil
	case Union:
		ty, ok := ty.(Union)
		if !ok || tx.EntityID != ty.EntityID || len(tx.Args) != len(ty.Args) {
			break
		}
		for i := range tx.Args {
			if err := a.Unify(tx.Args[i], ty.Args[i]); err != nil {
				return err
			}
		}
		a.union(x, y)
		return nil
	}

	return &MismatchError{A: x, B: y}
}

// occursIn reports whether v's representative occurs anywhere inside t's
// representative term, walking Tuple/Array/Lambda/Record/Union children
// (§4.2.1's occurs-check: "(Var, X) or (X, Var) -> occurs-check on the
// non-var side ... if safe, join"). Joining a variable to a term that
// contains itself would build a cyclic type, so Unify calls this before
// binding a Var and fails instead of joining when it reports true.
func (a *Arena) occursIn(v, t ID) bool {
	t = a.Find(t)
	if t == v {
		return true
	}
	switch term := a.nodes[t].term.(type) {
	case Tuple:
		for _, c := range term.Children {
			if a.occursIn(v, c) {
				return true
			}
		}
	case Array:
		return a.occursIn(v, term.Child)
	case Lambda:
		for _, arg := range term.Args {
			if a.occursIn(v, arg) {
				return true
			}
		}
		return a.occursIn(v, term.Ret)
	case Record:
		for _, arg := range term.Args {
			if a.occursIn(v, arg) {
				return true
			}
		}
	case Union:
		for _, arg := range term.Args {
			if a.occursIn(v, arg) {
				return true
			}
		}
	}
	return false
}

// String renders a representative's term for diagnostics. Unresolved
// variables print as "t<id>" (stable across a run, not normalized to a
// letter, since that renumbering is a rendering-frontend concern, outside
// this package's contract).
func (a *Arena) String(x ID) string {
	r := a.Find(x)
	switch t := a.nodes[r].term.(type) {
	case Var:
		return fmt.Sprintf("t%d", r)
	case Int:
		return "Int"
	case Float:
		return "Float"
	case Bool:
		return "Bool"
	case String:
		return "String"
	case Tuple:
		s := "("
		for i, c := range t.Children {
			if i > 0 {
				s += ", "
			}
			s += a.String(c)
		}
		return s + ")"
	case Array:
		return "[" + a.String(t.Child) + "]"
	case Lambda:
		s := "("
		for i, arg := range t.Args {
			if i > 0 {
				s += ", "
			}
			s += a.String(arg)
		}
		s += ") -> " + a.String(t.Ret)
		return s
	case Record:
		return a.namedString(t.EntityID, t.Args)
	case Union:
		return a.namedString(t.EntityID, t.Args)
	default:
		return "?"
	}
}

// namedString renders a Record/Union term by its entity id. Resolving the
// entity id to its declared name requires an entity.Table, which this
// package does not hold; callers that need human-readable names (the
// checker, which does hold the table) substitute them afterward by
// post-processing this placeholder form.
func (a *Arena) namedString(id entity.ID, args []ID) string {
	s := fmt.Sprintf("#%d", id)
	if len(args) > 0 {
		s += "("
		for i, arg := range args {
			if i > 0 {
				s += ", "
			}
			s += a.String(arg)
		}
		s += ")"
	}
	return s
}
