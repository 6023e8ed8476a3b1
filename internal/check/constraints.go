package check

import (
	"github.com/catapillie/marin/internal/diagnostics"
	"github.com/catapillie/marin/internal/entity"
	"github.com/catapillie/marin/internal/ir"
	"github.com/catapillie/marin/internal/token"
	"github.com/catapillie/marin/internal/types"
)

// constraintObligation pairs a pending constraint with the source location
// it arose at, so an unresolved one can still be reported precisely even
// though types.Constraint itself (the form that ends up on a Scheme or an
// ir.Ref) carries no location (§3). resolved and slot name where the
// discharged instance, if any, is written back so the originating Ref
// knows which instance to dispatch through at lowering time.
type constraintObligation struct {
	types.Constraint
	Loc      token.Span
	resolved []entity.ID
	slot     int
}

// addConstraint records a freshly instantiated class-item constraint
// against whichever let (or script statement) is currently generalizing
// over it (§4.2.4). resolved/slot identify where, on the Ref that
// instantiated this constraint, the discharged instance id should be
// written once resolveConstraints runs.
func (fc *fileChecker) addConstraint(c types.Constraint, loc token.Span, resolved []entity.ID, slot int) {
	if fc.pending == nil {
		return
	}
	*fc.pending = append(*fc.pending, constraintObligation{Constraint: c, Loc: loc, resolved: resolved, slot: slot})
}

// checkWithConstraints runs fn with a fresh obligation list active, then
// attempts to discharge every constraint fn accumulated against the
// in-scope instances, returning whatever remains unresolved: the caller
// either attaches that to a Scheme (at let-generalization) or reports it
// directly (at script-statement scope, where nothing generalizes).
func (fc *fileChecker) checkWithConstraints(fn func() ir.Expression) (ir.Expression, []types.Constraint) {
	var obligations []constraintObligation
	prev := fc.pending
	fc.pending = &obligations
	expr := fn()
	fc.pending = prev
	return expr, fc.resolveConstraints(obligations)
}

// resolveConstraints attempts to discharge each obligation against the
// instances visible in the current scope. Exactly one match discharges it
// silently; zero matches leaves it unresolved; more than one is reported as
// ambiguous immediately, since an ambiguity can never be deferred usefully
// to the enclosing scheme the way an unsatisfied-but-still-generic
// constraint can (§4.2.4: "unmatched ones are attached to the resulting
// scheme").
func (fc *fileChecker) resolveConstraints(obligations []constraintObligation) []types.Constraint {
	var unresolved []types.Constraint
	for _, ob := range obligations {
		matches := fc.matchingInstances(ob.Constraint)
		switch len(matches) {
		case 1:
			if ob.resolved != nil {
				ob.resolved[ob.slot] = matches[0]
			}
		case 0:
			unresolved = append(unresolved, ob.Constraint)
		default:
			fc.c.Batch.Add(diagnostics.New(diagnostics.AmbiguousInstance, diagnostics.Error, phase, ob.Loc,
				"ambiguous instance: more than one in-scope instance satisfies this constraint"))
		}
	}
	return unresolved
}

// reportUnresolved turns each still-unresolved constraint into an
// unsatisfied_constraints diagnostic, used at contexts that cannot defer
// resolution to an enclosing scheme (script statements, instance items).
func (fc *fileChecker) reportUnresolved(cs []types.Constraint, loc token.Span) {
	for range cs {
		fc.c.Batch.Add(diagnostics.New(diagnostics.UnsatisfiedConstraints, diagnostics.Error, phase, loc,
			"no in-scope instance satisfies this class constraint"))
	}
}

// resolveClassItem attempts to dispatch a reference to a class item's bare
// name immediately, rather than deferring it the way an ordinary
// constraint is (§4.2.4). If exactly one in-scope instance satisfies c
// (matchingInstances has already unified its arguments into the freshly
// instantiated body as a side effect), the reference is rebuilt against
// that instance's own concrete item entity directly, and — since an
// instance item is always a synthetic top-level binding (§ checkInstanceDecl)
// — marked as captured across every function literal currently open, the
// same way an ordinary identifier crossing a blocking boundary would be.
// Zero matches reports nothing and returns false, letting the caller fall
// back to deferring c like any other constraint, for the rarer case of a
// class item used generically inside a not-yet-generalized definition.
func (fc *fileChecker) resolveClassItem(name string, body types.ID, c types.Constraint, loc token.Span) (*ir.Ref, bool) {
	matches := fc.matchingInstances(c)
	switch len(matches) {
	case 0:
		return nil, false
	case 1:
		// unified into body as a side effect of matchingInstances
	default:
		fc.c.Batch.Add(diagnostics.New(diagnostics.AmbiguousInstance, diagnostics.Error, phase, loc,
			"ambiguous instance: more than one in-scope instance satisfies this constraint"))
	}

	inst := fc.c.Entities.Get(matches[0])
	valueID, ok := inst.Instance.Items[name]
	if !ok {
		return nil, false
	}
	for _, set := range fc.captures {
		set[valueID] = true
	}
	return &ir.Ref{Base: ir.Base{TypeID: body, Loc: loc}, EntityID: valueID}, true
}

// matchingInstances returns the in-scope instances whose class and
// specialized arguments are compatible with c.
//
// It resolves compatibility by unifying the instance's declared argument
// type ids directly against c's, which is destructive: once one candidate's
// arguments partially unify before a later argument fails, that partial
// binding cannot be rolled back (the arena has no transactional snapshot).
// This is sound as long as a compilation never declares two instances of
// the same class whose arguments could both structurally match the same
// constraint — true of the non-overlapping instance declarations this
// checker expects, but not independently enforced by a dedicated overlap
// check (an Open Question resolved in favor of the simpler, non-rollback
// arena rather than adding transactional unification for this one case).
func (fc *fileChecker) matchingInstances(c types.Constraint) []entity.ID {
	var out []entity.ID
	for _, instID := range fc.scope.VisibleInstances() {
		inst := fc.c.Entities.Get(instID)
		if inst.Kind != entity.Instance || inst.Instance.ClassID != c.ClassID {
			continue
		}
		if fc.argsCompatible(inst.Instance.ClassArgs, c.ClassArgs) &&
			fc.argsCompatible(inst.Instance.AssociatedArgs, c.AssociatedArgs) {
			out = append(out, instID)
		}
	}
	return out
}

func (fc *fileChecker) argsCompatible(declared []int, needed []types.ID) bool {
	if len(declared) != len(needed) {
		return false
	}
	for i := range declared {
		if err := fc.c.Arena.Unify(types.ID(declared[i]), needed[i]); err != nil {
			return false
		}
	}
	return true
}

// reportMismatch turns a failed Unify into a type_mismatch diagnostic,
// rendering both sides through the arena (§7, §4.2.1).
func (fc *fileChecker) reportMismatch(loc token.Span, expected, got types.ID) {
	r := diagnostics.New(diagnostics.TypeMismatch, diagnostics.Error, phase, loc,
		"type mismatch: expected "+fc.c.Arena.String(expected)+", found "+fc.c.Arena.String(got))
	r.WithData("expected", fc.c.Arena.String(expected))
	r.WithData("found", fc.c.Arena.String(got))
	fc.c.Batch.Add(r)
}
