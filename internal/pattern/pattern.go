// Package pattern implements pattern matching and exhaustiveness analysis
// (§4.3): irrefutability checks for `let`/parameter patterns, matrix-style
// coverage analysis for `match`, and a DecisionTree built alongside the
// coverage result and stored with it on the match branch's IR; lowering
// does not read the tree and tests each case in source order instead
// (§12, supplementing a feature the
// distillation dropped; grounded on original_source/src/com/ir/decision.rs
// and, for the matrix-coverage algorithm itself, on
// sunholo/ailang/internal/dtree/decision_tree.go).
package pattern

import "github.com/catapillie/marin/internal/entity"

// Pattern is one node of a checked pattern tree, already resolved against
// the entity table (§4.3: "Missing, Discard, Binding(var), literal,
// Tuple(items), Variant(union_id, tag, optional args),
// Record(record_id, ordered field patterns)").
type Pattern interface {
	isPattern()
}

// Missing stands in for a pattern the parser or checker could not make
// sense of; it is always irrefutable so checking can continue (§7: "never
// throw away a subtree on first error").
type Missing struct{}

// Discard is `_`: matches anything, binds nothing.
type Discard struct{}

// Binding matches anything and binds it to Name.
type Binding struct{ Name string }

// LiteralKind distinguishes the four literal pattern domains.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitBool
)

// Literal matches a single constant value.
type Literal struct {
	Kind LiteralKind
	Int  int64
	Float float64
	Str  string
	Bool bool
}

// Tuple matches a fixed-arity product, one subpattern per component.
type Tuple struct{ Items []Pattern }

// Variant matches a tagged union alternative, with one subpattern per
// declared argument of that tag (empty if the variant is nullary).
type Variant struct {
	UnionID entity.ID
	Tag     string
	Args    []Pattern
}

// FieldPattern is one named field of a Record pattern.
type FieldPattern struct {
	Name    string
	Pattern Pattern
}

// Record matches a record value, binding a subset of its fields (fields
// omitted from Fields are not constrained or bound).
type Record struct {
	RecordID entity.ID
	Fields   []FieldPattern
}

func (Missing) isPattern() {}
func (Discard) isPattern() {}
func (Binding) isPattern() {}
func (Literal) isPattern() {}
func (Tuple) isPattern()   {}
func (Variant) isPattern() {}
func (Record) isPattern()  {}

// Irrefutable reports whether p always matches (§4.3: "Discard, Binding, a
// tuple of irrefutables, a record of irrefutables. Literal and variant
// patterns are refutable"). Missing counts as irrefutable so a malformed
// pattern never cascades into a spurious RefutablePattern diagnostic on
// top of whatever already went wrong.
func Irrefutable(p Pattern) bool {
	switch p := p.(type) {
	case Missing, Discard, Binding:
		return true
	case Tuple:
		for _, item := range p.Items {
			if !Irrefutable(item) {
				return false
			}
		}
		return true
	case Record:
		for _, f := range p.Fields {
			if !Irrefutable(f.Pattern) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// BoundNames returns every name p binds, in left-to-right order, so the
// checker can introduce them into scope.
func BoundNames(p Pattern) []string {
	var out []string
	collectNames(p, &out)
	return out
}

func collectNames(p Pattern, out *[]string) {
	switch p := p.(type) {
	case Binding:
		*out = append(*out, p.Name)
	case Tuple:
		for _, item := range p.Items {
			collectNames(item, out)
		}
	case Variant:
		for _, arg := range p.Args {
			collectNames(arg, out)
		}
	case Record:
		for _, f := range p.Fields {
			collectNames(f.Pattern, out)
		}
	}
}
