package pattern

import "github.com/catapillie/marin/internal/entity"

// DecisionTree is the compiled form of a match's case list, returned as
// part of Coverage (§12). Lowering does not consume it: it tests each
// case's pattern in source order.
type DecisionTree struct {
	// Leaf, when non-negative, is the index of the case this path of the
	// tree commits to.
	Leaf int

	// Switch, when non-nil, tests the scrutinee's head constructor.
	Switch *SwitchNode
}

// SwitchNode dispatches on a union's tag, or recurses into a tuple's
// components, or falls through to a literal/default chain.
type SwitchNode struct {
	// OnVariant, when true, switches on a union tag; Branches maps tag to
	// subtree, Default covers anything not listed (always nil once every
	// variant is covered).
	OnVariant bool
	Branches  map[string]*DecisionTree
	Default   *DecisionTree

	// OnTuple, when true, recurses column-wise: Columns holds one
	// DecisionTree per tuple component, evaluated left to right.
	OnTuple bool
	Columns []*DecisionTree
}

func leaf(i int) *DecisionTree { return &DecisionTree{Leaf: i} }

// Coverage is the result of analyzing a match's case list (§4.3): whether
// the cases are exhaustive, the index of the first exhaustive case (after
// which every subsequent case is unreachable), and the compiled decision
// tree.
type Coverage struct {
	Exhaustive     bool
	ExhaustedAt    int // index of the first case that completes coverage; -1 if none
	Unreachable    []int
	Tree           *DecisionTree
}

// UnionLookup resolves a union entity id to its declared variant tags, so
// Analyze can tell whether a set of Variant cases covers every tag without
// importing the types package (which would create an import cycle with
// the checker that uses both).
type UnionLookup func(id entity.ID) []string

// Analyze walks cases in order and determines exhaustiveness by matrix
// analysis: an irrefutable case exhausts everything after it; a set of
// Variant cases is exhaustive when every tag of the union appears (with
// each tag's own subpatterns recursively exhaustive); a set of Tuple cases
// is exhaustive when every column is independently exhaustive. Literal
// cases (other than the two-valued Bool domain) can never prove
// exhaustiveness on their own, matching an infinite or open domain.
func Analyze(cases []Pattern, unions UnionLookup) Coverage {
	cov := Coverage{ExhaustedAt: -1}
	for i, c := range cases {
		if Irrefutable(c) {
			cov.Exhaustive = true
			cov.ExhaustedAt = i
			for j := i + 1; j < len(cases); j++ {
				cov.Unreachable = append(cov.Unreachable, j)
			}
			cov.Tree = build(cases[:i+1], unions)
			return cov
		}
	}

	if exhaustive, at := variantsExhaustive(cases, unions); exhaustive {
		cov.Exhaustive = true
		cov.ExhaustedAt = at
		for j := at + 1; j < len(cases); j++ {
			cov.Unreachable = append(cov.Unreachable, j)
		}
		cov.Tree = build(cases[:at+1], unions)
		return cov
	}

	if exhaustive, at := tuplesExhaustive(cases, unions); exhaustive {
		cov.Exhaustive = true
		cov.ExhaustedAt = at
		for j := at + 1; j < len(cases); j++ {
			cov.Unreachable = append(cov.Unreachable, j)
		}
		cov.Tree = build(cases[:at+1], unions)
		return cov
	}

	if exhaustive, at := boolsExhaustive(cases); exhaustive {
		cov.Exhaustive = true
		cov.ExhaustedAt = at
		for j := at + 1; j < len(cases); j++ {
			cov.Unreachable = append(cov.Unreachable, j)
		}
		cov.Tree = build(cases[:at+1], unions)
		return cov
	}

	cov.Tree = build(cases, unions)
	return cov
}

// variantsExhaustive reports whether, reading cases left to right, every
// tag of the union named by the first Variant case has appeared by some
// prefix, with each tag's own collected argument columns themselves
// exhaustive (recursively, via Analyze — the same column-exhaustive
// recursion §4.3 describes for tuples, applied here to a union's variant
// arguments instead of trusting a bare nested Variant as self-proving).
func variantsExhaustive(cases []Pattern, unions UnionLookup) (bool, int) {
	var unionID entity.ID
	haveUnion := false
	byTag := make(map[string][]Variant)

	for i, c := range cases {
		v, ok := c.(Variant)
		if !ok {
			return false, -1
		}
		if !haveUnion {
			unionID = v.UnionID
			haveUnion = true
		} else if v.UnionID != unionID {
			return false, -1
		}
		byTag[v.Tag] = append(byTag[v.Tag], v)

		tags := unions(unionID)
		if len(tags) == 0 {
			continue
		}
		allSeen := true
		for _, tag := range tags {
			group, ok := byTag[tag]
			if !ok || !tagArgsExhaustive(group, unions) {
				allSeen = false
				break
			}
		}
		if allSeen {
			return true, i
		}
	}
	return false, -1
}

// tagArgsExhaustive reports whether every occurrence of a single tag seen
// so far, taken together, has exhaustive argument patterns: for each
// argument position, the column of that position's patterns across every
// occurrence of the tag must itself be exhaustive, re-running Analyze one
// level deeper rather than accepting a lone nested Variant as proof on its
// own. A tag with mismatched arities (which should not happen for a
// well-typed program) is conservatively treated as not yet proven.
func tagArgsExhaustive(sameTag []Variant, unions UnionLookup) bool {
	arity := len(sameTag[0].Args)
	for _, v := range sameTag {
		if len(v.Args) != arity {
			return false
		}
	}
	for col := 0; col < arity; col++ {
		column := make([]Pattern, len(sameTag))
		for i, v := range sameTag {
			column[i] = v.Args[col]
		}
		if !Analyze(column, unions).Exhaustive {
			return false
		}
	}
	return true
}

// tuplesExhaustive reports whether every column of a run of Tuple cases is
// independently exhaustive (§4.3: "for tuples/records that every column is
// exhaustive").
func tuplesExhaustive(cases []Pattern, unions UnionLookup) (bool, int) {
	if len(cases) == 0 {
		return false, -1
	}
	first, ok := cases[0].(Tuple)
	if !ok {
		return false, -1
	}
	arity := len(first.Items)

	for i, c := range cases {
		t, ok := c.(Tuple)
		if !ok || len(t.Items) != arity {
			return false, -1
		}
		allColumnsExhaustive := true
		for col := 0; col < arity; col++ {
			var column []Pattern
			for _, cc := range cases[:i+1] {
				column = append(column, cc.(Tuple).Items[col])
			}
			if !Analyze(column, unions).Exhaustive {
				allColumnsExhaustive = false
				break
			}
		}
		if allColumnsExhaustive {
			return true, i
		}
	}
	return false, -1
}

// boolsExhaustive handles the two-valued Bool domain as a closed type:
// {true, false} both appearing is exhaustive, unlike every other literal
// domain.
func boolsExhaustive(cases []Pattern) (bool, int) {
	seenTrue, seenFalse := false, false
	for i, c := range cases {
		lit, ok := c.(Literal)
		if !ok || lit.Kind != LitBool {
			return false, -1
		}
		if lit.Bool {
			seenTrue = true
		} else {
			seenFalse = true
		}
		if seenTrue && seenFalse {
			return true, i
		}
	}
	return false, -1
}

// build compiles a (known-exhaustive-or-not) case prefix into a decision
// tree. It is intentionally simple: a union switch when every case is a
// Variant on the same union, a tuple recursion when every case is a Tuple
// of the same arity, and a linear leaf chain otherwise (literal and
// binding patterns keep source order, which a linear chain already
// expresses).
func build(cases []Pattern, unions UnionLookup) *DecisionTree {
	if len(cases) == 0 {
		return nil
	}

	if allVariantsSameUnion(cases) {
		branches := make(map[string]*DecisionTree)
		for i, c := range cases {
			v := c.(Variant)
			if _, ok := branches[v.Tag]; !ok {
				branches[v.Tag] = leaf(i)
			}
		}
		return &DecisionTree{Switch: &SwitchNode{OnVariant: true, Branches: branches}}
	}

	if allTuplesSameArity(cases) {
		arity := len(cases[0].(Tuple).Items)
		cols := make([]*DecisionTree, arity)
		for col := 0; col < arity; col++ {
			var column []Pattern
			for _, c := range cases {
				column = append(column, c.(Tuple).Items[col])
			}
			cols[col] = build(column, unions)
		}
		return &DecisionTree{Switch: &SwitchNode{OnTuple: true, Columns: cols}}
	}

	return leaf(len(cases) - 1)
}

func allVariantsSameUnion(cases []Pattern) bool {
	first, ok := cases[0].(Variant)
	if !ok {
		return false
	}
	for _, c := range cases {
		v, ok := c.(Variant)
		if !ok || v.UnionID != first.UnionID {
			return false
		}
	}
	return true
}

func allTuplesSameArity(cases []Pattern) bool {
	first, ok := cases[0].(Tuple)
	if !ok {
		return false
	}
	for _, c := range cases {
		t, ok := c.(Tuple)
		if !ok || len(t.Items) != len(first.Items) {
			return false
		}
	}
	return true
}
