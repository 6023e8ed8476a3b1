package entity

import "github.com/catapillie/marin/internal/token"

// LabelID identifies a label in the label stack.
type LabelID int

// Label is one labeled control-flow target: a block or loop that `break`
// or `skip` can reach (§3: "Label: {optional name, ty: type_id, skippable:
// bool, loc} identified by label_id. A block or loop allocates one;
// break/skip target the nearest matching one").
type Label struct {
	ID         LabelID
	Name       string // "" for an unlabeled block/loop
	TypeID     int    // type_id of the value `break` produces here
	Skippable  bool   // loops are skippable; plain `do` blocks are not
	Loc        token.Span
}

// Labels is the label stack, innermost loop/block last.
type Labels struct {
	stack []*Label
}

// NewLabels returns an empty label stack.
func NewLabels() *Labels {
	return &Labels{}
}

// Push allocates and pushes a new label.
func (l *Labels) Push(name string, typeID int, skippable bool, loc token.Span) *Label {
	lbl := &Label{ID: LabelID(len(l.stack)), Name: name, TypeID: typeID, Skippable: skippable, Loc: loc}
	l.stack = append(l.stack, lbl)
	return lbl
}

// Pop removes the innermost label.
func (l *Labels) Pop() {
	l.stack = l.stack[:len(l.stack)-1]
}

// Resolve finds the label a break/skip targets: the named one if name is
// non-empty, otherwise the innermost label. ok is false if name was given
// but no such label is in scope.
func (l *Labels) Resolve(name string) (*Label, bool) {
	if name == "" {
		if len(l.stack) == 0 {
			return nil, false
		}
		return l.stack[len(l.stack)-1], true
	}
	for i := len(l.stack) - 1; i >= 0; i-- {
		if l.stack[i].Name == name {
			return l.stack[i], true
		}
	}
	return nil, false
}

// Innermost returns the innermost label, if any.
func (l *Labels) Innermost() (*Label, bool) {
	if len(l.stack) == 0 {
		return nil, false
	}
	return l.stack[len(l.stack)-1], true
}
