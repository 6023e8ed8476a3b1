package ast

import "github.com/catapillie/marin/internal/token"

// Pattern is the syntactic pattern tree (§4.3); each pattern form is its
// own node type below.
type Pattern interface {
	Node
	patternNode()
}

// MissingPattern stands in for a pattern that failed to parse or check; the
// checker substitutes this so one error doesn't cascade (§7 policy).
type MissingPattern struct{ Tok token.Token }

func (p *MissingPattern) TokenLiteral() string { return p.Tok.Lexeme }
func (p *MissingPattern) Span() token.Span     { return p.Tok.Span }
func (p *MissingPattern) patternNode()         {}

// DiscardPattern is `_`.
type DiscardPattern struct{ Tok token.Token }

func (p *DiscardPattern) TokenLiteral() string { return p.Tok.Lexeme }
func (p *DiscardPattern) Span() token.Span     { return p.Tok.Span }
func (p *DiscardPattern) patternNode()         {}

// BindingPattern binds a name irrefutably.
type BindingPattern struct {
	Tok  token.Token
	Name string
}

func (p *BindingPattern) TokenLiteral() string { return p.Tok.Lexeme }
func (p *BindingPattern) Span() token.Span     { return p.Tok.Span }
func (p *BindingPattern) patternNode()         {}

// LiteralPattern matches against a literal int, float, string, or bool
// value.
type LiteralPattern struct {
	Tok   token.Token
	Value any // int64 | float64 | string | bool
}

func (p *LiteralPattern) TokenLiteral() string { return p.Tok.Lexeme }
func (p *LiteralPattern) Span() token.Span     { return p.Tok.Span }
func (p *LiteralPattern) patternNode()         {}

// TuplePattern destructures a tuple.
type TuplePattern struct {
	Tok   token.Token
	Items []Pattern
}

func (p *TuplePattern) TokenLiteral() string { return p.Tok.Lexeme }
func (p *TuplePattern) Span() token.Span     { return p.Tok.Span }
func (p *TuplePattern) patternNode()         {}

// VariantPattern matches a union's tagged variant, e.g. `Some(x)`.
type VariantPattern struct {
	Tok  token.Token
	Tag  string
	Args []Pattern // nil for a nullary variant
}

func (p *VariantPattern) TokenLiteral() string { return p.Tok.Lexeme }
func (p *VariantPattern) Span() token.Span     { return p.Tok.Span }
func (p *VariantPattern) patternNode()         {}

// RecordFieldPattern is one `name = pattern` inside a RecordPattern.
type RecordFieldPattern struct {
	Name    string
	Pattern Pattern
}

// RecordPattern destructures a record by field name.
type RecordPattern struct {
	Tok    token.Token
	Fields []RecordFieldPattern
}

func (p *RecordPattern) TokenLiteral() string { return p.Tok.Lexeme }
func (p *RecordPattern) Span() token.Span     { return p.Tok.Span }
func (p *RecordPattern) patternNode()         {}
