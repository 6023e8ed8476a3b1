package ast

import "github.com/catapillie/marin/internal/token"

// TypeExpr is the syntactic representation of a type annotation, as it
// appears in a signature, field, or alias target. The checker resolves each
// TypeExpr against the entity table and the type arena (§4.2).
type TypeExpr interface {
	Node
	typeExprNode()
}

// NamedTypeExpr references a built-in atomic type (Int, Float, Bool, String)
// or a user type (record/union/alias/type-variable) by name, with optional
// type arguments.
type NamedTypeExpr struct {
	Tok  token.Token
	Name string
	Args []TypeExpr
}

func (t *NamedTypeExpr) TokenLiteral() string { return t.Tok.Lexeme }
func (t *NamedTypeExpr) Span() token.Span     { return t.Tok.Span }
func (t *NamedTypeExpr) typeExprNode()        {}

// TupleTypeExpr is `(T, U, ...)`.
type TupleTypeExpr struct {
	Tok   token.Token
	Items []TypeExpr
}

func (t *TupleTypeExpr) TokenLiteral() string { return t.Tok.Lexeme }
func (t *TupleTypeExpr) Span() token.Span     { return t.Tok.Span }
func (t *TupleTypeExpr) typeExprNode()        {}

// ArrayTypeExpr is `[]T`.
type ArrayTypeExpr struct {
	Tok  token.Token
	Elem TypeExpr
}

func (t *ArrayTypeExpr) TokenLiteral() string { return t.Tok.Lexeme }
func (t *ArrayTypeExpr) Span() token.Span     { return t.Tok.Span }
func (t *ArrayTypeExpr) typeExprNode()        {}

// LambdaTypeExpr is `(T, U) -> R`.
type LambdaTypeExpr struct {
	Tok    token.Token
	Params []TypeExpr
	Result TypeExpr
}

func (t *LambdaTypeExpr) TokenLiteral() string { return t.Tok.Lexeme }
func (t *LambdaTypeExpr) Span() token.Span     { return t.Tok.Span }
func (t *LambdaTypeExpr) typeExprNode()        {}
