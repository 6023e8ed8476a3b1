// Package ast defines the untyped abstract syntax tree produced by the
// lexer/parser (§2 step 1). Per §1, the lexer and the AST's surface syntax
// are external collaborators whose grammar is not the subject of this
// specification; this package defines only the concrete shape the
// dependency analyzer and type checker consume, mirroring the node-kind
// style of funvibe/funxy's internal/ast (TokenLiteral() and a
// statementNode()/expressionNode() marker pair; nodes have no Accept or
// Visitor methods) adapted to Marin's surface grammar.
package ast

import "github.com/catapillie/marin/internal/token"

// Node is the base interface every AST node implements.
type Node interface {
	TokenLiteral() string
	Span() token.Span
}

// Statement is a top-level or block-level statement.
type Statement interface {
	Node
	statementNode()
}

// Expression is any value-producing syntax.
type Expression interface {
	Node
	expressionNode()
}

// Decl is a top-level declaration (record, union, class, instance, function,
// alias, have, constant).
type Decl interface {
	Statement
	declNode()
}

// File is one parsed source file: its declarations, imports, and any
// top-level expression statements (a file may also just be a script).
type File struct {
	Path       string
	Imports    []*Import
	Decls      []Decl
	Statements []Statement
}

func (f *File) TokenLiteral() string { return f.Path }
func (f *File) Span() token.Span     { return token.Span{File: f.Path} }

// ExpressionStatement wraps a bare expression used as a statement.
type ExpressionStatement struct {
	Tok  token.Token
	Expr Expression
}

func (s *ExpressionStatement) TokenLiteral() string { return s.Tok.Lexeme }
func (s *ExpressionStatement) Span() token.Span     { return s.Tok.Span }
func (s *ExpressionStatement) statementNode()       {}

// LetStatement binds a pattern (often just a name) to the value of an
// expression. The pattern must be irrefutable (§4.3).
type LetStatement struct {
	Tok     token.Token // "let"
	Pattern Pattern
	Params  []*Param // non-nil for function-shorthand `let f(x) => ...`
	Body    Expression
}

func (s *LetStatement) TokenLiteral() string { return s.Tok.Lexeme }
func (s *LetStatement) Span() token.Span     { return s.Tok.Span }
func (s *LetStatement) statementNode()       {}

// Param is one function parameter: an irrefutable pattern plus an optional
// type annotation.
type Param struct {
	Pattern Pattern
	Type    TypeExpr // may be nil (inferred)
}
