package ast

import "github.com/catapillie/marin/internal/token"

// TypeParam is a declared type-argument name, e.g. the `a` in `record Box(a)`.
type TypeParam struct {
	Name string
	Tok  token.Token
}

// FieldDecl is one field of a record, or one associated item of a class.
type FieldDecl struct {
	Name string
	Tok  token.Token
	Type TypeExpr
}

// RecordDecl is `record Name(args) { field: Type, ... }`.
type RecordDecl struct {
	Tok     token.Token
	Name    string
	Args    []TypeParam
	Fields  []FieldDecl
	Public  bool
}

func (d *RecordDecl) TokenLiteral() string { return d.Tok.Lexeme }
func (d *RecordDecl) Span() token.Span     { return d.Tok.Span }
func (d *RecordDecl) statementNode()       {}
func (d *RecordDecl) declNode()            {}

// VariantDecl is one tagged alternative of a union: `Tag(Type, Type)` or a
// nullary `Tag`.
type VariantDecl struct {
	Tag  string
	Tok  token.Token
	Args []TypeExpr
}

// UnionDecl is `union Name(args) { Variant | Variant(...) | ... }`.
type UnionDecl struct {
	Tok      token.Token
	Name     string
	Args     []TypeParam
	Variants []VariantDecl
	Public   bool
}

func (d *UnionDecl) TokenLiteral() string { return d.Tok.Lexeme }
func (d *UnionDecl) Span() token.Span     { return d.Tok.Span }
func (d *UnionDecl) statementNode()       {}
func (d *UnionDecl) declNode()            {}

// FunctionDecl is `let name(params) [: retType] => body`, the named-function
// shorthand of LetStatement, hoisted to a declaration for export purposes.
type FunctionDecl struct {
	Tok        token.Token
	Name       string
	Params     []*Param
	ReturnType TypeExpr
	Body       Expression
	Public     bool
}

func (d *FunctionDecl) TokenLiteral() string { return d.Tok.Lexeme }
func (d *FunctionDecl) Span() token.Span     { return d.Tok.Span }
func (d *FunctionDecl) statementNode()       {}
func (d *FunctionDecl) declNode()            {}

// ClassSignatureItem is one member of a class signature: a name plus the
// type scheme it must have in every instance, expressed in terms of the
// class's own type parameters.
type ClassSignatureItem struct {
	Name string
	Tok  token.Token
	Type TypeExpr
}

// ClassDecl is `class Name(classArgs; associatedArgs) { item: Type, ... }`
// (§4.2.4: a class has a class_arity and an associated_arity).
type ClassDecl struct {
	Tok            token.Token
	Name           string
	ClassArgs      []TypeParam
	AssociatedArgs []TypeParam
	Items          []ClassSignatureItem
	Public         bool
}

func (d *ClassDecl) TokenLiteral() string { return d.Tok.Lexeme }
func (d *ClassDecl) Span() token.Span     { return d.Tok.Span }
func (d *ClassDecl) statementNode()       {}
func (d *ClassDecl) declNode()            {}

// InstanceItem binds one class-signature item to a concrete implementation.
type InstanceItem struct {
	Name string
	Tok  token.Token
	Body Expression
}

// InstanceDecl is `have Name(classArgs; associatedArgs) { item = body, ... }`,
// introducing a scoped instance (§4.2.4).
type InstanceDecl struct {
	Tok            token.Token
	ClassName      string
	ClassArgs      []TypeExpr
	AssociatedArgs []TypeExpr
	Items          []InstanceItem
}

func (d *InstanceDecl) TokenLiteral() string { return d.Tok.Lexeme }
func (d *InstanceDecl) Span() token.Span     { return d.Tok.Span }
func (d *InstanceDecl) statementNode()       {}
func (d *InstanceDecl) declNode()            {}

// AliasDecl is `alias Name(args) = Type`, a transparent type synonym.
type AliasDecl struct {
	Tok    token.Token
	Name   string
	Args   []TypeParam
	Target TypeExpr
	Public bool
}

func (d *AliasDecl) TokenLiteral() string { return d.Tok.Lexeme }
func (d *AliasDecl) Span() token.Span     { return d.Tok.Span }
func (d *AliasDecl) statementNode()       {}
func (d *AliasDecl) declNode()            {}
