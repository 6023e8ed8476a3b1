// Package token defines source positions and lexical tokens shared by the
// lexer, parser, and diagnostics packages.
package token

import "fmt"

// Position is a single point in a source file.
type Position struct {
	Line   int // 1-based
	Column int // 1-based, counted in runes
	Offset int // 0-based byte offset
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is a half-open range [Start, End) in a single file.
type Span struct {
	File  string
	Start Position
	End   Position
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%s", s.File, s.Start)
}

// Kind enumerates lexical token categories.
type Kind int

const (
	EOF Kind = iota
	Ident
	Int
	Float
	String
	Bool

	// Keywords
	KwLet
	KwFun
	KwDo
	KwEnd
	KwIf
	KwThen
	KwElse
	KwWhile
	KwLoop
	KwMatch
	KwCase
	KwBreak
	KwSkip
	KwImport
	KwFrom
	KwSuper
	KwRecord
	KwUnion
	KwClass
	KwInstance
	KwHave
	KwAlias
	KwTrue
	KwFalse

	// Punctuation
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	Comma
	Colon
	ColonColon
	Semicolon
	Dot
	Arrow // =>
	Equals
	Pipe
	Underscore

	Operator // any binary/unary operator lexeme (+, -, *, /, ==, etc.)
)

// Token is a single lexical token.
type Token struct {
	Kind   Kind
	Lexeme string
	Span   Span
}
