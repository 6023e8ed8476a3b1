package ast

import "github.com/catapillie/marin/internal/token"

// PathPartKind distinguishes the three kinds of import-path segment (§4.1).
type PathPartKind int

const (
	// PathNamed is an ordinary named segment, pushing one directory.
	PathNamed PathPartKind = iota
	// PathSuper is `super`, popping one directory.
	PathSuper
	// PathBuiltin is a quoted segment naming a compiler-provided root
	// directory (e.g. "std"); valid only as the first segment.
	PathBuiltin
)

// PathPart is one segment of an import path expression.
type PathPart struct {
	Kind PathPartKind
	Name string // segment name, or the quoted built-in root name
	Tok  token.Token
}

// ImportQuery is a single `import`/`import-from` path expression. Each
// query carries a unique ID supplied by the parser (§4.1) so the dependency
// analyzer can record which queries traverse which edge.
type ImportQuery struct {
	ID    int
	Parts []PathPart
	Tok   token.Token
}

func (q *ImportQuery) Span() token.Span { return q.Tok.Span }

// Import is an `import <query>` (total import) or
// `import <name>, <name> from <query>` (partial import, introducing
// aliases) statement.
type Import struct {
	Tok     token.Token
	Query   *ImportQuery
	Names   []string // empty for a total import
	IsFrom  bool
}

func (i *Import) TokenLiteral() string { return i.Tok.Lexeme }
func (i *Import) Span() token.Span     { return i.Tok.Span }
func (i *Import) statementNode()       {}
func (i *Import) declNode()            {}
