// Package parser implements a minimal recursive-descent parser from Marin
// source tokens to internal/ast. Per §1 the AST's surface syntax and its
// parser are external collaborators; this implementation exists so the
// dependency analyzer, checker, and lowering stages have real ASTs to
// operate on end to end. Structured after funvibe/funxy's
// internal/parser: one Parser struct holding a token cursor plus an
// accumulated diagnostic batch, a parseX() method per grammar production,
// and panic/recover-free error recovery that substitutes a Missing node and
// keeps going (mirroring the checker's own "never throw away a subtree"
// policy, §7).
package parser

import (
	"fmt"
	"strconv"

	"github.com/catapillie/marin/internal/ast"
	"github.com/catapillie/marin/internal/diagnostics"
	"github.com/catapillie/marin/internal/lexer"
	"github.com/catapillie/marin/internal/token"
)

const phase = "parser"

// Parser holds the token stream and accumulated diagnostics for one file.
type Parser struct {
	file    string
	toks    []token.Token
	pos     int
	queryID int
	batch   diagnostics.Batch
}

// Parse tokenizes and parses one file's source text into an ast.File.
func Parse(file, src string) (*ast.File, *diagnostics.Batch) {
	p := &Parser{file: file, toks: lexer.All(file, src)}
	f := p.parseFile()
	return f, &p.batch
}

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(k token.Kind, what string) token.Token {
	if p.at(k) {
		return p.advance()
	}
	p.errorf(diagnostics.InvalidExpression, p.cur(), "expected %s, found %q", what, p.cur().Lexeme)
	return p.cur()
}

func (p *Parser) errorf(code diagnostics.Code, tok token.Token, format string, args ...any) {
	p.batch.Add(diagnostics.NewError(code, phase, tok, fmt.Sprintf(format, args...)))
}

func (p *Parser) nextQueryID() int {
	p.queryID++
	return p.queryID
}

func (p *Parser) parseFile() *ast.File {
	f := &ast.File{Path: p.file}
	for !p.at(token.EOF) {
		switch p.cur().Kind {
		case token.KwImport:
			f.Imports = append(f.Imports, p.parseImport())
		case token.KwRecord:
			f.Decls = append(f.Decls, p.parseRecordDecl())
		case token.KwUnion:
			f.Decls = append(f.Decls, p.parseUnionDecl())
		case token.KwClass:
			f.Decls = append(f.Decls, p.parseClassDecl())
		case token.KwHave:
			f.Decls = append(f.Decls, p.parseInstanceDecl())
		case token.KwAlias:
			f.Decls = append(f.Decls, p.parseAliasDecl())
		case token.KwLet:
			stmt := p.parseLetStatement()
			f.Statements = append(f.Statements, stmt)
			if fn := letAsFunctionDecl(stmt); fn != nil {
				f.Decls = append(f.Decls, fn)
			}
		default:
			f.Statements = append(f.Statements, p.parseExpressionStatement())
		}
		p.skipSemicolons()
	}
	return f
}

func (p *Parser) skipSemicolons() {
	for p.at(token.Semicolon) {
		p.advance()
	}
}

// letAsFunctionDecl promotes `let name(params) => body` to a FunctionDecl so
// it can be exported; plain value lets are not exportable declarations.
func letAsFunctionDecl(s *ast.LetStatement) *ast.FunctionDecl {
	if s.Params == nil {
		return nil
	}
	bind, ok := s.Pattern.(*ast.BindingPattern)
	if !ok {
		return nil
	}
	return &ast.FunctionDecl{
		Tok: s.Tok, Name: bind.Name, Params: s.Params, Body: s.Body,
		Public: true,
	}
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	tok := p.cur()
	expr := p.parseExpr()
	return &ast.ExpressionStatement{Tok: tok, Expr: expr}
}

func parseIntLiteral(tok token.Token) *ast.IntLiteral {
	v, _ := strconv.ParseInt(tok.Lexeme, 10, 64)
	return &ast.IntLiteral{Tok: tok, Value: v}
}

func parseFloatLiteral(tok token.Token) *ast.FloatLiteral {
	v, _ := strconv.ParseFloat(tok.Lexeme, 64)
	return &ast.FloatLiteral{Tok: tok, Value: v}
}
