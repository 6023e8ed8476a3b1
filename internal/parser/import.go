package parser

import (
	"github.com/catapillie/marin/internal/ast"
	"github.com/catapillie/marin/internal/diagnostics"
	"github.com/catapillie/marin/internal/token"
)

// parseImport parses `import <query>` or `import name, name from <query>`.
func (p *Parser) parseImport() *ast.Import {
	tok := p.advance() // 'import'

	// Partial import: a comma-separated name list followed by `from`.
	if p.at(token.Ident) && p.looksLikeFromClause() {
		var names []string
		names = append(names, p.advance().Lexeme)
		for p.at(token.Comma) {
			p.advance()
			names = append(names, p.expect(token.Ident, "identifier").Lexeme)
		}
		p.expect(token.KwFrom, "'from'")
		query := p.parseImportQuery()
		return &ast.Import{Tok: tok, Query: query, Names: names, IsFrom: true}
	}

	query := p.parseImportQuery()
	return &ast.Import{Tok: tok, Query: query}
}

// looksLikeFromClause scans ahead, without consuming, to tell apart
// `import a, b from "q"` (partial) from `import a.b.c` (total, query
// starting with a plain name). A query never contains a comma, so the
// presence of a comma or `from` before the next query-ending boundary
// disambiguates.
func (p *Parser) looksLikeFromClause() bool {
	i := p.pos
	for i < len(p.toks) {
		switch p.toks[i].Kind {
		case token.Comma:
			return true
		case token.KwFrom:
			return true
		case token.Dot, token.Ident, token.KwSuper:
			i++
			continue
		default:
			return false
		}
	}
	return false
}

func (p *Parser) parseImportQuery() *ast.ImportQuery {
	tok := p.cur()
	q := &ast.ImportQuery{ID: p.nextQueryID(), Tok: tok}

	for {
		part, ok := p.parsePathPart()
		if !ok {
			break
		}
		q.Parts = append(q.Parts, part)
		if !p.at(token.Dot) {
			break
		}
		p.advance()
	}

	if len(q.Parts) == 0 {
		p.errorf(diagnostics.InvalidImportQuery, tok, "empty import query")
	}
	return q
}

func (p *Parser) parsePathPart() (ast.PathPart, bool) {
	switch p.cur().Kind {
	case token.String:
		t := p.advance()
		return ast.PathPart{Kind: ast.PathBuiltin, Name: t.Lexeme, Tok: t}, true
	case token.KwSuper:
		t := p.advance()
		return ast.PathPart{Kind: ast.PathSuper, Name: "super", Tok: t}, true
	case token.Ident:
		t := p.advance()
		return ast.PathPart{Kind: ast.PathNamed, Name: t.Lexeme, Tok: t}, true
	default:
		return ast.PathPart{}, false
	}
}
