package parser

import (
	"github.com/catapillie/marin/internal/ast"
	"github.com/catapillie/marin/internal/diagnostics"
	"github.com/catapillie/marin/internal/token"
)

func (p *Parser) parseTypeExpr() ast.TypeExpr {
	switch p.cur().Kind {
	case token.LParen:
		return p.parseParenTypeExpr()
	case token.LBracket:
		tok := p.advance()
		elem := p.parseTypeExpr()
		return &ast.ArrayTypeExpr{Tok: tok, Elem: elem}
	case token.Ident:
		tok := p.advance()
		var args []ast.TypeExpr
		if p.at(token.LParen) {
			p.advance()
			for !p.at(token.RParen) && !p.at(token.EOF) {
				args = append(args, p.parseTypeExpr())
				if p.at(token.Comma) {
					p.advance()
				} else {
					break
				}
			}
			p.expect(token.RParen, "')'")
		}
		return &ast.NamedTypeExpr{Tok: tok, Name: tok.Lexeme, Args: args}
	default:
		tok := p.cur()
		p.errorf(diagnostics.InvalidType, tok, "unexpected token %q in type", tok.Lexeme)
		p.advance()
		return &ast.NamedTypeExpr{Tok: tok, Name: "<error>"}
	}
}

// parseParenTypeExpr parses `(T, U)` as either a tuple type or, if followed
// by `->`, the parameter list of a lambda type.
func (p *Parser) parseParenTypeExpr() ast.TypeExpr {
	tok := p.advance() // '('
	var items []ast.TypeExpr
	for !p.at(token.RParen) && !p.at(token.EOF) {
		items = append(items, p.parseTypeExpr())
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RParen, "')'")

	if p.atArrow() {
		p.consumeArrow()
		result := p.parseTypeExpr()
		return &ast.LambdaTypeExpr{Tok: tok, Params: items, Result: result}
	}
	if len(items) == 1 {
		return items[0]
	}
	return &ast.TupleTypeExpr{Tok: tok, Items: items}
}

func (p *Parser) peekNext() token.Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) atArrow() bool {
	return p.at(token.Operator) && p.cur().Lexeme == "-" && p.peekNext().Lexeme == ">"
}

func (p *Parser) consumeArrow() {
	p.advance() // '-'
	p.advance() // '>'
}
