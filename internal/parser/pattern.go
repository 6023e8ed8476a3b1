package parser

import (
	"github.com/catapillie/marin/internal/ast"
	"github.com/catapillie/marin/internal/diagnostics"
	"github.com/catapillie/marin/internal/token"
)

func (p *Parser) parsePattern() ast.Pattern {
	tok := p.cur()
	switch tok.Kind {
	case token.Underscore:
		p.advance()
		return &ast.DiscardPattern{Tok: tok}
	case token.Ident:
		p.advance()
		if p.at(token.LParen) {
			return p.parseVariantPattern(tok)
		}
		return &ast.BindingPattern{Tok: tok, Name: tok.Lexeme}
	case token.Int:
		p.advance()
		lit := parseIntLiteral(tok)
		return &ast.LiteralPattern{Tok: tok, Value: lit.Value}
	case token.Float:
		p.advance()
		lit := parseFloatLiteral(tok)
		return &ast.LiteralPattern{Tok: tok, Value: lit.Value}
	case token.String:
		p.advance()
		return &ast.LiteralPattern{Tok: tok, Value: tok.Lexeme}
	case token.KwTrue:
		p.advance()
		return &ast.LiteralPattern{Tok: tok, Value: true}
	case token.KwFalse:
		p.advance()
		return &ast.LiteralPattern{Tok: tok, Value: false}
	case token.LParen:
		return p.parseTuplePattern()
	case token.LBrace:
		return p.parseRecordPattern()
	default:
		p.errorf(diagnostics.InvalidPattern, tok, "unexpected token %q in pattern", tok.Lexeme)
		p.advance()
		return &ast.MissingPattern{Tok: tok}
	}
}

func (p *Parser) parseVariantPattern(tag token.Token) ast.Pattern {
	p.advance() // '('
	var args []ast.Pattern
	for !p.at(token.RParen) && !p.at(token.EOF) {
		args = append(args, p.parsePattern())
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RParen, "')'")
	return &ast.VariantPattern{Tok: tag, Tag: tag.Lexeme, Args: args}
}

func (p *Parser) parseTuplePattern() ast.Pattern {
	tok := p.advance() // '('
	var items []ast.Pattern
	for !p.at(token.RParen) && !p.at(token.EOF) {
		items = append(items, p.parsePattern())
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RParen, "')'")
	if len(items) == 1 {
		return items[0] // grouping parens, not a 1-tuple
	}
	return &ast.TuplePattern{Tok: tok, Items: items}
}

func (p *Parser) parseRecordPattern() ast.Pattern {
	tok := p.advance() // '{'
	var fields []ast.RecordFieldPattern
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		nameTok := p.expect(token.Ident, "field name")
		p.expect(token.Equals, "'='")
		fields = append(fields, ast.RecordFieldPattern{Name: nameTok.Lexeme, Pattern: p.parsePattern()})
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RBrace, "'}'")
	return &ast.RecordPattern{Tok: tok, Fields: fields}
}
