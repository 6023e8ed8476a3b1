package parser

import (
	"github.com/catapillie/marin/internal/ast"
	"github.com/catapillie/marin/internal/token"
)

func (p *Parser) parseTypeParamList() []ast.TypeParam {
	if !p.at(token.LParen) {
		return nil
	}
	p.advance()
	var params []ast.TypeParam
	for !p.at(token.RParen) && !p.at(token.EOF) {
		t := p.expect(token.Ident, "type parameter")
		params = append(params, ast.TypeParam{Name: t.Lexeme, Tok: t})
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RParen, "')'")
	return params
}

func (p *Parser) parseRecordDecl() *ast.RecordDecl {
	tok := p.advance() // 'record'
	name := p.expect(token.Ident, "record name").Lexeme
	args := p.parseTypeParamList()
	d := &ast.RecordDecl{Tok: tok, Name: name, Args: args, Public: true}
	p.expect(token.LBrace, "'{'")
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		fieldTok := p.expect(token.Ident, "field name")
		p.expect(token.Colon, "':'")
		typ := p.parseTypeExpr()
		d.Fields = append(d.Fields, ast.FieldDecl{Name: fieldTok.Lexeme, Tok: fieldTok, Type: typ})
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RBrace, "'}'")
	return d
}

func (p *Parser) parseUnionDecl() *ast.UnionDecl {
	tok := p.advance() // 'union'
	name := p.expect(token.Ident, "union name").Lexeme
	args := p.parseTypeParamList()
	d := &ast.UnionDecl{Tok: tok, Name: name, Args: args, Public: true}
	p.expect(token.LBrace, "'{'")
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		tagTok := p.expect(token.Ident, "variant name")
		v := ast.VariantDecl{Tag: tagTok.Lexeme, Tok: tagTok}
		if p.at(token.LParen) {
			p.advance()
			for !p.at(token.RParen) && !p.at(token.EOF) {
				v.Args = append(v.Args, p.parseTypeExpr())
				if p.at(token.Comma) {
					p.advance()
				} else {
					break
				}
			}
			p.expect(token.RParen, "')'")
		}
		d.Variants = append(d.Variants, v)
		if p.at(token.Pipe) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RBrace, "'}'")
	return d
}

func (p *Parser) parseClassDecl() *ast.ClassDecl {
	tok := p.advance() // 'class'
	name := p.expect(token.Ident, "class name").Lexeme
	d := &ast.ClassDecl{Tok: tok, Name: name, Public: true}
	if p.at(token.LParen) {
		p.advance()
		d.ClassArgs = p.parseTypeParamsUntil(token.Semicolon, token.RParen)
		if p.at(token.Semicolon) {
			p.advance()
			d.AssociatedArgs = p.parseTypeParamsUntil(token.RParen)
		}
		p.expect(token.RParen, "')'")
	}
	p.expect(token.LBrace, "'{'")
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		itemTok := p.expect(token.Ident, "class item name")
		p.expect(token.Colon, "':'")
		typ := p.parseTypeExpr()
		d.Items = append(d.Items, ast.ClassSignatureItem{Name: itemTok.Lexeme, Tok: itemTok, Type: typ})
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RBrace, "'}'")
	return d
}

// parseTypeParamsUntil reads a comma-separated identifier list stopping at
// (without consuming) any of the given terminator kinds.
func (p *Parser) parseTypeParamsUntil(terminators ...token.Kind) []ast.TypeParam {
	var params []ast.TypeParam
	for !p.atAnyOf(terminators...) && !p.at(token.EOF) {
		t := p.expect(token.Ident, "type parameter")
		params = append(params, ast.TypeParam{Name: t.Lexeme, Tok: t})
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	return params
}

func (p *Parser) atAnyOf(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.at(k) {
			return true
		}
	}
	return false
}

func (p *Parser) parseInstanceDecl() *ast.InstanceDecl {
	tok := p.advance() // 'have'
	className := p.expect(token.Ident, "class name").Lexeme
	d := &ast.InstanceDecl{Tok: tok, ClassName: className}
	if p.at(token.LParen) {
		p.advance()
		d.ClassArgs = p.parseTypeExprListUntil(token.Semicolon, token.RParen)
		if p.at(token.Semicolon) {
			p.advance()
			d.AssociatedArgs = p.parseTypeExprListUntil(token.RParen)
		}
		p.expect(token.RParen, "')'")
	}
	p.expect(token.LBrace, "'{'")
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		itemTok := p.expect(token.Ident, "instance item name")
		p.expect(token.Equals, "'='")
		body := p.parseExpr()
		d.Items = append(d.Items, ast.InstanceItem{Name: itemTok.Lexeme, Tok: itemTok, Body: body})
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RBrace, "'}'")
	return d
}

func (p *Parser) parseTypeExprListUntil(terminators ...token.Kind) []ast.TypeExpr {
	var items []ast.TypeExpr
	for !p.atAnyOf(terminators...) && !p.at(token.EOF) {
		items = append(items, p.parseTypeExpr())
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	return items
}

func (p *Parser) parseAliasDecl() *ast.AliasDecl {
	tok := p.advance() // 'alias'
	name := p.expect(token.Ident, "alias name").Lexeme
	args := p.parseTypeParamList()
	p.expect(token.Equals, "'='")
	target := p.parseTypeExpr()
	return &ast.AliasDecl{Tok: tok, Name: name, Args: args, Target: target, Public: true}
}
