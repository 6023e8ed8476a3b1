package parser

import (
	"github.com/catapillie/marin/internal/ast"
	"github.com/catapillie/marin/internal/token"
)

// parseConditionalExpr parses a chain of if/elif-as-else-if/while/loop/match
// branches followed by optional `else` (§4.2.3). Marin spells "else if" as
// a fresh `if` branch nested under the `else` keyword, so the chain is
// built by repeatedly looking for a trailing `else` that itself starts a
// new branch.
func (p *Parser) parseConditionalExpr() ast.Expression {
	tok := p.cur()
	var branches []ast.Branch
	branches = append(branches, p.parseBranch())
	for p.at(token.KwElse) {
		p.advance()
		switch p.cur().Kind {
		case token.KwIf, token.KwWhile, token.KwLoop, token.KwMatch:
			branches = append(branches, p.parseBranch())
		default:
			body := p.parseExpr()
			branches = append(branches, ast.Branch{Tok: tok, Kind: ast.BranchElse, Body: body})
		}
	}
	return &ast.ConditionalExpr{Tok: tok, Branches: branches}
}

func (p *Parser) parseBranch() ast.Branch {
	switch p.cur().Kind {
	case token.KwIf:
		tok := p.advance()
		cond := p.parseExpr()
		p.expect(token.KwThen, "'then'")
		body := p.parseExpr()
		return ast.Branch{Tok: tok, Kind: ast.BranchIf, Condition: cond, Body: body}
	case token.KwWhile:
		tok := p.advance()
		cond := p.parseExpr()
		p.expect(token.KwThen, "'then'")
		body := p.parseExpr()
		return ast.Branch{Tok: tok, Kind: ast.BranchWhile, Condition: cond, Body: body}
	case token.KwLoop:
		tok := p.advance()
		p.expect(token.KwThen, "'then'")
		body := p.parseExpr()
		return ast.Branch{Tok: tok, Kind: ast.BranchLoop, Body: body}
	case token.KwMatch:
		tok := p.advance()
		scrutinee := p.parseExpr()
		var cases []ast.MatchCase
		for p.at(token.KwCase) {
			cases = append(cases, p.parseMatchCase())
		}
		return ast.Branch{Tok: tok, Kind: ast.BranchMatch, Scrutinee: scrutinee, Cases: cases}
	default:
		tok := p.cur()
		body := p.parseExpr()
		return ast.Branch{Tok: tok, Kind: ast.BranchIf, Body: body}
	}
}

func (p *Parser) parseMatchCase() ast.MatchCase {
	tok := p.advance() // 'case'
	pat := p.parsePattern()
	var guard ast.Expression
	if p.at(token.KwIf) {
		p.advance()
		guard = p.parseExpr()
	}
	p.expect(token.Arrow, "'=>'")
	body := p.parseExpr()
	return ast.MatchCase{Tok: tok, Pattern: pat, Guard: guard, Body: body}
}
