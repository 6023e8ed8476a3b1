package parser

import (
	"github.com/catapillie/marin/internal/ast"
	"github.com/catapillie/marin/internal/diagnostics"
	"github.com/catapillie/marin/internal/token"
)

// precedence table for binary operators, low to high.
var precedence = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3, "<": 3, "<=": 3, ">": 3, ">=": 3,
	"+": 4, "-": 4,
	"*": 5, "/": 5, "%": 5,
}

func (p *Parser) parseExpr() ast.Expression {
	return p.parseBinary(0)
}

func (p *Parser) parseBinary(minPrec int) ast.Expression {
	left := p.parseUnary()
	for p.at(token.Operator) {
		op := p.cur().Lexeme
		prec, ok := precedence[op]
		if !ok || prec < minPrec {
			break
		}
		tok := p.advance()
		right := p.parseBinary(prec + 1)
		left = &ast.BinaryExpr{Tok: tok, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expression {
	if p.at(token.Operator) && (p.cur().Lexeme == "-" || p.cur().Lexeme == "!") {
		tok := p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{Tok: tok, Op: tok.Lexeme, Operand: operand}
	}
	return p.parseCallOrPrimary()
}

func (p *Parser) parseCallOrPrimary() ast.Expression {
	expr := p.parsePrimary()
	for p.at(token.LParen) {
		tok := p.advance()
		var args []ast.Expression
		for !p.at(token.RParen) && !p.at(token.EOF) {
			args = append(args, p.parseExpr())
			if p.at(token.Comma) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RParen, "')'")
		expr = &ast.CallExpr{Tok: tok, Callee: expr, Args: args}
	}
	return expr
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.cur()
	switch tok.Kind {
	case token.Int:
		p.advance()
		return parseIntLiteral(tok)
	case token.Float:
		p.advance()
		return parseFloatLiteral(tok)
	case token.String:
		p.advance()
		return &ast.StringLiteral{Tok: tok, Value: tok.Lexeme}
	case token.KwTrue:
		p.advance()
		return &ast.BoolLiteral{Tok: tok, Value: true}
	case token.KwFalse:
		p.advance()
		return &ast.BoolLiteral{Tok: tok, Value: false}
	case token.Ident:
		p.advance()
		return &ast.Identifier{Tok: tok, Name: tok.Lexeme}
	case token.LParen:
		return p.parseTupleOrGroup()
	case token.LBracket:
		return p.parseArrayExpr()
	case token.LBrace:
		return p.parseRecordValue()
	case token.KwDo:
		return p.parseBlockExpr()
	case token.KwIf, token.KwWhile, token.KwLoop, token.KwMatch:
		return p.parseConditionalExpr()
	case token.KwBreak:
		return p.parseBreakExpr()
	case token.KwSkip:
		return p.parseSkipExpr()
	case token.KwFun:
		return p.parseFunExpr()
	default:
		p.errorf(diagnostics.InvalidExpression, tok, "unexpected token %q in expression", tok.Lexeme)
		p.advance()
		return &ast.Identifier{Tok: tok, Name: "<error>"}
	}
}

func (p *Parser) parseTupleOrGroup() ast.Expression {
	tok := p.advance() // '('
	var items []ast.Expression
	for !p.at(token.RParen) && !p.at(token.EOF) {
		items = append(items, p.parseExpr())
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RParen, "')'")
	return &ast.TupleExpr{Tok: tok, Items: items}
}

func (p *Parser) parseArrayExpr() ast.Expression {
	tok := p.advance() // '['
	var items []ast.Expression
	for !p.at(token.RBracket) && !p.at(token.EOF) {
		items = append(items, p.parseExpr())
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RBracket, "']'")
	return &ast.ArrayExpr{Tok: tok, Items: items}
}

func (p *Parser) parseRecordValue() ast.Expression {
	tok := p.advance() // '{'
	var fields []ast.FieldInit
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		nameTok := p.expect(token.Ident, "field name")
		p.expect(token.Equals, "'='")
		value := p.parseExpr()
		fields = append(fields, ast.FieldInit{Name: nameTok.Lexeme, Tok: nameTok, Value: value})
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RBrace, "'}'")
	return &ast.RecordValueExpr{Tok: tok, Fields: fields}
}

func (p *Parser) parseBlockExpr() ast.Expression {
	tok := p.advance() // 'do'
	label := ""
	if p.at(token.Ident) && p.peekIsLabelColon() {
		label = p.advance().Lexeme
		p.advance() // ':'
	}
	var items []ast.Statement
	for !p.at(token.KwEnd) && !p.at(token.EOF) {
		items = append(items, p.parseBlockItem())
		p.skipSemicolons()
	}
	p.expect(token.KwEnd, "'end'")
	return &ast.BlockExpr{Tok: tok, Label: label, Items: items}
}

// peekIsLabelColon distinguishes a block label (`do label: ...`) from the
// block's first statement happening to start with an identifier.
func (p *Parser) peekIsLabelColon() bool {
	return p.pos+1 < len(p.toks) && p.toks[p.pos+1].Kind == token.Colon
}

func (p *Parser) parseBlockItem() ast.Statement {
	if p.at(token.KwLet) {
		return p.parseLetStatement()
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseLetStatement() *ast.LetStatement {
	tok := p.advance() // 'let'
	pat := p.parsePattern()

	var params []*ast.Param
	if p.at(token.LParen) {
		params = p.parseParamList()
	}

	p.expect(token.Arrow, "'=>'")
	body := p.parseExpr()
	return &ast.LetStatement{Tok: tok, Pattern: pat, Params: params, Body: body}
}

func (p *Parser) parseParamList() []*ast.Param {
	p.advance() // '('
	var params []*ast.Param
	for !p.at(token.RParen) && !p.at(token.EOF) {
		pat := p.parsePattern()
		var typ ast.TypeExpr
		if p.at(token.Colon) {
			p.advance()
			typ = p.parseTypeExpr()
		}
		params = append(params, &ast.Param{Pattern: pat, Type: typ})
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RParen, "')'")
	return params
}

func (p *Parser) parseFunExpr() ast.Expression {
	tok := p.advance() // 'fun'
	params := p.parseParamList()
	var ret ast.TypeExpr
	if p.at(token.Colon) {
		p.advance()
		ret = p.parseTypeExpr()
	}
	p.expect(token.Arrow, "'=>'")
	body := p.parseExpr()
	return &ast.FunExpr{Tok: tok, Params: params, ReturnType: ret, Body: body}
}

func (p *Parser) parseBreakExpr() ast.Expression {
	tok := p.advance() // 'break'
	label := ""
	if p.at(token.Ident) {
		label = p.advance().Lexeme
	}
	var value ast.Expression
	if !p.atExprBoundary() {
		value = p.parseExpr()
	}
	return &ast.BreakExpr{Tok: tok, Label: label, Value: value}
}

func (p *Parser) parseSkipExpr() ast.Expression {
	tok := p.advance() // 'skip'
	label := ""
	if p.at(token.Ident) {
		label = p.advance().Lexeme
	}
	return &ast.SkipExpr{Tok: tok, Label: label}
}

// atExprBoundary reports whether the current token cannot start an
// expression, i.e. a bare `break`/`skip` ends here.
func (p *Parser) atExprBoundary() bool {
	switch p.cur().Kind {
	case token.Semicolon, token.KwEnd, token.EOF, token.RParen, token.RBracket, token.RBrace, token.KwThen, token.KwCase:
		return true
	default:
		return false
	}
}
