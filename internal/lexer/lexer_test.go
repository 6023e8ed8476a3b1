package lexer

import (
	"testing"

	"github.com/catapillie/marin/internal/token"
	"github.com/stretchr/testify/assert"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLexesLetBinding(t *testing.T) {
	toks := All("a.mar", `let f(x) => x; f(42)`)
	assert.Equal(t, []token.Kind{
		token.KwLet, token.Ident, token.LParen, token.Ident, token.RParen,
		token.Arrow, token.Ident, token.Semicolon, token.Ident, token.LParen,
		token.Int, token.RParen, token.EOF,
	}, kinds(toks))
}

func TestLexesStringEscapes(t *testing.T) {
	toks := All("a.mar", `"hello\nworld"`)
	assert.Equal(t, token.String, toks[0].Kind)
	assert.Equal(t, "hello\nworld", toks[0].Lexeme)
}

func TestLexesFloatVsIntVsDot(t *testing.T) {
	toks := All("a.mar", `1.5 1 x.y`)
	assert.Equal(t, []token.Kind{
		token.Float, token.Int, token.Ident, token.Dot, token.Ident, token.EOF,
	}, kinds(toks))
}

func TestSkipsLineComments(t *testing.T) {
	toks := All("a.mar", "# comment\n42")
	assert.Equal(t, token.Int, toks[0].Kind)
	assert.Equal(t, "42", toks[0].Lexeme)
}
