package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneiron-dev/helixql/internal/lexer"
	"github.com/oneiron-dev/helixql/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeSchemaItem(t *testing.T) {
	src := `N::Person { name: String, INDEX age: I32 }`
	toks, errs := lexer.Tokenize("t.hx", src)
	require.Empty(t, errs)
	assert.Equal(t, []token.Kind{
		token.KwN, token.DblColon, token.Ident, token.LBrace,
		token.Ident, token.Colon, token.Ident, token.Comma,
		token.KwIndex, token.Ident, token.Colon, token.Ident,
		token.RBrace, token.EOF,
	}, kinds(toks))
}

func TestTokenizeTraversalOperators(t *testing.T) {
	src := `u <- N<User>(id)::{file_id: id, name, ...}`
	toks, errs := lexer.Tokenize("t.hx", src)
	require.Empty(t, errs)
	assert.Contains(t, kinds(toks), token.LeftArrow)
	assert.Contains(t, kinds(toks), token.DblColon)
	assert.Contains(t, kinds(toks), token.DotDotDot)
}

func TestTokenizeStringEscapes(t *testing.T) {
	toks, errs := lexer.Tokenize("t.hx", `"a\nb\"c"`)
	require.Empty(t, errs)
	require.Len(t, toks, 2)
	assert.Equal(t, "a\nb\"c", toks[0].Lit)
}

func TestTokenizeUnterminatedString(t *testing.T) {
	_, errs := lexer.Tokenize("t.hx", `"abc`)
	require.Len(t, errs, 1)
	assert.Equal(t, "E002", string(errs[0].Code))
}

func TestTokenizeNumbers(t *testing.T) {
	toks, errs := lexer.Tokenize("t.hx", `32.23 -5 30`)
	require.Empty(t, errs)
	require.Len(t, toks, 4)
	assert.Equal(t, token.Float, toks[0].Kind)
	assert.Equal(t, token.Int, toks[1].Kind)
	assert.Equal(t, "-5", toks[1].Lit)
}
