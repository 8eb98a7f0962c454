package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CWBudde/go-sysy-lsp/internal/server"
)

// findToken finds a token at the given line and character position.
func findToken(tokens []server.SemanticToken, line, startChar uint32) *server.SemanticToken {
	for i := range tokens {
		if tokens[i].Line == line && tokens[i].StartChar == startChar {
			return &tokens[i]
		}
	}

	return nil
}

func collect(t *testing.T, src string) ([]server.SemanticToken, *server.SemanticTokensLegend) {
	t.Helper()

	root, ls := parseSource(t, src)
	legend := server.NewSemanticTokensLegend()

	tokens, err := CollectSemanticTokens(root, ls, legend)
	require.NoError(t, err)

	return tokens, legend
}

func TestCollectSemanticTokens_Classification(t *testing.T) {
	src := "const int N = 10;\nint f(int a) {\n  // note\n  return a + N;\n}\n"
	tokens, legend := collect(t, src)

	typeOf := func(name string) uint32 { return uint32(legend.GetTokenTypeIndex(name)) }
	decl := legend.GetModifierMask(server.TokenModifierDeclaration)
	constDecl := legend.GetModifierMask(server.TokenModifierDeclaration, server.TokenModifierReadonly)

	want := []server.SemanticToken{
		{Line: 0, StartChar: 0, Length: 5, TokenType: typeOf(server.TokenTypeKeyword)},
		{Line: 0, StartChar: 6, Length: 3, TokenType: typeOf(server.TokenTypeType)},
		{Line: 0, StartChar: 10, Length: 1, TokenType: typeOf(server.TokenTypeVariable), Modifiers: constDecl},
		{Line: 0, StartChar: 12, Length: 1, TokenType: typeOf(server.TokenTypeOperator)},
		{Line: 0, StartChar: 14, Length: 2, TokenType: typeOf(server.TokenTypeNumber)},
		{Line: 1, StartChar: 0, Length: 3, TokenType: typeOf(server.TokenTypeType)},
		{Line: 1, StartChar: 4, Length: 1, TokenType: typeOf(server.TokenTypeFunction), Modifiers: decl},
		{Line: 1, StartChar: 6, Length: 3, TokenType: typeOf(server.TokenTypeType)},
		{Line: 1, StartChar: 10, Length: 1, TokenType: typeOf(server.TokenTypeVariable), Modifiers: decl},
		{Line: 2, StartChar: 2, Length: 7, TokenType: typeOf(server.TokenTypeComment)},
		{Line: 3, StartChar: 2, Length: 6, TokenType: typeOf(server.TokenTypeKeyword)},
		{Line: 3, StartChar: 9, Length: 1, TokenType: typeOf(server.TokenTypeVariable)},
		{Line: 3, StartChar: 11, Length: 1, TokenType: typeOf(server.TokenTypeOperator)},
		{Line: 3, StartChar: 13, Length: 1, TokenType: typeOf(server.TokenTypeVariable)},
	}
	assert.Equal(t, want, tokens)
}

func TestCollectSemanticTokens_CallsAndSecondDeclarator(t *testing.T) {
	src := "int a, b;\nint g() { return g(); }\n"
	tokens, legend := collect(t, src)

	b := findToken(tokens, 0, 7)
	require.NotNil(t, b)
	assert.Equal(t, uint32(legend.GetTokenTypeIndex(server.TokenTypeVariable)), b.TokenType)
	assert.Equal(t, legend.GetModifierMask(server.TokenModifierDeclaration), b.Modifiers)

	call := findToken(tokens, 1, 17)
	require.NotNil(t, call)
	assert.Equal(t, uint32(legend.GetTokenTypeIndex(server.TokenTypeFunction)), call.TokenType)
	assert.Zero(t, call.Modifiers)
}

func TestCollectSemanticTokens_MultiLineComment(t *testing.T) {
	src := "/* one\n   two */ int x;\n"
	tokens, legend := collect(t, src)

	comment := uint32(legend.GetTokenTypeIndex(server.TokenTypeComment))

	first := findToken(tokens, 0, 0)
	require.NotNil(t, first)
	assert.Equal(t, comment, first.TokenType)
	assert.Equal(t, uint32(6), first.Length)

	second := findToken(tokens, 1, 0)
	require.NotNil(t, second)
	assert.Equal(t, comment, second.TokenType)
	assert.Equal(t, uint32(9), second.Length)
}

func TestCollectSemanticTokens_UTF16Columns(t *testing.T) {
	src := "/* 😀 */ int x;\n"
	tokens, legend := collect(t, src)

	comment := findToken(tokens, 0, 0)
	require.NotNil(t, comment)
	assert.Equal(t, uint32(8), comment.Length, "the emoji takes two UTF-16 units")

	x := findToken(tokens, 0, 13)
	require.NotNil(t, x)
	assert.Equal(t, uint32(legend.GetTokenTypeIndex(server.TokenTypeVariable)), x.TokenType)
}

func TestCollectSemanticTokens_NilInputs(t *testing.T) {
	root, ls := parseSource(t, "int x;\n")

	tokens, err := CollectSemanticTokens(nil, ls, server.NewSemanticTokensLegend())
	assert.NoError(t, err)
	assert.Empty(t, tokens)

	tokens, err = CollectSemanticTokens(root, ls, nil)
	assert.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestEncodeSemanticTokens(t *testing.T) {
	tokens := []server.SemanticToken{
		{Line: 0, StartChar: 0, Length: 5, TokenType: 0},
		{Line: 0, StartChar: 6, Length: 3, TokenType: 6},
		{Line: 2, StartChar: 4, Length: 1, TokenType: 2, Modifiers: 1},
	}

	assert.Equal(t, []uint32{
		0, 0, 5, 0, 0,
		0, 6, 3, 6, 0,
		2, 4, 1, 2, 1,
	}, EncodeSemanticTokens(tokens))

	assert.Empty(t, EncodeSemanticTokens(nil))
}
