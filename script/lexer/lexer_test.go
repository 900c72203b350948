package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTypes(t *testing.T, src string) []TokenType {
	t.Helper()
	l := New(src)
	var types []TokenType
	for {
		tok := l.Next()
		types = append(types, tok.Type)
		if tok.Type == EOF {
			break
		}
	}
	return types
}

func TestLexerPunctuationAndOperators(t *testing.T) {
	types := tokenTypes(t, "a = 1 + 2 * (3 - 4) / 5;")
	assert.Equal(t, []TokenType{
		IDENTIFIER, ASSIGN, NUMBER, PLUS, NUMBER, STAR, LPAREN, NUMBER, MINUS, NUMBER, RPAREN, SLASH, NUMBER, SEMICOLON, EOF,
	}, types)
}

func TestLexerKeywords(t *testing.T) {
	types := tokenTypes(t, "if else for return")
	assert.Equal(t, []TokenType{IF, ELSE, FOR, RETURN, EOF}, types)
}

func TestLexerComparisons(t *testing.T) {
	types := tokenTypes(t, "< <= > >= == !=")
	assert.Equal(t, []TokenType{LT, LT_EQ, GT, GT_EQ, EQ_EQ, NOT_EQ, EOF}, types)
}

func TestLexerNumberIntegerVsFloat(t *testing.T) {
	l := New("42 3.14")
	tok := l.Next()
	require.Equal(t, NUMBER, tok.Type)
	assert.False(t, tok.IsFloat)
	assert.Equal(t, float64(42), tok.Number)

	tok = l.Next()
	require.Equal(t, NUMBER, tok.Type)
	assert.True(t, tok.IsFloat)
	assert.InDelta(t, 3.14, tok.Number, 0.0001)
}

func TestLexerStringEscapes(t *testing.T) {
	l := New(`"a\nb\tc\\d\"e" 'single\'q'`)
	tok := l.Next()
	require.Equal(t, STRING, tok.Type)
	assert.Equal(t, "a\nb\tc\\d\"e", tok.Lexeme)

	tok = l.Next()
	require.Equal(t, STRING, tok.Type)
	assert.Equal(t, "single'q", tok.Lexeme)
}

func TestLexerUnrecognizedEscapePreservesBackslash(t *testing.T) {
	l := New(`"a\zb"`)
	tok := l.Next()
	require.Equal(t, STRING, tok.Type)
	assert.Equal(t, `a\zb`, tok.Lexeme)
}

func TestLexerUnterminatedStringEndsAtEOF(t *testing.T) {
	l := New(`"abc`)
	tok := l.Next()
	require.Equal(t, STRING, tok.Type)
	assert.Equal(t, "abc", tok.Lexeme)
	assert.Equal(t, EOF, l.Next().Type)
}

func TestLexerPathAtStatementStart(t *testing.T) {
	types := tokenTypes(t, "/bin/ls -la;\n/usr/bin/env")
	assert.Equal(t, []TokenType{PATH, MINUS, IDENTIFIER, SEMICOLON, PATH, EOF}, types)
}

func TestLexerSlashIsDivisionMidExpression(t *testing.T) {
	types := tokenTypes(t, "a = b / c;")
	assert.Equal(t, []TokenType{IDENTIFIER, ASSIGN, IDENTIFIER, SLASH, IDENTIFIER, SEMICOLON, EOF}, types)
}

func TestLexerDoubleSlashIsNotPath(t *testing.T) {
	l := New("//comment-like")
	tok := l.Next()
	assert.Equal(t, SLASH, tok.Type)
}

func TestLexerPathAfterBraceAndSemicolon(t *testing.T) {
	types := tokenTypes(t, "{ /bin/ls; /bin/pwd; }")
	assert.Equal(t, []TokenType{LBRACE, PATH, SEMICOLON, PATH, SEMICOLON, RBRACE, EOF}, types)
}

func TestLexerLineColumnTracking(t *testing.T) {
	l := New("a\nb = 1")
	l.Next() // a
	tok := l.Next() // b
	assert.Equal(t, 2, tok.Position.Line)
	assert.Equal(t, 1, tok.Position.Column)
}
