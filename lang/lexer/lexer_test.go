package lexer

import (
	"testing"

	"github.com/mna/sif/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(src string) []TokenAndValue {
	l := New([]byte(src))
	var toks []TokenAndValue
	for {
		tv := l.Next()
		toks = append(toks, tv)
		if tv.Tok == token.EOF {
			break
		}
	}
	return toks
}

func TestLexerPunctuationAndKeywords(t *testing.T) {
	toks := scanAll(`var x = 5; if x < 3 { } elif x >= 2 {} else {}`)
	kinds := make([]token.Token, len(toks))
	for i, tv := range toks {
		kinds[i] = tv.Tok
	}
	require.Equal(t, []token.Token{
		token.VAR, token.IDENT, token.ASSIGN, token.NUMBER, token.SEMI,
		token.IF, token.IDENT, token.LT, token.NUMBER, token.LBRACE, token.RBRACE,
		token.ELIF, token.IDENT, token.GE, token.NUMBER, token.LBRACE, token.RBRACE,
		token.ELSE, token.LBRACE, token.RBRACE,
		token.EOF,
	}, kinds)
}

func TestLexerNumberAndString(t *testing.T) {
	toks := scanAll(`3.5 "hello"`)
	require.Equal(t, token.NUMBER, toks[0].Tok)
	require.InDelta(t, 3.5, toks[0].Num, 0.0001)
	require.Equal(t, token.STRING, toks[1].Tok)
	require.Equal(t, "hello", toks[1].Str)
}

func TestLexerTableArrayBrackets(t *testing.T) {
	toks := scanAll(`[[ a => 1 ]] [1, 2]`)
	kinds := make([]token.Token, 0, len(toks))
	for _, tv := range toks {
		kinds = append(kinds, tv.Tok)
	}
	require.Equal(t, []token.Token{
		token.LLBRACK, token.IDENT, token.ARROW, token.NUMBER, token.RRBRACK,
		token.LBRACK, token.NUMBER, token.COMMA, token.NUMBER, token.RBRACK,
		token.EOF,
	}, kinds)
}

func TestLexerComments(t *testing.T) {
	toks := scanAll("// comment\n# also a comment\nvar x;")
	require.Equal(t, token.VAR, toks[0].Tok)
}

func TestLexerUnterminatedString(t *testing.T) {
	l := New([]byte(`"abc`))
	tv := l.Next()
	require.Equal(t, token.STRING, tv.Tok)
	require.Len(t, l.Errors(), 1)
}

func TestLexerIllegalChar(t *testing.T) {
	l := New([]byte(`$`))
	tv := l.Next()
	require.Equal(t, token.EOF, tv.Tok)
	require.Len(t, l.Errors(), 1)
}

func TestLexerStdlibCall(t *testing.T) {
	toks := scanAll(`@print(x);`)
	require.Equal(t, token.AT, toks[0].Tok)
	require.Equal(t, token.IDENT, toks[1].Tok)
	require.Equal(t, "print", toks[1].Str)
}
