package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oil-watt/watt/internal/token"
)

func lexAll(t *testing.T, src string) []token.Token {
	t.Helper()
	l := New("test.wt", src)
	var toks []token.Token
	for {
		tok, err := l.NextToken()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func types(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestLexCompoundPunctuation(t *testing.T) {
	toks := lexAll(t, "0..5 -> => <= >= == != += -= *= /= &= |= ^= <>")
	got := types(toks)
	want := []token.Type{
		token.INT, token.DOTDOT, token.INT, token.ARROW, token.FATARROW,
		token.LTE, token.GTE, token.EQ, token.NEQ,
		token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN,
		token.AMP_ASSIGN, token.PIPE_ASSIGN, token.CARET_ASSIGN, token.CONCAT,
		token.EOF,
	}
	require.Equal(t, want, got)
}

func TestLexNumericBases(t *testing.T) {
	toks := lexAll(t, "0x1F 0o17 0b1010 3.14")
	require.Equal(t, []token.Type{token.INT, token.INT, token.INT, token.FLOAT, token.EOF}, types(toks))
	require.Equal(t, "0x1F", toks[0].Literal)
	require.Equal(t, "0o17", toks[1].Literal)
	require.Equal(t, "0b1010", toks[2].Literal)
	require.Equal(t, "3.14", toks[3].Literal)
}

func TestLexStringEscapes(t *testing.T) {
	toks := lexAll(t, `"line\nbreak\ttab\"quote\\back"`)
	require.Equal(t, token.STRING, toks[0].Type)
	require.Equal(t, "line\nbreak\ttab\"quote\\back", toks[0].Literal)
}

func TestLexUnicodeEscapes(t *testing.T) {
	toks := lexAll(t, `"é\U0001F600"`)
	require.Equal(t, token.STRING, toks[0].Type)
	require.Equal(t, "é\U0001F600", toks[0].Literal)
}

func TestLexHexByteEscape(t *testing.T) {
	toks := lexAll(t, `"\x41\x42"`)
	require.Equal(t, token.STRING, toks[0].Type)
	require.Equal(t, "AB", toks[0].Literal)
}

func TestLexKeywordsVsIdentifiers(t *testing.T) {
	toks := lexAll(t, "fn let myVar while forEach")
	require.Equal(t, []token.Type{
		token.KW_FN, token.KW_LET, token.IDENT, token.KW_WHILE, token.IDENT, token.EOF,
	}, types(toks))
}

func TestLexUnclosedStringIsError(t *testing.T) {
	l := New("test.wt", `"unterminated`)
	_, err := l.NextToken()
	require.Error(t, err)
}

func TestLexTracksLineAndColumn(t *testing.T) {
	toks := lexAll(t, "let a = 1\nlet b = 2")
	// second "let" is on line 2
	var secondLet token.Token
	count := 0
	for _, tok := range toks {
		if tok.Type == token.KW_LET {
			count++
			if count == 2 {
				secondLet = tok
			}
		}
	}
	require.Equal(t, 2, secondLet.Line)
}
