// Package lexer turns Oil/Watt source text into a token stream.
//
// Structurally grounded on the teacher's internal/lexer/lexer.go
// (rune-at-a-time scanner with line/column tracking via readChar), adapted to
// spec §4.1's token surface: compound punctuation (.. -> :: <= >= == != += -=
// *= /= &= |= ^= <>), numeric bases 0x/0o/0b, and the \n \r \" \` \\ \uXXXX
// \UXXXXXXXX \xXX escape set.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/oil-watt/watt/internal/address"
	"github.com/oil-watt/watt/internal/token"
)

// Error is a LexError diagnostic: unexpected character, unclosed string, or
// invalid number literal (spec §7).
type Error struct {
	*address.Diagnostic
}

type Lexer struct {
	file         string
	input        string
	position     int
	readPosition int
	ch           rune
	line         int
	column       int
}

func New(file, input string) *Lexer {
	l := &Lexer{file: file, input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++
		l.column++
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) addr() address.Address {
	return address.New(l.file, l.line, l.column)
}

func (l *Lexer) errf(hint, format string, args ...interface{}) error {
	return &Error{address.NewDiagnostic(address.LexError, l.addr(), fmt.Sprintf(format, args...), hint)}
}

// Lex produces every token in the input, including a trailing EOF.
func (l *Lexer) Lex() ([]token.Token, error) {
	var toks []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks, nil
		}
	}
}

func (l *Lexer) skipWhitespaceAndComments() error {
	for {
		switch l.ch {
		case ' ', '\t', '\r', 0x00:
			if l.ch == 0 && l.readPosition > len(l.input) {
				return nil
			}
			l.readChar()
			continue
		case '/':
			if l.peekChar() == '/' {
				for l.ch != '\n' && l.ch != 0 {
					l.readChar()
				}
				continue
			}
			if l.peekChar() == '*' {
				l.readChar()
				l.readChar()
				closed := false
				for l.ch != 0 {
					if l.ch == '*' && l.peekChar() == '/' {
						l.readChar()
						l.readChar()
						closed = true
						break
					}
					l.readChar()
				}
				if !closed {
					return l.errf("close the block comment with */", "unterminated block comment")
				}
				continue
			}
			return nil
		default:
			return nil
		}
	}
}

func newTok(typ token.Type, lit string, line, col int) token.Token {
	return token.Token{Type: typ, Literal: lit, Line: line, Column: col}
}

// NextToken scans and returns the single next token.
func (l *Lexer) NextToken() (token.Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return token.Token{}, err
	}

	line, col := l.line, l.column

	switch l.ch {
	case 0:
		return newTok(token.EOF, "", line, col), nil
	case '\n':
		l.readChar()
		return newTok(token.NEWLINE, "\n", line, col), nil
	case '(':
		l.readChar()
		return newTok(token.LPAREN, "(", line, col), nil
	case ')':
		l.readChar()
		return newTok(token.RPAREN, ")", line, col), nil
	case '{':
		l.readChar()
		return newTok(token.LBRACE, "{", line, col), nil
	case '}':
		l.readChar()
		return newTok(token.RBRACE, "}", line, col), nil
	case '[':
		l.readChar()
		return newTok(token.LBRACKET, "[", line, col), nil
	case ']':
		l.readChar()
		return newTok(token.RBRACKET, "]", line, col), nil
	case ',':
		l.readChar()
		return newTok(token.COMMA, ",", line, col), nil
	case '?':
		l.readChar()
		return newTok(token.QUESTION, "?", line, col), nil
	case '.':
		if l.peekChar() == '.' {
			l.readChar()
			l.readChar()
			return newTok(token.DOTDOT, "..", line, col), nil
		}
		l.readChar()
		return newTok(token.DOT, ".", line, col), nil
	case ':':
		if l.peekChar() == ':' {
			l.readChar()
			l.readChar()
			return newTok(token.DCOLON, "::", line, col), nil
		}
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return newTok(token.WALRUS, ":=", line, col), nil
		}
		l.readChar()
		return newTok(token.COLON, ":", line, col), nil
	case '-':
		if l.peekChar() == '>' {
			l.readChar()
			l.readChar()
			return newTok(token.ARROW, "->", line, col), nil
		}
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return newTok(token.MINUS_ASSIGN, "-=", line, col), nil
		}
		l.readChar()
		return newTok(token.MINUS, "-", line, col), nil
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return newTok(token.EQ, "==", line, col), nil
		}
		if l.peekChar() == '>' {
			l.readChar()
			l.readChar()
			return newTok(token.FATARROW, "=>", line, col), nil
		}
		l.readChar()
		return newTok(token.ASSIGN, "=", line, col), nil
	case '+':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return newTok(token.PLUS_ASSIGN, "+=", line, col), nil
		}
		l.readChar()
		return newTok(token.PLUS, "+", line, col), nil
	case '*':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return newTok(token.STAR_ASSIGN, "*=", line, col), nil
		}
		l.readChar()
		return newTok(token.STAR, "*", line, col), nil
	case '/':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return newTok(token.SLASH_ASSIGN, "/=", line, col), nil
		}
		l.readChar()
		return newTok(token.SLASH, "/", line, col), nil
	case '%':
		l.readChar()
		return newTok(token.PERCENT, "%", line, col), nil
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			l.readChar()
			return newTok(token.AND_AND, "&&", line, col), nil
		}
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return newTok(token.AMP_ASSIGN, "&=", line, col), nil
		}
		l.readChar()
		return newTok(token.AMP, "&", line, col), nil
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			l.readChar()
			return newTok(token.OR_OR, "||", line, col), nil
		}
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return newTok(token.PIPE_ASSIGN, "|=", line, col), nil
		}
		l.readChar()
		return newTok(token.PIPE, "|", line, col), nil
	case '^':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return newTok(token.CARET_ASSIGN, "^=", line, col), nil
		}
		l.readChar()
		return newTok(token.CARET, "^", line, col), nil
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return newTok(token.NEQ, "!=", line, col), nil
		}
		l.readChar()
		return newTok(token.BANG, "!", line, col), nil
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return newTok(token.LTE, "<=", line, col), nil
		}
		if l.peekChar() == '>' {
			l.readChar()
			l.readChar()
			return newTok(token.CONCAT, "<>", line, col), nil
		}
		l.readChar()
		return newTok(token.LT, "<", line, col), nil
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return newTok(token.GTE, ">=", line, col), nil
		}
		l.readChar()
		return newTok(token.GT, ">", line, col), nil
	case '\'', '"':
		return l.readString(l.ch, line, col)
	case '`':
		return l.readMultilineString(line, col)
	}

	if isDigit(l.ch) {
		return l.readNumber(line, col)
	}
	if isIdentStart(l.ch) {
		return l.readIdent(line, col)
	}

	ch := l.ch
	l.readChar()
	return token.Token{}, &Error{address.NewDiagnostic(address.LexError, address.New(l.file, line, col),
		fmt.Sprintf("unexpected character %q", ch), "remove or replace the character")}
}

func isDigit(ch rune) bool { return ch >= '0' && ch <= '9' }
func isHexDigit(ch rune) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
func isIdentStart(ch rune) bool    { return ch == '_' || unicode.IsLetter(ch) }
func isIdentContinue(ch rune) bool { return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch) }

func (l *Lexer) readIdent(line, col int) (token.Token, error) {
	start := l.position
	for isIdentContinue(l.ch) {
		l.readChar()
	}
	lit := l.input[start:l.position]
	return newTok(token.LookupIdent(lit), lit, line, col), nil
}

func (l *Lexer) readNumber(line, col int) (token.Token, error) {
	start := l.position
	if l.ch == '0' {
		switch l.peekChar() {
		case 'x', 'X':
			l.readChar()
			l.readChar()
			for isHexDigit(l.ch) || l.ch == '_' {
				l.readChar()
			}
			return newTok(token.INT, l.input[start:l.position], line, col), nil
		case 'o', 'O':
			l.readChar()
			l.readChar()
			for (l.ch >= '0' && l.ch <= '7') || l.ch == '_' {
				l.readChar()
			}
			return newTok(token.INT, l.input[start:l.position], line, col), nil
		case 'b', 'B':
			l.readChar()
			l.readChar()
			for l.ch == '0' || l.ch == '1' || l.ch == '_' {
				l.readChar()
			}
			return newTok(token.INT, l.input[start:l.position], line, col), nil
		}
	}

	dots := 0
	for isDigit(l.ch) || l.ch == '.' || l.ch == '_' {
		if l.ch == '.' {
			if l.peekChar() == '.' {
				break // range operator, not a second decimal point
			}
			dots++
		}
		l.readChar()
	}
	lit := l.input[start:l.position]
	if dots > 1 {
		return token.Token{}, &Error{address.NewDiagnostic(address.LexError, address.New(l.file, line, col),
			fmt.Sprintf("invalid number literal %q", lit), "a numeric literal may contain at most one '.'")}
	}
	if dots == 1 {
		return newTok(token.FLOAT, lit, line, col), nil
	}
	return newTok(token.INT, lit, line, col), nil
}

func (l *Lexer) readString(quote rune, line, col int) (token.Token, error) {
	l.readChar() // consume opening quote
	var b strings.Builder
	for {
		if l.ch == 0 {
			return token.Token{}, &Error{address.NewDiagnostic(address.LexError, address.New(l.file, line, col),
				"unclosed string literal", "add the missing closing quote")}
		}
		if l.ch == quote {
			l.readChar()
			break
		}
		if l.ch == '\\' {
			r, err := l.readEscape()
			if err != nil {
				return token.Token{}, err
			}
			b.WriteRune(r)
			continue
		}
		b.WriteRune(l.ch)
		l.readChar()
	}
	return newTok(token.STRING, b.String(), line, col), nil
}

func (l *Lexer) readMultilineString(line, col int) (token.Token, error) {
	l.readChar() // consume opening backtick
	var b strings.Builder
	for {
		if l.ch == 0 {
			return token.Token{}, &Error{address.NewDiagnostic(address.LexError, address.New(l.file, line, col),
				"unclosed multiline string literal", "add the missing closing `")}
		}
		if l.ch == '`' {
			l.readChar()
			break
		}
		if l.ch == '\\' {
			r, err := l.readEscape()
			if err != nil {
				return token.Token{}, err
			}
			b.WriteRune(r)
			continue
		}
		b.WriteRune(l.ch)
		l.readChar()
	}
	return newTok(token.STRING, b.String(), line, col), nil
}

func (l *Lexer) readEscape() (rune, error) {
	startLine, startCol := l.line, l.column
	l.readChar() // consume backslash
	switch l.ch {
	case 'n':
		l.readChar()
		return '\n', nil
	case 'r':
		l.readChar()
		return '\r', nil
	case 't':
		l.readChar()
		return '\t', nil
	case '"':
		l.readChar()
		return '"', nil
	case '\'':
		l.readChar()
		return '\'', nil
	case '`':
		l.readChar()
		return '`', nil
	case '\\':
		l.readChar()
		return '\\', nil
	case 'x':
		l.readChar()
		return l.readHexEscape(2, startLine, startCol)
	case 'u':
		l.readChar()
		return l.readHexEscape(4, startLine, startCol)
	case 'U':
		l.readChar()
		return l.readHexEscape(8, startLine, startCol)
	default:
		return 0, &Error{address.NewDiagnostic(address.LexError, address.New(l.file, startLine, startCol),
			fmt.Sprintf("unknown escape sequence '\\%c'", l.ch), "use one of \\n \\r \\t \\\" \\' \\` \\\\ \\xXX \\uXXXX \\UXXXXXXXX")}
	}
}

func (l *Lexer) readHexEscape(n int, line, col int) (rune, error) {
	var v rune
	for i := 0; i < n; i++ {
		if !isHexDigit(l.ch) {
			return 0, &Error{address.NewDiagnostic(address.LexError, address.New(l.file, line, col),
				"invalid hex escape sequence", fmt.Sprintf("expected %d hex digits", n))}
		}
		v = v*16 + hexVal(l.ch)
		l.readChar()
	}
	return v, nil
}

func hexVal(ch rune) rune {
	switch {
	case ch >= '0' && ch <= '9':
		return ch - '0'
	case ch >= 'a' && ch <= 'f':
		return ch - 'a' + 10
	default:
		return ch - 'A' + 10
	}
}
