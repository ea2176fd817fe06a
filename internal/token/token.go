// Package token defines the lexical token vocabulary of Oil/Watt.
package token

// Type identifies the lexical class of a token.
type Type int

const (
	EOF Type = iota
	ILLEGAL

	IDENT
	INT
	FLOAT
	STRING

	// Punctuation
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	COMMA
	DOT
	DOTDOT // ..
	COLON
	DCOLON   // ::
	ARROW    // ->
	FATARROW // =>
	QUESTION // ?

	ASSIGN // =
	WALRUS // :=
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	AMP
	PIPE
	CARET
	BANG
	PLUS_ASSIGN  // +=
	MINUS_ASSIGN // -=
	STAR_ASSIGN  // *=
	SLASH_ASSIGN // /=
	AMP_ASSIGN   // &=
	PIPE_ASSIGN  // |=
	CARET_ASSIGN // ^=
	CONCAT       // <>

	EQ  // ==
	NEQ // !=
	LT
	LTE
	GT
	GTE

	AND_AND // &&
	OR_OR   // ||

	// Keywords
	KW_FN
	KW_TYPE
	KW_STRUCT
	KW_ENUM
	KW_UNIT
	KW_TRAIT
	KW_CONST
	KW_EXTERN
	KW_LET
	KW_IF
	KW_ELIF
	KW_ELSE
	KW_WHILE
	KW_LOOP
	KW_FOR
	KW_IN
	KW_MATCH
	KW_BREAK
	KW_CONTINUE
	KW_RETURN
	KW_USE
	KW_IMPORT
	KW_AS
	KW_NEW
	KW_IMPL
	KW_PUB
	KW_TRUE
	KW_FALSE
	KW_NULL
	KW_AND
	KW_OR
	KW_SELF

	NEWLINE
)

var keywords = map[string]Type{
	"fn":       KW_FN,
	"type":     KW_TYPE,
	"struct":   KW_STRUCT,
	"enum":     KW_ENUM,
	"unit":     KW_UNIT,
	"trait":    KW_TRAIT,
	"const":    KW_CONST,
	"extern":   KW_EXTERN,
	"let":      KW_LET,
	"if":       KW_IF,
	"elif":     KW_ELIF,
	"else":     KW_ELSE,
	"while":    KW_WHILE,
	"loop":     KW_LOOP,
	"for":      KW_FOR,
	"in":       KW_IN,
	"match":    KW_MATCH,
	"break":    KW_BREAK,
	"continue": KW_CONTINUE,
	"return":   KW_RETURN,
	"use":      KW_USE,
	"import":   KW_IMPORT,
	"as":       KW_AS,
	"new":      KW_NEW,
	"impl":     KW_IMPL,
	"pub":      KW_PUB,
	"true":     KW_TRUE,
	"false":    KW_FALSE,
	"null":     KW_NULL,
	"and":      KW_AND,
	"or":       KW_OR,
	"self":     KW_SELF,
}

// LookupIdent classifies an identifier as a keyword or a plain IDENT.
func LookupIdent(lit string) Type {
	if t, ok := keywords[lit]; ok {
		return t
	}
	return IDENT
}

// Token is a single lexical unit with its source position.
type Token struct {
	Type    Type
	Literal string
	Line    int
	Column  int
}

func (t Type) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	return "UNKNOWN"
}

var names = map[Type]string{
	EOF: "EOF", ILLEGAL: "ILLEGAL", IDENT: "IDENT", INT: "INT", FLOAT: "FLOAT", STRING: "STRING",
	LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}", LBRACKET: "[", RBRACKET: "]",
	COMMA: ",", DOT: ".", DOTDOT: "..", COLON: ":", DCOLON: "::", ARROW: "->", FATARROW: "=>",
	QUESTION: "?", ASSIGN: "=", WALRUS: ":=", PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/",
	PERCENT: "%", AMP: "&", PIPE: "|", CARET: "^", BANG: "!",
	PLUS_ASSIGN: "+=", MINUS_ASSIGN: "-=", STAR_ASSIGN: "*=", SLASH_ASSIGN: "/=",
	AMP_ASSIGN: "&=", PIPE_ASSIGN: "|=", CARET_ASSIGN: "^=", CONCAT: "<>",
	EQ: "==", NEQ: "!=", LT: "<", LTE: "<=", GT: ">", GTE: ">=",
	AND_AND: "&&", OR_OR: "||",
	KW_FN: "fn", KW_TYPE: "type", KW_STRUCT: "struct", KW_ENUM: "enum", KW_UNIT: "unit",
	KW_TRAIT: "trait", KW_CONST: "const", KW_EXTERN: "extern", KW_LET: "let", KW_IF: "if",
	KW_ELIF: "elif", KW_ELSE: "else", KW_WHILE: "while", KW_LOOP: "loop", KW_FOR: "for",
	KW_IN: "in", KW_MATCH: "match", KW_BREAK: "break", KW_CONTINUE: "continue",
	KW_RETURN: "return", KW_USE: "use", KW_IMPORT: "import", KW_AS: "as", KW_NEW: "new",
	KW_IMPL: "impl", KW_PUB: "pub", KW_TRUE: "true", KW_FALSE: "false", KW_NULL: "null",
	KW_AND: "and", KW_OR: "or", KW_SELF: "self", NEWLINE: "NEWLINE",
}
