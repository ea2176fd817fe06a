// Package parser implements Oil/Watt's recursive-descent, precedence-climbing
// parser (spec §4.2).
//
// Grounded on the teacher's internal/parser/expressions_core.go Pratt-table
// idiom (prefix/infix parselet maps keyed by token type, precedence lookup
// table) but without the teacher's error-recovery machinery: spec §4.2 is
// explicit that "the parser reports at the first syntactic error", so a
// single error aborts parsing immediately rather than being collected.
package parser

import (
	"fmt"

	"github.com/oil-watt/watt/internal/address"
	"github.com/oil-watt/watt/internal/ast"
	"github.com/oil-watt/watt/internal/lexer"
	"github.com/oil-watt/watt/internal/token"
)

// Error is a ParseError diagnostic.
type Error struct {
	*address.Diagnostic
}

// Precedence levels, low to high, per spec §4.2.
const (
	_ int = iota
	LOWEST
	LOGIC      // and or
	EQUALITY   // == !=
	COMPARISON // < <= > >=
	RANGE      // ..
	ADDITIVE   // + - <>
	MULTIPLICATIVE
	UNARY
	CALL // (), ., ?
)

var precedences = map[token.Type]int{
	token.KW_AND: LOGIC, token.KW_OR: LOGIC,
	token.EQ: EQUALITY, token.NEQ: EQUALITY,
	token.LT: COMPARISON, token.LTE: COMPARISON, token.GT: COMPARISON, token.GTE: COMPARISON,
	token.DOTDOT: RANGE,
	token.PLUS:   ADDITIVE, token.MINUS: ADDITIVE, token.CONCAT: ADDITIVE,
	token.STAR: MULTIPLICATIVE, token.SLASH: MULTIPLICATIVE, token.PERCENT: MULTIPLICATIVE,
	token.AMP: MULTIPLICATIVE, token.PIPE: MULTIPLICATIVE, token.CARET: MULTIPLICATIVE,
	token.LPAREN: CALL, token.DOT: CALL, token.QUESTION: CALL,
}

type (
	prefixParseFn func() (ast.Expression, error)
	infixParseFn  func(ast.Expression) (ast.Expression, error)
)

type Parser struct {
	file string
	lx   *lexer.Lexer

	cur  token.Token
	peek token.Token

	prefixFns map[token.Type]prefixParseFn
	infixFns  map[token.Type]infixParseFn
}

func New(file, source string) (*Parser, error) {
	p := &Parser{file: file, lx: lexer.New(file, source)}
	p.prefixFns = map[token.Type]prefixParseFn{}
	p.infixFns = map[token.Type]infixParseFn{}
	p.registerExpressionParsers()

	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() error {
	p.cur = p.peek
	for {
		tok, err := p.lx.NextToken()
		if err != nil {
			return err
		}
		p.peek = tok
		break
	}
	return nil
}

func (p *Parser) addr() address.Address {
	return address.New(p.file, p.cur.Line, p.cur.Column)
}

func (p *Parser) errf(hint, format string, args ...interface{}) error {
	return &Error{address.NewDiagnostic(address.ParseError, p.addr(), fmt.Sprintf(format, args...), hint)}
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek.Type == t }

func (p *Parser) expect(t token.Type) error {
	if !p.curIs(t) {
		return p.errf(fmt.Sprintf("expected %s here", t), "unexpected token %q (%s)", p.cur.Literal, p.cur.Type)
	}
	return p.advance()
}

// skipNewlines consumes statement-separator newlines; Oil/Watt treats
// newlines as insignificant between tokens that cannot end a statement.
func (p *Parser) skipNewlines() error {
	for p.curIs(token.NEWLINE) {
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peek.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return LOWEST
}

// Parse runs the parser to completion, producing a Program.
func Parse(file, source string) (*ast.Program, error) {
	p, err := New(file, source)
	if err != nil {
		return nil, err
	}
	return p.ParseProgram()
}

func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{File: p.file}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	for !p.curIs(token.EOF) {
		stmt, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
	}
	return prog, nil
}
