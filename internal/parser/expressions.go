package parser

import (
	"strconv"
	"strings"

	"github.com/oil-watt/watt/internal/ast"
	"github.com/oil-watt/watt/internal/token"
)

func (p *Parser) registerExpressionParsers() {
	p.prefixFns[token.IDENT] = p.parseIdentifier
	p.prefixFns[token.KW_SELF] = p.parseSelf
	p.prefixFns[token.INT] = p.parseIntLiteral
	p.prefixFns[token.FLOAT] = p.parseFloatLiteral
	p.prefixFns[token.STRING] = p.parseStringLiteral
	p.prefixFns[token.KW_TRUE] = p.parseBoolLiteral
	p.prefixFns[token.KW_FALSE] = p.parseBoolLiteral
	p.prefixFns[token.KW_NULL] = p.parseNullLiteral
	p.prefixFns[token.LPAREN] = p.parseGroupExpression
	p.prefixFns[token.LBRACKET] = p.parseListLiteral
	p.prefixFns[token.LBRACE] = p.parseMapLiteral
	p.prefixFns[token.KW_FN] = p.parseFnLiteral
	p.prefixFns[token.MINUS] = p.parseUnaryExpression
	p.prefixFns[token.BANG] = p.parseUnaryExpression
	p.prefixFns[token.KW_NEW] = p.parseNewExpression
	p.prefixFns[token.KW_MATCH] = p.parseMatchExpression

	p.infixFns[token.PLUS] = p.parseBinaryExpression
	p.infixFns[token.MINUS] = p.parseBinaryExpression
	p.infixFns[token.STAR] = p.parseBinaryExpression
	p.infixFns[token.SLASH] = p.parseBinaryExpression
	p.infixFns[token.PERCENT] = p.parseBinaryExpression
	p.infixFns[token.AMP] = p.parseBinaryExpression
	p.infixFns[token.PIPE] = p.parseBinaryExpression
	p.infixFns[token.CARET] = p.parseBinaryExpression
	p.infixFns[token.CONCAT] = p.parseBinaryExpression
	p.infixFns[token.EQ] = p.parseBinaryExpression
	p.infixFns[token.NEQ] = p.parseBinaryExpression
	p.infixFns[token.LT] = p.parseBinaryExpression
	p.infixFns[token.LTE] = p.parseBinaryExpression
	p.infixFns[token.GT] = p.parseBinaryExpression
	p.infixFns[token.GTE] = p.parseBinaryExpression
	p.infixFns[token.KW_AND] = p.parseLogicExpression
	p.infixFns[token.KW_OR] = p.parseLogicExpression
	p.infixFns[token.DOTDOT] = p.parseRangeExpression
	p.infixFns[token.DOT] = p.parseAccessExpression
	p.infixFns[token.LPAREN] = p.parseCallExpression
	p.infixFns[token.QUESTION] = p.parsePropagationExpression
}

func (p *Parser) parseExpression(precedence int) (ast.Expression, error) {
	prefix, ok := p.prefixFns[p.cur.Type]
	if !ok {
		return nil, p.errf("start an expression here", "unexpected token %q (%s) in expression", p.cur.Literal, p.cur.Type)
	}
	left, err := prefix()
	if err != nil {
		return nil, err
	}
	for !p.curIs(token.NEWLINE) && precedence < p.curPrecedence() {
		infix, ok := p.infixFns[p.cur.Type]
		if !ok {
			return left, nil
		}
		left, err = infix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parseIdentifier() (ast.Expression, error) {
	a := p.addr()
	name := p.cur.Literal
	if err := p.advance(); err != nil {
		return nil, err
	}
	if name == "impls" {
		return nil, p.errf("", "'impls' must follow a value")
	}
	return &ast.Identifier{Base: ast.NewBase(a), Name: name}, nil
}

func (p *Parser) parseSelf() (ast.Expression, error) {
	a := p.addr()
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.SelfExpression{Base: ast.NewBase(a)}, nil
}

func (p *Parser) parseIntLiteral() (ast.Expression, error) {
	a := p.addr()
	lit := strings.ReplaceAll(p.cur.Literal, "_", "")
	var v int64
	var err error
	switch {
	case strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X"):
		v, err = strconv.ParseInt(lit[2:], 16, 64)
	case strings.HasPrefix(lit, "0o") || strings.HasPrefix(lit, "0O"):
		v, err = strconv.ParseInt(lit[2:], 8, 64)
	case strings.HasPrefix(lit, "0b") || strings.HasPrefix(lit, "0B"):
		v, err = strconv.ParseInt(lit[2:], 2, 64)
	default:
		v, err = strconv.ParseInt(lit, 10, 64)
	}
	if err != nil {
		return nil, p.errf("check the digits of this literal", "invalid integer literal %q", p.cur.Literal)
	}
	if advErr := p.advance(); advErr != nil {
		return nil, advErr
	}
	return &ast.IntLiteral{Base: ast.NewBase(a), Value: v}, nil
}

func (p *Parser) parseFloatLiteral() (ast.Expression, error) {
	a := p.addr()
	lit := strings.ReplaceAll(p.cur.Literal, "_", "")
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return nil, p.errf("check the digits of this literal", "invalid float literal %q", p.cur.Literal)
	}
	if advErr := p.advance(); advErr != nil {
		return nil, advErr
	}
	return &ast.FloatLiteral{Base: ast.NewBase(a), Value: v}, nil
}

func (p *Parser) parseStringLiteral() (ast.Expression, error) {
	a := p.addr()
	v := p.cur.Literal
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.StringLiteral{Base: ast.NewBase(a), Value: v}, nil
}

func (p *Parser) parseBoolLiteral() (ast.Expression, error) {
	a := p.addr()
	v := p.curIs(token.KW_TRUE)
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.BoolLiteral{Base: ast.NewBase(a), Value: v}, nil
}

func (p *Parser) parseNullLiteral() (ast.Expression, error) {
	a := p.addr()
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.NullLiteral{Base: ast.NewBase(a)}, nil
}

func (p *Parser) parseGroupExpression() (ast.Expression, error) {
	a := p.addr()
	if err := p.advance(); err != nil { // consume '('
		return nil, err
	}
	inner, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.GroupExpression{Base: ast.NewBase(a), Inner: inner}, nil
}

func (p *Parser) parseListLiteral() (ast.Expression, error) {
	a := p.addr()
	if err := p.advance(); err != nil { // consume '['
		return nil, err
	}
	lit := &ast.ListLiteral{Base: ast.NewBase(a)}
	for !p.curIs(token.RBRACKET) {
		el, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		lit.Elements = append(lit.Elements, el)
		if p.curIs(token.COMMA) {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.advance(); err != nil { // consume ']'
		return nil, err
	}
	return lit, nil
}

func (p *Parser) parseMapLiteral() (ast.Expression, error) {
	a := p.addr()
	if err := p.advance(); err != nil { // consume '{'
		return nil, err
	}
	lit := &ast.MapLiteral{Base: ast.NewBase(a)}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	for !p.curIs(token.RBRACE) {
		key, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		val, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		lit.Entries = append(lit.Entries, ast.MapEntry{Key: key, Value: val})
		if p.curIs(token.COMMA) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if err := p.skipNewlines(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.advance(); err != nil { // consume '}'
		return nil, err
	}
	return lit, nil
}

func (p *Parser) parseFnLiteral() (ast.Expression, error) {
	a := p.addr()
	if err := p.advance(); err != nil { // consume 'fn'
		return nil, err
	}
	name := ""
	if p.curIs(token.IDENT) {
		name = p.cur.Literal
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	return &ast.FnLiteral{Base: ast.NewBase(a), Name: name, Params: params, Body: body.(*ast.BlockStatement)}, nil
}

func (p *Parser) parseUnaryExpression() (ast.Expression, error) {
	a := p.addr()
	op := p.cur.Literal
	if err := p.advance(); err != nil {
		return nil, err
	}
	operand, err := p.parseExpression(UNARY)
	if err != nil {
		return nil, err
	}
	return &ast.UnaryExpression{Base: ast.NewBase(a), Op: op, Operand: operand}, nil
}

func (p *Parser) parseBinaryExpression(left ast.Expression) (ast.Expression, error) {
	a := p.addr()
	op := p.cur.Literal
	prec := p.curPrecedence()
	if err := p.advance(); err != nil {
		return nil, err
	}
	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}
	return &ast.BinaryExpression{Base: ast.NewBase(a), Op: op, Left: left, Right: right}, nil
}

func (p *Parser) parseLogicExpression(left ast.Expression) (ast.Expression, error) {
	a := p.addr()
	op := p.cur.Literal
	prec := p.curPrecedence()
	if err := p.advance(); err != nil {
		return nil, err
	}
	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}
	return &ast.LogicExpression{Base: ast.NewBase(a), Op: op, Left: left, Right: right}, nil
}

func (p *Parser) parseRangeExpression(left ast.Expression) (ast.Expression, error) {
	a := p.addr()
	if err := p.advance(); err != nil { // consume '..'
		return nil, err
	}
	right, err := p.parseExpression(RANGE)
	if err != nil {
		return nil, err
	}
	return &ast.RangeExpression{Base: ast.NewBase(a), Start: left, End: right}, nil
}

func (p *Parser) parseAccessExpression(left ast.Expression) (ast.Expression, error) {
	a := p.addr()
	if err := p.advance(); err != nil { // consume '.'
		return nil, err
	}
	if p.curIs(token.IDENT) && p.cur.Literal == "impls" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if !p.curIs(token.IDENT) {
			return nil, p.errf("name a trait", "expected trait name after 'impls'")
		}
		traitName := p.cur.Literal
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.ImplsExpression{Base: ast.NewBase(a), Value: left, TraitName: traitName}, nil
	}
	if !p.curIs(token.IDENT) {
		return nil, p.errf("name a member", "expected member name after '.'")
	}
	member := p.cur.Literal
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.AccessExpression{Base: ast.NewBase(a), Target: left, Member: member}, nil
}

func (p *Parser) parseCallExpression(callee ast.Expression) (ast.Expression, error) {
	a := p.addr()
	args, err := p.parseArgList()
	if err != nil {
		return nil, err
	}
	return &ast.CallExpression{Base: ast.NewBase(a), Callee: callee, Args: args}, nil
}

func (p *Parser) parsePropagationExpression(left ast.Expression) (ast.Expression, error) {
	a := p.addr()
	if err := p.advance(); err != nil { // consume '?'
		return nil, err
	}
	return &ast.PropagationExpression{Base: ast.NewBase(a), Inner: left}, nil
}

func (p *Parser) parseNewExpression() (ast.Expression, error) {
	a := p.addr()
	if err := p.advance(); err != nil { // consume 'new'
		return nil, err
	}
	if !p.curIs(token.IDENT) {
		return nil, p.errf("name a type", "expected type name after 'new'")
	}
	var typeExpr ast.Expression = &ast.Identifier{Base: ast.NewBase(p.addr()), Name: p.cur.Literal}
	if err := p.advance(); err != nil {
		return nil, err
	}
	for p.curIs(token.DOT) {
		dotAddr := p.addr()
		if err := p.advance(); err != nil {
			return nil, err
		}
		if !p.curIs(token.IDENT) {
			return nil, p.errf("name a member", "expected member name after '.'")
		}
		typeExpr = &ast.AccessExpression{Base: ast.NewBase(dotAddr), Target: typeExpr, Member: p.cur.Literal}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	args, err := p.parseArgList()
	if err != nil {
		return nil, err
	}
	return &ast.NewExpression{Base: ast.NewBase(a), TypeName: typeExpr, Args: args}, nil
}

func (p *Parser) parseMatchExpression() (ast.Expression, error) {
	a := p.addr()
	if err := p.advance(); err != nil { // consume 'match'
		return nil, err
	}
	subject, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	m := &ast.MatchExpression{Base: ast.NewBase(a), Subject: subject}
	for !p.curIs(token.RBRACE) {
		var pattern ast.Expression
		if p.curIs(token.IDENT) && p.cur.Literal == "_" {
			if err := p.advance(); err != nil {
				return nil, err
			}
		} else {
			pattern, err = p.parseExpression(LOWEST)
			if err != nil {
				return nil, err
			}
		}
		if err := p.expect(token.FATARROW); err != nil {
			return nil, err
		}
		body, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		m.Arms = append(m.Arms, ast.MatchArm{Pattern: pattern, Body: body})
		if p.curIs(token.COMMA) {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
	}
	if err := p.advance(); err != nil { // consume '}'
		return nil, err
	}
	return m, nil
}
