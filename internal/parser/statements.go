package parser

import (
	"github.com/oil-watt/watt/internal/ast"
	"github.com/oil-watt/watt/internal/token"
)

func (p *Parser) parseTopLevel() (ast.Statement, error) {
	return p.parseStatement()
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	pub := false
	if p.curIs(token.KW_PUB) {
		pub = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	switch p.cur.Type {
	case token.KW_FN:
		return p.parseFnDecl(pub)
	case token.KW_TYPE, token.KW_STRUCT:
		return p.parseTypeDecl(pub)
	case token.KW_UNIT:
		return p.parseUnitDecl(pub)
	case token.KW_TRAIT:
		return p.parseTraitDecl(pub)
	case token.KW_CONST:
		return p.parseConstDecl(pub)
	case token.KW_EXTERN:
		return p.parseExternFnDecl(pub)
	case token.KW_LET:
		return p.parseLetStatement()
	case token.KW_USE, token.KW_IMPORT:
		return p.parseUseStatement()
	case token.KW_IF:
		return p.parseIfStatement()
	case token.KW_WHILE:
		return p.parseWhileStatement()
	case token.KW_LOOP:
		return p.parseLoopStatement()
	case token.KW_FOR:
		return p.parseForStatement()
	case token.KW_BREAK:
		a := p.addr()
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.BreakStatement{Base: ast.NewBase(a)}, nil
	case token.KW_CONTINUE:
		a := p.addr()
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.ContinueStatement{Base: ast.NewBase(a)}, nil
	case token.KW_RETURN:
		return p.parseReturnStatement()
	case token.LBRACE:
		return p.parseBlockStatement()
	default:
		return p.parseSimpleStatement()
	}
}

func (p *Parser) parseFnDecl(pub bool) (ast.Statement, error) {
	a := p.addr()
	if err := p.advance(); err != nil { // consume 'fn'
		return nil, err
	}
	if !p.curIs(token.IDENT) {
		return nil, p.errf("name a function after 'fn'", "expected function name")
	}
	name := p.cur.Literal
	if err := p.advance(); err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	return &ast.FnDecl{Base: ast.NewBase(a), Pub: pub, Name: name, Params: params, Body: body.(*ast.BlockStatement)}, nil
}

func (p *Parser) parseParamList() ([]string, error) {
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []string
	for !p.curIs(token.RPAREN) {
		if !p.curIs(token.IDENT) {
			return nil, p.errf("parameters are plain names", "expected parameter name")
		}
		params = append(params, p.cur.Literal)
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.curIs(token.COMMA) {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.advance(); err != nil { // consume ')'
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseArgList() ([]ast.Expression, error) {
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Expression
	for !p.curIs(token.RPAREN) {
		expr, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		args = append(args, expr)
		if p.curIs(token.COMMA) {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parseTypeDecl(pub bool) (ast.Statement, error) {
	a := p.addr()
	if err := p.advance(); err != nil { // consume 'type'/'struct'
		return nil, err
	}
	if !p.curIs(token.IDENT) {
		return nil, p.errf("name a type", "expected type name")
	}
	name := p.cur.Literal
	if err := p.advance(); err != nil {
		return nil, err
	}
	ctor, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	var impls []string
	if p.curIs(token.KW_IMPL) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		for {
			if !p.curIs(token.IDENT) {
				return nil, p.errf("name a trait after 'impl'", "expected trait name")
			}
			impls = append(impls, p.cur.Literal)
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.curIs(token.COMMA) {
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
	}
	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	return &ast.TypeDecl{Base: ast.NewBase(a), Pub: pub, Name: name, CtorParams: ctor, Body: body.(*ast.BlockStatement), Impls: impls}, nil
}

func (p *Parser) parseUnitDecl(pub bool) (ast.Statement, error) {
	a := p.addr()
	if err := p.advance(); err != nil { // consume 'unit'
		return nil, err
	}
	if !p.curIs(token.IDENT) {
		return nil, p.errf("name a unit", "expected unit name")
	}
	name := p.cur.Literal
	if err := p.advance(); err != nil {
		return nil, err
	}
	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	return &ast.UnitDecl{Base: ast.NewBase(a), Pub: pub, Name: name, Body: body.(*ast.BlockStatement)}, nil
}

func (p *Parser) parseTraitDecl(pub bool) (ast.Statement, error) {
	a := p.addr()
	if err := p.advance(); err != nil { // consume 'trait'
		return nil, err
	}
	if !p.curIs(token.IDENT) {
		return nil, p.errf("name a trait", "expected trait name")
	}
	name := p.cur.Literal
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	var fns []ast.TraitFnSig
	for !p.curIs(token.RBRACE) {
		if err := p.expect(token.KW_FN); err != nil {
			return nil, err
		}
		if !p.curIs(token.IDENT) {
			return nil, p.errf("name a trait method", "expected method name")
		}
		fnName := p.cur.Literal
		if err := p.advance(); err != nil {
			return nil, err
		}
		params, err := p.parseParamList()
		if err != nil {
			return nil, err
		}
		sig := ast.TraitFnSig{Name: fnName, ParamCount: len(params), Params: params}
		if p.curIs(token.LBRACE) {
			body, err := p.parseBlockStatement()
			if err != nil {
				return nil, err
			}
			sig.HasDefault = true
			sig.DefaultBody = body.(*ast.BlockStatement)
		}
		fns = append(fns, sig)
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
	}
	if err := p.advance(); err != nil { // consume '}'
		return nil, err
	}
	return &ast.TraitDecl{Base: ast.NewBase(a), Pub: pub, Name: name, Fns: fns}, nil
}

func (p *Parser) parseConstDecl(pub bool) (ast.Statement, error) {
	a := p.addr()
	if err := p.advance(); err != nil { // consume 'const'
		return nil, err
	}
	if !p.curIs(token.IDENT) {
		return nil, p.errf("name a constant", "expected constant name")
	}
	name := p.cur.Literal
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	val, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if !isConstExpr(val) {
		return nil, p.errf("const values must be literals", "non-const expression in const declaration")
	}
	return &ast.ConstDecl{Base: ast.NewBase(a), Pub: pub, Name: name, Value: val}, nil
}

func isConstExpr(e ast.Expression) bool {
	switch v := e.(type) {
	case *ast.IntLiteral, *ast.FloatLiteral, *ast.StringLiteral, *ast.BoolLiteral, *ast.NullLiteral:
		return true
	case *ast.UnaryExpression:
		return isConstExpr(v.Operand)
	case *ast.BinaryExpression:
		return isConstExpr(v.Left) && isConstExpr(v.Right)
	case *ast.ListLiteral:
		for _, el := range v.Elements {
			if !isConstExpr(el) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (p *Parser) parseExternFnDecl(pub bool) (ast.Statement, error) {
	a := p.addr()
	if err := p.advance(); err != nil { // consume 'extern'
		return nil, err
	}
	if err := p.expect(token.KW_FN); err != nil {
		return nil, err
	}
	if !p.curIs(token.IDENT) {
		return nil, p.errf("name an extern function", "expected function name")
	}
	name := p.cur.Literal
	if err := p.advance(); err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	return &ast.ExternFnDecl{Base: ast.NewBase(a), Pub: pub, Name: name, Params: params}, nil
}

func (p *Parser) parseLetStatement() (ast.Statement, error) {
	a := p.addr()
	if err := p.advance(); err != nil { // consume 'let'
		return nil, err
	}
	if !p.curIs(token.IDENT) {
		return nil, p.errf("name a binding", "expected identifier after 'let'")
	}
	name := p.cur.Literal
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	val, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	return &ast.LetStatement{Base: ast.NewBase(a), Name: name, Value: val}, nil
}

func (p *Parser) parseUseStatement() (ast.Statement, error) {
	a := p.addr()
	if err := p.advance(); err != nil { // consume 'use'/'import'
		return nil, err
	}
	if !p.curIs(token.IDENT) && !p.curIs(token.STRING) {
		return nil, p.errf("give an import path", "expected module path")
	}
	path := p.cur.Literal
	if err := p.advance(); err != nil {
		return nil, err
	}
	// path may continue as a/b/c (filesystem-style import) via SLASH, or as
	// std.io (library alias, spec §4.4 "library aliases begin with std.") via DOT.
	for p.curIs(token.SLASH) || p.curIs(token.DOT) {
		sep := "/"
		if p.curIs(token.DOT) {
			sep = "."
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		if !p.curIs(token.IDENT) {
			return nil, p.errf("continue the path with a name", "expected path segment")
		}
		path += sep + p.cur.Literal
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	stmt := &ast.UseStatement{Base: ast.NewBase(a), Path: path}
	if p.curIs(token.KW_AS) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if !p.curIs(token.IDENT) {
			return nil, p.errf("name the alias", "expected alias after 'as'")
		}
		stmt.Alias = p.cur.Literal
		if err := p.advance(); err != nil {
			return nil, err
		}
	} else if p.curIs(token.KW_FOR) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		for {
			if !p.curIs(token.IDENT) {
				return nil, p.errf("name an import", "expected identifier in 'for' clause")
			}
			stmt.ForNames = append(stmt.ForNames, p.cur.Literal)
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.curIs(token.COMMA) {
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
	}
	return stmt, nil
}

func (p *Parser) parseBlockStatement() (ast.Statement, error) {
	a := p.addr()
	if err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	block := &ast.BlockStatement{Base: ast.NewBase(a)}
	for !p.curIs(token.RBRACE) {
		if p.curIs(token.EOF) {
			return nil, p.errf("add the missing '}'", "unexpected EOF inside block")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
	}
	if err := p.advance(); err != nil { // consume '}'
		return nil, err
	}
	return block, nil
}

func (p *Parser) parseIfStatement() (ast.Statement, error) {
	a := p.addr()
	if err := p.advance(); err != nil { // consume 'if'
		return nil, err
	}
	cond, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	cons, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStatement{Base: ast.NewBase(a), Condition: cond, Consequence: cons.(*ast.BlockStatement)}
	for p.curIs(token.KW_ELIF) {
		elifAddr := p.addr()
		if err := p.advance(); err != nil {
			return nil, err
		}
		elifCond, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		elifBody, err := p.parseBlockStatement()
		if err != nil {
			return nil, err
		}
		stmt.Elif = append(stmt.Elif, &ast.IfStatement{Base: ast.NewBase(elifAddr), Condition: elifCond, Consequence: elifBody.(*ast.BlockStatement)})
	}
	if p.curIs(token.KW_ELSE) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		alt, err := p.parseBlockStatement()
		if err != nil {
			return nil, err
		}
		stmt.Alternative = alt.(*ast.BlockStatement)
	}
	return stmt, nil
}

func (p *Parser) parseWhileStatement() (ast.Statement, error) {
	a := p.addr()
	if err := p.advance(); err != nil { // consume 'while'
		return nil, err
	}
	cond, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Base: ast.NewBase(a), Condition: cond, Body: body.(*ast.BlockStatement)}, nil
}

func (p *Parser) parseLoopStatement() (ast.Statement, error) {
	a := p.addr()
	if err := p.advance(); err != nil { // consume 'loop'
		return nil, err
	}
	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	return &ast.LoopStatement{Base: ast.NewBase(a), Body: body.(*ast.BlockStatement)}, nil
}

func (p *Parser) parseForStatement() (ast.Statement, error) {
	a := p.addr()
	if err := p.advance(); err != nil { // consume 'for'
		return nil, err
	}
	if !p.curIs(token.IDENT) {
		return nil, p.errf("name the loop variable", "expected identifier after 'for'")
	}
	v := p.cur.Literal
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(token.KW_IN); err != nil {
		return nil, err
	}
	iter, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	return &ast.ForStatement{Base: ast.NewBase(a), Var: v, Iterable: iter, Body: body.(*ast.BlockStatement)}, nil
}

func (p *Parser) parseReturnStatement() (ast.Statement, error) {
	a := p.addr()
	if err := p.advance(); err != nil { // consume 'return'
		return nil, err
	}
	if p.curIs(token.NEWLINE) || p.curIs(token.RBRACE) || p.curIs(token.EOF) {
		return &ast.ReturnStatement{Base: ast.NewBase(a)}, nil
	}
	val, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	return &ast.ReturnStatement{Base: ast.NewBase(a), Value: val}, nil
}

// parseSimpleStatement handles assignment and bare expression/call statements
// per spec §4.2: "An identifier in statement position may be followed by :=,
// =, +=, -=, *=, /= or a call; else it is a bare load (discarded)."
func (p *Parser) parseSimpleStatement() (ast.Statement, error) {
	a := p.addr()
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	switch p.cur.Type {
	case token.ASSIGN, token.WALRUS:
		if err := p.advance(); err != nil {
			return nil, err
		}
		val, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		return &ast.AssignStatement{Base: ast.NewBase(a), Target: expr, Op: "=", Value: val}, nil
	case token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN,
		token.AMP_ASSIGN, token.PIPE_ASSIGN, token.CARET_ASSIGN:
		op := p.cur.Literal
		if err := p.advance(); err != nil {
			return nil, err
		}
		val, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		return &ast.AssignStatement{Base: ast.NewBase(a), Target: expr, Op: op, Value: val}, nil
	default:
		return &ast.ExpressionStatement{Base: ast.NewBase(a), Expression: expr}, nil
	}
}
