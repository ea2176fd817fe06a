package compiler

import (
	"strings"

	"github.com/oil-watt/watt/internal/address"
	"github.com/oil-watt/watt/internal/ast"
	"github.com/oil-watt/watt/internal/vm"
)

// statement compiles one AST statement into chunk, in source order
// (spec.md §5 "statements within a block execute in source order").
func (c *Compiler) statement(chunk *vm.Chunk, stmt ast.Statement) error {
	switch n := stmt.(type) {
	case *ast.FnDecl:
		return c.fnDecl(chunk, n)
	case *ast.TypeDecl:
		return c.typeDecl(chunk, n)
	case *ast.UnitDecl:
		return c.unitDecl(chunk, n)
	case *ast.TraitDecl:
		return c.traitDecl(chunk, n)
	case *ast.ConstDecl:
		return c.letLike(chunk, n.Addr(), n.Name, n.Value)
	case *ast.ExternFnDecl:
		return c.externFnDecl(chunk, n)
	case *ast.LetStatement:
		return c.letLike(chunk, n.Addr(), n.Name, n.Value)
	case *ast.UseStatement:
		return c.useStatement(chunk, n)
	case *ast.BlockStatement:
		for _, s := range n.Statements {
			if err := c.statement(chunk, s); err != nil {
				return err
			}
		}
		return nil
	case *ast.IfStatement:
		return c.ifStatement(chunk, n)
	case *ast.WhileStatement:
		return c.whileStatement(chunk, n)
	case *ast.LoopStatement:
		return c.loopStatement(chunk, n)
	case *ast.ForStatement:
		return c.forStatement(chunk, n)
	case *ast.BreakStatement:
		chunk.WriteOp(vm.Opcode{Kind: vm.OpEndLoop, Line: n.Addr().Line, Col: n.Addr().Column, CurrentIteration: false})
		return nil
	case *ast.ContinueStatement:
		chunk.WriteOp(vm.Opcode{Kind: vm.OpEndLoop, Line: n.Addr().Line, Col: n.Addr().Column, CurrentIteration: true})
		return nil
	case *ast.ReturnStatement:
		return c.returnStatement(chunk, n)
	case *ast.ExpressionStatement:
		return c.exprStatement(chunk, n.Expression)
	case *ast.AssignStatement:
		return c.assignStatement(chunk, n)
	default:
		return errf(stmt.Addr(), "this statement form isn't supported yet", "unsupported statement node")
	}
}

// letLike compiles both `let name = value` and `const name = value`: push
// the value, define the name in the current frame. ConstDecl carries no
// further runtime distinction (constness is an analyzer-time property, not
// a VM one — spec.md's Value model has no separate "immutable" tag).
func (c *Compiler) letLike(chunk *vm.Chunk, a address.Address, name string, value ast.Expression) error {
	if err := c.expr(chunk, value); err != nil {
		return err
	}
	chunk.WriteOp(vm.Opcode{Kind: vm.OpDefine, Line: a.Line, Col: a.Column, Name: name})
	return nil
}

func (c *Compiler) fnDecl(chunk *vm.Chunk, n *ast.FnDecl) error {
	body, err := c.block(n.Body.Statements)
	if err != nil {
		return err
	}
	chunk.WriteOp(vm.Opcode{Kind: vm.OpDefineFn, Line: n.Addr().Line, Col: n.Addr().Column,
		Name: n.Name, Params: n.Params, Body: body, MakeClosure: true})
	return nil
}

func (c *Compiler) typeDecl(chunk *vm.Chunk, n *ast.TypeDecl) error {
	body, err := c.block(n.Body.Statements)
	if err != nil {
		return err
	}
	chunk.WriteOp(vm.Opcode{Kind: vm.OpDefineType, Line: n.Addr().Line, Col: n.Addr().Column,
		Name: n.Name, CtorParams: n.CtorParams, Body: body, Impls: n.Impls})
	return nil
}

func (c *Compiler) unitDecl(chunk *vm.Chunk, n *ast.UnitDecl) error {
	body, err := c.block(n.Body.Statements)
	if err != nil {
		return err
	}
	chunk.WriteOp(vm.Opcode{Kind: vm.OpDefineUnit, Line: n.Addr().Line, Col: n.Addr().Column,
		Name: n.Name, Body: body})
	return nil
}

func (c *Compiler) traitDecl(chunk *vm.Chunk, n *ast.TraitDecl) error {
	fns := make([]vm.TraitFn, len(n.Fns))
	for i, sig := range n.Fns {
		tf := vm.TraitFn{Name: sig.Name, ParamCount: sig.ParamCount, Params: sig.Params, HasDefault: sig.HasDefault}
		if sig.HasDefault && sig.DefaultBody != nil {
			body, err := c.block(sig.DefaultBody.Statements)
			if err != nil {
				return err
			}
			tf.DefaultBody = body
		}
		fns[i] = tf
	}
	chunk.WriteOp(vm.Opcode{Kind: vm.OpDefineTrait, Line: n.Addr().Line, Col: n.Addr().Column, Name: n.Name, TraitFns: fns})
	return nil
}

// externFnDecl: `extern fn name(params)` is sugar for `Native(name)` bound
// via Define (SPEC_FULL.md "Supplemented features": "declares a name bound
// to a Native value looked up in the natives registry by name at emit
// time"). The host must have registered a native under this exact name
// before the chunk runs.
func (c *Compiler) externFnDecl(chunk *vm.Chunk, n *ast.ExternFnDecl) error {
	chunk.WriteOp(vm.Opcode{Kind: vm.OpNative, Line: n.Addr().Line, Col: n.Addr().Column, Name: n.Name})
	chunk.WriteOp(vm.Opcode{Kind: vm.OpDefine, Line: n.Addr().Line, Col: n.Addr().Column, Name: n.Name})
	return nil
}

func (c *Compiler) returnStatement(chunk *vm.Chunk, n *ast.ReturnStatement) error {
	var args *vm.Chunk
	if n.Value != nil {
		args = vm.NewChunk(c.file)
		if err := c.expr(args, n.Value); err != nil {
			return err
		}
	}
	chunk.WriteOp(vm.Opcode{Kind: vm.OpRet, Line: n.Addr().Line, Col: n.Addr().Column, Args: args})
	return nil
}

func (c *Compiler) loopStatement(chunk *vm.Chunk, n *ast.LoopStatement) error {
	body, err := c.block(n.Body.Statements)
	if err != nil {
		return err
	}
	chunk.WriteOp(vm.Opcode{Kind: vm.OpLoop, Line: n.Addr().Line, Col: n.Addr().Column, Body: body})
	return nil
}

// whileStatement desugars to an unconditional Loop whose body starts with
// an inverted-condition break test, matching the `for` desugaring's own
// break-test shape (no dedicated While opcode in spec.md's table).
func (c *Compiler) whileStatement(chunk *vm.Chunk, n *ast.WhileStatement) error {
	a := n.Addr()
	body, err := c.block(n.Body.Statements)
	if err != nil {
		return err
	}
	cond := vm.NewChunk(c.file)
	if err := c.expr(cond, n.Condition); err != nil {
		return err
	}
	cond.WriteOp(vm.Opcode{Kind: vm.OpBang, Line: a.Line, Col: a.Column})

	breakBody := vm.NewChunk(c.file)
	breakBody.WriteOp(vm.Opcode{Kind: vm.OpEndLoop, Line: a.Line, Col: a.Column, CurrentIteration: false})

	full := vm.NewChunk(c.file)
	full.WriteOp(vm.Opcode{Kind: vm.OpIf, Line: a.Line, Col: a.Column, Cond: cond, Body: breakBody})
	full.Ops = append(full.Ops, body.Ops...)

	chunk.WriteOp(vm.Opcode{Kind: vm.OpLoop, Line: a.Line, Col: a.Column, Body: full})
	return nil
}

// ifStatement flattens the parser's shape — Elif []*IfStatement and a
// single trailing Alternative *BlockStatement, both attached to the outer
// node — into the VM's singly-linked Opcode.Elif chain. A bare trailing
// `else` becomes a terminal link whose condition is an unconditional
// `true`, since the VM has no separate "else" slot.
func (c *Compiler) ifStatement(chunk *vm.Chunk, n *ast.IfStatement) error {
	op, err := c.buildIfChain(n)
	if err != nil {
		return err
	}
	chunk.WriteOp(*op)
	return nil
}

func (c *Compiler) buildIfChain(n *ast.IfStatement) (*vm.Opcode, error) {
	a := n.Addr()
	cond := vm.NewChunk(c.file)
	if err := c.expr(cond, n.Condition); err != nil {
		return nil, err
	}
	body, err := c.block(n.Consequence.Statements)
	if err != nil {
		return nil, err
	}
	op := &vm.Opcode{Kind: vm.OpIf, Line: a.Line, Col: a.Column, Cond: cond, Body: body}

	head := op
	tail := op
	for _, elif := range n.Elif {
		elifOp, err := c.buildIfChain(elif)
		if err != nil {
			return nil, err
		}
		tail.Elif = elifOp
		tail = elifOp
	}
	if n.Alternative != nil {
		elseCond := vm.NewChunk(c.file)
		elseCond.WriteOp(vm.Opcode{Kind: vm.OpPush, Line: a.Line, Col: a.Column, Value: vm.BoolVal(true)})
		elseBody, err := c.block(n.Alternative.Statements)
		if err != nil {
			return nil, err
		}
		tail.Elif = &vm.Opcode{Kind: vm.OpIf, Line: a.Line, Col: a.Column, Cond: elseCond, Body: elseBody}
	}
	return head, nil
}

// useStatement implements spec.md §6's import clauses: plain `use path`
// binds the module under its path's basename; `as alias` binds it under
// alias; `for a, b` (SPEC_FULL.md "Supplemented features") imports the
// module under a hidden name, pulls the requested members into the
// importer's scope via Load+Define, then discards the hidden binding.
func (c *Compiler) useStatement(chunk *vm.Chunk, n *ast.UseStatement) error {
	a := n.Addr()
	moduleID, err := c.resolver.Resolve(c.file, n.Path)
	if err != nil {
		return errf(a, "check the import path", "%v", err)
	}

	if len(n.ForNames) == 0 {
		variable := n.Alias
		if variable == "" {
			variable = moduleDefaultName(n.Path)
		}
		chunk.WriteOp(vm.Opcode{Kind: vm.OpImportModule, Line: a.Line, Col: a.Column, ModuleID: moduleID, Variable: variable})
		return nil
	}

	hidden := c.hiddenName("mod")
	chunk.WriteOp(vm.Opcode{Kind: vm.OpImportModule, Line: a.Line, Col: a.Column, ModuleID: moduleID, Variable: hidden})
	for _, name := range n.ForNames {
		chunk.WriteOp(vm.Opcode{Kind: vm.OpLoad, Line: a.Line, Col: a.Column, Name: hidden, ShouldPush: true})
		chunk.WriteOp(vm.Opcode{Kind: vm.OpLoad, Line: a.Line, Col: a.Column, Name: name, HasPrevious: true, ShouldPush: true})
		chunk.WriteOp(vm.Opcode{Kind: vm.OpDefine, Line: a.Line, Col: a.Column, Name: name})
	}
	chunk.WriteOp(vm.Opcode{Kind: vm.OpDeleteLocal, Line: a.Line, Col: a.Column, Name: hidden})
	return nil
}

func moduleDefaultName(path string) string {
	s := path
	if idx := strings.LastIndexByte(s, '/'); idx >= 0 {
		s = s[idx+1:]
	}
	if idx := strings.LastIndexByte(s, '.'); idx >= 0 {
		s = s[idx+1:]
	}
	return s
}

// exprStatement implements spec.md §4.2's bare-load-discard rule: a plain
// identifier or access-chain read in statement position loads without
// pushing (rather than push-then-pop); calls, constructor invocations, and
// `?` pass should_push=false straight into their own opcodes. Everything
// else has no "don't push" form, so it falls back to push-then-Pop.
func (c *Compiler) exprStatement(chunk *vm.Chunk, e ast.Expression) error {
	a := e.Addr()
	switch n := e.(type) {
	case *ast.Identifier:
		chunk.WriteOp(vm.Opcode{Kind: vm.OpLoad, Line: a.Line, Col: a.Column, Name: n.Name, ShouldPush: false})
		return nil
	case *ast.AccessExpression:
		if err := c.expr(chunk, n.Target); err != nil {
			return err
		}
		chunk.WriteOp(vm.Opcode{Kind: vm.OpLoad, Line: a.Line, Col: a.Column, Name: n.Member, HasPrevious: true, ShouldPush: false})
		return nil
	case *ast.CallExpression:
		return c.compileCall(chunk, n, false)
	case *ast.NewExpression:
		return c.newExpr(chunk, n, false)
	case *ast.PropagationExpression:
		return c.compilePropagation(chunk, n, false)
	default:
		if err := c.expr(chunk, e); err != nil {
			return err
		}
		chunk.WriteOp(vm.Opcode{Kind: vm.OpPop, Line: a.Line, Col: a.Column})
		return nil
	}
}

// assignStatement compiles `target op= value`. Compound operators
// desugar to `target = target <op> value`, re-reading Target once more
// than a dedicated read-modify-write opcode would need — simpler than
// adding one, and Target is restricted by the grammar to an Identifier or
// a single access step, so the re-read is cheap and side-effect-free
// except for AccessExpression's container sub-expression, which is
// Duplicated rather than re-evaluated (see below).
func (c *Compiler) assignStatement(chunk *vm.Chunk, n *ast.AssignStatement) error {
	a := n.Addr()
	binOp := strings.TrimSuffix(n.Op, "=")

	switch target := n.Target.(type) {
	case *ast.Identifier:
		if n.Op == "=" {
			if err := c.expr(chunk, n.Value); err != nil {
				return err
			}
			chunk.WriteOp(vm.Opcode{Kind: vm.OpStore, Line: a.Line, Col: a.Column, Name: target.Name})
			return nil
		}
		chunk.WriteOp(vm.Opcode{Kind: vm.OpLoad, Line: a.Line, Col: a.Column, Name: target.Name, ShouldPush: true})
		if err := c.expr(chunk, n.Value); err != nil {
			return err
		}
		chunk.WriteOp(vm.Opcode{Kind: vm.OpBin, Line: a.Line, Col: a.Column, Op: binOp})
		chunk.WriteOp(vm.Opcode{Kind: vm.OpStore, Line: a.Line, Col: a.Column, Name: target.Name})
		return nil

	case *ast.AccessExpression:
		if n.Op == "=" {
			if err := c.expr(chunk, target.Target); err != nil {
				return err
			}
			if err := c.expr(chunk, n.Value); err != nil {
				return err
			}
			chunk.WriteOp(vm.Opcode{Kind: vm.OpStore, Line: a.Line, Col: a.Column, Name: target.Member, HasPrevious: true})
			return nil
		}
		if err := c.expr(chunk, target.Target); err != nil {
			return err
		}
		chunk.WriteOp(vm.Opcode{Kind: vm.OpDuplicate, Line: a.Line, Col: a.Column})
		chunk.WriteOp(vm.Opcode{Kind: vm.OpLoad, Line: a.Line, Col: a.Column, Name: target.Member, HasPrevious: true, ShouldPush: true})
		if err := c.expr(chunk, n.Value); err != nil {
			return err
		}
		chunk.WriteOp(vm.Opcode{Kind: vm.OpBin, Line: a.Line, Col: a.Column, Op: binOp})
		chunk.WriteOp(vm.Opcode{Kind: vm.OpStore, Line: a.Line, Col: a.Column, Name: target.Member, HasPrevious: true})
		return nil

	default:
		return errf(a, "assignment targets must be a name or a member access", "invalid assignment target")
	}
}
