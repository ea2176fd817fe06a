package compiler

import (
	"github.com/oil-watt/watt/internal/ast"
	"github.com/oil-watt/watt/internal/vm"
)

// expr compiles e so that exactly one value lands on the stack, per every
// opcode in spec.md §4.4's table being a "push" form by default. Statement-
// position callers that want the suppressed-push variant (calls, `?`) go
// through the dedicated compileCall/compilePropagation helpers instead of
// this entry point.
func (c *Compiler) expr(chunk *vm.Chunk, e ast.Expression) error {
	switch n := e.(type) {
	case *ast.IntLiteral:
		chunk.WriteOp(vm.Opcode{Kind: vm.OpPush, Line: n.Addr().Line, Col: n.Addr().Column, Value: vm.IntVal(n.Value)})
		return nil

	case *ast.FloatLiteral:
		chunk.WriteOp(vm.Opcode{Kind: vm.OpPush, Line: n.Addr().Line, Col: n.Addr().Column, Value: vm.FloatVal(n.Value)})
		return nil

	case *ast.BoolLiteral:
		chunk.WriteOp(vm.Opcode{Kind: vm.OpPush, Line: n.Addr().Line, Col: n.Addr().Column, Value: vm.BoolVal(n.Value)})
		return nil

	case *ast.NullLiteral:
		chunk.WriteOp(vm.Opcode{Kind: vm.OpPush, Line: n.Addr().Line, Col: n.Addr().Column, Value: vm.Null()})
		return nil

	case *ast.StringLiteral:
		// The literal text rides in Name; OpPush allocates it at execution
		// time since the GC arena doesn't exist yet at compile time.
		chunk.WriteOp(vm.Opcode{Kind: vm.OpPush, Line: n.Addr().Line, Col: n.Addr().Column,
			Value: vm.Value{Kind: vm.KString}, Name: n.Value})
		return nil

	case *ast.ListLiteral:
		return c.listLiteral(chunk, n)

	case *ast.MapLiteral:
		return c.mapLiteral(chunk, n)

	case *ast.Identifier:
		chunk.WriteOp(vm.Opcode{Kind: vm.OpLoad, Line: n.Addr().Line, Col: n.Addr().Column, Name: n.Name, ShouldPush: true})
		return nil

	case *ast.SelfExpression:
		chunk.WriteOp(vm.Opcode{Kind: vm.OpLoad, Line: n.Addr().Line, Col: n.Addr().Column, Name: "self", ShouldPush: true})
		return nil

	case *ast.GroupExpression:
		return c.expr(chunk, n.Inner)

	case *ast.UnaryExpression:
		if err := c.expr(chunk, n.Operand); err != nil {
			return err
		}
		kind := vm.OpNeg
		if n.Op == "!" {
			kind = vm.OpBang
		}
		chunk.WriteOp(vm.Opcode{Kind: kind, Line: n.Addr().Line, Col: n.Addr().Column})
		return nil

	case *ast.BinaryExpression:
		return c.binaryExpr(chunk, n)

	case *ast.LogicExpression:
		leftChunk := vm.NewChunk(c.file)
		if err := c.expr(leftChunk, n.Left); err != nil {
			return err
		}
		rightChunk := vm.NewChunk(c.file)
		if err := c.expr(rightChunk, n.Right); err != nil {
			return err
		}
		chunk.WriteOp(vm.Opcode{Kind: vm.OpLogic, Line: n.Addr().Line, Col: n.Addr().Column,
			Op: n.Op, Left: leftChunk, Right: rightChunk})
		return nil

	case *ast.RangeExpression:
		return c.rangeExpr(chunk, n)

	case *ast.AccessExpression:
		if err := c.expr(chunk, n.Target); err != nil {
			return err
		}
		chunk.WriteOp(vm.Opcode{Kind: vm.OpLoad, Line: n.Addr().Line, Col: n.Addr().Column,
			Name: n.Member, HasPrevious: true, ShouldPush: true})
		return nil

	case *ast.CallExpression:
		return c.compileCall(chunk, n, true)

	case *ast.NewExpression:
		return c.newExpr(chunk, n, true)

	case *ast.PropagationExpression:
		return c.compilePropagation(chunk, n, true)

	case *ast.ImplsExpression:
		if err := c.expr(chunk, n.Value); err != nil {
			return err
		}
		chunk.WriteOp(vm.Opcode{Kind: vm.OpLoad, Line: n.Addr().Line, Col: n.Addr().Column,
			Name: n.TraitName, ShouldPush: true})
		chunk.WriteOp(vm.Opcode{Kind: vm.OpImpls, Line: n.Addr().Line, Col: n.Addr().Column})
		return nil

	case *ast.FnLiteral:
		body, err := c.block(n.Body.Statements)
		if err != nil {
			return err
		}
		chunk.WriteOp(vm.Opcode{Kind: vm.OpAnonymousFn, Line: n.Addr().Line, Col: n.Addr().Column,
			Name: n.Name, Params: n.Params, Body: body, MakeClosure: true})
		return nil

	case *ast.MatchExpression:
		return c.matchExpr(chunk, n, true)

	default:
		return errf(e.Addr(), "this expression form isn't supported yet", "unsupported expression node")
	}
}

// listLiteral compiles each element left-to-right then builds the List
// with OpMakeList (spec.md gives List no construction opcode of its own;
// see chunk.go's OpMakeList doc comment for the grounding).
func (c *Compiler) listLiteral(chunk *vm.Chunk, n *ast.ListLiteral) error {
	for _, el := range n.Elements {
		if err := c.expr(chunk, el); err != nil {
			return err
		}
	}
	chunk.WriteOp(vm.Opcode{Kind: vm.OpMakeList, Line: n.Addr().Line, Col: n.Addr().Column, Count: len(n.Elements)})
	return nil
}

// mapLiteral desugars to a List of 2-element [key, value] pair Lists: the
// Value model (spec.md §3) has no Map kind, so a literal map has to land
// somewhere, and a list-of-pairs is the natural encoding using the one
// container kind the model does have.
func (c *Compiler) mapLiteral(chunk *vm.Chunk, n *ast.MapLiteral) error {
	for _, entry := range n.Entries {
		if err := c.expr(chunk, entry.Key); err != nil {
			return err
		}
		if err := c.expr(chunk, entry.Value); err != nil {
			return err
		}
		chunk.WriteOp(vm.Opcode{Kind: vm.OpMakeList, Line: n.Addr().Line, Col: n.Addr().Column, Count: 2})
	}
	chunk.WriteOp(vm.Opcode{Kind: vm.OpMakeList, Line: n.Addr().Line, Col: n.Addr().Column, Count: len(n.Entries)})
	return nil
}

func (c *Compiler) binaryExpr(chunk *vm.Chunk, n *ast.BinaryExpression) error {
	if err := c.expr(chunk, n.Left); err != nil {
		return err
	}
	if err := c.expr(chunk, n.Right); err != nil {
		return err
	}
	switch n.Op {
	case "<", "<=", ">", ">=", "==", "!=":
		chunk.WriteOp(vm.Opcode{Kind: vm.OpCond, Line: n.Addr().Line, Col: n.Addr().Column, Op: n.Op})
	default:
		chunk.WriteOp(vm.Opcode{Kind: vm.OpBin, Line: n.Addr().Line, Col: n.Addr().Column, Op: n.Op})
	}
	return nil
}

// newExpr compiles `new TypeName(args...)` (spec.md §4.5 "Type instantiation").
func (c *Compiler) newExpr(chunk *vm.Chunk, n *ast.NewExpression, shouldPush bool) error {
	if err := c.expr(chunk, n.TypeName); err != nil {
		return err
	}
	args := vm.NewChunk(c.file)
	for _, a := range n.Args {
		if err := c.expr(args, a); err != nil {
			return err
		}
	}
	chunk.WriteOp(vm.Opcode{Kind: vm.OpInstance, Line: n.Addr().Line, Col: n.Addr().Column, Args: args, ShouldPush: shouldPush})
	return nil
}

// compilePropagation implements the trailing `?` (spec.md §4.4/§4.5
// "ErrorPropagation").
func (c *Compiler) compilePropagation(chunk *vm.Chunk, n *ast.PropagationExpression, shouldPush bool) error {
	if err := c.expr(chunk, n.Inner); err != nil {
		return err
	}
	chunk.WriteOp(vm.Opcode{Kind: vm.OpErrorPropagation, Line: n.Addr().Line, Col: n.Addr().Column, ShouldPush: shouldPush})
	return nil
}

// compileCall compiles `callee(args...)`: a bare identifier becomes a
// named, has_previous=false Call (spec.md §4.4's `Call(name, ...)` form);
// anything else — a member access, a parenthesized expression, a chained
// call's result — is compiled to push the callee value first, then Call
// with has_previous=true, matching how execCall pops the callee off the
// stack in that mode.
func (c *Compiler) compileCall(chunk *vm.Chunk, n *ast.CallExpression, shouldPush bool) error {
	args := vm.NewChunk(c.file)
	for _, a := range n.Args {
		if err := c.expr(args, a); err != nil {
			return err
		}
	}
	if id, ok := n.Callee.(*ast.Identifier); ok {
		chunk.WriteOp(vm.Opcode{Kind: vm.OpCall, Line: n.Addr().Line, Col: n.Addr().Column,
			Name: id.Name, Args: args, ShouldPush: shouldPush})
		return nil
	}
	if acc, ok := n.Callee.(*ast.AccessExpression); ok {
		if err := c.expr(chunk, acc.Target); err != nil {
			return err
		}
		chunk.WriteOp(vm.Opcode{Kind: vm.OpLoad, Line: acc.Addr().Line, Col: acc.Addr().Column,
			Name: acc.Member, HasPrevious: true, ShouldPush: true})
		chunk.WriteOp(vm.Opcode{Kind: vm.OpCall, Line: n.Addr().Line, Col: n.Addr().Column,
			HasPrevious: true, Args: args, ShouldPush: shouldPush})
		return nil
	}
	if err := c.expr(chunk, n.Callee); err != nil {
		return err
	}
	chunk.WriteOp(vm.Opcode{Kind: vm.OpCall, Line: n.Addr().Line, Col: n.Addr().Column,
		HasPrevious: true, Args: args, ShouldPush: shouldPush})
	return nil
}

// nativeCall emits a compiler-internal call to a registered native by name,
// bypassing any environment binding: Native(name) pushes the callable,
// argExprs push each argument in order, then Call(has_previous=true) pops
// the native directly as callee. Used by the for-loop desugaring to invoke
// list_len/list_get without requiring an `extern fn` prelude.
func (c *Compiler) nativeCall(chunk *vm.Chunk, a lineCol, name string, pushArgs func(args *vm.Chunk), shouldPush bool) {
	chunk.WriteOp(vm.Opcode{Kind: vm.OpNative, Line: a.Line, Col: a.Col, Name: name})
	args := vm.NewChunk(c.file)
	pushArgs(args)
	chunk.WriteOp(vm.Opcode{Kind: vm.OpCall, Line: a.Line, Col: a.Col, HasPrevious: true, Args: args, ShouldPush: shouldPush})
}

type lineCol struct {
	Line int
	Col  int
}

func at(n ast.Node) lineCol {
	a := n.Addr()
	return lineCol{Line: a.Line, Col: a.Column}
}

// rangeExpr materializes `start..end` as a List of consecutive Ints
// [start, end) at the point it's used as a value. The original has no
// runtime representation for Range to ground this on (its compiler stub
// never implements visit_range and nothing downstream consumes it), so a
// List is the natural choice: it's the model's only ordered-sequence kind,
// and for-loop iteration (the range's one real use) already iterates Lists.
func (c *Compiler) rangeExpr(chunk *vm.Chunk, n *ast.RangeExpression) error {
	return c.buildRangeList(chunk, n)
}
