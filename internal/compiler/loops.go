package compiler

import (
	"github.com/oil-watt/watt/internal/ast"
	"github.com/oil-watt/watt/internal/vm"
)

// indexLoop emits the shared scaffolding behind `for` and range
// materialization: a hidden Int cursor starting at 0, incremented once per
// pass, with a break test against list_len(hiddenList) at the top of the
// body. body fills in what happens between the break test and the
// increment. Grounded on original_source's description of `for`
// desugaring to "Loop + Bin/index opcodes that advance a synthesized
// cursor binding" (SPEC_FULL.md "Supplemented features").
//
// hiddenList and the cursor are Defined in chunk (the scope enclosing the
// Loop), not inside the loop body: each iteration's body runs in a fresh
// environment (execLoop pushes one per pass), so a binding Stored only
// within the body wouldn't survive to the next iteration.
func (c *Compiler) indexLoop(chunk *vm.Chunk, lc lineCol, hiddenList string, body func(loopBody *vm.Chunk, hiddenIdx string) error) error {
	hiddenIdx := c.hiddenName("idx")
	chunk.WriteOp(vm.Opcode{Kind: vm.OpPush, Line: lc.Line, Col: lc.Col, Value: vm.IntVal(0)})
	chunk.WriteOp(vm.Opcode{Kind: vm.OpDefine, Line: lc.Line, Col: lc.Col, Name: hiddenIdx})

	loopBody := vm.NewChunk(c.file)

	condChunk := vm.NewChunk(c.file)
	condChunk.WriteOp(vm.Opcode{Kind: vm.OpLoad, Line: lc.Line, Col: lc.Col, Name: hiddenIdx, ShouldPush: true})
	c.nativeCall(condChunk, lc, "list_len", func(args *vm.Chunk) {
		args.WriteOp(vm.Opcode{Kind: vm.OpLoad, Line: lc.Line, Col: lc.Col, Name: hiddenList, ShouldPush: true})
	}, true)
	condChunk.WriteOp(vm.Opcode{Kind: vm.OpCond, Line: lc.Line, Col: lc.Col, Op: ">="})

	breakBody := vm.NewChunk(c.file)
	breakBody.WriteOp(vm.Opcode{Kind: vm.OpEndLoop, Line: lc.Line, Col: lc.Col, CurrentIteration: false})
	loopBody.WriteOp(vm.Opcode{Kind: vm.OpIf, Line: lc.Line, Col: lc.Col, Cond: condChunk, Body: breakBody})

	if err := body(loopBody, hiddenIdx); err != nil {
		return err
	}

	loopBody.WriteOp(vm.Opcode{Kind: vm.OpLoad, Line: lc.Line, Col: lc.Col, Name: hiddenIdx, ShouldPush: true})
	loopBody.WriteOp(vm.Opcode{Kind: vm.OpPush, Line: lc.Line, Col: lc.Col, Value: vm.IntVal(1)})
	loopBody.WriteOp(vm.Opcode{Kind: vm.OpBin, Line: lc.Line, Col: lc.Col, Op: "+"})
	loopBody.WriteOp(vm.Opcode{Kind: vm.OpStore, Line: lc.Line, Col: lc.Col, Name: hiddenIdx})

	chunk.WriteOp(vm.Opcode{Kind: vm.OpLoop, Line: lc.Line, Col: lc.Col, Body: loopBody})
	return nil
}

// forStatement lowers `for x in expr { body }` into the index-cursor
// protocol over the evaluated iterable: bind x to list_get(list, idx) at
// the top of each pass, run the user's body, advance idx.
func (c *Compiler) forStatement(chunk *vm.Chunk, n *ast.ForStatement) error {
	lc := at(n)
	if err := c.expr(chunk, n.Iterable); err != nil {
		return err
	}
	hiddenList := c.hiddenName("list")
	chunk.WriteOp(vm.Opcode{Kind: vm.OpDefine, Line: lc.Line, Col: lc.Col, Name: hiddenList})

	varName := n.Var
	return c.indexLoop(chunk, lc, hiddenList, func(loopBody *vm.Chunk, hiddenIdx string) error {
		c.nativeCall(loopBody, lc, "list_get", func(args *vm.Chunk) {
			args.WriteOp(vm.Opcode{Kind: vm.OpLoad, Line: lc.Line, Col: lc.Col, Name: hiddenList, ShouldPush: true})
			args.WriteOp(vm.Opcode{Kind: vm.OpLoad, Line: lc.Line, Col: lc.Col, Name: hiddenIdx, ShouldPush: true})
		}, true)
		loopBody.WriteOp(vm.Opcode{Kind: vm.OpDefine, Line: lc.Line, Col: lc.Col, Name: varName})
		for _, s := range n.Body.Statements {
			if err := c.statement(loopBody, s); err != nil {
				return err
			}
		}
		return nil
	})
}

// buildRangeList materializes `start..end` as a List of consecutive Ints
// [start, end) by counting an index up from start and list_push-ing it
// into a fresh list each pass, then leaves that list as the expression's
// value. See expressions.go's rangeExpr doc comment for why a List.
func (c *Compiler) buildRangeList(chunk *vm.Chunk, n *ast.RangeExpression) error {
	lc := at(n)
	if err := c.expr(chunk, n.Start); err != nil {
		return err
	}
	hiddenEnd := c.hiddenName("rend")
	hiddenOut := c.hiddenName("rlist")

	// stash start as the running cursor, under a name indexLoop can drive;
	// indexLoop wants a "hiddenList" to measure length against, but here
	// the stopping bound is `end`, not a list — so indexLoop isn't reused
	// directly; the loop is built by hand instead, compare cursor < end.
	hiddenCursor := c.hiddenName("rcursor")
	chunk.WriteOp(vm.Opcode{Kind: vm.OpDefine, Line: lc.Line, Col: lc.Col, Name: hiddenCursor})

	if err := c.expr(chunk, n.End); err != nil {
		return err
	}
	chunk.WriteOp(vm.Opcode{Kind: vm.OpDefine, Line: lc.Line, Col: lc.Col, Name: hiddenEnd})

	chunk.WriteOp(vm.Opcode{Kind: vm.OpMakeList, Line: lc.Line, Col: lc.Col, Count: 0})
	chunk.WriteOp(vm.Opcode{Kind: vm.OpDefine, Line: lc.Line, Col: lc.Col, Name: hiddenOut})

	loopBody := vm.NewChunk(c.file)

	condChunk := vm.NewChunk(c.file)
	condChunk.WriteOp(vm.Opcode{Kind: vm.OpLoad, Line: lc.Line, Col: lc.Col, Name: hiddenCursor, ShouldPush: true})
	condChunk.WriteOp(vm.Opcode{Kind: vm.OpLoad, Line: lc.Line, Col: lc.Col, Name: hiddenEnd, ShouldPush: true})
	condChunk.WriteOp(vm.Opcode{Kind: vm.OpCond, Line: lc.Line, Col: lc.Col, Op: ">="})
	breakBody := vm.NewChunk(c.file)
	breakBody.WriteOp(vm.Opcode{Kind: vm.OpEndLoop, Line: lc.Line, Col: lc.Col, CurrentIteration: false})
	loopBody.WriteOp(vm.Opcode{Kind: vm.OpIf, Line: lc.Line, Col: lc.Col, Cond: condChunk, Body: breakBody})

	c.nativeCall(loopBody, lc, "list_push", func(args *vm.Chunk) {
		args.WriteOp(vm.Opcode{Kind: vm.OpLoad, Line: lc.Line, Col: lc.Col, Name: hiddenOut, ShouldPush: true})
		args.WriteOp(vm.Opcode{Kind: vm.OpLoad, Line: lc.Line, Col: lc.Col, Name: hiddenCursor, ShouldPush: true})
	}, false)

	loopBody.WriteOp(vm.Opcode{Kind: vm.OpLoad, Line: lc.Line, Col: lc.Col, Name: hiddenCursor, ShouldPush: true})
	loopBody.WriteOp(vm.Opcode{Kind: vm.OpPush, Line: lc.Line, Col: lc.Col, Value: vm.IntVal(1)})
	loopBody.WriteOp(vm.Opcode{Kind: vm.OpBin, Line: lc.Line, Col: lc.Col, Op: "+"})
	loopBody.WriteOp(vm.Opcode{Kind: vm.OpStore, Line: lc.Line, Col: lc.Col, Name: hiddenCursor})

	chunk.WriteOp(vm.Opcode{Kind: vm.OpLoop, Line: lc.Line, Col: lc.Col, Body: loopBody})

	chunk.WriteOp(vm.Opcode{Kind: vm.OpLoad, Line: lc.Line, Col: lc.Col, Name: hiddenOut, ShouldPush: true})
	return nil
}

// matchExpr lowers `match subject { pat => body, ..., _ => body }` into a
// chain of equality-tested Ifs (SPEC_FULL.md "Supplemented features":
// "sequential equality tests, not a jump table", following the original's
// own codegen). The subject is evaluated once into a hidden binding; each
// arm compares it for equality (a nil Pattern is the wildcard `_`, always
// taken); the arm's Body is an expression whose value becomes the whole
// match's value.
func (c *Compiler) matchExpr(chunk *vm.Chunk, n *ast.MatchExpression, shouldPush bool) error {
	lc := at(n)
	if err := c.expr(chunk, n.Subject); err != nil {
		return err
	}
	hiddenSubject := c.hiddenName("subj")
	chunk.WriteOp(vm.Opcode{Kind: vm.OpDefine, Line: lc.Line, Col: lc.Col, Name: hiddenSubject})

	var head *vm.Opcode
	var tail *vm.Opcode
	for _, arm := range n.Arms {
		body := vm.NewChunk(c.file)
		if err := c.expr(body, arm.Body); err != nil {
			return err
		}
		if !shouldPush {
			body.Ops = append(body.Ops, vm.Opcode{Kind: vm.OpPop, Line: lc.Line, Col: lc.Col})
		}

		var cond *vm.Chunk
		if arm.Pattern == nil {
			cond = vm.NewChunk(c.file)
			cond.WriteOp(vm.Opcode{Kind: vm.OpPush, Line: lc.Line, Col: lc.Col, Value: vm.BoolVal(true)})
		} else {
			cond = vm.NewChunk(c.file)
			cond.WriteOp(vm.Opcode{Kind: vm.OpLoad, Line: lc.Line, Col: lc.Col, Name: hiddenSubject, ShouldPush: true})
			if err := c.expr(cond, arm.Pattern); err != nil {
				return err
			}
			cond.WriteOp(vm.Opcode{Kind: vm.OpCond, Line: lc.Line, Col: lc.Col, Op: "=="})
		}

		armOp := &vm.Opcode{Kind: vm.OpIf, Line: lc.Line, Col: lc.Col, Cond: cond, Body: body}
		if head == nil {
			head = armOp
		} else {
			tail.Elif = armOp
		}
		tail = armOp
	}
	if head == nil {
		if shouldPush {
			chunk.WriteOp(vm.Opcode{Kind: vm.OpPush, Line: lc.Line, Col: lc.Col, Value: vm.Null()})
		}
		return nil
	}
	chunk.WriteOp(*head)
	return nil
}
