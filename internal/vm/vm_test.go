package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oil-watt/watt/internal/address"
)

func newTestVM(t *testing.T) *VM {
	t.Helper()
	v, err := New(NewChunk("builtins"), map[string]ModuleInfo{})
	require.NoError(t, err)
	return v
}

func pushChunk(vals ...Value) *Chunk {
	c := NewChunk("test.wt")
	for _, v := range vals {
		c.WriteOp(Opcode{Kind: OpPush, Value: v})
	}
	return c
}

func retChunk(args *Chunk) *Chunk {
	c := NewChunk("test.wt")
	c.WriteOp(Opcode{Kind: OpRet, Args: args})
	return c
}

func TestRunArithmeticAddition(t *testing.T) {
	v := newTestVM(t)
	main := retChunk(func() *Chunk {
		c := pushChunk(IntVal(2), IntVal(3))
		c.WriteOp(Opcode{Kind: OpBin, Op: "+"})
		return c
	}())

	result, err := v.Run(main)
	require.NoError(t, err)
	require.Equal(t, KInt, result.Kind)
	require.Equal(t, int64(5), result.Int())
}

func TestRunIfTakesTrueBranch(t *testing.T) {
	v := newTestVM(t)
	thenBody := retChunk(pushChunk(IntVal(1)))
	main := NewChunk("test.wt")
	main.WriteOp(Opcode{Kind: OpIf, Cond: pushChunk(BoolVal(true)), Body: thenBody})
	main.WriteOp(Opcode{Kind: OpRet, Args: pushChunk(IntVal(99))})

	result, err := v.Run(main)
	require.NoError(t, err)
	require.Equal(t, int64(1), result.Int(), "the if body's own Return must propagate out, skipping the trailing opcode")
}

func TestRunIfFalseFallsThrough(t *testing.T) {
	v := newTestVM(t)
	thenBody := retChunk(pushChunk(IntVal(1)))
	main := NewChunk("test.wt")
	main.WriteOp(Opcode{Kind: OpIf, Cond: pushChunk(BoolVal(false)), Body: thenBody})
	main.WriteOp(Opcode{Kind: OpRet, Args: pushChunk(IntVal(99))})

	result, err := v.Run(main)
	require.NoError(t, err)
	require.Equal(t, int64(99), result.Int())
}

func TestRunElifChain(t *testing.T) {
	v := newTestVM(t)
	// if false { 1 } elif true { 2 } else { 3 }
	elseOp := &Opcode{Kind: OpIf, Cond: pushChunk(BoolVal(true)), Body: retChunk(pushChunk(IntVal(3)))}
	elifOp := &Opcode{Kind: OpIf, Cond: pushChunk(BoolVal(true)), Body: retChunk(pushChunk(IntVal(2))), Elif: elseOp}
	ifOp := Opcode{Kind: OpIf, Cond: pushChunk(BoolVal(false)), Body: retChunk(pushChunk(IntVal(1))), Elif: elifOp}

	main := NewChunk("test.wt")
	main.WriteOp(ifOp)
	main.WriteOp(Opcode{Kind: OpRet, Args: pushChunk(IntVal(-1))})

	result, err := v.Run(main)
	require.NoError(t, err)
	require.Equal(t, int64(2), result.Int())
}

func TestRunDefineLoadStore(t *testing.T) {
	v := newTestVM(t)
	chunk := NewChunk("test.wt")
	chunk.WriteOp(Opcode{Kind: OpPush, Value: IntVal(10)})
	chunk.WriteOp(Opcode{Kind: OpDefine, Name: "x"})
	chunk.WriteOp(Opcode{Kind: OpPush, Value: IntVal(20)})
	chunk.WriteOp(Opcode{Kind: OpStore, Name: "x"})
	chunk.WriteOp(Opcode{Kind: OpRet, Args: func() *Chunk {
		c := NewChunk("test.wt")
		c.WriteOp(Opcode{Kind: OpLoad, Name: "x", ShouldPush: true})
		return c
	}()})

	result, err := v.Run(chunk)
	require.NoError(t, err)
	require.Equal(t, int64(20), result.Int(), "Store must overwrite the existing binding, not shadow it")
}

func TestRunCallsDefinedFunction(t *testing.T) {
	v := newTestVM(t)

	loadN := func() *Chunk {
		c := NewChunk("test.wt")
		c.WriteOp(Opcode{Kind: OpLoad, Name: "n", ShouldPush: true})
		return c
	}
	squareBody := retChunk(func() *Chunk {
		c := loadN()
		c.WriteOp(loadN().Ops[0])
		c.WriteOp(Opcode{Kind: OpBin, Op: "*"})
		return c
	}())

	main := NewChunk("test.wt")
	main.WriteOp(Opcode{Kind: OpDefineFn, Name: "square", Params: []string{"n"}, Body: squareBody, MakeClosure: true})
	main.WriteOp(Opcode{Kind: OpCall, Name: "square", Args: pushChunk(IntVal(4)), ShouldPush: true})
	main.WriteOp(Opcode{Kind: OpDefine, Name: "result"})
	main.WriteOp(Opcode{Kind: OpRet, Args: func() *Chunk {
		c := NewChunk("test.wt")
		c.WriteOp(Opcode{Kind: OpLoad, Name: "result", ShouldPush: true})
		return c
	}()})

	result, err := v.Run(main)
	require.NoError(t, err)
	require.Equal(t, KInt, result.Kind)
	require.Equal(t, int64(16), result.Int())
}

func TestRunMakeListAndNativeLen(t *testing.T) {
	v := newTestVM(t)
	v.RegisterNative("len", 1, func(m *VM, site address.Address, shouldPush bool) error {
		arg, err := m.PopArg()
		if err != nil {
			return err
		}
		if shouldPush {
			m.Push(IntVal(int64(len(m.ListValue(arg)))))
		}
		return nil
	})

	build := NewChunk("test.wt")
	build.WriteOp(Opcode{Kind: OpPush, Value: IntVal(1)})
	build.WriteOp(Opcode{Kind: OpPush, Value: IntVal(2)})
	build.WriteOp(Opcode{Kind: OpPush, Value: IntVal(3)})
	build.WriteOp(Opcode{Kind: OpMakeList, Count: 3})

	// A call to a native goes through the same Native-then-Call(has_previous)
	// sequence internal/compiler's nativeCall helper emits: natives are
	// looked up via vm.natives, not bound in the environment, so a plain
	// name-based Call wouldn't find them.
	main := NewChunk("test.wt")
	main.WriteOp(Opcode{Kind: OpNative, Name: "len"})
	main.WriteOp(Opcode{Kind: OpCall, HasPrevious: true, Args: build, ShouldPush: true})
	main.WriteOp(Opcode{Kind: OpDefine, Name: "n"})
	main.WriteOp(Opcode{Kind: OpRet, Args: func() *Chunk {
		c := NewChunk("test.wt")
		c.WriteOp(Opcode{Kind: OpLoad, Name: "n", ShouldPush: true})
		return c
	}()})

	result, err := v.Run(main)
	require.NoError(t, err)
	require.Equal(t, int64(3), result.Int())
}
