package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oil-watt/watt/internal/address"
	"github.com/oil-watt/watt/internal/analyzer"
	"github.com/oil-watt/watt/internal/natives/base"
	"github.com/oil-watt/watt/internal/parser"
	"github.com/oil-watt/watt/internal/vm"
)

// noResolver is used by tests whose programs contain no `use` statement.
type noResolver struct{}

func (noResolver) Resolve(fromFile, spec string) (string, error) {
	return "", nil
}

// compileAndCapture compiles and runs src, which must call the built-in
// `capture(value)` native as its last top-level statement. `return` is only
// legal inside a function body (analyzer.go's inFn check), so a top-level
// program has no other way to hand a value back to the host — capture is
// the test harness's stand-in for that missing channel.
func compileAndCapture(t *testing.T, src string) (vm.Value, *vm.VM) {
	t.Helper()
	prog, err := parser.Parse("test.wt", src)
	require.NoError(t, err)
	require.NoError(t, analyzer.Analyze("test.wt", prog))

	chunk, err := Compile("test.wt", noResolver{}, prog)
	require.NoError(t, err)

	v, err := vm.New(vm.NewChunk("builtins"), map[string]vm.ModuleInfo{})
	require.NoError(t, err)
	base.Register(v)

	var captured vm.Value
	var got bool
	v.RegisterNative("capture", 1, func(m *vm.VM, site address.Address, shouldPush bool) error {
		arg, err := m.PopArg()
		if err != nil {
			return err
		}
		captured, got = arg, true
		if shouldPush {
			m.Push(vm.Null())
		}
		return nil
	})

	_, err = v.Run(chunk)
	require.NoError(t, err)
	require.True(t, got, "program never called capture(...)")
	return captured, v
}

func TestCompileArithmetic(t *testing.T) {
	result, _ := compileAndCapture(t, "capture(2 + 3 * 4)\n")
	require.Equal(t, vm.KInt, result.Kind)
	require.Equal(t, int64(14), result.Int())
}

func TestCompileIfElse(t *testing.T) {
	result, v := compileAndCapture(t, `
fn classify(n) {
  if n < 0 {
    return "neg"
  } elif n == 0 {
    return "zero"
  } else {
    return "pos"
  }
}
capture(classify(5))
`)
	require.Equal(t, vm.KString, result.Kind)
	require.Equal(t, "pos", v.StringValue(result))
}

func TestCompileWhileLoop(t *testing.T) {
	result, _ := compileAndCapture(t, `
let i = 0
let total = 0
while i < 5 {
  total += i
  i += 1
}
capture(total)
`)
	require.Equal(t, vm.KInt, result.Kind)
	require.Equal(t, int64(10), result.Int())
}

func TestCompileForLoop(t *testing.T) {
	result, _ := compileAndCapture(t, `
let items = [1, 2, 3, 4]
let total = 0
for x in items {
  total += x
}
capture(total)
`)
	require.Equal(t, vm.KInt, result.Kind)
	require.Equal(t, int64(10), result.Int())
}

func TestCompileRangeMaterializesList(t *testing.T) {
	result, _ := compileAndCapture(t, `
let total = 0
for x in 0..5 {
  total += x
}
capture(total)
`)
	require.Equal(t, vm.KInt, result.Kind)
	require.Equal(t, int64(10), result.Int())
}

func TestCompileMatchExpression(t *testing.T) {
	result, v := compileAndCapture(t, `
let n = 2
capture(match n {
  1 => "one",
  2 => "two",
  _ => "many",
})
`)
	require.Equal(t, vm.KString, result.Kind)
	require.Equal(t, "two", v.StringValue(result))
}

func TestCompileLogicShortCircuit(t *testing.T) {
	result, _ := compileAndCapture(t, "capture(true or false)\n")
	require.Equal(t, vm.KBool, result.Kind)
	require.True(t, result.Bool())
}
