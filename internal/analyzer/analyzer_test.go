package analyzer

import (
	"testing"

	"github.com/oil-watt/watt/internal/parser"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, src string) error {
	t.Helper()
	prog, err := parser.Parse("test.wt", src)
	require.NoError(t, err)
	return Analyze("test.wt", prog)
}

func TestBreakOutsideLoopFails(t *testing.T) {
	err := analyze(t, "break\n")
	require.Error(t, err)
	require.Contains(t, err.Error(), "'break' outside a loop")
}

func TestContinueInsideLoopOk(t *testing.T) {
	err := analyze(t, "loop {\n  continue\n}\n")
	require.NoError(t, err)
}

func TestBreakInsideLoopOk(t *testing.T) {
	err := analyze(t, "while true {\n  break\n}\n")
	require.NoError(t, err)
}

func TestBreakDoesNotCrossFnBoundary(t *testing.T) {
	err := analyze(t, "loop {\n  fn f() {\n    break\n  }\n}\n")
	require.Error(t, err)
	require.Contains(t, err.Error(), "'break' outside a loop")
}

func TestReturnOutsideFnFails(t *testing.T) {
	err := analyze(t, "return 1\n")
	require.Error(t, err)
	require.Contains(t, err.Error(), "'return' outside a function")
}

func TestReturnInsideFnOk(t *testing.T) {
	err := analyze(t, "fn f() {\n  return 1\n}\n")
	require.NoError(t, err)
}

func TestUseNotAtTopLevelFails(t *testing.T) {
	err := analyze(t, "fn f() {\n  use std/io\n}\n")
	require.Error(t, err)
	require.Contains(t, err.Error(), "top level")
}

func TestUseAtTopLevelOk(t *testing.T) {
	err := analyze(t, "use std/io\n")
	require.NoError(t, err)
}

func TestPropagationOutsideFnFails(t *testing.T) {
	err := analyze(t, "let x = foo()?\n")
	require.Error(t, err)
	require.Contains(t, err.Error(), "'?' outside a function")
}

func TestPropagationInsideFnOk(t *testing.T) {
	err := analyze(t, "fn f() {\n  let x = foo()?\n}\n")
	require.NoError(t, err)
}

func TestForLoopAllowsBreak(t *testing.T) {
	err := analyze(t, "for x in items {\n  break\n}\n")
	require.NoError(t, err)
}
