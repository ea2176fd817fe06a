package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oil-watt/watt/internal/ast"
)

func TestParseLetStatement(t *testing.T) {
	prog, err := Parse("test.wt", "let x = 1 + 2\n")
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)

	let, ok := prog.Statements[0].(*ast.LetStatement)
	require.True(t, ok)
	require.Equal(t, "x", let.Name)
	require.IsType(t, &ast.BinaryExpression{}, let.Value)
}

func TestParseFnDeclWithReturn(t *testing.T) {
	prog, err := Parse("test.wt", `
pub fn add(a, b) {
  return a + b
}
`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)

	fn, ok := prog.Statements[0].(*ast.FnDecl)
	require.True(t, ok)
	require.True(t, fn.Pub)
	require.Equal(t, "add", fn.Name)
	require.Equal(t, []string{"a", "b"}, fn.Params)
	require.Len(t, fn.Body.Statements, 1)
	require.IsType(t, &ast.ReturnStatement{}, fn.Body.Statements[0])
}

func TestParseIfElifElse(t *testing.T) {
	prog, err := Parse("test.wt", `
if a {
  let x = 1
} elif b {
  let x = 2
} else {
  let x = 3
}
`)
	require.NoError(t, err)
	ifStmt, ok := prog.Statements[0].(*ast.IfStatement)
	require.True(t, ok)
	require.Len(t, ifStmt.Elif, 1)
	require.NotNil(t, ifStmt.Alternative)
}

func TestParseForLoopOverRange(t *testing.T) {
	prog, err := Parse("test.wt", `
for x in 0..5 {
  let y = x
}
`)
	require.NoError(t, err)
	forStmt, ok := prog.Statements[0].(*ast.ForStatement)
	require.True(t, ok)
	require.Equal(t, "x", forStmt.Var)
	require.IsType(t, &ast.RangeExpression{}, forStmt.Iterable)
}

func TestParseWhileLoop(t *testing.T) {
	prog, err := Parse("test.wt", `
while i < 5 {
  i += 1
}
`)
	require.NoError(t, err)
	while, ok := prog.Statements[0].(*ast.WhileStatement)
	require.True(t, ok)
	require.IsType(t, &ast.BinaryExpression{}, while.Condition)
	require.Len(t, while.Body.Statements, 1)

	assign, ok := while.Body.Statements[0].(*ast.AssignStatement)
	require.True(t, ok)
	require.Equal(t, "+=", assign.Op)
}

func TestParseMatchExpression(t *testing.T) {
	prog, err := Parse("test.wt", `
let r = match n {
  1 => "one",
  2 => "two",
  _ => "many",
}
`)
	require.NoError(t, err)
	let, ok := prog.Statements[0].(*ast.LetStatement)
	require.True(t, ok)

	m, ok := let.Value.(*ast.MatchExpression)
	require.True(t, ok)
	require.Len(t, m.Arms, 3)
	require.Nil(t, m.Arms[2].Pattern, "wildcard arm has a nil Pattern")
}

func TestParseUseStatementForms(t *testing.T) {
	prog, err := Parse("test.wt", `
use std.fmt as fmt
use mathx for square, cube
`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)

	aliased, ok := prog.Statements[0].(*ast.UseStatement)
	require.True(t, ok)
	require.Equal(t, "std.fmt", aliased.Path)
	require.Equal(t, "fmt", aliased.Alias)

	selective, ok := prog.Statements[1].(*ast.UseStatement)
	require.True(t, ok)
	require.Equal(t, "mathx", selective.Path)
	require.Equal(t, []string{"square", "cube"}, selective.ForNames)
}

func TestParseCallAndMemberAccess(t *testing.T) {
	prog, err := Parse("test.wt", "mod.greet(1, 2)\n")
	require.NoError(t, err)

	exprStmt, ok := prog.Statements[0].(*ast.ExpressionStatement)
	require.True(t, ok)

	call, ok := exprStmt.Expression.(*ast.CallExpression)
	require.True(t, ok)
	require.Len(t, call.Args, 2)

	access, ok := call.Callee.(*ast.AccessExpression)
	require.True(t, ok)
	require.Equal(t, "greet", access.Member)
}

func TestParseUnclosedBlockIsError(t *testing.T) {
	_, err := Parse("test.wt", "if a {\n  let x = 1\n")
	require.Error(t, err)
}

func TestParseReturnOutsideFnStillParses(t *testing.T) {
	// parsing accepts a bare top-level return; the analyzer is what rejects
	// it (see analyzer_test.go's TestReturnOutsideFnFails).
	prog, err := Parse("test.wt", "return 1\n")
	require.NoError(t, err)
	require.IsType(t, &ast.ReturnStatement{}, prog.Statements[0])
}
