// Package ast defines the Oil/Watt abstract syntax tree produced by the
// parser and consumed by the analyzer and compiler.
//
// Node shapes follow the teacher's internal/ast/ast_core.go convention (an
// Expression/Statement interface pair, concrete struct-per-form, an embedded
// token/address for diagnostics) trimmed to this spec's grammar (§4.2): no
// row-polymorphic records or list comprehensions, which are the teacher's own
// extensions beyond this spec's scope.
package ast

import "github.com/oil-watt/watt/internal/address"

type Node interface {
	Addr() address.Address
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Program is the root of a parsed compilation unit (one source file).
type Program struct {
	Statements []Statement
	File       string
}

func (p *Program) Addr() address.Address {
	if len(p.Statements) > 0 {
		return p.Statements[0].Addr()
	}
	return address.New(p.File, 1, 1)
}

type Base struct {
	Address address.Address
}

func NewBase(a address.Address) Base { return Base{Address: a} }

func (b Base) Addr() address.Address { return b.Address }

// ---- Declarations (top level) ----

type FnDecl struct {
	Base
	Pub    bool
	Name   string
	Params []string
	Body   *BlockStatement
}

func (*FnDecl) statementNode() {}

type TypeDecl struct {
	Base
	Pub        bool
	Name       string
	CtorParams []string
	Body       *BlockStatement
	Impls      []string
}

func (*TypeDecl) statementNode() {}

type UnitDecl struct {
	Base
	Pub  bool
	Name string
	Body *BlockStatement
}

func (*UnitDecl) statementNode() {}

type TraitFnSig struct {
	Name        string
	ParamCount  int
	HasDefault  bool
	DefaultBody *BlockStatement
	Params      []string
}

type TraitDecl struct {
	Base
	Pub  bool
	Name string
	Fns  []TraitFnSig
}

func (*TraitDecl) statementNode() {}

type ConstDecl struct {
	Base
	Pub   bool
	Name  string
	Value Expression
}

func (*ConstDecl) statementNode() {}

type ExternFnDecl struct {
	Base
	Pub    bool
	Name   string
	Params []string
}

func (*ExternFnDecl) statementNode() {}

type LetStatement struct {
	Base
	Name  string
	Value Expression
}

func (*LetStatement) statementNode() {}

// UseStatement models both `use path as alias` and `use path for a, b`.
type UseStatement struct {
	Base
	Path     string
	Alias    string   // bind module itself under this name, if non-empty
	ForNames []string // selective import names, if non-empty
}

func (*UseStatement) statementNode() {}

// ---- Statements ----

type BlockStatement struct {
	Base
	Statements []Statement
}

func (*BlockStatement) statementNode() {}

type IfStatement struct {
	Base
	Condition   Expression
	Consequence *BlockStatement
	Elif        []*IfStatement
	Alternative *BlockStatement
}

func (*IfStatement) statementNode() {}

type WhileStatement struct {
	Base
	Condition Expression
	Body      *BlockStatement
}

func (*WhileStatement) statementNode() {}

type LoopStatement struct {
	Base
	Body *BlockStatement
}

func (*LoopStatement) statementNode() {}

type ForStatement struct {
	Base
	Var      string
	Iterable Expression
	Body     *BlockStatement
}

func (*ForStatement) statementNode() {}

type MatchArm struct {
	Pattern Expression // nil means wildcard `_`
	Body    Expression
}

type MatchExpression struct {
	Base
	Subject Expression
	Arms    []MatchArm
}

func (*MatchExpression) expressionNode() {}

type BreakStatement struct{ Base }

func (*BreakStatement) statementNode() {}

type ContinueStatement struct{ Base }

func (*ContinueStatement) statementNode() {}

type ReturnStatement struct {
	Base
	Value Expression // nil for bare `return`
}

func (*ReturnStatement) statementNode() {}

type ExpressionStatement struct {
	Base
	Expression Expression
}

func (*ExpressionStatement) statementNode() {}

type AssignStatement struct {
	Base
	Target Expression // Identifier or AccessExpression
	Op     string     // "=", "+=", "-=", "*=", "/="
	Value  Expression
}

func (*AssignStatement) statementNode() {}

// ---- Expressions ----

type Identifier struct {
	Base
	Name string
}

func (*Identifier) expressionNode() {}

type SelfExpression struct{ Base }

func (*SelfExpression) expressionNode() {}

type IntLiteral struct {
	Base
	Value int64
}

func (*IntLiteral) expressionNode() {}

type FloatLiteral struct {
	Base
	Value float64
}

func (*FloatLiteral) expressionNode() {}

type StringLiteral struct {
	Base
	Value string
}

func (*StringLiteral) expressionNode() {}

type BoolLiteral struct {
	Base
	Value bool
}

func (*BoolLiteral) expressionNode() {}

type NullLiteral struct{ Base }

func (*NullLiteral) expressionNode() {}

type ListLiteral struct {
	Base
	Elements []Expression
}

func (*ListLiteral) expressionNode() {}

type MapEntry struct {
	Key   Expression
	Value Expression
}

type MapLiteral struct {
	Base
	Entries []MapEntry
}

func (*MapLiteral) expressionNode() {}

type FnLiteral struct {
	Base
	Name   string // empty for anonymous/lambda
	Params []string
	Body   *BlockStatement
}

func (*FnLiteral) expressionNode() {}

type GroupExpression struct {
	Base
	Inner Expression
}

func (*GroupExpression) expressionNode() {}

type UnaryExpression struct {
	Base
	Op      string // "-" or "!"
	Operand Expression
}

func (*UnaryExpression) expressionNode() {}

type BinaryExpression struct {
	Base
	Op    string
	Left  Expression
	Right Expression
}

func (*BinaryExpression) expressionNode() {}

type LogicExpression struct {
	Base
	Op    string // "and" / "or"
	Left  Expression
	Right Expression
}

func (*LogicExpression) expressionNode() {}

type RangeExpression struct {
	Base
	Start Expression
	End   Expression
}

func (*RangeExpression) expressionNode() {}

// AccessExpression models a chain step `target.Member` (field/method name).
// Chained calls/indices wrap an AccessExpression as their Target.
type AccessExpression struct {
	Base
	Target Expression
	Member string
}

func (*AccessExpression) expressionNode() {}

// CallExpression models `callee(args...)`. Callee may be an Identifier (bare
// call) or an AccessExpression (method call), matching spec §4.2's access
// chain `a.b.c(args).d`.
type CallExpression struct {
	Base
	Callee Expression
	Args   []Expression
}

func (*CallExpression) expressionNode() {}

// NewExpression models `new TypeName(args...)`.
type NewExpression struct {
	Base
	TypeName Expression
	Args     []Expression
}

func (*NewExpression) expressionNode() {}

// PropagationExpression models a trailing `?` on an expression (spec §4.2/§4.5).
type PropagationExpression struct {
	Base
	Inner Expression
}

func (*PropagationExpression) expressionNode() {}

// ImplsExpression models `value.impls TraitName`.
type ImplsExpression struct {
	Base
	Value     Expression
	TraitName string
}

func (*ImplsExpression) expressionNode() {}
