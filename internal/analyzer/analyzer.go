// Package analyzer performs the single semantic AST walk described in spec
// §4.3: it enforces where break/continue/return/error-propagation and
// use/import may appear, without rewriting the tree.
//
// Grounded on the teacher's internal/analyzer/analyzer.go walker-dispatch
// shape (a walker struct carrying analysis state, switch-on-concrete-type
// statement/expression visitors) but trimmed of its type-inference machinery
// (InferenceContext, TypeMap, symbol tables) — that is out of this spec's
// scope (§Non-goals: "no static type inference").
package analyzer

import (
	"fmt"

	"github.com/oil-watt/watt/internal/address"
	"github.com/oil-watt/watt/internal/ast"
)

// Error is a SemanticError diagnostic.
type Error struct {
	*address.Diagnostic
}

// kind is a contextual frame pushed while walking the tree, per spec §4.3's
// "stack of contextual kinds {Block, If, Loop, For, Fn}".
type kind int

const (
	kBlock kind = iota
	kIf
	kLoop
	kFor
	kFn
)

type walker struct {
	file  string
	stack []kind
}

// Analyze runs the single AST walk over prog, returning the first violation
// found (spec §4.2/§4.3: diagnostics are reported at the first failure, not
// collected).
func Analyze(file string, prog *ast.Program) error {
	w := &walker{file: file}
	for _, stmt := range prog.Statements {
		if err := w.topLevel(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) push(k kind) { w.stack = append(w.stack, k) }
func (w *walker) pop()        { w.stack = w.stack[:len(w.stack)-1] }

func (w *walker) inLoop() bool {
	for i := len(w.stack) - 1; i >= 0; i-- {
		switch w.stack[i] {
		case kLoop, kFor:
			return true
		case kFn:
			return false // a loop does not reach through a function boundary
		}
	}
	return false
}

func (w *walker) inFn() bool {
	for i := len(w.stack) - 1; i >= 0; i-- {
		if w.stack[i] == kFn {
			return true
		}
	}
	return false
}

func (w *walker) errf(a address.Address, hint, format string, args ...interface{}) error {
	return &Error{address.NewDiagnostic(address.SemanticError, a, fmt.Sprintf(format, args...), hint)}
}

// topLevel walks a statement that appears directly in a Program — the only
// place `use`/`import` is legal (function/type/unit bodies go through
// statements with allowUse=false).
func (w *walker) topLevel(stmt ast.Statement) error {
	if _, ok := stmt.(*ast.UseStatement); ok {
		return nil
	}
	return w.statement(stmt)
}

func (w *walker) statements(stmts []ast.Statement, allowUse bool) error {
	for _, s := range stmts {
		if use, ok := s.(*ast.UseStatement); ok {
			if !allowUse {
				return w.errf(use.Addr(), "move this 'use' to the top level", "'use'/'import' only occurs at top level")
			}
			continue
		}
		if err := w.statement(s); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) statement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.UseStatement:
		return w.errf(s.Addr(), "move this 'use' to the top level", "'use'/'import' only occurs at top level")

	case *ast.FnDecl:
		w.push(kFn)
		err := w.statements(s.Body.Statements, false)
		w.pop()
		return err

	case *ast.ExternFnDecl, *ast.ConstDecl, *ast.TraitDecl:
		return nil

	case *ast.TypeDecl:
		w.push(kBlock)
		err := w.statements(s.Body.Statements, false)
		w.pop()
		return err

	case *ast.UnitDecl:
		w.push(kBlock)
		err := w.statements(s.Body.Statements, false)
		w.pop()
		return err

	case *ast.LetStatement:
		return w.expression(s.Value)

	case *ast.BlockStatement:
		w.push(kBlock)
		err := w.statements(s.Statements, false)
		w.pop()
		return err

	case *ast.IfStatement:
		return w.ifStatement(s)

	case *ast.WhileStatement:
		if err := w.expression(s.Condition); err != nil {
			return err
		}
		w.push(kLoop)
		err := w.statements(s.Body.Statements, false)
		w.pop()
		return err

	case *ast.LoopStatement:
		w.push(kLoop)
		err := w.statements(s.Body.Statements, false)
		w.pop()
		return err

	case *ast.ForStatement:
		if err := w.expression(s.Iterable); err != nil {
			return err
		}
		w.push(kFor)
		err := w.statements(s.Body.Statements, false)
		w.pop()
		return err

	case *ast.BreakStatement:
		if !w.inLoop() {
			return w.errf(s.Addr(), "use 'break' only inside a loop", "'break' outside a loop")
		}
		return nil

	case *ast.ContinueStatement:
		if !w.inLoop() {
			return w.errf(s.Addr(), "use 'continue' only inside a loop", "'continue' outside a loop")
		}
		return nil

	case *ast.ReturnStatement:
		if !w.inFn() {
			return w.errf(s.Addr(), "use 'return' only inside a function", "'return' outside a function")
		}
		if s.Value != nil {
			return w.expression(s.Value)
		}
		return nil

	case *ast.ExpressionStatement:
		return w.expression(s.Expression)

	case *ast.AssignStatement:
		if err := w.expression(s.Target); err != nil {
			return err
		}
		return w.expression(s.Value)

	default:
		return nil
	}
}

func (w *walker) ifStatement(s *ast.IfStatement) error {
	if err := w.expression(s.Condition); err != nil {
		return err
	}
	w.push(kIf)
	err := w.statements(s.Consequence.Statements, false)
	w.pop()
	if err != nil {
		return err
	}
	for _, elif := range s.Elif {
		if err := w.ifStatement(elif); err != nil {
			return err
		}
	}
	if s.Alternative != nil {
		w.push(kIf)
		err := w.statements(s.Alternative.Statements, false)
		w.pop()
		if err != nil {
			return err
		}
	}
	return nil
}

// expression walks every nested expression, checking that error-propagation
// (`?`) occurs only inside a function frame and validating subexpressions
// that embed statements (fn literals, match arms).
func (w *walker) expression(expr ast.Expression) error {
	switch e := expr.(type) {
	case nil:
		return nil

	case *ast.PropagationExpression:
		if !w.inFn() {
			return w.errf(e.Addr(), "use '?' only inside a function", "error-propagation '?' outside a function")
		}
		return w.expression(e.Inner)

	case *ast.UnaryExpression:
		return w.expression(e.Operand)

	case *ast.BinaryExpression:
		if err := w.expression(e.Left); err != nil {
			return err
		}
		return w.expression(e.Right)

	case *ast.LogicExpression:
		if err := w.expression(e.Left); err != nil {
			return err
		}
		return w.expression(e.Right)

	case *ast.RangeExpression:
		if err := w.expression(e.Start); err != nil {
			return err
		}
		return w.expression(e.End)

	case *ast.GroupExpression:
		return w.expression(e.Inner)

	case *ast.AccessExpression:
		return w.expression(e.Target)

	case *ast.ImplsExpression:
		return w.expression(e.Value)

	case *ast.CallExpression:
		if err := w.expression(e.Callee); err != nil {
			return err
		}
		for _, arg := range e.Args {
			if err := w.expression(arg); err != nil {
				return err
			}
		}
		return nil

	case *ast.NewExpression:
		for _, arg := range e.Args {
			if err := w.expression(arg); err != nil {
				return err
			}
		}
		return nil

	case *ast.ListLiteral:
		for _, el := range e.Elements {
			if err := w.expression(el); err != nil {
				return err
			}
		}
		return nil

	case *ast.MapLiteral:
		for _, entry := range e.Entries {
			if err := w.expression(entry.Key); err != nil {
				return err
			}
			if err := w.expression(entry.Value); err != nil {
				return err
			}
		}
		return nil

	case *ast.FnLiteral:
		w.push(kFn)
		err := w.statements(e.Body.Statements, false)
		w.pop()
		return err

	case *ast.MatchExpression:
		if err := w.expression(e.Subject); err != nil {
			return err
		}
		for _, arm := range e.Arms {
			if arm.Pattern != nil {
				if err := w.expression(arm.Pattern); err != nil {
					return err
				}
			}
			if err := w.expression(arm.Body); err != nil {
				return err
			}
		}
		return nil

	default:
		// Identifier, SelfExpression, IntLiteral, FloatLiteral, StringLiteral,
		// BoolLiteral, NullLiteral carry no nested expressions to check.
		return nil
	}
}
