package vm

import "github.com/oil-watt/watt/internal/address"

// Environment is a name->Value scope with a parent link (lexical
// enclosing scope), a closure link (captured scope of a function), and a
// root link (enclosing module/type/unit scope) — spec §3 "Environment".
// Lookup walks current -> closure -> parent chain until the name is found.
//
// Grounded on original_source/src/vm/frames.rs's Frame{map, root, closure}
// (lookup/set/define/set_root), generalized from the teacher's simpler
// single-outer-pointer internal/evaluator/environment.go.
type Environment struct {
	vars    map[string]Value
	parent  *Environment
	closure *Environment
	root    *Environment
}

func NewEnvironment() *Environment {
	return &Environment{vars: make(map[string]Value)}
}

func NewChildEnvironment(parent *Environment) *Environment {
	return &Environment{vars: make(map[string]Value), parent: parent}
}

// SetClosure links e to a captured defining scope (spec §8 "Closure
// transparency": free names resolve against the closure's chain, not the
// caller's).
func (e *Environment) SetClosure(closure *Environment) { e.closure = closure }

// SetRoot appends a chain tail used for module-level visibility (spec
// §4.6: "Setting root appends a chain tail used for module-level visibility").
func (e *Environment) SetRoot(root *Environment) { e.root = root }

// has reports whether name is reachable anywhere in e's resolution chain
// (current -> closure -> parent -> root), the same chain Load walks (spec
// §4.6 "exists(name) (check chain)").
func (e *Environment) has(name string) bool {
	if _, ok := e.vars[name]; ok {
		return true
	}
	if e.closure != nil && e.closure.has(name) {
		return true
	}
	if e.parent != nil && e.parent.has(name) {
		return true
	}
	if e.root != nil && e.root.has(name) {
		return true
	}
	return false
}

// Define inserts name into the current scope. Spec §4.6 describes Define
// as "idempotent insertion into current scope" — redefinition overwrites
// rather than erroring (the original's define() rejects shadowing, but
// spec §4.4's Define opcode semantics say only "pop value ... define in
// current frame", with no duplicate-name error listed in §7's taxonomy,
// so this follows the spec's more permissive contract).
func (e *Environment) Define(name string, v Value) {
	e.vars[name] = v
}

// Load resolves name by walking current -> closure -> parent chain (spec §4.6).
func (e *Environment) Load(a address.Address, name string) (Value, error) {
	if v, ok := e.vars[name]; ok {
		return v, nil
	}
	if e.closure != nil {
		if v, ok, err := e.closure.tryLoad(name); err != nil {
			return Value{}, err
		} else if ok {
			return v, nil
		}
	}
	if e.parent != nil {
		if v, ok, err := e.parent.tryLoad(name); err != nil {
			return Value{}, err
		} else if ok {
			return v, nil
		}
	}
	cur := e.root
	for cur != nil {
		if v, ok, err := cur.tryLoad(name); err != nil {
			return Value{}, err
		} else if ok {
			return v, nil
		}
		cur = cur.root
	}
	return Value{}, &RuntimeError{address.NewDiagnostic(address.RuntimeError, a,
		"unknown variable \""+name+"\"", "check variable existence before using it")}
}

func (e *Environment) tryLoad(name string) (Value, bool, error) {
	if e.has(name) {
		v, err := e.Load(address.Address{}, name)
		return v, true, err
	}
	return Value{}, false, nil
}

// Store updates the nearest existing binding in the chain; fatal if not
// found (spec §4.6 "store(name, v) (update nearest existing binding in the
// chain; fatal if not found)").
func (e *Environment) Store(a address.Address, name string, v Value) error {
	if _, ok := e.vars[name]; ok {
		e.vars[name] = v
		return nil
	}
	if e.closure != nil && e.closure.has(name) {
		return e.closure.Store(a, name, v)
	}
	if e.parent != nil && e.parent.has(name) {
		return e.parent.Store(a, name, v)
	}
	cur := e.root
	for cur != nil {
		if cur.has(name) {
			return cur.Store(a, name, v)
		}
		cur = cur.root
	}
	return &RuntimeError{address.NewDiagnostic(address.RuntimeError, a,
		"unknown variable \""+name+"\"", "declare it with 'let' before assigning")}
}

// Exists checks the full chain (spec §4.6 "exists(name) (check chain)").
func (e *Environment) Exists(name string) bool {
	return e.has(name)
}

// Delete removes a binding from the current scope only (spec §4.6
// "delete(name) (from current scope only)").
func (e *Environment) Delete(name string) {
	delete(e.vars, name)
}
