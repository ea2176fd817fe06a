package vm

// CallFrame is an ordered stack of environments representing nested
// blocks within one function activation, plus an optional closure
// reference (spec §3 "CallFrame").
type CallFrame struct {
	envs    []*Environment
	closure *Environment
}

func newCallFrame(base *Environment, closure *Environment) *CallFrame {
	return &CallFrame{envs: []*Environment{base}, closure: closure}
}

// push opens a fresh environment for a new block (If/Loop/For/type body/
// function call all push one — spec §4.5 "Control flow in blocks").
func (f *CallFrame) push(parent *Environment) *Environment {
	e := NewChildEnvironment(parent)
	if f.closure != nil {
		e.SetClosure(f.closure)
	}
	f.envs = append(f.envs, e)
	return e
}

// pop discards the innermost environment; it is popped on every exit path
// including error propagation and returns (spec §4.5).
func (f *CallFrame) pop() {
	f.envs = f.envs[:len(f.envs)-1]
}

// peek returns the innermost environment (spec §3 "peek returns the
// innermost environment").
func (f *CallFrame) peek() *Environment {
	return f.envs[len(f.envs)-1]
}
