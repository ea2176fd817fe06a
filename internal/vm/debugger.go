package vm

import (
	"fmt"
	"io"

	"github.com/kr/pretty"
)

// Breakpoint is a source location the debugger should stop execution at.
type Breakpoint struct {
	File string
	Line int
}

// Debugger provides introspection hooks for the VM: breakpoints keyed by
// file:line, and structured dumps of the stack/environment via kr/pretty
// (value.go's Inspect only renders display text, not internal shape).
//
// Grounded on the teacher's internal/vm/debugger.go shape (Enabled flag,
// file->line breakpoint map, an Output writer) trimmed to what this spec
// actually needs: spec §6's invocation surface names no stepping/REPL
// protocol, so the teacher's ModeStep/ModeStepOver/ModeStepOut state
// machine has no home here — only breakpoint-gated inspection survives.
type Debugger struct {
	Enabled     bool
	Output      io.Writer
	breakpoints map[string]map[int]bool
}

func NewDebugger(out io.Writer) *Debugger {
	return &Debugger{Output: out, breakpoints: make(map[string]map[int]bool)}
}

func (d *Debugger) SetBreakpoint(file string, line int) {
	if d.breakpoints[file] == nil {
		d.breakpoints[file] = make(map[int]bool)
	}
	d.breakpoints[file][line] = true
}

func (d *Debugger) hasBreakpoint(file string, line int) bool {
	return d.breakpoints[file] != nil && d.breakpoints[file][line]
}

// CheckBreakpoint prints a structured dump of the VM's operand stack and
// current environment when execution reaches a set breakpoint. The host
// driver decides what "stopping" means (spec §6 leaves the CLI/REPL
// surface out of scope); here it's a synchronous, best-effort dump.
func (vm *VM) CheckBreakpoint(dbg *Debugger, file string, line int) {
	if dbg == nil || !dbg.Enabled || !dbg.hasBreakpoint(file, line) {
		return
	}
	fmt.Fprintf(dbg.Output, "-- breakpoint %s:%d --\n", file, line)
	dbg.DumpStack(vm)
	dbg.DumpEnv(vm)
}

func (d *Debugger) DumpStack(vm *VM) {
	fmt.Fprintf(d.Output, "stack (%d):\n", len(vm.stack))
	for i := len(vm.stack) - 1; i >= 0; i-- {
		fmt.Fprintf(d.Output, "  [%d] %s\n", i, vm.Inspect(vm.stack[i]))
	}
}

// DumpEnv pretty-prints the current environment's direct bindings (not
// the full parent/closure/root chain, which may be large and partly
// shared builtins).
func (d *Debugger) DumpEnv(vm *VM) {
	if len(vm.frames) == 0 {
		return
	}
	env := vm.env()
	names := make(map[string]string, len(env.vars))
	for name, v := range env.vars {
		names[name] = vm.Inspect(v)
	}
	fmt.Fprintf(d.Output, "env: %# v\n", pretty.Formatter(names))
}
