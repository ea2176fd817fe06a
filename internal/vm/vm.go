package vm

import (
	"github.com/oil-watt/watt/internal/address"
)

const initialStackSize = 256

// ModuleInfo pairs an import path with the compiled chunk that defines it
// (spec §6 "Invocation surface from the host: constructing a VM takes ...
// (2) the module-id-to-ModuleInfo map").
type ModuleInfo struct {
	Path  string
	Chunk *Chunk
}

// VM is the Oil/Watt virtual machine: one operand stack, one call-frame
// stack, one module stack, one GC (spec §5 "Scheduling: single-threaded
// cooperative only").
//
// Grounded on the teacher's internal/vm/vm.go struct shape (stack slice +
// stack pointer, frame slice, globals) but without its upvalue machinery
// and ModuleScope/PersistentMap (that HAMT exists in the teacher for
// thread-safe shared globals; spec §5 explicitly scopes multi-threaded
// execution out, so this VM's environments are plain mutable maps).
type VM struct {
	stack []Value

	frames []*CallFrame

	moduleStack []Handle // currently executing module, innermost last

	builtins *Environment

	natives map[string]Handle

	modules    map[string]Handle // module id -> Module value, for identity (spec §8)
	moduleInfo map[string]ModuleInfo

	gc *GC
}

// New constructs a VM from a builtins chunk and the module-id-to-ModuleInfo
// map (spec §6). The builtins chunk runs immediately into vm.builtins with
// the GC frozen, per spec §5 "GC may be frozen during VM bootstrap
// (natives registration and builtins execution) to avoid mid-construction sweeps."
func New(builtinsChunk *Chunk, moduleInfo map[string]ModuleInfo) (*VM, error) {
	vm := &VM{
		stack:      make([]Value, 0, initialStackSize),
		natives:    make(map[string]Handle),
		modules:    make(map[string]Handle),
		moduleInfo: moduleInfo,
		gc:         NewGC(),
		builtins:   NewEnvironment(),
	}
	vm.gc.Freeze()
	defer vm.gc.Unfreeze()

	if builtinsChunk != nil {
		frame := newCallFrame(vm.builtins, nil)
		vm.frames = append(vm.frames, frame)
		if _, err := vm.run(builtinsChunk); err != nil {
			return nil, err
		}
		vm.frames = vm.frames[:0]
	}
	return vm, nil
}

// Run executes mainChunk as the program entry point (spec §6 "the host may
// call a top-level run(main_chunk) to execute program entry").
func (vm *VM) Run(mainChunk *Chunk) (Value, error) {
	root := NewChildEnvironment(vm.builtins)
	frame := newCallFrame(root, nil)
	vm.frames = append(vm.frames, frame)
	defer func() { vm.frames = vm.frames[:len(vm.frames)-1] }()

	cf, err := vm.run(mainChunk)
	if err != nil {
		return Value{}, err
	}
	if cf.Kind == cfReturn {
		return cf.Value, nil
	}
	return Null(), nil
}

func (vm *VM) push(v Value) {
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() (Value, error) {
	if len(vm.stack) == 0 {
		return Value{}, runtimeErrf(address.Address{}, "this is an internal VM bug, not a source error", "stack underflow")
	}
	n := len(vm.stack) - 1
	v := vm.stack[n]
	vm.stack = vm.stack[:n]
	return v, nil
}

func (vm *VM) popN(n int) ([]Value, error) {
	if len(vm.stack) < n {
		return nil, runtimeErrf(address.Address{}, "this is an internal VM bug, not a source error", "stack underflow")
	}
	start := len(vm.stack) - n
	out := make([]Value, n)
	copy(out, vm.stack[start:])
	vm.stack = vm.stack[:start]
	return out, nil
}

func (vm *VM) frame() *CallFrame {
	return vm.frames[len(vm.frames)-1]
}

func (vm *VM) env() *Environment {
	return vm.frame().peek()
}

func (vm *VM) addr(file string, op Opcode) address.Address {
	return address.Address{File: file, Line: op.Line, Column: op.Col}
}

// MaybeCollect runs a GC pass rooted at the live operand stack and at the
// bindings of every call frame's environments, in addition to the arena's
// own root/guard stacks. Host code (or natives
// with a long-running loop) may call this between top-level statements;
// the dispatch loop itself never collects mid-chunk, matching spec §5's
// "every opcode executes to completion before the next."
func (vm *VM) MaybeCollect() {
	roots := append([]Value(nil), vm.stack...)
	for _, f := range vm.frames {
		for _, e := range f.envs {
			for _, h := range e.references() {
				if obj := vm.gc.get(h); obj != nil {
					roots = append(roots, RefVal(obj.heapKind(), h))
				}
			}
		}
	}
	vm.gc.Collect(roots)
}
