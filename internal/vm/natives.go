package vm

import "github.com/oil-watt/watt/internal/address"

// NativeFn is the host side of the native-function contract (spec §4.8:
// "A native function is (vm, call_site_address, should_push) ->
// Result<(), ControlFlow> with a fixed declared parameter count"). Natives
// pop their own arguments via vm.PopArg / vm.PopArgs and push exactly one
// value iff shouldPush is set.
type NativeFn func(vm *VM, site address.Address, shouldPush bool) error

// RegisterNative installs a native under name with a fixed arity, as a
// (name, arity, function) triple (spec §6 "Natives are registered as
// (name, arity, function) triples before user code runs").
func (vm *VM) RegisterNative(name string, arity int, fn NativeFn) {
	h := vm.gc.NewNative(&NativeObj{Name: name, Arity: arity, Fn: fn})
	vm.gc.Root(h) // natives live for the lifetime of the VM
	vm.gc.Unguard(h)
	vm.natives[name] = h
}

// PopArg pops exactly one argument for a native's use; natives call this
// once per declared parameter, in reverse declaration order, matching the
// Call protocol's "bind parameter names to popped argument values in
// reverse order" (spec §4.5).
func (vm *VM) PopArg() (Value, error) {
	return vm.pop()
}

// Push makes a value available to the call site; natives must push
// exactly one value iff shouldPush is set (spec §4.8).
func (vm *VM) Push(v Value) {
	vm.push(v)
}

// NewString/NewList/NewAny let natives allocate GC values using the VM's
// guard/root primitives, per spec §4.8 "Natives may allocate GC values by
// using the VM's guard/root primitives". The returned Value is already
// guarded; natives should push it (which roots it via the operand stack)
// and then Unguard it.
func (vm *VM) NewString(s string) Value {
	h := vm.gc.NewString(s)
	return RefVal(KString, h)
}

func (vm *VM) NewList(elems []Value) Value {
	h := vm.gc.NewList(elems)
	return RefVal(KList, h)
}

func (vm *VM) NewAny(v interface{}) Value {
	h := vm.gc.NewAny(v)
	return RefVal(KAny, h)
}

// UnguardValue releases the guard taken by NewString/NewList/NewAny once
// the value has been rooted (pushed or bound).
func (vm *VM) UnguardValue(v Value) {
	if v.IsRef() {
		vm.gc.Unguard(v.Ref)
	}
}

// AnyValue unwraps a KAny value for a native's own bookkeeping (e.g. a
// *sql.DB or *os.File handle).
func (vm *VM) AnyValue(v Value) interface{} {
	return vm.gc.mustAny(v.Ref).Value
}

func (vm *VM) StringValue(v Value) string {
	return vm.gc.mustString(v.Ref).Value
}

func (vm *VM) ListValue(v Value) []Value {
	return vm.gc.mustList(v.Ref).Elements
}

// SetListElements replaces the element slice backing the List at h, for
// natives that grow/mutate a list in place (e.g. list_push).
func (vm *VM) SetListElements(h Handle, elems []Value) {
	vm.gc.mustList(h).Elements = elems
}
