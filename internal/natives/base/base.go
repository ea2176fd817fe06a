// Package base registers the minimal set of natives the compiler itself
// depends on (list construction has no surface syntax for indexing, so the
// for-loop desugaring in internal/compiler calls these by name) plus the
// handful every hosted program needs to produce output.
//
// Grounded on the teacher's internal/vm/vm_builtins.go RegisterBuiltins
// idiom (a single entry point the host calls once before running user
// code) but built against this VM's fixed-arity NativeFn contract (spec
// §4.8) rather than the teacher's variadic evaluator.Builtin.
package base

import (
	"fmt"

	"github.com/oil-watt/watt/internal/address"
	"github.com/oil-watt/watt/internal/vm"
)

// Register installs the base natives into vm, per spec §6's "Natives are
// registered as (name, arity, function) triples before user code runs."
func Register(v *vm.VM) {
	v.RegisterNative("list_len", 1, listLen)
	v.RegisterNative("list_get", 2, listGet)
	v.RegisterNative("list_set", 3, listSet)
	v.RegisterNative("list_push", 2, listPush)
	v.RegisterNative("print", 1, print_)
	v.RegisterNative("type_name", 1, typeName)
}

func listLen(v *vm.VM, site address.Address, shouldPush bool) error {
	arg, err := v.PopArg()
	if err != nil {
		return err
	}
	if arg.Kind != vm.KList {
		return &vm.NativeError{Diagnostic: address.NewDiagnostic(address.RuntimeError, site,
			"list_len expects a List", "wrong-kind argument to list_len")}
	}
	if shouldPush {
		v.Push(vm.IntVal(int64(len(v.ListValue(arg)))))
	}
	return nil
}

func listGet(v *vm.VM, site address.Address, shouldPush bool) error {
	idxV, err := v.PopArg()
	if err != nil {
		return err
	}
	listV, err := v.PopArg()
	if err != nil {
		return err
	}
	if listV.Kind != vm.KList || idxV.Kind != vm.KInt {
		return &vm.NativeError{Diagnostic: address.NewDiagnostic(address.RuntimeError, site,
			"list_get(list, index) expects a List and an Int", "wrong-kind argument to list_get")}
	}
	elems := v.ListValue(listV)
	idx := idxV.Int()
	if idx < 0 || idx >= int64(len(elems)) {
		return &vm.NativeError{Diagnostic: address.NewDiagnostic(address.RuntimeError, site,
			"check the index against list_len first", "list index out of range")}
	}
	if shouldPush {
		v.Push(elems[idx])
	}
	return nil
}

func listSet(v *vm.VM, site address.Address, shouldPush bool) error {
	val, err := v.PopArg()
	if err != nil {
		return err
	}
	idxV, err := v.PopArg()
	if err != nil {
		return err
	}
	listV, err := v.PopArg()
	if err != nil {
		return err
	}
	if listV.Kind != vm.KList || idxV.Kind != vm.KInt {
		return &vm.NativeError{Diagnostic: address.NewDiagnostic(address.RuntimeError, site,
			"list_set(list, index, value) expects a List and an Int", "wrong-kind argument to list_set")}
	}
	elems := v.ListValue(listV)
	idx := idxV.Int()
	if idx < 0 || idx >= int64(len(elems)) {
		return &vm.NativeError{Diagnostic: address.NewDiagnostic(address.RuntimeError, site,
			"check the index against list_len first", "list index out of range")}
	}
	elems[idx] = val
	if shouldPush {
		v.Push(vm.Null())
	}
	return nil
}

func listPush(v *vm.VM, site address.Address, shouldPush bool) error {
	val, err := v.PopArg()
	if err != nil {
		return err
	}
	listV, err := v.PopArg()
	if err != nil {
		return err
	}
	if listV.Kind != vm.KList {
		return &vm.NativeError{Diagnostic: address.NewDiagnostic(address.RuntimeError, site,
			"list_push expects a List", "wrong-kind argument to list_push")}
	}
	h := listV.Ref
	elems := append(v.ListValue(listV), val)
	v.SetListElements(h, elems)
	if shouldPush {
		v.Push(vm.Null())
	}
	return nil
}

func print_(v *vm.VM, site address.Address, shouldPush bool) error {
	arg, err := v.PopArg()
	if err != nil {
		return err
	}
	fmt.Println(v.Inspect(arg))
	if shouldPush {
		v.Push(vm.Null())
	}
	return nil
}

func typeName(v *vm.VM, site address.Address, shouldPush bool) error {
	arg, err := v.PopArg()
	if err != nil {
		return err
	}
	if shouldPush {
		v.Push(v.NewString(arg.Kind.String()))
	}
	return nil
}
