// Package fmtx backs the `std.fmt` virtual library: display-formatting
// natives built on github.com/dustin/go-humanize (SPEC_FULL.md Domain
// Stack: "display-formatting natives exercising Int/Float argument
// unwrapping"). Grounded on internal/natives/base/base.go's
// Register/PopArg/NativeFn idiom — these are plain fixed-arity natives,
// nothing library-specific about the wiring.
package fmtx

import (
	"github.com/dustin/go-humanize"

	"github.com/oil-watt/watt/internal/address"
	"github.com/oil-watt/watt/internal/modules"
	"github.com/oil-watt/watt/internal/vm"
)

func init() {
	modules.RegisterVirtual("fmt", []string{"bytes", "comma", "ordinal"})
}

// Register installs the std.fmt natives into v.
func Register(v *vm.VM) {
	v.RegisterNative("bytes", 1, bytesFn)
	v.RegisterNative("comma", 1, commaFn)
	v.RegisterNative("ordinal", 1, ordinalFn)
}

func wantInt(v *vm.VM, site address.Address, who string, arg vm.Value) (int64, error) {
	switch arg.Kind {
	case vm.KInt:
		return arg.Int(), nil
	case vm.KFloat:
		return int64(arg.Float()), nil
	default:
		return 0, &vm.NativeError{Diagnostic: address.NewDiagnostic(address.RuntimeError, site,
			"wrong-kind argument to "+who, who+" expects an Int or Float")}
	}
}

func bytesFn(v *vm.VM, site address.Address, shouldPush bool) error {
	arg, err := v.PopArg()
	if err != nil {
		return err
	}
	n, err := wantInt(v, site, "bytes", arg)
	if err != nil {
		return err
	}
	if shouldPush {
		v.Push(v.NewString(humanize.Bytes(uint64(n))))
	}
	return nil
}

func commaFn(v *vm.VM, site address.Address, shouldPush bool) error {
	arg, err := v.PopArg()
	if err != nil {
		return err
	}
	n, err := wantInt(v, site, "comma", arg)
	if err != nil {
		return err
	}
	if shouldPush {
		v.Push(v.NewString(humanize.Comma(n)))
	}
	return nil
}

func ordinalFn(v *vm.VM, site address.Address, shouldPush bool) error {
	arg, err := v.PopArg()
	if err != nil {
		return err
	}
	n, err := wantInt(v, site, "ordinal", arg)
	if err != nil {
		return err
	}
	if shouldPush {
		v.Push(v.NewString(humanize.Ordinal(int(n))))
	}
	return nil
}
