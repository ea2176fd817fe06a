package modules

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/oil-watt/watt/internal/vm"
)

// virtualPackages maps a `std.<name>` specifier's suffix to the native
// function names it exposes as module members. Populated by each
// internal/natives/* package's init (a call to RegisterVirtual), so a
// package appears here as soon as its natives package is imported; the
// natives themselves still have to be installed on the VM with that
// package's Register. A `std.` specifier with no virtual package behind it
// fails to resolve exactly like a missing file would.
//
// Grounded on the teacher's internal/modules virtual_packages_*.go family
// (GetVirtualPackage/RegisterVirtualPackage, one file per package), trimmed
// to the one thing this VM's untyped Environment needs: the member name
// list, not a typesystem.Type per symbol (this VM has no typesystem package
// to register against — the analyzer here only tracks scoping, per spec.md
// §4.3's narrower job description for the Semantic Analyzer).
var virtualPackages = map[string][]string{}

// RegisterVirtual declares a `std.<name>` library backed by the given
// native function names. Call during natives package init, before any
// Loader resolves a `use std.<name>` against it.
func RegisterVirtual(name string, natives []string) {
	virtualPackages[name] = natives
}

// resolveVirtual builds a synthetic chunk for a `std.` specifier: one
// Native+Define pair per exposed native, so `use std.fmt as fmt; fmt.bytes(n)`
// resolves exactly like a user module's exported function would, without a
// backing source file.
func (l *Loader) resolveVirtual(name string) (string, error) {
	id := "std:" + name
	if _, ok := l.infos[id]; ok {
		return id, nil
	}
	natives, ok := virtualPackages[name]
	if !ok {
		return "", fmt.Errorf("no standard library package named %q is registered", name)
	}
	chunk := vm.NewChunk("std:" + name)
	for _, fn := range natives {
		chunk.WriteOp(vm.Opcode{Kind: vm.OpNative, Name: fn})
		chunk.WriteOp(vm.Opcode{Kind: vm.OpDefine, Name: fn})
	}
	l.infos[id] = vm.ModuleInfo{Path: id, Chunk: chunk}
	l.ids[id] = uuid.New()
	return id, nil
}
