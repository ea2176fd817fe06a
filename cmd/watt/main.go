// Command watt is the thin host driver: it resolves and compiles an entry
// file, constructs a VM with the natives registered, runs it, and reports
// any diagnostic with a caret pointer into the source (spec.md §6
// "Invocation surface from the host", SPEC_FULL.md's Logging section:
// "nothing in the execution core writes to stdout/stderr except the thin
// cmd/watt driver").
//
// Grounded on the teacher's cmd/funxy/main.go flag-parsing + run-or-report
// shape, trimmed to this VM's simpler (chunk, moduleInfo) construction
// contract — no REPL, no LSP server, no build-to-bundle pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/oil-watt/watt/internal/modules"
	"github.com/oil-watt/watt/internal/natives/base"
	"github.com/oil-watt/watt/internal/natives/data"
	"github.com/oil-watt/watt/internal/natives/db"
	"github.com/oil-watt/watt/internal/natives/fmtx"
	"github.com/oil-watt/watt/internal/vm"
)

func main() {
	disasm := false
	args := os.Args[1:]
	if len(args) > 0 && args[0] == "-disasm" {
		disasm = true
		args = args[1:]
	}
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: watt [-disasm] <file>")
		os.Exit(2)
	}

	if err := run(args[0], disasm); err != nil {
		report(args[0], err)
		os.Exit(1)
	}
}

func run(path string, disasm bool) error {
	loader := modules.NewLoader()
	chunk, moduleInfo, err := loader.LoadEntry(path)
	if err != nil {
		return err
	}

	if disasm {
		fmt.Println(vm.Disassemble(chunk, path))
		return nil
	}

	v, err := vm.New(vm.NewChunk("builtins"), moduleInfo)
	if err != nil {
		return err
	}
	base.Register(v)
	data.Register(v)
	db.Register(v)
	fmtx.Register(v)

	_, err = v.Run(chunk)
	return err
}

// report prints a diagnostic's caret-pointer rendering against the
// offending file's source, falling back to a bare error for anything that
// isn't one of the pipeline's typed diagnostics (e.g. an os.ReadFile error).
func report(path string, err error) {
	if d, ok := err.(interface{ Render(string) string }); ok {
		src, readErr := os.ReadFile(path)
		if readErr != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		fmt.Fprintln(os.Stderr, d.Render(string(src)))
		return
	}
	fmt.Fprintln(os.Stderr, err)
}
