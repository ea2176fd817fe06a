package modules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oil-watt/watt/internal/address"
	"github.com/oil-watt/watt/internal/natives/base"
	"github.com/oil-watt/watt/internal/natives/fmtx"
	"github.com/oil-watt/watt/internal/vm"
)

func writeModule(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestLoadEntryResolvesLocalModule(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "mathx.wt", `
pub fn square(n) {
  return n * n
}
`)
	entry := writeModule(t, dir, "main.wt", `
use mathx
let r = mathx.square(4)
capture(r)
`)

	l := NewLoader()
	chunk, infos, err := l.LoadEntry(entry)
	require.NoError(t, err)
	require.Len(t, infos, 2, "entry file and mathx.wt each get one ModuleInfo entry")

	v, err := vm.New(vm.NewChunk("builtins"), infos)
	require.NoError(t, err)
	base.Register(v)

	var captured vm.Value
	var got bool
	v.RegisterNative("capture", 1, func(m *vm.VM, site address.Address, shouldPush bool) error {
		arg, err := m.PopArg()
		if err != nil {
			return err
		}
		captured, got = arg, true
		if shouldPush {
			m.Push(vm.Null())
		}
		return nil
	})

	_, err = v.Run(chunk)
	require.NoError(t, err)
	require.True(t, got)
	require.Equal(t, vm.KInt, captured.Kind)
	require.Equal(t, int64(16), captured.Int())
}

func TestResolveDetectsCircularImport(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "a.wt", `use b`)
	entry := writeModule(t, dir, "b.wt", `use a`)

	l := NewLoader()
	_, _, err := l.LoadEntry(entry)
	require.Error(t, err)
	require.Contains(t, err.Error(), "circular import")
}

func TestResolveCachesModuleByPath(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "shared.wt", `pub fn id(n) { return n }`)
	entry := writeModule(t, dir, "main.wt", `
use shared
use shared as shared2
`)

	l := NewLoader()
	_, infos, err := l.LoadEntry(entry)
	require.NoError(t, err)
	require.Len(t, infos, 2, "shared.wt must be compiled exactly once regardless of alias, plus the entry itself")
}

func TestResolveVirtualStdPackage(t *testing.T) {
	l := NewLoader()
	id, err := l.Resolve("/whatever/main.wt", "std.fmt")
	require.NoError(t, err)
	require.Equal(t, "std:fmt", id)

	idAgain, err := l.Resolve("/whatever/main.wt", "std.fmt")
	require.NoError(t, err)
	require.Equal(t, id, idAgain)

	_, ok := l.Identity(id)
	require.True(t, ok)
}

func TestResolveUnknownVirtualPackageFails(t *testing.T) {
	l := NewLoader()
	_, err := l.Resolve("/whatever/main.wt", "std.nope")
	require.Error(t, err)
}

func TestLoadEntryUsesVirtualFmtModule(t *testing.T) {
	dir := t.TempDir()
	entry := writeModule(t, dir, "main.wt", `
use std.fmt as fmt
let s = fmt.comma(1234)
`)

	l := NewLoader()
	chunk, infos, err := l.LoadEntry(entry)
	require.NoError(t, err)
	require.Contains(t, infos, "std:fmt")

	v, err := vm.New(vm.NewChunk("builtins"), infos)
	require.NoError(t, err)
	base.Register(v)
	fmtx.Register(v)

	_, err = v.Run(chunk)
	require.NoError(t, err)
}
