package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oil-watt/watt/internal/address"
	"github.com/oil-watt/watt/internal/vm"
)

func newVM(t *testing.T) *vm.VM {
	t.Helper()
	v, err := vm.New(vm.NewChunk("builtins"), map[string]vm.ModuleInfo{})
	require.NoError(t, err)
	Register(v)
	return v
}

// openHandle opens a fresh on-disk sqlite file per test: database/sql pools
// connections, and each connection to ":memory:" gets its own empty
// database, so a real file (not ":memory:") is the only way to guarantee
// the exec and the query below land on the same data.
func openHandle(t *testing.T, v *vm.VM) vm.Value {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	v.Push(v.NewString(path))
	require.NoError(t, openFn(v, address.Address{}, true))
	h, err := v.PopArg()
	require.NoError(t, err)
	require.Equal(t, vm.KAny, h.Kind)
	return h
}

func TestOpenExecQueryRoundTrip(t *testing.T) {
	v := newVM(t)
	h := openHandle(t, v)

	v.Push(h)
	v.Push(v.NewString("create table items (id integer, name text)"))
	require.NoError(t, execFn(v, address.Address{}, false))

	v.Push(h)
	v.Push(v.NewString("insert into items (id, name) values (1, 'oil')"))
	require.NoError(t, execFn(v, address.Address{}, false))

	v.Push(h)
	v.Push(v.NewString("select id, name from items"))
	require.NoError(t, queryFn(v, address.Address{}, true))
	result, err := v.PopArg()
	require.NoError(t, err)
	require.Equal(t, vm.KList, result.Kind)

	rows := v.ListValue(result)
	require.Len(t, rows, 1)
	cols := v.ListValue(rows[0])
	require.Len(t, cols, 2)

	idPair := v.ListValue(cols[0])
	require.Equal(t, "id", v.StringValue(idPair[0]))
	require.Equal(t, int64(1), idPair[1].Int())

	namePair := v.ListValue(cols[1])
	require.Equal(t, "name", v.StringValue(namePair[0]))
	require.Equal(t, "oil", v.StringValue(namePair[1]))
}

func TestExecRejectsWrongKindStatement(t *testing.T) {
	v := newVM(t)
	h := openHandle(t, v)

	v.Push(h)
	v.Push(vm.IntVal(1))
	err := execFn(v, address.Address{}, false)
	require.Error(t, err)
}

func TestExecRejectsBadSQL(t *testing.T) {
	v := newVM(t)
	h := openHandle(t, v)

	v.Push(h)
	v.Push(v.NewString("not valid sql"))
	err := execFn(v, address.Address{}, false)
	require.Error(t, err)
}

func TestQueryOnHandleOfWrongTypeFails(t *testing.T) {
	v := newVM(t)
	v.Push(v.NewAny("not a db handle"))
	v.Push(v.NewString("select 1"))
	err := queryFn(v, address.Address{}, true)
	require.Error(t, err)
}
