package fmtx

import (
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

func TestBytesFormatsHumanReadableSize(t *testing.T) {
	v := newVM(t)
	v.Push(vm.IntVal(2048))
	require.NoError(t, bytesFn(v, address.Address{}, true))
	result, err := v.PopArg()
	require.NoError(t, err)
	require.Equal(t, "2.0 kB", v.StringValue(result))
}

func TestCommaGroupsThousands(t *testing.T) {
	v := newVM(t)
	v.Push(vm.IntVal(1234567))
	require.NoError(t, commaFn(v, address.Address{}, true))
	result, err := v.PopArg()
	require.NoError(t, err)
	require.Equal(t, "1,234,567", v.StringValue(result))
}

func TestOrdinalSuffixesTheNumber(t *testing.T) {
	v := newVM(t)
	v.Push(vm.IntVal(3))
	require.NoError(t, ordinalFn(v, address.Address{}, true))
	result, err := v.PopArg()
	require.NoError(t, err)
	require.Equal(t, "3rd", v.StringValue(result))
}

func TestOrdinalAcceptsFloat(t *testing.T) {
	v := newVM(t)
	v.Push(vm.FloatVal(21))
	require.NoError(t, ordinalFn(v, address.Address{}, true))
	result, err := v.PopArg()
	require.NoError(t, err)
	require.Equal(t, "21st", v.StringValue(result))
}

func TestCommaRejectsWrongKind(t *testing.T) {
	v := newVM(t)
	v.Push(v.NewString("not a number"))
	err := commaFn(v, address.Address{}, true)
	require.Error(t, err)
}

func TestShouldPushFalseSkipsResult(t *testing.T) {
	v := newVM(t)
	v.Push(vm.IntVal(10))
	require.NoError(t, bytesFn(v, address.Address{}, false))
}
