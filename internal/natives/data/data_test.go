package data

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

func TestParseYAMLScalarsAndSequences(t *testing.T) {
	v := newVM(t)
	v.Push(v.NewString("- 1\n- 2\n- 3\n"))
	require.NoError(t, parseYAML(v, address.Address{}, true))
	result, err := v.PopArg()
	require.NoError(t, err)
	require.Equal(t, vm.KList, result.Kind)
	elems := v.ListValue(result)
	require.Len(t, elems, 3)
	require.Equal(t, int64(1), elems[0].Int())
	require.Equal(t, int64(3), elems[2].Int())
}

func TestParseYAMLMappingUsesPairListEncoding(t *testing.T) {
	v := newVM(t)
	v.Push(v.NewString("name: oil\nversion: 1\n"))
	require.NoError(t, parseYAML(v, address.Address{}, true))
	result, err := v.PopArg()
	require.NoError(t, err)
	require.Equal(t, vm.KList, result.Kind)

	pairs := v.ListValue(result)
	require.Len(t, pairs, 2)
	seen := map[string]vm.Value{}
	for _, p := range pairs {
		kv := v.ListValue(p)
		require.Len(t, kv, 2)
		require.Equal(t, vm.KString, kv[0].Kind)
		seen[v.StringValue(kv[0])] = kv[1]
	}
	require.Equal(t, "oil", v.StringValue(seen["name"]))
	require.Equal(t, int64(1), seen["version"].Int())
}

func TestParseYAMLRejectsNonString(t *testing.T) {
	v := newVM(t)
	v.Push(vm.IntVal(1))
	err := parseYAML(v, address.Address{}, true)
	require.Error(t, err)
}

func TestParseYAMLInvalidSyntaxFails(t *testing.T) {
	v := newVM(t)
	v.Push(v.NewString("key: [unterminated\n"))
	err := parseYAML(v, address.Address{}, true)
	require.Error(t, err)
}

func TestToYAMLRoundTripsMapping(t *testing.T) {
	v := newVM(t)
	pair := v.NewList([]vm.Value{v.NewString("k"), v.NewString("v")})
	mapping := v.NewList([]vm.Value{pair})

	v.Push(mapping)
	require.NoError(t, toYAML(v, address.Address{}, true))
	out, err := v.PopArg()
	require.NoError(t, err)
	require.Equal(t, vm.KString, out.Kind)

	v.Push(out)
	require.NoError(t, parseYAML(v, address.Address{}, true))
	back, err := v.PopArg()
	require.NoError(t, err)

	pairs := v.ListValue(back)
	require.Len(t, pairs, 1)
	kv := v.ListValue(pairs[0])
	require.Equal(t, "k", v.StringValue(kv[0]))
	require.Equal(t, "v", v.StringValue(kv[1]))
}

func TestToYAMLSequence(t *testing.T) {
	v := newVM(t)
	list := v.NewList([]vm.Value{vm.IntVal(1), vm.IntVal(2)})
	v.Push(list)
	require.NoError(t, toYAML(v, address.Address{}, true))
	out, err := v.PopArg()
	require.NoError(t, err)
	require.Contains(t, v.StringValue(out), "1")
	require.Contains(t, v.StringValue(out), "2")
}
