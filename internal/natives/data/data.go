// Package data backs the `std.data` virtual library: structured-data
// natives built on gopkg.in/yaml.v3 (SPEC_FULL.md Domain Stack):
// parse_yaml(text) returns a Value (not an Instance; see DESIGN.md's
// `data` entry) and to_yaml(value) returns a String.
//
// The Value model (spec.md §3) has no Map kind, so a YAML mapping decodes
// to the same "List of [key, value] pair Lists" encoding internal/compiler's
// mapLiteral uses for `{...}` literals (see expressions.go's mapLiteral doc
// comment) — this package is simply that encoding's runtime counterpart,
// walking yaml.v3's generic interface{} tree instead of an AST.
package data

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/oil-watt/watt/internal/address"
	"github.com/oil-watt/watt/internal/modules"
	"github.com/oil-watt/watt/internal/vm"
)

func init() {
	modules.RegisterVirtual("data", []string{"parse_yaml", "to_yaml"})
}

// Register installs the std.data natives into v.
func Register(v *vm.VM) {
	v.RegisterNative("parse_yaml", 1, parseYAML)
	v.RegisterNative("to_yaml", 1, toYAML)
}

func parseYAML(v *vm.VM, site address.Address, shouldPush bool) error {
	arg, err := v.PopArg()
	if err != nil {
		return err
	}
	if arg.Kind != vm.KString {
		return &vm.NativeError{Diagnostic: address.NewDiagnostic(address.RuntimeError, site,
			"parse_yaml expects a String", "wrong-kind argument to parse_yaml")}
	}
	var doc interface{}
	if err := yaml.Unmarshal([]byte(v.StringValue(arg)), &doc); err != nil {
		return &vm.NativeError{Diagnostic: address.NewDiagnostic(address.RuntimeError, site,
			"check the YAML source for syntax errors", "invalid YAML: "+err.Error())}
	}
	if shouldPush {
		v.Push(toValue(v, doc))
	}
	return nil
}

func toYAML(v *vm.VM, site address.Address, shouldPush bool) error {
	arg, err := v.PopArg()
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(fromValue(v, arg))
	if err != nil {
		return &vm.NativeError{Diagnostic: address.NewDiagnostic(address.RuntimeError, site,
			"value could not be represented as YAML", err.Error())}
	}
	if shouldPush {
		v.Push(v.NewString(string(out)))
	}
	return nil
}

// toValue converts a yaml.v3-decoded node into a Value: mappings become the
// pair-List encoding, sequences become Lists, scalars map onto the matching
// primitive Kind.
func toValue(v *vm.VM, node interface{}) vm.Value {
	switch n := node.(type) {
	case nil:
		return vm.Null()
	case bool:
		return vm.BoolVal(n)
	case int:
		return vm.IntVal(int64(n))
	case int64:
		return vm.IntVal(n)
	case float64:
		return vm.FloatVal(n)
	case string:
		return v.NewString(n)
	case []interface{}:
		elems := make([]vm.Value, len(n))
		for i, el := range n {
			elems[i] = toValue(v, el)
		}
		return v.NewList(elems)
	case map[string]interface{}:
		pairs := make([]vm.Value, 0, len(n))
		for k, val := range n {
			pairs = append(pairs, v.NewList([]vm.Value{v.NewString(k), toValue(v, val)}))
		}
		return v.NewList(pairs)
	default:
		return v.NewString(fmt.Sprintf("%v", n))
	}
}

// fromValue converts a Value back into a plain Go tree yaml.v3 can marshal:
// the pair-List encoding round-trips back into map[string]interface{}
// whenever every element is itself a 2-element [String, _] pair, matching
// the shape toValue produces for a mapping; otherwise a List stays a
// sequence.
func fromValue(v *vm.VM, val vm.Value) interface{} {
	switch val.Kind {
	case vm.KNull:
		return nil
	case vm.KBool:
		return val.Bool()
	case vm.KInt:
		return val.Int()
	case vm.KFloat:
		return val.Float()
	case vm.KString:
		return v.StringValue(val)
	case vm.KList:
		elems := v.ListValue(val)
		if m, ok := asMapping(v, elems); ok {
			return m
		}
		seq := make([]interface{}, len(elems))
		for i, el := range elems {
			seq[i] = fromValue(v, el)
		}
		return seq
	default:
		return v.Inspect(val)
	}
}

func asMapping(v *vm.VM, elems []vm.Value) (map[string]interface{}, bool) {
	if len(elems) == 0 {
		return nil, false
	}
	out := make(map[string]interface{}, len(elems))
	for _, el := range elems {
		if el.Kind != vm.KList {
			return nil, false
		}
		pair := v.ListValue(el)
		if len(pair) != 2 || pair[0].Kind != vm.KString {
			return nil, false
		}
		out[v.StringValue(pair[0])] = fromValue(v, pair[1])
	}
	return out, true
}
