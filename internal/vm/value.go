// Package vm implements the Oil/Watt bytecode virtual machine: tagged
// values, the environment chain, call frames, a mark-sweep GC arena for
// reference values, opcode dispatch, and the native-function interface.
//
// Grounded on the teacher's internal/vm/value.go tagged-struct idiom (a
// Kind byte plus a bit-packed Data word for primitives) but the heap side
// is reworked: the teacher boxes heap objects as direct Go pointers
// (evaluator.Object); spec §9 asks for integer-handle indirection so that
// Instance<->Function ownership cycles are broken at the ownership level,
// so reference values here carry a Handle into the GC arena (gc.go)
// instead of a pointer.
package vm

import (
	"fmt"
	"math"
)

// Kind identifies the runtime type of a Value (spec §3 "Value is a tagged sum").
type Kind uint8

const (
	KNull Kind = iota
	KInt
	KFloat
	KBool
	KString
	KList
	KFn
	KNative
	KType
	KInstance
	KUnit
	KTrait
	KModule
	KAny
)

func (k Kind) String() string {
	switch k {
	case KNull:
		return "Null"
	case KInt:
		return "Int"
	case KFloat:
		return "Float"
	case KBool:
		return "Bool"
	case KString:
		return "String"
	case KList:
		return "List"
	case KFn:
		return "Fn"
	case KNative:
		return "Native"
	case KType:
		return "Type"
	case KInstance:
		return "Instance"
	case KUnit:
		return "Unit"
	case KTrait:
		return "Trait"
	case KModule:
		return "Module"
	case KAny:
		return "Any"
	default:
		return "?"
	}
}

// Value is a stack-allocated tagged union. Primitives (Int, Float, Bool,
// Null) live entirely in Data; every other Kind indirects through Ref, a
// handle into the VM's GC arena (spec §3 "Lifecycle").
type Value struct {
	Kind Kind
	Data uint64
	Ref  Handle
}

func Null() Value              { return Value{Kind: KNull} }
func IntVal(v int64) Value     { return Value{Kind: KInt, Data: uint64(v)} }
func FloatVal(v float64) Value { return Value{Kind: KFloat, Data: math.Float64bits(v)} }
func BoolVal(v bool) Value {
	if v {
		return Value{Kind: KBool, Data: 1}
	}
	return Value{Kind: KBool, Data: 0}
}
func RefVal(k Kind, h Handle) Value { return Value{Kind: k, Ref: h} }

func (v Value) Int() int64     { return int64(v.Data) }
func (v Value) Float() float64 { return math.Float64frombits(v.Data) }
func (v Value) Bool() bool     { return v.Data != 0 }

func (v Value) IsRef() bool {
	switch v.Kind {
	case KString, KList, KFn, KNative, KType, KInstance, KUnit, KTrait, KModule, KAny:
		return true
	default:
		return false
	}
}

// Truthy implements the VM's notion of a conditional value: only Bool
// participates in conditions (spec §4.5 "Both operands must be boolean;
// otherwise fatal" for and/or, and If/While conditions follow the same rule).
func (v Value) Truthy() (bool, bool) {
	if v.Kind != KBool {
		return false, false
	}
	return v.Bool(), true
}

// Inspect renders a value for display/concatenation purposes. Reference
// values need the GC arena to resolve their handle, hence the *VM receiver.
func (vm *VM) Inspect(v Value) string {
	switch v.Kind {
	case KNull:
		return "null"
	case KInt:
		return fmt.Sprintf("%d", v.Int())
	case KFloat:
		return fmt.Sprintf("%g", v.Float())
	case KBool:
		return fmt.Sprintf("%t", v.Bool())
	case KString:
		return vm.gc.mustString(v.Ref).Value
	case KList:
		l := vm.gc.mustList(v.Ref)
		s := "["
		for i, el := range l.Elements {
			if i > 0 {
				s += ", "
			}
			s += vm.Inspect(el)
		}
		return s + "]"
	case KFn:
		return "<fn " + vm.gc.mustFn(v.Ref).Name + ">"
	case KNative:
		return "<native " + vm.gc.mustNative(v.Ref).Name + ">"
	case KType:
		return "<type " + vm.gc.mustType(v.Ref).Name + ">"
	case KInstance:
		inst := vm.gc.mustInstance(v.Ref)
		return "<instance " + vm.gc.mustType(inst.TypeRef).Name + ">"
	case KUnit:
		return "<unit " + vm.gc.mustUnit(v.Ref).Name + ">"
	case KTrait:
		return "<trait " + vm.gc.mustTrait(v.Ref).Name + ">"
	case KModule:
		return "<module " + vm.gc.mustModule(v.Ref).Path + ">"
	case KAny:
		return fmt.Sprintf("<any %v>", vm.gc.mustAny(v.Ref).Value)
	default:
		return "<?>"
	}
}

// Equals implements spec §4.5's "==/!=" universal equality: numerics
// compared with promotion, same-variant references by identity except
// strings by content, cross-kind is false.
func (vm *VM) Equals(a, b Value) bool {
	if a.Kind == KInt && b.Kind == KFloat {
		return float64(a.Int()) == b.Float()
	}
	if a.Kind == KFloat && b.Kind == KInt {
		return a.Float() == float64(b.Int())
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KNull:
		return true
	case KInt, KBool:
		return a.Data == b.Data
	case KFloat:
		return a.Float() == b.Float()
	case KString:
		return vm.gc.mustString(a.Ref).Value == vm.gc.mustString(b.Ref).Value
	default:
		return a.Ref == b.Ref
	}
}
