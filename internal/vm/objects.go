package vm

// OwnerKind discriminates the owner binding of a Fn value (spec §3:
// "Function holds ... an optional owner discriminator {Unit(Unit),
// Instance(Instance), Module(Module)} used to bind self").
type OwnerKind uint8

const (
	OwnerNone OwnerKind = iota
	OwnerUnit
	OwnerInstance
	OwnerModule
)

// StringObj is a GC-tracked, reference-typed text value (spec §3).
type StringObj struct{ Value string }

func (*StringObj) heapKind() Kind { return KString }

// ListObj is a GC-tracked, mutable ordered sequence (spec §3).
type ListObj struct{ Elements []Value }

func (*ListObj) heapKind() Kind { return KList }

// FnObj is a closure-capable callable (spec §3 "Function").
type FnObj struct {
	Name      string
	Params    []string
	Body      *Chunk
	Closure   *Environment // captured scope, or nil
	OwnerKind OwnerKind
	OwnerRef  Handle // valid iff OwnerKind != OwnerNone; points at Instance/Unit/Module
}

func (*FnObj) heapKind() Kind { return KFn }

// NativeObj is a host-implemented callable with fixed arity (spec §4.8).
type NativeObj struct {
	Name  string
	Arity int
	Fn    NativeFn
}

func (*NativeObj) heapKind() Kind { return KNative }

// TypeObj is a constructor descriptor for a user-defined type (spec §3 "Type").
type TypeObj struct {
	Name       string
	CtorParams []string
	Body       *Chunk
	Impls      []string
	DefScope   *Environment
}

func (*TypeObj) heapKind() Kind { return KType }

// InstanceObj is the product of calling a Type (spec §3 "Instance").
type InstanceObj struct {
	TypeRef Handle
	Env     *Environment
}

func (*InstanceObj) heapKind() Kind { return KInstance }

// UnitObj is a singleton namespace, executed once at definition time (spec §3 "Unit").
type UnitObj struct {
	Name string
	Env  *Environment
}

func (*UnitObj) heapKind() Kind { return KUnit }

// TraitFn is one required method signature of a Trait, with an optional
// default body (spec §3 "Trait").
type TraitFn struct {
	Name        string
	ParamCount  int
	Params      []string
	HasDefault  bool
	DefaultBody *Chunk
}

// TraitObj holds a named set of required method signatures (spec §3 "Trait").
type TraitObj struct {
	Name string
	Fns  []TraitFn
}

func (*TraitObj) heapKind() Kind { return KTrait }

// ModuleObj is a loaded compilation unit exposing top-level definitions
// (spec §3 "Module"). Path/ID are carried for the identity invariant
// (spec §8 "For any import specifier s, load(s) == load(s)").
type ModuleObj struct {
	Path string
	ID   string
	Env  *Environment
}

func (*ModuleObj) heapKind() Kind { return KModule }

// AnyObj is the escape hatch for natives (files, sockets, handles; spec §3 "Any").
type AnyObj struct{ Value interface{} }

func (*AnyObj) heapKind() Kind { return KAny }
