package vm

// CFKind identifies the outcome of running an opcode or a chunk (spec
// §4.5 "Each opcode returns either success or a ControlFlow ∈ {Continue,
// Break, Return(Value)}").
type CFKind uint8

const (
	cfNone CFKind = iota // plain success, no control-flow propagating
	cfContinue
	cfBreak
	cfReturn
)

// ControlFlow is propagated outward by the dispatch loop: Loop catches
// Continue/Break, Call catches Return and materialises its Value as the
// call result (spec §4.5 "Dispatch").
type ControlFlow struct {
	Kind  CFKind
	Value Value
}

var cfNormal = ControlFlow{Kind: cfNone}

func cfReturnValue(v Value) ControlFlow { return ControlFlow{Kind: cfReturn, Value: v} }
