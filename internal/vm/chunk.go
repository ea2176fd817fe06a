package vm

// OpKind identifies which of spec §4.4's opcode variants an Opcode carries.
type OpKind uint8

const (
	OpPush OpKind = iota
	OpPop
	OpBin
	OpNeg
	OpBang
	OpCond
	OpLogic
	OpIf
	OpLoop
	OpDefineFn
	OpAnonymousFn
	OpDefineType
	OpDefineUnit
	OpDefineTrait
	OpDefine
	OpStore
	OpLoad
	OpCall
	OpDuplicate
	OpInstance
	OpEndLoop
	OpRet
	OpNative
	OpErrorPropagation
	OpImpls
	OpDeleteLocal
	OpImportModule

	// OpMakeList is a compiler-introduced opcode with no direct spec.md
	// table entry (that table is itself "design level", per spec.md §4.4):
	// List literals need *some* construction opcode, and the spec's Value
	// model gives List no other way to come into being than via a native.
	// Grounded the same way as the for/match desugaring in SPEC_FULL.md's
	// "Supplemented features": a minimal addition in the same spirit as the
	// rest of the opcode table, not a departure from it.
	OpMakeList
)

// Opcode is a single tree-structured instruction. Unlike the teacher's
// flat, jump-threaded bytecode (internal/vm/opcodes.go: OP_JUMP, OP_CALL,
// byte-offset patching), spec §4.4 opcodes such as If/Loop/Logic embed
// their sub-programs directly as nested Chunks — grounded on
// original_source/src/vm/bytecode.rs's `Opcode` enum, whose `If`/`Loop`/
// `DefineFn`/etc. variants hold `Box<Chunk>` rather than jump offsets.
// Only the fields relevant to Kind are populated; Go has no sum types, so
// this is a tagged struct rather than nested concrete types, following the
// teacher's preference for flat structs over deep interface hierarchies.
type Opcode struct {
	Kind OpKind
	Line int
	Col  int

	// OpPush
	Value Value

	// OpBin, OpCond
	Op string

	// OpLogic: short-circuit and/or. Left evaluates always; Right only
	// when the left operand does not already decide the result.
	Left  *Chunk
	Right *Chunk

	// OpIf: Cond/Body are sub-chunks; Elif chains to the next If (nil if none).
	Cond *Chunk
	Body *Chunk
	Elif *Opcode

	// OpDefineFn, OpAnonymousFn, OpDefineType, OpDefineUnit, OpDefineTrait
	Name        string
	FullName    string
	Params      []string
	MakeClosure bool
	CtorParams  []string
	Impls       []string
	TraitFns    []TraitFn

	// OpDefine, OpStore, OpLoad, OpCall, OpErrorPropagation
	HasPrevious bool
	ShouldPush  bool

	// OpCall, OpInstance: argument chunk, evaluated left-to-right onto the stack
	Args *Chunk

	// OpEndLoop: true = Continue, false = Break
	CurrentIteration bool

	// OpDeleteLocal, OpNative reuse Name
	// OpImportModule
	ModuleID string
	Variable string

	// OpMakeList: pop Count values, in the order they were pushed, and
	// build a List from them.
	Count int
}

// Chunk is an immutable ordered sequence of Opcodes, shared by reference
// from multiple call sites (spec §3 "Chunk").
type Chunk struct {
	Ops  []Opcode
	File string
}

func NewChunk(file string) *Chunk {
	return &Chunk{File: file}
}

// WriteOp appends op to the chunk (it returns nothing), mirroring the teacher's
// WriteOp naming even though nothing here is byte-encoded.
func (c *Chunk) WriteOp(op Opcode) {
	c.Ops = append(c.Ops, op)
}

func (c *Chunk) Len() int { return len(c.Ops) }
