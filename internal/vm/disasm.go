package vm

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Disassemble returns a human-readable representation of chunk, recursing
// into every sub-chunk an Opcode embeds (If/Loop/Logic/DefineFn/...),
// since this VM's bytecode is tree-structured rather than flat (see
// chunk.go). Grounded on the teacher's internal/vm/disasm.go output shape
// (offset, line, mnemonic columns) but walking a tree instead of scanning
// a byte stream.
func Disassemble(chunk *Chunk, name string) string {
	var sb strings.Builder
	color := isatty.IsTerminal(os.Stdout.Fd())
	sb.WriteString(header(color, fmt.Sprintf("== %s ==", name)))
	sb.WriteString("\n")
	disassembleChunk(&sb, chunk, 0, color)
	return sb.String()
}

func header(color bool, s string) string {
	if !color {
		return s
	}
	return "\x1b[1m" + s + "\x1b[0m"
}

func mnemonic(color bool, s string) string {
	if !color {
		return s
	}
	return "\x1b[36m" + s + "\x1b[0m"
}

func disassembleChunk(sb *strings.Builder, chunk *Chunk, indent int, color bool) {
	pad := strings.Repeat("  ", indent)
	for i, op := range chunk.Ops {
		sb.WriteString(fmt.Sprintf("%s%04d %4d  ", pad, i, op.Line))
		disassembleOp(sb, &op, indent, color)
	}
}

func disassembleOp(sb *strings.Builder, op *Opcode, indent int, color bool) {
	pad := strings.Repeat("  ", indent)
	switch op.Kind {
	case OpPush:
		sb.WriteString(mnemonic(color, "PUSH") + " " + fmt.Sprintf("%v", op.Value) + "\n")
	case OpPop:
		sb.WriteString(mnemonic(color, "POP") + "\n")
	case OpBin:
		sb.WriteString(mnemonic(color, "BIN") + " " + op.Op + "\n")
	case OpCond:
		sb.WriteString(mnemonic(color, "COND") + " " + op.Op + "\n")
	case OpNeg:
		sb.WriteString(mnemonic(color, "NEG") + "\n")
	case OpBang:
		sb.WriteString(mnemonic(color, "BANG") + "\n")
	case OpLogic:
		sb.WriteString(mnemonic(color, "LOGIC") + " " + op.Op + "\n")
		sb.WriteString(pad + "  left:\n")
		disassembleChunk(sb, op.Left, indent+2, color)
		sb.WriteString(pad + "  right:\n")
		disassembleChunk(sb, op.Right, indent+2, color)
	case OpIf:
		sb.WriteString(mnemonic(color, "IF") + "\n")
		sb.WriteString(pad + "  cond:\n")
		disassembleChunk(sb, op.Cond, indent+2, color)
		sb.WriteString(pad + "  body:\n")
		disassembleChunk(sb, op.Body, indent+2, color)
		if op.Elif != nil {
			sb.WriteString(pad + "  elif:\n")
			disassembleOp(sb, op.Elif, indent+1, color)
		}
	case OpLoop:
		sb.WriteString(mnemonic(color, "LOOP") + "\n")
		disassembleChunk(sb, op.Body, indent+1, color)
	case OpDefineFn, OpAnonymousFn:
		sb.WriteString(mnemonic(color, "DEFINE_FN") + " " + op.Name + "\n")
		disassembleChunk(sb, op.Body, indent+1, color)
	case OpDefineType:
		sb.WriteString(mnemonic(color, "DEFINE_TYPE") + " " + op.Name + "\n")
		disassembleChunk(sb, op.Body, indent+1, color)
	case OpDefineUnit:
		sb.WriteString(mnemonic(color, "DEFINE_UNIT") + " " + op.Name + "\n")
		disassembleChunk(sb, op.Body, indent+1, color)
	case OpDefineTrait:
		sb.WriteString(mnemonic(color, "DEFINE_TRAIT") + " " + op.Name + "\n")
	case OpDefine:
		sb.WriteString(mnemonic(color, "DEFINE") + " " + op.Name + "\n")
	case OpStore:
		sb.WriteString(mnemonic(color, "STORE") + " " + op.Name + "\n")
	case OpLoad:
		sb.WriteString(mnemonic(color, "LOAD") + " " + op.Name + "\n")
	case OpCall:
		sb.WriteString(mnemonic(color, "CALL") + " " + op.Name + "\n")
		if op.Args != nil {
			disassembleChunk(sb, op.Args, indent+1, color)
		}
	case OpDuplicate:
		sb.WriteString(mnemonic(color, "DUP") + "\n")
	case OpInstance:
		sb.WriteString(mnemonic(color, "INSTANCE") + "\n")
	case OpEndLoop:
		if op.CurrentIteration {
			sb.WriteString(mnemonic(color, "CONTINUE") + "\n")
		} else {
			sb.WriteString(mnemonic(color, "BREAK") + "\n")
		}
	case OpRet:
		sb.WriteString(mnemonic(color, "RET") + "\n")
	case OpNative:
		sb.WriteString(mnemonic(color, "NATIVE") + " " + op.Name + "\n")
	case OpErrorPropagation:
		sb.WriteString(mnemonic(color, "ERROR_PROPAGATION") + "\n")
	case OpImpls:
		sb.WriteString(mnemonic(color, "IMPLS") + "\n")
	case OpDeleteLocal:
		sb.WriteString(mnemonic(color, "DELETE_LOCAL") + " " + op.Name + "\n")
	case OpImportModule:
		sb.WriteString(mnemonic(color, "IMPORT_MODULE") + " " + op.ModuleID + " -> " + op.Variable + "\n")
	case OpMakeList:
		sb.WriteString(mnemonic(color, "MAKE_LIST") + " " + fmt.Sprintf("%d", op.Count) + "\n")
	default:
		sb.WriteString("???\n")
	}
}
