package vm

import (
	"fmt"
	"io"

	"github.com/egolang/ego/pkg/chunk"
	"github.com/egolang/ego/pkg/object"
)

// DisassembleChunk writes a human-readable listing of every instruction in
// c to w, headed by name. It backs the `disasm` subcommand and the
// --print-code flag: InterpretWithDebug calls it on every function as
// soon as the compiler finishes with it.
func DisassembleChunk(w io.Writer, c *chunk.Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = disassembleInstruction(w, c, offset)
	}
}

func disassembleInstruction(w io.Writer, c *chunk.Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", c.Lines[offset])
	}

	op := chunk.OpCode(c.Code[offset])
	switch op {
	case chunk.OpConstant, chunk.OpGetGlobal, chunk.OpDefineGlobal, chunk.OpSetGlobal,
		chunk.OpGetProperty, chunk.OpSetProperty, chunk.OpGetSuper, chunk.OpClass, chunk.OpMethod:
		return constantInstruction(w, opName(op), c, offset)
	case chunk.OpGetLocal, chunk.OpSetLocal, chunk.OpGetUpvalue, chunk.OpSetUpvalue, chunk.OpCall:
		return byteInstruction(w, opName(op), c, offset)
	case chunk.OpInvoke, chunk.OpSuperInvoke:
		return invokeInstruction(w, opName(op), c, offset)
	case chunk.OpJump, chunk.OpJumpIfFalse:
		return jumpInstruction(w, opName(op), 1, c, offset)
	case chunk.OpLoop:
		return jumpInstruction(w, opName(op), -1, c, offset)
	case chunk.OpClosure:
		return closureInstruction(w, c, offset)
	default:
		fmt.Fprintln(w, opName(op))
		return offset + 1
	}
}

func constantInstruction(w io.Writer, name string, c *chunk.Chunk, offset int) int {
	idx := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%s'\n", name, idx, stringifyValue(c.Constants[idx]))
	return offset + 2
}

func byteInstruction(w io.Writer, name string, c *chunk.Chunk, offset int) int {
	slot := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d\n", name, slot)
	return offset + 2
}

func invokeInstruction(w io.Writer, name string, c *chunk.Chunk, offset int) int {
	idx := c.Code[offset+1]
	argCount := c.Code[offset+2]
	fmt.Fprintf(w, "%-16s (%d args) %4d '%s'\n", name, argCount, idx, stringifyValue(c.Constants[idx]))
	return offset + 3
}

func jumpInstruction(w io.Writer, name string, sign int, c *chunk.Chunk, offset int) int {
	hi := int(c.Code[offset+1])
	lo := int(c.Code[offset+2])
	jump := hi<<8 | lo
	fmt.Fprintf(w, "%-16s %4d -> %d\n", name, offset, offset+3+sign*jump)
	return offset + 3
}

func closureInstruction(w io.Writer, c *chunk.Chunk, offset int) int {
	offset++
	idx := c.Code[offset]
	offset++
	fmt.Fprintf(w, "%-16s %4d '%s'\n", "OP_CLOSURE", idx, stringifyValue(c.Constants[idx]))

	fn := c.Constants[idx].(*object.Function)
	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := c.Code[offset]
		index := c.Code[offset+1]
		kind := "upvalue"
		if isLocal != 0 {
			kind = "local"
		}
		fmt.Fprintf(w, "%04d      |                     %s %d\n", offset, kind, index)
		offset += 2
	}
	return offset
}

func opName(op chunk.OpCode) string {
	names := [...]string{
		"OP_CONSTANT", "OP_NIL", "OP_TRUE", "OP_FALSE", "OP_POP",
		"OP_GET_LOCAL", "OP_SET_LOCAL", "OP_GET_GLOBAL", "OP_DEFINE_GLOBAL", "OP_SET_GLOBAL",
		"OP_GET_UPVALUE", "OP_SET_UPVALUE", "OP_GET_PROPERTY", "OP_SET_PROPERTY", "OP_GET_SUPER",
		"OP_EQUAL", "OP_GREATER", "OP_LESS", "OP_ADD", "OP_SUBTRACT", "OP_MULTIPLY", "OP_DIVIDE",
		"OP_NOT", "OP_NEGATE", "OP_PRINT", "OP_JUMP", "OP_JUMP_IF_FALSE", "OP_LOOP",
		"OP_CALL", "OP_INVOKE", "OP_SUPER_INVOKE", "OP_CLOSURE", "OP_CLOSE_UPVALUE", "OP_RETURN",
		"OP_CLASS", "OP_INHERIT", "OP_METHOD",
	}
	if int(op) < len(names) {
		return names[op]
	}
	return "OP_UNKNOWN"
}

// traceInstruction prints the current stack contents followed by the
// about-to-execute instruction, mirroring clox's -DDEBUG_TRACE_EXECUTION.
func (vm *VM) traceInstruction(fr *frame) {
	fmt.Fprint(vm.Stderr, "          ")
	for i := 0; i < vm.stackTop; i++ {
		fmt.Fprintf(vm.Stderr, "[ %s ]", vm.stringify(vm.stack[i]))
	}
	fmt.Fprintln(vm.Stderr)
	disassembleInstruction(vm.Stderr, fr.closure.Function.Chunk, fr.ip)
}
