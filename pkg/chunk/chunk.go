// Package chunk defines the bytecode container that the compiler emits
// into and the VM executes: a growable byte sequence of opcodes and
// operands, a parallel per-byte line-number array for diagnostics, and a
// growable constant pool.
package chunk

import "github.com/egolang/ego/pkg/value"

// OpCode is a single bytecode instruction tag. Operands (when an
// instruction has one) are encoded as the one or two raw bytes that
// immediately follow the opcode in Code; the comment on each opcode below
// gives its operand layout.
type OpCode byte

const (
	OpConstant      OpCode = iota // operand: 1-byte constant index
	OpNil                         // push Nil
	OpTrue                        // push Bool(true)
	OpFalse                       // push Bool(false)
	OpPop                         // discard top
	OpGetLocal                    // operand: 1-byte slot
	OpSetLocal                    // operand: 1-byte slot
	OpGetGlobal                   // operand: 1-byte constant index (name)
	OpDefineGlobal                // operand: 1-byte constant index (name)
	OpSetGlobal                   // operand: 1-byte constant index (name)
	OpGetUpvalue                  // operand: 1-byte upvalue index
	OpSetUpvalue                  // operand: 1-byte upvalue index
	OpGetProperty                 // operand: 1-byte constant index (name)
	OpSetProperty                 // operand: 1-byte constant index (name)
	OpGetSuper                    // operand: 1-byte constant index (name)
	OpEqual                       // pop b,a; push a==b
	OpGreater                     // pop b,a; push a>b
	OpLess                        // pop b,a; push a<b
	OpAdd                         // pop b,a; push a+b (numbers or strings)
	OpSubtract                    // pop b,a; push a-b
	OpMultiply                    // pop b,a; push a*b
	OpDivide                      // pop b,a; push a/b
	OpNot                         // pop a; push logical-not a
	OpNegate                      // pop a; push -a
	OpPrint                       // pop a; print a + newline
	OpJump                        // operand: 2-byte forward offset
	OpJumpIfFalse                 // operand: 2-byte forward offset (peeks, does not pop)
	OpLoop                        // operand: 2-byte backward offset
	OpCall                        // operand: 1-byte argument count
	OpInvoke                      // operands: 1-byte constant index (name), 1-byte arg count
	OpSuperInvoke                 // operands: 1-byte constant index (name), 1-byte arg count
	OpClosure                     // operand: 1-byte constant index (function); followed by upvalue-count pairs of (isLocal, index) bytes
	OpCloseUpvalue                // close the upvalue (if any) at the current stack top, then pop
	OpReturn                      // return the top of stack from the current call frame
	OpClass                       // operand: 1-byte constant index (name)
	OpInherit                     // stack: [..., superclass, subclass]; pop subclass, copy methods into it, leave superclass
	OpMethod                      // operand: 1-byte constant index (name)
)

// MaxConstants is the hard limit on constants per chunk: constant indices
// are a single byte, so a chunk may hold at most 256 of them.
const MaxConstants = 256

// Chunk holds one function's compiled bytecode: instruction bytes, a
// parallel line-number array (one entry per byte in Code, for error
// reporting), and the constant pool instructions reference by index.
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []value.Value
}

// Write appends one raw byte (an opcode or an operand byte) at the given
// source line.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp appends an opcode byte at the given source line.
func (c *Chunk) WriteOp(op OpCode, line int) {
	c.Write(byte(op), line)
}

// AddConstant appends v to the constant pool and returns its index. Callers
// that enforce the 256-constant limit (the compiler) do so before calling
// this, since the limit is a compile-time diagnostic, not a panic here.
func (c *Chunk) AddConstant(v value.Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// Len reports the number of bytes emitted so far.
func (c *Chunk) Len() int { return len(c.Code) }
