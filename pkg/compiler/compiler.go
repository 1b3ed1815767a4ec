// Package compiler implements ego's single-pass compiler: a scanner-driven
// Pratt expression parser and a recursive-descent statement parser, fused
// with code generation, walking the source exactly once left to right.
// There is no intermediate AST - each parse function emits bytecode
// directly into the chunk of the function currently being compiled.
//
// Compiler state that the reference design keeps as package-level global
// mutable variables (the parser, the "current" compiler pointer, the
// "current class" pointer) is instead threaded explicitly: a Compiler value
// owns the scanner and parser state, and functionCompiler/classCompiler
// values form linked stacks (via an "enclosing" pointer) that are pushed
// when a nested function or class body starts and popped when it ends.
//
// Architecture:
//
//	source -> scanner.Scanner -> Compiler (Pratt parse + codegen) -> *object.Function
//
// The returned Function is the implicit top-level "script" function; the
// VM wraps it in a closure with zero upvalues and starts execution there.
package compiler

import (
	"fmt"
	"os"

	"github.com/egolang/ego/pkg/chunk"
	"github.com/egolang/ego/pkg/object"
	"github.com/egolang/ego/pkg/scanner"
	"github.com/egolang/ego/pkg/value"
)

// Interner is the capability the compiler needs from the VM: turning a raw
// byte sequence into an interned *object.String, and rooting the
// function-in-progress of every live compiler so a collection triggered
// while compiling (e.g. by interning an identifier) can't sweep a constant
// that isn't reachable from any VM-side root yet. Depending on the VM
// package directly would create an import cycle (vm depends on compiler),
// so the VM satisfies this interface instead.
type Interner interface {
	CopyString(s string) *object.String

	// PushCompilerRoot registers fn - the function a functionCompiler has
	// just started building - as a GC root until the matching
	// PopCompilerRoot. Nested functions push additional roots on top; none
	// are popped until their own compilation finishes, so the whole active
	// chain (script down to the innermost in-progress function) stays
	// reachable throughout.
	PushCompilerRoot(fn *object.Function)
	// PopCompilerRoot unregisters the most recently pushed compiler root.
	PopCompilerRoot()
}

// FunctionType tags what kind of callable a functionCompiler is building,
// which changes a handful of codegen decisions: slot 0's reserved name,
// what an implicit return produces, and whether `return <expr>` or a bare
// `ego`/`super` reference is legal.
type FunctionType int

const (
	TypeScript FunctionType = iota
	TypeFunction
	TypeMethod
	TypeInitializer
)

const maxLocals = 256
const maxUpvalues = 256
const maxParameters = 255
const maxArguments = 255

type local struct {
	name       string
	depth      int // -1 = declared but not yet defined (use-before-init sentinel)
	isCaptured bool
}

type upvalueDesc struct {
	index   byte
	isLocal bool
}

// functionCompiler holds the state for compiling one function body: its
// in-progress Function object, its locals and upvalues, and a link to the
// enclosing function (nil at the top level). The chain of functionCompiler
// values is compiled bottom-up: a nested function's compiler is popped
// (via end()) before its enclosing function resumes parsing.
type functionCompiler struct {
	enclosing *functionCompiler
	function  *object.Function
	fnType    FunctionType

	locals     [maxLocals]local
	localCount int
	upvalues   [maxUpvalues]upvalueDesc
	scopeDepth int
}

// classCompiler tracks whether the class currently being compiled has a
// superclass, needed so `super` expressions can be validated and so the
// synthetic `super` local's scope is closed correctly.
type classCompiler struct {
	enclosing     *classCompiler
	hasSuperclass bool
}

// Compiler drives the scanner and emits bytecode for one source file. Use
// Compile, not this type directly.
type Compiler struct {
	scanner   *scanner.Scanner
	interner  Interner
	current   scanner.Token
	previous  scanner.Token
	hadError  bool
	panicMode bool

	fc *functionCompiler
	cc *classCompiler

	// PrintCode, when set, dumps a disassembly of every function chunk to
	// stderr as soon as its compilation finishes - the runtime equivalent
	// of clox's -DDEBUG_PRINT_CODE build flag.
	PrintCode bool
	disasm    func(c *chunk.Chunk, name string)
}

// Compile compiles source into the implicit top-level function, or returns
// an error after every diagnostic has been printed (compile errors are
// accumulated via panic-mode recovery, not stopped at the first one).
// interner supplies string interning so that every identifier and string
// literal constant the compiler creates is properly interned.
func Compile(source string, interner Interner) (*object.Function, error) {
	return newCompiler(source, interner).compile()
}

// CompileWithDisasm is like Compile but, when printCode is true, calls
// disasm on every function's chunk right after that function finishes
// compiling (mirroring clox's -DDEBUG_PRINT_CODE).
func CompileWithDisasm(source string, interner Interner, printCode bool, disasm func(c *chunk.Chunk, name string)) (*object.Function, error) {
	c := newCompiler(source, interner)
	c.PrintCode = printCode
	c.disasm = disasm
	return c.compile()
}

func newCompiler(source string, interner Interner) *Compiler {
	c := &Compiler{scanner: scanner.New(source), interner: interner}
	c.fc = &functionCompiler{function: object.NewFunction(), fnType: TypeScript}
	// Slot 0 of every function frame is reserved. For a plain function
	// it's unnamed (the closure itself occupies it); declaring it here
	// with an empty name keeps it out of reach of user variable lookups.
	c.fc.locals[0] = local{name: "", depth: 0}
	c.fc.localCount = 1
	interner.PushCompilerRoot(c.fc.function)
	return c
}

func (c *Compiler) compile() (*object.Function, error) {
	c.advance()
	for !c.match(scanner.TokenEOF) {
		c.declaration()
	}
	fn := c.end()
	if c.hadError {
		return nil, fmt.Errorf("compilation failed")
	}
	return fn, nil
}

// --- token stream plumbing ---

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.Next()
		if c.current.Type != scanner.TokenError {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(t scanner.TokenType) bool { return c.current.Type == t }

func (c *Compiler) match(t scanner.TokenType) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(t scanner.TokenType, msg string) {
	if c.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

// --- error reporting ---

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.current, msg) }
func (c *Compiler) error(msg string)          { c.errorAt(c.previous, msg) }

func (c *Compiler) errorAt(tok scanner.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	if tok.Type == scanner.TokenEOF {
		fmt.Fprintf(os.Stderr, "[line %d] Error at end: %s\n", tok.Line, msg)
	} else if tok.Type == scanner.TokenError {
		fmt.Fprintf(os.Stderr, "[line %d] Error: %s\n", tok.Line, msg)
	} else {
		fmt.Fprintf(os.Stderr, "[line %d] Error at '%s': %s\n", tok.Line, tok.Lexeme, msg)
	}
	c.hadError = true
}

// synchronize discards tokens until it reaches a likely statement boundary,
// so one error doesn't cascade into a pile of spurious follow-on errors.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Type != scanner.TokenEOF {
		if c.previous.Type == scanner.TokenSemicolon {
			return
		}
		switch c.current.Type {
		case scanner.TokenClass, scanner.TokenFun, scanner.TokenVar, scanner.TokenFor,
			scanner.TokenIf, scanner.TokenWhile, scanner.TokenPrint, scanner.TokenReturn:
			return
		}
		c.advance()
	}
}

// --- chunk emission ---

func (c *Compiler) currentChunk() *chunk.Chunk { return c.fc.function.Chunk }

func (c *Compiler) emitByte(b byte) { c.currentChunk().Write(b, c.previous.Line) }

func (c *Compiler) emitOp(op chunk.OpCode) { c.emitByte(byte(op)) }

func (c *Compiler) emitOpByte(op chunk.OpCode, operand byte) {
	c.emitOp(op)
	c.emitByte(operand)
}

func (c *Compiler) emitOps(a, b chunk.OpCode) {
	c.emitOp(a)
	c.emitOp(b)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(chunk.OpLoop)
	offset := c.currentChunk().Len() - loopStart + 2
	if offset > 0xffff {
		c.error("Loop body too large.")
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset & 0xff))
}

// emitJump emits op followed by a two-byte placeholder offset, returning
// the offset of the placeholder's first byte so a later patchJump can fill
// it in once the jump target is known.
func (c *Compiler) emitJump(op chunk.OpCode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return c.currentChunk().Len() - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := c.currentChunk().Len() - offset - 2
	if jump > 0xffff {
		c.error("Too much code to jump over.")
	}
	c.currentChunk().Code[offset] = byte(jump >> 8)
	c.currentChunk().Code[offset+1] = byte(jump & 0xff)
}

func (c *Compiler) emitReturn() {
	if c.fc.fnType == TypeInitializer {
		// An initializer implicitly returns the receiver (slot 0), not nil.
		c.emitOpByte(chunk.OpGetLocal, 0)
	} else {
		c.emitOp(chunk.OpNil)
	}
	c.emitOp(chunk.OpReturn)
}

func (c *Compiler) makeConstant(v value.Value) byte {
	if len(c.currentChunk().Constants) >= chunk.MaxConstants {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(c.currentChunk().AddConstant(v))
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emitOpByte(chunk.OpConstant, c.makeConstant(v))
}

// end finishes the current function compiler: emits the implicit return,
// optionally disassembles it, pops this function's GC root (it's about to
// be stored as a constant in the enclosing, still-rooted chunk, or handed
// back to the caller at the top level), and pops back to the enclosing
// compiler (nil at the top level).
func (c *Compiler) end() *object.Function {
	c.emitReturn()
	fn := c.fc.function
	if c.PrintCode && !c.hadError && c.disasm != nil {
		c.disasm(fn.Chunk, fn.DisplayName())
	}
	c.interner.PopCompilerRoot()
	c.fc = c.fc.enclosing
	return fn
}

// --- scopes ---

func (c *Compiler) beginScope() { c.fc.scopeDepth++ }

func (c *Compiler) endScope() {
	c.fc.scopeDepth--
	for c.fc.localCount > 0 && c.fc.locals[c.fc.localCount-1].depth > c.fc.scopeDepth {
		if c.fc.locals[c.fc.localCount-1].isCaptured {
			c.emitOp(chunk.OpCloseUpvalue)
		} else {
			c.emitOp(chunk.OpPop)
		}
		c.fc.localCount--
	}
}
