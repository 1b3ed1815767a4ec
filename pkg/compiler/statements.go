package compiler

import (
	"github.com/egolang/ego/pkg/chunk"
	"github.com/egolang/ego/pkg/object"
	"github.com/egolang/ego/pkg/scanner"
)

// declaration is the top of the recursive-descent statement grammar:
//
//	declaration -> classDecl | funDecl | varDecl | statement
func (c *Compiler) declaration() {
	switch {
	case c.match(scanner.TokenClass):
		c.classDeclaration()
	case c.match(scanner.TokenFun):
		c.funDeclaration()
	case c.match(scanner.TokenVar):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) statement() {
	switch {
	case c.match(scanner.TokenPrint):
		c.printStatement()
	case c.match(scanner.TokenIf):
		c.ifStatement()
	case c.match(scanner.TokenReturn):
		c.returnStatement()
	case c.match(scanner.TokenWhile):
		c.whileStatement()
	case c.match(scanner.TokenFor):
		c.forStatement()
	case c.match(scanner.TokenLeftBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(scanner.TokenRightBrace) && !c.check(scanner.TokenEOF) {
		c.declaration()
	}
	c.consume(scanner.TokenRightBrace, "Expect '}' after block.")
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")
	if c.match(scanner.TokenEqual) {
		c.expression()
	} else {
		c.emitOp(chunk.OpNil)
	}
	c.consume(scanner.TokenSemicolon, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(scanner.TokenSemicolon, "Expect ';' after expression.")
	c.emitOp(chunk.OpPop)
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(scanner.TokenSemicolon, "Expect ';' after value.")
	c.emitOp(chunk.OpPrint)
}

func (c *Compiler) ifStatement() {
	c.consume(scanner.TokenLeftParen, "Expect '(' after 'if'.")
	c.expression()
	c.consume(scanner.TokenRightParen, "Expect ')' after condition.")

	thenJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.statement()

	elseJump := c.emitJump(chunk.OpJump)
	c.patchJump(thenJump)
	c.emitOp(chunk.OpPop)

	if c.match(scanner.TokenElse) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := c.currentChunk().Len()
	c.consume(scanner.TokenLeftParen, "Expect '(' after 'while'.")
	c.expression()
	c.consume(scanner.TokenRightParen, "Expect ')' after condition.")

	exitJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(chunk.OpPop)
}

// forStatement desugars `for (init; cond; incr) body` into the while-loop
// bytecode shape: init runs once outside the loop, incr is spliced in
// right before the backward jump by temporarily jumping over it into the
// body and looping back to it instead of to cond.
func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(scanner.TokenLeftParen, "Expect '(' after 'for'.")

	switch {
	case c.match(scanner.TokenSemicolon):
		// no initializer
	case c.match(scanner.TokenVar):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := c.currentChunk().Len()
	exitJump := -1
	if !c.match(scanner.TokenSemicolon) {
		c.expression()
		c.consume(scanner.TokenSemicolon, "Expect ';' after loop condition.")
		exitJump = c.emitJump(chunk.OpJumpIfFalse)
		c.emitOp(chunk.OpPop)
	}

	if !c.match(scanner.TokenRightParen) {
		bodyJump := c.emitJump(chunk.OpJump)
		incrStart := c.currentChunk().Len()
		c.expression()
		c.emitOp(chunk.OpPop)
		c.consume(scanner.TokenRightParen, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(chunk.OpPop)
	}
	c.endScope()
}

func (c *Compiler) returnStatement() {
	if c.fc.fnType == TypeScript {
		c.error("Can't return from top-level code.")
	}
	if c.match(scanner.TokenSemicolon) {
		c.emitReturn()
		return
	}
	if c.fc.fnType == TypeInitializer {
		c.error("Can't return a value from an initializer.")
	}
	c.expression()
	c.consume(scanner.TokenSemicolon, "Expect ';' after return value.")
	c.emitOp(chunk.OpReturn)
}

// funDeclaration compiles `fun name(params) { body }` as sugar for
// declaring a variable bound to the compiled function value.
func (c *Compiler) funDeclaration() {
	global := c.parseVariable("Expect function name.")
	c.markInitialized()
	c.function(TypeFunction)
	c.defineVariable(global)
}

// function compiles one function body (used for both `fun` declarations
// and methods): push a fresh functionCompiler, parse the parameter list
// and body, pop back to the enclosing compiler, then emit a Closure
// instruction in the *enclosing* chunk with the upvalue capture operands
// that tell the VM how to populate the new closure's upvalues.
func (c *Compiler) function(fnType FunctionType) {
	fc := &functionCompiler{enclosing: c.fc, fnType: fnType, function: object.NewFunction()}
	c.interner.PushCompilerRoot(fc.function)
	if fnType != TypeScript {
		fc.function.Name = c.interner.CopyString(c.previous.Lexeme)
	}
	// Slot 0: "ego" for methods/initializers, unnamed otherwise.
	if fnType == TypeMethod || fnType == TypeInitializer {
		fc.locals[0] = local{name: "ego", depth: 0}
	} else {
		fc.locals[0] = local{name: "", depth: 0}
	}
	fc.localCount = 1
	c.fc = fc

	c.beginScope()
	c.consume(scanner.TokenLeftParen, "Expect '(' after function name.")
	if !c.check(scanner.TokenRightParen) {
		for {
			c.fc.function.Arity++
			if c.fc.function.Arity > maxParameters {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			constant := c.parseVariable("Expect parameter name.")
			c.defineVariable(constant)
			if !c.match(scanner.TokenComma) {
				break
			}
		}
	}
	c.consume(scanner.TokenRightParen, "Expect ')' after parameters.")
	c.consume(scanner.TokenLeftBrace, "Expect '{' before function body.")
	c.block()

	fn := c.end()
	capturedUpvalues := fc.upvalues
	capturedUpvalueCount := fn.UpvalueCount

	// The Closure instruction is emitted into the *enclosing* chunk (c.fc
	// has already been restored by end()): it carries one (isLocal, index)
	// byte pair per upvalue the new function captures, telling the VM
	// whether to snapshot a slot of the currently-executing frame or
	// reuse an upvalue already captured by that frame's own closure.
	c.emitOpByte(chunk.OpClosure, c.makeConstant(fn))
	for i := 0; i < capturedUpvalueCount; i++ {
		if capturedUpvalues[i].isLocal {
			c.emitByte(1)
		} else {
			c.emitByte(0)
		}
		c.emitByte(capturedUpvalues[i].index)
	}
}
