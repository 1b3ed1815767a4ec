package compiler

import (
	"github.com/egolang/ego/pkg/chunk"
	"github.com/egolang/ego/pkg/scanner"
)

// classDeclaration compiles:
//
//	class Name [< Super] { method* }
//
// A class is, at runtime, just another global (or local) variable bound to
// a Class object; `class Foo {}` is sugar for "create a class object named
// Foo, bind it to a variable named Foo". Inheritance is handled by pushing
// the superclass, then the new class, then emitting Inherit, which copies
// the superclass's method table into the subclass at this point in program
// order (copy-down inheritance, not a live parent pointer).
func (c *Compiler) classDeclaration() {
	c.consume(scanner.TokenIdentifier, "Expect class name.")
	nameTok := c.previous
	nameConstant := c.identifierConstant(nameTok)
	c.declareVariable(nameTok)

	c.emitOpByte(chunk.OpClass, nameConstant)
	c.defineVariable(nameConstant)

	cc := &classCompiler{enclosing: c.cc}
	c.cc = cc

	if c.match(scanner.TokenLess) {
		c.consume(scanner.TokenIdentifier, "Expect superclass name.")
		c.variable(false) // pushes the superclass
		if identifiersEqual(nameTok.Lexeme, c.previous.Lexeme) {
			c.error("A class can't inherit from itself.")
		}

		c.beginScope()
		c.addLocal("super")
		c.defineVariable(0)

		c.namedVariable(nameTok, false) // pushes the subclass
		c.emitOp(chunk.OpInherit)
		cc.hasSuperclass = true
	}

	c.namedVariable(nameTok, false) // the class is the receiver for Method instructions

	c.consume(scanner.TokenLeftBrace, "Expect '{' before class body.")
	for !c.check(scanner.TokenRightBrace) && !c.check(scanner.TokenEOF) {
		c.method()
	}
	c.consume(scanner.TokenRightBrace, "Expect '}' after class body.")
	c.emitOp(chunk.OpPop) // discard the class

	if cc.hasSuperclass {
		c.endScope()
	}
	c.cc = cc.enclosing
}

func (c *Compiler) method() {
	c.consume(scanner.TokenIdentifier, "Expect method name.")
	nameTok := c.previous
	nameConstant := c.identifierConstant(nameTok)

	fnType := TypeMethod
	if nameTok.Lexeme == "init" {
		fnType = TypeInitializer
	}
	c.function(fnType)
	c.emitOpByte(chunk.OpMethod, nameConstant)
}
