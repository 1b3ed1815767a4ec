package compiler

import (
	"strconv"

	"github.com/egolang/ego/pkg/chunk"
	"github.com/egolang/ego/pkg/scanner"
	"github.com/egolang/ego/pkg/value"
)

// identifierConstant interns tok's lexeme and adds it to the current
// chunk's constant pool, returning its index. Used for every name the
// bytecode needs to carry as data: global variable names, property names,
// method names.
func (c *Compiler) identifierConstant(tok scanner.Token) byte {
	s := c.interner.CopyString(tok.Lexeme)
	return c.makeConstant(s)
}

func identifiersEqual(a, b string) bool { return a == b }

// resolveLocal walks fc's locals from the most recently declared backward,
// returning the slot index of the first one matching name, or -1 if none
// matches. A local whose depth is the uninitialized sentinel (-1) being
// referenced here means the user wrote something like `var a = a;` - using
// a variable in its own initializer - which resolveLocal reports as a
// compile error before returning the slot.
func (c *Compiler) resolveLocal(fc *functionCompiler, name string) int {
	for i := fc.localCount - 1; i >= 0; i-- {
		l := &fc.locals[i]
		if identifiersEqual(l.name, name) {
			if l.depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// resolveUpvalue implements the recursive upvalue-capture search described
// by the language's closure semantics: look for name as a local in the
// enclosing function; if found, mark it captured and record a new upvalue
// pointing directly at that stack slot. Otherwise recurse into the
// enclosing function's own upvalue resolution; if that finds one, record a
// new upvalue that forwards to the enclosing closure's upvalue at that
// index. Either way, an upvalue already recorded for the same (index,
// isLocal) pair is reused rather than duplicated.
func (c *Compiler) resolveUpvalue(fc *functionCompiler, name string) int {
	if fc.enclosing == nil {
		return -1
	}
	if local := c.resolveLocal(fc.enclosing, name); local != -1 {
		fc.enclosing.locals[local].isCaptured = true
		return c.addUpvalue(fc, byte(local), true)
	}
	if up := c.resolveUpvalue(fc.enclosing, name); up != -1 {
		return c.addUpvalue(fc, byte(up), false)
	}
	return -1
}

func (c *Compiler) addUpvalue(fc *functionCompiler, index byte, isLocal bool) int {
	count := fc.function.UpvalueCount
	for i := 0; i < count; i++ {
		up := &fc.upvalues[i]
		if int(up.index) == int(index) && up.isLocal == isLocal {
			return i
		}
	}
	if count == maxUpvalues {
		c.error("Too many closure variables in function.")
		return 0
	}
	fc.upvalues[count] = upvalueDesc{index: index, isLocal: isLocal}
	fc.function.UpvalueCount++
	return count
}

// addLocal declares name in the current scope at the uninitialized
// sentinel depth (-1); markInitialized (called from defineVariable) later
// promotes it to the current scope depth once its initializer has been
// fully compiled, closing the use-before-init window.
func (c *Compiler) addLocal(name string) {
	if c.fc.localCount == maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.fc.locals[c.fc.localCount] = local{name: name, depth: -1}
	c.fc.localCount++
}

// declareVariable registers the variable being declared as a local if we
// are in a non-global scope (globals are resolved dynamically by name at
// runtime and need no compile-time slot). Shadowing a local from an outer
// scope is fine; redeclaring one in the very same scope is an error.
func (c *Compiler) declareVariable(name scanner.Token) {
	if c.fc.scopeDepth == 0 {
		return
	}
	for i := c.fc.localCount - 1; i >= 0; i-- {
		l := &c.fc.locals[i]
		if l.depth != -1 && l.depth < c.fc.scopeDepth {
			break
		}
		if identifiersEqual(l.name, name.Lexeme) {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name.Lexeme)
}

// parseVariable consumes an identifier token, declares it if we're in a
// local scope, and returns the constant-pool index to use with
// DefineGlobal if we're at the top level (the return value is unused, but
// harmless, for locals).
func (c *Compiler) parseVariable(errMsg string) byte {
	c.consume(scanner.TokenIdentifier, errMsg)
	c.declareVariable(c.previous)
	if c.fc.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous)
}

func (c *Compiler) markInitialized() {
	if c.fc.scopeDepth == 0 {
		return
	}
	c.fc.locals[c.fc.localCount-1].depth = c.fc.scopeDepth
}

// defineVariable finishes a variable declaration. At local scope it's a
// no-op at the bytecode level - markInitialized just flips the local out
// of the use-before-init sentinel state, since the value is already
// sitting in its stack slot. At global scope it emits DefineGlobal, which
// pulls the value off the stack into the globals table.
func (c *Compiler) defineVariable(global byte) {
	if c.fc.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOpByte(chunk.OpDefineGlobal, global)
}

// namedVariable compiles a read or write of a variable reference,
// resolving it as a local, then an upvalue, then finally a global. This is
// the single call site responsible for emitting exactly one Get/Set
// instruction - a prior variant of this design emitted GetGlobal twice on
// the non-assignment path, which is why the assignment case is structured
// as compile-RHS-then-set rather than compile-default-get-then-patch.
func (c *Compiler) namedVariable(name scanner.Token, canAssign bool) {
	var getOp, setOp chunk.OpCode
	arg := c.resolveLocal(c.fc, name.Lexeme)
	if arg != -1 {
		getOp, setOp = chunk.OpGetLocal, chunk.OpSetLocal
	} else if arg = c.resolveUpvalue(c.fc, name.Lexeme); arg != -1 {
		getOp, setOp = chunk.OpGetUpvalue, chunk.OpSetUpvalue
	} else {
		arg = int(c.identifierConstant(name))
		getOp, setOp = chunk.OpGetGlobal, chunk.OpSetGlobal
	}

	if canAssign && c.match(scanner.TokenEqual) {
		c.expression()
		c.emitOpByte(setOp, byte(arg))
		return
	}
	c.emitOpByte(getOp, byte(arg))
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

func (c *Compiler) numberLiteral(_ bool) {
	n, _ := strconv.ParseFloat(c.previous.Lexeme, 64)
	c.emitConstant(value.Number(n))
}

func (c *Compiler) stringLiteral(_ bool) {
	// Lexeme includes the surrounding quotes.
	raw := c.previous.Lexeme
	s := c.interner.CopyString(raw[1 : len(raw)-1])
	c.emitConstant(s)
}
