package compiler

import (
	"github.com/egolang/ego/pkg/chunk"
	"github.com/egolang/ego/pkg/scanner"
)

// Precedence is the Pratt-parser precedence ladder, lowest to highest.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

// parseFn is a Pratt prefix or infix handler. canAssign is only meaningful
// to handlers that might see a trailing '=' (namedVariable, dot); it is
// true only when the enclosing parsePrecedence call was entered at
// PrecAssignment or lower, which is how `a = b` is allowed while
// `a + b = c` correctly rejects the `=` as an invalid assignment target.
type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

var rules map[scanner.TokenType]parseRule

func init() {
	rules = map[scanner.TokenType]parseRule{
		scanner.TokenLeftParen:    {prefix: (*Compiler).grouping, infix: (*Compiler).call, precedence: PrecCall},
		scanner.TokenDot:          {infix: (*Compiler).dot, precedence: PrecCall},
		scanner.TokenMinus:        {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: PrecTerm},
		scanner.TokenPlus:         {infix: (*Compiler).binary, precedence: PrecTerm},
		scanner.TokenSlash:        {infix: (*Compiler).binary, precedence: PrecFactor},
		scanner.TokenStar:         {infix: (*Compiler).binary, precedence: PrecFactor},
		scanner.TokenBang:         {prefix: (*Compiler).unary},
		scanner.TokenBangEqual:    {infix: (*Compiler).binary, precedence: PrecEquality},
		scanner.TokenEqualEqual:   {infix: (*Compiler).binary, precedence: PrecEquality},
		scanner.TokenGreater:      {infix: (*Compiler).binary, precedence: PrecComparison},
		scanner.TokenGreaterEqual: {infix: (*Compiler).binary, precedence: PrecComparison},
		scanner.TokenLess:         {infix: (*Compiler).binary, precedence: PrecComparison},
		scanner.TokenLessEqual:    {infix: (*Compiler).binary, precedence: PrecComparison},
		scanner.TokenIdentifier:   {prefix: (*Compiler).variable},
		scanner.TokenString:       {prefix: (*Compiler).stringLiteral},
		scanner.TokenNumber:       {prefix: (*Compiler).numberLiteral},
		scanner.TokenAnd:          {infix: (*Compiler).and_, precedence: PrecAnd},
		scanner.TokenOr:           {infix: (*Compiler).or_, precedence: PrecOr},
		scanner.TokenFalse:        {prefix: (*Compiler).literal},
		scanner.TokenTrue:         {prefix: (*Compiler).literal},
		scanner.TokenNil:          {prefix: (*Compiler).literal},
		scanner.TokenSuper:        {prefix: (*Compiler).super_},
		scanner.TokenEgo:          {prefix: (*Compiler).ego_},
	}
}

func getRule(t scanner.TokenType) parseRule {
	if r, ok := rules[t]; ok {
		return r
	}
	return parseRule{}
}

// expression parses a single expression at the lowest real precedence
// (assignment).
func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

// parsePrecedence is the heart of the Pratt parser: consume one token, run
// its prefix rule, then keep consuming and running infix rules as long as
// the next token's precedence is at least minPrec.
func (c *Compiler) parsePrecedence(minPrec Precedence) {
	c.advance()
	prefix := getRule(c.previous.Type).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}
	canAssign := minPrec <= PrecAssignment
	prefix(c, canAssign)

	for minPrec <= getRule(c.current.Type).precedence {
		c.advance()
		infix := getRule(c.previous.Type).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(scanner.TokenEqual) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) grouping(_ bool) {
	c.expression()
	c.consume(scanner.TokenRightParen, "Expect ')' after expression.")
}

func (c *Compiler) unary(_ bool) {
	opType := c.previous.Type
	c.parsePrecedence(PrecUnary)
	switch opType {
	case scanner.TokenMinus:
		c.emitOp(chunk.OpNegate)
	case scanner.TokenBang:
		c.emitOp(chunk.OpNot)
	}
}

func (c *Compiler) binary(_ bool) {
	opType := c.previous.Type
	rule := getRule(opType)
	c.parsePrecedence(rule.precedence + 1)

	switch opType {
	case scanner.TokenBangEqual:
		c.emitOps(chunk.OpEqual, chunk.OpNot)
	case scanner.TokenEqualEqual:
		c.emitOp(chunk.OpEqual)
	case scanner.TokenGreater:
		c.emitOp(chunk.OpGreater)
	case scanner.TokenGreaterEqual:
		c.emitOps(chunk.OpLess, chunk.OpNot)
	case scanner.TokenLess:
		c.emitOp(chunk.OpLess)
	case scanner.TokenLessEqual:
		c.emitOps(chunk.OpGreater, chunk.OpNot)
	case scanner.TokenPlus:
		c.emitOp(chunk.OpAdd)
	case scanner.TokenMinus:
		c.emitOp(chunk.OpSubtract)
	case scanner.TokenStar:
		c.emitOp(chunk.OpMultiply)
	case scanner.TokenSlash:
		c.emitOp(chunk.OpDivide)
	}
}

func (c *Compiler) literal(_ bool) {
	switch c.previous.Type {
	case scanner.TokenFalse:
		c.emitOp(chunk.OpFalse)
	case scanner.TokenTrue:
		c.emitOp(chunk.OpTrue)
	case scanner.TokenNil:
		c.emitOp(chunk.OpNil)
	}
}

// and_ implements short-circuit evaluation: if the left operand is falsey,
// JumpIfFalse leaves it on the stack as the whole expression's result and
// skips the right operand entirely; otherwise the left is popped and the
// right operand's value becomes the result.
func (c *Compiler) and_(_ bool) {
	endJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

// or_ is and_'s mirror image: if the left operand is truthy, jump straight
// to the end keeping it as the result; otherwise fall through to evaluate
// the right operand.
func (c *Compiler) or_(_ bool) {
	elseJump := c.emitJump(chunk.OpJumpIfFalse)
	endJump := c.emitJump(chunk.OpJump)

	c.patchJump(elseJump)
	c.emitOp(chunk.OpPop)
	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}

func (c *Compiler) call(_ bool) {
	argCount := c.argumentList()
	c.emitOpByte(chunk.OpCall, argCount)
}

func (c *Compiler) argumentList() byte {
	var count int
	if !c.check(scanner.TokenRightParen) {
		for {
			c.expression()
			if count == maxArguments {
				c.error("Can't have more than 255 arguments.")
			}
			count++
			if !c.match(scanner.TokenComma) {
				break
			}
		}
	}
	c.consume(scanner.TokenRightParen, "Expect ')' after arguments.")
	return byte(count)
}

// dot compiles `receiver.name`, `receiver.name = value` and
// `receiver.name(args)`. The receiver has already been parsed and its
// value is on the stack; this handles everything after the '.'.
func (c *Compiler) dot(canAssign bool) {
	c.consume(scanner.TokenIdentifier, "Expect property name after '.'.")
	name := c.identifierConstant(c.previous)

	switch {
	case canAssign && c.match(scanner.TokenEqual):
		c.expression()
		c.emitOpByte(chunk.OpSetProperty, name)
	case c.match(scanner.TokenLeftParen):
		argCount := c.argumentList()
		c.emitOpByte(chunk.OpInvoke, name)
		c.emitByte(argCount)
	default:
		c.emitOpByte(chunk.OpGetProperty, name)
	}
}

// ego_ compiles the `ego` keyword (this language's `self`): valid only
// inside a method or initializer body, where it reads the receiver exactly
// like any other local named "ego" occupying slot 0 - including
// participating in upvalue capture automatically if a nested function
// closes over it.
func (c *Compiler) ego_(_ bool) {
	if c.cc == nil {
		c.error("Can't use 'ego' outside of a class.")
		return
	}
	c.variable(false)
}

// super_ compiles `super.name` and `super.name(args)`. Both forms push the
// receiver (so the bound/invoked method runs against the current
// instance, not the superclass) and the superclass, then either invoke
// directly (SuperInvoke) or bind a method value (GetSuper).
func (c *Compiler) super_(_ bool) {
	if c.cc == nil {
		c.error("Can't use 'super' outside of a class.")
	} else if !c.cc.hasSuperclass {
		c.error("Can't use 'super' in a class with no superclass.")
	}

	c.consume(scanner.TokenDot, "Expect '.' after 'super'.")
	c.consume(scanner.TokenIdentifier, "Expect superclass method name.")
	name := c.identifierConstant(c.previous)

	c.namedVariable(scanner.Token{Type: scanner.TokenEgo, Lexeme: "ego"}, false)
	if c.match(scanner.TokenLeftParen) {
		argCount := c.argumentList()
		c.namedVariable(scanner.Token{Type: scanner.TokenSuper, Lexeme: "super"}, false)
		c.emitOpByte(chunk.OpSuperInvoke, name)
		c.emitByte(argCount)
	} else {
		c.namedVariable(scanner.Token{Type: scanner.TokenSuper, Lexeme: "super"}, false)
		c.emitOpByte(chunk.OpGetSuper, name)
	}
}
