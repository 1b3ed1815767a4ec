package compiler

import (
	"testing"

	"github.com/egolang/ego/pkg/chunk"
	"github.com/egolang/ego/pkg/object"
)

// stubInterner is the minimal Interner a compiler test needs: it dedupes by
// content the same way the VM's real intern set does, without pulling in
// pkg/vm (which would create an import cycle back into this package).
type stubInterner struct {
	strings map[string]*object.String
	roots   []*object.Function
}

func newStubInterner() *stubInterner {
	return &stubInterner{strings: map[string]*object.String{}}
}

func (s *stubInterner) CopyString(str string) *object.String {
	if existing, ok := s.strings[str]; ok {
		return existing
	}
	bytes := []byte(str)
	obj := object.NewString(bytes, object.HashBytes(bytes))
	s.strings[str] = obj
	return obj
}

// PushCompilerRoot/PopCompilerRoot only matter to a real GC; the stub keeps
// the stack anyway so an unbalanced push/pop would show up as a non-empty
// roots slice if a test ever wanted to assert on it.
func (s *stubInterner) PushCompilerRoot(fn *object.Function) {
	s.roots = append(s.roots, fn)
}

func (s *stubInterner) PopCompilerRoot() {
	s.roots = s.roots[:len(s.roots)-1]
}

func compileOK(t *testing.T, source string) *object.Function {
	t.Helper()
	fn, err := Compile(source, newStubInterner())
	if err != nil {
		t.Fatalf("Compile(%q) returned error: %v", source, err)
	}
	return fn
}

func TestEmptySourceCompilesToReturnNil(t *testing.T) {
	fn := compileOK(t, "")
	if fn.Chunk.Len() != 2 {
		t.Fatalf("empty source chunk length = %d, want 2 (OpNil, OpReturn)", fn.Chunk.Len())
	}
	if chunk.OpCode(fn.Chunk.Code[0]) != chunk.OpNil || chunk.OpCode(fn.Chunk.Code[1]) != chunk.OpReturn {
		t.Errorf("empty source code = %v, want [OpNil, OpReturn]", fn.Chunk.Code)
	}
}

func TestEveryChunkEndsInReturn(t *testing.T) {
	sources := []string{
		"",
		"print 1;",
		"var a = 1;",
		"fun f() { return 1; }",
		"if (true) { print 1; }",
	}
	for _, src := range sources {
		fn := compileOK(t, src)
		last := chunk.OpCode(fn.Chunk.Code[fn.Chunk.Len()-1])
		if last != chunk.OpReturn {
			t.Errorf("Compile(%q) chunk does not end in OpReturn (ends in %v)", src, last)
		}
	}
}

func TestSimpleArithmeticEmitsExpectedOps(t *testing.T) {
	fn := compileOK(t, "print 1 + 2;")
	ops := opcodesIgnoringOperands(fn.Chunk)
	want := []chunk.OpCode{chunk.OpConstant, chunk.OpConstant, chunk.OpAdd, chunk.OpPrint, chunk.OpNil, chunk.OpReturn}
	assertOps(t, ops, want)
}

// opcodesIgnoringOperands walks the chunk consuming operand bytes per
// opcode so the returned slice contains exactly one entry per instruction,
// not one entry per raw byte.
func opcodesIgnoringOperands(c *chunk.Chunk) []chunk.OpCode {
	var ops []chunk.OpCode
	i := 0
	for i < len(c.Code) {
		op := chunk.OpCode(c.Code[i])
		ops = append(ops, op)
		i += 1 + operandWidth(op, c, i)
	}
	return ops
}

func operandWidth(op chunk.OpCode, c *chunk.Chunk, at int) int {
	switch op {
	case chunk.OpConstant, chunk.OpGetLocal, chunk.OpSetLocal, chunk.OpGetGlobal,
		chunk.OpDefineGlobal, chunk.OpSetGlobal, chunk.OpGetUpvalue, chunk.OpSetUpvalue,
		chunk.OpGetProperty, chunk.OpSetProperty, chunk.OpGetSuper, chunk.OpCall, chunk.OpClass, chunk.OpMethod:
		return 1
	case chunk.OpInvoke, chunk.OpSuperInvoke:
		return 2
	case chunk.OpJump, chunk.OpJumpIfFalse, chunk.OpLoop:
		return 2
	case chunk.OpClosure:
		idx := c.Code[at+1]
		fn, ok := c.Constants[idx].(*object.Function)
		width := 1
		if ok {
			width += 2 * fn.UpvalueCount
		}
		return width
	default:
		return 0
	}
}

func assertOps(t *testing.T, got, want []chunk.OpCode) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("opcodes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("opcode %d = %v, want %v (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestGlobalVariableRoundTrip(t *testing.T) {
	fn := compileOK(t, `var a = "he"; var b = "llo"; print a + b;`)
	ops := opcodesIgnoringOperands(fn.Chunk)
	want := []chunk.OpCode{
		chunk.OpConstant, chunk.OpDefineGlobal, // var a = "he";
		chunk.OpConstant, chunk.OpDefineGlobal, // var b = "llo";
		chunk.OpGetGlobal, chunk.OpGetGlobal, chunk.OpAdd, chunk.OpPrint, // print a + b;
		chunk.OpNil, chunk.OpReturn,
	}
	assertOps(t, ops, want)
}

// TestSingleGetGlobalEmission guards against the bug described in the
// compiler's design notes: a non-assignment reference to a global must
// emit exactly one OpGetGlobal, not two.
func TestSingleGetGlobalEmission(t *testing.T) {
	fn := compileOK(t, "var a = 1; print a;")
	ops := opcodesIgnoringOperands(fn.Chunk)
	count := 0
	for _, op := range ops {
		if op == chunk.OpGetGlobal {
			count++
		}
	}
	if count != 1 {
		t.Errorf("OpGetGlobal emitted %d times for a bare reference, want exactly 1", count)
	}
}

func TestLocalVariableUsesGetSetLocal(t *testing.T) {
	fn := compileOK(t, "{ var a = 1; print a; }")
	ops := opcodesIgnoringOperands(fn.Chunk)
	found := false
	for _, op := range ops {
		if op == chunk.OpGetLocal {
			found = true
		}
		if op == chunk.OpGetGlobal {
			t.Errorf("block-scoped local compiled to OpGetGlobal")
		}
	}
	if !found {
		t.Errorf("expected an OpGetLocal for a block-scoped variable reference, ops: %v", ops)
	}
}

func TestFunctionDeclarationEmitsClosure(t *testing.T) {
	fn := compileOK(t, "fun f() { return 1; }")
	found := false
	for _, c := range fn.Chunk.Constants {
		if nested, ok := c.(*object.Function); ok {
			found = true
			if nested.Arity != 0 {
				t.Errorf("f's Arity = %d, want 0", nested.Arity)
			}
		}
	}
	if !found {
		t.Errorf("no nested *object.Function constant found for `fun f() {...}`")
	}
}

func TestTooManyConstantsReportsError(t *testing.T) {
	src := "print 0"
	for i := 0; i < 300; i++ {
		src += " + " + itoa(i)
	}
	src += ";"
	_, err := Compile(src, newStubInterner())
	if err == nil {
		t.Fatalf("expected a compile error from exceeding 256 constants, got none")
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func TestClassWithInheritanceCompiles(t *testing.T) {
	fn := compileOK(t, `
		class A { init(n) { ego.n = n; } say() { print ego.n; } }
		class B < A { init(n) { super.init(n + 1); } }
		B(10).say();
	`)
	// super.init(...) is compiled into B.init's own chunk, a nested
	// function constant, so walk every nested function as well.
	var ops []chunk.OpCode
	var collect func(f *object.Function)
	collect = func(f *object.Function) {
		ops = append(ops, opcodesIgnoringOperands(f.Chunk)...)
		for _, c := range f.Chunk.Constants {
			if nested, ok := c.(*object.Function); ok {
				collect(nested)
			}
		}
	}
	collect(fn)
	sawInherit, sawSuperInvoke := false, false
	for _, op := range ops {
		if op == chunk.OpInherit {
			sawInherit = true
		}
		if op == chunk.OpSuperInvoke {
			sawSuperInvoke = true
		}
	}
	if !sawInherit {
		t.Errorf("no OpInherit emitted for `class B < A`")
	}
	if !sawSuperInvoke {
		t.Errorf("no OpSuperInvoke emitted for `super.init(...)`")
	}
}
