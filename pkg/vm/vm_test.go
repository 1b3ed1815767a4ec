package vm

import (
	"bufio"
	"io"
	"os"
	"strings"
	"testing"
)

// captureOutput runs fn with the VM's Stdout and Stderr redirected into
// pipes, returning whatever was written to each. Stdout/Stderr are plain
// *os.File (not io.Writer), mirroring how the reference runtime writes
// straight to file descriptors, so tests redirect real pipes rather than
// swapping in a bytes.Buffer.
func captureOutput(t *testing.T, m *VM, fn func()) (stdout, stderr string) {
	t.Helper()

	outR, outW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	m.Stdout = outW
	m.Stderr = errW

	outCh := make(chan string, 1)
	errCh := make(chan string, 1)
	go func() { outCh <- drain(outR) }()
	go func() { errCh <- drain(errR) }()

	fn()

	outW.Close()
	errW.Close()
	return <-outCh, <-errCh
}

func drain(r *os.File) string {
	var sb strings.Builder
	br := bufio.NewReader(r)
	io.Copy(&sb, br)
	return sb.String()
}

func run(t *testing.T, source string) (stdout, stderr string, result InterpretResult) {
	t.Helper()
	m := New()
	stdout, stderr = captureOutput(t, m, func() {
		result = m.Interpret(source)
	})
	return stdout, stderr, result
}

func TestPrintAddition(t *testing.T) {
	stdout, _, result := run(t, "print 1 + 2;")
	if result != InterpretOK {
		t.Fatalf("result = %v, want InterpretOK", result)
	}
	if stdout != "3\n" {
		t.Errorf("stdout = %q, want %q", stdout, "3\n")
	}
}

func TestStringConcatenationInterns(t *testing.T) {
	stdout, _, result := run(t, `var a = "he"; var b = "llo"; print a + b;`)
	if result != InterpretOK {
		t.Fatalf("result = %v, want InterpretOK", result)
	}
	if stdout != "hello\n" {
		t.Errorf("stdout = %q, want %q", stdout, "hello\n")
	}
}

func TestClosureCapture(t *testing.T) {
	src := `
		fun outer() { var x = 1; fun inner() { x = x + 1; print x; } return inner; }
		var f = outer(); f(); f(); f();
	`
	stdout, _, result := run(t, src)
	if result != InterpretOK {
		t.Fatalf("result = %v, want InterpretOK", result)
	}
	if stdout != "2\n3\n4\n" {
		t.Errorf("stdout = %q, want %q", stdout, "2\n3\n4\n")
	}
}

func TestMethodAndEgo(t *testing.T) {
	src := `
		class C { greet() { print "hi " + ego.name; } }
		var c = C(); c.name = "x"; c.greet();
	`
	stdout, _, result := run(t, src)
	if result != InterpretOK {
		t.Fatalf("result = %v, want InterpretOK", result)
	}
	if stdout != "hi x\n" {
		t.Errorf("stdout = %q, want %q", stdout, "hi x\n")
	}
}

func TestInheritanceWithSuperInit(t *testing.T) {
	src := `
		class A { init(n) { ego.n = n; } say() { print ego.n; } }
		class B < A { init(n) { super.init(n + 1); } }
		B(10).say();
	`
	stdout, _, result := run(t, src)
	if result != InterpretOK {
		t.Fatalf("result = %v, want InterpretOK", result)
	}
	if stdout != "11\n" {
		t.Errorf("stdout = %q, want %q", stdout, "11\n")
	}
}

func TestRuntimeErrorTraceback(t *testing.T) {
	src := "fun bad() { return 1 + \"x\"; }\nbad();"
	_, stderr, result := run(t, src)
	if result != InterpretRuntimeError {
		t.Fatalf("result = %v, want InterpretRuntimeError", result)
	}
	if !strings.Contains(stderr, "Operands must be two numbers or two strings.") {
		t.Errorf("stderr = %q, missing the operand-type message", stderr)
	}
	if !strings.Contains(stderr, "[line 1] in bad()") {
		t.Errorf("stderr = %q, missing the bad() frame", stderr)
	}
	if !strings.Contains(stderr, "[line 2] in script") {
		t.Errorf("stderr = %q, missing the script frame", stderr)
	}
}

func TestEmptySourcePrintsNothing(t *testing.T) {
	stdout, stderr, result := run(t, "")
	if result != InterpretOK {
		t.Fatalf("result = %v, want InterpretOK", result)
	}
	if stdout != "" || stderr != "" {
		t.Errorf("empty source produced output: stdout=%q stderr=%q", stdout, stderr)
	}
}

func TestCompileErrorReturnsCompileErrorResult(t *testing.T) {
	_, _, result := run(t, "var ;")
	if result != InterpretCompileError {
		t.Errorf("result = %v, want InterpretCompileError", result)
	}
}

func TestBlockScopeLeavesStackBalanced(t *testing.T) {
	m := New()
	base := m.stackTop
	var result InterpretResult
	captureOutput(t, m, func() {
		result = m.Interpret("{ var a = 1; var b = 2; print a + b; }")
	})
	if result != InterpretOK {
		t.Fatalf("result = %v, want InterpretOK", result)
	}
	if m.stackTop != base {
		t.Errorf("stack top after block = %d, want %d (balanced)", m.stackTop, base)
	}
}

func TestNativeClockReturnsNumber(t *testing.T) {
	stdout, _, result := run(t, "print clock() >= 0;")
	if result != InterpretOK {
		t.Fatalf("result = %v, want InterpretOK", result)
	}
	if stdout != "true\n" {
		t.Errorf("stdout = %q, want %q", stdout, "true\n")
	}
}

// TestNativeClockIsProcessUptimeNotEpoch guards against clock() regressing
// to a wall-clock epoch reading: a brand-new VM's clock() must read as a
// handful of seconds, not the ~1.7e9 seconds since the Unix epoch.
func TestNativeClockIsProcessUptimeNotEpoch(t *testing.T) {
	stdout, _, result := run(t, "print clock() < 1000;")
	if result != InterpretOK {
		t.Fatalf("result = %v, want InterpretOK", result)
	}
	if stdout != "true\n" {
		t.Errorf("stdout = %q, want %q (clock() looks like a wall-clock epoch reading, not process uptime)", stdout, "true\n")
	}
}

// TestStressGCDoesNotSweepFreshlyInternedIdentifiers is a regression guard
// for the GC anchoring invariant: under StressGC every single allocation
// triggers a collection, so if adopt() ever let a brand-new object get
// linked into the object list (and so be visible to the collector) before
// it's reachable from a root, this would deterministically fail with
// "Undefined variable" on code that plainly defines the variable, a class,
// and its methods one statement after another.
func TestStressGCDoesNotSweepFreshlyInternedIdentifiers(t *testing.T) {
	m := New()
	m.StressGC = true
	src := `
		var firstLongIdentifierName = "firstLongIdentifierValue";
		var secondLongIdentifierName = "secondLongIdentifierValue";
		class SomeClassWithALongName {
			methodWithALongName() {
				return ego.firstLongIdentifierName;
			}
		}
		var instance = SomeClassWithALongName();
		instance.firstLongIdentifierName = firstLongIdentifierName;
		print instance.methodWithALongName();
		print secondLongIdentifierName;
	`
	var result InterpretResult
	stdout, stderr := captureOutput(t, m, func() {
		result = m.Interpret(src)
	})
	if result != InterpretOK {
		t.Fatalf("result = %v, want InterpretOK; stderr = %q", result, stderr)
	}
	want := "firstLongIdentifierValue\nsecondLongIdentifierValue\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestWrongArityRuntimeError(t *testing.T) {
	src := "fun f(a, b) { return a + b; } f(1);"
	_, stderr, result := run(t, src)
	if result != InterpretRuntimeError {
		t.Fatalf("result = %v, want InterpretRuntimeError", result)
	}
	if !strings.Contains(stderr, "Expected 2 arguments but got 1.") {
		t.Errorf("stderr = %q, missing the arity error", stderr)
	}
}
