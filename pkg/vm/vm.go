// Package vm implements the bytecode virtual machine for ego: a
// stack-based interpreter with a call-frame stack, closures with
// upvalues, class dispatch and method binding, running under a tracing
// mark-sweep garbage collector (see gc.go).
//
// Execution pipeline:
//
//	source -> pkg/scanner -> pkg/compiler -> *object.Function -> VM.Interpret
//
// VM.Interpret wraps the compiled top-level function in a closure with no
// upvalues and enters the dispatch loop in run(). Opcodes manipulate the
// value stack and call-frame stack; prints escape to stdout, diagnostics to
// stderr, and the final InterpretResult maps directly to the embedder's
// process exit code (see cmd/ego).
package vm

import (
	"fmt"
	"os"
	"time"

	"github.com/egolang/ego/pkg/chunk"
	"github.com/egolang/ego/pkg/compiler"
	"github.com/egolang/ego/pkg/object"
	"github.com/egolang/ego/pkg/table"
	"github.com/egolang/ego/pkg/value"
)

const (
	stackMax      = 256
	framesMax     = 64
	maxStackSlots = framesMax * stackMax
)

// InterpretResult is the outcome of VM.Interpret, mapped 1:1 onto the CLI's
// process exit codes (0 / 65 / 70).
type InterpretResult int

const (
	InterpretOK InterpretResult = iota
	InterpretCompileError
	InterpretRuntimeError
)

// frame is one call-frame activation record: the closure being executed,
// the instruction pointer into its chunk, and the base of this frame's
// window into the shared value stack (slot 0 is the closure itself for a
// plain call, or the receiver instance for a method/initializer call).
type frame struct {
	closure *object.Closure
	ip      int
	slots   int // index into vm.stack of this frame's slot 0
}

// VM owns every piece of mutable interpreter state: the value stack, the
// call-frame stack, the globals table, the string-intern set, the list of
// currently-open upvalues, and the garbage collector's bookkeeping
// (objects list, bytesAllocated/nextGC - see gc.go).
type VM struct {
	stack    [maxStackSlots]value.Value
	stackTop int

	frames     [framesMax]frame
	frameCount int

	globals *table.Table
	strings *table.Table // the intern set

	openUpvalues *object.Upvalue // head of the list, ordered by descending slot

	objects   object.Object // head of the intrusive all-heap-objects list
	allocator allocator

	initString *object.String

	// compilerRoots holds the function-in-progress of every live compiler,
	// outermost (the script) first - a GC root list maintained via
	// PushCompilerRoot/PopCompilerRoot so a collection triggered while
	// compiling can't sweep a constant that's only reachable from a
	// not-yet-finished chunk.
	compilerRoots []*object.Function

	// startTime is recorded once in New and never mutated; clock() reports
	// elapsed time against it rather than the wall-clock epoch.
	startTime time.Time

	// Stdout/Stderr let callers (tests, the REPL) capture output instead
	// of always writing to the process streams.
	Stdout, Stderr *os.File

	// TraceExec mirrors clox's -DDEBUG_TRACE_EXECUTION: print every
	// instruction (and the stack) right before it executes.
	TraceExec bool
	// StressGC mirrors -DDEBUG_STRESS_GC: collect on every allocation
	// point rather than only once bytesAllocated exceeds nextGC.
	StressGC bool
	// LogGC mirrors -DDEBUG_LOG_GC: narrate each collection's phases.
	LogGC bool
}

// New creates a VM with an empty stack, globals, and a fresh intern set,
// and registers the built-in native functions.
func New() *VM {
	vm := &VM{
		globals:   table.New(),
		strings:   table.New(),
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		startTime: time.Now(),
	}
	vm.allocator.nextGC = 1024 * 1024
	vm.initString = vm.CopyString("init")
	vm.defineNatives()
	return vm
}

// Interpret compiles and runs source, the single entry point the language
// promises its embedders (§6): a UTF-8 source string in, an
// InterpretResult out, stdout/stderr as the only other observable effects.
func (vm *VM) Interpret(source string) InterpretResult {
	fn, err := compiler.Compile(source, vm)
	if err != nil {
		return InterpretCompileError
	}

	closure := object.NewClosure(fn)
	vm.adopt(closure)
	vm.push(closure)
	vm.callClosure(closure, 0)

	return vm.run()
}

// InterpretFunction runs an already-compiled top-level script function,
// the entry point the `run` subcommand's .egc fast path uses to skip
// scanning and compiling entirely.
func (vm *VM) InterpretFunction(fn *object.Function) InterpretResult {
	closure := object.NewClosure(fn)
	vm.adopt(closure)
	vm.push(closure)
	vm.callClosure(closure, 0)
	return vm.run()
}

// InterpretWithDebug is Interpret plus the compiler's -DDEBUG_PRINT_CODE
// equivalent: when printCode is set, every function's chunk is
// disassembled to vm.Stderr as soon as it finishes compiling.
func (vm *VM) InterpretWithDebug(source string, printCode bool) InterpretResult {
	fn, err := compiler.CompileWithDisasm(source, vm, printCode, func(c *chunk.Chunk, name string) {
		DisassembleChunk(vm.Stderr, c, name)
	})
	if err != nil {
		return InterpretCompileError
	}
	closure := object.NewClosure(fn)
	vm.adopt(closure)
	vm.push(closure)
	vm.callClosure(closure, 0)
	return vm.run()
}

// --- stack primitives ---

func (vm *VM) push(v value.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalues = nil
}

// StackTop returns the current top-of-stack value without popping it, or
// nil when the stack is empty.
func (vm *VM) StackTop() value.Value {
	if vm.stackTop == 0 {
		return value.NilValue
	}
	return vm.stack[vm.stackTop-1]
}

// run is the main dispatch loop: decode one instruction from the current
// frame, execute it, repeat until a top-level Return or a runtime error.
func (vm *VM) run() InterpretResult {
	fr := &vm.frames[vm.frameCount-1]

	readByte := func() byte {
		b := fr.closure.Function.Chunk.Code[fr.ip]
		fr.ip++
		return b
	}
	readShort := func() int {
		hi := fr.closure.Function.Chunk.Code[fr.ip]
		lo := fr.closure.Function.Chunk.Code[fr.ip+1]
		fr.ip += 2
		return int(hi)<<8 | int(lo)
	}
	readConstant := func() value.Value {
		return fr.closure.Function.Chunk.Constants[readByte()]
	}
	readString := func() *object.String {
		return readConstant().(*object.String)
	}

	for {
		if vm.TraceExec {
			vm.traceInstruction(fr)
		}

		op := chunk.OpCode(readByte())
		switch op {
		case chunk.OpConstant:
			vm.push(readConstant())

		case chunk.OpNil:
			vm.push(value.NilValue)
		case chunk.OpTrue:
			vm.push(value.Bool(true))
		case chunk.OpFalse:
			vm.push(value.Bool(false))

		case chunk.OpPop:
			vm.pop()

		case chunk.OpGetLocal:
			slot := readByte()
			vm.push(vm.stack[fr.slots+int(slot)])

		case chunk.OpSetLocal:
			slot := readByte()
			vm.stack[fr.slots+int(slot)] = vm.peek(0)

		case chunk.OpGetGlobal:
			name := readString()
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.Go())
			}
			vm.push(v)

		case chunk.OpDefineGlobal:
			name := readString()
			vm.globals.Set(name, vm.peek(0))
			vm.pop()

		case chunk.OpSetGlobal:
			name := readString()
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				return vm.runtimeError("Undefined variable '%s'.", name.Go())
			}

		case chunk.OpGetUpvalue:
			slot := readByte()
			vm.push(*fr.closure.Upvalues[slot].Location)

		case chunk.OpSetUpvalue:
			slot := readByte()
			*fr.closure.Upvalues[slot].Location = vm.peek(0)

		case chunk.OpGetProperty:
			inst, ok := vm.peek(0).(*object.Instance)
			if !ok {
				return vm.runtimeError("Only instances have properties.")
			}
			name := readString()
			if v, ok := inst.Fields.Get(name); ok {
				vm.pop() // instance
				vm.push(v)
				break
			}
			if !vm.bindMethod(inst.Class, name) {
				return InterpretRuntimeError
			}

		case chunk.OpSetProperty:
			inst, ok := vm.peek(1).(*object.Instance)
			if !ok {
				return vm.runtimeError("Only instances have fields.")
			}
			name := readString()
			inst.Fields.Set(name, vm.peek(0))
			v := vm.pop()
			vm.pop() // instance
			vm.push(v)

		case chunk.OpGetSuper:
			name := readString()
			super := vm.pop().(*object.Class)
			if !vm.bindMethod(super, name) {
				return InterpretRuntimeError
			}

		case chunk.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))

		case chunk.OpGreater:
			if r := vm.numericCompare(">"); r != InterpretOK {
				return r
			}
		case chunk.OpLess:
			if r := vm.numericCompare("<"); r != InterpretOK {
				return r
			}

		case chunk.OpAdd:
			if r := vm.add(); r != InterpretOK {
				return r
			}
		case chunk.OpSubtract:
			if r := vm.arith("-"); r != InterpretOK {
				return r
			}
		case chunk.OpMultiply:
			if r := vm.arith("*"); r != InterpretOK {
				return r
			}
		case chunk.OpDivide:
			if r := vm.arith("/"); r != InterpretOK {
				return r
			}

		case chunk.OpNot:
			vm.push(value.Bool(value.IsFalsey(vm.pop())))

		case chunk.OpNegate:
			n, ok := vm.peek(0).(value.Number)
			if !ok {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.pop()
			vm.push(-n)

		case chunk.OpPrint:
			fmt.Fprintf(vm.Stdout, "%s\n", vm.stringify(vm.pop()))

		case chunk.OpJump:
			offset := readShort()
			fr.ip += offset

		case chunk.OpJumpIfFalse:
			offset := readShort()
			if value.IsFalsey(vm.peek(0)) {
				fr.ip += offset
			}

		case chunk.OpLoop:
			offset := readShort()
			fr.ip -= offset

		case chunk.OpCall:
			argCount := int(readByte())
			if !vm.callValue(vm.peek(argCount), argCount) {
				return InterpretRuntimeError
			}
			fr = &vm.frames[vm.frameCount-1]

		case chunk.OpInvoke:
			method := readString()
			argCount := int(readByte())
			if !vm.invoke(method, argCount) {
				return InterpretRuntimeError
			}
			fr = &vm.frames[vm.frameCount-1]

		case chunk.OpSuperInvoke:
			method := readString()
			argCount := int(readByte())
			super := vm.pop().(*object.Class)
			if !vm.invokeFromClass(super, method, argCount) {
				return InterpretRuntimeError
			}
			fr = &vm.frames[vm.frameCount-1]

		case chunk.OpClosure:
			fn := readConstant().(*object.Function)
			closure := object.NewClosure(fn)
			vm.adopt(closure)
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := readByte()
				index := readByte()
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(fr.slots + int(index))
				} else {
					closure.Upvalues[i] = fr.closure.Upvalues[index]
				}
			}
			vm.push(closure)

		case chunk.OpCloseUpvalue:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case chunk.OpReturn:
			result := vm.pop()
			vm.closeUpvalues(fr.slots)
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop() // the top-level script closure
				return InterpretOK
			}
			vm.stackTop = fr.slots
			vm.push(result)
			fr = &vm.frames[vm.frameCount-1]

		case chunk.OpClass:
			name := readString()
			class := object.NewClass(name)
			vm.adopt(class)
			vm.push(class)

		case chunk.OpInherit:
			superVal := vm.peek(1)
			super, ok := superVal.(*object.Class)
			if !ok {
				return vm.runtimeError("Superclass must be a class.")
			}
			subclass := vm.peek(0).(*object.Class)
			super.Methods.AddAll(subclass.Methods)
			vm.pop() // drop the subclass reference; the superclass underneath is the "super" local

		case chunk.OpMethod:
			vm.defineMethod(readString())

		default:
			return vm.runtimeError("Unknown opcode %d.", op)
		}
	}
}
