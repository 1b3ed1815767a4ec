package object

import "github.com/egolang/ego/pkg/chunk"

// Function is a compile-time artifact: a chunk of bytecode plus the
// metadata the VM needs to call it. It is immutable once the compiler
// finishes with it; the same Function may be wrapped by many Closures
// (e.g. a function returned from inside a loop captures a fresh closure
// each iteration but they all share one Function).
type Function struct {
	Header
	Name         *String // nil for the implicit top-level "script" function
	Arity        int
	UpvalueCount int
	Chunk        *chunk.Chunk
}

func (*Function) Kind() Kind { return KindFunction }

// NewFunction allocates a fresh Function with an empty chunk, ready for the
// compiler to emit into.
func NewFunction() *Function {
	return &Function{Chunk: &chunk.Chunk{}}
}

// DisplayName returns the function's name for tracebacks and printing, or
// "script" for the implicit top-level function.
func (f *Function) DisplayName() string {
	if f.Name == nil {
		return "script"
	}
	return f.Name.Go()
}
