package object

// Closure is a runtime callable: a Function plus the resolved upvalues it
// captured at the point it was created. The same Function may be wrapped
// by many distinct Closures (a fresh one is allocated every time an OpCode
// Closure instruction runs), each with its own upvalue bindings.
type Closure struct {
	Header
	Function *Function
	Upvalues []*Upvalue
}

func (*Closure) Kind() Kind { return KindClosure }

// NewClosure allocates a closure wrapping fn, with Upvalues sized (but not
// yet populated) to fn's upvalue count.
func NewClosure(fn *Function) *Closure {
	return &Closure{Function: fn, Upvalues: make([]*Upvalue, fn.UpvalueCount)}
}
