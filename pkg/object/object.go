// Package object implements ego's heap object model: every value that
// doesn't fit in a Value's inline variants (string, function, closure,
// upvalue, class, instance, bound method) lives here as a heap-allocated
// object reachable from the VM's object list and the garbage collector.
package object

import "github.com/egolang/ego/pkg/value"

// Kind distinguishes the heap object variants.
type Kind int

const (
	KindString Kind = iota
	KindFunction
	KindNative
	KindClosure
	KindUpvalue
	KindClass
	KindInstance
	KindBoundMethod
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	case KindNative:
		return "native"
	case KindClosure:
		return "closure"
	case KindUpvalue:
		return "upvalue"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	case KindBoundMethod:
		return "bound method"
	default:
		return "unknown"
	}
}

// Object is implemented by every heap object. It extends value.Value so
// that an *String, *Closure, *Class, etc. can be stored directly wherever
// a Value is expected - there is no separate "boxed object" wrapper.
type Object interface {
	value.Value
	Kind() Kind

	// Marked reports the GC mark bit; SetMarked sets it. The collector
	// uses these during mark/sweep; they are otherwise unused by the
	// runtime. Next/SetNext thread the object onto the VM's intrusive
	// list of every live heap object, used only by the sweep phase.
	Marked() bool
	SetMarked(bool)
	Next() Object
	SetNext(Object)
}

// Header is embedded in every concrete object type. It carries the GC mark
// bit and the next-pointer that threads every live object onto the VM's
// singleton object list (append-at-head; list order carries no meaning).
type Header struct {
	marked bool
	next   Object
}

func (h *Header) Marked() bool    { return h.marked }
func (h *Header) SetMarked(m bool) { h.marked = m }
func (h *Header) Next() Object    { return h.next }
func (h *Header) SetNext(n Object) { h.next = n }

// Type implements value.Value for every heap object: they all report
// value.TypeObject, and Kind() (above) distinguishes the variant.
func (*Header) Type() value.Type { return value.TypeObject }
