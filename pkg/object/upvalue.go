package object

import "github.com/egolang/ego/pkg/value"

// Upvalue is a captured variable, shared between a closure and the stack
// slot it was captured from. It has two states:
//
//   - open:   Location points at a live VM stack slot (*value.Value); the
//     VM keeps a single list of every open upvalue so that closures
//     capturing the same slot share one Upvalue object (closing over a
//     variable twice yields the same upvalue, not two).
//   - closed: Location points at the Upvalue's own Closed field, which now
//     owns the value; this happens when the stack slot the upvalue pointed
//     into is about to go out of scope (a block ends, or the function
//     returns).
//
// Representing both states with the same Location-pointer trick (rather
// than a sum type) means every read/write of an upvalue, open or closed, is
// just "*u.Location" - the VM does not need to branch on state after the
// upvalue is created.
type Upvalue struct {
	Header
	Location *value.Value
	Closed   value.Value

	// Next threads this upvalue onto the VM's open-upvalue list, ordered
	// by descending stack slot address. Unrelated to Header.Next, which
	// threads it onto the GC's all-objects list; an upvalue lives on both
	// lists simultaneously while open.
	NextOpen *Upvalue
}

func (*Upvalue) Kind() Kind { return KindUpvalue }

// NewOpenUpvalue creates an upvalue pointing at a live stack slot.
func NewOpenUpvalue(slot *value.Value) *Upvalue {
	return &Upvalue{Location: slot}
}

// Close copies the current value out of the stack slot into the upvalue's
// own storage and repoints Location at that storage, transitioning the
// upvalue from open to closed.
func (u *Upvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
}
