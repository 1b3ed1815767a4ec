package object

import "github.com/egolang/ego/pkg/value"

// BoundMethod pairs a receiver with a method closure. It is what
// GetProperty produces when the named table entry turns out to be a method
// rather than a field: `ego.greet` where greet is a method yields a
// BoundMethod that, when called, runs greet's closure with Receiver
// installed as slot 0.
type BoundMethod struct {
	Header
	Receiver value.Value
	Method   *Closure
}

func (*BoundMethod) Kind() Kind { return KindBoundMethod }

func NewBoundMethod(receiver value.Value, method *Closure) *BoundMethod {
	return &BoundMethod{Receiver: receiver, Method: method}
}
