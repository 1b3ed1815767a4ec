package object

import "github.com/egolang/ego/pkg/value"

// NativeFn is the signature every host function must implement: given the
// arguments pushed for the call (receiver excluded), return a result value
// or an error that becomes a runtime error in the calling ego code.
type NativeFn func(args []value.Value) (value.Value, error)

// Native wraps a host function so it can be called like any other ego
// callable. The VM's built-in registry (clock, see pkg/vm) is the only
// producer of these.
type Native struct {
	Header
	Name string
	Fn   NativeFn
}

func (*Native) Kind() Kind { return KindNative }

func NewNative(name string, fn NativeFn) *Native {
	return &Native{Name: name, Fn: fn}
}
