package vm

import (
	"fmt"
	"time"

	"github.com/egolang/ego/pkg/object"
	"github.com/egolang/ego/pkg/value"
)

// nativeDef is one entry in the native-function registry: a name, its
// fixed arity (checked here rather than inside each function body so every
// native gets the same "Expected N arguments" diagnostic), and the Go
// function that implements it.
type nativeDef struct {
	name  string
	arity int
	fn    func(args []value.Value) (value.Value, error)
}

// nativeRegistryFor builds every host function embedders get for free. The
// registration mechanism can hold more than one entry, but the language's
// no-I/O, no-filesystem contract keeps the actual function set to exactly
// clock() - seconds elapsed since this VM was created (vm.startTime),
// useful for timing benchmarking loops without exposing the wall-clock
// epoch.
func nativeRegistryFor(vm *VM) []nativeDef {
	return []nativeDef{
		{name: "clock", arity: 0, fn: func(args []value.Value) (value.Value, error) {
			return value.Number(time.Since(vm.startTime).Seconds()), nil
		}},
	}
}

func (vm *VM) defineNatives() {
	for _, def := range nativeRegistryFor(vm) {
		vm.defineNative(def)
	}
}

func (vm *VM) defineNative(def nativeDef) {
	arity := def.arity
	fn := def.fn
	native := object.NewNative(def.name, func(args []value.Value) (value.Value, error) {
		if len(args) != arity {
			return nil, fmt.Errorf("Expected %d arguments but got %d.", arity, len(args))
		}
		return fn(args)
	})
	vm.adopt(native)
	// Anchor native and name on the stack until both are in the globals
	// table: CopyString can run a collection, and neither value is
	// reachable from any other root before the Set call.
	vm.push(native)
	name := vm.CopyString(def.name)
	vm.push(name)
	vm.globals.Set(name, native)
	vm.pop()
	vm.pop()
}
