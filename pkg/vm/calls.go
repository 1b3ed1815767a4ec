package vm

import (
	"unsafe"

	"github.com/egolang/ego/pkg/object"
	"github.com/egolang/ego/pkg/value"
)

// callValue dispatches OpCall: the callee sits at stack depth argCount,
// with its arguments above it. Each heap-object variant responds to being
// called differently - bound methods rewrite the call to run against their
// stored receiver, classes allocate a new instance and run its
// initializer, closures push a fresh call frame, and natives run
// immediately and push their own result. Anything else is a runtime error.
func (vm *VM) callValue(callee value.Value, argCount int) bool {
	switch c := callee.(type) {
	case *object.BoundMethod:
		vm.stack[vm.stackTop-argCount-1] = c.Receiver
		return vm.callClosure(c.Method, argCount)
	case *object.Class:
		inst := object.NewInstance(c)
		vm.adopt(inst)
		vm.stack[vm.stackTop-argCount-1] = inst
		if init, ok := c.Methods.Get(vm.initString); ok {
			return vm.callClosure(init.(*object.Closure), argCount)
		}
		if argCount != 0 {
			vm.runtimeError("Expected 0 arguments but got %d.", argCount)
			return false
		}
		return true
	case *object.Closure:
		return vm.callClosure(c, argCount)
	case *object.Native:
		args := vm.stack[vm.stackTop-argCount : vm.stackTop]
		result, err := c.Fn(args)
		if err != nil {
			vm.runtimeError("%s", err.Error())
			return false
		}
		vm.stackTop -= argCount + 1
		vm.push(result)
		return true
	default:
		vm.runtimeError("Can only call functions and classes.")
		return false
	}
}

// callClosure checks arity and pushes a new call frame for closure,
// positioned so that frame.slots+0 is the callee itself (plain calls) or
// the receiver instance the caller already placed there (method and
// initializer calls) - the invariant every function body relies on for
// `ego`/parameter access.
func (vm *VM) callClosure(closure *object.Closure, argCount int) bool {
	if argCount != closure.Function.Arity {
		vm.runtimeError("Expected %d arguments but got %d.", closure.Function.Arity, argCount)
		return false
	}
	if vm.frameCount == framesMax {
		vm.runtimeError("Stack overflow.")
		return false
	}
	fr := &vm.frames[vm.frameCount]
	vm.frameCount++
	fr.closure = closure
	fr.ip = 0
	fr.slots = vm.stackTop - argCount - 1
	return true
}

// invoke implements OpInvoke: a fast path for `receiver.name(args)` that
// never materializes an intermediate BoundMethod. A field named name is
// called directly as the callee; otherwise invokeFromClass calls the
// class's method with the receiver already in slot 0.
func (vm *VM) invoke(name *object.String, argCount int) bool {
	receiver := vm.peek(argCount)
	inst, ok := receiver.(*object.Instance)
	if !ok {
		vm.runtimeError("Only instances have methods.")
		return false
	}
	if v, ok := inst.Fields.Get(name); ok {
		vm.stack[vm.stackTop-argCount-1] = v
		return vm.callValue(v, argCount)
	}
	return vm.invokeFromClass(inst.Class, name, argCount)
}

func (vm *VM) invokeFromClass(class *object.Class, name *object.String, argCount int) bool {
	m, ok := class.Methods.Get(name)
	if !ok {
		vm.runtimeError("Undefined property '%s'.", name.Go())
		return false
	}
	return vm.callClosure(m.(*object.Closure), argCount)
}

// bindMethod looks up name in class's method table and, on success,
// replaces the receiver on top of the stack with a fresh BoundMethod. It
// returns false (having already reported a runtime error) if the method
// doesn't exist.
func (vm *VM) bindMethod(class *object.Class, name *object.String) bool {
	m, ok := class.Methods.Get(name)
	if !ok {
		vm.runtimeError("Undefined property '%s'.", name.Go())
		return false
	}
	bound := object.NewBoundMethod(vm.peek(0), m.(*object.Closure))
	vm.adopt(bound)
	vm.pop()
	vm.push(bound)
	return true
}

func (vm *VM) defineMethod(name *object.String) {
	method := vm.pop().(*object.Closure)
	class := vm.peek(0).(*object.Class)
	class.Methods.Set(name, method)
}

// captureUpvalue returns the open upvalue for the stack slot at absolute
// index slot, creating one if none exists yet. The open-upvalue list is
// kept sorted by descending slot so that two closures capturing the same
// variable share one Upvalue object rather than getting independent
// copies.
func (vm *VM) captureUpvalue(slot int) *object.Upvalue {
	target := &vm.stack[slot]
	var prev *object.Upvalue
	up := vm.openUpvalues
	for up != nil && addrOf(up.Location) > addrOf(target) {
		prev = up
		up = up.NextOpen
	}
	if up != nil && up.Location == target {
		return up
	}

	created := object.NewOpenUpvalue(target)
	vm.adopt(created)
	created.NextOpen = up
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.NextOpen = created
	}
	return created
}

func addrOf(loc *value.Value) uintptr {
	return uintptr(unsafe.Pointer(loc))
}

// closeUpvalues closes every open upvalue whose captured slot is at or
// above the absolute index lastSlot, copying the live value into the
// upvalue's own storage before the stack slot it pointed at goes out of
// scope (block end, function return).
func (vm *VM) closeUpvalues(lastSlot int) {
	threshold := addrOf(&vm.stack[lastSlot])
	for vm.openUpvalues != nil && addrOf(vm.openUpvalues.Location) >= threshold {
		up := vm.openUpvalues
		up.Close()
		vm.openUpvalues = up.NextOpen
	}
}
