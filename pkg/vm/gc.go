package vm

import (
	"fmt"

	"github.com/egolang/ego/pkg/object"
	"github.com/egolang/ego/pkg/table"
	"github.com/egolang/ego/pkg/value"
)

// growFactor is how much nextGC scales by after each collection; a
// collection that barely frees anything still doubles the threshold so the
// collector doesn't thrash on a heap that's genuinely growing.
const growFactor = 2

// allocator tracks the bytes the VM believes it has allocated on ego's
// behalf (heap objects only - the Go runtime's own bookkeeping is not
// counted) and the threshold at which the next collection runs.
type allocator struct {
	bytesAllocated int
	nextGC         int
}

// sizeOf is a rough per-Kind accounting unit. ego does not track byte-exact
// allocation sizes (Go doesn't expose them cheaply); what matters is that
// larger objects count for more, so nextGC scales with actual heap
// pressure rather than pure object count.
func sizeOf(obj object.Object) int {
	switch o := obj.(type) {
	case *object.String:
		return 32 + len(o.Bytes)
	case *object.Upvalue:
		return 32
	case *object.Closure:
		return 24 + 8*len(o.Upvalues)
	case *object.Function:
		return 48
	case *object.Native:
		return 24
	case *object.Class:
		return 24
	case *object.Instance:
		return 24
	case *object.BoundMethod:
		return 24
	default:
		return 16
	}
}

// adopt threads a freshly-allocated object onto the VM's object list and
// charges its size against the allocator, triggering a collection first if
// the budget is already exhausted (or always, under StressGC).
//
// The collection check runs before obj is linked into vm.objects or
// charged against bytesAllocated: obj isn't reachable from any root yet
// (the caller hasn't pushed it, stored it in a field, etc.) and a
// collection that could see it in vm.objects would find it unmarked and
// sweep it away before the caller ever gets it back. Running collect()
// first means it only ever walks objects that were already linked in -
// and therefore already anchored by whatever earlier adopt/push calls put
// them there - so obj is never at risk from its own allocating call.
func (vm *VM) adopt(obj object.Object) object.Object {
	if vm.StressGC {
		vm.collect()
	} else if vm.allocator.bytesAllocated > vm.allocator.nextGC {
		vm.collect()
	}

	obj.SetNext(vm.objects)
	vm.objects = obj
	vm.allocator.bytesAllocated += sizeOf(obj)
	return obj
}

// collect runs one full tracing mark-sweep cycle: mark every root-reachable
// object, trace outward from each until the gray worklist is empty, drop
// any intern-set entry whose string didn't get marked, sweep every
// unmarked object from the object list, then rearm nextGC.
func (vm *VM) collect() {
	if vm.LogGC {
		fmt.Fprintln(vm.Stderr, "-- gc begin")
	}
	before := vm.allocator.bytesAllocated

	var gray []object.Object
	// reached records every object marked this cycle. Functions are never
	// linked into vm.objects, so sweep cannot clear their mark bits; they
	// are cleared from this list instead, or the next cycle would skip
	// tracing them and lose their constants.
	var reached []object.Object
	mark := func(v value.Value) {
		if obj, ok := v.(object.Object); ok && obj != nil && !obj.Marked() {
			obj.SetMarked(true)
			gray = append(gray, obj)
			reached = append(reached, obj)
		}
	}

	vm.markRoots(mark)
	for len(gray) > 0 {
		obj := gray[len(gray)-1]
		gray = gray[:len(gray)-1]
		vm.blacken(obj, mark)
	}

	// The intern set is not a root: strings that survive only as intern-set
	// entries, with no other reference left anywhere, must not stay in the
	// set forever - drop any key whose mark didn't land.
	vm.strings.DeleteWhere(func(key table.Key) bool {
		obj, ok := key.(object.Object)
		return ok && !obj.Marked()
	})

	vm.sweep()
	for _, obj := range reached {
		obj.SetMarked(false)
	}

	vm.allocator.nextGC = vm.allocator.bytesAllocated * growFactor
	if vm.allocator.nextGC == 0 {
		vm.allocator.nextGC = 1024 * 1024
	}

	if vm.LogGC {
		fmt.Fprintf(vm.Stderr, "-- gc end   collected %d bytes (from %d to %d) next at %d\n",
			before-vm.allocator.bytesAllocated, before, vm.allocator.bytesAllocated, vm.allocator.nextGC)
	}
}

// markRoots marks every object directly reachable from VM state rather
// than from another heap object: the value stack, every call frame's
// closure, every currently-open upvalue, the globals table, the
// initializer-selector string, and the function-in-progress of every live
// compiler (compilerRoots - see PushCompilerRoot/PopCompilerRoot).
func (vm *VM) markRoots(mark func(value.Value)) {
	for i := 0; i < vm.stackTop; i++ {
		mark(vm.stack[i])
	}
	for i := 0; i < vm.frameCount; i++ {
		mark(vm.frames[i].closure)
	}
	for up := vm.openUpvalues; up != nil; up = up.NextOpen {
		mark(up)
	}
	vm.globals.Each(func(key table.Key, val value.Value) {
		if obj, ok := key.(object.Object); ok {
			mark(obj)
		}
		mark(val)
	})
	if vm.initString != nil {
		mark(vm.initString)
	}
	for _, fn := range vm.compilerRoots {
		mark(fn)
	}
}

// blacken traces obj's own references, marking (graying) whatever it
// points to. Strings and natives have no outgoing references; every other
// variant, functions included, traces its references below.
func (vm *VM) blacken(obj object.Object, mark func(value.Value)) {
	switch o := obj.(type) {
	case *object.Function:
		if o.Name != nil {
			mark(o.Name)
		}
		for _, c := range o.Chunk.Constants {
			mark(c)
		}
	case *object.Closure:
		mark(o.Function)
		for _, up := range o.Upvalues {
			mark(up)
		}
	case *object.Upvalue:
		mark(*o.Location)
	case *object.Class:
		mark(o.Name)
		o.Methods.Each(func(_ table.Key, val value.Value) { mark(val) })
	case *object.Instance:
		mark(o.Class)
		o.Fields.Each(func(key table.Key, val value.Value) {
			if keyObj, ok := key.(object.Object); ok {
				mark(keyObj)
			}
			mark(val)
		})
	case *object.BoundMethod:
		mark(o.Receiver)
		mark(o.Method)
	}
}

// sweep walks the intrusive all-objects list, unlinking and discarding
// every object that didn't get marked this cycle, and clears the mark bit
// on every object that survives (ready for the next cycle).
func (vm *VM) sweep() {
	var prev object.Object
	obj := vm.objects
	for obj != nil {
		if obj.Marked() {
			obj.SetMarked(false)
			prev = obj
			obj = obj.Next()
			continue
		}
		unreached := obj
		obj = obj.Next()
		if prev == nil {
			vm.objects = obj
		} else {
			prev.SetNext(obj)
		}
		vm.allocator.bytesAllocated -= sizeOf(unreached)
	}
}
