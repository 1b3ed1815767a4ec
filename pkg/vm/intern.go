package vm

import (
	"github.com/egolang/ego/pkg/object"
	"github.com/egolang/ego/pkg/value"
)

// CopyString interns bytes, allocating a new *object.String only if an
// identical one isn't already in vm.strings. It satisfies compiler.Interner,
// which is how the compiler's string and identifier literals end up sharing
// storage with every runtime string without pkg/compiler ever importing
// pkg/vm.
func (vm *VM) CopyString(s string) *object.String {
	bytes := []byte(s)
	hash := object.HashBytes(bytes)
	if key, ok := vm.strings.FindString(bytes, hash); ok {
		return key.(*object.String)
	}
	str := object.NewString(append([]byte(nil), bytes...), hash)
	vm.adopt(str)
	// The push keeps str reachable from the stack while strings.Set runs.
	// The intern set itself does not anchor it: it is not a GC root, and
	// collect drops entries whose string went unmarked (see gc.go).
	vm.push(str)
	vm.strings.Set(str, value.Bool(true))
	vm.pop()
	return str
}

// PushCompilerRoot registers fn as a GC root for the duration of its
// compilation, satisfying compiler.Interner. markRoots walks this list
// (see gc.go) so a collection triggered mid-compile - by interning an
// identifier or string literal, for instance - can't treat a
// constant-pool entry of an in-progress function as unreached just
// because nothing at the VM/runtime level references it yet.
func (vm *VM) PushCompilerRoot(fn *object.Function) {
	vm.compilerRoots = append(vm.compilerRoots, fn)
}

// PopCompilerRoot unregisters the innermost compiler root, called once
// that function's compilation has finished and it's about to be stored as
// a constant in its (still-rooted) enclosing chunk, or returned to the
// embedder at the top level.
func (vm *VM) PopCompilerRoot() {
	vm.compilerRoots = vm.compilerRoots[:len(vm.compilerRoots)-1]
}

// TakeString interns bytes without copying them first, for callers (string
// concatenation) that already own a freshly-allocated, otherwise-unshared
// byte slice.
func (vm *VM) TakeString(bytes []byte) *object.String {
	hash := object.HashBytes(bytes)
	if key, ok := vm.strings.FindString(bytes, hash); ok {
		return key.(*object.String)
	}
	str := object.NewString(bytes, hash)
	vm.adopt(str)
	vm.push(str)
	vm.strings.Set(str, value.Bool(true))
	vm.pop()
	return str
}
