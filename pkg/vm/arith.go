package vm

import (
	"fmt"

	"github.com/egolang/ego/pkg/object"
	"github.com/egolang/ego/pkg/value"
)

// numericCompare implements OpGreater/OpLess: pop b, a (in that order so
// the operator reads left-to-right) and push a<op>b. Both operands must be
// numbers; there is no mixed-type ordering in this language.
func (vm *VM) numericCompare(op string) InterpretResult {
	b, bOK := vm.peek(0).(value.Number)
	a, aOK := vm.peek(1).(value.Number)
	if !aOK || !bOK {
		return vm.runtimeError("Operands must be numbers.")
	}
	vm.pop()
	vm.pop()
	switch op {
	case ">":
		vm.push(value.Bool(a > b))
	case "<":
		vm.push(value.Bool(a < b))
	}
	return InterpretOK
}

// add implements OpAdd: number+number is arithmetic, string+string is
// concatenation (interned through TakeString), and any other combination
// is a runtime error.
func (vm *VM) add() InterpretResult {
	bVal, aVal := vm.peek(0), vm.peek(1)

	if bNum, ok := bVal.(value.Number); ok {
		if aNum, ok := aVal.(value.Number); ok {
			vm.pop()
			vm.pop()
			vm.push(aNum + bNum)
			return InterpretOK
		}
	}

	if bStr, ok := bVal.(*object.String); ok {
		if aStr, ok := aVal.(*object.String); ok {
			vm.pop()
			vm.pop()
			concatenated := make([]byte, 0, len(aStr.Bytes)+len(bStr.Bytes))
			concatenated = append(concatenated, aStr.Bytes...)
			concatenated = append(concatenated, bStr.Bytes...)
			vm.push(vm.TakeString(concatenated))
			return InterpretOK
		}
	}

	return vm.runtimeError("Operands must be two numbers or two strings.")
}

// arith implements OpSubtract/OpMultiply/OpDivide, all of which require
// both operands to be numbers.
func (vm *VM) arith(op string) InterpretResult {
	b, bOK := vm.peek(0).(value.Number)
	a, aOK := vm.peek(1).(value.Number)
	if !aOK || !bOK {
		return vm.runtimeError("Operands must be numbers.")
	}
	vm.pop()
	vm.pop()
	switch op {
	case "-":
		vm.push(a - b)
	case "*":
		vm.push(a * b)
	case "/":
		vm.push(a / b)
	}
	return InterpretOK
}

// stringify renders a value the way OpPrint and the disassembler/tracer
// expect to see it - not used for string+string concatenation, which stays
// as raw bytes via add().
func (vm *VM) stringify(v value.Value) string {
	return stringifyValue(v)
}

func stringifyValue(v value.Value) string {
	switch val := v.(type) {
	case value.Nil:
		return "nil"
	case value.Bool:
		if val {
			return "true"
		}
		return "false"
	case value.Number:
		return formatNumber(float64(val))
	case *object.String:
		return val.Go()
	case *object.Function:
		return fmt.Sprintf("<fn %s>", val.DisplayName())
	case *object.Native:
		return fmt.Sprintf("<native fn %s>", val.Name)
	case *object.Closure:
		return fmt.Sprintf("<fn %s>", val.Function.DisplayName())
	case *object.Class:
		return val.Name.Go()
	case *object.Instance:
		return fmt.Sprintf("%s instance", val.Class.Name.Go())
	case *object.BoundMethod:
		return fmt.Sprintf("<fn %s>", val.Method.Function.DisplayName())
	default:
		return fmt.Sprintf("%v", v)
	}
}

// formatNumber prints integral floats without a trailing ".0" and
// everything else with Go's shortest round-tripping representation,
// matching the reference interpreter's printf("%g")-like behavior.
func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return fmt.Sprintf("%d", int64(n))
	}
	return fmt.Sprintf("%g", n)
}
