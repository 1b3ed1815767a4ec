package chunk

import (
	"testing"

	"github.com/egolang/ego/pkg/value"
)

func TestWriteTracksLines(t *testing.T) {
	c := &Chunk{}
	c.WriteOp(OpNil, 1)
	c.WriteOp(OpTrue, 2)
	c.Write(0xFF, 3)

	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	wantLines := []int{1, 2, 3}
	for i, want := range wantLines {
		if c.Lines[i] != want {
			t.Errorf("Lines[%d] = %d, want %d", i, c.Lines[i], want)
		}
	}
	if OpCode(c.Code[0]) != OpNil || OpCode(c.Code[1]) != OpTrue || c.Code[2] != 0xFF {
		t.Errorf("Code = %v, want [OpNil, OpTrue, 0xFF]", c.Code)
	}
}

func TestAddConstant(t *testing.T) {
	c := &Chunk{}
	i0 := c.AddConstant(value.Number(1))
	i1 := c.AddConstant(value.Number(2))

	if i0 != 0 || i1 != 1 {
		t.Fatalf("AddConstant indices = %d, %d; want 0, 1", i0, i1)
	}
	if c.Constants[i0] != value.Number(1) || c.Constants[i1] != value.Number(2) {
		t.Errorf("Constants = %v, want [1, 2]", c.Constants)
	}
}

func TestMaxConstantsMatchesOneByteOperand(t *testing.T) {
	if MaxConstants != 256 {
		t.Errorf("MaxConstants = %d, want 256 (a constant index must fit in one byte)", MaxConstants)
	}
}
