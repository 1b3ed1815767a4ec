package object

import "testing"

func TestHeaderMarking(t *testing.T) {
	s := NewString([]byte("hi"), HashBytes([]byte("hi")))
	if s.Marked() {
		t.Fatalf("new object starts marked")
	}
	s.SetMarked(true)
	if !s.Marked() {
		t.Errorf("SetMarked(true) did not stick")
	}
	s.SetMarked(false)
	if s.Marked() {
		t.Errorf("SetMarked(false) did not stick")
	}
}

func TestHeaderNextList(t *testing.T) {
	a := NewString([]byte("a"), HashBytes([]byte("a")))
	b := NewString([]byte("b"), HashBytes([]byte("b")))
	a.SetNext(b)
	if a.Next() != Object(b) {
		t.Errorf("Next() did not return the object passed to SetNext")
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{KindString, "string"},
		{KindFunction, "function"},
		{KindNative, "native"},
		{KindClosure, "closure"},
		{KindUpvalue, "upvalue"},
		{KindClass, "class"},
		{KindInstance, "instance"},
		{KindBoundMethod, "bound method"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.k, got, tt.want)
		}
	}
}

func TestStringHashAndKey(t *testing.T) {
	bytes := []byte("hello")
	hash := HashBytes(bytes)
	s := NewString(bytes, hash)

	if s.Kind() != KindString {
		t.Errorf("Kind() = %v, want KindString", s.Kind())
	}
	if s.Go() != "hello" {
		t.Errorf("Go() = %q, want %q", s.Go(), "hello")
	}
	if string(s.KeyBytes()) != "hello" {
		t.Errorf("KeyBytes() = %q, want %q", s.KeyBytes(), "hello")
	}
	if s.KeyHash() != hash {
		t.Errorf("KeyHash() = %d, want %d", s.KeyHash(), hash)
	}
}

func TestHashBytesDeterministic(t *testing.T) {
	a := HashBytes([]byte("same content"))
	b := HashBytes([]byte("same content"))
	if a != b {
		t.Errorf("HashBytes is not deterministic: %d != %d", a, b)
	}
	c := HashBytes([]byte("different content"))
	if a == c {
		t.Errorf("HashBytes produced the same hash for different content (allowed in principle, suspicious in practice)")
	}
}

func TestFunctionDisplayName(t *testing.T) {
	fn := NewFunction()
	if got := fn.DisplayName(); got != "script" {
		t.Errorf("DisplayName() for anonymous function = %q, want %q", got, "script")
	}

	fn.Name = NewString([]byte("greet"), HashBytes([]byte("greet")))
	if got := fn.DisplayName(); got != "greet" {
		t.Errorf("DisplayName() = %q, want %q", got, "greet")
	}
}
