package value

import "testing"

func TestIsFalsey(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"nil", Nil{}, true},
		{"false", Bool(false), true},
		{"true", Bool(true), false},
		{"zero", Number(0), false},
		{"nonzero", Number(42), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFalsey(tt.v); got != tt.want {
				t.Errorf("IsFalsey(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"nil==nil", Nil{}, Nil{}, true},
		{"true==true", Bool(true), Bool(true), true},
		{"true!=false", Bool(true), Bool(false), false},
		{"1==1", Number(1), Number(1), true},
		{"1!=2", Number(1), Number(2), false},
		{"nil!=false (different variant)", Nil{}, Bool(false), false},
		{"0!=false (different variant)", Number(0), Bool(false), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{TypeNil, "nil"},
		{TypeBool, "bool"},
		{TypeNumber, "number"},
		{TypeObject, "object"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("Type(%d).String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}
