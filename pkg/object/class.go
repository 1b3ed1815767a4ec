package object

import "github.com/egolang/ego/pkg/table"

// Class is a name and a method table mapping selector name -> *Closure.
// Inheritance is "copy-down": OpInherit copies every entry of the
// superclass's Methods into the subclass's Methods at class-definition
// time, so later mutation of the superclass (there is none at runtime in
// this language, but the semantics are worth stating) would not be seen by
// already-defined subclasses.
type Class struct {
	Header
	Name    *String
	Methods *table.Table
}

func (*Class) Kind() Kind { return KindClass }

func NewClass(name *String) *Class {
	return &Class{Name: name, Methods: table.New()}
}
