package object

import "github.com/egolang/ego/pkg/table"

// Instance is a reference to its class plus a field table. Fields are not
// declared ahead of time; the first assignment to ego.foo creates the
// "foo" entry.
type Instance struct {
	Header
	Class  *Class
	Fields *table.Table
}

func (*Instance) Kind() Kind { return KindInstance }

func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: table.New()}
}
