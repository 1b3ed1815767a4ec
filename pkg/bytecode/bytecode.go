// Package bytecode implements ego's .egc bytecode file format: a way to
// pre-compile a source file once and skip scanning/parsing on every
// subsequent run. It exists for the same reason the previous incarnation
// of this package (keyed on a different, AST-derived instruction set) did
// - the "compile" and "disassemble" CLI subcommands need something
// concrete to read and write - but the on-disk shape here wraps
// pkg/chunk/pkg/object's own bytecode representation directly rather than
// defining a second, parallel instruction set.
//
// This package, not pkg/chunk or pkg/object, owns serialization because it
// is the one place that may safely import both: pkg/object already imports
// pkg/chunk (a Function embeds a Chunk), so putting Encode/Decode in either
// of those packages would either create an import cycle or require
// serialization code to know nothing about the object types actually
// stored in a constant pool.
//
// File Format Specification:
//
//	[Header]
//	  Magic   (4 bytes): "EGC\x00"
//	  Version (1 byte):  format version, currently 1
//	[Body]
//	  gob-encoded envelope{ Script *object.Function }
//
// The constant pool inside a Chunk may hold value.Number, *object.String,
// and *object.Function (for nested function/method bodies, whose own Chunk
// constants recurse the same way) - every concrete value.Value
// implementation Encode/Decode can produce is registered with gob in
// init().
//
// This format is deliberately not clox-derived: clox never serializes
// bytecode to disk. It is closer to Java .class files or Python .pyc files
// in spirit - a way to skip the front end on repeat runs - but uses gob
// instead of a hand-rolled binary layout, since gob already knows how to
// walk the recursive Chunk-inside-Function-inside-Chunk shape without
// hand-written nested length-prefixed records.
package bytecode

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/egolang/ego/pkg/object"
	"github.com/egolang/ego/pkg/value"
)

var magic = [4]byte{'E', 'G', 'C', 0}

const formatVersion = 1

func init() {
	gob.Register(value.Nil{})
	gob.Register(value.Bool(false))
	gob.Register(value.Number(0))
	gob.Register(&object.String{})
	gob.Register(&object.Function{})
}

type envelope struct {
	Script *object.Function
}

// Encode writes fn - the implicit top-level "script" function a compile
// produces - to w in the .egc format.
func Encode(fn *object.Function, w io.Writer) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if _, err := w.Write([]byte{formatVersion}); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(envelope{Script: fn}); err != nil {
		return fmt.Errorf("encoding bytecode: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Decode reads an .egc file from r and returns its top-level script
// function, ready to be wrapped in a closure and run.
func Decode(r io.Reader) (*object.Function, error) {
	var header [5]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("reading bytecode header: %w", err)
	}
	if header[0] != magic[0] || header[1] != magic[1] || header[2] != magic[2] || header[3] != magic[3] {
		return nil, fmt.Errorf("not an ego bytecode file (bad magic)")
	}
	if header[4] != formatVersion {
		return nil, fmt.Errorf("unsupported bytecode format version %d", header[4])
	}
	var env envelope
	if err := gob.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding bytecode: %w", err)
	}
	return env.Script, nil
}
