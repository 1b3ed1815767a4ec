// Package table implements the open-addressed hash table that backs every
// string-keyed map in the ego runtime: instance fields, class method
// tables, the VM's global-variable table, and the VM's string-intern set.
//
// It is a direct, from-scratch linear-probing table (no use of Go's
// built-in map) because the runtime needs two things map[string]T can't
// give it cheaply: a "find-by-raw-bytes-and-hash" probe used to intern
// strings without first allocating a Go string, and stable iteration over
// live entries for the garbage collector to mark keys and values as roots.
//
// Design (mirrors the reference table exactly):
//   - Capacity is always a power of two, starting at 8, doubling on rehash.
//   - A slot is empty iff its key is nil.
//   - A slot is a tombstone iff its key is nil and its value is Bool(true)
//     (this is the one place a nil key does NOT mean "empty"; deleted
//     entries keep probing alive for the keys that were inserted after
//     them).
//   - count tracks live entries plus tombstones; a rehash is triggered
//     when count+1 would exceed 75% of capacity, and rehashing drops
//     tombstones, resetting count to the number of genuinely live entries.
package table

import "github.com/egolang/ego/pkg/value"

// Key is anything that can be a table key: an interned string. The table
// package never imports the object package (which would create an import
// cycle, since objects are stored as table values and classes/instances
// embed tables); instead it asks only for the two properties it actually
// needs to probe and compare keys.
//
// Two Keys denote the same table slot iff they are == as Go interface
// values - i.e. the same heap identity. Because all ego strings are
// interned (see pkg/object), two keys with identical bytes are always the
// same Key, so identity comparison is sufficient and is exactly what the
// reference table does with pointer comparison.
type Key interface {
	KeyBytes() []byte
	KeyHash() uint32
}

const initialCapacity = 8
const maxLoadFactor = 0.75

type entry struct {
	key   Key
	value value.Value
}

func (e entry) isEmpty() bool {
	return e.key == nil && e.value == nil
}

func (e entry) isTombstone() bool {
	if e.key != nil {
		return false
	}
	b, ok := e.value.(value.Bool)
	return ok && bool(b)
}

// Table is an open-addressed, linear-probing hash table keyed by Key.
type Table struct {
	entries []entry
	count   int // live entries + tombstones
}

// New returns an empty table. The zero value of Table is also usable and
// behaves identically; New exists for readability at call sites.
func New() *Table {
	return &Table{}
}

// Count reports the number of live entries (tombstones are not counted).
func (t *Table) Count() int {
	n := 0
	for _, e := range t.entries {
		if e.key != nil {
			n++
		}
	}
	return n
}

// Get looks up key and reports whether it was present.
func (t *Table) Get(key Key) (value.Value, bool) {
	if len(t.entries) == 0 {
		return nil, false
	}
	idx := t.findEntry(t.entries, key)
	e := &t.entries[idx]
	if e.key == nil {
		return nil, false
	}
	return e.value, true
}

// Set inserts or overwrites key -> val. It reports true if key was not
// already present (whether it lands in an empty slot or reuses a
// tombstone), false if an existing entry was overwritten.
func (t *Table) Set(key Key, val value.Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*maxLoadFactor {
		t.adjustCapacity(growCapacity(len(t.entries)))
	}

	idx := t.findEntry(t.entries, key)
	e := &t.entries[idx]
	isNewKey := e.key == nil
	if isNewKey && e.isEmpty() {
		// Only a truly empty slot grows the live+tombstone count; reusing
		// a tombstone does not.
		t.count++
	}
	e.key = key
	e.value = val
	return isNewKey
}

// Delete removes key, replacing its slot with a tombstone so that later
// entries that probed past it are still reachable. Reports whether the key
// was present.
func (t *Table) Delete(key Key) bool {
	if len(t.entries) == 0 {
		return false
	}
	idx := t.findEntry(t.entries, key)
	e := &t.entries[idx]
	if e.key == nil {
		return false
	}
	e.key = nil
	e.value = value.Bool(true) // tombstone marker
	return true
}

// FindString probes the table by raw content rather than by an existing
// Key, for string interning: given the candidate string's bytes and
// precomputed hash, it returns the existing Key with identical content, if
// any, without allocating a new key first.
func (t *Table) FindString(bytes []byte, hash uint32) (Key, bool) {
	if len(t.entries) == 0 {
		return nil, false
	}
	capacity := len(t.entries)
	index := hash & uint32(capacity-1)
	for {
		e := &t.entries[index]
		switch {
		case e.key == nil:
			if !e.isTombstone() {
				return nil, false
			}
		default:
			if e.key.KeyHash() == hash && bytesEqual(e.key.KeyBytes(), bytes) {
				return e.key, true
			}
		}
		index = (index + 1) & uint32(capacity-1)
	}
}

// AddAll copies every live entry of t into dst, used by class inheritance
// to implement copy-down method tables: the subclass's method table starts
// as a full copy of the superclass's at Inherit time, and later Method
// writes on the subclass shadow the copies without touching the
// superclass.
func (t *Table) AddAll(dst *Table) {
	for _, e := range t.entries {
		if e.key != nil {
			dst.Set(e.key, e.value)
		}
	}
}

// Each calls fn for every live entry. Used by the garbage collector to mark
// table contents.
func (t *Table) Each(fn func(key Key, val value.Value)) {
	for _, e := range t.entries {
		if e.key != nil {
			fn(e.key, e.value)
		}
	}
}

// DeleteWhere removes every live entry for which pred returns true. Used by
// the collector to strip intern-set entries whose string is about to be
// swept.
func (t *Table) DeleteWhere(pred func(key Key) bool) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.key != nil && pred(e.key) {
			e.key = nil
			e.value = value.Bool(true)
		}
	}
}

func (t *Table) findEntry(entries []entry, key Key) int {
	capacity := len(entries)
	index := key.KeyHash() & uint32(capacity-1)
	var tombstone = -1
	for {
		e := &entries[index]
		switch {
		case e.key == nil:
			if e.isTombstone() {
				if tombstone == -1 {
					tombstone = int(index)
				}
			} else {
				if tombstone != -1 {
					return tombstone
				}
				return int(index)
			}
		case e.key == key:
			return int(index)
		}
		index = (index + 1) & uint32(capacity-1)
	}
}

func (t *Table) adjustCapacity(capacity int) {
	fresh := make([]entry, capacity)
	liveCount := 0
	for _, e := range t.entries {
		if e.key == nil {
			continue // drop tombstones and empty slots
		}
		idx := t.findEntry(fresh, e.key)
		fresh[idx] = e
		liveCount++
	}
	t.entries = fresh
	t.count = liveCount
}

func growCapacity(capacity int) int {
	if capacity < initialCapacity {
		return initialCapacity
	}
	return capacity * 2
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
