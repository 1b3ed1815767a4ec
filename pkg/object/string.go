package object

// String is an immutable interned string. All runtime strings are created
// through the VM's intern set (see pkg/vm's CopyString/TakeString) so that two strings
// with identical bytes are always the same *String - string equality
// reduces to pointer equality, and *String can be used directly as a
// table.Key.
type String struct {
	Header
	Bytes []byte
	Hash  uint32
}

func (*String) Kind() Kind { return KindString }

// Go returns the Go-native string view of the bytes, for printing.
func (s *String) Go() string { return string(s.Bytes) }

// KeyBytes and KeyHash implement table.Key, letting *String be used
// directly as a key in instance field tables, class method tables, the
// globals table, and the VM's own intern set.
func (s *String) KeyBytes() []byte { return s.Bytes }
func (s *String) KeyHash() uint32  { return s.Hash }

// fnv1aOffset and fnv1aPrime are the standard 32-bit FNV-1a constants.
const (
	fnv1aOffset uint32 = 2166136261
	fnv1aPrime  uint32 = 16777619
)

// HashBytes computes the 32-bit FNV-1a hash of b, used both to populate a
// new String's cached Hash and to probe the intern table by raw content
// before allocating anything.
func HashBytes(b []byte) uint32 {
	h := fnv1aOffset
	for _, c := range b {
		h ^= uint32(c)
		h *= fnv1aPrime
	}
	return h
}

// NewString constructs a String object directly from bytes and a
// precomputed hash. Callers outside this package should go through the
// VM's intern set (CopyString/TakeString) rather than calling this directly, so that
// the "every reachable string is interned" invariant holds; this
// constructor exists so the VM can build the candidate before deciding
// whether interning found an existing match.
func NewString(bytes []byte, hash uint32) *String {
	return &String{Bytes: bytes, Hash: hash}
}
