package btree

import "bytes"

// CompareFunc orders two encoded keys the same way the tree's serializer
// does. The tree calls this on raw key bytes only; it never knows the
// application-level value a key encodes.
type CompareFunc func(a, b []byte) int

// DefaultCompare is lexicographic byte comparison, correct for any
// order-preserving encoding (the common case — see pkg/serializer).
func DefaultCompare(a, b []byte) int {
	return bytes.Compare(a, b)
}
