// Package serializer implements the fixed-width, order-preserving key/value
// codecs the B+ tree core consumes. A Serializer only ever produces or
// accepts byte strings of an exact declared width; the tree never inspects
// the encoded value beyond comparing bytes.
package serializer

import (
	"bytes"
	"errors"
)

// ErrWrongWidth is returned when a caller asks for an encoding that does not
// fit in the requested width, or hands back a buffer of the wrong size.
var ErrWrongWidth = errors.New("serializer: value does not fit requested width")

// ErrUnsupportedType is returned when Serialize is given a Go value the
// serializer does not know how to encode.
var ErrUnsupportedType = errors.New("serializer: unsupported value type")

// Serializer is the capability the tree requires of a key or value codec:
// fixed-width encode/decode. Implementations used for keys MUST be
// order-preserving on the domain they accept, i.e. for values a < b,
// Serialize(a) < Serialize(b) under a byte-wise comparison. Float is the one
// built-in that is not, and is used only for record value columns.
type Serializer interface {
	// Serialize encodes v into exactly width bytes, or fails.
	Serialize(v any, width int) ([]byte, error)
	// Deserialize decodes a previously-serialized value.
	Deserialize(data []byte) (any, error)
}

// Comparator is an optional capability a Serializer may implement when its
// encoding does not sort the same way bytes.Compare would (the built-in
// serializers below do not need it; it exists for the benefit of serializers
// supplied by the record layer on top of this package). When a Serializer
// does not implement Comparator, the tree falls back to lexicographic byte
// comparison, per spec.md §6.
type Comparator interface {
	Compare(a, b []byte) int
}

// Compare orders two encoded keys using s's Comparator capability if present,
// falling back to plain byte comparison otherwise.
func Compare(s Serializer, a, b []byte) int {
	if c, ok := s.(Comparator); ok {
		return c.Compare(a, b)
	}
	return bytes.Compare(a, b)
}
