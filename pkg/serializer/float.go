package serializer

import (
	"encoding/binary"
	"math"
)

// Float serializes a float64 as its raw IEEE-754 big-endian bit pattern,
// grounded on original_source's FloatCol (struct.pack("d", value)). Unlike
// Int, this encoding is NOT order-preserving under byte comparison, so
// Float columns must never back a tree key or a CompositeKey column —
// only ordinary record value columns.
type Float struct{}

func (Float) Serialize(v any, width int) ([]byte, error) {
	if width != 8 {
		return nil, ErrWrongWidth
	}
	f, ok := v.(float64)
	if !ok {
		return nil, ErrUnsupportedType
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, math.Float64bits(f))
	return buf, nil
}

func (Float) Deserialize(data []byte) (any, error) {
	if len(data) != 8 {
		return nil, ErrWrongWidth
	}
	return math.Float64frombits(binary.BigEndian.Uint64(data)), nil
}
