package serializer

import "encoding/binary"

// Int serializes unsigned integers as fixed-width big-endian bytes, so that
// byte-wise comparison equals integer comparison. This resolves spec.md §9
// Open Question 1 in favor of choice (a): big-endian storage, no separate
// tree-level comparator required.
//
// Negative values are not representable; a composite key built over a
// signed integer column does not preserve tuple order under this encoding,
// matching spec.md §3's note that such columns are unsupported.
type Int struct{}

func (Int) Serialize(v any, width int) ([]byte, error) {
	if width <= 0 || width > 8 {
		return nil, ErrWrongWidth
	}

	u, ok := toUint64(v)
	if !ok {
		return nil, ErrUnsupportedType
	}

	if width < 8 && u >= (uint64(1)<<(uint(width)*8)) {
		return nil, ErrWrongWidth
	}

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, u)
	return buf[8-width:], nil
}

func (Int) Deserialize(data []byte) (any, error) {
	if len(data) == 0 || len(data) > 8 {
		return nil, ErrWrongWidth
	}
	var buf [8]byte
	copy(buf[8-len(data):], data)
	return binary.BigEndian.Uint64(buf[:]), nil
}

func toUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case uint32:
		return uint64(n), true
	case uint:
		return uint64(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int32:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	default:
		return 0, false
	}
}
