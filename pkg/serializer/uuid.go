package serializer

// UUID serializes a 16-byte UUID in its raw big-endian form. The raw byte
// layout of a UUID already sorts consistently with itself, so no further
// transformation is needed.
type UUID struct{}

func (UUID) Serialize(v any, width int) ([]byte, error) {
	if width != 16 {
		return nil, ErrWrongWidth
	}

	switch u := v.(type) {
	case [16]byte:
		out := make([]byte, 16)
		copy(out, u[:])
		return out, nil
	case []byte:
		if len(u) != 16 {
			return nil, ErrWrongWidth
		}
		out := make([]byte, 16)
		copy(out, u)
		return out, nil
	default:
		return nil, ErrUnsupportedType
	}
}

func (UUID) Deserialize(data []byte) (any, error) {
	if len(data) != 16 {
		return nil, ErrWrongWidth
	}
	var out [16]byte
	copy(out[:], data)
	return out, nil
}
