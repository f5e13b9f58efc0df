package serializer

// Str serializes a UTF-8 string, right-padded with 0x00 to the requested
// width. Deserialize strips the trailing padding. Because 0x00 sorts before
// every other byte, this padding preserves lexicographic string order as
// long as no encoded string itself contains a NUL byte.
type Str struct{}

func (Str) Serialize(v any, width int) ([]byte, error) {
	s, ok := v.(string)
	if !ok {
		return nil, ErrUnsupportedType
	}
	if len(s) > width {
		return nil, ErrWrongWidth
	}

	buf := make([]byte, width)
	copy(buf, s)
	return buf, nil
}

func (Str) Deserialize(data []byte) (any, error) {
	end := len(data)
	for end > 0 && data[end-1] == 0x00 {
		end--
	}
	return string(data[:end]), nil
}
