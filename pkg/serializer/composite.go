package serializer

import (
	"bytes"
	"errors"
)

// ErrColumnCount is returned when a composite value's arity does not match
// the configured column list.
var ErrColumnCount = errors.New("serializer: composite value has wrong column count")

// Column describes one column of a CompositeKey: its codec and its fixed
// encoded width.
type Column struct {
	Serializer Serializer
	Width      int
}

// Composite concatenates a fixed sequence of per-column, order-preserving
// encodings into one key, per spec.md §3's CompositeKey definition. Byte-wise
// comparison of two Composite-encoded keys equals lexicographic comparison
// of the underlying column tuples, provided every column encoding is itself
// order-preserving and every column is encoded at its fixed Width (float and
// signed-integer columns are therefore unsupported, per spec.md §3).
type Composite struct {
	Columns []Column
}

// TotalWidth returns the sum of all column widths, i.e. the fixed width of
// any key this Composite produces.
func (c Composite) TotalWidth() int {
	total := 0
	for _, col := range c.Columns {
		total += col.Width
	}
	return total
}

// Serialize encodes v, which must be a []any of length len(c.Columns), one
// value per column in order.
func (c Composite) Serialize(v any, width int) ([]byte, error) {
	values, ok := v.([]any)
	if !ok {
		return nil, ErrUnsupportedType
	}
	if len(values) != len(c.Columns) {
		return nil, ErrColumnCount
	}
	if width != c.TotalWidth() {
		return nil, ErrWrongWidth
	}

	out := make([]byte, 0, width)
	for i, col := range c.Columns {
		encoded, err := col.Serializer.Serialize(values[i], col.Width)
		if err != nil {
			return nil, err
		}
		out = append(out, encoded...)
	}
	return out, nil
}

// Deserialize splits data back into one value per column, returning []any.
func (c Composite) Deserialize(data []byte) (any, error) {
	if len(data) != c.TotalWidth() {
		return nil, ErrWrongWidth
	}

	values := make([]any, len(c.Columns))
	offset := 0
	for i, col := range c.Columns {
		v, err := col.Serializer.Deserialize(data[offset : offset+col.Width])
		if err != nil {
			return nil, err
		}
		values[i] = v
		offset += col.Width
	}
	return values, nil
}

// Compare is a no-op Comparator: concatenation of fixed-width,
// order-preserving column encodings already sorts correctly under plain
// byte comparison, so this simply documents that fact explicitly rather
// than leaving it implicit. Exists to satisfy the optional Comparator
// capability described in spec.md §6.
func (c Composite) Compare(a, b []byte) int {
	return bytes.Compare(a, b)
}

// Encode is a convenience wrapper around Serialize for callers that already
// hold a column-value tuple, returning the raw key bytes directly.
func (c Composite) Encode(values ...any) ([]byte, error) {
	encoded, err := c.Serialize(any(values), c.TotalWidth())
	if err != nil {
		return nil, err
	}
	return encoded, nil
}
