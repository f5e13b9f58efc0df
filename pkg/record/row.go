package record

import (
	"time"

	"bptreekv/internal/encoding"
	"bptreekv/pkg/types"
)

// Row is one schema-shaped tuple of typed values, ready to pack into a
// tree value slot or already unpacked from one.
type Row struct {
	schema *Schema
	values []types.Value
}

// NewRow builds a Row from a name->value map. A column whose value is
// omitted or explicitly Null falls back to its Default; if the column is
// not Nullable and has no Default either, construction fails — the same
// validation original_source's schema layer performs before it ever
// looks at serialization.
func NewRow(schema *Schema, values map[string]types.Value) (*Row, error) {
	out := make([]types.Value, len(schema.Columns))
	for i, col := range schema.Columns {
		v, present := values[col.Name]
		if !present || v.IsNull() {
			if !col.Nullable && col.Default.IsNull() {
				return nil, ErrNullNotAllowed
			}
			v = col.Default
		}
		out[i] = v
	}
	return &Row{schema: schema, values: out}, nil
}

// Get returns the value stored for a named column.
func (r *Row) Get(name string) (types.Value, bool) {
	i, ok := r.schema.ColumnIndex(name)
	if !ok {
		return types.Value{}, false
	}
	return r.values[i], true
}

// Encode packs the row into schema.RowWidth() bytes: one fixed-width
// slot per column, concatenated in schema order. Variable-width columns
// (Text, Blob) are stored as a varint length prefix followed by content,
// zero-padded to Width.
func (r *Row) Encode() ([]byte, error) {
	buf := make([]byte, r.schema.RowWidth())
	offset := 0
	for i, col := range r.schema.Columns {
		slot := buf[offset : offset+col.Width]
		if err := encodeColumnValue(col, r.values[i], slot); err != nil {
			return nil, err
		}
		offset += col.Width
	}
	return buf, nil
}

// DecodeRow unpacks a value slot previously produced by Row.Encode back
// into typed column values.
func DecodeRow(schema *Schema, data []byte) (*Row, error) {
	if len(data) != schema.RowWidth() {
		return nil, ErrValueTooWide
	}
	values := make([]types.Value, len(schema.Columns))
	offset := 0
	for i, col := range schema.Columns {
		slot := data[offset : offset+col.Width]
		v, err := decodeColumnValue(col, slot)
		if err != nil {
			return nil, err
		}
		values[i] = v
		offset += col.Width
	}
	return &Row{schema: schema, values: values}, nil
}

func encodeColumnValue(col Column, v types.Value, slot []byte) error {
	if col.isVariableWidth() {
		var content []byte
		if col.Kind == types.TypeText {
			content = []byte(v.Text())
		} else {
			content = v.Blob()
		}
		n := encoding.VarintLen(uint64(len(content)))
		if n+len(content) > len(slot) {
			return ErrValueTooWide
		}
		encoding.PutVarint(slot, uint64(len(content)))
		copy(slot[n:], content)
		return nil
	}

	codec := col.codec()
	encoded, err := codec.Serialize(valueFor(col, v), col.Width)
	if err != nil {
		return err
	}
	copy(slot, encoded)
	return nil
}

func decodeColumnValue(col Column, slot []byte) (types.Value, error) {
	if col.isVariableWidth() {
		length, n := encoding.GetVarint(slot)
		if n+int(length) > len(slot) {
			return types.Value{}, ErrValueTooWide
		}
		content := slot[n : n+int(length)]
		if col.Kind == types.TypeText {
			return types.NewText(string(content)), nil
		}
		return types.NewBlob(content), nil
	}

	codec := col.codec()
	decoded, err := codec.Deserialize(slot)
	if err != nil {
		return types.Value{}, err
	}
	return wrapValue(col, decoded), nil
}

// valueFor unwraps a types.Value into the Go value its column codec
// expects.
func valueFor(col Column, v types.Value) any {
	switch col.Kind {
	case types.TypeInt:
		return uint64(v.Int())
	case types.TypeFloat:
		return v.Float()
	case types.TypeUUID:
		return v.UUID()
	case types.TypeDatetime:
		return v.DatetimeUTC()
	case types.TypeText:
		return v.Text()
	default:
		return nil
	}
}

func wrapValue(col Column, decoded any) types.Value {
	switch col.Kind {
	case types.TypeInt:
		return types.NewInt(int64(decoded.(uint64)))
	case types.TypeFloat:
		return types.NewFloat(decoded.(float64))
	case types.TypeUUID:
		return types.NewUUID(decoded.([16]byte))
	case types.TypeDatetime:
		return types.NewDatetimeUTC(decoded.(time.Time))
	default:
		return types.Value{}
	}
}
