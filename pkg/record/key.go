package record

import (
	"bptreekv/pkg/serializer"
	"bptreekv/pkg/types"
)

// CompositeKey extracts and encodes a fixed-width tree key from one or
// more named columns of a Row, per spec.md §3's CompositeKey definition.
// A single-column key is just a CompositeKey of arity one; see
// NewKeyColumn.
type CompositeKey struct {
	schema  *Schema
	columns []string
	comp    serializer.Composite
}

// codecForKey returns the order-preserving, fixed-width codec for a key
// column. This differs from Column.codec for text: a key column uses
// serializer.Str's zero-padded fixed-width encoding (order-preserving),
// never the varint length-prefixed scheme Row uses for an ordinary text
// value column, since the latter does not sort lexicographically.
func codecForKey(kind types.ValueType) serializer.Serializer {
	switch kind {
	case types.TypeInt:
		return serializer.Int{}
	case types.TypeUUID:
		return serializer.UUID{}
	case types.TypeDatetime:
		return serializer.DatetimeUTC{}
	case types.TypeText:
		return serializer.Str{}
	default:
		return nil
	}
}

// NewCompositeKey builds a key extractor over schema's columns, in the
// order given. Float and Blob columns are rejected: Float's IEEE-754
// encoding is not order-preserving, and Blob has no declared order-
// preserving fixed-width codec in this package.
func NewCompositeKey(schema *Schema, columnNames ...string) (*CompositeKey, error) {
	comp := serializer.Composite{}
	for _, name := range columnNames {
		i, ok := schema.ColumnIndex(name)
		if !ok {
			return nil, ErrUnknownColumn
		}
		col := schema.Columns[i]
		codec := codecForKey(col.Kind)
		if codec == nil {
			return nil, ErrKeyColumnUnsupported
		}
		comp.Columns = append(comp.Columns, serializer.Column{Serializer: codec, Width: col.Width})
	}
	return &CompositeKey{schema: schema, columns: columnNames, comp: comp}, nil
}

// NewKeyColumn is the common single-column case of NewCompositeKey.
func NewKeyColumn(schema *Schema, columnName string) (*CompositeKey, error) {
	return NewCompositeKey(schema, columnName)
}

// Width is the fixed byte width of every key this extractor produces.
func (k *CompositeKey) Width() int { return k.comp.TotalWidth() }

// Encode extracts and encodes the key columns from row, in the order the
// extractor was built with.
func (k *CompositeKey) Encode(row *Row) ([]byte, error) {
	values := make([]any, len(k.columns))
	for i, name := range k.columns {
		idx, ok := k.schema.ColumnIndex(name)
		if !ok {
			return nil, ErrUnknownColumn
		}
		v, _ := row.Get(name)
		values[i] = valueFor(k.schema.Columns[idx], v)
	}
	return k.comp.Encode(values...)
}
