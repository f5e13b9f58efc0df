// Package record is the external record layer sketched by spec.md §6: a
// pure encode/decode adapter that turns typed rows into the fixed-width
// (key, value) byte pairs the tree consumes. It performs no I/O of its
// own and has no influence on the tree's invariants.
package record

import (
	"errors"

	"bptreekv/pkg/serializer"
	"bptreekv/pkg/types"
)

var (
	// ErrNullNotAllowed is returned when a non-nullable column has no
	// value and no default.
	ErrNullNotAllowed = errors.New("record: column does not allow null")

	// ErrUnknownColumn is returned for a column name not present in the
	// schema.
	ErrUnknownColumn = errors.New("record: unknown column")

	// ErrDuplicateColumn is returned by NewSchema for a repeated column
	// name.
	ErrDuplicateColumn = errors.New("record: duplicate column name")

	// ErrValueTooWide is returned when a value's encoding (including, for
	// variable-width columns, its length prefix) does not fit the
	// column's declared Width.
	ErrValueTooWide = errors.New("record: value does not fit its column width")

	// ErrKeyColumnUnsupported is returned when a key is built over a
	// column kind whose encoding is not order-preserving.
	ErrKeyColumnUnsupported = errors.New("record: column kind cannot be used as a key")
)

// Column describes one fixed-width slot of a Row: a name, a value kind,
// an encoded width, and the nullable/default/unique metadata carried
// from original_source's per-type Column subclasses (IntCol, StrCol,
// UUIDCol, DatetimeCol, FloatCol). Unique is recorded for a caller's own
// bookkeeping; the tree itself enforces no uniqueness beyond "insert
// replaces an existing key".
type Column struct {
	Name     string
	Kind     types.ValueType
	Width    int
	Default  types.Value
	Nullable bool
	Unique   bool
}

// codec returns the fixed-width serializer backing Kind, or nil for the
// variable-width kinds (Text, Blob) that Row encodes itself with a
// varint length prefix rather than delegating to a serializer.Serializer.
func (c Column) codec() serializer.Serializer {
	switch c.Kind {
	case types.TypeInt:
		return serializer.Int{}
	case types.TypeFloat:
		return serializer.Float{}
	case types.TypeUUID:
		return serializer.UUID{}
	case types.TypeDatetime:
		return serializer.DatetimeUTC{}
	default:
		return nil
	}
}

func (c Column) isVariableWidth() bool {
	return c.Kind == types.TypeText || c.Kind == types.TypeBlob
}
