// pkg/types/value.go
package types

import "time"

// ValueType represents the type of a record column value.
type ValueType int

const (
	TypeNull ValueType = iota
	TypeInt
	TypeFloat
	TypeText
	TypeBlob
	TypeUUID
	TypeDatetime
)

// Value represents a single typed column value, independent of how it
// is ultimately packed into a fixed-width column slot by the record
// layer.
type Value struct {
	typ     ValueType
	intVal  int64
	fltVal  float64
	txtVal  string
	blobVal []byte
	uuidVal [16]byte
	timeVal time.Time
}

func NewNull() Value {
	return Value{typ: TypeNull}
}

func NewInt(i int64) Value {
	return Value{typ: TypeInt, intVal: i}
}

func NewFloat(f float64) Value {
	return Value{typ: TypeFloat, fltVal: f}
}

func NewText(s string) Value {
	return Value{typ: TypeText, txtVal: s}
}

func NewBlob(b []byte) Value {
	if b == nil {
		return Value{typ: TypeBlob}
	}
	copied := make([]byte, len(b))
	copy(copied, b)
	return Value{typ: TypeBlob, blobVal: copied}
}

func NewUUID(u [16]byte) Value {
	return Value{typ: TypeUUID, uuidVal: u}
}

func NewDatetimeUTC(t time.Time) Value {
	return Value{typ: TypeDatetime, timeVal: t.UTC()}
}

func (v Value) Type() ValueType { return v.typ }
func (v Value) IsNull() bool    { return v.typ == TypeNull }
func (v Value) Int() int64      { return v.intVal }
func (v Value) Float() float64  { return v.fltVal }
func (v Value) Text() string    { return v.txtVal }

func (v Value) Blob() []byte {
	if v.blobVal == nil {
		return nil
	}
	copied := make([]byte, len(v.blobVal))
	copy(copied, v.blobVal)
	return copied
}

func (v Value) UUID() [16]byte       { return v.uuidVal }
func (v Value) DatetimeUTC() time.Time { return v.timeVal }
