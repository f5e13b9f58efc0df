package types

import (
	"testing"
	"time"
)

func TestValueAccessors(t *testing.T) {
	if !NewNull().IsNull() {
		t.Error("NewNull() should be null")
	}
	if got := NewInt(42).Int(); got != 42 {
		t.Errorf("Int() = %d, want 42", got)
	}
	if got := NewFloat(3.5).Float(); got != 3.5 {
		t.Errorf("Float() = %v, want 3.5", got)
	}
	if got := NewText("hello").Text(); got != "hello" {
		t.Errorf("Text() = %q, want hello", got)
	}
}

func TestValueBlobIsCopied(t *testing.T) {
	src := []byte{1, 2, 3}
	v := NewBlob(src)
	src[0] = 0xff

	got := v.Blob()
	if got[0] != 1 {
		t.Errorf("Blob() should not alias caller's slice, got %v", got)
	}

	got[1] = 0xff
	if v.Blob()[1] != 2 {
		t.Error("Blob() should return a fresh copy on each call")
	}
}

func TestValueDatetimeIsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	local := time.Date(2024, 1, 1, 12, 0, 0, 0, loc)

	v := NewDatetimeUTC(local)
	if v.DatetimeUTC().Location() != time.UTC {
		t.Error("DatetimeUTC() should normalize to UTC")
	}
	if !v.DatetimeUTC().Equal(local) {
		t.Error("DatetimeUTC() should preserve the instant")
	}
}
