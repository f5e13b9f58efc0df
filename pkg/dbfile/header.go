// Package dbfile encodes and decodes the fixed metadata page that lives at
// page number 1 of every tree file. It holds the tree configuration
// (page size, order, key/value widths, serializer identity) plus the two
// fields that change on every mutation: the root page number and the live
// entry count.
package dbfile

import (
	"encoding/binary"
	"errors"
)

const (
	// HeaderSize is the encoded size of the metadata page in bytes. It is
	// small and fixed; the remainder of page 1 is unused padding so the
	// metadata page occupies exactly one page regardless of PageSize.
	HeaderSize = 48

	// MagicString identifies a valid tree file. Must be exactly 8 bytes.
	MagicString = "BPTREE01"

	// DefaultPageSize is used when a tree is created without an explicit
	// page size.
	DefaultPageSize = 4096

	// FormatVersion is the only metadata page layout this package knows
	// how to read and write.
	FormatVersion = 1
)

const (
	offsetMagic         = 0  // 8 bytes
	offsetVersion       = 8  // 2 bytes
	offsetPageSize      = 10 // 4 bytes
	offsetOrder         = 14 // 4 bytes
	offsetKeySize       = 18 // 2 bytes
	offsetValueSize     = 20 // 2 bytes
	offsetSerializerTag = 22 // 2 bytes
	offsetRootPageNo    = 24 // 4 bytes
	offsetEntryCount    = 28 // 8 bytes
	// offset 36..HeaderSize reserved for future fields, zero-filled.
)

var (
	ErrInvalidMagic    = errors.New("dbfile: not a tree file (bad magic)")
	ErrHeaderTooShort  = errors.New("dbfile: metadata page too short")
	ErrInvalidPageSize = errors.New("dbfile: invalid page size")
)

// Header is the decoded form of the metadata page.
type Header struct {
	Version       uint16
	PageSize      uint32
	Order         uint32 // maximum children per internal node
	KeySize       uint16 // fixed encoded key width in bytes
	ValueSize     uint16 // fixed encoded value width in bytes
	SerializerTag uint16 // identifies the key serializer/comparator in use
	RootPageNo    uint32
	EntryCount    uint64 // total live key/value pairs, maintained incrementally
}

// NewHeader returns a header with the given tree configuration and an
// empty tree (root page 0 meaning "not yet allocated", zero entries).
func NewHeader(pageSize, order uint32, keySize, valueSize, serializerTag uint16) *Header {
	return &Header{
		Version:       FormatVersion,
		PageSize:      pageSize,
		Order:         order,
		KeySize:       keySize,
		ValueSize:     valueSize,
		SerializerTag: serializerTag,
		RootPageNo:    0,
		EntryCount:    0,
	}
}

// Encode serializes the header into a HeaderSize-byte slice suitable for
// writing at offset 0 of page 1.
func (h *Header) Encode() []byte {
	data := make([]byte, HeaderSize)

	copy(data[offsetMagic:], MagicString)
	binary.BigEndian.PutUint16(data[offsetVersion:], h.Version)
	binary.BigEndian.PutUint32(data[offsetPageSize:], h.PageSize)
	binary.BigEndian.PutUint32(data[offsetOrder:], h.Order)
	binary.BigEndian.PutUint16(data[offsetKeySize:], h.KeySize)
	binary.BigEndian.PutUint16(data[offsetValueSize:], h.ValueSize)
	binary.BigEndian.PutUint16(data[offsetSerializerTag:], h.SerializerTag)
	binary.BigEndian.PutUint32(data[offsetRootPageNo:], h.RootPageNo)
	binary.BigEndian.PutUint64(data[offsetEntryCount:], h.EntryCount)

	return data
}

// DecodeHeader parses a metadata page previously produced by Encode.
func DecodeHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, ErrHeaderTooShort
	}
	if string(data[offsetMagic:offsetMagic+8]) != MagicString {
		return nil, ErrInvalidMagic
	}

	h := &Header{
		Version:       binary.BigEndian.Uint16(data[offsetVersion:]),
		PageSize:      binary.BigEndian.Uint32(data[offsetPageSize:]),
		Order:         binary.BigEndian.Uint32(data[offsetOrder:]),
		KeySize:       binary.BigEndian.Uint16(data[offsetKeySize:]),
		ValueSize:     binary.BigEndian.Uint16(data[offsetValueSize:]),
		SerializerTag: binary.BigEndian.Uint16(data[offsetSerializerTag:]),
		RootPageNo:    binary.BigEndian.Uint32(data[offsetRootPageNo:]),
		EntryCount:    binary.BigEndian.Uint64(data[offsetEntryCount:]),
	}

	return h, nil
}
