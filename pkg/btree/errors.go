package btree

import "errors"

var (
	// ErrInvalidArgument covers wrong-length keys/values, unsupported
	// comparison operators, and v1 > v2 in a range query.
	ErrInvalidArgument = errors.New("btree: invalid argument")

	// ErrReachedEndOfFile is returned when a requested page lies beyond
	// the end of the file and is absent from the WAL overlay; the tree
	// maps the paged memory layer's pager.ErrPageNotFound to it.
	ErrReachedEndOfFile = errors.New("btree: reached end of file")

	// ErrCorruptedFile is returned when a page fails to decode into a
	// well-formed node (bad node_type, used_entries beyond capacity).
	ErrCorruptedFile = errors.New("btree: corrupted file")

	// ErrClosedTree is returned by any public operation on a tree that
	// is not in the Open state.
	ErrClosedTree = errors.New("btree: tree is closed")
)
