package btree

import (
	"errors"
	"sync"

	"bptreekv/pkg/dbfile"
	"bptreekv/pkg/pager"
)

// State is the tree's open/close lifecycle state (spec.md §4.E).
type State int

const (
	StateClosed State = iota
	StateOpen
	StateClosing
)

// Config is declared in node.go; Tree additionally needs a comparator.

// Tree is the public B+ tree API: point lookup, ordered range scans,
// batch insertion, and durable commit via the underlying paged memory.
type Tree struct {
	mu sync.Mutex

	mem pager.PagedMemory
	cfg Config
	cmp CompareFunc

	state      State
	rootPageNo uint32
	entryCount uint64
}

// Open loads an existing tree from mem's metadata page, or initializes a
// new one with the given shape if mem has none yet. cmp may be nil to use
// DefaultCompare (lexicographic byte order, correct for any
// order-preserving key encoding).
func Open(mem pager.PagedMemory, cfg Config, cmp CompareFunc) (*Tree, error) {
	if cmp == nil {
		cmp = DefaultCompare
	}

	header, err := mem.Header()
	if err != nil {
		return nil, err
	}

	t := &Tree{mem: mem, cmp: cmp, state: StateOpen}

	if header.RootPageNo == 0 {
		// Fresh tree: persist the requested shape and create an empty root
		// leaf.
		if cfg.PageSize <= 0 {
			cfg.PageSize = dbfile.DefaultPageSize
		}
		if cfg.Order < 3 {
			return nil, ErrInvalidArgument
		}
		t.cfg = cfg

		rootPageNo, err := mem.NextPageNo()
		if err != nil {
			return nil, err
		}
		root := NewLeaf(rootPageNo)

		if err := mem.SetPage(rootPageNo, root.Encode(t.cfg)); err != nil {
			return nil, err
		}

		newHeader := dbfile.NewHeader(uint32(cfg.PageSize), uint32(cfg.Order), uint16(cfg.KeySize), uint16(cfg.ValueSize), 0)
		newHeader.RootPageNo = rootPageNo
		if err := mem.SetHeader(newHeader); err != nil {
			return nil, err
		}
		if err := mem.Commit(); err != nil {
			return nil, err
		}

		t.rootPageNo = rootPageNo
		t.entryCount = 0
		return t, nil
	}

	t.cfg = Config{
		PageSize:  int(header.PageSize),
		Order:     int(header.Order),
		KeySize:   int(header.KeySize),
		ValueSize: int(header.ValueSize),
	}
	t.rootPageNo = header.RootPageNo
	t.entryCount = header.EntryCount

	return t, nil
}

func (t *Tree) requireOpen() error {
	if t.state != StateOpen {
		return ErrClosedTree
	}
	return nil
}

func (t *Tree) getNode(pageNo uint32) (*Node, error) {
	data, err := t.mem.GetPage(pageNo)
	if err != nil {
		if errors.Is(err, pager.ErrPageNotFound) {
			return nil, ErrReachedEndOfFile
		}
		return nil, err
	}
	return Decode(pageNo, data, t.cfg)
}

type frame struct {
	node     *Node
	childIdx int
}

// descend walks from the root to the leaf that would hold key, recording
// the path of internal nodes visited as an explicit stack (spec.md §9:
// no parent pointers).
func (t *Tree) descend(key []byte) ([]frame, *Node, error) {
	pageNo := t.rootPageNo
	var path []frame

	for {
		node, err := t.getNode(pageNo)
		if err != nil {
			return nil, nil, err
		}
		if node.IsLeaf() {
			return path, node, nil
		}
		idx := node.ChildIndex(key, t.cmp)
		path = append(path, frame{node: node, childIdx: idx})
		pageNo = node.Children[idx]
	}
}

func (t *Tree) leftmostLeaf() (*Node, error) {
	pageNo := t.rootPageNo
	for {
		node, err := t.getNode(pageNo)
		if err != nil {
			return nil, err
		}
		if node.IsLeaf() {
			return node, nil
		}
		pageNo = node.Children[0]
	}
}

// stagedInsert is the pure, in-memory half of Insert: it mutates the
// descended path (and splits as needed) but does not touch mem. Tests use
// it directly, paired with a manual mem.SetPage/mem.Close, to simulate a
// crash between writing pages and committing them.
type stagedInsert struct {
	dirty      map[uint32]*Node
	newRoot    uint32
	entryDelta int64
}

func (t *Tree) stageInsert(key, value []byte) (*stagedInsert, error) {
	path, leaf, err := t.descend(key)
	if err != nil {
		return nil, err
	}

	replaced := leaf.InsertLeafEntry(key, value, t.cmp)

	staged := &stagedInsert{dirty: map[uint32]*Node{leaf.PageNo: leaf}, newRoot: t.rootPageNo}
	if !replaced {
		staged.entryDelta = 1
	}

	needSplit := len(leaf.Keys) > t.cfg.LeafCapacity()
	if !needSplit {
		return staged, nil
	}

	newPageNo, err := t.mem.NextPageNo()
	if err != nil {
		return nil, err
	}
	sep, right := leaf.SplitLeaf(newPageNo)
	staged.dirty[right.PageNo] = right

	for i := len(path) - 1; i >= 0 && needSplit; i-- {
		parent := path[i].node
		parent.InsertSeparator(sep, right.PageNo, t.cmp)
		staged.dirty[parent.PageNo] = parent

		if len(parent.Keys) > t.cfg.InternalKeyCapacity() {
			newPageNo, err := t.mem.NextPageNo()
			if err != nil {
				return nil, err
			}
			sep, right = parent.SplitInternal(newPageNo)
			staged.dirty[right.PageNo] = right
		} else {
			needSplit = false
		}
	}

	if needSplit {
		newRootNo, err := t.mem.NextPageNo()
		if err != nil {
			return nil, err
		}
		newRoot := NewInternal(newRootNo, t.rootPageNo)
		newRoot.InsertSeparator(sep, right.PageNo, t.cmp)
		staged.dirty[newRoot.PageNo] = newRoot
		staged.newRoot = newRootNo
	}

	return staged, nil
}

// commitStaged writes every dirty page, updates the metadata page, and
// commits. On any failure it rolls back and returns the error.
func (t *Tree) commitStaged(staged *stagedInsert) error {
	for pn, node := range staged.dirty {
		if err := t.mem.SetPage(pn, node.Encode(t.cfg)); err != nil {
			t.mem.Rollback()
			return err
		}
	}

	newEntryCount := uint64(int64(t.entryCount) + staged.entryDelta)
	header, err := t.mem.Header()
	if err != nil {
		t.mem.Rollback()
		return err
	}
	header.RootPageNo = staged.newRoot
	header.EntryCount = newEntryCount
	if err := t.mem.SetHeader(header); err != nil {
		t.mem.Rollback()
		return err
	}

	if err := t.mem.Commit(); err != nil {
		t.mem.Rollback()
		return err
	}

	t.rootPageNo = staged.newRoot
	t.entryCount = newEntryCount
	return nil
}

// Insert adds key/value, replacing the existing value if key is already
// present. All page writes for this operation are committed atomically.
func (t *Tree) Insert(key, value []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOpen(); err != nil {
		return err
	}
	if len(key) != t.cfg.KeySize || len(value) != t.cfg.ValueSize {
		return ErrInvalidArgument
	}

	staged, err := t.stageInsert(key, value)
	if err != nil {
		return err
	}
	return t.commitStaged(staged)
}

// BatchInsert inserts every pair under a single commit. Pairs are assumed
// sorted ascending by the caller for locality; correctness does not
// depend on it.
func (t *Tree) BatchInsert(pairs [][2][]byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOpen(); err != nil {
		return err
	}

	var delta int64
	for _, kv := range pairs {
		key, value := kv[0], kv[1]
		if len(key) != t.cfg.KeySize || len(value) != t.cfg.ValueSize {
			t.mem.Rollback()
			return ErrInvalidArgument
		}
		staged, err := t.stageInsert(key, value)
		if err != nil {
			t.mem.Rollback()
			return err
		}
		for pn, node := range staged.dirty {
			if err := t.mem.SetPage(pn, node.Encode(t.cfg)); err != nil {
				t.mem.Rollback()
				return err
			}
		}
		t.rootPageNo = staged.newRoot
		delta += staged.entryDelta
	}

	newEntryCount := uint64(int64(t.entryCount) + delta)
	header, err := t.mem.Header()
	if err != nil {
		t.mem.Rollback()
		return err
	}
	header.RootPageNo = t.rootPageNo
	header.EntryCount = newEntryCount
	if err := t.mem.SetHeader(header); err != nil {
		t.mem.Rollback()
		return err
	}
	if err := t.mem.Commit(); err != nil {
		t.mem.Rollback()
		return err
	}
	t.entryCount = newEntryCount
	return nil
}

// GetRecord returns the value for key, or (nil, nil) if key is absent.
func (t *Tree) GetRecord(key []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOpen(); err != nil {
		return nil, err
	}
	if len(key) != t.cfg.KeySize {
		return nil, ErrInvalidArgument
	}

	_, leaf, err := t.descend(key)
	if err != nil {
		return nil, err
	}
	idx, found := leaf.search(key, t.cmp)
	if !found {
		return nil, nil
	}
	return leaf.Values[idx], nil
}

func predFor(op string, value []byte, cmp CompareFunc) (func([]byte) bool, error) {
	switch op {
	case ">":
		return func(k []byte) bool { return cmp(k, value) > 0 }, nil
	case ">=":
		return func(k []byte) bool { return cmp(k, value) >= 0 }, nil
	case "<":
		return func(k []byte) bool { return cmp(k, value) < 0 }, nil
	case "<=":
		return func(k []byte) bool { return cmp(k, value) <= 0 }, nil
	case "=":
		return func(k []byte) bool { return cmp(k, value) == 0 }, nil
	default:
		return nil, ErrInvalidArgument
	}
}

// GetRecords returns every value whose key satisfies op(key, value), in
// ascending key order. op is one of "<", "<=", ">", ">=".
func (t *Tree) GetRecords(op string, value []byte) ([][]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOpen(); err != nil {
		return nil, err
	}
	if len(value) != t.cfg.KeySize {
		return nil, ErrInvalidArgument
	}

	pred, err := predFor(op, value, t.cmp)
	if err != nil {
		return nil, err
	}

	var cur *Node
	switch op {
	case ">", ">=":
		_, leaf, err := t.descend(value)
		if err != nil {
			return nil, err
		}
		cur = leaf
	case "<", "<=":
		leaf, err := t.leftmostLeaf()
		if err != nil {
			return nil, err
		}
		cur = leaf
	default:
		return nil, ErrInvalidArgument
	}

	var results [][]byte
	ascendingBound := op == "<" || op == "<="
	for cur != nil {
		stop := false
		for i, k := range cur.Keys {
			if ascendingBound && !pred(k) {
				stop = true
				break
			}
			if pred(k) {
				results = append(results, cur.Values[i])
			}
		}
		if stop || cur.NextPage == 0 {
			break
		}
		next, err := t.getNode(cur.NextPage)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return results, nil
}

// GetRecordsRange returns every value whose key satisfies op1(key, v1) AND
// op2(key, v2), in ascending order. op1 is one of ">", ">=", "="; op2 is
// one of "<", "<=", "=". Requires v1 <= v2.
func (t *Tree) GetRecordsRange(v1 []byte, op1 string, v2 []byte, op2 string) ([][]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOpen(); err != nil {
		return nil, err
	}
	if len(v1) != t.cfg.KeySize || len(v2) != t.cfg.KeySize {
		return nil, ErrInvalidArgument
	}
	switch op1 {
	case ">", ">=", "=":
	default:
		return nil, ErrInvalidArgument
	}
	switch op2 {
	case "<", "<=", "=":
	default:
		return nil, ErrInvalidArgument
	}
	if t.cmp(v1, v2) > 0 {
		return nil, ErrInvalidArgument
	}

	pred1, err := predFor(op1, v1, t.cmp)
	if err != nil {
		return nil, err
	}
	pred2, err := predFor(op2, v2, t.cmp)
	if err != nil {
		return nil, err
	}

	_, leaf, err := t.descend(v1)
	if err != nil {
		return nil, err
	}

	var results [][]byte
	cur := leaf
	for cur != nil {
		stop := false
		for i, k := range cur.Keys {
			if !pred2(k) {
				stop = true
				break
			}
			if pred1(k) {
				results = append(results, cur.Values[i])
			}
		}
		if stop || cur.NextPage == 0 {
			break
		}
		next, err := t.getNode(cur.NextPage)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return results, nil
}

// Iterator yields (key, value) pairs in ascending key order. It is
// finite and non-restartable: once exhausted, a fresh call to Items is
// required to traverse again.
type Iterator struct {
	tree *Tree
	cur  *Node
	idx  int
	err  error
}

// Items starts a fresh ordered traversal from the leftmost leaf.
func (t *Tree) Items() (*Iterator, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOpen(); err != nil {
		return nil, err
	}
	leaf, err := t.leftmostLeaf()
	if err != nil {
		return nil, err
	}
	return &Iterator{tree: t, cur: leaf}, nil
}

// Next returns the next (key, value) pair, or ok=false once exhausted.
func (it *Iterator) Next() (key, value []byte, ok bool) {
	for it.cur != nil {
		if it.idx < len(it.cur.Keys) {
			k, v := it.cur.Keys[it.idx], it.cur.Values[it.idx]
			it.idx++
			return k, v, true
		}
		if it.cur.NextPage == 0 {
			it.cur = nil
			break
		}
		next, err := it.tree.getNode(it.cur.NextPage)
		if err != nil {
			it.err = err
			it.cur = nil
			break
		}
		it.cur = next
		it.idx = 0
	}
	return nil, nil, false
}

// Err returns the first error encountered during traversal, if any.
func (it *Iterator) Err() error { return it.err }

// Len returns the number of live entries, maintained incrementally in the
// metadata page rather than recomputed by traversal.
func (t *Tree) Len() (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireOpen(); err != nil {
		return 0, err
	}
	return t.entryCount, nil
}

// Close releases the paged memory's file handles. Idempotent. Close does
// not checkpoint: every successful commit has already drained the WAL into
// the main file, and pages written but not committed are dropped when the
// file is next opened.
func (t *Tree) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateOpen {
		return nil
	}
	t.state = StateClosing
	err := t.mem.Close()
	t.state = StateClosed
	return err
}
