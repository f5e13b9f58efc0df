package btree

import (
	"encoding/binary"
	"path/filepath"
	"testing"

	"bptreekv/pkg/pager"
)

func openMemTree(t *testing.T, order int) *Tree {
	t.Helper()
	mem := pager.NewMemoryMemory(256)
	tr, err := Open(mem, Config{PageSize: 256, Order: order, KeySize: 8, ValueSize: 16}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return tr
}

func u64key(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

func u64val(n uint64) []byte {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b, n)
	return b
}

func TestInsertAndCount(t *testing.T) {
	tr := openMemTree(t, 4)
	defer tr.Close()

	for i := uint64(0); i < 50; i++ {
		if err := tr.Insert(u64key(i), u64val(i)); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}

	n, err := tr.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 50 {
		t.Fatalf("Len() = %d, want 50", n)
	}

	for i := uint64(0); i < 50; i++ {
		v, err := tr.GetRecord(u64key(i))
		if err != nil {
			t.Fatalf("GetRecord(%d): %v", i, err)
		}
		if v == nil {
			t.Fatalf("GetRecord(%d) = nil, want a value", i)
		}
		if binary.BigEndian.Uint64(v) != i {
			t.Errorf("GetRecord(%d) = %d, want %d", i, binary.BigEndian.Uint64(v), i)
		}
	}

	if v, err := tr.GetRecord(u64key(999)); err != nil || v != nil {
		t.Errorf("GetRecord(999) = (%v, %v), want (nil, nil)", v, err)
	}
}

func TestInsertReplacesExistingKey(t *testing.T) {
	tr := openMemTree(t, 4)
	defer tr.Close()

	if err := tr.Insert(u64key(1), u64val(100)); err != nil {
		t.Fatal(err)
	}
	if err := tr.Insert(u64key(1), u64val(200)); err != nil {
		t.Fatal(err)
	}

	n, _ := tr.Len()
	if n != 1 {
		t.Fatalf("Len() = %d, want 1 after replacing the same key", n)
	}
	v, _ := tr.GetRecord(u64key(1))
	if binary.BigEndian.Uint64(v) != 200 {
		t.Errorf("GetRecord(1) = %d, want 200", binary.BigEndian.Uint64(v))
	}
}

func TestItemsYieldsAscendingOrder(t *testing.T) {
	tr := openMemTree(t, 4)
	defer tr.Close()

	order := []uint64{7, 1, 9, 3, 5, 0, 8, 2, 6, 4}
	for _, k := range order {
		if err := tr.Insert(u64key(k), u64val(k)); err != nil {
			t.Fatal(err)
		}
	}

	it, err := tr.Items()
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	var got []uint64
	for {
		k, _, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, binary.BigEndian.Uint64(k))
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterator error: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("len(got) = %d, want 10", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Fatalf("items not ascending at index %d: %v", i, got)
		}
	}
}

func TestGetRecordsGreaterThan(t *testing.T) {
	tr := openMemTree(t, 4)
	defer tr.Close()
	for i := uint64(0); i < 20; i++ {
		tr.Insert(u64key(i), u64val(i))
	}

	vals, err := tr.GetRecords(">", u64key(15))
	if err != nil {
		t.Fatalf("GetRecords: %v", err)
	}
	if len(vals) != 4 {
		t.Fatalf("len(vals) = %d, want 4 (16,17,18,19)", len(vals))
	}
	for i, v := range vals {
		want := uint64(16 + i)
		if binary.BigEndian.Uint64(v) != want {
			t.Errorf("vals[%d] = %d, want %d", i, binary.BigEndian.Uint64(v), want)
		}
	}
}

func TestGetRecordsLessThanOrEqual(t *testing.T) {
	tr := openMemTree(t, 4)
	defer tr.Close()
	for i := uint64(0); i < 20; i++ {
		tr.Insert(u64key(i), u64val(i))
	}

	vals, err := tr.GetRecords("<=", u64key(4))
	if err != nil {
		t.Fatalf("GetRecords: %v", err)
	}
	if len(vals) != 5 {
		t.Fatalf("len(vals) = %d, want 5 (0..4)", len(vals))
	}
	for i, v := range vals {
		if binary.BigEndian.Uint64(v) != uint64(i) {
			t.Errorf("vals[%d] = %d, want %d", i, binary.BigEndian.Uint64(v), i)
		}
	}
}

func TestGetRecordsRangeBounded(t *testing.T) {
	tr := openMemTree(t, 4)
	defer tr.Close()
	for i := uint64(0); i < 100; i++ {
		tr.Insert(u64key(i), u64val(i))
	}

	vals, err := tr.GetRecordsRange(u64key(3), ">", u64key(10), "<=")
	if err != nil {
		t.Fatalf("GetRecordsRange: %v", err)
	}
	if len(vals) != 7 {
		t.Fatalf("len(vals) = %d, want 7 (4..10)", len(vals))
	}
	for i, v := range vals {
		want := uint64(4 + i)
		if binary.BigEndian.Uint64(v) != want {
			t.Errorf("vals[%d] = %d, want %d", i, binary.BigEndian.Uint64(v), want)
		}
	}
}

func TestGetRecordsRangeRejectsInvertedBounds(t *testing.T) {
	tr := openMemTree(t, 4)
	defer tr.Close()
	tr.Insert(u64key(1), u64val(1))

	_, err := tr.GetRecordsRange(u64key(10), ">=", u64key(1), "<=")
	if err != ErrInvalidArgument {
		t.Errorf("GetRecordsRange with v1 > v2 = %v, want ErrInvalidArgument", err)
	}
}

func TestInsertRejectsWrongWidthKeyOrValue(t *testing.T) {
	tr := openMemTree(t, 4)
	defer tr.Close()

	if err := tr.Insert([]byte("short"), u64val(1)); err != ErrInvalidArgument {
		t.Errorf("Insert with short key = %v, want ErrInvalidArgument", err)
	}
	if err := tr.Insert(u64key(1), []byte("short")); err != ErrInvalidArgument {
		t.Errorf("Insert with short value = %v, want ErrInvalidArgument", err)
	}
}

// commitCounter wraps a PagedMemory and counts its Commit calls.
type commitCounter struct {
	pager.PagedMemory
	commits int
}

func (c *commitCounter) Commit() error {
	c.commits++
	return c.PagedMemory.Commit()
}

func TestBatchInsertSingleCommit(t *testing.T) {
	mem := &commitCounter{PagedMemory: pager.NewMemoryMemory(256)}
	tr, err := Open(mem, Config{PageSize: 256, Order: 4, KeySize: 8, ValueSize: 16}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tr.Close()
	mem.commits = 0 // Open commits the fresh root leaf

	pairs := make([][2][]byte, 0, 30)
	for i := uint64(0); i < 30; i++ {
		pairs = append(pairs, [2][]byte{u64key(i), u64val(i)})
	}
	if err := tr.BatchInsert(pairs); err != nil {
		t.Fatalf("BatchInsert: %v", err)
	}
	if mem.commits != 1 {
		t.Errorf("BatchInsert made %d commits, want 1", mem.commits)
	}

	n, _ := tr.Len()
	if n != 30 {
		t.Fatalf("Len() = %d, want 30", n)
	}
	v, err := tr.GetRecord(u64key(29))
	if err != nil || v == nil {
		t.Fatalf("GetRecord(29) = (%v, %v)", v, err)
	}
}

func TestOperationsOnClosedTreeFail(t *testing.T) {
	tr := openMemTree(t, 4)
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := tr.Insert(u64key(1), u64val(1)); err != ErrClosedTree {
		t.Errorf("Insert after Close = %v, want ErrClosedTree", err)
	}
	if _, err := tr.GetRecord(u64key(1)); err != ErrClosedTree {
		t.Errorf("GetRecord after Close = %v, want ErrClosedTree", err)
	}
	if err := tr.Close(); err != nil {
		t.Errorf("second Close should be a harmless no-op, got %v", err)
	}
}

// TestDurabilityDropsUncommittedTail simulates a crash: keys 0..4 are
// inserted and committed, keys 5..9 are staged (pages written through
// SetPage) but the transaction is never committed, then the process
// "restarts" by closing the raw file handles and reopening from disk.
// Only the committed prefix should survive.
func TestDurabilityDropsUncommittedTail(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.db")

	mem, err := pager.OpenFileMemory(path, 4096, 0, nil)
	if err != nil {
		t.Fatalf("OpenFileMemory: %v", err)
	}
	tr, err := Open(mem, Config{PageSize: 4096, Order: 8, KeySize: 8, ValueSize: 16}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	for i := uint64(0); i < 5; i++ {
		if err := tr.Insert(u64key(i), u64val(i)); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}

	// Stage writes for keys 5..9 without ever calling commitStaged, then
	// drop the file handles the way an unclean process exit would.
	for i := uint64(5); i < 10; i++ {
		staged, err := tr.stageInsert(u64key(i), u64val(i))
		if err != nil {
			t.Fatalf("stageInsert(%d): %v", i, err)
		}
		for pn, node := range staged.dirty {
			if err := mem.SetPage(pn, node.Encode(tr.cfg)); err != nil {
				t.Fatalf("SetPage: %v", err)
			}
		}
	}
	if err := mem.Close(); err != nil {
		t.Fatalf("Close (simulated crash): %v", err)
	}

	mem2, err := pager.OpenFileMemory(path, 4096, 0, nil)
	if err != nil {
		t.Fatalf("reopen OpenFileMemory: %v", err)
	}
	tr2, err := Open(mem2, Config{}, nil)
	if err != nil {
		t.Fatalf("reopen Open: %v", err)
	}
	defer tr2.Close()

	n, err := tr2.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 5 {
		t.Fatalf("Len() after recovery = %d, want 5 (only the committed prefix)", n)
	}

	for i := uint64(0); i < 5; i++ {
		v, err := tr2.GetRecord(u64key(i))
		if err != nil || v == nil {
			t.Errorf("GetRecord(%d) after recovery = (%v, %v), want a value", i, v, err)
		}
	}
	for i := uint64(5); i < 10; i++ {
		v, err := tr2.GetRecord(u64key(i))
		if err != nil {
			t.Errorf("GetRecord(%d) after recovery: %v", i, err)
		}
		if v != nil {
			t.Errorf("GetRecord(%d) after recovery = %v, want nil (never committed)", i, v)
		}
	}
}
