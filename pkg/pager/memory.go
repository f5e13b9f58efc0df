package pager

import (
	"sync"

	"bptreekv/pkg/dbfile"
)

// MemoryMemory is a PagedMemory implementation backed by a MemoryStorage
// buffer, with no WAL and no durability. It exists for unit tests and for
// the tree's pure in-memory mode; Commit and Rollback only manage a staged
// map so tests can exercise the same transaction API as FileMemory.
type MemoryMemory struct {
	mu sync.Mutex

	pageSize   int
	nextPageNo uint32

	storage Storage
	written map[uint32]bool // pages actually committed to storage
	staged  map[uint32][]byte
	header  *dbfile.Header
	stagedH *dbfile.Header
	closed  bool
}

// NewMemoryMemory creates an empty in-memory tree store.
func NewMemoryMemory(pageSize int) *MemoryMemory {
	if pageSize <= 0 {
		pageSize = dbfile.DefaultPageSize
	}
	h := dbfile.NewHeader(uint32(pageSize), 0, 0, 0, 0)
	storage, _ := NewMemoryStorage(int64(pageSize))
	return &MemoryMemory{
		pageSize:   pageSize,
		nextPageNo: MetadataPageNo + 1,
		storage:    storage,
		written:    make(map[uint32]bool),
		staged:     make(map[uint32][]byte),
		header:     h,
	}
}

func (m *MemoryMemory) PageSize() int { return m.pageSize }

func (m *MemoryMemory) Header() (*dbfile.Header, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if m.stagedH != nil {
		h := *m.stagedH
		return &h, nil
	}
	h := *m.header
	return &h, nil
}

func (m *MemoryMemory) SetHeader(h *dbfile.Header) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	hc := *h
	m.stagedH = &hc
	return nil
}

func (m *MemoryMemory) GetPage(pageNo uint32) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if data, ok := m.staged[pageNo]; ok {
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}
	if !m.written[pageNo] {
		return nil, ErrPageNotFound
	}
	data := m.pageSlice(pageNo)
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemoryMemory) SetPage(pageNo uint32, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	buf := make([]byte, m.pageSize)
	copy(buf, data)
	m.staged[pageNo] = buf
	return nil
}

func (m *MemoryMemory) NextPageNo() (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	pn := m.nextPageNo
	m.nextPageNo++
	return pn, nil
}

// pageSlice returns a direct view into the storage buffer for pageNo, or
// nil if the page lies beyond the buffer's current size. See FileMemory's
// pageSlice for why the offset is pageNo*pageSize rather than
// (pageNo-1)*pageSize.
func (m *MemoryMemory) pageSlice(pageNo uint32) []byte {
	offset := int(pageNo) * m.pageSize
	return m.storage.Slice(offset, m.pageSize)
}

func (m *MemoryMemory) rawSetPage(pageNo uint32, data []byte) error {
	needed := int64(pageNo+1) * int64(m.pageSize)
	if needed > m.storage.Size() {
		if err := m.storage.Grow(needed); err != nil {
			return err
		}
	}
	dst := m.pageSlice(pageNo)
	if dst == nil {
		return ErrPageNotFound
	}
	copy(dst, data)
	m.written[pageNo] = true
	return nil
}

func (m *MemoryMemory) Commit() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for pn, data := range m.staged {
		if err := m.rawSetPage(pn, data); err != nil {
			return err
		}
	}
	m.staged = make(map[uint32][]byte)
	if m.stagedH != nil {
		m.header = m.stagedH
		m.stagedH = nil
	}
	return nil
}

func (m *MemoryMemory) Rollback() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.staged = make(map[uint32][]byte)
	m.stagedH = nil
	return nil
}

func (m *MemoryMemory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	if m.storage != nil {
		m.storage.Close()
	}
	m.staged = nil
	m.written = nil
	return nil
}
