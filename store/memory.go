package store

import (
	"bytes"
	"sync"

	"github.com/google/btree"
)

type memoryItem struct {
	key   []byte
	value []byte
}

// Memory is an Engine kept in a B-tree. Closing it keeps the data, so a
// closed and reopened Memory behaves like a reopened LevelDB.
type Memory struct {
	mutex  *sync.RWMutex
	tree   *btree.BTreeG[memoryItem]
	closed bool
}

func NewMemory() *Memory {
	return &Memory{
		mutex: &sync.RWMutex{},
		tree: btree.NewG(32, func(a, b memoryItem) bool {
			return bytes.Compare(a.key, b.key) < 0
		}),
	}
}

func (m *Memory) Open() error {
	m.mutex.Lock()
	m.closed = false
	m.mutex.Unlock()
	return nil
}

func (m *Memory) Close() error {
	m.mutex.Lock()
	m.closed = true
	m.mutex.Unlock()
	return nil
}

func (m *Memory) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.tree.Len()
}

func (m *Memory) Get(key []byte) ([]byte, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	item, found := m.tree.Get(memoryItem{key: key})
	if !found {
		return nil, ErrNotFound
	}

	return bytes.Clone(item.value), nil
}

func (m *Memory) Put(key, value []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.closed {
		return ErrClosed
	}

	m.tree.ReplaceOrInsert(memoryItem{
		key:   bytes.Clone(key),
		value: bytes.Clone(value),
	})

	return nil
}

func (m *Memory) Delete(key []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.closed {
		return ErrClosed
	}

	m.tree.Delete(memoryItem{key: key})

	return nil
}

// Scan walks a copy-on-write clone of the tree, so fn is free to write to
// the store.
func (m *Memory) Scan(prefix []byte, fn func(key, value []byte) bool) error {
	m.mutex.Lock()
	if m.closed {
		m.mutex.Unlock()
		return ErrClosed
	}
	snapshot := m.tree.Clone()
	m.mutex.Unlock()

	snapshot.AscendGreaterOrEqual(memoryItem{key: prefix}, func(item memoryItem) bool {
		if !bytes.HasPrefix(item.key, prefix) {
			return false
		}
		return fn(item.key, item.value)
	})

	return nil
}

func (m *Memory) ScanKeys(prefix []byte, fn func(key []byte) bool) error {
	return m.Scan(prefix, func(key, _ []byte) bool {
		return fn(key)
	})
}
