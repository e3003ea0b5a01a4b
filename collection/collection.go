package collection

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/fulldump/pipelinedb/record"
	"github.com/fulldump/pipelinedb/store"
)

// Collection is a named, ordered and persistent sequence of records.
//
// keys mirrors, in order, the store keys of the live records: position i in
// keys is the i-th record of the collection.
type Collection struct {
	name      string
	db        store.Store
	resolver  Resolver
	keys      [][]byte
	lastIndex uint64
	mutex     *sync.RWMutex
	err       error // set when the handle must not be used anymore
}

// OpenCollection builds the collection `name` on top of items, the namespace
// shared by all collections, and loads its keys from the store.
func OpenCollection(name string, items store.Store, resolver Resolver) (*Collection, error) {

	err := ValidateName(name)
	if err != nil {
		return nil, err
	}

	c := &Collection{
		name:     name,
		db:       store.Prefixed(items, []byte(name+Separator)),
		resolver: resolver,
		mutex:    &sync.RWMutex{},
	}

	err = c.Refresh()
	if err != nil {
		return nil, fmt.Errorf("load collection '%s': %w", name, err)
	}

	return c, nil
}

func (c *Collection) Name() string {
	return c.name
}

func (c *Collection) String() string {
	return fmt.Sprintf("Collection(%q)", c.name)
}

func (c *Collection) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.keys)
}

// LastIndex is the index assigned to the last appended record, the next
// append gets LastIndex()+1.
func (c *Collection) LastIndex() uint64 {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.lastIndex
}

// Invalidate poisons the handle: every later call returns err. Used by the
// owning Database when the collection is dropped or the database is closed.
func (c *Collection) Invalidate(err error) {
	c.mutex.Lock()
	c.err = err
	c.keys = nil
	c.mutex.Unlock()
}

// Refresh discards the cached keys and reloads them from the store.
func (c *Collection) Refresh() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.err != nil {
		return c.err
	}

	keys, lastIndex, err := c.scan()
	if err != nil {
		return err
	}

	c.keys = keys
	c.lastIndex = lastIndex

	return nil
}

// scan lists the record keys in index order. Padded and unpadded keys of
// the same collection sort differently as bytes, so the store order is not
// enough.
func (c *Collection) scan() ([][]byte, uint64, error) {
	type indexedKey struct {
		key   []byte
		index uint64
	}

	found := []indexedKey{}
	err := c.db.ScanKeys(nil, func(key []byte) bool {
		index, ok := parseKey(key)
		if !ok {
			return true
		}
		found = append(found, indexedKey{key: slices.Clone(key), index: index})
		return true
	})
	if err != nil {
		return nil, 0, fmt.Errorf("scan keys: %w", err)
	}

	slices.SortStableFunc(found, func(a, b indexedKey) int {
		return cmp.Compare(a.index, b.index)
	})

	keys := make([][]byte, len(found))
	lastIndex := uint64(0)
	for i, k := range found {
		keys[i] = k.key
		lastIndex = max(lastIndex, k.index)
	}

	return keys, lastIndex, nil
}

func (c *Collection) Append(item any) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.err != nil {
		return c.err
	}

	return c.append(item)
}

func (c *Collection) AppendAll(items ...any) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.err != nil {
		return c.err
	}

	for _, item := range items {
		err := c.append(item)
		if err != nil {
			return err
		}
	}

	return nil
}

// AppendFrom drains it into the collection.
func (c *Collection) AppendFrom(it *Iterator) error {
	for it.Next() {
		err := c.Append(it.Record())
		if err != nil {
			return err
		}
	}
	return it.Err()
}

func (c *Collection) append(item any) error {
	index := c.lastIndex + 1
	key := formatKey(index)

	err := c.write(key, item)
	if err != nil {
		return err
	}

	c.keys = append(c.keys, key)
	c.lastIndex = index

	return nil
}

func (c *Collection) write(key []byte, item any) error {
	value, err := record.Of(item)
	if err != nil {
		return err
	}

	data, err := record.Encode(value)
	if err != nil {
		return err
	}

	err = c.db.Put(key, data)
	if err != nil {
		return fmt.Errorf("put '%s': %w", key, err)
	}

	return nil
}

func (c *Collection) read(key []byte) (record.Value, error) {
	data, err := c.db.Get(key)
	if err != nil {
		return record.Value{}, fmt.Errorf("get '%s': %w", key, err)
	}
	return record.Decode(data)
}

// load reads one record taking the read lock, for callers that do not hold it.
func (c *Collection) load(key []byte) (record.Value, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.err != nil {
		return record.Value{}, c.err
	}

	return c.read(key)
}

func (c *Collection) checkIndex(i int) error {
	if i < 0 || i >= len(c.keys) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(c.keys))
	}
	return nil
}

func (c *Collection) Get(i int) (record.Value, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.err != nil {
		return record.Value{}, c.err
	}

	err := c.checkIndex(i)
	if err != nil {
		return record.Value{}, err
	}

	return c.read(c.keys[i])
}

// Set replaces the record at position i keeping its key.
func (c *Collection) Set(i int, item any) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.err != nil {
		return c.err
	}

	err := c.checkIndex(i)
	if err != nil {
		return err
	}

	return c.write(c.keys[i], item)
}

// Delete removes the record at position i. Following records shift one
// position down; LastIndex is not modified.
func (c *Collection) Delete(i int) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.err != nil {
		return c.err
	}

	err := c.checkIndex(i)
	if err != nil {
		return err
	}

	err = c.db.Delete(c.keys[i])
	if err != nil {
		return fmt.Errorf("delete '%s': %w", c.keys[i], err)
	}

	c.keys = slices.Delete(c.keys, i, i+1)

	return nil
}

// DeleteAll removes every record and resets the key counter, next append
// gets key 1 again.
func (c *Collection) DeleteAll() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.err != nil {
		return c.err
	}

	return c.deleteAll()
}

func (c *Collection) deleteAll() error {
	// Scan instead of trusting the cache, records written by someone else
	// are removed too.
	keys, _, err := c.scan()
	if err != nil {
		return err
	}

	for i, key := range keys {
		err := c.db.Delete(key)
		if err != nil {
			c.keys = keys[i:]
			return fmt.Errorf("delete '%s': %w", key, err)
		}
	}

	c.keys = [][]byte{}
	c.lastIndex = 0

	return nil
}

// ToEnd can be used as `to` in ranges to reach the last record.
const ToEnd = math.MaxInt

// bounds resolves [from, to) against n records. Negative values count from
// the end, so (0, -1) leaves the last record out, and the result is clamped
// into [0, n].
func bounds(from, to, n int) (int, int) {
	from = clampIndex(from, n)
	to = clampIndex(to, n)
	if to < from {
		to = from
	}
	return from, to
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	return min(max(i, 0), n)
}

// snapshot copies the keys in [from, to).
func (c *Collection) snapshot(from, to int) ([][]byte, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.err != nil {
		return nil, c.err
	}

	from, to = bounds(from, to, len(c.keys))
	return slices.Clone(c.keys[from:to]), nil
}

// Slice returns the records in [from, to). Negative bounds count from the
// end.
func (c *Collection) Slice(from, to int) ([]record.Value, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.err != nil {
		return nil, c.err
	}

	from, to = bounds(from, to, len(c.keys))
	result := make([]record.Value, 0, to-from)
	for _, key := range c.keys[from:to] {
		value, err := c.read(key)
		if err != nil {
			return nil, err
		}
		result = append(result, value)
	}

	return result, nil
}

// Iterate returns an iterator over the records in [from, to) as they are
// positioned now. Later mutations of the collection do not change the set of
// visited positions.
func (c *Collection) Iterate(from, to int) *Iterator {
	keys, err := c.snapshot(from, to)
	return &Iterator{
		collection: c,
		keys:       keys,
		err:        err,
	}
}
