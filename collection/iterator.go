package collection

import (
	"github.com/fulldump/pipelinedb/record"
)

// Iterator is a single pass cursor over a fixed range of a collection.
// Records are read from the store on demand. Not safe for concurrent use.
//
//	it := c.Iterate(0, collection.ToEnd)
//	for it.Next() {
//		use(it.Record())
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator struct {
	collection *Collection
	keys       [][]byte
	current    record.Value
	err        error
}

func (it *Iterator) Next() bool {
	if it.err != nil || len(it.keys) == 0 {
		it.current = record.Value{}
		return false
	}

	key := it.keys[0]
	it.keys = it.keys[1:]

	it.current, it.err = it.collection.load(key)
	return it.err == nil
}

func (it *Iterator) Record() record.Value {
	return it.current
}

// Err is the first error found while iterating, if any.
func (it *Iterator) Err() error {
	return it.err
}

// Remaining is the number of records not yet visited.
func (it *Iterator) Remaining() int {
	return len(it.keys)
}
