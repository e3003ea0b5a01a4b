package store

import (
	"errors"
)

var ErrNotFound = errors.New("key not found")
var ErrClosed = errors.New("store is closed")

// Store is a byte-keyed sorted map. Scan and ScanKeys visit the entries whose
// key starts with prefix in ascending byte order until fn returns false.
// Keys and values passed to fn are only valid during the call.
type Store interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Scan(prefix []byte, fn func(key, value []byte) bool) error
	ScanKeys(prefix []byte, fn func(key []byte) bool) error
}

// Engine is a Store backed by a resource that can be released and acquired
// again.
type Engine interface {
	Store
	Open() error
	Close() error
}

func concat(a, b []byte) []byte {
	result := make([]byte, 0, len(a)+len(b))
	result = append(result, a...)
	return append(result, b...)
}
