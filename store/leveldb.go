package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDB is a durable Engine stored in a directory. The handle can be closed
// and opened again at the same path.
type LevelDB struct {
	Path            string
	CreateIfMissing bool

	mutex *sync.RWMutex
	db    *leveldb.DB
}

func OpenLevelDB(path string, createIfMissing bool) (*LevelDB, error) {
	l := NewLevelDB(path, createIfMissing)
	err := l.Open()
	if err != nil {
		return nil, err
	}
	return l, nil
}

// NewLevelDB returns a closed engine, call Open before using it.
func NewLevelDB(path string, createIfMissing bool) *LevelDB {
	return &LevelDB{
		Path:            path,
		CreateIfMissing: createIfMissing,
		mutex:           &sync.RWMutex{},
	}
}

func (l *LevelDB) Open() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.db != nil {
		return nil
	}

	db, err := leveldb.OpenFile(l.Path, &opt.Options{
		ErrorIfMissing: !l.CreateIfMissing,
	})
	if err != nil {
		return fmt.Errorf("open leveldb '%s': %w", l.Path, err)
	}
	l.db = db

	return nil
}

func (l *LevelDB) Close() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.db == nil {
		return nil
	}

	err := l.db.Close()
	l.db = nil
	return err
}

func (l *LevelDB) handle() (*leveldb.DB, func(), error) {
	l.mutex.RLock()
	if l.db == nil {
		l.mutex.RUnlock()
		return nil, nil, ErrClosed
	}
	return l.db, l.mutex.RUnlock, nil
}

func (l *LevelDB) Get(key []byte) ([]byte, error) {
	db, release, err := l.handle()
	if err != nil {
		return nil, err
	}
	defer release()

	value, err := db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return value, err
}

func (l *LevelDB) Put(key, value []byte) error {
	db, release, err := l.handle()
	if err != nil {
		return err
	}
	defer release()

	return db.Put(key, value, nil)
}

func (l *LevelDB) Delete(key []byte) error {
	db, release, err := l.handle()
	if err != nil {
		return err
	}
	defer release()

	return db.Delete(key, nil)
}

func (l *LevelDB) Scan(prefix []byte, fn func(key, value []byte) bool) error {
	db, release, err := l.handle()
	if err != nil {
		return err
	}
	defer release()

	it := db.NewIterator(util.BytesPrefix(prefix), nil)
	defer it.Release()

	for it.Next() {
		if !fn(it.Key(), it.Value()) {
			break
		}
	}

	return it.Error()
}

func (l *LevelDB) ScanKeys(prefix []byte, fn func(key []byte) bool) error {
	return l.Scan(prefix, func(key, _ []byte) bool {
		return fn(key)
	})
}
