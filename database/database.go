package database

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/fulldump/pipelinedb/collection"
	"github.com/fulldump/pipelinedb/store"
)

const (
	StatusOpening   = "opening"
	StatusOperating = "operating"
	StatusClosing   = "closing"
)

const (
	EngineLevelDB = "leveldb"
	EngineMemory  = "memory"
)

// Persisted layout
const (
	CollectionsPrefix = "collections/"
	ItemsPrefix       = "collection-items/"
)

var existenceMarker = []byte("true")

var (
	ErrCollectionNotFound      = errors.New("collection not found")
	ErrCollectionAlreadyExists = errors.New("collection already exists")
	ErrDatabaseClosed          = errors.New("database is closed")
)

type Config struct {
	Dir             string
	Engine          string // EngineLevelDB (default) or EngineMemory
	CreateIfMissing bool

	// Store, when set, is used instead of building an engine from Dir and Engine
	Store  store.Engine
	Logger *zap.Logger
}

// Database owns every collection stored in one engine: the durable set of
// collection names and the namespace with their items. While open, a name
// always resolves to the same *collection.Collection.
type Database struct {
	config *Config
	logger *zap.Logger
	status  string
	open    bool
	stopped bool

	engine         store.Engine
	collectionsSet store.Store
	itemsSet       store.Store
	collections    map[string]*collection.Collection

	mutex    *sync.Mutex
	exit     chan struct{}
	exitOnce *sync.Once
}

func NewDatabase(config *Config) *Database {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Database{
		config:      config,
		logger:      logger,
		status:      StatusOpening,
		collections: map[string]*collection.Collection{},
		mutex:       &sync.Mutex{},
		exit:        make(chan struct{}),
		exitOnce:    &sync.Once{},
	}
}

// Open creates a database and opens it.
func Open(config *Config) (*Database, error) {
	db := NewDatabase(config)
	err := db.Open()
	if err != nil {
		return nil, err
	}
	return db, nil
}

func (db *Database) GetStatus() string {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	return db.status
}

func (db *Database) newEngine() (store.Engine, error) {
	if db.config.Store != nil {
		return db.config.Store, nil
	}

	switch db.config.Engine {
	case "", EngineLevelDB:
		return store.NewLevelDB(db.config.Dir, db.config.CreateIfMissing), nil
	case EngineMemory:
		return store.NewMemory(), nil
	}

	return nil, fmt.Errorf("unknown engine '%s', must be %s or %s", db.config.Engine, EngineLevelDB, EngineMemory)
}

// Open acquires the underlying store. A closed database can be opened again,
// a stopped one cannot.
func (db *Database) Open() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if db.stopped {
		return ErrDatabaseClosed
	}

	if db.open {
		return nil
	}

	if db.engine == nil {
		engine, err := db.newEngine()
		if err != nil {
			db.status = StatusClosing
			return err
		}
		db.engine = engine
	}

	err := db.engine.Open()
	if err != nil {
		db.status = StatusClosing
		return fmt.Errorf("open store: %w", err)
	}

	db.collectionsSet = store.Prefixed(db.engine, []byte(CollectionsPrefix))
	db.itemsSet = store.Prefixed(db.engine, []byte(ItemsPrefix))
	db.collections = map[string]*collection.Collection{}
	db.open = true
	db.status = StatusOperating

	db.logger.Info("database opened",
		zap.String("dir", db.config.Dir),
		zap.String("engine", db.config.Engine),
	)

	return nil
}

// Close releases the store. Collection handles obtained before Close fail
// with ErrDatabaseClosed from now on.
func (db *Database) Close() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.status = StatusClosing

	if !db.open {
		return nil
	}

	for name, col := range db.collections {
		col.Invalidate(ErrDatabaseClosed)
		delete(db.collections, name)
	}
	db.open = false

	err := db.engine.Close()
	if err != nil {
		db.logger.Error("close store", zap.Error(err))
		return fmt.Errorf("close store: %w", err)
	}

	db.logger.Info("database closed", zap.String("dir", db.config.Dir))

	return nil
}

// Load opens the database logging how long it takes, used by Start.
func (db *Database) Load() error {
	db.logger.Info("loading database", zap.String("dir", db.config.Dir))

	err := db.Open()
	if err != nil {
		db.logger.Error("load database", zap.Error(err))
		return err
	}

	names, err := db.CollectionNames()
	if err != nil {
		return err
	}
	db.logger.Info("database loaded", zap.Int("collections", len(names)))

	return nil
}

// Start loads the database and blocks until Stop is called. It returns
// ErrDatabaseClosed when Stop was called first.
func (db *Database) Start() error {

	err := db.Load()
	if err != nil {
		return err
	}

	<-db.exit

	return db.Close()
}

// Stop closes the database for good and releases Start.
func (db *Database) Stop() error {
	defer db.exitOnce.Do(func() {
		close(db.exit)
	})

	db.mutex.Lock()
	db.stopped = true
	db.mutex.Unlock()

	return db.Close()
}

func (db *Database) checkOpen() error {
	if !db.open {
		return ErrDatabaseClosed
	}
	return nil
}

func (db *Database) exists(name string) (bool, error) {
	_, err := db.collectionsSet.Get([]byte(name))
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup collection '%s': %w", name, err)
	}
	return true, nil
}

// Collection resolves a collection by name. With nil options it is created
// when missing, see collection.DefaultOptions.
func (db *Database) Collection(name string, options *collection.Options) (*collection.Collection, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	return db.collection(name, options)
}

func (db *Database) collection(name string, options *collection.Options) (*collection.Collection, error) {

	if options == nil {
		options = collection.DefaultOptions()
	}

	err := db.checkOpen()
	if err != nil {
		return nil, err
	}

	err = collection.ValidateName(name)
	if err != nil {
		return nil, err
	}

	col, cached := db.collections[name]
	if !cached {
		exists, err := db.exists(name)
		if err != nil {
			return nil, err
		}

		if exists && options.ErrorIfExists {
			return nil, fmt.Errorf("%w: '%s'", ErrCollectionAlreadyExists, name)
		}

		if !exists {
			if !options.CreateIfMissing {
				return nil, fmt.Errorf("%w: '%s'", ErrCollectionNotFound, name)
			}
			err := db.collectionsSet.Put([]byte(name), existenceMarker)
			if err != nil {
				return nil, fmt.Errorf("create collection '%s': %w", name, err)
			}
			db.logger.Info("collection created", zap.String("collection", name))
		}

		col, err = collection.OpenCollection(name, db.itemsSet, db)
		if err != nil {
			return nil, err
		}
		db.collections[name] = col

	} else if options.ErrorIfExists {
		return nil, fmt.Errorf("%w: '%s'", ErrCollectionAlreadyExists, name)
	}

	if options.ResetCollection {
		err := col.DeleteAll()
		if err != nil {
			return nil, fmt.Errorf("reset collection '%s': %w", name, err)
		}
	}

	return col, nil
}

// CollectionNames lists the durable collection names in ascending byte order.
func (db *Database) CollectionNames() ([]string, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	return db.names()
}

func (db *Database) names() ([]string, error) {
	err := db.checkOpen()
	if err != nil {
		return nil, err
	}

	names := []string{}
	err = db.collectionsSet.ScanKeys(nil, func(key []byte) bool {
		names = append(names, string(key))
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	sort.Strings(names)

	return names, nil
}

// Collections returns every known collection ordered by name.
func (db *Database) Collections() ([]*collection.Collection, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	names, err := db.names()
	if err != nil {
		return nil, err
	}

	result := make([]*collection.Collection, 0, len(names))
	for _, name := range names {
		col, err := db.collection(name, &collection.Options{})
		if err != nil {
			return nil, err
		}
		result = append(result, col)
	}

	return result, nil
}

// CopyCollection replaces newName content with the records of oldName in
// [from, to). oldName must exist. Destination is reset before copying and is
// not restored if the copy fails midway.
func (db *Database) CopyCollection(oldName, newName string, from, to int, options *collection.Options) (*collection.Collection, error) {

	src, err := db.Collection(oldName, &collection.Options{})
	if err != nil {
		return nil, err
	}

	return src.CopyTo(newName, from, to, options)
}

// DeleteCollection removes every record of the collection and the
// collection itself. Handles to it are no longer usable.
func (db *Database) DeleteCollection(name string) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	col, err := db.collection(name, &collection.Options{})
	if err != nil {
		return err
	}

	err = col.DeleteAll()
	if err != nil {
		return fmt.Errorf("delete records of '%s': %w", name, err)
	}

	err = db.collectionsSet.Delete([]byte(name))
	if err != nil {
		return fmt.Errorf("delete collection '%s': %w", name, err)
	}

	delete(db.collections, name)
	col.Invalidate(collection.ErrCollectionDropped)

	db.logger.Info("collection deleted", zap.String("collection", name))

	return nil
}
