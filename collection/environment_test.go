package collection

import (
	"errors"

	"github.com/fulldump/pipelinedb/store"
)

var errTestNotFound = errors.New("not found")
var errTestExists = errors.New("already exists")

// directory is a minimal Resolver over a memory store.
type directory struct {
	items       store.Store
	collections map[string]*Collection
}

func (d *directory) Collection(name string, options *Options) (*Collection, error) {
	if options == nil {
		options = DefaultOptions()
	}

	c, exists := d.collections[name]
	if exists && options.ErrorIfExists {
		return nil, errTestExists
	}
	if !exists {
		if !options.CreateIfMissing {
			return nil, errTestNotFound
		}
		var err error
		c, err = OpenCollection(name, d.items, d)
		if err != nil {
			return nil, err
		}
		d.collections[name] = c
	}

	if options.ResetCollection {
		if err := c.DeleteAll(); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func Environment(f func(d *directory, m *store.Memory)) {
	m := store.NewMemory()
	d := &directory{
		items:       store.Prefixed(m, []byte("collection-items/")),
		collections: map[string]*Collection{},
	}
	f(d, m)
}

func mustCollection(d *directory, name string, items ...any) *Collection {
	c, err := d.Collection(name, nil)
	if err != nil {
		panic(err)
	}
	if err := c.AppendAll(items...); err != nil {
		panic(err)
	}
	return c
}

func contents(c *Collection) []any {
	values, err := c.Slice(0, ToEnd)
	if err != nil {
		panic(err)
	}
	result := []any{}
	for _, v := range values {
		result = append(result, v.Interface())
	}
	return result
}
