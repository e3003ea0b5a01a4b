package store

// View scopes every key operation of a parent Store under a fixed prefix.
type View struct {
	parent Store
	prefix []byte
}

// Prefixed returns a view of s where every key is transparently prefixed.
// Nested views collapse into a single one.
func Prefixed(s Store, prefix []byte) *View {
	if v, ok := s.(*View); ok {
		return &View{
			parent: v.parent,
			prefix: concat(v.prefix, prefix),
		}
	}
	return &View{
		parent: s,
		prefix: concat(nil, prefix),
	}
}

func (v *View) Prefix() []byte {
	return v.prefix
}

func (v *View) Get(key []byte) ([]byte, error) {
	return v.parent.Get(concat(v.prefix, key))
}

func (v *View) Put(key, value []byte) error {
	return v.parent.Put(concat(v.prefix, key), value)
}

func (v *View) Delete(key []byte) error {
	return v.parent.Delete(concat(v.prefix, key))
}

func (v *View) Scan(prefix []byte, fn func(key, value []byte) bool) error {
	n := len(v.prefix)
	return v.parent.Scan(concat(v.prefix, prefix), func(key, value []byte) bool {
		return fn(key[n:], value)
	})
}

func (v *View) ScanKeys(prefix []byte, fn func(key []byte) bool) error {
	n := len(v.prefix)
	return v.parent.ScanKeys(concat(v.prefix, prefix), func(key []byte) bool {
		return fn(key[n:])
	})
}
