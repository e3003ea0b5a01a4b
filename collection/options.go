package collection

// Options drive how a destination collection is resolved by name.
type Options struct {
	CreateIfMissing bool `json:"createIfMissing"`
	ErrorIfExists   bool `json:"errorIfExists"`
	ResetCollection bool `json:"resetCollection"`
}

// DefaultOptions creates missing collections and never fails or resets
// existing ones.
func DefaultOptions() *Options {
	return &Options{
		CreateIfMissing: true,
	}
}

// Resolver looks up collections by name. It is implemented by the Database
// that owns the collection.
type Resolver interface {
	Collection(name string, options *Options) (*Collection, error)
}

func (o *Options) withReset(reset bool) *Options {
	result := DefaultOptions()
	if o != nil {
		*result = *o
	}
	if reset {
		result.ResetCollection = true
	}
	return result
}
