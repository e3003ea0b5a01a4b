package collection

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/fulldump/pipelinedb/record"
)

type MapFunc func(v record.Value) (any, error)

type FilterFunc func(v record.Value) (bool, error)

type ReduceFunc func(accumulator, v record.Value) (any, error)

// SeedFunc turns the first record into the initial accumulator.
type SeedFunc func(first record.Value) (any, error)

// Transformations take a target collection name. An empty target, or the
// name of the collection itself, means in place.
func (c *Collection) inPlace(target string) bool {
	return target == "" || target == c.name
}

// resolveDestination returns the collection where a transformation writes
// its output. When reset is true the destination is emptied first, whatever
// the options say.
func (c *Collection) resolveDestination(target string, options *Options, reset bool) (*Collection, error) {
	if c.inPlace(target) {
		return c, nil
	}

	if c.resolver == nil {
		return nil, fmt.Errorf("collection '%s' cannot resolve '%s': no resolver", c.name, target)
	}

	dst, err := c.resolver.Collection(target, options.withReset(reset))
	if err != nil {
		return nil, fmt.Errorf("resolve destination '%s': %w", target, err)
	}

	return dst, nil
}

// copyKeys appends the records stored under keys into dst, applying fn.
// fn returning skip=true drops the record.
func (c *Collection) copyKeys(keys [][]byte, dst *Collection, fn func(v record.Value) (result any, skip bool, err error)) error {
	for _, key := range keys {
		value, err := c.load(key)
		if err != nil {
			return err
		}

		result, skip, err := fn(value)
		if err != nil {
			return err
		}
		if skip {
			continue
		}

		err = dst.Append(result)
		if err != nil {
			return fmt.Errorf("append to '%s': %w", dst.name, err)
		}
	}
	return nil
}

// CopyTo replaces target content with the records in [from, to).
func (c *Collection) CopyTo(target string, from, to int, options *Options) (*Collection, error) {

	if c.inPlace(target) {
		return nil, fmt.Errorf("%w: '%s'", ErrSameCollection, c.name)
	}

	keys, err := c.snapshot(from, to)
	if err != nil {
		return nil, err
	}

	dst, err := c.resolveDestination(target, options, true)
	if err != nil {
		return nil, err
	}

	err = c.copyKeys(keys, dst, func(v record.Value) (any, bool, error) {
		return v, false, nil
	})

	return dst, err
}

// Map replaces every record with fn(record). In place it keeps keys and
// order, otherwise target is reset and filled in source order.
func (c *Collection) Map(fn MapFunc, target string, options *Options) (*Collection, error) {

	if c.inPlace(target) {
		c.mutex.Lock()
		defer c.mutex.Unlock()

		if c.err != nil {
			return nil, c.err
		}

		for _, key := range c.keys {
			value, err := c.read(key)
			if err != nil {
				return nil, err
			}
			result, err := fn(value)
			if err != nil {
				return nil, err
			}
			err = c.write(key, result)
			if err != nil {
				return nil, err
			}
		}

		return c, nil
	}

	keys, err := c.snapshot(0, ToEnd)
	if err != nil {
		return nil, err
	}

	dst, err := c.resolveDestination(target, options, true)
	if err != nil {
		return nil, err
	}

	err = c.copyKeys(keys, dst, func(v record.Value) (any, bool, error) {
		result, err := fn(v)
		return result, false, err
	})

	return dst, err
}

// Filter keeps the records where fn is true, preserving their relative
// order.
func (c *Collection) Filter(fn FilterFunc, target string, options *Options) (*Collection, error) {

	if c.inPlace(target) {
		c.mutex.Lock()
		defer c.mutex.Unlock()

		if c.err != nil {
			return nil, c.err
		}

		kept := make([][]byte, 0, len(c.keys))
		for i, key := range c.keys {
			err := c.filterKey(key, fn, &kept)
			if err != nil {
				c.keys = append(kept, c.keys[i:]...)
				return nil, err
			}
		}
		c.keys = kept

		return c, nil
	}

	keys, err := c.snapshot(0, ToEnd)
	if err != nil {
		return nil, err
	}

	dst, err := c.resolveDestination(target, options, true)
	if err != nil {
		return nil, err
	}

	err = c.copyKeys(keys, dst, func(v record.Value) (any, bool, error) {
		ok, err := fn(v)
		return v, !ok, err
	})

	return dst, err
}

func (c *Collection) filterKey(key []byte, fn FilterFunc, kept *[][]byte) error {
	value, err := c.read(key)
	if err != nil {
		return err
	}

	ok, err := fn(value)
	if err != nil {
		return err
	}

	if ok {
		*kept = append(*kept, key)
		return nil
	}

	err = c.db.Delete(key)
	if err != nil {
		return fmt.Errorf("delete '%s': %w", key, err)
	}

	return nil
}

// Reduce folds the records from left to right and appends the result to
// target. The seed is initializer, or the first record when initializer is
// nil. Unlike Map and Filter, an existing target is not reset unless
// options.ResetCollection says so.
func (c *Collection) Reduce(fn ReduceFunc, target string, initializer any, options *Options) (*Collection, error) {
	return c.reduce(fn, initializer, nil, target, options)
}

// ReduceSeeded is like Reduce without initializer, but the accumulator starts
// as seed(first record) instead of the first record itself. The first record
// is taken from the same snapshot the fold runs over.
func (c *Collection) ReduceSeeded(fn ReduceFunc, seed SeedFunc, target string, options *Options) (*Collection, error) {
	return c.reduce(fn, nil, seed, target, options)
}

func (c *Collection) reduce(fn ReduceFunc, initializer any, seed SeedFunc, target string, options *Options) (*Collection, error) {

	keys, err := c.snapshot(0, ToEnd)
	if err != nil {
		return nil, err
	}

	var accumulator record.Value
	if initializer != nil {
		accumulator, err = record.Of(initializer)
		if err != nil {
			return nil, err
		}
	} else {
		if len(keys) == 0 {
			return nil, fmt.Errorf("%w: '%s'", ErrEmptyReduction, c.name)
		}
		accumulator, err = c.load(keys[0])
		if err != nil {
			return nil, err
		}
		keys = keys[1:]
		if seed != nil {
			seeded, err := seed(accumulator)
			if err != nil {
				return nil, err
			}
			accumulator, err = record.Of(seeded)
			if err != nil {
				return nil, err
			}
		}
	}

	for _, key := range keys {
		value, err := c.load(key)
		if err != nil {
			return nil, err
		}
		result, err := fn(accumulator, value)
		if err != nil {
			return nil, err
		}
		// a record.Value result is kept as is, see record.Of
		accumulator, err = record.Of(result)
		if err != nil {
			return nil, err
		}
	}

	dst, err := c.resolveDestination(target, options, false)
	if err != nil {
		return nil, err
	}

	return dst, dst.Append(accumulator)
}

// sample picks min(n, size) distinct positions uniformly and returns them
// sorted.
func sample(n, size int) []int {
	n = min(n, size)
	positions := rand.Perm(size)[:n]
	slices.Sort(positions)
	return positions
}

// RandomSubset keeps n records chosen uniformly at random, without
// replacement, in their original relative order. n larger than the
// collection keeps everything.
func (c *Collection) RandomSubset(n int, target string, options *Options) (*Collection, error) {

	if n < 0 {
		return nil, fmt.Errorf("%w: subset size %d", ErrIndexOutOfRange, n)
	}

	if c.inPlace(target) {
		c.mutex.Lock()
		defer c.mutex.Unlock()

		if c.err != nil {
			return nil, c.err
		}

		chosen := map[int]bool{}
		for _, p := range sample(n, len(c.keys)) {
			chosen[p] = true
		}

		kept := make([][]byte, 0, len(chosen))
		for i, key := range c.keys {
			if chosen[i] {
				kept = append(kept, key)
				continue
			}
			err := c.db.Delete(key)
			if err != nil {
				c.keys = append(kept, c.keys[i:]...)
				return nil, fmt.Errorf("delete '%s': %w", key, err)
			}
		}
		c.keys = kept

		return c, nil
	}

	keys, err := c.snapshot(0, ToEnd)
	if err != nil {
		return nil, err
	}

	selected := [][]byte{}
	for _, p := range sample(n, len(keys)) {
		selected = append(selected, keys[p])
	}

	dst, err := c.resolveDestination(target, options, true)
	if err != nil {
		return nil, err
	}

	err = c.copyKeys(selected, dst, func(v record.Value) (any, bool, error) {
		return v, false, nil
	})

	return dst, err
}
