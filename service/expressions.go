package service

import (
	"errors"
	"fmt"
	"slices"

	"github.com/SierraSoftworks/connor"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/fulldump/pipelinedb/collection"
	"github.com/fulldump/pipelinedb/record"
	"github.com/fulldump/pipelinedb/utils"
)

var ErrInvalidExpression = errors.New("invalid expression")

const (
	OpCount   = "count"
	OpSum     = "sum"
	OpMin     = "min"
	OpMax     = "max"
	OpCollect = "collect"
)

var ReduceOps = []string{OpCount, OpSum, OpMin, OpMax, OpCollect}

// extract returns the value found at path inside v. An empty path is the
// whole record, a path that does not exist is null.
func extract(v record.Value, path string) (record.Value, error) {
	if path == "" {
		return v, nil
	}

	data, err := record.Encode(v)
	if err != nil {
		return record.Value{}, err
	}

	result := gjson.GetBytes(data, path)
	if !result.Exists() {
		return record.Value{}, nil
	}

	return record.Decode([]byte(result.Raw))
}

// NewMapFunc builds a map transformation: the record is replaced by the value
// at pick (if any) and then every path in set is assigned.
func NewMapFunc(pick string, set map[string]any) (collection.MapFunc, error) {

	paths := utils.GetKeys(set)
	if slices.Contains(paths, "") {
		return nil, fmt.Errorf("%w: empty set path", ErrInvalidExpression)
	}

	return func(v record.Value) (any, error) {
		v, err := extract(v, pick)
		if err != nil {
			return nil, err
		}

		if len(paths) == 0 {
			return v, nil
		}

		if v.Kind() != record.Map {
			v = record.MustOf(map[string]any{})
		}

		data, err := record.Encode(v)
		if err != nil {
			return nil, err
		}

		for _, path := range paths {
			data, err = sjson.SetBytes(data, path, set[path])
			if err != nil {
				return nil, fmt.Errorf("set '%s': %w", path, err)
			}
		}

		return record.Decode(data)
	}, nil
}

// NewFilterFunc builds a predicate from connor conditions. Records that are
// not objects never match, an empty filter matches everything.
func NewFilterFunc(conditions map[string]any) collection.FilterFunc {
	return func(v record.Value) (bool, error) {
		if len(conditions) == 0 {
			return true, nil
		}

		data, ok := v.Interface().(map[string]any)
		if !ok {
			return false, nil
		}

		match, err := connor.Match(conditions, data)
		if err != nil {
			return false, fmt.Errorf("%w: filter: %s", ErrInvalidExpression, err.Error())
		}

		return match, nil
	}
}

// Reducer is a reduce operation ready to run over any collection.
type Reducer struct {
	Fold        collection.ReduceFunc
	Initializer any

	// Seed builds the accumulator from the first record when there is no
	// Initializer
	Seed collection.SeedFunc
}

// Reduce runs the reducer over col and appends the result to target.
func (r *Reducer) Reduce(col *collection.Collection, target string, options *collection.Options) (*collection.Collection, error) {
	if r.Initializer == nil && r.Seed != nil {
		return col.ReduceSeeded(r.Fold, r.Seed, target, options)
	}
	return col.Reduce(r.Fold, target, r.Initializer, options)
}

// NewReducer builds the reducer for op. When initializer is nil a default
// seed is chosen: 0 for count and sum, an empty list for collect and the
// first value for min and max, which then fail on an empty collection.
func NewReducer(op, path string, initializer any) (*Reducer, error) {

	switch op {
	case OpCount:
		if initializer == nil {
			initializer = 0
		}
		return &Reducer{
			Fold: func(acc, v record.Value) (any, error) {
				n, _ := acc.AsNumber()
				return n + 1, nil
			},
			Initializer: initializer,
		}, nil

	case OpSum:
		if initializer == nil {
			initializer = 0
		}
		return &Reducer{
			Fold: func(acc, v record.Value) (any, error) {
				total, _ := acc.AsNumber()
				value, err := extract(v, path)
				if err != nil {
					return nil, err
				}
				if n, ok := value.AsNumber(); ok {
					total += n
				}
				return total, nil
			},
			Initializer: initializer,
		}, nil

	case OpMin, OpMax:
		return &Reducer{
			Fold: func(acc, v record.Value) (any, error) {
				value, err := extract(v, path)
				if err != nil {
					return nil, err
				}
				n, ok := value.AsNumber()
				if !ok {
					return acc, nil
				}
				current, ok := acc.AsNumber()
				if !ok {
					return n, nil
				}
				if op == OpMin && n < current || op == OpMax && n > current {
					return n, nil
				}
				return acc, nil
			},
			Initializer: initializer,
			Seed: func(first record.Value) (any, error) {
				return extract(first, path)
			},
		}, nil

	case OpCollect:
		if initializer == nil {
			initializer = []any{}
		}
		return &Reducer{
			Fold: func(acc, v record.Value) (any, error) {
				if acc.Kind() != record.List {
					acc = record.MustOf([]any{acc.Interface()})
				}
				value, err := extract(v, path)
				if err != nil {
					return nil, err
				}
				// the accumulator belongs to the fold, it is extended in place
				list, _ := acc.Append(value)
				return list, nil
			},
			Initializer: initializer,
		}, nil
	}

	return nil, fmt.Errorf("%w: unknown op '%s', must be one of %v", ErrInvalidExpression, op, ReduceOps)
}
