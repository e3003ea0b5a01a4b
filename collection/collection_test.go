package collection

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fulldump/biff"

	"github.com/fulldump/pipelinedb/record"
	"github.com/fulldump/pipelinedb/store"
)

func TestAppend(t *testing.T) {
	Environment(func(d *directory, m *store.Memory) {

		c := mustCollection(d, "test")

		// Run
		err := c.Append(map[string]interface{}{"hello": "world"})

		// Check
		biff.AssertNil(err)
		biff.AssertEqual(c.Len(), 1)
		raw, _ := m.Get([]byte("collection-items/test!!00000000000000000001"))
		biff.AssertEqual(string(raw), `{"hello":"world"}`)

		last, err := c.Get(c.Len() - 1)
		biff.AssertNil(err)
		biff.AssertEqual(last.Interface(), map[string]any{"hello": "world"})
	})
}

func TestOpenCollection_InvalidName(t *testing.T) {
	Environment(func(d *directory, m *store.Memory) {
		_, err := OpenCollection("a !! collection", d.items, d)
		biff.AssertTrue(errors.Is(err, ErrInvalidName))

		_, err = OpenCollection("", d.items, d)
		biff.AssertTrue(errors.Is(err, ErrInvalidName))
	})
}

func TestKeysKeepNumericOrder(t *testing.T) {
	Environment(func(d *directory, m *store.Memory) {

		c := mustCollection(d, "test")
		for i := 1; i <= 12; i++ {
			biff.AssertNil(c.Append(i))
		}

		// Reload from the store
		biff.AssertNil(c.Refresh())

		biff.AssertEqual(c.LastIndex(), uint64(12))
		values := contents(c)
		for i, v := range values {
			biff.AssertEqual(v, float64(i+1))
		}
	})
}

func TestRandomAccess(t *testing.T) {
	Environment(func(d *directory, m *store.Memory) {

		c := mustCollection(d, "test", []int{1, 2}, map[string]string{"a": "b"}, []int{3, 4})

		v, _ := c.Get(1)
		biff.AssertEqual(v.Interface(), map[string]any{"a": "b"})

		_, err := c.Get(3)
		biff.AssertTrue(errors.Is(err, ErrIndexOutOfRange))

		_, err = c.Get(-1)
		biff.AssertTrue(errors.Is(err, ErrIndexOutOfRange))

		biff.AssertNil(c.Set(1, []int{5, 6}))
		v, _ = c.Get(1)
		biff.AssertEqual(v.Interface(), []any{5.0, 6.0})

		err = c.Set(3, []int{3, 4})
		biff.AssertTrue(errors.Is(err, ErrIndexOutOfRange))
	})
}

func TestSlice(t *testing.T) {
	Environment(func(d *directory, m *store.Memory) {

		c := mustCollection(d, "test", "a", "b", "c", "d")

		values, err := c.Slice(1, 3)
		biff.AssertNil(err)
		biff.AssertEqual(len(values), 2)
		biff.AssertEqual(values[0].Interface(), "b")
		biff.AssertEqual(values[1].Interface(), "c")

		values, _ = c.Slice(2, 100)
		biff.AssertEqual(len(values), 2)

		values, _ = c.Slice(3, 1)
		biff.AssertEqual(len(values), 0)
	})
}

func TestSlice_NegativeBounds(t *testing.T) {
	biff.Alternative("Negative bounds", func(a *biff.A) {
		Environment(func(d *directory, m *store.Memory) {

			c := mustCollection(d, "test", "a", "b", "c", "d")

			slice := func(from, to int) []any {
				values, err := c.Slice(from, to)
				biff.AssertNil(err)
				result := []any{}
				for _, v := range values {
					result = append(result, v.Interface())
				}
				return result
			}

			a.Alternative("To counts from the end", func(a *biff.A) {
				biff.AssertEqual(slice(0, -1), []any{"a", "b", "c"})
				biff.AssertEqual(slice(0, -2), []any{"a", "b"})
			})

			a.Alternative("From counts from the end", func(a *biff.A) {
				biff.AssertEqual(slice(-2, ToEnd), []any{"c", "d"})
				biff.AssertEqual(slice(-3, -1), []any{"b", "c"})
			})

			a.Alternative("Beyond the start is clamped", func(a *biff.A) {
				biff.AssertEqual(slice(-10, 1), []any{"a"})
				biff.AssertEqual(slice(0, -10), []any{})
			})

			a.Alternative("Iterate uses the same bounds", func(a *biff.A) {
				it := c.Iterate(1, -1)
				biff.AssertEqual(it.Remaining(), 2)
			})
		})
	})
}

func TestDelete(t *testing.T) {
	biff.Alternative("Delete", func(a *biff.A) {
		Environment(func(d *directory, m *store.Memory) {

			c := mustCollection(d, "test", "a", "b", "c")

			a.Alternative("Delete first shifts positions", func(a *biff.A) {
				biff.AssertNil(c.Delete(0))
				biff.AssertEqual(contents(c), []any{"b", "c"})
				biff.AssertEqual(c.LastIndex(), uint64(3))

				a.Alternative("Refresh is idempotent", func(a *biff.A) {
					biff.AssertNil(c.Refresh())
					biff.AssertEqual(contents(c), []any{"b", "c"})
					biff.AssertEqual(c.LastIndex(), uint64(3))
				})

				a.Alternative("Keys are not reused", func(a *biff.A) {
					biff.AssertNil(c.Append("d"))
					biff.AssertEqual(c.LastIndex(), uint64(4))
					biff.AssertEqual(contents(c), []any{"b", "c", "d"})
				})
			})

			a.Alternative("Delete out of range", func(a *biff.A) {
				err := c.Delete(3)
				biff.AssertTrue(errors.Is(err, ErrIndexOutOfRange))
				biff.AssertEqual(c.Len(), 3)
			})

			a.Alternative("Delete all resets the counter", func(a *biff.A) {
				biff.AssertNil(c.DeleteAll())
				biff.AssertEqual(c.Len(), 0)
				biff.AssertEqual(c.LastIndex(), uint64(0))

				biff.AssertNil(c.Append("z"))
				biff.AssertEqual(c.Len(), 1)
				biff.AssertEqual(c.LastIndex(), uint64(1))
				biff.AssertEqual(contents(c), []any{"z"})
			})
		})
	})
}

func TestRefresh_SeesOutOfBandWrites(t *testing.T) {
	Environment(func(d *directory, m *store.Memory) {

		c := mustCollection(d, "test", "a")

		m.Put([]byte("collection-items/test!!00000000000000000007"), []byte(`"b"`))
		biff.AssertEqual(c.Len(), 1)

		biff.AssertNil(c.Refresh())
		biff.AssertEqual(c.Len(), 2)
		biff.AssertEqual(c.LastIndex(), uint64(7))
	})
}

func TestRefresh_UnpaddedKeysKeepIndexOrder(t *testing.T) {
	Environment(func(d *directory, m *store.Memory) {

		m.Put([]byte("collection-items/legacy!!1"), []byte(`"a"`))
		m.Put([]byte("collection-items/legacy!!2"), []byte(`"b"`))

		c := mustCollection(d, "legacy")
		biff.AssertEqual(contents(c), []any{"a", "b"})
		biff.AssertEqual(c.LastIndex(), uint64(2))

		biff.AssertNil(c.Append("c"))
		biff.AssertEqual(contents(c), []any{"a", "b", "c"})

		biff.AssertNil(c.Refresh())
		biff.AssertEqual(contents(c), []any{"a", "b", "c"})
		biff.AssertEqual(c.LastIndex(), uint64(3))
	})
}

func TestNamesEndingWithExclamation(t *testing.T) {
	Environment(func(d *directory, m *store.Memory) {

		a := mustCollection(d, "a", 1)
		b := mustCollection(d, "a!", 2, 3)

		biff.AssertNil(a.Refresh())
		biff.AssertEqual(contents(a), []any{1.0})
		biff.AssertEqual(contents(b), []any{2.0, 3.0})

		biff.AssertNil(a.DeleteAll())
		biff.AssertEqual(contents(b), []any{2.0, 3.0})
	})
}

func TestIterator(t *testing.T) {
	Environment(func(d *directory, m *store.Memory) {

		c := mustCollection(d, "test", 1, 2, 3, 4)

		it := c.Iterate(1, ToEnd)
		biff.AssertEqual(it.Remaining(), 3)

		// Appends after creation are not visited
		biff.AssertNil(c.Append(5))

		visited := []any{}
		for it.Next() {
			visited = append(visited, it.Record().Interface())
		}
		biff.AssertNil(it.Err())
		biff.AssertEqual(visited, []any{2.0, 3.0, 4.0})
		biff.AssertFalse(it.Next())
	})
}

func TestInvalidate(t *testing.T) {
	Environment(func(d *directory, m *store.Memory) {

		c := mustCollection(d, "test", 1)
		it := c.Iterate(0, ToEnd)

		c.Invalidate(ErrCollectionDropped)

		biff.AssertEqual(c.Append(2), ErrCollectionDropped)
		_, err := c.Get(0)
		biff.AssertEqual(err, ErrCollectionDropped)
		biff.AssertEqual(c.Refresh(), ErrCollectionDropped)
		biff.AssertFalse(it.Next())
		biff.AssertEqual(it.Err(), ErrCollectionDropped)
	})
}

func TestMap(t *testing.T) {
	double := func(v record.Value) (any, error) {
		n, _ := v.AsNumber()
		return n * 2, nil
	}

	biff.Alternative("Map", func(a *biff.A) {
		Environment(func(d *directory, m *store.Memory) {

			c := mustCollection(d, "numbers", 1, 2, 3)

			a.Alternative("In place", func(a *biff.A) {
				result, err := c.Map(double, "", nil)
				biff.AssertNil(err)
				biff.AssertEqual(result, c)
				biff.AssertEqual(contents(c), []any{2.0, 4.0, 6.0})
				biff.AssertEqual(c.LastIndex(), uint64(3))
			})

			a.Alternative("In place by own name", func(a *biff.A) {
				result, err := c.Map(double, "numbers", nil)
				biff.AssertNil(err)
				biff.AssertEqual(result, c)
				biff.AssertEqual(contents(c), []any{2.0, 4.0, 6.0})
			})

			a.Alternative("To another collection", func(a *biff.A) {
				other := mustCollection(d, "doubled", "previous")

				result, err := c.Map(double, "doubled", nil)
				biff.AssertNil(err)
				biff.AssertEqual(result, other)
				biff.AssertEqual(contents(other), []any{2.0, 4.0, 6.0})
				biff.AssertEqual(contents(c), []any{1.0, 2.0, 3.0})
			})

			a.Alternative("Destination must exist", func(a *biff.A) {
				_, err := c.Map(double, "missing", &Options{CreateIfMissing: false})
				biff.AssertTrue(errors.Is(err, errTestNotFound))
			})

			a.Alternative("Function error stops the map", func(a *biff.A) {
				boom := errors.New("boom")
				_, err := c.Map(func(v record.Value) (any, error) {
					return nil, boom
				}, "", nil)
				biff.AssertTrue(errors.Is(err, boom))
				biff.AssertEqual(contents(c), []any{1.0, 2.0, 3.0})
			})
		})
	})
}

func TestFilter(t *testing.T) {
	even := func(v record.Value) (bool, error) {
		n, _ := v.AsNumber()
		return int(n)%2 == 0, nil
	}

	biff.Alternative("Filter", func(a *biff.A) {
		Environment(func(d *directory, m *store.Memory) {

			c := mustCollection(d, "numbers", 1, 2, 3, 4, 5, 6)

			a.Alternative("In place", func(a *biff.A) {
				_, err := c.Filter(even, "", nil)
				biff.AssertNil(err)
				biff.AssertEqual(contents(c), []any{2.0, 4.0, 6.0})

				biff.AssertNil(c.Refresh())
				biff.AssertEqual(contents(c), []any{2.0, 4.0, 6.0})
			})

			a.Alternative("To another collection", func(a *biff.A) {
				other, err := c.Filter(even, "even", nil)
				biff.AssertNil(err)
				biff.AssertEqual(contents(other), []any{2.0, 4.0, 6.0})
				biff.AssertEqual(c.Len(), 6)
			})
		})
	})
}

func TestReduce(t *testing.T) {
	add := func(acc, v record.Value) (any, error) {
		a, _ := acc.AsNumber()
		b, _ := v.AsNumber()
		return a + b, nil
	}

	biff.Alternative("Reduce", func(a *biff.A) {
		Environment(func(d *directory, m *store.Memory) {

			c := mustCollection(d, "numbers", 1, 2, 3)

			a.Alternative("Appends to target without reset", func(a *biff.A) {
				s, err := c.Reduce(add, "S", nil, nil)
				biff.AssertNil(err)
				biff.AssertEqual(contents(s), []any{6.0})

				_, err = c.Reduce(add, "S", 5, nil)
				biff.AssertNil(err)
				biff.AssertEqual(contents(s), []any{6.0, 11.0})
			})

			a.Alternative("In place appends the result", func(a *biff.A) {
				_, err := c.Reduce(add, "", nil, nil)
				biff.AssertNil(err)
				biff.AssertEqual(contents(c), []any{1.0, 2.0, 3.0, 6.0})
			})

			a.Alternative("Empty collection", func(a *biff.A) {
				empty := mustCollection(d, "empty")

				_, err := empty.Reduce(add, "S", nil, nil)
				biff.AssertTrue(errors.Is(err, ErrEmptyReduction))

				s, err := empty.Reduce(add, "S", 10, nil)
				biff.AssertNil(err)
				biff.AssertEqual(contents(s), []any{10.0})
			})

			a.Alternative("Seeded from the first record", func(a *biff.A) {
				seen := []any{}
				tenfold := func(first record.Value) (any, error) {
					seen = append(seen, first.Interface())
					n, _ := first.AsNumber()
					return n * 10, nil
				}

				s, err := c.ReduceSeeded(add, tenfold, "S", nil)
				biff.AssertNil(err)
				biff.AssertEqual(contents(s), []any{15.0})
				biff.AssertEqual(seen, []any{1.0})
			})

			a.Alternative("Seeded on an empty collection", func(a *biff.A) {
				empty := mustCollection(d, "empty")
				called := false
				_, err := empty.ReduceSeeded(add, func(first record.Value) (any, error) {
					called = true
					return first, nil
				}, "S", nil)
				biff.AssertTrue(errors.Is(err, ErrEmptyReduction))
				biff.AssertFalse(called)
			})

			a.Alternative("Growing accumulator", func(a *biff.A) {
				if testing.Short() {
					return
				}

				big := mustCollection(d, "big")
				for i := 0; i < 20_000; i++ {
					biff.AssertNil(big.Append(float64(i)))
				}

				collect := func(acc, v record.Value) (any, error) {
					list, _ := acc.Append(v)
					return list, nil
				}

				started := time.Now()
				s, err := big.Reduce(collect, "S", []any{}, nil)
				biff.AssertNil(err)
				biff.AssertTrue(time.Since(started) < 10*time.Second)

				result, _ := s.Get(0)
				items, _ := result.AsList()
				biff.AssertEqual(len(items), 20_000)
				biff.AssertEqual(items[19_999].Interface(), 19_999.0)
			})
		})
	})
}

func isSubsequence(sub, full []any) bool {
	i := 0
	for _, v := range full {
		if i < len(sub) && sub[i] == v {
			i++
		}
	}
	return i == len(sub)
}

func TestRandomSubset(t *testing.T) {
	biff.Alternative("RandomSubset", func(a *biff.A) {
		Environment(func(d *directory, m *store.Memory) {

			c := mustCollection(d, "numbers")
			original := []any{}
			for i := 0; i < 20; i++ {
				c.Append(i)
				original = append(original, float64(i))
			}

			a.Alternative("In place", func(a *biff.A) {
				_, err := c.RandomSubset(5, "", nil)
				biff.AssertNil(err)
				biff.AssertEqual(c.Len(), 5)
				biff.AssertTrue(isSubsequence(contents(c), original))

				biff.AssertNil(c.Refresh())
				biff.AssertEqual(c.Len(), 5)
			})

			a.Alternative("To another collection", func(a *biff.A) {
				mustCollection(d, "sample", "previous")

				sample, err := c.RandomSubset(7, "sample", nil)
				biff.AssertNil(err)
				biff.AssertEqual(sample.Len(), 7)
				biff.AssertTrue(isSubsequence(contents(sample), original))
				biff.AssertEqual(contents(c), original)
			})

			a.Alternative("Larger than the collection", func(a *biff.A) {
				_, err := c.RandomSubset(100, "", nil)
				biff.AssertNil(err)
				biff.AssertEqual(contents(c), original)
			})

			a.Alternative("Negative size", func(a *biff.A) {
				_, err := c.RandomSubset(-1, "", nil)
				biff.AssertTrue(errors.Is(err, ErrIndexOutOfRange))
			})
		})
	})
}

func TestCopyTo(t *testing.T) {
	Environment(func(d *directory, m *store.Memory) {

		c := mustCollection(d, "source", "a", "b", "c", "d")

		dst, err := c.CopyTo("copy", 1, 3, nil)
		biff.AssertNil(err)
		biff.AssertEqual(contents(dst), []any{"b", "c"})

		// Not aliased
		biff.AssertNil(c.Set(1, "changed"))
		biff.AssertEqual(contents(dst), []any{"b", "c"})

		_, err = c.CopyTo("source", 0, ToEnd, nil)
		biff.AssertTrue(errors.Is(err, ErrSameCollection))
	})
}

func TestInsert100K(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	Environment(func(d *directory, m *store.Memory) {
		c := mustCollection(d, "big")

		n := 100 * 1000
		for i := 0; i < n; i++ {
			c.Append(map[string]interface{}{"hello": "world", "n": i})
		}

		biff.AssertEqual(c.Len(), n)
		last, _ := c.Get(n - 1)
		biff.AssertEqual(last.String(), fmt.Sprintf(`{"hello":"world","n":%d}`, n-1))
	})
}
