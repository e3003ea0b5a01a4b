package record

import (
	"math"
	"testing"

	"github.com/fulldump/biff"
	"github.com/google/go-cmp/cmp"
)

func TestOf_Canonical(t *testing.T) {

	type user struct {
		Name  string   `json:"name"`
		Age   int      `json:"age"`
		Tags  []string `json:"tags"`
		Admin bool     `json:"admin"`
	}

	v, err := Of(user{Name: "Pablo", Age: 33, Tags: []string{"a", "b"}})
	biff.AssertNil(err)
	biff.AssertEqual(v.Kind(), Map)

	want := map[string]any{
		"name":  "Pablo",
		"age":   float64(33),
		"tags":  []any{"a", "b"},
		"admin": false,
	}
	if diff := cmp.Diff(want, v.Interface()); diff != "" {
		t.Fatalf("unexpected record (-want +got):\n%s", diff)
	}
}

func TestKinds(t *testing.T) {
	cases := map[Kind]any{
		Null:   nil,
		Bool:   true,
		Number: 7,
		String: "hello",
		List:   []int{1, 2},
		Map:    map[string]int{"a": 1},
	}
	for kind, input := range cases {
		v := MustOf(input)
		if v.Kind() != kind {
			t.Errorf("Of(%v).Kind() = %s, want %s", input, v.Kind(), kind)
		}
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	inputs := []any{
		nil,
		false,
		3.5,
		"ñandú",
		[]any{1, "two", nil, []any{true}},
		map[string]any{"z": 1, "a": map[string]any{"nested": []any{}}},
	}
	for _, input := range inputs {
		v := MustOf(input)
		data, err := Encode(v)
		if err != nil {
			t.Fatalf("encode %v: %v", input, err)
		}
		decoded, err := Decode(data)
		if err != nil {
			t.Fatalf("decode %s: %v", data, err)
		}
		if !decoded.Equal(v) {
			t.Errorf("round trip of %s produced %s", v, decoded)
		}
	}
}

func TestEncode_Deterministic(t *testing.T) {
	v := MustOf(map[string]any{"b": 2, "a": 1, "c": 3})
	data, err := Encode(v)
	biff.AssertNil(err)
	biff.AssertEqual(string(data), `{"a":1,"b":2,"c":3}`)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode([]byte(`{"a":`))
	biff.AssertNotNil(err)
}

func TestAccessors(t *testing.T) {

	v := MustOf(map[string]any{"n": 1, "l": []any{"x"}})

	m, ok := v.AsMap()
	biff.AssertTrue(ok)

	n, ok := m["n"].AsNumber()
	biff.AssertTrue(ok)
	biff.AssertEqual(n, 1.0)

	l, ok := m["l"].AsList()
	biff.AssertTrue(ok)
	s, _ := l[0].AsString()
	biff.AssertEqual(s, "x")

	_, ok = v.AsString()
	biff.AssertFalse(ok)
}

func TestDecodeInto(t *testing.T) {
	type point struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	p := point{}
	err := MustOf(map[string]any{"x": 1, "y": 2}).DecodeInto(&p)
	biff.AssertNil(err)
	biff.AssertEqual(p, point{X: 1, Y: 2})
}

func TestZeroValueIsNull(t *testing.T) {
	v := Value{}
	biff.AssertTrue(v.IsNull())
	biff.AssertEqual(v.String(), "null")
}

func TestOf_Trees(t *testing.T) {
	biff.Alternative("Of with lists and maps", func(a *biff.A) {

		a.Alternative("Canonical list is wrapped", func(a *biff.A) {
			list := []any{1.0, "a", map[string]any{"b": nil}}
			v, err := Of(list)
			biff.AssertNil(err)
			biff.AssertTrue(&v.Interface().([]any)[0] == &list[0])
		})

		a.Alternative("Canonical map is wrapped", func(a *biff.A) {
			m := map[string]any{"a": []any{true}}
			v, err := Of(m)
			biff.AssertNil(err)
			v.Interface().(map[string]any)["x"] = 1.0
			biff.AssertEqual(m["x"], 1.0)
		})

		a.Alternative("Other leaves are converted", func(a *biff.A) {
			v, err := Of([]any{1, map[string]any{"n": int64(2)}})
			biff.AssertNil(err)
			biff.AssertEqual(v.Interface(), []any{1.0, map[string]any{"n": 2.0}})
		})

		a.Alternative("NaN is rejected", func(a *biff.A) {
			_, err := Of([]any{math.NaN()})
			biff.AssertNotNil(err)
		})
	})
}

func TestAppend(t *testing.T) {
	biff.Alternative("Append", func(a *biff.A) {

		a.Alternative("To a list", func(a *biff.A) {
			list := MustOf([]any{"a"})
			list, ok := list.Append(MustOf("b"), MustOf(map[string]any{"c": 1.0}))
			biff.AssertTrue(ok)
			biff.AssertEqual(list.Interface(), []any{"a", "b", map[string]any{"c": 1.0}})
		})

		a.Alternative("To something else", func(a *biff.A) {
			_, ok := MustOf("a").Append(MustOf("b"))
			biff.AssertFalse(ok)
		})

		a.Alternative("Many appends", func(a *biff.A) {
			list := MustOf([]any{})
			for i := 0; i < 100_000; i++ {
				list, _ = list.Append(MustOf(float64(i)))
			}
			items, _ := list.AsList()
			biff.AssertEqual(len(items), 100_000)
			biff.AssertEqual(items[99_999].Interface(), 99_999.0)
		})
	})
}
