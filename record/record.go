// Package record models the values stored in a collection: any tree of null,
// bool, number, string, list and map, serialized as JSON.
package record

import (
	"fmt"
	"math"
	"reflect"

	json "github.com/go-json-experiment/json"
)

type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	List
	Map
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case List:
		return "list"
	case Map:
		return "map"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is an opaque record. The zero Value is null.
//
// Internally it always holds the canonical decoded JSON form: nil, bool,
// float64, string, []any or map[string]any.
type Value struct {
	v any
}

// Of converts any JSON serializable Go value into a Value.
//
// Values already in canonical form, including lists and maps made only of
// canonical values, are wrapped as they are and not copied: the caller must
// not modify them afterwards.
func Of(v any) (Value, error) {
	switch v := v.(type) {
	case Value:
		return v, nil
	case *Value:
		if v == nil {
			return Value{}, nil
		}
		return *v, nil
	case nil:
		return Value{}, nil
	case bool, float64, string:
		return Value{v: v}, nil
	case []any, map[string]any:
		if canonical(v) {
			return Value{v: v}, nil
		}
	}

	data, err := json.Marshal(v, json.Deterministic(true))
	if err != nil {
		return Value{}, fmt.Errorf("encode record: %w", err)
	}
	return Decode(data)
}

// canonical tells whether v is already a decoded JSON tree. Numbers that
// JSON cannot represent are not.
func canonical(v any) bool {
	switch v := v.(type) {
	case nil, bool, string:
		return true
	case float64:
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	case []any:
		for _, item := range v {
			if !canonical(item) {
				return false
			}
		}
		return true
	case map[string]any:
		for _, item := range v {
			if !canonical(item) {
				return false
			}
		}
		return true
	}
	return false
}

// MustOf is like Of but panics on error. Intended for literals and tests.
func MustOf(v any) Value {
	value, err := Of(v)
	if err != nil {
		panic(err)
	}
	return value
}

func (v Value) Kind() Kind {
	switch v.v.(type) {
	case bool:
		return Bool
	case float64:
		return Number
	case string:
		return String
	case []any:
		return List
	case map[string]any:
		return Map
	}
	return Null
}

func (v Value) IsNull() bool {
	return v.v == nil
}

// Interface returns the canonical decoded form. Callers must not modify
// returned lists or maps.
func (v Value) Interface() any {
	return v.v
}

func (v Value) AsBool() (bool, bool) {
	b, ok := v.v.(bool)
	return b, ok
}

func (v Value) AsNumber() (float64, bool) {
	n, ok := v.v.(float64)
	return n, ok
}

func (v Value) AsString() (string, bool) {
	s, ok := v.v.(string)
	return s, ok
}

func (v Value) AsList() ([]Value, bool) {
	l, ok := v.v.([]any)
	if !ok {
		return nil, false
	}
	result := make([]Value, len(l))
	for i, item := range l {
		result[i] = Value{v: item}
	}
	return result, true
}

// Append returns the list v with items added at the end, or false when v is
// not a list. The result may share storage with v, so v must not be appended
// to again.
func (v Value) Append(items ...Value) (Value, bool) {
	l, ok := v.v.([]any)
	if !ok {
		return Value{}, false
	}
	for _, item := range items {
		l = append(l, item.v)
	}
	return Value{v: l}, true
}

func (v Value) AsMap() (map[string]Value, bool) {
	m, ok := v.v.(map[string]any)
	if !ok {
		return nil, false
	}
	result := make(map[string]Value, len(m))
	for k, item := range m {
		result[k] = Value{v: item}
	}
	return result, true
}

func (v Value) Equal(other Value) bool {
	return reflect.DeepEqual(v.v, other.v)
}

// DecodeInto fills dst (a pointer) from the record, like json.Unmarshal.
func (v Value) DecodeInto(dst any) error {
	data, err := Encode(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func (v Value) String() string {
	data, err := Encode(v)
	if err != nil {
		return fmt.Sprintf("!invalid(%v)", err)
	}
	return string(data)
}

func (v Value) MarshalJSON() ([]byte, error) {
	return Encode(v)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}
