package record

import (
	"fmt"

	json "github.com/go-json-experiment/json"
)

// Encode serializes a record. Map keys are sorted so equal records always
// produce equal bytes.
func Encode(v Value) ([]byte, error) {
	data, err := json.Marshal(v.v, json.Deterministic(true))
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return data, nil
}

func Decode(data []byte) (Value, error) {
	var v any
	err := json.Unmarshal(data, &v)
	if err != nil {
		return Value{}, fmt.Errorf("decode record: %w", err)
	}
	return Value{v: v}, nil
}
