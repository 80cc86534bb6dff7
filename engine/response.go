package engine

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// encodeResult turns a synchronous step's return value into the callback
// response body. Empty values become {}, lists stay JSON arrays, objects
// stay objects and any other value is wrapped as {"value": v}.
func encodeResult(value any) ([]byte, error) {
	if isEmpty(value) {
		return []byte("{}"), nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode step result: %w", err)
	}

	switch data[0] {
	case '{', '[':
		return data, nil
	case 'n':
		return []byte("{}"), nil
	}

	wrapped, err := json.Marshal(map[string]json.RawMessage{"value": data})
	if err != nil {
		return nil, fmt.Errorf("failed to encode step result: %w", err)
	}
	return wrapped, nil
}

// isEmpty reports whether a result carries nothing worth returning
func isEmpty(value any) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return v.IsZero()
	}
	return false
}
