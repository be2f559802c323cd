package store

import (
	"fmt"

	"github.com/roach88/loredb/internal/attr"
)

// marshalAttr converts an attribute value to JSON TEXT for storage.
// A nil value is stored as "null". Failures are reported as ErrSerialization.
func marshalAttr(op, field string, v attr.Value) (string, error) {
	data, err := attr.Marshal(v)
	if err != nil {
		return "", newError(KindSerialization, op, fmt.Errorf("marshal %s: %w", field, err))
	}
	return string(data), nil
}

// unmarshalAttr parses JSON TEXT back into an attribute value.
// Numbers keep their stored literal text, so the round trip is exact.
func unmarshalAttr(op, field, data string) (attr.Value, error) {
	v, err := attr.Parse([]byte(data))
	if err != nil {
		return nil, newError(KindSerialization, op, fmt.Errorf("unmarshal %s: %w", field, err))
	}
	return v, nil
}
