package policy

import "encoding/json"

// Field carries a tri-state patch value: omitted, explicit null, or set.
// JSON decoding distinguishes a field submitted as null (clears the column)
// from a field absent from the payload (leaves it unchanged).
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// NewField returns a set field holding value.
func NewField[T any](value T) Field[T] {
	return Field[T]{Set: true, Value: value}
}

// NullField returns a field explicitly submitted as null.
func NullField[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// Ptr returns the value as a nullable pointer, nil for explicit null.
func (f Field[T]) Ptr() *T {
	if !f.Set || f.Null {
		return nil
	}
	v := f.Value
	return &v
}

// UnmarshalJSON is only invoked for fields present in the payload, so Set
// remains false for omitted fields.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		f.Null = true
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

// MarshalJSON renders explicit nulls as JSON null.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
