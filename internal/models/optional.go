package models

import "encoding/json"

// Optional is a tri-state field for partial updates. It distinguishes a field
// that was absent from the payload (Set=false), explicitly null (Set=true,
// Valid=false), and explicitly valued (Set=true, Valid=true). Absent fields
// are preserved on merge; null clears an optional field.
type Optional[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// Some returns an Optional holding an explicit value.
func Some[T any](value T) Optional[T] {
	return Optional[T]{Set: true, Valid: true, Value: value}
}

// Null returns an Optional that explicitly clears the field.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// IsZero reports whether the field was absent. Combined with the omitzero
// struct tag it keeps absent fields out of marshaled partial updates, so a
// round-tripped request stays a partial update instead of clearing every
// untouched field.
func (o Optional[T]) IsZero() bool {
	return !o.Set
}

// Ptr returns the value as a pointer, or nil when the field was cleared.
func (o Optional[T]) Ptr() *T {
	if !o.Valid {
		return nil
	}
	value := o.Value
	return &value
}
