package domain

import "encoding/json"

// Optional distingue un campo ausente (Set=false) de uno enviado como null
// (Set=true, Value=nil).
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some construye un Optional presente con valor.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null construye un Optional presente y nulo.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// IsNull reporta si el campo vino explicitamente como null.
func (o Optional[T]) IsNull() bool {
	return o.Set && o.Value == nil
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}
