package contracts

import (
	"bytes"
	"encoding/json"
	"math"
)

// Value is an optional float64. Indicators that cannot be computed from the
// available history are undefined, never zero or a sentinel number.
type Value struct {
	Val     float64
	Defined bool
}

// Defined returns a defined Value
func Defined(v float64) Value {
	return Value{Val: v, Defined: true}
}

// Undefined returns an undefined Value
func Undefined() Value {
	return Value{}
}

// Or returns the value, or fallback when undefined
func (v Value) Or(fallback float64) float64 {
	if v.Defined {
		return v.Val
	}
	return fallback
}

var jsonNull = []byte("null")

// MarshalJSON encodes undefined values as null
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Defined || math.IsNaN(v.Val) || math.IsInf(v.Val, 0) {
		return jsonNull, nil
	}
	return json.Marshal(v.Val)
}

// UnmarshalJSON decodes null as undefined
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		*v = Undefined()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Defined(f)
	return nil
}
