package contracts

import (
	"encoding/json"
	"math"
	"strconv"
)

// OptionalFloat is a decimal value that may be absent.
// 데이터 제공자가 null 또는 숫자가 아닌 값을 주면 Valid=false
type OptionalFloat struct {
	Value float64
	Valid bool
}

// Some returns a present value
func Some(v float64) OptionalFloat {
	return OptionalFloat{Value: v, Valid: true}
}

// None returns an absent value
func None() OptionalFloat {
	return OptionalFloat{}
}

// Get returns the value and whether it is present
func (o OptionalFloat) Get() (float64, bool) {
	return o.Value, o.Valid
}

// UnmarshalJSON never fails: null, strings and non-finite numbers decode as absent.
func (o *OptionalFloat) UnmarshalJSON(data []byte) error {
	*o = OptionalFloat{}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}

	*o = Some(f)
	return nil
}

// MarshalJSON encodes absent values as null
func (o OptionalFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(o.Value, 'f', -1, 64)), nil
}

func (o OptionalFloat) String() string {
	if !o.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(o.Value, 'f', -1, 64)
}
