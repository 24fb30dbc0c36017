package domain

import (
	"math"
	"strconv"
	"strings"
)

// Value is a raw reading of a form field.
// The zero Value is a missing reading (blank field).
type Value struct {
	number  float64
	present bool
}

// Number returns a present reading. Non-finite numbers are kept as-is so
// the validation engine can report them.
func Number(f float64) Value {
	return Value{number: f, present: true}
}

// Missing returns a blank reading.
func Missing() Value {
	return Value{}
}

// ParseValue converts text typed into a field.
// Blank text is missing; text that is not a number becomes NaN.
func ParseValue(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return Missing()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number(math.NaN())
	}
	return Number(f)
}

// Present reports whether the field holds anything at all.
func (v Value) Present() bool {
	return v.present
}

// Float returns the reading and whether it is present.
func (v Value) Float() (float64, bool) {
	return v.number, v.present
}

// Finite reports whether the reading is a present, finite number.
func (v Value) Finite() bool {
	return v.present && !math.IsNaN(v.number) && !math.IsInf(v.number, 0)
}

// OrNaN returns the reading, or NaN when it is missing.
// NaN never equals zero, so a missing value cannot satisfy an "all zero" rule.
func (v Value) OrNaN() float64 {
	if !v.present {
		return math.NaN()
	}
	return v.number
}

// Equal compares two readings, treating NaN as equal to NaN.
func (v Value) Equal(o Value) bool {
	if v.present != o.present {
		return false
	}
	if !v.present {
		return true
	}
	if math.IsNaN(v.number) && math.IsNaN(o.number) {
		return true
	}
	return v.number == o.number
}

// String renders the reading the way it is stored in a flat mapping.
func (v Value) String() string {
	switch {
	case !v.present:
		return ""
	case math.IsNaN(v.number):
		return "NaN"
	case math.IsInf(v.number, 1):
		return "+Inf"
	case math.IsInf(v.number, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(v.number, 'g', -1, 64)
}
