package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// InputSet holds every field of the calculator form.
// It is a value type: With returns a modified copy, so a snapshot handed to
// the validation engine can never change underneath it.
type InputSet struct {
	SumI   Value `mapstructure:"sumI"`
	SumIII Value `mapstructure:"sumIII"`
	R1     Value `mapstructure:"r1"`
	QS1    Value `mapstructure:"qs1"`
	R3     Value `mapstructure:"r3"`
	QS3    Value `mapstructure:"qs3"`
}

// Get returns the reading of a field. Unknown fields read as missing.
func (in InputSet) Get(f Field) Value {
	switch f {
	case FieldSumI:
		return in.SumI
	case FieldSumIII:
		return in.SumIII
	case FieldR1:
		return in.R1
	case FieldQS1:
		return in.QS1
	case FieldR3:
		return in.R3
	case FieldQS3:
		return in.QS3
	}
	return Missing()
}

// With returns a copy of the set with one field replaced.
func (in InputSet) With(f Field, v Value) InputSet {
	switch f {
	case FieldSumI:
		in.SumI = v
	case FieldSumIII:
		in.SumIII = v
	case FieldR1:
		in.R1 = v
	case FieldQS1:
		in.QS1 = v
	case FieldR3:
		in.R3 = v
	case FieldQS3:
		in.QS3 = v
	}
	return in
}

// Equal compares every field, treating NaN readings as equal.
func (in InputSet) Equal(o InputSet) bool {
	for _, f := range Fields {
		if !in.Get(f).Equal(o.Get(f)) {
			return false
		}
	}
	return true
}

// ToMap serializes the set as a flat field -> value mapping.
// Missing readings become nil and non-finite ones their string form, so the
// mapping survives JSON encoding.
func (in InputSet) ToMap() map[string]any {
	m := make(map[string]any, len(Fields))
	for _, f := range Fields {
		v := in.Get(f)
		switch {
		case !v.Present():
			m[string(f)] = nil
		case v.Finite():
			n, _ := v.Float()
			m[string(f)] = n
		default:
			m[string(f)] = v.String()
		}
	}
	return m
}

// InputSetFromMap rebuilds a set from a flat mapping produced by ToMap
// (or decoded from JSON/YAML). Absent and nil keys read as missing.
func InputSetFromMap(m map[string]any) (InputSet, error) {
	var in InputSet
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  valueHook,
		ErrorUnused: true,
		Result:      &in,
	})
	if err != nil {
		return InputSet{}, err
	}
	if err := dec.Decode(m); err != nil {
		return InputSet{}, fmt.Errorf("failed to decode inputs: %w", err)
	}
	return in, nil
}

// MarshalJSON encodes the flat mapping.
func (in InputSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(in.ToMap())
}

// UnmarshalJSON decodes the flat mapping.
func (in *InputSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return err
	}
	decoded, err := InputSetFromMap(m)
	if err != nil {
		return err
	}
	*in = decoded
	return nil
}

var valueType = reflect.TypeOf(Value{})

// valueHook converts the loosely typed entries of a mapping into Values.
func valueHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != valueType {
		return data, nil
	}
	switch d := data.(type) {
	case Value:
		return d, nil
	case float64:
		return Number(d), nil
	case float32:
		return Number(float64(d)), nil
	case int:
		return Number(float64(d)), nil
	case int64:
		return Number(float64(d)), nil
	case json.Number:
		f, err := strconv.ParseFloat(d.String(), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", d, err)
		}
		return Number(f), nil
	case string:
		switch strings.TrimSpace(d) {
		case "NaN":
			return Number(math.NaN()), nil
		case "+Inf", "Inf":
			return Number(math.Inf(1)), nil
		case "-Inf":
			return Number(math.Inf(-1)), nil
		}
		return ParseValue(d), nil
	}
	return nil, fmt.Errorf("unsupported value type %T", data)
}
