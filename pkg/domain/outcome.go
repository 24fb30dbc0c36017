package domain

import (
	"encoding/json"
	"math"
)

// DefaultErrorMarker is displayed instead of an angle whenever the form is invalid.
const DefaultErrorMarker = "ERROR"

// Deviation classifies an axis angle.
type Deviation string

const (
	DeviationNormal       Deviation = "normal"
	DeviationLeft         Deviation = "left"
	DeviationRight        Deviation = "right"
	DeviationExtreme      Deviation = "extreme"
	DeviationUndetermined Deviation = "undetermined"
)

// Outcome is the result of one recompute.
type Outcome struct {
	Mode Mode

	// Angle is the axis in degrees, NaN when validation failed or the
	// computation was undefined.
	Angle float64

	// Magnitude is the length of the resultant vector, NaN alongside Angle.
	Magnitude float64

	Deviation Deviation

	// Display is the formatted angle or the error marker.
	Display string

	// FormInvalid drives the error styling of the host.
	FormInvalid bool

	Validation ValidationResult
}

// HasAngle reports whether Angle is a definitive value.
func (o Outcome) HasAngle() bool {
	return !math.IsNaN(o.Angle) && !math.IsInf(o.Angle, 0)
}

type outcomeJSON struct {
	Mode        Mode             `json:"mode"`
	Angle       *float64         `json:"angle,omitempty"`
	Magnitude   *float64         `json:"magnitude,omitempty"`
	Deviation   Deviation        `json:"deviation"`
	Display     string           `json:"display"`
	FormInvalid bool             `json:"form_invalid"`
	Rules       []Rule           `json:"rules,omitempty"`
	Validation  ValidationResult `json:"validation"`
}

// MarshalJSON omits the angle and magnitude when they are not finite.
func (o Outcome) MarshalJSON() ([]byte, error) {
	out := outcomeJSON{
		Mode:        o.Mode,
		Deviation:   o.Deviation,
		Display:     o.Display,
		FormInvalid: o.FormInvalid,
		Rules:       o.Validation.Rules(),
		Validation:  o.Validation,
	}
	if o.HasAngle() {
		angle, magnitude := o.Angle, o.Magnitude
		out.Angle = &angle
		out.Magnitude = &magnitude
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores an outcome; a missing angle reads back as NaN.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var in outcomeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*o = Outcome{
		Mode:        in.Mode,
		Angle:       math.NaN(),
		Magnitude:   math.NaN(),
		Deviation:   in.Deviation,
		Display:     in.Display,
		FormInvalid: in.FormInvalid,
		Validation:  in.Validation,
	}
	if in.Angle != nil {
		o.Angle = *in.Angle
	}
	if in.Magnitude != nil {
		o.Magnitude = *in.Magnitude
	}
	return nil
}
