package form

import (
	"strconv"

	"github.com/aretw0/heartaxis/pkg/domain"
)

// DegreeSign trails every formatted angle.
const DegreeSign = "°"

// Display configures how outcomes are rendered to text.
type Display struct {
	// Precision is the number of decimals; a negative value keeps the
	// shortest representation that round-trips.
	Precision int `json:"precision" yaml:"precision"`

	// ErrorMarker replaces the angle whenever the outcome is invalid.
	ErrorMarker string `json:"error_marker" yaml:"error_marker"`
}

// DefaultDisplay renders one decimal and the literal ERROR marker.
func DefaultDisplay() Display {
	return Display{Precision: 1, ErrorMarker: domain.DefaultErrorMarker}
}

// Format renders an angle, or the error marker when it is not definitive.
func (d Display) Format(o domain.Outcome) string {
	if o.FormInvalid || !o.HasAngle() {
		return d.marker()
	}
	return strconv.FormatFloat(o.Angle, 'f', d.Precision, 64) + DegreeSign
}

func (d Display) marker() string {
	if d.ErrorMarker == "" {
		return domain.DefaultErrorMarker
	}
	return d.ErrorMarker
}
