package domain

import "fmt"

// Field names a form field. The names are also the keys of the persisted mapping.
type Field string

const (
	FieldSumI   Field = "sumI"
	FieldSumIII Field = "sumIII"
	FieldR1     Field = "r1"
	FieldQS1    Field = "qs1"
	FieldR3     Field = "r3"
	FieldQS3    Field = "qs3"
)

// Fields lists every form field in display order.
var Fields = []Field{FieldSumI, FieldSumIII, FieldR1, FieldQS1, FieldR3, FieldQS3}

// ParseField validates a field name coming from a host.
func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Mode selects which group of fields feeds the calculation.
type Mode string

const (
	ModeSums  Mode = "sums"  // sumI and sumIII
	ModeWaves Mode = "waves" // r1, qs1, r3 and qs3
)

// ModeOf maps the shared useSums flag to a Mode.
func ModeOf(useSums bool) Mode {
	if useSums {
		return ModeSums
	}
	return ModeWaves
}

// Fields returns the fields that are live in this mode.
func (m Mode) Fields() []Field {
	if m == ModeSums {
		return []Field{FieldSumI, FieldSumIII}
	}
	return []Field{FieldR1, FieldQS1, FieldR3, FieldQS3}
}

// Owns reports whether the field belongs to this mode's group.
func (m Mode) Owns(f Field) bool {
	for _, own := range m.Fields() {
		if own == f {
			return true
		}
	}
	return false
}
