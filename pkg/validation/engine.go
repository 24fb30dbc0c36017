package validation

import "github.com/aretw0/heartaxis/pkg/domain"

// Engine holds the validators configured for each mode.
// It is immutable after construction and safe for concurrent use.
type Engine struct {
	fields map[domain.Field]Validator
	groups map[domain.Mode]GroupValidator
}

// NewEngine builds the validators from the configured bounds.
func NewEngine(settings domain.Settings) *Engine {
	e := &Engine{
		fields: make(map[domain.Field]Validator, len(domain.Fields)),
		groups: map[domain.Mode]GroupValidator{
			domain.ModeSums: ValuesNotZero(domain.FieldSumI, domain.FieldSumIII),
			domain.ModeWaves: PairsNotZero(
				FieldPair{R: domain.FieldR1, QS: domain.FieldQS1},
				FieldPair{R: domain.FieldR3, QS: domain.FieldQS3},
			),
		},
	}
	for _, f := range domain.Fields {
		min, max := settings.Bounds(f)
		e.fields[f] = Compose(Required, Number, Minimum(min), Maximum(max))
	}
	return e
}

// Field validates a single reading against the rules of its field.
func (e *Engine) Field(f domain.Field, v domain.Value) domain.Flags {
	validate, ok := e.fields[f]
	if !ok {
		return nil
	}
	return validate(v)
}

// Evaluate checks the fields live in the given mode and the mode's
// cross-field rule, and reports every violation found.
func (e *Engine) Evaluate(mode domain.Mode, in domain.InputSet) domain.ValidationResult {
	var result domain.ValidationResult
	for _, f := range mode.Fields() {
		if flags := e.Field(f, in.Get(f)); len(flags) > 0 {
			if result.Fields == nil {
				result.Fields = make(map[domain.Field]domain.Flags)
			}
			result.Fields[f] = flags
		}
	}
	if group, ok := e.groups[mode]; ok {
		result.Form = group(in)
	}
	return result
}
