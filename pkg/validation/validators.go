package validation

import "github.com/aretw0/heartaxis/pkg/domain"

// Validator checks a single field reading and returns the violated rules, or
// nil when the reading is valid.
type Validator func(v domain.Value) domain.Flags

// GroupValidator checks relationships between fields of a snapshot.
type GroupValidator func(in domain.InputSet) domain.Flags

// Required flags a blank field.
func Required(v domain.Value) domain.Flags {
	if !v.Present() {
		return domain.Flag(domain.RuleRequired)
	}
	return nil
}

// Number flags a field that does not hold a finite number, blank included.
func Number(v domain.Value) domain.Flags {
	f, ok := v.Float()
	if !ok || !VerifyNumber(f) {
		return domain.Flag(domain.RuleInvalidNumber)
	}
	return nil
}

// Minimum flags readings below min. Blank readings are not compared, and a
// NaN reading never compares below anything.
func Minimum(min float64) Validator {
	return func(v domain.Value) domain.Flags {
		f, ok := v.Float()
		if ok && !CheckMinimum(min, f) {
			return domain.Flag(domain.RuleInvalidMinimum)
		}
		return nil
	}
}

// Maximum flags readings above max, with the same rules as Minimum.
func Maximum(max float64) Validator {
	return func(v domain.Value) domain.Flags {
		f, ok := v.Float()
		if ok && !CheckMaximum(max, f) {
			return domain.Flag(domain.RuleInvalidMaximum)
		}
		return nil
	}
}

// Compose runs every validator and merges their flags.
func Compose(validators ...Validator) Validator {
	return func(v domain.Value) domain.Flags {
		var flags domain.Flags
		for _, validate := range validators {
			flags = flags.Merge(validate(v))
		}
		return flags
	}
}

// ValuesNotZero flags a snapshot whose given fields are all exactly zero.
// Missing readings count as non-zero: a blank field is reported by Required.
func ValuesNotZero(fields ...domain.Field) GroupValidator {
	return func(in domain.InputSet) domain.Flags {
		values := make([]float64, len(fields))
		for i, f := range fields {
			values[i] = in.Get(f).OrNaN()
		}
		if !AllValuesNotZero(values...) {
			return domain.Flag(domain.RuleAllValueIsZero)
		}
		return nil
	}
}

// FieldPair names the two fields of a wave reading.
type FieldPair struct {
	R, QS domain.Field
}

// PairsNotZero flags a snapshot where every R - QS difference is exactly zero.
func PairsNotZero(pairs ...FieldPair) GroupValidator {
	return func(in domain.InputSet) domain.Flags {
		values := make([]Pair, len(pairs))
		for i, p := range pairs {
			values[i] = Pair{A: in.Get(p.R).OrNaN(), B: in.Get(p.QS).OrNaN()}
		}
		if !SumOfValuesNotZero(values...) {
			return domain.Flag(domain.RuleAllSumsIsZero)
		}
		return nil
	}
}

// ComposeGroup runs every group validator and merges their flags.
func ComposeGroup(validators ...GroupValidator) GroupValidator {
	return func(in domain.InputSet) domain.Flags {
		var flags domain.Flags
		for _, validate := range validators {
			flags = flags.Merge(validate(in))
		}
		return flags
	}
}
