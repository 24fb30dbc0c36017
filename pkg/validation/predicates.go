package validation

import "math"

// CheckMinimum passes when v is not below min. Bounds are inclusive.
func CheckMinimum(min, v float64) bool {
	return !(v < min)
}

// CheckMaximum passes when v is not above max. Bounds are inclusive.
func CheckMaximum(max, v float64) bool {
	return !(v > max)
}

// VerifyNumber passes for any finite number, including zero and negatives.
func VerifyNumber(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// AllValuesNotZero fails when every value is exactly zero.
// An empty sequence is vacuously all zero.
func AllValuesNotZero(values ...float64) bool {
	for _, v := range values {
		if v != 0 {
			return true
		}
	}
	return false
}

// Pair is a wave reading reduced by subtraction: A - B.
type Pair struct {
	A, B float64
}

// Diff returns A - B.
func (p Pair) Diff() float64 {
	return p.A - p.B
}

// SumOfValuesNotZero fails when every pair's difference is exactly zero.
func SumOfValuesNotZero(pairs ...Pair) bool {
	diffs := make([]float64, len(pairs))
	for i, p := range pairs {
		diffs[i] = p.Diff()
	}
	return AllValuesNotZero(diffs...)
}
