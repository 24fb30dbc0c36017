package axis

import (
	"math"

	"github.com/aretw0/heartaxis/pkg/domain"
	"gonum.org/v1/gonum/spatial/r2"
)

// Lead angles of the hexaxial system, in degrees.
const (
	LeadIAngle   = 0.0
	LeadIIIAngle = 120.0
)

var sqrt3 = math.Sqrt(3)

// boundaryScale rounds angles to 1e-9 degrees before band comparison, so a
// resultant that lands on a boundary up to float error is classified by the
// boundary itself.
const boundaryScale = 1e9

// Resultant recovers the frontal-plane vector whose projections on lead I
// and lead III equal the given sums.
//
// With the vector at angle θ and length m:
//
//	I   = m·cos θ
//	III = m·cos(θ - 120°) = m·(-cos θ + √3·sin θ)/2
//
// so m·cos θ = I and m·sin θ = (I + 2·III)/√3.
func Resultant(sumI, sumIII float64) r2.Vec {
	return r2.Vec{X: sumI, Y: (sumI + 2*sumIII) / sqrt3}
}

// CountAngle returns the axis in degrees, in (-180, 180].
// The result is NaN when both sums are zero (no direction), when an input is
// not finite or when the resultant overflows. It never panics.
func CountAngle(sumI, sumIII float64) float64 {
	v := Resultant(sumI, sumIII)
	if !finite(v.X) || !finite(v.Y) || (v.X == 0 && v.Y == 0) {
		return math.NaN()
	}
	return Normalize(math.Atan2(v.Y, v.X) * 180 / math.Pi)
}

// CountSumsThenAngle reduces each wave pair to its sum (R - QS) and returns
// CountAngle of the two sums.
func CountSumsThenAngle(r1, qs1, r3, qs3 float64) float64 {
	return CountAngle(r1-qs1, r3-qs3)
}

// Magnitude returns the length of the resultant vector, NaN when CountAngle
// would be NaN.
func Magnitude(sumI, sumIII float64) float64 {
	v := Resultant(sumI, sumIII)
	if !finite(v.X) || !finite(v.Y) {
		return math.NaN()
	}
	return r2.Norm(v)
}

// Normalize maps any angle in degrees into (-180, 180].
func Normalize(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d <= -180 {
		d += 360
	} else if d > 180 {
		d -= 360
	}
	return d
}

// Classify names the deviation band an axis falls into.
//
//	normal   -30° .. +90°
//	left     -90° .. -30°
//	right    +90° .. +180°
//	extreme -180° .. -90°
func Classify(deg float64) domain.Deviation {
	if !finite(deg) {
		return domain.DeviationUndetermined
	}
	d := math.Round(Normalize(deg)*boundaryScale) / boundaryScale
	switch {
	case d >= -30 && d <= 90:
		return domain.DeviationNormal
	case d > 90:
		return domain.DeviationRight
	case d >= -90:
		return domain.DeviationLeft
	default:
		return domain.DeviationExtreme
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
