package form

import (
	"math"

	"github.com/aretw0/heartaxis/pkg/axis"
	"github.com/aretw0/heartaxis/pkg/domain"
	"github.com/aretw0/heartaxis/pkg/validation"
)

// Evaluate validates a snapshot and, when it passes, computes the axis.
// A failing rule suppresses the angle entirely; a non-finite angle from
// inputs that passed validation is reported the same way.
func Evaluate(engine *validation.Engine, display Display, mode domain.Mode, in domain.InputSet) domain.Outcome {
	out := domain.Outcome{
		Mode:       mode,
		Angle:      math.NaN(),
		Magnitude:  math.NaN(),
		Deviation:  domain.DeviationUndetermined,
		Validation: engine.Evaluate(mode, in),
	}

	if out.Validation.Invalid() {
		out.FormInvalid = true
		out.Display = display.Format(out)
		return out
	}

	out.Angle = angleOf(mode, in)
	out.FormInvalid = !out.HasAngle()
	if !out.FormInvalid {
		sumI, sumIII := sumsOf(mode, in)
		out.Magnitude = axis.Magnitude(sumI, sumIII)
		out.Deviation = axis.Classify(out.Angle)
	}
	out.Display = display.Format(out)
	return out
}

func angleOf(mode domain.Mode, in domain.InputSet) float64 {
	if mode == domain.ModeSums {
		return axis.CountAngle(in.SumI.OrNaN(), in.SumIII.OrNaN())
	}
	return axis.CountSumsThenAngle(in.R1.OrNaN(), in.QS1.OrNaN(), in.R3.OrNaN(), in.QS3.OrNaN())
}

// sumsOf reduces the live fields of a mode to the two lead sums.
func sumsOf(mode domain.Mode, in domain.InputSet) (float64, float64) {
	if mode == domain.ModeSums {
		return in.SumI.OrNaN(), in.SumIII.OrNaN()
	}
	return in.R1.OrNaN() - in.QS1.OrNaN(), in.R3.OrNaN() - in.QS3.OrNaN()
}
