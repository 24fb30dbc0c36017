package domain

import (
	"fmt"
	"math"
)

// NumericBound configures the legal range and default of a sum field.
type NumericBound struct {
	Min       float64 `json:"min" yaml:"min"`
	Max       float64 `json:"max" yaml:"max"`
	InitValue float64 `json:"init_value" yaml:"init_value"`
}

// WaveBound configures the R and QS fields of one lead.
type WaveBound struct {
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	InitR  float64 `json:"init_r" yaml:"init_r"`
	InitQS float64 `json:"init_qs" yaml:"init_qs"`
}

// Settings are loaded once at startup and never mutated afterwards.
// They are passed by value so no holder can change another's copy.
type Settings struct {
	Sum  NumericBound `json:"sum" yaml:"sum"`
	Wave WaveBound    `json:"wave" yaml:"wave"`
}

// DefaultSettings returns the bounds used when no configuration is provided.
func DefaultSettings() Settings {
	return Settings{
		Sum:  NumericBound{Min: -50, Max: 50, InitValue: 0},
		Wave: WaveBound{Min: 0, Max: 50, InitR: 0, InitQS: 0},
	}
}

// Validate rejects bounds that no input could satisfy and defaults outside them.
func (s Settings) Validate() error {
	for name, f := range map[string]float64{
		"sum.min": s.Sum.Min, "sum.max": s.Sum.Max, "sum.init_value": s.Sum.InitValue,
		"wave.min": s.Wave.Min, "wave.max": s.Wave.Max, "wave.init_r": s.Wave.InitR, "wave.init_qs": s.Wave.InitQS,
	} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidSettings, name)
		}
	}
	if s.Sum.Min > s.Sum.Max {
		return fmt.Errorf("%w: sum.min %v > sum.max %v", ErrInvalidSettings, s.Sum.Min, s.Sum.Max)
	}
	if s.Sum.InitValue < s.Sum.Min || s.Sum.InitValue > s.Sum.Max {
		return fmt.Errorf("%w: sum.init_value %v outside [%v, %v]", ErrInvalidSettings, s.Sum.InitValue, s.Sum.Min, s.Sum.Max)
	}
	if s.Wave.Min > s.Wave.Max {
		return fmt.Errorf("%w: wave.min %v > wave.max %v", ErrInvalidSettings, s.Wave.Min, s.Wave.Max)
	}
	if s.Wave.InitR < s.Wave.Min || s.Wave.InitR > s.Wave.Max {
		return fmt.Errorf("%w: wave.init_r %v outside [%v, %v]", ErrInvalidSettings, s.Wave.InitR, s.Wave.Min, s.Wave.Max)
	}
	if s.Wave.InitQS < s.Wave.Min || s.Wave.InitQS > s.Wave.Max {
		return fmt.Errorf("%w: wave.init_qs %v outside [%v, %v]", ErrInvalidSettings, s.Wave.InitQS, s.Wave.Min, s.Wave.Max)
	}
	return nil
}

// Bounds returns the inclusive range configured for a field.
func (s Settings) Bounds(f Field) (min, max float64) {
	if f == FieldSumI || f == FieldSumIII {
		return s.Sum.Min, s.Sum.Max
	}
	return s.Wave.Min, s.Wave.Max
}

// Default returns the configured initial value of a field.
func (s Settings) Default(f Field) Value {
	switch f {
	case FieldSumI, FieldSumIII:
		return Number(s.Sum.InitValue)
	case FieldR1, FieldR3:
		return Number(s.Wave.InitR)
	default:
		return Number(s.Wave.InitQS)
	}
}

// Defaults returns a fresh InputSet filled with the configured initial values.
func (s Settings) Defaults() InputSet {
	var in InputSet
	for _, f := range Fields {
		in = in.With(f, s.Default(f))
	}
	return in
}
